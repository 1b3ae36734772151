package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// HasuraClaimsKey is the namespace the dashboard puts Hasura session claims under.
const HasuraClaimsKey = "https://hasura.io/jwt/claims"

const RoleUser = "user"

// HasuraClaims mirrors the session variables Hasura reads from the token.
type HasuraClaims struct {
	UserID       string   `json:"x-hasura-user-id"`
	DefaultRole  string   `json:"x-hasura-default-role,omitempty"`
	AllowedRoles []string `json:"x-hasura-allowed-roles,omitempty"`
}

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Name   string
	JTI    string
}

// AccessTokenClaims is the dashboard session token.
type AccessTokenClaims struct {
	Name   string        `json:"name,omitempty"`
	Hasura *HasuraClaims `json:"https://hasura.io/jwt/claims,omitempty"`
	jwt.RegisteredClaims
}

// UserID prefers the Hasura user claim and falls back to the subject.
func (c *AccessTokenClaims) UserID() (uuid.UUID, error) {
	raw := c.Subject
	if c.Hasura != nil && strings.TrimSpace(c.Hasura.UserID) != "" {
		raw = c.Hasura.UserID
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("token carries no user id")
	}
	return id, nil
}
