package subscriptions

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/chirpy-dev/chirpy-backend/pkg/db/models"
	pkgerrors "github.com/chirpy-dev/chirpy-backend/pkg/errors"
)

// Keys are the client public key material of a PushSubscription.
type Keys struct {
	P256dh string `json:"p256dh" validate:"required,push_key"`
	Auth   string `json:"auth" validate:"required,push_key"`
}

// PushSubscription mirrors the browser PushSubscription.toJSON() shape.
type PushSubscription struct {
	Endpoint string `json:"endpoint" validate:"required,push_endpoint"`
	Keys     Keys   `json:"keys" validate:"required"`
}

// RegisterInput is the register-device request body.
type RegisterInput struct {
	Subscription PushSubscription `json:"subscription" validate:"required"`
}

// UnregisterInput is the unregister-device request body.
type UnregisterInput struct {
	Endpoint string `json:"endpoint" validate:"required,push_endpoint"`
}

type Service interface {
	Register(ctx context.Context, userID uuid.UUID, input RegisterInput) (*models.NotificationSubscription, error)
	Unregister(ctx context.Context, userID uuid.UUID, endpoint string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscriptions repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Register(ctx context.Context, userID uuid.UUID, input RegisterInput) (*models.NotificationSubscription, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	endpoint := strings.TrimSpace(input.Subscription.Endpoint)
	if err := validateEndpoint(endpoint); err != nil {
		return nil, err
	}
	if input.Subscription.Keys.P256dh == "" || input.Subscription.Keys.Auth == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription keys required")
	}

	sub := &models.NotificationSubscription{
		UserID:   userID,
		Endpoint: endpoint,
		P256dh:   input.Subscription.Keys.P256dh,
		Auth:     input.Subscription.Keys.Auth,
	}
	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save push subscription")
	}
	return sub, nil
}

func (s *service) Unregister(ctx context.Context, userID uuid.UUID, endpoint string) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	endpoint = strings.TrimSpace(endpoint)
	if err := validateEndpoint(endpoint); err != nil {
		return err
	}
	removed, err := s.repo.DeleteByEndpoint(ctx, &userID, endpoint)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete push subscription")
	}
	if removed == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "push subscription not found")
	}
	return nil
}

// Push services are always reached over https.
func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription endpoint required")
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription endpoint must be an https url")
	}
	return nil
}
