package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chirpy-dev/chirpy-backend/internal/repo"
	"github.com/chirpy-dev/chirpy-backend/pkg/db/models"
)

// Repository reads dashboard accounts. Accounts are written by the dashboard,
// never by this service.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByID loads a user by their UUID; a missing user yields (nil, nil).
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where(`"id" = ?`, id).Take(&user).Error; err != nil {
		if repo.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// EmailByID returns the user's address, or "" when the user or address is missing.
func (r *Repository) EmailByID(ctx context.Context, id uuid.UUID) (string, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil || user == nil || user.Email == nil {
		return "", err
	}
	return *user.Email, nil
}
