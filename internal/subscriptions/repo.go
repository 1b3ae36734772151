package subscriptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chirpy-dev/chirpy-backend/internal/repo"
	"github.com/chirpy-dev/chirpy-backend/pkg/db/models"
)

// Repository persists browser push subscriptions.
type Repository interface {
	Upsert(ctx context.Context, sub *models.NotificationSubscription) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.NotificationSubscription, error)
	DeleteByEndpoint(ctx context.Context, userID *uuid.UUID, endpoint string) (int64, error)
}

type repositoryImpl struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{Base: repo.NewBase(db)}
}

// Upsert keys on the endpoint: a browser re-registering under another account
// moves the subscription to that account.
func (r *repositoryImpl) Upsert(ctx context.Context, sub *models.NotificationSubscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"userId", "p256dh", "auth"}),
	}).Create(sub).Error
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.NotificationSubscription, error) {
	var subs []models.NotificationSubscription
	err := r.DB(ctx).
		Where(`"userId" = ?`, userID).
		Order(`"createdAt" ASC`).
		Find(&subs).Error
	return subs, err
}

// DeleteByEndpoint removes a subscription. A nil userID removes it regardless
// of owner, which is how stale endpoints reported by push services are purged.
func (r *repositoryImpl) DeleteByEndpoint(ctx context.Context, userID *uuid.UUID, endpoint string) (int64, error) {
	query := r.DB(ctx).Where(`"endpoint" = ?`, endpoint)
	if userID != nil {
		query = query.Where(`"userId" = ?`, *userID)
	}
	result := query.Delete(&models.NotificationSubscription{})
	return result.RowsAffected, result.Error
}
