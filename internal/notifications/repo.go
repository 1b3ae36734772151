package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chirpy-dev/chirpy-backend/internal/repo"
	"github.com/chirpy-dev/chirpy-backend/pkg/db/models"
	"github.com/chirpy-dev/chirpy-backend/pkg/pagination"
)

// Repository exposes persistence helpers for notification messages.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, message *models.NotificationMessage) error
	List(ctx context.Context, params listNotificationsParams) ([]models.NotificationMessage, *pagination.Cursor, error)
	MarkRead(ctx context.Context, recipientID, messageID uuid.UUID) (notificationMarkResult, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	Delete(ctx context.Context, recipientID, messageID uuid.UUID, now time.Time) (bool, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type repositoryImpl struct {
	repo.Base
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{Base: repo.NewBase(db)}
}

type listNotificationsParams struct {
	RecipientID uuid.UUID
	Limit       int
	Cursor      *pagination.Cursor
	UnreadOnly  bool
}

type notificationMarkResult struct {
	Updated bool
	Found   bool
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	return &repositoryImpl{Base: r.Base.WithTx(tx)}
}

func (r *repositoryImpl) Create(ctx context.Context, message *models.NotificationMessage) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	return r.DB(ctx).Create(message).Error
}

func (r *repositoryImpl) live(ctx context.Context, recipientID uuid.UUID) *gorm.DB {
	return r.DB(ctx).
		Model(&models.NotificationMessage{}).
		Where(`"recipientId" = ? AND "deletedAt" IS NULL`, recipientID)
}

func (r *repositoryImpl) List(ctx context.Context, params listNotificationsParams) ([]models.NotificationMessage, *pagination.Cursor, error) {
	query := r.live(ctx, params.RecipientID)
	if params.UnreadOnly {
		query = query.Where(`"read" = ?`, false)
	}
	if params.Cursor != nil {
		query = query.Where(`("createdAt", "id") < (?, ?)`, params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var messages []models.NotificationMessage
	err := query.Order(`"createdAt" DESC, "id" DESC`).
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&messages).Error
	if err != nil {
		return nil, nil, err
	}

	page, next := pagination.Page(messages, params.Limit, func(m models.NotificationMessage) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})
	return page, next, nil
}

func (r *repositoryImpl) MarkRead(ctx context.Context, recipientID, messageID uuid.UUID) (notificationMarkResult, error) {
	result := r.live(ctx, recipientID).
		Where(`"id" = ? AND "read" = ?`, messageID, false).
		UpdateColumn("read", true)
	if result.Error != nil {
		return notificationMarkResult{}, result.Error
	}

	mark := notificationMarkResult{Updated: result.RowsAffected > 0}
	if result.RowsAffected > 0 {
		mark.Found = true
		return mark, nil
	}

	var count int64
	if err := r.live(ctx, recipientID).Where(`"id" = ?`, messageID).Count(&count).Error; err != nil {
		return notificationMarkResult{}, err
	}
	mark.Found = count > 0
	return mark, nil
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	result := r.live(ctx, recipientID).
		Where(`"read" = ?`, false).
		UpdateColumn("read", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Delete soft-deletes a message; the bool reports whether a live row matched.
func (r *repositoryImpl) Delete(ctx context.Context, recipientID, messageID uuid.UUID, now time.Time) (bool, error) {
	result := r.live(ctx, recipientID).
		Where(`"id" = ?`, messageID).
		UpdateColumn("deletedAt", now)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteOlderThan hard-deletes read or soft-deleted messages created before cutoff.
func (r *repositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.DB(ctx).
		Where(`"createdAt" < ? AND ("read" = ? OR "deletedAt" IS NOT NULL)`, cutoff, true).
		Delete(&models.NotificationMessage{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
