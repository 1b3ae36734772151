package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chirpy-dev/chirpy-backend/internal/notifications"
	"github.com/chirpy-dev/chirpy-backend/internal/repo/sqlitetest"
	"github.com/chirpy-dev/chirpy-backend/pkg/db"
	"github.com/chirpy-dev/chirpy-backend/pkg/db/models"
	"github.com/chirpy-dev/chirpy-backend/pkg/enums"
	"github.com/chirpy-dev/chirpy-backend/pkg/logger"
)

func seedNotification(t *testing.T, conn *gorm.DB, createdAt time.Time, read bool) models.NotificationMessage {
	t.Helper()
	msg := models.NotificationMessage{
		ID:            uuid.New(),
		Type:          enums.NotificationTypeReceivedAComment,
		RecipientID:   uuid.New(),
		TriggeredByID: uuid.New(),
		URL:           "https://blog.example.com/post",
		Read:          read,
		CreatedAt:     createdAt,
	}
	require.NoError(t, conn.Create(&msg).Error)
	return msg
}

func TestNotificationCleanupJobDeletesExpiredNotifications(t *testing.T) {
	conn := sqlitetest.Open(t)
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	expired := seedNotification(t, conn, now.AddDate(0, 0, -45), true)
	unread := seedNotification(t, conn, now.AddDate(0, 0, -45), false)
	recent := seedNotification(t, conn, now.AddDate(0, 0, -2), true)

	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         db.Wrap(conn),
		Repository: notifications.NewRepository(conn),
	})
	require.NoError(t, err)
	job := jobIface.(*notificationCleanupJob)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, NotificationCleanupJobName, job.Name())

	var remaining []models.NotificationMessage
	require.NoError(t, conn.Find(&remaining).Error)
	ids := make([]uuid.UUID, 0, len(remaining))
	for _, m := range remaining {
		ids = append(ids, m.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{unread.ID, recent.ID}, ids)
	assert.NotContains(t, ids, expired.ID)
}

func TestNotificationCleanupJobHonoursRetention(t *testing.T) {
	conn := sqlitetest.Open(t)
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	seedNotification(t, conn, now.AddDate(0, 0, -10), true)

	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         db.Wrap(conn),
		Repository: notifications.NewRepository(conn),
		Retention:  7,
	})
	require.NoError(t, err)
	job := jobIface.(*notificationCleanupJob)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))

	var count int64
	require.NoError(t, conn.Model(&models.NotificationMessage{}).Count(&count).Error)
	assert.Zero(t, count)
}

type failingTxRunner struct{}

func (failingTxRunner) WithTx(context.Context, func(tx *gorm.DB) error) error {
	return errors.New("connection refused")
}

func TestNotificationCleanupJobPropagatesErrors(t *testing.T) {
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         failingTxRunner{},
		Repository: notifications.NewRepository(nil),
	})
	require.NoError(t, err)
	assert.Error(t, job.Run(context.Background()))
}

func TestNewNotificationCleanupJobValidatesParams(t *testing.T) {
	_, err := NewNotificationCleanupJob(NotificationCleanupJobParams{})
	assert.Error(t, err)
	_, err = NewNotificationCleanupJob(NotificationCleanupJobParams{Logger: logger.New(logger.Options{ServiceName: "test"})})
	assert.Error(t, err)
}
