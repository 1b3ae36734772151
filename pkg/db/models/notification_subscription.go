package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationSubscription is a browser push subscription registered from the dashboard.
type NotificationSubscription struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:userId;type:uuid;not null"`
	Endpoint  string    `gorm:"column:endpoint;type:text;not null;uniqueIndex"`
	P256dh    string    `gorm:"column:p256dh;type:text;not null"`
	Auth      string    `gorm:"column:auth;type:text;not null"`
	CreatedAt time.Time `gorm:"column:createdAt;type:timestamptz;autoCreateTime"`
}

func (NotificationSubscription) TableName() string { return "NotificationSubscription" }
