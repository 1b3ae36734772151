package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/chirpy-dev/chirpy-backend/pkg/enums"
)

// NotificationMessage is one inbox entry for a recipient.
type NotificationMessage struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Type          enums.NotificationType `gorm:"column:type;type:text;not null" json:"type"`
	RecipientID   uuid.UUID              `gorm:"column:recipientId;type:uuid;not null" json:"recipientId"`
	TriggeredByID uuid.UUID              `gorm:"column:triggeredById;type:uuid;not null" json:"triggeredById"`
	URL           string                 `gorm:"column:url;type:text;not null" json:"url"`
	Content       *string                `gorm:"column:content;type:text" json:"content,omitempty"`
	Read          bool                   `gorm:"column:read;not null;default:false" json:"read"`
	DeletedAt     *time.Time             `gorm:"column:deletedAt;type:timestamptz" json:"-"`
	CreatedAt     time.Time              `gorm:"column:createdAt;type:timestamptz;autoCreateTime" json:"createdAt"`
}

func (NotificationMessage) TableName() string { return "NotificationMessage" }
