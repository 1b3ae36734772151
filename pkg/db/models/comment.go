package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Comment stores the rich-text document as raw JSON; see pkg/richtext.
type Comment struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	PageID    uuid.UUID       `gorm:"column:pageId;type:uuid;not null"`
	UserID    uuid.UUID       `gorm:"column:userId;type:uuid;not null"`
	ParentID  *uuid.UUID      `gorm:"column:parentId;type:uuid"`
	Content   json.RawMessage `gorm:"column:content;type:jsonb;not null"`
	CreatedAt time.Time       `gorm:"column:createdAt;type:timestamptz"`
	UpdatedAt time.Time       `gorm:"column:updatedAt;type:timestamptz"`
	DeletedAt *time.Time      `gorm:"column:deletedAt;type:timestamptz"`
}

func (Comment) TableName() string { return "Comment" }
