package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is a site registered by a user; its owner receives comment notifications.
type Project struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name      string     `gorm:"column:name;type:text;not null"`
	Domain    *string    `gorm:"column:domain;type:text"`
	UserID    *uuid.UUID `gorm:"column:userId;type:uuid"`
	CreatedAt time.Time  `gorm:"column:createdAt;type:timestamptz"`
	UpdatedAt time.Time  `gorm:"column:updatedAt;type:timestamptz"`
}

func (Project) TableName() string { return "Project" }

// Page is a single URL of a project where the widget is embedded.
type Page struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	URL       string    `gorm:"column:url;type:text;not null"`
	Title     *string   `gorm:"column:title;type:text"`
	ProjectID uuid.UUID `gorm:"column:projectId;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:createdAt;type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updatedAt;type:timestamptz"`
}

func (Page) TableName() string { return "Page" }
