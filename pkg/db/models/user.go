package models

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the dashboard account table. Only the columns the notification
// pipeline reads are mapped.
type User struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      *string   `gorm:"column:name;type:text"`
	Username  *string   `gorm:"column:username;type:text"`
	Email     *string   `gorm:"column:email;type:text"`
	Avatar    *string   `gorm:"column:avatar;type:text"`
	CreatedAt time.Time `gorm:"column:createdAt;type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updatedAt;type:timestamptz"`
}

func (User) TableName() string { return "User" }
