package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	// UserTypeFree is the only tier a new account can get.
	UserTypeFree = "free"
)

type User struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name       string    `json:"name" gorm:"size:50;not null"`
	Email      string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	City       *string   `json:"city" gorm:"size:50"`
	Country    *string   `json:"country" gorm:"size:50"`
	IsActive   bool      `json:"is_active" gorm:"column:is_active;not null"`
	InitDate   time.Time `json:"initDate" gorm:"column:init_date;not null"`
	UserType   string    `json:"userType" gorm:"column:user_type;size:20;not null"`
	PassHash   string    `json:"-" gorm:"column:pass_hash;not null"`
	IDTelegram *int64    `json:"idTelegram,omitempty" gorm:"column:id_telegram"`

	// Relationship
	Pictures []Picture `json:"-" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}
