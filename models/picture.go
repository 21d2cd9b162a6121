package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Picture is the metadata row written for every durable profile picture.
type Picture struct {
	gorm.Model
	UserID   uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Filename string    `json:"filename" gorm:"not null"`
	Quality  Quality   `json:"type_picture" gorm:"column:type_picture;size:20;not null"`

	// Relationship
	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Picture) TableName() string {
	return "pictures"
}
