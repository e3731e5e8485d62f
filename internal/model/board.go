package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Board is a shared workspace. Deleting a board only flips IsDeleted.
type Board struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title     string    `gorm:"not null"`
	IsDeleted bool      `gorm:"not null;default:false;index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Participants []BoardParticipant `gorm:"foreignKey:BoardID"`
}

func (b *Board) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
