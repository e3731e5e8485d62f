package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups goals on a board. BoardID is fixed at creation.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BoardID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"not null"`
	IsDeleted bool      `gorm:"not null;default:false;index"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Board   Board `gorm:"foreignKey:BoardID"`
	Creator User  `gorm:"foreignKey:CreatedBy"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
