package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is the only entity that is physically deleted.
type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	GoalID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Text      string    `gorm:"not null"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Goal   Goal `gorm:"foreignKey:GoalID"`
	Author User `gorm:"foreignKey:CreatedBy"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Board{},
		&BoardParticipant{},
		&Category{},
		&Goal{},
		&Comment{},
	}
}
