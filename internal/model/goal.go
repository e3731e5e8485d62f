package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GoalStatus string

const (
	GoalStatusToDo       GoalStatus = "to_do"
	GoalStatusInProgress GoalStatus = "in_progress"
	GoalStatusDone       GoalStatus = "done"
	// GoalStatusArchived is terminal: deleted goals end up here instead of being removed.
	GoalStatusArchived GoalStatus = "archived"
)

type GoalPriority string

const (
	GoalPriorityLow      GoalPriority = "low"
	GoalPriorityMedium   GoalPriority = "medium"
	GoalPriorityHigh     GoalPriority = "high"
	GoalPriorityCritical GoalPriority = "critical"
)

type Goal struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	CategoryID  uuid.UUID    `gorm:"type:uuid;not null;index"`
	Title       string       `gorm:"not null"`
	Description string
	Status      GoalStatus   `gorm:"type:varchar(16);not null;default:'to_do';index"`
	Priority    GoalPriority `gorm:"type:varchar(16);not null;default:'medium'"`
	DueDate     *time.Time
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Category Category `gorm:"foreignKey:CategoryID"`
	Creator  User     `gorm:"foreignKey:CreatedBy"`
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.Status == "" {
		g.Status = GoalStatusToDo
	}
	if g.Priority == "" {
		g.Priority = GoalPriorityMedium
	}
	return nil
}
