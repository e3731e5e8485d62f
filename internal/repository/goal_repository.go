package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"todolist/internal/model"
)

type GoalRepository struct {
	db *gorm.DB
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// Create adds a new goal to the database
func (r *GoalRepository) Create(ctx context.Context, goal *model.Goal) error {
	return r.db.WithContext(ctx).Omit("Category", "Creator").Create(goal).Error
}

// GetVisible retrieves a goal on one of the user's boards together with its category.
// Archived goals and goals under deleted categories or boards are returned only to the owner.
func (r *GoalRepository) GetVisible(ctx context.Context, userID, id uuid.UUID) (*model.Goal, error) {
	var goal model.Goal
	result := r.db.WithContext(ctx).
		Scopes(goalsOf(userID), liveOrOwned(liveGoal)).
		Preload("Category.Board").
		Where("goals.id = ?", id).
		Take(&goal)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, result.Error
	}
	return &goal, nil
}

// ListVisible retrieves the active goals on the user's boards that match the filter
func (r *GoalRepository) ListVisible(ctx context.Context, userID uuid.UUID, f GoalFilter) ([]model.Goal, error) {
	q := r.db.WithContext(ctx).
		Scopes(goalsOf(userID), live(liveGoal), search(f.Search, "goals.title", "goals.description"), orderBy("goals", f.Ordering))

	if len(f.CategoryIDs) > 0 {
		q = q.Where("goals.category_id IN ?", f.CategoryIDs)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("goals.status IN ?", f.Statuses)
	}
	if len(f.Priorities) > 0 {
		q = q.Where("goals.priority IN ?", f.Priorities)
	}
	if f.DueFrom != nil {
		q = q.Where("goals.due_date >= ?", *f.DueFrom)
	}
	if f.DueTo != nil {
		q = q.Where("goals.due_date <= ?", *f.DueTo)
	}
	if f.CreatedFrom != nil {
		q = q.Where("goals.created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("goals.created_at <= ?", *f.CreatedTo)
	}
	if f.DueBefore != nil {
		q = q.Where("goals.due_date < ?", *f.DueBefore)
	}
	if f.CreatedBefore != nil {
		q = q.Where("goals.created_at < ?", *f.CreatedBefore)
	}

	var goals []model.Goal
	if err := q.Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

// Update writes the editable fields of an active goal
func (r *GoalRepository) Update(ctx context.Context, goal *model.Goal) error {
	result := r.db.WithContext(ctx).Model(&model.Goal{}).
		Where("id = ? AND status <> ?", goal.ID, model.GoalStatusArchived).
		Updates(map[string]interface{}{
			"category_id": goal.CategoryID,
			"title":       goal.Title,
			"description": goal.Description,
			"status":      goal.Status,
			"priority":    goal.Priority,
			"due_date":    goal.DueDate,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}
