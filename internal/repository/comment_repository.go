package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"todolist/internal/model"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create adds a new comment to the database
func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Omit("Goal", "Author").Create(comment).Error
}

// GetVisible retrieves a comment on one of the user's boards with its goal and category
func (r *CommentRepository) GetVisible(ctx context.Context, userID, id uuid.UUID) (*model.Comment, error) {
	var comment model.Comment
	result := r.db.WithContext(ctx).
		Scopes(commentsOf(userID), liveOrOwned(liveGoal)).
		Preload("Goal.Category.Board").
		Where("comments.id = ?", id).
		Take(&comment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, result.Error
	}
	return &comment, nil
}

// ListVisible retrieves the comments on active goals of the user's boards
func (r *CommentRepository) ListVisible(ctx context.Context, userID uuid.UUID, f CommentFilter) ([]model.Comment, error) {
	q := r.db.WithContext(ctx).
		Scopes(commentsOf(userID), live(liveGoal), orderBy("comments", f.Ordering))
	if f.GoalID != nil {
		q = q.Where("comments.goal_id = ?", *f.GoalID)
	}

	var comments []model.Comment
	if err := q.Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// UpdateText replaces the text of a comment
func (r *CommentRepository) UpdateText(ctx context.Context, id uuid.UUID, text string) error {
	result := r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).Update("text", text)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// Delete removes the comment row
func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Comment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}
