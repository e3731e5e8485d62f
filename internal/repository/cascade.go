package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"todolist/internal/model"
)

// Cascade owns the soft-delete transitions. Every method runs in one transaction and either
// applies all of its writes or none of them. Deleting an already deleted root is a no-op
// and reports changed == false.
type Cascade struct {
	db *gorm.DB
}

func NewCascade(db *gorm.DB) *Cascade {
	return &Cascade{db: db}
}

var tracer = otel.Tracer("todolist/internal/repository")

func startCascadeSpan(ctx context.Context, name string, rootID uuid.UUID) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.String("cascade.root_id", rootID.String())))
}

func endCascadeSpan(span trace.Span, changed bool, err error) {
	span.SetAttributes(attribute.Bool("cascade.changed", changed))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cascade failed")
	}
	span.End()
}

// DeleteBoard marks the board and its categories deleted and archives every goal under them.
func (c *Cascade) DeleteBoard(ctx context.Context, boardID uuid.UUID) (changed bool, err error) {
	ctx, span := startCascadeSpan(ctx, "Cascade.DeleteBoard", boardID)
	defer func() { endCascadeSpan(span, changed, err) }()

	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Board{}).
			Where("id = ? AND is_deleted = ?", boardID, false).
			Update("is_deleted", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true

		if err := tx.Model(&model.Category{}).
			Where("board_id = ? AND is_deleted = ?", boardID, false).
			Update("is_deleted", true).Error; err != nil {
			return err
		}

		categoryIDs := tx.Model(&model.Category{}).Select("id").Where("board_id = ?", boardID)
		return tx.Model(&model.Goal{}).
			Where("category_id IN (?) AND status <> ?", categoryIDs, model.GoalStatusArchived).
			Update("status", model.GoalStatusArchived).Error
	})
	if err != nil {
		return false, fmt.Errorf("%w: board %s: %w", ErrCascadeFailed, boardID, err)
	}
	return changed, nil
}

// DeleteCategory marks the category deleted and archives its goals. Sibling categories are untouched.
func (c *Cascade) DeleteCategory(ctx context.Context, categoryID uuid.UUID) (changed bool, err error) {
	ctx, span := startCascadeSpan(ctx, "Cascade.DeleteCategory", categoryID)
	defer func() { endCascadeSpan(span, changed, err) }()

	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Category{}).
			Where("id = ? AND is_deleted = ?", categoryID, false).
			Update("is_deleted", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true

		return tx.Model(&model.Goal{}).
			Where("category_id = ? AND status <> ?", categoryID, model.GoalStatusArchived).
			Update("status", model.GoalStatusArchived).Error
	})
	if err != nil {
		return false, fmt.Errorf("%w: category %s: %w", ErrCascadeFailed, categoryID, err)
	}
	return changed, nil
}

// ArchiveGoal is the goal-level delete. Goals own nothing, so it is a single row update.
func (c *Cascade) ArchiveGoal(ctx context.Context, goalID uuid.UUID) (changed bool, err error) {
	ctx, span := startCascadeSpan(ctx, "Cascade.ArchiveGoal", goalID)
	defer func() { endCascadeSpan(span, changed, err) }()

	res := c.db.WithContext(ctx).Model(&model.Goal{}).
		Where("id = ? AND status <> ?", goalID, model.GoalStatusArchived).
		Update("status", model.GoalStatusArchived)
	if res.Error != nil {
		return false, fmt.Errorf("%w: goal %s: %w", ErrCascadeFailed, goalID, res.Error)
	}
	return res.RowsAffected > 0, nil
}
