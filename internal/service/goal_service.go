package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"todolist/internal/model"
	"todolist/internal/permission"
	"todolist/internal/repository"
)

type GoalService struct {
	guard
	goals      *repository.GoalRepository
	categories *repository.CategoryRepository
	cascade    *repository.Cascade
}

func NewGoalService(
	goals *repository.GoalRepository,
	categories *repository.CategoryRepository,
	cascade *repository.Cascade,
	roles RoleSource,
) *GoalService {
	return &GoalService{
		guard:      guard{roles: roles},
		goals:      goals,
		categories: categories,
		cascade:    cascade,
	}
}

type CreateGoalInput struct {
	CategoryID  uuid.UUID          `validate:"required" field:"category"`
	Title       string             `validate:"required,max=255"`
	Description string             `validate:"max=5000"`
	Status      model.GoalStatus   `validate:"omitempty,oneof=to_do in_progress done"`
	Priority    model.GoalPriority `validate:"omitempty,oneof=low medium high critical"`
	DueDate     *time.Time         `field:"due_date"`
}

// UpdateGoalInput changes only the fields that are set. ClearDueDate removes the due date.
type UpdateGoalInput struct {
	CategoryID   *uuid.UUID          `field:"category"`
	Title        *string             `validate:"omitempty,min=1,max=255"`
	Description  *string             `validate:"omitempty,max=5000"`
	Status       *model.GoalStatus   `validate:"omitempty,oneof=to_do in_progress done archived"`
	Priority     *model.GoalPriority `validate:"omitempty,oneof=low medium high critical"`
	DueDate      *time.Time          `field:"due_date"`
	ClearDueDate bool                `field:"clear_due_date"`
}

// GoalQuery holds the list filters. DueBefore and CreatedBefore are exclusive upper bounds
// used when a whole day is requested.
type GoalQuery struct {
	CategoryIDs   []uuid.UUID
	Statuses      []model.GoalStatus
	Priorities    []model.GoalPriority
	DueFrom       *time.Time
	DueTo         *time.Time
	DueBefore     *time.Time
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	CreatedBefore *time.Time
	Search        string
	Ordering      string
}

func goalSubject(g *model.Goal) permission.Subject {
	return permission.Subject{
		Resource: permission.ResourceGoal,
		AuthorID: g.CreatedBy,
		Tombstoned: g.Status == model.GoalStatusArchived ||
			g.Category.IsDeleted || g.Category.Board.IsDeleted,
	}
}

func (s *GoalService) Create(ctx context.Context, actor uuid.UUID, in CreateGoalInput) (*model.Goal, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	category, err := s.categories.GetVisible(ctx, actor, in.CategoryID)
	if err != nil {
		return nil, translate(err)
	}
	subject := permission.Subject{
		Resource:   permission.ResourceGoal,
		Tombstoned: category.IsDeleted || category.Board.IsDeleted,
	}
	if err := s.require(ctx, actor, category.BoardID, permission.ActionCreate, subject); err != nil {
		return nil, err
	}

	goal := &model.Goal{
		CategoryID:  category.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CreatedBy:   actor,
	}
	if err := s.goals.Create(ctx, goal); err != nil {
		return nil, translate(err)
	}
	goal.Category = *category
	return goal, nil
}

func (s *GoalService) List(ctx context.Context, actor uuid.UUID, q GoalQuery) ([]model.Goal, error) {
	ordering, err := repository.ParseOrdering(q.Ordering, repository.GoalOrderings, repository.DefaultGoalOrdering)
	if err != nil {
		return nil, translate(err)
	}
	for _, st := range q.Statuses {
		switch st {
		case model.GoalStatusToDo, model.GoalStatusInProgress, model.GoalStatusDone:
		case model.GoalStatusArchived:
			return nil, invalid("status", "archived goals are not listed")
		default:
			return nil, invalid("status", "must be one of: to_do in_progress done")
		}
	}
	for _, p := range q.Priorities {
		switch p {
		case model.GoalPriorityLow, model.GoalPriorityMedium, model.GoalPriorityHigh, model.GoalPriorityCritical:
		default:
			return nil, invalid("priority", "must be one of: low medium high critical")
		}
	}
	goals, err := s.goals.ListVisible(ctx, actor, repository.GoalFilter{
		CategoryIDs:   q.CategoryIDs,
		Statuses:      q.Statuses,
		Priorities:    q.Priorities,
		DueFrom:       q.DueFrom,
		DueTo:         q.DueTo,
		CreatedFrom:   q.CreatedFrom,
		CreatedTo:     q.CreatedTo,
		DueBefore:     q.DueBefore,
		CreatedBefore: q.CreatedBefore,
		Search:        q.Search,
		Ordering:      ordering,
	})
	return goals, translate(err)
}

func (s *GoalService) Get(ctx context.Context, actor, id uuid.UUID) (*model.Goal, error) {
	goal, err := s.goals.GetVisible(ctx, actor, id)
	if err != nil {
		return nil, translate(err)
	}
	if err := s.require(ctx, actor, goal.Category.BoardID, permission.ActionRead, goalSubject(goal)); err != nil {
		return nil, err
	}
	return goal, nil
}

// Update applies the set fields. A goal may move to another live category of the same board.
func (s *GoalService) Update(ctx context.Context, actor, id uuid.UUID, in UpdateGoalInput) (*model.Goal, error) {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	goal, err := s.goals.GetVisible(ctx, actor, id)
	if err != nil {
		return nil, translate(err)
	}
	if err := s.require(ctx, actor, goal.Category.BoardID, permission.ActionUpdate, goalSubject(goal)); err != nil {
		return nil, err
	}

	if in.CategoryID != nil && *in.CategoryID != goal.CategoryID {
		target, err := s.categories.GetVisible(ctx, actor, *in.CategoryID)
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, invalid("category", "category not found")
		}
		if err != nil {
			return nil, translate(err)
		}
		if target.BoardID != goal.Category.BoardID {
			return nil, invalid("category", "must belong to the same board")
		}
		if target.IsDeleted {
			return nil, invalid("category", "category is deleted")
		}
		goal.CategoryID = target.ID
		goal.Category = *target
	}
	if in.Title != nil {
		goal.Title = *in.Title
	}
	if in.Description != nil {
		goal.Description = *in.Description
	}
	if in.Status != nil {
		goal.Status = *in.Status
	}
	if in.Priority != nil {
		goal.Priority = *in.Priority
	}
	if in.DueDate != nil {
		goal.DueDate = in.DueDate
	}
	if in.ClearDueDate {
		goal.DueDate = nil
	}

	if err := s.goals.Update(ctx, goal); err != nil {
		return nil, translate(err)
	}
	return goal, nil
}

// Delete archives the goal. Nothing else changes.
func (s *GoalService) Delete(ctx context.Context, actor, id uuid.UUID) error {
	goal, err := s.goals.GetVisible(ctx, actor, id)
	if err != nil {
		return translate(err)
	}
	if err := s.require(ctx, actor, goal.Category.BoardID, permission.ActionDelete, goalSubject(goal)); err != nil {
		return err
	}

	changed, err := s.cascade.ArchiveGoal(ctx, goal.ID)
	if err != nil {
		log.WithError(err).WithField("goal_id", goal.ID).Error("goal archive failed")
		return err
	}
	log.WithFields(log.Fields{"goal_id": goal.ID, "user_id": actor, "changed": changed}).Info("goal archived")
	return nil
}
