package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"todolist/internal/model"
	"todolist/internal/permission"
	"todolist/internal/repository"
)

type CategoryService struct {
	guard
	categories *repository.CategoryRepository
	boards     *repository.BoardRepository
	cascade    *repository.Cascade
}

func NewCategoryService(
	categories *repository.CategoryRepository,
	boards *repository.BoardRepository,
	cascade *repository.Cascade,
	roles RoleSource,
) *CategoryService {
	return &CategoryService{
		guard:      guard{roles: roles},
		categories: categories,
		boards:     boards,
		cascade:    cascade,
	}
}

type CreateCategoryInput struct {
	BoardID uuid.UUID `validate:"required" field:"board"`
	Title   string    `validate:"required,max=255"`
}

type UpdateCategoryInput struct {
	Title string `validate:"required,max=255"`
}

type CategoryQuery struct {
	BoardID  *uuid.UUID
	Search   string
	Ordering string
}

func categorySubject(c *model.Category) permission.Subject {
	return permission.Subject{
		Resource:   permission.ResourceCategory,
		AuthorID:   c.CreatedBy,
		Tombstoned: c.IsDeleted || c.Board.IsDeleted,
	}
}

func (s *CategoryService) Create(ctx context.Context, actor uuid.UUID, in CreateCategoryInput) (*model.Category, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	board, err := s.boards.GetVisible(ctx, actor, in.BoardID)
	if err != nil {
		return nil, translate(err)
	}
	subject := permission.Subject{Resource: permission.ResourceCategory, Tombstoned: board.IsDeleted}
	if err := s.require(ctx, actor, board.ID, permission.ActionCreate, subject); err != nil {
		return nil, err
	}

	category := &model.Category{BoardID: board.ID, Title: in.Title, CreatedBy: actor}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, translate(err)
	}
	category.Board = *board
	return category, nil
}

func (s *CategoryService) List(ctx context.Context, actor uuid.UUID, q CategoryQuery) ([]model.Category, error) {
	ordering, err := repository.ParseOrdering(q.Ordering, repository.CategoryOrderings, repository.DefaultCategoryOrdering)
	if err != nil {
		return nil, translate(err)
	}
	categories, err := s.categories.ListVisible(ctx, actor, repository.CategoryFilter{
		BoardID:  q.BoardID,
		Search:   q.Search,
		Ordering: ordering,
	})
	return categories, translate(err)
}

func (s *CategoryService) Get(ctx context.Context, actor, id uuid.UUID) (*model.Category, error) {
	category, err := s.categories.GetVisible(ctx, actor, id)
	if err != nil {
		return nil, translate(err)
	}
	if err := s.require(ctx, actor, category.BoardID, permission.ActionRead, categorySubject(category)); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, actor, id uuid.UUID, in UpdateCategoryInput) (*model.Category, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	category, err := s.categories.GetVisible(ctx, actor, id)
	if err != nil {
		return nil, translate(err)
	}
	if err := s.require(ctx, actor, category.BoardID, permission.ActionUpdate, categorySubject(category)); err != nil {
		return nil, err
	}
	if err := s.categories.UpdateTitle(ctx, category.ID, in.Title); err != nil {
		return nil, translate(err)
	}
	category.Title = in.Title
	return category, nil
}

// Delete soft-deletes the category and archives its goals in one transaction.
func (s *CategoryService) Delete(ctx context.Context, actor, id uuid.UUID) error {
	category, err := s.categories.GetVisible(ctx, actor, id)
	if err != nil {
		return translate(err)
	}
	if err := s.require(ctx, actor, category.BoardID, permission.ActionDelete, categorySubject(category)); err != nil {
		return err
	}

	changed, err := s.cascade.DeleteCategory(ctx, category.ID)
	if err != nil {
		log.WithError(err).WithField("category_id", category.ID).Error("category delete cascade failed")
		return err
	}
	log.WithFields(log.Fields{"category_id": category.ID, "user_id": actor, "changed": changed}).Info("category deleted")
	return nil
}
