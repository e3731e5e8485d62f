package repository

import (
	"context"
	"errors"

	"todolist/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Omit("Board", "Creator").Create(category).Error
}

// GetVisible loads a category on one of the user's boards. Deleted categories, and
// categories of deleted boards, are returned only to the board owner.
func (r *CategoryRepository) GetVisible(ctx context.Context, userID, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).
		Scopes(categoriesOf(userID), liveOrOwned(liveCategory)).
		Preload("Board").
		Where("categories.id = ?", id).
		Take(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) ListVisible(ctx context.Context, userID uuid.UUID, f CategoryFilter) ([]model.Category, error) {
	q := r.db.WithContext(ctx).
		Scopes(categoriesOf(userID), live(liveCategory), search(f.Search, "categories.title"), orderBy("categories", f.Ordering))
	if f.BoardID != nil {
		q = q.Where("categories.board_id = ?", *f.BoardID)
	}

	var categories []model.Category
	err := q.Find(&categories).Error
	return categories, err
}

// UpdateTitle renames a live category. The board of a category never changes.
func (r *CategoryRepository) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	result := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("title", title)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
