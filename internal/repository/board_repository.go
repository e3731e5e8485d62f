package repository

import (
	"context"
	"errors"

	"todolist/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// CreateWithOwner inserts the board and its owner participant in one transaction.
func (r *BoardRepository) CreateWithOwner(ctx context.Context, board *model.Board, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Participants").Create(board).Error; err != nil {
			return err
		}
		owner := model.BoardParticipant{
			BoardID: board.ID,
			UserID:  ownerID,
			Role:    model.RoleOwner,
		}
		if err := tx.Omit("Board", "User").Create(&owner).Error; err != nil {
			return err
		}
		board.Participants = []model.BoardParticipant{owner}
		return nil
	})
}

// GetVisible loads a board the user participates in, with its participants. A deleted
// board is returned only to its owner.
func (r *BoardRepository) GetVisible(ctx context.Context, userID, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	err := r.db.WithContext(ctx).
		Scopes(boardsOf(userID), liveOrOwned(liveBoard)).
		Preload("Participants.User").
		Where("boards.id = ?", id).
		Take(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBoardNotFound
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// ListVisible returns the user's non-deleted boards.
func (r *BoardRepository) ListVisible(ctx context.Context, userID uuid.UUID, f BoardFilter) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).
		Scopes(boardsOf(userID), live(liveBoard), search(f.Search, "boards.title"), orderBy("boards", f.Ordering)).
		Find(&boards).Error
	return boards, err
}

func (r *BoardRepository) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	result := r.db.WithContext(ctx).Model(&model.Board{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("title", title)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBoardNotFound
	}
	return nil
}
