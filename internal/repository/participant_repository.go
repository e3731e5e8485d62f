package repository

import (
	"context"
	"errors"

	"todolist/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ParticipantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Upsert adds the user to the board with the role, or changes the role of an existing
// participant. The board owner's row is never modified here.
func (r *ParticipantRepository) Upsert(ctx context.Context, boardID, userID uuid.UUID, role model.Role) (*model.BoardParticipant, error) {
	var result model.BoardParticipant
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.BoardParticipant
		err := tx.Where("board_id = ? AND user_id = ?", boardID, userID).First(&existing).Error

		if err == nil {
			if existing.Role == model.RoleOwner {
				return ErrDuplicate
			}
			existing.Role = role
			if err := tx.Model(&existing).Update("role", role).Error; err != nil {
				return err
			}
			result = existing
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		result = model.BoardParticipant{
			BoardID: boardID,
			UserID:  userID,
			Role:    role,
		}
		return tx.Omit("Board", "User").Create(&result).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Remove deletes a non-owner participant.
func (r *ParticipantRepository) Remove(ctx context.Context, boardID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ? AND role <> ?", boardID, userID, model.RoleOwner).
		Delete(&model.BoardParticipant{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

// ListByBoard returns the board's participants with their users, owner first.
func (r *ParticipantRepository) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]model.BoardParticipant, error) {
	var participants []model.BoardParticipant
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("board_id = ?", boardID).
		Order("CASE WHEN role = 'owner' THEN 0 ELSE 1 END").
		Order("created_at").
		Find(&participants).Error
	return participants, err
}

// GetRole returns the user's role on the board, or "" when the user is not a participant.
func (r *ParticipantRepository) GetRole(ctx context.Context, boardID, userID uuid.UUID) (model.Role, error) {
	var participant model.BoardParticipant
	err := r.db.WithContext(ctx).
		Select("role").
		Where("board_id = ? AND user_id = ?", boardID, userID).
		First(&participant).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return participant.Role, nil
}
