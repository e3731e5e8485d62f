// Package service applies the board permission rules on top of the repositories. Every
// method takes the acting user's id explicitly.
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

// RoleSource resolves board roles and forgets them when membership changes.
type RoleSource interface {
	GetRole(ctx context.Context, boardID, userID uuid.UUID) (model.Role, error)
	Forget(ctx context.Context, boardID, userID uuid.UUID)
}

type BoardService struct {
	guard
	boards       *repository.BoardRepository
	participants *repository.ParticipantRepository
	users        *repository.UserRepository
	cascade      *repository.Cascade
	roles        RoleSource
}

func NewBoardService(
	boards *repository.BoardRepository,
	participants *repository.ParticipantRepository,
	users *repository.UserRepository,
	cascade *repository.Cascade,
	roles RoleSource,
) *BoardService {
	return &BoardService{
		guard:        guard{roles: roles},
		boards:       boards,
		participants: participants,
		users:        users,
		cascade:      cascade,
		roles:        roles,
	}
}

type BoardInput struct {
	Title string `validate:"required,max=255"`
}

type BoardQuery struct {
	Search   string
	Ordering string
}

type ParticipantInput struct {
	Email string     `validate:"required,email"`
	Role  model.Role `validate:"required,oneof=writer reader"`
}

func boardSubject(b *model.Board) permission.Subject {
	return permission.Subject{Resource: permission.ResourceBoard, Tombstoned: b.IsDeleted}
}

// Create makes a board with the actor as its owner.
func (s *BoardService) Create(ctx context.Context, actor uuid.UUID, in BoardInput) (*model.Board, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := denied(permission.Authorize(actor, "", permission.ActionCreate, permission.Subject{Resource: permission.ResourceBoard})); err != nil {
		return nil, err
	}

	board := &model.Board{Title: in.Title}
	if err := s.boards.CreateWithOwner(ctx, board, actor); err != nil {
		return nil, translate(err)
	}
	log.WithFields(log.Fields{"board_id": board.ID, "user_id": actor}).Info("board created")
	return board, nil
}

func (s *BoardService) List(ctx context.Context, actor uuid.UUID, q BoardQuery) ([]model.Board, error) {
	ordering, err := repository.ParseOrdering(q.Ordering, repository.BoardOrderings, repository.DefaultBoardOrdering)
	if err != nil {
		return nil, translate(err)
	}
	boards, err := s.boards.ListVisible(ctx, actor, repository.BoardFilter{Search: q.Search, Ordering: ordering})
	return boards, translate(err)
}

// Get returns the board with its participants.
func (s *BoardService) Get(ctx context.Context, actor, id uuid.UUID) (*model.Board, error) {
	board, err := s.boards.GetVisible(ctx, actor, id)
	if err != nil {
		return nil, translate(err)
	}
	if err := s.require(ctx, actor, board.ID, permission.ActionRead, boardSubject(board)); err != nil {
		return nil, err
	}
	return board, nil
}

func (s *BoardService) Update(ctx context.Context, actor, id uuid.UUID, in BoardInput) (*model.Board, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	board, err := s.boards.GetVisible(ctx, actor, id)
	if err != nil {
		return nil, translate(err)
	}
	if err := s.require(ctx, actor, board.ID, permission.ActionUpdate, boardSubject(board)); err != nil {
		return nil, err
	}
	if err := s.boards.UpdateTitle(ctx, board.ID, in.Title); err != nil {
		return nil, translate(err)
	}
	board.Title = in.Title
	return board, nil
}

// Delete soft-deletes the board and cascades to its categories and goals. Deleting an
// already deleted board succeeds without changing anything.
func (s *BoardService) Delete(ctx context.Context, actor, id uuid.UUID) error {
	board, err := s.boards.GetVisible(ctx, actor, id)
	if err != nil {
		return translate(err)
	}
	if err := s.require(ctx, actor, board.ID, permission.ActionDelete, boardSubject(board)); err != nil {
		return err
	}

	changed, err := s.cascade.DeleteBoard(ctx, board.ID)
	if err != nil {
		log.WithError(err).WithField("board_id", board.ID).Error("board delete cascade failed")
		return err
	}
	log.WithFields(log.Fields{"board_id": board.ID, "user_id": actor, "changed": changed}).Info("board deleted")
	return nil
}

func (s *BoardService) ListParticipants(ctx context.Context, actor, boardID uuid.UUID) ([]model.BoardParticipant, error) {
	board, err := s.boards.GetVisible(ctx, actor, boardID)
	if err != nil {
		return nil, translate(err)
	}
	subject := permission.Subject{Resource: permission.ResourceMembership, Tombstoned: board.IsDeleted}
	if err := s.require(ctx, actor, board.ID, permission.ActionRead, subject); err != nil {
		return nil, err
	}
	participants, err := s.participants.ListByBoard(ctx, board.ID)
	return participants, translate(err)
}

// AddParticipant invites a user by email, or changes the role of an existing participant.
func (s *BoardService) AddParticipant(ctx context.Context, actor, boardID uuid.UUID, in ParticipantInput) (*model.BoardParticipant, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	board, err := s.boards.GetVisible(ctx, actor, boardID)
	if err != nil {
		return nil, translate(err)
	}
	subject := permission.Subject{Resource: permission.ResourceMembership, Tombstoned: board.IsDeleted}
	if err := s.require(ctx, actor, board.ID, permission.ActionCreate, subject); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, translate(err)
	}
	if user == nil {
		return nil, invalid("email", "no user with this email")
	}
	if user.ID == actor {
		return nil, invalid("email", "the owner is already a participant")
	}

	participant, err := s.participants.Upsert(ctx, board.ID, user.ID, in.Role)
	if err != nil {
		return nil, translate(err)
	}
	s.roles.Forget(ctx, board.ID, user.ID)
	participant.User = *user
	log.WithFields(log.Fields{"board_id": board.ID, "user_id": user.ID, "role": in.Role}).Info("participant saved")
	return participant, nil
}

// RemoveParticipant takes a non-owner off the board.
func (s *BoardService) RemoveParticipant(ctx context.Context, actor, boardID, userID uuid.UUID) error {
	board, err := s.boards.GetVisible(ctx, actor, boardID)
	if err != nil {
		return translate(err)
	}
	subject := permission.Subject{Resource: permission.ResourceMembership, Tombstoned: board.IsDeleted}
	if err := s.require(ctx, actor, board.ID, permission.ActionDelete, subject); err != nil {
		return err
	}
	if err := s.participants.Remove(ctx, board.ID, userID); err != nil {
		return translate(err)
	}
	s.roles.Forget(ctx, board.ID, userID)
	log.WithFields(log.Fields{"board_id": board.ID, "user_id": userID}).Info("participant removed")
	return nil
}
