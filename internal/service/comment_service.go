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

type CommentService struct {
	guard
	comments *repository.CommentRepository
	goals    *repository.GoalRepository
}

func NewCommentService(comments *repository.CommentRepository, goals *repository.GoalRepository, roles RoleSource) *CommentService {
	return &CommentService{
		guard:    guard{roles: roles},
		comments: comments,
		goals:    goals,
	}
}

type CreateCommentInput struct {
	GoalID uuid.UUID `validate:"required" field:"goal"`
	Text   string    `validate:"required,max=5000"`
}

type UpdateCommentInput struct {
	Text string `validate:"required,max=5000"`
}

type CommentQuery struct {
	GoalID   *uuid.UUID
	Ordering string
}

func commentSubject(c *model.Comment) permission.Subject {
	g := c.Goal
	return permission.Subject{
		Resource: permission.ResourceComment,
		AuthorID: c.CreatedBy,
		Tombstoned: g.Status == model.GoalStatusArchived ||
			g.Category.IsDeleted || g.Category.Board.IsDeleted,
	}
}

// Create comments on a goal that is still active.
func (s *CommentService) Create(ctx context.Context, actor uuid.UUID, in CreateCommentInput) (*model.Comment, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	goal, err := s.goals.GetVisible(ctx, actor, in.GoalID)
	if err != nil {
		return nil, translate(err)
	}
	subject := goalSubject(goal)
	subject.Resource = permission.ResourceComment
	subject.AuthorID = uuid.Nil
	if err := s.require(ctx, actor, goal.Category.BoardID, permission.ActionCreate, subject); err != nil {
		return nil, err
	}

	comment := &model.Comment{GoalID: goal.ID, Text: in.Text, CreatedBy: actor}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, translate(err)
	}
	comment.Goal = *goal
	return comment, nil
}

func (s *CommentService) List(ctx context.Context, actor uuid.UUID, q CommentQuery) ([]model.Comment, error) {
	ordering, err := repository.ParseOrdering(q.Ordering, repository.CommentOrderings, repository.DefaultCommentOrdering)
	if err != nil {
		return nil, translate(err)
	}
	comments, err := s.comments.ListVisible(ctx, actor, repository.CommentFilter{GoalID: q.GoalID, Ordering: ordering})
	return comments, translate(err)
}

func (s *CommentService) Get(ctx context.Context, actor, id uuid.UUID) (*model.Comment, error) {
	comment, err := s.comments.GetVisible(ctx, actor, id)
	if err != nil {
		return nil, translate(err)
	}
	if err := s.require(ctx, actor, comment.Goal.Category.BoardID, permission.ActionRead, commentSubject(comment)); err != nil {
		return nil, err
	}
	return comment, nil
}

// Update changes the text. Only the author may edit a comment.
func (s *CommentService) Update(ctx context.Context, actor, id uuid.UUID, in UpdateCommentInput) (*model.Comment, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetVisible(ctx, actor, id)
	if err != nil {
		return nil, translate(err)
	}
	if err := s.require(ctx, actor, comment.Goal.Category.BoardID, permission.ActionUpdate, commentSubject(comment)); err != nil {
		return nil, err
	}
	if err := s.comments.UpdateText(ctx, comment.ID, in.Text); err != nil {
		return nil, translate(err)
	}
	comment.Text = in.Text
	return comment, nil
}

// Delete removes the comment row. The author and the board owner may delete.
func (s *CommentService) Delete(ctx context.Context, actor, id uuid.UUID) error {
	comment, err := s.comments.GetVisible(ctx, actor, id)
	if err != nil {
		return translate(err)
	}
	if err := s.require(ctx, actor, comment.Goal.Category.BoardID, permission.ActionDelete, commentSubject(comment)); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return translate(err)
	}
	log.WithFields(log.Fields{"comment_id": comment.ID, "user_id": actor}).Info("comment deleted")
	return nil
}
