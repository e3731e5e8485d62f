package handler

import (
	"context"
	"net/http"

	"todolist/internal/model"
	"todolist/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CommentServiceInterface interface {
	Create(ctx context.Context, actor uuid.UUID, in service.CreateCommentInput) (*model.Comment, error)
	List(ctx context.Context, actor uuid.UUID, q service.CommentQuery) ([]model.Comment, error)
	Get(ctx context.Context, actor, id uuid.UUID) (*model.Comment, error)
	Update(ctx context.Context, actor, id uuid.UUID, in service.UpdateCommentInput) (*model.Comment, error)
	Delete(ctx context.Context, actor, id uuid.UUID) error
}

var _ CommentServiceInterface = (*service.CommentService)(nil)

type CommentHandler struct {
	comments CommentServiceInterface
}

func NewCommentHandler(comments CommentServiceInterface) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type CreateCommentRequest struct {
	GoalID string `json:"goal" binding:"required,uuid"`
	Text   string `json:"text" binding:"required"`
}

type UpdateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type CommentResponse struct {
	ID        string `json:"id"`
	GoalID    string `json:"goal"`
	Text      string `json:"text"`
	CreatedBy string `json:"user"`
	CreatedAt string `json:"created"`
	UpdatedAt string `json:"updated"`
}

func newCommentResponse(cm *model.Comment) CommentResponse {
	return CommentResponse{
		ID:        cm.ID.String(),
		GoalID:    cm.GoalID.String(),
		Text:      cm.Text,
		CreatedBy: cm.CreatedBy.String(),
		CreatedAt: formatTime(cm.CreatedAt),
		UpdatedAt: formatTime(cm.UpdatedAt),
	}
}

// Create comments on an active goal
// @Summary      Create comment
// @Tags         Comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateCommentRequest true "Comment"
// @Success      201 {object} CommentResponse
// @Failure      404 {object} ErrorResponse
// @Router       /goals/goal_comment/create [post]
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), userID, service.CreateCommentInput{
		GoalID: uuid.MustParse(req.GoalID),
		Text:   req.Text,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCommentResponse(comment))
}

// List returns comments on active goals of the user's boards, newest first by default
// @Summary      List comments
// @Tags         Comments
// @Produce      json
// @Security     BearerAuth
// @Param        goal     query string false "Goal ID"
// @Param        ordering query string false "created_at or -created_at"
// @Success      200 {array} CommentResponse
// @Router       /goals/goal_comment/list [get]
func (h *CommentHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	goalID, ok := queryID(c, "goal")
	if !ok {
		return
	}

	comments, err := h.comments.List(c.Request.Context(), userID, service.CommentQuery{
		GoalID:   goalID,
		Ordering: c.Query("ordering"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]CommentResponse, len(comments))
	for i := range comments {
		response[i] = newCommentResponse(&comments[i])
	}
	c.JSON(http.StatusOK, response)
}

// GetByID returns one comment
// @Summary      Get comment
// @Tags         Comments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Comment ID"
// @Success      200 {object} CommentResponse
// @Failure      404 {object} ErrorResponse
// @Router       /goals/goal_comment/{id} [get]
func (h *CommentHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	comment, err := h.comments.Get(c.Request.Context(), userID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCommentResponse(comment))
}

// Update edits a comment. Only its author may do so.
// @Summary      Update comment
// @Tags         Comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string               true "Comment ID"
// @Param        request body UpdateCommentRequest true "Comment"
// @Success      200 {object} CommentResponse
// @Failure      403 {object} ErrorResponse
// @Router       /goals/goal_comment/{id} [put]
func (h *CommentHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), userID, commentID, service.UpdateCommentInput{Text: req.Text})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCommentResponse(comment))
}

// Delete removes a comment. The author and the board owner may delete it.
// @Summary      Delete comment
// @Tags         Comments
// @Security     BearerAuth
// @Param        id path string true "Comment ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Router       /goals/goal_comment/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.comments.Delete(c.Request.Context(), userID, commentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
