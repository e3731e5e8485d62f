package handler

import (
	"context"
	"net/http"

	"todolist/internal/model"
	"todolist/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BoardServiceInterface interface {
	Create(ctx context.Context, actor uuid.UUID, in service.BoardInput) (*model.Board, error)
	List(ctx context.Context, actor uuid.UUID, q service.BoardQuery) ([]model.Board, error)
	Get(ctx context.Context, actor, id uuid.UUID) (*model.Board, error)
	Update(ctx context.Context, actor, id uuid.UUID, in service.BoardInput) (*model.Board, error)
	Delete(ctx context.Context, actor, id uuid.UUID) error
	ListParticipants(ctx context.Context, actor, boardID uuid.UUID) ([]model.BoardParticipant, error)
	AddParticipant(ctx context.Context, actor, boardID uuid.UUID, in service.ParticipantInput) (*model.BoardParticipant, error)
	RemoveParticipant(ctx context.Context, actor, boardID, userID uuid.UUID) error
}

var _ BoardServiceInterface = (*service.BoardService)(nil)

type BoardHandler struct {
	boards BoardServiceInterface
}

func NewBoardHandler(boards BoardServiceInterface) *BoardHandler {
	return &BoardHandler{boards: boards}
}

type BoardRequest struct {
	Title string `json:"title" binding:"required"`
}

type BoardResponse struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	IsDeleted    bool                  `json:"is_deleted"`
	CreatedAt    string                `json:"created"`
	UpdatedAt    string                `json:"updated"`
	Participants []ParticipantResponse `json:"participants,omitempty"`
}

func newBoardResponse(b *model.Board) BoardResponse {
	resp := BoardResponse{
		ID:        b.ID.String(),
		Title:     b.Title,
		IsDeleted: b.IsDeleted,
		CreatedAt: formatTime(b.CreatedAt),
		UpdatedAt: formatTime(b.UpdatedAt),
	}
	for i := range b.Participants {
		resp.Participants = append(resp.Participants, newParticipantResponse(&b.Participants[i]))
	}
	return resp
}

// Create creates a new board owned by the authenticated user
// @Summary      Create board
// @Tags         Boards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body BoardRequest true "Board"
// @Success      201 {object} BoardResponse
// @Failure      400 {object} ErrorResponse
// @Router       /goals/board/create [post]
func (h *BoardHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req BoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	board, err := h.boards.Create(c.Request.Context(), userID, service.BoardInput{Title: req.Title})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newBoardResponse(board))
}

// List returns the active boards the user participates in
// @Summary      List boards
// @Tags         Boards
// @Produce      json
// @Security     BearerAuth
// @Param        search   query string false "Search in title"
// @Param        ordering query string false "title, created_at; prefix with - for descending"
// @Success      200 {array} BoardResponse
// @Router       /goals/board/list [get]
func (h *BoardHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	boards, err := h.boards.List(c.Request.Context(), userID, service.BoardQuery{
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BoardResponse, len(boards))
	for i := range boards {
		response[i] = newBoardResponse(&boards[i])
	}
	c.JSON(http.StatusOK, response)
}

// GetByID returns a board with its participants
// @Summary      Get board
// @Tags         Boards
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Board ID"
// @Success      200 {object} BoardResponse
// @Failure      404 {object} ErrorResponse
// @Router       /goals/board/{id} [get]
func (h *BoardHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	board, err := h.boards.Get(c.Request.Context(), userID, boardID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBoardResponse(board))
}

// Update renames a board
// @Summary      Update board
// @Tags         Boards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string       true "Board ID"
// @Param        request body BoardRequest true "Board"
// @Success      200 {object} BoardResponse
// @Failure      404 {object} ErrorResponse
// @Router       /goals/board/{id} [put]
func (h *BoardHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req BoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	board, err := h.boards.Update(c.Request.Context(), userID, boardID, service.BoardInput{Title: req.Title})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBoardResponse(board))
}

// Delete soft-deletes a board together with its categories and goals
// @Summary      Delete board
// @Tags         Boards
// @Security     BearerAuth
// @Param        id path string true "Board ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /goals/board/{id} [delete]
func (h *BoardHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.boards.Delete(c.Request.Context(), userID, boardID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
