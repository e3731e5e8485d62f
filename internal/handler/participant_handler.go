package handler

import (
	"net/http"

	"todolist/internal/model"
	"todolist/internal/service"

	"github.com/gin-gonic/gin"
)

// ParticipantHandler manages board membership. It shares the board service.
type ParticipantHandler struct {
	boards BoardServiceInterface
}

func NewParticipantHandler(boards BoardServiceInterface) *ParticipantHandler {
	return &ParticipantHandler{boards: boards}
}

type ParticipantRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

type ParticipantResponse struct {
	UserID   string     `json:"user_id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
}

func newParticipantResponse(p *model.BoardParticipant) ParticipantResponse {
	return ParticipantResponse{
		UserID:   p.UserID.String(),
		Username: p.User.Username,
		Email:    p.User.Email,
		Role:     p.Role,
	}
}

// List returns the participants of a board, owner first
// @Summary      List participants
// @Tags         Board Participants
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Board ID"
// @Success      200 {array} ParticipantResponse
// @Failure      404 {object} ErrorResponse
// @Router       /goals/board/{id}/participants [get]
func (h *ParticipantHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	participants, err := h.boards.ListParticipants(c.Request.Context(), userID, boardID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ParticipantResponse, len(participants))
	for i := range participants {
		response[i] = newParticipantResponse(&participants[i])
	}
	c.JSON(http.StatusOK, response)
}

// Add invites a user by email or changes an existing participant's role
// @Summary      Add participant
// @Tags         Board Participants
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string             true "Board ID"
// @Param        request body ParticipantRequest true "Participant"
// @Success      200 {object} ParticipantResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /goals/board/{id}/participants [post]
func (h *ParticipantHandler) Add(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	participant, err := h.boards.AddParticipant(c.Request.Context(), userID, boardID, service.ParticipantInput{
		Email: req.Email,
		Role:  model.Role(req.Role),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newParticipantResponse(participant))
}

// Remove takes a participant off the board. The owner cannot be removed.
// @Summary      Remove participant
// @Tags         Board Participants
// @Security     BearerAuth
// @Param        id      path string true "Board ID"
// @Param        user_id path string true "User ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /goals/board/{id}/participants/{user_id} [delete]
func (h *ParticipantHandler) Remove(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}
	participantID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	if err := h.boards.RemoveParticipant(c.Request.Context(), userID, boardID, participantID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
