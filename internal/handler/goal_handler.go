package handler

import (
	"context"
	"net/http"
	"time"

	"todolist/internal/model"
	"todolist/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GoalServiceInterface interface {
	Create(ctx context.Context, actor uuid.UUID, in service.CreateGoalInput) (*model.Goal, error)
	List(ctx context.Context, actor uuid.UUID, q service.GoalQuery) ([]model.Goal, error)
	Get(ctx context.Context, actor, id uuid.UUID) (*model.Goal, error)
	Update(ctx context.Context, actor, id uuid.UUID, in service.UpdateGoalInput) (*model.Goal, error)
	Delete(ctx context.Context, actor, id uuid.UUID) error
}

var _ GoalServiceInterface = (*service.GoalService)(nil)

type GoalHandler struct {
	goals GoalServiceInterface
}

func NewGoalHandler(goals GoalServiceInterface) *GoalHandler {
	return &GoalHandler{goals: goals}
}

// CreateGoalRequest представляет запрос на создание цели
type CreateGoalRequest struct {
	CategoryID  string     `json:"category" binding:"required,uuid"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// UpdateGoalRequest представляет частичное обновление цели. Поля без значения не меняются,
// "due_date": null снимает срок.
type UpdateGoalRequest struct {
	CategoryID  *string      `json:"category" binding:"omitempty,uuid"`
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Status      *string      `json:"status"`
	Priority    *string      `json:"priority"`
	DueDate     optionalTime `json:"due_date" swaggertype:"string"`
}

// GoalResponse представляет ответ с данными цели
type GoalResponse struct {
	ID          string             `json:"id"`
	CategoryID  string             `json:"category"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      model.GoalStatus   `json:"status"`
	Priority    model.GoalPriority `json:"priority"`
	DueDate     *string            `json:"due_date,omitempty"`
	CreatedBy   string             `json:"user"`
	CreatedAt   string             `json:"created"`
	UpdatedAt   string             `json:"updated"`
}

func newGoalResponse(g *model.Goal) GoalResponse {
	return GoalResponse{
		ID:          g.ID.String(),
		CategoryID:  g.CategoryID.String(),
		Title:       g.Title,
		Description: g.Description,
		Status:      g.Status,
		Priority:    g.Priority,
		DueDate:     formatOptionalTime(g.DueDate),
		CreatedBy:   g.CreatedBy.String(),
		CreatedAt:   formatTime(g.CreatedAt),
		UpdatedAt:   formatTime(g.UpdatedAt),
	}
}

// Create создает новую цель в категории
// @Summary      Create goal
// @Tags         Goals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateGoalRequest true "Goal"
// @Success      201 {object} GoalResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /goals/goal/create [post]
func (h *GoalHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	goal, err := h.goals.Create(c.Request.Context(), userID, service.CreateGoalInput{
		CategoryID:  uuid.MustParse(req.CategoryID),
		Title:       req.Title,
		Description: req.Description,
		Status:      model.GoalStatus(req.Status),
		Priority:    model.GoalPriority(req.Priority),
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newGoalResponse(goal))
}

// List возвращает активные цели с фильтрами
// @Summary      List goals
// @Tags         Goals
// @Produce      json
// @Security     BearerAuth
// @Param        category      query []string false "Category IDs" collectionFormat(multi)
// @Param        status        query []string false "Statuses" collectionFormat(multi)
// @Param        priority      query []string false "Priorities" collectionFormat(multi)
// @Param        due_date_from query string   false "Due date from (RFC 3339 or YYYY-MM-DD)"
// @Param        due_date_to   query string   false "Due date to, a plain date includes the whole day"
// @Param        created_from  query string   false "Created from"
// @Param        created_to    query string   false "Created to, a plain date includes the whole day"
// @Param        search        query string   false "Search in title and description"
// @Param        ordering      query string   false "title, created_at, due_date, priority; prefix with - for descending"
// @Success      200 {array} GoalResponse
// @Router       /goals/goal/list [get]
func (h *GoalHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	q := service.GoalQuery{
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	}
	if q.CategoryIDs, ok = queryIDs(c, "category"); !ok {
		return
	}
	for _, s := range queryValues(c, "status") {
		q.Statuses = append(q.Statuses, model.GoalStatus(s))
	}
	for _, p := range queryValues(c, "priority") {
		q.Priorities = append(q.Priorities, model.GoalPriority(p))
	}
	if q.DueFrom, ok = queryTime(c, "due_date_from"); !ok {
		return
	}
	if q.DueTo, q.DueBefore, ok = queryUpperTime(c, "due_date_to"); !ok {
		return
	}
	if q.CreatedFrom, ok = queryTime(c, "created_from"); !ok {
		return
	}
	if q.CreatedTo, q.CreatedBefore, ok = queryUpperTime(c, "created_to"); !ok {
		return
	}

	goals, err := h.goals.List(c.Request.Context(), userID, q)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]GoalResponse, len(goals))
	for i := range goals {
		response[i] = newGoalResponse(&goals[i])
	}
	c.JSON(http.StatusOK, response)
}

// GetByID возвращает цель по ID
// @Summary      Get goal
// @Tags         Goals
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Goal ID"
// @Success      200 {object} GoalResponse
// @Failure      404 {object} ErrorResponse
// @Router       /goals/goal/{id} [get]
func (h *GoalHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	goalID, ok := pathID(c, "id")
	if !ok {
		return
	}

	goal, err := h.goals.Get(c.Request.Context(), userID, goalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGoalResponse(goal))
}

// Update обновляет цель; перемещение возможно только внутри доски
// @Summary      Update goal
// @Tags         Goals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string            true "Goal ID"
// @Param        request body UpdateGoalRequest true "Changed fields"
// @Success      200 {object} GoalResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /goals/goal/{id} [put]
func (h *GoalHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	goalID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	in := service.UpdateGoalInput{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate.Value,
		ClearDueDate: req.DueDate.Set && req.DueDate.Value == nil,
	}
	if req.CategoryID != nil {
		id := uuid.MustParse(*req.CategoryID)
		in.CategoryID = &id
	}
	if req.Status != nil {
		status := model.GoalStatus(*req.Status)
		in.Status = &status
	}
	if req.Priority != nil {
		priority := model.GoalPriority(*req.Priority)
		in.Priority = &priority
	}

	goal, err := h.goals.Update(c.Request.Context(), userID, goalID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGoalResponse(goal))
}

// Delete переводит цель в архив
// @Summary      Delete goal
// @Tags         Goals
// @Security     BearerAuth
// @Param        id path string true "Goal ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Router       /goals/goal/{id} [delete]
func (h *GoalHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	goalID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.goals.Delete(c.Request.Context(), userID, goalID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
