package handler

import (
	"context"
	"net/http"

	"todolist/internal/model"
	"todolist/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CategoryServiceInterface interface {
	Create(ctx context.Context, actor uuid.UUID, in service.CreateCategoryInput) (*model.Category, error)
	List(ctx context.Context, actor uuid.UUID, q service.CategoryQuery) ([]model.Category, error)
	Get(ctx context.Context, actor, id uuid.UUID) (*model.Category, error)
	Update(ctx context.Context, actor, id uuid.UUID, in service.UpdateCategoryInput) (*model.Category, error)
	Delete(ctx context.Context, actor, id uuid.UUID) error
}

var _ CategoryServiceInterface = (*service.CategoryService)(nil)

type CategoryHandler struct {
	categories CategoryServiceInterface
}

func NewCategoryHandler(categories CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type CreateCategoryRequest struct {
	BoardID string `json:"board" binding:"required,uuid"`
	Title   string `json:"title" binding:"required"`
}

type UpdateCategoryRequest struct {
	Title string `json:"title" binding:"required"`
}

type CategoryResponse struct {
	ID        string `json:"id"`
	BoardID   string `json:"board"`
	Title     string `json:"title"`
	IsDeleted bool   `json:"is_deleted"`
	CreatedBy string `json:"user"`
	CreatedAt string `json:"created"`
	UpdatedAt string `json:"updated"`
}

func newCategoryResponse(cat *model.Category) CategoryResponse {
	return CategoryResponse{
		ID:        cat.ID.String(),
		BoardID:   cat.BoardID.String(),
		Title:     cat.Title,
		IsDeleted: cat.IsDeleted,
		CreatedBy: cat.CreatedBy.String(),
		CreatedAt: formatTime(cat.CreatedAt),
		UpdatedAt: formatTime(cat.UpdatedAt),
	}
}

// Create adds a category to a board
// @Summary      Create category
// @Tags         Categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateCategoryRequest true "Category"
// @Success      201 {object} CategoryResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /goals/goal_category/create [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	category, err := h.categories.Create(c.Request.Context(), userID, service.CreateCategoryInput{
		BoardID: uuid.MustParse(req.BoardID),
		Title:   req.Title,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCategoryResponse(category))
}

// List returns active categories on the user's boards
// @Summary      List categories
// @Tags         Categories
// @Produce      json
// @Security     BearerAuth
// @Param        board    query string false "Board ID"
// @Param        search   query string false "Search in title"
// @Param        ordering query string false "title, created_at; prefix with - for descending"
// @Success      200 {array} CategoryResponse
// @Router       /goals/goal_category/list [get]
func (h *CategoryHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := queryID(c, "board")
	if !ok {
		return
	}

	categories, err := h.categories.List(c.Request.Context(), userID, service.CategoryQuery{
		BoardID:  boardID,
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i := range categories {
		response[i] = newCategoryResponse(&categories[i])
	}
	c.JSON(http.StatusOK, response)
}

// GetByID returns one category
// @Summary      Get category
// @Tags         Categories
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Category ID"
// @Success      200 {object} CategoryResponse
// @Failure      404 {object} ErrorResponse
// @Router       /goals/goal_category/{id} [get]
func (h *CategoryHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	categoryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	category, err := h.categories.Get(c.Request.Context(), userID, categoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCategoryResponse(category))
}

// Update renames a category
// @Summary      Update category
// @Tags         Categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                true "Category ID"
// @Param        request body UpdateCategoryRequest true "Category"
// @Success      200 {object} CategoryResponse
// @Failure      404 {object} ErrorResponse
// @Router       /goals/goal_category/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	categoryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	category, err := h.categories.Update(c.Request.Context(), userID, categoryID, service.UpdateCategoryInput{Title: req.Title})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCategoryResponse(category))
}

// Delete soft-deletes a category and archives its goals
// @Summary      Delete category
// @Tags         Categories
// @Security     BearerAuth
// @Param        id path string true "Category ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Router       /goals/goal_category/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	categoryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.categories.Delete(c.Request.Context(), userID, categoryID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
