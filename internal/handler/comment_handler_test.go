package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"todolist/internal/handler"
	"todolist/internal/middleware"
	"todolist/internal/model"
	"todolist/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) Create(ctx context.Context, actor uuid.UUID, in service.CreateCommentInput) (*model.Comment, error) {
	args := m.Called(ctx, actor, in)
	if cm := args.Get(0); cm != nil {
		return cm.(*model.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCommentService) List(ctx context.Context, actor uuid.UUID, q service.CommentQuery) ([]model.Comment, error) {
	args := m.Called(ctx, actor, q)
	if cm := args.Get(0); cm != nil {
		return cm.([]model.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCommentService) Get(ctx context.Context, actor, id uuid.UUID) (*model.Comment, error) {
	args := m.Called(ctx, actor, id)
	if cm := args.Get(0); cm != nil {
		return cm.(*model.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCommentService) Update(ctx context.Context, actor, id uuid.UUID, in service.UpdateCommentInput) (*model.Comment, error) {
	args := m.Called(ctx, actor, id, in)
	if cm := args.Get(0); cm != nil {
		return cm.(*model.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCommentService) Delete(ctx context.Context, actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func setupCommentRouter() (*gin.Engine, *MockCommentService) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc := new(MockCommentService)
	comments := handler.NewCommentHandler(svc)

	g := r.Group("/goals/goal_comment")
	g.Use(middleware.JWTAuthMiddleware(testSecret))
	g.POST("/create", comments.Create)
	g.GET("/list", comments.List)
	g.PUT("/:id", comments.Update)
	g.DELETE("/:id", comments.Delete)
	return r, svc
}

func TestCommentHandler_Create(t *testing.T) {
	router, svc := setupCommentRouter()
	userID, goalID := uuid.New(), uuid.New()
	comment := &model.Comment{ID: uuid.New(), GoalID: goalID, Text: "on it", CreatedBy: userID}
	svc.On("Create", mock.Anything, userID, service.CreateCommentInput{GoalID: goalID, Text: "on it"}).Return(comment, nil)

	resp := doJSON(router, "POST", "/goals/goal_comment/create",
		handler.CreateCommentRequest{GoalID: goalID.String(), Text: "on it"}, tokenFor(t, userID))

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body handler.CommentResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, userID.String(), body.CreatedBy)
	assert.Equal(t, goalID.String(), body.GoalID)
}

func TestCommentHandler_ListByGoal(t *testing.T) {
	router, svc := setupCommentRouter()
	userID, goalID := uuid.New(), uuid.New()
	svc.On("List", mock.Anything, userID, service.CommentQuery{GoalID: &goalID}).Return([]model.Comment{}, nil)

	resp := doJSON(router, "GET", "/goals/goal_comment/list?goal="+goalID.String(), nil, tokenFor(t, userID))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, "[]", resp.Body.String())
	svc.AssertExpectations(t)
}

func TestCommentHandler_UpdateByNonAuthor(t *testing.T) {
	router, svc := setupCommentRouter()
	userID, commentID := uuid.New(), uuid.New()
	svc.On("Update", mock.Anything, userID, commentID, service.UpdateCommentInput{Text: "mine now"}).
		Return(nil, fmt.Errorf("%w: not_author", service.ErrForbidden))

	resp := doJSON(router, "PUT", "/goals/goal_comment/"+commentID.String(),
		handler.UpdateCommentRequest{Text: "mine now"}, tokenFor(t, userID))

	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestCommentHandler_Delete(t *testing.T) {
	router, svc := setupCommentRouter()
	userID, commentID := uuid.New(), uuid.New()
	svc.On("Delete", mock.Anything, userID, commentID).Return(nil)

	resp := doJSON(router, "DELETE", "/goals/goal_comment/"+commentID.String(), nil, tokenFor(t, userID))

	assert.Equal(t, http.StatusNoContent, resp.Code)
	svc.AssertExpectations(t)
}
