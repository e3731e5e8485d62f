package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

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

type MockGoalService struct {
	mock.Mock
}

func (m *MockGoalService) Create(ctx context.Context, actor uuid.UUID, in service.CreateGoalInput) (*model.Goal, error) {
	args := m.Called(ctx, actor, in)
	if g := args.Get(0); g != nil {
		return g.(*model.Goal), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGoalService) List(ctx context.Context, actor uuid.UUID, q service.GoalQuery) ([]model.Goal, error) {
	args := m.Called(ctx, actor, q)
	if g := args.Get(0); g != nil {
		return g.([]model.Goal), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGoalService) Get(ctx context.Context, actor, id uuid.UUID) (*model.Goal, error) {
	args := m.Called(ctx, actor, id)
	if g := args.Get(0); g != nil {
		return g.(*model.Goal), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGoalService) Update(ctx context.Context, actor, id uuid.UUID, in service.UpdateGoalInput) (*model.Goal, error) {
	args := m.Called(ctx, actor, id, in)
	if g := args.Get(0); g != nil {
		return g.(*model.Goal), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGoalService) Delete(ctx context.Context, actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func setupGoalRouter() (*gin.Engine, *MockGoalService) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc := new(MockGoalService)
	goals := handler.NewGoalHandler(svc)

	g := r.Group("/goals/goal")
	g.Use(middleware.JWTAuthMiddleware(testSecret))
	g.POST("/create", goals.Create)
	g.GET("/list", goals.List)
	g.PUT("/:id", goals.Update)
	g.DELETE("/:id", goals.Delete)
	return r, svc
}

func TestGoalHandler_ListParsesFilters(t *testing.T) {
	router, svc := setupGoalRouter()
	userID := uuid.New()
	cat1, cat2 := uuid.New(), uuid.New()

	svc.On("List", mock.Anything, userID, mock.MatchedBy(func(q service.GoalQuery) bool {
		return len(q.CategoryIDs) == 2 && q.CategoryIDs[0] == cat1 && q.CategoryIDs[1] == cat2 &&
			len(q.Statuses) == 2 && q.Statuses[0] == model.GoalStatusToDo && q.Statuses[1] == model.GoalStatusDone &&
			len(q.Priorities) == 1 && q.Priorities[0] == model.GoalPriorityHigh &&
			q.DueFrom != nil && q.DueFrom.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) &&
			q.DueTo == nil &&
			q.Search == "report" && q.Ordering == "-due_date"
	})).Return([]model.Goal{{ID: uuid.New(), Title: "Write report"}}, nil)

	url := "/goals/goal/list?category=" + cat1.String() + "&category=" + cat2.String() +
		"&status=to_do,done&priority=high&due_date_from=2024-05-01&search=report&ordering=-due_date"
	resp := doJSON(router, "GET", url, nil, tokenFor(t, userID))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Write report")
	svc.AssertExpectations(t)
}

func TestGoalHandler_ListRejectsBadDate(t *testing.T) {
	router, svc := setupGoalRouter()

	resp := doJSON(router, "GET", "/goals/goal/list?created_from=yesterday", nil, tokenFor(t, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

// дата без времени включает весь день: граница превращается в строгую на начало следующего
func TestGoalHandler_ListUpperBounds(t *testing.T) {
	router, svc := setupGoalRouter()
	userID := uuid.New()

	svc.On("List", mock.Anything, userID, mock.MatchedBy(func(q service.GoalQuery) bool {
		return q.DueTo == nil &&
			q.DueBefore != nil && q.DueBefore.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) &&
			q.CreatedBefore == nil &&
			q.CreatedTo != nil && q.CreatedTo.Equal(time.Date(2024, 5, 31, 12, 30, 0, 0, time.UTC))
	})).Return([]model.Goal{}, nil)

	resp := doJSON(router, "GET", "/goals/goal/list?due_date_to=2024-05-31&created_to=2024-05-31T12:30:00Z", nil, tokenFor(t, userID))

	assert.Equal(t, http.StatusOK, resp.Code)
	svc.AssertExpectations(t)

	resp = doJSON(router, "GET", "/goals/goal/list?due_date_to=31.05.2024", nil, tokenFor(t, userID))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid due_date_to format")
}

func TestGoalHandler_CreateRequiresCategoryUUID(t *testing.T) {
	router, svc := setupGoalRouter()

	resp := doJSON(router, "POST", "/goals/goal/create", map[string]string{"category": "nope", "title": "x"}, tokenFor(t, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestGoalHandler_UpdateDueDate(t *testing.T) {
	userID, goalID := uuid.New(), uuid.New()
	goal := &model.Goal{ID: goalID, Title: "Write report", Status: model.GoalStatusToDo}

	t.Run("null clears", func(t *testing.T) {
		router, svc := setupGoalRouter()
		svc.On("Update", mock.Anything, userID, goalID, mock.MatchedBy(func(in service.UpdateGoalInput) bool {
			return in.ClearDueDate && in.DueDate == nil && in.Title == nil
		})).Return(goal, nil)

		resp := doJSON(router, "PUT", "/goals/goal/"+goalID.String(), map[string]interface{}{"due_date": nil}, tokenFor(t, userID))

		assert.Equal(t, http.StatusOK, resp.Code)
		svc.AssertExpectations(t)
	})

	t.Run("absent keeps", func(t *testing.T) {
		router, svc := setupGoalRouter()
		svc.On("Update", mock.Anything, userID, goalID, mock.MatchedBy(func(in service.UpdateGoalInput) bool {
			return !in.ClearDueDate && in.DueDate == nil && in.Status != nil && *in.Status == model.GoalStatusDone
		})).Return(goal, nil)

		resp := doJSON(router, "PUT", "/goals/goal/"+goalID.String(), map[string]interface{}{"status": "done"}, tokenFor(t, userID))

		assert.Equal(t, http.StatusOK, resp.Code)
		svc.AssertExpectations(t)
	})

	t.Run("value sets", func(t *testing.T) {
		router, svc := setupGoalRouter()
		svc.On("Update", mock.Anything, userID, goalID, mock.MatchedBy(func(in service.UpdateGoalInput) bool {
			return !in.ClearDueDate && in.DueDate != nil && in.DueDate.Year() == 2025
		})).Return(goal, nil)

		resp := doJSON(router, "PUT", "/goals/goal/"+goalID.String(), map[string]interface{}{"due_date": "2025-01-31T12:00:00Z"}, tokenFor(t, userID))

		require.Equal(t, http.StatusOK, resp.Code)
		svc.AssertExpectations(t)
	})
}

func TestGoalHandler_DeleteNotVisible(t *testing.T) {
	router, svc := setupGoalRouter()
	userID, goalID := uuid.New(), uuid.New()
	svc.On("Delete", mock.Anything, userID, goalID).Return(service.ErrNotFound)

	resp := doJSON(router, "DELETE", "/goals/goal/"+goalID.String(), nil, tokenFor(t, userID))

	assert.Equal(t, http.StatusNotFound, resp.Code)
}
