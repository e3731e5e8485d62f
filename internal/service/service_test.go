package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"todolist/internal/cache"
	"todolist/internal/model"
	"todolist/internal/repository"
	"todolist/internal/service"
	"todolist/internal/testutil"
)

type services struct {
	boards     *service.BoardService
	categories *service.CategoryService
	goals      *service.GoalService
	comments   *service.CommentService
}

func newServices(db *gorm.DB) services {
	participants := repository.NewParticipantRepository(db)
	boards := repository.NewBoardRepository(db)
	categories := repository.NewCategoryRepository(db)
	goals := repository.NewGoalRepository(db)
	cascade := repository.NewCascade(db)
	roles := cache.NewRoleCache(participants, nil, 0)

	return services{
		boards:     service.NewBoardService(boards, participants, repository.NewUserRepository(db), cascade, roles),
		categories: service.NewCategoryService(categories, boards, cascade, roles),
		goals:      service.NewGoalService(goals, categories, cascade, roles),
		comments:   service.NewCommentService(repository.NewCommentRepository(db), goals, roles),
	}
}

type world struct {
	owner, writer, reader, outsider *model.User
	board                           *model.Board
	c1, c2                          *model.Category
	g1, g2, g3                      *model.Goal
}

func seedWorld(f *testutil.Fixtures) world {
	w := world{
		owner:    f.User("owner"),
		writer:   f.User("writer"),
		reader:   f.User("reader"),
		outsider: f.User("outsider"),
	}
	w.board = f.Board("Work", w.owner)
	f.Participant(w.board, w.writer, model.RoleWriter)
	f.Participant(w.board, w.reader, model.RoleReader)
	w.c1 = f.Category("Backlog", w.board, w.owner)
	w.c2 = f.Category("Sprint", w.board, w.writer)
	w.g1 = f.Goal("Write report", w.c1, w.owner)
	w.g2 = f.Goal("Review report", w.c1, w.writer)
	w.g3 = f.Goal("Ship release", w.c2, w.writer)
	return w
}

func setup(t *testing.T) (services, world, *testutil.Fixtures) {
	db := testutil.NewDB(t)
	f := testutil.NewFixtures(t, db)
	return newServices(db), seedWorld(f), f
}

func TestOutsiderCannotObserveBoardTree(t *testing.T) {
	svc, w, f := setup(t)
	ctx := context.Background()
	comment := f.Comment("looks good", w.g1, w.owner)
	out := w.outsider.ID

	_, err := svc.boards.Get(ctx, out, w.board.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = svc.boards.Update(ctx, out, w.board.ID, service.BoardInput{Title: "Mine"})
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, svc.boards.Delete(ctx, out, w.board.ID), service.ErrNotFound)

	_, err = svc.categories.Get(ctx, out, w.c1.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = svc.categories.Create(ctx, out, service.CreateCategoryInput{BoardID: w.board.ID, Title: "Sneaky"})
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.goals.Get(ctx, out, w.g1.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	title := "hijacked"
	_, err = svc.goals.Update(ctx, out, w.g1.ID, service.UpdateGoalInput{Title: &title})
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.comments.Get(ctx, out, comment.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, svc.comments.Delete(ctx, out, comment.ID), service.ErrNotFound)

	assert.Equal(t, "Write report", f.ReloadGoal(w.g1.ID).Title)
	assert.True(t, f.CommentExists(comment.ID))
}

func TestListsIgnoreForeignBoardsEvenWhenFiltersMatch(t *testing.T) {
	svc, w, f := setup(t)
	ctx := context.Background()
	f.Comment("looks good", w.g1, w.owner)
	out := w.outsider.ID

	boards, err := svc.boards.List(ctx, out, service.BoardQuery{Search: "work"})
	require.NoError(t, err)
	assert.Empty(t, boards)

	categories, err := svc.categories.List(ctx, out, service.CategoryQuery{BoardID: &w.board.ID})
	require.NoError(t, err)
	assert.Empty(t, categories)

	goals, err := svc.goals.List(ctx, out, service.GoalQuery{
		CategoryIDs: []uuid.UUID{w.c1.ID},
		Statuses:    []model.GoalStatus{model.GoalStatusInProgress},
		Search:      "report",
	})
	require.NoError(t, err)
	assert.Empty(t, goals)

	comments, err := svc.comments.List(ctx, out, service.CommentQuery{GoalID: &w.g1.ID})
	require.NoError(t, err)
	assert.Empty(t, comments)

	goals, err = svc.goals.List(ctx, w.reader.ID, service.GoalQuery{Search: "report"})
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, "Review report", goals[0].Title)
	assert.Equal(t, "Write report", goals[1].Title)
}

func TestBoardService_CreateAddsOwner(t *testing.T) {
	svc, w, _ := setup(t)
	ctx := context.Background()

	board, err := svc.boards.Create(ctx, w.outsider.ID, service.BoardInput{Title: "  Garden  "})
	require.NoError(t, err)
	assert.Equal(t, "Garden", board.Title)

	got, err := svc.boards.Get(ctx, w.outsider.ID, board.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)
	assert.Equal(t, model.RoleOwner, got.Participants[0].Role)
	assert.Equal(t, w.outsider.ID, got.Participants[0].UserID)
}

func TestBoardService_CreateValidatesTitle(t *testing.T) {
	svc, w, _ := setup(t)

	_, err := svc.boards.Create(context.Background(), w.owner.ID, service.BoardInput{Title: "   "})

	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Equal(t, "is required", verr.Fields["title"])
}

func TestBoardService_InvalidOrdering(t *testing.T) {
	svc, w, _ := setup(t)

	_, err := svc.boards.List(context.Background(), w.owner.ID, service.BoardQuery{Ordering: "-password"})

	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestBoardService_Delete(t *testing.T) {
	svc, w, f := setup(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.boards.Delete(ctx, w.writer.ID, w.board.ID), service.ErrForbidden)
	assert.False(t, f.ReloadBoard(w.board.ID).IsDeleted)

	require.NoError(t, svc.boards.Delete(ctx, w.owner.ID, w.board.ID))

	assert.True(t, f.ReloadBoard(w.board.ID).IsDeleted)
	assert.True(t, f.ReloadCategory(w.c1.ID).IsDeleted)
	assert.True(t, f.ReloadCategory(w.c2.ID).IsDeleted)
	for _, g := range []*model.Goal{w.g1, w.g2, w.g3} {
		assert.Equal(t, model.GoalStatusArchived, f.ReloadGoal(g.ID).Status, g.Title)
	}

	// second delete by the owner is a no-op
	require.NoError(t, svc.boards.Delete(ctx, w.owner.ID, w.board.ID))
	assert.True(t, f.ReloadBoard(w.board.ID).IsDeleted)

	// deleted boards disappear for everyone else
	_, err := svc.boards.Get(ctx, w.writer.ID, w.board.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = svc.categories.Get(ctx, w.reader.ID, w.c1.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	// the owner still sees the tombstone but cannot write under it
	got, err := svc.boards.Get(ctx, w.owner.ID, w.board.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
	_, err = svc.boards.Update(ctx, w.owner.ID, w.board.ID, service.BoardInput{Title: "Back"})
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = svc.categories.Create(ctx, w.owner.ID, service.CreateCategoryInput{BoardID: w.board.ID, Title: "Late"})
	assert.ErrorIs(t, err, service.ErrNotFound)

	boards, err := svc.boards.List(ctx, w.owner.ID, service.BoardQuery{})
	require.NoError(t, err)
	assert.Empty(t, boards)
}

func TestBoardService_Participants(t *testing.T) {
	svc, w, _ := setup(t)
	ctx := context.Background()

	_, err := svc.boards.AddParticipant(ctx, w.writer.ID, w.board.ID, service.ParticipantInput{Email: w.outsider.Email, Role: model.RoleReader})
	assert.ErrorIs(t, err, service.ErrForbidden)

	p, err := svc.boards.AddParticipant(ctx, w.owner.ID, w.board.ID, service.ParticipantInput{Email: " OUTSIDER@example.com ", Role: model.RoleReader})
	require.NoError(t, err)
	assert.Equal(t, model.RoleReader, p.Role)
	assert.Equal(t, w.outsider.ID, p.UserID)

	_, err = svc.boards.Get(ctx, w.outsider.ID, w.board.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.boards.Delete(ctx, w.outsider.ID, w.board.ID), service.ErrForbidden)

	p, err = svc.boards.AddParticipant(ctx, w.owner.ID, w.board.ID, service.ParticipantInput{Email: w.outsider.Email, Role: model.RoleWriter})
	require.NoError(t, err)
	assert.Equal(t, model.RoleWriter, p.Role)

	participants, err := svc.boards.ListParticipants(ctx, w.reader.ID, w.board.ID)
	require.NoError(t, err)
	require.Len(t, participants, 4)
	assert.Equal(t, model.RoleOwner, participants[0].Role)

	require.NoError(t, svc.boards.RemoveParticipant(ctx, w.owner.ID, w.board.ID, w.outsider.ID))
	_, err = svc.boards.Get(ctx, w.outsider.ID, w.board.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = svc.boards.RemoveParticipant(ctx, w.owner.ID, w.board.ID, w.owner.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestBoardService_AddParticipantRejectsBadInput(t *testing.T) {
	svc, w, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input service.ParticipantInput
		field string
	}{
		{"unknown email", service.ParticipantInput{Email: "nobody@example.com", Role: model.RoleReader}, "email"},
		{"owner role", service.ParticipantInput{Email: w.outsider.Email, Role: model.RoleOwner}, "role"},
		{"malformed email", service.ParticipantInput{Email: "nope", Role: model.RoleReader}, "email"},
		{"self invite", service.ParticipantInput{Email: w.owner.Email, Role: model.RoleWriter}, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.boards.AddParticipant(ctx, w.owner.ID, w.board.ID, tt.input)

			var verr *service.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestCategoryService_DeleteCascadesToGoalsOnly(t *testing.T) {
	svc, w, f := setup(t)
	ctx := context.Background()

	require.NoError(t, svc.categories.Delete(ctx, w.reader.ID, w.c1.ID))

	assert.True(t, f.ReloadCategory(w.c1.ID).IsDeleted)
	assert.Equal(t, model.GoalStatusArchived, f.ReloadGoal(w.g1.ID).Status)
	assert.Equal(t, model.GoalStatusArchived, f.ReloadGoal(w.g2.ID).Status)

	assert.False(t, f.ReloadCategory(w.c2.ID).IsDeleted)
	assert.Equal(t, model.GoalStatusInProgress, f.ReloadGoal(w.g3.ID).Status)
	assert.False(t, f.ReloadBoard(w.board.ID).IsDeleted)

	assert.ErrorIs(t, svc.categories.Delete(ctx, w.writer.ID, w.c1.ID), service.ErrNotFound)
	require.NoError(t, svc.categories.Delete(ctx, w.owner.ID, w.c1.ID))
}

func TestCategoryService_Update(t *testing.T) {
	svc, w, f := setup(t)

	got, err := svc.categories.Update(context.Background(), w.writer.ID, w.c1.ID, service.UpdateCategoryInput{Title: "Icebox"})

	require.NoError(t, err)
	assert.Equal(t, "Icebox", got.Title)
	assert.Equal(t, "Icebox", f.ReloadCategory(w.c1.ID).Title)
}

func TestGoalService_CreateAndList(t *testing.T) {
	svc, w, _ := setup(t)
	ctx := context.Background()

	goal, err := svc.goals.Create(ctx, w.writer.ID, service.CreateGoalInput{
		CategoryID: w.c2.ID,
		Title:      "Alpha test",
		Priority:   model.GoalPriorityCritical,
	})
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusToDo, goal.Status)
	assert.Equal(t, w.writer.ID, goal.CreatedBy)

	goals, err := svc.goals.List(ctx, w.owner.ID, service.GoalQuery{
		Priorities: []model.GoalPriority{model.GoalPriorityCritical},
	})
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, goal.ID, goals[0].ID)

	_, err = svc.goals.List(ctx, w.owner.ID, service.GoalQuery{Statuses: []model.GoalStatus{model.GoalStatusArchived}})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestGoalService_ListRejectsUnknownFilterValues(t *testing.T) {
	svc, w, _ := setup(t)
	ctx := context.Background()

	_, err := svc.goals.List(ctx, w.owner.ID, service.GoalQuery{Statuses: []model.GoalStatus{model.GoalStatusToDo, "finished"}})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be one of: to_do in_progress done", verr.Fields["status"])

	_, err = svc.goals.List(ctx, w.owner.ID, service.GoalQuery{Priorities: []model.GoalPriority{"urgent"}})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be one of: low medium high critical", verr.Fields["priority"])
}

func TestGoalService_DeleteArchivesOnlyThatGoal(t *testing.T) {
	svc, w, f := setup(t)
	ctx := context.Background()

	require.NoError(t, svc.goals.Delete(ctx, w.writer.ID, w.g1.ID))

	assert.Equal(t, model.GoalStatusArchived, f.ReloadGoal(w.g1.ID).Status)
	assert.Equal(t, model.GoalStatusInProgress, f.ReloadGoal(w.g2.ID).Status)
	assert.False(t, f.ReloadCategory(w.c1.ID).IsDeleted)

	goals, err := svc.goals.List(ctx, w.writer.ID, service.GoalQuery{CategoryIDs: []uuid.UUID{w.c1.ID}})
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, w.g2.ID, goals[0].ID)

	_, err = svc.goals.Get(ctx, w.writer.ID, w.g1.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	got, err := svc.goals.Get(ctx, w.owner.ID, w.g1.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusArchived, got.Status)
}

func TestGoalService_MoveStaysOnBoard(t *testing.T) {
	svc, w, f := setup(t)
	ctx := context.Background()
	otherBoard := f.Board("Home", w.writer)
	foreign := f.Category("Chores", otherBoard, w.writer)

	_, err := svc.goals.Update(ctx, w.writer.ID, w.g1.ID, service.UpdateGoalInput{CategoryID: &foreign.ID})
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Equal(t, w.c1.ID, f.ReloadGoal(w.g1.ID).CategoryID)

	status := model.GoalStatusDone
	got, err := svc.goals.Update(ctx, w.writer.ID, w.g1.ID, service.UpdateGoalInput{CategoryID: &w.c2.ID, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, w.c2.ID, got.CategoryID)

	stored := f.ReloadGoal(w.g1.ID)
	assert.Equal(t, w.c2.ID, stored.CategoryID)
	assert.Equal(t, model.GoalStatusDone, stored.Status)
}

// сбой базы при поиске целевой категории не должен выглядеть как ошибка ввода
func TestGoalService_MoveSurfacesStorageFailure(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFixtures(t, db)
	w := seedWorld(f)
	svc := newServices(db)

	boom := errors.New("connection reset")
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:fail_categories", func(tx *gorm.DB) {
		if tx.Statement.Table == "categories" && len(tx.Statement.Joins) > 0 {
			_ = tx.AddError(boom)
		}
	}))
	t.Cleanup(func() { _ = db.Callback().Query().Remove("test:fail_categories") })

	_, err := svc.goals.Update(context.Background(), w.writer.ID, w.g1.ID, service.UpdateGoalInput{CategoryID: &w.c2.ID})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, service.ErrValidation)
	assert.NotErrorIs(t, err, service.ErrNotFound)
	assert.Equal(t, w.c1.ID, f.ReloadGoal(w.g1.ID).CategoryID)
}

func TestCommentService_Permissions(t *testing.T) {
	svc, w, f := setup(t)
	ctx := context.Background()

	byReader, err := svc.comments.Create(ctx, w.reader.ID, service.CreateCommentInput{GoalID: w.g1.ID, Text: "when?"})
	require.NoError(t, err)
	byWriter := f.Comment("tomorrow", w.g1, w.writer)
	other := f.Comment("ok", w.g1, w.writer)

	_, err = svc.comments.Update(ctx, w.owner.ID, byReader.ID, service.UpdateCommentInput{Text: "edited"})
	assert.ErrorIs(t, err, service.ErrForbidden)

	updated, err := svc.comments.Update(ctx, w.reader.ID, byReader.ID, service.UpdateCommentInput{Text: "when exactly?"})
	require.NoError(t, err)
	assert.Equal(t, "when exactly?", updated.Text)

	// non-author writer
	assert.ErrorIs(t, svc.comments.Delete(ctx, w.writer.ID, byReader.ID), service.ErrForbidden)
	assert.True(t, f.CommentExists(byReader.ID))

	// author
	require.NoError(t, svc.comments.Delete(ctx, w.writer.ID, byWriter.ID))
	assert.False(t, f.CommentExists(byWriter.ID))

	// board owner
	require.NoError(t, svc.comments.Delete(ctx, w.owner.ID, other.ID))
	assert.False(t, f.CommentExists(other.ID))
	require.NoError(t, svc.comments.Delete(ctx, w.owner.ID, byReader.ID))
	assert.False(t, f.CommentExists(byReader.ID))
}

func TestCommentService_RejectsArchivedGoal(t *testing.T) {
	svc, w, _ := setup(t)
	ctx := context.Background()
	require.NoError(t, svc.goals.Delete(ctx, w.owner.ID, w.g1.ID))

	_, err := svc.comments.Create(ctx, w.owner.ID, service.CreateCommentInput{GoalID: w.g1.ID, Text: "too late"})

	assert.ErrorIs(t, err, service.ErrNotFound)
}
