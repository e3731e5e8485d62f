// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"todolist/internal/model"
)

// NewDB returns a migrated in-memory sqlite database. A single connection keeps every
// statement, transactional or not, on the same in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// Fixtures creates rows directly, bypassing services and permission checks.
type Fixtures struct {
	t  *testing.T
	db *gorm.DB
}

func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) User(username string) *model.User {
	f.t.Helper()
	u := &model.User{
		Username:       username,
		Email:          username + "@example.com",
		DisplayName:    username,
		HashedPassword: "x",
	}
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

// Board creates a board owned by owner.
func (f *Fixtures) Board(title string, owner *model.User) *model.Board {
	f.t.Helper()
	b := &model.Board{Title: title}
	require.NoError(f.t, f.db.Omit("Participants").Create(b).Error)
	f.Participant(b, owner, model.RoleOwner)
	return b
}

func (f *Fixtures) Participant(b *model.Board, u *model.User, role model.Role) {
	f.t.Helper()
	p := &model.BoardParticipant{BoardID: b.ID, UserID: u.ID, Role: role}
	require.NoError(f.t, f.db.Omit("Board", "User").Create(p).Error)
}

func (f *Fixtures) Category(title string, b *model.Board, author *model.User) *model.Category {
	f.t.Helper()
	c := &model.Category{Title: title, BoardID: b.ID, CreatedBy: author.ID}
	require.NoError(f.t, f.db.Omit("Board", "Creator").Create(c).Error)
	return c
}

func (f *Fixtures) Goal(title string, c *model.Category, author *model.User) *model.Goal {
	f.t.Helper()
	g := &model.Goal{Title: title, CategoryID: c.ID, CreatedBy: author.ID, Status: model.GoalStatusInProgress}
	require.NoError(f.t, f.db.Omit("Category", "Creator").Create(g).Error)
	return g
}

func (f *Fixtures) Comment(text string, g *model.Goal, author *model.User) *model.Comment {
	f.t.Helper()
	c := &model.Comment{Text: text, GoalID: g.ID, CreatedBy: author.ID}
	require.NoError(f.t, f.db.Omit("Goal", "Author").Create(c).Error)
	return c
}

// Reload helpers read the stored state without any visibility filtering.

func (f *Fixtures) ReloadBoard(id uuid.UUID) model.Board {
	f.t.Helper()
	var b model.Board
	require.NoError(f.t, f.db.WithContext(context.Background()).First(&b, "id = ?", id).Error)
	return b
}

func (f *Fixtures) ReloadCategory(id uuid.UUID) model.Category {
	f.t.Helper()
	var c model.Category
	require.NoError(f.t, f.db.First(&c, "id = ?", id).Error)
	return c
}

func (f *Fixtures) ReloadGoal(id uuid.UUID) model.Goal {
	f.t.Helper()
	var g model.Goal
	require.NoError(f.t, f.db.First(&g, "id = ?", id).Error)
	return g
}

func (f *Fixtures) CommentExists(id uuid.UUID) bool {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.db.Model(&model.Comment{}).Where("id = ?", id).Count(&n).Error)
	return n > 0
}
