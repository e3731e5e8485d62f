package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todolist/internal/model"
)

// Ordering is a whitelisted column plus direction.
type Ordering struct {
	Field string
	Desc  bool
}

// ParseOrdering reads "field" or "-field". An empty value yields def.
func ParseOrdering(raw string, allowed []string, def Ordering) (Ordering, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	o := Ordering{Field: raw}
	if strings.HasPrefix(raw, "-") {
		o = Ordering{Field: raw[1:], Desc: true}
	}
	for _, f := range allowed {
		if f == o.Field {
			return o, nil
		}
	}
	return Ordering{}, fmt.Errorf("%w: %q", ErrInvalidOrdering, raw)
}

var (
	BoardOrderings    = []string{"title", "created_at"}
	CategoryOrderings = []string{"title", "created_at"}
	GoalOrderings     = []string{"title", "created_at", "due_date", "priority"}
	CommentOrderings  = []string{"created_at"}

	DefaultBoardOrdering    = Ordering{Field: "title"}
	DefaultCategoryOrdering = Ordering{Field: "title"}
	DefaultGoalOrdering     = Ordering{Field: "title"}
	DefaultCommentOrdering  = Ordering{Field: "created_at", Desc: true}
)

type BoardFilter struct {
	Search   string
	Ordering Ordering
}

type CategoryFilter struct {
	BoardID  *uuid.UUID
	Search   string
	Ordering Ordering
}

// GoalFilter narrows a goal list. DueBefore and CreatedBefore are exclusive upper bounds;
// DueTo and CreatedTo are inclusive.
type GoalFilter struct {
	CategoryIDs   []uuid.UUID
	Statuses      []model.GoalStatus
	Priorities    []model.GoalPriority
	DueFrom       *time.Time
	DueTo         *time.Time
	DueBefore     *time.Time
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	CreatedBefore *time.Time
	Search        string
	Ordering      Ordering
}

type CommentFilter struct {
	GoalID   *uuid.UUID
	Ordering Ordering
}

// The scopes below join the participant row of the acting user. A missing row drops the
// entity from the result, so outsiders never learn it exists.

func boardsOf(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN board_participants ON board_participants.board_id = boards.id AND board_participants.user_id = ?", userID)
	}
}

func categoriesOf(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return boardsOf(userID)(db.Joins("JOIN boards ON boards.id = categories.board_id"))
	}
}

func goalsOf(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return categoriesOf(userID)(db.Joins("JOIN categories ON categories.id = goals.category_id"))
	}
}

func commentsOf(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return goalsOf(userID)(db.Joins("JOIN goals ON goals.id = comments.goal_id"))
	}
}

const (
	liveBoard    = "boards.is_deleted = false"
	liveCategory = liveBoard + " AND categories.is_deleted = false"
	liveGoal     = liveCategory + " AND goals.status <> 'archived'"
)

// live keeps only entities whose whole ownership chain is active.
func live(predicate string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(predicate)
	}
}

// liveOrOwned additionally lets the board owner see tombstoned entities.
func liveOrOwned(predicate string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("("+predicate+") OR board_participants.role = ?", model.RoleOwner)
	}
}

// goalPriorityRank sorts priorities by level rather than by their stored names.
const goalPriorityRank = "CASE goals.priority WHEN 'low' THEN 0 WHEN 'medium' THEN 1 WHEN 'high' THEN 2 WHEN 'critical' THEN 3 END"

func orderBy(table string, o Ordering) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if table == "goals" && o.Field == "priority" {
			expr := goalPriorityRank
			if o.Desc {
				expr += " DESC"
			}
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: expr, Raw: true}})
		} else {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Table: table, Name: o.Field}, Desc: o.Desc})
		}
		return db.Order(clause.OrderByColumn{Column: clause.Column{Table: table, Name: "id"}})
	}
}

func search(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" {
			return db
		}
		pattern := "%" + strings.ToLower(term) + "%"
		conds := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			conds[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = pattern
		}
		return db.Where(strings.Join(conds, " OR "), args...)
	}
}
