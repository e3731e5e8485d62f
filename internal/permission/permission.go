// Package permission holds the board-role rule table. It does no I/O: callers resolve the
// acting user's role on the owning board and describe the target, then ask Authorize.
package permission

import (
	"github.com/google/uuid"

	"todolist/internal/model"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Resource string

const (
	ResourceBoard      Resource = "board"
	ResourceMembership Resource = "membership"
	ResourceCategory   Resource = "category"
	ResourceGoal       Resource = "goal"
	ResourceComment    Resource = "comment"
)

// Reason explains a denial. ReasonNotVisible must be reported to clients as "not found".
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonNotVisible Reason = "not_visible"
	ReasonRole       Reason = "insufficient_role"
	ReasonNotAuthor  Reason = "not_author"
)

type Decision struct {
	Allowed bool
	Reason  Reason
}

func permit() Decision { return Decision{Allowed: true} }

func deny(r Reason) Decision { return Decision{Reason: r} }

// Subject describes the target entity. Tombstoned is true when the entity itself or any
// ancestor is soft-deleted (or, for goals, archived).
type Subject struct {
	Resource   Resource
	AuthorID   uuid.UUID
	Tombstoned bool
}

// Authorize decides whether actor, holding role on the owning board, may perform action on
// subject. An empty role means the actor does not participate in the board.
func Authorize(actor uuid.UUID, role model.Role, action Action, s Subject) Decision {
	if s.Resource == ResourceBoard && action == ActionCreate {
		return permit()
	}
	if !role.Valid() {
		return deny(ReasonNotVisible)
	}
	// Tombstones stay readable and re-deletable by the owner only. Nobody writes under them.
	if s.Tombstoned && (role != model.RoleOwner || action == ActionCreate || action == ActionUpdate) {
		return deny(ReasonNotVisible)
	}
	if action == ActionRead {
		return permit()
	}

	switch s.Resource {
	case ResourceBoard:
		if action == ActionDelete {
			return ownerOnly(role)
		}
		return permit()
	case ResourceMembership:
		return ownerOnly(role)
	case ResourceCategory, ResourceGoal:
		return permit()
	case ResourceComment:
		switch action {
		case ActionCreate:
			return permit()
		case ActionUpdate:
			return authorOnly(actor, s.AuthorID)
		case ActionDelete:
			if role == model.RoleOwner {
				return permit()
			}
			return authorOnly(actor, s.AuthorID)
		}
	}
	return deny(ReasonRole)
}

func ownerOnly(role model.Role) Decision {
	if role == model.RoleOwner {
		return permit()
	}
	return deny(ReasonRole)
}

func authorOnly(actor, author uuid.UUID) Decision {
	if author != uuid.Nil && actor == author {
		return permit()
	}
	return deny(ReasonNotAuthor)
}
