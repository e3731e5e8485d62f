package permission_test

import (
	"testing"

	"todolist/internal/model"
	"todolist/internal/permission"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize_RuleTable(t *testing.T) {
	actor := uuid.New()
	other := uuid.New()

	tests := []struct {
		name     string
		role     model.Role
		action   permission.Action
		subject  permission.Subject
		expected permission.Decision
	}{
		{"board create needs no role", "", permission.ActionCreate, permission.Subject{Resource: permission.ResourceBoard}, permission.Decision{Allowed: true}},
		{"board read by reader", model.RoleReader, permission.ActionRead, permission.Subject{Resource: permission.ResourceBoard}, permission.Decision{Allowed: true}},
		{"board read by outsider", "", permission.ActionRead, permission.Subject{Resource: permission.ResourceBoard}, permission.Decision{Reason: permission.ReasonNotVisible}},
		{"board update by writer", model.RoleWriter, permission.ActionUpdate, permission.Subject{Resource: permission.ResourceBoard}, permission.Decision{Allowed: true}},
		{"board delete by writer", model.RoleWriter, permission.ActionDelete, permission.Subject{Resource: permission.ResourceBoard}, permission.Decision{Reason: permission.ReasonRole}},
		{"board delete by owner", model.RoleOwner, permission.ActionDelete, permission.Subject{Resource: permission.ResourceBoard}, permission.Decision{Allowed: true}},
		{"deleted board hidden from reader", model.RoleReader, permission.ActionRead, permission.Subject{Resource: permission.ResourceBoard, Tombstoned: true}, permission.Decision{Reason: permission.ReasonNotVisible}},
		{"deleted board visible to owner", model.RoleOwner, permission.ActionDelete, permission.Subject{Resource: permission.ResourceBoard, Tombstoned: true}, permission.Decision{Allowed: true}},
		{"deleted board not editable by owner", model.RoleOwner, permission.ActionUpdate, permission.Subject{Resource: permission.ResourceBoard, Tombstoned: true}, permission.Decision{Reason: permission.ReasonNotVisible}},
		{"no categories on deleted board", model.RoleOwner, permission.ActionCreate, permission.Subject{Resource: permission.ResourceCategory, Tombstoned: true}, permission.Decision{Reason: permission.ReasonNotVisible}},
		{"membership change by writer", model.RoleWriter, permission.ActionCreate, permission.Subject{Resource: permission.ResourceMembership}, permission.Decision{Reason: permission.ReasonRole}},
		{"membership list by reader", model.RoleReader, permission.ActionRead, permission.Subject{Resource: permission.ResourceMembership}, permission.Decision{Allowed: true}},
		{"category create by reader", model.RoleReader, permission.ActionCreate, permission.Subject{Resource: permission.ResourceCategory}, permission.Decision{Allowed: true}},
		{"category create by outsider", "", permission.ActionCreate, permission.Subject{Resource: permission.ResourceCategory}, permission.Decision{Reason: permission.ReasonNotVisible}},
		{"category delete by writer", model.RoleWriter, permission.ActionDelete, permission.Subject{Resource: permission.ResourceCategory}, permission.Decision{Allowed: true}},
		{"category under deleted board for writer", model.RoleWriter, permission.ActionUpdate, permission.Subject{Resource: permission.ResourceCategory, Tombstoned: true}, permission.Decision{Reason: permission.ReasonNotVisible}},
		{"goal update by reader", model.RoleReader, permission.ActionUpdate, permission.Subject{Resource: permission.ResourceGoal, AuthorID: other}, permission.Decision{Allowed: true}},
		{"archived goal for owner", model.RoleOwner, permission.ActionDelete, permission.Subject{Resource: permission.ResourceGoal, Tombstoned: true}, permission.Decision{Allowed: true}},
		{"comment update by author", model.RoleReader, permission.ActionUpdate, permission.Subject{Resource: permission.ResourceComment, AuthorID: actor}, permission.Decision{Allowed: true}},
		{"comment update by owner not author", model.RoleOwner, permission.ActionUpdate, permission.Subject{Resource: permission.ResourceComment, AuthorID: other}, permission.Decision{Reason: permission.ReasonNotAuthor}},
		{"comment delete by owner not author", model.RoleOwner, permission.ActionDelete, permission.Subject{Resource: permission.ResourceComment, AuthorID: other}, permission.Decision{Allowed: true}},
		{"comment delete by writer not author", model.RoleWriter, permission.ActionDelete, permission.Subject{Resource: permission.ResourceComment, AuthorID: other}, permission.Decision{Reason: permission.ReasonNotAuthor}},
		{"comment delete by author", model.RoleWriter, permission.ActionDelete, permission.Subject{Resource: permission.ResourceComment, AuthorID: actor}, permission.Decision{Allowed: true}},
		{"comment read by outsider", "", permission.ActionRead, permission.Subject{Resource: permission.ResourceComment, AuthorID: actor}, permission.Decision{Reason: permission.ReasonNotVisible}},
		{"unknown role", model.Role("admin"), permission.ActionRead, permission.Subject{Resource: permission.ResourceGoal}, permission.Decision{Reason: permission.ReasonNotVisible}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := permission.Authorize(actor, tt.role, tt.action, tt.subject)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAuthorize_NilAuthorNeverMatches(t *testing.T) {
	d := permission.Authorize(uuid.Nil, model.RoleWriter, permission.ActionUpdate,
		permission.Subject{Resource: permission.ResourceComment})
	assert.False(t, d.Allowed)
	assert.Equal(t, permission.ReasonNotAuthor, d.Reason)
}
