package service

import (
	"context"

	"github.com/google/uuid"

	"todolist/internal/permission"
)

// guard resolves the actor's board role and runs it through the permission table.
type guard struct {
	roles RoleSource
}

func (g guard) require(ctx context.Context, actor, boardID uuid.UUID, action permission.Action, subject permission.Subject) error {
	role, err := g.roles.GetRole(ctx, boardID, actor)
	if err != nil {
		return err
	}
	return denied(permission.Authorize(actor, role, action, subject))
}
