package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

// Board roles, strongest first.
const (
	RoleOwner  Role = "owner"
	RoleWriter Role = "writer"
	RoleReader Role = "reader"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleWriter, RoleReader:
		return true
	}
	return false
}

// BoardParticipant links a user to a board with a role. One row per (board, user).
type BoardParticipant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BoardID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_board_participants_board_user"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_board_participants_board_user;index"`
	Role      Role      `gorm:"type:varchar(16);not null;check:role IN ('owner', 'writer', 'reader')"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time

	Board Board `gorm:"foreignKey:BoardID"`
	User  User  `gorm:"foreignKey:UserID"`
}

func (p *BoardParticipant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
