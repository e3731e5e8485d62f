package repository

import "errors"

// Common repository errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrBoardNotFound       = errors.New("board not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrGoalNotFound        = errors.New("goal not found")
	ErrCommentNotFound     = errors.New("comment not found")

	// ErrDuplicate is returned when a unique constraint rejects a write
	ErrDuplicate = errors.New("duplicate record")

	// ErrCascadeFailed wraps any failure inside a soft-delete cascade; the transaction has been rolled back
	ErrCascadeFailed = errors.New("cascade delete failed")

	ErrInvalidOrdering = errors.New("invalid ordering")
)
