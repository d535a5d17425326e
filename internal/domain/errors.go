package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidDeadline = errors.New("invalid deadline")
	ErrColumnNotFound  = errors.New("column not found")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrNotAList        = errors.New("board is not a list")
	ErrCorruptBoard    = errors.New("corrupt board")
)
