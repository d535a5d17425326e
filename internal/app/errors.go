package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound    = errors.New("not found")
	ErrIDExhausted = errors.New("could not allocate a unique id")
)
