package repositories

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the attempted write would violate a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
	// ErrSelfFollow indicates a user attempted to follow their own channel.
	ErrSelfFollow = errors.New("cannot follow own channel")
)
