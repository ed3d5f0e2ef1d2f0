package models

import "errors"

// Common errors for backing store operations.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user already exists")

	ErrDuplicateJob = errors.New("job with identical arguments already queued")

	ErrIndexNotFound = errors.New("index not found")
)
