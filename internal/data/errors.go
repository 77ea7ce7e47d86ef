package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrUserNotFound is returned when no admin user matches the lookup key.
	ErrUserNotFound = errors.New("admin user not found")
	// ErrRoleNotFound is returned when no role matches the given code.
	ErrRoleNotFound = errors.New("role not found")
)
