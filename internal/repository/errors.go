package repository

import "errors"

// Sentinel errors shared by all store backends. The HTTP and service layers
// match on these with errors.Is instead of inspecting messages.
var (
	// ErrUserExists signals a duplicate email at registration.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound signals a lookup miss by email or id.
	ErrUserNotFound = errors.New("user not found")
	// ErrExpenseNotFound signals a delete target that is absent or owned by
	// another user; the two cases are deliberately indistinguishable.
	ErrExpenseNotFound = errors.New("expense not found")
)
