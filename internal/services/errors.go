package services

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("not allowed for this account")
	ErrInvalid          = errors.New("invalid input")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrBadCreds         = errors.New("invalid username or password")
	ErrDuplicateAccount = errors.New("username or email already registered")
	// ErrNoOp marks a request that left the order unchanged because it is
	// already in the requested terminal state.
	ErrNoOp = errors.New("nothing to change")
)
