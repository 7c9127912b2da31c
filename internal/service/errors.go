package service

import "errors"

// Domain errors. Handlers map these to HTTP statuses; everything else is a 500.
var (
	ErrValidation            = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrNotOwner              = errors.New("resource belongs to another user")
	ErrAlreadyCompleted      = errors.New("habit already completed for this date")
	ErrInsufficientLevel     = errors.New("level requirement not met")
	ErrInsufficientCurrency  = errors.New("insufficient currency")
	ErrSkillAlreadyUnlocked  = errors.New("skill already unlocked")
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrPaymentsNotConfigured = errors.New("payment gateway not configured")
	ErrNoPayablePenalties    = errors.New("no unpaid penalties matched the request")
)
