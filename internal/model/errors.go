package model

import "errors"

var (
	ErrInvalidItem       = errors.New("invalid item")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("quantity exceeds available stock")
	ErrInvalidAmount     = errors.New("amount must not be negative")
	ErrInsufficientFunds = errors.New("insufficient balance")

	// ErrInvariantViolation marks a programming error: something tried to drive
	// stock below zero. Correct validation makes it unreachable.
	ErrInvariantViolation = errors.New("invariant violation")
)
