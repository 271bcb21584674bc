package domain

import "errors"

// Rejection taxonomy for transition requests. All are terminal for the
// request except ErrConcurrentModification, which callers may retry a
// bounded number of times. ErrInvariantViolation signals an internal
// defect and must never be swallowed.
var (
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrUnauthorizedActor      = errors.New("actor not authorized for transition")
	ErrMissingProof           = errors.New("required proof missing")
	ErrPaymentNotCompleted    = errors.New("rental fee payment not completed")
	ErrConcurrentModification = errors.New("rental modified concurrently")
	ErrInvariantViolation     = errors.New("financial invariant violated")

	ErrRentalNotFound  = errors.New("rental not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrSaleExists      = errors.New("sale record already exists for rental")
)
