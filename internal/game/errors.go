package game

import "errors"

// Failure taxonomy shared by the validator, the guard, the engines and the
// casino service. Every error returned to the command boundary wraps one
// of these.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrBetOutOfRange     = errors.New("bet out of range")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoActiveSession   = errors.New("no active session")
	ErrRateLimited       = errors.New("rate limited")
	ErrIntegrityHold     = errors.New("integrity hold")
	ErrInternal          = errors.New("internal failure")
)
