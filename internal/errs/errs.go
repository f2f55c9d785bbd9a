// Package errs holds the error taxonomy shared by services and handlers.
// Services wrap these sentinels with context; handlers map them to HTTP
// statuses with errors.Is.
package errs

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrNotOwned         = errors.New("resource belongs to another user")
	ErrInvalidState     = errors.New("invalid state transition")
	ErrAlreadyCompleted = errors.New("already completed")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrGateway          = errors.New("gateway unavailable")
	ErrConflict         = errors.New("concurrent update conflict")
)
