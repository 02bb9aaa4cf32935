package order

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PreconditionError is a user-facing warning raised before any remote call.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

func precondition(format string, args ...any) error {
	return &PreconditionError{Message: fmt.Sprintf(format, args...)}
}

type ValidationError struct {
	Field   string
	Message string
	// Shortfall is set when a payment does not cover the total.
	Shortfall decimal.Decimal
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RemoteError wraps a failed backend call. The draft is unchanged when it is returned.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }
