package approval

import "errors"

var (
	// ErrNotFound is returned when no approval item exists for the given id
	ErrNotFound = errors.New("approval item not found")

	// ErrInvalidState is returned when a decision is attempted on a non-pending item
	ErrInvalidState = errors.New("approval item is not pending")

	// ErrMissingReason is returned when a rejection carries an empty reason
	ErrMissingReason = errors.New("rejection reason is required")

	// ErrInvalidAmount is returned when a negative amount is submitted
	ErrInvalidAmount = errors.New("amount must be non-negative")

	// ErrBusy is returned when another mutation is already in flight for the id
	ErrBusy = errors.New("approval item is being processed")
)

// ErrorKind returns the short taxonomy name for a domain error,
// used by bulk results and the HTTP layer
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidState):
		return "INVALID_STATE"
	case errors.Is(err, ErrMissingReason):
		return "MISSING_REASON"
	case errors.Is(err, ErrInvalidAmount):
		return "INVALID_AMOUNT"
	case errors.Is(err, ErrBusy):
		return "BUSY"
	default:
		return "INTERNAL"
	}
}
