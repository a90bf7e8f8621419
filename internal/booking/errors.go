package booking

import (
	"errors"
	"fmt"
)

// Error kinds returned by the engine. Callers compare with errors.Is; the
// messages are meant to be shown to the end user as they are.
var (
	// ErrNotFound means the property or booking does not exist, or the
	// booking belongs to another user.
	ErrNotFound = errors.New("not found")

	// ErrPropertyUnavailable means the property was not Available when the
	// booking workflow tried to reserve it, including lost races.
	ErrPropertyUnavailable = errors.New("property not available")

	// ErrInvalidDateRange means the start date is in the past or the end
	// date is before the start date.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrAlreadyCancelled is returned when cancelling a booking that is
	// already Cancelled. Cancellation is not idempotent.
	ErrAlreadyCancelled = errors.New("booking already cancelled")

	// ErrAlreadyCompleted is returned when a tenant tries to cancel a
	// booking an owner has already marked Completed.
	ErrAlreadyCompleted = errors.New("booking already completed")

	// ErrInvalidTransition is returned by administrative status changes
	// that do not start from Active.
	ErrInvalidTransition = errors.New("invalid booking status transition")

	// ErrPersistence is the kind of every store-level failure. It is the
	// only kind worth retrying.
	ErrPersistence = errors.New("persistence error")
)

// StoreError wraps a failure reported by the store during a named step of
// a workflow. It matches ErrPersistence and unwraps to the driver error.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrPersistence) hold for every StoreError.
func (e *StoreError) Is(target error) bool { return target == ErrPersistence }

// IsTransient reports whether err may succeed if the whole workflow is
// retried from the start.
func IsTransient(err error) bool {
	return errors.Is(err, ErrPersistence)
}

var kinds = []error{
	ErrNotFound,
	ErrPropertyUnavailable,
	ErrInvalidDateRange,
	ErrAlreadyCancelled,
	ErrAlreadyCompleted,
	ErrInvalidTransition,
	ErrPersistence,
}

// Kind returns the sentinel err belongs to, or nil if it is none of them.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// storeErr classifies err for the step op. Domain kinds pass through; any
// other failure becomes a StoreError.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) != nil {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
