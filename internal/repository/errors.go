// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. MySQL
// driver errors are classified once, here, so callers never inspect
// server error numbers themselves.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrConflict is returned when an update or delete cannot be
// performed because of conflicting state, such as deleting or
// re-labelling a property that is currently Booked. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when an insert violates a unique key, e.g. a
// second account with the same email.
var ErrDuplicate = errors.New("duplicate entry")

// ErrLockConflict is returned when the server aborted the statement
// because of a deadlock or a lock wait timeout. Retrying the whole
// transaction may succeed.
var ErrLockConflict = errors.New("lock conflict")

// MySQL server error numbers we classify.
const (
	erDupEntry        = 1062
	erLockWaitTimeout = 1205
	erLockDeadlock    = 1213
)

// classify tags known MySQL errors with a sentinel while keeping the
// driver error in the chain.
func classify(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case erDupEntry:
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	case erLockWaitTimeout, erLockDeadlock:
		return fmt.Errorf("%w: %w", ErrLockConflict, err)
	}
	return err
}
