package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/rims/internal/booking"
	"github.com/iliyamo/rims/internal/repository"
)

var fixedNow = time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)

func newCoordinator(t *testing.T) (*booking.Coordinator, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	c := booking.NewCoordinator(repository.NewStore(db, sql.LevelDefault), booking.Config{
		Clock: booking.ClockFunc(func() time.Time { return fixedNow }),
	}, nil)
	return c, mock
}

func bookRequest() booking.BookRequest {
	return booking.BookRequest{
		UserID:        7,
		PropertyID:    1,
		StartDate:     time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		PaymentMethod: "Card",
		Verified:      true,
	}
}

const (
	lockProperty   = "SELECT availability_status, price_per_month FROM property WHERE property_id = ? FOR UPDATE"
	insertBooking  = "INSERT INTO booking (user_id, property_id, start_date, end_date, status) VALUES (?, ?, ?, ?, ?)"
	markBooked     = "UPDATE property SET availability_status = ? WHERE property_id = ? AND availability_status = ?"
	insertResident = "INSERT INTO resident (user_id, property_id) VALUES (?, ?)"
	insertPayment  = "INSERT INTO payment (booking_id, amount, method, status, date) VALUES (?, ?, ?, ?, ?)"
)

func q(s string) string { return regexp.QuoteMeta(s) }

func TestStoreBookCommitsAllSteps(t *testing.T) {
	c, mock := newCoordinator(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q(lockProperty)).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"availability_status", "price_per_month"}).AddRow("Available", "1500.00"))
	mock.ExpectExec(q(insertBooking)).WithArgs(7, 1, "2025-01-10", "2025-06-10", "Active").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(q(markBooked)).WithArgs("Booked", 1, "Available").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(insertResident)).WithArgs(7, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(insertPayment)).WithArgs(42, "1500.00", "Card", "Paid", "2025-01-05").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()

	res, err := c.Book(context.Background(), bookRequest())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), res.BookingID)
	assert.Equal(t, "1500", res.Amount.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreMissingPropertyIsNotFound(t *testing.T) {
	c, mock := newCoordinator(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q(lockProperty)).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"availability_status", "price_per_month"}))
	mock.ExpectRollback()

	_, err := c.Book(context.Background(), bookRequest())
	assert.ErrorIs(t, err, booking.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreLostRaceIsUnavailable(t *testing.T) {
	c, mock := newCoordinator(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q(lockProperty)).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"availability_status", "price_per_month"}).AddRow("Available", "900.00"))
	mock.ExpectExec(q(insertBooking)).WillReturnResult(sqlmock.NewResult(43, 1))
	mock.ExpectExec(q(markBooked)).WithArgs("Booked", 1, "Available").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := c.Book(context.Background(), bookRequest())
	assert.ErrorIs(t, err, booking.ErrPropertyUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreDuplicateResidentRollsBack(t *testing.T) {
	c, mock := newCoordinator(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q(lockProperty)).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"availability_status", "price_per_month"}).AddRow("Available", "900.00"))
	mock.ExpectExec(q(insertBooking)).WillReturnResult(sqlmock.NewResult(44, 1))
	mock.ExpectExec(q(markBooked)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(insertResident)).WithArgs(7, 1).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '7-1' for key 'PRIMARY'"})
	mock.ExpectRollback()

	_, err := c.Book(context.Background(), bookRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, booking.ErrPersistence)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	var se *booking.StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "add resident", se.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreDeadlockIsTransient(t *testing.T) {
	c, mock := newCoordinator(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q(lockProperty)).WithArgs(1).
		WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"})
	mock.ExpectRollback()

	_, err := c.Book(context.Background(), bookRequest())
	assert.True(t, booking.IsTransient(err))
	assert.ErrorIs(t, err, repository.ErrLockConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreCancelFlow(t *testing.T) {
	c, mock := newCoordinator(t)

	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT booking_id, user_id, property_id, start_date, end_date, status FROM booking WHERE booking_id = ? AND user_id = ? FOR UPDATE")).
		WithArgs(42, 7).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "user_id", "property_id", "start_date", "end_date", "status"}).
			AddRow(42, 7, 1, start, end, "Active"))
	mock.ExpectExec(q("UPDATE booking SET status = ? WHERE booking_id = ?")).WithArgs("Cancelled", 42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM resident WHERE user_id = ? AND property_id = ?")).WithArgs(7, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE property SET availability_status = ? WHERE property_id = ?")).WithArgs("Available", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, c.Cancel(context.Background(), 42, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreCancelForeignBookingIsNotFound(t *testing.T) {
	c, mock := newCoordinator(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM booking WHERE booking_id = ? AND user_id = ? FOR UPDATE")).WithArgs(42, 8).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "user_id", "property_id", "start_date", "end_date", "status"}))
	mock.ExpectRollback()

	assert.ErrorIs(t, c.Cancel(context.Background(), 42, 8), booking.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
