package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/rims/internal/model"
)

// BookingRepo provides persistence for bookings. Stay dates are stored
// as DATE columns; all time values are UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const dateLayout = "2006-01-02"

const bookingColumns = `booking_id, user_id, property_id, start_date, end_date, status`

// CreateTx inserts b and populates its generated ID.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO booking (user_id, property_id, start_date, end_date, status) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.UserID, b.PropertyID, b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout), b.Status)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetForUserTx locks and returns the booking only when it belongs to
// userID. Anything else is sql.ErrNoRows.
func (r *BookingRepo) GetForUserTx(ctx context.Context, tx *sql.Tx, bookingID, userID uint64) (model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM booking WHERE booking_id = ? AND user_id = ? FOR UPDATE`
	return scanBooking(tx.QueryRowContext(ctx, q, bookingID, userID))
}

// GetTx locks and returns any booking by id.
func (r *BookingRepo) GetTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM booking WHERE booking_id = ? FOR UPDATE`
	return scanBooking(tx.QueryRowContext(ctx, q, bookingID))
}

// UpdateStatusTx sets the lifecycle status of a booking.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, bookingID uint64, status model.BookingStatus) (int64, error) {
	res, err := tx.ExecContext(ctx, `UPDATE booking SET status = ? WHERE booking_id = ?`, status, bookingID)
	if err != nil {
		return 0, classify(err)
	}
	return res.RowsAffected()
}

func scanBooking(row rowScanner) (model.Booking, error) {
	var b model.Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.PropertyID, &b.StartDate, &b.EndDate, &b.Status); err != nil {
		return model.Booking{}, classify(err)
	}
	return b, nil
}

// Property names come through a LEFT JOIN: a booking may outlive the
// property it referenced.
const summarySelect = `SELECT b.booking_id, b.user_id, b.property_id, b.start_date, b.end_date, b.status,
       COALESCE(p.name, ''), COALESCE(u.name, '')
  FROM booking b
  LEFT JOIN property p ON p.property_id = b.property_id
  LEFT JOIN users u ON u.id = b.user_id`

func (r *BookingRepo) listSummaries(ctx context.Context, q string, args ...any) ([]model.BookingSummary, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BookingSummary, 0)
	for rows.Next() {
		var s model.BookingSummary
		if err := rows.Scan(&s.ID, &s.UserID, &s.PropertyID, &s.StartDate, &s.EndDate, &s.Status,
			&s.PropertyName, &s.UserName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUser returns every booking made by userID, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.BookingSummary, error) {
	return r.listSummaries(ctx, summarySelect+` WHERE b.user_id = ? ORDER BY b.booking_id DESC`, userID)
}

// ListPreviousByUser returns the user's Cancelled and Completed bookings.
func (r *BookingRepo) ListPreviousByUser(ctx context.Context, userID uint64) ([]model.BookingSummary, error) {
	return r.listSummaries(ctx,
		summarySelect+` WHERE b.user_id = ? AND b.status IN (?, ?) ORDER BY b.booking_id DESC`,
		userID, model.BookingCancelled, model.BookingCompleted)
}

// ListAll returns every booking for the owner view, optionally filtered
// by status.
func (r *BookingRepo) ListAll(ctx context.Context, status model.BookingStatus) ([]model.BookingSummary, error) {
	if status != "" {
		return r.listSummaries(ctx, summarySelect+` WHERE b.status = ? ORDER BY b.booking_id DESC`, status)
	}
	return r.listSummaries(ctx, summarySelect+` ORDER BY b.booking_id DESC`)
}
