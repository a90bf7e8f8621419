package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/rims/internal/model"
	"github.com/iliyamo/rims/internal/repository"
)

func TestPaymentsByBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	paid := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(q("FROM payment WHERE booking_id = ? ORDER BY payment_id")).WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id", "booking_id", "amount", "method", "status", "date"}).
			AddRow(3, 11, "1500.00", "Card", "Paid", paid))

	got, err := repository.NewPaymentRepo(db).ListByBooking(context.Background(), 11)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.PaymentPaid, got[0].Status)
	assert.Equal(t, "1500.00", got[0].Amount.StringFixed(2))
	assert.True(t, paid.Equal(got[0].Date))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResidentsByProperty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(q("SELECT user_id FROM resident WHERE property_id = ? ORDER BY user_id")).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7).AddRow(9))
	mock.ExpectQuery(q("SELECT user_id FROM resident")).WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	repo := repository.NewResidentRepo(db)
	ids, err := repo.ListByProperty(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{7, 9}, ids)

	ids, err = repo.ListByProperty(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotNil(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(q("FROM users WHERE id=? LIMIT 1")).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "phone", "role", "created_at"}).
			AddRow(4, "Olga", "olga@example.com", "hash", nil, "OWNER", created))

	u, err := repository.NewUserRepo(db).GetByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "olga@example.com", u.Email)
	assert.Empty(t, u.Phone)
	assert.Equal(t, model.RoleOwner, u.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}
