package booking

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/rims/internal/model"
)

func TestStoreErrorMatchesPersistence(t *testing.T) {
	cause := errors.New("driver: bad connection")
	err := storeErr("insert booking", cause)

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsTransient(err))
	assert.Equal(t, ErrPersistence, Kind(err))
	assert.Contains(t, err.Error(), "insert booking")
}

func TestStoreErrKeepsDomainKinds(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", ErrNotFound)
	assert.Same(t, wrapped, storeErr("find booking", wrapped))
	assert.Equal(t, ErrNotFound, Kind(wrapped))
	assert.False(t, IsTransient(wrapped))
	assert.Nil(t, storeErr("noop", nil))
	assert.Nil(t, Kind(errors.New("other")))
}

func TestValidateDates(t *testing.T) {
	today := time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)
	d := func(day int) time.Time { return time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC) }

	assert.NoError(t, ValidateDates(d(1), d(1), today))
	assert.NoError(t, ValidateDates(d(2), d(30), today))
	assert.ErrorIs(t, ValidateDates(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), d(2), today), ErrInvalidDateRange)
	assert.ErrorIs(t, ValidateDates(d(3), d(2), today), ErrInvalidDateRange)
}

func TestDateOfKeepsCalendarDay(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	late := time.Date(2025, 1, 10, 23, 45, 0, 0, ist)
	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), DateOf(late))
}

func TestRoundAmount(t *testing.T) {
	assert.Equal(t, "10.01", RoundAmount(decimal.RequireFromString("10.005")).StringFixed(2))
	assert.Equal(t, "9.99", RoundAmount(decimal.RequireFromString("9.9949")).StringFixed(2))
}

func TestPaymentStatusFor(t *testing.T) {
	assert.Equal(t, model.PaymentPaid, PaymentStatusFor(true))
	assert.Equal(t, model.PaymentPending, PaymentStatusFor(false))
}
