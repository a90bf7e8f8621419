package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/rims/internal/model"
)

func house(name string) model.Property {
	return model.Property{Name: name, Type: model.TypeHouse, PricePerMonth: decimal.RequireFromString("900")}
}

func TestAddPropertySurvivesOpenTransaction(t *testing.T) {
	s := New()
	tx, err := s.Begin(context.Background())
	require.NoError(t, err)

	added := make(chan uint64, 1)
	go func() { added <- s.AddProperty(house("P1")) }()

	select {
	case <-added:
		t.Fatal("AddProperty returned while a transaction was open")
	case <-time.After(50 * time.Millisecond):
	}
	require.NoError(t, tx.Commit())

	id := <-added
	p, ok := s.Property(id)
	require.True(t, ok)
	assert.Equal(t, model.Available, p.AvailabilityStatus)
}

func TestDeletePropertySurvivesOpenTransaction(t *testing.T) {
	s := New()
	id := s.AddProperty(house("P1"))
	tx, err := s.Begin(context.Background())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.DeleteProperty(id)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, tx.Commit())
	<-done

	_, ok := s.Property(id)
	assert.False(t, ok)
}

func TestRollbackDiscardsWork(t *testing.T) {
	s := New()
	id := s.AddProperty(house("P1"))
	tx, err := s.Begin(context.Background())
	require.NoError(t, err)
	n, err := tx.Properties().SetStatus(context.Background(), id, model.Booked, model.Available)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, tx.Rollback())

	p, _ := s.Property(id)
	assert.Equal(t, model.Available, p.AvailabilityStatus)
	assert.ErrorIs(t, tx.Commit(), ErrTxDone)
}
