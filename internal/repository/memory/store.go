// Package memory is an in-process booking.Store. Transactions are
// serialised: Begin waits until no other transaction is open, mutations go
// to a private copy of the data, and Commit publishes that copy.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/iliyamo/rims/internal/booking"
	"github.com/iliyamo/rims/internal/model"
)

// ErrTxDone is returned by operations on a finished transaction.
var ErrTxDone = errors.New("memory: transaction already committed or rolled back")

// Operation names accepted by FailOn.
const (
	OpPropertySetStatus = "property.set_status"
	OpBookingInsert     = "booking.insert"
	OpBookingSetStatus  = "booking.set_status"
	OpResidentAdd       = "resident.add"
	OpResidentRemove    = "resident.remove"
	OpPaymentInsert     = "payment.insert"
	OpCommit            = "commit"
)

type data struct {
	properties  map[uint64]model.Property
	bookings    map[uint64]model.Booking
	residents   map[model.Resident]struct{}
	payments    map[uint64]model.Payment
	nextBooking uint64
	nextPayment uint64
}

func newData() *data {
	return &data{
		properties: map[uint64]model.Property{},
		bookings:   map[uint64]model.Booking{},
		residents:  map[model.Resident]struct{}{},
		payments:   map[uint64]model.Payment{},
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.properties {
		c.properties[k] = v
	}
	for k, v := range d.bookings {
		c.bookings[k] = v
	}
	for k := range d.residents {
		c.residents[k] = struct{}{}
	}
	for k, v := range d.payments {
		c.payments[k] = v
	}
	c.nextBooking, c.nextPayment = d.nextBooking, d.nextPayment
	return c
}

// Store keeps properties, bookings, residents and payments in memory.
type Store struct {
	sem chan struct{}

	mu           sync.Mutex
	cur          *data
	nextProperty uint64
	failures     map[string]error
}

// New returns an empty Store.
func New() *Store {
	return &Store{sem: make(chan struct{}, 1), cur: newData(), failures: map[string]error{}}
}

// FailOn makes the named operation return err in every later transaction
// until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[op]
}

// Begin blocks until no other transaction is open or ctx is done.
func (s *Store) Begin(ctx context.Context) (booking.Tx, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.mu.Lock()
	work := s.cur.clone()
	s.mu.Unlock()
	return &Tx{store: s, work: work}, nil
}

// outside applies f to the committed data. It waits for an open
// transaction to finish so the change cannot be overwritten by its commit.
func (s *Store) outside(f func(d *data)) {
	s.sem <- struct{}{}
	defer func() { <-s.sem }()
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s.cur)
}

// AddProperty stores p outside any transaction and returns its id. It
// blocks while a transaction is open.
func (s *Store) AddProperty(p model.Property) uint64 {
	s.outside(func(d *data) {
		s.nextProperty++
		p.ID = s.nextProperty
		if p.AvailabilityStatus == "" {
			p.AvailabilityStatus = model.Available
		}
		d.properties[p.ID] = p
	})
	return p.ID
}

// DeleteProperty removes a property the way an owner's delete would,
// leaving its bookings in place. It blocks while a transaction is open.
func (s *Store) DeleteProperty(id uint64) {
	s.outside(func(d *data) { delete(d.properties, id) })
}

// Property returns the committed state of one property.
func (s *Store) Property(id uint64) (model.Property, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.cur.properties[id]
	return p, ok
}

// Bookings returns committed bookings ordered by id.
func (s *Store) Bookings() []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Booking, 0, len(s.cur.bookings))
	for _, b := range s.cur.bookings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// HasResident reports whether the committed roster links user and property.
func (s *Store) HasResident(userID, propertyID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cur.residents[model.Resident{UserID: userID, PropertyID: propertyID}]
	return ok
}

// Residents returns the number of committed roster rows.
func (s *Store) Residents() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cur.residents)
}

// Payments returns committed payments ordered by id.
func (s *Store) Payments() []model.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Payment, 0, len(s.cur.payments))
	for _, p := range s.cur.payments {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListByProperty returns the committed resident user ids of a property in
// ascending order.
func (s *Store) ListByProperty(_ context.Context, propertyID uint64) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint64, 0)
	for r := range s.cur.residents {
		if r.PropertyID == propertyID {
			ids = append(ids, r.UserID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ListByBooking returns the committed payments of a booking ordered by id.
func (s *Store) ListByBooking(_ context.Context, bookingID uint64) ([]model.Payment, error) {
	out := make([]model.Payment, 0)
	for _, p := range s.Payments() {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Tx is a booking.Tx over a private copy of the store's data.
type Tx struct {
	store *Store
	work  *data
	done  bool
}

func (t *Tx) Properties() booking.PropertyStore { return propertyTx{t} }
func (t *Tx) Bookings() booking.BookingStore    { return bookingTx{t} }
func (t *Tx) Residents() booking.ResidentStore  { return residentTx{t} }
func (t *Tx) Payments() booking.PaymentStore    { return paymentTx{t} }

func (t *Tx) check(op string) error {
	if t.done {
		return ErrTxDone
	}
	if op != "" {
		return t.store.failure(op)
	}
	return nil
}

// Commit publishes the transaction's changes.
func (t *Tx) Commit() error {
	if err := t.check(OpCommit); err != nil {
		return err
	}
	t.store.mu.Lock()
	t.store.cur = t.work
	t.store.mu.Unlock()
	t.finish()
	return nil
}

// Rollback discards the transaction's changes. It is a no-op once the
// transaction has finished.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.work = nil
	<-t.store.sem
}

type propertyTx struct{ t *Tx }

func (p propertyTx) Availability(ctx context.Context, id uint64) (model.Availability, error) {
	if err := p.t.check(""); err != nil {
		return model.Availability{}, err
	}
	prop, ok := p.t.work.properties[id]
	if !ok {
		return model.Availability{}, booking.ErrNotFound
	}
	return model.Availability{PropertyID: id, Status: prop.AvailabilityStatus, Price: prop.PricePerMonth}, nil
}

// LockAvailability needs no extra locking: the transaction already holds
// the whole store.
func (p propertyTx) LockAvailability(ctx context.Context, id uint64) (model.Availability, error) {
	return p.Availability(ctx, id)
}

func (p propertyTx) SetStatus(ctx context.Context, id uint64, status, from model.AvailabilityStatus) (int64, error) {
	if err := p.t.check(OpPropertySetStatus); err != nil {
		return 0, err
	}
	prop, ok := p.t.work.properties[id]
	if !ok || (from != "" && prop.AvailabilityStatus != from) {
		return 0, nil
	}
	prop.AvailabilityStatus = status
	p.t.work.properties[id] = prop
	return 1, nil
}

type bookingTx struct{ t *Tx }

func (b bookingTx) Insert(ctx context.Context, bk *model.Booking) error {
	if err := b.t.check(OpBookingInsert); err != nil {
		return err
	}
	b.t.work.nextBooking++
	bk.ID = b.t.work.nextBooking
	b.t.work.bookings[bk.ID] = *bk
	return nil
}

func (b bookingTx) LockForUser(ctx context.Context, bookingID, userID uint64) (model.Booking, error) {
	bk, err := b.Lock(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if bk.UserID != userID {
		return model.Booking{}, booking.ErrNotFound
	}
	return bk, nil
}

func (b bookingTx) Lock(ctx context.Context, bookingID uint64) (model.Booking, error) {
	if err := b.t.check(""); err != nil {
		return model.Booking{}, err
	}
	bk, ok := b.t.work.bookings[bookingID]
	if !ok {
		return model.Booking{}, booking.ErrNotFound
	}
	return bk, nil
}

func (b bookingTx) SetStatus(ctx context.Context, bookingID uint64, status model.BookingStatus) error {
	if err := b.t.check(OpBookingSetStatus); err != nil {
		return err
	}
	bk, ok := b.t.work.bookings[bookingID]
	if !ok {
		return booking.ErrNotFound
	}
	bk.Status = status
	b.t.work.bookings[bookingID] = bk
	return nil
}

type residentTx struct{ t *Tx }

func (r residentTx) Add(ctx context.Context, res model.Resident) error {
	if err := r.t.check(OpResidentAdd); err != nil {
		return err
	}
	if _, ok := r.t.work.residents[res]; ok {
		return fmt.Errorf("memory: duplicate resident (%d, %d)", res.UserID, res.PropertyID)
	}
	r.t.work.residents[res] = struct{}{}
	return nil
}

func (r residentTx) Remove(ctx context.Context, res model.Resident) error {
	if err := r.t.check(OpResidentRemove); err != nil {
		return err
	}
	delete(r.t.work.residents, res)
	return nil
}

type paymentTx struct{ t *Tx }

func (p paymentTx) Insert(ctx context.Context, pay *model.Payment) error {
	if err := p.t.check(OpPaymentInsert); err != nil {
		return err
	}
	p.t.work.nextPayment++
	pay.ID = p.t.work.nextPayment
	p.t.work.payments[pay.ID] = *pay
	return nil
}
