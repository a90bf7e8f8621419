package booking

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/rims/internal/model"
)

// Workflow states, used as the "state" log field.
const (
	stateStart           = "start"
	stateChecked         = "checked"
	stateReserved        = "reserved"
	stateResidentLinked  = "resident_linked"
	statePaid            = "paid"
	stateCommitted       = "committed"
	stateAborted         = "aborted"
	stateFound           = "found"
	stateUnbooked        = "unbooked"
	stateResidentRemoved = "resident_removed"
	stateAvailable       = "available"
)

// Config holds the Coordinator's settings.
type Config struct {
	// TxTimeout bounds a whole workflow, from Begin to Commit. Zero means
	// no deadline beyond the store's own.
	TxTimeout time.Duration
	// Clock decides today's date. Defaults to SystemClock.
	Clock Clock
}

// BookRequest is the input of the book workflow. Verified must be decided
// by the caller before the workflow starts.
type BookRequest struct {
	UserID        uint64
	PropertyID    uint64
	StartDate     time.Time
	EndDate       time.Time
	PaymentMethod string
	Verified      bool
}

// BookResult is returned by a committed book workflow.
type BookResult struct {
	BookingID     uint64              `json:"booking_id"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	Amount        decimal.Decimal     `json:"amount"`
}

// Coordinator runs the book and cancel workflows, each as one
// transaction that either commits every step or none.
type Coordinator struct {
	store     Store
	clock     Clock
	txTimeout time.Duration
	log       logrus.FieldLogger
	listeners []Listener
}

// NewCoordinator wires a Coordinator to store. Listeners are told about
// every committed transition, in order.
func NewCoordinator(store Store, cfg Config, log logrus.FieldLogger, listeners ...Listener) *Coordinator {
	if store == nil {
		panic("nil store passed to NewCoordinator")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Coordinator{
		store:     store,
		clock:     clock,
		txTimeout: cfg.TxTimeout,
		log:       log,
		listeners: listeners,
	}
}

// workflowContext detaches ctx from the caller's cancellation: once a
// workflow starts mutating it must reach commit or a full rollback.
func (c *Coordinator) workflowContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if c.txTimeout > 0 {
		return context.WithTimeout(ctx, c.txTimeout)
	}
	return context.WithCancel(ctx)
}

// GetAvailability reads a property's status and price.
func (c *Coordinator) GetAvailability(ctx context.Context, propertyID uint64) (model.Availability, error) {
	tx, err := c.store.Begin(ctx)
	if err != nil {
		return model.Availability{}, storeErr("begin", err)
	}
	defer func() { _ = tx.Rollback() }()
	a, err := NewRegistry(tx).GetAvailability(ctx, propertyID)
	if err != nil {
		return model.Availability{}, storeErr("read availability", err)
	}
	return a, nil
}

// Book reserves an Available property for the user, links the user as
// resident and records the payment, all in one transaction.
func (c *Coordinator) Book(ctx context.Context, req BookRequest) (BookResult, error) {
	ctx, cancel := c.workflowContext(ctx)
	defer cancel()
	log := c.log.WithFields(logrus.Fields{
		"workflow":    "book",
		"user_id":     req.UserID,
		"property_id": req.PropertyID,
	})
	abort := func(op string, err error) (BookResult, error) {
		err = storeErr(op, err)
		log.WithError(err).WithField("state", stateAborted).Info("booking aborted")
		return BookResult{}, err
	}
	log.WithField("state", stateStart).Debug("booking started")

	tx, err := c.store.Begin(ctx)
	if err != nil {
		return abort("begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	registry := NewRegistry(tx)
	avail, err := registry.LockAvailability(ctx, req.PropertyID)
	if err != nil {
		return abort("read availability", err)
	}
	if avail.Status != model.Available {
		return abort("check availability", ErrPropertyUnavailable)
	}
	log.WithField("state", stateChecked).Debug("property available")

	bookingID, err := NewLedger(tx, c.clock).Create(ctx, req.UserID, req.PropertyID, req.StartDate, req.EndDate)
	if err != nil {
		return abort("create booking", err)
	}
	log = log.WithField("booking_id", bookingID)
	if err := registry.MarkBooked(ctx, req.PropertyID); err != nil {
		return abort("mark booked", err)
	}
	log.WithField("state", stateReserved).Debug("booking created")

	if err := NewRoster(tx).AddResident(ctx, req.UserID, req.PropertyID); err != nil {
		return abort("add resident", err)
	}
	log.WithField("state", stateResidentLinked).Debug("resident added")

	payment, err := NewRecorder(tx, c.clock).RecordPayment(ctx, bookingID, avail.Price, req.PaymentMethod, req.Verified)
	if err != nil {
		return abort("record payment", err)
	}
	log.WithField("state", statePaid).Debug("payment recorded")

	if err := tx.Commit(); err != nil {
		return abort("commit", err)
	}
	committed = true
	log.WithFields(logrus.Fields{"state": stateCommitted, "payment_status": payment.Status}).Info("booking committed")

	c.notify(ctx, Event{
		Kind:          EventConfirmed,
		BookingID:     bookingID,
		UserID:        req.UserID,
		PropertyID:    req.PropertyID,
		StartDate:     DateOf(req.StartDate),
		EndDate:       DateOf(req.EndDate),
		Amount:        payment.Amount,
		PaymentMethod: payment.Method,
		PaymentStatus: payment.Status,
		At:            c.clock.Now().UTC(),
	})
	return BookResult{BookingID: bookingID, PaymentStatus: payment.Status, Amount: payment.Amount}, nil
}

// Cancel cancels the user's booking, removes the resident and frees the
// property. Payments are left as they are.
func (c *Coordinator) Cancel(ctx context.Context, bookingID, userID uint64) error {
	ctx, cancel := c.workflowContext(ctx)
	defer cancel()
	log := c.log.WithFields(logrus.Fields{
		"workflow":   "cancel",
		"user_id":    userID,
		"booking_id": bookingID,
	})
	abort := func(op string, err error) error {
		err = storeErr(op, err)
		log.WithError(err).WithField("state", stateAborted).Info("cancellation aborted")
		return err
	}
	log.WithField("state", stateStart).Debug("cancellation started")

	tx, err := c.store.Begin(ctx)
	if err != nil {
		return abort("begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ledger := NewLedger(tx, c.clock)
	b, err := ledger.Find(ctx, bookingID, userID)
	if err != nil {
		return abort("find booking", err)
	}
	log = log.WithField("property_id", b.PropertyID)
	log.WithField("state", stateFound).Debug("booking found")

	if err := ledger.Cancel(ctx, &b); err != nil {
		return abort("cancel booking", err)
	}
	log.WithField("state", stateUnbooked).Debug("booking cancelled")

	if err := NewRoster(tx).RemoveResident(ctx, b.UserID, b.PropertyID); err != nil {
		return abort("remove resident", err)
	}
	log.WithField("state", stateResidentRemoved).Debug("resident removed")

	if err := NewRegistry(tx).MarkAvailable(ctx, b.PropertyID); err != nil {
		return abort("mark available", err)
	}
	log.WithField("state", stateAvailable).Debug("property released")

	if err := tx.Commit(); err != nil {
		return abort("commit", err)
	}
	committed = true
	log.WithField("state", stateCommitted).Info("cancellation committed")

	c.notify(ctx, Event{
		Kind:       EventCancelled,
		BookingID:  b.ID,
		UserID:     b.UserID,
		PropertyID: b.PropertyID,
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		At:         c.clock.Now().UTC(),
	})
	return nil
}

// SetBookingStatus is the owner's override that closes an Active booking
// as Completed or Cancelled. Either way the resident is removed and the
// property becomes Available again, keeping Booked tied to exactly one
// Active booking.
func (c *Coordinator) SetBookingStatus(ctx context.Context, bookingID uint64, status model.BookingStatus) error {
	if status != model.BookingCompleted && status != model.BookingCancelled {
		return ErrInvalidTransition
	}
	ctx, cancel := c.workflowContext(ctx)
	defer cancel()
	log := c.log.WithFields(logrus.Fields{
		"workflow":   "override",
		"booking_id": bookingID,
		"to":         status,
	})

	tx, err := c.store.Begin(ctx)
	if err != nil {
		return storeErr("begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := tx.Bookings().Lock(ctx, bookingID)
	if err != nil {
		return storeErr("find booking", err)
	}
	if b.Status != model.BookingActive {
		return ErrInvalidTransition
	}
	if err := tx.Bookings().SetStatus(ctx, b.ID, status); err != nil {
		return storeErr("set status", err)
	}
	if err := NewRoster(tx).RemoveResident(ctx, b.UserID, b.PropertyID); err != nil {
		return storeErr("remove resident", err)
	}
	if err := NewRegistry(tx).MarkAvailable(ctx, b.PropertyID); err != nil {
		return storeErr("mark available", err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr("commit", err)
	}
	committed = true
	log.Info("booking status overridden")

	kind := EventCompleted
	if status == model.BookingCancelled {
		kind = EventCancelled
	}
	c.notify(ctx, Event{
		Kind:       kind,
		BookingID:  b.ID,
		UserID:     b.UserID,
		PropertyID: b.PropertyID,
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		At:         c.clock.Now().UTC(),
	})
	return nil
}

func (c *Coordinator) notify(ctx context.Context, ev Event) {
	for _, l := range c.listeners {
		l.BookingChanged(ctx, ev)
	}
}
