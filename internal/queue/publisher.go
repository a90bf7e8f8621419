package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/rims/internal/booking"
)

const exchangeKind = "topic"

type publishChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// opener returns a channel and a func that releases it together with
// its connection. Dialing gives up at ctx's deadline.
type opener func(ctx context.Context) (publishChannel, func(), error)

// Publisher sends booking events to a topic exchange, using the event
// kind as routing key. It implements booking.Listener. A failed publish
// is logged and dropped: the booking is already committed.
type Publisher struct {
	exchange string
	timeout  time.Duration
	open     opener
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewPublisher returns a Publisher that dials url for every event.
func NewPublisher(url, exchange string, log logrus.FieldLogger) *Publisher {
	return &Publisher{
		exchange: exchange,
		timeout:  5 * time.Second,
		open:     dialer(url),
		log:      log,
		now:      time.Now,
	}
}

func dialer(url string) opener {
	return func(ctx context.Context) (publishChannel, func(), error) {
		wait := 5 * time.Second
		if dl, ok := ctx.Deadline(); ok {
			wait = time.Until(dl)
		}
		if wait <= 0 {
			return nil, nil, context.DeadlineExceeded
		}
		conn, err := amqp.DialConfig(url, amqp.Config{
			Heartbeat: 10 * time.Second,
			Locale:    "en_US",
			Dial:      amqp.DefaultDial(wait),
		})
		if err != nil {
			return nil, nil, err
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		return ch, func() {
			_ = ch.Close()
			_ = conn.Close()
		}, nil
	}
}

// BookingChanged implements booking.Listener.
func (p *Publisher) BookingChanged(ctx context.Context, ev booking.Event) {
	log := p.log.WithFields(logrus.Fields{"event": ev.Kind, "booking_id": ev.BookingID})
	if err := p.Publish(ctx, ev); err != nil {
		log.WithError(err).Warn("rabbitmq: publish failed")
		return
	}
	log.Debug("rabbitmq: event published")
}

// Publish declares the exchange and sends one persistent message.
func (p *Publisher) Publish(ctx context.Context, ev booking.Event) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	id := uuid.NewString()
	body, err := json.Marshal(NewBookingEvent(id, ev))
	if err != nil {
		return err
	}
	ch, release, err := p.open(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := ch.ExchangeDeclare(p.exchange, exchangeKind, true, false, false, false, nil); err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, p.exchange, string(ev.Kind), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    id,
		Timestamp:    p.now().UTC(),
		Type:         string(ev.Kind),
		Body:         body,
	})
}
