// Package cache keeps a short-lived Redis copy of property availability.
// Every committed state change bumps a per-property generation and drops
// the entry. A read only stores what it fetched if the generation it saw
// before fetching is still current, so an answer read before a commit is
// never cached after that commit's invalidation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/rims/internal/booking"
	"github.com/iliyamo/rims/internal/model"
)

// Source answers availability reads on a cache miss.
type Source interface {
	GetAvailability(ctx context.Context, propertyID uint64) (model.Availability, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, propertyID uint64) (model.Availability, error)

func (f SourceFunc) GetAvailability(ctx context.Context, propertyID uint64) (model.Availability, error) {
	return f(ctx, propertyID)
}

// Availability is a read-through cache in front of a Source. With a nil
// client or a non-positive TTL every read goes to the source. Redis
// errors are logged and never fail a read.
type Availability struct {
	rdb    *redis.Client
	src    Source
	ttl    time.Duration
	prefix string
	log    logrus.FieldLogger
}

func NewAvailability(rdb *redis.Client, src Source, ttl time.Duration, log logrus.FieldLogger) *Availability {
	return &Availability{rdb: rdb, src: src, ttl: ttl, prefix: "avail", log: log}
}

func (a *Availability) enabled() bool { return a.rdb != nil && a.ttl > 0 }

// storeIfCurrent sets KEYS[1] only while KEYS[2] still holds ARGV[1].
// ARGV: generation ("" when unset), payload, ttl_ms.
var storeIfCurrent = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or ''
if gen ~= ARGV[1] then
    return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

func (a *Availability) genKey(propertyID uint64) string {
	return a.prefix + ":gen:" + strconv.FormatUint(propertyID, 10)
}

func (a *Availability) key(propertyID uint64) string {
	return a.prefix + ":" + strconv.FormatUint(propertyID, 10)
}

// GetAvailability returns the cached answer or asks the source and
// caches it. Errors from the source are not cached.
func (a *Availability) GetAvailability(ctx context.Context, propertyID uint64) (model.Availability, error) {
	if !a.enabled() {
		return a.src.GetAvailability(ctx, propertyID)
	}
	key := a.key(propertyID)
	raw, err := a.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var av model.Availability
		if jerr := json.Unmarshal(raw, &av); jerr == nil {
			return av, nil
		}
	case !errors.Is(err, redis.Nil):
		a.log.WithError(err).WithField("key", key).Warn("cache: get failed")
	}

	gen, err := a.rdb.Get(ctx, a.genKey(propertyID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		a.log.WithError(err).WithField("key", key).Warn("cache: generation read failed")
		return a.src.GetAvailability(ctx, propertyID)
	}

	av, err := a.src.GetAvailability(ctx, propertyID)
	if err != nil {
		return model.Availability{}, err
	}
	if b, jerr := json.Marshal(av); jerr == nil {
		keys := []string{key, a.genKey(propertyID)}
		if serr := storeIfCurrent.Run(ctx, a.rdb, keys, gen, b, a.ttl.Milliseconds()).Err(); serr != nil {
			a.log.WithError(serr).WithField("key", key).Warn("cache: set failed")
		}
	}
	return av, nil
}

// Forget bumps the property's generation and drops its cached entry.
func (a *Availability) Forget(ctx context.Context, propertyID uint64) {
	if !a.enabled() {
		return
	}
	gk := a.genKey(propertyID)
	_, err := a.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, gk)
		p.Expire(ctx, gk, genTTL(a.ttl))
		p.Del(ctx, a.key(propertyID))
		return nil
	})
	if err != nil {
		a.log.WithError(err).WithField("property_id", propertyID).Warn("cache: invalidate failed")
	}
}

// genTTL keeps a generation well past any read that could have seen the
// previous one.
func genTTL(ttl time.Duration) time.Duration {
	if d := 10 * ttl; d > time.Hour {
		return d
	}
	return time.Hour
}

// BookingChanged implements booking.Listener.
func (a *Availability) BookingChanged(ctx context.Context, ev booking.Event) {
	a.Forget(ctx, ev.PropertyID)
}
