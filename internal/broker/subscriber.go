// Package broker implements the subscription engine: it registers field
// subscribers and query subscribers against the entry store, delivers an
// initial snapshot to each on registration, and dispatches further
// emissions after every store update that actually changed something.
//
// Grounded on the same bounded-channel, try-send style used throughout
// the teacher's background task machinery (never block a writer on a
// slow consumer); adapted here so a full or abandoned subscriber queue
// marks itself for cleanup instead of stalling the dispatch round.
package broker

import (
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/query"
	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/log"
	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/signal"
)

// subscriberQueueDepth is the bounded capacity of every subscriber's
// channel, per the ~10 slot depth called for by the subscription model.
const subscriberQueueDepth = 10

// queueFullLogLimiter throttles the "subscriber queue full" warning to
// at most once per second across all subscribers, so a single wedged
// consumer under heavy write traffic cannot flood the log.
var queueFullLogLimiter = rate.NewLimiter(rate.Every(time.Second), 1)

// EntryUpdate is one entry's changed facets, as delivered to a field
// subscriber.
type EntryUpdate struct {
	ID             int32
	Path           string
	Datapoint      *signal.Datapoint
	ActuatorTarget *signal.Datapoint
}

// EntryUpdates is one dispatch round's worth of field-subscription
// notifications.
type EntryUpdates struct {
	Entries []EntryUpdate
}

// QueryResponse is one row produced by a query subscription.
type QueryResponse struct {
	Row []query.Column
}

type fieldSubscriber struct {
	id     int64
	fields map[int32]map[signal.Field]struct{}
	ch     chan EntryUpdates
	closed atomic.Bool
}

func (s *fieldSubscriber) trySend(u EntryUpdates) bool {
	if s.closed.Load() {
		return false
	}
	select {
	case s.ch <- u:
		return true
	default:
		s.closed.Store(true)
		if queueFullLogLimiter.Allow() {
			log.Warnf("broker: field subscriber %d queue full, marking abandoned", s.id)
		}
		return false
	}
}

type querySubscriber struct {
	id         int64
	compiled   *query.CompiledQuery
	inputPaths map[string]struct{} // lower-cased InputSpec, for fast change intersection
	ch         chan QueryResponse
	closed     atomic.Bool
}

func (s *querySubscriber) trySend(r QueryResponse) bool {
	if s.closed.Load() {
		return false
	}
	select {
	case s.ch <- r:
		return true
	default:
		s.closed.Store(true)
		if queueFullLogLimiter.Allow() {
			log.Warnf("broker: query subscriber %d queue full, marking abandoned", s.id)
		}
		return false
	}
}
