package broker

import (
	"strings"

	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/metrics"
	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/query"
	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/signal"
)

// dispatch walks the subscriber tables once for a single accepted batch,
// emitting at most one notification per subscriber, and schedules a
// cleanup pass if any send was abandoned.
func (e *Engine) dispatch(changed map[int32]struct{}) {
	changedPaths := make(map[string]struct{}, len(changed))
	for id := range changed {
		if entry, ok := e.store.GetByID(id); ok {
			changedPaths[strings.ToLower(entry.Metadata.Path)] = struct{}{}
		}
	}

	e.mu.RLock()
	failed := false

	for _, sub := range e.fieldSubs {
		subset := make(map[int32]map[signal.Field]struct{})
		for id, fields := range sub.fields {
			if _, ok := changed[id]; ok {
				subset[id] = fields
			}
		}
		if len(subset) == 0 {
			continue
		}
		update := e.snapshotFor(subset)
		if len(update.Entries) == 0 {
			continue
		}
		if !sub.trySend(update) {
			failed = true
			metrics.SubscriberSendsDropped.Inc()
		}
	}

	for _, sub := range e.querySubs {
		if !intersects(changedPaths, sub.inputPaths) {
			continue
		}
		row, matched, _ := query.Execute(sub.compiled, e.fullSnapshot(sub.compiled))
		if !matched {
			continue
		}
		if !sub.trySend(QueryResponse{Row: row}) {
			failed = true
			metrics.SubscriberSendsDropped.Inc()
		}
	}
	e.mu.RUnlock()

	if failed {
		e.Cleanup()
	}
}

func intersects(a, b map[string]struct{}) bool {
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for k := range small {
		if _, ok := big[k]; ok {
			return true
		}
	}
	return false
}

// Cleanup removes every subscriber whose queue was observed full or
// abandoned. Intended to run both opportunistically (at the end of a
// dispatch round that saw a failed send) and once per second from the
// lifecycle coordinator's housekeeping job.
func (e *Engine) Cleanup() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, sub := range e.fieldSubs {
		if sub.closed.Load() {
			delete(e.fieldSubs, id)
			metrics.FieldSubscribers.Dec()
		}
	}
	for id, sub := range e.querySubs {
		if sub.closed.Load() {
			delete(e.querySubs, id)
			metrics.QuerySubscribers.Dec()
		}
	}
}

// Shutdown drops every subscriber's sender so consumers observe
// end-of-stream, per the lifecycle coordinator's shutdown sequence.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, sub := range e.fieldSubs {
		close(sub.ch)
		delete(e.fieldSubs, id)
		metrics.FieldSubscribers.Dec()
	}
	for id, sub := range e.querySubs {
		close(sub.ch)
		delete(e.querySubs, id)
		metrics.QuerySubscribers.Dec()
	}
}
