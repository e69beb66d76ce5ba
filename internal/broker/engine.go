package broker

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/metrics"
	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/query"
	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/store"
	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/signal"
)

// Engine owns the subscription tables and dispatches notifications after
// every store update that produced a change. It holds its own
// read/write guard over the subscription tables, independent of the
// store's own entries guard.
type Engine struct {
	store *store.Store

	mu         sync.RWMutex
	fieldSubs  map[int64]*fieldSubscriber
	querySubs  map[int64]*querySubscriber
	nextSubID  atomic.Int64
	queueDepth int
}

// NewEngine returns an Engine dispatching over s, with every subscriber
// channel sized to the default queue depth.
func NewEngine(s *store.Store) *Engine {
	return NewEngineWithQueueDepth(s, subscriberQueueDepth)
}

// NewEngineWithQueueDepth returns an Engine whose subscriber channels are
// sized to depth instead of the default, the knob config.Config exposes as
// SubscriberQueueDepth for operators running bursty providers.
func NewEngineWithQueueDepth(s *store.Store, depth int) *Engine {
	if depth <= 0 {
		depth = subscriberQueueDepth
	}
	return &Engine{
		store:      s,
		fieldSubs:  make(map[int64]*fieldSubscriber),
		querySubs:  make(map[int64]*querySubscriber),
		queueDepth: depth,
	}
}

// Subscribe registers a field subscription: fields maps an entry id to
// the set of its facets the caller wants notified about. The returned
// channel immediately receives one initial snapshot before any
// change-driven emission. Cancelling ctx implicitly unsubscribes, the Go
// idiom for "the consumer dropped its receiving end".
func (e *Engine) Subscribe(ctx context.Context, fields map[int32]map[signal.Field]struct{}) <-chan EntryUpdates {
	sub := &fieldSubscriber{
		id:     e.nextSubID.Add(1),
		fields: fields,
		ch:     make(chan EntryUpdates, e.queueDepth),
	}

	e.mu.Lock()
	e.fieldSubs[sub.id] = sub
	e.mu.Unlock()
	metrics.FieldSubscribers.Inc()

	go func() {
		<-ctx.Done()
		e.mu.Lock()
		if _, ok := e.fieldSubs[sub.id]; ok {
			delete(e.fieldSubs, sub.id)
			metrics.FieldSubscribers.Dec()
		}
		e.mu.Unlock()
	}()

	initial := e.snapshotFor(sub.fields)
	sub.trySend(initial)

	return sub.ch
}

// SubscribeQuery compiles sql and registers a query subscription. The
// returned channel receives one initial row (if the WHERE clause, when
// present, is satisfied by the current store state) before any
// change-driven emission.
func (e *Engine) SubscribeQuery(ctx context.Context, sql string) (<-chan QueryResponse, error) {
	cq, err := query.Compile(sql, e.store)
	if err != nil {
		return nil, err
	}

	inputPaths := make(map[string]struct{}, len(cq.InputSpec))
	for p := range cq.InputSpec {
		inputPaths[strings.ToLower(p)] = struct{}{}
	}

	sub := &querySubscriber{
		id:         e.nextSubID.Add(1),
		compiled:   cq,
		inputPaths: inputPaths,
		ch:         make(chan QueryResponse, e.queueDepth),
	}

	e.mu.Lock()
	e.querySubs[sub.id] = sub
	e.mu.Unlock()
	metrics.QuerySubscribers.Inc()

	go func() {
		<-ctx.Done()
		e.mu.Lock()
		if _, ok := e.querySubs[sub.id]; ok {
			delete(e.querySubs, sub.id)
			metrics.QuerySubscribers.Dec()
		}
		e.mu.Unlock()
	}()

	if row, matched, _ := query.Execute(cq, e.fullSnapshot(cq)); matched {
		sub.trySend(QueryResponse{Row: row})
	}

	return sub.ch, nil
}

// Apply validates and applies updates against the store and, on
// success, dispatches notifications to every affected subscriber.
func (e *Engine) Apply(updates []store.EntryUpdate) (map[int32]struct{}, []store.UpdateError) {
	changed, errs := e.store.Update(updates)
	if len(errs) > 0 {
		return nil, errs
	}
	if len(changed) > 0 {
		e.dispatch(changed)
	}
	return changed, nil
}

// snapshotFor builds the EntryUpdates for exactly the ids/fields fields
// names, used both for the initial snapshot and for dispatch.
func (e *Engine) snapshotFor(fields map[int32]map[signal.Field]struct{}) EntryUpdates {
	var out EntryUpdates
	for id, want := range fields {
		entry, ok := e.store.GetByID(id)
		if !ok {
			continue
		}
		u := EntryUpdate{ID: id, Path: entry.Metadata.Path}
		if _, ok := want[signal.FieldDatapoint]; ok {
			dp := entry.Current
			u.Datapoint = &dp
		}
		if _, ok := want[signal.FieldActuatorTarget]; ok && entry.ActuatorTarget != nil {
			dp := *entry.ActuatorTarget
			u.ActuatorTarget = &dp
		}
		out.Entries = append(out.Entries, u)
	}
	return out
}

// fullSnapshot builds a query.Snapshot covering every path in cq's
// InputSpec (and any nested subquery's InputSpec). Each path is read
// with its own store.GetByPath call, so every entry is read consistently
// but the snapshot as a whole is not a cross-path consistent view: a
// write applied between two reads can show in one path and not another.
func (e *Engine) fullSnapshot(cq *query.CompiledQuery) query.Snapshot {
	snap := make(query.Snapshot)
	e.addSnapshotPaths(cq, snap)
	return snap
}

func (e *Engine) addSnapshotPaths(cq *query.CompiledQuery, snap query.Snapshot) {
	for path := range cq.InputSpec {
		if _, ok := snap[path]; ok {
			continue
		}
		entry, ok := e.store.GetByPath(path)
		if !ok {
			continue
		}
		pv := query.PathValue{Current: entry.Current.Value}
		if entry.Previous != nil {
			pv.Previous = entry.Previous.Value
		} else {
			pv.Previous = signal.Unavailable
		}
		snap[path] = pv
	}
	for _, item := range cq.Projection {
		if item.Subquery != nil {
			e.addSnapshotPaths(item.Subquery, snap)
		}
	}
}
