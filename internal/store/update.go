package store

import (
	"fmt"

	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/metrics"
	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/signal"
)

// EntryUpdate bundles optional new values for the mutable facets of an
// entry. Only the facets present (non-nil) are considered; the rest are
// left untouched.
type EntryUpdate struct {
	ID             int32
	Datapoint      *signal.Datapoint
	ActuatorTarget *signal.Datapoint
}

// UpdateError is the per-id failure reported for one element of a batch
// rejected by Update.
type UpdateError struct {
	ID  int32
	Err error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("id %d: %s", e.ID, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }

type plannedChange struct {
	entry          *signal.Entry
	newDatapoint   *signal.Datapoint
	datapointReal  bool // false when classified "no change"
	newActuator    *signal.Datapoint
	actuatorReal   bool
}

// Update validates and applies a batch of updates atomically: either
// every element passes validation and is applied, or the whole batch is
// rejected with one UpdateError per failing id and nothing is mutated.
// On success it returns the set of ids whose current value or actuator
// target actually changed, which the caller (the subscription engine)
// uses to decide who to notify.
func (s *Store) Update(updates []EntryUpdate) (map[int32]struct{}, []UpdateError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans := make([]plannedChange, len(updates))
	var errs []UpdateError

	for i, u := range updates {
		entry, ok := s.entries[u.ID]
		if !ok {
			errs = append(errs, UpdateError{ID: u.ID, Err: ErrNotFound})
			continue
		}
		plan := plannedChange{entry: entry}

		if u.Datapoint != nil {
			changed, err := validateDatapointWrite(entry, u.Datapoint.Value)
			if err != nil {
				errs = append(errs, UpdateError{ID: u.ID, Err: err})
				continue
			}
			plan.newDatapoint = u.Datapoint
			plan.datapointReal = changed
		}

		if u.ActuatorTarget != nil {
			if entry.Metadata.EntryType != signal.Actuator {
				errs = append(errs, UpdateError{ID: u.ID, Err: ErrWrongType})
				continue
			}
			changed, err := validateActuatorWrite(entry, u.ActuatorTarget.Value)
			if err != nil {
				errs = append(errs, UpdateError{ID: u.ID, Err: err})
				continue
			}
			plan.newActuator = u.ActuatorTarget
			plan.actuatorReal = changed
		}

		plans[i] = plan
	}

	if len(errs) > 0 {
		metrics.UpdateBatches.WithLabelValues("rejected").Inc()
		return nil, errs
	}
	metrics.UpdateBatches.WithLabelValues("applied").Inc()

	changedIDs := make(map[int32]struct{})
	for i, u := range updates {
		plan := plans[i]
		if plan.newDatapoint != nil && plan.datapointReal {
			previous := plan.entry.Current
			plan.entry.Previous = &previous
			plan.entry.Current = *plan.newDatapoint
			changedIDs[u.ID] = struct{}{}
		}
		if plan.newActuator != nil && plan.actuatorReal {
			target := *plan.newActuator
			plan.entry.ActuatorTarget = &target
			changedIDs[u.ID] = struct{}{}
		}
	}

	metrics.ChangedEntries.Add(float64(len(changedIDs)))
	return changedIDs, nil
}

// validateDatapointWrite checks value against entry's declared type and
// width, and reports whether applying it constitutes a change under the
// entry's change type. It never mutates entry.
//
// NotAvailable is always accepted, per §4.2, even against a Timestamp/
// TimestampArray-typed entry: the NotAvailable check must run before the
// UnsupportedType guard, not after it.
func validateDatapointWrite(entry *signal.Entry, value signal.DataValue) (changed bool, err error) {
	dt := entry.Metadata.DataType

	if value.IsAvailable() {
		if dt == signal.Timestamp || dt == signal.TimestampArray {
			return false, ErrUnsupportedType
		}
		if !signal.MatchesDeclared(value, dt) {
			return false, ErrWrongType
		}
		if !signal.FitsWidth(value, dt) {
			return false, ErrOutOfBounds
		}
	}

	equal := signal.StructEqual(value, entry.Current.Value)
	switch entry.Metadata.ChangeType {
	case signal.Continuous:
		return true, nil
	default: // Static, OnChange
		return !equal, nil
	}
}

// validateActuatorWrite applies the same type/bounds rules as a
// datapoint write, independent of change type: an actuator target
// either differs from the current target (a real change) or it
// doesn't. As with validateDatapointWrite, NotAvailable is accepted
// before the UnsupportedType guard is ever consulted.
func validateActuatorWrite(entry *signal.Entry, value signal.DataValue) (changed bool, err error) {
	dt := entry.Metadata.DataType

	if value.IsAvailable() {
		if dt == signal.Timestamp || dt == signal.TimestampArray {
			return false, ErrUnsupportedType
		}
		if !signal.MatchesDeclared(value, dt) {
			return false, ErrWrongType
		}
		if !signal.FitsWidth(value, dt) {
			return false, ErrOutOfBounds
		}
	}
	var current signal.DataValue
	if entry.ActuatorTarget != nil {
		current = entry.ActuatorTarget.Value
	} else {
		current = signal.Unavailable
	}
	return !signal.StructEqual(value, current), nil
}
