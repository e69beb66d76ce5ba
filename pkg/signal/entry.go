package signal

import "time"

// ChangeType governs whether writing the same value twice counts as a
// change for subscription purposes.
type ChangeType int

const (
	// Static entries follow the same rule as OnChange: writing the value
	// they already hold is not a change; a different value is.
	Static ChangeType = iota
	// OnChange entries notify only when the new value differs from the
	// current one.
	OnChange
	// Continuous entries notify on every accepted write, equal or not.
	Continuous
)

func (c ChangeType) String() string {
	switch c {
	case Static:
		return "static"
	case OnChange:
		return "onchange"
	case Continuous:
		return "continuous"
	default:
		return "unknown"
	}
}

// EntryType classifies a registered signal. Actuator entries additionally
// carry an actuator target distinct from their reported current value.
type EntryType int

const (
	Sensor EntryType = iota
	Attribute
	Actuator
)

func (e EntryType) String() string {
	switch e {
	case Sensor:
		return "sensor"
	case Attribute:
		return "attribute"
	case Actuator:
		return "actuator"
	default:
		return "unknown"
	}
}

// Field selects a facet of an entry for field subscriptions.
type Field int

const (
	FieldDatapoint Field = iota
	FieldActuatorTarget
)

// Metadata is the immutable-after-registration descriptor of an entry.
type Metadata struct {
	ID          int32
	Path        string // canonical, case-preserving
	DataType    DataType
	EntryType   EntryType
	ChangeType  ChangeType
	Description string
	Unit        string
	Allowed     []DataValue // optional allowed-value set, empty if unrestricted
}

// Datapoint is a value stamped with the time it was recorded. SourceTS,
// when non-zero, is the time the provider claims the value was sampled;
// otherwise TS (receive time) is authoritative for both purposes.
type Datapoint struct {
	Value    DataValue
	TS       time.Time
	SourceTS time.Time
}

// Entry is a registered signal: its metadata plus current value, an
// optional actuator target, and the value displaced by the most recent
// accepted change.
type Entry struct {
	Metadata       Metadata
	Current        Datapoint
	ActuatorTarget *Datapoint
	Previous       *Datapoint
}

// Clone returns a value copy of e safe to hand to a reader outside the
// store's lock, since Allowed and pointer fields would otherwise alias
// storage that a concurrent writer may mutate next.
func (e Entry) Clone() Entry {
	out := e
	if e.ActuatorTarget != nil {
		v := *e.ActuatorTarget
		out.ActuatorTarget = &v
	}
	if e.Previous != nil {
		v := *e.Previous
		out.Previous = &v
	}
	if e.Metadata.Allowed != nil {
		out.Metadata.Allowed = append([]DataValue(nil), e.Metadata.Allowed...)
	}
	return out
}
