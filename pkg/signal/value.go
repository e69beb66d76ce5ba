package signal

import (
	"fmt"
	"math"
	"time"
)

// DataValue is a tagged union mirroring DataType plus NotAvailable. Only
// the field(s) matching Kind are meaningful; the others are zero.
//
// Internal storage always widens Int8/Int16 to Int32 and Uint8/Uint16 to
// Uint32 (and their array forms likewise), so Kind never holds one of the
// narrow integer variants even when the declaring Metadata.DataType does.
type DataValue struct {
	Kind DataType

	Str     string
	Bln     bool
	I32     int32
	I64     int64
	U32     uint32
	U64     uint64
	F32     float32
	F64     float64
	Time    time.Time

	StrArr  []string
	BlnArr  []bool
	I32Arr  []int32
	I64Arr  []int64
	U32Arr  []uint32
	U64Arr  []uint64
	F32Arr  []float32
	F64Arr  []float64
	TimeArr []time.Time
}

// Unavailable is the NotAvailable value, assignable regardless of an
// entry's declared data type.
var Unavailable = DataValue{Kind: NotAvailable}

func NewString(v string) DataValue  { return DataValue{Kind: String, Str: v} }
func NewBool(v bool) DataValue      { return DataValue{Kind: Bool, Bln: v} }
func NewInt32(v int32) DataValue    { return DataValue{Kind: Int32, I32: v} }
func NewInt64(v int64) DataValue    { return DataValue{Kind: Int64, I64: v} }
func NewUint32(v uint32) DataValue  { return DataValue{Kind: Uint32, U32: v} }
func NewUint64(v uint64) DataValue  { return DataValue{Kind: Uint64, U64: v} }
func NewFloat(v float32) DataValue  { return DataValue{Kind: Float, F32: v} }
func NewDouble(v float64) DataValue { return DataValue{Kind: Double, F64: v} }

// IsAvailable reports whether v carries an actual value.
func (v DataValue) IsAvailable() bool { return v.Kind != NotAvailable }

// MatchesDeclared reports whether v's tag is the one a value arriving for
// an entry declared as dt is expected to carry (the widened variant of
// dt), per the store's write-validation rule in §4.2. NotAvailable always
// matches.
func MatchesDeclared(v DataValue, dt DataType) bool {
	if v.Kind == NotAvailable {
		return true
	}
	return v.Kind == dt.widen()
}

// FitsWidth reports whether v (which has already passed MatchesDeclared)
// fits inside the narrower width declared by dt. Only meaningful for the
// narrow integer variants; every other declared type trivially fits.
func FitsWidth(v DataValue, dt DataType) bool {
	switch dt {
	case Int8:
		return v.I32 >= math.MinInt8 && v.I32 <= math.MaxInt8
	case Int16:
		return v.I32 >= math.MinInt16 && v.I32 <= math.MaxInt16
	case Uint8:
		return v.U32 <= math.MaxUint8
	case Uint16:
		return v.U32 <= math.MaxUint16
	case Int8Array:
		for _, e := range v.I32Arr {
			if e < math.MinInt8 || e > math.MaxInt8 {
				return false
			}
		}
		return true
	case Int16Array:
		for _, e := range v.I32Arr {
			if e < math.MinInt16 || e > math.MaxInt16 {
				return false
			}
		}
		return true
	case Uint8Array:
		for _, e := range v.U32Arr {
			if e > math.MaxUint8 {
				return false
			}
		}
		return true
	case Uint16Array:
		for _, e := range v.U32Arr {
			if e > math.MaxUint16 {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Equal is the query executor's `=`/`<>` notion of equality: strict
// same-type, with NotAvailable absorbing — it equals nothing, including
// itself, per §4.3/§8's "NotAvailable absorption" law. The executor
// never actually calls this directly (internal/query/compare.go's
// compareValues implements that same rule inline, alongside the
// cross-type widening `=` also needs), but Equal is kept as the
// reference same-type half of it. Do not reuse Equal for the store's
// internal change-type bookkeeping — see StructEqual.
func Equal(a, b DataValue) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case NotAvailable:
		return false // NotAvailable never equals anything, including itself.
	case String:
		return a.Str == b.Str
	case Bool:
		return a.Bln == b.Bln
	case Int32:
		return a.I32 == b.I32
	case Int64:
		return a.I64 == b.I64
	case Uint32:
		return a.U32 == b.U32
	case Uint64:
		return a.U64 == b.U64
	case Float:
		return a.F32 == b.F32
	case Double:
		return a.F64 == b.F64
	case Timestamp:
		return a.Time.Equal(b.Time)
	case StringArray:
		return equalSlice(a.StrArr, b.StrArr)
	case BoolArray:
		return equalSlice(a.BlnArr, b.BlnArr)
	case Int32Array:
		return equalSlice(a.I32Arr, b.I32Arr)
	case Int64Array:
		return equalSlice(a.I64Arr, b.I64Arr)
	case Uint32Array:
		return equalSlice(a.U32Arr, b.U32Arr)
	case Uint64Array:
		return equalSlice(a.U64Arr, b.U64Arr)
	case FloatArray:
		return equalSlice(a.F32Arr, b.F32Arr)
	case DoubleArray:
		return equalSlice(a.F64Arr, b.F64Arr)
	case TimestampArray:
		if len(a.TimeArr) != len(b.TimeArr) {
			return false
		}
		for i := range a.TimeArr {
			if !a.TimeArr[i].Equal(b.TimeArr[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func equalSlice[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// StructEqual is plain derive-style equality: two NotAvailable values
// are equal to each other, unlike Equal's absorption rule. The store
// uses this, not Equal, to decide whether a write to a Static/OnChange
// entry is a "no change": writing NotAvailable repeatedly to an unset
// entry must not manufacture a change every time.
func StructEqual(a, b DataValue) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == NotAvailable {
		return true
	}
	return Equal(a, b)
}

func (v DataValue) String() string {
	switch v.Kind {
	case NotAvailable:
		return "NotAvailable"
	case String:
		return v.Str
	case Bool:
		return fmt.Sprintf("%t", v.Bln)
	case Int32:
		return fmt.Sprintf("%d", v.I32)
	case Int64:
		return fmt.Sprintf("%d", v.I64)
	case Uint32:
		return fmt.Sprintf("%d", v.U32)
	case Uint64:
		return fmt.Sprintf("%d", v.U64)
	case Float:
		return fmt.Sprintf("%g", v.F32)
	case Double:
		return fmt.Sprintf("%g", v.F64)
	case Timestamp:
		return v.Time.Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%s(%v)", v.Kind, v.Kind)
	}
}
