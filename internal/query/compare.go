package query

import (
	"fmt"
	"math"

	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/signal"
)

const (
	epsFloat32 = 1.1920929e-07
	epsFloat64 = 2.220446049250313e-16
)

// compareValues implements the runtime comparison semantics of §4.3,
// including the NotAvailable-absorption and cross-numeric-type widening
// rules. It never reorders operands: the caller passes left/right in
// source order and this function answers the specific op directly.
func compareValues(op string, l, r signal.DataValue) (bool, error) {
	if l.Kind == signal.NotAvailable || r.Kind == signal.NotAvailable {
		switch op {
		case "=":
			return false, nil
		case "<>":
			return true, nil
		default:
			return false, fmt.Errorf("%w: %s is not defined for a NotAvailable operand", ErrCastError, op)
		}
	}

	if l.Kind == signal.Bool || r.Kind == signal.Bool {
		if l.Kind != r.Kind {
			return false, fmt.Errorf("%w: cannot compare %s with %s", ErrCastError, l.Kind, r.Kind)
		}
		switch op {
		case "=":
			return l.Bln == r.Bln, nil
		case "<>":
			return l.Bln != r.Bln, nil
		default:
			return false, fmt.Errorf("%w: %s is not defined for Bool operands", ErrCastError, op)
		}
	}

	if l.Kind == signal.String || r.Kind == signal.String {
		if l.Kind != r.Kind {
			return false, fmt.Errorf("%w: cannot compare %s with %s", ErrCastError, l.Kind, r.Kind)
		}
		switch op {
		case "=":
			return l.Str == r.Str, nil
		case "<>":
			return l.Str != r.Str, nil
		default:
			return false, fmt.Errorf("%w: %s is not defined for String operands", ErrCastError, op)
		}
	}

	if l.Kind.IsArray() || r.Kind.IsArray() {
		return false, fmt.Errorf("%w: arrays cannot be compared", ErrCastError)
	}

	cmp, err := compareNumeric(l, r)
	if err != nil {
		return false, err
	}
	switch op {
	case "=":
		return cmp == 0, nil
	case "<>":
		return cmp != 0, nil
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUnsupportedOperator, op)
	}
}

// compareNumeric returns -1/0/1 for l relative to r across any pair of
// concrete numeric variants within representable range.
func compareNumeric(l, r signal.DataValue) (int, error) {
	if lf, ok := asFloat(l); ok {
		if rf, ok := asFloat(r); ok {
			return compareFloats(lf, rf, epsilonFor(l.Kind, r.Kind)), nil
		}
		return compareFloatToInt(lf, r)
	}
	if rf, ok := asFloat(r); ok {
		c, err := compareFloatToInt(rf, l)
		if err != nil {
			return 0, err
		}
		return -c, nil
	}

	ls, lSigned := asSignedInt(l)
	lu, lUnsigned := asUnsignedInt(l)
	rs, rSigned := asSignedInt(r)
	ru, rUnsigned := asUnsignedInt(r)

	switch {
	case lSigned && rSigned:
		return cmpInt64(ls, rs), nil
	case lUnsigned && rUnsigned:
		return cmpUint64(lu, ru), nil
	case lSigned && rUnsigned:
		if ls < 0 {
			return -1, nil
		}
		return cmpUint64(uint64(ls), ru), nil
	case lUnsigned && rSigned:
		if rs < 0 {
			return 1, nil
		}
		return cmpUint64(lu, uint64(rs)), nil
	default:
		return 0, fmt.Errorf("%w: cannot compare %s with %s", ErrCastError, l.Kind, r.Kind)
	}
}

// compareFloatToInt widens iv to f64 if it fits exactly; otherwise it
// falls back to integer comparison by rounding f. A uint64 that does not
// fit in the signed range fails outright, per the narrowing-overflow
// rule in §4.3.
func compareFloatToInt(f float64, iv signal.DataValue) (int, error) {
	if s, ok := asSignedInt(iv); ok {
		if fitsExactlyInFloat64(s) {
			return compareFloats(f, float64(s), 0), nil
		}
		return cmpInt64(int64(math.Round(f)), s), nil
	}
	if u, ok := asUnsignedInt(iv); ok {
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d does not fit a signed 64-bit range required to compare against a float", ErrCastError, u)
		}
		if fitsExactlyInFloat64(int64(u)) {
			return compareFloats(f, float64(u), 0), nil
		}
		return cmpUint64(uint64(math.Round(f)), u), nil
	}
	return 0, fmt.Errorf("%w: %s is not numeric", ErrCastError, iv.Kind)
}

// fitsExactlyInFloat64 reports whether n is representable in a float64
// without loss of precision (|n| <= 2^53).
func fitsExactlyInFloat64(n int64) bool {
	const maxExact = int64(1) << 53
	return n >= -maxExact && n <= maxExact
}

func asSignedInt(v signal.DataValue) (int64, bool) {
	switch v.Kind {
	case signal.Int32:
		return int64(v.I32), true
	case signal.Int64:
		return v.I64, true
	default:
		return 0, false
	}
}

func asUnsignedInt(v signal.DataValue) (uint64, bool) {
	switch v.Kind {
	case signal.Uint32:
		return uint64(v.U32), true
	case signal.Uint64:
		return v.U64, true
	default:
		return 0, false
	}
}

func asFloat(v signal.DataValue) (float64, bool) {
	switch v.Kind {
	case signal.Float:
		return float64(v.F32), true
	case signal.Double:
		return v.F64, true
	default:
		return 0, false
	}
}

func epsilonFor(l, r signal.DataType) float64 {
	if l == signal.Float || r == signal.Float {
		return epsFloat32
	}
	return epsFloat64
}

func compareFloats(a, b, eps float64) int {
	diff := a - b
	if math.Abs(diff) <= eps {
		return 0
	}
	if diff < 0 {
		return -1
	}
	return 1
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
