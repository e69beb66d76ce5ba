// Package signal defines the value and metadata types shared by every
// layer of the broker: the entry store, the query compiler/executor, and
// the subscription engine. Nothing in this package depends on any other
// package in the module.
package signal

import "fmt"

// DataType is the closed set of value variants a signal can carry. It is
// stable and wire-visible: adapters map these names directly onto their
// own protocol enums.
type DataType int

const (
	String DataType = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float
	Double
	Timestamp

	StringArray
	BoolArray
	Int8Array
	Int16Array
	Int32Array
	Int64Array
	Uint8Array
	Uint16Array
	Uint32Array
	Uint64Array
	FloatArray
	DoubleArray
	TimestampArray

	// NotAvailable is not a declarable metadata data type; it only ever
	// tags a DataValue, meaning "no value has been provided yet".
	NotAvailable
)

var dataTypeNames = map[DataType]string{
	String:   "string",
	Bool:     "bool",
	Int8:     "int8",
	Int16:    "int16",
	Int32:    "int32",
	Int64:    "int64",
	Uint8:    "uint8",
	Uint16:   "uint16",
	Uint32:   "uint32",
	Uint64:   "uint64",
	Float:    "float",
	Double:   "double",
	Timestamp: "timestamp",

	StringArray:    "string[]",
	BoolArray:      "bool[]",
	Int8Array:      "int8[]",
	Int16Array:     "int16[]",
	Int32Array:     "int32[]",
	Int64Array:     "int64[]",
	Uint8Array:     "uint8[]",
	Uint16Array:    "uint16[]",
	Uint32Array:    "uint32[]",
	Uint64Array:    "uint64[]",
	FloatArray:     "float[]",
	DoubleArray:    "double[]",
	TimestampArray: "timestamp[]",
	NotAvailable:   "not_available",
}

func (dt DataType) String() string {
	if name, ok := dataTypeNames[dt]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", int(dt))
}

// ParseDataType maps the VSS metadata spelling onto a DataType. It
// accepts both the scalar and array spellings used in VSS JSON trees
// ("uint8" and "uint8[]").
func ParseDataType(s string) (DataType, bool) {
	for dt, name := range dataTypeNames {
		if name == s && dt != NotAvailable {
			return dt, true
		}
	}
	return 0, false
}

// IsArray reports whether dt is the array variant of some scalar type.
func (dt DataType) IsArray() bool {
	return dt >= StringArray && dt <= TimestampArray
}

// widen maps a declared DataType onto the DataType actually used for
// internal storage. Int8/Int16/Uint8/Uint16 (and their arrays) are
// stored widened to Int32/Uint32; every other type stores as declared.
func (dt DataType) widen() DataType {
	switch dt {
	case Int8, Int16:
		return Int32
	case Uint8, Uint16:
		return Uint32
	case Int8Array, Int16Array:
		return Int32Array
	case Uint8Array, Uint16Array:
		return Uint32Array
	default:
		return dt
	}
}
