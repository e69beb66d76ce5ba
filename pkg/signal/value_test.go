package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotAvailableNeverEqual(t *testing.T) {
	assert.False(t, Equal(Unavailable, Unavailable), "NotAvailable must not equal itself")
	assert.False(t, Equal(Unavailable, NewInt32(0)), "NotAvailable must not equal a concrete value")
}

func TestMatchesDeclaredWidening(t *testing.T) {
	cases := []struct {
		name string
		v    DataValue
		dt   DataType
		want bool
	}{
		{"int8 declared, int32 carried", NewInt32(5), Int8, true},
		{"int8 declared, int64 carried", DataValue{Kind: Int64, I64: 5}, Int8, false},
		{"uint16 declared, uint32 carried", DataValue{Kind: Uint32, U32: 5}, Uint16, true},
		{"bool declared, bool carried", NewBool(true), Bool, true},
		{"not available always matches", Unavailable, Int32, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, MatchesDeclared(c.v, c.dt))
		})
	}
}

func TestFitsWidth(t *testing.T) {
	assert.False(t, FitsWidth(NewInt32(200), Int8), "200 should not fit in an int8")
	assert.True(t, FitsWidth(NewInt32(100), Int8), "100 should fit in an int8")
	assert.True(t, FitsWidth(DataValue{Kind: Uint32, U32: 65535}, Uint16), "65535 should fit in a uint16")
	assert.False(t, FitsWidth(DataValue{Kind: Uint32, U32: 65536}, Uint16), "65536 should not fit in a uint16")
}

func TestEqualStrictSameType(t *testing.T) {
	assert.True(t, Equal(NewInt32(5), NewInt32(5)))
	assert.False(t, Equal(NewInt32(5), DataValue{Kind: Int64, I64: 5}), "different-kind values should never compare equal")
}

func TestStructEqualNotAvailable(t *testing.T) {
	assert.True(t, StructEqual(Unavailable, Unavailable), "two NotAvailable values are the same value")
	assert.False(t, StructEqual(Unavailable, NewInt32(0)))
	assert.True(t, StructEqual(NewInt32(5), NewInt32(5)))
	assert.False(t, StructEqual(NewInt32(5), NewInt32(6)))
}
