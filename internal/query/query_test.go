package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/signal"
)

type fakeMetadata map[string]signal.DataType

func (f fakeMetadata) Metadata(path string) (signal.Metadata, bool) {
	dt, ok := f[path]
	if !ok {
		return signal.Metadata{}, false
	}
	return signal.Metadata{Path: path, DataType: dt}, true
}

func TestCompileUnknownField(t *testing.T) {
	_, err := Compile("SELECT A", fakeMetadata{})
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestWhereScenario(t *testing.T) {
	meta := fakeMetadata{"A": signal.Int32, "B": signal.Bool}
	cq, err := Compile("SELECT A WHERE A > 50 AND B = true", meta)
	require.NoError(t, err)
	assert.Contains(t, cq.InputSpec, "A")
	assert.Contains(t, cq.InputSpec, "B")

	snap := Snapshot{
		"A": {Current: signal.NewInt32(61)},
		"B": {Current: signal.NewBool(true)},
	}
	row, matched, err := Execute(cq, snap)
	require.NoError(t, err)
	require.True(t, matched)
	require.Len(t, row, 1)
	assert.Equal(t, "A", row[0].Name)
	assert.Equal(t, int32(61), row[0].Value.I32)

	snap["A"] = PathValue{Current: signal.NewInt32(40)}
	_, matched, err = Execute(cq, snap)
	require.NoError(t, err)
	assert.False(t, matched, "A=40 should not satisfy A > 50")
}

func TestLagScenario(t *testing.T) {
	meta := fakeMetadata{"P": signal.Int32}
	cq, err := Compile("SELECT P, LAG(P) AS prev", meta)
	require.NoError(t, err)

	steps := []struct {
		current, previous int32
		havePrevious       bool
	}{
		{10, 0, false},
		{20, 10, true},
		{30, 20, true},
	}
	for _, s := range steps {
		snap := Snapshot{"P": {Current: signal.NewInt32(s.current), Previous: signal.Unavailable}}
		if s.havePrevious {
			snap["P"] = PathValue{Current: signal.NewInt32(s.current), Previous: signal.NewInt32(s.previous)}
		}
		row, matched, err := Execute(cq, snap)
		require.NoError(t, err)
		require.True(t, matched)
		require.Len(t, row, 2)
		assert.Equal(t, s.current, row[0].Value.I32)
		if s.havePrevious {
			assert.Equal(t, s.previous, row[1].Value.I32)
		} else {
			assert.False(t, row[1].Value.IsAvailable())
		}
	}
}

func TestBetween(t *testing.T) {
	meta := fakeMetadata{"A": signal.Int32}
	cq, err := Compile("SELECT A WHERE A BETWEEN 10 AND 20", meta)
	require.NoError(t, err)

	_, matched, _ := Execute(cq, Snapshot{"A": {Current: signal.NewInt32(15)}})
	assert.True(t, matched)
	_, matched, _ = Execute(cq, Snapshot{"A": {Current: signal.NewInt32(25)}})
	assert.False(t, matched)
}

func TestNotAvailableComparisonNeverFails(t *testing.T) {
	ok, err := compareValues("=", signal.Unavailable, signal.Unavailable)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = compareValues("<>", signal.Unavailable, signal.NewInt32(1))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCrossNumericComparison(t *testing.T) {
	cases := []struct {
		name     string
		l, r     signal.DataValue
		op       string
		expected bool
	}{
		{"signed negative less than unsigned", signal.DataValue{Kind: signal.Int64, I64: -1}, signal.DataValue{Kind: signal.Uint64, U64: 1}, "<", true},
		{"int widened to float equal", signal.NewInt32(2), signal.DataValue{Kind: signal.Double, F64: 2.0}, "=", true},
		{"float epsilon equality", signal.DataValue{Kind: signal.Float, F32: 1.0000001}, signal.DataValue{Kind: signal.Double, F64: 1.0}, "=", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := compareValues(c.op, c.l, c.r)
			require.NoError(t, err)
			assert.Equal(t, c.expected, got)
		})
	}
}

func TestBoolStringCastErrors(t *testing.T) {
	_, err := compareValues("<", signal.NewBool(true), signal.NewBool(false))
	assert.ErrorIs(t, err, ErrCastError)

	_, err = compareValues("=", signal.NewString("a"), signal.NewInt32(1))
	assert.ErrorIs(t, err, ErrCastError)
}

// TestBoolCorePrograms exercises the expr-lang-backed NOT/AND/OR/compare/
// BETWEEN core end to end, including a NOT nested around a parenthesized
// AND and a negated BETWEEN, to make sure compileBoolCore's source
// generation and runBoolProgram's environment wiring agree with each
// other for every boolean-core kind, not just a bare comparison.
func TestBoolCorePrograms(t *testing.T) {
	meta := fakeMetadata{"A": signal.Int32, "B": signal.Bool}

	cq, err := Compile("SELECT A WHERE NOT (A > 50 AND B = true)", meta)
	require.NoError(t, err)
	_, matched, err := Execute(cq, Snapshot{
		"A": {Current: signal.NewInt32(61)},
		"B": {Current: signal.NewBool(true)},
	})
	require.NoError(t, err)
	assert.False(t, matched, "NOT should invert a true AND")
	_, matched, err = Execute(cq, Snapshot{
		"A": {Current: signal.NewInt32(10)},
		"B": {Current: signal.NewBool(true)},
	})
	require.NoError(t, err)
	assert.True(t, matched)

	cqNotBetween, err := Compile("SELECT A WHERE A NOT BETWEEN 10 AND 20", meta)
	require.NoError(t, err)
	_, matched, err = Execute(cqNotBetween, Snapshot{"A": {Current: signal.NewInt32(15)}})
	require.NoError(t, err)
	assert.False(t, matched)
	_, matched, err = Execute(cqNotBetween, Snapshot{"A": {Current: signal.NewInt32(25)}})
	require.NoError(t, err)
	assert.True(t, matched)
}
