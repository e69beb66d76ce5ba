package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/signal"
)

func TestRegisterIdempotence(t *testing.T) {
	s := New()

	id1, err := s.Register("Vehicle.Speed", signal.Float, signal.Continuous, signal.Sensor, "")
	require.NoError(t, err)

	id2, err := s.Register("Vehicle.Speed", signal.Float, signal.Continuous, signal.Sensor, "")
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "re-registering the same path must return the same id")

	_, err = s.Register("Vehicle.Speed", signal.Int32, signal.Continuous, signal.Sensor, "")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestBijection(t *testing.T) {
	s := New()
	id, err := s.Register("Vehicle.ADAS.ABS.IsActive", signal.Bool, signal.OnChange, signal.Sensor, "")
	require.NoError(t, err)

	entry, ok := s.GetByPath("vehicle.adas.abs.isactive")
	require.True(t, ok, "case-insensitive lookup must succeed")
	assert.Equal(t, id, entry.Metadata.ID)
	assert.Equal(t, "Vehicle.ADAS.ABS.IsActive", entry.Metadata.Path, "display path keeps original casing")
}

func TestRegisterAndReadDefaultsToNotAvailable(t *testing.T) {
	s := New()
	id, err := s.Register("Vehicle.Speed", signal.Float, signal.Continuous, signal.Sensor, "")
	require.NoError(t, err)
	assert.Equal(t, int32(0), id)

	entry, ok := s.GetByID(0)
	require.True(t, ok)
	assert.False(t, entry.Current.Value.IsAvailable())
}

func TestBoundsCheck(t *testing.T) {
	s := New()
	id, err := s.Register("Vehicle.Gear", signal.Int8, signal.OnChange, signal.Sensor, "")
	require.NoError(t, err)

	_, errs := s.Update([]EntryUpdate{{ID: id, Datapoint: &signal.Datapoint{Value: signal.NewInt32(200), TS: time.Now()}}})
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0].Err, ErrOutOfBounds)

	entry, _ := s.GetByID(id)
	assert.False(t, entry.Current.Value.IsAvailable(), "rejected write must not mutate the entry")

	changed, errs := s.Update([]EntryUpdate{{ID: id, Datapoint: &signal.Datapoint{Value: signal.NewInt32(100), TS: time.Now()}}})
	require.Empty(t, errs)
	assert.Contains(t, changed, id)

	entry, _ = s.GetByID(id)
	assert.Equal(t, int32(100), entry.Current.Value.I32)
}

func TestChangeTypeLaw(t *testing.T) {
	t.Run("OnChange dedups repeated writes", func(t *testing.T) {
		s := New()
		id, _ := s.Register("A", signal.Int32, signal.OnChange, signal.Sensor, "")

		notifications := 0
		for _, v := range []int32{5, 5, 6} {
			changed, errs := s.Update([]EntryUpdate{{ID: id, Datapoint: &signal.Datapoint{Value: signal.NewInt32(v), TS: time.Now()}}})
			require.Empty(t, errs)
			if _, ok := changed[id]; ok {
				notifications++
			}
		}
		assert.Equal(t, 2, notifications)
	})

	t.Run("Continuous notifies on every write", func(t *testing.T) {
		s := New()
		id, _ := s.Register("A", signal.Int32, signal.Continuous, signal.Sensor, "")

		notifications := 0
		for _, v := range []int32{5, 5} {
			changed, errs := s.Update([]EntryUpdate{{ID: id, Datapoint: &signal.Datapoint{Value: signal.NewInt32(v), TS: time.Now()}}})
			require.Empty(t, errs)
			if _, ok := changed[id]; ok {
				notifications++
			}
		}
		assert.Equal(t, 2, notifications)
	})

	t.Run("Static notifies once", func(t *testing.T) {
		s := New()
		id, _ := s.Register("A", signal.Int32, signal.Static, signal.Sensor, "")

		notifications := 0
		for _, v := range []int32{5, 5} {
			changed, errs := s.Update([]EntryUpdate{{ID: id, Datapoint: &signal.Datapoint{Value: signal.NewInt32(v), TS: time.Now()}}})
			require.Empty(t, errs)
			if _, ok := changed[id]; ok {
				notifications++
			}
		}
		assert.Equal(t, 1, notifications)
	})
}

func TestBatchAtomicity(t *testing.T) {
	s := New()
	good, _ := s.Register("Good", signal.Int32, signal.OnChange, signal.Sensor, "")
	bad, _ := s.Register("Bad", signal.Int8, signal.OnChange, signal.Sensor, "")

	_, errs := s.Update([]EntryUpdate{
		{ID: good, Datapoint: &signal.Datapoint{Value: signal.NewInt32(42), TS: time.Now()}},
		{ID: bad, Datapoint: &signal.Datapoint{Value: signal.NewInt32(999), TS: time.Now()}},
	})
	require.Len(t, errs, 1)

	entry, _ := s.GetByID(good)
	assert.False(t, entry.Current.Value.IsAvailable(), "no element of a rejected batch may be applied")
}

func TestPreviousSlotLaw(t *testing.T) {
	s := New()
	id, _ := s.Register("P", signal.Int32, signal.Continuous, signal.Sensor, "")

	entry, _ := s.GetByID(id)
	assert.Nil(t, entry.Previous, "previous is unset before any change")

	_, errs := s.Update([]EntryUpdate{{ID: id, Datapoint: &signal.Datapoint{Value: signal.NewInt32(10), TS: time.Now()}}})
	require.Empty(t, errs)
	entry, _ = s.GetByID(id)
	require.NotNil(t, entry.Previous)
	assert.False(t, entry.Previous.Value.IsAvailable(), "after only one change, previous holds the displaced NotAvailable value")

	_, errs = s.Update([]EntryUpdate{{ID: id, Datapoint: &signal.Datapoint{Value: signal.NewInt32(20), TS: time.Now()}}})
	require.Empty(t, errs)
	entry, _ = s.GetByID(id)
	require.NotNil(t, entry.Previous)
	assert.Equal(t, int32(10), entry.Previous.Value.I32)
	assert.Equal(t, int32(20), entry.Current.Value.I32)
}

func TestTimestampWritesUnsupported(t *testing.T) {
	s := New()
	id, _ := s.Register("T", signal.Timestamp, signal.OnChange, signal.Sensor, "")
	_, errs := s.Update([]EntryUpdate{{ID: id, Datapoint: &signal.Datapoint{Value: signal.DataValue{Kind: signal.Timestamp}, TS: time.Now()}}})
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0].Err, ErrUnsupportedType)
}

func TestNotAvailableAcceptedEvenForTimestampEntry(t *testing.T) {
	s := New()
	id, _ := s.Register("T", signal.Timestamp, signal.OnChange, signal.Sensor, "")
	_, errs := s.Update([]EntryUpdate{{ID: id, Datapoint: &signal.Datapoint{Value: signal.Unavailable, TS: time.Now()}}})
	assert.Empty(t, errs, "NotAvailable is always accepted, even against a Timestamp-typed entry")
}

func TestRepeatedNotAvailableWriteIsNotAChange(t *testing.T) {
	s := New()
	id, _ := s.Register("A", signal.Int32, signal.OnChange, signal.Sensor, "")

	notifications := 0
	for range 3 {
		changed, errs := s.Update([]EntryUpdate{{ID: id, Datapoint: &signal.Datapoint{Value: signal.Unavailable, TS: time.Now()}}})
		require.Empty(t, errs)
		if _, ok := changed[id]; ok {
			notifications++
		}
	}
	assert.Equal(t, 0, notifications, "writing NotAvailable to an already-unset OnChange entry is never a change")
}

func TestActuatorTargetOnlyForActuators(t *testing.T) {
	s := New()
	sensorID, _ := s.Register("S", signal.Int32, signal.OnChange, signal.Sensor, "")
	actID, _ := s.Register("Act", signal.Int32, signal.OnChange, signal.Actuator, "")

	_, errs := s.Update([]EntryUpdate{{ID: sensorID, ActuatorTarget: &signal.Datapoint{Value: signal.NewInt32(1), TS: time.Now()}}})
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0].Err, ErrWrongType)

	changed, errs := s.Update([]EntryUpdate{{ID: actID, ActuatorTarget: &signal.Datapoint{Value: signal.NewInt32(1), TS: time.Now()}}})
	require.Empty(t, errs)
	assert.Contains(t, changed, actID)
}
