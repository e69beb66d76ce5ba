package broker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/store"
	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/signal"
)

func TestFieldSubscriptionInitialSnapshot(t *testing.T) {
	s := store.New()
	id, _ := s.Register("Vehicle.Speed", signal.Float, signal.Continuous, signal.Sensor, "")
	e := NewEngine(s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := e.Subscribe(ctx, map[int32]map[signal.Field]struct{}{id: {signal.FieldDatapoint: {}}})

	select {
	case update := <-ch:
		require.Len(t, update.Entries, 1)
		assert.Equal(t, id, update.Entries[0].ID)
	case <-time.After(time.Second):
		t.Fatal("expected an initial snapshot")
	}
}

func TestFieldSubscriptionOnlyNotifiesChangedIDs(t *testing.T) {
	s := store.New()
	watched, _ := s.Register("A", signal.Int32, signal.OnChange, signal.Sensor, "")
	other, _ := s.Register("B", signal.Int32, signal.OnChange, signal.Sensor, "")
	e := NewEngine(s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := e.Subscribe(ctx, map[int32]map[signal.Field]struct{}{watched: {signal.FieldDatapoint: {}}})
	<-ch // drain initial snapshot

	_, errs := e.Apply([]store.EntryUpdate{{ID: other, Datapoint: &signal.Datapoint{Value: signal.NewInt32(1), TS: time.Now()}}})
	require.Empty(t, errs)

	select {
	case <-ch:
		t.Fatal("subscriber for A must not be notified of a change to B")
	case <-time.After(100 * time.Millisecond):
	}

	_, errs = e.Apply([]store.EntryUpdate{{ID: watched, Datapoint: &signal.Datapoint{Value: signal.NewInt32(5), TS: time.Now()}}})
	require.Empty(t, errs)

	select {
	case update := <-ch:
		require.Len(t, update.Entries, 1)
		assert.Equal(t, watched, update.Entries[0].ID)
	case <-time.After(time.Second):
		t.Fatal("expected a notification for the change to A")
	}
}

func TestQuerySubscriptionInitialAndChangeDriven(t *testing.T) {
	s := store.New()
	id, _ := s.Register("A", signal.Int32, signal.OnChange, signal.Sensor, "")
	e := NewEngine(s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := e.SubscribeQuery(ctx, "SELECT A WHERE A > 10")
	require.NoError(t, err)

	select {
	case <-ch:
		t.Fatal("A starts NotAvailable, WHERE A > 10 should not match initially")
	case <-time.After(100 * time.Millisecond):
	}

	_, errs := e.Apply([]store.EntryUpdate{{ID: id, Datapoint: &signal.Datapoint{Value: signal.NewInt32(20), TS: time.Now()}}})
	require.Empty(t, errs)

	select {
	case resp := <-ch:
		require.Len(t, resp.Row, 1)
		assert.Equal(t, int32(20), resp.Row[0].Value.I32)
	case <-time.After(time.Second):
		t.Fatal("expected a row once A exceeds 10")
	}
}

func TestUnsubscribeViaContextCancellation(t *testing.T) {
	s := store.New()
	id, _ := s.Register("A", signal.Int32, signal.OnChange, signal.Sensor, "")
	e := NewEngine(s)

	ctx, cancel := context.WithCancel(context.Background())
	ch := e.Subscribe(ctx, map[int32]map[signal.Field]struct{}{id: {signal.FieldDatapoint: {}}})
	<-ch

	cancel()
	require.Eventually(t, func() bool {
		e.mu.RLock()
		defer e.mu.RUnlock()
		return len(e.fieldSubs) == 0
	}, time.Second, 10*time.Millisecond)
}
