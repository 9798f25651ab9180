package memstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/civic_response_system/internal/store"
)

func nextEvent(t *testing.T, sub store.Subscription) store.ChangeEvent {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return store.ChangeEvent{}
}

func TestInsertSelect(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Insert(ctx, store.TableAlerts, json.RawMessage(`{"id":"a1","recipient_id":"u1"}`))
	require.NoError(t, err)
	_, err = s.Insert(ctx, store.TableAlerts, json.RawMessage(`{"id":"a2","recipient_id":"u2"}`))
	require.NoError(t, err)

	all, err := s.Select(ctx, store.TableAlerts, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "a1", store.RecordID(all[0]))

	mine, err := s.Select(ctx, store.TableAlerts, store.Filter{"recipient_id": "u2"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "a2", store.RecordID(mine[0]))
}

func TestInsert_Conflict(t *testing.T) {
	s := New()
	ctx := context.Background()
	rec := json.RawMessage(`{"id":"i1"}`)

	_, err := s.Insert(ctx, store.TableIncidents, rec)
	require.NoError(t, err)
	_, err = s.Insert(ctx, store.TableIncidents, rec)

	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestInsert_MissingID(t *testing.T) {
	_, err := New().Insert(context.Background(), store.TableIncidents, json.RawMessage(`{"title":"x"}`))
	assert.Error(t, err)
}

func TestUpdate_NotFound(t *testing.T) {
	_, err := New().Update(context.Background(), store.TableIncidents, "nope", map[string]any{"title": "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUnknownTable(t *testing.T) {
	_, err := New().Select(context.Background(), store.Table("bogus"), nil)
	assert.ErrorIs(t, err, store.ErrUnknownTable)
}

func TestSubscribe_FilteredDelivery(t *testing.T) {
	s := New()
	ctx := context.Background()

	sub, err := s.Subscribe(ctx, store.TableIncidents, store.Filter{"id": "i1"})
	require.NoError(t, err)
	defer sub.Close()

	_, err = s.Insert(ctx, store.TableIncidents, json.RawMessage(`{"id":"i2","title":"other"}`))
	require.NoError(t, err)
	_, err = s.Insert(ctx, store.TableIncidents, json.RawMessage(`{"id":"i1","title":"mine"}`))
	require.NoError(t, err)
	_, err = s.Update(ctx, store.TableIncidents, "i1", map[string]any{"title": "renamed"})
	require.NoError(t, err)

	ev := nextEvent(t, sub)
	assert.Equal(t, store.EventInsert, ev.Type)
	assert.Equal(t, "i1", store.RecordID(ev.New))

	ev = nextEvent(t, sub)
	assert.Equal(t, store.EventUpdate, ev.Type)
	assert.JSONEq(t, `{"id":"i1","title":"renamed"}`, string(ev.New))
	assert.JSONEq(t, `{"id":"i1","title":"mine"}`, string(ev.Old))
}

func TestSubscribe_DeleteEvent(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.Insert(ctx, store.TableIncidents, json.RawMessage(`{"id":"i1"}`))
	require.NoError(t, err)

	sub, err := s.Subscribe(ctx, store.TableIncidents, store.Filter{"id": "i1"})
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, s.Delete(ctx, store.TableIncidents, "i1"))

	ev := nextEvent(t, sub)
	assert.Equal(t, store.EventDelete, ev.Type)
	assert.Nil(t, ev.New)
}

func TestClose_ReleasesSubscriber(t *testing.T) {
	s := New()
	sub, err := s.Subscribe(context.Background(), store.TableAlerts, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, s.SubscriberCount())

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	_, ok := <-sub.Events()
	assert.False(t, ok)
	assert.NoError(t, sub.Err())
	assert.Equal(t, 0, s.SubscriberCount())
}

func TestContextCancel_ClosesSubscription(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := s.Subscribe(ctx, store.TableAlerts, nil)
	require.NoError(t, err)

	cancel()

	assert.Eventually(t, func() bool { return s.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.NoError(t, sub.Err())
}

func TestDropSubscriptions_SetsErr(t *testing.T) {
	s := New()
	sub, err := s.Subscribe(context.Background(), store.TableAlerts, nil)
	require.NoError(t, err)
	boom := errors.New("connection reset")

	s.DropSubscriptions(boom)

	_, ok := <-sub.Events()
	assert.False(t, ok)
	assert.ErrorIs(t, sub.Err(), boom)
}
