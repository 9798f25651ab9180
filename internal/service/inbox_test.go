package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/civic_response_system/internal/apperr"
	"github.com/shenikar/civic_response_system/internal/models"
	"github.com/shenikar/civic_response_system/internal/store"
)

func seedAlert(t *testing.T, f *fixture, alert models.Alert) *models.Alert {
	t.Helper()
	raw, err := encode(alert)
	require.NoError(t, err)
	_, err = f.backend.Insert(context.Background(), store.TableAlerts, raw)
	require.NoError(t, err)
	require.True(t, f.inbox.Receive(&alert))
	return &alert
}

func TestAcknowledge_Idempotent(t *testing.T) {
	// Подготовка
	f := newFixture(t)
	ctx := context.Background()
	alert := seedAlert(t, f, models.Alert{ID: "a-1", RecipientID: "u1", Type: models.AlertSystem, Priority: models.PriorityLow, CreatedAt: f.clock.Now()})

	// Действие
	first, err := f.inbox.Acknowledge(ctx, alert.ID, "u1")
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	second, err := f.inbox.Acknowledge(ctx, alert.ID, "u1")
	require.NoError(t, err)

	// Проверки
	require.NotNil(t, first.AcknowledgedAt)
	require.NotNil(t, second.AcknowledgedAt)
	assert.True(t, first.AcknowledgedAt.Equal(*second.AcknowledgedAt))
	assert.Equal(t, 0, f.inbox.UnreadCount("u1"))
}

func TestAcknowledge_Unknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.inbox.Acknowledge(context.Background(), "missing", "u1")

	assert.True(t, apperr.IsNotFound(err))
}

func TestAcknowledge_OnlyRecipient(t *testing.T) {
	// Подготовка
	f := newFixture(t)
	ctx := context.Background()
	alert := seedAlert(t, f, models.Alert{ID: "a-1", RecipientID: "u1", Priority: models.PriorityHigh, CreatedAt: f.clock.Now()})

	// Действие
	_, err := f.inbox.Acknowledge(ctx, alert.ID, "u2")

	// Проверки
	assert.True(t, apperr.IsNotFound(err))
	got, getErr := f.inbox.Get(alert.ID)
	require.NoError(t, getErr)
	assert.Nil(t, got.AcknowledgedAt)
	assert.Equal(t, 1, f.inbox.UnreadCount("u1"))
}

func TestFilter_ModesAndOrder(t *testing.T) {
	// Подготовка
	f := newFixture(t)
	ctx := context.Background()
	t0 := f.clock.Now()
	seedAlert(t, f, models.Alert{ID: "old-low", RecipientID: "u1", Priority: models.PriorityLow, CreatedAt: t0})
	seedAlert(t, f, models.Alert{ID: "tie-first", RecipientID: "u1", Priority: models.PriorityHigh, CreatedAt: t0.Add(time.Minute)})
	seedAlert(t, f, models.Alert{ID: "tie-second", RecipientID: "u1", Priority: models.PriorityMedium, CreatedAt: t0.Add(time.Minute)})
	seedAlert(t, f, models.Alert{ID: "newest", RecipientID: "u1", Priority: models.PriorityUrgent, CreatedAt: t0.Add(2 * time.Minute)})
	seedAlert(t, f, models.Alert{ID: "other", RecipientID: "u2", Priority: models.PriorityUrgent, CreatedAt: t0})
	_, err := f.inbox.Acknowledge(ctx, "newest", "u1")
	require.NoError(t, err)

	ids := func(alerts []*models.Alert) []string {
		out := make([]string, len(alerts))
		for i, a := range alerts {
			out[i] = a.ID
		}
		return out
	}

	// Проверки
	assert.Equal(t, []string{"newest", "tie-second", "tie-first", "old-low"}, ids(f.inbox.Filter("u1", FilterAll)))
	assert.Equal(t, []string{"tie-second", "tie-first", "old-low"}, ids(f.inbox.Filter("u1", FilterUnread)))
	assert.Equal(t, []string{"newest", "tie-first"}, ids(f.inbox.Filter("u1", FilterUrgent)))
	assert.Equal(t, 3, f.inbox.UnreadCount("u1"))
	assert.Equal(t, 1, f.inbox.UnreadCount("u2"))
}

func TestReceive_DuplicateIgnored(t *testing.T) {
	f := newFixture(t)
	alert := &models.Alert{ID: "a-1", RecipientID: "u1", Message: "hello", Type: models.AlertSystem}

	assert.True(t, f.inbox.Receive(alert))
	assert.False(t, f.inbox.Receive(alert))

	f.inbox.Wait()
	notes := f.surface.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "System notice", notes[0].Title)
	assert.Equal(t, "u1", notes[0].RecipientID)
}

func TestReceive_NotificationFailureIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.surface.err = errors.New("display unavailable")

	ok := f.inbox.Receive(&models.Alert{ID: "a-1", RecipientID: "u1"})
	f.inbox.Wait()

	assert.True(t, ok)
	_, err := f.inbox.Get("a-1")
	assert.NoError(t, err)
}

func TestApplyAlert_KeepsAcknowledgement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alert := seedAlert(t, f, models.Alert{ID: "a-1", RecipientID: "u1", Message: "v1", CreatedAt: f.clock.Now()})
	acked, err := f.inbox.Acknowledge(ctx, alert.ID, "u1")
	require.NoError(t, err)

	stale := *alert
	stale.Message = "v2"
	stale.AcknowledgedAt = nil
	f.inbox.ApplyAlert(&stale)

	got, err := f.inbox.Get(alert.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Message)
	require.NotNil(t, got.AcknowledgedAt)
	assert.True(t, acked.AcknowledgedAt.Equal(*got.AcknowledgedAt))
}

func TestInboxLoad_NoNotifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	raw, err := encode(models.Alert{ID: "a-1", RecipientID: "u1"})
	require.NoError(t, err)
	_, err = f.backend.Insert(ctx, store.TableAlerts, raw)
	require.NoError(t, err)

	require.NoError(t, f.inbox.Load(ctx))
	f.inbox.Wait()

	assert.Equal(t, 1, f.inbox.UnreadCount("u1"))
	assert.Empty(t, f.surface.Notifications())
}
