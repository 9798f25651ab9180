package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/civic_response_system/internal/models"
	"github.com/shenikar/civic_response_system/internal/store"
)

func storedRecord[T any](t *testing.T, f *fixture, table store.Table, id string) *T {
	t.Helper()
	rows, err := f.backend.Select(context.Background(), table, store.Filter{"id": id})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	var v T
	require.NoError(t, json.Unmarshal(rows[0], &v))
	return &v
}

func TestKeyLocks_SerializeSameKey(t *testing.T) {
	// Подготовка
	var locks keyLocks
	var inside, maxInside int32
	var wg sync.WaitGroup

	// Действие
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("inc-1")
			defer unlock()
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	// Проверки
	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, locks.held())
}

func TestKeyLocks_IndependentKeys(t *testing.T) {
	var locks keyLocks
	unlockA := locks.lock("a")
	done := make(chan struct{})
	go func() {
		unlock := locks.lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on another key must not wait")
	}
	unlockA()
	assert.Equal(t, 0, locks.held())
}

func TestConcurrentWrites_KeepEveryEntry(t *testing.T) {
	// Подготовка
	const n = 40
	f := newFixture(t)
	ctx := context.Background()
	responders := make([]*models.Responder, n)
	for i := range responders {
		responders[i] = f.responder(t, fmt.Sprintf("r%02d", i), models.AvailabilityOffline)
	}
	inc := f.incident(t, models.SeverityHigh)
	_, err := f.workspace.CreateCoordination(ctx, inc.ID, CreateCoordinationInput{CoordinatorID: "coord"})
	require.NoError(t, err)

	// Действие
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i, r := range responders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.incidents.AssignResponder(ctx, inc.ID, r.ID, "coord"); err != nil {
				errs <- err
			}
			if _, err := f.workspace.AddTeam(ctx, inc.ID, TeamInput{Name: fmt.Sprintf("team-%02d", i), Lead: r.ID}, "coord"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	// Проверки
	for err := range errs {
		require.NoError(t, err)
	}
	stored := storedRecord[models.Incident](t, f, store.TableIncidents, inc.ID)
	assert.Len(t, stored.RespondersAssigned, n)
	assert.Equal(t, int64(1+n), stored.Version)

	got, err := f.incidents.GetIncident(ctx, inc.ID)
	require.NoError(t, err)
	assert.Len(t, got.RespondersAssigned, n)

	coordination := storedRecord[models.ResponseCoordination](t, f, store.TableCoordinations, inc.ID)
	assert.Len(t, coordination.Teams, n)
	assert.Len(t, coordination.Timeline, 1+n)

	assignments := 0
	for _, r := range responders {
		for _, alert := range f.inbox.Filter(r.ID, FilterAll) {
			if alert.Type == models.AlertAssignment {
				assignments++
			}
		}
		stored := storedRecord[models.Responder](t, f, store.TableResponders, r.ID)
		assert.Equal(t, []string{inc.ID}, stored.CurrentIncidents)
	}
	assert.Equal(t, n, assignments)
}

func TestConcurrentMarkRead_KeepsEveryReceipt(t *testing.T) {
	// Подготовка
	const n = 20
	f := newFixture(t)
	ctx := context.Background()
	recipients := make([]string, n)
	for i := range recipients {
		recipients[i] = fmt.Sprintf("u%02d", i)
	}
	msg, err := f.messages.Send(ctx, SendMessageInput{SenderID: "coord", RecipientIDs: recipients, Content: "cipher"})
	require.NoError(t, err)

	// Действие
	var wg sync.WaitGroup
	for _, userID := range recipients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.messages.MarkRead(ctx, msg.ID, userID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Проверки
	stored := storedRecord[models.SecureMessage](t, f, store.TableMessages, msg.ID)
	assert.Len(t, stored.ReadBy, n)
}
