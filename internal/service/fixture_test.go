package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/civic_response_system/internal/models"
	"github.com/shenikar/civic_response_system/internal/notify"
	"github.com/shenikar/civic_response_system/internal/privacy"
	"github.com/shenikar/civic_response_system/internal/repository/memstore"
	"github.com/shenikar/civic_response_system/internal/store"
	"github.com/shenikar/civic_response_system/pkg/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingSurface struct {
	mu  sync.Mutex
	got []notify.Notification
	err error
}

func (r *recordingSurface) Notify(_ context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return r.err
}

func (r *recordingSurface) Notifications() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.got...)
}

type fixture struct {
	backend    *memstore.Store
	clock      *fakeClock
	surface    *recordingSurface
	responders *ResponderDirectory
	inbox      *AlertInbox
	dispatcher *Dispatcher
	incidents  *IncidentStore
	messages   *MessagingChannel
	workspace  *Workspace
}

func testLogger() *logrus.Logger {
	return logger.Discard()
}

// newFixture собирает все компоненты поверх общего хранилища в памяти
func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithBackend(t, memstore.New())
}

func newFixtureWithBackend(t *testing.T, backend store.Backend) *fixture {
	t.Helper()
	logger := testLogger()
	metrics := NewMetrics(nil)
	clock := newFakeClock()
	surface := &recordingSurface{}
	encoder := privacy.NewGridEncoder(privacy.DefaultCellDegrees)

	f := &fixture{clock: clock, surface: surface}
	if mem, ok := backend.(*memstore.Store); ok {
		f.backend = mem
	}
	f.responders = NewResponderDirectory(backend, encoder, logger, metrics)
	f.inbox = NewAlertInbox(backend, surface, time.Second, logger, metrics)
	f.dispatcher = NewDispatcher(backend, f.responders, f.inbox, logger, metrics)
	f.incidents = NewIncidentStore(backend, encoder, f.responders, f.dispatcher, logger, metrics)
	f.messages = NewMessagingChannel(backend, logger, metrics)
	f.workspace = NewWorkspace(backend, f.incidents, f.responders, logger, metrics)

	f.responders.clock = clock.Now
	f.inbox.clock = clock.Now
	f.dispatcher.clock = clock.Now
	f.incidents.clock = clock.Now
	f.messages.clock = clock.Now
	f.workspace.clock = clock.Now

	t.Cleanup(f.inbox.Wait)
	return f
}

func (f *fixture) responder(t *testing.T, name string, status models.AvailabilityStatus, skills ...string) *models.Responder {
	t.Helper()
	r, err := f.responders.Register(context.Background(), RegisterResponderInput{
		UserID: "user-" + name,
		Name:   name,
		Skills: skills,
		Status: status,
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) incident(t *testing.T, severity models.Severity, skills ...string) *models.Incident {
	t.Helper()
	inc, err := f.incidents.CreateIncident(context.Background(), CreateIncidentInput{
		Title:          "Flooded underpass",
		Description:    "Water rising on Main St underpass",
		TypeName:       "flood",
		RequiredSkills: skills,
		Severity:       severity,
		Region:         "north",
		ReporterID:     "reporter-1",
	})
	require.NoError(t, err)
	return inc
}

func ptr[T any](v T) *T {
	return &v
}
