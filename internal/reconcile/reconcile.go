// Package reconcile применяет push-события хранилища к локальным зеркалам.
// На каждую подписку работает одна горутина-потребитель; все события проходят
// через общую очередь, которую разбирает Run.
package reconcile

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/civic_response_system/internal/apperr"
	"github.com/shenikar/civic_response_system/internal/models"
	"github.com/shenikar/civic_response_system/internal/store"
)

// ErrClosed возвращается при подписке после Close
var ErrClosed = errors.New("reconciler closed")

const queueSize = 256

// Policy - правило разрешения конфликтов для входящих версий инцидента
type Policy string

const (
	// ServerWins - входящая версия заменяет локальную целиком, если ее номер версии
	// не меньше локального. Запоздавшие события собственных записей так отбрасываются.
	ServerWins Policy = "server_wins"
	// NewerWins - дополнительно отбрасывает версии с более ранним updatedAt
	NewerWins Policy = "newer_wins"
)

type IncidentMirror interface {
	ReplaceIncident(incident *models.Incident) bool
	ReplaceIfNewer(incident *models.Incident) bool
	RemoveIncident(id string)
	ApplyUpdate(update models.IncidentUpdate) bool
}

type AlertMirror interface {
	Receive(alert *models.Alert) bool
	ApplyAlert(alert *models.Alert)
}

type MessageMirror interface {
	ApplyMessage(msg *models.SecureMessage)
}

type ResponderMirror interface {
	ApplyResponder(r *models.Responder) bool
	RemoveResponder(id string)
}

type CoordinationMirror interface {
	ApplyCoordination(c *models.ResponseCoordination) bool
}

// Mirrors - зеркала, в которые попадают события; nil поле отключает таблицу
type Mirrors struct {
	Incidents     IncidentMirror
	Alerts        AlertMirror
	Messages      MessageMirror
	Responders    ResponderMirror
	Coordinations CoordinationMirror
}

// State - состояние подписки
type State string

const (
	StateLive   State = "live"
	StatePaused State = "paused"
)

// WatchStatus - состояние одной подписки наблюдения
type WatchStatus struct {
	Key   string      `json:"key"`
	Table store.Table `json:"table"`
	State State       `json:"state"`
	Error string      `json:"error,omitempty"`
	Since time.Time   `json:"since"`
	Err   error       `json:"-"`
}

type feed struct {
	table  store.Table
	filter store.Filter

	sub    store.Subscription
	cancel context.CancelFunc
	state  State
	err    error
	since  time.Time
}

type watch struct {
	key   string
	feeds []*feed
}

type Reconciler struct {
	backend store.Backend
	mirrors Mirrors
	policy  Policy
	logger  *logrus.Logger
	metrics *Metrics
	clock   func() time.Time

	queue chan store.ChangeEvent

	mu      sync.Mutex
	watches map[string]*watch
	closed  bool

	consumers sync.WaitGroup
}

func New(backend store.Backend, mirrors Mirrors, policy Policy, logger *logrus.Logger, metrics *Metrics) *Reconciler {
	if policy != NewerWins {
		policy = ServerWins
	}
	return &Reconciler{
		backend: backend,
		mirrors: mirrors,
		policy:  policy,
		logger:  logger,
		metrics: metrics,
		clock:   func() time.Time { return time.Now().UTC() },
		queue:   make(chan store.ChangeEvent, queueSize),
		watches: make(map[string]*watch),
	}
}

// Run разбирает очередь событий до отмены контекста
func (r *Reconciler) Run(ctx context.Context) error {
	r.logger.WithField("policy", r.policy).Info("Reconciler started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Reconciler stopped")
			return nil
		case ev := <-r.queue:
			if err := r.Apply(ev); err != nil {
				r.logger.WithError(err).WithFields(logrus.Fields{
					"table": ev.Table,
					"type":  ev.Type,
				}).Warn("Failed to apply pushed change")
			}
		}
	}
}

// Apply применяет одно событие к соответствующему зеркалу
func (r *Reconciler) Apply(ev store.ChangeEvent) error {
	applied, err := r.apply(ev)
	outcome := "applied"
	switch {
	case err != nil:
		outcome = "failed"
	case !applied:
		outcome = "ignored"
	}
	r.metrics.EventsApplied.WithLabelValues(string(ev.Table), string(ev.Type), outcome).Inc()
	return err
}

func (r *Reconciler) apply(ev store.ChangeEvent) (bool, error) {
	switch ev.Table {
	case store.TableIncidents:
		if r.mirrors.Incidents == nil {
			return false, nil
		}
		if ev.Type == store.EventDelete {
			id := store.RecordID(ev.Old)
			if id == "" {
				return false, errors.New("incident delete without id")
			}
			r.mirrors.Incidents.RemoveIncident(id)
			return true, nil
		}
		incident, err := decode[models.Incident](ev.New)
		if err != nil {
			return false, err
		}
		if r.policy == NewerWins {
			if !r.mirrors.Incidents.ReplaceIfNewer(incident) {
				r.logger.WithField("incident_id", incident.ID).Debug("Ignored stale incident push")
				return false, nil
			}
			return true, nil
		}
		if !r.mirrors.Incidents.ReplaceIncident(incident) {
			r.logger.WithField("incident_id", incident.ID).Debug("Ignored incident push older than mirror")
			return false, nil
		}
		return true, nil

	case store.TableIncidentUpdates:
		if r.mirrors.Incidents == nil || ev.Type == store.EventDelete {
			return false, nil
		}
		update, err := decode[models.IncidentUpdate](ev.New)
		if err != nil {
			return false, err
		}
		return r.mirrors.Incidents.ApplyUpdate(*update), nil

	case store.TableAlerts:
		if r.mirrors.Alerts == nil || ev.Type == store.EventDelete {
			return false, nil
		}
		alert, err := decode[models.Alert](ev.New)
		if err != nil {
			return false, err
		}
		if ev.Type == store.EventInsert {
			return r.mirrors.Alerts.Receive(alert), nil
		}
		r.mirrors.Alerts.ApplyAlert(alert)
		return true, nil

	case store.TableMessages:
		if r.mirrors.Messages == nil || ev.Type == store.EventDelete {
			return false, nil
		}
		msg, err := decode[models.SecureMessage](ev.New)
		if err != nil {
			return false, err
		}
		r.mirrors.Messages.ApplyMessage(msg)
		return true, nil

	case store.TableResponders:
		if r.mirrors.Responders == nil {
			return false, nil
		}
		if ev.Type == store.EventDelete {
			r.mirrors.Responders.RemoveResponder(store.RecordID(ev.Old))
			return true, nil
		}
		responder, err := decode[models.Responder](ev.New)
		if err != nil {
			return false, err
		}
		return r.mirrors.Responders.ApplyResponder(responder), nil

	case store.TableCoordinations:
		if r.mirrors.Coordinations == nil || ev.Type == store.EventDelete {
			return false, nil
		}
		c, err := decode[models.ResponseCoordination](ev.New)
		if err != nil {
			return false, err
		}
		return r.mirrors.Coordinations.ApplyCoordination(c), nil
	}
	return false, fmt.Errorf("%w: %s", store.ErrUnknownTable, ev.Table)
}

// WatchIncident подписывается на изменения инцидента и его журнала
func (r *Reconciler) WatchIncident(ctx context.Context, incidentID string) error {
	if strings.TrimSpace(incidentID) == "" {
		return apperr.Validation("reconcile.WatchIncident", "incident id is required")
	}
	return r.watch(ctx, IncidentKey(incidentID), []*feed{
		{table: store.TableIncidents, filter: store.Filter{"id": incidentID}},
		{table: store.TableIncidentUpdates, filter: store.Filter{"incident_id": incidentID}},
	})
}

// WatchRecipient подписывается на оповещения получателя
func (r *Reconciler) WatchRecipient(ctx context.Context, recipientID string) error {
	if strings.TrimSpace(recipientID) == "" {
		return apperr.Validation("reconcile.WatchRecipient", "recipient id is required")
	}
	return r.watch(ctx, RecipientKey(recipientID), []*feed{
		{table: store.TableAlerts, filter: store.Filter{"recipient_id": recipientID}},
	})
}

// WatchAll подписывается на все таблицы без фильтра
func (r *Reconciler) WatchAll(ctx context.Context) error {
	feeds := make([]*feed, 0, len(store.Tables))
	for _, t := range store.Tables {
		feeds = append(feeds, &feed{table: t})
	}
	return r.watch(ctx, AllKey, feeds)
}

const AllKey = "all"

func IncidentKey(id string) string  { return "incident:" + id }
func RecipientKey(id string) string { return "recipient:" + id }

// watch заменяет наблюдение по ключу. Подписки, которые не удалось установить,
// остаются в состоянии paused, и Resume пробует их снова.
func (r *Reconciler) watch(ctx context.Context, key string, feeds []*feed) error {
	r.Release(key)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return apperr.Subscription(key, ErrClosed)
	}
	w := &watch{key: key, feeds: feeds}
	now := r.clock()
	for _, f := range feeds {
		f.state = StatePaused
		f.since = now
	}
	r.watches[key] = w
	r.mu.Unlock()

	var errs []error
	for _, f := range feeds {
		if err := r.establish(ctx, w, f); err != nil {
			errs = append(errs, err)
		}
	}
	r.refreshGauges()

	log := r.logger.WithField("watch", key)
	if len(errs) > 0 {
		err := errors.Join(errs...)
		log.WithError(err).Warn("Watch established partially, live updates paused")
		return err
	}
	log.Info("Watch established")
	return nil
}

// establish открывает подписку для feed и запускает ее потребителя
func (r *Reconciler) establish(ctx context.Context, w *watch, f *feed) error {
	feedCtx, cancel := context.WithCancel(ctx)
	sub, err := r.backend.Subscribe(feedCtx, f.table, f.filter)
	if err != nil {
		cancel()
		subErr := apperr.Subscription(w.key, err)
		r.mu.Lock()
		f.err = subErr
		r.mu.Unlock()
		return subErr
	}

	r.mu.Lock()
	if r.closed || r.watches[w.key] != w {
		r.mu.Unlock()
		cancel()
		_ = sub.Close()
		return nil
	}
	f.sub = sub
	f.cancel = cancel
	f.state = StateLive
	f.err = nil
	f.since = r.clock()
	r.consumers.Add(1)
	r.mu.Unlock()

	go r.consume(feedCtx, w.key, f, sub)
	return nil
}

// consume переносит события подписки в общую очередь
func (r *Reconciler) consume(ctx context.Context, key string, f *feed, sub store.Subscription) {
	defer r.consumers.Done()
	for ev := range sub.Events() {
		select {
		case r.queue <- ev:
		case <-ctx.Done():
			return
		}
	}
	if ctx.Err() != nil {
		return
	}

	cause := sub.Err()
	if cause == nil {
		cause = errors.New("subscription closed by backend")
	}
	r.mu.Lock()
	if f.sub != sub {
		r.mu.Unlock()
		return
	}
	f.sub = nil
	f.state = StatePaused
	f.err = apperr.Subscription(key, cause)
	f.since = r.clock()
	cancel := f.cancel
	f.cancel = nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	r.refreshGauges()
	r.logger.WithError(cause).WithFields(logrus.Fields{
		"watch": key,
		"table": f.table,
	}).Warn("Subscription dropped, live updates paused")
}

// Release снимает наблюдение по ключу; false, если его не было
func (r *Reconciler) Release(key string) bool {
	r.mu.Lock()
	w, ok := r.watches[key]
	if ok {
		delete(r.watches, key)
	}
	var stops []func()
	if ok {
		stops = detach(w)
	}
	r.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
	if ok {
		r.refreshGauges()
		r.logger.WithField("watch", key).Info("Watch released")
	}
	return ok
}

// detach вызывается под блокировкой
func detach(w *watch) []func() {
	stops := make([]func(), 0, len(w.feeds))
	for _, f := range w.feeds {
		sub, cancel := f.sub, f.cancel
		f.sub, f.cancel = nil, nil
		if cancel != nil {
			stops = append(stops, cancel)
		}
		if sub != nil {
			stops = append(stops, func() { _ = sub.Close() })
		}
	}
	return stops
}

// Resume заново устанавливает приостановленные подписки
func (r *Reconciler) Resume(ctx context.Context) error {
	type pending struct {
		w *watch
		f *feed
	}
	r.mu.Lock()
	var todo []pending
	for _, w := range r.watches {
		for _, f := range w.feeds {
			if f.state == StatePaused {
				todo = append(todo, pending{w: w, f: f})
			}
		}
	}
	r.mu.Unlock()
	if len(todo) == 0 {
		return nil
	}

	var errs []error
	resumed := 0
	for _, p := range todo {
		if err := r.establish(ctx, p.w, p.f); err != nil {
			errs = append(errs, err)
			continue
		}
		resumed++
	}
	r.refreshGauges()
	r.logger.WithFields(logrus.Fields{
		"resumed": resumed,
		"failed":  len(errs),
	}).Info("Resumed paused subscriptions")
	return errors.Join(errs...)
}

// Status возвращает состояние всех подписок, упорядоченное по ключу и таблице
func (r *Reconciler) Status() []WatchStatus {
	r.mu.Lock()
	out := make([]WatchStatus, 0)
	for _, w := range r.watches {
		for _, f := range w.feeds {
			st := WatchStatus{Key: w.key, Table: f.table, State: f.state, Since: f.since, Err: f.err}
			if f.err != nil {
				st.Error = f.err.Error()
			}
			out = append(out, st)
		}
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b WatchStatus) int {
		if c := cmp.Compare(a.Key, b.Key); c != 0 {
			return c
		}
		return cmp.Compare(a.Table, b.Table)
	})
	return out
}

// Paused - число приостановленных подписок
func (r *Reconciler) Paused() int {
	_, paused := r.counts()
	return paused
}

// Close снимает все наблюдения и дожидается потребителей
func (r *Reconciler) Close() error {
	r.mu.Lock()
	r.closed = true
	var stops []func()
	for key, w := range r.watches {
		stops = append(stops, detach(w)...)
		delete(r.watches, key)
	}
	r.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
	r.consumers.Wait()
	r.refreshGauges()
	return nil
}

func (r *Reconciler) counts() (live, paused int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.watches {
		for _, f := range w.feeds {
			if f.state == StateLive {
				live++
			} else {
				paused++
			}
		}
	}
	return live, paused
}

func (r *Reconciler) refreshGauges() {
	live, paused := r.counts()
	r.metrics.LiveFeeds.Set(float64(live))
	r.metrics.PausedFeeds.Set(float64(paused))
}

func decode[T any](raw json.RawMessage) (*T, error) {
	if len(raw) == 0 {
		return nil, errors.New("event carries no record")
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode pushed record: %w", err)
	}
	return &v, nil
}
