package service

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/civic_response_system/internal/apperr"
	"github.com/shenikar/civic_response_system/internal/models"
	"github.com/shenikar/civic_response_system/internal/notify"
	"github.com/shenikar/civic_response_system/internal/store"
)

// FilterMode - режим выборки входящих
type FilterMode string

const (
	FilterAll    FilterMode = "all"
	FilterUnread FilterMode = "unread"
	FilterUrgent FilterMode = "urgent"
)

func (m FilterMode) Valid() bool {
	switch m {
	case FilterAll, FilterUnread, FilterUrgent:
		return true
	}
	return false
}

var alertTitles = map[models.AlertType]string{
	models.AlertNewIncident:   "New incident",
	models.AlertAssignment:    "You have been assigned",
	models.AlertStatusUpdate:  "Incident status changed",
	models.AlertUrgentRequest: "Backup requested",
	models.AlertResolution:    "Incident resolved",
	models.AlertSystem:        "System notice",
}

type inboxEntry struct {
	alert *models.Alert
	seq   uint64
}

// AlertInbox - входящие оповещения получателей. Порядок: createdAt по убыванию,
// при равенстве более поздняя вставка выше.
type AlertInbox struct {
	backend       store.Backend
	surface       notify.Surface
	notifyTimeout time.Duration
	logger        *logrus.Logger
	metrics       *Metrics
	clock         func() time.Time

	mu     sync.RWMutex
	alerts map[string]*inboxEntry
	seq    uint64

	pending sync.WaitGroup
}

func NewAlertInbox(backend store.Backend, surface notify.Surface, notifyTimeout time.Duration, logger *logrus.Logger, metrics *Metrics) *AlertInbox {
	if surface == nil {
		surface = notify.Noop{}
	}
	if notifyTimeout <= 0 {
		notifyTimeout = 3 * time.Second
	}
	return &AlertInbox{
		backend:       backend,
		surface:       surface,
		notifyTimeout: notifyTimeout,
		logger:        logger,
		metrics:       metrics,
		clock:         utcNow,
		alerts:        make(map[string]*inboxEntry),
	}
}

// Load заполняет входящие из хранилища без уведомлений
func (in *AlertInbox) Load(ctx context.Context) error {
	rows, err := in.backend.Select(ctx, store.TableAlerts, nil)
	if err != nil {
		in.metrics.StoreErrors.WithLabelValues("alerts.load").Inc()
		return apperr.Store("alerts.Load", err)
	}
	list, decodeErr := decodeAll[models.Alert](rows)
	if decodeErr != nil {
		in.logger.WithError(decodeErr).Warn("Skipped malformed alert records")
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	in.alerts = make(map[string]*inboxEntry, len(list))
	for _, a := range list {
		in.seq++
		in.alerts[a.ID] = &inboxEntry{alert: a, seq: in.seq}
	}
	return nil
}

// Receive добавляет оповещение. При первой вставке асинхронно показывает
// уведомление; сбой уведомления не влияет на вставку. Возвращает false для дубликата.
func (in *AlertInbox) Receive(alert *models.Alert) bool {
	in.mu.Lock()
	if _, exists := in.alerts[alert.ID]; exists {
		in.mu.Unlock()
		return false
	}
	in.seq++
	in.alerts[alert.ID] = &inboxEntry{alert: alert.Clone(), seq: in.seq}
	in.mu.Unlock()

	n := notify.Notification{
		Title:       alertTitles[alert.Type],
		Body:        alert.Message,
		DedupeKey:   alert.ID,
		RecipientID: alert.RecipientID,
		Priority:    string(alert.Priority),
	}
	in.pending.Add(1)
	go func() {
		defer in.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), in.notifyTimeout)
		defer cancel()
		if err := in.surface.Notify(ctx, n); err != nil {
			in.metrics.NotifyFailures.Inc()
			in.logger.WithError(err).WithField("alert_id", n.DedupeKey).Debug("Local notification not delivered")
		}
	}()
	return true
}

// Wait дожидается завершения уже начатых уведомлений
func (in *AlertInbox) Wait() {
	in.pending.Wait()
}

// Acknowledge устанавливает acknowledgedAt один раз; повторный вызов ничего не меняет.
// Подтвердить оповещение может только его получатель, для остальных оно не существует.
func (in *AlertInbox) Acknowledge(ctx context.Context, alertID, recipientID string) (*models.Alert, error) {
	const op = "alerts.Acknowledge"
	current, err := in.Get(alertID)
	if err != nil {
		return nil, err
	}
	if current.RecipientID != recipientID {
		return nil, apperr.NotFound(op, "alert", alertID)
	}
	if current.Acknowledged() {
		return current, nil
	}

	at := in.clock()
	raw, err := in.backend.Update(ctx, store.TableAlerts, alertID, map[string]any{"acknowledged_at": at})
	if err != nil {
		in.logger.WithError(err).WithField("alert_id", alertID).Error("Failed to persist acknowledgement")
		in.metrics.StoreErrors.WithLabelValues(op).Inc()
		return nil, storeError(op, "alert", alertID, err)
	}
	updated, err := decode[models.Alert](raw)
	if err != nil {
		return nil, apperr.Store(op, err)
	}

	in.mu.Lock()
	entry, ok := in.alerts[alertID]
	if ok && entry.alert.AcknowledgedAt == nil {
		entry.alert = updated
		in.metrics.AlertsAcknowledged.Inc()
	} else if ok {
		updated = entry.alert
	}
	result := updated.Clone()
	in.mu.Unlock()

	in.logger.WithFields(logrus.Fields{
		"service":      "alerts",
		"method":       "Acknowledge",
		"alert_id":     alertID,
		"recipient_id": result.RecipientID,
	}).Info("Alert acknowledged")
	return result, nil
}

// ApplyAlert применяет версию из хранилища; установленное подтверждение не перезаписывается
func (in *AlertInbox) ApplyAlert(alert *models.Alert) {
	in.mu.Lock()
	defer in.mu.Unlock()
	entry, ok := in.alerts[alert.ID]
	if !ok {
		in.seq++
		in.alerts[alert.ID] = &inboxEntry{alert: alert.Clone(), seq: in.seq}
		return
	}
	next := alert.Clone()
	if entry.alert.AcknowledgedAt != nil {
		next.AcknowledgedAt = timePtr(*entry.alert.AcknowledgedAt)
	}
	entry.alert = next
}

// Get возвращает копию оповещения
func (in *AlertInbox) Get(alertID string) (*models.Alert, error) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	entry, ok := in.alerts[alertID]
	if !ok {
		return nil, apperr.NotFound("alerts.Get", "alert", alertID)
	}
	return entry.alert.Clone(), nil
}

// Filter возвращает оповещения получателя в порядке показа
func (in *AlertInbox) Filter(recipientID string, mode FilterMode) []*models.Alert {
	in.mu.RLock()
	entries := make([]*inboxEntry, 0)
	for _, e := range in.alerts {
		if e.alert.RecipientID != recipientID {
			continue
		}
		switch mode {
		case FilterUnread:
			if e.alert.Acknowledged() {
				continue
			}
		case FilterUrgent:
			if !e.alert.Urgent() {
				continue
			}
		}
		entries = append(entries, &inboxEntry{alert: e.alert.Clone(), seq: e.seq})
	}
	in.mu.RUnlock()

	slices.SortFunc(entries, func(a, b *inboxEntry) int {
		if c := b.alert.CreatedAt.Compare(a.alert.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})
	out := make([]*models.Alert, len(entries))
	for i, e := range entries {
		out[i] = e.alert
	}
	return out
}

// UnreadCount считается заново по коллекции при каждом вызове
func (in *AlertInbox) UnreadCount(recipientID string) int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	n := 0
	for _, e := range in.alerts {
		if e.alert.RecipientID == recipientID && !e.alert.Acknowledged() {
			n++
		}
	}
	return n
}
