package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/civic_response_system/internal/apperr"
	"github.com/shenikar/civic_response_system/internal/models"
	"github.com/shenikar/civic_response_system/internal/privacy"
	"github.com/shenikar/civic_response_system/internal/store"
)

// RegisterResponderInput - данные для регистрации респондера
type RegisterResponderInput struct {
	UserID                 string                    `validate:"required"`
	Name                   string                    `validate:"required"`
	Skills                 []string                  `validate:"dive,required"`
	Status                 models.AvailabilityStatus `validate:"omitempty,oneof=available busy offline"`
	MaxConcurrentIncidents int                       `validate:"gte=0"`
	Certifications         []string
	PreferredRadiusKm      *float64 `validate:"omitempty,gt=0"`
	Latitude               *float64 `validate:"required_with=Longitude"`
	Longitude              *float64 `validate:"required_with=Latitude"`
}

// AvailabilityInput - изменение доступности; nil поля не меняются
type AvailabilityInput struct {
	Status                 models.AvailabilityStatus `validate:"required,oneof=available busy offline"`
	NextAvailable          *time.Time
	MaxConcurrentIncidents *int `validate:"omitempty,gte=0"`
}

// ResponderDirectory - реестр респондеров, их навыков и доступности. Один пользователь
// соответствует одному респондеру.
type ResponderDirectory struct {
	backend store.Backend
	encoder *privacy.GridEncoder
	logger  *logrus.Logger
	metrics *Metrics
	clock   func() time.Time

	writes   keyLocks
	register sync.Mutex

	mu         sync.RWMutex
	responders map[string]*models.Responder
}

func NewResponderDirectory(backend store.Backend, encoder *privacy.GridEncoder, logger *logrus.Logger, metrics *Metrics) *ResponderDirectory {
	return &ResponderDirectory{
		backend:    backend,
		encoder:    encoder,
		logger:     logger,
		metrics:    metrics,
		clock:      utcNow,
		responders: make(map[string]*models.Responder),
	}
}

// Load заполняет зеркало из хранилища
func (d *ResponderDirectory) Load(ctx context.Context) error {
	rows, err := d.backend.Select(ctx, store.TableResponders, nil)
	if err != nil {
		d.metrics.StoreErrors.WithLabelValues("responders.load").Inc()
		return apperr.Store("responders.Load", err)
	}
	list, decodeErr := decodeAll[models.Responder](rows)
	if decodeErr != nil {
		d.logger.WithError(decodeErr).Warn("Skipped malformed responder records")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.responders = make(map[string]*models.Responder, len(list))
	for _, r := range list {
		d.responders[r.ID] = r
	}
	return nil
}

// Register добавляет респондера в реестр
func (d *ResponderDirectory) Register(ctx context.Context, input RegisterResponderInput) (*models.Responder, error) {
	const op = "responders.Register"
	input.UserID = strings.TrimSpace(input.UserID)
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(op, input); err != nil {
		return nil, err
	}
	log := d.logger.WithFields(logrus.Fields{
		"service": "responders",
		"method":  "Register",
		"user_id": input.UserID,
	})

	if input.Status == "" {
		input.Status = models.AvailabilityAvailable
	}
	d.register.Lock()
	defer d.register.Unlock()
	if existing, err := d.ByUserID(input.UserID); err == nil {
		return nil, apperr.Validation(op, "user %q is already registered as responder %s", input.UserID, existing.ID)
	}
	now := d.clock()
	responder := &models.Responder{
		ID:     uuid.NewString(),
		UserID: input.UserID,
		Name:   input.Name,
		Skills: models.NormalizeSet(input.Skills),
		Availability: models.Availability{
			Status:                 input.Status,
			MaxConcurrentIncidents: input.MaxConcurrentIncidents,
		},
		CurrentIncidents:  []string{},
		ResponseHistory:   []models.ResponseRecord{},
		Certifications:    models.NormalizeSet(input.Certifications),
		PreferredRadiusKm: input.PreferredRadiusKm,
		CreatedAt:         now,
		UpdatedAt:         now,
		Version:           1,
	}
	if input.Latitude != nil && input.Longitude != nil {
		grid, err := d.encoder.Encode(*input.Latitude, *input.Longitude)
		if err != nil {
			return nil, err
		}
		responder.GridLocation = grid
	}

	raw, err := encode(responder)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	if _, err := d.backend.Insert(ctx, store.TableResponders, raw); err != nil {
		log.WithError(err).Error("Failed to persist responder")
		d.metrics.StoreErrors.WithLabelValues(op).Inc()
		return nil, apperr.Store(op, err)
	}

	d.ApplyResponder(responder)

	log.WithField("responder_id", responder.ID).Info("Responder registered")
	return responder.Clone(), nil
}

// SetAvailability меняет доступность респондера
func (d *ResponderDirectory) SetAvailability(ctx context.Context, responderID string, input AvailabilityInput) (*models.Responder, error) {
	const op = "responders.SetAvailability"
	if err := validateInput(op, input); err != nil {
		return nil, err
	}
	updated, err := d.mutate(ctx, op, responderID, func(current *models.Responder) (map[string]any, error) {
		availability := current.Availability
		availability.Status = input.Status
		availability.NextAvailable = input.NextAvailable
		if input.MaxConcurrentIncidents != nil {
			availability.MaxConcurrentIncidents = *input.MaxConcurrentIncidents
		}
		return map[string]any{"availability": availability}, nil
	})
	if err != nil {
		return nil, err
	}
	d.logger.WithFields(logrus.Fields{
		"service":      "responders",
		"method":       "SetAvailability",
		"responder_id": responderID,
		"status":       input.Status,
	}).Info("Responder availability changed")
	return updated, nil
}

// AttachIncident записывает инцидент в текущие и в историю реагирования; повтор не меняет состояние
func (d *ResponderDirectory) AttachIncident(ctx context.Context, responderID, incidentID string) (*models.Responder, error) {
	const op = "responders.AttachIncident"
	return d.mutate(ctx, op, responderID, func(current *models.Responder) (map[string]any, error) {
		incidents, changed := models.SetAdd(current.CurrentIncidents, incidentID)
		if !changed {
			return nil, nil
		}
		if current.AtCapacity() {
			d.logger.WithFields(logrus.Fields{
				"responder_id": responderID,
				"incident_id":  incidentID,
			}).Warn("Responder is over concurrent incident capacity")
		}
		history := append(slices.Clone(current.ResponseHistory), models.ResponseRecord{
			IncidentID:  incidentID,
			RespondedAt: d.clock(),
			Role:        "responder",
		})
		return map[string]any{
			"current_incidents": incidents,
			"response_history":  history,
		}, nil
	})
}

// ReleaseIncident снимает инцидент с респондера и закрывает запись истории
func (d *ResponderDirectory) ReleaseIncident(ctx context.Context, responderID, incidentID string) (*models.Responder, error) {
	const op = "responders.ReleaseIncident"
	return d.mutate(ctx, op, responderID, func(current *models.Responder) (map[string]any, error) {
		incidents, changed := models.SetRemove(current.CurrentIncidents, incidentID)
		if !changed {
			return nil, nil
		}
		now := d.clock()
		history := slices.Clone(current.ResponseHistory)
		for i := range history {
			if history[i].IncidentID == incidentID && history[i].ResolvedAt == nil {
				history[i].ResolvedAt = timePtr(now)
			}
		}
		return map[string]any{
			"current_incidents": incidents,
			"response_history":  history,
			"updated_at":        now,
		}, nil
	})
}

// RecordFeedback добавляет отзыв и оценку к записи истории по инциденту
func (d *ResponderDirectory) RecordFeedback(ctx context.Context, responderID, incidentID, feedback string, rating *int) (*models.Responder, error) {
	const op = "responders.RecordFeedback"
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, apperr.Validation(op, "rating must be between 1 and 5, got %d", *rating)
	}
	return d.mutate(ctx, op, responderID, func(current *models.Responder) (map[string]any, error) {
		history := slices.Clone(current.ResponseHistory)
		idx := slices.IndexFunc(history, func(r models.ResponseRecord) bool { return r.IncidentID == incidentID })
		if idx < 0 {
			return nil, apperr.NotFound(op, "response record", incidentID)
		}
		history[idx].Feedback = feedback
		history[idx].Rating = rating
		return map[string]any{"response_history": history}, nil
	})
}

// mutate строит изменение по актуальной записи и сохраняет его под блокировкой
// респондера; зеркало обновляется только после успеха. Пустой набор полей ничего не пишет.
func (d *ResponderDirectory) mutate(ctx context.Context, op, responderID string, build func(current *models.Responder) (map[string]any, error)) (*models.Responder, error) {
	unlock := d.writes.lock(responderID)
	defer unlock()

	current, err := d.Get(responderID)
	if err != nil {
		return nil, err
	}
	fields, err := build(current)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return current, nil
	}
	fields["version"] = current.Version + 1
	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = d.clock()
	}

	raw, err := d.backend.Update(ctx, store.TableResponders, responderID, fields)
	if err != nil {
		d.logger.WithError(err).WithField("responder_id", responderID).Error("Failed to update responder in store")
		d.metrics.StoreErrors.WithLabelValues(op).Inc()
		return nil, storeError(op, "responder", responderID, err)
	}
	updated, err := decode[models.Responder](raw)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	d.ApplyResponder(updated)
	return updated.Clone(), nil
}

// Get возвращает копию респондера
func (d *ResponderDirectory) Get(responderID string) (*models.Responder, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.responders[responderID]
	if !ok {
		return nil, apperr.NotFound("responders.Get", "responder", responderID)
	}
	return r.Clone(), nil
}

// ByUserID находит респондера по идентификатору пользователя
func (d *ResponderDirectory) ByUserID(userID string) (*models.Responder, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, r := range d.responders {
		if r.UserID == userID {
			return r.Clone(), nil
		}
	}
	return nil, apperr.NotFound("responders.ByUserID", "responder for user", userID)
}

// Exists сообщает, известен ли респондер
func (d *ResponderDirectory) Exists(responderID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.responders[responderID]
	return ok
}

// List возвращает всех респондеров, упорядоченных по id
func (d *ResponderDirectory) List() []*models.Responder {
	return d.collect(func(*models.Responder) bool { return true })
}

// Available возвращает доступных респондеров, упорядоченных по id
func (d *ResponderDirectory) Available() []*models.Responder {
	return d.collect((*models.Responder).IsAvailable)
}

// AvailableCount пересчитывается при каждом вызове
func (d *ResponderDirectory) AvailableCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := 0
	for _, r := range d.responders {
		if r.IsAvailable() {
			n++
		}
	}
	return n
}

func (d *ResponderDirectory) collect(keep func(*models.Responder) bool) []*models.Responder {
	d.mu.RLock()
	out := make([]*models.Responder, 0, len(d.responders))
	for _, r := range d.responders {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	d.mu.RUnlock()
	slices.SortFunc(out, func(a, b *models.Responder) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// ApplyResponder заменяет запись версией из хранилища; более старая версия отбрасывается
func (d *ResponderDirectory) ApplyResponder(r *models.Responder) bool {
	cp := r.Clone()
	d.mu.Lock()
	defer d.mu.Unlock()
	if existing, ok := d.responders[cp.ID]; ok && cp.Version < existing.Version {
		return false
	}
	d.responders[cp.ID] = cp
	return true
}

// RemoveResponder убирает запись из зеркала. Инциденты перестают показывать его
// среди назначенных.
func (d *ResponderDirectory) RemoveResponder(responderID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.responders, responderID)
}
