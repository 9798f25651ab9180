package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/civic_response_system/internal/apperr"
	"github.com/shenikar/civic_response_system/internal/models"
	"github.com/shenikar/civic_response_system/internal/privacy"
	"github.com/shenikar/civic_response_system/internal/store"
)

//go:generate mockgen -source=incident.go -destination=mocks/incident_service.go -package=mocks

// IncidentService определяет контракт жизненного цикла инцидентов
type IncidentService interface {
	CreateIncident(ctx context.Context, input CreateIncidentInput) (*models.Incident, error)
	GetIncident(ctx context.Context, id string) (*models.Incident, error)
	ListIncidents(ctx context.Context, filter IncidentFilter) ([]*models.Incident, error)
	UpdateIncident(ctx context.Context, id string, patch IncidentPatch) (*models.Incident, error)
	AcknowledgeIncident(ctx context.Context, id, actorID string) (*models.Incident, error)
	BeginResponse(ctx context.Context, id, actorID string) (*models.Incident, error)
	ResolveIncident(ctx context.Context, id, actorID string) (*models.Incident, error)
	AssignResponder(ctx context.Context, incidentID, responderID, assignedBy string) (*models.Incident, error)
	AppendUpdate(ctx context.Context, incidentID string, input UpdateInput) (*models.IncidentUpdate, error)
	RequestBackup(ctx context.Context, incidentID, requesterID, message string) ([]*models.Alert, error)
	ActiveIncidentCount() int
}

// CreateIncidentInput - данные нового инцидента. Точные координаты, если заданы,
// огрубляются до ссылки на ячейку и не сохраняются.
type CreateIncidentInput struct {
	Title            string          `validate:"required"`
	Description      string          `validate:"required"`
	TypeName         string
	RequiredSkills   []string
	Severity         models.Severity `validate:"omitempty,oneof=low medium high critical"`
	Region           string          `validate:"required"`
	District         string
	Latitude         *float64 `validate:"required_with=Longitude"`
	Longitude        *float64 `validate:"required_with=Latitude"`
	EncryptedExact   string
	ReporterID       string
	RespondersNeeded int `validate:"gte=0"`
	Tags             []string
}

// IncidentPatch - частичное изменение; nil поля не меняются
type IncidentPatch struct {
	Title            *string
	Description      *string
	Severity         *models.Severity
	Status           *models.IncidentStatus
	TypeName         *string
	RequiredSkills   *[]string
	District         *string
	RespondersNeeded *int
	Tags             *[]string
	AuthorID         string
}

// UpdateInput - запись в журнал инцидента
type UpdateInput struct {
	AuthorID string
	Message  string            `validate:"required"`
	Type     models.UpdateType `validate:"omitempty,oneof=status_change info request resolution"`
}

// IncidentFilter - условия выборки; пустые поля не фильтруют
type IncidentFilter struct {
	Status      models.IncidentStatus
	Severity    models.Severity
	Region      string
	ResponderID string
}

// IncidentStore - зеркало инцидентов с журналами обновлений. Изменения идут через
// хранилище; зеркало меняется только после успешного ответа. Записи одного инцидента
// выполняются по очереди, версия из хранилища не откатывается более старой.
type IncidentStore struct {
	backend    store.Backend
	encoder    *privacy.GridEncoder
	responders *ResponderDirectory
	dispatcher *Dispatcher
	logger     *logrus.Logger
	metrics    *Metrics
	clock      func() time.Time

	writes keyLocks

	mu        sync.RWMutex
	incidents map[string]*models.Incident
	logs      map[string][]models.IncidentUpdate
}

func NewIncidentStore(backend store.Backend, encoder *privacy.GridEncoder, responders *ResponderDirectory, dispatcher *Dispatcher, logger *logrus.Logger, metrics *Metrics) *IncidentStore {
	return &IncidentStore{
		backend:    backend,
		encoder:    encoder,
		responders: responders,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		clock:      utcNow,
		incidents:  make(map[string]*models.Incident),
		logs:       make(map[string][]models.IncidentUpdate),
	}
}

// Load заполняет зеркало инцидентов и журналов из хранилища
func (s *IncidentStore) Load(ctx context.Context) error {
	rows, err := s.backend.Select(ctx, store.TableIncidents, nil)
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues("incidents.load").Inc()
		return apperr.Store("incidents.Load", err)
	}
	updateRows, err := s.backend.Select(ctx, store.TableIncidentUpdates, nil)
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues("incidents.load").Inc()
		return apperr.Store("incidents.Load", err)
	}
	incidents, decodeErr := decodeAll[models.Incident](rows)
	if decodeErr != nil {
		s.logger.WithError(decodeErr).Warn("Skipped malformed incident records")
	}
	updates, decodeErr := decodeAll[models.IncidentUpdate](updateRows)
	if decodeErr != nil {
		s.logger.WithError(decodeErr).Warn("Skipped malformed incident update records")
	}

	s.mu.Lock()
	s.incidents = make(map[string]*models.Incident, len(incidents))
	s.logs = make(map[string][]models.IncidentUpdate)
	for _, inc := range incidents {
		inc.Updates = nil
		s.incidents[inc.ID] = inc
	}
	s.mu.Unlock()
	for _, u := range updates {
		s.ApplyUpdate(*u)
	}

	s.logger.WithFields(logrus.Fields{
		"incidents": len(incidents),
		"updates":   len(updates),
	}).Info("Incident mirror loaded")
	return nil
}

// CreateIncident создает инцидент и запускает подбор респондеров
func (s *IncidentStore) CreateIncident(ctx context.Context, input CreateIncidentInput) (*models.Incident, error) {
	const op = "incidents.CreateIncident"
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Region = strings.TrimSpace(input.Region)
	if err := validateInput(op, input); err != nil {
		return nil, err
	}
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "CreateIncident",
		"title":   input.Title,
	})
	log.Info("Attempting to create a new incident")

	location := &models.Location{
		Region:         input.Region,
		District:       strings.TrimSpace(input.District),
		EncryptedExact: input.EncryptedExact,
	}
	if input.Latitude != nil && input.Longitude != nil {
		grid, err := s.encoder.Encode(*input.Latitude, *input.Longitude)
		if err != nil {
			return nil, err
		}
		location.GridReference = grid
	}
	if input.Severity == "" {
		input.Severity = models.SeverityMedium
	}

	now := s.clock()
	incident := &models.Incident{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Type: models.IncidentType{
			Name:           strings.TrimSpace(input.TypeName),
			RequiredSkills: models.NormalizeSet(input.RequiredSkills),
		},
		Severity:           input.Severity,
		Status:             models.StatusReported,
		Location:           location,
		ReporterID:         input.ReporterID,
		RespondersNeeded:   input.RespondersNeeded,
		RespondersAssigned: []string{},
		Tags:               models.NormalizeSet(input.Tags),
		CreatedAt:          now,
		UpdatedAt:          now,
		Version:            1,
	}

	raw, err := encode(incident)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	if _, err := s.backend.Insert(ctx, store.TableIncidents, raw); err != nil {
		log.WithError(err).Error("Failed to create incident in store")
		s.metrics.StoreErrors.WithLabelValues(op).Inc()
		return nil, apperr.Store(op, err)
	}

	s.ReplaceIncident(incident)
	s.metrics.IncidentsCreated.Inc()
	log = log.WithField("incident_id", incident.ID)
	log.Info("Incident created successfully")

	// Инцидент уже сохранен: сбой рассылки не отменяет создание
	if _, err := s.dispatcher.DispatchNewIncident(ctx, incident); err != nil {
		s.metrics.DispatchFailures.WithLabelValues("new_incident").Inc()
		log.WithError(err).Error("Failed to dispatch some new incident alerts")
	}

	return s.GetIncident(ctx, incident.ID)
}

// GetIncident возвращает копию инцидента вместе с журналом
func (s *IncidentStore) GetIncident(_ context.Context, id string) (*models.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inc, ok := s.incidents[id]
	if !ok {
		return nil, apperr.NotFound("incidents.GetIncident", "incident", id)
	}
	return s.withLog(inc), nil
}

// withLog вызывается под блокировкой. Назначенными показываются только респондеры,
// которые есть в реестре.
func (s *IncidentStore) withLog(inc *models.Incident) *models.Incident {
	cp := inc.Clone()
	cp.RespondersAssigned = s.registered(cp.RespondersAssigned)
	cp.Updates = slices.Clone(s.logs[inc.ID])
	if cp.Updates == nil {
		cp.Updates = []models.IncidentUpdate{}
	}
	return cp
}

func (s *IncidentStore) registered(ids []string) []string {
	if s.responders == nil {
		return ids
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if s.responders.Exists(id) {
			out = append(out, id)
		}
	}
	return out
}

// snapshot - копия записи зеркала без фильтрации, основа для записи в хранилище
func (s *IncidentStore) snapshot(op, id string) (*models.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inc, ok := s.incidents[id]
	if !ok {
		return nil, apperr.NotFound(op, "incident", id)
	}
	return inc.Clone(), nil
}

// commit строит изменение по актуальной записи и сохраняет его под блокировкой
// инцидента. Пустой набор полей ничего не пишет: after совпадает с before.
func (s *IncidentStore) commit(ctx context.Context, op, id string, build func(current *models.Incident) (map[string]any, error)) (before, after *models.Incident, err error) {
	unlock := s.writes.lock(id)
	defer unlock()

	current, err := s.snapshot(op, id)
	if err != nil {
		return nil, nil, err
	}
	fields, err := build(current)
	if err != nil {
		return current, nil, err
	}
	if len(fields) == 0 {
		return current, current, nil
	}
	fields["version"] = current.Version + 1
	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = s.clock()
	}

	raw, err := s.backend.Update(ctx, store.TableIncidents, id, fields)
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues(op).Inc()
		return current, nil, storeError(op, "incident", id, err)
	}
	updated, err := decode[models.Incident](raw)
	if err != nil {
		return current, nil, apperr.Store(op, err)
	}
	s.ReplaceIncident(updated)
	return current, updated, nil
}

// ListIncidents возвращает инциденты от новых к старым
func (s *IncidentStore) ListIncidents(_ context.Context, filter IncidentFilter) ([]*models.Incident, error) {
	s.mu.RLock()
	out := make([]*models.Incident, 0, len(s.incidents))
	for _, inc := range s.incidents {
		if filter.Status != "" && inc.Status != filter.Status {
			continue
		}
		if filter.Severity != "" && inc.Severity != filter.Severity {
			continue
		}
		if filter.Region != "" && !strings.EqualFold(inc.Region(), filter.Region) {
			continue
		}
		cp := s.withLog(inc)
		if filter.ResponderID != "" && !cp.IsAssigned(filter.ResponderID) {
			continue
		}
		out = append(out, cp)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *models.Incident) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// ActiveIncidentCount пересчитывается при каждом вызове
func (s *IncidentStore) ActiveIncidentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, inc := range s.incidents {
		if !inc.Status.Terminal() {
			n++
		}
	}
	return n
}

// UpdateIncident применяет частичное изменение. Статус может только двигаться вперед.
// Смена статуса пишется в журнал и рассылается назначенным респондерам; смена тяжести
// или требуемых навыков повторно запускает подбор.
func (s *IncidentStore) UpdateIncident(ctx context.Context, id string, patch IncidentPatch) (*models.Incident, error) {
	const op = "incidents.UpdateIncident"
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "UpdateIncident",
		"incident_id": id,
	})

	current, updated, err := s.commit(ctx, op, id, func(current *models.Incident) (map[string]any, error) {
		fields, err := s.patchFields(op, current, patch)
		if err != nil || len(fields) == 0 {
			return nil, err
		}
		now := s.clock()
		fields["updated_at"] = now
		if status, ok := fields["status"].(models.IncidentStatus); ok && status == models.StatusResolved {
			fields["resolved_at"] = now
		}
		return fields, nil
	})
	switch {
	case apperr.IsValidation(err) || apperr.IsNotFound(err):
		log.WithError(err).Warn("Rejected incident update")
		return nil, err
	case err != nil:
		log.WithError(err).Error("Failed to update incident in store")
		return nil, err
	case updated == current:
		return s.GetIncident(ctx, id)
	}
	log.Info("Incident updated successfully")

	if updated.Status != current.Status {
		s.afterStatusChange(ctx, log, s.present(updated), current.Status, patch.AuthorID)
	}
	if updated.Status != models.StatusResolved && rematchNeeded(current, updated) {
		if _, err := s.dispatcher.DispatchNewIncident(ctx, s.present(updated)); err != nil {
			s.metrics.DispatchFailures.WithLabelValues("rematch").Inc()
			log.WithError(err).Error("Failed to re-dispatch incident after severity or skills change")
		}
	}

	return s.GetIncident(ctx, id)
}

// present - копия для побочных шагов: только зарегистрированные респондеры
func (s *IncidentStore) present(inc *models.Incident) *models.Incident {
	cp := inc.Clone()
	cp.RespondersAssigned = s.registered(cp.RespondersAssigned)
	return cp
}

func (s *IncidentStore) patchFields(op string, current *models.Incident, patch IncidentPatch) (map[string]any, error) {
	fields := make(map[string]any)
	if patch.Title != nil {
		if blank(*patch.Title) {
			return nil, apperr.Validation(op, "title must not be blank")
		}
		fields["title"] = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		if blank(*patch.Description) {
			return nil, apperr.Validation(op, "description must not be blank")
		}
		fields["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.Severity != nil {
		if !patch.Severity.Valid() {
			return nil, apperr.Validation(op, "unknown severity %q", *patch.Severity)
		}
		if *patch.Severity != current.Severity {
			fields["severity"] = *patch.Severity
		}
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, apperr.Validation(op, "unknown status %q", *patch.Status)
		}
		if !current.Status.CanTransitionTo(*patch.Status) {
			return nil, apperr.Validation(op, "cannot move incident from %s back to %s", current.Status, *patch.Status)
		}
		if *patch.Status != current.Status {
			fields["status"] = *patch.Status
		}
	}
	if patch.TypeName != nil || patch.RequiredSkills != nil {
		incidentType := current.Type
		if patch.TypeName != nil {
			incidentType.Name = strings.TrimSpace(*patch.TypeName)
		}
		if patch.RequiredSkills != nil {
			incidentType.RequiredSkills = models.NormalizeSet(*patch.RequiredSkills)
		}
		fields["type"] = incidentType
	}
	if patch.District != nil {
		location := models.Location{}
		if current.Location != nil {
			location = *current.Location
		}
		location.District = strings.TrimSpace(*patch.District)
		fields["location"] = location
	}
	if patch.RespondersNeeded != nil {
		if *patch.RespondersNeeded < 0 {
			return nil, apperr.Validation(op, "responders needed must not be negative")
		}
		fields["responders_needed"] = *patch.RespondersNeeded
	}
	if patch.Tags != nil {
		fields["tags"] = models.NormalizeSet(*patch.Tags)
	}
	return fields, nil
}

func rematchNeeded(before, after *models.Incident) bool {
	return before.Severity != after.Severity ||
		!slices.Equal(before.Type.RequiredSkills, after.Type.RequiredSkills)
}

// afterStatusChange выполняет побочные шаги смены статуса; их сбой не отменяет изменение
func (s *IncidentStore) afterStatusChange(ctx context.Context, log *logrus.Entry, incident *models.Incident, previous models.IncidentStatus, authorID string) {
	s.metrics.StatusTransitions.WithLabelValues(string(incident.Status)).Inc()

	updateType := models.UpdateStatusChange
	if incident.Status == models.StatusResolved {
		updateType = models.UpdateResolution
	}
	if _, err := s.AppendUpdate(ctx, incident.ID, UpdateInput{
		AuthorID: authorID,
		Message:  fmt.Sprintf("Status changed from %s to %s", previous, incident.Status),
		Type:     updateType,
	}); err != nil {
		s.metrics.DispatchFailures.WithLabelValues("status_log").Inc()
		log.WithError(err).Error("Failed to log status change")
	}

	if _, err := s.dispatcher.DispatchStatusUpdate(ctx, incident, previous); err != nil {
		s.metrics.DispatchFailures.WithLabelValues("status_update").Inc()
		log.WithError(err).Error("Failed to dispatch status update alerts")
	}

	if incident.Status == models.StatusResolved {
		for _, responderID := range incident.RespondersAssigned {
			if _, err := s.responders.ReleaseIncident(ctx, responderID, incident.ID); err != nil {
				s.metrics.DispatchFailures.WithLabelValues("release").Inc()
				log.WithError(err).WithField("responder_id", responderID).Error("Failed to release responder")
			}
		}
	}
}

// AcknowledgeIncident переводит инцидент в acknowledged
func (s *IncidentStore) AcknowledgeIncident(ctx context.Context, id, actorID string) (*models.Incident, error) {
	return s.advance(ctx, id, actorID, models.StatusAcknowledged)
}

// BeginResponse переводит инцидент в responding
func (s *IncidentStore) BeginResponse(ctx context.Context, id, actorID string) (*models.Incident, error) {
	return s.advance(ctx, id, actorID, models.StatusResponding)
}

// ResolveIncident закрывает инцидент
func (s *IncidentStore) ResolveIncident(ctx context.Context, id, actorID string) (*models.Incident, error) {
	return s.advance(ctx, id, actorID, models.StatusResolved)
}

func (s *IncidentStore) advance(ctx context.Context, id, actorID string, status models.IncidentStatus) (*models.Incident, error) {
	return s.UpdateIncident(ctx, id, IncidentPatch{Status: &status, AuthorID: actorID})
}

// AssignResponder назначает респондера на инцидент. Повторное назначение не меняет
// множество, но оповещение assignment отправляется всегда.
func (s *IncidentStore) AssignResponder(ctx context.Context, incidentID, responderID, assignedBy string) (*models.Incident, error) {
	const op = "incidents.AssignResponder"
	if _, err := s.snapshot(op, incidentID); err != nil {
		return nil, err
	}
	if !s.responders.Exists(responderID) {
		return nil, apperr.NotFound(op, "responder", responderID)
	}
	log := s.logger.WithFields(logrus.Fields{
		"service":      "incident",
		"method":       "AssignResponder",
		"incident_id":  incidentID,
		"responder_id": responderID,
	})

	current, updated, err := s.commit(ctx, op, incidentID, func(current *models.Incident) (map[string]any, error) {
		if current.Status.Terminal() {
			return nil, apperr.Validation(op, "incident %q is resolved", incidentID)
		}
		assigned, added := models.SetAdd(current.RespondersAssigned, responderID)
		if !added {
			return nil, nil
		}
		return map[string]any{"responders_assigned": assigned}, nil
	})
	if err != nil {
		if !apperr.IsValidation(err) {
			log.WithError(err).Error("Failed to persist assignment")
		}
		return nil, err
	}

	changed := updated != current
	if changed {
		if current.RespondersNeeded > 0 && len(updated.RespondersAssigned) > current.RespondersNeeded {
			log.WithField("assigned", len(updated.RespondersAssigned)).Info("Incident is over-assigned")
		}
		if _, err := s.responders.AttachIncident(ctx, responderID, incidentID); err != nil {
			s.metrics.DispatchFailures.WithLabelValues("attach").Inc()
			log.WithError(err).Error("Failed to record incident on responder")
		}
		message := fmt.Sprintf("Responder %s assigned", responderID)
		if assignedBy != "" {
			message += " by " + assignedBy
		}
		if _, err := s.AppendUpdate(ctx, incidentID, UpdateInput{AuthorID: assignedBy, Message: message, Type: models.UpdateInfo}); err != nil {
			s.metrics.DispatchFailures.WithLabelValues("assignment_log").Inc()
			log.WithError(err).Error("Failed to log assignment")
		}
	}

	if _, err := s.dispatcher.DispatchAssignment(ctx, s.present(updated), responderID); err != nil {
		s.metrics.DispatchFailures.WithLabelValues("assignment").Inc()
		log.WithError(err).Error("Failed to dispatch assignment alert")
	}
	log.WithField("reassigned", !changed).Info("Responder assigned")
	return s.GetIncident(ctx, incidentID)
}

// AppendUpdate добавляет запись в журнал инцидента
func (s *IncidentStore) AppendUpdate(ctx context.Context, incidentID string, input UpdateInput) (*models.IncidentUpdate, error) {
	const op = "incidents.AppendUpdate"
	input.Message = strings.TrimSpace(input.Message)
	if err := validateInput(op, input); err != nil {
		return nil, err
	}
	s.mu.RLock()
	_, ok := s.incidents[incidentID]
	s.mu.RUnlock()
	if !ok {
		return nil, apperr.NotFound(op, "incident", incidentID)
	}
	if input.Type == "" {
		input.Type = models.UpdateInfo
	}

	update := models.IncidentUpdate{
		ID:         ulid.Make().String(),
		IncidentID: incidentID,
		AuthorID:   input.AuthorID,
		Message:    input.Message,
		Type:       input.Type,
		CreatedAt:  s.clock(),
	}
	raw, err := encode(update)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	if _, err := s.backend.Insert(ctx, store.TableIncidentUpdates, raw); err != nil {
		s.logger.WithError(err).WithField("incident_id", incidentID).Error("Failed to persist incident update")
		s.metrics.StoreErrors.WithLabelValues(op).Inc()
		return nil, apperr.Store(op, err)
	}
	s.ApplyUpdate(update)
	return &update, nil
}

// RequestBackup пишет запрос в журнал и рассылает urgent_request свободным подходящим респондерам
func (s *IncidentStore) RequestBackup(ctx context.Context, incidentID, requesterID, message string) ([]*models.Alert, error) {
	const op = "incidents.RequestBackup"
	incident, err := s.GetIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if incident.Status.Terminal() {
		return nil, apperr.Validation(op, "incident %q is resolved", incidentID)
	}
	logMessage := "Backup requested"
	if !blank(message) {
		logMessage += ": " + strings.TrimSpace(message)
	}
	if _, err := s.AppendUpdate(ctx, incidentID, UpdateInput{AuthorID: requesterID, Message: logMessage, Type: models.UpdateRequest}); err != nil {
		return nil, err
	}
	return s.dispatcher.RequestBackup(ctx, incident, message)
}

// ReplaceIncident заменяет запись целиком версией из хранилища; журнал сохраняется.
// Запись с меньшим номером версии, чем в зеркале, отбрасывается.
func (s *IncidentStore) ReplaceIncident(incident *models.Incident) bool {
	cp := incident.Clone()
	cp.Updates = nil
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.incidents[cp.ID]; ok && cp.Version < existing.Version {
		return false
	}
	s.incidents[cp.ID] = cp
	return true
}

// ReplaceIfNewer заменяет запись, только если входящая версия не старше локальной
// ни по номеру, ни по updatedAt
func (s *IncidentStore) ReplaceIfNewer(incident *models.Incident) bool {
	cp := incident.Clone()
	cp.Updates = nil
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.incidents[cp.ID]; ok &&
		(cp.Version < existing.Version || cp.UpdatedAt.Before(existing.UpdatedAt)) {
		return false
	}
	s.incidents[cp.ID] = cp
	return true
}

// RemoveIncident убирает инцидент и его журнал из зеркала
func (s *IncidentStore) RemoveIncident(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.incidents, id)
	delete(s.logs, id)
}

// ApplyUpdate добавляет запись в журнал без изменения самого инцидента.
// Порядок: createdAt, при равенстве порядок вставки. Дубликаты по id отбрасываются.
func (s *IncidentStore) ApplyUpdate(update models.IncidentUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.logs[update.IncidentID]
	if slices.ContainsFunc(entries, func(u models.IncidentUpdate) bool { return u.ID == update.ID }) {
		return false
	}
	entries = append(entries, update)
	slices.SortStableFunc(entries, func(a, b models.IncidentUpdate) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	s.logs[update.IncidentID] = entries
	return true
}
