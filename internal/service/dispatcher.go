package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/civic_response_system/internal/apperr"
	"github.com/shenikar/civic_response_system/internal/models"
	"github.com/shenikar/civic_response_system/internal/store"
)

// Dispatcher подбирает респондеров под инцидент и рассылает оповещения.
// Каждое оповещение сначала сохраняется, затем попадает во входящие.
type Dispatcher struct {
	backend    store.Backend
	responders *ResponderDirectory
	inbox      *AlertInbox
	logger     *logrus.Logger
	metrics    *Metrics
	clock      func() time.Time
}

func NewDispatcher(backend store.Backend, responders *ResponderDirectory, inbox *AlertInbox, logger *logrus.Logger, metrics *Metrics) *Dispatcher {
	return &Dispatcher{
		backend:    backend,
		responders: responders,
		inbox:      inbox,
		logger:     logger,
		metrics:    metrics,
		clock:      utcNow,
	}
}

// MatchResponders возвращает доступных респондеров; если тип инцидента требует
// навыков, достаточно одного общего навыка. Порядок по id.
func (d *Dispatcher) MatchResponders(incident *models.Incident) []*models.Responder {
	pool := d.responders.Available()
	required := incident.Type.RequiredSkills
	if len(required) == 0 {
		return pool
	}
	matched := make([]*models.Responder, 0, len(pool))
	for _, r := range pool {
		if models.Intersects(r.Skills, required) {
			matched = append(matched, r)
		}
	}
	return matched
}

// NewIncidentPriority - urgent для critical, иначе high
func NewIncidentPriority(severity models.Severity) models.AlertPriority {
	if severity == models.SeverityCritical {
		return models.PriorityUrgent
	}
	return models.PriorityHigh
}

// DispatchNewIncident создает по одному оповещению new_incident на каждого подходящего респондера
func (d *Dispatcher) DispatchNewIncident(ctx context.Context, incident *models.Incident) ([]*models.Alert, error) {
	matched := d.MatchResponders(incident)
	d.logger.WithFields(logrus.Fields{
		"service":     "dispatcher",
		"method":      "DispatchNewIncident",
		"incident_id": incident.ID,
		"matched":     len(matched),
	}).Info("Dispatching new incident alerts")

	template := models.Alert{
		IncidentID:     incident.ID,
		Type:           models.AlertNewIncident,
		Priority:       NewIncidentPriority(incident.Severity),
		Message:        fmt.Sprintf("New %s incident: %s", incident.Severity, incident.Title),
		ActionRequired: "Response needed",
	}
	return d.fanOut(ctx, "dispatcher.DispatchNewIncident", template, responderIDs(matched))
}

// DispatchAssignment создает одно оповещение assignment независимо от результатов подбора
func (d *Dispatcher) DispatchAssignment(ctx context.Context, incident *models.Incident, responderID string) (*models.Alert, error) {
	return d.emit(ctx, "dispatcher.DispatchAssignment", models.Alert{
		IncidentID:     incident.ID,
		RecipientID:    responderID,
		Type:           models.AlertAssignment,
		Priority:       models.PriorityHigh,
		Message:        fmt.Sprintf("You have been assigned to incident: %s", incident.Title),
		ActionRequired: "Confirm and begin response",
	})
}

// DispatchStatusUpdate оповещает назначенных респондеров о смене статуса
func (d *Dispatcher) DispatchStatusUpdate(ctx context.Context, incident *models.Incident, previous models.IncidentStatus) ([]*models.Alert, error) {
	template := models.Alert{
		IncidentID: incident.ID,
		Type:       models.AlertStatusUpdate,
		Priority:   models.PriorityMedium,
		Message:    fmt.Sprintf("Incident %s moved from %s to %s", incident.Title, previous, incident.Status),
	}
	if incident.Status == models.StatusResolved {
		template.Type = models.AlertResolution
		template.Priority = models.PriorityLow
		template.Message = fmt.Sprintf("Incident resolved: %s", incident.Title)
	}
	return d.fanOut(ctx, "dispatcher.DispatchStatusUpdate", template, incident.RespondersAssigned)
}

// RequestBackup запрашивает подкрепление у подходящих респондеров, еще не назначенных на инцидент
func (d *Dispatcher) RequestBackup(ctx context.Context, incident *models.Incident, message string) ([]*models.Alert, error) {
	recipients := make([]string, 0)
	for _, r := range d.MatchResponders(incident) {
		if !incident.IsAssigned(r.ID) {
			recipients = append(recipients, r.ID)
		}
	}
	if blank(message) {
		message = fmt.Sprintf("Backup requested for %s incident: %s", incident.Severity, incident.Title)
	}
	template := models.Alert{
		IncidentID:     incident.ID,
		Type:           models.AlertUrgentRequest,
		Priority:       models.PriorityUrgent,
		Message:        message,
		ActionRequired: "Response needed",
	}
	return d.fanOut(ctx, "dispatcher.RequestBackup", template, recipients)
}

// fanOut создает оповещение для каждого получателя; сбой одного не останавливает остальных
func (d *Dispatcher) fanOut(ctx context.Context, op string, template models.Alert, recipients []string) ([]*models.Alert, error) {
	alerts := make([]*models.Alert, 0, len(recipients))
	var errs []error
	for _, recipientID := range recipients {
		a := template
		a.RecipientID = recipientID
		alert, err := d.emit(ctx, op, a)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		alerts = append(alerts, alert)
	}
	if len(errs) > 0 {
		return alerts, apperr.Store(op, errors.Join(errs...))
	}
	return alerts, nil
}

func (d *Dispatcher) emit(ctx context.Context, op string, alert models.Alert) (*models.Alert, error) {
	alert.ID = uuid.NewString()
	alert.CreatedAt = d.clock()

	raw, err := encode(alert)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	if _, err := d.backend.Insert(ctx, store.TableAlerts, raw); err != nil {
		d.logger.WithError(err).WithFields(logrus.Fields{
			"incident_id":  alert.IncidentID,
			"recipient_id": alert.RecipientID,
			"type":         alert.Type,
		}).Error("Failed to persist alert")
		d.metrics.StoreErrors.WithLabelValues(op).Inc()
		return nil, apperr.Store(op, err)
	}

	d.metrics.AlertsDispatched.WithLabelValues(string(alert.Type), string(alert.Priority)).Inc()
	d.inbox.Receive(&alert)
	return alert.Clone(), nil
}

func responderIDs(responders []*models.Responder) []string {
	ids := make([]string, len(responders))
	for i, r := range responders {
		ids[i] = r.ID
	}
	return ids
}
