package service

import (
	"context"
	"errors"
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
	"github.com/shenikar/civic_response_system/internal/store"
)

// TeamInput - новая команда реагирования
type TeamInput struct {
	Name           string `validate:"required"`
	Lead           string `validate:"required"`
	Members        []string
	Specialization string
}

// TaskInput - новая задача команды
type TaskInput struct {
	Title       string `validate:"required"`
	Description string
	AssignedTo  []string
	Priority    models.TaskPriority `validate:"omitempty,oneof=low medium high"`
	DueBy       *time.Time
}

// ResourceInput - новый ресурс
type ResourceInput struct {
	Name     string `validate:"required"`
	Type     string `validate:"required"`
	Quantity int    `validate:"gte=0"`
	Location string
}

// EventInput - запись хронологии
type EventInput struct {
	Type        string `validate:"required"`
	Description string `validate:"required"`
	PerformedBy string
	Metadata    map[string]string
}

// CreateCoordinationInput - создание координации; InitialTeam необязательна
type CreateCoordinationInput struct {
	CoordinatorID string
	InitialTeam   *TeamInput
	PerformedBy   string
}

// Stats - производные показатели, пересчитываются при каждом запросе
type Stats struct {
	ActiveIncidents     int `json:"active_incidents"`
	AvailableResponders int `json:"available_responders"`
	ActiveCoordinations int `json:"active_coordinations"`
	Teams               int `json:"teams"`
	OpenTasks           int `json:"open_tasks"`
	AvailableResources  int `json:"available_resources"`
}

// Workspace - координация реагирования по инцидентам. Команды, задачи и ресурсы
// только добавляются; каждое изменение пишется в хронологию.
type Workspace struct {
	backend    store.Backend
	incidents  *IncidentStore
	responders *ResponderDirectory
	logger     *logrus.Logger
	metrics    *Metrics
	clock      func() time.Time

	writes keyLocks

	mu            sync.RWMutex
	coordinations map[string]*models.ResponseCoordination
}

func NewWorkspace(backend store.Backend, incidents *IncidentStore, responders *ResponderDirectory, logger *logrus.Logger, metrics *Metrics) *Workspace {
	return &Workspace{
		backend:       backend,
		incidents:     incidents,
		responders:    responders,
		logger:        logger,
		metrics:       metrics,
		clock:         utcNow,
		coordinations: make(map[string]*models.ResponseCoordination),
	}
}

// Load заполняет зеркало координаций из хранилища
func (w *Workspace) Load(ctx context.Context) error {
	rows, err := w.backend.Select(ctx, store.TableCoordinations, nil)
	if err != nil {
		w.metrics.StoreErrors.WithLabelValues("coordination.load").Inc()
		return apperr.Store("coordination.Load", err)
	}
	list, decodeErr := decodeAll[models.ResponseCoordination](rows)
	if decodeErr != nil {
		w.logger.WithError(decodeErr).Warn("Skipped malformed coordination records")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.coordinations = make(map[string]*models.ResponseCoordination, len(list))
	for _, c := range list {
		w.coordinations[c.IncidentID] = c
	}
	return nil
}

// CreateCoordination создает координацию для инцидента со статусом active
func (w *Workspace) CreateCoordination(ctx context.Context, incidentID string, input CreateCoordinationInput) (*models.ResponseCoordination, error) {
	const op = "coordination.CreateCoordination"
	if _, err := w.incidents.GetIncident(ctx, incidentID); err != nil {
		return nil, err
	}
	unlock := w.writes.lock(incidentID)
	defer unlock()
	if _, err := w.Get(incidentID); err == nil {
		return nil, apperr.Validation(op, "coordination for incident %q already exists", incidentID)
	}

	now := w.clock()
	coordination := &models.ResponseCoordination{
		ID:            incidentID,
		IncidentID:    incidentID,
		CoordinatorID: input.CoordinatorID,
		Teams:         []models.ResponseTeam{},
		Resources:     []models.Resource{},
		Timeline:      []models.TimelineEvent{},
		Status:        models.CoordinationActive,
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}
	coordination.Timeline = append(coordination.Timeline, w.event(incidentID, "coordination_created", "Coordination started", input.PerformedBy, nil))
	if input.InitialTeam != nil {
		team, err := newTeam(op, *input.InitialTeam)
		if err != nil {
			return nil, err
		}
		coordination.Teams = append(coordination.Teams, team)
		coordination.Timeline = append(coordination.Timeline, w.event(incidentID, "team_added",
			fmt.Sprintf("Team %s added", team.Name), input.PerformedBy, map[string]string{"team_id": team.ID}))
	}

	raw, err := encode(coordination)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	if _, err := w.backend.Insert(ctx, store.TableCoordinations, raw); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, apperr.Validation(op, "coordination for incident %q already exists", incidentID)
		}
		w.logger.WithError(err).WithField("incident_id", incidentID).Error("Failed to persist coordination")
		w.metrics.StoreErrors.WithLabelValues(op).Inc()
		return nil, apperr.Store(op, err)
	}

	w.ApplyCoordination(coordination)
	w.logger.WithFields(logrus.Fields{
		"service":     "coordination",
		"method":      "CreateCoordination",
		"incident_id": incidentID,
	}).Info("Coordination created")
	return coordination.Clone(), nil
}

// AddTeam добавляет команду
func (w *Workspace) AddTeam(ctx context.Context, incidentID string, input TeamInput, performedBy string) (*models.ResponseTeam, error) {
	const op = "coordination.AddTeam"
	team, err := newTeam(op, input)
	if err != nil {
		return nil, err
	}
	_, err = w.mutate(ctx, op, incidentID, func(c *models.ResponseCoordination) (models.TimelineEvent, error) {
		c.Teams = append(c.Teams, team)
		return w.event(incidentID, "team_added", fmt.Sprintf("Team %s added", team.Name), performedBy,
			map[string]string{"team_id": team.ID}), nil
	})
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// AddTask добавляет задачу команде
func (w *Workspace) AddTask(ctx context.Context, incidentID, teamID string, input TaskInput, performedBy string) (*models.Task, error) {
	const op = "coordination.AddTask"
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(op, input); err != nil {
		return nil, err
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	task := models.Task{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		AssignedTo:  models.NormalizeSet(input.AssignedTo),
		Priority:    input.Priority,
		Status:      models.TaskPending,
		DueBy:       input.DueBy,
	}
	_, err := w.mutate(ctx, op, incidentID, func(c *models.ResponseCoordination) (models.TimelineEvent, error) {
		idx := c.Team(teamID)
		if idx < 0 {
			return models.TimelineEvent{}, apperr.NotFound(op, "team", teamID)
		}
		c.Teams[idx].AssignedTasks = append(c.Teams[idx].AssignedTasks, task)
		return w.event(incidentID, "task_added", fmt.Sprintf("Task %s added to team %s", task.Title, c.Teams[idx].Name), performedBy,
			map[string]string{"team_id": teamID, "task_id": task.ID}), nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTaskStatus меняет статус задачи; завершенную задачу изменить нельзя
func (w *Workspace) UpdateTaskStatus(ctx context.Context, incidentID, teamID, taskID string, status models.TaskStatus, performedBy string) (*models.Task, error) {
	const op = "coordination.UpdateTaskStatus"
	if !status.Valid() {
		return nil, apperr.Validation(op, "unknown task status %q", status)
	}
	var result models.Task
	_, err := w.mutate(ctx, op, incidentID, func(c *models.ResponseCoordination) (models.TimelineEvent, error) {
		teamIdx := c.Team(teamID)
		if teamIdx < 0 {
			return models.TimelineEvent{}, apperr.NotFound(op, "team", teamID)
		}
		tasks := c.Teams[teamIdx].AssignedTasks
		taskIdx := slices.IndexFunc(tasks, func(t models.Task) bool { return t.ID == taskID })
		if taskIdx < 0 {
			return models.TimelineEvent{}, apperr.NotFound(op, "task", taskID)
		}
		task := &tasks[taskIdx]
		if task.Status == models.TaskCompleted && status != models.TaskCompleted {
			return models.TimelineEvent{}, apperr.Validation(op, "task %q is already completed", taskID)
		}
		previous := task.Status
		task.Status = status
		if status == models.TaskCompleted && task.CompletedAt == nil {
			task.CompletedAt = timePtr(w.clock())
		}
		result = *task
		return w.event(incidentID, "task_status_changed", fmt.Sprintf("Task %s moved from %s to %s", task.Title, previous, status), performedBy,
			map[string]string{"team_id": teamID, "task_id": taskID}), nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AddResource добавляет доступный ресурс
func (w *Workspace) AddResource(ctx context.Context, incidentID string, input ResourceInput, performedBy string) (*models.Resource, error) {
	const op = "coordination.AddResource"
	input.Name = strings.TrimSpace(input.Name)
	input.Type = strings.TrimSpace(input.Type)
	if err := validateInput(op, input); err != nil {
		return nil, err
	}
	resource := models.Resource{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Type:      input.Type,
		Quantity:  input.Quantity,
		Location:  input.Location,
		Available: true,
	}
	_, err := w.mutate(ctx, op, incidentID, func(c *models.ResponseCoordination) (models.TimelineEvent, error) {
		c.Resources = append(c.Resources, resource)
		return w.event(incidentID, "resource_added", fmt.Sprintf("Resource %s added", resource.Name), performedBy,
			map[string]string{"resource_id": resource.ID}), nil
	})
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

// AllocateResource закрепляет доступный ресурс за командой
func (w *Workspace) AllocateResource(ctx context.Context, incidentID, resourceID, teamID, performedBy string) (*models.Resource, error) {
	const op = "coordination.AllocateResource"
	var result models.Resource
	_, err := w.mutate(ctx, op, incidentID, func(c *models.ResponseCoordination) (models.TimelineEvent, error) {
		teamIdx := c.Team(teamID)
		if teamIdx < 0 {
			return models.TimelineEvent{}, apperr.NotFound(op, "team", teamID)
		}
		idx := c.Resource(resourceID)
		if idx < 0 {
			return models.TimelineEvent{}, apperr.NotFound(op, "resource", resourceID)
		}
		resource := &c.Resources[idx]
		if !resource.Available {
			return models.TimelineEvent{}, apperr.Validation(op, "resource %q is already allocated to %s", resourceID, resource.AllocatedTo)
		}
		resource.Available = false
		resource.AllocatedTo = teamID
		result = *resource
		return w.event(incidentID, "resource_allocated", fmt.Sprintf("Resource %s allocated to team %s", resource.Name, c.Teams[teamIdx].Name), performedBy,
			map[string]string{"resource_id": resourceID, "team_id": teamID}), nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// LogEvent добавляет произвольную запись хронологии
func (w *Workspace) LogEvent(ctx context.Context, incidentID string, input EventInput) (*models.TimelineEvent, error) {
	const op = "coordination.LogEvent"
	input.Type = strings.TrimSpace(input.Type)
	input.Description = strings.TrimSpace(input.Description)
	if err := validateInput(op, input); err != nil {
		return nil, err
	}
	var result models.TimelineEvent
	_, err := w.mutate(ctx, op, incidentID, func(*models.ResponseCoordination) (models.TimelineEvent, error) {
		result = w.event(incidentID, input.Type, input.Description, input.PerformedBy, input.Metadata)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SetStatus меняет статус координации
func (w *Workspace) SetStatus(ctx context.Context, incidentID string, status models.CoordinationStatus, performedBy string) (*models.ResponseCoordination, error) {
	const op = "coordination.SetStatus"
	if !status.Valid() {
		return nil, apperr.Validation(op, "unknown coordination status %q", status)
	}
	return w.mutate(ctx, op, incidentID, func(c *models.ResponseCoordination) (models.TimelineEvent, error) {
		previous := c.Status
		c.Status = status
		return w.event(incidentID, "status_changed", fmt.Sprintf("Coordination moved from %s to %s", previous, status), performedBy, nil), nil
	})
}

// mutate применяет изменение к копии, сохраняет его и только затем обновляет зеркало.
// Изменения одной координации выполняются по очереди.
func (w *Workspace) mutate(ctx context.Context, op, incidentID string, change func(c *models.ResponseCoordination) (models.TimelineEvent, error)) (*models.ResponseCoordination, error) {
	unlock := w.writes.lock(incidentID)
	defer unlock()

	next, err := w.Get(incidentID)
	if err != nil {
		return nil, err
	}
	event, err := change(next)
	if err != nil {
		return nil, err
	}
	next.Timeline = append(next.Timeline, event)
	next.UpdatedAt = w.clock()

	raw, err := w.backend.Update(ctx, store.TableCoordinations, next.ID, map[string]any{
		"teams":      next.Teams,
		"resources":  next.Resources,
		"timeline":   next.Timeline,
		"status":     next.Status,
		"updated_at": next.UpdatedAt,
		"version":    next.Version + 1,
	})
	if err != nil {
		w.logger.WithError(err).WithFields(logrus.Fields{
			"incident_id": incidentID,
			"op":          op,
		}).Error("Failed to persist coordination change")
		w.metrics.StoreErrors.WithLabelValues(op).Inc()
		return nil, storeError(op, "coordination", incidentID, err)
	}
	updated, err := decode[models.ResponseCoordination](raw)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	w.ApplyCoordination(updated)
	return updated.Clone(), nil
}

func (w *Workspace) event(incidentID, eventType, description, performedBy string, metadata map[string]string) models.TimelineEvent {
	return models.TimelineEvent{
		ID:          ulid.Make().String(),
		IncidentID:  incidentID,
		Timestamp:   w.clock(),
		Type:        eventType,
		Description: description,
		PerformedBy: performedBy,
		Metadata:    metadata,
	}
}

func newTeam(op string, input TeamInput) (models.ResponseTeam, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Lead = strings.TrimSpace(input.Lead)
	if err := validateInput(op, input); err != nil {
		return models.ResponseTeam{}, err
	}
	members, _ := models.SetAdd(models.NormalizeSet(input.Members), input.Lead)
	return models.ResponseTeam{
		ID:             uuid.NewString(),
		Name:           input.Name,
		Lead:           input.Lead,
		Members:        members,
		AssignedTasks:  []models.Task{},
		Specialization: input.Specialization,
	}, nil
}

// Get возвращает копию координации инцидента
func (w *Workspace) Get(incidentID string) (*models.ResponseCoordination, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.coordinations[incidentID]
	if !ok {
		return nil, apperr.NotFound("coordination.Get", "coordination", incidentID)
	}
	return c.Clone(), nil
}

// ApplyCoordination заменяет агрегат версией из хранилища; более старая версия отбрасывается
func (w *Workspace) ApplyCoordination(c *models.ResponseCoordination) bool {
	cp := c.Clone()
	w.mu.Lock()
	defer w.mu.Unlock()
	if existing, ok := w.coordinations[cp.IncidentID]; ok && cp.Version < existing.Version {
		return false
	}
	w.coordinations[cp.IncidentID] = cp
	return true
}

// ActiveIncidentCount - число незакрытых инцидентов
func (w *Workspace) ActiveIncidentCount() int {
	return w.incidents.ActiveIncidentCount()
}

// AvailableResponderCount - число доступных респондеров
func (w *Workspace) AvailableResponderCount() int {
	return w.responders.AvailableCount()
}

// Stats собирает показатели без кеширования
func (w *Workspace) Stats() Stats {
	stats := Stats{
		ActiveIncidents:     w.ActiveIncidentCount(),
		AvailableResponders: w.AvailableResponderCount(),
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, c := range w.coordinations {
		if c.Status != models.CoordinationCompleted {
			stats.ActiveCoordinations++
		}
		stats.Teams += len(c.Teams)
		for _, team := range c.Teams {
			for _, task := range team.AssignedTasks {
				if task.Status != models.TaskCompleted {
					stats.OpenTasks++
				}
			}
		}
		for _, r := range c.Resources {
			if r.Available {
				stats.AvailableResources++
			}
		}
	}
	return stats
}
