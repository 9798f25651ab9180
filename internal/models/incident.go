package models

import (
	"slices"
	"time"
)

// Severity - тяжесть инцидента
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid проверяет, что значение входит в допустимый набор
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// IncidentStatus - этап жизненного цикла инцидента
type IncidentStatus string

const (
	StatusReported     IncidentStatus = "reported"
	StatusAcknowledged IncidentStatus = "acknowledged"
	StatusResponding   IncidentStatus = "responding"
	StatusResolved     IncidentStatus = "resolved"
)

// rank - порядковый номер статуса; -1 для неизвестных значений
func (s IncidentStatus) rank() int {
	switch s {
	case StatusReported:
		return 0
	case StatusAcknowledged:
		return 1
	case StatusResponding:
		return 2
	case StatusResolved:
		return 3
	}
	return -1
}

// Valid проверяет, что значение входит в допустимый набор
func (s IncidentStatus) Valid() bool {
	return s.rank() >= 0
}

// CanTransitionTo разрешает движение только вперед (или сохранение статуса)
func (s IncidentStatus) CanTransitionTo(next IncidentStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return next.rank() >= s.rank()
}

// Terminal - статус, после которого переходов нет
func (s IncidentStatus) Terminal() bool {
	return s == StatusResolved
}

// IncidentType - тип инцидента и навыки, требуемые для реагирования
type IncidentType struct {
	Name           string   `json:"name"`
	RequiredSkills []string `json:"required_skills,omitempty"`
}

// Location - огрубленное местоположение без точных координат
type Location struct {
	Region         string `json:"region"`
	District       string `json:"district,omitempty"`
	GridReference  string `json:"grid_reference,omitempty"`
	EncryptedExact string `json:"encrypted_exact,omitempty"`
}

// Incident - инцидент. Version растет на единицу с каждой записью в хранилище.
type Incident struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	Type               IncidentType     `json:"type"`
	Severity           Severity         `json:"severity"`
	Status             IncidentStatus   `json:"status"`
	Location           *Location        `json:"location,omitempty"`
	ReporterID         string           `json:"reporter_id"`
	RespondersNeeded   int              `json:"responders_needed"`
	RespondersAssigned []string         `json:"responders_assigned"`
	Updates            []IncidentUpdate `json:"updates,omitempty"`
	Tags               []string         `json:"tags,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	ResolvedAt         *time.Time       `json:"resolved_at,omitempty"`
	Version            int64            `json:"version"`
}

// Region возвращает регион инцидента или пустую строку
func (i *Incident) Region() string {
	if i.Location == nil {
		return ""
	}
	return i.Location.Region
}

// IsAssigned сообщает, назначен ли респондер на инцидент
func (i *Incident) IsAssigned(responderID string) bool {
	return slices.Contains(i.RespondersAssigned, responderID)
}

// Clone возвращает копию, не разделяющую срезы с оригиналом
func (i *Incident) Clone() *Incident {
	cp := *i
	cp.Type.RequiredSkills = slices.Clone(i.Type.RequiredSkills)
	cp.RespondersAssigned = slices.Clone(i.RespondersAssigned)
	cp.Updates = slices.Clone(i.Updates)
	cp.Tags = slices.Clone(i.Tags)
	if i.Location != nil {
		loc := *i.Location
		cp.Location = &loc
	}
	if i.ResolvedAt != nil {
		t := *i.ResolvedAt
		cp.ResolvedAt = &t
	}
	return &cp
}

// UpdateType - вид записи в журнале инцидента
type UpdateType string

const (
	UpdateStatusChange UpdateType = "status_change"
	UpdateInfo         UpdateType = "info"
	UpdateRequest      UpdateType = "request"
	UpdateResolution   UpdateType = "resolution"
)

func (t UpdateType) Valid() bool {
	switch t {
	case UpdateStatusChange, UpdateInfo, UpdateRequest, UpdateResolution:
		return true
	}
	return false
}

// IncidentUpdate - неизменяемая запись журнала инцидента
type IncidentUpdate struct {
	ID         string     `json:"id"`
	IncidentID string     `json:"incident_id"`
	AuthorID   string     `json:"author_id"`
	Message    string     `json:"message"`
	Type       UpdateType `json:"type"`
	CreatedAt  time.Time  `json:"created_at"`
}
