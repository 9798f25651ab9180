package v1

import (
	"time"

	"github.com/shenikar/civic_response_system/internal/models"
	"github.com/shenikar/civic_response_system/internal/reconcile"
)

// CreateIncidentRequest DTO для создания инцидента
// @Description DTO для создания инцидента. Точные координаты огрубляются до ячейки и не сохраняются.
type CreateIncidentRequest struct {
	Title             string   `json:"title" validate:"required,min=2,max=255"`
	Description       string   `json:"description" validate:"required"`
	Type              string   `json:"type,omitempty"`
	RequiredSkills    []string `json:"required_skills,omitempty"`
	Severity          string   `json:"severity,omitempty" validate:"omitempty,oneof=low medium high critical"`
	Region            string   `json:"region" validate:"required"`
	District          string   `json:"district,omitempty"`
	Latitude          *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude         *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	EncryptedLocation string   `json:"encrypted_location,omitempty"`
	RespondersNeeded  int      `json:"responders_needed" validate:"gte=0"`
	Tags              []string `json:"tags,omitempty"`
}

// UpdateIncidentRequest DTO для частичного обновления инцидента
// @Description DTO для частичного обновления инцидента; отсутствующие поля не меняются
type UpdateIncidentRequest struct {
	Title            *string   `json:"title,omitempty" validate:"omitempty,min=2,max=255"`
	Description      *string   `json:"description,omitempty"`
	Type             *string   `json:"type,omitempty"`
	RequiredSkills   *[]string `json:"required_skills,omitempty"`
	Severity         *string   `json:"severity,omitempty" validate:"omitempty,oneof=low medium high critical"`
	Status           *string   `json:"status,omitempty" validate:"omitempty,oneof=reported acknowledged responding resolved"`
	District         *string   `json:"district,omitempty"`
	RespondersNeeded *int      `json:"responders_needed,omitempty" validate:"omitempty,gte=0"`
	Tags             *[]string `json:"tags,omitempty"`
}

// AssignResponderRequest DTO для назначения респондера
type AssignResponderRequest struct {
	ResponderID string `json:"responder_id" validate:"required"`
}

// AppendUpdateRequest DTO записи журнала инцидента
type AppendUpdateRequest struct {
	Message string `json:"message" validate:"required"`
	Type    string `json:"type,omitempty" validate:"omitempty,oneof=status_change info request resolution"`
}

// BackupRequest DTO запроса подкрепления
type BackupRequest struct {
	Message string `json:"message,omitempty"`
}

// LocationResponse - огрубленное местоположение
type LocationResponse struct {
	Region        string `json:"region"`
	District      string `json:"district,omitempty"`
	GridReference string `json:"grid_reference,omitempty"`
}

// IncidentUpdateResponse - запись журнала инцидента
type IncidentUpdateResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id,omitempty"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID                 string                   `json:"id"`
	Title              string                   `json:"title"`
	Description        string                   `json:"description"`
	Type               string                   `json:"type,omitempty"`
	RequiredSkills     []string                 `json:"required_skills"`
	Severity           string                   `json:"severity"`
	Status             string                   `json:"status"`
	Location           *LocationResponse        `json:"location,omitempty"`
	ReporterID         string                   `json:"reporter_id,omitempty"`
	RespondersNeeded   int                      `json:"responders_needed"`
	RespondersAssigned []string                 `json:"responders_assigned"`
	Updates            []IncidentUpdateResponse `json:"updates"`
	Tags               []string                 `json:"tags"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
	ResolvedAt         *time.Time               `json:"resolved_at,omitempty"`
}

// RegisterResponderRequest DTO регистрации респондера
type RegisterResponderRequest struct {
	UserID                 string   `json:"user_id" validate:"required"`
	Name                   string   `json:"name" validate:"required"`
	Skills                 []string `json:"skills"`
	Status                 string   `json:"status,omitempty" validate:"omitempty,oneof=available busy offline"`
	MaxConcurrentIncidents int      `json:"max_concurrent_incidents" validate:"gte=0"`
	Certifications         []string `json:"certifications,omitempty"`
	PreferredRadiusKm      *float64 `json:"preferred_radius_km,omitempty" validate:"omitempty,gt=0"`
	Latitude               *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude              *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// AvailabilityRequest DTO изменения доступности
type AvailabilityRequest struct {
	Status                 string     `json:"status" validate:"required,oneof=available busy offline"`
	NextAvailable          *time.Time `json:"next_available,omitempty"`
	MaxConcurrentIncidents *int       `json:"max_concurrent_incidents,omitempty" validate:"omitempty,gte=0"`
}

// FeedbackRequest DTO отзыва о реагировании
type FeedbackRequest struct {
	IncidentID string `json:"incident_id" validate:"required"`
	Feedback   string `json:"feedback,omitempty"`
	Rating     *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

// AlertResponse DTO оповещения
type AlertResponse struct {
	ID             string     `json:"id"`
	IncidentID     string     `json:"incident_id"`
	RecipientID    string     `json:"recipient_id"`
	Type           string     `json:"type"`
	Priority       string     `json:"priority"`
	Message        string     `json:"message"`
	ActionRequired string     `json:"action_required,omitempty"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// UnreadCountResponse - число неподтвержденных оповещений; RecipientID - ID респондера
type UnreadCountResponse struct {
	RecipientID string `json:"recipient_id"`
	Unread      int    `json:"unread"`
}

// SendMessageRequest DTO сообщения; content непрозрачен для сервера
type SendMessageRequest struct {
	RecipientIDs []string            `json:"recipient_ids" validate:"required,min=1"`
	Content      string              `json:"content" validate:"required"`
	IncidentID   string              `json:"incident_id,omitempty"`
	Attachments  []models.Attachment `json:"attachments,omitempty"`
	ExpiresAt    *time.Time          `json:"expires_at,omitempty"`
}

// CreateCoordinationRequest DTO создания координации
type CreateCoordinationRequest struct {
	CoordinatorID string       `json:"coordinator_id,omitempty"`
	InitialTeam   *TeamRequest `json:"initial_team,omitempty"`
}

// TeamRequest DTO команды
type TeamRequest struct {
	Name           string   `json:"name" validate:"required"`
	Lead           string   `json:"lead" validate:"required"`
	Members        []string `json:"members,omitempty"`
	Specialization string   `json:"specialization,omitempty"`
}

// TaskRequest DTO задачи
type TaskRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description,omitempty"`
	AssignedTo  []string   `json:"assigned_to,omitempty"`
	Priority    string     `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueBy       *time.Time `json:"due_by,omitempty"`
}

// TaskStatusRequest DTO смены статуса задачи
type TaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed"`
}

// ResourceRequest DTO ресурса
type ResourceRequest struct {
	Name     string `json:"name" validate:"required"`
	Type     string `json:"type" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
	Location string `json:"location,omitempty"`
}

// AllocateRequest DTO закрепления ресурса
type AllocateRequest struct {
	TeamID string `json:"team_id" validate:"required"`
}

// EventRequest DTO записи хронологии
type EventRequest struct {
	Type        string            `json:"type" validate:"required"`
	Description string            `json:"description" validate:"required"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// CoordinationStatusRequest DTO смены статуса координации
type CoordinationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=planning active completed"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	ActiveIncidents     int `json:"active_incidents"`
	AvailableResponders int `json:"available_responders"`
	ActiveCoordinations int `json:"active_coordinations"`
	Teams               int `json:"teams"`
	OpenTasks           int `json:"open_tasks"`
	AvailableResources  int `json:"available_resources"`
}

// HealthResponse - состояние процесса и подписок
type HealthResponse struct {
	Status  string                  `json:"status"`
	Paused  int                     `json:"paused"`
	Watches []reconcile.WatchStatus `json:"watches"`
}
