package models

import (
	"slices"
	"time"
)

// AvailabilityStatus - текущая доступность респондера
type AvailabilityStatus string

const (
	AvailabilityAvailable AvailabilityStatus = "available"
	AvailabilityBusy      AvailabilityStatus = "busy"
	AvailabilityOffline   AvailabilityStatus = "offline"
)

func (s AvailabilityStatus) Valid() bool {
	switch s {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityOffline:
		return true
	}
	return false
}

type Availability struct {
	Status                 AvailabilityStatus `json:"status"`
	NextAvailable          *time.Time         `json:"next_available,omitempty"`
	MaxConcurrentIncidents int                `json:"max_concurrent_incidents"`
}

// ResponseRecord - участие респондера в инциденте
type ResponseRecord struct {
	IncidentID  string     `json:"incident_id"`
	RespondedAt time.Time  `json:"responded_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	Role        string     `json:"role"`
	Feedback    string     `json:"feedback,omitempty"`
	Rating      *int       `json:"rating,omitempty"`
}

type Responder struct {
	ID                string           `json:"id"`
	UserID            string           `json:"user_id"`
	Name              string           `json:"name"`
	Skills            []string         `json:"skills"`
	Availability      Availability     `json:"availability"`
	CurrentIncidents  []string         `json:"current_incidents"`
	ResponseHistory   []ResponseRecord `json:"response_history"`
	Certifications    []string         `json:"certifications,omitempty"`
	PreferredRadiusKm *float64         `json:"preferred_radius_km,omitempty"`
	GridLocation      string           `json:"grid_location,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	Version           int64            `json:"version"`
}

// IsAvailable - респондер участвует в подборе
func (r *Responder) IsAvailable() bool {
	return r.Availability.Status == AvailabilityAvailable
}

// AtCapacity сообщает, достигнут ли лимит одновременных инцидентов
func (r *Responder) AtCapacity() bool {
	max := r.Availability.MaxConcurrentIncidents
	return max > 0 && len(r.CurrentIncidents) >= max
}

func (r *Responder) Clone() *Responder {
	cp := *r
	cp.Skills = slices.Clone(r.Skills)
	cp.CurrentIncidents = slices.Clone(r.CurrentIncidents)
	cp.ResponseHistory = slices.Clone(r.ResponseHistory)
	cp.Certifications = slices.Clone(r.Certifications)
	if r.Availability.NextAvailable != nil {
		t := *r.Availability.NextAvailable
		cp.Availability.NextAvailable = &t
	}
	if r.PreferredRadiusKm != nil {
		v := *r.PreferredRadiusKm
		cp.PreferredRadiusKm = &v
	}
	return &cp
}
