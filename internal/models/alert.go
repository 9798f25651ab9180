package models

import "time"

type AlertType string

const (
	AlertNewIncident   AlertType = "new_incident"
	AlertAssignment    AlertType = "assignment"
	AlertStatusUpdate  AlertType = "status_update"
	AlertUrgentRequest AlertType = "urgent_request"
	AlertResolution    AlertType = "resolution"
	AlertSystem        AlertType = "system"
)

type AlertPriority string

const (
	PriorityLow    AlertPriority = "low"
	PriorityMedium AlertPriority = "medium"
	PriorityHigh   AlertPriority = "high"
	PriorityUrgent AlertPriority = "urgent"
)

// Alert - адресное уведомление по инциденту. AcknowledgedAt устанавливается один раз.
type Alert struct {
	ID             string        `json:"id"`
	IncidentID     string        `json:"incident_id"`
	RecipientID    string        `json:"recipient_id"`
	Type           AlertType     `json:"type"`
	Priority       AlertPriority `json:"priority"`
	Message        string        `json:"message"`
	ActionRequired string        `json:"action_required,omitempty"`
	ExpiresAt      *time.Time    `json:"expires_at,omitempty"`
	AcknowledgedAt *time.Time    `json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

func (a *Alert) Acknowledged() bool {
	return a.AcknowledgedAt != nil
}

// Urgent - приоритет urgent или high
func (a *Alert) Urgent() bool {
	return a.Priority == PriorityUrgent || a.Priority == PriorityHigh
}

func (a *Alert) Clone() *Alert {
	cp := *a
	if a.ExpiresAt != nil {
		t := *a.ExpiresAt
		cp.ExpiresAt = &t
	}
	if a.AcknowledgedAt != nil {
		t := *a.AcknowledgedAt
		cp.AcknowledgedAt = &t
	}
	return &cp
}
