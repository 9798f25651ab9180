package models

import (
	"slices"
	"time"
)

type Attachment struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
}

type ReadReceipt struct {
	UserID string    `json:"user_id"`
	ReadAt time.Time `json:"read_at"`
}

// SecureMessage - сообщение нескольким получателям. Content непрозрачен для ядра:
// шифрование выполняется вне этого модуля.
type SecureMessage struct {
	ID           string        `json:"id"`
	IncidentID   string        `json:"incident_id,omitempty"`
	SenderID     string        `json:"sender_id"`
	RecipientIDs []string      `json:"recipient_ids"`
	Content      string        `json:"content"`
	Attachments  []Attachment  `json:"attachments,omitempty"`
	ReadBy       []ReadReceipt `json:"read_by"`
	ExpiresAt    *time.Time    `json:"expires_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// VisibleTo - единственное правило доступа: отправитель или получатель
func (m *SecureMessage) VisibleTo(userID string) bool {
	return m.SenderID == userID || slices.Contains(m.RecipientIDs, userID)
}

// ReadByUser сообщает, есть ли отметка о прочтении от пользователя
func (m *SecureMessage) ReadByUser(userID string) bool {
	return slices.ContainsFunc(m.ReadBy, func(r ReadReceipt) bool { return r.UserID == userID })
}

func (m *SecureMessage) Clone() *SecureMessage {
	cp := *m
	cp.RecipientIDs = slices.Clone(m.RecipientIDs)
	cp.Attachments = slices.Clone(m.Attachments)
	cp.ReadBy = slices.Clone(m.ReadBy)
	if m.ExpiresAt != nil {
		t := *m.ExpiresAt
		cp.ExpiresAt = &t
	}
	return &cp
}
