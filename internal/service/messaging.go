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
	"github.com/shenikar/civic_response_system/internal/store"
)

// SendMessageInput - новое сообщение. Content передается как есть.
type SendMessageInput struct {
	SenderID     string   `validate:"required"`
	RecipientIDs []string `validate:"required,min=1"`
	Content      string   `validate:"required"`
	IncidentID   string
	Attachments  []models.Attachment
	ExpiresAt    *time.Time
}

// MessagingChannel - сообщения нескольким получателям, упорядоченные по createdAt
// с устойчивым порядком при равенстве
type MessagingChannel struct {
	backend store.Backend
	logger  *logrus.Logger
	metrics *Metrics
	clock   func() time.Time

	writes keyLocks

	mu       sync.RWMutex
	messages []*models.SecureMessage
}

func NewMessagingChannel(backend store.Backend, logger *logrus.Logger, metrics *Metrics) *MessagingChannel {
	return &MessagingChannel{
		backend: backend,
		logger:  logger,
		metrics: metrics,
		clock:   utcNow,
	}
}

// Load заполняет зеркало сообщений из хранилища
func (c *MessagingChannel) Load(ctx context.Context) error {
	rows, err := c.backend.Select(ctx, store.TableMessages, nil)
	if err != nil {
		c.metrics.StoreErrors.WithLabelValues("messages.load").Inc()
		return apperr.Store("messages.Load", err)
	}
	list, decodeErr := decodeAll[models.SecureMessage](rows)
	if decodeErr != nil {
		c.logger.WithError(decodeErr).Warn("Skipped malformed message records")
	}
	slices.SortStableFunc(list, compareMessages)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = list
	return nil
}

// Send сохраняет сообщение; пустой список получателей или пустое содержимое - ошибка валидации
func (c *MessagingChannel) Send(ctx context.Context, input SendMessageInput) (*models.SecureMessage, error) {
	const op = "messages.Send"
	input.RecipientIDs = models.NormalizeSet(input.RecipientIDs)
	if blank(input.Content) {
		input.Content = ""
	}
	if err := validateInput(op, input); err != nil {
		return nil, err
	}
	log := c.logger.WithFields(logrus.Fields{
		"service":     "messages",
		"method":      "Send",
		"sender_id":   input.SenderID,
		"incident_id": input.IncidentID,
		"recipients":  len(input.RecipientIDs),
	})

	msg := &models.SecureMessage{
		ID:           uuid.NewString(),
		IncidentID:   strings.TrimSpace(input.IncidentID),
		SenderID:     input.SenderID,
		RecipientIDs: input.RecipientIDs,
		Content:      input.Content,
		Attachments:  input.Attachments,
		ReadBy:       []models.ReadReceipt{},
		ExpiresAt:    input.ExpiresAt,
		CreatedAt:    c.clock(),
	}
	raw, err := encode(msg)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	if _, err := c.backend.Insert(ctx, store.TableMessages, raw); err != nil {
		log.WithError(err).Error("Failed to persist message")
		c.metrics.StoreErrors.WithLabelValues(op).Inc()
		return nil, apperr.Store(op, err)
	}

	c.ApplyMessage(msg)
	c.metrics.MessagesSent.Inc()
	log.WithField("message_id", msg.ID).Info("Message sent")
	return msg.Clone(), nil
}

// VisibleTo возвращает сообщения, где пользователь отправитель или получатель.
// Истекшие сообщения не показываются.
func (c *MessagingChannel) VisibleTo(userID string) []*models.SecureMessage {
	return c.collect(userID, func(*models.SecureMessage) bool { return true })
}

// Thread возвращает видимые сообщения одной ветки; пустой incidentID - личная переписка
func (c *MessagingChannel) Thread(userID, incidentID string) []*models.SecureMessage {
	return c.collect(userID, func(m *models.SecureMessage) bool { return m.IncidentID == incidentID })
}

func (c *MessagingChannel) collect(userID string, keep func(*models.SecureMessage) bool) []*models.SecureMessage {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*models.SecureMessage, 0)
	for _, m := range c.messages {
		if !m.VisibleTo(userID) || !keep(m) {
			continue
		}
		if m.ExpiresAt != nil && !m.ExpiresAt.After(now) {
			continue
		}
		out = append(out, m.Clone())
	}
	return out
}

// MarkRead добавляет отметку о прочтении, не более одной на пользователя
func (c *MessagingChannel) MarkRead(ctx context.Context, messageID, userID string) (*models.SecureMessage, error) {
	const op = "messages.MarkRead"
	unlock := c.writes.lock(messageID)
	defer unlock()
	current, err := c.Get(messageID)
	if err != nil {
		return nil, err
	}
	if !current.VisibleTo(userID) {
		return nil, apperr.NotFound(op, "message", messageID)
	}
	if current.ReadByUser(userID) {
		return current, nil
	}

	readBy := append(slices.Clone(current.ReadBy), models.ReadReceipt{UserID: userID, ReadAt: c.clock()})
	raw, err := c.backend.Update(ctx, store.TableMessages, messageID, map[string]any{"read_by": readBy})
	if err != nil {
		c.logger.WithError(err).WithField("message_id", messageID).Error("Failed to persist read receipt")
		c.metrics.StoreErrors.WithLabelValues(op).Inc()
		return nil, storeError(op, "message", messageID, err)
	}
	updated, err := decode[models.SecureMessage](raw)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	c.ApplyMessage(updated)
	return c.Get(messageID)
}

// Get возвращает копию сообщения
func (c *MessagingChannel) Get(messageID string) (*models.SecureMessage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx := c.index(messageID)
	if idx < 0 {
		return nil, apperr.NotFound("messages.Get", "message", messageID)
	}
	return c.messages[idx].Clone(), nil
}

// ApplyMessage вставляет или заменяет сообщение с сохранением порядка. Отметки о
// прочтении объединяются: по одной на пользователя, первая побеждает.
func (c *MessagingChannel) ApplyMessage(msg *models.SecureMessage) {
	next := msg.Clone()
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.index(msg.ID); idx >= 0 {
		next.ReadBy = mergeReceipts(c.messages[idx].ReadBy, next.ReadBy)
		c.messages[idx] = next
	} else {
		c.messages = append(c.messages, next)
	}
	slices.SortStableFunc(c.messages, compareMessages)
}

// index вызывается под блокировкой
func (c *MessagingChannel) index(messageID string) int {
	return slices.IndexFunc(c.messages, func(m *models.SecureMessage) bool { return m.ID == messageID })
}

func compareMessages(a, b *models.SecureMessage) int {
	return a.CreatedAt.Compare(b.CreatedAt)
}

func mergeReceipts(local, incoming []models.ReadReceipt) []models.ReadReceipt {
	out := slices.Clone(local)
	for _, r := range incoming {
		if !slices.ContainsFunc(out, func(x models.ReadReceipt) bool { return x.UserID == r.UserID }) {
			out = append(out, r)
		}
	}
	if out == nil {
		out = []models.ReadReceipt{}
	}
	return out
}
