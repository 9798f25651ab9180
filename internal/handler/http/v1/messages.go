package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shenikar/civic_response_system/internal/service"
)

// sendMessage godoc
// @Summary Отправить сообщение
// @Description Содержимое передается как есть; отправитель берется из X-User-ID
// @Tags messages
// @Accept  json
// @Produce  json
// @Param   X-User-ID header string true "Отправитель"
// @Param   message body SendMessageRequest true "Сообщение"
// @Success 201 {object} models.SecureMessage
// @Failure 400 {object} map[string]string "Неверный запрос"
// @Security ApiKeyAuth
// @Router /messages [post]
func (h *Handler) sendMessage(c *gin.Context) {
	log := h.logger.WithField("method", "sendMessage")
	senderID, ok := requireActor(c)
	if !ok {
		return
	}
	var req SendMessageRequest
	if !h.bind(c, log, &req) {
		return
	}

	msg, err := h.services.Messages.Send(c.Request.Context(), service.SendMessageInput{
		SenderID:     senderID,
		RecipientIDs: req.RecipientIDs,
		Content:      req.Content,
		IncidentID:   req.IncidentID,
		Attachments:  req.Attachments,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// listMessages godoc
// @Summary Сообщения, видимые пользователю
// @Description С incident_id возвращает ветку инцидента
// @Tags messages
// @Produce  json
// @Param   X-User-ID header string true "Пользователь"
// @Param   incident_id query string false "ID инцидента"
// @Success 200 {array} models.SecureMessage
// @Security ApiKeyAuth
// @Router /messages [get]
func (h *Handler) listMessages(c *gin.Context) {
	userID, ok := requireActor(c)
	if !ok {
		return
	}
	if incidentID := c.Query("incident_id"); incidentID != "" {
		c.JSON(http.StatusOK, h.services.Messages.Thread(userID, incidentID))
		return
	}
	c.JSON(http.StatusOK, h.services.Messages.VisibleTo(userID))
}

// markRead godoc
// @Summary Отметить сообщение прочитанным
// @Tags messages
// @Produce  json
// @Param   X-User-ID header string true "Пользователь"
// @Param   id path string true "ID сообщения"
// @Success 200 {object} models.SecureMessage
// @Failure 404 {object} map[string]string "Сообщение не найдено"
// @Security ApiKeyAuth
// @Router /messages/{id}/read [post]
func (h *Handler) markRead(c *gin.Context) {
	log := h.logger.WithField("method", "markRead")
	userID, ok := requireActor(c)
	if !ok {
		return
	}
	msg, err := h.services.Messages.MarkRead(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}
