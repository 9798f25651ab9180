package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/civic_response_system/internal/apperr"
	"github.com/shenikar/civic_response_system/internal/reconcile"
	"github.com/shenikar/civic_response_system/internal/service"
)

// requireRecipient переводит пользователя из X-User-ID в его профиль респондера:
// оповещения адресуются респондерам, а не пользователям
func (h *Handler) requireRecipient(c *gin.Context, log *logrus.Entry) (string, bool) {
	userID, ok := requireActor(c)
	if !ok {
		return "", false
	}
	responder, err := h.services.Responders.ByUserID(userID)
	if err != nil {
		h.respondError(c, log, err)
		return "", false
	}
	return responder.ID, true
}

// listAlerts godoc
// @Summary Получить оповещения пользователя
// @Description Новые первыми; filter принимает all, unread или urgent
// @Tags alerts
// @Produce  json
// @Param   X-User-ID header string true "Пользователь с профилем респондера"
// @Param   filter query string false "Режим фильтра" default(all)
// @Success 200 {array} AlertResponse
// @Failure 400 {object} map[string]string "Неверный фильтр"
// @Failure 404 {object} map[string]string "У пользователя нет профиля респондера"
// @Security ApiKeyAuth
// @Router /alerts [get]
func (h *Handler) listAlerts(c *gin.Context) {
	recipientID, ok := h.requireRecipient(c, h.logger.WithField("method", "listAlerts"))
	if !ok {
		return
	}
	mode := service.FilterMode(c.DefaultQuery("filter", string(service.FilterAll)))
	if !mode.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filter must be all, unread or urgent"})
		return
	}
	c.JSON(http.StatusOK, ModelsToAlertResponses(h.services.Inbox.Filter(recipientID, mode)))
}

// unreadCount godoc
// @Summary Число неподтвержденных оповещений
// @Tags alerts
// @Produce  json
// @Param   X-User-ID header string true "Пользователь с профилем респондера"
// @Success 200 {object} UnreadCountResponse
// @Failure 404 {object} map[string]string "У пользователя нет профиля респондера"
// @Security ApiKeyAuth
// @Router /alerts/unread-count [get]
func (h *Handler) unreadCount(c *gin.Context) {
	recipientID, ok := h.requireRecipient(c, h.logger.WithField("method", "unreadCount"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, UnreadCountResponse{
		RecipientID: recipientID,
		Unread:      h.services.Inbox.UnreadCount(recipientID),
	})
}

// acknowledgeAlert godoc
// @Summary Подтвердить оповещение
// @Description Подтвердить может только получатель; повторное подтверждение не меняет время первого
// @Tags alerts
// @Produce  json
// @Param   X-User-ID header string true "Пользователь с профилем респондера"
// @Param   id path string true "ID оповещения"
// @Success 200 {object} AlertResponse
// @Failure 400 {object} map[string]string "Не передан X-User-ID"
// @Failure 404 {object} map[string]string "Оповещение не найдено"
// @Security ApiKeyAuth
// @Router /alerts/{id}/acknowledge [post]
func (h *Handler) acknowledgeAlert(c *gin.Context) {
	log := h.logger.WithField("method", "acknowledgeAlert")
	recipientID, ok := h.requireRecipient(c, log)
	if !ok {
		return
	}
	alert, err := h.services.Inbox.Acknowledge(c.Request.Context(), c.Param("id"), recipientID)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAlertResponse(alert))
}

// watchAlerts godoc
// @Summary Включить живые оповещения пользователя
// @Tags alerts
// @Param   X-User-ID header string true "Пользователь с профилем респондера"
// @Success 204
// @Failure 404 {object} map[string]string "У пользователя нет профиля респондера"
// @Failure 503 {object} map[string]string "Подписка недоступна"
// @Security ApiKeyAuth
// @Router /alerts/watch [post]
func (h *Handler) watchAlerts(c *gin.Context) {
	log := h.logger.WithField("method", "watchAlerts")
	recipientID, ok := h.requireRecipient(c, log)
	if !ok {
		return
	}
	if h.services.Watcher == nil {
		h.respondError(c, log, apperr.Subscription(reconcile.RecipientKey(recipientID), errNoWatcher))
		return
	}
	if err := h.services.Watcher.WatchRecipient(context.WithoutCancel(c.Request.Context()), recipientID); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// unwatchAlerts godoc
// @Summary Отключить живые оповещения пользователя
// @Tags alerts
// @Param   X-User-ID header string true "Пользователь с профилем респондера"
// @Success 204
// @Security ApiKeyAuth
// @Router /alerts/watch [delete]
func (h *Handler) unwatchAlerts(c *gin.Context) {
	recipientID, ok := h.requireRecipient(c, h.logger.WithField("method", "unwatchAlerts"))
	if !ok {
		return
	}
	if h.services.Watcher == nil || !h.services.Watcher.Release(reconcile.RecipientKey(recipientID)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "watch not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
