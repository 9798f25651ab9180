package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/civic_response_system/internal/apperr"
	"github.com/shenikar/civic_response_system/internal/config"
	"github.com/shenikar/civic_response_system/internal/models"
	"github.com/shenikar/civic_response_system/internal/reconcile"
	"github.com/shenikar/civic_response_system/internal/service"
)

// UserIDHeader - заголовок с идентификатором действующего пользователя
const UserIDHeader = "X-User-ID"

// Watcher - управление живыми подписками и их состоянием
type Watcher interface {
	WatchIncident(ctx context.Context, incidentID string) error
	WatchRecipient(ctx context.Context, recipientID string) error
	Release(key string) bool
	Status() []reconcile.WatchStatus
	Paused() int
}

// Services - зависимости HTTP слоя
type Services struct {
	Incidents  service.IncidentService
	Responders *service.ResponderDirectory
	Inbox      *service.AlertInbox
	Messages   *service.MessagingChannel
	Workspace  *service.Workspace
	Watcher    Watcher
}

// Handler - HTTP обработчики API v1
type Handler struct {
	services Services
	logger   *logrus.Logger
	validate *validator.Validate
	cfg      *config.Config
}

// NewHandler - конструктор для Handler
func NewHandler(services Services, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
		validate: validator.New(),
		cfg:      cfg,
	}
}

// bind разбирает тело запроса и проверяет DTO; при ошибке ответ уже отправлен
func (h *Handler) bind(c *gin.Context, log *logrus.Entry, dto any) bool {
	if err := c.ShouldBindJSON(dto); err != nil {
		log.WithError(err).Warn("Failed to bind request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := h.validate.Struct(dto); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// actor возвращает идентификатор пользователя из заголовка
func actor(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(UserIDHeader))
}

// requireActor требует заголовок пользователя; при отсутствии ответ уже отправлен
func requireActor(c *gin.Context) (string, bool) {
	userID := actor(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": UserIDHeader + " header is required"})
		return "", false
	}
	return userID, true
}

// respondError переводит вид ошибки в HTTP статус
func (h *Handler) respondError(c *gin.Context, log *logrus.Entry, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		log.WithError(err).Warn("Request rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperr.KindNotFound:
		log.WithError(err).Info("Entity not found")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperr.KindStore:
		log.WithError(err).Error("Store operation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "store unavailable"})
	case apperr.KindSubscription:
		log.WithError(err).Warn("Subscription unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live updates unavailable"})
	default:
		log.WithError(err).Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// createIncident godoc
// @Summary Создать новый инцидент
// @Description Создает инцидент и оповещает подходящих доступных респондеров
// @Tags incidents
// @Accept  json
// @Produce  json
// @Param   incident body CreateIncidentRequest true "Данные для создания инцидента"
// @Success 201 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Неверный запрос"
// @Failure 502 {object} map[string]string "Хранилище недоступно"
// @Security ApiKeyAuth
// @Router /incidents [post]
func (h *Handler) createIncident(c *gin.Context) {
	log := h.logger.WithField("method", "createIncident")
	var req CreateIncidentRequest
	if !h.bind(c, log, &req) {
		return
	}

	incident, err := h.services.Incidents.CreateIncident(c.Request.Context(), DTOToCreateIncidentInput(req, actor(c)))
	if err != nil {
		h.respondError(c, log, err)
		return
	}

	log.WithField("incident_id", incident.ID).Info("Incident created")
	c.JSON(http.StatusCreated, ModelToIncidentResponse(incident))
}

// listIncidents godoc
// @Summary Получить список инцидентов
// @Description Возвращает инциденты по фильтрам, новые первыми
// @Tags incidents
// @Produce  json
// @Param   status query string false "Статус"
// @Param   severity query string false "Серьезность"
// @Param   region query string false "Регион"
// @Param   responder_id query string false "Назначенный респондер"
// @Success 200 {array} IncidentResponse
// @Security ApiKeyAuth
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")
	filter := service.IncidentFilter{
		Status:      models.IncidentStatus(c.Query("status")),
		Severity:    models.Severity(c.Query("severity")),
		Region:      c.Query("region"),
		ResponderID: c.Query("responder_id"),
	}

	incidents, err := h.services.Incidents.ListIncidents(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// getIncident godoc
// @Summary Получить инцидент по ID
// @Tags incidents
// @Produce  json
// @Param   id path string true "ID инцидента"
// @Success 200 {object} IncidentResponse
// @Failure 404 {object} map[string]string "Инцидент не найден"
// @Security ApiKeyAuth
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	log := h.logger.WithField("method", "getIncident")
	incident, err := h.services.Incidents.GetIncident(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// updateIncident godoc
// @Summary Частично обновить инцидент
// @Description Статус меняется только вперед; смена статуса оповещает назначенных респондеров
// @Tags incidents
// @Accept  json
// @Produce  json
// @Param   id path string true "ID инцидента"
// @Param   incident body UpdateIncidentRequest true "Изменяемые поля"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Неверный запрос"
// @Failure 404 {object} map[string]string "Инцидент не найден"
// @Security ApiKeyAuth
// @Router /incidents/{id} [patch]
func (h *Handler) updateIncident(c *gin.Context) {
	log := h.logger.WithField("method", "updateIncident")
	var req UpdateIncidentRequest
	if !h.bind(c, log, &req) {
		return
	}

	incident, err := h.services.Incidents.UpdateIncident(c.Request.Context(), c.Param("id"), DTOToIncidentPatch(req, actor(c)))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// transition возвращает обработчик перехода статуса
func (h *Handler) transition(method string, move func(ctx context.Context, id, actorID string) (*models.Incident, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := h.logger.WithField("method", method)
		incident, err := move(c.Request.Context(), c.Param("id"), actor(c))
		if err != nil {
			h.respondError(c, log, err)
			return
		}
		log.WithFields(logrus.Fields{
			"incident_id": incident.ID,
			"status":      incident.Status,
		}).Info("Incident status changed")
		c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
	}
}

// acknowledgeIncident godoc
// @Summary Подтвердить инцидент
// @Tags incidents
// @Produce  json
// @Param   id path string true "ID инцидента"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Переход назад запрещен"
// @Security ApiKeyAuth
// @Router /incidents/{id}/acknowledge [post]
func (h *Handler) acknowledgeIncident(c *gin.Context) {
	h.transition("acknowledgeIncident", h.services.Incidents.AcknowledgeIncident)(c)
}

// beginResponse godoc
// @Summary Начать реагирование
// @Tags incidents
// @Produce  json
// @Param   id path string true "ID инцидента"
// @Success 200 {object} IncidentResponse
// @Security ApiKeyAuth
// @Router /incidents/{id}/begin [post]
func (h *Handler) beginResponse(c *gin.Context) {
	h.transition("beginResponse", h.services.Incidents.BeginResponse)(c)
}

// resolveIncident godoc
// @Summary Закрыть инцидент
// @Description Закрывает инцидент, оповещает и освобождает назначенных респондеров
// @Tags incidents
// @Produce  json
// @Param   id path string true "ID инцидента"
// @Success 200 {object} IncidentResponse
// @Security ApiKeyAuth
// @Router /incidents/{id}/resolve [post]
func (h *Handler) resolveIncident(c *gin.Context) {
	h.transition("resolveIncident", h.services.Incidents.ResolveIncident)(c)
}

// assignResponder godoc
// @Summary Назначить респондера
// @Tags incidents
// @Accept  json
// @Produce  json
// @Param   id path string true "ID инцидента"
// @Param   assignment body AssignResponderRequest true "Респондер"
// @Success 200 {object} IncidentResponse
// @Failure 404 {object} map[string]string "Инцидент или респондер не найден"
// @Security ApiKeyAuth
// @Router /incidents/{id}/assignments [post]
func (h *Handler) assignResponder(c *gin.Context) {
	log := h.logger.WithField("method", "assignResponder")
	var req AssignResponderRequest
	if !h.bind(c, log, &req) {
		return
	}

	incident, err := h.services.Incidents.AssignResponder(c.Request.Context(), c.Param("id"), req.ResponderID, actor(c))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// appendUpdate godoc
// @Summary Добавить запись в журнал инцидента
// @Tags incidents
// @Accept  json
// @Produce  json
// @Param   id path string true "ID инцидента"
// @Param   update body AppendUpdateRequest true "Запись"
// @Success 201 {object} IncidentUpdateResponse
// @Security ApiKeyAuth
// @Router /incidents/{id}/updates [post]
func (h *Handler) appendUpdate(c *gin.Context) {
	log := h.logger.WithField("method", "appendUpdate")
	var req AppendUpdateRequest
	if !h.bind(c, log, &req) {
		return
	}

	update, err := h.services.Incidents.AppendUpdate(c.Request.Context(), c.Param("id"), service.UpdateInput{
		AuthorID: actor(c),
		Message:  req.Message,
		Type:     models.UpdateType(req.Type),
	})
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, IncidentUpdateResponse{
		ID:        update.ID,
		AuthorID:  update.AuthorID,
		Message:   update.Message,
		Type:      string(update.Type),
		CreatedAt: update.CreatedAt,
	})
}

// requestBackup godoc
// @Summary Запросить подкрепление
// @Description Рассылает срочный запрос подходящим респондерам, еще не назначенным на инцидент
// @Tags incidents
// @Accept  json
// @Produce  json
// @Param   id path string true "ID инцидента"
// @Param   request body BackupRequest false "Текст запроса"
// @Success 200 {array} AlertResponse
// @Security ApiKeyAuth
// @Router /incidents/{id}/backup [post]
func (h *Handler) requestBackup(c *gin.Context) {
	log := h.logger.WithField("method", "requestBackup")
	var req BackupRequest
	if c.Request.ContentLength > 0 && !h.bind(c, log, &req) {
		return
	}

	alerts, err := h.services.Incidents.RequestBackup(c.Request.Context(), c.Param("id"), actor(c), req.Message)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToAlertResponses(alerts))
}

// watchIncident godoc
// @Summary Включить живые обновления инцидента
// @Tags incidents
// @Param   id path string true "ID инцидента"
// @Success 204
// @Failure 503 {object} map[string]string "Подписка недоступна"
// @Security ApiKeyAuth
// @Router /incidents/{id}/watch [post]
func (h *Handler) watchIncident(c *gin.Context) {
	log := h.logger.WithField("method", "watchIncident")
	id := c.Param("id")
	if h.services.Watcher == nil {
		h.respondError(c, log, apperr.Subscription(reconcile.IncidentKey(id), errNoWatcher))
		return
	}
	if _, err := h.services.Incidents.GetIncident(c.Request.Context(), id); err != nil {
		h.respondError(c, log, err)
		return
	}
	// подписка живет дольше запроса
	if err := h.services.Watcher.WatchIncident(context.WithoutCancel(c.Request.Context()), id); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// unwatchIncident godoc
// @Summary Отключить живые обновления инцидента
// @Tags incidents
// @Param   id path string true "ID инцидента"
// @Success 204
// @Failure 404 {object} map[string]string "Подписки нет"
// @Security ApiKeyAuth
// @Router /incidents/{id}/watch [delete]
func (h *Handler) unwatchIncident(c *gin.Context) {
	if h.services.Watcher == nil || !h.services.Watcher.Release(reconcile.IncidentKey(c.Param("id"))) {
		c.JSON(http.StatusNotFound, gin.H{"error": "watch not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// getStats godoc
// @Summary Получить сводную статистику
// @Tags system
// @Produce  json
// @Success 200 {object} StatsResponse
// @Security ApiKeyAuth
// @Router /stats [get]
func (h *Handler) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, StatsToResponse(h.services.Workspace.Stats()))
}

// healthCheck godoc
// @Summary Проверка состояния сервиса
// @Description Возвращает degraded, если часть подписок приостановлена
// @Tags system
// @Produce  json
// @Success 200 {object} HealthResponse
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Watches: []reconcile.WatchStatus{}}
	if h.services.Watcher != nil {
		resp.Paused = h.services.Watcher.Paused()
		if watches := h.services.Watcher.Status(); watches != nil {
			resp.Watches = watches
		}
	}
	if resp.Paused > 0 {
		resp.Status = "degraded"
	}
	c.JSON(http.StatusOK, resp)
}

// errNoWatcher возвращается, когда живые обновления не настроены
var errNoWatcher = errors.New("live updates are not configured")
