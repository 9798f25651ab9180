package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shenikar/civic_response_system/internal/models"
	"github.com/shenikar/civic_response_system/internal/service"
)

// registerResponder godoc
// @Summary Зарегистрировать респондера
// @Tags responders
// @Accept  json
// @Produce  json
// @Param   responder body RegisterResponderRequest true "Профиль респондера"
// @Success 201 {object} models.Responder
// @Failure 400 {object} map[string]string "Неверный запрос"
// @Security ApiKeyAuth
// @Router /responders [post]
func (h *Handler) registerResponder(c *gin.Context) {
	log := h.logger.WithField("method", "registerResponder")
	var req RegisterResponderRequest
	if !h.bind(c, log, &req) {
		return
	}

	responder, err := h.services.Responders.Register(c.Request.Context(), service.RegisterResponderInput{
		UserID:                 req.UserID,
		Name:                   req.Name,
		Skills:                 req.Skills,
		Status:                 models.AvailabilityStatus(req.Status),
		MaxConcurrentIncidents: req.MaxConcurrentIncidents,
		Certifications:         req.Certifications,
		PreferredRadiusKm:      req.PreferredRadiusKm,
		Latitude:               req.Latitude,
		Longitude:              req.Longitude,
	})
	if err != nil {
		h.respondError(c, log, err)
		return
	}

	log.WithField("responder_id", responder.ID).Info("Responder registered")
	c.JSON(http.StatusCreated, responder)
}

// listResponders godoc
// @Summary Получить список респондеров
// @Tags responders
// @Produce  json
// @Param   available query bool false "Только доступные"
// @Success 200 {array} models.Responder
// @Security ApiKeyAuth
// @Router /responders [get]
func (h *Handler) listResponders(c *gin.Context) {
	if c.Query("available") == "true" {
		c.JSON(http.StatusOK, h.services.Responders.Available())
		return
	}
	c.JSON(http.StatusOK, h.services.Responders.List())
}

// getResponder godoc
// @Summary Получить респондера по ID
// @Tags responders
// @Produce  json
// @Param   id path string true "ID респондера"
// @Success 200 {object} models.Responder
// @Failure 404 {object} map[string]string "Респондер не найден"
// @Security ApiKeyAuth
// @Router /responders/{id} [get]
func (h *Handler) getResponder(c *gin.Context) {
	responder, err := h.services.Responders.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, h.logger.WithField("method", "getResponder"), err)
		return
	}
	c.JSON(http.StatusOK, responder)
}

// setAvailability godoc
// @Summary Изменить доступность респондера
// @Tags responders
// @Accept  json
// @Produce  json
// @Param   id path string true "ID респондера"
// @Param   availability body AvailabilityRequest true "Доступность"
// @Success 200 {object} models.Responder
// @Security ApiKeyAuth
// @Router /responders/{id}/availability [put]
func (h *Handler) setAvailability(c *gin.Context) {
	log := h.logger.WithField("method", "setAvailability")
	var req AvailabilityRequest
	if !h.bind(c, log, &req) {
		return
	}

	responder, err := h.services.Responders.SetAvailability(c.Request.Context(), c.Param("id"), service.AvailabilityInput{
		Status:                 models.AvailabilityStatus(req.Status),
		NextAvailable:          req.NextAvailable,
		MaxConcurrentIncidents: req.MaxConcurrentIncidents,
	})
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, responder)
}

// recordFeedback godoc
// @Summary Записать отзыв о реагировании
// @Tags responders
// @Accept  json
// @Produce  json
// @Param   id path string true "ID респондера"
// @Param   feedback body FeedbackRequest true "Отзыв"
// @Success 200 {object} models.Responder
// @Security ApiKeyAuth
// @Router /responders/{id}/feedback [post]
func (h *Handler) recordFeedback(c *gin.Context) {
	log := h.logger.WithField("method", "recordFeedback")
	var req FeedbackRequest
	if !h.bind(c, log, &req) {
		return
	}

	responder, err := h.services.Responders.RecordFeedback(c.Request.Context(), c.Param("id"), req.IncidentID, req.Feedback, req.Rating)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, responder)
}
