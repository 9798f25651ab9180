package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shenikar/civic_response_system/internal/models"
	"github.com/shenikar/civic_response_system/internal/service"
)

// createCoordination godoc
// @Summary Начать координацию реагирования
// @Tags coordination
// @Accept  json
// @Produce  json
// @Param   id path string true "ID инцидента"
// @Param   coordination body CreateCoordinationRequest false "Координатор и первая команда"
// @Success 201 {object} models.ResponseCoordination
// @Failure 400 {object} map[string]string "Координация уже существует"
// @Failure 404 {object} map[string]string "Инцидент не найден"
// @Security ApiKeyAuth
// @Router /incidents/{id}/coordination [post]
func (h *Handler) createCoordination(c *gin.Context) {
	log := h.logger.WithField("method", "createCoordination")
	var req CreateCoordinationRequest
	if c.Request.ContentLength > 0 && !h.bind(c, log, &req) {
		return
	}

	input := service.CreateCoordinationInput{
		CoordinatorID: req.CoordinatorID,
		PerformedBy:   actor(c),
	}
	if req.InitialTeam != nil {
		if err := h.validate.Struct(req.InitialTeam); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		team := DTOToTeamInput(*req.InitialTeam)
		input.InitialTeam = &team
	}

	coordination, err := h.services.Workspace.CreateCoordination(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, coordination)
}

// getCoordination godoc
// @Summary Получить координацию инцидента
// @Tags coordination
// @Produce  json
// @Param   id path string true "ID инцидента"
// @Success 200 {object} models.ResponseCoordination
// @Failure 404 {object} map[string]string "Координация не найдена"
// @Security ApiKeyAuth
// @Router /incidents/{id}/coordination [get]
func (h *Handler) getCoordination(c *gin.Context) {
	coordination, err := h.services.Workspace.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, h.logger.WithField("method", "getCoordination"), err)
		return
	}
	c.JSON(http.StatusOK, coordination)
}

// addTeam godoc
// @Summary Добавить команду
// @Tags coordination
// @Accept  json
// @Produce  json
// @Param   id path string true "ID инцидента"
// @Param   team body TeamRequest true "Команда"
// @Success 201 {object} models.ResponseTeam
// @Security ApiKeyAuth
// @Router /incidents/{id}/coordination/teams [post]
func (h *Handler) addTeam(c *gin.Context) {
	log := h.logger.WithField("method", "addTeam")
	var req TeamRequest
	if !h.bind(c, log, &req) {
		return
	}

	team, err := h.services.Workspace.AddTeam(c.Request.Context(), c.Param("id"), DTOToTeamInput(req), actor(c))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, team)
}

// addTask godoc
// @Summary Добавить задачу команде
// @Tags coordination
// @Accept  json
// @Produce  json
// @Param   id path string true "ID инцидента"
// @Param   teamId path string true "ID команды"
// @Param   task body TaskRequest true "Задача"
// @Success 201 {object} models.Task
// @Security ApiKeyAuth
// @Router /incidents/{id}/coordination/teams/{teamId}/tasks [post]
func (h *Handler) addTask(c *gin.Context) {
	log := h.logger.WithField("method", "addTask")
	var req TaskRequest
	if !h.bind(c, log, &req) {
		return
	}

	task, err := h.services.Workspace.AddTask(c.Request.Context(), c.Param("id"), c.Param("teamId"), service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Priority:    models.TaskPriority(req.Priority),
		DueBy:       req.DueBy,
	}, actor(c))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// updateTaskStatus godoc
// @Summary Изменить статус задачи
// @Tags coordination
// @Accept  json
// @Produce  json
// @Param   id path string true "ID инцидента"
// @Param   teamId path string true "ID команды"
// @Param   taskId path string true "ID задачи"
// @Param   status body TaskStatusRequest true "Статус"
// @Success 200 {object} models.Task
// @Security ApiKeyAuth
// @Router /incidents/{id}/coordination/teams/{teamId}/tasks/{taskId}/status [put]
func (h *Handler) updateTaskStatus(c *gin.Context) {
	log := h.logger.WithField("method", "updateTaskStatus")
	var req TaskStatusRequest
	if !h.bind(c, log, &req) {
		return
	}

	task, err := h.services.Workspace.UpdateTaskStatus(c.Request.Context(), c.Param("id"), c.Param("teamId"), c.Param("taskId"),
		models.TaskStatus(req.Status), actor(c))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// addResource godoc
// @Summary Добавить ресурс
// @Tags coordination
// @Accept  json
// @Produce  json
// @Param   id path string true "ID инцидента"
// @Param   resource body ResourceRequest true "Ресурс"
// @Success 201 {object} models.Resource
// @Security ApiKeyAuth
// @Router /incidents/{id}/coordination/resources [post]
func (h *Handler) addResource(c *gin.Context) {
	log := h.logger.WithField("method", "addResource")
	var req ResourceRequest
	if !h.bind(c, log, &req) {
		return
	}

	resource, err := h.services.Workspace.AddResource(c.Request.Context(), c.Param("id"), service.ResourceInput{
		Name:     req.Name,
		Type:     req.Type,
		Quantity: req.Quantity,
		Location: req.Location,
	}, actor(c))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, resource)
}

// allocateResource godoc
// @Summary Закрепить ресурс за командой
// @Tags coordination
// @Accept  json
// @Produce  json
// @Param   id path string true "ID инцидента"
// @Param   resourceId path string true "ID ресурса"
// @Param   allocation body AllocateRequest true "Команда"
// @Success 200 {object} models.Resource
// @Security ApiKeyAuth
// @Router /incidents/{id}/coordination/resources/{resourceId}/allocate [post]
func (h *Handler) allocateResource(c *gin.Context) {
	log := h.logger.WithField("method", "allocateResource")
	var req AllocateRequest
	if !h.bind(c, log, &req) {
		return
	}

	resource, err := h.services.Workspace.AllocateResource(c.Request.Context(), c.Param("id"), c.Param("resourceId"), req.TeamID, actor(c))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, resource)
}

// logEvent godoc
// @Summary Добавить запись в хронологию
// @Tags coordination
// @Accept  json
// @Produce  json
// @Param   id path string true "ID инцидента"
// @Param   event body EventRequest true "Событие"
// @Success 201 {object} models.TimelineEvent
// @Security ApiKeyAuth
// @Router /incidents/{id}/coordination/events [post]
func (h *Handler) logEvent(c *gin.Context) {
	log := h.logger.WithField("method", "logEvent")
	var req EventRequest
	if !h.bind(c, log, &req) {
		return
	}

	event, err := h.services.Workspace.LogEvent(c.Request.Context(), c.Param("id"), service.EventInput{
		Type:        req.Type,
		Description: req.Description,
		PerformedBy: actor(c),
		Metadata:    req.Metadata,
	})
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// setCoordinationStatus godoc
// @Summary Изменить статус координации
// @Tags coordination
// @Accept  json
// @Produce  json
// @Param   id path string true "ID инцидента"
// @Param   status body CoordinationStatusRequest true "Статус"
// @Success 200 {object} models.ResponseCoordination
// @Security ApiKeyAuth
// @Router /incidents/{id}/coordination/status [put]
func (h *Handler) setCoordinationStatus(c *gin.Context) {
	log := h.logger.WithField("method", "setCoordinationStatus")
	var req CoordinationStatusRequest
	if !h.bind(c, log, &req) {
		return
	}

	coordination, err := h.services.Workspace.SetStatus(c.Request.Context(), c.Param("id"), models.CoordinationStatus(req.Status), actor(c))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, coordination)
}
