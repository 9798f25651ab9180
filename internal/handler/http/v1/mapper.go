package v1

import (
	"github.com/shenikar/civic_response_system/internal/models"
	"github.com/shenikar/civic_response_system/internal/service"
)

// DTOToCreateIncidentInput преобразует DTO создания во входные данные сервиса
func DTOToCreateIncidentInput(dto CreateIncidentRequest, reporterID string) service.CreateIncidentInput {
	return service.CreateIncidentInput{
		Title:            dto.Title,
		Description:      dto.Description,
		TypeName:         dto.Type,
		RequiredSkills:   dto.RequiredSkills,
		Severity:         models.Severity(dto.Severity),
		Region:           dto.Region,
		District:         dto.District,
		Latitude:         dto.Latitude,
		Longitude:        dto.Longitude,
		EncryptedExact:   dto.EncryptedLocation,
		ReporterID:       reporterID,
		RespondersNeeded: dto.RespondersNeeded,
		Tags:             dto.Tags,
	}
}

// DTOToIncidentPatch преобразует DTO обновления в частичное изменение
func DTOToIncidentPatch(dto UpdateIncidentRequest, authorID string) service.IncidentPatch {
	patch := service.IncidentPatch{
		Title:            dto.Title,
		Description:      dto.Description,
		TypeName:         dto.Type,
		RequiredSkills:   dto.RequiredSkills,
		District:         dto.District,
		RespondersNeeded: dto.RespondersNeeded,
		Tags:             dto.Tags,
		AuthorID:         authorID,
	}
	if dto.Severity != nil {
		severity := models.Severity(*dto.Severity)
		patch.Severity = &severity
	}
	if dto.Status != nil {
		status := models.IncidentStatus(*dto.Status)
		patch.Status = &status
	}
	return patch
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	resp := &IncidentResponse{
		ID:                 model.ID,
		Title:              model.Title,
		Description:        model.Description,
		Type:               model.Type.Name,
		RequiredSkills:     nonNil(model.Type.RequiredSkills),
		Severity:           string(model.Severity),
		Status:             string(model.Status),
		ReporterID:         model.ReporterID,
		RespondersNeeded:   model.RespondersNeeded,
		RespondersAssigned: nonNil(model.RespondersAssigned),
		Updates:            make([]IncidentUpdateResponse, len(model.Updates)),
		Tags:               nonNil(model.Tags),
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
		ResolvedAt:         model.ResolvedAt,
	}
	if model.Location != nil {
		resp.Location = &LocationResponse{
			Region:        model.Location.Region,
			District:      model.Location.District,
			GridReference: model.Location.GridReference,
		}
	}
	for i, u := range model.Updates {
		resp.Updates[i] = IncidentUpdateResponse{
			ID:        u.ID,
			AuthorID:  u.AuthorID,
			Message:   u.Message,
			Type:      string(u.Type),
			CreatedAt: u.CreatedAt,
		}
	}
	return resp
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(incidents []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(incidents))
	for i, model := range incidents {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

func ModelToAlertResponse(model *models.Alert) *AlertResponse {
	return &AlertResponse{
		ID:             model.ID,
		IncidentID:     model.IncidentID,
		RecipientID:    model.RecipientID,
		Type:           string(model.Type),
		Priority:       string(model.Priority),
		Message:        model.Message,
		ActionRequired: model.ActionRequired,
		Acknowledged:   model.Acknowledged(),
		AcknowledgedAt: model.AcknowledgedAt,
		CreatedAt:      model.CreatedAt,
	}
}

func ModelsToAlertResponses(alerts []*models.Alert) []*AlertResponse {
	responses := make([]*AlertResponse, len(alerts))
	for i, model := range alerts {
		responses[i] = ModelToAlertResponse(model)
	}
	return responses
}

func DTOToTeamInput(dto TeamRequest) service.TeamInput {
	return service.TeamInput{
		Name:           dto.Name,
		Lead:           dto.Lead,
		Members:        dto.Members,
		Specialization: dto.Specialization,
	}
}

func StatsToResponse(stats service.Stats) StatsResponse {
	return StatsResponse(stats)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
