package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/civic_response_system/internal/apperr"
	"github.com/shenikar/civic_response_system/internal/config"
	"github.com/shenikar/civic_response_system/internal/models"
	"github.com/shenikar/civic_response_system/internal/notify"
	"github.com/shenikar/civic_response_system/internal/privacy"
	"github.com/shenikar/civic_response_system/internal/reconcile"
	"github.com/shenikar/civic_response_system/internal/repository/memstore"
	"github.com/shenikar/civic_response_system/internal/service"
	"github.com/shenikar/civic_response_system/internal/service/mocks"
)

const testAPIKey = "test-api-key"

// fakeWatcher запоминает подписки вместо обращения к хранилищу
type fakeWatcher struct {
	mu      sync.Mutex
	watched []string
	paused  int
	err     error
	status  []reconcile.WatchStatus
}

func (w *fakeWatcher) WatchIncident(_ context.Context, id string) error {
	return w.watch(reconcile.IncidentKey(id))
}

func (w *fakeWatcher) WatchRecipient(_ context.Context, id string) error {
	return w.watch(reconcile.RecipientKey(id))
}

func (w *fakeWatcher) watch(key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.watched = append(w.watched, key)
	return nil
}

func (w *fakeWatcher) Release(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx := slices.Index(w.watched, key)
	if idx < 0 {
		return false
	}
	w.watched = slices.Delete(w.watched, idx, idx+1)
	return true
}

func (w *fakeWatcher) Status() []reconcile.WatchStatus { return w.status }
func (w *fakeWatcher) Paused() int                     { return w.paused }

// newServices собирает настоящие сервисы поверх хранилища в памяти
func newServices(t *testing.T) (Services, *logrus.Logger) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard) // Отключаем вывод логов в тестах

	backend := memstore.New()
	metrics := service.NewMetrics(nil)
	encoder := privacy.NewGridEncoder(privacy.DefaultCellDegrees)

	responders := service.NewResponderDirectory(backend, encoder, logger, metrics)
	inbox := service.NewAlertInbox(backend, notify.Noop{}, time.Second, logger, metrics)
	dispatcher := service.NewDispatcher(backend, responders, inbox, logger, metrics)
	incidents := service.NewIncidentStore(backend, encoder, responders, dispatcher, logger, metrics)
	t.Cleanup(inbox.Wait)

	return Services{
		Incidents:  incidents,
		Responders: responders,
		Inbox:      inbox,
		Messages:   service.NewMessagingChannel(backend, logger, metrics),
		Workspace:  service.NewWorkspace(backend, incidents, responders, logger, metrics),
		Watcher:    &fakeWatcher{},
	}, logger
}

func newRouter(services Services, logger *logrus.Logger) *gin.Engine {
	cfg := &config.Config{APIKeys: []string{testAPIKey}}
	handler := NewHandler(services, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router
}

// newTestHandler создает роутер с мокированным сервисом инцидентов
func newTestHandler(t *testing.T) (*mocks.MockIncidentService, *fakeWatcher, *gin.Engine) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockIncidentService(ctrl)

	services, logger := newServices(t)
	services.Incidents = mockService
	watcher := services.Watcher.(*fakeWatcher)
	return mockService, watcher, newRouter(services, logger)
}

// newLiveHandler создает роутер поверх настоящих сервисов
func newLiveHandler(t *testing.T) (Services, *gin.Engine) {
	services, logger := newServices(t)
	return services, newRouter(services, logger)
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func authHeaders(userID string) map[string]string {
	headers := map[string]string{"X-API-Key": testAPIKey}
	if userID != "" {
		headers[UserIDHeader] = userID
	}
	return headers
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func sampleIncident() *models.Incident {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.Incident{
		ID:          "inc-1",
		Title:       "Flooded underpass",
		Description: "Water rising",
		Type:        models.IncidentType{Name: "flood", RequiredSkills: []string{"rescue"}},
		Severity:    models.SeverityHigh,
		Status:      models.StatusReported,
		Location: &models.Location{
			Region:        "north",
			GridReference: "G0.0100:N5575:E3761",
		},
		ReporterID:       "user-1",
		RespondersNeeded: 2,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestCreateIncident_Success(t *testing.T) {
	// Подготовка
	mockService, _, router := newTestHandler(t)
	lat, lon := 55.751, 37.618
	reqBody := CreateIncidentRequest{
		Title:            "Flooded underpass",
		Description:      "Water rising",
		Type:             "flood",
		RequiredSkills:   []string{"rescue"},
		Severity:         "high",
		Region:           "north",
		Latitude:         &lat,
		Longitude:        &lon,
		RespondersNeeded: 2,
	}

	// Ожидания
	mockService.EXPECT().
		CreateIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input service.CreateIncidentInput) (*models.Incident, error) {
			assert.Equal(t, "user-1", input.ReporterID)
			assert.Equal(t, models.SeverityHigh, input.Severity)
			assert.Equal(t, "flood", input.TypeName)
			require.NotNil(t, input.Latitude)
			assert.InDelta(t, lat, *input.Latitude, 1e-9)
			return sampleIncident(), nil
		})

	// Действие
	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, reqBody), authHeaders("user-1"))

	// Проверки
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeBody[IncidentResponse](t, w)
	assert.Equal(t, "inc-1", resp.ID)
	assert.Equal(t, "reported", resp.Status)
	require.NotNil(t, resp.Location)
	assert.Equal(t, "G0.0100:N5575:E3761", resp.Location.GridReference)
	assert.Equal(t, []string{}, resp.RespondersAssigned)
	assert.NotContains(t, w.Body.String(), "latitude")
}

func TestCreateIncident_InvalidJSON(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().CreateIncident(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", bytes.NewBufferString(`{"title": "test"`), authHeaders(""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestCreateIncident_ValidationError(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	reqBody := CreateIncidentRequest{ // Отсутствует Title
		Description: "Water rising",
		Region:      "north",
	}

	mockService.EXPECT().CreateIncident(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, reqBody), authHeaders(""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Title' failed on the 'required' tag")
}

func TestCreateIncident_UnknownSeverity(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	reqBody := CreateIncidentRequest{
		Title:       "Flooded underpass",
		Description: "Water rising",
		Region:      "north",
		Severity:    "catastrophic",
	}

	mockService.EXPECT().CreateIncident(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, reqBody), authHeaders(""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "'oneof' tag")
}

func TestGetIncident_ErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"validation", apperr.Validation("incidents.Get", "bad id"), http.StatusBadRequest, "bad id"},
		{"not found", apperr.NotFound("incidents.Get", "incident", "inc-404"), http.StatusNotFound, "inc-404"},
		{"store", apperr.Store("incidents.Get", errors.New("connection refused")), http.StatusBadGateway, "store unavailable"},
		{"subscription", apperr.Subscription("incident:inc-1", errors.New("dropped")), http.StatusServiceUnavailable, "live updates unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockService, _, router := newTestHandler(t)
			mockService.EXPECT().GetIncident(gomock.Any(), "inc-404").Return(nil, tc.err)

			w := makeRequest(router, http.MethodGet, "/api/v1/incidents/inc-404", nil, authHeaders(""))

			assert.Equal(t, tc.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantBody)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestGetIncident_Success(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	incident := sampleIncident()
	incident.Updates = []models.IncidentUpdate{{ID: "u1", IncidentID: "inc-1", Message: "Crew dispatched", Type: models.UpdateInfo}}
	mockService.EXPECT().GetIncident(gomock.Any(), "inc-1").Return(incident, nil)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/inc-1", nil, authHeaders(""))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[IncidentResponse](t, w)
	require.Len(t, resp.Updates, 1)
	assert.Equal(t, "Crew dispatched", resp.Updates[0].Message)
	assert.Equal(t, []string{"rescue"}, resp.RequiredSkills)
}

func TestListIncidents_PassesFilter(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	mockService.EXPECT().
		ListIncidents(gomock.Any(), service.IncidentFilter{
			Status:      models.StatusResponding,
			Severity:    models.SeverityCritical,
			Region:      "north",
			ResponderID: "r-1",
		}).
		Return([]*models.Incident{sampleIncident()}, nil)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents?status=responding&severity=critical&region=north&responder_id=r-1", nil, authHeaders(""))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[[]IncidentResponse](t, w)
	assert.Len(t, resp, 1)
}

func TestUpdateIncident_ConvertsPatch(t *testing.T) {
	// Подготовка
	mockService, _, router := newTestHandler(t)
	body := `{"severity":"critical","status":"acknowledged","tags":["night"]}`

	// Ожидания
	mockService.EXPECT().
		UpdateIncident(gomock.Any(), "inc-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, patch service.IncidentPatch) (*models.Incident, error) {
			require.NotNil(t, patch.Severity)
			assert.Equal(t, models.SeverityCritical, *patch.Severity)
			require.NotNil(t, patch.Status)
			assert.Equal(t, models.StatusAcknowledged, *patch.Status)
			require.NotNil(t, patch.Tags)
			assert.Equal(t, []string{"night"}, *patch.Tags)
			assert.Nil(t, patch.Title)
			assert.Equal(t, "dispatcher-1", patch.AuthorID)
			return sampleIncident(), nil
		})

	// Действие
	w := makeRequest(router, http.MethodPatch, "/api/v1/incidents/inc-1", bytes.NewBufferString(body), authHeaders("dispatcher-1"))

	// Проверки
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateIncident_UnknownStatus(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	mockService.EXPECT().UpdateIncident(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPatch, "/api/v1/incidents/inc-1", bytes.NewBufferString(`{"status":"closed"}`), authHeaders(""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusTransitions(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	resolved := sampleIncident()
	resolved.Status = models.StatusResolved

	gomock.InOrder(
		mockService.EXPECT().AcknowledgeIncident(gomock.Any(), "inc-1", "op-1").Return(sampleIncident(), nil),
		mockService.EXPECT().BeginResponse(gomock.Any(), "inc-1", "op-1").Return(sampleIncident(), nil),
		mockService.EXPECT().ResolveIncident(gomock.Any(), "inc-1", "op-1").Return(resolved, nil),
	)

	for _, path := range []string{"acknowledge", "begin", "resolve"} {
		w := makeRequest(router, http.MethodPost, "/api/v1/incidents/inc-1/"+path, nil, authHeaders("op-1"))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestStatusTransition_BackwardRejected(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	mockService.EXPECT().
		AcknowledgeIncident(gomock.Any(), "inc-1", "").
		Return(nil, apperr.Validation("incidents.UpdateIncident", "cannot move incident from resolved to acknowledged"))

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents/inc-1/acknowledge", nil, authHeaders(""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "resolved to acknowledged")
}

func TestAssignResponder(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	assigned := sampleIncident()
	assigned.RespondersAssigned = []string{"r-1"}
	mockService.EXPECT().AssignResponder(gomock.Any(), "inc-1", "r-1", "dispatcher-1").Return(assigned, nil)

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents/inc-1/assignments",
		jsonBody(t, AssignResponderRequest{ResponderID: "r-1"}), authHeaders("dispatcher-1"))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[IncidentResponse](t, w)
	assert.Equal(t, []string{"r-1"}, resp.RespondersAssigned)

	w = makeRequest(router, http.MethodPost, "/api/v1/incidents/inc-1/assignments", bytes.NewBufferString(`{}`), authHeaders(""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAppendUpdate(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	mockService.EXPECT().
		AppendUpdate(gomock.Any(), "inc-1", service.UpdateInput{AuthorID: "op-1", Message: "Road closed", Type: models.UpdateInfo}).
		Return(&models.IncidentUpdate{ID: "u1", IncidentID: "inc-1", AuthorID: "op-1", Message: "Road closed", Type: models.UpdateInfo}, nil)

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents/inc-1/updates",
		jsonBody(t, AppendUpdateRequest{Message: "Road closed", Type: "info"}), authHeaders("op-1"))

	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeBody[IncidentUpdateResponse](t, w)
	assert.Equal(t, "u1", resp.ID)
}

func TestRequestBackup_WithoutBody(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	mockService.EXPECT().
		RequestBackup(gomock.Any(), "inc-1", "r-1", "").
		Return([]*models.Alert{{ID: "a1", IncidentID: "inc-1", RecipientID: "r-2", Type: models.AlertUrgentRequest, Priority: models.PriorityUrgent}}, nil)

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents/inc-1/backup", nil, authHeaders("r-1"))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[[]AlertResponse](t, w)
	require.Len(t, resp, 1)
	assert.Equal(t, "urgent", resp[0].Priority)
}

func TestWatchIncident(t *testing.T) {
	// Подготовка
	mockService, watcher, router := newTestHandler(t)
	mockService.EXPECT().GetIncident(gomock.Any(), "inc-1").Return(sampleIncident(), nil)

	// Действие
	w := makeRequest(router, http.MethodPost, "/api/v1/incidents/inc-1/watch", nil, authHeaders(""))

	// Проверки
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"incident:inc-1"}, watcher.watched)

	w = makeRequest(router, http.MethodDelete, "/api/v1/incidents/inc-1/watch", nil, authHeaders(""))
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = makeRequest(router, http.MethodDelete, "/api/v1/incidents/inc-1/watch", nil, authHeaders(""))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWatchIncident_SubscriptionFailure(t *testing.T) {
	mockService, watcher, router := newTestHandler(t)
	watcher.err = apperr.Subscription("incident:inc-1", errors.New("redis down"))
	mockService.EXPECT().GetIncident(gomock.Any(), "inc-1").Return(sampleIncident(), nil)

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents/inc-1/watch", nil, authHeaders(""))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "live updates unavailable")
}

func TestHealthCheck(t *testing.T) {
	_, watcher, router := newTestHandler(t)

	w := makeRequest(router, http.MethodGet, "/api/v1/system/health", nil) // Без API-ключа
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody[HealthResponse](t, w).Status)

	watcher.paused = 1
	watcher.status = []reconcile.WatchStatus{{Key: "all", Table: "alerts", State: reconcile.StatePaused, Error: "dropped"}}
	w = makeRequest(router, http.MethodGet, "/api/v1/system/health", nil)
	resp := decodeBody[HealthResponse](t, w)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, 1, resp.Paused)
	require.Len(t, resp.Watches, 1)
	assert.Equal(t, "dropped", resp.Watches[0].Error)
}

func TestAPIKeyAuthMiddleware(t *testing.T) {
	cases := []struct {
		name     string
		headers  map[string]string
		wantCode int
		wantBody string
	}{
		{"x-api-key", map[string]string{"X-API-Key": testAPIKey}, http.StatusOK, ""},
		{"bearer", map[string]string{"Authorization": "Bearer " + testAPIKey}, http.StatusOK, ""},
		{"missing", nil, http.StatusUnauthorized, "API key required"},
		{"invalid", map[string]string{"X-API-Key": "wrong"}, http.StatusUnauthorized, "Invalid API key"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, router := newLiveHandler(t)

			w := makeRequest(router, http.MethodGet, "/api/v1/stats", nil, tc.headers)

			assert.Equal(t, tc.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantBody)
		})
	}
}

func TestAlerts_EndToEnd(t *testing.T) {
	// Подготовка
	_, router := newLiveHandler(t)
	w := makeRequest(router, http.MethodPost, "/api/v1/responders",
		jsonBody(t, RegisterResponderRequest{UserID: "u-ann", Name: "Ann", Skills: []string{"Rescue"}}), authHeaders(""))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	responder := decodeBody[models.Responder](t, w)
	assert.Equal(t, []string{"rescue"}, responder.Skills)

	// Действие
	w = makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, CreateIncidentRequest{
		Title:          "Flooded underpass",
		Description:    "Water rising",
		RequiredSkills: []string{"rescue"},
		Severity:       "critical",
		Region:         "north",
	}), authHeaders("reporter-1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Проверки
	w = makeRequest(router, http.MethodGet, "/api/v1/alerts?filter=urgent", nil, authHeaders("u-ann"))
	require.Equal(t, http.StatusOK, w.Code)
	alerts := decodeBody[[]AlertResponse](t, w)
	require.Len(t, alerts, 1)
	assert.Equal(t, "new_incident", alerts[0].Type)
	assert.Equal(t, "urgent", alerts[0].Priority)

	w = makeRequest(router, http.MethodGet, "/api/v1/alerts/unread-count", nil, authHeaders("u-ann"))
	count := decodeBody[UnreadCountResponse](t, w)
	assert.Equal(t, responder.ID, count.RecipientID)
	assert.Equal(t, 1, count.Unread)

	w = makeRequest(router, http.MethodPost, fmt.Sprintf("/api/v1/alerts/%s/acknowledge", alerts[0].ID), nil, authHeaders("u-ann"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeBody[AlertResponse](t, w).Acknowledged)

	w = makeRequest(router, http.MethodGet, "/api/v1/alerts/unread-count", nil, authHeaders("u-ann"))
	assert.Equal(t, 0, decodeBody[UnreadCountResponse](t, w).Unread)
}

func TestAcknowledgeAlert_OnlyRecipient(t *testing.T) {
	// Подготовка
	_, router := newLiveHandler(t)
	for _, req := range []RegisterResponderRequest{
		{UserID: "u-ann", Name: "Ann", Skills: []string{"rescue"}},
		{UserID: "u-bob", Name: "Bob", Skills: []string{"medic"}},
	} {
		w := makeRequest(router, http.MethodPost, "/api/v1/responders", jsonBody(t, req), authHeaders(""))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, CreateIncidentRequest{
		Title:          "Flooded underpass",
		Description:    "Water rising",
		RequiredSkills: []string{"rescue"},
		Severity:       "high",
		Region:         "north",
	}), authHeaders("reporter-1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = makeRequest(router, http.MethodGet, "/api/v1/alerts", nil, authHeaders("u-ann"))
	alerts := decodeBody[[]AlertResponse](t, w)
	require.Len(t, alerts, 1)
	path := fmt.Sprintf("/api/v1/alerts/%s/acknowledge", alerts[0].ID)

	// Действие
	missing := makeRequest(router, http.MethodPost, path, nil, authHeaders(""))
	stranger := makeRequest(router, http.MethodPost, path, nil, authHeaders("u-bob"))
	unknown := makeRequest(router, http.MethodPost, path, nil, authHeaders("u-nobody"))

	// Проверки
	assert.Equal(t, http.StatusBadRequest, missing.Code)
	assert.Equal(t, http.StatusNotFound, stranger.Code)
	assert.Equal(t, http.StatusNotFound, unknown.Code)
	w = makeRequest(router, http.MethodGet, "/api/v1/alerts/unread-count", nil, authHeaders("u-ann"))
	assert.Equal(t, 1, decodeBody[UnreadCountResponse](t, w).Unread)
}

func TestAlerts_RequestValidation(t *testing.T) {
	_, router := newLiveHandler(t)

	w := makeRequest(router, http.MethodGet, "/api/v1/alerts", nil, authHeaders(""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), UserIDHeader)

	w = makeRequest(router, http.MethodGet, "/api/v1/alerts", nil, authHeaders("u-nobody"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = makeRequest(router, http.MethodPost, "/api/v1/responders",
		jsonBody(t, RegisterResponderRequest{UserID: "u-ann", Name: "Ann"}), authHeaders(""))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = makeRequest(router, http.MethodGet, "/api/v1/alerts?filter=loud", nil, authHeaders("u-ann"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = makeRequest(router, http.MethodPost, "/api/v1/alerts/missing/acknowledge", nil, authHeaders("u-ann"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWatchAlerts(t *testing.T) {
	services, router := newLiveHandler(t)
	watcher := services.Watcher.(*fakeWatcher)
	responder, err := services.Responders.Register(context.Background(), service.RegisterResponderInput{UserID: "u-ann", Name: "Ann"})
	require.NoError(t, err)

	w := makeRequest(router, http.MethodPost, "/api/v1/alerts/watch", nil, authHeaders("u-nobody"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, watcher.watched)

	w = makeRequest(router, http.MethodPost, "/api/v1/alerts/watch", nil, authHeaders("u-ann"))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"recipient:" + responder.ID}, watcher.watched)

	w = makeRequest(router, http.MethodDelete, "/api/v1/alerts/watch", nil, authHeaders("u-ann"))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, watcher.watched)
}

func TestMessages_Visibility(t *testing.T) {
	// Подготовка
	_, router := newLiveHandler(t)
	send := SendMessageRequest{RecipientIDs: []string{"u2"}, Content: "ciphertext==", IncidentID: "inc-1"}

	// Действие
	w := makeRequest(router, http.MethodPost, "/api/v1/messages", jsonBody(t, send), authHeaders("u1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	msg := decodeBody[models.SecureMessage](t, w)

	// Проверки
	assert.Equal(t, "ciphertext==", msg.Content)
	for user, want := range map[string]int{"u1": 1, "u2": 1, "u3": 0} {
		w = makeRequest(router, http.MethodGet, "/api/v1/messages", nil, authHeaders(user))
		assert.Len(t, decodeBody[[]models.SecureMessage](t, w), want, user)
	}
	w = makeRequest(router, http.MethodGet, "/api/v1/messages?incident_id=other", nil, authHeaders("u2"))
	assert.Empty(t, decodeBody[[]models.SecureMessage](t, w))

	w = makeRequest(router, http.MethodPost, "/api/v1/messages/"+msg.ID+"/read", nil, authHeaders("u3"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = makeRequest(router, http.MethodPost, "/api/v1/messages/"+msg.ID+"/read", nil, authHeaders("u2"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[models.SecureMessage](t, w).ReadBy, 1)
}

func TestMessages_SendValidation(t *testing.T) {
	_, router := newLiveHandler(t)

	w := makeRequest(router, http.MethodPost, "/api/v1/messages",
		jsonBody(t, SendMessageRequest{RecipientIDs: []string{"u2"}, Content: "x"}), authHeaders(""))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = makeRequest(router, http.MethodPost, "/api/v1/messages",
		jsonBody(t, SendMessageRequest{Content: "x"}), authHeaders("u1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCoordination_Flow(t *testing.T) {
	// Подготовка
	services, router := newLiveHandler(t)
	incident, err := services.Incidents.CreateIncident(context.Background(), service.CreateIncidentInput{
		Title:       "Flooded underpass",
		Description: "Water rising",
		Region:      "north",
	})
	require.NoError(t, err)
	base := "/api/v1/incidents/" + incident.ID + "/coordination"

	// Действие
	w := makeRequest(router, http.MethodPost, base, jsonBody(t, CreateCoordinationRequest{
		CoordinatorID: "chief",
		InitialTeam:   &TeamRequest{Name: "Alpha", Lead: "r-1"},
	}), authHeaders("chief"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	coordination := decodeBody[models.ResponseCoordination](t, w)
	require.Len(t, coordination.Teams, 1)
	teamID := coordination.Teams[0].ID

	w = makeRequest(router, http.MethodPost, base+"/teams/"+teamID+"/tasks",
		jsonBody(t, TaskRequest{Title: "Pump water", Priority: "high"}), authHeaders("chief"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	task := decodeBody[models.Task](t, w)

	w = makeRequest(router, http.MethodPost, base+"/resources",
		jsonBody(t, ResourceRequest{Name: "Pump", Type: "equipment", Quantity: 2}), authHeaders("chief"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = makeRequest(router, http.MethodPut, base+"/teams/"+teamID+"/tasks/"+task.ID+"/status",
		jsonBody(t, TaskStatusRequest{Status: "completed"}), authHeaders("chief"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Проверки
	w = makeRequest(router, http.MethodGet, "/api/v1/stats", nil, authHeaders(""))
	require.Equal(t, http.StatusOK, w.Code)
	stats := decodeBody[StatsResponse](t, w)
	assert.Equal(t, 1, stats.ActiveIncidents)
	assert.Equal(t, 1, stats.ActiveCoordinations)
	assert.Equal(t, 1, stats.Teams)
	assert.Equal(t, 0, stats.OpenTasks)
	assert.Equal(t, 1, stats.AvailableResources)

	w = makeRequest(router, http.MethodPost, base, nil, authHeaders("chief"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = makeRequest(router, http.MethodGet, "/api/v1/incidents/missing/coordination", nil, authHeaders(""))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResponders_Endpoints(t *testing.T) {
	_, router := newLiveHandler(t)
	w := makeRequest(router, http.MethodPost, "/api/v1/responders",
		jsonBody(t, RegisterResponderRequest{UserID: "u-bob", Name: "Bob", Skills: []string{"medic"}}), authHeaders(""))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	responder := decodeBody[models.Responder](t, w)

	w = makeRequest(router, http.MethodPut, "/api/v1/responders/"+responder.ID+"/availability",
		jsonBody(t, AvailabilityRequest{Status: "offline"}), authHeaders(""))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = makeRequest(router, http.MethodGet, "/api/v1/responders?available=true", nil, authHeaders(""))
	assert.Empty(t, decodeBody[[]models.Responder](t, w))
	w = makeRequest(router, http.MethodGet, "/api/v1/responders", nil, authHeaders(""))
	assert.Len(t, decodeBody[[]models.Responder](t, w), 1)

	w = makeRequest(router, http.MethodGet, "/api/v1/responders/missing", nil, authHeaders(""))
	assert.Equal(t, http.StatusNotFound, w.Code)

	rating := 9
	w = makeRequest(router, http.MethodPost, "/api/v1/responders/"+responder.ID+"/feedback",
		jsonBody(t, FeedbackRequest{IncidentID: "inc-1", Rating: &rating}), authHeaders(""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
