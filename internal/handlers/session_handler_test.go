package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsix-platform/session-service/internal/events"
	"github.com/tsix-platform/session-service/internal/models"
	"github.com/tsix-platform/session-service/internal/recovery"
	"github.com/tsix-platform/session-service/internal/services"
	"github.com/tsix-platform/session-service/internal/utils"
)

type fixedGateway struct {
	response *models.SubmitTestResponse
}

func (g *fixedGateway) SubmitTest(ctx context.Context, req *models.SubmitTestRequest) (*models.SubmitTestResponse, error) {
	return g.response, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := services.NewSessionService(
		recovery.NewMemoryStore(),
		&fixedGateway{response: &models.SubmitTestResponse{
			TestSessionID:      42,
			TotalScoreFraction: "2/8",
			ScorePercentage:    25,
			TotalQuestions:     2,
			AnsweredQuestions:  1,
			Status:             "COMPLETED",
		}},
		events.NewMockEventPublisher(),
		utils.NewValidator(),
		utils.NewDevelopmentLogger(),
		services.SessionServiceConfig{TickInterval: time.Hour},
	)
	t.Cleanup(svc.Close)

	router := gin.New()
	NewHandlerManager(svc, utils.NewDevelopmentLogger()).SetupRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func startBody(sessionID string) map[string]interface{} {
	return map[string]interface{}{
		"sessionId":       sessionID,
		"durationMinutes": 60,
		"questions": []map[string]interface{}{
			{
				"id":           1,
				"label":        "Pick one",
				"questionType": "MULTIPLE_CHOICE",
				"points":       2,
				"answers": []map[string]interface{}{
					{"id": 10, "label": "A"},
					{"id": 11, "label": "B"},
				},
			},
			{
				"id":           2,
				"label":        "Explain",
				"questionType": "OPEN_QUESTION",
				"points":       5,
			},
		},
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions/start", startBody("sess-1"))
	require.Equal(t, http.StatusCreated, w.Code)

	var state models.SessionState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "sess-1", state.SessionID)
	assert.Equal(t, models.PhaseInProgress, state.Phase)
	assert.Equal(t, 2, state.TotalQuestions)

	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/sess-1/answer", map[string]interface{}{
		"questionId":       1,
		"selectedAnswerId": 11,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/sess-1/navigate", map[string]interface{}{"index": 1})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/sessions/sess-1/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 1, state.CurrentIndex)
	assert.Equal(t, 1, state.AnsweredCount)

	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/sess-1/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.SubmitTestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "COMPLETED", result.Status)

	// Second submit conflicts.
	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/sess-1/submit", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/sessions/sess-1/report", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "session-report-sess-1.xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/sess-1/reset", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionErrorMapping(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/sessions/missing/state", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/start", map[string]interface{}{"durationMinutes": 60})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/start", startBody("sess-dup"))
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/start", startBody("sess-dup"))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/sessions/sess-dup/report", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
