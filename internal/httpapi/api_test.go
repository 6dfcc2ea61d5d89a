package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kyri56xcaesar/teamops/internal/app"
	"kyri56xcaesar/teamops/internal/appstate"
	"kyri56xcaesar/teamops/internal/gateway"
)

func setupTestAPI(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config = Config{AuthEnabled: false}
	engine = gin.New()
	setRoutes()

	controller = app.New(gateway.NewMemory(),
		app.WithSessionStore(&app.MemorySessionStore{}),
		app.WithRenderer(app.RendererFunc(func(_ *appstate.Store) {
			stateVersion.Add(1)
		})),
	)
	require.NoError(t, controller.Load(context.Background()))
}

func doJSON(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	setupTestAPI(t)

	w := doJSON(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProjectLifecycleOverHTTP(t *testing.T) {
	setupTestAPI(t)

	w := doJSON(http.MethodPost, "/api/v1/projects", gin.H{"name": "rollout"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created appstate.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, appstate.StatusToDo, created.Status)
	require.NotEmpty(t, created.ID)

	created.Status = appstate.StatusDone
	w = doJSON(http.MethodPut, "/api/v1/projects/"+created.ID, created)
	require.Equal(t, http.StatusOK, w.Code)

	var updated appstate.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.NotNil(t, updated.CompletionDate)

	w = doJSON(http.MethodGet, "/api/v1/activity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var acts []appstate.Activity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &acts))
	require.Len(t, acts, 1)
	assert.Equal(t, appstate.ActivityProjectCompleted, acts[0].Type)

	w = doJSON(http.MethodDelete, "/api/v1/projects/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(http.MethodPut, "/api/v1/projects/"+created.ID, created)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAttendanceOverHTTP(t *testing.T) {
	setupTestAPI(t)

	members := controller.Members()
	require.NotEmpty(t, members)
	memberID := members[0].ID

	w := doJSON(http.MethodPut, "/api/v1/attendance", gin.H{
		"memberId": memberID,
		"date":     "2025-03-10",
		"status":   appstate.AttendanceLeave,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var rec appstate.AttendanceRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, appstate.AttendanceID(memberID, "2025-03-10"), rec.ID)

	// missing date fails binding
	w = doJSON(http.MethodPut, "/api/v1/attendance", gin.H{"memberId": memberID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportOverHTTP(t *testing.T) {
	setupTestAPI(t)

	w := doJSON(http.MethodGet, "/api/v1/export/team", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "team.csv")
	assert.Contains(t, w.Body.String(), "id,name,email")

	w = doJSON(http.MethodGet, "/api/v1/export/nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStateVersionAdvances(t *testing.T) {
	setupTestAPI(t)

	w := doJSON(http.MethodGet, "/api/v1/state/version", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var before struct {
		Version int64 `json:"version"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &before))

	doJSON(http.MethodPost, "/api/v1/projects", gin.H{"name": "bump"})

	w = doJSON(http.MethodGet, "/api/v1/state/version", nil)
	var after struct {
		Version int64 `json:"version"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
	assert.Greater(t, after.Version, before.Version)
}
