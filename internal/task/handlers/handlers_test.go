package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/auth"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/persistence/testdb"
	projectcontroller "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/controller"
	projecthandlers "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/handlers"
	projectservice "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/service"
	projectstore "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/store"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/controller"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/dto"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/service"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/store"
)

func newRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	pool := testdb.New(t)
	testdb.SeedUser(t, pool, "dev-user")
	log := logger.NewNop()

	projects := projectservice.NewService(projectstore.NewSQLRepository(pool), nil, nil, log)
	tasks := service.NewService(store.NewSQLRepository(pool), projects, nil, log)

	r := gin.New()
	api := r.Group("/api", auth.NewMiddleware(nil, nil, "bt_session", "dev-user", log).RequireSession())
	projecthandlers.RegisterRoutes(api, projectcontroller.NewController(projects), log)
	RegisterRoutes(api, controller.NewController(tasks), log)

	w := do(t, r, http.MethodPost, "/api/projects", `{"name":"Harbor Office"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Project struct {
			ID string `json:"id"`
		} `json:"project"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	return r, created.Project.ID
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTaskRoutes(t *testing.T) {
	r, projectID := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/projects/"+projectID+"/tasks",
		`{"title":"Order rebar","assigneeId":"dev-user","startDate":"2024-05-01","dueDate":"2024-05-03","estimatedHours":6}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "todo", created.Task.Status)
	id := created.Task.ID

	w = do(t, r, http.MethodPatch, "/api/tasks/"+id, `{"status":"in_progress","dueDate":""}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "in_progress", updated.Task.Status)
	assert.Nil(t, updated.Task.DueDate)

	w = do(t, r, http.MethodGet, "/api/projects/"+projectID+"/tasks?assignee=me", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.TasksResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	w = do(t, r, http.MethodGet, "/api/tasks/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	var summary dto.SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.ByStatus["in_progress"])

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodDelete, "/api/tasks/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/tasks/"+id, "").Code)
}

func TestTaskErrors(t *testing.T) {
	r, projectID := newRouter(t)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPost, "/api/projects/nope/tasks", `{"title":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/projects/"+projectID+"/tasks", `{"title":""}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		do(t, r, http.MethodPost, "/api/projects/"+projectID+"/tasks", `{"title":"x","startDate":"2024-05-02","dueDate":"2024-05-01"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/projects/"+projectID+"/tasks?status=later", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPatch, "/api/tasks/missing", `{"title":"y"}`).Code)
}
