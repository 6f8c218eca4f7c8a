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
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/controller"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/dto"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/service"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/store"
	v1 "github.com/samatacc/buildtrack-pro-emer-test-sub004/pkg/api/v1"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	pool := testdb.New(t)
	testdb.SeedUser(t, pool, "dev-user")
	log := logger.NewNop()
	svc := service.NewService(store.NewSQLRepository(pool), nil, nil, log)

	r := gin.New()
	api := r.Group("/api", auth.NewMiddleware(nil, nil, "bt_session", "dev-user", log).RequireSession())
	RegisterRoutes(api, controller.NewController(svc), log)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProjectLifecycle(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/projects",
		`{"name":"Harbor Office","projectType":"commercial","priority":"high","startDate":"2024-03-01","endDate":"2024-09-30","budget":1200000}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.ProjectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "planning", created.Project.Status)
	require.NotNil(t, created.Project.EndDate)
	assert.Equal(t, "2024-09-30", *created.Project.EndDate)
	id := created.Project.ID

	w = do(t, r, http.MethodPatch, "/api/projects/"+id, `{"status":"active","endDate":""}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated dto.ProjectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "active", updated.Project.Status)
	assert.Nil(t, updated.Project.EndDate)

	w = do(t, r, http.MethodGet, "/api/projects?status=active&q=harbor", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.ProjectsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodDelete, "/api/projects/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/projects/"+id, "").Code)
}

func TestProjectValidationErrors(t *testing.T) {
	r := newRouter(t)

	tests := map[string]string{
		"blank name":       `{"name":" "}`,
		"bad status":       `{"name":"x","status":"paused"}`,
		"bad date":         `{"name":"x","startDate":"March 1"}`,
		"end before start": `{"name":"x","startDate":"2024-03-02","endDate":"2024-03-01"}`,
		"malformed":        `{"name":`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/projects", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/projects?limit=ten", "").Code)
}

func TestSuggestType(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/projects/suggest-type", `{"name":"Bathroom Renovation","description":"Townhouse on Elm"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp v1.SuggestProjectTypeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "renovation", resp.ProjectType)
	assert.InDelta(t, 1.0/3, resp.Confidence, 1e-9)
	assert.Equal(t, []string{"renovation"}, resp.MatchedKeywords)

	w = do(t, r, http.MethodPost, "/api/projects/suggest-type", `{"name":"Phase 2"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"projectType":"","confidence":0,"matchedKeywords":[]}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/projects/suggest-type", `{}`).Code)
}
