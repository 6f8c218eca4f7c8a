package handlers

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

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/auth"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/persistence/testdb"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/controller"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/dto"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/service"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/store"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	svc := service.NewService(store.NewSQLRepository(testdb.New(t)), nil, log)

	r := gin.New()
	api := r.Group("/api", auth.NewMiddleware(nil, svc, "bt_session", "dev-user", log).RequireSession())
	RegisterRoutes(api, controller.NewController(svc), log)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf).WithContext(context.Background())
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProfileRoutes(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got dto.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "dev-user", got.Profile.ID)

	w = do(t, r, http.MethodPatch, "/api/profile", map[string]string{"name": "Jordan", "jobTitle": "Estimator"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Jordan", got.Profile.Name)

	w = do(t, r, http.MethodPatch, "/api/profile", map[string]string{"timezone": "Nowhere/Land"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"validation_error"`)
}

func TestSetLocaleRoute(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/i18n/locale", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/i18n/locale", map[string]string{"locale": "fr-ca"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"locale":"fr-CA"}`, w.Body.String())
}

func TestDeviceTokenRoutes(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/device-tokens", map[string]string{"platform": "ios"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/device-tokens", map[string]string{"token": "abc", "platform": "android"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/device-tokens", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.DeviceTokensResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodDelete, "/api/device-tokens", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodDelete, "/api/device-tokens?token=abc", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/api/device-tokens?token=abc", nil).Code)
}

func TestOrganizationRoutes(t *testing.T) {
	r := newRouter(t)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/organization", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPut, "/api/organization", map[string]string{}).Code)

	w := do(t, r, http.MethodPut, "/api/organization", map[string]string{"name": "Acme"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/organization", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var org dto.OrganizationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &org))
	assert.Equal(t, "Acme", org.Organization.Name)
}

func TestPreferencesRoutes(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPatch, "/api/preferences", map[string]interface{}{
		"theme":         "dark",
		"favoriteTools": []map[string]interface{}{{"toolId": "takeoff", "label": "Takeoff"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/preferences", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var prefs dto.PreferencesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prefs))
	assert.Equal(t, "dark", prefs.Preferences.Theme)
	require.Len(t, prefs.Preferences.FavoriteTools, 1)
	assert.Equal(t, "takeoff", prefs.Preferences.FavoriteTools[0].ToolID)
}
