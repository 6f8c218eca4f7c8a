package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/auth"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/httpmw"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/controller"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/dto"
)

type Handlers struct {
	controller *controller.Controller
	logger     *logger.Logger
}

func NewHandlers(ctrl *controller.Controller, log *logger.Logger) *Handlers {
	return &Handlers{
		controller: ctrl,
		logger:     log.WithFields(zap.String("component", "user-handlers")),
	}
}

// RegisterRoutes mounts the profile, preferences, device token, organization
// and locale routes on an authenticated /api group.
func RegisterRoutes(api gin.IRoutes, ctrl *controller.Controller, log *logger.Logger) {
	h := NewHandlers(ctrl, log)
	api.GET("/profile", h.httpGetProfile)
	api.PATCH("/profile", h.httpUpdateProfile)
	api.GET("/preferences", h.httpGetPreferences)
	api.PATCH("/preferences", h.httpUpdatePreferences)
	api.GET("/device-tokens", h.httpListDeviceTokens)
	api.POST("/device-tokens", h.httpRegisterDeviceToken)
	api.DELETE("/device-tokens", h.httpRemoveDeviceToken)
	api.GET("/organization", h.httpGetOrganization)
	api.PUT("/organization", h.httpUpsertOrganization)
	api.POST("/i18n/locale", h.httpSetLocale)
}

func (h *Handlers) httpGetProfile(c *gin.Context) {
	resp, err := h.controller.GetProfile(c.Request.Context(), auth.UserID(c))
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "get profile")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) httpUpdateProfile(c *gin.Context) {
	var body dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		httpmw.BadRequest(c, "invalid payload")
		return
	}
	resp, err := h.controller.UpdateProfile(c.Request.Context(), auth.UserID(c), body)
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "update profile")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) httpSetLocale(c *gin.Context) {
	var body dto.SetLocaleRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Locale == "" {
		httpmw.BadRequest(c, "locale is required")
		return
	}
	resp, err := h.controller.SetLocale(c.Request.Context(), auth.UserID(c), body)
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "set locale")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) httpGetPreferences(c *gin.Context) {
	resp, err := h.controller.GetPreferences(c.Request.Context(), auth.UserID(c))
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "get preferences")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) httpUpdatePreferences(c *gin.Context) {
	var body dto.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		httpmw.BadRequest(c, "invalid payload")
		return
	}
	resp, err := h.controller.UpdatePreferences(c.Request.Context(), auth.UserID(c), body)
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "update preferences")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) httpListDeviceTokens(c *gin.Context) {
	resp, err := h.controller.ListDeviceTokens(c.Request.Context(), auth.UserID(c))
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "list device tokens")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) httpRegisterDeviceToken(c *gin.Context) {
	var body dto.RegisterDeviceTokenRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		httpmw.BadRequest(c, "invalid payload")
		return
	}
	if body.Token == "" {
		httpmw.BadRequest(c, "token is required")
		return
	}
	resp, err := h.controller.RegisterDeviceToken(c.Request.Context(), auth.UserID(c), body)
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "register device token")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) httpRemoveDeviceToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		httpmw.BadRequest(c, "token is required")
		return
	}
	if err := h.controller.RemoveDeviceToken(c.Request.Context(), auth.UserID(c), token); err != nil {
		httpmw.RespondError(c, h.logger, err, "remove device token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) httpGetOrganization(c *gin.Context) {
	resp, err := h.controller.GetOrganization(c.Request.Context(), auth.UserID(c))
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "get organization")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) httpUpsertOrganization(c *gin.Context) {
	var body dto.UpsertOrganizationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		httpmw.BadRequest(c, "invalid payload")
		return
	}
	resp, err := h.controller.UpsertOrganization(c.Request.Context(), auth.UserID(c), body)
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "save organization")
		return
	}
	c.JSON(http.StatusOK, resp)
}
