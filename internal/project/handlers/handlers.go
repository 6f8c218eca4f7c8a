package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/auth"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/httpmw"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/controller"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/dto"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/models"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/service"
	v1 "github.com/samatacc/buildtrack-pro-emer-test-sub004/pkg/api/v1"
)

type Handlers struct {
	controller *controller.Controller
	logger     *logger.Logger
}

func NewHandlers(ctrl *controller.Controller, log *logger.Logger) *Handlers {
	return &Handlers{
		controller: ctrl,
		logger:     log.WithFields(zap.String("component", "project-handlers")),
	}
}

func RegisterRoutes(api gin.IRoutes, ctrl *controller.Controller, log *logger.Logger) {
	h := NewHandlers(ctrl, log)
	api.GET("/projects", h.httpListProjects)
	api.POST("/projects", h.httpCreateProject)
	api.POST("/projects/suggest-type", h.httpSuggestType)
	api.GET("/projects/:id", h.httpGetProject)
	api.PATCH("/projects/:id", h.httpUpdateProject)
	api.DELETE("/projects/:id", h.httpDeleteProject)
}

func (h *Handlers) httpListProjects(c *gin.Context) {
	req := &service.ListProjectsRequest{
		Status: models.Status(c.Query("status")),
		Query:  c.Query("q"),
	}
	var ok bool
	if req.Limit, ok = intQuery(c, "limit"); !ok {
		return
	}
	if req.Offset, ok = intQuery(c, "offset"); !ok {
		return
	}
	resp, err := h.controller.ListProjects(c.Request.Context(), auth.UserID(c), req)
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "list projects")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) httpCreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpmw.BadRequest(c, "invalid payload")
		return
	}
	resp, err := h.controller.CreateProject(c.Request.Context(), auth.UserID(c), req)
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "create project")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handlers) httpGetProject(c *gin.Context) {
	resp, err := h.controller.GetProject(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "get project")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) httpUpdateProject(c *gin.Context) {
	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpmw.BadRequest(c, "invalid payload")
		return
	}
	resp, err := h.controller.UpdateProject(c.Request.Context(), auth.UserID(c), c.Param("id"), req)
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "update project")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) httpDeleteProject(c *gin.Context) {
	if err := h.controller.DeleteProject(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		httpmw.RespondError(c, h.logger, err, "delete project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) httpSuggestType(c *gin.Context) {
	var req v1.SuggestProjectTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpmw.BadRequest(c, "invalid payload")
		return
	}
	if req.Name == "" && req.Description == "" {
		httpmw.BadRequest(c, "name or description is required")
		return
	}
	c.JSON(http.StatusOK, h.controller.SuggestType(req))
}

func intQuery(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		httpmw.BadRequest(c, key+" must be an integer")
		return 0, false
	}
	return n, true
}
