package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/auth"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/httpmw"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/dashboard/service"
	v1 "github.com/samatacc/buildtrack-pro-emer-test-sub004/pkg/api/v1"
)

type Handlers struct {
	svc    *service.Service
	logger *logger.Logger
}

func RegisterRoutes(api gin.IRoutes, svc *service.Service, log *logger.Logger) {
	h := &Handlers{svc: svc, logger: log.WithFields(zap.String("component", "dashboard-handlers"))}
	api.GET("/dashboard", h.httpGetDashboard)
	api.POST("/dashboard", h.httpSaveDashboard)
	api.GET("/dashboards", h.httpListDashboards)
	api.DELETE("/dashboard/:id", h.httpDeleteDashboard)
	api.POST("/dashboard/:id/default", h.httpSetDefault)
}

func (h *Handlers) httpGetDashboard(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context(), auth.UserID(c), c.Query("id"))
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "get dashboard")
		return
	}
	c.JSON(http.StatusOK, v1.GetDashboardResponse{Dashboard: d})
}

func (h *Handlers) httpSaveDashboard(c *gin.Context) {
	var body v1.SaveDashboardRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		httpmw.BadRequest(c, "invalid payload")
		return
	}
	if body.Dashboard == nil {
		httpmw.BadRequest(c, "dashboard is required")
		return
	}
	if body.Dashboard.ID == "" {
		httpmw.BadRequest(c, "dashboard.id is required")
		return
	}

	saved, err := h.svc.Save(c.Request.Context(), auth.UserID(c), body.Dashboard, body.ExpectedRevision)
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "save dashboard")
		return
	}
	c.JSON(http.StatusOK, v1.SaveDashboardResponse{Dashboard: saved})
}

func (h *Handlers) httpListDashboards(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "list dashboards")
		return
	}
	c.JSON(http.StatusOK, v1.ListDashboardsResponse{Dashboards: list, Total: len(list)})
}

func (h *Handlers) httpDeleteDashboard(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		httpmw.RespondError(c, h.logger, err, "delete dashboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) httpSetDefault(c *gin.Context) {
	d, err := h.svc.SetDefault(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "set default dashboard")
		return
	}
	c.JSON(http.StatusOK, v1.SaveDashboardResponse{Dashboard: d})
}
