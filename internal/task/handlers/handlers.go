package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/auth"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/httpmw"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/controller"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/dto"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/models"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/service"
)

type Handlers struct {
	controller *controller.Controller
	logger     *logger.Logger
}

func NewHandlers(ctrl *controller.Controller, log *logger.Logger) *Handlers {
	return &Handlers{
		controller: ctrl,
		logger:     log.WithFields(zap.String("component", "task-handlers")),
	}
}

// RegisterRoutes mounts the task routes. Project-scoped routes share the
// :id parameter name with the project routes.
func RegisterRoutes(api gin.IRoutes, ctrl *controller.Controller, log *logger.Logger) {
	h := NewHandlers(ctrl, log)
	api.GET("/projects/:id/tasks", h.httpListTasks)
	api.POST("/projects/:id/tasks", h.httpCreateTask)
	api.GET("/tasks/summary", h.httpSummary)
	api.GET("/tasks/:id", h.httpGetTask)
	api.PATCH("/tasks/:id", h.httpUpdateTask)
	api.DELETE("/tasks/:id", h.httpDeleteTask)
}

func (h *Handlers) httpListTasks(c *gin.Context) {
	userID := auth.UserID(c)
	req := &service.ListTasksRequest{
		Status:     models.Status(c.Query("status")),
		AssigneeID: c.Query("assignee"),
		Query:      c.Query("q"),
	}
	if req.AssigneeID == "me" {
		req.AssigneeID = userID
	}
	resp, err := h.controller.ListTasks(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "list tasks")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) httpCreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpmw.BadRequest(c, "invalid payload")
		return
	}
	resp, err := h.controller.CreateTask(c.Request.Context(), auth.UserID(c), c.Param("id"), req)
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "create task")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handlers) httpGetTask(c *gin.Context) {
	resp, err := h.controller.GetTask(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "get task")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) httpUpdateTask(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpmw.BadRequest(c, "invalid payload")
		return
	}
	resp, err := h.controller.UpdateTask(c.Request.Context(), auth.UserID(c), c.Param("id"), req)
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "update task")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) httpDeleteTask(c *gin.Context) {
	if err := h.controller.DeleteTask(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		httpmw.RespondError(c, h.logger, err, "delete task")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) httpSummary(c *gin.Context) {
	resp, err := h.controller.Summary(c.Request.Context(), auth.UserID(c))
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "summarize tasks")
		return
	}
	c.JSON(http.StatusOK, resp)
}
