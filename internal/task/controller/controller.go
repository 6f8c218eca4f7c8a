package controller

import (
	"context"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/dates"
	projectmodels "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/models"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/dto"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/models"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/service"
)

type Controller struct {
	service *service.Service
}

func NewController(svc *service.Service) *Controller {
	return &Controller{service: svc}
}

func (c *Controller) ListTasks(ctx context.Context, ownerID, projectID string, req *service.ListTasksRequest) (dto.TasksResponse, error) {
	tasks, err := c.service.ListTasks(ctx, ownerID, projectID, req)
	if err != nil {
		return dto.TasksResponse{}, err
	}
	result := make([]dto.TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		result = append(result, dto.FromTask(t))
	}
	return dto.TasksResponse{Tasks: result, Total: len(result)}, nil
}

func (c *Controller) GetTask(ctx context.Context, ownerID, id string) (dto.TaskResponse, error) {
	t, err := c.service.GetTask(ctx, ownerID, id)
	if err != nil {
		return dto.TaskResponse{}, err
	}
	return dto.TaskResponse{Task: dto.FromTask(t)}, nil
}

func (c *Controller) CreateTask(ctx context.Context, ownerID, projectID string, req dto.CreateTaskRequest) (dto.TaskResponse, error) {
	start, err := dates.Parse("startDate", req.StartDate)
	if err != nil {
		return dto.TaskResponse{}, err
	}
	due, err := dates.Parse("dueDate", req.DueDate)
	if err != nil {
		return dto.TaskResponse{}, err
	}
	t, err := c.service.CreateTask(ctx, ownerID, projectID, &service.CreateTaskRequest{
		Title:          req.Title,
		Description:    req.Description,
		Status:         models.Status(req.Status),
		Priority:       projectmodels.Priority(req.Priority),
		AssigneeID:     req.AssigneeID,
		StartDate:      start,
		DueDate:        due,
		EstimatedHours: req.EstimatedHours,
	})
	if err != nil {
		return dto.TaskResponse{}, err
	}
	return dto.TaskResponse{Task: dto.FromTask(t)}, nil
}

func (c *Controller) UpdateTask(ctx context.Context, ownerID, id string, req dto.UpdateTaskRequest) (dto.TaskResponse, error) {
	update := &service.UpdateTaskRequest{
		Title:          req.Title,
		Description:    req.Description,
		AssigneeID:     req.AssigneeID,
		EstimatedHours: req.EstimatedHours,
	}
	if req.Status != nil {
		st := models.Status(*req.Status)
		update.Status = &st
	}
	if req.Priority != nil {
		pr := projectmodels.Priority(*req.Priority)
		update.Priority = &pr
	}
	var err error
	if req.StartDate != nil {
		if update.StartDate, err = dates.Parse("startDate", *req.StartDate); err != nil {
			return dto.TaskResponse{}, err
		}
		update.ClearStartDate = update.StartDate == nil
	}
	if req.DueDate != nil {
		if update.DueDate, err = dates.Parse("dueDate", *req.DueDate); err != nil {
			return dto.TaskResponse{}, err
		}
		update.ClearDueDate = update.DueDate == nil
	}

	t, err := c.service.UpdateTask(ctx, ownerID, id, update)
	if err != nil {
		return dto.TaskResponse{}, err
	}
	return dto.TaskResponse{Task: dto.FromTask(t)}, nil
}

func (c *Controller) DeleteTask(ctx context.Context, ownerID, id string) error {
	return c.service.DeleteTask(ctx, ownerID, id)
}

func (c *Controller) Summary(ctx context.Context, ownerID string) (dto.SummaryResponse, error) {
	s, err := c.service.Summary(ctx, ownerID)
	if err != nil {
		return dto.SummaryResponse{}, err
	}
	return dto.FromSummary(s), nil
}
