package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/apperr"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/dates"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/events"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/events/bus"
	projectmodels "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/models"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/models"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/store"
)

// ProjectReader resolves a project the caller owns, returning a not-found
// error otherwise. The project service satisfies it.
type ProjectReader interface {
	GetProject(ctx context.Context, ownerID, id string) (*projectmodels.Project, error)
}

type Service struct {
	repo     store.Repository
	projects ProjectReader
	eventBus bus.EventBus
	logger   *logger.Logger
	now      func() time.Time
}

type CreateTaskRequest struct {
	Title          string
	Description    string
	Status         models.Status
	Priority       projectmodels.Priority
	AssigneeID     string
	StartDate      *time.Time
	DueDate        *time.Time
	EstimatedHours float64
}

type UpdateTaskRequest struct {
	Title          *string
	Description    *string
	Status         *models.Status
	Priority       *projectmodels.Priority
	AssigneeID     *string
	StartDate      *time.Time
	DueDate        *time.Time
	ClearStartDate bool
	ClearDueDate   bool
	EstimatedHours *float64
}

type ListTasksRequest struct {
	Status     models.Status
	AssigneeID string
	Query      string
}

func NewService(repo store.Repository, projects ProjectReader, eventBus bus.EventBus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		eventBus: eventBus,
		logger:   log.WithFields(zap.String("component", "task-service")),
		now:      time.Now,
	}
}

func (s *Service) CreateTask(ctx context.Context, ownerID, projectID string, req *CreateTaskRequest) (*models.Task, error) {
	if _, err := s.projects.GetProject(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	t := &models.Task{
		ProjectID:      projectID,
		Title:          strings.TrimSpace(req.Title),
		Description:    strings.TrimSpace(req.Description),
		Status:         req.Status,
		Priority:       req.Priority,
		AssigneeID:     strings.TrimSpace(req.AssigneeID),
		StartDate:      req.StartDate,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
	}
	if t.Status == "" {
		t.Status = models.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = projectmodels.PriorityMedium
	}
	if err := validate(t); err != nil {
		return nil, err
	}
	if err := s.repo.CreateTask(ctx, t); err != nil {
		return nil, err
	}
	s.publish(ctx, ownerID, t, events.TaskCreated)
	return t, nil
}

// GetTask returns the task when it belongs to a project ownerID owns.
func (s *Service) GetTask(ctx context.Context, ownerID, id string) (*models.Task, error) {
	t, err := s.repo.GetTask(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("task", id)
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.projects.GetProject(ctx, ownerID, t.ProjectID); err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("task", id)
		}
		return nil, err
	}
	return t, nil
}

func (s *Service) ListTasks(ctx context.Context, ownerID, projectID string, req *ListTasksRequest) ([]*models.Task, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, apperr.Validation("status", "unknown status "+string(req.Status))
	}
	if _, err := s.projects.GetProject(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListTasks(ctx, store.ListFilter{
		ProjectID:  projectID,
		Status:     req.Status,
		AssigneeID: req.AssigneeID,
		Query:      req.Query,
	})
}

func (s *Service) UpdateTask(ctx context.Context, ownerID, id string, req *UpdateTaskRequest) (*models.Task, error) {
	t, err := s.GetTask(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.AssigneeID != nil {
		t.AssigneeID = strings.TrimSpace(*req.AssigneeID)
	}
	if req.ClearStartDate {
		t.StartDate = nil
	} else if req.StartDate != nil {
		t.StartDate = req.StartDate
	}
	if req.ClearDueDate {
		t.DueDate = nil
	} else if req.DueDate != nil {
		t.DueDate = req.DueDate
	}
	if req.EstimatedHours != nil {
		t.EstimatedHours = *req.EstimatedHours
	}
	if err := validate(t); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateTask(ctx, t); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("task", id)
		}
		return nil, err
	}
	s.publish(ctx, ownerID, t, events.TaskUpdated)
	return t, nil
}

func (s *Service) DeleteTask(ctx context.Context, ownerID, id string) error {
	t, err := s.GetTask(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("task", id)
		}
		return err
	}
	s.publish(ctx, ownerID, t, events.TaskDeleted)
	return nil
}

// Summary backs the task_summary dashboard widget.
func (s *Service) Summary(ctx context.Context, ownerID string) (*models.Summary, error) {
	return s.repo.SummarizeForOwner(ctx, ownerID, s.now())
}

func validate(t *models.Task) error {
	if t.Title == "" {
		return apperr.Validation("title", "must not be blank")
	}
	if !t.Status.Valid() {
		return apperr.Validation("status", "unknown status "+string(t.Status))
	}
	if !t.Priority.Valid() {
		return apperr.Validation("priority", "unknown priority "+string(t.Priority))
	}
	if t.EstimatedHours < 0 {
		return apperr.Validation("estimatedHours", "must not be negative")
	}
	if dates.Before(t.DueDate, t.StartDate) {
		return apperr.Validation("dueDate", "must not be before the start date")
	}
	return nil
}

func (s *Service) publish(ctx context.Context, ownerID string, t *models.Task, eventType string) {
	if s.eventBus == nil {
		return
	}
	data := map[string]interface{}{
		"task_id":    t.ID,
		"project_id": t.ProjectID,
		"title":      t.Title,
		"status":     string(t.Status),
	}
	subject := events.UserSubject(ownerID, eventType)
	if err := s.eventBus.Publish(ctx, subject, bus.NewEvent(eventType, events.SourceTask, data)); err != nil {
		s.logger.Error("failed to publish task event", zap.String("event_type", eventType), zap.Error(err))
	}
}
