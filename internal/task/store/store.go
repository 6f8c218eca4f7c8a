package store

import (
	"context"
	"errors"
	"time"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/models"
)

var ErrNotFound = errors.New("task not found")

type ListFilter struct {
	ProjectID  string
	Status     models.Status
	AssigneeID string
	Query      string
}

type Repository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, filter ListFilter) ([]*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id string) error
	// SummarizeForOwner counts tasks in projects owned by ownerID. Tasks not
	// done whose due date is before asOf are overdue.
	SummarizeForOwner(ctx context.Context, ownerID string, asOf time.Time) (*models.Summary, error)
}
