package store

import (
	"context"
	"errors"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/models"
)

var ErrNotFound = errors.New("project not found")

// ListFilter narrows ListProjects. Zero values mean "no filter"; Limit 0
// means no limit.
type ListFilter struct {
	OwnerID string
	Status  models.Status
	Query   string
	Limit   int
	Offset  int
}

type Repository interface {
	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context, filter ListFilter) ([]*models.Project, int, error)
	UpdateProject(ctx context.Context, project *models.Project) error
	DeleteProject(ctx context.Context, id string) error
}
