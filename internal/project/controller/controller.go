package controller

import (
	"context"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/dates"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/dto"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/models"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/service"
	v1 "github.com/samatacc/buildtrack-pro-emer-test-sub004/pkg/api/v1"
)

type Controller struct {
	service *service.Service
}

func NewController(svc *service.Service) *Controller {
	return &Controller{service: svc}
}

func (c *Controller) ListProjects(ctx context.Context, ownerID string, req *service.ListProjectsRequest) (dto.ProjectsResponse, error) {
	projects, total, err := c.service.ListProjects(ctx, ownerID, req)
	if err != nil {
		return dto.ProjectsResponse{}, err
	}
	result := make([]dto.ProjectDTO, 0, len(projects))
	for _, p := range projects {
		result = append(result, dto.FromProject(p))
	}
	return dto.ProjectsResponse{Projects: result, Total: total}, nil
}

func (c *Controller) GetProject(ctx context.Context, ownerID, id string) (dto.ProjectResponse, error) {
	p, err := c.service.GetProject(ctx, ownerID, id)
	if err != nil {
		return dto.ProjectResponse{}, err
	}
	return dto.ProjectResponse{Project: dto.FromProject(p)}, nil
}

func (c *Controller) CreateProject(ctx context.Context, ownerID string, req dto.CreateProjectRequest) (dto.ProjectResponse, error) {
	start, err := dates.Parse("startDate", req.StartDate)
	if err != nil {
		return dto.ProjectResponse{}, err
	}
	end, err := dates.Parse("endDate", req.EndDate)
	if err != nil {
		return dto.ProjectResponse{}, err
	}
	p, err := c.service.CreateProject(ctx, ownerID, &service.CreateProjectRequest{
		Name:        req.Name,
		Description: req.Description,
		ProjectType: req.ProjectType,
		Status:      models.Status(req.Status),
		Priority:    models.Priority(req.Priority),
		StartDate:   start,
		EndDate:     end,
		Budget:      req.Budget,
		Location:    req.Location,
		ClientName:  req.ClientName,
	})
	if err != nil {
		return dto.ProjectResponse{}, err
	}
	return dto.ProjectResponse{Project: dto.FromProject(p)}, nil
}

func (c *Controller) UpdateProject(ctx context.Context, ownerID, id string, req dto.UpdateProjectRequest) (dto.ProjectResponse, error) {
	update := &service.UpdateProjectRequest{
		Name:        req.Name,
		Description: req.Description,
		ProjectType: req.ProjectType,
		Budget:      req.Budget,
		Location:    req.Location,
		ClientName:  req.ClientName,
	}
	if req.Status != nil {
		st := models.Status(*req.Status)
		update.Status = &st
	}
	if req.Priority != nil {
		pr := models.Priority(*req.Priority)
		update.Priority = &pr
	}
	var err error
	if req.StartDate != nil {
		if update.StartDate, err = dates.Parse("startDate", *req.StartDate); err != nil {
			return dto.ProjectResponse{}, err
		}
		update.ClearStartDate = update.StartDate == nil
	}
	if req.EndDate != nil {
		if update.EndDate, err = dates.Parse("endDate", *req.EndDate); err != nil {
			return dto.ProjectResponse{}, err
		}
		update.ClearEndDate = update.EndDate == nil
	}

	p, err := c.service.UpdateProject(ctx, ownerID, id, update)
	if err != nil {
		return dto.ProjectResponse{}, err
	}
	return dto.ProjectResponse{Project: dto.FromProject(p)}, nil
}

func (c *Controller) DeleteProject(ctx context.Context, ownerID, id string) error {
	return c.service.DeleteProject(ctx, ownerID, id)
}

func (c *Controller) SuggestType(req v1.SuggestProjectTypeRequest) v1.SuggestProjectTypeResponse {
	s := c.service.SuggestType(req.Name, req.Description)
	return v1.SuggestProjectTypeResponse{
		ProjectType:     s.ProjectType,
		Confidence:      s.Confidence,
		MatchedKeywords: s.MatchedKeywords,
	}
}
