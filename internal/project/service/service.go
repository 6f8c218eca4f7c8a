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
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/models"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/store"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/suggest"
	usermodels "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/models"
	userstore "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/store"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// OrganizationLookup resolves the organization new projects are filed under.
type OrganizationLookup interface {
	GetOrganizationByOwner(ctx context.Context, ownerID string) (*usermodels.Organization, error)
}

type Service struct {
	repo     store.Repository
	orgs     OrganizationLookup
	eventBus bus.EventBus
	logger   *logger.Logger
}

type CreateProjectRequest struct {
	Name        string
	Description string
	ProjectType string
	Status      models.Status
	Priority    models.Priority
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      float64
	Location    string
	ClientName  string
}

// UpdateProjectRequest changes the non-nil fields. ClearStartDate and
// ClearEndDate unset a date.
type UpdateProjectRequest struct {
	Name           *string
	Description    *string
	ProjectType    *string
	Status         *models.Status
	Priority       *models.Priority
	StartDate      *time.Time
	EndDate        *time.Time
	ClearStartDate bool
	ClearEndDate   bool
	Budget         *float64
	Location       *string
	ClientName     *string
}

type ListProjectsRequest struct {
	Status models.Status
	Query  string
	Limit  int
	Offset int
}

func NewService(repo store.Repository, orgs OrganizationLookup, eventBus bus.EventBus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		orgs:     orgs,
		eventBus: eventBus,
		logger:   log.WithFields(zap.String("component", "project-service")),
	}
}

func (s *Service) CreateProject(ctx context.Context, ownerID string, req *CreateProjectRequest) (*models.Project, error) {
	p := &models.Project{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		ProjectType: strings.TrimSpace(req.ProjectType),
		Status:      req.Status,
		Priority:    req.Priority,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
		Location:    strings.TrimSpace(req.Location),
		ClientName:  strings.TrimSpace(req.ClientName),
	}
	if p.Status == "" {
		p.Status = models.StatusPlanning
	}
	if p.Priority == "" {
		p.Priority = models.PriorityMedium
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	p.OrganizationID = s.organizationID(ctx, ownerID)

	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("project created", zap.String("project_id", p.ID), zap.String("owner_id", ownerID))
	s.publish(ctx, p, events.ProjectCreated)
	return p, nil
}

// GetProject returns the project if ownerID owns it. Projects owned by
// someone else are reported as missing.
func (s *Service) GetProject(ctx context.Context, ownerID, id string) (*models.Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && p.OwnerID != ownerID) {
		return nil, apperr.NotFound("project", id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListProjects(ctx context.Context, ownerID string, req *ListProjectsRequest) ([]*models.Project, int, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, 0, apperr.Validation("status", "unknown status "+string(req.Status))
	}
	if req.Offset < 0 {
		return nil, 0, apperr.Validation("offset", "must not be negative")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.repo.ListProjects(ctx, store.ListFilter{
		OwnerID: ownerID,
		Status:  req.Status,
		Query:   req.Query,
		Limit:   limit,
		Offset:  req.Offset,
	})
}

func (s *Service) UpdateProject(ctx context.Context, ownerID, id string, req *UpdateProjectRequest) (*models.Project, error) {
	p, err := s.GetProject(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.ProjectType != nil {
		p.ProjectType = strings.TrimSpace(*req.ProjectType)
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.Priority != nil {
		p.Priority = *req.Priority
	}
	if req.ClearStartDate {
		p.StartDate = nil
	} else if req.StartDate != nil {
		p.StartDate = req.StartDate
	}
	if req.ClearEndDate {
		p.EndDate = nil
	} else if req.EndDate != nil {
		p.EndDate = req.EndDate
	}
	if req.Budget != nil {
		p.Budget = *req.Budget
	}
	if req.Location != nil {
		p.Location = strings.TrimSpace(*req.Location)
	}
	if req.ClientName != nil {
		p.ClientName = strings.TrimSpace(*req.ClientName)
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return nil, mapStoreErr(err, id)
	}
	s.publish(ctx, p, events.ProjectUpdated)
	return p, nil
}

// DeleteProject removes the project and, through the foreign key, its tasks.
func (s *Service) DeleteProject(ctx context.Context, ownerID, id string) error {
	p, err := s.GetProject(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return mapStoreErr(err, id)
	}
	s.publish(ctx, p, events.ProjectDeleted)
	return nil
}

// SuggestType runs the keyword matcher over a draft project's text.
func (s *Service) SuggestType(name, description string) suggest.Suggestion {
	return suggest.ProjectType(name, description)
}

func (s *Service) organizationID(ctx context.Context, ownerID string) string {
	if s.orgs == nil {
		return ""
	}
	org, err := s.orgs.GetOrganizationByOwner(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, userstore.ErrNotFound) {
			s.logger.Warn("organization lookup failed", zap.String("owner_id", ownerID), zap.Error(err))
		}
		return ""
	}
	return org.ID
}

func validate(p *models.Project) error {
	if p.Name == "" {
		return apperr.Validation("name", "must not be blank")
	}
	if !p.Status.Valid() {
		return apperr.Validation("status", "unknown status "+string(p.Status))
	}
	if !p.Priority.Valid() {
		return apperr.Validation("priority", "unknown priority "+string(p.Priority))
	}
	if p.ProjectType != "" && p.ProjectType != models.ProjectTypeOther && !suggest.IsType(p.ProjectType) {
		return apperr.Validation("projectType", "unknown project type "+p.ProjectType)
	}
	if p.Budget < 0 {
		return apperr.Validation("budget", "must not be negative")
	}
	if dates.Before(p.EndDate, p.StartDate) {
		return apperr.Validation("endDate", "must not be before the start date")
	}
	return nil
}

func (s *Service) publish(ctx context.Context, p *models.Project, eventType string) {
	if s.eventBus == nil {
		return
	}
	data := map[string]interface{}{
		"project_id": p.ID,
		"name":       p.Name,
		"status":     string(p.Status),
	}
	subject := events.UserSubject(p.OwnerID, eventType)
	if err := s.eventBus.Publish(ctx, subject, bus.NewEvent(eventType, events.SourceProject, data)); err != nil {
		s.logger.Error("failed to publish project event", zap.String("event_type", eventType), zap.Error(err))
	}
}

func mapStoreErr(err error, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("project", id)
	}
	return err
}
