package dto

import (
	"time"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/dates"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/models"
)

type ProjectDTO struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organizationId,omitempty"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	ProjectType    string  `json:"projectType"`
	Status         string  `json:"status"`
	Priority       string  `json:"priority"`
	StartDate      *string `json:"startDate"`
	EndDate        *string `json:"endDate"`
	Budget         float64 `json:"budget"`
	Location       string  `json:"location"`
	ClientName     string  `json:"clientName"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

type ProjectResponse struct {
	Project ProjectDTO `json:"project"`
}

type ProjectsResponse struct {
	Projects []ProjectDTO `json:"projects"`
	Total    int          `json:"total"`
}

type CreateProjectRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ProjectType string  `json:"projectType"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
	Budget      float64 `json:"budget"`
	Location    string  `json:"location"`
	ClientName  string  `json:"clientName"`
}

// UpdateProjectRequest is a partial update. An empty date string clears the date.
type UpdateProjectRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	ProjectType *string  `json:"projectType,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Priority    *string  `json:"priority,omitempty"`
	StartDate   *string  `json:"startDate,omitempty"`
	EndDate     *string  `json:"endDate,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
	Location    *string  `json:"location,omitempty"`
	ClientName  *string  `json:"clientName,omitempty"`
}

func FromProject(p *models.Project) ProjectDTO {
	return ProjectDTO{
		ID:             p.ID,
		OrganizationID: p.OrganizationID,
		Name:           p.Name,
		Description:    p.Description,
		ProjectType:    p.ProjectType,
		Status:         string(p.Status),
		Priority:       string(p.Priority),
		StartDate:      dates.Format(p.StartDate),
		EndDate:        dates.Format(p.EndDate),
		Budget:         p.Budget,
		Location:       p.Location,
		ClientName:     p.ClientName,
		CreatedAt:      p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
