package dto

import (
	"time"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/dates"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/models"
)

type TaskDTO struct {
	ID             string  `json:"id"`
	ProjectID      string  `json:"projectId"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Status         string  `json:"status"`
	Priority       string  `json:"priority"`
	AssigneeID     string  `json:"assigneeId"`
	StartDate      *string `json:"startDate"`
	DueDate        *string `json:"dueDate"`
	EstimatedHours float64 `json:"estimatedHours"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

type TaskResponse struct {
	Task TaskDTO `json:"task"`
}

type TasksResponse struct {
	Tasks []TaskDTO `json:"tasks"`
	Total int       `json:"total"`
}

type SummaryResponse struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
	Overdue  int            `json:"overdue"`
}

type CreateTaskRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Status         string  `json:"status"`
	Priority       string  `json:"priority"`
	AssigneeID     string  `json:"assigneeId"`
	StartDate      string  `json:"startDate"`
	DueDate        string  `json:"dueDate"`
	EstimatedHours float64 `json:"estimatedHours"`
}

// UpdateTaskRequest is a partial update. An empty date string clears the date.
type UpdateTaskRequest struct {
	Title          *string  `json:"title,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Status         *string  `json:"status,omitempty"`
	Priority       *string  `json:"priority,omitempty"`
	AssigneeID     *string  `json:"assigneeId,omitempty"`
	StartDate      *string  `json:"startDate,omitempty"`
	DueDate        *string  `json:"dueDate,omitempty"`
	EstimatedHours *float64 `json:"estimatedHours,omitempty"`
}

func FromTask(t *models.Task) TaskDTO {
	return TaskDTO{
		ID:             t.ID,
		ProjectID:      t.ProjectID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		AssigneeID:     t.AssigneeID,
		StartDate:      dates.Format(t.StartDate),
		DueDate:        dates.Format(t.DueDate),
		EstimatedHours: t.EstimatedHours,
		CreatedAt:      t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func FromSummary(s *models.Summary) SummaryResponse {
	byStatus := make(map[string]int, len(s.ByStatus))
	for st, n := range s.ByStatus {
		byStatus[string(st)] = n
	}
	return SummaryResponse{Total: s.Total, ByStatus: byStatus, Overdue: s.Overdue}
}
