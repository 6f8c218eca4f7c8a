package models

import (
	"time"

	projectmodels "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/models"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

// Statuses lists every status in board order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusReview, StatusDone, StatusBlocked}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

type Task struct {
	ID             string                 `json:"id" db:"id"`
	ProjectID      string                 `json:"project_id" db:"project_id"`
	Title          string                 `json:"title" db:"title"`
	Description    string                 `json:"description" db:"description"`
	Status         Status                 `json:"status" db:"status"`
	Priority       projectmodels.Priority `json:"priority" db:"priority"`
	AssigneeID     string                 `json:"assignee_id" db:"assignee_id"`
	StartDate      *time.Time             `json:"start_date,omitempty" db:"start_date"`
	DueDate        *time.Time             `json:"due_date,omitempty" db:"due_date"`
	EstimatedHours float64                `json:"estimated_hours" db:"estimated_hours"`
	CreatedAt      time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at" db:"updated_at"`
}

// Summary counts an owner's tasks by status, across all of their projects.
type Summary struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"by_status"`
	Overdue  int            `json:"overdue"`
}
