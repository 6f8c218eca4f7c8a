package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/apperr"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/persistence/testdb"
	projectmodels "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/models"
	projectservice "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/service"
	projectstore "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/store"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/models"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/store"
)

func ptr[T any](v T) *T { return &v }

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	pool := testdb.New(t)
	testdb.SeedUser(t, pool, "owner-1")
	testdb.SeedUser(t, pool, "owner-2")
	log := logger.NewNop()

	projects := projectservice.NewService(projectstore.NewSQLRepository(pool), nil, nil, log)
	p, err := projects.CreateProject(context.Background(), "owner-1", &projectservice.CreateProjectRequest{Name: "Harbor Office"})
	require.NoError(t, err)

	svc := NewService(store.NewSQLRepository(pool), projects, nil, log)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, p.ID
}

func TestCreateTask(t *testing.T) {
	svc, projectID := newTestService(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "owner-1", projectID, &CreateTaskRequest{Title: " Pour foundation ", AssigneeID: "owner-1"})
	require.NoError(t, err)
	assert.Equal(t, "Pour foundation", task.Title)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, projectmodels.PriorityMedium, task.Priority)

	_, err = svc.CreateTask(ctx, "owner-2", projectID, &CreateTaskRequest{Title: "Sneaky"})
	assert.True(t, apperr.IsNotFound(err), "project of another owner")
	_, err = svc.CreateTask(ctx, "owner-1", "missing", &CreateTaskRequest{Title: "Orphan"})
	assert.True(t, apperr.IsNotFound(err))
}

func TestCreateTaskValidation(t *testing.T) {
	svc, projectID := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   CreateTaskRequest
		field string
	}{
		{"blank title", CreateTaskRequest{Title: ""}, "title"},
		{"unknown status", CreateTaskRequest{Title: "x", Status: "waiting"}, "status"},
		{"unknown priority", CreateTaskRequest{Title: "x", Priority: "p0"}, "priority"},
		{"negative hours", CreateTaskRequest{Title: "x", EstimatedHours: -2}, "estimatedHours"},
		{"due before start", CreateTaskRequest{Title: "x", StartDate: day(2024, 5, 10), DueDate: day(2024, 5, 9)}, "dueDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTask(ctx, "owner-1", projectID, &tt.req)
			require.Error(t, err)
			assert.True(t, apperr.IsBadRequest(err))
			assert.Contains(t, err.Error(), "'"+tt.field+"'")
		})
	}
}

func TestTaskUpdateAnyTransition(t *testing.T) {
	svc, projectID := newTestService(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "owner-1", projectID, &CreateTaskRequest{Title: "Frame walls"})
	require.NoError(t, err)

	for _, st := range []models.Status{models.StatusDone, models.StatusTodo, models.StatusBlocked, models.StatusReview} {
		updated, err := svc.UpdateTask(ctx, "owner-1", task.ID, &UpdateTaskRequest{Status: ptr(st)})
		require.NoError(t, err)
		assert.Equal(t, st, updated.Status)
	}

	_, err = svc.UpdateTask(ctx, "owner-2", task.ID, &UpdateTaskRequest{Title: ptr("mine")})
	assert.True(t, apperr.IsNotFound(err))
}

func TestListTasksAndSummary(t *testing.T) {
	svc, projectID := newTestService(t)
	ctx := context.Background()

	for _, req := range []CreateTaskRequest{
		{Title: "Survey site", Status: models.StatusDone, DueDate: day(2024, 5, 1)},
		{Title: "Order rebar", AssigneeID: "sam", DueDate: day(2024, 5, 20)},
		{Title: "Permit review", Status: models.StatusInProgress, AssigneeID: "sam", DueDate: day(2024, 7, 1)},
		{Title: "Site cleanup"},
	} {
		_, err := svc.CreateTask(ctx, "owner-1", projectID, &req)
		require.NoError(t, err)
	}

	all, err := svc.ListTasks(ctx, "owner-1", projectID, &ListTasksRequest{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Survey site", all[0].Title, "earliest due date first")
	assert.Equal(t, "Site cleanup", all[3].Title, "no due date last")

	sams, err := svc.ListTasks(ctx, "owner-1", projectID, &ListTasksRequest{AssigneeID: "sam"})
	require.NoError(t, err)
	assert.Len(t, sams, 2)

	found, err := svc.ListTasks(ctx, "owner-1", projectID, &ListTasksRequest{Query: "site"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = svc.ListTasks(ctx, "owner-2", projectID, &ListTasksRequest{})
	assert.True(t, apperr.IsNotFound(err))

	summary, err := svc.Summary(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.ByStatus[models.StatusTodo])
	assert.Equal(t, 1, summary.ByStatus[models.StatusDone])
	assert.Equal(t, 0, summary.ByStatus[models.StatusBlocked])
	assert.Equal(t, 1, summary.Overdue, "only the open task due before June")

	empty, err := svc.Summary(ctx, "owner-2")
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
}

func TestDeleteTask(t *testing.T) {
	svc, projectID := newTestService(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "owner-1", projectID, &CreateTaskRequest{Title: "Temp"})
	require.NoError(t, err)
	assert.True(t, apperr.IsNotFound(svc.DeleteTask(ctx, "owner-2", task.ID)))
	require.NoError(t, svc.DeleteTask(ctx, "owner-1", task.ID))
	assert.True(t, apperr.IsNotFound(svc.DeleteTask(ctx, "owner-1", task.ID)))
}
