package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/db"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/db/dialect"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/models"
)

type SQLRepository struct {
	pool *db.Pool
}

var _ Repository = (*SQLRepository)(nil)

func NewSQLRepository(pool *db.Pool) *SQLRepository {
	return &SQLRepository{pool: pool}
}

const taskColumns = `id, project_id, title, description, status, priority, assignee_id,
	start_date, due_date, estimated_hours, created_at, updated_at`

func (r *SQLRepository) CreateTask(ctx context.Context, t *models.Task) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	_, err := r.pool.Writer().NamedExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (:id, :project_id, :title, :description, :status, :priority, :assignee_id,
			:start_date, :due_date, :estimated_hours, :created_at, :updated_at)
	`, t)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *SQLRepository) GetTask(ctx context.Context, id string) (*models.Task, error) {
	reader := r.pool.Reader()
	var t models.Task
	err := reader.GetContext(ctx, &t, reader.Rebind(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &t, nil
}

func (r *SQLRepository) ListTasks(ctx context.Context, filter ListFilter) ([]*models.Task, error) {
	reader := r.pool.Reader()

	where := []string{"project_id = ?"}
	args := []interface{}{filter.ProjectID}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.AssigneeID != "" {
		where = append(where, "assignee_id = ?")
		args = append(args, filter.AssigneeID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := dialect.Like(reader.DriverName())
		where = append(where, fmt.Sprintf(`(title %[1]s ? ESCAPE '\' OR description %[1]s ? ESCAPE '\')`, like))
		pattern := dialect.ContainsPattern(q)
		args = append(args, pattern, pattern)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY CASE WHEN due_date IS NULL THEN 1 ELSE 0 END, due_date, created_at, id`
	tasks := []*models.Task{}
	if err := reader.SelectContext(ctx, &tasks, reader.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *SQLRepository) UpdateTask(ctx context.Context, t *models.Task) error {
	t.UpdatedAt = time.Now().UTC()
	result, err := r.pool.Writer().NamedExecContext(ctx, `
		UPDATE tasks
		SET title = :title, description = :description, status = :status, priority = :priority,
		    assignee_id = :assignee_id, start_date = :start_date, due_date = :due_date,
		    estimated_hours = :estimated_hours, updated_at = :updated_at
		WHERE id = :id
	`, t)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireOneRow(result)
}

func (r *SQLRepository) DeleteTask(ctx context.Context, id string) error {
	writer := r.pool.Writer()
	result, err := writer.ExecContext(ctx, writer.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireOneRow(result)
}

func (r *SQLRepository) SummarizeForOwner(ctx context.Context, ownerID string, asOf time.Time) (*models.Summary, error) {
	reader := r.pool.Reader()

	var rows []struct {
		Status models.Status `db:"status"`
		Count  int           `db:"n"`
	}
	err := reader.SelectContext(ctx, &rows, reader.Rebind(`
		SELECT t.status AS status, COUNT(*) AS n
		FROM tasks t JOIN projects p ON p.id = t.project_id
		WHERE p.owner_id = ?
		GROUP BY t.status
	`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("summarize tasks: %w", err)
	}

	summary := &models.Summary{ByStatus: make(map[models.Status]int, len(models.Statuses))}
	for _, st := range models.Statuses {
		summary.ByStatus[st] = 0
	}
	for _, row := range rows {
		summary.ByStatus[row.Status] = row.Count
		summary.Total += row.Count
	}

	err = reader.GetContext(ctx, &summary.Overdue, reader.Rebind(`
		SELECT COUNT(*)
		FROM tasks t JOIN projects p ON p.id = t.project_id
		WHERE p.owner_id = ? AND t.status <> ? AND t.due_date IS NOT NULL AND t.due_date < ?
	`), ownerID, models.StatusDone, asOf.UTC())
	if err != nil {
		return nil, fmt.Errorf("count overdue tasks: %w", err)
	}
	return summary, nil
}

func requireOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
