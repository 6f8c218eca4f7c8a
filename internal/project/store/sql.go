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
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/models"
)

type SQLRepository struct {
	pool *db.Pool
}

var _ Repository = (*SQLRepository)(nil)

func NewSQLRepository(pool *db.Pool) *SQLRepository {
	return &SQLRepository{pool: pool}
}

const projectColumns = `id, owner_id, organization_id, name, description, project_type, status, priority,
	start_date, end_date, budget, location, client_name, created_at, updated_at`

func (r *SQLRepository) CreateProject(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	writer := r.pool.Writer()
	_, err := writer.NamedExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (:id, :owner_id, :organization_id, :name, :description, :project_type, :status, :priority,
			:start_date, :end_date, :budget, :location, :client_name, :created_at, :updated_at)
	`, p)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *SQLRepository) GetProject(ctx context.Context, id string) (*models.Project, error) {
	reader := r.pool.Reader()
	var p models.Project
	err := reader.GetContext(ctx, &p, reader.Rebind(`SELECT `+projectColumns+` FROM projects WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

// ListProjects returns one page of matching projects, most recently updated
// first, plus the total number of matches.
func (r *SQLRepository) ListProjects(ctx context.Context, filter ListFilter) ([]*models.Project, int, error) {
	reader := r.pool.Reader()

	var where []string
	var args []interface{}
	if filter.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := dialect.Like(reader.DriverName())
		where = append(where, fmt.Sprintf(`(name %[1]s ? ESCAPE '\' OR description %[1]s ? ESCAPE '\' OR client_name %[1]s ? ESCAPE '\')`, like))
		pattern := dialect.ContainsPattern(q)
		args = append(args, pattern, pattern, pattern)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := reader.GetContext(ctx, &total, reader.Rebind(`SELECT COUNT(*) FROM projects`+clause), args...); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	query := `SELECT ` + projectColumns + ` FROM projects` + clause + ` ORDER BY updated_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}
	projects := []*models.Project{}
	if err := reader.SelectContext(ctx, &projects, reader.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	return projects, total, nil
}

func (r *SQLRepository) UpdateProject(ctx context.Context, p *models.Project) error {
	p.UpdatedAt = time.Now().UTC()
	writer := r.pool.Writer()
	result, err := writer.NamedExecContext(ctx, `
		UPDATE projects
		SET name = :name, description = :description, project_type = :project_type, status = :status,
		    priority = :priority, start_date = :start_date, end_date = :end_date, budget = :budget,
		    location = :location, client_name = :client_name, organization_id = :organization_id,
		    updated_at = :updated_at
		WHERE id = :id
	`, p)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return requireOneRow(result)
}

func (r *SQLRepository) DeleteProject(ctx context.Context, id string) error {
	writer := r.pool.Writer()
	result, err := writer.ExecContext(ctx, writer.Rebind(`DELETE FROM projects WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return requireOneRow(result)
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
