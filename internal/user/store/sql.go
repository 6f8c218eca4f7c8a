package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/db"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/db/dialect"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/models"
)

type SQLRepository struct {
	pool *db.Pool
}

var _ Repository = (*SQLRepository)(nil)

func NewSQLRepository(pool *db.Pool) *SQLRepository {
	return &SQLRepository{pool: pool}
}

const userColumns = `id, email, name, phone, job_title, locale, timezone, avatar_url, organization_id, created_at, updated_at`

func (r *SQLRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	reader := r.pool.Reader()
	var user models.User
	err := reader.GetContext(ctx, &user, reader.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (r *SQLRepository) CreateUserIfMissing(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = user.CreatedAt

	prefs, err := json.Marshal(models.DefaultPreferences())
	if err != nil {
		return err
	}

	writer := r.pool.Writer()
	_, err = writer.ExecContext(ctx, writer.Rebind(`
		INSERT INTO users (id, email, name, phone, job_title, locale, timezone, avatar_url, organization_id, preferences, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`), user.ID, user.Email, user.Name, user.Phone, user.JobTitle, user.Locale, user.Timezone,
		user.AvatarURL, user.OrganizationID, string(prefs), user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *SQLRepository) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	writer := r.pool.Writer()
	result, err := writer.ExecContext(ctx, writer.Rebind(`
		UPDATE users
		SET email = ?, name = ?, phone = ?, job_title = ?, locale = ?, timezone = ?,
		    avatar_url = ?, organization_id = ?, updated_at = ?
		WHERE id = ?
	`), user.Email, user.Name, user.Phone, user.JobTitle, user.Locale, user.Timezone,
		user.AvatarURL, user.OrganizationID, user.UpdatedAt, user.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireOneRow(result)
}

func (r *SQLRepository) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	reader := r.pool.Reader()
	var raw string
	err := reader.GetContext(ctx, &raw, reader.Rebind(`SELECT preferences FROM users WHERE id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return decodePreferences(raw)
}

func (r *SQLRepository) UpdatePreferences(ctx context.Context, userID string, fn PreferencesMutator) (*models.Preferences, error) {
	writer := r.pool.Writer()
	tx, err := writer.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin preferences update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	query := `SELECT preferences FROM users WHERE id = ?` + dialect.ForUpdate(writer.DriverName())
	err = tx.GetContext(ctx, &raw, tx.Rebind(query), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	prefs, err := decodePreferences(raw)
	if err != nil {
		return nil, err
	}
	if err := fn(prefs); err != nil {
		return nil, err
	}
	prefs.UpdatedAt = time.Now().UTC()

	encoded, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE users SET preferences = ?, updated_at = ? WHERE id = ?`),
		string(encoded), prefs.UpdatedAt, userID); err != nil {
		return nil, fmt.Errorf("store preferences: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit preferences: %w", err)
	}
	return prefs, nil
}

func (r *SQLRepository) GetOrganizationByOwner(ctx context.Context, ownerID string) (*models.Organization, error) {
	reader := r.pool.Reader()
	var org models.Organization
	err := reader.GetContext(ctx, &org, reader.Rebind(`
		SELECT id, owner_id, name, industry, size, address, website, created_at, updated_at
		FROM organizations WHERE owner_id = ?
	`), ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &org, nil
}

// UpsertOrganization writes org keyed by owner and links the owner's user row to it.
func (r *SQLRepository) UpsertOrganization(ctx context.Context, org *models.Organization) error {
	now := time.Now().UTC()
	if org.CreatedAt.IsZero() {
		org.CreatedAt = now
	}
	org.UpdatedAt = now

	writer := r.pool.Writer()
	tx, err := writer.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin organization upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO organizations (id, owner_id, name, industry, size, address, website, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET
			name = excluded.name,
			industry = excluded.industry,
			size = excluded.size,
			address = excluded.address,
			website = excluded.website,
			updated_at = excluded.updated_at
	`), org.ID, org.OwnerID, org.Name, org.Industry, org.Size, org.Address, org.Website, org.CreatedAt, org.UpdatedAt); err != nil {
		return fmt.Errorf("upsert organization: %w", err)
	}

	// The conflict path keeps the original id.
	if err := tx.GetContext(ctx, &org.ID, tx.Rebind(`SELECT id FROM organizations WHERE owner_id = ?`), org.OwnerID); err != nil {
		return fmt.Errorf("reload organization id: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE users SET organization_id = ? WHERE id = ?`), org.ID, org.OwnerID); err != nil {
		return fmt.Errorf("link organization: %w", err)
	}
	return tx.Commit()
}

func decodePreferences(raw string) (*models.Preferences, error) {
	prefs := models.DefaultPreferences()
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
			return nil, fmt.Errorf("decode preferences: %w", err)
		}
	}
	prefs.Normalize()
	return &prefs, nil
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
