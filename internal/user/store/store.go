package store

import (
	"context"
	"errors"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/models"
)

var ErrNotFound = errors.New("not found")

// PreferencesMutator edits a user's preferences inside the write transaction.
// Returning an error rolls the change back.
type PreferencesMutator func(prefs *models.Preferences) error

type Repository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	// CreateUserIfMissing inserts user unless a row with its id exists.
	CreateUserIfMissing(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error

	GetPreferences(ctx context.Context, userID string) (*models.Preferences, error)
	// UpdatePreferences runs a read-modify-write of the preferences document
	// in one transaction and returns the stored result.
	UpdatePreferences(ctx context.Context, userID string, fn PreferencesMutator) (*models.Preferences, error)

	GetOrganizationByOwner(ctx context.Context, ownerID string) (*models.Organization, error)
	UpsertOrganization(ctx context.Context, org *models.Organization) error
}
