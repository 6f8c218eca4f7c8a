// Package service stores dashboards inside the owning user's preferences
// document. Saves replace the dashboard with the same id wholesale.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/apperr"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/events"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/events/bus"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/models"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/store"
	v1 "github.com/samatacc/buildtrack-pro-emer-test-sub004/pkg/api/v1"
)

// MaxDashboards bounds how many dashboards one user may keep.
const MaxDashboards = 20

// PreferencesRepository is the slice of the user store dashboards live in.
type PreferencesRepository interface {
	GetPreferences(ctx context.Context, userID string) (*models.Preferences, error)
	UpdatePreferences(ctx context.Context, userID string, fn store.PreferencesMutator) (*models.Preferences, error)
}

type Service struct {
	repo     PreferencesRepository
	eventBus bus.EventBus
	logger   *logger.Logger
	now      func() time.Time
}

func NewService(repo PreferencesRepository, eventBus bus.EventBus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   log.WithFields(zap.String("component", "dashboard-service")),
		now:      time.Now,
	}
}

// Get returns the dashboard with id, or the default dashboard when id is
// empty. A nil dashboard with a nil error means nothing is stored.
func (s *Service) Get(ctx context.Context, userID, id string) (*v1.Dashboard, error) {
	prefs, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range prefs.Dashboards {
		d := prefs.Dashboards[i]
		if (id == "" && d.IsDefault) || (id != "" && d.ID == id) {
			return &d, nil
		}
	}
	return nil, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]v1.Dashboard, error) {
	prefs, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return prefs.Dashboards, nil
}

// Save replaces the stored dashboard whose id matches d.ID, or appends d when
// none does. When expectedRevision is set the save only succeeds if the stored
// revision still equals it (0 meaning "not stored yet"); otherwise the last
// writer wins.
func (s *Service) Save(ctx context.Context, userID string, d *v1.Dashboard, expectedRevision *int64) (*v1.Dashboard, error) {
	if d == nil {
		return nil, apperr.BadRequest("dashboard is required")
	}
	if strings.TrimSpace(d.ID) == "" {
		return nil, apperr.BadRequest("dashboard.id is required")
	}

	saved := *d
	if saved.Widgets == nil {
		saved.Widgets = []v1.WidgetInstance{}
	}
	if saved.Layouts == nil {
		saved.Layouts = map[v1.Breakpoint][]v1.LayoutItem{}
	}
	now := s.now().UTC()
	saved.UpdatedAt = &now

	_, err := s.repo.UpdatePreferences(ctx, userID, func(p *models.Preferences) error {
		idx := indexOf(p.Dashboards, saved.ID)

		var current int64
		if idx >= 0 {
			current = p.Dashboards[idx].Revision
		}
		if expectedRevision != nil && *expectedRevision != current {
			return apperr.Conflict(fmt.Sprintf(
				"dashboard %q is at revision %d, expected %d", saved.ID, current, *expectedRevision))
		}
		saved.Revision = current + 1

		if idx < 0 {
			if len(p.Dashboards) >= MaxDashboards {
				return apperr.Validation("dashboards", fmt.Sprintf("max %d dashboards allowed", MaxDashboards))
			}
			p.Dashboards = append(p.Dashboards, saved)
			idx = len(p.Dashboards) - 1
		} else {
			p.Dashboards[idx] = saved
		}

		if saved.IsDefault {
			clearDefaultExcept(p.Dashboards, idx, now)
		}
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err, userID)
	}

	s.publish(ctx, userID, events.DashboardSaved, map[string]interface{}{
		"user_id":      userID,
		"dashboard_id": saved.ID,
		"revision":     saved.Revision,
	})
	return &saved, nil
}

// Delete removes the dashboard with id.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	_, err := s.repo.UpdatePreferences(ctx, userID, func(p *models.Preferences) error {
		idx := indexOf(p.Dashboards, id)
		if idx < 0 {
			return apperr.NotFound("dashboard", id)
		}
		p.Dashboards = append(p.Dashboards[:idx], p.Dashboards[idx+1:]...)
		return nil
	})
	if err != nil {
		return mapStoreErr(err, userID)
	}

	s.publish(ctx, userID, events.DashboardDeleted, map[string]interface{}{
		"user_id":      userID,
		"dashboard_id": id,
	})
	return nil
}

// SetDefault flags id as the user's only default dashboard.
func (s *Service) SetDefault(ctx context.Context, userID, id string) (*v1.Dashboard, error) {
	var result v1.Dashboard
	_, err := s.repo.UpdatePreferences(ctx, userID, func(p *models.Preferences) error {
		idx := indexOf(p.Dashboards, id)
		if idx < 0 {
			return apperr.NotFound("dashboard", id)
		}
		now := s.now().UTC()
		for i := range p.Dashboards {
			want := i == idx
			if p.Dashboards[i].IsDefault != want {
				p.Dashboards[i].IsDefault = want
				p.Dashboards[i].Revision++
				p.Dashboards[i].UpdatedAt = &now
			}
		}
		result = p.Dashboards[idx]
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err, userID)
	}

	s.publish(ctx, userID, events.DashboardSaved, map[string]interface{}{
		"user_id":      userID,
		"dashboard_id": result.ID,
		"revision":     result.Revision,
	})
	return &result, nil
}

func (s *Service) load(ctx context.Context, userID string) (*models.Preferences, error) {
	prefs, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, mapStoreErr(err, userID)
	}
	return prefs, nil
}

func (s *Service) publish(ctx context.Context, userID, eventType string, data map[string]interface{}) {
	if s.eventBus == nil {
		return
	}
	subject := events.UserSubject(userID, eventType)
	if err := s.eventBus.Publish(ctx, subject, bus.NewEvent(eventType, events.SourceDashboard, data)); err != nil {
		s.logger.Error("failed to publish dashboard event", zap.String("event_type", eventType), zap.Error(err))
	}
}

// indexOf scans for id; dashboards are a small ordered array, not a map.
func indexOf(dashboards []v1.Dashboard, id string) int {
	for i := range dashboards {
		if dashboards[i].ID == id {
			return i
		}
	}
	return -1
}

// clearDefaultExcept unflags every other default; each one that changes gets
// a new revision.
func clearDefaultExcept(dashboards []v1.Dashboard, keep int, now time.Time) {
	for i := range dashboards {
		if i != keep && dashboards[i].IsDefault {
			dashboards[i].IsDefault = false
			dashboards[i].Revision++
			dashboards[i].UpdatedAt = &now
		}
	}
}

func mapStoreErr(err error, userID string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("user", userID)
	}
	return err
}
