package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/apperr"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/events"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/events/bus"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/models"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/store"
)

const (
	defaultLocale   = "en"
	defaultTimezone = "UTC"
)

var (
	validThemes    = map[string]bool{"light": true, "dark": true, "system": true}
	validPlatforms = map[string]bool{"ios": true, "android": true, "web": true}
)

type Service struct {
	repo     store.Repository
	eventBus bus.EventBus
	logger   *logger.Logger
}

type UpdateProfileRequest struct {
	Name      *string
	Phone     *string
	JobTitle  *string
	Locale    *string
	Timezone  *string
	AvatarURL *string
}

type UpdatePreferencesRequest struct {
	Theme              *string
	EmailNotifications *bool
	PushNotifications  *bool
	FavoriteTools      *[]models.FavoriteTool
}

type RegisterDeviceTokenRequest struct {
	Token      string
	Platform   string
	DeviceName string
}

type UpsertOrganizationRequest struct {
	Name     string
	Industry string
	Size     string
	Address  string
	Website  string
}

func NewService(repo store.Repository, eventBus bus.EventBus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   log.WithFields(zap.String("component", "user-service")),
	}
}

// EnsureUser creates the local row for an identity-provider subject on first sight.
func (s *Service) EnsureUser(ctx context.Context, id, email, name string) error {
	return s.repo.CreateUserIfMissing(ctx, &models.User{
		ID:       id,
		Email:    email,
		Name:     name,
		Locale:   defaultLocale,
		Timezone: defaultTimezone,
	})
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, mapStoreErr(err, "user", userID)
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, mapStoreErr(err, "user", userID)
	}
	previousLocale := user.Locale

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Validation("name", "must not be blank")
		}
		user.Name = name
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.JobTitle != nil {
		user.JobTitle = strings.TrimSpace(*req.JobTitle)
	}
	if req.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}
	if req.Locale != nil {
		locale, err := CanonicalLocale(*req.Locale)
		if err != nil {
			return nil, err
		}
		user.Locale = locale
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil || *req.Timezone == "" {
			return nil, apperr.Validation("timezone", "unknown time zone")
		}
		user.Timezone = *req.Timezone
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, mapStoreErr(err, "user", userID)
	}

	s.publish(ctx, userID, events.UserProfileUpdated, map[string]interface{}{
		"user_id": userID,
		"name":    user.Name,
		"locale":  user.Locale,
	})
	if user.Locale != previousLocale {
		s.publish(ctx, userID, events.UserLocaleChanged, map[string]interface{}{
			"user_id":  userID,
			"locale":   user.Locale,
			"previous": previousLocale,
		})
	}
	return user, nil
}

// SetLocale switches the user's locale. The change is broadcast to all of the
// user's open sessions.
func (s *Service) SetLocale(ctx context.Context, userID, locale string) (*models.User, error) {
	return s.UpdateProfile(ctx, userID, &UpdateProfileRequest{Locale: &locale})
}

// CanonicalLocale validates a BCP 47 tag and returns its canonical form.
func CanonicalLocale(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperr.Validation("locale", "must not be blank")
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", apperr.Validation("locale", "not a valid language tag")
	}
	return tag.String(), nil
}

func (s *Service) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	prefs, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, mapStoreErr(err, "user", userID)
	}
	return prefs, nil
}

func (s *Service) UpdatePreferences(ctx context.Context, userID string, req *UpdatePreferencesRequest) (*models.Preferences, error) {
	if req.Theme != nil && !validThemes[*req.Theme] {
		return nil, apperr.Validation("theme", "must be one of light, dark, system")
	}
	var favorites []models.FavoriteTool
	if req.FavoriteTools != nil {
		var err error
		if favorites, err = normalizeFavorites(*req.FavoriteTools); err != nil {
			return nil, err
		}
	}

	prefs, err := s.repo.UpdatePreferences(ctx, userID, func(p *models.Preferences) error {
		if req.Theme != nil {
			p.Theme = *req.Theme
		}
		if req.EmailNotifications != nil {
			p.EmailNotifications = *req.EmailNotifications
		}
		if req.PushNotifications != nil {
			p.PushNotifications = *req.PushNotifications
		}
		if req.FavoriteTools != nil {
			p.FavoriteTools = favorites
		}
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err, "user", userID)
	}

	s.publish(ctx, userID, events.UserPreferencesUpdated, map[string]interface{}{
		"user_id":    userID,
		"theme":      prefs.Theme,
		"updated_at": prefs.UpdatedAt.Format(time.RFC3339),
	})
	return prefs, nil
}

// normalizeFavorites drops duplicate tool ids (first wins) and renumbers
// positions in the order given.
func normalizeFavorites(in []models.FavoriteTool) ([]models.FavoriteTool, error) {
	sorted := make([]models.FavoriteTool, len(in))
	copy(sorted, in)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	seen := make(map[string]bool, len(sorted))
	out := make([]models.FavoriteTool, 0, len(sorted))
	for _, tool := range sorted {
		id := strings.TrimSpace(tool.ToolID)
		if id == "" {
			return nil, apperr.Validation("favorite_tools", "tool_id must not be blank")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		tool.ToolID = id
		tool.Position = len(out)
		out = append(out, tool)
	}
	return out, nil
}

func (s *Service) ListDeviceTokens(ctx context.Context, userID string) ([]models.DeviceToken, error) {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	return prefs.DeviceTokens, nil
}

// RegisterDeviceToken adds a push token, or refreshes it when already registered.
func (s *Service) RegisterDeviceToken(ctx context.Context, userID string, req *RegisterDeviceTokenRequest) (*models.DeviceToken, error) {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return nil, apperr.Validation("token", "must not be blank")
	}
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if !validPlatforms[platform] {
		return nil, apperr.Validation("platform", "must be one of ios, android, web")
	}

	now := time.Now().UTC()
	var stored models.DeviceToken
	_, err := s.repo.UpdatePreferences(ctx, userID, func(p *models.Preferences) error {
		for i := range p.DeviceTokens {
			if p.DeviceTokens[i].Token == token {
				p.DeviceTokens[i].Platform = platform
				p.DeviceTokens[i].DeviceName = req.DeviceName
				p.DeviceTokens[i].LastSeenAt = now
				stored = p.DeviceTokens[i]
				return nil
			}
		}
		stored = models.DeviceToken{
			Token:      token,
			Platform:   platform,
			DeviceName: req.DeviceName,
			CreatedAt:  now,
			LastSeenAt: now,
		}
		p.DeviceTokens = append(p.DeviceTokens, stored)
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err, "user", userID)
	}
	return &stored, nil
}

func (s *Service) RemoveDeviceToken(ctx context.Context, userID, token string) error {
	if strings.TrimSpace(token) == "" {
		return apperr.Validation("token", "must not be blank")
	}
	_, err := s.repo.UpdatePreferences(ctx, userID, func(p *models.Preferences) error {
		for i := range p.DeviceTokens {
			if p.DeviceTokens[i].Token == token {
				p.DeviceTokens = append(p.DeviceTokens[:i], p.DeviceTokens[i+1:]...)
				return nil
			}
		}
		return apperr.NotFound("device token", "")
	})
	return mapStoreErr(err, "user", userID)
}

func (s *Service) GetOrganization(ctx context.Context, userID string) (*models.Organization, error) {
	org, err := s.repo.GetOrganizationByOwner(ctx, userID)
	if err != nil {
		return nil, mapStoreErr(err, "organization", "")
	}
	return org, nil
}

// UpsertOrganization creates the user's organization on first write and
// replaces its fields afterwards.
func (s *Service) UpsertOrganization(ctx context.Context, userID string, req *UpsertOrganizationRequest) (*models.Organization, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("name", "must not be blank")
	}
	org := &models.Organization{
		ID:       uuid.New().String(),
		OwnerID:  userID,
		Name:     name,
		Industry: strings.TrimSpace(req.Industry),
		Size:     strings.TrimSpace(req.Size),
		Address:  strings.TrimSpace(req.Address),
		Website:  strings.TrimSpace(req.Website),
	}
	if existing, err := s.repo.GetOrganizationByOwner(ctx, userID); err == nil {
		org.CreatedAt = existing.CreatedAt
	}
	if err := s.repo.UpsertOrganization(ctx, org); err != nil {
		return nil, fmt.Errorf("save organization: %w", err)
	}
	return org, nil
}

func (s *Service) publish(ctx context.Context, userID, eventType string, data map[string]interface{}) {
	if s.eventBus == nil {
		return
	}
	subject := events.UserSubject(userID, eventType)
	if err := s.eventBus.Publish(ctx, subject, bus.NewEvent(eventType, events.SourceUser, data)); err != nil {
		s.logger.Error("failed to publish user event", zap.String("event_type", eventType), zap.Error(err))
	}
}

func mapStoreErr(err error, resource, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(resource, id)
	}
	return err
}
