package dto

import (
	"time"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/models"
)

type ProfileDTO struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	JobTitle       string    `json:"jobTitle"`
	Locale         string    `json:"locale"`
	Timezone       string    `json:"timezone"`
	AvatarURL      string    `json:"avatarUrl"`
	OrganizationID string    `json:"organizationId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type ProfileResponse struct {
	Profile ProfileDTO `json:"profile"`
}

type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	JobTitle  *string `json:"jobTitle,omitempty"`
	Locale    *string `json:"locale,omitempty"`
	Timezone  *string `json:"timezone,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

type FavoriteToolDTO struct {
	ToolID   string `json:"toolId"`
	Label    string `json:"label"`
	Position int    `json:"position"`
}

// PreferencesDTO omits dashboards and device tokens, which have their own endpoints.
type PreferencesDTO struct {
	Theme              string            `json:"theme"`
	EmailNotifications bool              `json:"emailNotifications"`
	PushNotifications  bool              `json:"pushNotifications"`
	FavoriteTools      []FavoriteToolDTO `json:"favoriteTools"`
	DashboardCount     int               `json:"dashboardCount"`
	UpdatedAt          *time.Time        `json:"updatedAt,omitempty"`
}

type PreferencesResponse struct {
	Preferences PreferencesDTO `json:"preferences"`
}

type UpdatePreferencesRequest struct {
	Theme              *string            `json:"theme,omitempty"`
	EmailNotifications *bool              `json:"emailNotifications,omitempty"`
	PushNotifications  *bool              `json:"pushNotifications,omitempty"`
	FavoriteTools      *[]FavoriteToolDTO `json:"favoriteTools,omitempty"`
}

type DeviceTokenDTO struct {
	Token      string    `json:"token"`
	Platform   string    `json:"platform"`
	DeviceName string    `json:"deviceName"`
	CreatedAt  time.Time `json:"createdAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

type DeviceTokensResponse struct {
	Tokens []DeviceTokenDTO `json:"tokens"`
	Total  int              `json:"total"`
}

type RegisterDeviceTokenRequest struct {
	Token      string `json:"token"`
	Platform   string `json:"platform"`
	DeviceName string `json:"deviceName"`
}

type DeviceTokenResponse struct {
	Token DeviceTokenDTO `json:"token"`
}

type OrganizationDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Industry  string    `json:"industry"`
	Size      string    `json:"size"`
	Address   string    `json:"address"`
	Website   string    `json:"website"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type OrganizationResponse struct {
	Organization OrganizationDTO `json:"organization"`
}

type UpsertOrganizationRequest struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Size     string `json:"size"`
	Address  string `json:"address"`
	Website  string `json:"website"`
}

type SetLocaleRequest struct {
	Locale string `json:"locale"`
}

type SetLocaleResponse struct {
	Locale string `json:"locale"`
}

func FromUser(u *models.User) ProfileDTO {
	return ProfileDTO{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Phone:          u.Phone,
		JobTitle:       u.JobTitle,
		Locale:         u.Locale,
		Timezone:       u.Timezone,
		AvatarURL:      u.AvatarURL,
		OrganizationID: u.OrganizationID,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func FromPreferences(p *models.Preferences) PreferencesDTO {
	out := PreferencesDTO{
		Theme:              p.Theme,
		EmailNotifications: p.EmailNotifications,
		PushNotifications:  p.PushNotifications,
		FavoriteTools:      make([]FavoriteToolDTO, 0, len(p.FavoriteTools)),
		DashboardCount:     len(p.Dashboards),
	}
	for _, t := range p.FavoriteTools {
		out.FavoriteTools = append(out.FavoriteTools, FavoriteToolDTO(t))
	}
	if !p.UpdatedAt.IsZero() {
		updated := p.UpdatedAt
		out.UpdatedAt = &updated
	}
	return out
}

func ToFavoriteTools(in []FavoriteToolDTO) []models.FavoriteTool {
	out := make([]models.FavoriteTool, 0, len(in))
	for _, t := range in {
		out = append(out, models.FavoriteTool(t))
	}
	return out
}

func FromDeviceToken(t models.DeviceToken) DeviceTokenDTO {
	return DeviceTokenDTO(t)
}

func FromOrganization(o *models.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:        o.ID,
		Name:      o.Name,
		Industry:  o.Industry,
		Size:      o.Size,
		Address:   o.Address,
		Website:   o.Website,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
