package models

import (
	"time"

	v1 "github.com/samatacc/buildtrack-pro-emer-test-sub004/pkg/api/v1"
)

type User struct {
	ID             string    `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	Name           string    `json:"name" db:"name"`
	Phone          string    `json:"phone" db:"phone"`
	JobTitle       string    `json:"job_title" db:"job_title"`
	Locale         string    `json:"locale" db:"locale"`
	Timezone       string    `json:"timezone" db:"timezone"`
	AvatarURL      string    `json:"avatar_url" db:"avatar_url"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Preferences is stored as one JSON document on the user row.
type Preferences struct {
	Theme              string         `json:"theme"`
	EmailNotifications bool           `json:"email_notifications"`
	PushNotifications  bool           `json:"push_notifications"`
	Dashboards         []v1.Dashboard `json:"dashboards"`
	DeviceTokens       []DeviceToken  `json:"device_tokens"`
	FavoriteTools      []FavoriteTool `json:"favorite_tools"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Normalize replaces null arrays so they encode as [].
func (p *Preferences) Normalize() {
	if p.Dashboards == nil {
		p.Dashboards = []v1.Dashboard{}
	}
	if p.DeviceTokens == nil {
		p.DeviceTokens = []DeviceToken{}
	}
	if p.FavoriteTools == nil {
		p.FavoriteTools = []FavoriteTool{}
	}
}

// DefaultPreferences is what a user without a stored document sees.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:              "system",
		EmailNotifications: true,
		PushNotifications:  true,
		Dashboards:         []v1.Dashboard{},
		DeviceTokens:       []DeviceToken{},
		FavoriteTools:      []FavoriteTool{},
	}
}

type DeviceToken struct {
	Token      string    `json:"token"`
	Platform   string    `json:"platform"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

type FavoriteTool struct {
	ToolID   string `json:"tool_id"`
	Label    string `json:"label"`
	Position int    `json:"position"`
}

type Organization struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	Industry  string    `json:"industry" db:"industry"`
	Size      string    `json:"size" db:"size"`
	Address   string    `json:"address" db:"address"`
	Website   string    `json:"website" db:"website"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
