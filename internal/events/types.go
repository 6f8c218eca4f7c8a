// Package events names the domain events BuildTrack publishes and builds
// the configured bus.
package events

import "fmt"

// Event types for user settings.
const (
	UserProfileUpdated     = "user.profile.updated"
	UserPreferencesUpdated = "user.preferences.updated"
	UserLocaleChanged      = "user.locale.changed"
)

// Event types for dashboards.
const (
	DashboardSaved   = "dashboard.saved"
	DashboardDeleted = "dashboard.deleted"
)

// Event types for projects and tasks.
const (
	ProjectCreated = "project.created"
	ProjectUpdated = "project.updated"
	ProjectDeleted = "project.deleted"
	TaskCreated    = "task.created"
	TaskUpdated    = "task.updated"
	TaskDeleted    = "task.deleted"
)

// Source names attached to published events.
const (
	SourceUser      = "user-service"
	SourceDashboard = "dashboard-service"
	SourceProject   = "project-service"
	SourceTask      = "task-service"
)

// UserSubject scopes an event type to one user, e.g. "user.u1.dashboard.saved".
// Per-user subjects let a NATS deployment route without decoding payloads.
func UserSubject(userID, eventType string) string {
	return fmt.Sprintf("user.%s.%s", userID, eventType)
}

// AllUserEvents matches every per-user subject.
const AllUserEvents = "user.*.>"
