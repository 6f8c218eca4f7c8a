// Package v1 holds the JSON types shared by the API server and pkg/client.
package v1

import "time"

// Breakpoint names a responsive grid width class.
type Breakpoint string

const (
	BreakpointLG  Breakpoint = "lg"
	BreakpointMD  Breakpoint = "md"
	BreakpointSM  Breakpoint = "sm"
	BreakpointXS  Breakpoint = "xs"
	BreakpointXXS Breakpoint = "xxs"
)

// Breakpoints lists every breakpoint from widest to narrowest.
var Breakpoints = []Breakpoint{BreakpointLG, BreakpointMD, BreakpointSM, BreakpointXS, BreakpointXXS}

// Valid reports whether b is a known breakpoint.
func (b Breakpoint) Valid() bool {
	for _, known := range Breakpoints {
		if b == known {
			return true
		}
	}
	return false
}

// LayoutItem is one widget's grid placement, as computed by the client's
// drag-and-drop grid. I is the widget instance id.
type LayoutItem struct {
	I      string `json:"i"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	W      int    `json:"w"`
	H      int    `json:"h"`
	MinW   int    `json:"minW,omitempty"`
	MinH   int    `json:"minH,omitempty"`
	MaxW   int    `json:"maxW,omitempty"`
	MaxH   int    `json:"maxH,omitempty"`
	Static bool   `json:"static,omitempty"`
}

// WidgetInstance places a catalog widget on a dashboard.
type WidgetInstance struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	Title    string                 `json:"title,omitempty"`
	Settings map[string]interface{} `json:"settings,omitempty"`
	Visible  bool                   `json:"visible"`
}

// Dashboard is a named collection of widget placements for one user. It is
// stored whole and overwritten whole.
type Dashboard struct {
	ID        string                      `json:"id"`
	Name      string                      `json:"name"`
	IsDefault bool                        `json:"isDefault"`
	Widgets   []WidgetInstance            `json:"widgets"`
	Layouts   map[Breakpoint][]LayoutItem `json:"layouts"`
	Revision  int64                       `json:"revision"`
	UpdatedAt *time.Time                  `json:"updatedAt,omitempty"`
}

// GetDashboardResponse is returned by GET /api/dashboard. Dashboard is null
// when nothing is stored under the requested id.
type GetDashboardResponse struct {
	Dashboard *Dashboard `json:"dashboard"`
}

// SaveDashboardRequest is the body of POST /api/dashboard. ExpectedRevision
// turns the save into a compare-and-swap.
type SaveDashboardRequest struct {
	Dashboard        *Dashboard `json:"dashboard"`
	ExpectedRevision *int64     `json:"expected_revision,omitempty"`
}

// SaveDashboardResponse echoes the stored dashboard with its new revision.
type SaveDashboardResponse struct {
	Dashboard *Dashboard `json:"dashboard"`
}

// ListDashboardsResponse is returned by GET /api/dashboards.
type ListDashboardsResponse struct {
	Dashboards []Dashboard `json:"dashboards"`
	Total      int         `json:"total"`
}

// WidgetDefinition describes a catalog widget type.
type WidgetDefinition struct {
	Type            string                 `json:"type" yaml:"type"`
	Title           string                 `json:"title" yaml:"title"`
	Description     string                 `json:"description" yaml:"description"`
	Category        string                 `json:"category" yaml:"category"`
	DefaultW        int                    `json:"defaultW" yaml:"default_w"`
	DefaultH        int                    `json:"defaultH" yaml:"default_h"`
	MinW            int                    `json:"minW" yaml:"min_w"`
	MinH            int                    `json:"minH" yaml:"min_h"`
	MaxW            int                    `json:"maxW,omitempty" yaml:"max_w"`
	MaxH            int                    `json:"maxH,omitempty" yaml:"max_h"`
	DefaultSettings map[string]interface{} `json:"defaultSettings,omitempty" yaml:"default_settings"`
}

// ListWidgetsResponse is returned by GET /api/widgets.
type ListWidgetsResponse struct {
	Widgets []WidgetDefinition `json:"widgets"`
	Total   int                `json:"total"`
}
