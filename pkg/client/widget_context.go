package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	v1 "github.com/samatacc/buildtrack-pro-emer-test-sub004/pkg/api/v1"
)

var ErrWidgetNotFound = errors.New("widget not found")

// WidgetContext mirrors one server dashboard. Mutations apply to local state
// first and then POST the whole dashboard. A failed POST is not rolled back:
// local state stays ahead of the server, Dirty reports true, and Sync pushes
// it again.
type WidgetContext struct {
	client      *Client
	dashboardID string
	useRevision bool

	// syncMu keeps one save in flight so each carries the revision the
	// previous one returned.
	syncMu sync.Mutex

	mu          sync.Mutex
	dashboard   v1.Dashboard
	definitions map[string]v1.WidgetDefinition
	version     uint64
	synced      uint64
}

type ContextOption func(*WidgetContext)

// WithCompareAndSwap sends the last known revision with every save, so a
// concurrent writer yields a conflict error instead of being overwritten.
func WithCompareAndSwap() ContextOption {
	return func(w *WidgetContext) { w.useRevision = true }
}

func NewWidgetContext(c *Client, dashboardID string, opts ...ContextOption) *WidgetContext {
	w := &WidgetContext{
		client:      c,
		dashboardID: dashboardID,
		dashboard:   emptyDashboard(dashboardID),
		definitions: make(map[string]v1.WidgetDefinition),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func emptyDashboard(id string) v1.Dashboard {
	return v1.Dashboard{
		ID:      id,
		Name:    id,
		Widgets: []v1.WidgetInstance{},
		Layouts: map[v1.Breakpoint][]v1.LayoutItem{},
	}
}

// Load replaces local state with the server's copy, or with an empty
// dashboard when the server has none.
func (w *WidgetContext) Load(ctx context.Context) error {
	d, err := w.client.GetDashboard(ctx, w.dashboardID)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if d == nil {
		w.dashboard = emptyDashboard(w.dashboardID)
	} else {
		w.dashboard = cloneDashboard(*d)
		if w.dashboard.Layouts == nil {
			w.dashboard.Layouts = map[v1.Breakpoint][]v1.LayoutItem{}
		}
	}
	w.synced = w.version
	return nil
}

// Dashboard returns a copy of the local state.
func (w *WidgetContext) Dashboard() v1.Dashboard {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneDashboard(w.dashboard)
}

// Dirty reports whether local state has changes the server has not stored.
func (w *WidgetContext) Dirty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.version != w.synced
}

// AddWidget appends a widget of the given catalog type and places it at the
// bottom of every breakpoint's layout with the catalog default size.
func (w *WidgetContext) AddWidget(ctx context.Context, widgetType string, settings map[string]interface{}) (v1.WidgetInstance, error) {
	def, err := w.definition(ctx, widgetType)
	if err != nil {
		return v1.WidgetInstance{}, err
	}

	merged := make(map[string]interface{}, len(def.DefaultSettings)+len(settings))
	for k, v := range def.DefaultSettings {
		merged[k] = v
	}
	for k, v := range settings {
		merged[k] = v
	}
	widget := v1.WidgetInstance{
		ID:       uuid.New().String(),
		Type:     widgetType,
		Title:    def.Title,
		Settings: merged,
		Visible:  true,
	}

	w.mu.Lock()
	w.dashboard.Widgets = append(w.dashboard.Widgets, widget)
	for _, bp := range v1.Breakpoints {
		items := w.dashboard.Layouts[bp]
		w.dashboard.Layouts[bp] = append(items, v1.LayoutItem{
			I:    widget.ID,
			X:    0,
			Y:    bottom(items),
			W:    def.DefaultW,
			H:    def.DefaultH,
			MinW: def.MinW,
			MinH: def.MinH,
			MaxW: def.MaxW,
			MaxH: def.MaxH,
		})
	}
	w.version++
	w.mu.Unlock()

	return widget, w.Sync(ctx)
}

// RemoveWidget drops the widget and its placements.
func (w *WidgetContext) RemoveWidget(ctx context.Context, widgetID string) error {
	w.mu.Lock()
	idx := -1
	for i, widget := range w.dashboard.Widgets {
		if widget.ID == widgetID {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWidgetNotFound, widgetID)
	}
	w.dashboard.Widgets = append(w.dashboard.Widgets[:idx:idx], w.dashboard.Widgets[idx+1:]...)
	for bp, items := range w.dashboard.Layouts {
		kept := make([]v1.LayoutItem, 0, len(items))
		for _, item := range items {
			if item.I != widgetID {
				kept = append(kept, item)
			}
		}
		w.dashboard.Layouts[bp] = kept
	}
	w.version++
	w.mu.Unlock()

	return w.Sync(ctx)
}

// UpdateWidgetLayout stores the grid's computed placements for one
// breakpoint as given.
func (w *WidgetContext) UpdateWidgetLayout(ctx context.Context, bp v1.Breakpoint, items []v1.LayoutItem) error {
	if !bp.Valid() {
		return fmt.Errorf("unknown breakpoint %q", bp)
	}
	w.mu.Lock()
	placed := make([]v1.LayoutItem, len(items))
	copy(placed, items)
	w.dashboard.Layouts[bp] = placed
	w.version++
	w.mu.Unlock()

	return w.Sync(ctx)
}

// Sync POSTs the current local state. On success the local revision follows
// the server's; on failure local state is left as is.
func (w *WidgetContext) Sync(ctx context.Context) error {
	w.syncMu.Lock()
	defer w.syncMu.Unlock()

	w.mu.Lock()
	snapshot := cloneDashboard(w.dashboard)
	version := w.version
	var expected *int64
	if w.useRevision {
		rev := w.dashboard.Revision
		expected = &rev
	}
	w.mu.Unlock()

	saved, err := w.client.SaveDashboard(ctx, &snapshot, expected)
	if err != nil {
		return fmt.Errorf("save dashboard %q: %w", w.dashboardID, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if saved != nil {
		w.dashboard.Revision = saved.Revision
		w.dashboard.UpdatedAt = saved.UpdatedAt
	}
	if version > w.synced {
		w.synced = version
	}
	return nil
}

func (w *WidgetContext) definition(ctx context.Context, widgetType string) (v1.WidgetDefinition, error) {
	w.mu.Lock()
	def, ok := w.definitions[widgetType]
	w.mu.Unlock()
	if ok {
		return def, nil
	}
	fetched, err := w.client.GetWidget(ctx, widgetType)
	if err != nil {
		return v1.WidgetDefinition{}, fmt.Errorf("widget type %q: %w", widgetType, err)
	}
	w.mu.Lock()
	w.definitions[widgetType] = *fetched
	w.mu.Unlock()
	return *fetched, nil
}

func bottom(items []v1.LayoutItem) int {
	y := 0
	for _, item := range items {
		if end := item.Y + item.H; end > y {
			y = end
		}
	}
	return y
}

func cloneDashboard(d v1.Dashboard) v1.Dashboard {
	out := d
	out.Widgets = make([]v1.WidgetInstance, len(d.Widgets))
	for i, widget := range d.Widgets {
		out.Widgets[i] = widget
		if widget.Settings != nil {
			settings := make(map[string]interface{}, len(widget.Settings))
			for k, v := range widget.Settings {
				settings[k] = v
			}
			out.Widgets[i].Settings = settings
		}
	}
	if d.Layouts != nil {
		out.Layouts = make(map[v1.Breakpoint][]v1.LayoutItem, len(d.Layouts))
		for bp, items := range d.Layouts {
			copied := make([]v1.LayoutItem, len(items))
			copy(copied, items)
			out.Layouts[bp] = copied
		}
	}
	if d.UpdatedAt != nil {
		t := *d.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}
