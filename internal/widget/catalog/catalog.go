// Package catalog loads the widget types a dashboard may contain.
package catalog

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	v1 "github.com/samatacc/buildtrack-pro-emer-test-sub004/pkg/api/v1"
)

//go:embed catalog.yaml
var catalogFS embed.FS

type file struct {
	Widgets []v1.WidgetDefinition `yaml:"widgets"`
}

// Catalog is an immutable, ordered set of widget definitions.
type Catalog struct {
	widgets []v1.WidgetDefinition
	byType  map[string]int
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		data, err := catalogFS.ReadFile("catalog.yaml")
		if err != nil {
			defaultErr = fmt.Errorf("read widget catalog: %w", err)
			return
		}
		defaultCatalog, defaultErr = Parse(data)
	})
	return defaultCatalog, defaultErr
}

// Parse decodes a YAML catalog. Types must be unique and sizes sane.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse widget catalog: %w", err)
	}
	c := &Catalog{byType: make(map[string]int, len(f.Widgets))}
	for _, w := range f.Widgets {
		if w.Type == "" {
			return nil, fmt.Errorf("widget catalog: entry without type")
		}
		if _, dup := c.byType[w.Type]; dup {
			return nil, fmt.Errorf("widget catalog: duplicate type %q", w.Type)
		}
		if w.DefaultW < w.MinW || w.DefaultH < w.MinH {
			return nil, fmt.Errorf("widget catalog: %s default size below minimum", w.Type)
		}
		if (w.MaxW > 0 && w.DefaultW > w.MaxW) || (w.MaxH > 0 && w.DefaultH > w.MaxH) {
			return nil, fmt.Errorf("widget catalog: %s default size above maximum", w.Type)
		}
		c.byType[w.Type] = len(c.widgets)
		c.widgets = append(c.widgets, w)
	}
	return c, nil
}

// List returns the definitions in catalog order. The slice is a copy.
func (c *Catalog) List() []v1.WidgetDefinition {
	out := make([]v1.WidgetDefinition, len(c.widgets))
	copy(out, c.widgets)
	return out
}

func (c *Catalog) Get(widgetType string) (v1.WidgetDefinition, bool) {
	i, ok := c.byType[widgetType]
	if !ok {
		return v1.WidgetDefinition{}, false
	}
	return c.widgets[i], true
}

// Filter returns the definitions in one category.
func (c *Catalog) Filter(category string) []v1.WidgetDefinition {
	var out []v1.WidgetDefinition
	for _, w := range c.widgets {
		if w.Category == category {
			out = append(out, w)
		}
	}
	return out
}
