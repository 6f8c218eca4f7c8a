package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 12)
	assert.Equal(t, "active_projects", list[0].Type)

	w, ok := c.Get("weather")
	require.True(t, ok)
	assert.Equal(t, 3, w.DefaultW)
	assert.Equal(t, 6, w.MaxW)
	assert.Equal(t, "metric", w.DefaultSettings["units"])

	_, ok = c.Get("stock_ticker")
	assert.False(t, ok)

	assert.Len(t, c.Filter("tasks"), 2)
}

func TestListReturnsCopy(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	list := c.List()
	list[0].Title = "changed"
	assert.Equal(t, "Active Projects", c.List()[0].Title)
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	tests := map[string]string{
		"missing type": "widgets:\n  - title: x\n",
		"duplicate":    "widgets:\n  - type: a\n  - type: a\n",
		"below min":    "widgets:\n  - type: a\n    default_w: 1\n    min_w: 2\n",
		"above max":    "widgets:\n  - type: a\n    default_h: 5\n    max_h: 4\n",
		"not yaml":     "widgets: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}
