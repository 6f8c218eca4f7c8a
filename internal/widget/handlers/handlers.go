package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/apperr"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/httpmw"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/widget/catalog"
	v1 "github.com/samatacc/buildtrack-pro-emer-test-sub004/pkg/api/v1"
)

type Handlers struct {
	catalog *catalog.Catalog
}

// RegisterRoutes mounts GET /widgets (optionally ?category=) and GET /widgets/:type.
func RegisterRoutes(api gin.IRoutes, c *catalog.Catalog) {
	h := &Handlers{catalog: c}
	api.GET("/widgets", h.httpListWidgets)
	api.GET("/widgets/:type", h.httpGetWidget)
}

func (h *Handlers) httpListWidgets(c *gin.Context) {
	var list []v1.WidgetDefinition
	if category := c.Query("category"); category != "" {
		list = h.catalog.Filter(category)
	} else {
		list = h.catalog.List()
	}
	if list == nil {
		list = []v1.WidgetDefinition{}
	}
	c.JSON(http.StatusOK, v1.ListWidgetsResponse{Widgets: list, Total: len(list)})
}

func (h *Handlers) httpGetWidget(c *gin.Context) {
	w, ok := h.catalog.Get(c.Param("type"))
	if !ok {
		httpmw.Abort(c, http.StatusNotFound, apperr.CodeNotFound, "widget type not found")
		return
	}
	c.JSON(http.StatusOK, w)
}
