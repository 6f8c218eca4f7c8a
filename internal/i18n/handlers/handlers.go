package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/httpmw"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/i18n"
)

type Handlers struct {
	loader *i18n.Loader
	logger *logger.Logger
}

type MessagesResponse struct {
	Locale    string        `json:"locale"`
	Namespace string        `json:"namespace"`
	Messages  i18n.Messages `json:"messages"`
}

type LocalesResponse struct {
	Locales []string `json:"locales"`
	Default string   `json:"default"`
}

// RegisterRoutes mounts the read-only translation routes. They need no session.
func RegisterRoutes(api gin.IRoutes, loader *i18n.Loader, log *logger.Logger) {
	h := &Handlers{loader: loader, logger: log.WithFields(zap.String("component", "i18n-handlers"))}
	api.GET("/i18n/locales", h.httpListLocales)
	api.GET("/i18n/:locale/:namespace", h.httpGetMessages)
}

func (h *Handlers) httpGetMessages(c *gin.Context) {
	locale, namespace := c.Param("locale"), c.Param("namespace")
	msgs, err := h.loader.LoadNamespaceMessages(c.Request.Context(), locale, namespace)
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "load translations")
		return
	}
	c.JSON(http.StatusOK, MessagesResponse{Locale: locale, Namespace: namespace, Messages: msgs})
}

func (h *Handlers) httpListLocales(c *gin.Context) {
	locales, err := h.loader.Locales(c.Request.Context())
	if err != nil {
		httpmw.RespondError(c, h.logger, err, "list locales")
		return
	}
	c.JSON(http.StatusOK, LocalesResponse{Locales: locales, Default: h.loader.DefaultLocale()})
}
