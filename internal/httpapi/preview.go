package httpapi

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PassItOnLabs/widget_svc/internal/widgetcfg"
)

// PreviewHandlers serves the session-guarded preview surface used by the
// dashboard. Preview resolves regardless of active flags so operators can see
// a widget exactly as it would render before flipping it on.
type PreviewHandlers struct {
	logger   *zap.Logger
	resolver *widgetcfg.Resolver
}

// NewPreviewHandlers constructs PreviewHandlers.
func NewPreviewHandlers(logger *zap.Logger, resolver *widgetcfg.Resolver) *PreviewHandlers {
	return &PreviewHandlers{logger: logger, resolver: resolver}
}

// WidgetPreviewPage handles GET /admin/widgets/preview/:slug.
func (h *PreviewHandlers) WidgetPreviewPage(context *gin.Context) {
	slug := strings.TrimSpace(context.Param("slug"))

	resolved, resolveErr := h.resolver.ResolveBySlugPreview(context.Request.Context(), slug)
	if resolveErr != nil {
		renderWidgetNotFound(context)
		return
	}

	renderWidgetPage(context, resolved, true)
}
