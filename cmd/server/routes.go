package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/PassItOnLabs/widget_svc/internal/httpapi"
)

const (
	publicRouteWidgetConfig    = "/widget-config/:orgId"
	publicRouteWidgetPage      = "/widget/:slug"
	publicRouteEmbedScript     = "/embed/passiton-embed.js"
	publicRouteEmbedMarkup     = "/embed/markup"
	publicRouteDonations        = "/api/widget/:slug/donations"
	publicRouteDonationWebhook  = "/api/webhooks/donations"
	publicRouteAcceptInvite     = "/api/invitations/accept"
	publicRouteAcceptInvitePage = "/invitations/accept"

	previewLandingPath = "/admin/widgets"
	previewRouteWidget = "/admin/widgets/preview/:slug"

	adminRoutePrefix                  = "/api/admin"
	adminRouteOrganizations           = "/organizations"
	adminRouteOrganizationByID        = "/organizations/:orgId"
	adminRouteOrganizationWidget      = "/organizations/:orgId/widget"
	adminRouteOrganizationInvites     = "/organizations/:orgId/invitations"
	adminRouteOrganizationAlerts      = "/organizations/:orgId/notifications"
	adminRouteOrganizationPreferences = "/organizations/:orgId/notification-preferences"
	adminRouteWidgets                 = "/widgets"
	adminRouteWidgetByID              = "/widgets/:widgetId"
	adminRouteWidgetCauses            = "/widgets/:widgetId/causes"
	adminRouteWidgetDonations         = "/widgets/:widgetId/donations"
	adminRouteWidgetConfigBySlug      = "/widgets/by-slug/:slug/config"
	adminRouteCauses                  = "/causes"
	adminRouteCauseByID               = "/causes/:causeId"
	adminRouteInvitations             = "/invitations"
	adminRouteNotificationRead        = "/notifications/:notificationId/read"

	corsOriginWildcard      = "*"
	corsHeaderAuthorization = "Authorization"
	corsHeaderContentType   = "Content-Type"
	httpMethodGet           = "GET"
	httpMethodOptions       = "OPTIONS"
	httpMethodPost          = "POST"
)

var (
	corsAllowedMethods = []string{httpMethodPost, httpMethodGet, httpMethodOptions}
	corsAllowedHeaders = []string{corsHeaderAuthorization, corsHeaderContentType}
	corsExposedHeaders = []string{corsHeaderContentType}
	corsAllowOrigins   = []string{corsOriginWildcard}
)

// registerPublicRoutes wires the embed-facing surface. Wildcard CORS with an
// OPTIONS preflight is mandatory here: the resolver endpoint and donation
// submission are called from arbitrary third-party origins.
func registerPublicRoutes(
	router *gin.Engine,
	publicHandlers *httpapi.PublicHandlers,
	webhookHandlers *httpapi.WebhookHandlers,
	invitationHandlers *httpapi.InvitationHandlers,
) {
	publicCORS := cors.New(cors.Config{
		AllowOrigins:     corsAllowOrigins,
		AllowMethods:     corsAllowedMethods,
		AllowHeaders:     corsAllowedHeaders,
		ExposeHeaders:    corsExposedHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})

	publicGroup := router.Group("/")
	publicGroup.Use(publicCORS)
	publicGroup.GET(publicRouteWidgetConfig, publicHandlers.WidgetConfig)
	publicGroup.GET(publicRouteWidgetPage, publicHandlers.WidgetPage)
	publicGroup.GET(publicRouteEmbedScript, publicHandlers.EmbedScript)
	publicGroup.GET(publicRouteEmbedMarkup, publicHandlers.EmbedMarkup)
	publicGroup.POST(publicRouteDonations, publicHandlers.SubmitDonation)
	publicGroup.POST(publicRouteDonationWebhook, webhookHandlers.DonationEvent)
	publicGroup.POST(publicRouteAcceptInvite, invitationHandlers.AcceptInvitation)
	publicGroup.GET(publicRouteAcceptInvitePage, invitationHandlers.AcceptInvitationPage)

	// Group middleware only runs for registered routes; an unmatched OPTIONS
	// request falls through to the NoRoute chain and never reaches the CORS
	// handler. Every public route therefore gets an explicit OPTIONS
	// registration for the preflight to land on.
	for _, preflightPath := range []string{
		publicRouteWidgetConfig,
		publicRouteWidgetPage,
		publicRouteEmbedScript,
		publicRouteEmbedMarkup,
		publicRouteDonations,
		publicRouteDonationWebhook,
		publicRouteAcceptInvite,
		publicRouteAcceptInvitePage,
	} {
		publicGroup.OPTIONS(preflightPath, answerPreflight)
	}
}

// answerPreflight terminates OPTIONS requests that the CORS middleware did not
// already answer (same-origin requests without an Origin header).
func answerPreflight(context *gin.Context) {
	context.Status(http.StatusNoContent)
}

// registerPreviewRoutes wires the session-guarded preview surface. The preview
// spans every organization, so it is restricted to the configured admin emails
// rather than any Google-authenticated visitor.
func registerPreviewRoutes(
	router *gin.Engine,
	authManager *httpapi.AuthManager,
	previewHandlers *httpapi.PreviewHandlers,
) {
	router.GET(previewRouteWidget, authManager.RequireAdminWeb(), previewHandlers.WidgetPreviewPage)
}

// registerAdminRoutes wires the bearer-guarded JSON API.
func registerAdminRoutes(
	router *gin.Engine,
	adminBearerToken string,
	adminHandlers *httpapi.AdminHandlers,
	invitationHandlers *httpapi.InvitationHandlers,
	notificationHandlers *httpapi.NotificationHandlers,
) {
	adminGroup := router.Group(adminRoutePrefix)
	adminGroup.Use(httpapi.AdminAuthMiddleware(adminBearerToken))

	adminGroup.POST(adminRouteOrganizations, adminHandlers.CreateOrganization)
	adminGroup.GET(adminRouteOrganizations, adminHandlers.ListOrganizations)
	adminGroup.GET(adminRouteOrganizationByID, adminHandlers.GetOrganization)
	adminGroup.PATCH(adminRouteOrganizationByID, adminHandlers.UpdateOrganization)
	adminGroup.GET(adminRouteOrganizationWidget, adminHandlers.GetOrganizationWidget)

	adminGroup.POST(adminRouteWidgets, adminHandlers.CreateWidget)
	adminGroup.GET(adminRouteWidgets, adminHandlers.ListWidgets)
	adminGroup.PATCH(adminRouteWidgetByID, adminHandlers.UpdateWidget)
	adminGroup.GET(adminRouteWidgetCauses, adminHandlers.ListCauses)
	adminGroup.GET(adminRouteWidgetDonations, adminHandlers.ListDonations)
	adminGroup.GET(adminRouteWidgetConfigBySlug, adminHandlers.WidgetConfigBySlug)

	adminGroup.POST(adminRouteCauses, adminHandlers.CreateCause)
	adminGroup.PATCH(adminRouteCauseByID, adminHandlers.UpdateCause)
	adminGroup.DELETE(adminRouteCauseByID, adminHandlers.DeleteCause)

	adminGroup.POST(adminRouteInvitations, invitationHandlers.CreateInvitation)
	adminGroup.GET(adminRouteOrganizationInvites, invitationHandlers.ListInvitations)

	adminGroup.GET(adminRouteOrganizationAlerts, notificationHandlers.ListNotifications)
	adminGroup.POST(adminRouteNotificationRead, notificationHandlers.MarkNotificationRead)
	adminGroup.GET(adminRouteOrganizationPreferences, notificationHandlers.GetPreferences)
	adminGroup.PUT(adminRouteOrganizationPreferences, notificationHandlers.UpdatePreferences)
}
