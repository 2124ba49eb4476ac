package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/temirov/GAuss/pkg/session"

	"github.com/PassItOnLabs/widget_svc/internal/httpapi"
	"github.com/PassItOnLabs/widget_svc/internal/storage"
	"github.com/PassItOnLabs/widget_svc/internal/testutil"
	"github.com/PassItOnLabs/widget_svc/internal/widgetcfg"
	"go.uber.org/zap"
)

func buildRegisteredRouter(testingT *testing.T) *gin.Engine {
	testingT.Helper()
	gin.SetMode(gin.TestMode)

	testDatabase := testutil.NewSQLiteTestDatabase(testingT)
	database, openErr := storage.OpenDatabase(testDatabase.Configuration())
	require.NoError(testingT, openErr)
	database = testutil.ConfigureDatabaseLogger(testingT, database)
	require.NoError(testingT, storage.AutoMigrate(database))

	logger := zap.NewNop()
	resolver := widgetcfg.NewResolver(database, logger, testPlaceholderPublicBaseURL)
	session.NewSession([]byte(testPlaceholderAdminBearerToken))
	authManager := httpapi.NewAuthManager(logger, nil)
	emailSender := httpapi.LoggingEmailSender{Logger: logger}
	donationNotifier := httpapi.NewDatabaseDonationNotifier(database, logger)

	publicHandlers := httpapi.NewPublicHandlers(database, logger, resolver, testPlaceholderPublicBaseURL)
	previewHandlers := httpapi.NewPreviewHandlers(logger, resolver)
	adminHandlers := httpapi.NewAdminHandlers(database, logger, resolver)
	invitationHandlers := httpapi.NewInvitationHandlers(database, logger, emailSender, testPlaceholderPublicBaseURL)
	notificationHandlers := httpapi.NewNotificationHandlers(database, logger)
	webhookHandlers := httpapi.NewWebhookHandlers(database, logger, donationNotifier)

	router := gin.New()
	registerPublicRoutes(router, publicHandlers, webhookHandlers, invitationHandlers)
	registerPreviewRoutes(router, authManager, previewHandlers)
	registerAdminRoutes(router, testPlaceholderAdminBearerToken, adminHandlers, invitationHandlers, notificationHandlers)
	return router
}

func TestRouteRegistrationCoversEverySurface(t *testing.T) {
	router := buildRegisteredRouter(t)

	registered := map[string]bool{}
	for _, routeInfo := range router.Routes() {
		registered[routeInfo.Method+" "+routeInfo.Path] = true
	}

	expectedRoutes := []string{
		"GET " + publicRouteWidgetConfig,
		"GET " + publicRouteWidgetPage,
		"GET " + publicRouteEmbedScript,
		"GET " + publicRouteEmbedMarkup,
		"POST " + publicRouteDonations,
		"POST " + publicRouteDonationWebhook,
		"POST " + publicRouteAcceptInvite,
		"GET " + publicRouteAcceptInvitePage,
		"OPTIONS " + publicRouteDonations,
		"GET " + previewRouteWidget,
		"POST " + adminRoutePrefix + adminRouteOrganizations,
		"GET " + adminRoutePrefix + adminRouteOrganizations,
		"GET " + adminRoutePrefix + adminRouteOrganizationByID,
		"PATCH " + adminRoutePrefix + adminRouteOrganizationByID,
		"GET " + adminRoutePrefix + adminRouteOrganizationWidget,
		"POST " + adminRoutePrefix + adminRouteWidgets,
		"GET " + adminRoutePrefix + adminRouteWidgets,
		"PATCH " + adminRoutePrefix + adminRouteWidgetByID,
		"GET " + adminRoutePrefix + adminRouteWidgetCauses,
		"GET " + adminRoutePrefix + adminRouteWidgetDonations,
		"GET " + adminRoutePrefix + adminRouteWidgetConfigBySlug,
		"POST " + adminRoutePrefix + adminRouteCauses,
		"PATCH " + adminRoutePrefix + adminRouteCauseByID,
		"DELETE " + adminRoutePrefix + adminRouteCauseByID,
		"POST " + adminRoutePrefix + adminRouteInvitations,
		"GET " + adminRoutePrefix + adminRouteOrganizationInvites,
		"GET " + adminRoutePrefix + adminRouteOrganizationAlerts,
		"POST " + adminRoutePrefix + adminRouteNotificationRead,
		"GET " + adminRoutePrefix + adminRouteOrganizationPreferences,
		"PUT " + adminRoutePrefix + adminRouteOrganizationPreferences,
	}

	for _, expectedRoute := range expectedRoutes {
		require.True(t, registered[expectedRoute], "route %s not registered", expectedRoute)
	}
}

func TestPublicRoutesAnswerCrossOriginPreflight(t *testing.T) {
	router := buildRegisteredRouter(t)

	preflightTargets := []struct {
		path   string
		method string
	}{
		{path: "/widget-config/org-1", method: http.MethodGet},
		{path: "/api/widget/some-slug/donations", method: http.MethodPost},
		{path: "/api/webhooks/donations", method: http.MethodPost},
	}

	for _, target := range preflightTargets {
		request := httptest.NewRequest(http.MethodOptions, target.path, nil)
		request.Header.Set("Origin", "https://thirdparty.example.org")
		request.Header.Set("Access-Control-Request-Method", target.method)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusNoContent, recorder.Code, "preflight %s", target.path)
		require.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"), "preflight %s", target.path)
		require.Contains(t, recorder.Header().Get("Access-Control-Allow-Methods"), target.method, "preflight %s", target.path)
	}
}

func TestPreviewRouteStaysOutsidePublicCORS(t *testing.T) {
	router := buildRegisteredRouter(t)

	request := httptest.NewRequest(http.MethodOptions, "/admin/widgets/preview/some-slug", nil)
	request.Header.Set("Origin", "https://thirdparty.example.org")
	request.Header.Set("Access-Control-Request-Method", http.MethodGet)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}
