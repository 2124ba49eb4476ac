package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PassItOnLabs/widget_svc/internal/httpapi"
	"github.com/PassItOnLabs/widget_svc/internal/model"
	"github.com/PassItOnLabs/widget_svc/internal/storage"
	"github.com/PassItOnLabs/widget_svc/internal/testutil"
	"github.com/PassItOnLabs/widget_svc/internal/widgetcfg"
)

const (
	testPublicBaseURL    = "https://widgets.example.com"
	testAdminBearerToken = "test-admin-token"
)

type sentEmail struct {
	recipient string
	subject   string
	message   string
}

type recordingEmailSender struct {
	sent []sentEmail
}

func (sender *recordingEmailSender) SendEmail(_ context.Context, recipient string, subject string, message string) error {
	sender.sent = append(sender.sent, sentEmail{recipient: recipient, subject: subject, message: message})
	return nil
}

type apiHarness struct {
	router     *gin.Engine
	database   *gorm.DB
	resolver   *widgetcfg.Resolver
	sentEmails *recordingEmailSender
}

func buildAPIHarness(testingT *testing.T) apiHarness {
	testingT.Helper()

	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	sqliteDatabase := testutil.NewSQLiteTestDatabase(testingT)
	database, openErr := storage.OpenDatabase(sqliteDatabase.Configuration())
	require.NoError(testingT, openErr)
	database = testutil.ConfigureDatabaseLogger(testingT, database)
	require.NoError(testingT, storage.AutoMigrate(database))

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(httpapi.RequestLogger(logger))

	resolver := widgetcfg.NewResolver(database, logger, testPublicBaseURL)
	donationNotifier := httpapi.NewDatabaseDonationNotifier(database, logger)
	emailRecorder := &recordingEmailSender{}

	publicHandlers := httpapi.NewPublicHandlers(database, logger, resolver, testPublicBaseURL)
	adminHandlers := httpapi.NewAdminHandlers(database, logger, resolver)
	invitationHandlers := httpapi.NewInvitationHandlers(database, logger, emailRecorder, testPublicBaseURL)
	notificationHandlers := httpapi.NewNotificationHandlers(database, logger)
	webhookHandlers := httpapi.NewWebhookHandlers(database, logger, donationNotifier)

	router.GET("/widget-config/:orgId", publicHandlers.WidgetConfig)
	router.GET("/widget/:slug", publicHandlers.WidgetPage)
	router.GET("/embed/passiton-embed.js", publicHandlers.EmbedScript)
	router.GET("/embed/markup", publicHandlers.EmbedMarkup)
	router.POST("/api/widget/:slug/donations", publicHandlers.SubmitDonation)
	router.POST("/api/webhooks/donations", webhookHandlers.DonationEvent)
	router.POST("/api/invitations/accept", invitationHandlers.AcceptInvitation)
	router.GET("/invitations/accept", invitationHandlers.AcceptInvitationPage)

	adminGroup := router.Group("/api/admin")
	adminGroup.Use(httpapi.AdminAuthMiddleware(testAdminBearerToken))
	adminGroup.POST("/organizations", adminHandlers.CreateOrganization)
	adminGroup.GET("/organizations", adminHandlers.ListOrganizations)
	adminGroup.GET("/organizations/:orgId", adminHandlers.GetOrganization)
	adminGroup.PATCH("/organizations/:orgId", adminHandlers.UpdateOrganization)
	adminGroup.GET("/organizations/:orgId/widget", adminHandlers.GetOrganizationWidget)
	adminGroup.POST("/widgets", adminHandlers.CreateWidget)
	adminGroup.GET("/widgets", adminHandlers.ListWidgets)
	adminGroup.PATCH("/widgets/:widgetId", adminHandlers.UpdateWidget)
	adminGroup.GET("/widgets/:widgetId/causes", adminHandlers.ListCauses)
	adminGroup.GET("/widgets/:widgetId/donations", adminHandlers.ListDonations)
	adminGroup.GET("/widgets/by-slug/:slug/config", adminHandlers.WidgetConfigBySlug)
	adminGroup.POST("/causes", adminHandlers.CreateCause)
	adminGroup.PATCH("/causes/:causeId", adminHandlers.UpdateCause)
	adminGroup.DELETE("/causes/:causeId", adminHandlers.DeleteCause)
	adminGroup.POST("/invitations", invitationHandlers.CreateInvitation)
	adminGroup.GET("/organizations/:orgId/invitations", invitationHandlers.ListInvitations)
	adminGroup.GET("/organizations/:orgId/notifications", notificationHandlers.ListNotifications)
	adminGroup.POST("/notifications/:notificationId/read", notificationHandlers.MarkNotificationRead)
	adminGroup.GET("/organizations/:orgId/notification-preferences", notificationHandlers.GetPreferences)
	adminGroup.PUT("/organizations/:orgId/notification-preferences", notificationHandlers.UpdatePreferences)

	return apiHarness{
		router:     router,
		database:   database,
		resolver:   resolver,
		sentEmails: emailRecorder,
	}
}

func performJSONRequest(testingT *testing.T, router *gin.Engine, method string, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var requestBody io.Reader
	if body != nil {
		encoded, encodeErr := json.Marshal(body)
		require.NoError(testingT, encodeErr)
		requestBody = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, path, requestBody)
	for name, value := range headers {
		request.Header.Set(name, value)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func adminHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testAdminBearerToken}
}

func insertOrganization(testingT *testing.T, database *gorm.DB, name string) model.Organization {
	testingT.Helper()
	organization, buildErr := model.NewOrganization(model.OrganizationInput{
		ID:    storage.NewID(),
		Name:  name,
		Email: "owner@example.com",
	})
	require.NoError(testingT, buildErr)
	require.NoError(testingT, database.Create(&organization).Error)
	return organization
}

func insertWidget(testingT *testing.T, database *gorm.DB, organizationID string, slug string, config model.WidgetConfigDocument, isActive bool) model.Widget {
	testingT.Helper()
	widget, buildErr := model.NewWidget(model.WidgetInput{
		ID:             storage.NewID(),
		OrganizationID: organizationID,
		Name:           "Widget " + slug,
		Slug:           slug,
		Config:         config,
		IsActive:       isActive,
	})
	require.NoError(testingT, buildErr)
	require.NoError(testingT, database.Create(&widget).Error)
	return widget
}

func insertCause(testingT *testing.T, database *gorm.DB, widgetID string, name string, goalAmount int64, isActive bool) model.Cause {
	testingT.Helper()
	cause, buildErr := model.NewCause(model.CauseInput{
		ID:         storage.NewID(),
		WidgetID:   widgetID,
		Name:       name,
		GoalAmount: goalAmount,
		IsActive:   isActive,
	})
	require.NoError(testingT, buildErr)
	require.NoError(testingT, database.Create(&cause).Error)
	return cause
}

func stringPointer(value string) *string {
	return &value
}

func boolPointer(value bool) *bool {
	return &value
}

func int64Pointer(value int64) *int64 {
	return &value
}
