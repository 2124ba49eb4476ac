package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/temirov/GAuss/pkg/constants"
	"github.com/temirov/GAuss/pkg/session"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PassItOnLabs/widget_svc/internal/httpapi"
	"github.com/PassItOnLabs/widget_svc/internal/model"
	"github.com/PassItOnLabs/widget_svc/internal/storage"
	"github.com/PassItOnLabs/widget_svc/internal/testutil"
	"github.com/PassItOnLabs/widget_svc/internal/widgetcfg"
)

const previewTestSessionSecret = "12345678901234567890123456789012"

type previewHarness struct {
	router   *gin.Engine
	database *gorm.DB
}

func buildPreviewHarness(testingT *testing.T) previewHarness {
	testingT.Helper()

	session.NewSession([]byte(previewTestSessionSecret))
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	sqliteDatabase := testutil.NewSQLiteTestDatabase(testingT)
	database, openErr := storage.OpenDatabase(sqliteDatabase.Configuration())
	require.NoError(testingT, openErr)
	database = testutil.ConfigureDatabaseLogger(testingT, database)
	require.NoError(testingT, storage.AutoMigrate(database))

	resolver := widgetcfg.NewResolver(database, logger, testPublicBaseURL)
	authManager := httpapi.NewAuthManager(logger, []string{"admin@example.com"})
	previewHandlers := httpapi.NewPreviewHandlers(logger, resolver)

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/admin/widgets/preview/:slug", authManager.RequireAdminWeb(), previewHandlers.WidgetPreviewPage)

	return previewHarness{router: router, database: database}
}

func createAuthenticatedSessionCookie(testingT *testing.T, email string, name string) *http.Cookie {
	testingT.Helper()

	store := session.Store()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()

	sessionInstance, sessionErr := store.Get(request, constants.SessionName)
	require.NoError(testingT, sessionErr)

	sessionInstance.Values[constants.SessionKeyUserEmail] = email
	sessionInstance.Values[constants.SessionKeyUserName] = name
	sessionInstance.Values[constants.SessionKeyUserPicture] = ""
	sessionInstance.Values[constants.SessionKeyOAuthToken] = "test-token"

	require.NoError(testingT, sessionInstance.Save(request, recorder))

	response := recorder.Result()
	for _, cookie := range response.Cookies() {
		if cookie.Name == constants.SessionName {
			return cookie
		}
	}
	require.FailNow(testingT, "session cookie not found in recorder")
	return nil
}

func TestPreviewRedirectsAnonymousVisitors(t *testing.T) {
	harness := buildPreviewHarness(t)

	request := httptest.NewRequest(http.MethodGet, "/admin/widgets/preview/any-slug", nil)
	recorder := httptest.NewRecorder()
	harness.router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusFound, recorder.Code)
	require.Equal(t, constants.LoginPath, recorder.Header().Get("Location"))
}

func TestPreviewForbidsNonAdminVisitors(t *testing.T) {
	harness := buildPreviewHarness(t)

	request := httptest.NewRequest(http.MethodGet, "/admin/widgets/preview/any-slug", nil)
	request.AddCookie(createAuthenticatedSessionCookie(t, "viewer@example.com", "Viewer User"))
	recorder := httptest.NewRecorder()
	harness.router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusForbidden, recorder.Code)
	require.Contains(t, recorder.Body.String(), "forbidden")
}

func TestPreviewRendersInactiveWidgetWithBanner(t *testing.T) {
	harness := buildPreviewHarness(t)
	organization := insertOrganization(t, harness.database, "Preview Banner Org")
	widget := insertWidget(t, harness.database, organization.ID, "banner-org", model.WidgetConfigDocument{}, false)
	insertCause(t, harness.database, widget.ID, "Hidden Cause", 0, false)

	request := httptest.NewRequest(http.MethodGet, "/admin/widgets/preview/banner-org", nil)
	request.AddCookie(createAuthenticatedSessionCookie(t, "admin@example.com", "Admin User"))
	recorder := httptest.NewRecorder()
	harness.router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	pageBody := recorder.Body.String()
	require.Contains(t, pageBody, "Preview Banner Org")
	require.Contains(t, pageBody, "inactive and hidden from the public page")
	require.Contains(t, pageBody, "Hidden Cause")
}

func TestPreviewUnknownSlugReturnsNotFound(t *testing.T) {
	harness := buildPreviewHarness(t)

	request := httptest.NewRequest(http.MethodGet, "/admin/widgets/preview/never-existed", nil)
	request.AddCookie(createAuthenticatedSessionCookie(t, "admin@example.com", "Admin User"))
	recorder := httptest.NewRecorder()
	harness.router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusNotFound, recorder.Code)
}
