package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/temirov/GAuss/pkg/session"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PassItOnLabs/widget_svc/internal/auth"
	"github.com/PassItOnLabs/widget_svc/internal/httpapi"
	"github.com/PassItOnLabs/widget_svc/internal/storage"
	"github.com/PassItOnLabs/widget_svc/internal/task"
	"github.com/PassItOnLabs/widget_svc/internal/widgetcfg"
)

const (
	commandUseName              = "server"
	commandShortDescription     = "Run the donation widget server"
	commandLongDescription      = "Launch the PassItOn donation widget HTTP server"
	missingConfigurationMessage = "missing required configuration"
	loggerCreationErrorMessage  = "logger"
	logEventListening           = "listening"
	logFieldAddress             = "addr"

	flagNameApplicationAddress     = "app-addr"
	flagNameDatabaseDriverName     = "db-driver"
	flagNameDatabaseDataSourceName = "db-dsn"
	flagNamePublicBaseURL          = "public-base-url"
	flagNameAdminBearerToken       = "admin-bearer-token"
	flagNameAdminEmails            = "admin-emails"
	flagNameSessionSecret          = "session-secret"
	flagNameGoogleClientID         = "google-client-id"
	flagNameGoogleClientSecret     = "google-client-secret"
	flagNameInvitationSweep        = "invitation-sweep-interval"

	flagUsageApplicationAddress     = "address for the HTTP server to listen on"
	flagUsageDatabaseDriverName     = "database driver name (sqlite)"
	flagUsageDatabaseDataSourceName = "database connection string"
	flagUsagePublicBaseURL          = "externally reachable base URL used in embeds and emails"
	flagUsageAdminBearerToken       = "bearer token required for admin API access"
	flagUsageAdminEmails            = "comma separated emails granted the preview surface for every organization"
	flagUsageSessionSecret          = "secret used to sign dashboard session cookies"
	flagUsageGoogleClientID         = "Google OAuth client id for dashboard login"
	flagUsageGoogleClientSecret     = "Google OAuth client secret for dashboard login"
	flagUsageInvitationSweep        = "interval between invitation expiry sweeps"

	environmentKeyApplicationAddress = "APP_ADDR"
	environmentKeyDatabaseDriver     = "DB_DRIVER"
	environmentKeyDatabaseDataSource = "DB_DSN"
	environmentKeyPublicBaseURL      = "PUBLIC_BASE_URL"
	environmentKeyAdminBearerToken   = "ADMIN_BEARER_TOKEN"
	environmentKeyAdminEmails        = "ADMIN_EMAILS"
	environmentKeySessionSecret      = "SESSION_SECRET"
	environmentKeyGoogleClientID     = "GOOGLE_CLIENT_ID"
	environmentKeyGoogleClientSecret = "GOOGLE_CLIENT_SECRET"
	environmentKeyInvitationSweep    = "INVITATION_SWEEP_INTERVAL"

	defaultApplicationAddress = ":8080"
	defaultDatabaseDriverName = storage.DriverNameSQLite
	defaultInvitationSweep    = time.Hour

	loggerContextOpenDatabase = "open_db"
	loggerContextAutoMigrate  = "migrate"
	loggerContextServer       = "server"
	loggerContextOAuth        = "oauth"

	readHeaderTimeoutSeconds      = 5
	unexpectedArgumentsMessage    = "unexpected command arguments"
	commandInitializationFailure  = "failed to configure command"
	flagNotDefinedMessage         = "flag %s not defined"
	environmentConfigurationError = "failed to apply environment configuration"
)

// ServerConfig captures configuration needed to run the server.
type ServerConfig struct {
	ApplicationAddress      string
	DatabaseDriverName      string
	DatabaseDataSourceName  string
	PublicBaseURL           string
	AdminBearerToken        string
	AdminEmails             []string
	SessionSecret           string
	GoogleClientID          string
	GoogleClientSecret      string
	InvitationSweepInterval time.Duration
}

// DatabaseOpener opens a database connection from a storage configuration.
type DatabaseOpener func(storage.Config) (*gorm.DB, error)

// ServerApplication constructs and executes the server command.
type ServerApplication struct {
	configurationLoader *viper.Viper
	databaseOpener      DatabaseOpener
}

// NewServerApplication creates a ServerApplication with default dependencies.
func NewServerApplication() *ServerApplication {
	return &ServerApplication{
		configurationLoader: viper.New(),
		databaseOpener:      storage.OpenDatabase,
	}
}

// WithDatabaseOpener overrides the database opener dependency.
func (application *ServerApplication) WithDatabaseOpener(databaseOpener DatabaseOpener) *ServerApplication {
	application.databaseOpener = databaseOpener
	return application
}

// Command builds the Cobra command for the server.
func (application *ServerApplication) Command() (*cobra.Command, error) {
	rootCommand := &cobra.Command{
		Use:   commandUseName,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		RunE:  application.runCommand,
	}

	if configurationErr := application.configureCommand(rootCommand); configurationErr != nil {
		return nil, configurationErr
	}

	return rootCommand, nil
}

type flagBinding struct {
	environmentKey string
	flagName       string
}

var flagBindings = []flagBinding{
	{environmentKeyApplicationAddress, flagNameApplicationAddress},
	{environmentKeyDatabaseDriver, flagNameDatabaseDriverName},
	{environmentKeyDatabaseDataSource, flagNameDatabaseDataSourceName},
	{environmentKeyPublicBaseURL, flagNamePublicBaseURL},
	{environmentKeyAdminBearerToken, flagNameAdminBearerToken},
	{environmentKeyAdminEmails, flagNameAdminEmails},
	{environmentKeySessionSecret, flagNameSessionSecret},
	{environmentKeyGoogleClientID, flagNameGoogleClientID},
	{environmentKeyGoogleClientSecret, flagNameGoogleClientSecret},
	{environmentKeyInvitationSweep, flagNameInvitationSweep},
}

func (application *ServerApplication) configureCommand(command *cobra.Command) error {
	application.configurationLoader.SetDefault(environmentKeyApplicationAddress, defaultApplicationAddress)
	application.configurationLoader.SetDefault(environmentKeyDatabaseDriver, defaultDatabaseDriverName)
	application.configurationLoader.SetDefault(environmentKeyDatabaseDataSource, "")
	application.configurationLoader.SetDefault(environmentKeyPublicBaseURL, "")
	application.configurationLoader.SetDefault(environmentKeyAdminBearerToken, "")
	application.configurationLoader.SetDefault(environmentKeyAdminEmails, "")
	application.configurationLoader.SetDefault(environmentKeySessionSecret, "")
	application.configurationLoader.SetDefault(environmentKeyGoogleClientID, "")
	application.configurationLoader.SetDefault(environmentKeyGoogleClientSecret, "")
	application.configurationLoader.SetDefault(environmentKeyInvitationSweep, defaultInvitationSweep)
	application.configurationLoader.AutomaticEnv()

	commandFlags := command.Flags()
	commandFlags.String(flagNameApplicationAddress, defaultApplicationAddress, flagUsageApplicationAddress)
	commandFlags.String(flagNameDatabaseDriverName, defaultDatabaseDriverName, flagUsageDatabaseDriverName)
	commandFlags.String(flagNameDatabaseDataSourceName, "", flagUsageDatabaseDataSourceName)
	commandFlags.String(flagNamePublicBaseURL, "", flagUsagePublicBaseURL)
	commandFlags.String(flagNameAdminBearerToken, "", flagUsageAdminBearerToken)
	commandFlags.String(flagNameAdminEmails, "", flagUsageAdminEmails)
	commandFlags.String(flagNameSessionSecret, "", flagUsageSessionSecret)
	commandFlags.String(flagNameGoogleClientID, "", flagUsageGoogleClientID)
	commandFlags.String(flagNameGoogleClientSecret, "", flagUsageGoogleClientSecret)
	commandFlags.Duration(flagNameInvitationSweep, defaultInvitationSweep, flagUsageInvitationSweep)

	for _, binding := range flagBindings {
		if bindErr := application.bindFlag(commandFlags, binding.environmentKey, binding.flagName); bindErr != nil {
			return bindErr
		}
		if environmentErr := application.applyEnvironmentConfiguration(commandFlags, binding.environmentKey, binding.flagName); environmentErr != nil {
			return environmentErr
		}
	}

	if markErr := command.MarkFlagRequired(flagNameDatabaseDataSourceName); markErr != nil {
		return markErr
	}

	if markErr := command.MarkFlagRequired(flagNameAdminBearerToken); markErr != nil {
		return markErr
	}

	if markErr := command.MarkFlagRequired(flagNamePublicBaseURL); markErr != nil {
		return markErr
	}

	return nil
}

func (application *ServerApplication) bindFlag(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	flag := flagSet.Lookup(flagName)
	if flag == nil {
		return fmt.Errorf(flagNotDefinedMessage, flagName)
	}

	if bindErr := application.configurationLoader.BindPFlag(environmentKey, flag); bindErr != nil {
		return bindErr
	}

	return nil
}

func (application *ServerApplication) applyEnvironmentConfiguration(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	environmentValue, environmentFound := os.LookupEnv(environmentKey)
	if !environmentFound {
		return nil
	}

	if setErr := flagSet.Set(flagName, environmentValue); setErr != nil {
		return fmt.Errorf("%s: %w", environmentConfigurationError, setErr)
	}

	return nil
}

func (application *ServerApplication) loadConfiguration() ServerConfig {
	return ServerConfig{
		ApplicationAddress:      application.configurationLoader.GetString(environmentKeyApplicationAddress),
		DatabaseDriverName:      strings.TrimSpace(application.configurationLoader.GetString(environmentKeyDatabaseDriver)),
		DatabaseDataSourceName:  strings.TrimSpace(application.configurationLoader.GetString(environmentKeyDatabaseDataSource)),
		PublicBaseURL:           strings.TrimSpace(application.configurationLoader.GetString(environmentKeyPublicBaseURL)),
		AdminBearerToken:        strings.TrimSpace(application.configurationLoader.GetString(environmentKeyAdminBearerToken)),
		AdminEmails:             splitAdminEmails(application.configurationLoader.GetString(environmentKeyAdminEmails)),
		SessionSecret:           strings.TrimSpace(application.configurationLoader.GetString(environmentKeySessionSecret)),
		GoogleClientID:          strings.TrimSpace(application.configurationLoader.GetString(environmentKeyGoogleClientID)),
		GoogleClientSecret:      strings.TrimSpace(application.configurationLoader.GetString(environmentKeyGoogleClientSecret)),
		InvitationSweepInterval: application.configurationLoader.GetDuration(environmentKeyInvitationSweep),
	}
}

func splitAdminEmails(rawValue string) []string {
	parts := strings.Split(rawValue, ",")
	emails := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		emails = append(emails, trimmed)
	}
	return emails
}

func (application *ServerApplication) runCommand(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf("%s: %s", unexpectedArgumentsMessage, strings.Join(arguments, " "))
	}

	serverConfig := application.loadConfiguration()

	if validationErr := application.ensureRequiredConfiguration(serverConfig); validationErr != nil {
		return validationErr
	}

	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return fmt.Errorf("%s: %w", loggerCreationErrorMessage, loggerErr)
	}
	defer func() {
		_ = logger.Sync()
	}()

	database, databaseErr := application.databaseOpener(storage.Config{
		DriverName:     serverConfig.DatabaseDriverName,
		DataSourceName: serverConfig.DatabaseDataSourceName,
	})
	if databaseErr != nil {
		logger.Fatal(loggerContextOpenDatabase, zap.Error(databaseErr))
	}

	if migrateErr := storage.AutoMigrate(database); migrateErr != nil {
		logger.Fatal(loggerContextAutoMigrate, zap.Error(migrateErr))
	}

	if serverConfig.SessionSecret != "" {
		session.NewSession([]byte(serverConfig.SessionSecret))
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpapi.RequestLogger(logger))

	resolver := widgetcfg.NewResolver(database, logger, serverConfig.PublicBaseURL)
	authManager := httpapi.NewAuthManager(logger, serverConfig.AdminEmails)
	emailSender := httpapi.LoggingEmailSender{Logger: logger}
	donationNotifier := httpapi.NewDatabaseDonationNotifier(database, logger)

	publicHandlers := httpapi.NewPublicHandlers(database, logger, resolver, serverConfig.PublicBaseURL)
	previewHandlers := httpapi.NewPreviewHandlers(logger, resolver)
	adminHandlers := httpapi.NewAdminHandlers(database, logger, resolver)
	invitationHandlers := httpapi.NewInvitationHandlers(database, logger, emailSender, serverConfig.PublicBaseURL)
	notificationHandlers := httpapi.NewNotificationHandlers(database, logger)
	webhookHandlers := httpapi.NewWebhookHandlers(database, logger, donationNotifier)

	registerPublicRoutes(router, publicHandlers, webhookHandlers, invitationHandlers)
	registerPreviewRoutes(router, authManager, previewHandlers)
	registerAdminRoutes(router, serverConfig.AdminBearerToken, adminHandlers, invitationHandlers, notificationHandlers)

	if serverConfig.GoogleClientID != "" && serverConfig.GoogleClientSecret != "" {
		if mountErr := mountOAuthRoutes(router, logger, serverConfig); mountErr != nil {
			logger.Fatal(loggerContextOAuth, zap.Error(mountErr))
		}
	}

	sweepContext, cancelSweep := context.WithCancel(command.Context())
	defer cancelSweep()
	expiryJob := task.NewInvitationExpiryJob(database, logger)
	sweepScheduler := task.NewScheduler(serverConfig.InvitationSweepInterval, func(ctx context.Context) {
		_ = expiryJob.Run(ctx)
	})
	sweepScheduler.Start(sweepContext)
	defer sweepScheduler.Stop()

	httpServer := &http.Server{
		Addr:              serverConfig.ApplicationAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeoutSeconds * time.Second,
	}

	logger.Info(logEventListening, zap.String(logFieldAddress, serverConfig.ApplicationAddress))
	if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		logger.Fatal(loggerContextServer, zap.Error(serveErr))
	}

	return nil
}

func mountOAuthRoutes(router *gin.Engine, logger *zap.Logger, serverConfig ServerConfig) error {
	oauthHandlers, handlersErr := auth.NewHandlers(auth.Config{
		GoogleClientID:     serverConfig.GoogleClientID,
		GoogleClientSecret: serverConfig.GoogleClientSecret,
		PublicBaseURL:      serverConfig.PublicBaseURL,
		LocalRedirectPath:  previewLandingPath,
		Logger:             logger,
	})
	if handlersErr != nil {
		return handlersErr
	}

	serveMux := http.NewServeMux()
	oauthHandlers.RegisterRoutes(serveMux)
	for _, routePath := range auth.RoutePaths() {
		router.Any(routePath, gin.WrapH(serveMux))
	}
	return nil
}

func (application *ServerApplication) ensureRequiredConfiguration(configuration ServerConfig) error {
	var missingParameters []string

	if configuration.DatabaseDataSourceName == "" {
		missingParameters = append(missingParameters, flagNameDatabaseDataSourceName)
	}

	if configuration.AdminBearerToken == "" {
		missingParameters = append(missingParameters, flagNameAdminBearerToken)
	}

	if configuration.PublicBaseURL == "" {
		missingParameters = append(missingParameters, flagNamePublicBaseURL)
	}

	if len(missingParameters) == 0 {
		return nil
	}

	return fmt.Errorf("%s: %s", missingConfigurationMessage, strings.Join(missingParameters, ", "))
}

func main() {
	application := NewServerApplication()
	rootCommand, commandErr := application.Command()
	if commandErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", commandInitializationFailure, commandErr)
		os.Exit(1)
	}

	if executeErr := rootCommand.Execute(); executeErr != nil {
		os.Exit(1)
	}
}
