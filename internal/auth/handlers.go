package auth

import (
	"fmt"
	"net/http"

	"github.com/temirov/GAuss/pkg/constants"
	"github.com/temirov/GAuss/pkg/gauss"
	"go.uber.org/zap"
)

const (
	createServiceError  = "create oauth service"
	createHandlersError = "create oauth handlers"
)

// Config captures dependencies for building the Google OAuth handlers that
// establish dashboard sessions.
type Config struct {
	GoogleClientID     string
	GoogleClientSecret string
	PublicBaseURL      string
	LocalRedirectPath  string
	Scopes             []string
	LoginTemplate      string
	Logger             *zap.Logger
}

// Handlers exposes the HTTP handlers for the Google OAuth login flow.
type Handlers struct {
	gaussHandlers *gauss.Handlers
	logger        *zap.Logger
}

// NewHandlers constructs Handlers using GAuss primitives.
func NewHandlers(configuration Config) (*Handlers, error) {
	logger := configuration.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	serviceInstance, serviceErr := gauss.NewService(
		configuration.GoogleClientID,
		configuration.GoogleClientSecret,
		configuration.PublicBaseURL,
		configuration.LocalRedirectPath,
		configuration.Scopes,
		configuration.LoginTemplate,
	)
	if serviceErr != nil {
		return nil, fmt.Errorf("%s: %w", createServiceError, serviceErr)
	}

	gaussHandlers, handlersErr := gauss.NewHandlers(serviceInstance)
	if handlersErr != nil {
		return nil, fmt.Errorf("%s: %w", createHandlersError, handlersErr)
	}

	return &Handlers{
		gaussHandlers: gaussHandlers,
		logger:        logger,
	}, nil
}

// RegisterRoutes wires the OAuth endpoints onto the provided ServeMux.
func (handlers *Handlers) RegisterRoutes(mux *http.ServeMux) {
	handlers.gaussHandlers.RegisterRoutes(mux)
}

// LoginPath returns the path anonymous dashboard visitors are redirected to.
func LoginPath() string {
	return constants.LoginPath
}

// RoutePaths lists every path the OAuth flow serves, for mounting onto a
// router that cannot take a ServeMux directly.
func RoutePaths() []string {
	return []string{
		constants.LoginPath,
		constants.GoogleAuthPath,
		constants.CallbackPath,
		constants.LogoutPath,
	}
}
