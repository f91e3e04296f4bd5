package handlers

import (
	"net/http"

	"github.com/abrezinsky/crowntally/internal/auth"
	"github.com/abrezinsky/crowntally/internal/services"
	"github.com/abrezinsky/crowntally/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Scoring     services.ScoringServicer
	Stage       services.StageServicer
	Advancement services.AdvancementServicer
	Pageant     services.PageantServicer
	Auth        *auth.Auth
	Hub         *websocket.Hub
	Log         HTTPLogger
	Metrics     http.Handler
	BaseURL     string
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	scoring services.ScoringServicer,
	stage services.StageServicer,
	advancement services.AdvancementServicer,
	pageant services.PageantServicer,
	organizerAuth *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
	metricsHandler http.Handler,
	baseURL string,
) *Handlers {
	return &Handlers{
		Scoring:     scoring,
		Stage:       stage,
		Advancement: advancement,
		Pageant:     pageant,
		Auth:        organizerAuth,
		Hub:         hub,
		Log:         log,
		Metrics:     metricsHandler,
		BaseURL:     baseURL,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance for API endpoint tests
func NewForTesting(
	scoring services.ScoringServicer,
	stage services.StageServicer,
	advancement services.AdvancementServicer,
	pageant services.PageantServicer,
) *Handlers {
	return &Handlers{
		Scoring:     scoring,
		Stage:       stage,
		Advancement: advancement,
		Pageant:     pageant,
		Auth:        auth.New("test-password"),
		Log:         NoopHTTPLogger{},
	}
}
