package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abrezinsky/crowntally/internal/auth"
	"github.com/abrezinsky/crowntally/internal/cache"
	"github.com/abrezinsky/crowntally/internal/handlers"
	"github.com/abrezinsky/crowntally/internal/logger"
	"github.com/abrezinsky/crowntally/internal/metrics"
	"github.com/abrezinsky/crowntally/internal/repository"
	"github.com/abrezinsky/crowntally/internal/services"
	"github.com/abrezinsky/crowntally/internal/websocket"
)

// App holds all application dependencies
type App struct {
	log      logger.Logger
	handlers *handlers.Handlers
	repo     *repository.Repository
}

// New creates and initializes a new application instance
func New(log logger.Logger, dbPath, baseURL string, organizerAuth *auth.Auth) (*App, error) {
	repo, err := repository.New(dbPath)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	resultCache := cache.New()
	resultCache.SetRecorder(m)

	// Initialize services
	scoringService := services.NewScoringService(log, repo, resultCache, m)
	stageService := services.NewStageService(log, repo, scoringService, resultCache, m)
	advancementService := services.NewAdvancementService(log, repo, stageService)
	pageantService := services.NewPageantService(log, repo, resultCache)

	// Initialize WebSocket hub with DI
	hub := websocket.New(log, scoringService)
	hub.Start()
	pageantService.SetBroadcaster(hub)
	scoringService.SetNotifier(&rankingsNotifier{
		log:   log,
		repo:  repo,
		stage: stageService,
		hub:   hub,
	})

	h := handlers.New(
		scoringService,
		stageService,
		advancementService,
		pageantService,
		organizerAuth,
		hub,
		log,
		promhttp.Handler(),
		baseURL,
	)

	return &App{log: log, handlers: h, repo: repo}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close releases app resources
func (a *App) Close() {
	if a.repo != nil {
		a.repo.Close()
	}
}

// Run starts the HTTP server
func (a *App) Run(addr string) error {
	a.log.Info("Server starting", "addr", addr)
	return http.ListenAndServe(addr, a.Router())
}

// rankingsNotifier recomposes the affected stage after a score write
// and pushes the fresh standings to connected displays.
type rankingsNotifier struct {
	log   logger.Logger
	repo  repository.RoundRepository
	stage services.StageServicer
	hub   *websocket.Hub
}

func (n *rankingsNotifier) RankingsChanged(pageantID int, inv cache.Invalidation) {
	ctx := context.Background()

	round, err := n.repo.GetRound(ctx, inv.RoundID)
	if err != nil {
		n.log.Warn("notifier could not resolve round", "round_id", inv.RoundID, "error", err)
		return
	}

	result, err := n.stage.ComposeStage(ctx, pageantID, round.Type, true)
	if err != nil {
		n.log.Warn("notifier could not compose stage",
			"pageant_id", pageantID, "stage_type", round.Type, "error", err)
		return
	}
	n.hub.BroadcastRankings(pageantID, round.Type, result)
}

var _ services.RankingsNotifier = (*rankingsNotifier)(nil)

// Addr formats a port as a listen address
func Addr(port int) string {
	return fmt.Sprintf(":%d", port)
}
