package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health and metrics
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondOK(w, map[string]string{"status": "ok"})
	})
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics)
	}

	// WebSocket
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	// Judge API (public, gated by access code)
	r.Get("/api/judge/{accessCode}/sheet", h.handleJudgeSheet)
	r.Get("/api/judge/{accessCode}/qr", h.handleJudgeQR)
	r.Post("/api/scores", h.handleSubmitScore)
	r.Delete("/api/scores/{id}", h.handleDeleteScore)
	r.Get("/api/scoring-status", h.handleScoringStatus)

	// Results API (public, read-only)
	r.Get("/api/pageants/{pageantID}/stages", h.handleStageTypes)
	r.Get("/api/pageants/{pageantID}/stages/{stageType}/results", h.handleStageResult)
	r.Get("/api/pageants/{pageantID}/stages/{stageType}/awards", h.handleMinorAwards)
	r.Get("/api/pageants/{pageantID}/stages/{stageType}/advancers", h.handleAdvancers)
	r.Get("/api/pageants/{pageantID}/final", h.handleFinalResult)
	r.Get("/api/rounds/{roundID}/eligible", h.handleEligible)

	// Auth routes (public)
	r.Post("/api/admin/login", h.handleLogin)
	r.Post("/api/admin/logout", h.handleLogout)

	// Organizer API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		// Pageants
		r.Get("/api/admin/pageants", h.handleListPageants)
		r.Post("/api/admin/pageants", h.handleCreatePageant)
		r.Get("/api/admin/pageants/{id}", h.handleGetPageant)
		r.Put("/api/admin/pageants/{id}", h.handleUpdatePageant)
		r.Delete("/api/admin/pageants/{id}", h.handleDeletePageant)

		// Rounds
		r.Get("/api/admin/pageants/{pageantID}/rounds", h.handleListRounds)
		r.Post("/api/admin/rounds", h.handleCreateRound)
		r.Put("/api/admin/rounds/{id}", h.handleUpdateRound)
		r.Delete("/api/admin/rounds/{id}", h.handleDeleteRound)

		// Criteria
		r.Get("/api/admin/rounds/{roundID}/criteria", h.handleListCriteria)
		r.Post("/api/admin/criteria", h.handleCreateCriteria)
		r.Put("/api/admin/criteria/{id}", h.handleUpdateCriteria)
		r.Delete("/api/admin/criteria/{id}", h.handleDeleteCriteria)

		// Contestants
		r.Get("/api/admin/pageants/{pageantID}/contestants", h.handleListContestants)
		r.Post("/api/admin/contestants", h.handleCreateContestant)
		r.Put("/api/admin/contestants/{id}", h.handleUpdateContestant)
		r.Delete("/api/admin/contestants/{id}", h.handleDeleteContestant)

		// Judges
		r.Get("/api/admin/pageants/{pageantID}/judges", h.handleListJudges)
		r.Post("/api/admin/judges", h.handleCreateJudge)
		r.Delete("/api/admin/judges/{id}", h.handleDeleteJudge)

		// Scoring control
		r.Post("/api/admin/scoring-control", h.handleSetScoringStatus)
		r.Get("/api/admin/scores", h.handleListScores)

		// Cache management
		r.Post("/api/admin/pageants/{pageantID}/flush-cache", h.handleFlushCache)
	})

	return r
}
