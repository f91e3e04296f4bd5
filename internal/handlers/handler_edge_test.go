package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/abrezinsky/crowntally/internal/auth"
	"github.com/abrezinsky/crowntally/internal/cache"
	"github.com/abrezinsky/crowntally/internal/handlers"
	"github.com/abrezinsky/crowntally/internal/logger"
	"github.com/abrezinsky/crowntally/internal/repository/mock"
	"github.com/abrezinsky/crowntally/internal/services"
	"github.com/abrezinsky/crowntally/internal/testutil"
)

// newTestSetupWithMockRepo builds the full handler stack over an
// error-injecting repository for exercising failure paths.
func newTestSetupWithMockRepo(t *testing.T) (*testSetup, *mock.Repository) {
	t.Helper()

	mockRepo := mock.NewRepository(testutil.NewTestRepository(t))
	log := logger.New()
	c := cache.New()

	scoringService := services.NewScoringService(log, mockRepo, c, nil)
	stageService := services.NewStageService(log, mockRepo, scoringService, c, nil)
	advancementService := services.NewAdvancementService(log, mockRepo, stageService)
	pageantService := services.NewPageantService(log, mockRepo, c)

	h := handlers.NewForTesting(scoringService, stageService, advancementService, pageantService)
	token, _ := h.Auth.Login("test-password")

	setup := &testSetup{
		pageants:   pageantService,
		scoring:    scoringService,
		router:     h.Router(),
		authCookie: &http.Cookie{Name: auth.CookieName, Value: token},
	}
	return setup, mockRepo
}

func TestHandleListPageants_RepoError(t *testing.T) {
	setup, mockRepo := newTestSetupWithMockRepo(t)
	mockRepo.ListPageantsError = errors.New("database gone")

	rec := setup.doJSON(t, http.MethodGet, "/api/admin/pageants", nil, true)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleScoringStatus_RepoError(t *testing.T) {
	setup, mockRepo := newTestSetupWithMockRepo(t)
	mockRepo.GetSettingError = errors.New("database gone")

	rec := setup.doJSON(t, http.MethodGet, "/api/scoring-status", nil, false)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestHandleSubmitScore_SaveError(t *testing.T) {
	setup, mockRepo := newTestSetupWithMockRepo(t)
	data := setup.seedPageant(t)
	mockRepo.SaveScoreError = errors.New("disk full")

	payload := handlers.ScoreSubmitRequest{
		AccessCode:   data.judge.AccessCode,
		PageantID:    data.pageantID,
		RoundID:      data.roundID,
		CriteriaID:   data.criteriaID,
		ContestantID: data.contestantID,
		Value:        75,
	}
	rec := setup.doJSON(t, http.MethodPost, "/api/scores", payload, false)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleStageResult_RepoError(t *testing.T) {
	setup, mockRepo := newTestSetupWithMockRepo(t)
	data := setup.seedPageant(t)
	mockRepo.ListRoundsByTypeError = errors.New("database gone")

	path := "/api/pageants/" + itoa(data.pageantID) + "/stages/preliminary/results"
	rec := setup.doJSON(t, http.MethodGet, path, nil, false)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
}
