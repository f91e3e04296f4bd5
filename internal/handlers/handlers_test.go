package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/crowntally/internal/auth"
	"github.com/abrezinsky/crowntally/internal/cache"
	"github.com/abrezinsky/crowntally/internal/handlers"
	"github.com/abrezinsky/crowntally/internal/logger"
	"github.com/abrezinsky/crowntally/internal/models"
	"github.com/abrezinsky/crowntally/internal/repository"
	"github.com/abrezinsky/crowntally/internal/services"
	"github.com/abrezinsky/crowntally/internal/testutil"
)

type testSetup struct {
	repo       *repository.Repository
	pageants   *services.PageantService
	scoring    *services.ScoringService
	router     chi.Router
	authCookie *http.Cookie
}

func newTestSetup(t *testing.T) *testSetup {
	t.Helper()

	repo := testutil.NewTestRepository(t)
	log := logger.New()
	c := cache.New()

	scoringService := services.NewScoringService(log, repo, c, nil)
	stageService := services.NewStageService(log, repo, scoringService, c, nil)
	advancementService := services.NewAdvancementService(log, repo, stageService)
	pageantService := services.NewPageantService(log, repo, c)

	h := handlers.NewForTesting(scoringService, stageService, advancementService, pageantService)

	// Login to get a session cookie for authenticated requests
	token, _ := h.Auth.Login("test-password")
	authCookie := &http.Cookie{Name: auth.CookieName, Value: token}

	return &testSetup{
		repo:       repo,
		pageants:   pageantService,
		scoring:    scoringService,
		router:     h.Router(),
		authCookie: authCookie,
	}
}

// seedPageant builds a minimal scorable pageant: one round, one 0-100
// criterion, one contestant, one judge.
type seeded struct {
	pageantID    int
	roundID      int
	criteriaID   int
	contestantID int
	judge        *models.Judge
}

func (s *testSetup) seedPageant(t *testing.T) seeded {
	t.Helper()
	ctx := context.Background()

	p, err := s.pageants.CreatePageant(ctx, models.Pageant{
		Name:           "County Fair",
		RankingMethod:  models.MethodScoreAverage,
		TieHandling:    models.TieAverage,
		ContestantType: models.ContestantSolo,
		FinalScoreMode: models.FinalFresh,
	})
	if err != nil {
		t.Fatalf("CreatePageant: %v", err)
	}

	round, err := s.pageants.CreateRound(ctx, models.Round{
		PageantID: p.ID, Name: "Talent", Type: "preliminary", Weight: 100, DisplayOrder: 1,
	})
	if err != nil {
		t.Fatalf("CreateRound: %v", err)
	}

	crit, err := s.pageants.CreateCriteria(ctx, models.Criteria{
		RoundID: round.ID, Name: "Overall", Weight: 100, MinScore: 0, MaxScore: 100,
		AllowDecimals: true, DecimalPlaces: 2,
	})
	if err != nil {
		t.Fatalf("CreateCriteria: %v", err)
	}

	contestant, err := s.pageants.CreateContestant(ctx, models.Contestant{
		PageantID: p.ID, Number: "01", Name: "Alice", Active: true,
	})
	if err != nil {
		t.Fatalf("CreateContestant: %v", err)
	}

	judge, err := s.pageants.CreateJudge(ctx, p.ID, "Judge A")
	if err != nil {
		t.Fatalf("CreateJudge: %v", err)
	}

	return seeded{
		pageantID:    p.ID,
		roundID:      round.ID,
		criteriaID:   crit.ID,
		contestantID: contestant.ID,
		judge:        judge,
	}
}

func (s *testSetup) doJSON(t *testing.T, method, path string, payload interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.AddCookie(s.authCookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.doJSON(t, http.MethodGet, "/healthz", nil, false)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandleScoringStatus(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.doJSON(t, http.MethodGet, "/api/scoring-status", nil, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp handlers.ScoringStatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Open {
		t.Error("scoring should default to open")
	}
}

func TestHandleSubmitScore_Success(t *testing.T) {
	setup := newTestSetup(t)
	data := setup.seedPageant(t)

	payload := handlers.ScoreSubmitRequest{
		AccessCode:   data.judge.AccessCode,
		PageantID:    data.pageantID,
		RoundID:      data.roundID,
		CriteriaID:   data.criteriaID,
		ContestantID: data.contestantID,
		Value:        91.5,
	}
	rec := setup.doJSON(t, http.MethodPost, "/api/scores", payload, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var score models.Score
	if err := json.NewDecoder(rec.Body).Decode(&score); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if score.Value != 91.5 || score.JudgeID != data.judge.ID {
		t.Errorf("unexpected score: %+v", score)
	}
}

func TestHandleSubmitScore_UnknownAccessCode(t *testing.T) {
	setup := newTestSetup(t)
	data := setup.seedPageant(t)

	payload := handlers.ScoreSubmitRequest{
		AccessCode:   "deadbeef",
		PageantID:    data.pageantID,
		RoundID:      data.roundID,
		CriteriaID:   data.criteriaID,
		ContestantID: data.contestantID,
		Value:        80,
	}
	rec := setup.doJSON(t, http.MethodPost, "/api/scores", payload, false)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown access code, got %d", rec.Code)
	}
}

func TestHandleSubmitScore_ScoringClosed(t *testing.T) {
	setup := newTestSetup(t)
	data := setup.seedPageant(t)

	if err := setup.pageants.SetScoringOpen(context.Background(), false); err != nil {
		t.Fatalf("SetScoringOpen: %v", err)
	}

	payload := handlers.ScoreSubmitRequest{
		AccessCode:   data.judge.AccessCode,
		PageantID:    data.pageantID,
		RoundID:      data.roundID,
		CriteriaID:   data.criteriaID,
		ContestantID: data.contestantID,
		Value:        80,
	}
	rec := setup.doJSON(t, http.MethodPost, "/api/scores", payload, false)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 while scoring closed, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleSubmitScore_OutOfRange(t *testing.T) {
	setup := newTestSetup(t)
	data := setup.seedPageant(t)

	payload := handlers.ScoreSubmitRequest{
		AccessCode:   data.judge.AccessCode,
		PageantID:    data.pageantID,
		RoundID:      data.roundID,
		CriteriaID:   data.criteriaID,
		ContestantID: data.contestantID,
		Value:        150,
	}
	rec := setup.doJSON(t, http.MethodPost, "/api/scores", payload, false)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for out-of-range value, got %d", rec.Code)
	}
}

func TestHandleSubmitScore_InvalidJSON(t *testing.T) {
	setup := newTestSetup(t)

	req := httptest.NewRequest(http.MethodPost, "/api/scores", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	setup.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestHandleJudgeSheet(t *testing.T) {
	setup := newTestSetup(t)
	data := setup.seedPageant(t)

	path := "/api/judge/" + data.judge.AccessCode + "/sheet?pageant_id=" + itoa(data.pageantID)
	rec := setup.doJSON(t, http.MethodGet, path, nil, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var sheet handlers.JudgeSheetResponse
	if err := json.NewDecoder(rec.Body).Decode(&sheet); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if sheet.Judge.ID != data.judge.ID {
		t.Errorf("expected judge %d, got %d", data.judge.ID, sheet.Judge.ID)
	}
	if len(sheet.Rounds) != 1 || len(sheet.Criteria) != 1 || len(sheet.Contestants) != 1 {
		t.Errorf("unexpected sheet shape: %d rounds, %d criteria, %d contestants",
			len(sheet.Rounds), len(sheet.Criteria), len(sheet.Contestants))
	}
	if !sheet.ScoringOpen {
		t.Error("expected scoring open in fresh setup")
	}
}

func TestHandleJudgeSheet_MissingPageantID(t *testing.T) {
	setup := newTestSetup(t)
	data := setup.seedPageant(t)

	rec := setup.doJSON(t, http.MethodGet, "/api/judge/"+data.judge.AccessCode+"/sheet", nil, false)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without pageant_id, got %d", rec.Code)
	}
}

func TestHandleJudgeQR(t *testing.T) {
	setup := newTestSetup(t)
	data := setup.seedPageant(t)

	rec := setup.doJSON(t, http.MethodGet, "/api/judge/"+data.judge.AccessCode+"/qr", nil, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("expected PNG payload")
	}
}

func TestHandleStageResult(t *testing.T) {
	setup := newTestSetup(t)
	data := setup.seedPageant(t)

	payload := handlers.ScoreSubmitRequest{
		AccessCode:   data.judge.AccessCode,
		PageantID:    data.pageantID,
		RoundID:      data.roundID,
		CriteriaID:   data.criteriaID,
		ContestantID: data.contestantID,
		Value:        90,
	}
	if rec := setup.doJSON(t, http.MethodPost, "/api/scores", payload, false); rec.Code != http.StatusOK {
		t.Fatalf("seed score: %d %s", rec.Code, rec.Body.String())
	}

	path := "/api/pageants/" + itoa(data.pageantID) + "/stages/preliminary/results"
	rec := setup.doJSON(t, http.MethodGet, path, nil, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result services.StageResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(result.Entries))
	}
	if result.Entries[0].Composite != 90 || result.Entries[0].Rank != 1 {
		t.Errorf("unexpected entry: %+v", result.Entries[0])
	}
}

func TestHandleStageResult_UnknownStage(t *testing.T) {
	setup := newTestSetup(t)
	data := setup.seedPageant(t)

	path := "/api/pageants/" + itoa(data.pageantID) + "/stages/swimsuit/results"
	rec := setup.doJSON(t, http.MethodGet, path, nil, false)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown stage, got %d", rec.Code)
	}
}

func TestHandleStageTypes(t *testing.T) {
	setup := newTestSetup(t)
	data := setup.seedPageant(t)

	rec := setup.doJSON(t, http.MethodGet, "/api/pageants/"+itoa(data.pageantID)+"/stages", nil, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp handlers.StageTypesResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.StageTypes) != 1 || resp.StageTypes[0] != "preliminary" {
		t.Errorf("unexpected stage types: %v", resp.StageTypes)
	}
}

func TestAdminAPI_RequiresAuth(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.doJSON(t, http.MethodGet, "/api/admin/pageants", nil, false)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", rec.Code)
	}
}

func TestHandleLogin_And_AdminAccess(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.doJSON(t, http.MethodPost, "/api/admin/login", handlers.LoginRequest{Password: "test-password"}, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on login, got %d: %s", rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/pageants", nil)
	req.AddCookie(cookies[0])
	rec2 := httptest.NewRecorder()
	setup.router.ServeHTTP(rec2, req)

	if rec2.Code != http.StatusOK {
		t.Errorf("expected 200 with fresh session, got %d", rec2.Code)
	}
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.doJSON(t, http.MethodPost, "/api/admin/login", handlers.LoginRequest{Password: "wrong"}, false)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestHandleCreatePageant(t *testing.T) {
	setup := newTestSetup(t)

	payload := handlers.PageantRequest{
		Name:           "Winter Gala",
		RankingMethod:  "rank_sum",
		TieHandling:    "minimum",
		ContestantType: "both",
		FinalScoreMode: "fresh",
	}
	rec := setup.doJSON(t, http.MethodPost, "/api/admin/pageants", payload, true)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var p models.Pageant
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if p.ID == 0 || p.RankingMethod != models.MethodRankSum {
		t.Errorf("unexpected pageant: %+v", p)
	}
}

func TestHandleCreatePageant_InvalidEnum(t *testing.T) {
	setup := newTestSetup(t)

	payload := handlers.PageantRequest{
		Name:           "Broken",
		RankingMethod:  "coin_flip",
		TieHandling:    "average",
		ContestantType: "solo",
		FinalScoreMode: "fresh",
	}
	rec := setup.doJSON(t, http.MethodPost, "/api/admin/pageants", payload, true)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleCreateJudge_AndList(t *testing.T) {
	setup := newTestSetup(t)
	data := setup.seedPageant(t)

	payload := handlers.JudgeCreateRequest{PageantID: data.pageantID, Name: "Judge B"}
	rec := setup.doJSON(t, http.MethodPost, "/api/admin/judges", payload, true)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var judge models.Judge
	if err := json.NewDecoder(rec.Body).Decode(&judge); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(judge.AccessCode) != 8 {
		t.Errorf("expected 8-character access code, got %q", judge.AccessCode)
	}

	rec2 := setup.doJSON(t, http.MethodGet, "/api/admin/pageants/"+itoa(data.pageantID)+"/judges", nil, true)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec2.Code)
	}
	var judges []models.Judge
	if err := json.NewDecoder(rec2.Body).Decode(&judges); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(judges) != 2 {
		t.Errorf("expected 2 judges, got %d", len(judges))
	}
}

func TestHandleSetScoringStatus(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.doJSON(t, http.MethodPost, "/api/admin/scoring-control", handlers.ScoringStatusRequest{Open: false}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec2 := setup.doJSON(t, http.MethodGet, "/api/scoring-status", nil, false)
	var resp handlers.ScoringStatusResponse
	if err := json.NewDecoder(rec2.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Open {
		t.Error("expected scoring closed after control call")
	}
}

func TestHandleFlushCache(t *testing.T) {
	setup := newTestSetup(t)
	data := setup.seedPageant(t)

	payload := handlers.ScoreSubmitRequest{
		AccessCode:   data.judge.AccessCode,
		PageantID:    data.pageantID,
		RoundID:      data.roundID,
		CriteriaID:   data.criteriaID,
		ContestantID: data.contestantID,
		Value:        85,
	}
	if rec := setup.doJSON(t, http.MethodPost, "/api/scores", payload, false); rec.Code != http.StatusOK {
		t.Fatalf("seed score: %d", rec.Code)
	}
	// Warm the cache through the results endpoint
	if rec := setup.doJSON(t, http.MethodGet, "/api/pageants/"+itoa(data.pageantID)+"/stages/preliminary/results", nil, false); rec.Code != http.StatusOK {
		t.Fatalf("warm cache: %d", rec.Code)
	}

	rec := setup.doJSON(t, http.MethodPost, "/api/admin/pageants/"+itoa(data.pageantID)+"/flush-cache", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp handlers.CacheFlushResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.InvalidatedKeys == 0 {
		t.Error("expected at least one invalidated key")
	}
}

func TestHandleDeleteScore(t *testing.T) {
	setup := newTestSetup(t)
	data := setup.seedPageant(t)

	payload := handlers.ScoreSubmitRequest{
		AccessCode:   data.judge.AccessCode,
		PageantID:    data.pageantID,
		RoundID:      data.roundID,
		CriteriaID:   data.criteriaID,
		ContestantID: data.contestantID,
		Value:        70,
	}
	rec := setup.doJSON(t, http.MethodPost, "/api/scores", payload, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed score: %d", rec.Code)
	}
	var score models.Score
	if err := json.NewDecoder(rec.Body).Decode(&score); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	rec2 := setup.doJSON(t, http.MethodDelete, "/api/scores/"+itoa(score.ID), nil, false)
	if rec2.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec2.Code)
	}

	rec3 := setup.doJSON(t, http.MethodDelete, "/api/scores/"+itoa(score.ID), nil, false)
	if rec3.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting twice, got %d", rec3.Code)
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
