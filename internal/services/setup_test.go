package services_test

import (
	"context"
	"testing"

	"github.com/abrezinsky/crowntally/internal/cache"
	"github.com/abrezinsky/crowntally/internal/logger"
	"github.com/abrezinsky/crowntally/internal/models"
	"github.com/abrezinsky/crowntally/internal/repository"
	"github.com/abrezinsky/crowntally/internal/services"
	"github.com/abrezinsky/crowntally/internal/testutil"
)

// fixture bundles everything a service test needs. Tests mutate the
// seeded data through the repo as needed.
type fixture struct {
	repo    *repository.Repository
	cache   *cache.Cache
	scoring *services.ScoringService
	stage   *services.StageService
	adv     *services.AdvancementService
	pageant *services.PageantService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	log := logger.New()
	c := cache.New()
	scoring := services.NewScoringService(log, repo, c, nil)
	stage := services.NewStageService(log, repo, scoring, c, nil)
	adv := services.NewAdvancementService(log, repo, stage)
	pageant := services.NewPageantService(log, repo, c)
	return &fixture{repo: repo, cache: c, scoring: scoring, stage: stage, adv: adv, pageant: pageant}
}

// seedPageant creates a pageant with the given ranking configuration
func (f *fixture) seedPageant(t *testing.T, method models.RankingMethod, tie models.TieHandling, ct models.ContestantType) int {
	t.Helper()
	id, err := f.repo.CreatePageant(context.Background(), models.Pageant{
		Name:           "Test Pageant",
		RankingMethod:  method,
		TieHandling:    tie,
		ContestantType: ct,
		FinalScoreMode: models.FinalFresh,
	})
	if err != nil {
		t.Fatalf("CreatePageant: %v", err)
	}
	return int(id)
}

// seedRound creates a round with one full-range criterion and returns
// both ids
func (f *fixture) seedRound(t *testing.T, pageantID int, name, stageType string, weight, order int) (int, int) {
	t.Helper()
	roundID, err := f.repo.CreateRound(context.Background(), models.Round{
		PageantID:    pageantID,
		Name:         name,
		Type:         stageType,
		Weight:       weight,
		DisplayOrder: order,
	})
	if err != nil {
		t.Fatalf("CreateRound: %v", err)
	}
	criteriaID, err := f.repo.CreateCriteria(context.Background(), models.Criteria{
		RoundID:       int(roundID),
		Name:          "Overall",
		Weight:        100,
		MinScore:      0,
		MaxScore:      100,
		AllowDecimals: true,
		DecimalPlaces: 2,
	})
	if err != nil {
		t.Fatalf("CreateCriteria: %v", err)
	}
	return int(roundID), int(criteriaID)
}

func (f *fixture) seedContestant(t *testing.T, pageantID int, number, name, gender string) int {
	t.Helper()
	id, err := f.repo.CreateContestant(context.Background(), models.Contestant{
		PageantID: pageantID,
		Number:    number,
		Name:      name,
		Gender:    gender,
		Active:    true,
	})
	if err != nil {
		t.Fatalf("CreateContestant: %v", err)
	}
	return int(id)
}

func (f *fixture) seedJudge(t *testing.T, pageantID int, name, code string) int {
	t.Helper()
	id, err := f.repo.CreateJudge(context.Background(), models.Judge{Name: name, AccessCode: code})
	if err != nil {
		t.Fatalf("CreateJudge: %v", err)
	}
	if err := f.repo.AssignJudge(context.Background(), pageantID, int(id)); err != nil {
		t.Fatalf("AssignJudge: %v", err)
	}
	return int(id)
}

// submit records one score directly through the scoring service
func (f *fixture) submit(t *testing.T, pageantID, roundID, criteriaID, contestantID, judgeID int, value float64) {
	t.Helper()
	_, err := f.scoring.SubmitScore(context.Background(), models.Score{
		PageantID:    pageantID,
		RoundID:      roundID,
		CriteriaID:   criteriaID,
		ContestantID: contestantID,
		JudgeID:      judgeID,
		Value:        value,
	})
	if err != nil {
		t.Fatalf("SubmitScore: %v", err)
	}
}
