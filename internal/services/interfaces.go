package services

import (
	"context"

	"github.com/abrezinsky/crowntally/internal/cache"
	"github.com/abrezinsky/crowntally/internal/models"
	"github.com/abrezinsky/crowntally/internal/repository"
)

// ScoringServicer handles score submission and aggregation
type ScoringServicer interface {
	IsScoringOpen(ctx context.Context) (bool, error)
	SubmitScore(ctx context.Context, score models.Score) (*models.Score, error)
	DeleteScore(ctx context.Context, id int) error
	ListScores(ctx context.Context, f repository.ScoreFilter) ([]models.Score, error)
	JudgeScore(ctx context.Context, pageantID, roundID, contestantID, judgeID int) (float64, bool, error)
	RoundScore(ctx context.Context, pageantID, roundID, contestantID int, useCache bool) (float64, bool, error)
	SetNotifier(n RankingsNotifier)
}

// StageServicer composes stage and final results
type StageServicer interface {
	ComposeStage(ctx context.Context, pageantID int, stageType string, useCache bool) (*StageResult, error)
	ComposeStageRounds(ctx context.Context, pageantID int, stageType string, roundIDs []int) (*StageResult, error)
	MinorAwards(ctx context.Context, pageantID int, stageType string) ([]RoundAward, error)
	FinalResult(ctx context.Context, pageantID int, useCache bool) (*StageResult, error)
	InvalidatePageant(pageantID int) cache.Invalidation
}

// AdvancementServicer decides who proceeds between stages
type AdvancementServicer interface {
	Advancers(ctx context.Context, pageantID int, stageType string) (*AdvancementResult, error)
	EligibleForRound(ctx context.Context, roundID int) ([]models.Contestant, error)
}

// PageantServicer manages pageant configuration and participants
type PageantServicer interface {
	CreatePageant(ctx context.Context, p models.Pageant) (*models.Pageant, error)
	GetPageant(ctx context.Context, id int) (*models.Pageant, error)
	ListPageants(ctx context.Context) ([]models.Pageant, error)
	UpdatePageant(ctx context.Context, p models.Pageant) (*models.Pageant, error)
	DeletePageant(ctx context.Context, id int) error

	CreateRound(ctx context.Context, r models.Round) (*models.Round, error)
	ListRounds(ctx context.Context, pageantID int) ([]models.Round, error)
	UpdateRound(ctx context.Context, r models.Round) (*models.Round, error)
	DeleteRound(ctx context.Context, id int) error
	ListStageTypes(ctx context.Context, pageantID int) ([]string, error)

	CreateCriteria(ctx context.Context, c models.Criteria) (*models.Criteria, error)
	ListCriteria(ctx context.Context, roundID int) ([]models.Criteria, error)
	UpdateCriteria(ctx context.Context, c models.Criteria) (*models.Criteria, error)
	DeleteCriteria(ctx context.Context, id int) error

	CreateContestant(ctx context.Context, c models.Contestant) (*models.Contestant, error)
	ListContestants(ctx context.Context, pageantID int) ([]models.Contestant, error)
	UpdateContestant(ctx context.Context, c models.Contestant) (*models.Contestant, error)
	DeleteContestant(ctx context.Context, id int) error

	CreateJudge(ctx context.Context, pageantID int, name string) (*models.Judge, error)
	ListJudges(ctx context.Context, pageantID int) ([]models.Judge, error)
	GetJudgeByAccessCode(ctx context.Context, code string) (*models.Judge, error)
	DeleteJudge(ctx context.Context, id int) error
	JudgeQRCode(baseURL, accessCode string) ([]byte, error)

	SetScoringOpen(ctx context.Context, open bool) error
}

var _ ScoringServicer = (*ScoringService)(nil)
var _ StageServicer = (*StageService)(nil)
