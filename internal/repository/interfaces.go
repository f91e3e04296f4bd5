package repository

import (
	"context"

	"github.com/abrezinsky/crowntally/internal/models"
)

// PageantRepository defines pageant configuration data operations
type PageantRepository interface {
	CreatePageant(ctx context.Context, p models.Pageant) (int64, error)
	GetPageant(ctx context.Context, id int) (*models.Pageant, error)
	ListPageants(ctx context.Context) ([]models.Pageant, error)
	UpdatePageant(ctx context.Context, p models.Pageant) error
	DeletePageant(ctx context.Context, id int) error
}

// RoundRepository defines round data operations
type RoundRepository interface {
	CreateRound(ctx context.Context, r models.Round) (int64, error)
	GetRound(ctx context.Context, id int) (*models.Round, error)
	ListRounds(ctx context.Context, pageantID int) ([]models.Round, error)
	ListRoundsByType(ctx context.Context, pageantID int, stageType string) ([]models.Round, error)
	ListStageTypes(ctx context.Context, pageantID int) ([]string, error)
	UpdateRound(ctx context.Context, r models.Round) error
	DeleteRound(ctx context.Context, id int) error
}

// CriteriaRepository defines criteria data operations
type CriteriaRepository interface {
	CreateCriteria(ctx context.Context, c models.Criteria) (int64, error)
	GetCriteria(ctx context.Context, id int) (*models.Criteria, error)
	ListCriteriaByRound(ctx context.Context, roundID int) ([]models.Criteria, error)
	UpdateCriteria(ctx context.Context, c models.Criteria) error
	DeleteCriteria(ctx context.Context, id int) error
}

// ContestantRepository defines contestant data operations
type ContestantRepository interface {
	CreateContestant(ctx context.Context, c models.Contestant) (int64, error)
	GetContestant(ctx context.Context, id int) (*models.Contestant, error)
	ListContestants(ctx context.Context, pageantID int) ([]models.Contestant, error)
	UpdateContestant(ctx context.Context, c models.Contestant) error
	DeleteContestant(ctx context.Context, id int) error
}

// JudgeRepository defines judge data operations
type JudgeRepository interface {
	CreateJudge(ctx context.Context, j models.Judge) (int64, error)
	GetJudge(ctx context.Context, id int) (*models.Judge, error)
	GetJudgeByAccessCode(ctx context.Context, code string) (*models.Judge, error)
	ListJudges(ctx context.Context, pageantID int) ([]models.Judge, error)
	AssignJudge(ctx context.Context, pageantID, judgeID int) error
	UnassignJudge(ctx context.Context, pageantID, judgeID int) error
	IsJudgeAssigned(ctx context.Context, pageantID, judgeID int) (bool, error)
	DeleteJudge(ctx context.Context, id int) error
}

// ScoreFilter narrows a score listing. Zero fields are ignored.
type ScoreFilter struct {
	PageantID    int
	RoundID      int
	ContestantID int
	JudgeID      int
	CriteriaID   int
}

// ScoreRepository defines score data operations. Every mutating call is
// expected to be followed by cache invalidation at the service layer.
type ScoreRepository interface {
	ListScores(ctx context.Context, f ScoreFilter) ([]models.Score, error)
	GetScore(ctx context.Context, id int) (*models.Score, error)
	// SaveScore inserts or updates by the (round, criteria, contestant,
	// judge) unique tuple and returns the persisted row.
	SaveScore(ctx context.Context, s models.Score) (*models.Score, error)
	DeleteScore(ctx context.Context, id int) error
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ClearTable(ctx context.Context, table string) error
}

// FullRepository combines all repository interfaces.
// Use this when a service needs access to multiple domains.
type FullRepository interface {
	PageantRepository
	RoundRepository
	CriteriaRepository
	ContestantRepository
	JudgeRepository
	ScoreRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
