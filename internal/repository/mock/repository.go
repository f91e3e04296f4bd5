package mock

import (
	"context"

	"github.com/abrezinsky/crowntally/internal/models"
	"github.com/abrezinsky/crowntally/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for
// testing. This provides a flexible way to test error paths without
// complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.ListScoresError = errors.New("database error")
//	svc := services.NewScoringService(log, mockRepo, cache, nil)
//	_, _, err := svc.RoundScore(ctx, pageantID, roundID, contestantID, true)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Pageant Errors =====
	CreatePageantError error
	GetPageantError    error
	ListPageantsError  error
	UpdatePageantError error
	DeletePageantError error

	// ===== Round Errors =====
	CreateRoundError     error
	GetRoundError        error
	ListRoundsError      error
	ListRoundsByTypeError error
	ListStageTypesError  error
	UpdateRoundError     error
	DeleteRoundError     error

	// ===== Criteria Errors =====
	CreateCriteriaError      error
	GetCriteriaError         error
	ListCriteriaByRoundError error
	UpdateCriteriaError      error
	DeleteCriteriaError      error

	// ===== Contestant Errors =====
	CreateContestantError error
	GetContestantError    error
	ListContestantsError  error
	UpdateContestantError error
	DeleteContestantError error

	// ===== Judge Errors =====
	CreateJudgeError          error
	GetJudgeError             error
	GetJudgeByAccessCodeError error
	ListJudgesError           error
	AssignJudgeError          error
	UnassignJudgeError        error
	IsJudgeAssignedError      error
	DeleteJudgeError          error

	// ===== Score Errors =====
	ListScoresError  error
	GetScoreError    error
	SaveScoreError   error
	DeleteScoreError error

	// ===== Settings Errors =====
	GetSettingError error
	SetSettingError error
	ClearTableError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{FullRepository: real}
}

func (m *Repository) CreatePageant(ctx context.Context, p models.Pageant) (int64, error) {
	if m.CreatePageantError != nil {
		return 0, m.CreatePageantError
	}
	return m.FullRepository.CreatePageant(ctx, p)
}

func (m *Repository) GetPageant(ctx context.Context, id int) (*models.Pageant, error) {
	if m.GetPageantError != nil {
		return nil, m.GetPageantError
	}
	return m.FullRepository.GetPageant(ctx, id)
}

func (m *Repository) ListPageants(ctx context.Context) ([]models.Pageant, error) {
	if m.ListPageantsError != nil {
		return nil, m.ListPageantsError
	}
	return m.FullRepository.ListPageants(ctx)
}

func (m *Repository) UpdatePageant(ctx context.Context, p models.Pageant) error {
	if m.UpdatePageantError != nil {
		return m.UpdatePageantError
	}
	return m.FullRepository.UpdatePageant(ctx, p)
}

func (m *Repository) DeletePageant(ctx context.Context, id int) error {
	if m.DeletePageantError != nil {
		return m.DeletePageantError
	}
	return m.FullRepository.DeletePageant(ctx, id)
}

func (m *Repository) CreateRound(ctx context.Context, r models.Round) (int64, error) {
	if m.CreateRoundError != nil {
		return 0, m.CreateRoundError
	}
	return m.FullRepository.CreateRound(ctx, r)
}

func (m *Repository) GetRound(ctx context.Context, id int) (*models.Round, error) {
	if m.GetRoundError != nil {
		return nil, m.GetRoundError
	}
	return m.FullRepository.GetRound(ctx, id)
}

func (m *Repository) ListRounds(ctx context.Context, pageantID int) ([]models.Round, error) {
	if m.ListRoundsError != nil {
		return nil, m.ListRoundsError
	}
	return m.FullRepository.ListRounds(ctx, pageantID)
}

func (m *Repository) ListRoundsByType(ctx context.Context, pageantID int, stageType string) ([]models.Round, error) {
	if m.ListRoundsByTypeError != nil {
		return nil, m.ListRoundsByTypeError
	}
	return m.FullRepository.ListRoundsByType(ctx, pageantID, stageType)
}

func (m *Repository) ListStageTypes(ctx context.Context, pageantID int) ([]string, error) {
	if m.ListStageTypesError != nil {
		return nil, m.ListStageTypesError
	}
	return m.FullRepository.ListStageTypes(ctx, pageantID)
}

func (m *Repository) UpdateRound(ctx context.Context, r models.Round) error {
	if m.UpdateRoundError != nil {
		return m.UpdateRoundError
	}
	return m.FullRepository.UpdateRound(ctx, r)
}

func (m *Repository) DeleteRound(ctx context.Context, id int) error {
	if m.DeleteRoundError != nil {
		return m.DeleteRoundError
	}
	return m.FullRepository.DeleteRound(ctx, id)
}

func (m *Repository) CreateCriteria(ctx context.Context, c models.Criteria) (int64, error) {
	if m.CreateCriteriaError != nil {
		return 0, m.CreateCriteriaError
	}
	return m.FullRepository.CreateCriteria(ctx, c)
}

func (m *Repository) GetCriteria(ctx context.Context, id int) (*models.Criteria, error) {
	if m.GetCriteriaError != nil {
		return nil, m.GetCriteriaError
	}
	return m.FullRepository.GetCriteria(ctx, id)
}

func (m *Repository) ListCriteriaByRound(ctx context.Context, roundID int) ([]models.Criteria, error) {
	if m.ListCriteriaByRoundError != nil {
		return nil, m.ListCriteriaByRoundError
	}
	return m.FullRepository.ListCriteriaByRound(ctx, roundID)
}

func (m *Repository) UpdateCriteria(ctx context.Context, c models.Criteria) error {
	if m.UpdateCriteriaError != nil {
		return m.UpdateCriteriaError
	}
	return m.FullRepository.UpdateCriteria(ctx, c)
}

func (m *Repository) DeleteCriteria(ctx context.Context, id int) error {
	if m.DeleteCriteriaError != nil {
		return m.DeleteCriteriaError
	}
	return m.FullRepository.DeleteCriteria(ctx, id)
}

func (m *Repository) CreateContestant(ctx context.Context, c models.Contestant) (int64, error) {
	if m.CreateContestantError != nil {
		return 0, m.CreateContestantError
	}
	return m.FullRepository.CreateContestant(ctx, c)
}

func (m *Repository) GetContestant(ctx context.Context, id int) (*models.Contestant, error) {
	if m.GetContestantError != nil {
		return nil, m.GetContestantError
	}
	return m.FullRepository.GetContestant(ctx, id)
}

func (m *Repository) ListContestants(ctx context.Context, pageantID int) ([]models.Contestant, error) {
	if m.ListContestantsError != nil {
		return nil, m.ListContestantsError
	}
	return m.FullRepository.ListContestants(ctx, pageantID)
}

func (m *Repository) UpdateContestant(ctx context.Context, c models.Contestant) error {
	if m.UpdateContestantError != nil {
		return m.UpdateContestantError
	}
	return m.FullRepository.UpdateContestant(ctx, c)
}

func (m *Repository) DeleteContestant(ctx context.Context, id int) error {
	if m.DeleteContestantError != nil {
		return m.DeleteContestantError
	}
	return m.FullRepository.DeleteContestant(ctx, id)
}

func (m *Repository) CreateJudge(ctx context.Context, j models.Judge) (int64, error) {
	if m.CreateJudgeError != nil {
		return 0, m.CreateJudgeError
	}
	return m.FullRepository.CreateJudge(ctx, j)
}

func (m *Repository) GetJudge(ctx context.Context, id int) (*models.Judge, error) {
	if m.GetJudgeError != nil {
		return nil, m.GetJudgeError
	}
	return m.FullRepository.GetJudge(ctx, id)
}

func (m *Repository) GetJudgeByAccessCode(ctx context.Context, code string) (*models.Judge, error) {
	if m.GetJudgeByAccessCodeError != nil {
		return nil, m.GetJudgeByAccessCodeError
	}
	return m.FullRepository.GetJudgeByAccessCode(ctx, code)
}

func (m *Repository) ListJudges(ctx context.Context, pageantID int) ([]models.Judge, error) {
	if m.ListJudgesError != nil {
		return nil, m.ListJudgesError
	}
	return m.FullRepository.ListJudges(ctx, pageantID)
}

func (m *Repository) AssignJudge(ctx context.Context, pageantID, judgeID int) error {
	if m.AssignJudgeError != nil {
		return m.AssignJudgeError
	}
	return m.FullRepository.AssignJudge(ctx, pageantID, judgeID)
}

func (m *Repository) UnassignJudge(ctx context.Context, pageantID, judgeID int) error {
	if m.UnassignJudgeError != nil {
		return m.UnassignJudgeError
	}
	return m.FullRepository.UnassignJudge(ctx, pageantID, judgeID)
}

func (m *Repository) IsJudgeAssigned(ctx context.Context, pageantID, judgeID int) (bool, error) {
	if m.IsJudgeAssignedError != nil {
		return false, m.IsJudgeAssignedError
	}
	return m.FullRepository.IsJudgeAssigned(ctx, pageantID, judgeID)
}

func (m *Repository) DeleteJudge(ctx context.Context, id int) error {
	if m.DeleteJudgeError != nil {
		return m.DeleteJudgeError
	}
	return m.FullRepository.DeleteJudge(ctx, id)
}

func (m *Repository) ListScores(ctx context.Context, f repository.ScoreFilter) ([]models.Score, error) {
	if m.ListScoresError != nil {
		return nil, m.ListScoresError
	}
	return m.FullRepository.ListScores(ctx, f)
}

func (m *Repository) GetScore(ctx context.Context, id int) (*models.Score, error) {
	if m.GetScoreError != nil {
		return nil, m.GetScoreError
	}
	return m.FullRepository.GetScore(ctx, id)
}

func (m *Repository) SaveScore(ctx context.Context, s models.Score) (*models.Score, error) {
	if m.SaveScoreError != nil {
		return nil, m.SaveScoreError
	}
	return m.FullRepository.SaveScore(ctx, s)
}

func (m *Repository) DeleteScore(ctx context.Context, id int) error {
	if m.DeleteScoreError != nil {
		return m.DeleteScoreError
	}
	return m.FullRepository.DeleteScore(ctx, id)
}

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

func (m *Repository) ClearTable(ctx context.Context, table string) error {
	if m.ClearTableError != nil {
		return m.ClearTableError
	}
	return m.FullRepository.ClearTable(ctx, table)
}
