package services

import (
	"context"
	"math"

	"github.com/abrezinsky/crowntally/internal/cache"
	"github.com/abrezinsky/crowntally/internal/errors"
	"github.com/abrezinsky/crowntally/internal/logger"
	"github.com/abrezinsky/crowntally/internal/metrics"
	"github.com/abrezinsky/crowntally/internal/models"
	"github.com/abrezinsky/crowntally/internal/repository"
)

// ScoringServiceRepository defines the repository methods needed by ScoringService
type ScoringServiceRepository interface {
	repository.ScoreRepository
	repository.CriteriaRepository
	repository.RoundRepository
	repository.ContestantRepository
	repository.JudgeRepository
	repository.SettingsRepository
}

// RankingsNotifier is told that a score mutation changed a pageant's
// derived results. Delivery is fire-and-forget; a failing notifier must
// never fail the scoring write.
type RankingsNotifier interface {
	RankingsChanged(pageantID int, inv cache.Invalidation)
}

// ScoringService persists judge scores and computes the judge and round
// aggregates they roll up into.
type ScoringService struct {
	log      logger.Logger
	repo     ScoringServiceRepository
	cache    *cache.Cache
	metrics  *metrics.Metrics
	notifier RankingsNotifier
}

// NewScoringService creates a new ScoringService
func NewScoringService(log logger.Logger, repo ScoringServiceRepository, c *cache.Cache, m *metrics.Metrics) *ScoringService {
	return &ScoringService{log: log, repo: repo, cache: c, metrics: m}
}

// SetNotifier sets the rankings-changed notifier
func (s *ScoringService) SetNotifier(n RankingsNotifier) {
	s.notifier = n
}

// IsScoringOpen reports whether score submission is currently allowed
func (s *ScoringService) IsScoringOpen(ctx context.Context) (bool, error) {
	value, err := s.repo.GetSetting(ctx, "scoring_open")
	if err != nil {
		if err == repository.ErrNotFound {
			return true, nil // default open when the setting is missing
		}
		return false, err
	}
	return value == "true", nil
}

// SubmitScore validates and persists one judge's value for one
// criterion, then invalidates the affected cache entries. Invalidation
// happens after the write commits so a subsequent read can never see a
// stale entry for the mutated key.
func (s *ScoringService) SubmitScore(ctx context.Context, score models.Score) (*models.Score, error) {
	open, err := s.IsScoringOpen(ctx)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, ErrScoringClosed
	}

	round, err := s.repo.GetRound(ctx, score.RoundID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("round %d not found", score.RoundID)
		}
		return nil, err
	}
	if round.PageantID != score.PageantID {
		return nil, ErrRoundMismatch
	}

	criteria, err := s.repo.GetCriteria(ctx, score.CriteriaID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("criteria %d not found", score.CriteriaID)
		}
		return nil, err
	}
	if criteria.RoundID != score.RoundID {
		return nil, ErrCriteriaMismatch
	}

	contestant, err := s.repo.GetContestant(ctx, score.ContestantID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("contestant %d not found", score.ContestantID)
		}
		return nil, err
	}
	if !contestant.Active {
		return nil, ErrContestantInactive
	}

	assigned, err := s.repo.IsJudgeAssigned(ctx, score.PageantID, score.JudgeID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, ErrJudgeNotAssigned
	}

	if err := ValidateScoreValue(*criteria, score.Value); err != nil {
		return nil, err
	}

	saved, err := s.repo.SaveScore(ctx, score)
	if err != nil {
		return nil, err
	}

	inv := s.cache.InvalidateScore(saved.PageantID, saved.ContestantID, saved.RoundID)
	s.log.Debug("score saved",
		"score_id", saved.ID, "judge_id", saved.JudgeID,
		"contestant_id", saved.ContestantID, "round_id", saved.RoundID,
		"invalidated", inv.Removed)
	if s.metrics != nil {
		s.metrics.ScoreSubmitted()
	}
	s.notifyAsync(saved.PageantID, inv)

	return saved, nil
}

// DeleteScore removes a score and invalidates the affected cache entries
func (s *ScoringService) DeleteScore(ctx context.Context, id int) error {
	score, err := s.repo.GetScore(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFoundf("score %d not found", id)
		}
		return err
	}

	if err := s.repo.DeleteScore(ctx, id); err != nil {
		return err
	}

	inv := s.cache.InvalidateScore(score.PageantID, score.ContestantID, score.RoundID)
	s.log.Debug("score deleted", "score_id", id, "invalidated", inv.Removed)
	if s.metrics != nil {
		s.metrics.ScoreDeleted()
	}
	s.notifyAsync(score.PageantID, inv)

	return nil
}

// ListScores exposes filtered score listing for the scoring sheet
func (s *ScoringService) ListScores(ctx context.Context, f repository.ScoreFilter) ([]models.Score, error) {
	return s.repo.ListScores(ctx, f)
}

func (s *ScoringService) notifyAsync(pageantID int, inv cache.Invalidation) {
	if s.notifier == nil {
		return
	}
	go s.notifier.RankingsChanged(pageantID, inv)
}

// JudgeScore combines one judge's criterion scores for one contestant
// in one round into a single weighted value. The second return value is
// false when the judge has not scored any criterion of the round for
// the contestant.
func (s *ScoringService) JudgeScore(ctx context.Context, pageantID, roundID, contestantID, judgeID int) (float64, bool, error) {
	scores, err := s.repo.ListScores(ctx, repository.ScoreFilter{
		PageantID:    pageantID,
		RoundID:      roundID,
		ContestantID: contestantID,
		JudgeID:      judgeID,
	})
	if err != nil {
		return 0, false, err
	}
	if len(scores) == 0 {
		return 0, false, nil
	}

	criteria, err := s.repo.ListCriteriaByRound(ctx, roundID)
	if err != nil {
		return 0, false, err
	}
	weights := make(map[int]float64, len(criteria))
	for _, c := range criteria {
		weights[c.ID] = criteriaWeight(s.log, c)
	}

	var weightedSum, totalWeight float64
	for _, sc := range scores {
		w, ok := weights[sc.CriteriaID]
		if !ok {
			// Score for a criterion that was since deleted; skip it.
			s.log.Warn("score references unknown criteria, skipping",
				"score_id", sc.ID, "criteria_id", sc.CriteriaID)
			continue
		}
		weightedSum += sc.Value * w
		totalWeight += w
	}

	if totalWeight <= 0 {
		s.log.Warn("judge aggregate has zero total weight",
			"judge_id", judgeID, "contestant_id", contestantID, "round_id", roundID)
		return 0, false, nil
	}
	return weightedSum / totalWeight, true, nil
}

// RoundScore is the plain mean of the judge aggregates that exist for a
// contestant in a round. Judges who have not scored are excluded, never
// counted as zero. Results are cached per (contestant, round).
func (s *ScoringService) RoundScore(ctx context.Context, pageantID, roundID, contestantID int, useCache bool) (float64, bool, error) {
	key := cache.RoundKey(pageantID, contestantID, roundID)
	if useCache {
		if v, ok := s.cache.Get(key); ok {
			rv := v.(roundValue)
			return rv.Value, rv.OK, nil
		}
	}

	judges, err := s.repo.ListJudges(ctx, pageantID)
	if err != nil {
		return 0, false, err
	}

	var sum float64
	var n int
	for _, j := range judges {
		v, ok, err := s.JudgeScore(ctx, pageantID, roundID, contestantID, j.ID)
		if err != nil {
			return 0, false, err
		}
		if ok {
			sum += v
			n++
		}
	}

	var rv roundValue
	if n > 0 {
		rv = roundValue{Value: sum / float64(n), OK: true}
	}
	// A failed computation never reaches here, so only real results are
	// cached.
	s.cache.Set(key, rv, cache.RoundTTL)
	return rv.Value, rv.OK, nil
}

// roundValue is the cached form of a round aggregate. OK false means
// "no judge has scored this contestant yet", which is itself cacheable.
type roundValue struct {
	Value float64
	OK    bool
}

// scoresEqual compares round scores with the tolerance used for minor
// award ties.
func scoresEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-5
}
