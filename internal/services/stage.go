package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/abrezinsky/crowntally/internal/cache"
	"github.com/abrezinsky/crowntally/internal/errors"
	"github.com/abrezinsky/crowntally/internal/logger"
	"github.com/abrezinsky/crowntally/internal/metrics"
	"github.com/abrezinsky/crowntally/internal/models"
	"github.com/abrezinsky/crowntally/internal/repository"
)

// StageServiceRepository defines the repository methods needed by StageService
type StageServiceRepository interface {
	repository.PageantRepository
	repository.RoundRepository
	repository.ContestantRepository
	repository.JudgeRepository
}

// StageService composes round aggregates into per-stage composites and
// ranks, dispatching on the pageant's ranking method.
type StageService struct {
	log     logger.Logger
	repo    StageServiceRepository
	scoring ScoringServicer
	cache   *cache.Cache
	metrics *metrics.Metrics
}

// NewStageService creates a new StageService
func NewStageService(log logger.Logger, repo StageServiceRepository, scoring ScoringServicer, c *cache.Cache, m *metrics.Metrics) *StageService {
	return &StageService{log: log, repo: repo, scoring: scoring, cache: c, metrics: m}
}

// StageEntry is one contestant's line in a stage result
type StageEntry struct {
	ContestantID int                `json:"contestant_id"`
	Number       string             `json:"number"`
	Name         string             `json:"name"`
	Gender       string             `json:"gender"`
	IsPair       bool               `json:"is_pair,omitempty"`
	RoundScores  map[string]float64 `json:"round_scores"`
	Composite    float64            `json:"composite"`
	Rank         float64            `json:"rank"`
	GenderRank   *float64           `json:"gender_rank,omitempty"`
}

// StageResult is a composed, ranked stage. Entries are ordered best
// first.
type StageResult struct {
	PageantID int                  `json:"pageant_id"`
	StageType string               `json:"stage_type"`
	Method    models.RankingMethod `json:"method"`
	Entries   []StageEntry         `json:"entries"`
}

// AwardWinner is one recipient of a per-round minor award
type AwardWinner struct {
	ContestantID int     `json:"contestant_id"`
	Number       string  `json:"number"`
	Name         string  `json:"name"`
	Score        float64 `json:"score"`
}

// RoundAward names the best-scoring contestant(s) of one round. Ties
// within tolerance all receive the award. Gendered pageants produce one
// award per gender group per round.
type RoundAward struct {
	RoundID   int           `json:"round_id"`
	RoundName string        `json:"round_name"`
	Group     string        `json:"group,omitempty"`
	Winners   []AwardWinner `json:"winners"`
}

// ComposeStage composes and ranks one stage, reading through the cache.
// Pass useCache=false to force recomputation (audit tooling); the fresh
// result still replaces the cached entry.
func (s *StageService) ComposeStage(ctx context.Context, pageantID int, stageType string, useCache bool) (*StageResult, error) {
	key := cache.StageKey(pageantID, stageType)
	if useCache {
		if v, ok := s.cache.Get(key); ok {
			return v.(*StageResult), nil
		}
	}

	result, err := s.composeStage(ctx, pageantID, stageType, nil, useCache)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, result, cache.StageTTL)
	return result, nil
}

// ComposeStageRounds composes a stage restricted to a subset of its
// rounds. Subset results are never cached.
func (s *StageService) ComposeStageRounds(ctx context.Context, pageantID int, stageType string, roundIDs []int) (*StageResult, error) {
	subset := make(map[int]bool, len(roundIDs))
	for _, id := range roundIDs {
		subset[id] = true
	}
	return s.composeStage(ctx, pageantID, stageType, subset, true)
}

// composeStage builds one stage. useCache=false recomputes the round
// aggregates too, so an audit read is cache-free all the way down.
func (s *StageService) composeStage(ctx context.Context, pageantID int, stageType string, subset map[int]bool, useCache bool) (*StageResult, error) {
	start := time.Now()

	pageant, err := s.repo.GetPageant(ctx, pageantID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("pageant %d not found", pageantID)
		}
		return nil, err
	}

	rounds, err := s.repo.ListRoundsByType(ctx, pageantID, stageType)
	if err != nil {
		return nil, err
	}
	if subset != nil {
		filtered := rounds[:0]
		for _, r := range rounds {
			if subset[r.ID] {
				filtered = append(filtered, r)
			}
		}
		rounds = filtered
	}
	if len(rounds) == 0 {
		return nil, ErrUnknownStage
	}

	contestants, err := s.repo.ListContestants(ctx, pageantID)
	if err != nil {
		return nil, err
	}

	// Round aggregates per contestant. Contestants without a single
	// round score in this stage are excluded from the ranking rather
	// than coerced to zero.
	type scored struct {
		contestant models.Contestant
		byRound    map[int]float64
	}
	var pool []scored
	for _, c := range contestants {
		byRound := make(map[int]float64, len(rounds))
		for _, r := range rounds {
			v, ok, err := s.scoring.RoundScore(ctx, pageantID, r.ID, c.ID, useCache)
			if err != nil {
				return nil, err
			}
			if ok {
				byRound[r.ID] = v
			}
		}
		if len(byRound) > 0 {
			pool = append(pool, scored{contestant: c, byRound: byRound})
		}
	}

	result := &StageResult{
		PageantID: pageantID,
		StageType: stageType,
		Method:    pageant.RankingMethod,
	}
	if len(pool) == 0 {
		s.observe(pageant.RankingMethod, start)
		return result, nil
	}

	// Gendered pageants rank each gender group independently. Pair
	// contestants form their own group since a pair has no single
	// gender.
	groups := map[string][]scored{}
	var groupOrder []string
	for _, sc := range pool {
		key := ""
		if pageant.ContestantType.Gendered() {
			key = sc.contestant.Gender
			if sc.contestant.IsPair {
				key = "pair"
			}
		}
		if _, ok := groups[key]; !ok {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], sc)
	}
	sort.Strings(groupOrder)

	entries := make(map[int]*StageEntry, len(pool))
	for _, sc := range pool {
		roundScores := make(map[string]float64, len(sc.byRound))
		for _, r := range rounds {
			if v, ok := sc.byRound[r.ID]; ok {
				roundScores[r.Name] = v
			}
		}
		entries[sc.contestant.ID] = &StageEntry{
			ContestantID: sc.contestant.ID,
			Number:       sc.contestant.Number,
			Name:         sc.contestant.Name,
			Gender:       sc.contestant.Gender,
			IsPair:       sc.contestant.IsPair,
			RoundScores:  roundScores,
		}
	}

	for _, gkey := range groupOrder {
		group := groups[gkey]
		ids := make([]int, len(group))
		values := make(map[int]map[int]float64, len(group))
		for i, sc := range group {
			ids[i] = sc.contestant.ID
			values[sc.contestant.ID] = sc.byRound
		}

		var composites map[int]float64
		var groupRanks map[int]float64
		switch pageant.RankingMethod {
		case models.MethodRankSum:
			composites = s.composeRankSum(ids, values, rounds, pageant.TieHandling)
			groupRanks = rankFromComposites(ids, composites, AscendingBetter, pageant.TieHandling)
		case models.MethodOrdinal:
			var err error
			composites, groupRanks, err = s.composeOrdinal(ctx, pageantID, ids, rounds, pageant.TieHandling)
			if err != nil {
				return nil, err
			}
		default: // models.MethodScoreAverage
			composites = s.composeScoreAverage(ids, values, rounds)
			groupRanks = rankFromComposites(ids, composites, DescendingBetter, pageant.TieHandling)
		}

		for _, id := range ids {
			e := entries[id]
			e.Composite = composites[id]
			if pageant.ContestantType.Gendered() {
				r := groupRanks[id]
				e.GenderRank = &r
			} else {
				e.Rank = groupRanks[id]
			}
		}
	}

	// Global position across all groups, from the merged composites.
	if pageant.ContestantType.Gendered() {
		merged := make([]RankEntry, 0, len(pool))
		for _, sc := range pool {
			merged = append(merged, RankEntry{ID: sc.contestant.ID, Value: entries[sc.contestant.ID].Composite})
		}
		global := RankValues(merged, methodDirection(pageant.RankingMethod), pageant.TieHandling)
		for id, rank := range global {
			entries[id].Rank = rank
		}
	}

	result.Entries = make([]StageEntry, 0, len(entries))
	for _, e := range entries {
		result.Entries = append(result.Entries, *e)
	}
	sort.Slice(result.Entries, func(i, j int) bool {
		if result.Entries[i].Rank != result.Entries[j].Rank {
			return result.Entries[i].Rank < result.Entries[j].Rank
		}
		return result.Entries[i].Number < result.Entries[j].Number
	})

	s.observe(pageant.RankingMethod, start)
	return result, nil
}

// composeScoreAverage builds composites as round-weight weighted means
// of the round scores each contestant has. Higher is better.
func (s *StageService) composeScoreAverage(ids []int, values map[int]map[int]float64, rounds []models.Round) map[int]float64 {
	composites := make(map[int]float64, len(ids))
	for _, id := range ids {
		var weightedSum, totalWeight float64
		for _, r := range rounds {
			v, ok := values[id][r.ID]
			if !ok {
				continue
			}
			w := roundWeight(s.log, r)
			weightedSum += v * w
			totalWeight += w
		}
		if totalWeight > 0 {
			composites[id] = weightedSum / totalWeight
		}
	}
	return composites
}

// composeRankSum ranks each round first, then weights the rank numbers
// themselves: contribution = (roundRank / 100) * roundWeight, composite
// = mean contribution. Lower is better, mirroring the spreadsheet
// convention this method reproduces.
func (s *StageService) composeRankSum(ids []int, values map[int]map[int]float64, rounds []models.Round, tie models.TieHandling) map[int]float64 {
	sums := make(map[int]float64, len(ids))
	counts := make(map[int]int, len(ids))

	for _, r := range rounds {
		var entries []RankEntry
		for _, id := range ids {
			if v, ok := values[id][r.ID]; ok {
				entries = append(entries, RankEntry{ID: id, Value: v})
			}
		}
		if len(entries) == 0 {
			continue
		}
		ranks := RankValues(entries, DescendingBetter, tie)
		w := roundWeight(s.log, r)
		for id, rank := range ranks {
			sums[id] += rank / 100 * w
			counts[id]++
		}
	}

	composites := make(map[int]float64, len(ids))
	for id, sum := range sums {
		composites[id] = sum / float64(counts[id])
	}
	return composites
}

// composeOrdinal tallies judge rank ballots for the stage's rounds. A
// contestant holding a strict majority of first-place ballots wins
// outright; everyone else is ordered by ascending ballot sum (golf
// scoring). The composite is the ballot sum.
func (s *StageService) composeOrdinal(ctx context.Context, pageantID int, ids []int, rounds []models.Round, tie models.TieHandling) (map[int]float64, map[int]float64, error) {
	judges, err := s.repo.ListJudges(ctx, pageantID)
	if err != nil {
		return nil, nil, err
	}

	idSet := make(map[int]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	firstVotes := make(map[int]int, len(ids))
	ballotSums := make(map[int]float64, len(ids))
	balloted := make(map[int]bool) // judges who cast at least one ballot

	for _, r := range rounds {
		for _, j := range judges {
			for _, id := range ids {
				ballot, ok, err := s.scoring.JudgeScore(ctx, pageantID, r.ID, id, j.ID)
				if err != nil {
					return nil, nil, err
				}
				if !ok {
					continue
				}
				balloted[j.ID] = true
				ballotSums[id] += ballot
				if math.Abs(ballot-1) < 1e-9 {
					firstVotes[id]++
				}
			}
		}
	}

	electorate := len(balloted) * len(rounds)

	// Strict majority of first-place ballots wins outright.
	winner := 0
	for id, votes := range firstVotes {
		if electorate > 0 && votes*2 > electorate {
			winner = id
			break
		}
	}

	ranks := make(map[int]float64, len(ids))
	var rest []RankEntry
	for _, id := range ids {
		if _, ok := ballotSums[id]; !ok {
			continue
		}
		if id == winner {
			continue
		}
		rest = append(rest, RankEntry{ID: id, Value: ballotSums[id]})
	}

	restRanks := RankValues(rest, AscendingBetter, tie)
	if winner != 0 {
		ranks[winner] = 1
		for id, rank := range restRanks {
			ranks[id] = rank + 1
		}
	} else {
		for id, rank := range restRanks {
			ranks[id] = rank
		}
	}
	return ballotSums, ranks, nil
}

// MinorAwards finds the best-scoring contestant(s) per round of a
// stage. Scores within 1e-5 of the best are all awarded. Gendered
// pageants produce independent awards per gender group.
func (s *StageService) MinorAwards(ctx context.Context, pageantID int, stageType string) ([]RoundAward, error) {
	pageant, err := s.repo.GetPageant(ctx, pageantID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("pageant %d not found", pageantID)
		}
		return nil, err
	}

	rounds, err := s.repo.ListRoundsByType(ctx, pageantID, stageType)
	if err != nil {
		return nil, err
	}
	if len(rounds) == 0 {
		return nil, ErrUnknownStage
	}

	contestants, err := s.repo.ListContestants(ctx, pageantID)
	if err != nil {
		return nil, err
	}

	var awards []RoundAward
	for _, r := range rounds {
		type line struct {
			contestant models.Contestant
			score      float64
		}
		groups := map[string][]line{}
		var order []string
		for _, c := range contestants {
			v, ok, err := s.scoring.RoundScore(ctx, pageantID, r.ID, c.ID, true)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			key := ""
			if pageant.ContestantType.Gendered() {
				key = c.Gender
				if c.IsPair {
					key = "pair"
				}
			}
			if _, seen := groups[key]; !seen {
				order = append(order, key)
			}
			groups[key] = append(groups[key], line{contestant: c, score: v})
		}
		sort.Strings(order)

		for _, gkey := range order {
			lines := groups[gkey]
			best := lines[0].score
			for _, l := range lines[1:] {
				if l.score > best {
					best = l.score
				}
			}
			award := RoundAward{RoundID: r.ID, RoundName: r.Name, Group: gkey}
			for _, l := range lines {
				if scoresEqual(l.score, best) {
					award.Winners = append(award.Winners, AwardWinner{
						ContestantID: l.contestant.ID,
						Number:       l.contestant.Number,
						Name:         l.contestant.Name,
						Score:        l.score,
					})
				}
			}
			awards = append(awards, award)
		}
	}
	return awards, nil
}

// FinalResult composes the pageant's final stage. In inherit mode prior
// stages contribute their configured percentages to the composite; in
// fresh mode only the final stage counts.
func (s *StageService) FinalResult(ctx context.Context, pageantID int, useCache bool) (*StageResult, error) {
	key := cache.FinalKey(pageantID)
	if useCache {
		if v, ok := s.cache.Get(key); ok {
			return v.(*StageResult), nil
		}
	}

	pageant, err := s.repo.GetPageant(ctx, pageantID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("pageant %d not found", pageantID)
		}
		return nil, err
	}

	stageTypes, err := s.repo.ListStageTypes(ctx, pageantID)
	if err != nil {
		return nil, err
	}
	if len(stageTypes) == 0 {
		return nil, ErrNoFinalStage
	}
	finalType := stageTypes[len(stageTypes)-1]

	if pageant.FinalScoreMode != models.FinalInherit {
		result, err := s.ComposeStage(ctx, pageantID, finalType, useCache)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, result, cache.StageTTL)
		return result, nil
	}

	if err := ValidateInheritance(pageant.FinalScoreInheritance); err != nil {
		return nil, err
	}

	finalStage, err := s.ComposeStage(ctx, pageantID, finalType, useCache)
	if err != nil {
		return nil, err
	}

	// Blend each contributing stage's composite at its configured
	// percentage. Only contestants still present in the final stage
	// are ranked.
	blended := make(map[int]float64, len(finalStage.Entries))
	for _, e := range finalStage.Entries {
		blended[e.ContestantID] = 0
	}
	for stageType, pct := range pageant.FinalScoreInheritance {
		var stage *StageResult
		if stageType == finalType {
			stage = finalStage
		} else {
			stage, err = s.ComposeStage(ctx, pageantID, stageType, useCache)
			if err != nil {
				return nil, err
			}
		}
		seen := make(map[int]bool, len(stage.Entries))
		for _, e := range stage.Entries {
			if _, finalist := blended[e.ContestantID]; finalist {
				blended[e.ContestantID] += e.Composite * pct / 100
				seen[e.ContestantID] = true
			}
		}
		for id := range blended {
			if !seen[id] {
				s.log.Warn("finalist missing from inherited stage",
					"contestant_id", id, "stage_type", stageType)
			}
		}
	}

	result := &StageResult{
		PageantID: pageantID,
		StageType: finalType,
		Method:    pageant.RankingMethod,
		Entries:   make([]StageEntry, 0, len(finalStage.Entries)),
	}

	merged := make([]RankEntry, 0, len(blended))
	for _, e := range finalStage.Entries {
		e.Composite = blended[e.ContestantID]
		result.Entries = append(result.Entries, e)
		merged = append(merged, RankEntry{ID: e.ContestantID, Value: e.Composite})
	}
	dir := methodDirection(pageant.RankingMethod)
	global := RankValues(merged, dir, pageant.TieHandling)

	// Per-group ranks, recomputed from the blended composites.
	groupEntries := map[string][]RankEntry{}
	for i := range result.Entries {
		e := &result.Entries[i]
		e.Rank = global[e.ContestantID]
		if pageant.ContestantType.Gendered() {
			gkey := e.Gender
			if e.IsPair {
				gkey = "pair"
			}
			groupEntries[gkey] = append(groupEntries[gkey], RankEntry{ID: e.ContestantID, Value: e.Composite})
		}
	}
	if pageant.ContestantType.Gendered() {
		genderRanks := make(map[int]float64)
		for _, group := range groupEntries {
			for id, rank := range RankValues(group, dir, pageant.TieHandling) {
				genderRanks[id] = rank
			}
		}
		for i := range result.Entries {
			r := genderRanks[result.Entries[i].ContestantID]
			result.Entries[i].GenderRank = &r
		}
	}

	sort.Slice(result.Entries, func(i, j int) bool {
		if result.Entries[i].Rank != result.Entries[j].Rank {
			return result.Entries[i].Rank < result.Entries[j].Rank
		}
		return result.Entries[i].Number < result.Entries[j].Number
	})

	s.cache.Set(key, result, cache.StageTTL)
	return result, nil
}

// InvalidatePageant drops every cached result for a pageant, for
// administrative recomputation after reconfiguration.
func (s *StageService) InvalidatePageant(pageantID int) cache.Invalidation {
	return s.cache.InvalidatePageant(pageantID)
}

func (s *StageService) observe(method models.RankingMethod, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveCompose(string(method), time.Since(start))
	}
}

// methodDirection maps a ranking method to its better-value direction
func methodDirection(m models.RankingMethod) RankDirection {
	if m == models.MethodRankSum || m == models.MethodOrdinal {
		return AscendingBetter
	}
	return DescendingBetter
}

// rankFromComposites ranks one group's composite values
func rankFromComposites(ids []int, composites map[int]float64, dir RankDirection, tie models.TieHandling) map[int]float64 {
	entries := make([]RankEntry, 0, len(ids))
	for _, id := range ids {
		if v, ok := composites[id]; ok {
			entries = append(entries, RankEntry{ID: id, Value: v})
		}
	}
	return RankValues(entries, dir, tie)
}
