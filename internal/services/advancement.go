package services

import (
	"context"
	"sort"

	"github.com/abrezinsky/crowntally/internal/logger"
	"github.com/abrezinsky/crowntally/internal/models"
	"github.com/abrezinsky/crowntally/internal/repository"
)

// AdvancementServiceRepository defines the repository methods needed by
// AdvancementService
type AdvancementServiceRepository interface {
	repository.PageantRepository
	repository.RoundRepository
	repository.ContestantRepository
}

// AdvancementService applies the top-N gate between stages. The gate
// follows the composed stage's ranks, so method-specific ordering such
// as the ordinal majority override carries through. Everyone tied at
// the boundary, by rank or by the composite underneath it, advances
// together.
type AdvancementService struct {
	log   logger.Logger
	repo  AdvancementServiceRepository
	stage StageServicer
}

// NewAdvancementService creates a new AdvancementService
func NewAdvancementService(log logger.Logger, repo AdvancementServiceRepository, stage StageServicer) *AdvancementService {
	return &AdvancementService{log: log, repo: repo, stage: stage}
}

// AdvancementResult lists who proceeds out of a stage. Gated is false
// when no round of the stage carries a top-N limit, in which case every
// ranked contestant advances.
type AdvancementResult struct {
	PageantID     int    `json:"pageant_id"`
	StageType     string `json:"stage_type"`
	TopN          int    `json:"top_n,omitempty"`
	Gated         bool   `json:"gated"`
	ContestantIDs []int  `json:"contestant_ids"`
}

// Advancers computes the set of contestants proceeding out of a stage.
// The gate is the largest top-N limit configured on the stage's rounds.
// Gendered pageants gate each gender group independently.
func (s *AdvancementService) Advancers(ctx context.Context, pageantID int, stageType string) (*AdvancementResult, error) {
	pageant, err := s.repo.GetPageant(ctx, pageantID)
	if err != nil {
		return nil, err
	}

	rounds, err := s.repo.ListRoundsByType(ctx, pageantID, stageType)
	if err != nil {
		return nil, err
	}
	if len(rounds) == 0 {
		return nil, ErrUnknownStage
	}

	topN := 0
	for _, r := range rounds {
		if r.TopNProceed != nil && *r.TopNProceed > topN {
			topN = *r.TopNProceed
		}
	}

	stage, err := s.stage.ComposeStage(ctx, pageantID, stageType, true)
	if err != nil {
		return nil, err
	}

	result := &AdvancementResult{
		PageantID: pageantID,
		StageType: stageType,
		TopN:      topN,
		Gated:     topN > 0,
	}

	if !result.Gated {
		s.log.Info("stage has no advancement gate, everyone proceeds",
			"pageant_id", pageantID, "stage_type", stageType)
		for _, e := range stage.Entries {
			result.ContestantIDs = append(result.ContestantIDs, e.ContestantID)
		}
		return result, nil
	}

	if pageant.ContestantType.Gendered() {
		groups := map[string][]StageEntry{}
		var order []string
		for _, e := range stage.Entries {
			gkey := e.Gender
			if e.IsPair {
				gkey = "pair"
			}
			if _, ok := groups[gkey]; !ok {
				order = append(order, gkey)
			}
			groups[gkey] = append(groups[gkey], e)
		}
		sort.Strings(order)
		for _, gkey := range order {
			result.ContestantIDs = append(result.ContestantIDs, gateGroup(groups[gkey], topN)...)
		}
	} else {
		result.ContestantIDs = gateGroup(stage.Entries, topN)
	}

	sort.Ints(result.ContestantIDs)
	return result, nil
}

// gateGroup admits the group's top n ranks plus everyone tied at the
// boundary, whether the tie shows in the rank number itself or in the
// composite beneath it (sequential tie handling assigns distinct ranks
// to equal composites, and an arbitrary half of a tie group must never
// be cut).
func gateGroup(entries []StageEntry, n int) []int {
	if len(entries) == 0 {
		return nil
	}
	sorted := make([]StageEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return groupRank(sorted[i]) < groupRank(sorted[j])
	})

	if n >= len(sorted) {
		ids := make([]int, len(sorted))
		for i, e := range sorted {
			ids[i] = e.ContestantID
		}
		return ids
	}

	boundary := sorted[n-1]
	cutoff := groupRank(boundary)
	var ids []int
	for _, e := range sorted {
		if groupRank(e) < cutoff+1e-9 || scoresTied(e.Composite, boundary.Composite) {
			ids = append(ids, e.ContestantID)
		}
	}
	return ids
}

// groupRank is the rank an entry holds inside its gate group: the
// gender rank when the stage was partitioned, the overall rank
// otherwise.
func groupRank(e StageEntry) float64 {
	if e.GenderRank != nil {
		return *e.GenderRank
	}
	return e.Rank
}

// scoresTied compares composites at the boundary tolerance
func scoresTied(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}

// EligibleForRound lists the contestants allowed to be scored in a
// round. Rounds with a previous stage configured admit only that
// stage's advancers; otherwise every active contestant is eligible.
func (s *AdvancementService) EligibleForRound(ctx context.Context, roundID int) ([]models.Contestant, error) {
	round, err := s.repo.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}

	contestants, err := s.repo.ListContestants(ctx, round.PageantID)
	if err != nil {
		return nil, err
	}
	if round.PreviousType == "" {
		return contestants, nil
	}

	adv, err := s.Advancers(ctx, round.PageantID, round.PreviousType)
	if err != nil {
		return nil, err
	}
	advanced := make(map[int]bool, len(adv.ContestantIDs))
	for _, id := range adv.ContestantIDs {
		advanced[id] = true
	}

	var eligible []models.Contestant
	for _, c := range contestants {
		if advanced[c.ID] {
			eligible = append(eligible, c)
		}
	}
	return eligible, nil
}

var _ AdvancementServicer = (*AdvancementService)(nil)
