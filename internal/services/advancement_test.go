package services_test

import (
	"context"
	"testing"

	"github.com/abrezinsky/crowntally/internal/models"
)

// seedGatedRound creates a round whose stage gates advancement at topN
func (f *fixture) seedGatedRound(t *testing.T, pageantID int, name, stageType string, topN int) (int, int) {
	t.Helper()
	roundID, err := f.repo.CreateRound(context.Background(), models.Round{
		PageantID: pageantID, Name: name, Type: stageType,
		Weight: 100, DisplayOrder: 1, TopNProceed: &topN,
	})
	if err != nil {
		t.Fatalf("CreateRound: %v", err)
	}
	criteriaID, err := f.repo.CreateCriteria(context.Background(), models.Criteria{
		RoundID: int(roundID), Name: "Overall", Weight: 100, MinScore: 0, MaxScore: 100,
		AllowDecimals: true, DecimalPlaces: 2,
	})
	if err != nil {
		t.Fatalf("CreateCriteria: %v", err)
	}
	return int(roundID), int(criteriaID)
}

func TestAdvancers_BoundaryTieExpandsGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pageantID := f.seedPageant(t, models.MethodScoreAverage, models.TieAverage, models.ContestantSolo)
	roundID, criteriaID := f.seedGatedRound(t, pageantID, "Preliminary", "preliminary", 3)
	judge := f.seedJudge(t, pageantID, "Judge A", "aaaa1111")

	scores := []float64{97, 95, 90, 90, 90, 85}
	ids := make([]int, len(scores))
	for i, v := range scores {
		ids[i] = f.seedContestant(t, pageantID, string(rune('A'+i)), "Contestant", "")
		f.submit(t, pageantID, roundID, criteriaID, ids[i], judge, v)
	}

	result, err := f.adv.Advancers(ctx, pageantID, "preliminary")
	if err != nil {
		t.Fatalf("Advancers: %v", err)
	}
	if !result.Gated || result.TopN != 3 {
		t.Fatalf("expected gated top-3, got gated=%v topN=%d", result.Gated, result.TopN)
	}

	// Three contestants tie for the third slot, so five advance
	if len(result.ContestantIDs) != 5 {
		t.Fatalf("expected 5 advancers with boundary tie, got %d", len(result.ContestantIDs))
	}
	advanced := make(map[int]bool)
	for _, id := range result.ContestantIDs {
		advanced[id] = true
	}
	if advanced[ids[5]] {
		t.Error("85-point contestant should not advance")
	}
	for i := 0; i < 5; i++ {
		if !advanced[ids[i]] {
			t.Errorf("contestant with score %v should advance", scores[i])
		}
	}
}

func TestAdvancers_OrdinalMajorityWinnerAlwaysAdvances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pageantID := f.seedPageant(t, models.MethodOrdinal, models.TieAverage, models.ContestantSolo)
	roundID, criteriaID := f.seedGatedRound(t, pageantID, "Ballot", "preliminary", 1)

	judges := make([]int, 5)
	for i := range judges {
		judges[i] = f.seedJudge(t, pageantID, "Judge", "code000"+string(rune('1'+i)))
	}

	alice := f.seedContestant(t, pageantID, "01", "Alice", "")
	beth := f.seedContestant(t, pageantID, "02", "Beth", "")
	cara := f.seedContestant(t, pageantID, "03", "Cara", "")

	// Alice holds a strict majority of first-place ballots (3 of 5) but
	// Beth has the lower ballot sum (8 vs 9)
	ballots := map[int][]float64{
		alice: {1, 1, 1, 3, 3},
		beth:  {2, 2, 2, 1, 1},
		cara:  {3, 3, 3, 2, 2},
	}
	for id, ranks := range ballots {
		for i, v := range ranks {
			f.submit(t, pageantID, roundID, criteriaID, id, judges[i], v)
		}
	}

	stage, err := f.stage.ComposeStage(ctx, pageantID, "preliminary", false)
	if err != nil {
		t.Fatalf("ComposeStage: %v", err)
	}
	if e := entryByID(t, stage, alice); e.Rank != 1 {
		t.Fatalf("majority winner should rank 1, got %v", e.Rank)
	}

	result, err := f.adv.Advancers(ctx, pageantID, "preliminary")
	if err != nil {
		t.Fatalf("Advancers: %v", err)
	}
	if len(result.ContestantIDs) != 1 || result.ContestantIDs[0] != alice {
		t.Fatalf("the rank-1 contestant must advance through a top-1 gate, got %v", result.ContestantIDs)
	}
}

func TestAdvancers_UngatedStageAdvancesEveryone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pageantID := f.seedPageant(t, models.MethodScoreAverage, models.TieAverage, models.ContestantSolo)
	roundID, criteriaID := f.seedRound(t, pageantID, "Preliminary", "preliminary", 100, 1)
	judge := f.seedJudge(t, pageantID, "Judge A", "aaaa1111")

	for i, v := range []float64{90, 80, 70} {
		id := f.seedContestant(t, pageantID, string(rune('A'+i)), "Contestant", "")
		f.submit(t, pageantID, roundID, criteriaID, id, judge, v)
	}

	result, err := f.adv.Advancers(ctx, pageantID, "preliminary")
	if err != nil {
		t.Fatalf("Advancers: %v", err)
	}
	if result.Gated {
		t.Error("stage without top-N limits must report Gated=false")
	}
	if len(result.ContestantIDs) != 3 {
		t.Errorf("expected all 3 to advance, got %d", len(result.ContestantIDs))
	}
}

func TestAdvancers_GenderedGatePerGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pageantID := f.seedPageant(t, models.MethodScoreAverage, models.TieAverage, models.ContestantBoth)
	roundID, criteriaID := f.seedGatedRound(t, pageantID, "Preliminary", "preliminary", 2)
	judge := f.seedJudge(t, pageantID, "Judge A", "aaaa1111")

	var males, females []int
	for i, v := range []float64{90, 85, 80} {
		id := f.seedContestant(t, pageantID, "M"+string(rune('1'+i)), "Male", models.GenderMale)
		males = append(males, id)
		f.submit(t, pageantID, roundID, criteriaID, id, judge, v)
	}
	for i, v := range []float64{95, 88, 70} {
		id := f.seedContestant(t, pageantID, "F"+string(rune('1'+i)), "Female", models.GenderFemale)
		females = append(females, id)
		f.submit(t, pageantID, roundID, criteriaID, id, judge, v)
	}

	result, err := f.adv.Advancers(ctx, pageantID, "preliminary")
	if err != nil {
		t.Fatalf("Advancers: %v", err)
	}

	// Top 2 per gender group, 4 total
	if len(result.ContestantIDs) != 4 {
		t.Fatalf("expected 4 advancers (2 per gender), got %d", len(result.ContestantIDs))
	}
	advanced := make(map[int]bool)
	for _, id := range result.ContestantIDs {
		advanced[id] = true
	}
	if !advanced[males[0]] || !advanced[males[1]] || advanced[males[2]] {
		t.Error("male group should advance its top 2 only")
	}
	if !advanced[females[0]] || !advanced[females[1]] || advanced[females[2]] {
		t.Error("female group should advance its top 2 only")
	}
}

func TestEligibleForRound_FiltersByPreviousStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pageantID := f.seedPageant(t, models.MethodScoreAverage, models.TieAverage, models.ContestantSolo)
	prelimID, prelimCriteria := f.seedGatedRound(t, pageantID, "Preliminary", "preliminary", 1)
	judge := f.seedJudge(t, pageantID, "Judge A", "aaaa1111")

	alice := f.seedContestant(t, pageantID, "01", "Alice", "")
	beth := f.seedContestant(t, pageantID, "02", "Beth", "")
	f.submit(t, pageantID, prelimID, prelimCriteria, alice, judge, 90)
	f.submit(t, pageantID, prelimID, prelimCriteria, beth, judge, 80)

	finalRound, err := f.repo.CreateRound(ctx, models.Round{
		PageantID: pageantID, Name: "Crowning", Type: "final",
		Weight: 100, DisplayOrder: 2, PreviousType: "preliminary",
	})
	if err != nil {
		t.Fatalf("CreateRound: %v", err)
	}

	eligible, err := f.adv.EligibleForRound(ctx, int(finalRound))
	if err != nil {
		t.Fatalf("EligibleForRound: %v", err)
	}
	if len(eligible) != 1 || eligible[0].ID != alice {
		t.Fatalf("expected only Alice eligible for the final, got %+v", eligible)
	}
}

func TestEligibleForRound_OpenRoundAdmitsAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pageantID := f.seedPageant(t, models.MethodScoreAverage, models.TieAverage, models.ContestantSolo)
	roundID, _ := f.seedRound(t, pageantID, "Preliminary", "preliminary", 100, 1)
	f.seedContestant(t, pageantID, "01", "Alice", "")
	f.seedContestant(t, pageantID, "02", "Beth", "")

	eligible, err := f.adv.EligibleForRound(ctx, roundID)
	if err != nil {
		t.Fatalf("EligibleForRound: %v", err)
	}
	if len(eligible) != 2 {
		t.Errorf("expected both contestants eligible, got %d", len(eligible))
	}
}
