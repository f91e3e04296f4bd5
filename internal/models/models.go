package models

import "fmt"

// RankingMethod selects how a pageant's stage composites are built.
type RankingMethod string

const (
	// MethodScoreAverage weights round scores directly; higher is better.
	MethodScoreAverage RankingMethod = "score_average"
	// MethodRankSum weights per-round ranks instead of scores; lower is better.
	MethodRankSum RankingMethod = "rank_sum"
	// MethodOrdinal uses judge-submitted rank ballots for the deciding stage.
	MethodOrdinal RankingMethod = "ordinal"
)

// ParseRankingMethod validates a ranking method string
func ParseRankingMethod(s string) (RankingMethod, error) {
	switch RankingMethod(s) {
	case MethodScoreAverage, MethodRankSum, MethodOrdinal:
		return RankingMethod(s), nil
	}
	return "", fmt.Errorf("unknown ranking method: %q", s)
}

// TieHandling selects how tied values are assigned ranks.
type TieHandling string

const (
	// TieSequential breaks ties by insertion order; ranks are gapless.
	TieSequential TieHandling = "sequential"
	// TieAverage gives tied values the mean of the positions they occupy (RANK.AVG).
	TieAverage TieHandling = "average"
	// TieMinimum gives tied values the best position they occupy (RANK.MIN).
	TieMinimum TieHandling = "minimum"
)

// ParseTieHandling validates a tie handling string
func ParseTieHandling(s string) (TieHandling, error) {
	switch TieHandling(s) {
	case TieSequential, TieAverage, TieMinimum:
		return TieHandling(s), nil
	}
	return "", fmt.Errorf("unknown tie handling: %q", s)
}

// ContestantType describes which contestant configurations a pageant allows.
type ContestantType string

const (
	ContestantSolo  ContestantType = "solo"
	ContestantPairs ContestantType = "pairs"
	ContestantBoth  ContestantType = "both"
)

// ParseContestantType validates a contestant type string
func ParseContestantType(s string) (ContestantType, error) {
	switch ContestantType(s) {
	case ContestantSolo, ContestantPairs, ContestantBoth:
		return ContestantType(s), nil
	}
	return "", fmt.Errorf("unknown contestant type: %q", s)
}

// Gendered reports whether rankings must be partitioned by gender.
func (c ContestantType) Gendered() bool {
	return c == ContestantPairs || c == ContestantBoth
}

// FinalScoreMode controls whether prior stages contribute to the final composite.
type FinalScoreMode string

const (
	FinalFresh   FinalScoreMode = "fresh"
	FinalInherit FinalScoreMode = "inherit"
)

// ParseFinalScoreMode validates a final score mode string
func ParseFinalScoreMode(s string) (FinalScoreMode, error) {
	switch FinalScoreMode(s) {
	case FinalFresh, FinalInherit:
		return FinalScoreMode(s), nil
	}
	return "", fmt.Errorf("unknown final score mode: %q", s)
}

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Pageant is a competitive event with configured scoring behavior
type Pageant struct {
	ID             int            `json:"id"`
	Name           string         `json:"name"`
	RankingMethod  RankingMethod  `json:"ranking_method"`
	TieHandling    TieHandling    `json:"tie_handling"`
	ContestantType ContestantType `json:"contestant_type"`
	FinalScoreMode FinalScoreMode `json:"final_score_mode"`
	// FinalScoreInheritance maps stage type to a percentage contribution.
	// Must sum to 100 when FinalScoreMode is inherit.
	FinalScoreInheritance map[string]float64 `json:"final_score_inheritance,omitempty"`
	CreatedAt             string             `json:"created_at,omitempty"`
}

// Round is one weighted scoring event within a stage. Rounds sharing a
// Type form a stage.
type Round struct {
	ID           int    `json:"id"`
	PageantID    int    `json:"pageant_id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Weight       int    `json:"weight"`
	DisplayOrder int    `json:"display_order"`
	// TopNProceed gates advancement out of this round's stage. Nil means
	// no gating is configured.
	TopNProceed *int `json:"top_n_proceed,omitempty"`
	// PreviousType names the stage a contestant must have survived to
	// compete in this round. Empty means open to all contestants.
	PreviousType string `json:"previous_type,omitempty"`
}

// Criteria is a judged criterion within a round
type Criteria struct {
	ID            int     `json:"id"`
	RoundID       int     `json:"round_id"`
	Name          string  `json:"name"`
	Segment       string  `json:"segment,omitempty"`
	Weight        float64 `json:"weight"`
	MinScore      float64 `json:"min_score"`
	MaxScore      float64 `json:"max_score"`
	AllowDecimals bool    `json:"allow_decimals"`
	DecimalPlaces int     `json:"decimal_places"`
	DisplayOrder  int     `json:"display_order"`
}

// Contestant represents an entrant in a pageant. A pair contestant
// references its two members; each member belongs to at most one pair.
type Contestant struct {
	ID          int    `json:"id"`
	PageantID   int    `json:"pageant_id"`
	Number      string `json:"number"`
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	IsPair      bool   `json:"is_pair"`
	MemberOneID *int   `json:"member_one_id,omitempty"`
	MemberTwoID *int   `json:"member_two_id,omitempty"`
	Active      bool   `json:"active"`
}

// Judge is a scoring panelist, signed in via a unique access code
type Judge struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	AccessCode string `json:"access_code"`
}

// Score is one judge's recorded value for one criterion of one
// contestant in one round. Unique per (round, criteria, contestant, judge).
type Score struct {
	ID           int     `json:"id"`
	PageantID    int     `json:"pageant_id"`
	RoundID      int     `json:"round_id"`
	CriteriaID   int     `json:"criteria_id"`
	ContestantID int     `json:"contestant_id"`
	JudgeID      int     `json:"judge_id"`
	Value        float64 `json:"value"`
	UpdatedAt    string  `json:"updated_at,omitempty"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
