package handlers

// LoginRequest is the organizer sign-in body
type LoginRequest struct {
	Password string `json:"password"`
}

// PageantRequest creates or updates a pageant
type PageantRequest struct {
	Name                  string             `json:"name"`
	RankingMethod         string             `json:"ranking_method"`
	TieHandling           string             `json:"tie_handling"`
	ContestantType        string             `json:"contestant_type"`
	FinalScoreMode        string             `json:"final_score_mode"`
	FinalScoreInheritance map[string]float64 `json:"final_score_inheritance,omitempty"`
}

// RoundRequest creates or updates a round
type RoundRequest struct {
	PageantID    int    `json:"pageant_id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Weight       int    `json:"weight"`
	DisplayOrder int    `json:"display_order"`
	TopNProceed  *int   `json:"top_n_proceed,omitempty"`
	PreviousType string `json:"previous_type,omitempty"`
}

// CriteriaRequest creates or updates a criterion
type CriteriaRequest struct {
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

// ContestantRequest creates or updates a contestant
type ContestantRequest struct {
	PageantID   int    `json:"pageant_id"`
	Number      string `json:"number"`
	Name        string `json:"name"`
	Gender      string `json:"gender,omitempty"`
	IsPair      bool   `json:"is_pair,omitempty"`
	MemberOneID *int   `json:"member_one_id,omitempty"`
	MemberTwoID *int   `json:"member_two_id,omitempty"`
	Active      bool   `json:"active"`
}

// JudgeCreateRequest creates a judge assigned to a pageant
type JudgeCreateRequest struct {
	PageantID int    `json:"pageant_id"`
	Name      string `json:"name"`
}

// ScoreSubmitRequest submits or revises one score
type ScoreSubmitRequest struct {
	AccessCode   string  `json:"access_code"`
	PageantID    int     `json:"pageant_id"`
	RoundID      int     `json:"round_id"`
	CriteriaID   int     `json:"criteria_id"`
	ContestantID int     `json:"contestant_id"`
	Value        float64 `json:"value"`
}

// ScoringStatusRequest opens or closes scoring
type ScoringStatusRequest struct {
	Open bool `json:"open"`
}
