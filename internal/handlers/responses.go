package handlers

import "github.com/abrezinsky/crowntally/internal/models"

// ScoringStatusResponse reports the scoring switch state
type ScoringStatusResponse struct {
	Open bool `json:"open"`
}

// JudgeSheetResponse is everything a judge's scoring screen needs: the
// rounds and criteria of the pageant plus their own prior scores.
type JudgeSheetResponse struct {
	Judge       models.Judge        `json:"judge"`
	Pageant     models.Pageant      `json:"pageant"`
	Rounds      []models.Round      `json:"rounds"`
	Criteria    []models.Criteria   `json:"criteria"`
	Contestants []models.Contestant `json:"contestants"`
	Scores      []models.Score      `json:"scores"`
	ScoringOpen bool                `json:"scoring_open"`
}

// StageTypesResponse lists a pageant's stages in order
type StageTypesResponse struct {
	StageTypes []string `json:"stage_types"`
	FinalStage string   `json:"final_stage,omitempty"`
}

// CacheFlushResponse reports how many cached results were dropped
type CacheFlushResponse struct {
	InvalidatedKeys int `json:"invalidated_keys"`
}
