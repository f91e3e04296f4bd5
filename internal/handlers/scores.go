package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/crowntally/internal/models"
	"github.com/abrezinsky/crowntally/internal/repository"
)

// handleSubmitScore records one judge score, resolving the judge from
// their access code
func (h *Handlers) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreSubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	judge, err := h.Pageant.GetJudgeByAccessCode(r.Context(), req.AccessCode)
	if err != nil {
		respondError(w, err)
		return
	}

	score, err := h.Scoring.SubmitScore(r.Context(), models.Score{
		PageantID:    req.PageantID,
		RoundID:      req.RoundID,
		CriteriaID:   req.CriteriaID,
		ContestantID: req.ContestantID,
		JudgeID:      judge.ID,
		Value:        req.Value,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, score)
}

// handleDeleteScore removes one score by id
func (h *Handlers) handleDeleteScore(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Scoring.DeleteScore(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// handleListScores lists scores filtered by query parameters
func (h *Handlers) handleListScores(w http.ResponseWriter, r *http.Request) {
	f := repository.ScoreFilter{
		PageantID:    queryInt(r, "pageant_id"),
		RoundID:      queryInt(r, "round_id"),
		ContestantID: queryInt(r, "contestant_id"),
		JudgeID:      queryInt(r, "judge_id"),
		CriteriaID:   queryInt(r, "criteria_id"),
	}
	scores, err := h.Scoring.ListScores(r.Context(), f)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, scores)
}

// handleJudgeSheet assembles a judge's scoring screen: pageant
// configuration, their eligible contestants per round, and the scores
// they have already submitted
func (h *Handlers) handleJudgeSheet(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "accessCode")
	judge, err := h.Pageant.GetJudgeByAccessCode(r.Context(), code)
	if err != nil {
		respondError(w, err)
		return
	}

	pageantID := queryInt(r, "pageant_id")
	if pageantID == 0 {
		respondError(w, BadRequest("Missing pageant_id parameter"))
		return
	}

	pageant, err := h.Pageant.GetPageant(r.Context(), pageantID)
	if err != nil {
		respondError(w, err)
		return
	}

	rounds, err := h.Pageant.ListRounds(r.Context(), pageantID)
	if err != nil {
		respondError(w, err)
		return
	}

	var criteria []models.Criteria
	for _, round := range rounds {
		cs, err := h.Pageant.ListCriteria(r.Context(), round.ID)
		if err != nil {
			respondError(w, err)
			return
		}
		criteria = append(criteria, cs...)
	}

	contestants, err := h.Pageant.ListContestants(r.Context(), pageantID)
	if err != nil {
		respondError(w, err)
		return
	}

	scores, err := h.Scoring.ListScores(r.Context(), repository.ScoreFilter{
		PageantID: pageantID,
		JudgeID:   judge.ID,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	open, err := h.Scoring.IsScoringOpen(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, JudgeSheetResponse{
		Judge:       *judge,
		Pageant:     *pageant,
		Rounds:      rounds,
		Criteria:    criteria,
		Contestants: contestants,
		Scores:      scores,
		ScoringOpen: open,
	})
}

// handleScoringStatus reports whether scoring is open
func (h *Handlers) handleScoringStatus(w http.ResponseWriter, r *http.Request) {
	open, err := h.Scoring.IsScoringOpen(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ScoringStatusResponse{Open: open})
}

// queryInt parses an optional integer query parameter; 0 means absent
func queryInt(r *http.Request, name string) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
