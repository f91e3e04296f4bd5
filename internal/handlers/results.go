package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// parseUseCache honors an explicit fresh=true query parameter; results
// endpoints read through the cache otherwise
func parseUseCache(r *http.Request) bool {
	return r.URL.Query().Get("fresh") != "true"
}

// handleStageResult returns a composed, ranked stage
func (h *Handlers) handleStageResult(w http.ResponseWriter, r *http.Request) {
	pageantID, err := parseIntParam(r, "pageantID")
	if err != nil {
		respondError(w, err)
		return
	}
	stageType := chi.URLParam(r, "stageType")

	if roundsParam := r.URL.Query().Get("rounds"); roundsParam != "" {
		var roundIDs []int
		for _, part := range strings.Split(roundsParam, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				respondError(w, BadRequest("Invalid rounds parameter"))
				return
			}
			roundIDs = append(roundIDs, id)
		}
		result, err := h.Stage.ComposeStageRounds(r.Context(), pageantID, stageType, roundIDs)
		if err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, result)
		return
	}

	result, err := h.Stage.ComposeStage(r.Context(), pageantID, stageType, parseUseCache(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

// handleFinalResult returns the pageant's final standing
func (h *Handlers) handleFinalResult(w http.ResponseWriter, r *http.Request) {
	pageantID, err := parseIntParam(r, "pageantID")
	if err != nil {
		respondError(w, err)
		return
	}
	result, err := h.Stage.FinalResult(r.Context(), pageantID, parseUseCache(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

// handleMinorAwards returns the per-round best-score awards of a stage
func (h *Handlers) handleMinorAwards(w http.ResponseWriter, r *http.Request) {
	pageantID, err := parseIntParam(r, "pageantID")
	if err != nil {
		respondError(w, err)
		return
	}
	stageType := chi.URLParam(r, "stageType")

	awards, err := h.Stage.MinorAwards(r.Context(), pageantID, stageType)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, awards)
}

// handleAdvancers returns who proceeds out of a stage
func (h *Handlers) handleAdvancers(w http.ResponseWriter, r *http.Request) {
	pageantID, err := parseIntParam(r, "pageantID")
	if err != nil {
		respondError(w, err)
		return
	}
	stageType := chi.URLParam(r, "stageType")

	result, err := h.Advancement.Advancers(r.Context(), pageantID, stageType)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

// handleEligible returns the contestants allowed to be scored in a round
func (h *Handlers) handleEligible(w http.ResponseWriter, r *http.Request) {
	roundID, err := parseIntParam(r, "roundID")
	if err != nil {
		respondError(w, err)
		return
	}
	contestants, err := h.Advancement.EligibleForRound(r.Context(), roundID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, contestants)
}

// handleStageTypes lists a pageant's stages in order; the last is the
// final stage
func (h *Handlers) handleStageTypes(w http.ResponseWriter, r *http.Request) {
	pageantID, err := parseIntParam(r, "pageantID")
	if err != nil {
		respondError(w, err)
		return
	}
	types, err := h.Pageant.ListStageTypes(r.Context(), pageantID)
	if err != nil {
		respondError(w, err)
		return
	}
	resp := StageTypesResponse{StageTypes: types}
	if len(types) > 0 {
		resp.FinalStage = types[len(types)-1]
	}
	respondOK(w, resp)
}
