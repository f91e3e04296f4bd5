package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/crowntally/internal/auth"
	"github.com/abrezinsky/crowntally/internal/models"
)

// handleLogin validates the organizer password and sets a session cookie
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	token, ok := h.Auth.Login(req.Password)
	if !ok {
		respondError(w, Unauthorized("Invalid password"))
		return
	}
	auth.SetSessionCookie(w, token)
	respondSuccess(w, "Logged in")
}

// handleLogout clears the organizer session
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.Auth.Logout(cookie.Value)
	}
	auth.ClearSessionCookie(w)
	respondSuccess(w, "Logged out")
}

func (h *Handlers) handleCreatePageant(w http.ResponseWriter, r *http.Request) {
	var req PageantRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	p, err := h.Pageant.CreatePageant(r.Context(), pageantFromRequest(req, 0))
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, p)
}

func (h *Handlers) handleGetPageant(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	p, err := h.Pageant.GetPageant(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, p)
}

func (h *Handlers) handleListPageants(w http.ResponseWriter, r *http.Request) {
	pageants, err := h.Pageant.ListPageants(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, pageants)
}

func (h *Handlers) handleUpdatePageant(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req PageantRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	p, err := h.Pageant.UpdatePageant(r.Context(), pageantFromRequest(req, id))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, p)
}

func (h *Handlers) handleDeletePageant(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Pageant.DeletePageant(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func pageantFromRequest(req PageantRequest, id int) models.Pageant {
	return models.Pageant{
		ID:                    id,
		Name:                  req.Name,
		RankingMethod:         models.RankingMethod(req.RankingMethod),
		TieHandling:           models.TieHandling(req.TieHandling),
		ContestantType:        models.ContestantType(req.ContestantType),
		FinalScoreMode:        models.FinalScoreMode(req.FinalScoreMode),
		FinalScoreInheritance: req.FinalScoreInheritance,
	}
}

func (h *Handlers) handleCreateRound(w http.ResponseWriter, r *http.Request) {
	var req RoundRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	round, err := h.Pageant.CreateRound(r.Context(), roundFromRequest(req, 0))
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, round)
}

func (h *Handlers) handleListRounds(w http.ResponseWriter, r *http.Request) {
	pageantID, err := parseIntParam(r, "pageantID")
	if err != nil {
		respondError(w, err)
		return
	}
	rounds, err := h.Pageant.ListRounds(r.Context(), pageantID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, rounds)
}

func (h *Handlers) handleUpdateRound(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req RoundRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	round, err := h.Pageant.UpdateRound(r.Context(), roundFromRequest(req, id))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, round)
}

func (h *Handlers) handleDeleteRound(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Pageant.DeleteRound(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func roundFromRequest(req RoundRequest, id int) models.Round {
	return models.Round{
		ID:           id,
		PageantID:    req.PageantID,
		Name:         req.Name,
		Type:         req.Type,
		Weight:       req.Weight,
		DisplayOrder: req.DisplayOrder,
		TopNProceed:  req.TopNProceed,
		PreviousType: req.PreviousType,
	}
}

func (h *Handlers) handleCreateCriteria(w http.ResponseWriter, r *http.Request) {
	var req CriteriaRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	c, err := h.Pageant.CreateCriteria(r.Context(), criteriaFromRequest(req, 0))
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, c)
}

func (h *Handlers) handleListCriteria(w http.ResponseWriter, r *http.Request) {
	roundID, err := parseIntParam(r, "roundID")
	if err != nil {
		respondError(w, err)
		return
	}
	criteria, err := h.Pageant.ListCriteria(r.Context(), roundID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, criteria)
}

func (h *Handlers) handleUpdateCriteria(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req CriteriaRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	c, err := h.Pageant.UpdateCriteria(r.Context(), criteriaFromRequest(req, id))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, c)
}

func (h *Handlers) handleDeleteCriteria(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Pageant.DeleteCriteria(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func criteriaFromRequest(req CriteriaRequest, id int) models.Criteria {
	return models.Criteria{
		ID:            id,
		RoundID:       req.RoundID,
		Name:          req.Name,
		Segment:       req.Segment,
		Weight:        req.Weight,
		MinScore:      req.MinScore,
		MaxScore:      req.MaxScore,
		AllowDecimals: req.AllowDecimals,
		DecimalPlaces: req.DecimalPlaces,
		DisplayOrder:  req.DisplayOrder,
	}
}

func (h *Handlers) handleCreateContestant(w http.ResponseWriter, r *http.Request) {
	var req ContestantRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	c, err := h.Pageant.CreateContestant(r.Context(), contestantFromRequest(req, 0))
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, c)
}

func (h *Handlers) handleListContestants(w http.ResponseWriter, r *http.Request) {
	pageantID, err := parseIntParam(r, "pageantID")
	if err != nil {
		respondError(w, err)
		return
	}
	contestants, err := h.Pageant.ListContestants(r.Context(), pageantID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, contestants)
}

func (h *Handlers) handleUpdateContestant(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req ContestantRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	c, err := h.Pageant.UpdateContestant(r.Context(), contestantFromRequest(req, id))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, c)
}

func (h *Handlers) handleDeleteContestant(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Pageant.DeleteContestant(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func contestantFromRequest(req ContestantRequest, id int) models.Contestant {
	return models.Contestant{
		ID:          id,
		PageantID:   req.PageantID,
		Number:      req.Number,
		Name:        req.Name,
		Gender:      req.Gender,
		IsPair:      req.IsPair,
		MemberOneID: req.MemberOneID,
		MemberTwoID: req.MemberTwoID,
		Active:      req.Active,
	}
}

func (h *Handlers) handleCreateJudge(w http.ResponseWriter, r *http.Request) {
	var req JudgeCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	judge, err := h.Pageant.CreateJudge(r.Context(), req.PageantID, req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, judge)
}

func (h *Handlers) handleListJudges(w http.ResponseWriter, r *http.Request) {
	pageantID, err := parseIntParam(r, "pageantID")
	if err != nil {
		respondError(w, err)
		return
	}
	judges, err := h.Pageant.ListJudges(r.Context(), pageantID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, judges)
}

func (h *Handlers) handleDeleteJudge(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Pageant.DeleteJudge(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// handleJudgeQR renders a judge's sign-in QR code as a PNG
func (h *Handlers) handleJudgeQR(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "accessCode")
	judge, err := h.Pageant.GetJudgeByAccessCode(r.Context(), code)
	if err != nil {
		respondError(w, err)
		return
	}
	png, err := h.Pageant.JudgeQRCode(h.BaseURL, judge.AccessCode)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// handleSetScoringStatus flips the scoring open/closed switch
func (h *Handlers) handleSetScoringStatus(w http.ResponseWriter, r *http.Request) {
	var req ScoringStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := h.Pageant.SetScoringOpen(r.Context(), req.Open); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ScoringStatusResponse{Open: req.Open})
}

// handleFlushCache drops every cached result for a pageant, forcing
// recomputation on the next read
func (h *Handlers) handleFlushCache(w http.ResponseWriter, r *http.Request) {
	pageantID, err := parseIntParam(r, "pageantID")
	if err != nil {
		respondError(w, err)
		return
	}
	inv := h.Stage.InvalidatePageant(pageantID)
	respondOK(w, CacheFlushResponse{InvalidatedKeys: inv.Removed})
}
