package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/crowntally/internal/cache"
	"github.com/abrezinsky/crowntally/internal/errors"
	"github.com/abrezinsky/crowntally/internal/logger"
	"github.com/abrezinsky/crowntally/internal/models"
	"github.com/abrezinsky/crowntally/internal/repository"
)

// StatusBroadcaster pushes scoring status changes to connected clients
type StatusBroadcaster interface {
	BroadcastScoringStatus(open bool)
}

// PageantService manages pageant configuration: pageants, rounds,
// criteria, contestants, judges, and the scoring open/closed switch.
// Configuration changes invalidate the pageant's cached results.
type PageantService struct {
	log         logger.Logger
	repo        repository.FullRepository
	cache       *cache.Cache
	broadcaster StatusBroadcaster
}

// NewPageantService creates a new PageantService
func NewPageantService(log logger.Logger, repo repository.FullRepository, c *cache.Cache) *PageantService {
	return &PageantService{log: log, repo: repo, cache: c}
}

// SetBroadcaster wires the websocket hub after construction
func (s *PageantService) SetBroadcaster(b StatusBroadcaster) {
	s.broadcaster = b
}

func (s *PageantService) validatePageant(p *models.Pageant) error {
	var violations []errors.FieldViolation
	if p.Name == "" {
		violations = append(violations, errors.FieldViolation{Field: "name", Rule: "required"})
	}
	if _, err := models.ParseRankingMethod(string(p.RankingMethod)); err != nil {
		violations = append(violations, errors.FieldViolation{
			Field: "ranking_method", Rule: "enum",
			Expected: "score_average|rank_sum|ordinal", Received: string(p.RankingMethod),
		})
	}
	if _, err := models.ParseTieHandling(string(p.TieHandling)); err != nil {
		violations = append(violations, errors.FieldViolation{
			Field: "tie_handling", Rule: "enum",
			Expected: "sequential|average|minimum", Received: string(p.TieHandling),
		})
	}
	if _, err := models.ParseContestantType(string(p.ContestantType)); err != nil {
		violations = append(violations, errors.FieldViolation{
			Field: "contestant_type", Rule: "enum",
			Expected: "solo|pairs|both", Received: string(p.ContestantType),
		})
	}
	if _, err := models.ParseFinalScoreMode(string(p.FinalScoreMode)); err != nil {
		violations = append(violations, errors.FieldViolation{
			Field: "final_score_mode", Rule: "enum",
			Expected: "fresh|inherit", Received: string(p.FinalScoreMode),
		})
	}
	if len(violations) > 0 {
		return errors.ValidationDetail("invalid pageant configuration", violations...)
	}
	if p.FinalScoreMode == models.FinalInherit {
		if err := ValidateInheritance(p.FinalScoreInheritance); err != nil {
			return err
		}
	}
	return nil
}

// CreatePageant validates and stores a new pageant
func (s *PageantService) CreatePageant(ctx context.Context, p models.Pageant) (*models.Pageant, error) {
	if err := s.validatePageant(&p); err != nil {
		return nil, err
	}
	id, err := s.repo.CreatePageant(ctx, p)
	if err != nil {
		return nil, err
	}
	s.log.Info("pageant created", "pageant_id", id, "name", p.Name)
	return s.repo.GetPageant(ctx, int(id))
}

// GetPageant fetches one pageant
func (s *PageantService) GetPageant(ctx context.Context, id int) (*models.Pageant, error) {
	p, err := s.repo.GetPageant(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFoundf("pageant %d not found", id)
	}
	return p, err
}

// ListPageants lists all pageants
func (s *PageantService) ListPageants(ctx context.Context) ([]models.Pageant, error) {
	return s.repo.ListPageants(ctx)
}

// UpdatePageant validates and stores changed pageant configuration.
// Cached results are dropped since the ranking rules may have changed.
func (s *PageantService) UpdatePageant(ctx context.Context, p models.Pageant) (*models.Pageant, error) {
	if err := s.validatePageant(&p); err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePageant(ctx, p); err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("pageant %d not found", p.ID)
		}
		return nil, err
	}
	inv := s.cache.InvalidatePageant(p.ID)
	s.log.Info("pageant updated", "pageant_id", p.ID, "invalidated_keys", inv.Removed)
	return s.repo.GetPageant(ctx, p.ID)
}

// DeletePageant removes a pageant and drops its cached results
func (s *PageantService) DeletePageant(ctx context.Context, id int) error {
	if err := s.repo.DeletePageant(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFoundf("pageant %d not found", id)
		}
		return err
	}
	s.cache.InvalidatePageant(id)
	return nil
}

func (s *PageantService) validateRound(r *models.Round) error {
	var violations []errors.FieldViolation
	if r.Name == "" {
		violations = append(violations, errors.FieldViolation{Field: "name", Rule: "required"})
	}
	if r.Type == "" {
		violations = append(violations, errors.FieldViolation{Field: "type", Rule: "required"})
	}
	if r.Weight < 0 {
		violations = append(violations, errors.FieldViolation{
			Field: "weight", Rule: "min", Expected: ">= 0", Received: strconv.Itoa(r.Weight),
		})
	}
	if r.TopNProceed != nil && *r.TopNProceed < 1 {
		violations = append(violations, errors.FieldViolation{
			Field: "top_n_proceed", Rule: "min", Expected: ">= 1", Received: strconv.Itoa(*r.TopNProceed),
		})
	}
	if len(violations) > 0 {
		return errors.ValidationDetail("invalid round configuration", violations...)
	}
	return nil
}

// CreateRound validates and stores a new round
func (s *PageantService) CreateRound(ctx context.Context, r models.Round) (*models.Round, error) {
	if err := s.validateRound(&r); err != nil {
		return nil, err
	}
	if _, err := s.GetPageant(ctx, r.PageantID); err != nil {
		return nil, err
	}
	id, err := s.repo.CreateRound(ctx, r)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidatePageant(r.PageantID)
	return s.repo.GetRound(ctx, int(id))
}

// ListRounds lists a pageant's rounds in display order
func (s *PageantService) ListRounds(ctx context.Context, pageantID int) ([]models.Round, error) {
	return s.repo.ListRounds(ctx, pageantID)
}

// UpdateRound validates and stores changed round configuration
func (s *PageantService) UpdateRound(ctx context.Context, r models.Round) (*models.Round, error) {
	if err := s.validateRound(&r); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRound(ctx, r); err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("round %d not found", r.ID)
		}
		return nil, err
	}
	s.cache.InvalidatePageant(r.PageantID)
	return s.repo.GetRound(ctx, r.ID)
}

// DeleteRound removes a round and drops the pageant's cached results
func (s *PageantService) DeleteRound(ctx context.Context, id int) error {
	round, err := s.repo.GetRound(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFoundf("round %d not found", id)
		}
		return err
	}
	if err := s.repo.DeleteRound(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidatePageant(round.PageantID)
	return nil
}

// ListStageTypes lists a pageant's stage types in pageant order. The
// last entry is the final stage.
func (s *PageantService) ListStageTypes(ctx context.Context, pageantID int) ([]string, error) {
	return s.repo.ListStageTypes(ctx, pageantID)
}

func (s *PageantService) validateCriteria(c *models.Criteria) error {
	var violations []errors.FieldViolation
	if c.Name == "" {
		violations = append(violations, errors.FieldViolation{Field: "name", Rule: "required"})
	}
	if c.Weight < 0 {
		violations = append(violations, errors.FieldViolation{
			Field: "weight", Rule: "min", Expected: ">= 0",
			Received: strconv.FormatFloat(c.Weight, 'f', -1, 64),
		})
	}
	if c.MaxScore <= c.MinScore {
		violations = append(violations, errors.FieldViolation{
			Field: "max_score", Rule: "range",
			Expected: fmt.Sprintf("> %g", c.MinScore),
			Received: strconv.FormatFloat(c.MaxScore, 'f', -1, 64),
		})
	}
	if c.AllowDecimals && (c.DecimalPlaces < 1 || c.DecimalPlaces > 4) {
		violations = append(violations, errors.FieldViolation{
			Field: "decimal_places", Rule: "range", Expected: "1..4",
			Received: strconv.Itoa(c.DecimalPlaces),
		})
	}
	if len(violations) > 0 {
		return errors.ValidationDetail("invalid criteria configuration", violations...)
	}
	return nil
}

// CreateCriteria validates and stores a new criterion
func (s *PageantService) CreateCriteria(ctx context.Context, c models.Criteria) (*models.Criteria, error) {
	if err := s.validateCriteria(&c); err != nil {
		return nil, err
	}
	round, err := s.repo.GetRound(ctx, c.RoundID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("round %d not found", c.RoundID)
		}
		return nil, err
	}
	id, err := s.repo.CreateCriteria(ctx, c)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidatePageant(round.PageantID)
	return s.repo.GetCriteria(ctx, int(id))
}

// ListCriteria lists a round's criteria in display order
func (s *PageantService) ListCriteria(ctx context.Context, roundID int) ([]models.Criteria, error) {
	return s.repo.ListCriteriaByRound(ctx, roundID)
}

// UpdateCriteria validates and stores a changed criterion
func (s *PageantService) UpdateCriteria(ctx context.Context, c models.Criteria) (*models.Criteria, error) {
	if err := s.validateCriteria(&c); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateCriteria(ctx, c); err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("criteria %d not found", c.ID)
		}
		return nil, err
	}
	if round, err := s.repo.GetRound(ctx, c.RoundID); err == nil {
		s.cache.InvalidatePageant(round.PageantID)
	}
	return s.repo.GetCriteria(ctx, c.ID)
}

// DeleteCriteria removes a criterion
func (s *PageantService) DeleteCriteria(ctx context.Context, id int) error {
	c, err := s.repo.GetCriteria(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFoundf("criteria %d not found", id)
		}
		return err
	}
	if err := s.repo.DeleteCriteria(ctx, id); err != nil {
		return err
	}
	if round, err := s.repo.GetRound(ctx, c.RoundID); err == nil {
		s.cache.InvalidatePageant(round.PageantID)
	}
	return nil
}

func (s *PageantService) validateContestant(ctx context.Context, c *models.Contestant) error {
	pageant, err := s.GetPageant(ctx, c.PageantID)
	if err != nil {
		return err
	}
	var violations []errors.FieldViolation
	if c.Number == "" {
		violations = append(violations, errors.FieldViolation{Field: "number", Rule: "required"})
	}
	if c.Name == "" {
		violations = append(violations, errors.FieldViolation{Field: "name", Rule: "required"})
	}
	if c.IsPair {
		if pageant.ContestantType == models.ContestantSolo {
			violations = append(violations, errors.FieldViolation{
				Field: "is_pair", Rule: "contestant_type",
				Expected: "solo contestants only", Received: "pair",
			})
		}
		if c.MemberOneID == nil || c.MemberTwoID == nil {
			violations = append(violations, errors.FieldViolation{
				Field: "member_ids", Rule: "required", Expected: "both members set",
			})
		} else if *c.MemberOneID == *c.MemberTwoID {
			violations = append(violations, errors.FieldViolation{
				Field: "member_ids", Rule: "distinct",
			})
		}
	} else {
		if pageant.ContestantType == models.ContestantPairs {
			violations = append(violations, errors.FieldViolation{
				Field: "is_pair", Rule: "contestant_type",
				Expected: "pair contestants only", Received: "solo",
			})
		}
		if pageant.ContestantType.Gendered() && c.Gender != models.GenderMale && c.Gender != models.GenderFemale {
			violations = append(violations, errors.FieldViolation{
				Field: "gender", Rule: "enum",
				Expected: "male|female", Received: c.Gender,
			})
		}
	}
	if len(violations) > 0 {
		return errors.ValidationDetail("invalid contestant", violations...)
	}
	return nil
}

// CreateContestant validates and stores a new contestant. Pair members
// may each belong to only one pair; the repository enforces that.
func (s *PageantService) CreateContestant(ctx context.Context, c models.Contestant) (*models.Contestant, error) {
	if err := s.validateContestant(ctx, &c); err != nil {
		return nil, err
	}
	id, err := s.repo.CreateContestant(ctx, c)
	if err != nil {
		if err == repository.ErrPairMemberTaken {
			return nil, errors.Conflict("a pair member already belongs to another pair")
		}
		return nil, err
	}
	return s.repo.GetContestant(ctx, int(id))
}

// ListContestants lists a pageant's active contestants
func (s *PageantService) ListContestants(ctx context.Context, pageantID int) ([]models.Contestant, error) {
	return s.repo.ListContestants(ctx, pageantID)
}

// UpdateContestant validates and stores a changed contestant
func (s *PageantService) UpdateContestant(ctx context.Context, c models.Contestant) (*models.Contestant, error) {
	if err := s.validateContestant(ctx, &c); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateContestant(ctx, c); err != nil {
		switch err {
		case repository.ErrNotFound:
			return nil, errors.NotFoundf("contestant %d not found", c.ID)
		case repository.ErrPairMemberTaken:
			return nil, errors.Conflict("a pair member already belongs to another pair")
		}
		return nil, err
	}
	s.cache.InvalidatePageant(c.PageantID)
	return s.repo.GetContestant(ctx, c.ID)
}

// DeleteContestant removes a contestant and drops cached results
func (s *PageantService) DeleteContestant(ctx context.Context, id int) error {
	c, err := s.repo.GetContestant(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFoundf("contestant %d not found", id)
		}
		return err
	}
	if err := s.repo.DeleteContestant(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidatePageant(c.PageantID)
	return nil
}

// accessCodeLength is the byte length of a judge access code before hex
// encoding, yielding 8 hex characters.
const accessCodeLength = 4

// generateUniqueCode creates an access code not yet assigned to any
// judge, retrying on the unlikely collision.
func (s *PageantService) generateUniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		buf := make([]byte, accessCodeLength)
		if _, err := rand.Read(buf); err != nil {
			return "", errors.Internalf("generating access code: %v", err)
		}
		code := hex.EncodeToString(buf)
		if _, err := s.repo.GetJudgeByAccessCode(ctx, code); err == repository.ErrNotFound {
			return code, nil
		} else if err != nil {
			return "", err
		}
	}
	return "", errors.Internal(fmt.Errorf("could not generate a unique access code"))
}

// CreateJudge creates a judge with a fresh access code and assigns them
// to the pageant
func (s *PageantService) CreateJudge(ctx context.Context, pageantID int, name string) (*models.Judge, error) {
	if name == "" {
		return nil, errors.ValidationDetail("invalid judge",
			errors.FieldViolation{Field: "name", Rule: "required"})
	}
	if _, err := s.GetPageant(ctx, pageantID); err != nil {
		return nil, err
	}
	code, err := s.generateUniqueCode(ctx)
	if err != nil {
		return nil, err
	}
	id, err := s.repo.CreateJudge(ctx, models.Judge{Name: name, AccessCode: code})
	if err != nil {
		return nil, err
	}
	if err := s.repo.AssignJudge(ctx, pageantID, int(id)); err != nil {
		return nil, err
	}
	s.log.Info("judge created", "judge_id", id, "pageant_id", pageantID)
	return s.repo.GetJudge(ctx, int(id))
}

// ListJudges lists the judges assigned to a pageant
func (s *PageantService) ListJudges(ctx context.Context, pageantID int) ([]models.Judge, error) {
	return s.repo.ListJudges(ctx, pageantID)
}

// GetJudgeByAccessCode resolves a judge from their access code
func (s *PageantService) GetJudgeByAccessCode(ctx context.Context, code string) (*models.Judge, error) {
	j, err := s.repo.GetJudgeByAccessCode(ctx, code)
	if err == repository.ErrNotFound {
		return nil, ErrUnknownAccessCode
	}
	return j, err
}

// DeleteJudge removes a judge
func (s *PageantService) DeleteJudge(ctx context.Context, id int) error {
	if err := s.repo.DeleteJudge(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFoundf("judge %d not found", id)
		}
		return err
	}
	return nil
}

// JudgeQRCode renders a judge's sign-in link as a PNG QR code
func (s *PageantService) JudgeQRCode(baseURL, accessCode string) ([]byte, error) {
	url := fmt.Sprintf("%s/judge/%s", baseURL, accessCode)
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return nil, errors.Internalf("generating QR code: %v", err)
	}
	return png, nil
}

// SetScoringOpen flips the scoring switch and notifies connected
// clients
func (s *PageantService) SetScoringOpen(ctx context.Context, open bool) error {
	v := "false"
	if open {
		v = "true"
	}
	if err := s.repo.SetSetting(ctx, "scoring_open", v); err != nil {
		return err
	}
	s.log.Info("scoring status changed", "open", open)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastScoringStatus(open)
	}
	return nil
}

var _ PageantServicer = (*PageantService)(nil)
