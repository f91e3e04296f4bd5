package services

import (
	"fmt"
	"math"

	"github.com/abrezinsky/crowntally/internal/errors"
	"github.com/abrezinsky/crowntally/internal/logger"
	"github.com/abrezinsky/crowntally/internal/models"
)

// criteriaWeight resolves the effective weight of a criterion. A weight
// that is not positive is coerced to 1 and logged; scoring continues.
func criteriaWeight(log logger.Logger, c models.Criteria) float64 {
	if c.Weight > 0 {
		return c.Weight
	}
	log.Warn("criteria has non-positive weight, using 1",
		"criteria_id", c.ID, "round_id", c.RoundID, "weight", c.Weight)
	return 1
}

// roundWeight resolves the effective weight of a round, coercing
// non-positive values to 1 with a warning.
func roundWeight(log logger.Logger, r models.Round) float64 {
	if r.Weight > 0 {
		return float64(r.Weight)
	}
	log.Warn("round has non-positive weight, using 1",
		"round_id", r.ID, "pageant_id", r.PageantID, "weight", r.Weight)
	return 1
}

// ValidateScoreValue checks a submitted value against its criterion's
// range and decimal policy. Violations are returned with machine-readable
// detail and the value is never silently clamped.
func ValidateScoreValue(c models.Criteria, value float64) error {
	var violations []errors.FieldViolation

	if value < c.MinScore || value > c.MaxScore {
		violations = append(violations, errors.FieldViolation{
			Field:    "value",
			Rule:     "range",
			Expected: fmt.Sprintf("%g..%g", c.MinScore, c.MaxScore),
			Received: fmt.Sprintf("%g", value),
		})
	}

	if !c.AllowDecimals {
		if value != math.Trunc(value) {
			violations = append(violations, errors.FieldViolation{
				Field:    "value",
				Rule:     "decimals",
				Expected: "whole number",
				Received: fmt.Sprintf("%g", value),
			})
		}
	} else if c.DecimalPlaces >= 0 {
		scale := math.Pow(10, float64(c.DecimalPlaces))
		scaled := value * scale
		if math.Abs(scaled-math.Round(scaled)) > 1e-9 {
			violations = append(violations, errors.FieldViolation{
				Field:    "value",
				Rule:     "decimals",
				Expected: fmt.Sprintf("at most %d decimal places", c.DecimalPlaces),
				Received: fmt.Sprintf("%g", value),
			})
		}
	}

	if len(violations) > 0 {
		return errors.ValidationDetail(
			fmt.Sprintf("score rejected for criteria %q", c.Name), violations...)
	}
	return nil
}

// ValidateInheritance checks a final-score inheritance map: every
// percentage must be positive and the total must be exactly 100. The
// computed total is surfaced in the error.
func ValidateInheritance(inheritance map[string]float64) error {
	if len(inheritance) == 0 {
		return errors.Validation("final_score_inheritance is required when final_score_mode is inherit")
	}
	total := 0.0
	for stageType, pct := range inheritance {
		if pct <= 0 {
			return errors.Validationf("final_score_inheritance[%s] must be positive, got %g", stageType, pct)
		}
		total += pct
	}
	if math.Abs(total-100) > 1e-9 {
		return errors.Validationf("final_score_inheritance must sum to 100, got %g", total)
	}
	return nil
}
