package services_test

import (
	stderrors "errors"
	"strings"
	"testing"

	apperrors "github.com/abrezinsky/crowntally/internal/errors"
	"github.com/abrezinsky/crowntally/internal/models"
	"github.com/abrezinsky/crowntally/internal/services"
)

func TestValidateScoreValue_InRange(t *testing.T) {
	c := models.Criteria{Name: "Poise", MinScore: 0, MaxScore: 100, AllowDecimals: true, DecimalPlaces: 2}
	if err := services.ValidateScoreValue(c, 87.25); err != nil {
		t.Fatalf("expected valid score, got %v", err)
	}
}

func TestValidateScoreValue_OutOfRange(t *testing.T) {
	c := models.Criteria{Name: "Poise", MinScore: 0, MaxScore: 100, AllowDecimals: true, DecimalPlaces: 2}
	err := services.ValidateScoreValue(c, 101)
	if err == nil {
		t.Fatal("expected range violation")
	}

	var appErr *apperrors.Error
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if appErr.Kind != apperrors.ErrValidation {
		t.Errorf("expected validation kind, got %v", appErr.Kind)
	}
	if len(appErr.Violations) != 1 || appErr.Violations[0].Rule != "range" {
		t.Errorf("expected one range violation, got %+v", appErr.Violations)
	}
}

func TestValidateScoreValue_WholeNumbersOnly(t *testing.T) {
	c := models.Criteria{Name: "Talent", MinScore: 1, MaxScore: 10}
	if err := services.ValidateScoreValue(c, 7); err != nil {
		t.Fatalf("whole value should pass: %v", err)
	}
	if err := services.ValidateScoreValue(c, 7.5); err == nil {
		t.Fatal("expected decimals violation")
	}
}

func TestValidateScoreValue_DecimalPlaces(t *testing.T) {
	c := models.Criteria{Name: "Gown", MinScore: 0, MaxScore: 10, AllowDecimals: true, DecimalPlaces: 1}
	if err := services.ValidateScoreValue(c, 9.5); err != nil {
		t.Fatalf("one decimal place should pass: %v", err)
	}
	if err := services.ValidateScoreValue(c, 9.55); err == nil {
		t.Fatal("expected decimals violation for two places")
	}
}

func TestValidateScoreValue_BothViolations(t *testing.T) {
	c := models.Criteria{Name: "Interview", MinScore: 0, MaxScore: 10}
	err := services.ValidateScoreValue(c, 10.75)
	if err == nil {
		t.Fatal("expected violations")
	}
	var appErr *apperrors.Error
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if len(appErr.Violations) != 2 {
		t.Errorf("expected range and decimals violations, got %+v", appErr.Violations)
	}
}

func TestValidateInheritance_SumsTo100(t *testing.T) {
	err := services.ValidateInheritance(map[string]float64{"preliminary": 40, "final": 60})
	if err != nil {
		t.Fatalf("expected valid inheritance, got %v", err)
	}
}

func TestValidateInheritance_WrongTotal(t *testing.T) {
	err := services.ValidateInheritance(map[string]float64{"preliminary": 40, "final": 50})
	if err == nil {
		t.Fatal("expected total error")
	}
	if !strings.Contains(err.Error(), "90") {
		t.Errorf("expected computed total in error, got %q", err.Error())
	}
}

func TestValidateInheritance_NonPositive(t *testing.T) {
	err := services.ValidateInheritance(map[string]float64{"preliminary": -10, "final": 110})
	if err == nil {
		t.Fatal("expected positivity error")
	}
}

func TestValidateInheritance_Empty(t *testing.T) {
	if err := services.ValidateInheritance(nil); err == nil {
		t.Fatal("expected error for missing inheritance")
	}
}
