package model

import (
	"errors"
	"testing"
)

func validPolicy() Policy {
	return Policy{
		AdminLevels:       []int{2, 1},
		TriggerLeadTime:   3,
		TriggerRP:         2,
		TriggerMinProb:    0.5,
		ClassifyAlertOn:   ClassifyDisable,
		NoEnsembleMembers: 51,
	}
}

func TestPolicyValidateAcceptsDisableMode(t *testing.T) {
	if err := validPolicy().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPolicyValidateRejectsLeadTimeOutOfRange(t *testing.T) {
	p := validPolicy()
	p.TriggerLeadTime = 0
	if err := p.Validate(); !errors.Is(err, ErrPolicyInvalid) {
		t.Fatalf("got %v, want ErrPolicyInvalid", err)
	}
	p.TriggerLeadTime = LeadTimeMax + 1
	if err := p.Validate(); !errors.Is(err, ErrPolicyInvalid) {
		t.Fatalf("got %v, want ErrPolicyInvalid", err)
	}
}

func TestPolicyValidateRejectsProbabilityOutOfRange(t *testing.T) {
	p := validPolicy()
	p.TriggerMinProb = 1.5
	if err := p.Validate(); !errors.Is(err, ErrPolicyInvalid) {
		t.Fatalf("got %v, want ErrPolicyInvalid", err)
	}
}

func TestPolicyValidateRequiresRPByClassMapForReturnPeriodMode(t *testing.T) {
	p := validPolicy()
	p.ClassifyAlertOn = ClassifyReturnPeriod
	if err := p.Validate(); !errors.Is(err, ErrPolicyInvalid) {
		t.Fatalf("got %v, want ErrPolicyInvalid for missing alert_on_return_period_by_class", err)
	}
	p.AlertOnRPByClass = map[AlertClass]float64{AlertMin: 2}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error once map is populated: %v", err)
	}
}

func TestPolicyValidateRequiresProbByClassMapForProbabilityMode(t *testing.T) {
	p := validPolicy()
	p.ClassifyAlertOn = ClassifyProbability
	if err := p.Validate(); !errors.Is(err, ErrPolicyInvalid) {
		t.Fatalf("got %v, want ErrPolicyInvalid for missing alert_on_probability_by_class", err)
	}
}

func TestPolicyValidateRejectsUnknownClassifyMode(t *testing.T) {
	p := validPolicy()
	p.ClassifyAlertOn = ClassifyMode("bogus")
	if err := p.Validate(); !errors.Is(err, ErrPolicyInvalid) {
		t.Fatalf("got %v, want ErrPolicyInvalid", err)
	}
}

func TestPolicyValidateRejectsNonPositiveEnsembleSize(t *testing.T) {
	p := validPolicy()
	p.NoEnsembleMembers = 0
	if err := p.Validate(); !errors.Is(err, ErrPolicyInvalid) {
		t.Fatalf("got %v, want ErrPolicyInvalid", err)
	}
}
