package model

import "fmt"

// BoundingBox is an inclusive-min lon/lat box used to slice the global
// ensemble NetCDF down to one country.
type BoundingBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// ClassifyMode selects how the alert classification state machine evaluates
// its per-class criterion.
type ClassifyMode string

const (
	ClassifyReturnPeriod ClassifyMode = "return-period"
	ClassifyProbability  ClassifyMode = "probability"
	ClassifyDisable      ClassifyMode = "disable"
)

// Policy is the per-country configuration recognized by the pipeline (§6).
type Policy struct {
	// AdminLevels is given in descending specificity order (most specific
	// first), e.g. [2, 1].
	AdminLevels []int `json:"admin_levels"`

	TriggerLeadTime    int     `json:"trigger_on_lead_time"`
	TriggerRP          float64 `json:"trigger_on_return_period"`
	TriggerMinProb     float64 `json:"trigger_on_minimum_probability"`

	ClassifyAlertOn ClassifyMode `json:"classify_alert_on"`

	// Used when ClassifyAlertOn == return-period: per-class return period,
	// single scalar minimum probability.
	AlertOnRPByClass map[AlertClass]float64 `json:"alert_on_return_period_by_class,omitempty"`
	AlertMinProb     float64                `json:"alert_on_minimum_probability,omitempty"`

	// Used when ClassifyAlertOn == probability: single scalar return
	// period, per-class minimum probability.
	AlertOnRP          float64                 `json:"alert_on_return_period,omitempty"`
	AlertOnProbByClass map[AlertClass]float64  `json:"alert_on_probability_by_class,omitempty"`

	NoEnsembleMembers int     `json:"no_ensemble_members"`
	MinFloodDepth     float64 `json:"minimum_flood_depth"`
}

// Validate checks the structural invariants the spec requires of a policy
// before it is used: lead time range, probability range, and shape
// consistency between the classification mode and its parameter maps.
func (p Policy) Validate() error {
	if p.TriggerLeadTime < 1 || p.TriggerLeadTime > LeadTimeMax {
		return fmt.Errorf("%w: trigger_on_lead_time must be in 1..%d", ErrPolicyInvalid, LeadTimeMax)
	}
	if p.TriggerMinProb < 0 || p.TriggerMinProb > 1 {
		return fmt.Errorf("%w: trigger_on_minimum_probability must be in [0,1]", ErrPolicyInvalid)
	}
	switch p.ClassifyAlertOn {
	case ClassifyReturnPeriod:
		if len(p.AlertOnRPByClass) == 0 {
			return fmt.Errorf("%w: return-period classify mode requires alert_on_return_period_by_class", ErrPolicyInvalid)
		}
	case ClassifyProbability:
		if len(p.AlertOnProbByClass) == 0 {
			return fmt.Errorf("%w: probability classify mode requires alert_on_probability_by_class", ErrPolicyInvalid)
		}
	case ClassifyDisable:
		// No extra parameters required; triggered maps straight to a class.
	default:
		return fmt.Errorf("%w: unknown classify_alert_on %q", ErrPolicyInvalid, p.ClassifyAlertOn)
	}
	if p.NoEnsembleMembers <= 0 {
		return fmt.Errorf("%w: no_ensemble_members must be positive", ErrPolicyInvalid)
	}
	return nil
}

// Country bundles the identity, slicing geometry and policy for one
// configured country.
type Country struct {
	ISO3   string      `json:"iso3"`
	BBox   BoundingBox `json:"bbox"`
	Policy Policy      `json:"policy"`
}
