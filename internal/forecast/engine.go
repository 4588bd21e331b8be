// Package forecast reduces ensemble discharge to return-period likelihoods
// and runs the trigger/alert classification state machine. The percentile-
// over-sample pattern here is generalized from the teacher's Monte-Carlo
// Engine (percentile computation over a sorted trial sample) from
// "duration percentiles" to "exceedance-count likelihoods".
package forecast

import (
	"fmt"

	"floodpipe/internal/model"
)

// Engine derives ForecastAdmin/ForecastStation datasets from discharge and
// thresholds, under one country's policy.
type Engine struct {
	policy model.Policy
}

// New builds an Engine bound to one country's policy.
func New(policy model.Policy) *Engine {
	return &Engine{policy: policy}
}

// Likelihoods reduces one ensemble against a sorted Thresholds collection:
// likelihood_i = count(x > T_i) / |ensemble|, strict inequality, ordered by
// return period ascending.
func Likelihoods(ensemble []float64, thresholds model.Thresholds) []model.Forecast {
	out := make([]model.Forecast, len(thresholds))
	n := len(ensemble)
	for i, th := range thresholds {
		if n == 0 {
			out[i] = model.Forecast{ReturnPeriod: th.ReturnPeriod, Likelihood: 0}
			continue
		}
		count := 0
		for _, x := range ensemble {
			if x > th.Value {
				count++
			}
		}
		out[i] = model.Forecast{ReturnPeriod: th.ReturnPeriod, Likelihood: float64(count) / float64(n)}
	}
	return out
}

func likelihoodAt(forecasts []model.Forecast, rp float64) (float64, bool) {
	for _, f := range forecasts {
		if f.ReturnPeriod == rp {
			return f.Likelihood, true
		}
	}
	return 0, false
}

// Trigger derives the triggered flag and return_period per spec's trigger
// derivation rule.
func (e *Engine) Trigger(forecasts []model.Forecast, leadTime int) (triggered bool, returnPeriod float64, err error) {
	p := e.policy
	likAtTriggerRP, ok := likelihoodAt(forecasts, p.TriggerRP)
	if !ok {
		return false, 0, fmt.Errorf("%w: trigger_on_return_period %.2f", model.ErrThresholdMissing, p.TriggerRP)
	}
	triggered = likAtTriggerRP >= p.TriggerMinProb && leadTime <= p.TriggerLeadTime

	returnPeriod = 0.0
	for _, f := range forecasts {
		if f.Likelihood >= p.TriggerMinProb && f.ReturnPeriod > returnPeriod {
			returnPeriod = f.ReturnPeriod
		}
	}
	return triggered, returnPeriod, nil
}

// Classify runs the alert classification state machine: classes are
// totally ordered no<min<med<max; the highest class whose criterion is met
// wins, starting from no.
//
// Both design-note open questions are resolved here exactly as directed:
// disable-mode with triggered=false always yields `no` (never falls
// through to some other default), and forecast_severity's max/alert=0.7
// vs the classification's own max/min criteria are independent — Classify
// only derives alert_class; severity is computed separately by Severity
// (events.go) from (alert_class, event_type), called by the pipeline emitter.
func (e *Engine) Classify(forecasts []model.Forecast, triggered bool) (model.AlertClass, error) {
	p := e.policy
	switch p.ClassifyAlertOn {
	case model.ClassifyReturnPeriod:
		return e.classifyByReturnPeriod(forecasts)
	case model.ClassifyProbability:
		return e.classifyByProbability(forecasts)
	case model.ClassifyDisable:
		if !triggered {
			return model.AlertNo, nil
		}
		return highestDefinedClass(p), nil
	default:
		return model.AlertNo, fmt.Errorf("%w: unknown classify_alert_on %q", model.ErrPolicyInvalid, p.ClassifyAlertOn)
	}
}

func (e *Engine) classifyByReturnPeriod(forecasts []model.Forecast) (model.AlertClass, error) {
	p := e.policy
	result := model.AlertNo
	for _, c := range model.AllAlertClassesAscending() {
		if c == model.AlertNo {
			continue
		}
		rp, ok := p.AlertOnRPByClass[c]
		if !ok {
			continue
		}
		lik, ok := likelihoodAt(forecasts, rp)
		if !ok {
			return model.AlertNo, fmt.Errorf("%w: return period %.2f", model.ErrThresholdMissing, rp)
		}
		if lik >= p.AlertMinProb {
			result = c
		}
	}
	return result, nil
}

func (e *Engine) classifyByProbability(forecasts []model.Forecast) (model.AlertClass, error) {
	p := e.policy
	lik, ok := likelihoodAt(forecasts, p.AlertOnRP)
	if !ok {
		return model.AlertNo, fmt.Errorf("%w: alert_on_return_period %.2f", model.ErrThresholdMissing, p.AlertOnRP)
	}
	result := model.AlertNo
	for _, c := range model.AllAlertClassesAscending() {
		if c == model.AlertNo {
			continue
		}
		minProb, ok := p.AlertOnProbByClass[c]
		if !ok {
			continue
		}
		if lik >= minProb {
			result = c
		}
	}
	return result, nil
}

// highestDefinedClass returns the highest alert class the policy defines a
// criterion for, used by disable-mode when triggered=true.
func highestDefinedClass(p model.Policy) model.AlertClass {
	classes := model.AllAlertClassesAscending()
	for i := len(classes) - 1; i >= 0; i-- {
		c := classes[i]
		if c == model.AlertNo {
			return model.AlertNo
		}
		if _, ok := p.AlertOnRPByClass[c]; ok {
			return c
		}
		if _, ok := p.AlertOnProbByClass[c]; ok {
			return c
		}
	}
	return model.AlertMax
}

// ForecastAdminUnit runs the likelihood reduction, trigger derivation and
// classification for one admin unit at one lead time.
func (e *Engine) ForecastAdminUnit(d model.DischargeAdmin, thresholds model.Thresholds) (model.ForecastAdmin, error) {
	forecasts := Likelihoods(d.Ensemble, thresholds)
	triggered, rp, err := e.Trigger(forecasts, d.LeadTime)
	if err != nil {
		return model.ForecastAdmin{}, err
	}
	class, err := e.Classify(forecasts, triggered)
	if err != nil {
		return model.ForecastAdmin{}, err
	}
	return model.ForecastAdmin{
		AdmLevel:     d.AdmLevel,
		Pcode:        d.Pcode,
		LeadTime:     d.LeadTime,
		Forecasts:    forecasts,
		Triggered:    triggered,
		ReturnPeriod: rp,
		AlertClass:   class,
	}, nil
}

// ForecastStationUnit runs the likelihood reduction, trigger derivation and
// classification for one station at one lead time.
func (e *Engine) ForecastStationUnit(d model.DischargeStation, thresholds model.Thresholds) (model.ForecastStation, error) {
	forecasts := Likelihoods(d.Ensemble, thresholds)
	triggered, rp, err := e.Trigger(forecasts, d.LeadTime)
	if err != nil {
		return model.ForecastStation{}, err
	}
	class, err := e.Classify(forecasts, triggered)
	if err != nil {
		return model.ForecastStation{}, err
	}
	return model.ForecastStation{
		StationCode:  d.StationCode,
		LeadTime:     d.LeadTime,
		Forecasts:    forecasts,
		Triggered:    triggered,
		ReturnPeriod: rp,
		AlertClass:   class,
	}, nil
}
