package forecast

import "floodpipe/internal/model"

// EventType distinguishes a trigger event (action-worthy) from a softer
// alert, the two outcomes the publisher's event loop reacts to.
type EventType string

const (
	EventTrigger EventType = "trigger"
	EventAlert   EventType = "alert"
)

// StationEvent is the derived per-station event used by the publisher: the
// earliest lead time worth notifying about, and whether it's a trigger or
// merely an alert.
type StationEvent struct {
	StationCode string
	HasEvent    bool
	LeadTime    int
	Type        EventType
}

// DeriveStationEvent implements the per-lead-time event derivation rule:
// the earliest triggered lead time wins as a trigger event, unless it falls
// beyond the policy's trigger lead time, in which case it is downgraded to
// an alert at that same lead time. Failing that, the earliest non-`no`
// alert class lead time becomes an alert event. Otherwise there is no
// event at all.
func DeriveStationEvent(stationCode string, policy model.Policy, byLeadTime map[int]model.ForecastStation) StationEvent {
	for lt := 1; lt <= model.LeadTimeMax; lt++ {
		f, ok := byLeadTime[lt]
		if !ok || !f.Triggered {
			continue
		}
		eventType := EventTrigger
		if lt > policy.TriggerLeadTime {
			eventType = EventAlert
		}
		return StationEvent{StationCode: stationCode, HasEvent: true, LeadTime: lt, Type: eventType}
	}

	for lt := 1; lt <= model.LeadTimeMax; lt++ {
		f, ok := byLeadTime[lt]
		if !ok || f.AlertClass == model.AlertNo {
			continue
		}
		return StationEvent{StationCode: stationCode, HasEvent: true, LeadTime: lt, Type: EventAlert}
	}

	return StationEvent{StationCode: stationCode, HasEvent: false}
}

// Severity maps an alert class and trigger-ness to the publisher's
// forecast_severity scale. (max,false) stays at 0.7 even though the event
// loop also downgrades the reported alert class from max to med in that
// same case — both behaviors are deliberate per the design notes, not a
// simplification target.
func Severity(class model.AlertClass, isTrigger bool) float64 {
	switch class {
	case model.AlertNo:
		return 0.0
	case model.AlertMin:
		return 0.3
	case model.AlertMed:
		return 0.7
	case model.AlertMax:
		if isTrigger {
			return 1.0
		}
		return 0.7
	default:
		return 0.0
	}
}

// EAPAlertClass downgrades max to med for report to the station dynamics
// feed when the event is an alert rather than a trigger.
func EAPAlertClass(class model.AlertClass, eventType EventType) model.AlertClass {
	if class == model.AlertMax && eventType == EventAlert {
		return model.AlertMed
	}
	return class
}
