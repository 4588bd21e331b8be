package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"floodpipe/internal/forecast"
	"floodpipe/internal/model"
	"floodpipe/internal/publish"
	"floodpipe/internal/raster"
)

// Emitter implements the publisher's event loop and ordering guarantees
// (spec §4.6/§5) for one country's run.
type Emitter struct {
	pub      publish.Publisher
	country  string
	date     time.Time
	policy   model.Policy
	log      zerolog.Logger
}

// NewEmitter builds an Emitter for one country's run.
func NewEmitter(pub publish.Publisher, country string, date time.Time, policy model.Policy, log zerolog.Logger) *Emitter {
	return &Emitter{pub: pub, country: country, date: date, policy: policy, log: log}
}

// PublishRun emits the full ordered message set for one run: per-event
// exposures, per-event alertsPerLeadTime, per-event station dynamics,
// extent rasters lead_time 0..7, empty-sentinel exposures when nothing was
// touched, remaining station dynamics, and finally events/process.
func (e *Emitter) PublishRun(ctx context.Context, admin *model.ForecastAdminDataset, stations *model.ForecastStationDataset, stationDischarge *model.DischargeStationDataset, stationThresholds *model.StationThresholdSet, extents map[int]*raster.Grid) error {
	anyTouched := false
	posted := make(map[string]bool)

	for _, code := range stations.StationCodes() {
		st, ok := stationThresholds.Get(code)
		if !ok {
			continue
		}
		byLeadTime := make(map[int]model.ForecastStation, model.LeadTimeMax)
		for lt := 1; lt <= model.LeadTimeMax; lt++ {
			if f, ok := stations.Get(code, lt); ok {
				byLeadTime[lt] = f
			}
		}
		event := forecast.DeriveStationEvent(code, e.policy, byLeadTime)
		if !event.HasEvent {
			continue
		}
		posted[code] = true
		anyTouched = true

		eventName := code
		if err := e.publishEventExposures(ctx, admin, st, event, &eventName); err != nil {
			return err
		}
		if err := e.publishEventAlerts(ctx, event, &eventName); err != nil {
			return err
		}
		if err := e.publishStationDynamics(ctx, byLeadTime[event.LeadTime], st, event, stationDischarge); err != nil {
			return err
		}
	}

	for lt := 0; lt <= model.LeadTimeMax; lt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		g, ok := extents[lt]
		if !ok {
			continue
		}
		raw, err := raster.Encode(g)
		if err != nil {
			return fmt.Errorf("pipeline: encode raster lead_time %d: %w", lt, err)
		}
		if err := e.pub.PublishRaster(ctx, e.country, lt, bytes.NewReader(raw)); err != nil {
			return err
		}
	}

	if !anyTouched {
		if err := e.publishSentinelExposures(ctx, admin); err != nil {
			return err
		}
	}

	for _, code := range stationThresholds.StationCodes() {
		if posted[code] {
			continue
		}
		if f, ok := stations.Get(code, model.LeadTimeMax); ok {
			st, _ := stationThresholds.Get(code)
			if err := e.publishStationDynamics(ctx, f, st, forecast.StationEvent{StationCode: code, LeadTime: model.LeadTimeMax}, stationDischarge); err != nil {
				return err
			}
		}
	}

	return e.pub.PublishEventsProcess(ctx, e.country, e.date)
}

func (e *Emitter) dateStr() string {
	return e.date.UTC().Format("2006-01-02T15:04:05Z")
}

func (e *Emitter) publishEventExposures(ctx context.Context, admin *model.ForecastAdminDataset, st model.StationThreshold, event forecast.StationEvent, eventName *string) error {
	for level, pcodes := range st.Pcodes {
		severityCodes := make([]publish.ExposurePlaceCode, 0, len(pcodes))
		triggerCodes := make([]publish.ExposurePlaceCode, 0, len(pcodes))
		popCodes := make([]publish.ExposurePlaceCode, 0, len(pcodes))
		popPctCodes := make([]publish.ExposurePlaceCode, 0, len(pcodes))

		for _, pcode := range pcodes {
			af, ok := admin.Get(pcode, event.LeadTime)
			if !ok {
				continue
			}
			isTrigger := event.Type == forecast.EventTrigger
			severity := forecast.Severity(af.AlertClass, isTrigger)
			trigger := 0.0
			if isTrigger && severity == 1.0 {
				trigger = 1.0
			}
			severityCodes = append(severityCodes, publish.ExposurePlaceCode{PlaceCode: pcode, Amount: severity})
			triggerCodes = append(triggerCodes, publish.ExposurePlaceCode{PlaceCode: pcode, Amount: trigger})
			popCodes = append(popCodes, publish.ExposurePlaceCode{PlaceCode: pcode, Amount: float64(af.PopAffected)})
			popPctCodes = append(popPctCodes, publish.ExposurePlaceCode{PlaceCode: pcode, Amount: af.PopAffectedPct})
		}

		for _, rec := range []struct {
			indicator string
			codes     []publish.ExposurePlaceCode
		}{
			{publish.IndicatorPopAffected, popCodes},
			{publish.IndicatorPopAffectedPct, popPctCodes},
			{publish.IndicatorSeverity, severityCodes},
			{publish.IndicatorTrigger, triggerCodes},
		} {
			err := e.pub.PublishExposure(ctx, publish.ExposureRecord{
				CountryCodeISO3:    e.country,
				LeadTime:           fmt.Sprintf("%d-day", event.LeadTime),
				DynamicIndicator:   rec.indicator,
				AdminLevel:         level,
				ExposurePlaceCodes: rec.codes,
				EventName:          eventName,
				Date:               e.dateStr(),
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Emitter) publishEventAlerts(ctx context.Context, event forecast.StationEvent, eventName *string) error {
	alerts := make([]publish.LeadTimeAlert, 0, model.LeadTimeMax+1)
	for lt := 0; lt <= model.LeadTimeMax; lt++ {
		trigger := event.Type == forecast.EventTrigger && lt >= event.LeadTime
		alert := (event.Type == forecast.EventTrigger || event.Type == forecast.EventAlert) && lt >= event.LeadTime
		alerts = append(alerts, publish.LeadTimeAlert{LeadTime: lt, ForecastAlert: alert, ForecastTrigger: trigger})
	}
	return e.pub.PublishAlertsPerLeadTime(ctx, publish.AlertsPerLeadTimeRecord{
		CountryCodeISO3:   e.country,
		AlertsPerLeadTime: alerts,
		EventName:         eventName,
		Date:              e.dateStr(),
	})
}

func (e *Emitter) publishStationDynamics(ctx context.Context, f model.ForecastStation, st model.StationThreshold, event forecast.StationEvent, discharge *model.DischargeStationDataset) error {
	leadTime := event.LeadTime
	if leadTime == 0 {
		leadTime = model.LeadTimeMax
	}
	triggerValue, err := st.Thresholds.Threshold(e.policy.TriggerRP)
	if err != nil {
		return err
	}

	mean := 0.0
	if discharge != nil {
		if d, ok := discharge.Get(st.StationCode, leadTime); ok {
			mean = d.Mean
		}
	}

	eapClass := forecast.EAPAlertClass(f.AlertClass, event.Type)

	records := []publish.PointDataRecord{
		{Key: publish.KeyForecastLevel, DynamicPointData: []publish.PointDataValue{{FID: st.StationCode, Value: float64(int(mean))}}},
		{Key: publish.KeyEAPAlertClass, DynamicPointData: []publish.PointDataValue{{FID: st.StationCode, Value: float64(eapClass)}}},
		{Key: publish.KeyForecastReturnPeriod, DynamicPointData: []publish.PointDataValue{{FID: st.StationCode, Value: f.ReturnPeriod}}},
		{Key: publish.KeyTriggerLevel, DynamicPointData: []publish.PointDataValue{{FID: st.StationCode, Value: triggerValue}}},
	}
	for _, rec := range records {
		rec.LeadTime = fmt.Sprintf("%d-day", leadTime)
		rec.CountryCodeISO3 = e.country
		rec.Date = e.dateStr()
		if err := e.pub.PublishPointData(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) publishSentinelExposures(ctx context.Context, admin *model.ForecastAdminDataset) error {
	for _, level := range admin.AdmLevels {
		err := e.pub.PublishExposure(ctx, publish.ExposureRecord{
			CountryCodeISO3:    e.country,
			LeadTime:           "1-day",
			DynamicIndicator:   publish.IndicatorPopAffected,
			AdminLevel:         level,
			ExposurePlaceCodes: nil,
			EventName:          nil,
			Date:               e.dateStr(),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
