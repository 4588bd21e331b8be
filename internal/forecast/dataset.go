package forecast

import (
	"context"
	"fmt"

	"floodpipe/internal/model"
)

// RunAdmin derives a ForecastAdminDataset from discharge and thresholds,
// checking for cancellation between admin levels.
func (e *Engine) RunAdmin(ctx context.Context, discharge *model.DischargeAdminDataset, thresholds *model.AdminThresholdSet) (*model.ForecastAdminDataset, error) {
	out := model.NewForecastAdminDataset(discharge.Timestamp, discharge.Country, discharge.AdmLevels)
	for _, admLevel := range discharge.AdmLevels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, d := range discharge.ListByAdmLevel(admLevel) {
			th, ok := thresholds.Get(d.Pcode)
			if !ok {
				return nil, fmt.Errorf("%w: admin thresholds for %s", model.ErrThresholdMissing, d.Pcode)
			}
			f, err := e.ForecastAdminUnit(d, th.Thresholds)
			if err != nil {
				return nil, fmt.Errorf("admin unit %s lead_time %d: %w", d.Pcode, d.LeadTime, err)
			}
			out.Upsert(f)
		}
	}
	return out, nil
}

// RunStations derives a ForecastStationDataset from discharge and
// thresholds.
func (e *Engine) RunStations(ctx context.Context, discharge *model.DischargeStationDataset, thresholds *model.StationThresholdSet) (*model.ForecastStationDataset, error) {
	out := model.NewForecastStationDataset(discharge.Timestamp, discharge.Country)
	for _, code := range discharge.StationCodes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		th, ok := thresholds.Get(code)
		if !ok {
			return nil, fmt.Errorf("%w: station thresholds for %s", model.ErrThresholdMissing, code)
		}
		for lt := 1; lt <= model.LeadTimeMax; lt++ {
			d, ok := discharge.Get(code, lt)
			if !ok {
				continue
			}
			f, err := e.ForecastStationUnit(d, th.Thresholds)
			if err != nil {
				return nil, fmt.Errorf("station %s lead_time %d: %w", code, lt, err)
			}
			out.Upsert(f)
		}
	}
	return out, nil
}
