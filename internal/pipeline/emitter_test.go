package pipeline

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"floodpipe/internal/model"
	"floodpipe/internal/publish"
	"floodpipe/internal/raster"
)

func discardZerolog() zerolog.Logger {
	return zerolog.Nop()
}

type fakePublisher struct {
	exposures      []publish.ExposureRecord
	pointData      []publish.PointDataRecord
	alerts         []publish.AlertsPerLeadTimeRecord
	rasters        []int
	processedCalls int
}

func (f *fakePublisher) PublishExposure(ctx context.Context, rec publish.ExposureRecord) error {
	f.exposures = append(f.exposures, rec)
	return nil
}

func (f *fakePublisher) PublishPointData(ctx context.Context, rec publish.PointDataRecord) error {
	f.pointData = append(f.pointData, rec)
	return nil
}

func (f *fakePublisher) PublishAlertsPerLeadTime(ctx context.Context, rec publish.AlertsPerLeadTimeRecord) error {
	f.alerts = append(f.alerts, rec)
	return nil
}

func (f *fakePublisher) PublishRaster(ctx context.Context, countryISO3 string, leadTime int, data io.Reader) error {
	io.Copy(io.Discard, data)
	f.rasters = append(f.rasters, leadTime)
	return nil
}

func (f *fakePublisher) PublishEventsProcess(ctx context.Context, countryISO3 string, date time.Time) error {
	f.processedCalls++
	return nil
}

func basicPolicy() model.Policy {
	return model.Policy{AdminLevels: []int{2}, TriggerLeadTime: 3, TriggerRP: 2.0}
}

func TestPublishRunSentinelWhenNothingTriggered(t *testing.T) {
	admin := model.NewForecastAdminDataset("t", "KEN", []int{2})
	stations := model.NewForecastStationDataset("t", "KEN")
	staThresholds := model.NewStationThresholdSet("KEN")

	fake := &fakePublisher{}
	e := NewEmitter(fake, "KEN", time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC), basicPolicy(), discardZerolog())

	if err := e.PublishRun(context.Background(), admin, stations, nil, staThresholds, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.exposures) != 1 {
		t.Fatalf("got %d exposures, want 1 sentinel (adm level 2)", len(fake.exposures))
	}
	if fake.exposures[0].ExposurePlaceCodes != nil {
		t.Fatalf("sentinel exposure must carry no place codes, got %+v", fake.exposures[0].ExposurePlaceCodes)
	}
	if fake.processedCalls != 1 {
		t.Fatalf("got %d events/process calls, want exactly 1", fake.processedCalls)
	}
}

func TestPublishRunTriggeredStationEmitsExposuresAndAlerts(t *testing.T) {
	admin := model.NewForecastAdminDataset("t", "KEN", []int{2})
	admin.Upsert(model.ForecastAdmin{AdmLevel: 2, Pcode: "KE0101", LeadTime: 2, Triggered: true, AlertClass: model.AlertMax, PopAffected: 500, PopAffectedPct: 12.5})

	stations := model.NewForecastStationDataset("t", "KEN")
	stations.Upsert(model.ForecastStation{StationCode: "STA-1", LeadTime: 2, Triggered: true, AlertClass: model.AlertMax, ReturnPeriod: 5})

	staThresholds := model.NewStationThresholdSet("KEN")
	staThresholds.Upsert(model.StationThreshold{
		StationCode: "STA-1",
		Pcodes:      map[int][]string{2: {"KE0101"}},
		Thresholds:  model.Thresholds{{ReturnPeriod: 2.0, Value: 10}, {ReturnPeriod: 5.0, Value: 20}},
	})

	discharge := model.NewDischargeStationDataset("t", "KEN")
	discharge.Upsert(model.DischargeStation{StationCode: "STA-1", LeadTime: 2, Mean: 15})

	fake := &fakePublisher{}
	e := NewEmitter(fake, "KEN", time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC), basicPolicy(), discardZerolog())

	if err := e.PublishRun(context.Background(), admin, stations, discharge, staThresholds, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.exposures) != 4 {
		t.Fatalf("got %d exposures, want 4 (one per dynamic indicator)", len(fake.exposures))
	}
	if len(fake.alerts) != 1 {
		t.Fatalf("got %d alerts records, want 1", len(fake.alerts))
	}
	if len(fake.pointData) != 4 {
		t.Fatalf("got %d point-data records, want 4 (one per station dynamic key)", len(fake.pointData))
	}
	if fake.processedCalls != 1 {
		t.Fatalf("got %d events/process calls, want exactly 1", fake.processedCalls)
	}
}

func TestPublishRunEncodesOneRasterPerLeadTime(t *testing.T) {
	admin := model.NewForecastAdminDataset("t", "KEN", []int{2})
	stations := model.NewForecastStationDataset("t", "KEN")
	staThresholds := model.NewStationThresholdSet("KEN")

	extents := map[int]*raster.Grid{
		1: raster.NewGrid(2, 2, raster.Transform{OriginLon: 30, OriginLat: 1, PixelWidth: 0.1, PixelHeight: -0.1}, -1),
		3: raster.NewGrid(2, 2, raster.Transform{OriginLon: 30, OriginLat: 1, PixelWidth: 0.1, PixelHeight: -0.1}, -1),
	}

	fake := &fakePublisher{}
	e := NewEmitter(fake, "KEN", time.Now().UTC(), basicPolicy(), discardZerolog())
	if err := e.PublishRun(context.Background(), admin, stations, nil, staThresholds, extents); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.rasters) != 2 {
		t.Fatalf("got %d raster publishes, want 2 (only lead times present in map)", len(fake.rasters))
	}
}
