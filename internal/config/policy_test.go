package config

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"floodpipe/internal/blobstore"
	"floodpipe/internal/model"
)

func TestLoadCountryPolicyValidDocument(t *testing.T) {
	store, err := blobstore.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	doc := `{
		"admin_levels": [2, 1],
		"trigger_on_lead_time": 3,
		"trigger_on_return_period": 2,
		"trigger_on_minimum_probability": 0.6,
		"classify_alert_on": "disable",
		"no_ensemble_members": 51
	}`
	if err := store.Put(context.Background(), "config/KEN/policy.json", bytes.NewReader([]byte(doc))); err != nil {
		t.Fatalf("Put: %v", err)
	}

	p, err := LoadCountryPolicy(context.Background(), store, "KEN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TriggerLeadTime != 3 {
		t.Fatalf("got TriggerLeadTime %d, want 3", p.TriggerLeadTime)
	}
}

func TestLoadCountryPolicyMissingKeyWrapsConfigMissing(t *testing.T) {
	store, err := blobstore.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	if _, err := LoadCountryPolicy(context.Background(), store, "KEN"); !errors.Is(err, model.ErrConfigMissing) {
		t.Fatalf("got %v, want ErrConfigMissing", err)
	}
}

func TestLoadCountryPolicyInvalidPolicyRejected(t *testing.T) {
	store, err := blobstore.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	doc := `{"trigger_on_lead_time": 99, "classify_alert_on": "disable", "no_ensemble_members": 51}`
	if err := store.Put(context.Background(), "config/KEN/policy.json", bytes.NewReader([]byte(doc))); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := LoadCountryPolicy(context.Background(), store, "KEN"); !errors.Is(err, model.ErrPolicyInvalid) {
		t.Fatalf("got %v, want ErrPolicyInvalid for out-of-range lead time", err)
	}
}

func TestLoadCountryReadsBBoxAndPolicyTogether(t *testing.T) {
	store, err := blobstore.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	doc := `{
		"iso3": "KEN",
		"bbox": {"min_lon": 33.5, "min_lat": -5.0, "max_lon": 42.0, "max_lat": 5.5},
		"policy": {
			"admin_levels": [2],
			"trigger_on_lead_time": 2,
			"trigger_on_return_period": 2,
			"trigger_on_minimum_probability": 0.5,
			"classify_alert_on": "disable",
			"no_ensemble_members": 51
		}
	}`
	if err := store.Put(context.Background(), "config/KEN/country.json", bytes.NewReader([]byte(doc))); err != nil {
		t.Fatalf("Put: %v", err)
	}

	c, err := LoadCountry(context.Background(), store, "KEN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ISO3 != "KEN" {
		t.Fatalf("got ISO3 %q, want KEN", c.ISO3)
	}
	if c.BBox.MaxLon != 42.0 {
		t.Fatalf("got MaxLon %v, want 42.0", c.BBox.MaxLon)
	}
	if c.Policy.TriggerLeadTime != 2 {
		t.Fatalf("got TriggerLeadTime %d, want 2", c.Policy.TriggerLeadTime)
	}
}
