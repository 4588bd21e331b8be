package pipeline

import (
	"context"
	"testing"
	"time"

	"floodpipe/internal/blobstore"
	"floodpipe/internal/model"
)

func TestRunAllIsolatesPerCountryFailures(t *testing.T) {
	countries := []model.Country{
		{ISO3: "KEN"},
		{ISO3: "ETH"},
	}

	store, err := blobstore.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	p := &Pipeline{
		Blob:     store,
		Log:      discardZerolog(),
		Ensemble: 51,
	}
	sup := NewSupervisor(p)

	results := sup.RunAll(context.Background(), countries, time.Now().UTC())
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (one per country regardless of failure)", len(results))
	}
	for _, r := range results {
		if r.Err == nil {
			t.Fatalf("country %s: expected error, since no blob data exists for it", r.Country)
		}
	}
}
