// Package threshold loads and holds the per-admin and per-station
// return-period thresholds a country's forecast run is evaluated against.
package threshold

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"floodpipe/internal/blobstore"
	"floodpipe/internal/model"
)

// Store loads AdminThreshold/StationThreshold collections from a BlobStore
// as JSON documents, the threshold-derivation batch job's output schema.
type Store struct {
	blob blobstore.BlobStore
}

// New builds a Store against the given blob store. No package-level
// singleton is kept; callers hold their own Store.
func New(blob blobstore.BlobStore) *Store {
	return &Store{blob: blob}
}

// GetAdminThresholds loads and validates every admin unit's thresholds for
// country, keyed at "thresholds/<iso3>/admin.json".
func (s *Store) GetAdminThresholds(ctx context.Context, iso3 string) (*model.AdminThresholdSet, error) {
	var raw []model.AdminThreshold
	if err := s.loadJSON(ctx, fmt.Sprintf("thresholds/%s/admin.json", iso3), &raw); err != nil {
		return nil, err
	}
	set := model.NewAdminThresholdSet(iso3)
	for _, t := range raw {
		if err := t.Thresholds.Validate(); err != nil {
			return nil, fmt.Errorf("admin threshold %s/%s: %w", iso3, t.Pcode, err)
		}
		set.Upsert(t)
	}
	return set, nil
}

// GetStationThresholds loads and validates every station's thresholds for
// country, keyed at "thresholds/<iso3>/stations.json".
func (s *Store) GetStationThresholds(ctx context.Context, iso3 string) (*model.StationThresholdSet, error) {
	var raw []model.StationThreshold
	if err := s.loadJSON(ctx, fmt.Sprintf("thresholds/%s/stations.json", iso3), &raw); err != nil {
		return nil, err
	}
	set := model.NewStationThresholdSet(iso3)
	for _, t := range raw {
		if err := t.Thresholds.Validate(); err != nil {
			return nil, fmt.Errorf("station threshold %s/%s: %w", iso3, t.StationCode, err)
		}
		set.Upsert(t)
	}
	return set, nil
}

func (s *Store) loadJSON(ctx context.Context, key string, v interface{}) error {
	r, err := s.blob.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrConfigMissing, key, err)
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", model.ErrConfigMissing, key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", model.ErrPolicyInvalid, key, err)
	}
	return nil
}
