package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"floodpipe/internal/blobstore"
	"floodpipe/internal/model"
)

// LoadCountryPolicy reads a country's policy document from the blob store,
// the threshold-derivation job's sibling output, and validates it. The key
// convention is "config/<iso3>/policy.json".
func LoadCountryPolicy(ctx context.Context, store blobstore.BlobStore, iso3 string) (model.Policy, error) {
	key := fmt.Sprintf("config/%s/policy.json", iso3)
	r, err := store.Get(ctx, key)
	if err != nil {
		return model.Policy{}, fmt.Errorf("%w: policy for %s: %v", model.ErrConfigMissing, iso3, err)
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return model.Policy{}, fmt.Errorf("%w: read policy for %s: %v", model.ErrConfigMissing, iso3, err)
	}

	var p model.Policy
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.Policy{}, fmt.Errorf("%w: decode policy for %s: %v", model.ErrPolicyInvalid, iso3, err)
	}
	if err := p.Validate(); err != nil {
		return model.Policy{}, err
	}
	return p, nil
}

// LoadCountry reads a country's full configuration document (iso3, bbox and
// policy together), keyed "config/<iso3>/country.json", and validates its
// embedded policy.
func LoadCountry(ctx context.Context, store blobstore.BlobStore, iso3 string) (model.Country, error) {
	key := fmt.Sprintf("config/%s/country.json", iso3)
	r, err := store.Get(ctx, key)
	if err != nil {
		return model.Country{}, fmt.Errorf("%w: country config for %s: %v", model.ErrConfigMissing, iso3, err)
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return model.Country{}, fmt.Errorf("%w: read country config for %s: %v", model.ErrConfigMissing, iso3, err)
	}

	var c model.Country
	if err := json.Unmarshal(raw, &c); err != nil {
		return model.Country{}, fmt.Errorf("%w: decode country config for %s: %v", model.ErrPolicyInvalid, iso3, err)
	}
	if err := c.Policy.Validate(); err != nil {
		return model.Country{}, err
	}
	return c, nil
}
