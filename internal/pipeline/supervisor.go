package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"floodpipe/internal/model"
)

// Supervisor runs every configured country's pipeline in parallel,
// logging and continuing past any country-fatal error rather than
// propagating it across countries.
type Supervisor struct {
	pipeline *Pipeline
}

// NewSupervisor builds a Supervisor around a Pipeline.
func NewSupervisor(p *Pipeline) *Supervisor {
	return &Supervisor{pipeline: p}
}

// RunResult records the outcome of one country's run.
type RunResult struct {
	Country string
	Err     error
}

// RunAll runs every country's pipeline concurrently and returns one
// RunResult per country; a country's error never aborts another country's
// run or the overall call.
func (s *Supervisor) RunAll(ctx context.Context, countries []model.Country, date time.Time) []RunResult {
	results := make([]RunResult, len(countries))
	var g errgroup.Group

	for i, country := range countries {
		i, country := i, country
		g.Go(func() error {
			err := s.pipeline.RunCountry(ctx, country, date)
			if err != nil {
				s.pipeline.Log.Error().Err(err).Str("country", country.ISO3).Msg("country run failed, continuing to next country")
			}
			results[i] = RunResult{Country: country.ISO3, Err: err}
			return nil // never propagate a country's error into the group
		})
	}
	_ = g.Wait()
	return results
}
