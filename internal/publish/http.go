// Package publish emits the downstream alerting API's five endpoints,
// grounded on the teacher's Jira data-center client: bearer-token auth
// instead of a cookie jar, a JSON POST per request instead of GET, with
// exponential-backoff retry replacing the teacher's manual throttle.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"floodpipe/internal/model"
	"floodpipe/internal/retry"
)

// Publisher is the downstream alerting API collaborator. One HTTP
// implementation is provided; tests use an in-memory fake.
type Publisher interface {
	PublishExposure(ctx context.Context, rec ExposureRecord) error
	PublishPointData(ctx context.Context, rec PointDataRecord) error
	PublishAlertsPerLeadTime(ctx context.Context, rec AlertsPerLeadTimeRecord) error
	PublishRaster(ctx context.Context, countryISO3 string, leadTime int, data io.Reader) error
	PublishEventsProcess(ctx context.Context, countryISO3 string, date time.Time) error
}

// HTTPPublisher posts JSON/multipart bodies to the downstream alerting API
// using a bearer token obtained once per construction.
type HTTPPublisher struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retryLog   zerolog.Logger
}

// NewHTTPPublisher builds a Publisher against baseURL, authenticating every
// request with token.
func NewHTTPPublisher(baseURL, token string, timeout time.Duration, log zerolog.Logger) *HTTPPublisher {
	return &HTTPPublisher{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retryLog: log,
	}
}

func (p *HTTPPublisher) postJSON(ctx context.Context, path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("publish: marshal %s: %w", path, err)
	}
	return retry.Do(ctx, retry.Default, p.retryLog, "POST "+path, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/"+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+p.token)
		return p.do(req)
	})
}

func (p *HTTPPublisher) do(req *http.Request) error {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return retry.MarkRetryable(fmt.Errorf("%w: %v", model.ErrRetryableIO, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 400 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode >= 500 {
		return retry.MarkRetryable(fmt.Errorf("%w: status %d", model.ErrRetryableIO, resp.StatusCode))
	}
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%w: status %d: %s", model.ErrDownstreamRejected, resp.StatusCode, string(body))
}

// PublishExposure posts one admin-area-dynamic-data/exposure record.
func (p *HTTPPublisher) PublishExposure(ctx context.Context, rec ExposureRecord) error {
	rec.DisasterType = disasterTypeFloods
	return p.postJSON(ctx, "admin-area-dynamic-data/exposure", rec)
}

// PublishPointData posts one point-data/dynamic record.
func (p *HTTPPublisher) PublishPointData(ctx context.Context, rec PointDataRecord) error {
	rec.DisasterType = disasterTypeFloods
	rec.PointDataCategory = "glofas_stations"
	return p.postJSON(ctx, "point-data/dynamic", rec)
}

// PublishAlertsPerLeadTime posts one event/alerts-per-lead-time record.
func (p *HTTPPublisher) PublishAlertsPerLeadTime(ctx context.Context, rec AlertsPerLeadTimeRecord) error {
	rec.DisasterType = disasterTypeFloods
	return p.postJSON(ctx, "event/alerts-per-lead-time", rec)
}

// PublishRaster uploads one lead time's flood-extent raster as a multipart
// file, whose filename encodes the country and lead time.
func (p *HTTPPublisher) PublishRaster(ctx context.Context, countryISO3 string, leadTime int, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("publish: read raster body: %w", err)
	}
	filename := fmt.Sprintf("flood_extent_%s_%d.tif", countryISO3, leadTime)

	return retry.Do(ctx, retry.Default, p.retryLog, "POST admin-area-dynamic-data/raster/floods", func(ctx context.Context) error {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			return err
		}
		if _, err := part.Write(raw); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/admin-area-dynamic-data/raster/floods", &body)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+p.token)
		return p.do(req)
	})
}

// PublishEventsProcess posts the final events/process message closing out
// a country's run.
func (p *HTTPPublisher) PublishEventsProcess(ctx context.Context, countryISO3 string, date time.Time) error {
	return p.postJSON(ctx, "events/process", EventsProcessRecord{
		CountryCodeISO3: countryISO3,
		DisasterType:    disasterTypeFloods,
		Date:            date.UTC().Format("2006-01-02T15:04:05Z"),
	})
}
