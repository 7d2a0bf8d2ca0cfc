package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gridmix/internal/logger"
	"gridmix/internal/models"

	"github.com/go-resty/resty/v2"
)

// maxLoggedBody caps how much of an error body is kept
const maxLoggedBody = 200

// Source provides raw records for a query
type Source interface {
	Fetch(ctx context.Context, q models.Query) ([]models.RawRecord, error)
}

// EmberFetcher retrieves datasets from the Ember energy-data API
type EmberFetcher struct {
	client *resty.Client
	apiKey string
	log    *logger.Logger
}

// NewEmberFetcher creates a fetcher for baseURL. Each request is attempted once.
func NewEmberFetcher(baseURL, apiKey string, timeout time.Duration) *EmberFetcher {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetTimeout(timeout)
	client.SetRetryCount(0)
	client.SetHeader("Accept", "application/json")

	return &EmberFetcher{
		client: client,
		apiKey: apiKey,
		log:    logger.For(logger.ComponentFetcher),
	}
}

// Endpoint returns the API path serving q
func Endpoint(q models.Query) string {
	return fmt.Sprintf("/v1/%s/%s", q.Dataset, q.Granularity.Endpoint())
}

// Fetch requests one dataset and returns the records of its data array.
// Transport failures and non-200 answers are returned as *models.FetchError.
func (f *EmberFetcher) Fetch(ctx context.Context, q models.Query) ([]models.RawRecord, error) {
	endpoint := Endpoint(q)
	start := time.Now()

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"entity_code":         q.EntityCode,
			"is_aggregate_series": strconv.FormatBool(q.AggregateSeries),
			"start_date":          q.StartDate,
			"api_key":             f.apiKey,
		}).
		Get(endpoint)
	if err != nil {
		f.log.Error("Ember request failed", err, logger.Fields{"endpoint": endpoint})
		return nil, &models.FetchError{Endpoint: endpoint, Err: err}
	}

	if resp.StatusCode() != 200 {
		body := string(resp.Body())
		if len(body) > maxLoggedBody {
			body = body[:maxLoggedBody]
		}
		f.log.Warn("Ember API returned an error status", logger.Fields{
			"endpoint": endpoint,
			"status":   resp.StatusCode(),
			"body":     body,
		})
		return nil, &models.FetchError{Endpoint: endpoint, StatusCode: resp.StatusCode(), Body: body}
	}

	var envelope models.EmberResponse
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, &models.FetchError{Endpoint: endpoint, StatusCode: resp.StatusCode(), Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if envelope.Data == nil {
		return nil, &models.FetchError{Endpoint: endpoint, StatusCode: resp.StatusCode(), Err: fmt.Errorf("response has no data array")}
	}

	if envelope.Stats != nil && envelope.Stats.NumberOfRecords > len(envelope.Data) {
		f.log.Warn("Ember response holds fewer records than reported", logger.Fields{
			"endpoint": endpoint,
			"records":  len(envelope.Data),
			"reported": envelope.Stats.NumberOfRecords,
		})
	}

	f.log.Info("Fetched Ember dataset", logger.Fields{
		"endpoint":    endpoint,
		"entity_code": q.EntityCode,
		"records":     len(envelope.Data),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return envelope.Data, nil
}
