package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meltforce/fitlog/internal/hydration"
	"github.com/meltforce/fitlog/internal/models"
	"github.com/meltforce/fitlog/internal/nutrition"
	"github.com/meltforce/fitlog/internal/progress"
	"github.com/meltforce/fitlog/internal/storage"
)

// HTTPClient implements DataSource by calling the FitLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func dayParams(day time.Time) url.Values {
	v := url.Values{}
	v.Set("date", day.Format("2006-01-02"))
	return v
}

func rangeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

// The REST API resolves the user from the transport identity, so the
// userID parameter is unused on this implementation.

func (c *HTTPClient) NutritionSummary(ctx context.Context, _ int, day time.Time) (*nutrition.Summary, error) {
	body, err := c.get(ctx, "/api/v1/nutrition/summary", dayParams(day))
	if err != nil {
		return nil, err
	}

	var summary nutrition.Summary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("httpclient: decode nutrition summary: %w", err)
	}
	return &summary, nil
}

func (c *HTTPClient) WaterSummary(ctx context.Context, _ int, day time.Time) (hydration.Summary, error) {
	body, err := c.get(ctx, "/api/v1/water", dayParams(day))
	if err != nil {
		return hydration.Summary{}, err
	}

	var resp struct {
		Summary hydration.Summary `json:"summary"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return hydration.Summary{}, fmt.Errorf("httpclient: decode water summary: %w", err)
	}
	return resp.Summary, nil
}

func (c *HTTPClient) TrainingCalendar(ctx context.Context, _ int, start, end time.Time) (map[string]int, error) {
	body, err := c.get(ctx, "/api/v1/progress/calendar", rangeParams(start, end))
	if err != nil {
		return nil, err
	}

	var calendar map[string]int
	if err := json.Unmarshal(body, &calendar); err != nil {
		return nil, fmt.Errorf("httpclient: decode calendar: %w", err)
	}
	return calendar, nil
}

func (c *HTTPClient) TrainingFrequency(ctx context.Context, _ int, start, end time.Time) ([]progress.Frequency, error) {
	body, err := c.get(ctx, "/api/v1/progress/frequency", rangeParams(start, end))
	if err != nil {
		return nil, err
	}

	var freq []progress.Frequency
	if err := json.Unmarshal(body, &freq); err != nil {
		return nil, fmt.Errorf("httpclient: decode frequency: %w", err)
	}
	return freq, nil
}

func (c *HTTPClient) Workouts(ctx context.Context, _ int, start, end time.Time) ([]models.CompletedWorkoutRow, error) {
	body, err := c.get(ctx, "/api/v1/workouts", rangeParams(start, end))
	if err != nil {
		return nil, err
	}

	var workouts []models.CompletedWorkoutRow
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return workouts, nil
}

func (c *HTTPClient) Stats(ctx context.Context, _ int) (*storage.DataStats, error) {
	body, err := c.get(ctx, "/api/v1/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats storage.DataStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("httpclient: decode stats: %w", err)
	}
	return &stats, nil
}
