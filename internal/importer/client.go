package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/meltforce/fitlog/internal/models"
)

// Client sends export payloads to the FitLog server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	user       string
	httpClient *http.Client
}

// NewClient creates an HTTP client for the FitLog import endpoint. The user
// is the login the imported data is attributed to; empty means the server's
// dev identity.
func NewClient(serverURL, apiKey, user string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		user:      user,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SendPayload POSTs one export payload to the server's import endpoint.
// Retries up to 3 times with exponential backoff on failure.
func (c *Client) SendPayload(payload models.ExportPayload) (*models.ImportResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	u := c.serverURL + "/api/v1/import"
	if c.user != "" {
		u += "?user=" + url.QueryEscape(c.user)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, u, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("sending payload: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("import failed (status %d): %s", resp.StatusCode, body)
			// Auth and validation failures won't get better on retry.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return nil, lastErr
			}
			continue
		}

		var result models.ImportResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("decoding import result: %w", err)
		}
		return &result, nil
	}

	return nil, lastErr
}
