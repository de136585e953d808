// Package workerclient calls the rendition worker's HTTP API.
package workerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"media-job-service/internal/entity"
)

const RequestIDHeader = "X-Request-ID"

// Client issues exactly one request per call; it never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateResponse struct {
	JobID string `json:"jobId"`
}

// GenerateRenditions enqueues work on the worker and returns its job id.
// Any transport failure or non-2xx status is a *entity.DispatchError.
func (c *Client) GenerateRenditions(ctx context.Context, requestID string, req entity.DispatchRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal dispatch request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate-renditions", bytes.NewReader(data))
	if err != nil {
		return "", unavailable(0, "build request: "+err.Error(), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		httpReq.Header.Set(RequestIDHeader, requestID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", unavailable(0, err.Error(), err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", unavailable(resp.StatusCode, strings.TrimSpace(string(body)), nil)
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", unavailable(resp.StatusCode, "decode response: "+err.Error(), err)
	}
	if out.JobID == "" {
		return "", unavailable(resp.StatusCode, "response carries no jobId", nil)
	}
	return out.JobID, nil
}

func unavailable(status int, diagnostic string, err error) *entity.DispatchError {
	return &entity.DispatchError{
		Kind:       entity.DispatchWorkerUnavailable,
		StatusCode: status,
		Diagnostic: diagnostic,
		Err:        err,
	}
}
