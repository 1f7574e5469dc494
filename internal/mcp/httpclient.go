package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/repository"
	"github.com/claude/liftlog/internal/storage"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
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

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var rdr io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s %s returned %d: %s", method, path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) snapshotFrom(body []byte, what string) (*repository.Snapshot, error) {
	var snap repository.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("httpclient: decode %s: %w", what, err)
	}
	return &snap, nil
}

func (c *HTTPClient) Snapshot(ctx context.Context) (*repository.Snapshot, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/snapshot", nil)
	if err != nil {
		return nil, err
	}
	return c.snapshotFrom(body, "snapshot")
}

func (c *HTTPClient) CreateWorkout(ctx context.Context, name string, date time.Time) (*repository.Snapshot, error) {
	payload := map[string]string{
		"name": name,
		"date": date.Format("2006-01-02"),
	}
	body, err := c.do(ctx, http.MethodPost, "/api/v1/workouts", payload)
	if err != nil {
		return nil, err
	}
	return c.snapshotFrom(body, "create workout response")
}

func (c *HTTPClient) AddPlannedSets(ctx context.Context, p repository.AddSetsParams) (*repository.Snapshot, error) {
	payload := map[string]any{
		"exerciseId": p.ExerciseID,
		"count":      p.Count,
		"targetReps": p.TargetReps,
		"type":       p.Type,
	}
	if p.TargetWeight != nil {
		payload["targetWeight"] = *p.TargetWeight
	}
	if p.TargetRPE != nil {
		payload["targetRpe"] = *p.TargetRPE
	}

	body, err := c.do(ctx, http.MethodPost, "/api/v1/workouts/"+p.WorkoutID+"/sets", payload)
	if err != nil {
		return nil, err
	}
	return c.snapshotFrom(body, "add sets response")
}

func (c *HTTPClient) UpdateSetFields(ctx context.Context, setID string, patch models.SetPatch) (*repository.Snapshot, error) {
	body, err := c.do(ctx, http.MethodPatch, "/api/v1/sets/"+setID, patch)
	if err != nil {
		return nil, err
	}
	return c.snapshotFrom(body, "update set response")
}

func (c *HTTPClient) ExerciseProgress(ctx context.Context, exerciseID string) ([]repository.ProgressPoint, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/exercises/"+exerciseID+"/progress", nil)
	if err != nil {
		return nil, err
	}

	var points []repository.ProgressPoint
	if err := json.Unmarshal(body, &points); err != nil {
		return nil, fmt.Errorf("httpclient: decode progress: %w", err)
	}
	return points, nil
}

func (c *HTTPClient) ExportRows(ctx context.Context) ([]storage.ExportRow, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/export", nil)
	if err != nil {
		return nil, err
	}

	var rows []storage.ExportRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode export: %w", err)
	}
	return rows, nil
}
