package hevy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"overloader/internal/services"
)

const (
	workoutsPath = "/v1/workouts"
	routinesPath = "/v1/routines"

	defaultTimeout   = 30 * time.Second
	maxErrorBodySize = 4096
)

// Tracker defines the tracker operations the pipeline depends on.
type Tracker interface {
	GetWorkout(ctx context.Context, id string) (*Workout, error)
	ListWorkouts(ctx context.Context, page, pageSize int) (*WorkoutPage, error)
	GetRoutine(ctx context.Context, id string) (*Routine, error)
	UpdateRoutine(ctx context.Context, id string, update RoutineUpdate) (*Routine, error)
}

// StatusError reports a non-2xx tracker response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the Hevy REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Tracker = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// New creates a tracker client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("hevy api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("hevy base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// GetWorkout fetches a completed workout by id.
func (c *Client) GetWorkout(ctx context.Context, id string) (*Workout, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("workout id must not be empty")
	}
	body, err := c.do(ctx, http.MethodGet, workoutsPath+"/"+url.PathEscape(id), nil, "get workout")
	if err != nil {
		return nil, err
	}
	var workout Workout
	if err := json.Unmarshal(body, &workout); err != nil {
		return nil, fmt.Errorf("decode workout response: %w", err)
	}
	return &workout, nil
}

// ListWorkouts fetches one page of the workout history, newest first. Pages are 1-based.
func (c *Client) ListWorkouts(ctx context.Context, page, pageSize int) (*WorkoutPage, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))

	body, err := c.do(ctx, http.MethodGet, workoutsPath+"?"+params.Encode(), nil, "list workouts")
	if err != nil {
		return nil, err
	}
	var payload WorkoutPage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode workouts response: %w", err)
	}
	if payload.Page == 0 {
		payload.Page = page
	}
	if payload.PageSize == 0 {
		payload.PageSize = pageSize
	}
	return &payload, nil
}

// GetRoutine fetches a routine by id.
func (c *Client) GetRoutine(ctx context.Context, id string) (*Routine, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("routine id must not be empty")
	}
	body, err := c.do(ctx, http.MethodGet, routinesPath+"/"+url.PathEscape(id), nil, "get routine")
	if err != nil {
		return nil, err
	}
	return decodeRoutine(body)
}

// UpdateRoutine replaces a routine's title and exercises and returns the echoed routine.
func (c *Client) UpdateRoutine(ctx context.Context, id string, update RoutineUpdate) (*Routine, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("routine id must not be empty")
	}
	payload, err := json.Marshal(struct {
		Routine RoutineUpdate `json:"routine"`
	}{Routine: update})
	if err != nil {
		return nil, fmt.Errorf("encode routine update: %w", err)
	}
	body, err := c.do(ctx, http.MethodPut, routinesPath+"/"+url.PathEscape(id), payload, "update routine")
	if err != nil {
		return nil, err
	}
	return decodeRoutine(body)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, op string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("%s: execute request (latency=%v): %w", op, latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, services.Wrap(services.ErrAuth, "hevy", op, "api key rejected", statusErr)
		}
		return nil, fmt.Errorf("%s (latency=%v): %w", op, latency, statusErr)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}
	return body, nil
}

// decodeRoutine accepts a bare routine, {"routine": {...}} or {"routine": [{...}]}.
func decodeRoutine(body []byte) (*Routine, error) {
	var envelope struct {
		Routine json.RawMessage `json:"routine"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode routine response: %w", err)
	}
	raw := bytes.TrimSpace(envelope.Routine)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = body
	}
	if len(raw) > 0 && raw[0] == '[' {
		var routines []Routine
		if err := json.Unmarshal(raw, &routines); err != nil {
			return nil, fmt.Errorf("decode routine response: %w", err)
		}
		if len(routines) == 0 {
			return nil, errors.New("decode routine response: empty routine array")
		}
		return &routines[0], nil
	}
	var routine Routine
	if err := json.Unmarshal(raw, &routine); err != nil {
		return nil, fmt.Errorf("decode routine response: %w", err)
	}
	return &routine, nil
}

// AsStatusError extracts the tracker status error from err, if any.
func AsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}
