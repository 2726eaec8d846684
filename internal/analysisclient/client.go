// Package analysisclient submits weapon screenshots to the API and waits for
// the analysis result.
package analysisclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"craftnexus/internal/models"

	"github.com/google/uuid"
)

// PollInterval is the fixed delay between status checks.
const PollInterval = 2 * time.Second

// ErrAnalysisFailed is wrapped by Wait when the job ends in the failed state.
var ErrAnalysisFailed = errors.New("analysis failed")

// Job mirrors the API's job representation.
type Job struct {
	ID          uuid.UUID           `json:"id"`
	Status      string              `json:"status"`
	Result      *models.WeaponStats `json:"result,omitempty"`
	Error       string              `json:"error,omitempty"`
	PreviewURL  string              `json:"preview_url,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

// Terminal reports whether the job will not change again.
func (j *Job) Terminal() bool {
	return j.Status == models.AnalysisCompleted || j.Status == models.AnalysisFailed
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to one CraftNexus API instance.
type Client struct {
	baseURL  string
	token    string
	http     *http.Client
	interval time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithPollInterval overrides PollInterval. Tests use it.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.interval = d }
}

// New creates a client for baseURL (for example http://localhost:8375/api).
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		http:     &http.Client{Timeout: 30 * time.Second},
		interval: PollInterval,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Submit uploads an image and returns the queued job.
func (c *Client) Submit(ctx context.Context, filename string, image io.Reader) (*Job, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/weapon-analysis", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var job Job
	if err := c.do(req, http.StatusAccepted, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Get fetches the current state of a job.
func (c *Client) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/weapon-analysis/"+url.PathEscape(id.String()), nil)
	if err != nil {
		return nil, err
	}
	var job Job
	if err := c.do(req, http.StatusOK, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Wait polls the job at a fixed interval until it completes, fails or ctx is
// done. A failed job is returned together with an error wrapping ErrAnalysisFailed.
func (c *Client) Wait(ctx context.Context, id uuid.UUID) (*Job, error) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		job, err := c.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		switch job.Status {
		case models.AnalysisCompleted:
			return job, nil
		case models.AnalysisFailed:
			return job, fmt.Errorf("%w: %s", ErrAnalysisFailed, job.Error)
		}

		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, want int, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body models.ErrorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &body) == nil && body.Error != "" {
			apiErr.Message = body.Error
			apiErr.Code = body.Code
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
