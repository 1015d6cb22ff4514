// Package enhance asks a hosted language model to refine a heuristic brand
// profile. The service is optional: every failure yields an empty Result.
package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL      = "https://api.replicate.com/v1"
	defaultPollInterval = time.Second
	defaultDeadline     = 45 * time.Second
	defaultMaxPolls     = 60
	defaultMaxTokens    = 1024

	maxResponseBytes = 1 << 20
)

// Input is the context sent to the model.
type Input struct {
	Origin string
	// HTML is truncated to its first 8KB before sending.
	HTML string

	CompanyName    string
	Description    string
	Colors         []string
	Keywords       []string
	LogoCandidates []string
}

// Result is the model's suggestion. Empty fields mean "no opinion".
type Result struct {
	CompanyName    string   `json:"companyName,omitempty"`
	Description    string   `json:"description,omitempty"`
	Industry       string   `json:"industry,omitempty"`
	PrimaryColor   string   `json:"primaryColor,omitempty"`
	SecondaryColor string   `json:"secondaryColor,omitempty"`
	Logo           string   `json:"logo,omitempty"`
	Fonts          []string `json:"fonts,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
}

// IsZero reports whether the result carries no suggestion at all.
func (r Result) IsZero() bool {
	return r.CompanyName == "" && r.Description == "" && r.Industry == "" &&
		r.PrimaryColor == "" && r.SecondaryColor == "" && r.Logo == "" &&
		len(r.Fonts) == 0 && len(r.Keywords) == 0
}

// Options configures a Client. Zero values select defaults, except that
// APIToken and ModelVersion must both be set for the client to be enabled.
type Options struct {
	APIToken     string
	BaseURL      string
	ModelVersion string

	PollInterval time.Duration
	// Deadline bounds the whole submit-and-poll exchange.
	Deadline time.Duration
	// MaxPolls bounds the number of status lookups.
	MaxPolls  int
	MaxTokens int

	Client *http.Client

	// Sleep and Now replace the wall clock in tests.
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

// Client talks to a Replicate-style prediction API.
// It is safe for concurrent use.
type Client struct {
	httpClient   *http.Client
	token        string
	baseURL      string
	version      string
	pollInterval time.Duration
	deadline     time.Duration
	maxPolls     int
	maxTokens    int
	sleep        func(ctx context.Context, d time.Duration) error
	now          func() time.Time
}

// New creates a Client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Deadline <= 0 {
		opts.Deadline = defaultDeadline
	}
	if opts.MaxPolls <= 0 {
		opts.MaxPolls = defaultMaxPolls
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 20 * time.Second}
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Client{
		httpClient:   opts.Client,
		token:        opts.APIToken,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		version:      opts.ModelVersion,
		pollInterval: opts.PollInterval,
		deadline:     opts.Deadline,
		maxPolls:     opts.MaxPolls,
		maxTokens:    opts.MaxTokens,
		sleep:        opts.Sleep,
		now:          opts.Now,
	}
}

// Enabled reports whether credentials and a model are configured.
func (c *Client) Enabled() bool {
	return c != nil && c.token != "" && c.version != ""
}

// Enhance runs one prediction and returns the parsed suggestion. It never
// fails: when the client is disabled, the service misbehaves or the
// deadline passes, the zero Result is returned and the cause is logged.
func (c *Client) Enhance(ctx context.Context, in Input) Result {
	if !c.Enabled() {
		return Result{}
	}
	start := c.now()
	r, err := c.run(ctx, in)
	if err != nil {
		slog.Warn("brand enhancement unavailable, using heuristics only",
			"origin", in.Origin,
			"error", err,
			"elapsed", c.now().Sub(start),
		)
		return Result{}
	}
	slog.Debug("brand enhancement finished", "origin", in.Origin, "elapsed", c.now().Sub(start))
	return r
}

// run submits the job and drives it to a terminal status.
func (c *Client) run(ctx context.Context, in Input) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.deadline)
	defer cancel()
	start := c.now()

	job, err := c.submit(ctx, in)
	if err != nil {
		return Result{}, err
	}

	for polls := 0; !job.Status.Terminal(); polls++ {
		if polls >= c.maxPolls || c.now().Sub(start) >= c.deadline {
			job.Status = StatusTimedOut
			break
		}
		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return Result{}, fmt.Errorf("enhance: waiting for job %s: %w", job.ID, err)
		}
		id := job.ID
		job, err = c.get(ctx, id)
		if err != nil {
			return Result{}, err
		}
		slog.Debug("enhancement job polled", "id", id, "status", job.Status, "poll", polls+1)
	}

	switch job.Status {
	case StatusSucceeded:
		return parseResult(job.OutputText(), in.Origin)
	case StatusTimedOut:
		return Result{}, ErrTimedOut
	default:
		return Result{}, fmt.Errorf("%w: status %s: %s", ErrJobFailed, job.Status, job.ErrorText())
	}
}

type createRequest struct {
	Version string      `json:"version"`
	Input   createInput `json:"input"`
}

type createInput struct {
	Prompt       string  `json:"prompt"`
	SystemPrompt string  `json:"system_prompt"`
	MaxTokens    int     `json:"max_tokens"`
	Temperature  float64 `json:"temperature"`
}

func (c *Client) submit(ctx context.Context, in Input) (*Job, error) {
	body, err := json.Marshal(createRequest{
		Version: c.version,
		Input: createInput{
			Prompt:       buildPrompt(in),
			SystemPrompt: systemPrompt,
			MaxTokens:    c.maxTokens,
			Temperature:  0.2,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("enhance: marshal request: %w", err)
	}

	job, err := c.do(ctx, http.MethodPost, c.baseURL+"/predictions", body)
	if err != nil {
		return nil, err
	}
	if job.ID == "" && !job.Status.Terminal() {
		return nil, errors.New("enhance: service returned a job without an id")
	}
	slog.Debug("enhancement job submitted", "id", job.ID, "status", job.Status)
	return job, nil
}

func (c *Client) get(ctx context.Context, id string) (*Job, error) {
	return c.do(ctx, http.MethodGet, c.baseURL+"/predictions/"+url.PathEscape(id), nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) (*Job, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("enhance: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enhance: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("enhance: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyAPIError(resp.StatusCode, respBody)
	}

	var job Job
	if err := json.Unmarshal(respBody, &job); err != nil {
		return nil, fmt.Errorf("enhance: decode job: %w", err)
	}
	return &job, nil
}

// apiError is the error body of the prediction API.
type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// APIError is a non-2xx answer from the prediction API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("enhance: API returned %d: %s", e.StatusCode, e.Message)
}

func classifyAPIError(statusCode int, body []byte) *APIError {
	msg := http.StatusText(statusCode)
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Detail != "" {
			msg = e.Detail
		} else if e.Title != "" {
			msg = e.Title
		}
	}
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		msg = "authentication failed: " + msg
	case http.StatusTooManyRequests:
		msg = "rate limited: " + msg
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
