package enhance

import (
	"encoding/json"
	"errors"
	"strings"
)

// Status is the lifecycle state of a prediction job.
type Status string

const (
	StatusStarting   Status = "starting"
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"

	// StatusTimedOut is never reported by the service; the client assigns it
	// when the poll deadline or poll budget runs out.
	StatusTimedOut Status = "timed_out"
)

// Terminal reports whether no further polling can change the job.
// Unknown statuses are treated as still running.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled, StatusTimedOut:
		return true
	}
	return false
}

var (
	ErrJobFailed = errors.New("enhance: job failed")
	ErrTimedOut  = errors.New("enhance: job did not finish before the deadline")
	ErrNoJSON    = errors.New("enhance: output contains no JSON object")
)

// Job is a prediction as returned by the create and get endpoints.
type Job struct {
	ID     string          `json:"id"`
	Status Status          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  json.RawMessage `json:"error"`
}

// OutputText flattens the job output. Models that stream return an array of
// string fragments, which are concatenated in order; others return a single
// string. Any other JSON value is returned verbatim.
func (j *Job) OutputText() string {
	raw := strings.TrimSpace(string(j.Output))
	if raw == "" || raw == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(j.Output, &s); err == nil {
		return s
	}
	var parts []string
	if err := json.Unmarshal(j.Output, &parts); err == nil {
		return strings.Join(parts, "")
	}
	return raw
}

// ErrorText returns the service-reported failure reason, if any.
func (j *Job) ErrorText() string {
	var s string
	if err := json.Unmarshal(j.Error, &s); err == nil {
		return s
	}
	raw := strings.TrimSpace(string(j.Error))
	if raw == "null" {
		return ""
	}
	return raw
}
