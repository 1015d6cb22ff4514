package enhance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when the client sleeps.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d)
	return nil
}

// predictionServer serves a create endpoint and a status endpoint whose
// answers come from polls, one per GET; the last entry repeats.
type predictionServer struct {
	*httptest.Server
	created atomic.Int32
	gets    atomic.Int32
	body    atomic.Value // createRequest
	auth    atomic.Value // string
}

func newPredictionServer(t *testing.T, createStatus int, polls []func(w http.ResponseWriter)) *predictionServer {
	t.Helper()
	ps := &predictionServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /predictions", func(w http.ResponseWriter, r *http.Request) {
		ps.created.Add(1)
		ps.auth.Store(r.Header.Get("Authorization"))
		var req createRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		ps.body.Store(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(createStatus)
		if createStatus >= 300 {
			_, _ = w.Write([]byte(`{"title":"Unauthenticated","detail":"Invalid token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"p1","status":"starting","output":null,"error":null}`))
	})
	mux.HandleFunc("GET /predictions/p1", func(w http.ResponseWriter, r *http.Request) {
		n := int(ps.gets.Add(1)) - 1
		if n >= len(polls) {
			n = len(polls) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		polls[n](w)
	})
	ps.Server = httptest.NewServer(mux)
	t.Cleanup(ps.Close)
	return ps
}

func status(s string, output string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		if output == "" {
			output = "null"
		}
		_, _ = w.Write([]byte(`{"id":"p1","status":"` + s + `","output":` + output + `,"error":null}`))
	}
}

func newTestClient(srv *httptest.Server, clock *fakeClock, mutate func(*Options)) *Client {
	opts := Options{
		APIToken:     "tok",
		ModelVersion: "v1",
		BaseURL:      srv.URL,
		Client:       srv.Client(),
		Sleep:        clock.Sleep,
		Now:          clock.Now,
	}
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts)
}

func testInput() Input {
	return Input{
		Origin:         "https://acme.com",
		HTML:           "<html>" + strings.Repeat("é", 10<<10) + "</html>",
		CompanyName:    "Acme",
		Description:    "Acme builds software solutions",
		Colors:         []string{"#1a73e8"},
		Keywords:       []string{"software"},
		LogoCandidates: []string{"https://acme.com/logo.svg"},
	}
}

func TestEnhance_DisabledWithoutCredentials(t *testing.T) {
	ps := newPredictionServer(t, http.StatusCreated, []func(http.ResponseWriter){status("succeeded", `"{}"`)})

	for _, opts := range []Options{
		{BaseURL: ps.URL},
		{BaseURL: ps.URL, APIToken: "tok"},
		{BaseURL: ps.URL, ModelVersion: "v1"},
	} {
		c := New(opts)
		assert.False(t, c.Enabled())
		assert.True(t, c.Enhance(context.Background(), testInput()).IsZero())
	}
	assert.Zero(t, ps.created.Load())

	var nilClient *Client
	assert.False(t, nilClient.Enabled())
}

func TestEnhance_SucceedsWithChunkedOutput(t *testing.T) {
	output := `["Sure! {\"companyName\": \"Acme", " Corp\", \"description\": \"Cloud {software}\", \"industry\": 42,", ` +
		`" \"primaryColor\": \"#F60\", \"secondaryColor\": \"teal-ish\", \"logo\": \"/img/logo.svg\",", ` +
		`" \"fonts\": \"Inter, Roboto\", \"keywords\": [\"software\", \"cloud\"]} Hope this helps {x}"]`
	ps := newPredictionServer(t, http.StatusCreated, []func(http.ResponseWriter){
		status("processing", ""),
		status("succeeded", output),
	})

	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	c := newTestClient(ps.Server, clock, nil)

	r, err := c.run(context.Background(), testInput())
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", r.CompanyName)
	assert.Equal(t, "Cloud {software}", r.Description)
	assert.Empty(t, r.Industry)
	assert.Equal(t, "#ff6600", r.PrimaryColor)
	assert.Empty(t, r.SecondaryColor)
	assert.Equal(t, "https://acme.com/img/logo.svg", r.Logo)
	assert.Equal(t, []string{"Inter", "Roboto"}, r.Fonts)
	assert.Equal(t, []string{"software", "cloud"}, r.Keywords)

	assert.Equal(t, int32(2), ps.gets.Load())
	assert.Equal(t, []time.Duration{time.Second, time.Second}, clock.sleeps)

	assert.Equal(t, "Bearer tok", ps.auth.Load())
	req := ps.body.Load().(createRequest)
	assert.Equal(t, "v1", req.Version)
	assert.Contains(t, req.Input.SystemPrompt, "web scraping and branding assistant")
	assert.Contains(t, req.Input.Prompt, "companyName: Acme")
	assert.Less(t, strings.Count(req.Input.Prompt, "é")*2, maxHTMLBytes+1)
}

func TestEnhance_FailedJobDegrades(t *testing.T) {
	ps := newPredictionServer(t, http.StatusCreated, []func(http.ResponseWriter){
		status("processing", ""),
		func(w http.ResponseWriter) {
			_, _ = w.Write([]byte(`{"id":"p1","status":"failed","output":null,"error":"CUDA out of memory"}`))
		},
	})
	c := newTestClient(ps.Server, &fakeClock{}, nil)

	_, err := c.run(context.Background(), testInput())
	require.ErrorIs(t, err, ErrJobFailed)
	assert.Contains(t, err.Error(), "CUDA out of memory")

	assert.True(t, c.Enhance(context.Background(), testInput()).IsZero())
}

func TestEnhance_PollErrorAborts(t *testing.T) {
	ps := newPredictionServer(t, http.StatusCreated, []func(http.ResponseWriter){
		func(w http.ResponseWriter) { w.WriteHeader(http.StatusInternalServerError) },
		status("succeeded", `"{\"companyName\":\"Late\"}"`),
	})
	c := newTestClient(ps.Server, &fakeClock{}, nil)

	_, err := c.run(context.Background(), testInput())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, int32(1), ps.gets.Load())
}

func TestEnhance_SubmitUnauthorized(t *testing.T) {
	ps := newPredictionServer(t, http.StatusUnauthorized, nil)
	c := newTestClient(ps.Server, &fakeClock{}, nil)

	_, err := c.run(context.Background(), testInput())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "authentication failed: Invalid token", apiErr.Message)
	assert.Zero(t, ps.gets.Load())
}

func TestEnhance_PollBudgetExhausted(t *testing.T) {
	ps := newPredictionServer(t, http.StatusCreated, []func(http.ResponseWriter){status("processing", "")})
	clock := &fakeClock{}
	c := newTestClient(ps.Server, clock, func(o *Options) { o.MaxPolls = 5 })

	_, err := c.run(context.Background(), testInput())
	require.ErrorIs(t, err, ErrTimedOut)
	assert.Equal(t, int32(5), ps.gets.Load())
	assert.Len(t, clock.sleeps, 5)
}

func TestEnhance_DeadlineOnInjectedClock(t *testing.T) {
	ps := newPredictionServer(t, http.StatusCreated, []func(http.ResponseWriter){status("queued", "")})
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := newTestClient(ps.Server, clock, func(o *Options) {
		o.Deadline = 3 * time.Second
		o.MaxPolls = 1000
	})

	_, err := c.run(context.Background(), testInput())
	require.ErrorIs(t, err, ErrTimedOut)
	assert.Equal(t, int32(3), ps.gets.Load())
}

func TestEnhance_CallerCancellation(t *testing.T) {
	ps := newPredictionServer(t, http.StatusCreated, []func(http.ResponseWriter){status("processing", "")})
	ctx, cancel := context.WithCancel(context.Background())

	clock := &fakeClock{}
	c := newTestClient(ps.Server, clock, func(o *Options) {
		o.Sleep = func(ctx context.Context, d time.Duration) error {
			cancel()
			return clock.Sleep(ctx, d)
		}
	})

	_, err := c.run(ctx, testInput())
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, ps.gets.Load())
}

func TestEnhance_OutputWithoutJSON(t *testing.T) {
	ps := newPredictionServer(t, http.StatusCreated, []func(http.ResponseWriter){
		status("succeeded", `"I could not determine the brand."`),
	})
	c := newTestClient(ps.Server, &fakeClock{}, nil)

	_, err := c.run(context.Background(), testInput())
	require.ErrorIs(t, err, ErrNoJSON)
	assert.True(t, c.Enhance(context.Background(), testInput()).IsZero())
}

func TestEnhance_UnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New(Options{APIToken: "tok", ModelVersion: "v1", BaseURL: srv.URL})
	done := make(chan Result, 1)
	go func() { done <- c.Enhance(context.Background(), testInput()) }()

	select {
	case r := <-done:
		assert.True(t, r.IsZero())
	case <-time.After(5 * time.Second):
		t.Fatal("Enhance did not return for an unreachable service")
	}
}
