package logsapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"arkscrape/internal/encounter"
	"arkscrape/internal/raids"
	"arkscrape/lib/telemetry"

	"github.com/stretchr/testify/require"
)

// fakeService scripts one response per incoming request, replaying the
// last script entry once the script runs out.
type fakeService struct {
	script   []func(w http.ResponseWriter)
	requests int
	bodies   [][]byte
}

func (s *fakeService) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.bodies = append(s.bodies, body)

		i := s.requests
		if i >= len(s.script) {
			i = len(s.script) - 1
		}
		s.requests++
		s.script[i](w)
	}
}

func respondJSON(v any) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		body, _ := json.Marshal(v)
		w.Write(body)
	}
}

func respondStatus(code int) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) { w.WriteHeader(code) }
}

func respondRaw(body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) { w.Write([]byte(body)) }
}

// testClient builds a client against srv with instant fake sleeps; every
// requested sleep duration is appended to *slept.
func testClient(t *testing.T, srv *httptest.Server, slept *[]time.Duration, opts ...ClientOption) *Client {
	t.Helper()
	cleanup := telemetry.SetupForTesting("test:logsapi")
	t.Cleanup(cleanup)

	c, err := NewClient(Config{
		ListEndpoint:      srv.URL + "/list",
		BulkEndpoint:      srv.URL + "/bulk",
		RequestsPerSecond: 1000,
	}, opts...)
	if err != nil {
		t.Fatal(err)
	}
	c.sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return c
}

func mustFilter(t *testing.T) Filter {
	t.Helper()
	f, err := NewFilter("Aegir", 2, raids.DifficultyHard)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestNewClientRequiresEndpoints(t *testing.T) {
	_, err := NewClient(Config{BulkEndpoint: "http://localhost/bulk"})
	require.Error(t, err)

	_, err = NewClient(Config{ListEndpoint: "http://localhost/list"})
	require.Error(t, err)
}

func TestListIDsFiltersKnown(t *testing.T) {
	svc := &fakeService{script: []func(http.ResponseWriter){
		respondJSON(listResponse{Encounters: []encounterSummary{{ID: 1}, {ID: 2}, {ID: 3}}}),
	}}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	var slept []time.Duration
	c := testClient(t, srv, &slept)

	ids, err := c.ListIDs(context.Background(), mustFilter(t), 2, 25, map[int64]struct{}{2: {}})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []int64{1, 3}, ids)
	require.Empty(t, slept)

	var body RequestBody
	require.NoError(t, json.Unmarshal(svc.bodies[0], &body))
	require.Equal(t, 2, body.Page)
	require.Equal(t, 25, body.PageSize)
	require.Contains(t, body.Filter.Bosses, "Aegir, the Oppressor")
}

func TestFetchEncounters(t *testing.T) {
	raw := validBulkRecord()
	svc := &fakeService{script: []func(http.ResponseWriter){
		respondJSON([]encounter.Raw{raw}),
	}}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	var slept []time.Duration
	c := testClient(t, srv, &slept)

	raws, err := c.FetchEncounters(context.Background(), []int64{raw.ID})
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, raws, 1)
	require.Equal(t, raw.ID, raws[0].ID)
	require.Equal(t, raw.Boss, raws[0].Boss)

	var ids []int64
	require.NoError(t, json.Unmarshal(svc.bodies[0], &ids))
	require.Equal(t, []int64{raw.ID}, ids)
}

func TestBackoffOn429(t *testing.T) {
	svc := &fakeService{script: []func(http.ResponseWriter){
		respondStatus(http.StatusTooManyRequests),
		respondStatus(http.StatusTooManyRequests),
		respondStatus(http.StatusTooManyRequests),
		respondJSON(listResponse{Encounters: []encounterSummary{{ID: 9}}}),
	}}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	var slept []time.Duration
	var attempts []int
	var totals []time.Duration
	c := testClient(t, srv, &slept,
		WithRetryPolicy(RetryPolicy{Cooldown: 35 * time.Second, BackoffBase: time.Second}),
		WithBackoffObserver(func(attempt int, wait, total time.Duration) {
			attempts = append(attempts, attempt)
			totals = append(totals, total)
		}),
	)

	ids, err := c.ListIDs(context.Background(), mustFilter(t), 1, 25, nil)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []int64{9}, ids)
	require.Equal(t, 4, svc.requests)

	// attempt n waits base * 2^n
	require.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}, slept)
	require.Equal(t, []int{0, 1, 2}, attempts)
	require.Equal(t, []time.Duration{1 * time.Second, 3 * time.Second, 7 * time.Second}, totals)
}

func TestBackoffAttemptCap(t *testing.T) {
	svc := &fakeService{script: []func(http.ResponseWriter){
		respondStatus(http.StatusTooManyRequests),
	}}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	var slept []time.Duration
	c := testClient(t, srv, &slept,
		WithRetryPolicy(RetryPolicy{Cooldown: time.Second, BackoffBase: time.Second, MaxAttempts: 2}),
	)

	_, err := c.ListIDs(context.Background(), mustFilter(t), 1, 25, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrRateLimited))
	require.Len(t, slept, 2)
}

func TestNotFoundDegradesToEmpty(t *testing.T) {
	svc := &fakeService{script: []func(http.ResponseWriter){
		respondStatus(http.StatusNotFound),
	}}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	var slept []time.Duration
	c := testClient(t, srv, &slept,
		WithRetryPolicy(RetryPolicy{Cooldown: 35 * time.Second, BackoffBase: time.Second}),
	)

	ids, err := c.ListIDs(context.Background(), mustFilter(t), 1, 25, nil)
	require.NoError(t, err)
	require.Nil(t, ids)

	// one cooldown between the two tries
	require.Equal(t, []time.Duration{35 * time.Second}, slept)
	require.Equal(t, 2, svc.requests)

	slept = nil
	raws, err := c.FetchEncounters(context.Background(), []int64{1})
	require.NoError(t, err)
	require.Nil(t, raws)
}

func TestTransportFailurePropagatesAfterRetry(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:logsapi")
	t.Cleanup(cleanup)

	// grab an address and close it again so every connection is refused
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	var slept []time.Duration
	c, err := NewClient(Config{
		ListEndpoint:      srv.URL + "/list",
		BulkEndpoint:      srv.URL + "/bulk",
		RequestsPerSecond: 1000,
	}, WithRetryPolicy(RetryPolicy{Cooldown: 35 * time.Second, BackoffBase: time.Second}))
	require.NoError(t, err)
	c.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	_, err = c.ListIDs(context.Background(), mustFilter(t), 1, 25, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "post ")
	// exactly one cooldown between the two connection attempts
	require.Equal(t, []time.Duration{35 * time.Second}, slept)
}

func TestMalformedResponseRetriedOnce(t *testing.T) {
	svc := &fakeService{script: []func(http.ResponseWriter){
		respondRaw("<html>cloudflare says hi</html>"),
		respondJSON(listResponse{Encounters: []encounterSummary{{ID: 4}}}),
	}}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	var slept []time.Duration
	c := testClient(t, srv, &slept,
		WithRetryPolicy(RetryPolicy{Cooldown: 35 * time.Second, BackoffBase: time.Second}),
	)

	ids, err := c.ListIDs(context.Background(), mustFilter(t), 1, 25, nil)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []int64{4}, ids)
	require.Equal(t, []time.Duration{35 * time.Second}, slept)
}

func TestMalformedResponseTwiceFails(t *testing.T) {
	svc := &fakeService{script: []func(http.ResponseWriter){
		respondRaw("not json"),
	}}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	var slept []time.Duration
	c := testClient(t, srv, &slept,
		WithRetryPolicy(RetryPolicy{Cooldown: time.Second, BackoffBase: time.Second}),
	)

	_, err := c.ListIDs(context.Background(), mustFilter(t), 1, 25, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse response")
}

func validBulkRecord() encounter.Raw {
	spec := "Igniter"
	return encounter.Raw{
		ID:          77,
		UploadedAt:  "2025-03-01T10:00:00Z",
		Boss:        "Aegir, the Oppressor",
		Difficulty:  "Hard",
		Timestamp:   1740823200000,
		Duration:    600000,
		LocalPlayer: "Cassia",
		TotalDps:    1000,
		PlayerOverviews: []encounter.RawPlayer{
			{Name: "Cassia", Class: "Sorceress", Spec: &spec, Dps: 1000},
		},
	}
}
