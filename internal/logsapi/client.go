// Package logsapi is the rate-limited client for the remote encounter
// logging service. It speaks two endpoints: one listing encounter ids
// page by page, one returning full records for a batch of ids. The
// service enforces an undocumented rate limit, so every call goes
// through a throttle and a shared retry contract.
package logsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"arkscrape/internal/encounter"
	"arkscrape/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("logsapi")

// errNotFound marks a persistent 404; callers degrade it to an empty
// result rather than failing the run.
var errNotFound = fmt.Errorf("no matching logs")

// Config carries the two endpoint URLs. Both are required: the client
// fails at construction rather than on first use.
type Config struct {
	// ListEndpoint answers filtered, paginated id-listing queries.
	ListEndpoint string `json:"list_endpoint"`
	// BulkEndpoint answers bulk record fetches for a list of ids.
	BulkEndpoint string `json:"bulk_endpoint"`
	// RequestsPerSecond throttles outgoing calls. Defaults to 1.
	RequestsPerSecond float64 `json:"requests_per_second"`
}

type Client struct {
	http     *resty.Client
	cfg      Config
	retry    RetryPolicy
	observer BackoffObserver
	sleep    sleeper
}

type ClientOption func(*Client)

func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) { c.retry = p }
}

// WithBackoffObserver replaces the default slog-based backoff reporting.
func WithBackoffObserver(o BackoffObserver) ClientOption {
	return func(c *Client) { c.observer = o }
}

func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.ListEndpoint == "" {
		return nil, fmt.Errorf("logsapi: list endpoint is not configured")
	}
	if cfg.BulkEndpoint == "" {
		return nil, fmt.Errorf("logsapi: bulk endpoint is not configured")
	}

	httpClient := resty.New()
	httpClient.SetTimeout(time.Minute)
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	// one outstanding call at a time; the limiter only paces starts
	limiter := rate.NewLimiter(rate.Limit(rps), 1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, "logsapi/http")

	c := &Client{
		http:  httpClient,
		cfg:   cfg,
		retry: DefaultRetryPolicy(),
		sleep: sleepContext,
	}
	c.observer = func(attempt int, wait, total time.Duration) {
		slog.Info(
			"rate limited, backing off",
			"attempt", attempt+1,
			"wait", wait,
			"total_wait", total,
		)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type encounterSummary struct {
	ID int64 `json:"id"`
}

type listResponse struct {
	Encounters []encounterSummary `json:"encounters"`
}

// ListIDs fetches one listing page and returns the ids not already in
// known. A persistently missing page yields an empty result.
func (c *Client) ListIDs(ctx context.Context, f Filter, page, pageSize int, known map[int64]struct{}) ([]int64, error) {
	ctx, span := tracer.Start(ctx, "ListIDs")
	defer span.End()
	span.SetAttributes(
		attribute.String("filter", f.String()),
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	)

	resp, err := postParsed[listResponse](ctx, c, c.cfg.ListEndpoint, f.RequestBody(page, pageSize, ""))
	if errors.Is(err, errNotFound) {
		slog.WarnContext(ctx, "no logs found", "filter", f.String(), "page", page)
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var ids []int64
	for _, e := range resp.Encounters {
		if _, ok := known[e.ID]; !ok {
			ids = append(ids, e.ID)
		}
	}
	span.SetAttributes(attribute.Int("new_ids", len(ids)))
	return ids, nil
}

// FetchEncounters fetches the full records for the given ids. When none
// of the ids resolve the service answers 404; that degrades to an empty
// result.
func (c *Client) FetchEncounters(ctx context.Context, ids []int64) ([]encounter.Raw, error) {
	ctx, span := tracer.Start(ctx, "FetchEncounters")
	defer span.End()
	span.SetAttributes(attribute.Int("ids", len(ids)))

	raws, err := postParsed[[]encounter.Raw](ctx, c, c.cfg.BulkEndpoint, ids)
	if errors.Is(err, errNotFound) {
		slog.WarnContext(ctx, "logs not found", "ids", ids)
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return raws, nil
}

// postParsed runs one logical call under the full retry contract:
// throttled POST with a bounded transport retry, unbounded 429 backoff,
// a bounded 404 retry and a bounded reparse retry.
func postParsed[T any](ctx context.Context, c *Client, endpoint string, body any) (T, error) {
	var out T

	res, err := c.post(ctx, endpoint, body)
	if err != nil {
		return out, err
	}

	if res.StatusCode() == http.StatusNotFound {
		slog.WarnContext(
			ctx, "not found, retrying after cooldown",
			"endpoint", endpoint,
			"cooldown", c.retry.Cooldown,
		)
		if serr := c.sleep(ctx, c.retry.Cooldown); serr != nil {
			return out, serr
		}
		res, err = c.post(ctx, endpoint, body)
		if err != nil {
			return out, err
		}
		if res.StatusCode() == http.StatusNotFound {
			return out, errNotFound
		}
	}

	if err := json.Unmarshal(res.Body(), &out); err != nil {
		slog.WarnContext(
			ctx, "malformed response, retrying after cooldown",
			"endpoint", endpoint,
			"cooldown", c.retry.Cooldown,
			"err", err,
		)
		if serr := c.sleep(ctx, c.retry.Cooldown); serr != nil {
			return out, serr
		}
		res, err = c.post(ctx, endpoint, body)
		if err != nil {
			return out, err
		}
		if err := json.Unmarshal(res.Body(), &out); err != nil {
			return out, fmt.Errorf("parse response from %s: %w", endpoint, err)
		}
	}
	return out, nil
}

// post issues the request, absorbing rate limiting. Each 429 answer
// waits 2^attempt times the backoff base and reports progress through
// the observer; the loop only ends on a non-429 response (or the
// optional attempt cap).
func (c *Client) post(ctx context.Context, endpoint string, body any) (*resty.Response, error) {
	res, err := c.postOnce(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}

	attempt := 0
	total := time.Duration(0)
	for res.StatusCode() == http.StatusTooManyRequests {
		if c.retry.MaxAttempts > 0 && attempt >= c.retry.MaxAttempts {
			return nil, fmt.Errorf("%w: gave up after %d attempts (%s waited)", ErrRateLimited, attempt, total)
		}
		wait := c.retry.backoffWait(attempt)
		total += wait
		c.observer(attempt, wait, total)
		if serr := c.sleep(ctx, wait); serr != nil {
			return nil, serr
		}
		attempt++

		res, err = c.postOnce(ctx, endpoint, body)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// postOnce performs a single POST with one bounded retry after the fixed
// cooldown on connection-level failure.
func (c *Client) postOnce(ctx context.Context, endpoint string, body any) (*resty.Response, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetBody(body).
		Post(endpoint)
	if err == nil {
		return res, nil
	}

	slog.WarnContext(
		ctx, "transport failure, retrying after cooldown",
		"endpoint", endpoint,
		"cooldown", c.retry.Cooldown,
		"err", err,
	)
	if serr := c.sleep(ctx, c.retry.Cooldown); serr != nil {
		return nil, serr
	}

	res, err = c.http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetBody(body).
		Post(endpoint)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", endpoint, err)
	}
	return res, nil
}
