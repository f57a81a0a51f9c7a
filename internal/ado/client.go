// Package ado is the REST client for Azure DevOps Server / TFS. It owns
// authentication, request pacing, retry policy, and pagination; callers get
// typed payloads or errors from the taxonomy in internal/errs.
package ado

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golovatskygroup/mcp-ado/internal/config"
	"github.com/golovatskygroup/mcp-ado/internal/errs"
	"github.com/golovatskygroup/mcp-ado/internal/govern"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 5 * time.Second

	// continuationHeader carries the opaque cursor for paged list endpoints.
	continuationHeader = "X-Ms-Continuationtoken"

	// maxPages caps the continuation loop independently of caller limits.
	maxPages = 20
)

// Client issues authenticated, versioned, rate-governed requests against a
// single Azure DevOps Server collection. Safe for concurrent use.
type Client struct {
	collectionURL string
	apiVersion    string
	authHeader    string

	http *http.Client
	gov  *govern.Governor
	logf func(format string, args ...any)

	// sleep is swapped in tests to avoid real backoff waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests, transports).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogf sets the diagnostic log sink.
func WithLogf(logf func(string, ...any)) Option {
	return func(c *Client) { c.logf = logf }
}

// New builds a Client from the immutable server context. The governor gates
// every outbound request.
func New(cfg config.Config, gov *govern.Governor, opts ...Option) *Client {
	c := &Client{
		collectionURL: cfg.CollectionURL(),
		apiVersion:    cfg.APIVersion,
		authHeader:    "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+cfg.Token)),
		http:          &http.Client{Timeout: defaultTimeout},
		gov:           gov,
		logf:          func(string, ...any) {},
		sleep:         sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// do issues one logical request with retries. Transient failures (transport
// errors, 429, 502/503/504) are retried with exponential backoff and jitter;
// 401/403 and other 4xx are surfaced immediately. The returned header is from
// the final response.
func (c *Client) do(ctx context.Context, method, apiPath string, params url.Values, body []byte, contentType string) ([]byte, http.Header, error) {
	if params == nil {
		params = url.Values{}
	}
	if params.Get("api-version") == "" {
		params.Set("api-version", c.apiVersion)
	}
	fullURL := c.collectionURL + "/" + strings.TrimLeft(apiPath, "/") + "?" + params.Encode()

	backoff := initialBackoff
	for attempt := 0; ; attempt++ {
		respBody, header, wait, err := c.attempt(ctx, method, fullURL, body, contentType, &backoff)
		if err == nil {
			return respBody, header, nil
		}
		lastErr := errs.From(err)
		// wait > 0 marks the failure retryable. Once the budget is spent
		// the error is returned without a pointless final sleep.
		if wait <= 0 || attempt >= maxRetries {
			return nil, header, lastErr
		}
		c.logf("retrying %s %s after %s: %v", method, apiPath, wait, lastErr)
		if serr := c.sleep(ctx, wait); serr != nil {
			return nil, header, errs.Transport(serr)
		}
	}
}

// attempt runs a single governed HTTP round trip. The governor permit is
// released on every path before returning, so it is never held while the
// caller sleeps between attempts. For retryable failures the returned wait
// is the sleep to take before the next attempt; zero means do not retry.
func (c *Client) attempt(ctx context.Context, method, fullURL string, body []byte, contentType string, backoff *time.Duration) (respBody []byte, header http.Header, wait time.Duration, err error) {
	release, err := c.gov.Acquire(ctx)
	if err != nil {
		return nil, nil, 0, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		release()
		return nil, nil, 0, errs.Transport(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.authHeader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		release()
		if ctx.Err() != nil {
			// Cancellation is not transient; abandon without retrying.
			return nil, nil, 0, errs.Transport(ctx.Err())
		}
		return nil, nil, nextWait(backoff, 0), errs.Transport(err)
	}
	respBody, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	release()
	if readErr != nil {
		return nil, resp.Header, nextWait(backoff, 0), errs.Transport(readErr)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return respBody, resp.Header, 0, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, resp.Header, 0, errs.Auth(resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, resp.Header, 0, errs.NotFound("%s", upstreamMessage(respBody))
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, resp.Header, nextWait(backoff, retryAfter), errs.Throttled("upstream returned 429")
	case resp.StatusCode == http.StatusBadGateway ||
		resp.StatusCode == http.StatusServiceUnavailable ||
		resp.StatusCode == http.StatusGatewayTimeout:
		return nil, resp.Header, nextWait(backoff, 0), errs.Upstream(resp.StatusCode, upstreamMessage(respBody))
	default:
		return nil, resp.Header, 0, errs.Upstream(resp.StatusCode, upstreamMessage(respBody))
	}
}

// nextWait picks the sleep before the next attempt: the Retry-After hint
// when present, otherwise the current jittered backoff. Either way the wait
// never exceeds maxBackoff, keeping a hostile or misconfigured upstream
// from parking callers for hours. The nominal backoff advances each call.
func nextWait(backoff *time.Duration, retryAfter time.Duration) time.Duration {
	wait := retryAfter
	if wait <= 0 {
		// Jitter within [0.5, 1.5) of the nominal backoff.
		wait = *backoff/2 + time.Duration(rand.Int63n(int64(*backoff)))
	}
	if wait > maxBackoff {
		wait = maxBackoff
	}
	*backoff *= 2
	if *backoff > maxBackoff {
		*backoff = maxBackoff
	}
	return wait
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return 0
}

// upstreamMessage extracts the human-readable message from a TFS error body,
// falling back to the raw body.
func upstreamMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return strings.TrimSpace(string(body))
}

// getJSON issues a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, apiPath string, params url.Values, out any) error {
	body, _, err := c.do(ctx, http.MethodGet, apiPath, params, nil, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errs.Upstream(0, fmt.Sprintf("malformed upstream payload for %s: %v", apiPath, err))
	}
	return nil
}

// envelope is the standard TFS list wrapper.
type envelope[T any] struct {
	Count int `json:"count"`
	Value []T `json:"value"`
}

// getPaged follows the continuation-token loop for list endpoints until the
// upstream signals completion or limit items are collected, whichever comes
// first. Partial pages are never dropped. The page loop itself is bounded so
// a misbehaving upstream cannot trigger unbounded fetches.
func getPaged[T any](ctx context.Context, c *Client, apiPath string, params url.Values, limit int) ([]T, error) {
	if params == nil {
		params = url.Values{}
	}
	out := make([]T, 0, limit)
	for page := 0; page < maxPages; page++ {
		remaining := limit - len(out)
		if remaining <= 0 {
			break
		}
		params.Set("$top", strconv.Itoa(remaining))

		body, header, err := c.do(ctx, http.MethodGet, apiPath, params, nil, "")
		if err != nil {
			return nil, err
		}
		var env envelope[T]
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, errs.Upstream(0, fmt.Sprintf("malformed upstream payload for %s: %v", apiPath, err))
		}
		out = append(out, env.Value...)

		token := header.Get(continuationHeader)
		if token == "" || len(env.Value) == 0 {
			break
		}
		params.Set("continuationToken", token)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
