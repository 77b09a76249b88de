// internal/adapters/geocode/client.go
package geocode

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"swipess_api/internal/adapters/observability"
	"swipess_api/internal/domain"
)

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 10 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

func (c *Client) Search(ctx context.Context, query string) (domain.GeoResult, error) {
	u := fmt.Sprintf("%s/json?address=%s&key=%s", c.base, url.QueryEscape(query), url.QueryEscape(c.key))
	return c.resolve(ctx, "search", u)
}

func (c *Client) Reverse(ctx context.Context, lat, lng float64) (domain.GeoResult, error) {
	ll := fmt.Sprintf("%.7f,%.7f", lat, lng)
	u := fmt.Sprintf("%s/json?latlng=%s&key=%s", c.base, url.QueryEscape(ll), url.QueryEscape(c.key))
	return c.resolve(ctx, "reverse", u)
}

// ---- Internals ----

var (
	ErrNoResults     = errors.New("geocode: no results")
	ErrQuotaExceeded = errors.New("geocode: quota exceeded")
	ErrRequestDenied = errors.New("geocode: request denied")
)

// Wire format of the geocoding API. Failures arrive as HTTP 200 with a
// non-OK status field, so the transport layer alone can't classify them.
type response struct {
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message"`
	Results      []result `json:"results"`
}

type result struct {
	FormattedAddress  string      `json:"formatted_address"`
	Geometry          geometry    `json:"geometry"`
	AddressComponents []component `json:"address_components"`
}

type geometry struct {
	Location latlng `json:"location"`
}

type latlng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type component struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

func (c *Client) resolve(ctx context.Context, endpoint, url string) (domain.GeoResult, error) {
	start := time.Now()
	var out response
	status, err := c.get(ctx, url, &out)
	observability.ObserveExternal("geocode", endpoint, status, time.Since(start))
	if err != nil {
		return domain.GeoResult{}, err
	}

	switch out.Status {
	case "OK":
		if len(out.Results) == 0 {
			return domain.GeoResult{}, ErrNoResults
		}
		return extract(out.Results[0]), nil
	case "ZERO_RESULTS":
		return domain.GeoResult{}, ErrNoResults
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return domain.GeoResult{}, ErrQuotaExceeded
	case "REQUEST_DENIED":
		return domain.GeoResult{}, ErrRequestDenied
	default:
		msg := out.ErrorMessage
		if msg == "" {
			msg = out.Status
		}
		return domain.GeoResult{}, fmt.Errorf("geocode: %s", msg)
	}
}

// extract builds a GeoResult from the first result, pulling the optional
// locality fields out of the address components. First match wins.
func extract(r result) domain.GeoResult {
	g := domain.GeoResult{
		Lat:     r.Geometry.Location.Lat,
		Lng:     r.Geometry.Location.Lng,
		Address: r.FormattedAddress,
	}
	for _, comp := range r.AddressComponents {
		name := comp.LongName
		switch {
		case hasType(comp, "locality", "postal_town"):
			if g.City == nil {
				g.City = &name
			}
		case hasType(comp, "neighborhood", "sublocality", "sublocality_level_1"):
			if g.Neighborhood == nil {
				g.Neighborhood = &name
			}
		case hasType(comp, "administrative_area_level_1"):
			if g.Region == nil {
				g.Region = &name
			}
		case hasType(comp, "country"):
			if g.Country == nil {
				g.Country = &name
			}
		}
	}
	return g
}

func hasType(c component, types ...string) bool {
	for _, want := range types {
		for _, t := range c.Types {
			if t == want {
				return true
			}
		}
	}
	return false
}

// get performs a GET with client-side rate limiting, retries, and JSON decode
// into out. Retries on 429 and transient 5xx, honoring Retry-After when
// provided. Returns the last HTTP status for metrics.
func (c *Client) get(ctx context.Context, url string, out *response) (int, error) {
	// client-side rate limiting
	if err := c.rl.Wait(ctx); err != nil {
		return 0, err
	}

	var lastErr error
	lastStatus := 0
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return lastStatus, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "swipess-api/1.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			// network error or context canceled
			if ctx.Err() != nil {
				return lastStatus, ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return lastStatus, ctx.Err()
			}
			return lastStatus, lastErr
		}

		lastStatus = resp.StatusCode
		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return lastStatus, err
			}
			// UNKNOWN_ERROR is the one body status the API documents as
			// transient; retry it like a 5xx.
			if out.Status == "UNKNOWN_ERROR" && i < 3 && sleepCtx(ctx, backoff(i)) {
				*out = response{}
				continue
			}
			return lastStatus, nil

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return lastStatus, ErrRequestDenied

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return lastStatus, ctx.Err()
			}
			if resp.StatusCode == http.StatusTooManyRequests {
				return lastStatus, ErrQuotaExceeded
			}
			return lastStatus, lastErr

		default:
			// read a small error body for diagnostics
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return lastStatus, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastStatus, lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	// seconds form
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	// HTTP-date form
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
// i = retry attempt (0,1,2,...). Base doubles each attempt (200ms, 400ms, 800ms...),
// with up to +50% random jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0                  // 0..1
	j := time.Duration(0.5 * f * float64(base)) // up to +50%
	return base + j
}
