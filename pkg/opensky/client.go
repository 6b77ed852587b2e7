package opensky

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the OpenSky REST API base URL
	DefaultBaseURL = "https://opensky-network.org/api"

	// DefaultTimeout for API requests
	DefaultTimeout = 15 * time.Second
)

// Config contains configuration for the OpenSky client.
type Config struct {
	// BaseURL defaults to DefaultBaseURL
	BaseURL string

	// Timeout bounds each HTTP request (default: DefaultTimeout)
	Timeout time.Duration

	// RequestsPerMinute limits the call rate; 0 disables client-side limiting
	RequestsPerMinute float64

	// ClientID and ClientSecret enable OAuth2 client-credentials auth
	ClientID     string
	ClientSecret string
	TokenURL     string

	// Username and Password enable legacy basic auth when no client ID is set
	Username string
	Password string
}

// Client fetches state vectors from the OpenSky Network.
// It performs exactly one HTTP request per call; retrying is up to the caller.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	rateLimiter  *rate.Limiter
	tokens       oauth2.TokenSource
	username     string
	password     string
}

// NewClient creates a new OpenSky client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(cfg.RequestsPerMinute / 60.0)
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: rate.NewLimiter(limit, 1),
	}

	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		c.tokens = newTokenSource(cfg.ClientID, cfg.ClientSecret, cfg.TokenURL, cfg.Timeout)
	} else {
		c.username = cfg.Username
		c.password = cfg.Password
	}

	return c
}

// FetchAll returns all state vectors, optionally restricted to a bounding box.
// A zero time requests the most recent snapshot.
func (c *Client) FetchAll(ctx context.Context, bbox *BoundingBox, at int64) (*Response, error) {
	q := url.Values{}
	if bbox != nil {
		q.Set("lamin", formatCoord(bbox.LatMin))
		q.Set("lomin", formatCoord(bbox.LonMin))
		q.Set("lamax", formatCoord(bbox.LatMax))
		q.Set("lomax", formatCoord(bbox.LonMax))
	}
	if at > 0 {
		q.Set("time", strconv.FormatInt(at, 10))
	}
	return c.getStates(ctx, "fetch all", q)
}

// FetchByAircraft returns the state vector for one transponder address.
func (c *Client) FetchByAircraft(ctx context.Context, icao24 string, at int64) (*Response, error) {
	q := url.Values{}
	q.Set("icao24", strings.ToLower(strings.TrimSpace(icao24)))
	if at > 0 {
		q.Set("time", strconv.FormatInt(at, 10))
	}
	return c.getStates(ctx, "fetch by aircraft", q)
}

func (c *Client) getStates(ctx context.Context, op string, q url.Values) (*Response, error) {
	endpoint := c.baseURL + "/states/all"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	fail := func(kind ErrorKind, status int, err error) error {
		return &FetchError{Op: op, URL: endpoint, Kind: kind, StatusCode: status, Err: err}
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fail(KindNetwork, 0, fmt.Errorf("rate limiter: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fail(KindNetwork, 0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	// prefer the OAuth2 bearer token, fall back to basic auth
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, fail(KindAuth, 0, fmt.Errorf("obtain token: %w", err))
		}
		token.SetAuthHeader(req)
	} else if c.username != "" && c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fail(KindNetwork, 0, fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fail(KindStatus, resp.StatusCode, &RateLimitError{
			RetryAfter: parseRetryAfter(resp.Header),
			Message:    "Rate limit exceeded",
			Headers:    extractRateLimitHeaders(resp.Header),
		})
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fail(KindStatus, resp.StatusCode, fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fail(KindDecode, resp.StatusCode, fmt.Errorf("parse response: %w", err))
	}

	return &out, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
