package leetcode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/willow-lab/leetboard/pkg/domain/types"
)

// DefaultBaseURL is the public alfa-leetcode-api endpoint
const DefaultBaseURL = "https://alfa-leetcode-api.onrender.com"

const defaultCacheTTL = 30 * time.Minute

type client struct {
	baseURL    string
	httpClient *http.Client
	cache      *responseCache
}

type Option func(*options)

type options struct {
	httpClient *http.Client
	cacheTTL   time.Duration
	now        func() time.Time
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithCacheTTL overrides the response cache lifetime
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.cacheTTL = ttl
	}
}

// WithClock injects the clock used for cache expiry
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates a statistics provider client. The base URL is passed in
// explicitly; the client never reads ambient configuration.
func New(baseURL string, opts ...Option) Service {
	o := &options{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cacheTTL:   defaultCacheTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &client{
		baseURL:    baseURL,
		httpClient: o.httpClient,
		cache:      newResponseCache(o.cacheTTL, o.now),
	}
}

// FetchStats aggregates profile, solved count and badge count into one
// snapshot. A failure on any of the three calls fails the whole fetch, so a
// stored row is never assembled from partial data.
func (c *client) FetchStats(ctx context.Context, username types.Username) (*Stats, error) {
	if err := username.Validate(); err != nil {
		return nil, err
	}

	var profile profileResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/%s", username), "profile", username, &profile); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch profile", goerr.V("username", username))
	}

	var solved solvedResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/%s/solved", username), "solved", username, &solved); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch solved count", goerr.V("username", username))
	}

	var badges badgesResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/%s/badges", username), "badges", username, &badges); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch badges", goerr.V("username", username))
	}

	return &Stats{
		Username:    username,
		NameHint:    profile.Name,
		SolvedCount: solved.SolvedProblem,
		BadgeCount:  badges.BadgesCount,
		AvatarURL:   profile.Avatar,
	}, nil
}

// FetchContest retrieves contest standing for a user
func (c *client) FetchContest(ctx context.Context, username types.Username) (*ContestInfo, error) {
	if err := username.Validate(); err != nil {
		return nil, err
	}

	var contest contestResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/%s/contest", username), "contest", username, &contest); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch contest details", goerr.V("username", username))
	}

	return &ContestInfo{
		Rating:        contest.ContestRating,
		AttendedCount: contest.ContestAttend,
		GlobalRanking: contest.ContestGlobalRanking,
		TopPercentage: contest.ContestTopPercentage,
	}, nil
}

func (c *client) Invalidate() {
	c.cache.invalidate()
}

func (c *client) CacheStats() CacheInfo {
	return c.cache.info()
}

// getJSON performs a cached GET against the provider and decodes the body
// into target. Raw body bytes are cached per (kind, username) so repeated
// calls within the TTL do not hit the upstream.
func (c *client) getJSON(ctx context.Context, path, kind string, username types.Username, target any) error {
	cacheKey := kind + ":" + username.Fold()
	if raw, ok := c.cache.get(cacheKey); ok {
		return json.Unmarshal(raw.([]byte), target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to build request", goerr.V("path", path))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "request failed", goerr.V("path", path))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return goerr.Wrap(err, "failed to read response body", goerr.V("path", path))
	}

	if err := classifyStatus(resp.StatusCode, string(body)); err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		return goerr.Wrap(err, "failed to decode response", goerr.V("path", path))
	}

	c.cache.set(cacheKey, body)
	return nil
}

// classifyStatus maps an upstream response to the error taxonomy
func classifyStatus(status int, body string) error {
	ok := status >= 200 && status < 300
	switch {
	case status == http.StatusTooManyRequests || (!ok && isRateLimitBody(body)):
		return goerr.Wrap(ErrRateLimited, "provider throttled the request",
			goerr.V("status", status))
	case status == http.StatusNotFound:
		return goerr.Wrap(ErrUserNotFound, "provider does not know this user",
			goerr.V("status", status))
	case !ok:
		return goerr.New("unexpected response from provider",
			goerr.V("status", status), goerr.V("body", truncate(body, 256)))
	default:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
