package config

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/willow-lab/leetboard/pkg/service/leetcode"
)

// LeetCode holds CLI flags for the statistics provider client
type LeetCode struct {
	baseURL  string
	cacheTTL time.Duration
	timeout  time.Duration
}

func (x *LeetCode) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "leetcode-base-url",
			Usage:       "Base URL of the statistics API",
			Category:    "LeetCode",
			Value:       leetcode.DefaultBaseURL,
			Sources:     cli.EnvVars("LEETBOARD_LEETCODE_BASE_URL"),
			Destination: &x.baseURL,
		},
		&cli.DurationFlag{
			Name:        "leetcode-cache-ttl",
			Usage:       "TTL of the in-session statistics response cache",
			Category:    "LeetCode",
			Value:       30 * time.Minute,
			Sources:     cli.EnvVars("LEETBOARD_LEETCODE_CACHE_TTL"),
			Destination: &x.cacheTTL,
		},
		&cli.DurationFlag{
			Name:        "leetcode-timeout",
			Usage:       "HTTP timeout for statistics API requests",
			Category:    "LeetCode",
			Value:       30 * time.Second,
			Sources:     cli.EnvVars("LEETBOARD_LEETCODE_TIMEOUT"),
			Destination: &x.timeout,
		},
	}
}

func (x LeetCode) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("base-url", x.baseURL),
		slog.Duration("cache-ttl", x.cacheTTL),
		slog.Duration("timeout", x.timeout),
	)
}

// Configure builds the statistics provider client
func (x *LeetCode) Configure() leetcode.Service {
	return leetcode.New(x.baseURL,
		leetcode.WithHTTPClient(&http.Client{Timeout: x.timeout}),
		leetcode.WithCacheTTL(x.cacheTTL),
	)
}
