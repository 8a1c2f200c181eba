package leetcode

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Sentinel errors for the statistics provider. The orchestrator reacts
// differently to each: ErrRateLimited halts a bulk cycle, ErrUserNotFound
// and transient failures only skip the one user.
var (
	ErrUserNotFound = goerr.New("user not found on statistics provider")
	ErrRateLimited  = goerr.New("statistics provider rate limit exceeded")
)

// isRateLimitBody detects the provider's textual throttling marker. The
// upstream sometimes reports throttling in the error body instead of a
// clean 429 status.
func isRateLimitBody(body string) bool {
	return strings.Contains(body, "Too many request") || strings.Contains(body, "429")
}
