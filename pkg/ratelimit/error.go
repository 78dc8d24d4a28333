package ratelimit

import (
	"net/http"
	"time"

	"github.com/pressroom-io/pressroom/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("RATELIMIT")

var (
	CodeLimitExceeded = ErrRegistry.Register("LIMIT_EXCEEDED", errx.TypeRateLimit, http.StatusTooManyRequests, "Too many requests")
)

// ErrLimitExceeded builds the 429 carrying a Retry-After hint.
func ErrLimitExceeded(retryAfter time.Duration) *errx.Error {
	return ErrRegistry.New(CodeLimitExceeded).WithRetryAfter(retryAfter)
}
