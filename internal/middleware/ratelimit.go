package middleware

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/opmux/opmux/internal/config"
	"github.com/opmux/opmux/internal/observability"
	"github.com/opmux/opmux/internal/util"
)

// RateLimiter applies a global token-bucket limit to all requests.
type RateLimiter struct {
	limiter *rate.Limiter
	rps     int
	logger  observability.Logger
}

// RateLimiterOption is a functional option for configuring the rate
// limiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterLogger sets the logger for the rate limiter.
func WithRateLimiterLogger(logger observability.Logger) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.logger = logger
	}
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(rps, burst int, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		rps:     rps,
		logger:  observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(rl)
	}

	return rl
}

// Allow checks if a request is admitted. It returns a
// *util.RateLimitError when the bucket rejects the request.
func (rl *RateLimiter) Allow() error {
	if rl.limiter.Allow() {
		return nil
	}
	return util.NewRateLimitError(rl.rps, time.Second)
}

// RateLimit returns a middleware that applies rate limiting.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := rl.Allow(); err != nil {
				rl.logger.Warn("rate limit exceeded",
					observability.String("path", r.URL.Path),
					observability.String("remote_addr", r.RemoteAddr),
					observability.Error(err),
				)

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", retryAfterSeconds(err))
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = io.WriteString(w, `{"error":"rate limit exceeded"}`)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// retryAfterSeconds renders the Retry-After header value from a rate
// limit error, rounding sub-second hints up to one second.
func retryAfterSeconds(err error) string {
	var rlErr *util.RateLimitError
	if errors.As(err, &rlErr) && rlErr.RetryAfter > 0 {
		secs := int(rlErr.RetryAfter.Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		return strconv.Itoa(secs)
	}
	return "1"
}

// RateLimitFromConfig creates rate limit middleware from the service
// configuration. With rate limiting disabled it returns a pass-through
// middleware.
func RateLimitFromConfig(
	cfg config.RateLimitConfig,
	logger observability.Logger,
) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	rl := NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst, WithRateLimiterLogger(logger))
	return RateLimit(rl)
}
