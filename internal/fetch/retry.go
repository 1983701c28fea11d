package fetch

import (
	"crypto/rand"
	"math"
	"math/big"
	"time"
)

// Transient upstream states worth another attempt; everything else
// non-2xx is terminal.
var retryableStatus = map[int]struct{}{
	429: {},
	502: {},
	503: {},
	504: {},
}

// RetryableStatus reports whether the HTTP status warrants a retry.
func RetryableStatus(code int) bool {
	_, ok := retryableStatus[code]
	return ok
}

// RetryPolicy implements jittered exponential backoff for the direct
// fetch path.
type RetryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	jitterMax   time.Duration
}

// NewRetryPolicy builds a policy; zero values fall back to defaults.
func NewRetryPolicy(maxAttempts int, baseDelay time.Duration) *RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if baseDelay <= 0 {
		baseDelay = 800 * time.Millisecond
	}
	return &RetryPolicy{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    15 * time.Second,
		jitterMax:   200 * time.Millisecond,
	}
}

// MaxAttempts returns the attempt budget.
func (p *RetryPolicy) MaxAttempts() int {
	return p.maxAttempts
}

// Backoff returns the wait before attempt n (zero-based): base × 2^n,
// capped, plus a small random jitter.
func (p *RetryPolicy) Backoff(attempt int) time.Duration {
	delay := float64(p.baseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(p.maxDelay) {
		delay = float64(p.maxDelay)
	}
	return time.Duration(delay) + randomJitter(p.jitterMax)
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}
