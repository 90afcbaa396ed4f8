package middleware

import (
    "context"
    "sync"
    "time"
)

// InvalidAuthRateLimiter counts rejected bearer tokens per IP. Valid
// requests are never counted.
type InvalidAuthRateLimiter struct {
    mu       sync.Mutex
    attempts map[string]*attemptInfo
    limit    int
    window   time.Duration
}

type attemptInfo struct {
    count   int
    firstAt time.Time
}

// NewInvalidAuthRateLimiter allows limit invalid attempts per IP within
// window. The cleanup goroutine exits when ctx is canceled.
func NewInvalidAuthRateLimiter(ctx context.Context, limit int, window time.Duration) *InvalidAuthRateLimiter {
    rl := &InvalidAuthRateLimiter{
        attempts: make(map[string]*attemptInfo),
        limit:    limit,
        window:   window,
    }
    go rl.cleanup(ctx)
    return rl
}

// Allow records an invalid attempt from ip and reports whether it is still
// under the limit.
func (r *InvalidAuthRateLimiter) Allow(ip string) bool {
    r.mu.Lock()
    defer r.mu.Unlock()

    now := time.Now()
    info, exists := r.attempts[ip]
    if !exists {
        r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
        return true
    }

    // Reset if window expired
    if now.Sub(info.firstAt) > r.window {
        r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
        return true
    }

    if info.count >= r.limit {
        return false
    }
    info.count++
    return true
}

func (r *InvalidAuthRateLimiter) cleanup(ctx context.Context) {
    ticker := time.NewTicker(5 * r.window)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
        }
        r.mu.Lock()
        now := time.Now()
        for ip, info := range r.attempts {
            if now.Sub(info.firstAt) > r.window {
                delete(r.attempts, ip)
            }
        }
        r.mu.Unlock()
    }
}
