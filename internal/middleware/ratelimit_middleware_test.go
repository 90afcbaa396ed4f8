package middleware

import (
    "context"
    "testing"
    "time"
)

func TestInvalidAuthRateLimiter(t *testing.T) {
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    rl := NewInvalidAuthRateLimiter(ctx, 3, 50*time.Millisecond)

    for i := range 3 {
        if !rl.Allow("10.0.0.1") {
            t.Fatalf("attempt %d rejected", i+1)
        }
    }
    if rl.Allow("10.0.0.1") {
        t.Fatal("fourth attempt allowed")
    }
    if !rl.Allow("10.0.0.2") {
        t.Fatal("other ip limited")
    }

    time.Sleep(60 * time.Millisecond)
    if !rl.Allow("10.0.0.1") {
        t.Fatal("window did not reset")
    }
}
