package worker

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/GTDGit/catalog_api/internal/cache"
)

type memorySink struct {
    mu      sync.Mutex
    written []cache.ListingEvent
    calls   int
    fail    bool
}

func (s *memorySink) Write(_ context.Context, events []cache.ListingEvent) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.calls++
    if s.fail {
        return errors.New("sink down")
    }
    s.written = append(s.written, events...)
    return nil
}

func (s *memorySink) count() int {
    s.mu.Lock()
    defer s.mu.Unlock()
    return len(s.written)
}

func TestEventWorker_FlushesOnTick(t *testing.T) {
    events := cache.NewEventLog(16)
    sink := &memorySink{}
    w := NewEventWorker(events, sink, 10*time.Millisecond)

    ctx, cancel := context.WithCancel(context.Background())
    done := make(chan struct{})
    go func() {
        defer close(done)
        w.Start(ctx)
    }()

    for range 3 {
        if err := events.Append(ctx, "view", "u1", "l1"); err != nil {
            t.Fatal(err)
        }
    }

    deadline := time.Now().Add(2 * time.Second)
    for sink.count() < 3 {
        if time.Now().After(deadline) {
            t.Fatalf("worker wrote %d events, want 3", sink.count())
        }
        time.Sleep(5 * time.Millisecond)
    }
    cancel()
    <-done
}

func TestEventWorker_DrainsOnStop(t *testing.T) {
    events := cache.NewEventLog(16)
    sink := &memorySink{}
    w := NewEventWorker(events, sink, time.Hour)

    ctx, cancel := context.WithCancel(context.Background())
    for range 5 {
        if err := events.Append(ctx, "view", "u1", "l1"); err != nil {
            t.Fatal(err)
        }
    }
    cancel()
    w.Start(ctx)

    if sink.count() != 5 {
        t.Fatalf("drained %d events, want 5", sink.count())
    }
}

func TestEventWorker_FullBatchFlushesImmediately(t *testing.T) {
    events := cache.NewEventLog(8)
    sink := &memorySink{}
    w := NewEventWorker(events, sink, time.Hour)
    w.batchSize = 2

    ctx, cancel := context.WithCancel(context.Background())
    done := make(chan struct{})
    go func() {
        defer close(done)
        w.Start(ctx)
    }()
    for range 2 {
        if err := events.Append(ctx, "view", "u1", "l1"); err != nil {
            t.Fatal(err)
        }
    }

    deadline := time.Now().Add(2 * time.Second)
    for sink.count() < 2 {
        if time.Now().After(deadline) {
            t.Fatal("full batch was not flushed before the tick")
        }
        time.Sleep(5 * time.Millisecond)
    }
    cancel()
    <-done
}

func TestEventWorker_SinkErrorDropsBatch(t *testing.T) {
    events := cache.NewEventLog(4)
    sink := &memorySink{fail: true}
    w := NewEventWorker(events, sink, time.Hour)

    ctx, cancel := context.WithCancel(context.Background())
    if err := events.Append(ctx, "view", "u1", "l1"); err != nil {
        t.Fatal(err)
    }
    cancel()
    w.Start(ctx)

    if sink.calls != 1 || sink.count() != 0 {
        t.Fatalf("calls = %d, written = %d", sink.calls, sink.count())
    }
}
