package worker

import (
    "context"
    "time"

    "github.com/rs/zerolog/log"

    "github.com/GTDGit/catalog_api/internal/cache"
)

const defaultEventBatch = 100

// EventWorker drains the listing event log into a sink, flushing on every
// tick or whenever a full batch has accumulated.
type EventWorker struct {
    events    *cache.EventLog
    sink      cache.EventSink
    interval  time.Duration
    batchSize int
}

// NewEventWorker constructs an EventWorker.
func NewEventWorker(events *cache.EventLog, sink cache.EventSink, interval time.Duration) *EventWorker {
    if interval <= 0 {
        interval = 2 * time.Second
    }
    return &EventWorker{
        events:    events,
        sink:      sink,
        interval:  interval,
        batchSize: defaultEventBatch,
    }
}

// Start runs the drain loop until ctx is canceled. Buffered events are
// flushed before it returns.
func (w *EventWorker) Start(ctx context.Context) {
    log.Info().Dur("interval", w.interval).Msg("Starting event worker")

    ticker := time.NewTicker(w.interval)
    defer ticker.Stop()

    batch := make([]cache.ListingEvent, 0, w.batchSize)
    for {
        select {
        case e := <-w.events.Events():
            batch = append(batch, e)
            if len(batch) >= w.batchSize {
                batch = w.flush(ctx, batch)
            }
        case <-ticker.C:
            batch = w.flush(ctx, batch)
        case <-ctx.Done():
            w.drain(batch)
            log.Info().Msg("Event worker stopped")
            return
        }
    }
}

// drain empties the buffer without waiting for new events and writes it with
// a fresh, bounded context.
func (w *EventWorker) drain(batch []cache.ListingEvent) {
    for {
        select {
        case e := <-w.events.Events():
            batch = append(batch, e)
            continue
        default:
        }
        break
    }
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    w.flush(ctx, batch)
}

func (w *EventWorker) flush(ctx context.Context, batch []cache.ListingEvent) []cache.ListingEvent {
    if len(batch) == 0 {
        return batch
    }
    if err := w.sink.Write(ctx, batch); err != nil {
        log.Error().Err(err).Int("count", len(batch)).Msg("Failed to write listing events")
    } else {
        log.Debug().Int("count", len(batch)).Msg("Listing events written")
    }
    return batch[:0]
}
