package cache

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_api/internal/utils"
)

// ErrEventLogFull is returned by Append when the buffer has no room. The
// event is dropped.
var ErrEventLogFull = errors.New("listing event log is full")

// ListingEvent is one entry of the listing event log.
type ListingEvent struct {
	Type      string `json:"type"`
	UserID    string `json:"userId"`
	ListingID string `json:"listingId"`
	At        int64  `json:"at"`
}

// EventLog buffers listing events in memory until a worker hands them to a
// sink. Append never blocks.
type EventLog struct {
	events chan ListingEvent
}

// NewEventLog creates an EventLog holding at most size pending events.
func NewEventLog(size int) *EventLog {
	if size <= 0 {
		size = 1
	}
	return &EventLog{events: make(chan ListingEvent, size)}
}

// Append queues an event, or returns ErrEventLogFull when the buffer is full.
func (l *EventLog) Append(ctx context.Context, eventType, userID, listingID string) error {
	e := ListingEvent{Type: eventType, UserID: userID, ListingID: listingID, At: utils.NowMillis()}
	select {
	case l.events <- e:
		return nil
	default:
		return ErrEventLogFull
	}
}

// Events returns the channel the worker drains.
func (l *EventLog) Events() <-chan ListingEvent {
	return l.events
}

// EventSink persists batches of listing events.
type EventSink interface {
	Write(ctx context.Context, events []ListingEvent) error
}

// RedisStreamSink writes events to a Redis stream with XADD.
type RedisStreamSink struct {
	redis  *RedisClient
	stream string
}

// NewRedisStreamSink creates a sink appending to stream.
func NewRedisStreamSink(redis *RedisClient, stream string) *RedisStreamSink {
	return &RedisStreamSink{redis: redis, stream: stream}
}

// Write appends the batch to the stream.
func (s *RedisStreamSink) Write(ctx context.Context, events []ListingEvent) error {
	entries := make([]map[string]any, 0, len(events))
	for _, e := range events {
		entries = append(entries, map[string]any{
			"type":       e.Type,
			"user_id":    e.UserID,
			"listing_id": e.ListingID,
			"at":         e.At,
		})
	}
	return s.redis.AppendStream(ctx, s.stream, entries)
}

// LogSink writes events to the application log. Used when Redis is not
// configured.
type LogSink struct{}

// Write logs each event at info level.
func (LogSink) Write(_ context.Context, events []ListingEvent) error {
	for _, e := range events {
		log.Info().
			Str("event", e.Type).
			Str("user_id", e.UserID).
			Str("listing_id", e.ListingID).
			Int64("at", e.At).
			Msg("listing event")
	}
	return nil
}
