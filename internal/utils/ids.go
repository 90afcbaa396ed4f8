package utils

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh row identifier. UUIDv7 ids sort by creation time,
// which keeps "creation order" queries stable when timestamps collide.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NowMillis returns the current time as unix milliseconds, the storage format
// for all catalog timestamps.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
