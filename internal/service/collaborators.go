package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/GTDGit/catalog_api/internal/repository"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// UserResolver checks listing owners against the identity service.
type UserResolver interface {
	ResolveUser(ctx context.Context, ownerID string) (bool, error)
}

// ListingEventLog records listing events (views, edits) for analytics.
// Implementations must not block the caller when the log is unavailable.
type ListingEventLog interface {
	Append(ctx context.Context, eventType, userID, listingID string) error
}

// Listing event types.
const (
	EventListingViewed = "view"
)

// notFound converts sql.ErrNoRows into utils.ErrNotFound naming the entity.
func notFound(err error, entity, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", utils.ErrNotFound, entity, id)
	}
	return err
}

// duplicate converts a unique constraint race into utils.ErrDuplicateDefinition.
func duplicate(err error, what string) error {
	if errors.Is(err, repository.ErrUniqueViolation) {
		return fmt.Errorf("%w: %s", utils.ErrDuplicateDefinition, what)
	}
	return err
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", utils.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// requireTitle trims title and checks it has at least min characters.
func requireTitle(title string, min int, entity string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", invalid("%s title is required", entity)
	}
	if len([]rune(t)) < min {
		return "", invalid("%s title must be at least %d characters long", entity, min)
	}
	return t, nil
}
