package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_api/internal/utils"
)

// respondError writes the envelope for err. Errors outside the catalog
// taxonomy are storage failures and are logged before answering 500.
func respondError(c *gin.Context, err error) {
	if _, status := utils.ErrorCode(err); status >= 500 {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}
	utils.Fail(c, err)
}

// bindError answers a request body that failed to bind.
func bindError(c *gin.Context, err error) {
	utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body: "+err.Error())
}

// ListingAuthorizer checks that a user owns a listing.
type ListingAuthorizer interface {
	Authorize(ctx context.Context, listingID, userID string) error
}

// authorize resolves the listing owning a resource and checks the caller owns
// it. It writes the error response and returns false on failure.
func authorize(c *gin.Context, auth ListingAuthorizer, resolve func(context.Context) (string, error)) bool {
	ctx := c.Request.Context()
	listingID, err := resolve(ctx)
	if err != nil {
		respondError(c, err)
		return false
	}
	if err := auth.Authorize(ctx, listingID, c.GetString("user_id")); err != nil {
		respondError(c, err)
		return false
	}
	return true
}

// listingParam resolves to the listing named by the :id route parameter.
func listingParam(c *gin.Context) func(context.Context) (string, error) {
	id := c.Param("id")
	return func(context.Context) (string, error) { return id, nil }
}
