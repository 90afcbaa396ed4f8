package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// UserReplica is the local copy of identity-service accounts. A valid token
// is proof the account exists upstream, so every authenticated caller is
// written here before its handler runs. On the HTTP path the owner check in
// listing creation therefore always passes; it still guards other callers of
// the service.
type UserReplica interface {
	ResolveUser(ctx context.Context, ownerID string) (bool, error)
	Upsert(ctx context.Context, u *models.User) error
}

// UserSyncMiddleware provisions the authenticated user into the local replica
// on first sight, so listings can reference it. Must run after JWTMiddleware.
func UserSyncMiddleware(users UserReplica) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		known, err := users.ResolveUser(ctx, userID)
		if err == nil && !known {
			err = users.Upsert(ctx, &models.User{ID: userID, Username: userID, CreatedAt: utils.NowMillis()})
			if err == nil {
				log.Info().Str("user_id", userID).Msg("User provisioned")
			}
		}
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("User sync failed")
			utils.Error(c, 500, "INTERNAL_ERROR", "Internal server error")
			c.Abort()
			return
		}
		c.Next()
	}
}
