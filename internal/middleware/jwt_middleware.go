package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_api/internal/utils"
)

// JWTMiddleware authenticates sellers by the bearer token issued by the
// identity service and stores the subject as user_id.
type JWTMiddleware struct {
	secret  string
	limiter *InvalidAuthRateLimiter
}

// NewJWTMiddleware creates a JWTMiddleware verifying tokens with secret.
// Repeated invalid tokens from one IP are rejected by limiter.
func NewJWTMiddleware(secret string, limiter *InvalidAuthRateLimiter) *JWTMiddleware {
	return &JWTMiddleware{secret: secret, limiter: limiter}
}

func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(c, 401, "UNAUTHORIZED", "Missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.reject(c, "UNAUTHORIZED", "Invalid authorization header")
			return
		}

		userID, err := utils.ValidateJWT(m.secret, parts[1])
		if err != nil {
			log.Debug().Err(err).Str("ip", c.ClientIP()).Msg("Rejected token")
			m.reject(c, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

func (m *JWTMiddleware) reject(c *gin.Context, code, message string) {
	if m.limiter != nil && !m.limiter.Allow(c.ClientIP()) {
		utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
		c.Abort()
		return
	}
	utils.Error(c, 401, code, message)
	c.Abort()
}
