package middleware

import (
	"log/slog"
	"net/http"

	"space-booking/internal/handler/httperr"
	"space-booking/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderUserID carries the caller identity asserted by the upstream gateway.
const HeaderUserID = "X-User-ID"

const ctxUserIDKey = "user_id"

var errMissingIdentity = errs.New("missing or malformed user identity")

// RequireUser rejects requests without a valid asserted identity.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderUserID)
		userID, err := uuid.Parse(raw)
		if raw == "" || err != nil || userID == uuid.Nil {
			slog.Warn("Rejected request without identity", "path", c.Request.URL.Path)
			httperr.AbortWithError(c, http.StatusUnauthorized, errMissingIdentity, "X-User-ID header with a user UUID is required", nil)
			return
		}
		c.Set(ctxUserIDKey, userID)
		c.Next()
	}
}

// OptionalUser records the identity when one is present and well formed.
func OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, err := uuid.Parse(c.GetHeader(HeaderUserID)); err == nil && userID != uuid.Nil {
			c.Set(ctxUserIDKey, userID)
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := userID.(uuid.UUID)
	return id, ok
}
