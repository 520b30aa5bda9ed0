package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kaungmyatmindfulness/origin-food-house-backend/apperr"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/utils"
)

// ContextUserID is the gin context key the authenticated staff user id
// is stored under.
const ContextUserID = "user_id"

// AuthMiddleware verifies the staff identity token and stores the user
// id on the context. Store-role checks happen per operation, after the
// target store is known.
func AuthMiddleware(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, apperr.Unauthorized("authorization header missing"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ParseToken(jwtSecret, tokenString)
		if err != nil {
			utils.RespondError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

// UserIDFromContext returns the authenticated staff user id set by
// AuthMiddleware.
func UserIDFromContext(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
