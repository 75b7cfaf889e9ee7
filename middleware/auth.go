package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"quickblog/utils"
)

// ContextAdminEmailKey stores the authenticated admin email in the Gin context.
const ContextAdminEmailKey = "admin_email"

// AuthRequired guards privileged handlers. It accepts the token from the
// Authorization header either raw or with a Bearer prefix and verifies it
// against the shared secret. Every failure cause answers the same uniform
// failure envelope; causes are deliberately not distinguished.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := strings.TrimSpace(ctx.GetHeader("Authorization"))
		if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
			token = strings.TrimSpace(token[7:])
		}
		if token == "" {
			utils.Fail(ctx, "Invalid token")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(secret, token)
		if err != nil {
			utils.Fail(ctx, "Invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextAdminEmailKey, claims.Email)
		ctx.Next()
	}
}
