package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/feedline/feedline/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"

	// LoginPath is where unauthenticated requests are redirected, carrying
	// the original path in the next parameter.
	LoginPath = "/auth/login/"
)

// CurrentUser resolves the session token when one is present and stores the
// identity in the request context. It never rejects: public pages use it to
// compute viewer-specific state such as follow and like flags.
func CurrentUser() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if claims, ok := sessionClaims(ctx); ok {
			ctx.Set(ContextUserIDKey, claims.UserID)
			ctx.Set(ContextUsernameKey, claims.Username)
		}
		ctx.Next()
	}
}

// LoginRequired ensures the request carries a valid session. Anonymous
// requests are redirected to the login page with the original path in the
// next parameter rather than rejected with an error status.
func LoginRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, ok := sessionClaims(ctx)
		if !ok {
			ctx.Redirect(http.StatusFound, LoginPath+"?next="+ctx.Request.URL.Path)
			ctx.Abort()
			return
		}
		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Next()
	}
}

// sessionClaims extracts and validates the session token from the cookie,
// falling back to an Authorization bearer header.
func sessionClaims(ctx *gin.Context) (*utils.Claims, bool) {
	token := ""
	if c, err := ctx.Cookie(utils.SessionCookie); err == nil {
		token = c
	}
	if token == "" {
		header := ctx.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = strings.TrimSpace(parts[1])
		}
	}
	if token == "" {
		return nil, false
	}
	claims, err := utils.ParseToken(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}
