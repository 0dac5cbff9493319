package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ink2deck/internal/pkg/jwtutil"
	"ink2deck/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
)

func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, msg := bearerToken(c.GetHeader("Authorization"))
		if msg != "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, msg)
			return
		}

		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or expired token")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}

// bearerToken returns the token or a client-facing reason it is missing.
func bearerToken(header string) (string, string) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", "invalid authorization scheme"
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", "missing bearer token"
	}
	return token, ""
}
