package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ink2deck/internal/navigation"
)

const ContextSessionKey = "session"

type SessionStore interface {
	Create(ctx context.Context) (*navigation.Session, error)
	Get(ctx context.Context, id string) (*navigation.Session, bool, error)
}

// Session attaches the visitor's navigation session, creating one and setting
// the cookie when the request carries none or an unknown id.
func Session(store SessionStore, cookieName string, ttl time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var sess *navigation.Session
		if id, err := c.Cookie(cookieName); err == nil {
			found, ok, err := store.Get(ctx, id)
			if err != nil {
				log.Error().Err(err).Msg("load session failed")
			}
			if ok {
				sess = found
			}
		}

		if sess == nil {
			created, err := store.Create(ctx)
			if err != nil {
				log.Error().Err(err).Msg("create session failed")
				c.AbortWithStatus(http.StatusServiceUnavailable)
				return
			}
			sess = created
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, sess.ID, int(ttl.Seconds()), "/", "", false, true)
		c.Set(ContextSessionKey, sess)
		c.Next()
	}
}

// CurrentSession returns the session attached by Session.
func CurrentSession(c *gin.Context) *navigation.Session {
	v, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*navigation.Session)
	return sess
}
