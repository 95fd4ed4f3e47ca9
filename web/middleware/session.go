package middleware

import (
	"net/http"

	"query-chat/session"
	"query-chat/web/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const SessionCookieName = "query_chat_session"
const CookieMaxAge = 12 * 60 * 60 // 12 hours

const sessionKey = "session"

// SessionMiddleware attaches the caller's widget session. A missing or expired
// session starts a new one with empty state, like a page reload.
func SessionMiddleware(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *session.Session

		cookie, err := c.Cookie(SessionCookieName)
		if err == nil {
			if id, parseErr := uuid.Parse(cookie); parseErr == nil {
				sess, _ = sessions.Get(id)
			}
		} else if err != http.ErrNoCookie {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse session cookie"})
			return
		}

		if sess == nil {
			sess = sessions.Create()
			SetSessionCookie(c, sess)
		}

		c.Set(sessionKey, sess)
		c.Set("sessionID", sess.ID())
		c.Next()
	}
}

// SetSessionCookie points the browser at sess.
func SetSessionCookie(c *gin.Context, sess *session.Session) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, sess.ID().String(), CookieMaxAge, "/", "", false, true)
}

// CurrentSession returns the session attached by SessionMiddleware.
func CurrentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
