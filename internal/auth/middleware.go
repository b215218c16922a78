package auth

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"moodboard/internal/session"
)

// CookieName carries the signed session token.
const CookieName = "mb_session"

const (
	ctxKeySessionID = "session_id"
	ctxKeyState     = "session_state"
)

// SessionLoader resolves the session for every request: a valid cookie loads
// the stored state, anything else silently starts a fresh student-mode
// session. The resolved id and state are placed on the gin context.
func SessionLoader(store session.Store, signingKey, issuer string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			sid   string
			state session.State
			known bool
		)

		if cookie, err := c.Cookie(CookieName); err == nil {
			if id, err := ParseSessionToken(cookie, signingKey, issuer); err == nil {
				if st, ok, err := store.Get(c.Request.Context(), id); err == nil && ok {
					sid, state, known = id, st, true
				}
			}
		}

		if !known {
			sid = uuid.NewString()
			state = session.Default()
			if err := store.Put(c.Request.Context(), sid, state); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session init failed"})
				return
			}
			token, err := IssueSessionToken(sid, issuer, signingKey, ttl)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session init failed"})
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CookieName, token, int(ttl.Seconds()), "/", "", false, true)
		}

		c.Set(ctxKeySessionID, sid)
		c.Set(ctxKeyState, state)
		c.Next()
	}
}

// TeacherOnly gates dashboard routes: teacher mode with a passed password
// check, otherwise 401.
func TeacherOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		st := StateFromContext(c)
		if !st.CanViewDashboard() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "teacher authentication required"})
			return
		}
		c.Next()
	}
}

// SessionFromContext returns the resolved session id.
func SessionFromContext(c *gin.Context) string {
	return c.GetString(ctxKeySessionID)
}

// StateFromContext returns the resolved session state.
func StateFromContext(c *gin.Context) session.State {
	st, ok := c.Get(ctxKeyState)
	if !ok {
		log.Println("session state missing from context; SessionLoader not installed?")
		return session.Default()
	}
	state, _ := st.(session.State)
	return state
}
