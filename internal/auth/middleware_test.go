package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"moodboard/internal/session"
)

func newTestRouter(store session.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionLoader(store, "test-key", "moodboard", time.Hour))
	r.GET("/dashboard", TeacherOnly(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/session", func(c *gin.Context) {
		c.JSON(http.StatusOK, StateFromContext(c))
	})
	return r
}

// sessionCookie performs one request to mint a session and returns its cookie
// and the server-side session id.
func sessionCookie(t *testing.T, r *gin.Engine) (*http.Cookie, string) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	r.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			sid, err := ParseSessionToken(c.Value, "test-key", "moodboard")
			if err != nil {
				t.Fatalf("cookie token invalid: %v", err)
			}
			return c, sid
		}
	}
	t.Fatal("no session cookie issued")
	return nil, ""
}

func TestSessionLoader_MintsFreshStudentSession(t *testing.T) {
	store := session.NewMemory()
	r := newTestRouter(store)

	cookie, sid := sessionCookie(t, r)
	if cookie.Value == "" {
		t.Fatal("empty session cookie")
	}
	st, ok, _ := store.Get(context.Background(), sid)
	if !ok {
		t.Fatal("session not persisted")
	}
	if st != session.Default() {
		t.Fatalf("fresh session state = %+v, want default", st)
	}
}

func TestTeacherOnly_GatesDashboard(t *testing.T) {
	store := session.NewMemory()
	r := newTestRouter(store)
	cookie, sid := sessionCookie(t, r)

	get := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(cookie)
		r.ServeHTTP(w, req)
		return w.Code
	}

	// Fresh student session: no dashboard.
	if code := get(); code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 before login", code)
	}

	// Teacher mode without the password check still fails.
	_ = store.Put(context.Background(), sid, session.Default().WithMode(session.ModeTeacher))
	if code := get(); code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without authentication", code)
	}

	// Authenticated teacher passes.
	_ = store.Put(context.Background(), sid, session.Default().WithMode(session.ModeTeacher).WithAuthenticated(true))
	if code := get(); code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for authenticated teacher", code)
	}

	// Switching to student mode revokes access until the next login.
	st, _, _ := store.Get(context.Background(), sid)
	_ = store.Put(context.Background(), sid, st.WithMode(session.ModeStudent).WithMode(session.ModeTeacher))
	if code := get(); code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 after mode round-trip", code)
	}
}

func TestSessionLoader_RejectsForgedCookie(t *testing.T) {
	store := session.NewMemory()
	r := newTestRouter(store)

	forged, err := IssueSessionToken("sid-evil", "moodboard", "wrong-key", time.Hour)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: forged})
	r.ServeHTTP(w, req)

	// A forged cookie is silently replaced with a fresh session.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with a fresh session", w.Code)
	}
	replaced := false
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName && c.Value != forged {
			replaced = true
		}
	}
	if !replaced {
		t.Fatal("forged cookie not replaced")
	}
}
