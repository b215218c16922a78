package session

import (
	"context"
	"testing"
)

func TestParseMode(t *testing.T) {
	for _, s := range []string{"student", "teacher"} {
		m, err := ParseMode(s)
		if err != nil || string(m) != s {
			t.Fatalf("ParseMode(%q) = %v, %v", s, m, err)
		}
	}
	if _, err := ParseMode("admin"); err == nil {
		t.Fatal("unknown mode accepted")
	}
}

func TestStateTransitions(t *testing.T) {
	st := Default()
	if st.Mode != ModeStudent || st.Authenticated {
		t.Fatalf("default state = %+v, want unauthenticated student mode", st)
	}

	// Teacher mode alone does not grant the dashboard.
	st = st.WithMode(ModeTeacher)
	if st.Authenticated || st.CanViewDashboard() {
		t.Fatal("switching to teacher mode must not authenticate")
	}

	st = st.WithAuthenticated(true)
	if !st.CanViewDashboard() {
		t.Fatal("authenticated teacher must reach the dashboard")
	}

	// Switching back to student mode always clears authentication.
	st = st.WithMode(ModeStudent)
	if st.Authenticated {
		t.Fatal("student mode must clear the authenticated flag")
	}

	// Returning to teacher mode requires logging in again.
	st = st.WithMode(ModeTeacher)
	if st.Authenticated || st.CanViewDashboard() {
		t.Fatal("re-entering teacher mode must not restore authentication")
	}
}

func TestStateTransitions_TeacherModePreservesAuth(t *testing.T) {
	st := Default().WithMode(ModeTeacher).WithAuthenticated(true)
	st = st.WithMode(ModeTeacher)
	if !st.Authenticated {
		t.Fatal("re-selecting teacher mode must preserve authentication")
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v, want absent", ok, err)
	}

	want := Default().WithMode(ModeTeacher).WithAuthenticated(true)
	if err := store.Put(ctx, "sid-1", want); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	got, ok, err := store.Get(ctx, "sid-1")
	if err != nil || !ok {
		t.Fatalf("Get(sid-1) = ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("state = %+v, want %+v", got, want)
	}

	if !store.Healthy(ctx) {
		t.Fatal("in-process store must always report healthy")
	}
}

func TestRedisStoreHealthy_DeadServer(t *testing.T) {
	// Nothing listens on this port; the health probe must come back false
	// within the client timeouts rather than error or hang.
	store := NewRedisStore(NewRedisClient("127.0.0.1:1"), 0)
	if store.Healthy(context.Background()) {
		t.Fatal("unreachable redis reported healthy")
	}
}
