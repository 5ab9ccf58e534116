package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jgrady/homekeep/internal/auth"
	"github.com/jgrady/homekeep/internal/database"
	"github.com/jgrady/homekeep/internal/store"
)

func setupAuthTest(t *testing.T) (*auth.TokenIssuer, *store.UserStore, *store.HouseholdStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return auth.NewTokenIssuer([]byte("test-secret")), store.NewUserStore(db), store.NewHouseholdStore(db)
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestRequireAuthNoToken(t *testing.T) {
	tokens, users, _ := setupAuthTest(t)
	next, called := okHandler()

	req := httptest.NewRequest("GET", "/api/chores", nil)
	rec := httptest.NewRecorder()
	RequireAuth(tokens, users)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if *called {
		t.Error("handler should not run without a token")
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected an error message body")
	}
}

func TestRequireAuthBadToken(t *testing.T) {
	tokens, users, _ := setupAuthTest(t)
	next, called := okHandler()

	req := httptest.NewRequest("GET", "/api/chores", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	RequireAuth(tokens, users)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if *called {
		t.Error("handler should not run with a bad token")
	}
}

func TestRequireAuthDeletedUser(t *testing.T) {
	tokens, users, _ := setupAuthTest(t)
	next, called := okHandler()

	u, _ := users.Create("alice", "alice@example.com", "h")
	token, _ := tokens.Issue(u.ID, u.Username, 0)
	users.Delete(u.ID)

	req := httptest.NewRequest("GET", "/api/chores", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	RequireAuth(tokens, users)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if *called {
		t.Error("handler should not run for a deleted user")
	}
}

func TestRequireAuthBearerToken(t *testing.T) {
	tokens, users, hs := setupAuthTest(t)

	u, _ := users.Create("alice", "alice@example.com", "h")
	h, _ := hs.Create("Test Household", u.ID)
	token, _ := tokens.Issue(u.ID, u.Username, h.ID)

	var got auth.Context
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.FromContext(r.Context())
	})

	req := httptest.NewRequest("GET", "/api/chores", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	RequireAuth(tokens, users)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.UserID != u.ID || got.Username != "alice" || got.HouseholdID != h.ID {
		t.Errorf("auth context = %+v", got)
	}
}

func TestRequireAuthCookie(t *testing.T) {
	tokens, users, _ := setupAuthTest(t)
	next, called := okHandler()

	u, _ := users.Create("alice", "alice@example.com", "h")
	token, _ := tokens.Issue(u.ID, u.Username, 0)

	req := httptest.NewRequest("GET", "/api/chores", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	RequireAuth(tokens, users)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !*called {
		t.Error("handler should run with a valid cookie")
	}
}

func TestRequireAuthFreshHousehold(t *testing.T) {
	// A token minted before the user joined a household must still resolve
	// to the current household.
	tokens, users, hs := setupAuthTest(t)

	u, _ := users.Create("alice", "alice@example.com", "h")
	token, _ := tokens.Issue(u.ID, u.Username, 0)
	h, _ := hs.Create("Test Household", u.ID)

	var got auth.Context
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.FromContext(r.Context())
	})

	req := httptest.NewRequest("GET", "/api/chores", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	RequireAuth(tokens, users)(next).ServeHTTP(rec, req)

	if got.HouseholdID != h.ID {
		t.Errorf("household = %d, want %d (stale token claim must not win)", got.HouseholdID, h.ID)
	}
}

func TestRequireHousehold(t *testing.T) {
	next, called := okHandler()

	// No household in context.
	req := httptest.NewRequest("GET", "/api/chores", nil)
	ctx := auth.WithContext(req.Context(), auth.Context{UserID: 1, Username: "alice"})
	rec := httptest.NewRecorder()
	RequireHousehold(next).ServeHTTP(rec, req.WithContext(ctx))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if *called {
		t.Error("handler should not run without a household")
	}

	// With household.
	ctx = auth.WithContext(req.Context(), auth.Context{UserID: 1, Username: "alice", HouseholdID: 2})
	rec = httptest.NewRecorder()
	RequireHousehold(next).ServeHTTP(rec, req.WithContext(ctx))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
