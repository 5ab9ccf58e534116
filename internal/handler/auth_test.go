package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jgrady/homekeep/internal/auth"
	"github.com/jgrady/homekeep/internal/model"
)

func newAuthHandler(e *env) *AuthHandler {
	return NewAuthHandler(e.users, auth.NewTokenIssuer([]byte("test-secret")), e.logger)
}

func TestSignup(t *testing.T) {
	e := newEnv(t)
	h := newAuthHandler(e)

	req := request("POST", "/api/auth/signup", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "correct-horse",
	}, nil)
	rec := httptest.NewRecorder()
	h.Signup(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}
	resp := decodeBody[struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}](t, rec)
	if resp.Token == "" {
		t.Error("response should include a token")
	}
	if resp.User.Username != "alice" {
		t.Errorf("username = %q, want alice", resp.User.Username)
	}
	if resp.User.HouseholdID != nil {
		t.Error("new user should have no household")
	}

	var sessionSet bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.Value != "" {
			sessionSet = true
		}
	}
	if !sessionSet {
		t.Error("signup should set the session cookie")
	}
}

func TestSignupValidation(t *testing.T) {
	e := newEnv(t)
	h := newAuthHandler(e)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"short username", map[string]string{"username": "al", "email": "a@b.com", "password": "longenough"}},
		{"bad email", map[string]string{"username": "alice", "email": "nope", "password": "longenough"}},
		{"short password", map[string]string{"username": "alice", "email": "a@b.com", "password": "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Signup(rec, request("POST", "/api/auth/signup", tc.body, nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestSignupDuplicate(t *testing.T) {
	e := newEnv(t)
	h := newAuthHandler(e)
	e.seedUser(t, "alice")

	rec := httptest.NewRecorder()
	h.Signup(rec, request("POST", "/api/auth/signup", map[string]string{
		"username": "alice",
		"email":    "fresh@example.com",
		"password": "longenough",
	}, nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	h := newAuthHandler(e)

	hash, _ := auth.HashPassword("correct-horse")
	e.users.Create("alice", "alice@example.com", hash)

	// By username and by email.
	for _, login := range []string{"alice", "alice@example.com"} {
		rec := httptest.NewRecorder()
		h.Login(rec, request("POST", "/api/auth/login", map[string]string{
			"login":    login,
			"password": "correct-horse",
		}, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("login as %q: status = %d, want 200: %s", login, rec.Code, rec.Body)
		}
		resp := decodeBody[struct {
			Token string `json:"token"`
		}](t, rec)
		if resp.Token == "" {
			t.Errorf("login as %q: missing token", login)
		}
	}
}

func TestLoginBadCredentials(t *testing.T) {
	e := newEnv(t)
	h := newAuthHandler(e)

	hash, _ := auth.HashPassword("correct-horse")
	e.users.Create("alice", "alice@example.com", hash)

	cases := []map[string]string{
		{"login": "alice", "password": "wrong"},
		{"login": "nobody", "password": "correct-horse"},
	}
	var bodies []string
	for _, body := range cases {
		rec := httptest.NewRecorder()
		h.Login(rec, request("POST", "/api/auth/login", body, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}
	// Unknown user and wrong password must be indistinguishable.
	if bodies[0] != bodies[1] {
		t.Errorf("error bodies differ: %q vs %q", bodies[0], bodies[1])
	}
}

func TestLogout(t *testing.T) {
	e := newEnv(t)
	h := newAuthHandler(e)

	rec := httptest.NewRecorder()
	h.Logout(rec, request("POST", "/api/auth/logout", nil, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout should expire the session cookie")
	}
}
