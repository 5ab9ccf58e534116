package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jgrady/homekeep/internal/auth"
	"github.com/jgrady/homekeep/internal/database"
	"github.com/jgrady/homekeep/internal/model"
	"github.com/jgrady/homekeep/internal/store"
)

// env bundles everything a handler test needs: a real in-memory database,
// all stores, and a couple of pre-created users.
type env struct {
	db         *sql.DB
	users      *store.UserStore
	households *store.HouseholdStore
	chores     *store.ChoreStore
	events     *store.EventStore
	bills      *store.BillStore
	shopping   *store.ShoppingStore
	pictures   *store.ProfilePictureStore
	logger     *slog.Logger
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &env{
		db:         db,
		users:      store.NewUserStore(db),
		households: store.NewHouseholdStore(db),
		chores:     store.NewChoreStore(db),
		events:     store.NewEventStore(db),
		bills:      store.NewBillStore(db),
		shopping:   store.NewShoppingStore(db),
		pictures:   store.NewProfilePictureStore(db),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// seedUser creates a user; seedMember additionally puts them in the household.
func (e *env) seedUser(t *testing.T, username string) *model.User {
	t.Helper()
	u, err := e.users.Create(username, username+"@example.com", "hashed")
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

// seedHousehold creates a household owned by a fresh user and returns both.
func (e *env) seedHousehold(t *testing.T, owner string) (*model.Household, *model.User) {
	t.Helper()
	u := e.seedUser(t, owner)
	h, err := e.households.Create(owner+"'s home", u.ID)
	if err != nil {
		t.Fatalf("seed household: %v", err)
	}
	u.HouseholdID = &h.ID
	return h, u
}

func (e *env) seedMember(t *testing.T, householdID int64, username string) *model.User {
	t.Helper()
	u := e.seedUser(t, username)
	if err := e.users.SetHousehold(u.ID, &householdID); err != nil {
		t.Fatalf("attach member: %v", err)
	}
	u.HouseholdID = &householdID
	return u
}

// request builds an authenticated request the way the middleware would,
// with the caller's identity already resolved into the context.
func request(method, target string, body any, as *model.User) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if as != nil {
		ac := auth.Context{UserID: as.ID, Username: as.Username}
		if as.HouseholdID != nil {
			ac.HouseholdID = *as.HouseholdID
		}
		req = req.WithContext(auth.WithContext(req.Context(), ac))
	}
	return req
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// serve routes the request through a mux with the given pattern so that
// r.PathValue works like it does in production.
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}
