package handler

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jgrady/homekeep/internal/model"
)

func newOverviewHandler(e *env) *OverviewHandler {
	return NewOverviewHandler(e.chores, e.events, e.bills, e.shopping, e.logger)
}

func seedOverviewData(t *testing.T, e *env, hh *model.Household, owner *model.User) {
	t.Helper()

	inWindow := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	outOfWindow := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	for i, due := range []time.Time{inWindow, outOfWindow} {
		_, err := e.chores.Create(model.Chore{
			HouseholdID: hh.ID,
			Name:        "chore-" + strconv.Itoa(i),
			DueDate:     due,
			Priority:    3,
			CreatedBy:   &owner.ID,
		}, nil)
		if err != nil {
			t.Fatalf("seed chore: %v", err)
		}
	}

	if _, err := e.events.Create(model.Event{
		HouseholdID: hh.ID,
		Name:        "dinner",
		DueDate:     inWindow,
		CreatedBy:   &owner.ID,
	}, nil); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	if _, err := e.bills.Create(model.Bill{
		HouseholdID: hh.ID,
		Name:        "rent",
		Amount:      decimal.NewFromInt(1200),
		DueDate:     inWindow,
		CreatedBy:   &owner.ID,
	}); err != nil {
		t.Fatalf("seed bill: %v", err)
	}

	if _, err := e.shopping.Create(model.ShoppingItem{
		HouseholdID: hh.ID,
		Name:        "milk",
		Cost:        decimal.NewFromFloat(3.49),
		CreatedBy:   &owner.ID,
	}); err != nil {
		t.Fatalf("seed shopping item: %v", err)
	}
}

func TestOverview(t *testing.T) {
	e := newEnv(t)
	h := newOverviewHandler(e)
	hh, owner := e.seedHousehold(t, "alice")
	seedOverviewData(t, e, hh, owner)

	rec := httptest.NewRecorder()
	h.Get(rec, request("GET", "/api/overview?date=2025-06-01", nil, owner))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	resp := decodeBody[overviewResponse](t, rec)
	if len(resp.Chores) != 1 {
		t.Errorf("chores = %d, want only the one inside the week window", len(resp.Chores))
	}
	if len(resp.Events) != 1 {
		t.Errorf("events = %d, want 1", len(resp.Events))
	}
	if len(resp.Bills) != 1 {
		t.Errorf("bills = %d, want 1", len(resp.Bills))
	}
	if len(resp.Shopping) != 1 {
		t.Errorf("shopping = %d, want 1", len(resp.Shopping))
	}
}

func TestOverviewScopedToHousehold(t *testing.T) {
	e := newEnv(t)
	h := newOverviewHandler(e)
	hh, alice := e.seedHousehold(t, "alice")
	seedOverviewData(t, e, hh, alice)
	_, mallory := e.seedHousehold(t, "mallory")

	rec := httptest.NewRecorder()
	h.Get(rec, request("GET", "/api/overview?date=2025-06-01", nil, mallory))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeBody[overviewResponse](t, rec)
	if len(resp.Chores)+len(resp.Events)+len(resp.Bills)+len(resp.Shopping) != 0 {
		t.Errorf("another household's overview should be empty: %+v", resp)
	}
}

func TestOverviewLimit(t *testing.T) {
	e := newEnv(t)
	h := newOverviewHandler(e)
	hh, owner := e.seedHousehold(t, "alice")

	due := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		if _, err := e.chores.Create(model.Chore{
			HouseholdID: hh.ID,
			Name:        "chore-" + strconv.Itoa(i),
			DueDate:     due,
			Priority:    3,
			CreatedBy:   &owner.ID,
		}, nil); err != nil {
			t.Fatalf("seed chore: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	h.Get(rec, request("GET", "/api/overview?date=2025-06-01", nil, owner))
	resp := decodeBody[overviewResponse](t, rec)
	if len(resp.Chores) != overviewLimit {
		t.Errorf("chores = %d, want capped at %d", len(resp.Chores), overviewLimit)
	}
}

func TestOverviewBadDate(t *testing.T) {
	e := newEnv(t)
	h := newOverviewHandler(e)
	_, owner := e.seedHousehold(t, "alice")

	rec := httptest.NewRecorder()
	h.Get(rec, request("GET", "/api/overview?date=June+1st", nil, owner))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestProfilePictureList(t *testing.T) {
	e := newEnv(t)
	h := NewProfilePictureHandler(e.pictures, e.logger)
	alice := e.seedUser(t, "alice")

	rec := httptest.NewRecorder()
	h.List(rec, request("GET", "/api/profile-pictures", nil, alice))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	pictures := decodeBody[[]model.ProfilePicture](t, rec)
	if len(pictures) == 0 {
		t.Error("seeded avatars should be listed")
	}
}
