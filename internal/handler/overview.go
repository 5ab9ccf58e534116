package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jgrady/homekeep/internal/auth"
	"github.com/jgrady/homekeep/internal/model"
	"github.com/jgrady/homekeep/internal/store"
)

const (
	overviewLimit = 5
	overviewDays  = 7
)

// OverviewHandler aggregates the dashboard view: what is coming up in the
// next week plus the open shopping list.
type OverviewHandler struct {
	chores   *store.ChoreStore
	events   *store.EventStore
	bills    *store.BillStore
	shopping *store.ShoppingStore
	logger   *slog.Logger
}

func NewOverviewHandler(chores *store.ChoreStore, events *store.EventStore, bills *store.BillStore, shopping *store.ShoppingStore, logger *slog.Logger) *OverviewHandler {
	return &OverviewHandler{chores: chores, events: events, bills: bills, shopping: shopping, logger: logger}
}

type overviewResponse struct {
	Date     time.Time            `json:"date"`
	Events   []model.Event        `json:"events"`
	Chores   []model.Chore        `json:"chores"`
	Bills    []model.Bill         `json:"bills"`
	Shopping []model.ShoppingItem `json:"shopping"`
}

// Get returns up to five upcoming events, undone chores, and unpaid bills
// due within a week of the requested date, plus the five most recently
// added unbought shopping items. Any failing sub-query fails the whole
// request; partial dashboards mislead more than they help.
func (h *OverviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.AddDate(0, 0, overviewDays+1)

	householdID := auth.HouseholdID(r.Context())

	events, err := h.events.ListUpcoming(householdID, start, end, overviewLimit)
	if err != nil {
		h.logger.Error("overview events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build overview")
		return
	}
	chores, err := h.chores.ListUpcoming(householdID, start, end, overviewLimit)
	if err != nil {
		h.logger.Error("overview chores", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build overview")
		return
	}
	bills, err := h.bills.ListUnpaid(householdID, start, end, overviewLimit)
	if err != nil {
		h.logger.Error("overview bills", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build overview")
		return
	}
	shopping, err := h.shopping.ListUnbought(householdID, overviewLimit)
	if err != nil {
		h.logger.Error("overview shopping", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build overview")
		return
	}

	if events == nil {
		events = []model.Event{}
	}
	if chores == nil {
		chores = []model.Chore{}
	}
	if bills == nil {
		bills = []model.Bill{}
	}
	if shopping == nil {
		shopping = []model.ShoppingItem{}
	}

	writeJSON(w, http.StatusOK, overviewResponse{
		Date:     start,
		Events:   events,
		Chores:   chores,
		Bills:    bills,
		Shopping: shopping,
	})
}
