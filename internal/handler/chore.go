package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jgrady/homekeep/internal/auth"
	"github.com/jgrady/homekeep/internal/model"
	"github.com/jgrady/homekeep/internal/recurrence"
	"github.com/jgrady/homekeep/internal/store"
	"github.com/jgrady/homekeep/internal/websocket"
)

type ChoreHandler struct {
	chores *store.ChoreStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewChoreHandler(chores *store.ChoreStore, hub *websocket.Hub, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{chores: chores, hub: hub, logger: logger}
}

func (h *ChoreHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

type choreRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Priority    int       `json:"priority"`
	Cycle       int       `json:"cycle"`
	RepeatCount int       `json:"repeat_count"`
}

func (req *choreRequest) validate() (recurrence.Cycle, string) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return recurrence.Cycle{}, "name is required"
	}
	if req.Priority < 1 || req.Priority > 5 {
		return recurrence.Cycle{}, "priority must be between 1 and 5"
	}
	if req.DueDate.IsZero() {
		return recurrence.Cycle{}, "due_date is required"
	}
	cycle, err := recurrence.ParseCode(req.Cycle)
	if err != nil {
		return recurrence.Cycle{}, "invalid cycle"
	}
	if req.RepeatCount < 0 || req.RepeatCount > recurrence.MaxRepeat {
		return recurrence.Cycle{}, "repeat_count out of range"
	}
	return cycle, ""
}

// fetchScoped loads a chore and checks it belongs to the caller's household.
// It writes the error response itself and returns nil when the caller should
// stop.
func (h *ChoreHandler) fetchScoped(w http.ResponseWriter, r *http.Request) *model.Chore {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}

	chore, err := h.chores.GetByID(id)
	if err != nil {
		h.logger.Error("get chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return nil
	}
	if chore == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return nil
	}
	if chore.HouseholdID != auth.HouseholdID(r.Context()) {
		writeError(w, http.StatusForbidden, "chore belongs to another household")
		return nil
	}
	return chore
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req choreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	cycle, msg := req.validate()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	childDates, err := recurrence.Expand(req.DueDate, cycle, req.RepeatCount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recurrence")
		return
	}

	ac, _ := auth.FromContext(r.Context())
	chore := model.Chore{
		HouseholdID: ac.HouseholdID,
		Name:        req.Name,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		CreatedBy:   &ac.UserID,
		Cycle:       cycle.Code(),
		RepeatCount: req.RepeatCount,
	}

	created, err := h.chores.Create(chore, childDates)
	if err != nil {
		h.logger.Error("create chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create chore")
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("chore", "created", created.ID, nil))
	writeJSON(w, http.StatusCreated, created)
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := parsePageParams(r)
	chores, err := h.chores.List(auth.HouseholdID(r.Context()), skip, limit)
	if err != nil {
		h.logger.Error("list chores", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list chores")
		return
	}
	if chores == nil {
		chores = []model.Chore{}
	}
	writeJSON(w, http.StatusOK, chores)
}

func (h *ChoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	chore := h.fetchScoped(w, r)
	if chore == nil {
		return
	}
	writeJSON(w, http.StatusOK, chore)
}

func (h *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing := h.fetchScoped(w, r)
	if existing == nil {
		return
	}

	var req choreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	cycle, msg := req.validate()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.DueDate = req.DueDate
	existing.Priority = req.Priority
	existing.Cycle = cycle.Code()
	existing.RepeatCount = req.RepeatCount

	updated, err := h.chores.Update(*existing)
	if err != nil {
		h.logger.Error("update chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update chore")
		return
	}

	h.broadcast(existing.HouseholdID, websocket.NewMessage("chore", "updated", updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing := h.fetchScoped(w, r)
	if existing == nil {
		return
	}

	if err := h.chores.Delete(existing.ID); err != nil {
		h.logger.Error("delete chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete chore")
		return
	}

	h.broadcast(existing.HouseholdID, websocket.NewMessage("chore", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChoreHandler) SetDone(w http.ResponseWriter, r *http.Request) {
	existing := h.fetchScoped(w, r)
	if existing == nil {
		return
	}

	var req struct {
		Done bool `json:"done"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var doneBy *int64
	if req.Done {
		uid := auth.UserID(r.Context())
		doneBy = &uid
	}

	updated, err := h.chores.SetDone(existing.ID, req.Done, doneBy)
	if err != nil {
		h.logger.Error("set chore done", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update chore")
		return
	}

	h.broadcast(existing.HouseholdID, websocket.NewMessage("chore", "updated", updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

// parsePageParams reads skip/limit query parameters. Missing or invalid
// values fall back to no offset and no limit.
func parsePageParams(r *http.Request) (skip, limit int) {
	if v, err := strconv.Atoi(r.URL.Query().Get("skip")); err == nil && v > 0 {
		skip = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	return skip, limit
}
