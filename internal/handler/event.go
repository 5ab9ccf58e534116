package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jgrady/homekeep/internal/auth"
	"github.com/jgrady/homekeep/internal/model"
	"github.com/jgrady/homekeep/internal/recurrence"
	"github.com/jgrady/homekeep/internal/store"
	"github.com/jgrady/homekeep/internal/websocket"
)

type EventHandler struct {
	events *store.EventStore
	users  *store.UserStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewEventHandler(events *store.EventStore, users *store.UserStore, hub *websocket.Hub, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: events, users: users, hub: hub, logger: logger}
}

func (h *EventHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

type eventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Cycle       int       `json:"cycle"`
	RepeatCount int       `json:"repeat_count"`
	AttendeeIDs []int64   `json:"attendee_ids"`
}

func (req *eventRequest) validate() (recurrence.Cycle, string) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return recurrence.Cycle{}, "name is required"
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

// checkAttendees verifies every attendee is a member of the household.
func (h *EventHandler) checkAttendees(householdID int64, ids []int64) (string, error) {
	if len(ids) == 0 {
		return "", nil
	}
	members, err := h.users.ListByHousehold(householdID)
	if err != nil {
		return "", err
	}
	valid := make(map[int64]bool, len(members))
	for _, m := range members {
		valid[m.ID] = true
	}
	for _, id := range ids {
		if !valid[id] {
			return "attendee is not a household member", nil
		}
	}
	return "", nil
}

func (h *EventHandler) fetchScoped(w http.ResponseWriter, r *http.Request) *model.Event {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}

	event, err := h.events.GetByID(id)
	if err != nil {
		h.logger.Error("get event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return nil
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return nil
	}
	if event.HouseholdID != auth.HouseholdID(r.Context()) {
		writeError(w, http.StatusForbidden, "event belongs to another household")
		return nil
	}
	return event
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	cycle, msg := req.validate()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ac, _ := auth.FromContext(r.Context())
	if msg, err := h.checkAttendees(ac.HouseholdID, req.AttendeeIDs); err != nil {
		h.logger.Error("check attendees", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	} else if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	childDates, err := recurrence.Expand(req.DueDate, cycle, req.RepeatCount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recurrence")
		return
	}

	event := model.Event{
		HouseholdID: ac.HouseholdID,
		Name:        req.Name,
		Description: req.Description,
		DueDate:     req.DueDate,
		CreatedBy:   &ac.UserID,
		Cycle:       cycle.Code(),
		RepeatCount: req.RepeatCount,
		AttendeeIDs: req.AttendeeIDs,
	}

	created, err := h.events.Create(event, childDates)
	if err != nil {
		h.logger.Error("create event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("event", "created", created.ID, nil))
	writeJSON(w, http.StatusCreated, created)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := parsePageParams(r)
	events, err := h.events.List(auth.HouseholdID(r.Context()), skip, limit)
	if err != nil {
		h.logger.Error("list events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event := h.fetchScoped(w, r)
	if event == nil {
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing := h.fetchScoped(w, r)
	if existing == nil {
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	cycle, msg := req.validate()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if msg, err := h.checkAttendees(existing.HouseholdID, req.AttendeeIDs); err != nil {
		h.logger.Error("check attendees", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update event")
		return
	} else if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.DueDate = req.DueDate
	existing.Cycle = cycle.Code()
	existing.RepeatCount = req.RepeatCount
	existing.AttendeeIDs = req.AttendeeIDs

	updated, err := h.events.Update(*existing)
	if err != nil {
		h.logger.Error("update event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update event")
		return
	}

	h.broadcast(existing.HouseholdID, websocket.NewMessage("event", "updated", updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing := h.fetchScoped(w, r)
	if existing == nil {
		return
	}

	if err := h.events.Delete(existing.ID); err != nil {
		h.logger.Error("delete event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	h.broadcast(existing.HouseholdID, websocket.NewMessage("event", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}
