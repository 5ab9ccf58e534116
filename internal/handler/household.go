package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jgrady/homekeep/internal/auth"
	"github.com/jgrady/homekeep/internal/model"
	"github.com/jgrady/homekeep/internal/store"
	"github.com/jgrady/homekeep/internal/websocket"
)

type HouseholdHandler struct {
	households *store.HouseholdStore
	users      *store.UserStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewHouseholdHandler(households *store.HouseholdStore, users *store.UserStore, hub *websocket.Hub, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{households: households, users: users, hub: hub, logger: logger}
}

func (h *HouseholdHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 3 {
		writeError(w, http.StatusBadRequest, "name must be at least 3 characters")
		return
	}

	userID := auth.UserID(r.Context())
	household, err := h.households.Create(req.Name, userID)
	if err != nil {
		if store.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "you already own a household")
			return
		}
		h.logger.Error("create household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create household")
		return
	}

	writeJSON(w, http.StatusCreated, household)
}

func (h *HouseholdHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JoinCode string `json:"joinCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.JoinCode = strings.ToUpper(strings.TrimSpace(req.JoinCode))
	if req.JoinCode == "" {
		writeError(w, http.StatusBadRequest, "joinCode is required")
		return
	}

	userID := auth.UserID(r.Context())

	household, err := h.households.GetByJoinCode(req.JoinCode)
	if err != nil {
		h.logger.Error("lookup join code", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to join household")
		return
	}
	if household == nil {
		writeError(w, http.StatusNotFound, "no household with that join code")
		return
	}

	// Owners are bound to their own household until they delete it.
	owned, err := h.households.GetByOwner(userID)
	if err != nil {
		h.logger.Error("lookup owned household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to join household")
		return
	}
	if owned != nil && owned.ID != household.ID {
		writeError(w, http.StatusConflict, "delete your own household before joining another")
		return
	}

	if err := h.users.SetHousehold(userID, &household.ID); err != nil {
		h.logger.Error("set household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to join household")
		return
	}

	h.broadcast(household.ID, websocket.NewMessage("household", "updated", household.ID, nil))
	writeJSON(w, http.StatusOK, household)
}

func (h *HouseholdHandler) Leave(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	if ac.HouseholdID == 0 {
		writeError(w, http.StatusBadRequest, "you are not in a household")
		return
	}

	household, err := h.households.GetByID(ac.HouseholdID)
	if err != nil {
		h.logger.Error("get household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to leave household")
		return
	}
	if household != nil && household.OwnerID == ac.UserID {
		writeError(w, http.StatusConflict, "owners cannot leave, delete the household instead")
		return
	}

	if err := h.users.SetHousehold(ac.UserID, nil); err != nil {
		h.logger.Error("clear household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to leave household")
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("household", "updated", ac.HouseholdID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Current returns the caller's household with its owner and member list.
func (h *HouseholdHandler) Current(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	household, err := h.households.GetByID(householdID)
	if err != nil {
		h.logger.Error("get household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get household")
		return
	}
	if household == nil {
		writeError(w, http.StatusNotFound, "household not found")
		return
	}

	members, err := h.users.ListByHousehold(householdID)
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get household")
		return
	}

	var owner *model.User
	for i := range members {
		if members[i].ID == household.OwnerID {
			owner = &members[i]
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"household": household,
		"owner":     owner,
		"members":   members,
	})
}

func (h *HouseholdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	household, err := h.households.GetByID(ac.HouseholdID)
	if err != nil {
		h.logger.Error("get household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete household")
		return
	}
	if household == nil {
		writeError(w, http.StatusNotFound, "household not found")
		return
	}
	if household.OwnerID != ac.UserID {
		writeError(w, http.StatusForbidden, "only the owner can delete the household")
		return
	}

	// Tell members before the delete; their hub group disappears with their
	// household reference.
	h.broadcast(household.ID, websocket.NewMessage("household", "deleted", household.ID, nil))

	if err := h.households.Delete(household.ID); err != nil {
		h.logger.Error("delete household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete household")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
