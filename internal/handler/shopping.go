package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jgrady/homekeep/internal/auth"
	"github.com/jgrady/homekeep/internal/model"
	"github.com/jgrady/homekeep/internal/store"
	"github.com/jgrady/homekeep/internal/websocket"
)

type ShoppingHandler struct {
	items  *store.ShoppingStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewShoppingHandler(items *store.ShoppingStore, hub *websocket.Hub, logger *slog.Logger) *ShoppingHandler {
	return &ShoppingHandler{items: items, hub: hub, logger: logger}
}

func (h *ShoppingHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

type shoppingRequest struct {
	Name string          `json:"name"`
	Cost decimal.Decimal `json:"cost"`
}

func (req *shoppingRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if !req.Cost.IsPositive() {
		return "cost must be greater than zero"
	}
	return ""
}

func (h *ShoppingHandler) fetchScoped(w http.ResponseWriter, r *http.Request) *model.ShoppingItem {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}

	item, err := h.items.GetByID(id)
	if err != nil {
		h.logger.Error("get shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get shopping item")
		return nil
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "shopping item not found")
		return nil
	}
	if item.HouseholdID != auth.HouseholdID(r.Context()) {
		writeError(w, http.StatusForbidden, "shopping item belongs to another household")
		return nil
	}
	return item
}

func (h *ShoppingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req shoppingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ac, _ := auth.FromContext(r.Context())
	item := model.ShoppingItem{
		HouseholdID: ac.HouseholdID,
		Name:        req.Name,
		Cost:        req.Cost,
		CreatedBy:   &ac.UserID,
	}

	created, err := h.items.Create(item)
	if err != nil {
		h.logger.Error("create shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create shopping item")
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("shopping_item", "created", created.ID, nil))
	writeJSON(w, http.StatusCreated, created)
}

func (h *ShoppingHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := parsePageParams(r)
	items, err := h.items.List(auth.HouseholdID(r.Context()), skip, limit)
	if err != nil {
		h.logger.Error("list shopping items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list shopping items")
		return
	}
	if items == nil {
		items = []model.ShoppingItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ShoppingHandler) Get(w http.ResponseWriter, r *http.Request) {
	item := h.fetchScoped(w, r)
	if item == nil {
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ShoppingHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing := h.fetchScoped(w, r)
	if existing == nil {
		return
	}

	var req shoppingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	existing.Name = req.Name
	existing.Cost = req.Cost

	updated, err := h.items.Update(*existing)
	if err != nil {
		h.logger.Error("update shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update shopping item")
		return
	}

	h.broadcast(existing.HouseholdID, websocket.NewMessage("shopping_item", "updated", updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *ShoppingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing := h.fetchScoped(w, r)
	if existing == nil {
		return
	}

	if err := h.items.Delete(existing.ID); err != nil {
		h.logger.Error("delete shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete shopping item")
		return
	}

	h.broadcast(existing.HouseholdID, websocket.NewMessage("shopping_item", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShoppingHandler) SetBought(w http.ResponseWriter, r *http.Request) {
	existing := h.fetchScoped(w, r)
	if existing == nil {
		return
	}

	var req struct {
		Bought bool `json:"bought"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var boughtBy *int64
	if req.Bought {
		uid := auth.UserID(r.Context())
		boughtBy = &uid
	}

	updated, err := h.items.SetBought(existing.ID, boughtBy)
	if err != nil {
		h.logger.Error("set shopping item bought", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update shopping item")
		return
	}

	h.broadcast(existing.HouseholdID, websocket.NewMessage("shopping_item", "updated", updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}
