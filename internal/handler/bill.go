package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jgrady/homekeep/internal/auth"
	"github.com/jgrady/homekeep/internal/model"
	"github.com/jgrady/homekeep/internal/recurrence"
	"github.com/jgrady/homekeep/internal/store"
	"github.com/jgrady/homekeep/internal/websocket"
)

type BillHandler struct {
	bills  *store.BillStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewBillHandler(bills *store.BillStore, hub *websocket.Hub, logger *slog.Logger) *BillHandler {
	return &BillHandler{bills: bills, hub: hub, logger: logger}
}

func (h *BillHandler) broadcast(householdID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

type billRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
	Cycle       int             `json:"cycle"`
}

func (req *billRequest) validate() (recurrence.Cycle, string) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return recurrence.Cycle{}, "name is required"
	}
	if !req.Amount.IsPositive() {
		return recurrence.Cycle{}, "amount must be greater than zero"
	}
	if req.DueDate.IsZero() {
		return recurrence.Cycle{}, "due_date is required"
	}
	cycle, err := recurrence.ParseCode(req.Cycle)
	if err != nil {
		return recurrence.Cycle{}, "invalid cycle"
	}
	return cycle, ""
}

func (h *BillHandler) fetchScoped(w http.ResponseWriter, r *http.Request) *model.Bill {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}

	bill, err := h.bills.GetByID(id)
	if err != nil {
		h.logger.Error("get bill", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get bill")
		return nil
	}
	if bill == nil {
		writeError(w, http.StatusNotFound, "bill not found")
		return nil
	}
	if bill.HouseholdID != auth.HouseholdID(r.Context()) {
		writeError(w, http.StatusForbidden, "bill belongs to another household")
		return nil
	}
	return bill
}

func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req billRequest
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
	bill := model.Bill{
		HouseholdID: ac.HouseholdID,
		Name:        req.Name,
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
		Cycle:       cycle.Code(),
		CreatedBy:   &ac.UserID,
	}

	created, err := h.bills.Create(bill)
	if err != nil {
		h.logger.Error("create bill", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create bill")
		return
	}

	h.broadcast(ac.HouseholdID, websocket.NewMessage("bill", "created", created.ID, nil))
	writeJSON(w, http.StatusCreated, created)
}

func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := parsePageParams(r)
	bills, err := h.bills.List(auth.HouseholdID(r.Context()), skip, limit)
	if err != nil {
		h.logger.Error("list bills", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list bills")
		return
	}
	if bills == nil {
		bills = []model.Bill{}
	}
	writeJSON(w, http.StatusOK, bills)
}

func (h *BillHandler) Get(w http.ResponseWriter, r *http.Request) {
	bill := h.fetchScoped(w, r)
	if bill == nil {
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (h *BillHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing := h.fetchScoped(w, r)
	if existing == nil {
		return
	}

	var req billRequest
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
	existing.Amount = req.Amount
	existing.DueDate = req.DueDate
	existing.Cycle = cycle.Code()

	updated, err := h.bills.Update(*existing)
	if err != nil {
		h.logger.Error("update bill", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update bill")
		return
	}

	h.broadcast(existing.HouseholdID, websocket.NewMessage("bill", "updated", updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *BillHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing := h.fetchScoped(w, r)
	if existing == nil {
		return
	}

	if err := h.bills.Delete(existing.ID); err != nil {
		h.logger.Error("delete bill", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete bill")
		return
	}

	h.broadcast(existing.HouseholdID, websocket.NewMessage("bill", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *BillHandler) SetPaid(w http.ResponseWriter, r *http.Request) {
	existing := h.fetchScoped(w, r)
	if existing == nil {
		return
	}

	var req struct {
		Paid bool `json:"paid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var paidBy *int64
	if req.Paid {
		uid := auth.UserID(r.Context())
		paidBy = &uid
	}

	updated, err := h.bills.SetPaid(existing.ID, paidBy)
	if err != nil {
		h.logger.Error("set bill paid", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update bill")
		return
	}

	h.broadcast(existing.HouseholdID, websocket.NewMessage("bill", "updated", updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}
