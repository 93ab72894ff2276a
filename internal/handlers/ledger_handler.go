package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"coldstore-backend/internal/middleware"
	"coldstore-backend/internal/models"
	"coldstore-backend/internal/services"
	"coldstore-backend/internal/timeutil"
	"coldstore-backend/pkg/utils"
)

type LedgerHandler struct {
	Service *services.LedgerService
}

func NewLedgerHandler(s *services.LedgerService) *LedgerHandler {
	return &LedgerHandler{Service: s}
}

// CreateEntry posts a manual direct-cash movement.
func (h *LedgerHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLedgerEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	entry, err := h.Service.PostDirectCash(r.Context(), &req, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, entry)
}

func (h *LedgerHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &models.LedgerFilter{
		EntryType: models.LedgerEntryType(q.Get("entry_type")),
	}
	filter.CustomerID, _ = strconv.Atoi(q.Get("customer_id"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))
	if v := q.Get("start_date"); v != "" {
		t, err := timeutil.ParseDate(v)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD", nil)
			return
		}
		start := timeutil.StartOfDay(t)
		filter.StartDate = &start
	}
	if v := q.Get("end_date"); v != "" {
		t, err := timeutil.ParseDate(v)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD", nil)
			return
		}
		end := timeutil.EndOfDay(t)
		filter.EndDate = &end
	}

	entries, err := h.Service.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, entries)
}

func (h *LedgerHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBalance returns one customer's current position.
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	customerID, _ := strconv.Atoi(mux.Vars(r)["customerId"])

	balance, err := h.Service.Balance(r.Context(), customerID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"customer_id": customerID,
		"balance":     balance,
	})
}

func (h *LedgerHandler) ListBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.Service.AllBalances(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, balances)
}

// ListDebtors returns every customer still owing money.
func (h *LedgerHandler) ListDebtors(w http.ResponseWriter, r *http.Request) {
	debtors, err := h.Service.Debtors(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, debtors)
}
