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

type CashBookHandler struct {
	Service *services.CashBookService
}

func NewCashBookHandler(s *services.CashBookService) *CashBookHandler {
	return &CashBookHandler{Service: s}
}

// ListEntries returns one page of the merged cash stream.
func (h *CashBookHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &models.CashBookFilter{
		TransactionType: models.TransactionType(q.Get("transaction_type")),
		Source:          models.CashBookSource(q.Get("source")),
		Search:          q.Get("search"),
		SortBy:          q.Get("sort_by"),
		SortOrder:       q.Get("sort_order"),
	}
	filter.CustomerID, _ = strconv.Atoi(q.Get("customer_id"))
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	if v := q.Get("date"); v != "" {
		t, err := timeutil.ParseDate(v)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "date must be YYYY-MM-DD", nil)
			return
		}
		filter.Date = &t
	}
	if v := q.Get("date_from"); v != "" {
		t, err := timeutil.ParseDate(v)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "date_from must be YYYY-MM-DD", nil)
			return
		}
		filter.DateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := timeutil.ParseDate(v)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "date_to must be YYYY-MM-DD", nil)
			return
		}
		filter.DateTo = &t
	}

	page, err := h.Service.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, page)
}

// GetSummary returns the reconciled day view. Defaults to today.
func (h *CashBookHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	date := timeutil.Now()
	if v := r.URL.Query().Get("date"); v != "" {
		var err error
		date, err = timeutil.ParseDate(v)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "date must be YYYY-MM-DD", nil)
			return
		}
	}

	summary, err := h.Service.Summary(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

func (h *CashBookHandler) SetOpeningBalance(w http.ResponseWriter, r *http.Request) {
	var req models.SetOpeningBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if req.ChangedBy == "" {
		if email, ok := middleware.GetEmailFromContext(r.Context()); ok {
			req.ChangedBy = email
		}
	}

	summary, err := h.Service.SetOpeningBalance(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

func (h *CashBookHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req models.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if req.ReconciledBy == "" {
		if email, ok := middleware.GetEmailFromContext(r.Context()); ok {
			req.ReconciledBy = email
		}
	}

	summary, err := h.Service.Reconcile(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

func (h *CashBookHandler) ListAudits(w http.ResponseWriter, r *http.Request) {
	date, err := timeutil.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "date must be YYYY-MM-DD", nil)
		return
	}

	audits, err := h.Service.Audits(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, audits)
}

func (h *CashBookHandler) CreateManual(w http.ResponseWriter, r *http.Request) {
	var req models.CreateManualTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	t, err := h.Service.CreateManual(r.Context(), &req, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, t)
}

func (h *CashBookHandler) UpdateManual(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateManualTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	t, err := h.Service.UpdateManual(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, t)
}

func (h *CashBookHandler) DeleteManual(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.DeleteManual(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
