package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"coldstore-backend/internal/middleware"
	"coldstore-backend/internal/models"
	"coldstore-backend/internal/services"
	"coldstore-backend/internal/timeutil"
	"coldstore-backend/pkg/utils"
)

type ExpenseHandler struct {
	Service *services.ExpenseService
}

func NewExpenseHandler(s *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{Service: s}
}

func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req models.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	expense, err := h.Service.Create(r.Context(), &req, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, expense)
}

func (h *ExpenseHandler) GetExpense(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	expense, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, expense)
}

func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var from, to *time.Time
	if v := q.Get("date_from"); v != "" {
		t, err := timeutil.ParseDate(v)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "date_from must be YYYY-MM-DD", nil)
			return
		}
		start := timeutil.StartOfDay(t)
		from = &start
	}
	if v := q.Get("date_to"); v != "" {
		t, err := timeutil.ParseDate(v)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "date_to must be YYYY-MM-DD", nil)
			return
		}
		end := timeutil.EndOfDay(t)
		to = &end
	}

	expenses, err := h.Service.List(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, expenses)
}

func (h *ExpenseHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	expense, err := h.Service.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, expense)
}

func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
