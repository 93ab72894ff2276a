package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"coldstore-backend/internal/middleware"
	"coldstore-backend/internal/models"
	"coldstore-backend/internal/services"
	"coldstore-backend/pkg/utils"
)

type ClearanceHandler struct {
	Service *services.ClearanceService
}

func NewClearanceHandler(s *services.ClearanceService) *ClearanceHandler {
	return &ClearanceHandler{Service: s}
}

func (h *ClearanceHandler) CreateClearance(w http.ResponseWriter, r *http.Request) {
	var req models.CreateClearanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	receipt, err := h.Service.CreateClearance(r.Context(), &req, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, receipt)
}

// PreviewClearance prices a request without committing, so the desk can
// quote the bill before goods move.
func (h *ClearanceHandler) PreviewClearance(w http.ResponseWriter, r *http.Request) {
	var req models.CreateClearanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	receipt, items, err := h.Service.Preview(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	receipt.Items = items
	utils.JSON(w, http.StatusOK, receipt)
}

func (h *ClearanceHandler) GetClearance(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	receipt, err := h.Service.GetClearance(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, receipt)
}

func (h *ClearanceHandler) ListClearances(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	customerID, _ := strconv.Atoi(q.Get("customer_id"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	receipts, err := h.Service.ListClearances(r.Context(), customerID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, receipts)
}
