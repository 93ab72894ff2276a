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

type EntryHandler struct {
	Service *services.EntryService
}

func NewEntryHandler(s *services.EntryService) *EntryHandler {
	return &EntryHandler{Service: s}
}

func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEntryReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	receipt, err := h.Service.CreateEntry(r.Context(), &req, req.LoadingCharges, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, receipt)
}

func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	receipt, err := h.Service.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, receipt)
}

// GetEntryByReceiptNumber looks a receipt up by its GR number, the handle
// the clearance desk types in.
func (h *EntryHandler) GetEntryByReceiptNumber(w http.ResponseWriter, r *http.Request) {
	receiptNo := mux.Vars(r)["receiptNo"]

	receipt, err := h.Service.GetEntryByReceiptNumber(r.Context(), receiptNo)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, receipt)
}

func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	customerID, _ := strconv.Atoi(q.Get("customer_id"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	receipts, err := h.Service.ListEntries(r.Context(), customerID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, receipts)
}

// GetItemRemaining reports what is left to clear on one lot.
func (h *EntryHandler) GetItemRemaining(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	remaining, err := h.Service.GetRemaining(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, remaining)
}

// GetItemEditable tells the UI whether a lot can still be edited. The
// answer is advisory; the edit itself re-checks in the database.
func (h *EntryHandler) GetItemEditable(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	editable, err := h.Service.IsLotEditable(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"editable": editable})
}

func (h *EntryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateEntryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	item, err := h.Service.UpdateEntryItem(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, item)
}
