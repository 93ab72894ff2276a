package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"coldstore-backend/internal/models"
	"coldstore-backend/internal/services"
	"coldstore-backend/pkg/utils"
)

type CustomerHandler struct {
	Service *services.CustomerService
}

func NewCustomerHandler(s *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{Service: s}
}

func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	customer, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, customer)
}

// GetCustomer returns the customer together with the live ledger balance.
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	customer, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Service.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	customer, err := h.Service.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
