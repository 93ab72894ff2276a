package handlers

import (
	"encoding/json"
	"net/http"

	"coldstore-backend/internal/models"
	"coldstore-backend/internal/services"
	"coldstore-backend/pkg/utils"
)

type AuthHandler struct {
	Service *services.UserService
}

func NewAuthHandler(s *services.UserService) *AuthHandler {
	return &AuthHandler{Service: s}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	resp, err := h.Service.Signup(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	resp, err := h.Service.Login(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}
