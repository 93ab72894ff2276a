package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"coldstore-backend/internal/services"
	"coldstore-backend/pkg/utils"
)

type RefDataHandler struct {
	Service *services.RefDataService
}

func NewRefDataHandler(s *services.RefDataService) *RefDataHandler {
	return &RefDataHandler{Service: s}
}

func (h *RefDataHandler) GetReferenceData(w http.ResponseWriter, r *http.Request) {
	ref, err := h.Service.ReferenceData(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, ref)
}

// UpdateReferenceData replaces one lookup list (admin only, wired in the
// router).
func (h *RefDataHandler) UpdateReferenceData(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var value interface{}
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.Service.Update(r.Context(), key, value); err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
