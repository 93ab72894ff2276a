package handlers

import (
	"errors"
	"net/http"

	"coldstore-backend/internal/models"
	"coldstore-backend/internal/services"
	"coldstore-backend/pkg/utils"
)

// writeError maps domain errors onto the JSON error envelope. Anything
// unrecognized is a 500 with the bare message.
func writeError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		utils.Error(w, http.StatusBadRequest, ve.Message, ve)
		return
	}

	var oce *models.OverClearanceError
	if errors.As(err, &oce) {
		utils.Error(w, http.StatusConflict, "requested quantity exceeds remaining stock", oce.Lines)
		return
	}

	switch {
	case errors.Is(err, models.ErrReceiptNotFound),
		errors.Is(err, services.ErrCustomerNotFound),
		errors.Is(err, services.ErrExpenseNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrLedgerEntryNotFound):
		utils.Error(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, models.ErrEmptySelection),
		errors.Is(err, models.ErrInvalidOpeningBalance):
		utils.Error(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, models.ErrLotLocked):
		utils.Error(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, models.ErrProtectedLedgerEntry):
		utils.Error(w, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.Error(w, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, services.ErrAccountDisabled):
		utils.Error(w, http.StatusForbidden, err.Error(), nil)
	default:
		utils.Error(w, http.StatusInternalServerError, err.Error(), nil)
	}
}
