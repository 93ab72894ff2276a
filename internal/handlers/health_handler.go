package handlers

import (
	"net/http"

	"coldstore-backend/internal/health"
	"coldstore-backend/pkg/utils"
)

type HealthHandler struct {
	Checker *health.HealthChecker
}

func NewHealthHandler(c *health.HealthChecker) *HealthHandler {
	return &HealthHandler{Checker: c}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.Checker.Check(r.Context())
	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	utils.JSON(w, code, status)
}
