package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"coldstore-backend/internal/services"
	"coldstore-backend/internal/timeutil"
	"coldstore-backend/pkg/utils"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(s *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: s}
}

// CustomerStatementPDF streams the customer's account statement.
func (h *ReportHandler) CustomerStatementPDF(w http.ResponseWriter, r *http.Request) {
	customerID, _ := strconv.Atoi(mux.Vars(r)["customerId"])

	data, err := h.Service.CustomerStatementPDF(r.Context(), customerID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=customer_%d_statement.pdf", customerID))
	w.Write(data)
}

// CashBookExcel streams the merged cash book for a date range as xlsx.
func (h *ReportHandler) CashBookExcel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var from, to *time.Time
	if v := q.Get("date_from"); v != "" {
		t, err := timeutil.ParseDate(v)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "date_from must be YYYY-MM-DD", nil)
			return
		}
		from = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := timeutil.ParseDate(v)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "date_to must be YYYY-MM-DD", nil)
			return
		}
		to = &t
	}

	data, err := h.Service.CashBookExcel(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=cashbook.xlsx")
	w.Write(data)
}

// DailySummaryCSV streams one day's cash summary. Defaults to today.
func (h *ReportHandler) DailySummaryCSV(w http.ResponseWriter, r *http.Request) {
	date := timeutil.Now()
	if v := r.URL.Query().Get("date"); v != "" {
		var err error
		date, err = timeutil.ParseDate(v)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "date must be YYYY-MM-DD", nil)
			return
		}
	}

	data, err := h.Service.DailySummaryCSV(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=daily_summary_%s.csv", timeutil.FormatDate(date)))
	w.Write(data)
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Dashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, stats)
}
