package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"coldstore-backend/internal/models"
	"coldstore-backend/internal/repositories"
	"coldstore-backend/internal/timeutil"
)

// DashboardStats is the front-page snapshot.
type DashboardStats struct {
	CustomersTotal    int             `json:"customers_total"`
	EntriesToday      int             `json:"entries_today"`
	ClearancesToday   int             `json:"clearances_today"`
	LotsInStorage     int             `json:"lots_in_storage"`
	CashToday         decimal.Decimal `json:"cash_today"` // Today's closing balance
	TotalOutstanding  decimal.Decimal `json:"total_outstanding"`
	DebtorCount       int             `json:"debtor_count"`
	ExpensesThisMonth decimal.Decimal `json:"expenses_this_month"`
}

// ReportService generates the printable and exportable views: customer
// statements as PDF, the cash book as Excel, daily summaries as CSV.
type ReportService struct {
	DB        *pgxpool.Pool
	Customers *repositories.CustomerRepository
	Ledger    *repositories.LedgerRepository
	Expenses  *repositories.ExpenseRepository
	CashBook  *CashBookService
}

func NewReportService(db *pgxpool.Pool, customers *repositories.CustomerRepository, ledger *repositories.LedgerRepository, expenses *repositories.ExpenseRepository, cashBook *CashBookService) *ReportService {
	return &ReportService{
		DB:        db,
		Customers: customers,
		Ledger:    ledger,
		Expenses:  expenses,
		CashBook:  cashBook,
	}
}

// CustomerStatementPDF renders a customer's full account: every ledger
// movement with a running balance, ending at the amount due.
func (s *ReportService) CustomerStatementPDF(ctx context.Context, customerID int) ([]byte, error) {
	customer, err := s.Customers.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	movements, err := s.Ledger.List(ctx, &models.LedgerFilter{CustomerID: customerID, Limit: 5000})
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Cold Storage - Customer Statement", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Customer Information", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Name: %s", customer.Name), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Phone: %s", customer.Phone), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Village: %s", customer.Village), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Address: %s", customer.Address), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Account Movements", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(28, 7, "Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(72, 7, "Description", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Debit", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Credit", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Balance", "1", 1, "C", true, 0, "")

	// List comes back newest first; the statement reads oldest first.
	pdf.SetFont("Arial", "", 9)
	balance := decimal.Zero
	for i := len(movements) - 1; i >= 0; i-- {
		m := movements[i]
		balance = balance.Add(m.DebitAmount).Sub(m.CreditAmount)

		desc := m.Description
		if len(desc) > 42 {
			desc = desc[:39] + "..."
		}
		pdf.CellFormat(28, 6, m.CreatedAt.In(timeutil.PKT).Format("02-Jan-2006"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(72, 6, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, formatAmount(m.DebitAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, formatAmount(m.CreditAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, balance.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(5)

	if balance.IsPositive() {
		pdf.SetFillColor(255, 200, 200)
	} else {
		pdf.SetFillColor(200, 255, 200)
	}
	pdf.SetFont("Arial", "B", 14)
	text := fmt.Sprintf("Balance Due: Rs. %s", balance.StringFixed(2))
	if !balance.IsPositive() {
		text = "FULLY SETTLED"
	}
	pdf.CellFormat(190, 10, text, "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatAmount(d decimal.Decimal) string {
	if d.IsZero() {
		return "-"
	}
	return d.StringFixed(2)
}

// CashBookExcel exports the merged cash book for a date range as a
// spreadsheet, one row per movement plus a totals row.
func (s *ReportService) CashBookExcel(ctx context.Context, from, to *time.Time) ([]byte, error) {
	filter := &models.CashBookFilter{
		DateFrom:  from,
		DateTo:    to,
		SortOrder: "asc",
		Limit:     500,
	}

	f := excelize.NewFile()
	sheet := "Cash Book"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Source", "Type", "Amount", "Description", "Customer"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	inflows, outflows := decimal.Zero, decimal.Zero
	for page := 1; ; page++ {
		filter.Page = page
		result, err := s.CashBook.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, e := range result.Entries {
			amount, _ := e.Amount.Float64()
			if e.TransactionType == models.TransactionInflow {
				inflows = inflows.Add(e.Amount)
			} else {
				outflows = outflows.Add(e.Amount)
				amount = -amount
			}
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), timeutil.FormatDate(e.Date))
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), string(e.Source))
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), string(e.TransactionType))
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), amount)
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), e.Description)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), e.CustomerName)
			row++
		}
		if page >= result.TotalPages {
			break
		}
	}

	row++
	f.SetCellValue(sheet, fmt.Sprintf("C%d", row), "Total inflows")
	totalIn, _ := inflows.Float64()
	f.SetCellValue(sheet, fmt.Sprintf("D%d", row), totalIn)
	row++
	f.SetCellValue(sheet, fmt.Sprintf("C%d", row), "Total outflows")
	totalOut, _ := outflows.Float64()
	f.SetCellValue(sheet, fmt.Sprintf("D%d", row), totalOut)
	row++
	f.SetCellValue(sheet, fmt.Sprintf("C%d", row), "Net")
	net, _ := inflows.Sub(outflows).Float64()
	f.SetCellValue(sheet, fmt.Sprintf("D%d", row), net)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DailySummaryCSV exports one day's cash movements and the reconciliation
// figures as CSV.
func (s *ReportService) DailySummaryCSV(ctx context.Context, date time.Time) ([]byte, error) {
	summary, err := s.CashBook.Summary(ctx, date)
	if err != nil {
		return nil, err
	}
	day := timeutil.StartOfDay(date)
	page, err := s.CashBook.List(ctx, &models.CashBookFilter{Date: &day, SortOrder: "asc", Limit: 500})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"Daily Cash Summary", timeutil.FormatDate(day)})
	w.Write([]string{"Opening Balance", summary.OpeningBalance.StringFixed(2)})
	w.Write([]string{})
	w.Write([]string{"Source", "Type", "Amount", "Description", "Customer"})
	for _, e := range page.Entries {
		w.Write([]string{
			string(e.Source),
			string(e.TransactionType),
			e.Amount.StringFixed(2),
			e.Description,
			e.CustomerName,
		})
	}
	w.Write([]string{})
	w.Write([]string{"Total Inflows", summary.TotalInflows.StringFixed(2)})
	w.Write([]string{"Total Outflows", summary.TotalOutflows.StringFixed(2)})
	w.Write([]string{"Closing Balance", summary.ClosingBalance.StringFixed(2)})
	reconciled := "no"
	if summary.IsReconciled {
		reconciled = "yes, by " + summary.ReconciledBy
	}
	w.Write([]string{"Reconciled", reconciled})

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Dashboard assembles the landing-page counters in one round of queries.
func (s *ReportService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	today := timeutil.StartOfDay(timeutil.Now())
	tomorrow := today.AddDate(0, 0, 1)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, timeutil.PKT)

	err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&stats.CustomersTotal)
	if err != nil {
		return nil, fmt.Errorf("counting customers: %w", err)
	}
	err = s.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM entry_receipts WHERE entry_date >= $1 AND entry_date < $2`,
		today, tomorrow).Scan(&stats.EntriesToday)
	if err != nil {
		return nil, fmt.Errorf("counting today's entries: %w", err)
	}
	err = s.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM clearance_receipts WHERE clearance_date >= $1 AND clearance_date < $2`,
		today, tomorrow).Scan(&stats.ClearancesToday)
	if err != nil {
		return nil, fmt.Errorf("counting today's clearances: %w", err)
	}
	err = s.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM entry_items WHERE remaining_quantity > 0 OR remaining_kj_quantity > 0`).
		Scan(&stats.LotsInStorage)
	if err != nil {
		return nil, fmt.Errorf("counting lots in storage: %w", err)
	}

	var expenses decimal.Decimal
	err = s.DB.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE expense_date >= $1`,
		monthStart).Scan(&expenses)
	if err != nil {
		return nil, fmt.Errorf("summing month expenses: %w", err)
	}
	stats.ExpensesThisMonth = expenses

	debtors, err := s.Ledger.GetDebtors(ctx)
	if err != nil {
		return nil, err
	}
	stats.DebtorCount = len(debtors)
	outstanding := decimal.Zero
	for _, d := range debtors {
		outstanding = outstanding.Add(d.Balance)
	}
	stats.TotalOutstanding = outstanding

	summary, err := s.CashBook.Summary(ctx, today)
	if err != nil {
		return nil, err
	}
	stats.CashToday = summary.ClosingBalance

	return stats, nil
}
