package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"coldstore-backend/internal/models"
	"coldstore-backend/internal/timeutil"
)

// ClearancePaymentSource lists clearances that collected cash at the gate.
type ClearancePaymentSource interface {
	ListPaidBetween(ctx context.Context, from, to *time.Time) ([]*models.ClearanceReceipt, error)
}

// DirectCashSource lists direct-cash ledger movements.
type DirectCashSource interface {
	ListDirectCashBetween(ctx context.Context, from, to *time.Time) ([]models.LedgerEntry, error)
}

// ExpenseSource lists expenses.
type ExpenseSource interface {
	ListBetween(ctx context.Context, from, to *time.Time) ([]models.Expense, error)
}

// CashBookStore persists manual transactions and the per-day summary state
// (opening-balance overrides and reconciliation marks).
type CashBookStore interface {
	CreateManual(ctx context.Context, t *models.ManualTransaction) error
	GetManual(ctx context.Context, id int) (*models.ManualTransaction, error)
	ListManualBetween(ctx context.Context, from, to *time.Time) ([]models.ManualTransaction, error)
	UpdateManual(ctx context.Context, t *models.ManualTransaction) error
	DeleteManual(ctx context.Context, id int) error
	GetSummaryState(ctx context.Context, date time.Time) (*models.DailyCashSummary, error)
	GetLatestOverrideOnOrBefore(ctx context.Context, date time.Time) (*models.DailyCashSummary, error)
	SetOpeningBalance(ctx context.Context, s *models.DailyCashSummary) error
	MarkReconciled(ctx context.Context, date time.Time, by string) error
	CreateAudit(ctx context.Context, a *models.CashBookAudit) error
	ListAudits(ctx context.Context, date time.Time) ([]models.CashBookAudit, error)
}

// CashBookService merges the four cash sources into one stream and keeps the
// daily reconciliation view. Nothing is duplicated into cash book storage:
// clearance payments, direct-cash movements and expenses stay where they
// live and are read on demand, so the view can never drift out of sync.
type CashBookService struct {
	clearances ClearancePaymentSource
	ledger     DirectCashSource
	expenses   ExpenseSource
	store      CashBookStore

	// Opening-balance changes larger than this get an audit row.
	auditThreshold decimal.Decimal
}

func NewCashBookService(clearances ClearancePaymentSource, ledger DirectCashSource, expenses ExpenseSource, store CashBookStore, auditThreshold decimal.Decimal) *CashBookService {
	return &CashBookService{
		clearances:     clearances,
		ledger:         ledger,
		expenses:       expenses,
		store:          store,
		auditThreshold: auditThreshold,
	}
}

// collect pulls every source for the window and normalizes the rows. A nil
// bound means unbounded on that side.
func (s *CashBookService) collect(ctx context.Context, from, to *time.Time) ([]models.CashBookEntry, error) {
	var entries []models.CashBookEntry

	paid, err := s.clearances.ListPaidBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("reading clearance payments: %w", err)
	}
	for _, c := range paid {
		entries = append(entries, normalizeClearance(c))
	}

	cash, err := s.ledger.ListDirectCashBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("reading direct cash movements: %w", err)
	}
	for i := range cash {
		entries = append(entries, normalizeDirectCash(&cash[i]))
	}

	exp, err := s.expenses.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("reading expenses: %w", err)
	}
	for i := range exp {
		entries = append(entries, normalizeExpense(&exp[i]))
	}

	manual, err := s.store.ListManualBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("reading manual transactions: %w", err)
	}
	for i := range manual {
		entries = append(entries, normalizeManual(&manual[i]))
	}

	return entries, nil
}

func normalizeClearance(c *models.ClearanceReceipt) models.CashBookEntry {
	id := c.ID
	customerID := c.CustomerID
	return models.CashBookEntry{
		ID:              c.ID,
		Source:          models.SourceClearance,
		Date:            c.ClearanceDate,
		TransactionType: models.TransactionInflow,
		Amount:          c.AmountPaid,
		Description:     fmt.Sprintf("Payment on clearance %s", c.ReceiptNumber),
		CustomerID:      &customerID,
		CustomerName:    c.CustomerName,
		ReferenceID:     &id,
		ReferenceType:   "clearance_receipt",
		CreatedAt:       c.CreatedAt,
	}
}

func normalizeDirectCash(e *models.LedgerEntry) models.CashBookEntry {
	id := e.ID
	customerID := e.CustomerID
	out := models.CashBookEntry{
		ID:            e.ID,
		Source:        models.SourceLedger,
		Date:          e.CreatedAt,
		Description:   e.Description,
		CustomerID:    &customerID,
		CustomerName:  e.CustomerName,
		ReferenceID:   &id,
		ReferenceType: "ledger_entry",
		CreatedAt:     e.CreatedAt,
	}
	// Credit is cash coming in; debit is cash handed out as a loan.
	if e.CreditAmount.IsPositive() {
		out.TransactionType = models.TransactionInflow
		out.Amount = e.CreditAmount
	} else {
		out.TransactionType = models.TransactionOutflow
		out.Amount = e.DebitAmount
	}
	return out
}

func normalizeExpense(e *models.Expense) models.CashBookEntry {
	id := e.ID
	desc := e.Category
	if e.Description != "" {
		desc = e.Category + ": " + e.Description
	}
	return models.CashBookEntry{
		ID:              e.ID,
		Source:          models.SourceExpense,
		Date:            e.ExpenseDate,
		TransactionType: models.TransactionOutflow,
		Amount:          e.Amount,
		Description:     desc,
		ReferenceID:     &id,
		ReferenceType:   "expense",
		CreatedAt:       e.CreatedAt,
	}
}

func normalizeManual(t *models.ManualTransaction) models.CashBookEntry {
	return models.CashBookEntry{
		ID:              t.ID,
		Source:          models.SourceManual,
		Date:            t.Date,
		TransactionType: t.TransactionType,
		Amount:          t.Amount,
		Description:     t.Description,
		CustomerID:      t.CustomerID,
		CreatedAt:       t.CreatedAt,
	}
}

// List returns one page of the merged stream.
func (s *CashBookService) List(ctx context.Context, filter *models.CashBookFilter) (*models.CashBookPage, error) {
	var from, to *time.Time
	switch {
	case filter.Date != nil:
		f := timeutil.StartOfDay(*filter.Date)
		t := timeutil.EndOfDay(*filter.Date)
		from, to = &f, &t
	default:
		if filter.DateFrom != nil {
			f := timeutil.StartOfDay(*filter.DateFrom)
			from = &f
		}
		if filter.DateTo != nil {
			t := timeutil.EndOfDay(*filter.DateTo)
			to = &t
		}
	}

	entries, err := s.collect(ctx, from, to)
	if err != nil {
		return nil, err
	}

	filtered := entries[:0]
	search := strings.ToLower(filter.Search)
	for _, e := range entries {
		if filter.TransactionType != "" && e.TransactionType != filter.TransactionType {
			continue
		}
		if filter.Source != "" && e.Source != filter.Source {
			continue
		}
		if filter.CustomerID != 0 && (e.CustomerID == nil || *e.CustomerID != filter.CustomerID) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Description), search) &&
			!strings.Contains(strings.ToLower(e.CustomerName), search) {
			continue
		}
		filtered = append(filtered, e)
	}

	sortEntries(filtered, filter.SortBy, filter.SortOrder)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	total := len(filtered)
	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &models.CashBookPage{
		Entries:    filtered[start:end],
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func sortEntries(entries []models.CashBookEntry, sortBy, sortOrder string) {
	asc := sortOrder == "asc"
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		var less bool
		switch sortBy {
		case "amount":
			if a.Amount.Equal(b.Amount) {
				less = a.Date.Before(b.Date)
			} else {
				less = a.Amount.LessThan(b.Amount)
			}
		default: // date
			if a.Date.Equal(b.Date) {
				less = a.CreatedAt.Before(b.CreatedAt)
			} else {
				less = a.Date.Before(b.Date)
			}
		}
		if asc {
			return less
		}
		return !less
	})
}

// Summary builds the day view. Opening balance obeys an override set for
// the day itself; otherwise it is rolled forward from the nearest earlier
// override (or zero) plus every flow in between. Totals and closing are
// always recomputed from the sources, so calling this never changes state.
func (s *CashBookService) Summary(ctx context.Context, date time.Time) (*models.DailyCashSummary, error) {
	day := timeutil.StartOfDay(date)

	state, err := s.store.GetSummaryState(ctx, day)
	if err != nil {
		return nil, err
	}

	opening, overridden, err := s.openingBalance(ctx, day, state)
	if err != nil {
		return nil, err
	}

	dayStart := day
	dayEnd := timeutil.EndOfDay(day)
	entries, err := s.collect(ctx, &dayStart, &dayEnd)
	if err != nil {
		return nil, err
	}

	inflows, outflows := decimal.Zero, decimal.Zero
	for _, e := range entries {
		if e.TransactionType == models.TransactionInflow {
			inflows = inflows.Add(e.Amount)
		} else {
			outflows = outflows.Add(e.Amount)
		}
	}

	summary := &models.DailyCashSummary{
		Date:              day,
		OpeningBalance:    opening,
		OpeningOverridden: overridden,
		TotalInflows:      inflows,
		TotalOutflows:     outflows,
		ClosingBalance:    opening.Add(inflows).Sub(outflows),
		UpdatedAt:         timeutil.Now(),
	}
	if state != nil {
		summary.IsReconciled = state.IsReconciled
		summary.ReconciledBy = state.ReconciledBy
		summary.ReconciledAt = state.ReconciledAt
		summary.UpdatedAt = state.UpdatedAt
	}
	return summary, nil
}

// openingBalance resolves a day's opening: the day's own override if set,
// otherwise the nearest earlier override (or zero) plus the net of every
// flow from the anchor day up to and including the previous day.
func (s *CashBookService) openingBalance(ctx context.Context, day time.Time, state *models.DailyCashSummary) (decimal.Decimal, bool, error) {
	if state != nil && state.OpeningOverridden {
		return state.OpeningBalance, true, nil
	}

	prevEnd := timeutil.EndOfDay(day.AddDate(0, 0, -1))
	anchor, err := s.store.GetLatestOverrideOnOrBefore(ctx, timeutil.StartOfDay(prevEnd))
	if err != nil {
		return decimal.Zero, false, err
	}

	opening := decimal.Zero
	var from *time.Time
	if anchor != nil {
		opening = anchor.OpeningBalance
		anchorStart := timeutil.StartOfDay(anchor.Date)
		from = &anchorStart
	}

	entries, err := s.collect(ctx, from, &prevEnd)
	if err != nil {
		return decimal.Zero, false, err
	}
	for _, e := range entries {
		if e.TransactionType == models.TransactionInflow {
			opening = opening.Add(e.Amount)
		} else {
			opening = opening.Sub(e.Amount)
		}
	}
	return opening, false, nil
}

// SetOpeningBalance overrides a day's opening balance. Changes bigger than
// the audit threshold get an audit row recording who moved what and why.
func (s *CashBookService) SetOpeningBalance(ctx context.Context, req *models.SetOpeningBalanceRequest) (*models.DailyCashSummary, error) {
	day, err := timeutil.ParseDate(req.Date)
	if err != nil {
		return nil, &models.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	if req.OpeningBalance.IsNegative() {
		return nil, models.ErrInvalidOpeningBalance
	}

	before, err := s.Summary(ctx, day)
	if err != nil {
		return nil, err
	}

	if req.OpeningBalance.Sub(before.OpeningBalance).Abs().GreaterThan(s.auditThreshold) {
		audit := &models.CashBookAudit{
			SummaryDate:  timeutil.StartOfDay(day),
			OldValue:     before.OpeningBalance,
			NewValue:     req.OpeningBalance,
			ChangeReason: req.ChangeReason,
			ChangedBy:    req.ChangedBy,
		}
		if err := s.store.CreateAudit(ctx, audit); err != nil {
			return nil, fmt.Errorf("recording opening balance audit: %w", err)
		}
		log.Printf("[CashBook] significant opening balance change on %s: %s -> %s by %s",
			req.Date, before.OpeningBalance.StringFixed(2), req.OpeningBalance.StringFixed(2), req.ChangedBy)
	}

	if err := s.store.SetOpeningBalance(ctx, &models.DailyCashSummary{
		Date:              timeutil.StartOfDay(day),
		OpeningBalance:    req.OpeningBalance,
		OpeningOverridden: true,
	}); err != nil {
		return nil, err
	}
	return s.Summary(ctx, day)
}

// Reconcile marks a day as checked against counted cash.
func (s *CashBookService) Reconcile(ctx context.Context, req *models.ReconcileRequest) (*models.DailyCashSummary, error) {
	day, err := timeutil.ParseDate(req.Date)
	if err != nil {
		return nil, &models.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	if req.ReconciledBy == "" {
		return nil, &models.ValidationError{Field: "reconciled_by", Message: "is required"}
	}
	if err := s.store.MarkReconciled(ctx, timeutil.StartOfDay(day), req.ReconciledBy); err != nil {
		return nil, err
	}
	return s.Summary(ctx, day)
}

func (s *CashBookService) Audits(ctx context.Context, date time.Time) ([]models.CashBookAudit, error) {
	return s.store.ListAudits(ctx, timeutil.StartOfDay(date))
}

// CreateManual records a hand-entered cash row.
func (s *CashBookService) CreateManual(ctx context.Context, req *models.CreateManualTransactionRequest, userID int) (*models.ManualTransaction, error) {
	if err := validateManual(req.TransactionType, req.Amount); err != nil {
		return nil, err
	}
	date := timeutil.Now()
	if req.Date != "" {
		var err error
		date, err = timeutil.ParseDate(req.Date)
		if err != nil {
			return nil, &models.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
		}
	}
	t := &models.ManualTransaction{
		Date:            date,
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		Description:     req.Description,
		CustomerID:      req.CustomerID,
		CreatedByUserID: userID,
	}
	if err := s.store.CreateManual(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateManual edits a manual row. Rows from the other sources never reach
// this path; they are owned by their subsystems.
func (s *CashBookService) UpdateManual(ctx context.Context, id int, req *models.UpdateManualTransactionRequest) (*models.ManualTransaction, error) {
	if err := validateManual(req.TransactionType, req.Amount); err != nil {
		return nil, err
	}
	t, err := s.store.GetManual(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &models.ValidationError{Field: "id", Message: "manual transaction not found"}
	}
	if req.Date != "" {
		date, err := timeutil.ParseDate(req.Date)
		if err != nil {
			return nil, &models.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
		}
		t.Date = date
	}
	t.TransactionType = req.TransactionType
	t.Amount = req.Amount
	t.Description = req.Description
	t.CustomerID = req.CustomerID
	if err := s.store.UpdateManual(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CashBookService) DeleteManual(ctx context.Context, id int) error {
	t, err := s.store.GetManual(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return &models.ValidationError{Field: "id", Message: "manual transaction not found"}
	}
	return s.store.DeleteManual(ctx, id)
}

func validateManual(tt models.TransactionType, amount decimal.Decimal) error {
	if tt != models.TransactionInflow && tt != models.TransactionOutflow {
		return &models.ValidationError{Field: "transaction_type", Message: "must be inflow or outflow"}
	}
	if !amount.IsPositive() {
		return &models.ValidationError{Field: "amount", Message: "must be positive"}
	}
	return nil
}
