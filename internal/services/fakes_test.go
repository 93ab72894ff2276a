package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"coldstore-backend/internal/models"
	"coldstore-backend/internal/timeutil"
)

// In-memory stores backing the service tests. The clearance store mirrors
// the real repository's contract: Create re-checks remaining stock under a
// lock and either applies everything or nothing.

type fakeEntryStore struct {
	mu       sync.Mutex
	receipts map[string]*models.EntryReceipt
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{receipts: make(map[string]*models.EntryReceipt)}
}

func (f *fakeEntryStore) add(r *models.EntryReceipt) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receipts[r.ReceiptNumber] = r
}

func (f *fakeEntryStore) GetByReceiptNumber(_ context.Context, no string) (*models.EntryReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.receipts[no]
	if !ok {
		return nil, models.ErrReceiptNotFound
	}
	// Hand out a copy so callers cannot mutate stored state directly.
	cp := *r
	cp.Items = append([]models.EntryItem(nil), r.Items...)
	return &cp, nil
}

type fakeClearanceStore struct {
	mu       sync.Mutex
	entries  *fakeEntryStore
	created  []*models.ClearanceReceipt
	items    [][]models.ClearedItem
	ledger   []models.LedgerEntry
	nextNo   int
	nextID   int
}

func newFakeClearanceStore(entries *fakeEntryStore) *fakeClearanceStore {
	return &fakeClearanceStore{entries: entries}
}

func (f *fakeClearanceStore) NextReceiptNumber(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextNo++
	return fmt.Sprintf("CL-%06d", f.nextNo), nil
}

func (f *fakeClearanceStore) Create(_ context.Context, receipt *models.ClearanceReceipt, items []models.ClearedItem, movements []models.LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := f.entries.receipts[receipt.EntryReceiptNo]

	// Re-validate against live quantities, the way the SQL path does under
	// FOR UPDATE. Reject everything before applying anything.
	var over []models.OverClearanceLine
	for _, item := range items {
		for i := range stored.Items {
			lot := &stored.Items[i]
			if lot.ID != item.EntryItemID {
				continue
			}
			if item.ClearQuantity > lot.RemainingQuantity {
				over = append(over, models.OverClearanceLine{
					EntryItemID: lot.ID, Field: "quantity",
					Requested: item.ClearQuantity, Remaining: lot.RemainingQuantity,
				})
			}
			if item.ClearKjQuantity > lot.RemainingKjQuantity {
				over = append(over, models.OverClearanceLine{
					EntryItemID: lot.ID, Field: "kj_quantity",
					Requested: item.ClearKjQuantity, Remaining: lot.RemainingKjQuantity,
				})
			}
		}
	}
	if len(over) > 0 {
		return &models.OverClearanceError{Lines: over}
	}

	for _, item := range items {
		for i := range stored.Items {
			lot := &stored.Items[i]
			if lot.ID == item.EntryItemID {
				lot.RemainingQuantity -= item.ClearQuantity
				lot.RemainingKjQuantity -= item.ClearKjQuantity
			}
		}
	}

	f.nextID++
	receipt.ID = f.nextID
	receipt.CreatedAt = timeutil.Now()
	f.created = append(f.created, receipt)
	f.items = append(f.items, items)
	f.ledger = append(f.ledger, movements...)
	return nil
}

func (f *fakeClearanceStore) Get(_ context.Context, id int) (*models.ClearanceReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.created {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeClearanceStore) List(context.Context, int, int, int) ([]*models.ClearanceReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.ClearanceReceipt(nil), f.created...), nil
}

func (f *fakeClearanceStore) ListPaidBetween(_ context.Context, from, to *time.Time) ([]*models.ClearanceReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ClearanceReceipt
	for _, r := range f.created {
		if !r.AmountPaid.IsPositive() {
			continue
		}
		if inWindow(r.ClearanceDate, from, to) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeLedgerStore struct {
	mu     sync.Mutex
	rows   []models.LedgerEntry
	nextID int
}

func (f *fakeLedgerStore) Create(_ context.Context, e *models.LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e.ID = f.nextID
	if e.CreatedAt.IsZero() {
		e.CreatedAt = timeutil.Now()
	}
	f.rows = append(f.rows, *e)
	return nil
}

func (f *fakeLedgerStore) Get(_ context.Context, id int) (*models.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			cp := f.rows[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeLedgerStore) GetBalance(_ context.Context, customerID int) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	balance := decimal.Zero
	for _, r := range f.rows {
		if r.CustomerID == customerID {
			balance = balance.Add(r.DebitAmount).Sub(r.CreditAmount)
		}
	}
	return balance, nil
}

func (f *fakeLedgerStore) List(_ context.Context, filter *models.LedgerFilter) ([]models.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.LedgerEntry
	for _, r := range f.rows {
		if filter.CustomerID != 0 && r.CustomerID != filter.CustomerID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeLedgerStore) ListDirectCashBetween(_ context.Context, from, to *time.Time) ([]models.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.LedgerEntry
	for _, r := range f.rows {
		if r.EntryType != models.LedgerTypeDirectCash {
			continue
		}
		if inWindow(r.CreatedAt, from, to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeLedgerStore) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeLedgerStore) GetAllBalances(context.Context) ([]models.CustomerBalance, error) {
	return nil, nil
}

func (f *fakeLedgerStore) GetDebtors(context.Context) ([]models.CustomerBalance, error) {
	return nil, nil
}

type fakeExpenseSource struct {
	rows []models.Expense
}

func (f *fakeExpenseSource) ListBetween(_ context.Context, from, to *time.Time) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range f.rows {
		if inWindow(e.ExpenseDate, from, to) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeCashBookStore struct {
	mu        sync.Mutex
	manual    []models.ManualTransaction
	summaries map[string]*models.DailyCashSummary
	audits    []models.CashBookAudit
	nextID    int
}

func newFakeCashBookStore() *fakeCashBookStore {
	return &fakeCashBookStore{summaries: make(map[string]*models.DailyCashSummary)}
}

func (f *fakeCashBookStore) CreateManual(_ context.Context, t *models.ManualTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t.ID = f.nextID
	t.CreatedAt = timeutil.Now()
	f.manual = append(f.manual, *t)
	return nil
}

func (f *fakeCashBookStore) GetManual(_ context.Context, id int) (*models.ManualTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.manual {
		if f.manual[i].ID == id {
			cp := f.manual[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCashBookStore) ListManualBetween(_ context.Context, from, to *time.Time) ([]models.ManualTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ManualTransaction
	for _, t := range f.manual {
		if inWindow(t.Date, from, to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeCashBookStore) UpdateManual(_ context.Context, t *models.ManualTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.manual {
		if f.manual[i].ID == t.ID {
			f.manual[i] = *t
		}
	}
	return nil
}

func (f *fakeCashBookStore) DeleteManual(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.manual {
		if f.manual[i].ID == id {
			f.manual = append(f.manual[:i], f.manual[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeCashBookStore) GetSummaryState(_ context.Context, date time.Time) (*models.DailyCashSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.summaries[timeutil.FormatDate(date)]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeCashBookStore) GetLatestOverrideOnOrBefore(_ context.Context, date time.Time) (*models.DailyCashSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *models.DailyCashSummary
	for _, s := range f.summaries {
		if !s.OpeningOverridden || s.Date.After(date) {
			continue
		}
		if best == nil || s.Date.After(best.Date) {
			best = s
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (f *fakeCashBookStore) SetOpeningBalance(_ context.Context, s *models.DailyCashSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := timeutil.FormatDate(s.Date)
	existing, ok := f.summaries[key]
	if !ok {
		cp := *s
		cp.UpdatedAt = timeutil.Now()
		f.summaries[key] = &cp
		return nil
	}
	existing.OpeningBalance = s.OpeningBalance
	existing.OpeningOverridden = true
	existing.UpdatedAt = timeutil.Now()
	return nil
}

func (f *fakeCashBookStore) MarkReconciled(_ context.Context, date time.Time, by string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := timeutil.FormatDate(date)
	now := timeutil.Now()
	s, ok := f.summaries[key]
	if !ok {
		s = &models.DailyCashSummary{Date: date}
		f.summaries[key] = s
	}
	s.IsReconciled = true
	s.ReconciledBy = by
	s.ReconciledAt = &now
	s.UpdatedAt = now
	return nil
}

func (f *fakeCashBookStore) CreateAudit(_ context.Context, a *models.CashBookAudit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = len(f.audits) + 1
	a.CreatedAt = timeutil.Now()
	f.audits = append(f.audits, *a)
	return nil
}

func (f *fakeCashBookStore) ListAudits(_ context.Context, date time.Time) ([]models.CashBookAudit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CashBookAudit
	for _, a := range f.audits {
		if timeutil.SameDay(a.SummaryDate, date) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeRefData struct {
	ref *models.ReferenceData
}

func (f *fakeRefData) ReferenceData(context.Context) (*models.ReferenceData, error) {
	return f.ref, nil
}

func inWindow(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}
