package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashBookSource tags which subsystem a cash book row came from.
type CashBookSource string

const (
	SourceClearance CashBookSource = "clearance" // Cash collected against a clearance receipt
	SourceLedger    CashBookSource = "ledger"    // Direct-cash ledger movement
	SourceExpense   CashBookSource = "expense"   // Expense ledger (always outflow)
	SourceManual    CashBookSource = "manual"    // Hand-entered cash book transaction
)

// TransactionType is the direction of a cash movement.
type TransactionType string

const (
	TransactionInflow  TransactionType = "inflow"
	TransactionOutflow TransactionType = "outflow"
)

// CashBookEntry is the normalized union row. Every source is reduced to
// this shape before merging, so filtering and sorting never care where a
// row came from. Only manual rows may be edited or deleted through the
// cash book; everything else is read-only here.
type CashBookEntry struct {
	ID              int             `json:"id"`
	Source          CashBookSource  `json:"source"`
	Date            time.Time       `json:"date"`
	TransactionType TransactionType `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	CustomerID      *int            `json:"customer_id,omitempty"`
	CustomerName    string          `json:"customer_name,omitempty"`
	ReferenceID     *int            `json:"reference_id,omitempty"`
	ReferenceType   string          `json:"reference_type,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ManualTransaction is a hand-entered cash book row.
type ManualTransaction struct {
	ID              int             `json:"id"`
	Date            time.Time       `json:"date"`
	TransactionType TransactionType `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	CustomerID      *int            `json:"customer_id,omitempty"`
	CreatedByUserID int             `json:"created_by_user_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CreateManualTransactionRequest is the request body for a manual row.
type CreateManualTransactionRequest struct {
	Date            string          `json:"date"` // YYYY-MM-DD, defaults to today
	TransactionType TransactionType `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	CustomerID      *int            `json:"customer_id,omitempty"`
}

// UpdateManualTransactionRequest edits a manual row in place.
type UpdateManualTransactionRequest struct {
	Date            string          `json:"date"`
	TransactionType TransactionType `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	CustomerID      *int            `json:"customer_id,omitempty"`
}

// CashBookFilter narrows and pages the merged stream.
type CashBookFilter struct {
	Date            *time.Time
	DateFrom        *time.Time
	DateTo          *time.Time
	TransactionType TransactionType
	Source          CashBookSource
	CustomerID      int
	Search          string
	SortBy          string // "date" or "amount"
	SortOrder       string // "asc" or "desc"
	Page            int
	Limit           int
}

// CashBookPage is one page of the merged stream plus paging metadata.
type CashBookPage struct {
	Entries    []CashBookEntry `json:"entries"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// DailyCashSummary is the reconciled day view. Opening balance comes from
// an explicit override when one was set for the date, otherwise it is
// rolled forward from the previous day's closing. Totals and closing are
// always recomputed from the sources, never stored.
type DailyCashSummary struct {
	Date              time.Time       `json:"date"`
	OpeningBalance    decimal.Decimal `json:"opening_balance"`
	OpeningOverridden bool            `json:"opening_overridden"`
	TotalInflows      decimal.Decimal `json:"total_inflows"`
	TotalOutflows     decimal.Decimal `json:"total_outflows"`
	ClosingBalance    decimal.Decimal `json:"closing_balance"`
	IsReconciled      bool            `json:"is_reconciled"`
	ReconciledBy      string          `json:"reconciled_by,omitempty"`
	ReconciledAt      *time.Time      `json:"reconciled_at,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// SetOpeningBalanceRequest overrides a day's opening balance.
type SetOpeningBalanceRequest struct {
	Date           string          `json:"date"` // YYYY-MM-DD
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ChangeReason   string          `json:"change_reason"`
	ChangedBy      string          `json:"changed_by"`
}

// ReconcileRequest marks a day's summary as reconciled against counted cash.
type ReconcileRequest struct {
	Date         string `json:"date"`
	ReconciledBy string `json:"reconciled_by"`
}

// CashBookAudit records a significant opening-balance change.
type CashBookAudit struct {
	ID           int             `json:"id"`
	SummaryDate  time.Time       `json:"summary_date"`
	OldValue     decimal.Decimal `json:"old_value"`
	NewValue     decimal.Decimal `json:"new_value"`
	ChangeReason string          `json:"change_reason"`
	ChangedBy    string          `json:"changed_by"`
	CreatedAt    time.Time       `json:"created_at"`
}
