package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntryType says what produced a ledger movement.
type LedgerEntryType string

const (
	LedgerTypeAddingInventory LedgerEntryType = "adding_inventory" // Goods placed in storage
	LedgerTypeClearance       LedgerEntryType = "clearance"        // Rent charged (and cash taken) on clearance
	LedgerTypeDirectCash      LedgerEntryType = "direct_cash"      // Cash given or received outside a receipt
)

// LedgerSide picks which column of a movement carries the amount.
// Debit increases what the customer owes ("بنام"); credit decreases it
// ("جمع"). Exactly one side is non-zero on every row.
type LedgerSide string

const (
	LedgerDebit  LedgerSide = "debit"
	LedgerCredit LedgerSide = "credit"
)

// LedgerEntry is one append-only movement on a customer's account.
// System-generated rows carry a back-reference to the receipt that created
// them and can never be deleted directly.
type LedgerEntry struct {
	ID                 int             `json:"id"`
	CustomerID         int             `json:"customer_id"`
	CustomerName       string          `json:"customer_name,omitempty"`
	EntryType          LedgerEntryType `json:"entry_type"`
	Description        string          `json:"description"`
	DebitAmount        decimal.Decimal `json:"debit_amount"`
	CreditAmount       decimal.Decimal `json:"credit_amount"`
	EntryReceiptID     *int            `json:"entry_receipt_id,omitempty"`
	ClearanceReceiptID *int            `json:"clearance_receipt_id,omitempty"`
	CreatedByUserID    int             `json:"created_by_user_id"`
	CreatedAt          time.Time       `json:"created_at"`
}

// SystemGenerated reports whether the row was produced by a receipt rather
// than entered by hand. Such rows are protected from deletion.
func (e *LedgerEntry) SystemGenerated() bool {
	return e.EntryReceiptID != nil || e.ClearanceReceiptID != nil
}

// CreateLedgerEntryRequest is the request body for a manual direct-cash
// movement. Side selects debit (loan given) or credit (payment received).
type CreateLedgerEntryRequest struct {
	CustomerID  int             `json:"customer_id"`
	Side        LedgerSide      `json:"side"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// LedgerFilter narrows ledger listings.
type LedgerFilter struct {
	CustomerID int
	EntryType  LedgerEntryType
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}

// CustomerBalance is the derived position of one customer.
type CustomerBalance struct {
	CustomerID  int             `json:"customer_id"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Balance     decimal.Decimal `json:"balance"`
	EntryCount  int             `json:"entry_count"`
}
