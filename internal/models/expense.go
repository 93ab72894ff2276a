package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a pure cash outflow: electricity, diesel, wages, repairs.
// Not coupled to inventory; the cash book picks it up as an outflow source.
type Expense struct {
	ID              int             `json:"id"`
	Category        string          `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	ExpenseDate     time.Time       `json:"expense_date"`
	Description     string          `json:"description"`
	CreatedByUserID int             `json:"created_by_user_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CreateExpenseRequest represents the request body for recording an expense
type CreateExpenseRequest struct {
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate string          `json:"expense_date"` // YYYY-MM-DD, defaults to today
	Description string          `json:"description"`
}

// UpdateExpenseRequest represents the request body for updating an expense
type UpdateExpenseRequest struct {
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate string          `json:"expense_date"`
	Description string          `json:"description"`
}
