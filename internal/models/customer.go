package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Village   string    `json:"village"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerWithBalance pairs a customer with the derived ledger balance.
// Balance is never stored; it is always SUM(debit) - SUM(credit).
type CustomerWithBalance struct {
	Customer
	Balance decimal.Decimal `json:"balance"`
}

// CreateCustomerRequest represents the request body for creating a customer
type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Village string `json:"village"`
	Address string `json:"address"`
}

// UpdateCustomerRequest represents the request body for updating a customer
type UpdateCustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Village string `json:"village"`
	Address string `json:"address"`
}
