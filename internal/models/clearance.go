package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClearanceReceipt is one outbound event: goods leave storage and rent
// falls due. Immutable once created; there is no partial undo.
type ClearanceReceipt struct {
	ID              int             `json:"id"`
	ReceiptNumber   string          `json:"receipt_number"`
	EntryReceiptID  int             `json:"entry_receipt_id"`
	EntryReceiptNo  string          `json:"entry_receipt_no"`
	CustomerID      int             `json:"customer_id"`
	CustomerName    string          `json:"customer_name,omitempty"`
	CarNumber       string          `json:"car_number"`
	ClearanceDate   time.Time       `json:"clearance_date"`
	Description     string          `json:"description"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	AmountPaid      decimal.Decimal `json:"amount_paid"` // Cash collected at the gate, if any
	Items           []ClearedItem   `json:"items,omitempty"`
	CreatedByUserID int             `json:"created_by_user_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ClearedItem draws a quantity from exactly one lot and records the rent
// actually charged for it, split into the per-day component and the flat
// khali jali component.
type ClearedItem struct {
	ID                 int             `json:"id"`
	ClearanceReceiptID int             `json:"clearance_receipt_id"`
	EntryItemID        int             `json:"entry_item_id"`
	ClearQuantity      int             `json:"clear_quantity"`
	ClearKjQuantity    int             `json:"clear_kj_quantity"`
	DaysStored         int             `json:"days_stored"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	KjUnitPrice        decimal.Decimal `json:"kj_unit_price"`
	RentAmount         decimal.Decimal `json:"rent_amount"`
	KjAmount           decimal.Decimal `json:"kj_amount"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	CreatedAt          time.Time       `json:"created_at"`
}

// ClearanceItemRequest is one requested line: how much to draw from a lot.
type ClearanceItemRequest struct {
	EntryItemID       int `json:"entry_item_id"`
	QuantityCleared   int `json:"quantity_cleared"`
	KjQuantityCleared int `json:"kj_quantity_cleared"`
}

// CreateClearanceRequest represents the request body for creating a
// clearance against an entry receipt, addressed by receipt number.
type CreateClearanceRequest struct {
	CustomerID     int                    `json:"customer_id"`
	EntryReceiptNo string                 `json:"entry_receipt_no"`
	CarNumber      string                 `json:"car_no"`
	ClearanceDate  string                 `json:"clearance_date"` // YYYY-MM-DD, defaults to today
	Description    string                 `json:"description"`
	AmountPaid     decimal.Decimal        `json:"amount_paid"` // Optional cash payment taken on the spot
	Items          []ClearanceItemRequest `json:"items"`
}
