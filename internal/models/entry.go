package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryReceipt is one inbound shipment: a vehicle arrives and one or more
// lots (entry items) are placed in storage under a single receipt number.
type EntryReceipt struct {
	ID              int         `json:"id"`
	ReceiptNumber   string      `json:"receipt_number"`
	CustomerID      int         `json:"customer_id"`
	CustomerName    string      `json:"customer_name,omitempty"` // Denormalized for display
	CustomerPhone   string      `json:"customer_phone,omitempty"`
	CarNumber       string      `json:"car_number"`
	EntryDate       time.Time   `json:"entry_date"`
	Description     string      `json:"description"`
	Items           []EntryItem `json:"items,omitempty"`
	CreatedByUserID int         `json:"created_by_user_id"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// EntryItem is the unit of storage (a lot). RemainingQuantity starts equal
// to Quantity and only ever decreases, via clearances. The optional khali
// jali allowance (empty crates handed over with the goods) is tracked and
// priced independently: a flat per-unit fee, not a per-day rent.
type EntryItem struct {
	ID                  int             `json:"id"`
	EntryReceiptID      int             `json:"entry_receipt_id"`
	ProductType         string          `json:"product_type"`
	ProductSubType      string          `json:"product_sub_type"`
	PackType            string          `json:"pack_type"`
	Room                string          `json:"room"`
	BoxNumber           string          `json:"box_number"`
	Marka               string          `json:"marka"` // Marking/brand label on the packs
	Quantity            int             `json:"quantity"`
	RemainingQuantity   int             `json:"remaining_quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"` // Rent per unit per day
	HasKhaliJali        bool            `json:"has_khali_jali"`
	KjQuantity          int             `json:"kj_quantity"`
	RemainingKjQuantity int             `json:"remaining_kj_quantity"`
	KjUnitPrice         decimal.Decimal `json:"kj_unit_price"` // Flat per-unit charge
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// FullyCleared reports whether nothing is left to clear on this lot.
func (i *EntryItem) FullyCleared() bool {
	if i.RemainingQuantity > 0 {
		return false
	}
	return !i.HasKhaliJali || i.RemainingKjQuantity == 0
}

// Touched reports whether any clearance has drawn from this lot. A touched
// lot can no longer be edited.
func (i *EntryItem) Touched() bool {
	if i.RemainingQuantity < i.Quantity {
		return true
	}
	return i.HasKhaliJali && i.RemainingKjQuantity < i.KjQuantity
}

// RemainingStock is the pair the lot tracker hands out.
type RemainingStock struct {
	Quantity   int `json:"quantity"`
	KjQuantity int `json:"kj_quantity"`
}

// CreateEntryItemRequest is one lot line on an inbound receipt.
type CreateEntryItemRequest struct {
	ProductType    string          `json:"product_type"`
	ProductSubType string          `json:"product_sub_type"`
	PackType       string          `json:"pack_type"`
	Room           string          `json:"room"`
	BoxNumber      string          `json:"box_number"`
	Marka          string          `json:"marka"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	HasKhaliJali   bool            `json:"has_khali_jali"`
	KjQuantity     int             `json:"kj_quantity"`
	KjUnitPrice    decimal.Decimal `json:"kj_unit_price"`
}

// CreateEntryReceiptRequest represents the request body for creating an
// inbound receipt with its lots.
type CreateEntryReceiptRequest struct {
	CustomerID  int                      `json:"customer_id"`
	CarNumber   string                   `json:"car_number"`
	EntryDate   string                   `json:"entry_date"` // YYYY-MM-DD, defaults to today
	Description string                   `json:"description"`
	// Optional labour charges billed at the gate; posted to the ledger as
	// an adding_inventory debit when positive.
	LoadingCharges decimal.Decimal          `json:"loading_charges"`
	Items          []CreateEntryItemRequest `json:"items"`
}

// UpdateEntryItemRequest edits the quantity/price fields of a lot. Only
// allowed while the lot is untouched by any clearance.
type UpdateEntryItemRequest struct {
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	KjQuantity  int             `json:"kj_quantity"`
	KjUnitPrice decimal.Decimal `json:"kj_unit_price"`
}
