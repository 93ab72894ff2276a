package models

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors. Handlers translate these into the
// {success:false, error, details} envelope; services return them as-is and
// never swallow them.
var (
	ErrReceiptNotFound       = errors.New("entry receipt not found")
	ErrEmptySelection        = errors.New("no items selected for clearance")
	ErrLotLocked             = errors.New("lot has been partially or fully cleared and can no longer be edited")
	ErrProtectedLedgerEntry  = errors.New("system-generated ledger entry cannot be deleted; delete or adjust the originating receipt instead")
	ErrInvalidOpeningBalance = errors.New("opening balance cannot be negative")
)

// ValidationError is a schema-level failure attributed to one field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// OverClearanceLine names one lot whose requested quantity exceeds what is
// left, and by how much.
type OverClearanceLine struct {
	EntryItemID int    `json:"entry_item_id"`
	Field       string `json:"field"` // "quantity" or "kj_quantity"
	Requested   int    `json:"requested"`
	Remaining   int    `json:"remaining"`
}

// OverClearanceError rejects a clearance request whose lines ask for more
// than the lots still hold. It lists every offending line so the caller can
// fix the whole request at once.
type OverClearanceError struct {
	Lines []OverClearanceLine
}

func (e *OverClearanceError) Error() string {
	parts := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		parts = append(parts, fmt.Sprintf("lot %d: requested %d %s, only %d remaining",
			l.EntryItemID, l.Requested, l.Field, l.Remaining))
	}
	return "requested quantity exceeds remaining stock: " + strings.Join(parts, "; ")
}
