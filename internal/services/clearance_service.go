package services

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"coldstore-backend/internal/metrics"
	"coldstore-backend/internal/models"
	"coldstore-backend/internal/timeutil"
)

// EntryStore is the slice of the entry repository the clearance flow needs.
type EntryStore interface {
	GetByReceiptNumber(ctx context.Context, receiptNumber string) (*models.EntryReceipt, error)
}

// ClearanceStore persists clearances. Create must apply the receipt, the
// lot decrements and the ledger movements atomically, re-checking remaining
// stock under a row lock.
type ClearanceStore interface {
	NextReceiptNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, receipt *models.ClearanceReceipt, items []models.ClearedItem, movements []models.LedgerEntry) error
	Get(ctx context.Context, id int) (*models.ClearanceReceipt, error)
	List(ctx context.Context, customerID, limit, offset int) ([]*models.ClearanceReceipt, error)
}

// ClearanceService prices and commits outbound clearances.
type ClearanceService struct {
	entries    EntryStore
	clearances ClearanceStore
}

func NewClearanceService(entries EntryStore, clearances ClearanceStore) *ClearanceService {
	return &ClearanceService{entries: entries, clearances: clearances}
}

// CreateClearance resolves the entry receipt, validates the requested lines,
// prices them and commits the whole clearance in one transaction. On
// over-clearance nothing is written and the error lists every offending line.
func (s *ClearanceService) CreateClearance(ctx context.Context, req *models.CreateClearanceRequest, userID int) (*models.ClearanceReceipt, error) {
	if len(req.Items) == 0 {
		return nil, models.ErrEmptySelection
	}
	if req.EntryReceiptNo == "" {
		return nil, &models.ValidationError{Field: "entry_receipt_no", Message: "is required"}
	}
	if req.AmountPaid.IsNegative() {
		return nil, &models.ValidationError{Field: "amount_paid", Message: "cannot be negative"}
	}

	receipt, err := s.entries.GetByReceiptNumber(ctx, req.EntryReceiptNo)
	if err != nil {
		return nil, err
	}
	if req.CustomerID != 0 && req.CustomerID != receipt.CustomerID {
		return nil, &models.ValidationError{Field: "customer_id", Message: "does not match the entry receipt's customer"}
	}

	clearanceDate := timeutil.Now()
	if req.ClearanceDate != "" {
		clearanceDate, err = timeutil.ParseDate(req.ClearanceDate)
		if err != nil {
			return nil, &models.ValidationError{Field: "clearance_date", Message: "must be YYYY-MM-DD"}
		}
	}
	daysStored := DaysStored(receipt.EntryDate, clearanceDate)

	lots := make(map[int]*models.EntryItem, len(receipt.Items))
	for i := range receipt.Items {
		lots[receipt.Items[i].ID] = &receipt.Items[i]
	}

	// First pass against the quantities read outside the transaction. The
	// repository re-checks under FOR UPDATE, so this only exists to fail
	// fast and to catch lines that do not belong to the receipt at all.
	var over []models.OverClearanceLine
	items := make([]models.ClearedItem, 0, len(req.Items))
	total := decimal.Zero
	anyDrawn := false
	for _, line := range req.Items {
		lot, ok := lots[line.EntryItemID]
		if !ok {
			return nil, &models.ValidationError{
				Field:   "entry_item_id",
				Message: fmt.Sprintf("lot %d does not belong to receipt %s", line.EntryItemID, req.EntryReceiptNo),
			}
		}
		if line.QuantityCleared < 0 || line.KjQuantityCleared < 0 {
			return nil, &models.ValidationError{Field: "quantity_cleared", Message: "cannot be negative"}
		}
		if line.KjQuantityCleared > 0 && !lot.HasKhaliJali {
			return nil, &models.ValidationError{
				Field:   "kj_quantity_cleared",
				Message: fmt.Sprintf("lot %d has no khali jali", lot.ID),
			}
		}
		if line.QuantityCleared > lot.RemainingQuantity {
			over = append(over, models.OverClearanceLine{
				EntryItemID: lot.ID, Field: "quantity",
				Requested: line.QuantityCleared, Remaining: lot.RemainingQuantity,
			})
		}
		if line.KjQuantityCleared > lot.RemainingKjQuantity {
			over = append(over, models.OverClearanceLine{
				EntryItemID: lot.ID, Field: "kj_quantity",
				Requested: line.KjQuantityCleared, Remaining: lot.RemainingKjQuantity,
			})
		}
		if line.QuantityCleared > 0 || line.KjQuantityCleared > 0 {
			anyDrawn = true
		}

		item := PriceClearedItem(lot, line, daysStored)
		total = total.Add(item.TotalAmount)
		items = append(items, item)
	}
	if len(over) > 0 {
		metrics.OverClearanceRejections.Inc()
		return nil, &models.OverClearanceError{Lines: over}
	}
	if !anyDrawn {
		return nil, models.ErrEmptySelection
	}

	number, err := s.clearances.NextReceiptNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocating clearance receipt number: %w", err)
	}

	out := &models.ClearanceReceipt{
		ReceiptNumber:   number,
		EntryReceiptID:  receipt.ID,
		EntryReceiptNo:  receipt.ReceiptNumber,
		CustomerID:      receipt.CustomerID,
		CarNumber:       req.CarNumber,
		ClearanceDate:   clearanceDate,
		Description:     req.Description,
		TotalAmount:     total,
		AmountPaid:      req.AmountPaid,
		CreatedByUserID: userID,
	}

	movements := s.buildMovements(out, userID)

	if err := s.clearances.Create(ctx, out, items, movements); err != nil {
		if oce, ok := err.(*models.OverClearanceError); ok {
			metrics.OverClearanceRejections.Inc()
			return nil, oce
		}
		return nil, err
	}

	metrics.ClearancesTotal.Inc()
	log.Printf("[Clearance] created %s against %s: %d lots, total %s, paid %s",
		out.ReceiptNumber, receipt.ReceiptNumber, len(items), total.StringFixed(2), req.AmountPaid.StringFixed(2))
	return out, nil
}

// buildMovements derives the ledger rows a clearance posts: a debit for the
// rent falling due, and a credit when cash was collected on the spot. Both
// carry the clearance back-reference, so they are protected from deletion.
func (s *ClearanceService) buildMovements(receipt *models.ClearanceReceipt, userID int) []models.LedgerEntry {
	movements := []models.LedgerEntry{{
		CustomerID:      receipt.CustomerID,
		EntryType:       models.LedgerTypeClearance,
		Description:     fmt.Sprintf("Rent for clearance %s against %s", receipt.ReceiptNumber, receipt.EntryReceiptNo),
		DebitAmount:     receipt.TotalAmount,
		CreditAmount:    decimal.Zero,
		CreatedByUserID: userID,
	}}
	if receipt.AmountPaid.IsPositive() {
		movements = append(movements, models.LedgerEntry{
			CustomerID:      receipt.CustomerID,
			EntryType:       models.LedgerTypeClearance,
			Description:     fmt.Sprintf("Payment received on clearance %s", receipt.ReceiptNumber),
			DebitAmount:     decimal.Zero,
			CreditAmount:    receipt.AmountPaid,
			CreatedByUserID: userID,
		})
	}
	return movements
}

func (s *ClearanceService) GetClearance(ctx context.Context, id int) (*models.ClearanceReceipt, error) {
	receipt, err := s.clearances.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, models.ErrReceiptNotFound
	}
	return receipt, nil
}

func (s *ClearanceService) ListClearances(ctx context.Context, customerID, limit, offset int) ([]*models.ClearanceReceipt, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.clearances.List(ctx, customerID, limit, offset)
}

// Preview prices a clearance request without committing anything, so the
// front desk can show the customer the bill before goods move.
func (s *ClearanceService) Preview(ctx context.Context, req *models.CreateClearanceRequest) (*models.ClearanceReceipt, []models.ClearedItem, error) {
	if len(req.Items) == 0 {
		return nil, nil, models.ErrEmptySelection
	}
	receipt, err := s.entries.GetByReceiptNumber(ctx, req.EntryReceiptNo)
	if err != nil {
		return nil, nil, err
	}

	clearanceDate := timeutil.Now()
	if req.ClearanceDate != "" {
		clearanceDate, err = timeutil.ParseDate(req.ClearanceDate)
		if err != nil {
			return nil, nil, &models.ValidationError{Field: "clearance_date", Message: "must be YYYY-MM-DD"}
		}
	}
	daysStored := DaysStored(receipt.EntryDate, clearanceDate)

	lots := make(map[int]*models.EntryItem, len(receipt.Items))
	for i := range receipt.Items {
		lots[receipt.Items[i].ID] = &receipt.Items[i]
	}

	total := decimal.Zero
	items := make([]models.ClearedItem, 0, len(req.Items))
	for _, line := range req.Items {
		lot, ok := lots[line.EntryItemID]
		if !ok {
			return nil, nil, &models.ValidationError{
				Field:   "entry_item_id",
				Message: fmt.Sprintf("lot %d does not belong to receipt %s", line.EntryItemID, req.EntryReceiptNo),
			}
		}
		item := PriceClearedItem(lot, line, daysStored)
		total = total.Add(item.TotalAmount)
		items = append(items, item)
	}

	preview := &models.ClearanceReceipt{
		EntryReceiptID: receipt.ID,
		EntryReceiptNo: receipt.ReceiptNumber,
		CustomerID:     receipt.CustomerID,
		ClearanceDate:  clearanceDate,
		TotalAmount:    total,
	}
	return preview, items, nil
}
