package services

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"coldstore-backend/internal/models"
	"coldstore-backend/internal/timeutil"
)

// EntryReceiptStore is the slice of the entry repository the entry service
// needs. UpdateItemIfUntouched must refuse the write once any clearance has
// drawn from the lot.
type EntryReceiptStore interface {
	NextReceiptNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, receipt *models.EntryReceipt, loadingCharges decimal.Decimal) error
	Get(ctx context.Context, id int) (*models.EntryReceipt, error)
	GetByReceiptNumber(ctx context.Context, receiptNumber string) (*models.EntryReceipt, error)
	List(ctx context.Context, customerID, limit, offset int) ([]*models.EntryReceipt, error)
	GetItem(ctx context.Context, itemID int) (*models.EntryItem, error)
	UpdateItemIfUntouched(ctx context.Context, item *models.EntryItem) error
}

// ReferenceDataProvider hands out the lookup lists entries are validated
// against.
type ReferenceDataProvider interface {
	ReferenceData(ctx context.Context) (*models.ReferenceData, error)
}

// EntryService creates inbound receipts and tracks lots.
type EntryService struct {
	entries EntryReceiptStore
	refdata ReferenceDataProvider
}

func NewEntryService(entries EntryReceiptStore, refdata ReferenceDataProvider) *EntryService {
	return &EntryService{entries: entries, refdata: refdata}
}

// CreateEntry validates and stores an inbound receipt with its lots. Every
// lot starts with remaining equal to quantity. A positive loadingCharges
// posts an adding_inventory debit on the customer's ledger in the same
// transaction.
func (s *EntryService) CreateEntry(ctx context.Context, req *models.CreateEntryReceiptRequest, loadingCharges decimal.Decimal, userID int) (*models.EntryReceipt, error) {
	if req.CustomerID <= 0 {
		return nil, &models.ValidationError{Field: "customer_id", Message: "is required"}
	}
	if len(req.Items) == 0 {
		return nil, &models.ValidationError{Field: "items", Message: "at least one lot is required"}
	}
	if loadingCharges.IsNegative() {
		return nil, &models.ValidationError{Field: "loading_charges", Message: "cannot be negative"}
	}

	entryDate := timeutil.Now()
	if req.EntryDate != "" {
		var err error
		entryDate, err = timeutil.ParseDate(req.EntryDate)
		if err != nil {
			return nil, &models.ValidationError{Field: "entry_date", Message: "must be YYYY-MM-DD"}
		}
	}

	ref, err := s.refdata.ReferenceData(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading reference data: %w", err)
	}

	items := make([]models.EntryItem, 0, len(req.Items))
	for i, line := range req.Items {
		if err := validateEntryItem(ref, &line, i); err != nil {
			return nil, err
		}
		item := models.EntryItem{
			ProductType:       line.ProductType,
			ProductSubType:    line.ProductSubType,
			PackType:          line.PackType,
			Room:              line.Room,
			BoxNumber:         line.BoxNumber,
			Marka:             line.Marka,
			Quantity:          line.Quantity,
			RemainingQuantity: line.Quantity,
			UnitPrice:         line.UnitPrice,
			HasKhaliJali:      line.HasKhaliJali,
		}
		if line.HasKhaliJali {
			item.KjQuantity = line.KjQuantity
			item.RemainingKjQuantity = line.KjQuantity
			item.KjUnitPrice = line.KjUnitPrice
		}
		items = append(items, item)
	}

	number, err := s.entries.NextReceiptNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocating entry receipt number: %w", err)
	}

	receipt := &models.EntryReceipt{
		ReceiptNumber:   number,
		CustomerID:      req.CustomerID,
		CarNumber:       req.CarNumber,
		EntryDate:       entryDate,
		Description:     req.Description,
		Items:           items,
		CreatedByUserID: userID,
	}
	if err := s.entries.Create(ctx, receipt, loadingCharges); err != nil {
		return nil, err
	}

	log.Printf("[Entry] created %s for customer %d: %d lots", receipt.ReceiptNumber, req.CustomerID, len(items))
	return receipt, nil
}

func validateEntryItem(ref *models.ReferenceData, line *models.CreateEntryItemRequest, idx int) error {
	field := func(name string) string { return fmt.Sprintf("items[%d].%s", idx, name) }

	if line.Quantity <= 0 {
		return &models.ValidationError{Field: field("quantity"), Message: "must be positive"}
	}
	if line.UnitPrice.IsNegative() {
		return &models.ValidationError{Field: field("unit_price"), Message: "cannot be negative"}
	}
	if !ref.HasProduct(line.ProductType, line.ProductSubType) {
		return &models.ValidationError{Field: field("product_type"), Message: fmt.Sprintf("unknown product %q / %q", line.ProductType, line.ProductSubType)}
	}
	if line.PackType != "" && !ref.HasPackType(line.PackType) {
		return &models.ValidationError{Field: field("pack_type"), Message: fmt.Sprintf("unknown pack type %q", line.PackType)}
	}
	if line.Room != "" && !ref.HasRoom(line.Room) {
		return &models.ValidationError{Field: field("room"), Message: fmt.Sprintf("unknown room %q", line.Room)}
	}
	if line.HasKhaliJali {
		if line.KjQuantity <= 0 {
			return &models.ValidationError{Field: field("kj_quantity"), Message: "must be positive when khali jali is enabled"}
		}
		if line.KjUnitPrice.IsNegative() {
			return &models.ValidationError{Field: field("kj_unit_price"), Message: "cannot be negative"}
		}
	} else if line.KjQuantity != 0 {
		return &models.ValidationError{Field: field("kj_quantity"), Message: "must be zero when khali jali is disabled"}
	}
	return nil
}

func (s *EntryService) GetEntry(ctx context.Context, id int) (*models.EntryReceipt, error) {
	receipt, err := s.entries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, models.ErrReceiptNotFound
	}
	return receipt, nil
}

// GetEntryByReceiptNumber looks up a receipt by its GR number, the key the
// clearance desk works with.
func (s *EntryService) GetEntryByReceiptNumber(ctx context.Context, receiptNumber string) (*models.EntryReceipt, error) {
	return s.entries.GetByReceiptNumber(ctx, receiptNumber)
}

func (s *EntryService) ListEntries(ctx context.Context, customerID, limit, offset int) ([]*models.EntryReceipt, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.entries.List(ctx, customerID, limit, offset)
}

// GetRemaining reports what is left on a lot.
func (s *EntryService) GetRemaining(ctx context.Context, itemID int) (*models.RemainingStock, error) {
	item, err := s.entries.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, models.ErrReceiptNotFound
	}
	return &models.RemainingStock{
		Quantity:   item.RemainingQuantity,
		KjQuantity: item.RemainingKjQuantity,
	}, nil
}

// IsLotEditable reports whether no clearance has drawn from the lot yet.
// Advisory only: the actual edit re-checks the same condition in SQL.
func (s *EntryService) IsLotEditable(ctx context.Context, itemID int) (bool, error) {
	item, err := s.entries.GetItem(ctx, itemID)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, models.ErrReceiptNotFound
	}
	return !item.Touched(), nil
}

// UpdateEntryItem edits a lot's quantities and prices. Refused with
// ErrLotLocked once any clearance has touched the lot, since re-pricing a
// partially cleared lot would rewrite rent already charged.
func (s *EntryService) UpdateEntryItem(ctx context.Context, itemID int, req *models.UpdateEntryItemRequest) (*models.EntryItem, error) {
	if req.Quantity <= 0 {
		return nil, &models.ValidationError{Field: "quantity", Message: "must be positive"}
	}
	if req.UnitPrice.IsNegative() {
		return nil, &models.ValidationError{Field: "unit_price", Message: "cannot be negative"}
	}
	if req.KjQuantity < 0 {
		return nil, &models.ValidationError{Field: "kj_quantity", Message: "cannot be negative"}
	}

	item, err := s.entries.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, models.ErrReceiptNotFound
	}

	item.Quantity = req.Quantity
	item.RemainingQuantity = req.Quantity
	item.UnitPrice = req.UnitPrice
	if item.HasKhaliJali {
		item.KjQuantity = req.KjQuantity
		item.RemainingKjQuantity = req.KjQuantity
		item.KjUnitPrice = req.KjUnitPrice
	}

	if err := s.entries.UpdateItemIfUntouched(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}
