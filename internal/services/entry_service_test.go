package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldstore-backend/internal/models"
	"coldstore-backend/internal/timeutil"
)

// fakeEntryReceiptStore backs the entry service tests. UpdateItemIfUntouched
// enforces the same lock the SQL path does: once remaining has dropped below
// the entered quantity the write is refused.
type fakeEntryReceiptStore struct {
	receipts []*models.EntryReceipt
	nextNo   int
	nextID   int
}

func (f *fakeEntryReceiptStore) NextReceiptNumber(context.Context) (string, error) {
	f.nextNo++
	return fmt.Sprintf("GR-%06d", f.nextNo), nil
}

func (f *fakeEntryReceiptStore) Create(_ context.Context, receipt *models.EntryReceipt, _ decimal.Decimal) error {
	f.nextID++
	receipt.ID = f.nextID
	for i := range receipt.Items {
		f.nextID++
		receipt.Items[i].ID = f.nextID
		receipt.Items[i].EntryReceiptID = receipt.ID
	}
	receipt.CreatedAt = timeutil.Now()
	f.receipts = append(f.receipts, receipt)
	return nil
}

func (f *fakeEntryReceiptStore) Get(_ context.Context, id int) (*models.EntryReceipt, error) {
	for _, r := range f.receipts {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeEntryReceiptStore) GetByReceiptNumber(_ context.Context, no string) (*models.EntryReceipt, error) {
	for _, r := range f.receipts {
		if r.ReceiptNumber == no {
			return r, nil
		}
	}
	return nil, models.ErrReceiptNotFound
}

func (f *fakeEntryReceiptStore) List(_ context.Context, customerID, limit, offset int) ([]*models.EntryReceipt, error) {
	var out []*models.EntryReceipt
	for _, r := range f.receipts {
		if customerID != 0 && r.CustomerID != customerID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeEntryReceiptStore) GetItem(_ context.Context, itemID int) (*models.EntryItem, error) {
	for _, r := range f.receipts {
		for i := range r.Items {
			if r.Items[i].ID == itemID {
				cp := r.Items[i]
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeEntryReceiptStore) UpdateItemIfUntouched(_ context.Context, item *models.EntryItem) error {
	for _, r := range f.receipts {
		for i := range r.Items {
			if r.Items[i].ID != item.ID {
				continue
			}
			if r.Items[i].Touched() {
				return models.ErrLotLocked
			}
			r.Items[i] = *item
			return nil
		}
	}
	return models.ErrReceiptNotFound
}

func testRefData() *fakeRefData {
	return &fakeRefData{ref: &models.ReferenceData{
		ProductTypes: []models.ProductType{
			{Name: "potato", SubTypes: []string{"kuroda", "sante"}},
			{Name: "garlic"},
		},
		Rooms:             []string{"R1", "R2"},
		PackTypes:         []string{"bag", "crate"},
		ExpenseCategories: []string{"electricity", "labour"},
	}}
}

func newTestEntryService() (*EntryService, *fakeEntryReceiptStore) {
	store := &fakeEntryReceiptStore{}
	return NewEntryService(store, testRefData()), store
}

func validEntryRequest() *models.CreateEntryReceiptRequest {
	return &models.CreateEntryReceiptRequest{
		CustomerID: 42,
		CarNumber:  "LEB-1234",
		EntryDate:  "2025-03-01",
		Items: []models.CreateEntryItemRequest{
			{
				ProductType:    "potato",
				ProductSubType: "kuroda",
				PackType:       "bag",
				Room:           "R1",
				Marka:          "AK",
				Quantity:       100,
				UnitPrice:      decimal.NewFromInt(2),
				HasKhaliJali:   true,
				KjQuantity:     50,
				KjUnitPrice:    decimal.NewFromInt(3),
			},
		},
	}
}

func TestCreateEntry(t *testing.T) {
	svc, store := newTestEntryService()

	receipt, err := svc.CreateEntry(context.Background(), validEntryRequest(), decimal.Zero, 1)
	require.NoError(t, err)
	assert.Equal(t, "GR-000001", receipt.ReceiptNumber)
	require.Len(t, receipt.Items, 1)

	lot := receipt.Items[0]
	assert.Equal(t, 100, lot.RemainingQuantity, "remaining starts equal to quantity")
	assert.Equal(t, 50, lot.RemainingKjQuantity)

	second, err := svc.CreateEntry(context.Background(), validEntryRequest(), decimal.Zero, 1)
	require.NoError(t, err)
	assert.Equal(t, "GR-000002", second.ReceiptNumber)
	assert.Len(t, store.receipts, 2)
}

func TestCreateEntryValidation(t *testing.T) {
	svc, _ := newTestEntryService()
	var ve *models.ValidationError

	req := validEntryRequest()
	req.CustomerID = 0
	_, err := svc.CreateEntry(context.Background(), req, decimal.Zero, 1)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "customer_id", ve.Field)

	req = validEntryRequest()
	req.Items = nil
	_, err = svc.CreateEntry(context.Background(), req, decimal.Zero, 1)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items", ve.Field)

	req = validEntryRequest()
	req.EntryDate = "01/03/2025"
	_, err = svc.CreateEntry(context.Background(), req, decimal.Zero, 1)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "entry_date", ve.Field)

	_, err = svc.CreateEntry(context.Background(), validEntryRequest(), decimal.NewFromInt(-10), 1)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "loading_charges", ve.Field)
}

func TestCreateEntryChecksReferenceData(t *testing.T) {
	svc, _ := newTestEntryService()
	var ve *models.ValidationError

	req := validEntryRequest()
	req.Items[0].ProductType = "onion"
	_, err := svc.CreateEntry(context.Background(), req, decimal.Zero, 1)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items[0].product_type", ve.Field)

	req = validEntryRequest()
	req.Items[0].ProductSubType = "desiree"
	_, err = svc.CreateEntry(context.Background(), req, decimal.Zero, 1)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items[0].product_type", ve.Field)

	req = validEntryRequest()
	req.Items[0].Room = "R9"
	_, err = svc.CreateEntry(context.Background(), req, decimal.Zero, 1)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items[0].room", ve.Field)

	req = validEntryRequest()
	req.Items[0].PackType = "drum"
	_, err = svc.CreateEntry(context.Background(), req, decimal.Zero, 1)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items[0].pack_type", ve.Field)

	// Rooms and pack types are optional and only checked when given.
	req = validEntryRequest()
	req.Items[0].Room = ""
	req.Items[0].PackType = ""
	_, err = svc.CreateEntry(context.Background(), req, decimal.Zero, 1)
	assert.NoError(t, err)
}

func TestCreateEntryKhaliJaliRules(t *testing.T) {
	svc, _ := newTestEntryService()
	var ve *models.ValidationError

	req := validEntryRequest()
	req.Items[0].KjQuantity = 0
	_, err := svc.CreateEntry(context.Background(), req, decimal.Zero, 1)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items[0].kj_quantity", ve.Field)

	req = validEntryRequest()
	req.Items[0].HasKhaliJali = false
	req.Items[0].KjQuantity = 10
	_, err = svc.CreateEntry(context.Background(), req, decimal.Zero, 1)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items[0].kj_quantity", ve.Field)

	// A plain lot carries no khali jali fields at all.
	req = validEntryRequest()
	req.Items[0].HasKhaliJali = false
	req.Items[0].KjQuantity = 0
	receipt, err := svc.CreateEntry(context.Background(), req, decimal.Zero, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, receipt.Items[0].RemainingKjQuantity)
}

func TestGetRemaining(t *testing.T) {
	svc, store := newTestEntryService()

	receipt, err := svc.CreateEntry(context.Background(), validEntryRequest(), decimal.Zero, 1)
	require.NoError(t, err)
	lotID := receipt.Items[0].ID

	remaining, err := svc.GetRemaining(context.Background(), lotID)
	require.NoError(t, err)
	assert.Equal(t, 100, remaining.Quantity)
	assert.Equal(t, 50, remaining.KjQuantity)

	store.receipts[0].Items[0].RemainingQuantity = 40
	remaining, err = svc.GetRemaining(context.Background(), lotID)
	require.NoError(t, err)
	assert.Equal(t, 40, remaining.Quantity)

	_, err = svc.GetRemaining(context.Background(), 9999)
	assert.ErrorIs(t, err, models.ErrReceiptNotFound)
}

func TestUpdateEntryItem(t *testing.T) {
	svc, _ := newTestEntryService()

	receipt, err := svc.CreateEntry(context.Background(), validEntryRequest(), decimal.Zero, 1)
	require.NoError(t, err)
	lotID := receipt.Items[0].ID

	updated, err := svc.UpdateEntryItem(context.Background(), lotID, &models.UpdateEntryItemRequest{
		Quantity:    120,
		UnitPrice:   decimal.NewFromFloat(2.5),
		KjQuantity:  60,
		KjUnitPrice: decimal.NewFromInt(3),
	})
	require.NoError(t, err)
	assert.Equal(t, 120, updated.Quantity)
	assert.Equal(t, 120, updated.RemainingQuantity, "an edit resets remaining to the new quantity")
	assert.Equal(t, 60, updated.RemainingKjQuantity)
}

func TestUpdateEntryItemLocksAfterClearance(t *testing.T) {
	svc, store := newTestEntryService()

	receipt, err := svc.CreateEntry(context.Background(), validEntryRequest(), decimal.Zero, 1)
	require.NoError(t, err)
	lotID := receipt.Items[0].ID

	editable, err := svc.IsLotEditable(context.Background(), lotID)
	require.NoError(t, err)
	assert.True(t, editable)

	// A clearance draws 30 bags from the lot.
	store.receipts[0].Items[0].RemainingQuantity = 70

	editable, err = svc.IsLotEditable(context.Background(), lotID)
	require.NoError(t, err)
	assert.False(t, editable)

	_, err = svc.UpdateEntryItem(context.Background(), lotID, &models.UpdateEntryItemRequest{
		Quantity:  120,
		UnitPrice: decimal.NewFromInt(2),
	})
	assert.ErrorIs(t, err, models.ErrLotLocked)
}

func TestGetEntryByReceiptNumber(t *testing.T) {
	svc, _ := newTestEntryService()

	created, err := svc.CreateEntry(context.Background(), validEntryRequest(), decimal.Zero, 1)
	require.NoError(t, err)

	found, err := svc.GetEntryByReceiptNumber(context.Background(), created.ReceiptNumber)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetEntryByReceiptNumber(context.Background(), "GR-999999")
	assert.ErrorIs(t, err, models.ErrReceiptNotFound)
}
