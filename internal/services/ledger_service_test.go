package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldstore-backend/internal/models"
)

func TestPostDirectCashSides(t *testing.T) {
	store := &fakeLedgerStore{}
	svc := NewLedgerService(store)

	credit, err := svc.PostDirectCash(context.Background(), &models.CreateLedgerEntryRequest{
		CustomerID: 1, Side: models.LedgerCredit, Amount: decimal.NewFromInt(300),
	}, 1)
	require.NoError(t, err)
	assert.True(t, credit.CreditAmount.Equal(decimal.NewFromInt(300)))
	assert.True(t, credit.DebitAmount.IsZero())
	assert.Equal(t, models.LedgerTypeDirectCash, credit.EntryType)

	debit, err := svc.PostDirectCash(context.Background(), &models.CreateLedgerEntryRequest{
		CustomerID: 1, Side: models.LedgerDebit, Amount: decimal.NewFromInt(100),
	}, 1)
	require.NoError(t, err)
	assert.True(t, debit.DebitAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, debit.CreditAmount.IsZero())
}

func TestPostDirectCashValidation(t *testing.T) {
	svc := NewLedgerService(&fakeLedgerStore{})

	var ve *models.ValidationError

	_, err := svc.PostDirectCash(context.Background(), &models.CreateLedgerEntryRequest{
		CustomerID: 1, Side: "sideways", Amount: decimal.NewFromInt(5),
	}, 1)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "side", ve.Field)

	_, err = svc.PostDirectCash(context.Background(), &models.CreateLedgerEntryRequest{
		CustomerID: 1, Side: models.LedgerCredit, Amount: decimal.NewFromInt(-5),
	}, 1)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "amount", ve.Field)

	_, err = svc.PostDirectCash(context.Background(), &models.CreateLedgerEntryRequest{
		Side: models.LedgerCredit, Amount: decimal.NewFromInt(5),
	}, 1)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "customer_id", ve.Field)
}

// The balance is a pure fold over debits and credits, so the order rows
// were posted in cannot change it.
func TestBalanceIsOrderIndependent(t *testing.T) {
	amounts := []struct {
		side   models.LedgerSide
		amount int64
	}{
		{models.LedgerDebit, 830},
		{models.LedgerCredit, 500},
		{models.LedgerDebit, 120},
		{models.LedgerCredit, 200},
	}

	forward := &fakeLedgerStore{}
	svcF := NewLedgerService(forward)
	for _, a := range amounts {
		_, err := svcF.PostDirectCash(context.Background(), &models.CreateLedgerEntryRequest{
			CustomerID: 1, Side: a.side, Amount: decimal.NewFromInt(a.amount),
		}, 1)
		require.NoError(t, err)
	}

	reverse := &fakeLedgerStore{}
	svcR := NewLedgerService(reverse)
	for i := len(amounts) - 1; i >= 0; i-- {
		_, err := svcR.PostDirectCash(context.Background(), &models.CreateLedgerEntryRequest{
			CustomerID: 1, Side: amounts[i].side, Amount: decimal.NewFromInt(amounts[i].amount),
		}, 1)
		require.NoError(t, err)
	}

	bf, err := svcF.Balance(context.Background(), 1)
	require.NoError(t, err)
	br, err := svcR.Balance(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, bf.Equal(br))
	assert.True(t, bf.Equal(decimal.NewFromInt(250)), "got %s", bf)
}

func TestDeleteRefusesSystemRows(t *testing.T) {
	store := &fakeLedgerStore{}
	svc := NewLedgerService(store)

	receiptID := 3
	require.NoError(t, store.Create(context.Background(), &models.LedgerEntry{
		CustomerID:         1,
		EntryType:          models.LedgerTypeClearance,
		DebitAmount:        decimal.NewFromInt(830),
		ClearanceReceiptID: &receiptID,
	}))

	err := svc.Delete(context.Background(), 1)
	assert.ErrorIs(t, err, models.ErrProtectedLedgerEntry)

	// The row survived.
	entry, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, entry)
}

func TestDeleteManualRow(t *testing.T) {
	store := &fakeLedgerStore{}
	svc := NewLedgerService(store)

	posted, err := svc.PostDirectCash(context.Background(), &models.CreateLedgerEntryRequest{
		CustomerID: 1, Side: models.LedgerCredit, Amount: decimal.NewFromInt(50),
	}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), posted.ID))

	_, err = svc.Get(context.Background(), posted.ID)
	assert.ErrorIs(t, err, ErrLedgerEntryNotFound)
}

func TestDeleteMissingRow(t *testing.T) {
	svc := NewLedgerService(&fakeLedgerStore{})
	assert.ErrorIs(t, svc.Delete(context.Background(), 404), ErrLedgerEntryNotFound)
}
