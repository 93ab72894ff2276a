package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldstore-backend/internal/models"
	"coldstore-backend/internal/timeutil"
)

type cashBookEnv struct {
	clearances *fakeClearanceStore
	ledger     *fakeLedgerStore
	expenses   *fakeExpenseSource
	store      *fakeCashBookStore
	svc        *CashBookService
}

func newCashBookEnv() *cashBookEnv {
	env := &cashBookEnv{
		clearances: newFakeClearanceStore(newFakeEntryStore()),
		ledger:     &fakeLedgerStore{},
		expenses:   &fakeExpenseSource{},
		store:      newFakeCashBookStore(),
	}
	env.svc = NewCashBookService(env.clearances, env.ledger, env.expenses, env.store, decimal.NewFromInt(1000))
	return env
}

func (env *cashBookEnv) addClearancePayment(day time.Time, paid int64, receiptNo, customer string) {
	env.clearances.created = append(env.clearances.created, &models.ClearanceReceipt{
		ID:            len(env.clearances.created) + 1,
		ReceiptNumber: receiptNo,
		CustomerID:    1,
		CustomerName:  customer,
		ClearanceDate: day,
		AmountPaid:    decimal.NewFromInt(paid),
		CreatedAt:     day,
	})
}

func (env *cashBookEnv) addDirectCash(day time.Time, side models.LedgerSide, amount int64, desc string) {
	e := &models.LedgerEntry{
		CustomerID:  1,
		EntryType:   models.LedgerTypeDirectCash,
		Description: desc,
		CreatedAt:   day,
	}
	if side == models.LedgerDebit {
		e.DebitAmount = decimal.NewFromInt(amount)
	} else {
		e.CreditAmount = decimal.NewFromInt(amount)
	}
	_ = env.ledger.Create(context.Background(), e)
}

func (env *cashBookEnv) addExpense(day time.Time, amount int64, category, desc string) {
	env.expenses.rows = append(env.expenses.rows, models.Expense{
		ID:          len(env.expenses.rows) + 1,
		Category:    category,
		Description: desc,
		Amount:      decimal.NewFromInt(amount),
		ExpenseDate: day,
		CreatedAt:   day,
	})
}

func TestCashBookMergesAllSources(t *testing.T) {
	env := newCashBookEnv()
	day := pktDate(2025, time.March, 10)

	env.addClearancePayment(day, 500, "CL-000001", "Akbar Khan")
	env.addDirectCash(day, models.LedgerDebit, 200, "loan to customer")
	env.addExpense(day, 150, "electricity", "march bill")
	_, err := env.svc.CreateManual(context.Background(), &models.CreateManualTransactionRequest{
		Date:            "2025-03-10",
		TransactionType: models.TransactionInflow,
		Amount:          decimal.NewFromInt(75),
		Description:     "scrap sale",
	}, 1)
	require.NoError(t, err)

	page, err := env.svc.List(context.Background(), &models.CashBookFilter{Date: &day})
	require.NoError(t, err)
	require.Len(t, page.Entries, 4)

	bySource := make(map[models.CashBookSource]models.CashBookEntry)
	for _, e := range page.Entries {
		bySource[e.Source] = e
	}

	cl := bySource[models.SourceClearance]
	assert.Equal(t, models.TransactionInflow, cl.TransactionType)
	assert.True(t, cl.Amount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "clearance_receipt", cl.ReferenceType)
	assert.Equal(t, "Akbar Khan", cl.CustomerName)

	lg := bySource[models.SourceLedger]
	assert.Equal(t, models.TransactionOutflow, lg.TransactionType, "a debit is cash going out")
	assert.True(t, lg.Amount.Equal(decimal.NewFromInt(200)))

	ex := bySource[models.SourceExpense]
	assert.Equal(t, models.TransactionOutflow, ex.TransactionType)
	assert.Equal(t, "electricity: march bill", ex.Description)

	mn := bySource[models.SourceManual]
	assert.True(t, mn.Amount.Equal(decimal.NewFromInt(75)))
}

func TestCashBookListFilters(t *testing.T) {
	env := newCashBookEnv()
	day := pktDate(2025, time.March, 10)

	env.addClearancePayment(day, 500, "CL-000001", "Akbar Khan")
	env.addDirectCash(day, models.LedgerCredit, 300, "part payment")
	env.addExpense(day, 150, "diesel", "generator")

	page, err := env.svc.List(context.Background(), &models.CashBookFilter{
		Date:            &day,
		TransactionType: models.TransactionOutflow,
	})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, models.SourceExpense, page.Entries[0].Source)

	page, err = env.svc.List(context.Background(), &models.CashBookFilter{
		Date:   &day,
		Search: "akbar",
	})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, models.SourceClearance, page.Entries[0].Source)

	page, err = env.svc.List(context.Background(), &models.CashBookFilter{
		Date:   &day,
		Source: models.SourceLedger,
	})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
}

func TestCashBookSortAndPaginate(t *testing.T) {
	env := newCashBookEnv()
	for d := 1; d <= 5; d++ {
		env.addExpense(pktDate(2025, time.March, d), int64(d*10), "misc", "")
	}

	from := pktDate(2025, time.March, 1)
	to := pktDate(2025, time.March, 31)

	page, err := env.svc.List(context.Background(), &models.CashBookFilter{
		DateFrom: &from, DateTo: &to,
		SortBy: "date", SortOrder: "asc",
		Page: 2, Limit: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, pktDate(2025, time.March, 3), page.Entries[0].Date)
	assert.Equal(t, pktDate(2025, time.March, 4), page.Entries[1].Date)

	// Default order is newest first.
	page, err = env.svc.List(context.Background(), &models.CashBookFilter{
		DateFrom: &from, DateTo: &to,
	})
	require.NoError(t, err)
	assert.Equal(t, pktDate(2025, time.March, 5), page.Entries[0].Date)
}

func TestSummaryClosingEquation(t *testing.T) {
	env := newCashBookEnv()
	day := pktDate(2025, time.March, 10)

	_, err := env.svc.SetOpeningBalance(context.Background(), &models.SetOpeningBalanceRequest{
		Date:           "2025-03-10",
		OpeningBalance: decimal.NewFromInt(2000),
		ChangeReason:   "counted float",
		ChangedBy:      "admin@example.com",
	})
	require.NoError(t, err)

	env.addClearancePayment(day, 800, "CL-000001", "Akbar Khan")
	env.addExpense(day, 300, "labour", "")

	summary, err := env.svc.Summary(context.Background(), day)
	require.NoError(t, err)
	assert.True(t, summary.OpeningOverridden)
	assert.True(t, summary.OpeningBalance.Equal(decimal.NewFromInt(2000)))
	assert.True(t, summary.TotalInflows.Equal(decimal.NewFromInt(800)))
	assert.True(t, summary.TotalOutflows.Equal(decimal.NewFromInt(300)))
	assert.True(t, summary.ClosingBalance.Equal(decimal.NewFromInt(2500)),
		"closing must equal opening plus inflows minus outflows, got %s", summary.ClosingBalance)
}

// A day with no override of its own opens at the nearest earlier override
// rolled forward through every flow in between.
func TestOpeningBalanceRollsForward(t *testing.T) {
	env := newCashBookEnv()

	_, err := env.svc.SetOpeningBalance(context.Background(), &models.SetOpeningBalanceRequest{
		Date:           "2025-03-10",
		OpeningBalance: decimal.NewFromInt(1000),
		ChangedBy:      "admin@example.com",
	})
	require.NoError(t, err)

	// Day 10: +800 in, -300 out. Day 11: -100 out. Day 12 has no flows.
	env.addClearancePayment(pktDate(2025, time.March, 10), 800, "CL-000001", "Akbar Khan")
	env.addExpense(pktDate(2025, time.March, 10), 300, "labour", "")
	env.addExpense(pktDate(2025, time.March, 11), 100, "diesel", "")

	day11, err := env.svc.Summary(context.Background(), pktDate(2025, time.March, 11))
	require.NoError(t, err)
	assert.False(t, day11.OpeningOverridden)
	assert.True(t, day11.OpeningBalance.Equal(decimal.NewFromInt(1500)), "got %s", day11.OpeningBalance)

	day12, err := env.svc.Summary(context.Background(), pktDate(2025, time.March, 12))
	require.NoError(t, err)
	assert.True(t, day12.OpeningBalance.Equal(decimal.NewFromInt(1400)), "got %s", day12.OpeningBalance)
	assert.True(t, day12.ClosingBalance.Equal(decimal.NewFromInt(1400)))

	// A later override cuts the chain.
	_, err = env.svc.SetOpeningBalance(context.Background(), &models.SetOpeningBalanceRequest{
		Date:           "2025-03-12",
		OpeningBalance: decimal.NewFromInt(9000),
		ChangeReason:   "recount after audit",
		ChangedBy:      "admin@example.com",
	})
	require.NoError(t, err)

	day13, err := env.svc.Summary(context.Background(), pktDate(2025, time.March, 13))
	require.NoError(t, err)
	assert.True(t, day13.OpeningBalance.Equal(decimal.NewFromInt(9000)), "got %s", day13.OpeningBalance)
}

func TestSetOpeningBalanceAudit(t *testing.T) {
	env := newCashBookEnv()
	day := pktDate(2025, time.March, 10)

	// Jump from 0 to 5000 crosses the 1000 threshold.
	_, err := env.svc.SetOpeningBalance(context.Background(), &models.SetOpeningBalanceRequest{
		Date:           "2025-03-10",
		OpeningBalance: decimal.NewFromInt(5000),
		ChangeReason:   "opening float from safe",
		ChangedBy:      "admin@example.com",
	})
	require.NoError(t, err)

	audits, err := env.svc.Audits(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.True(t, audits[0].OldValue.IsZero())
	assert.True(t, audits[0].NewValue.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, "opening float from safe", audits[0].ChangeReason)

	// A 200 adjustment stays under the threshold and leaves no audit.
	_, err = env.svc.SetOpeningBalance(context.Background(), &models.SetOpeningBalanceRequest{
		Date:           "2025-03-10",
		OpeningBalance: decimal.NewFromInt(5200),
		ChangedBy:      "admin@example.com",
	})
	require.NoError(t, err)

	audits, err = env.svc.Audits(context.Background(), day)
	require.NoError(t, err)
	assert.Len(t, audits, 1)
}

func TestSetOpeningBalanceRejectsNegative(t *testing.T) {
	env := newCashBookEnv()
	_, err := env.svc.SetOpeningBalance(context.Background(), &models.SetOpeningBalanceRequest{
		Date:           "2025-03-10",
		OpeningBalance: decimal.NewFromInt(-1),
		ChangedBy:      "admin@example.com",
	})
	assert.ErrorIs(t, err, models.ErrInvalidOpeningBalance)
}

func TestReconcileMarksDay(t *testing.T) {
	env := newCashBookEnv()

	summary, err := env.svc.Reconcile(context.Background(), &models.ReconcileRequest{
		Date:         "2025-03-10",
		ReconciledBy: "accounts@example.com",
	})
	require.NoError(t, err)
	assert.True(t, summary.IsReconciled)
	assert.Equal(t, "accounts@example.com", summary.ReconciledBy)
	require.NotNil(t, summary.ReconciledAt)

	var ve *models.ValidationError
	_, err = env.svc.Reconcile(context.Background(), &models.ReconcileRequest{Date: "2025-03-10"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "reconciled_by", ve.Field)
}

func TestManualTransactionLifecycle(t *testing.T) {
	env := newCashBookEnv()

	created, err := env.svc.CreateManual(context.Background(), &models.CreateManualTransactionRequest{
		Date:            "2025-03-10",
		TransactionType: models.TransactionOutflow,
		Amount:          decimal.NewFromInt(120),
		Description:     "tea for loading crew",
	}, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, created.CreatedByUserID)
	assert.True(t, timeutil.SameDay(created.Date, pktDate(2025, time.March, 10)))

	updated, err := env.svc.UpdateManual(context.Background(), created.ID, &models.UpdateManualTransactionRequest{
		TransactionType: models.TransactionOutflow,
		Amount:          decimal.NewFromInt(140),
		Description:     "tea and snacks",
	})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(140)))

	require.NoError(t, env.svc.DeleteManual(context.Background(), created.ID))

	var ve *models.ValidationError
	err = env.svc.DeleteManual(context.Background(), created.ID)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "id", ve.Field)
}

func TestManualTransactionValidation(t *testing.T) {
	env := newCashBookEnv()
	var ve *models.ValidationError

	_, err := env.svc.CreateManual(context.Background(), &models.CreateManualTransactionRequest{
		TransactionType: "sideways",
		Amount:          decimal.NewFromInt(10),
	}, 1)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "transaction_type", ve.Field)

	_, err = env.svc.CreateManual(context.Background(), &models.CreateManualTransactionRequest{
		TransactionType: models.TransactionInflow,
		Amount:          decimal.Zero,
	}, 1)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "amount", ve.Field)
}
