package services

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"

	"coldstore-backend/internal/metrics"
	"coldstore-backend/internal/models"
)

// ErrLedgerEntryNotFound is returned when a ledger movement does not exist.
var ErrLedgerEntryNotFound = errors.New("ledger entry not found")

// LedgerStore is the slice of the ledger repository the service needs.
type LedgerStore interface {
	Create(ctx context.Context, e *models.LedgerEntry) error
	Get(ctx context.Context, id int) (*models.LedgerEntry, error)
	GetBalance(ctx context.Context, customerID int) (decimal.Decimal, error)
	List(ctx context.Context, filter *models.LedgerFilter) ([]models.LedgerEntry, error)
	Delete(ctx context.Context, id int) error
	GetAllBalances(ctx context.Context) ([]models.CustomerBalance, error)
	GetDebtors(ctx context.Context) ([]models.CustomerBalance, error)
}

// LedgerService posts and queries customer account movements. Only manual
// direct-cash rows go through here; receipt-generated rows are posted by the
// entry and clearance flows inside their own transactions.
type LedgerService struct {
	ledger LedgerStore
}

func NewLedgerService(ledger LedgerStore) *LedgerService {
	return &LedgerService{ledger: ledger}
}

// PostDirectCash records a by-hand cash movement: a credit when the customer
// pays in, a debit when cash is handed out as a loan.
func (s *LedgerService) PostDirectCash(ctx context.Context, req *models.CreateLedgerEntryRequest, userID int) (*models.LedgerEntry, error) {
	if req.CustomerID <= 0 {
		return nil, &models.ValidationError{Field: "customer_id", Message: "is required"}
	}
	if !req.Amount.IsPositive() {
		return nil, &models.ValidationError{Field: "amount", Message: "must be positive"}
	}

	entry := &models.LedgerEntry{
		CustomerID:      req.CustomerID,
		EntryType:       models.LedgerTypeDirectCash,
		Description:     req.Description,
		CreatedByUserID: userID,
	}
	switch req.Side {
	case models.LedgerDebit:
		entry.DebitAmount = req.Amount
		entry.CreditAmount = decimal.Zero
	case models.LedgerCredit:
		entry.CreditAmount = req.Amount
		entry.DebitAmount = decimal.Zero
	default:
		return nil, &models.ValidationError{Field: "side", Message: "must be debit or credit"}
	}

	if err := s.ledger.Create(ctx, entry); err != nil {
		return nil, err
	}
	metrics.LedgerEntriesTotal.WithLabelValues(string(models.LedgerTypeDirectCash)).Inc()
	log.Printf("[Ledger] direct cash %s of %s for customer %d", req.Side, req.Amount.StringFixed(2), req.CustomerID)
	return entry, nil
}

// Delete removes a manual movement. System-generated rows (those carrying a
// receipt back-reference) are refused: the receipt owns them.
func (s *LedgerService) Delete(ctx context.Context, id int) error {
	entry, err := s.ledger.Get(ctx, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return ErrLedgerEntryNotFound
	}
	if entry.SystemGenerated() || entry.EntryType != models.LedgerTypeDirectCash {
		return models.ErrProtectedLedgerEntry
	}
	return s.ledger.Delete(ctx, id)
}

func (s *LedgerService) Get(ctx context.Context, id int) (*models.LedgerEntry, error) {
	entry, err := s.ledger.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrLedgerEntryNotFound
	}
	return entry, nil
}

func (s *LedgerService) List(ctx context.Context, filter *models.LedgerFilter) ([]models.LedgerEntry, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	return s.ledger.List(ctx, filter)
}

// Balance is the customer's current position: positive means the customer
// owes the business.
func (s *LedgerService) Balance(ctx context.Context, customerID int) (decimal.Decimal, error) {
	return s.ledger.GetBalance(ctx, customerID)
}

func (s *LedgerService) AllBalances(ctx context.Context) ([]models.CustomerBalance, error) {
	return s.ledger.GetAllBalances(ctx)
}

func (s *LedgerService) Debtors(ctx context.Context) ([]models.CustomerBalance, error) {
	return s.ledger.GetDebtors(ctx)
}
