package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"coldstore-backend/internal/models"
)

type LedgerRepository struct {
	DB *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{DB: db}
}

// Create appends one movement. Receipt-generated movements are written by
// the entry/clearance repositories inside their own transactions; this
// path is for direct-cash rows.
func (r *LedgerRepository) Create(ctx context.Context, e *models.LedgerEntry) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO ledger_entries (
			customer_id, entry_type, description, debit_amount, credit_amount,
			entry_receipt_id, clearance_receipt_id, created_by_user_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, e.CustomerID, e.EntryType, e.Description, e.DebitAmount, e.CreditAmount,
		e.EntryReceiptID, e.ClearanceReceiptID, e.CreatedByUserID,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

func (r *LedgerRepository) Get(ctx context.Context, id int) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := r.DB.QueryRow(ctx, `
		SELECT l.id, l.customer_id, COALESCE(c.name, '') AS customer_name,
			l.entry_type, l.description, l.debit_amount, l.credit_amount,
			l.entry_receipt_id, l.clearance_receipt_id, l.created_by_user_id, l.created_at
		FROM ledger_entries l
		LEFT JOIN customers c ON l.customer_id = c.id
		WHERE l.id = $1
	`, id).Scan(&e.ID, &e.CustomerID, &e.CustomerName, &e.EntryType, &e.Description,
		&e.DebitAmount, &e.CreditAmount, &e.EntryReceiptID, &e.ClearanceReceiptID,
		&e.CreatedByUserID, &e.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// GetBalance returns SUM(debit) - SUM(credit) for a customer. The sum is
// order-independent; zero for a customer with no movements.
func (r *LedgerRepository) GetBalance(ctx context.Context, customerID int) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(debit_amount) - SUM(credit_amount), 0)
		FROM ledger_entries
		WHERE customer_id = $1
	`, customerID).Scan(&balance)
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// List returns movements matching the filter, newest first.
func (r *LedgerRepository) List(ctx context.Context, filter *models.LedgerFilter) ([]models.LedgerEntry, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if filter.CustomerID > 0 {
		conditions = append(conditions, fmt.Sprintf("l.customer_id = $%d", argNum))
		args = append(args, filter.CustomerID)
		argNum++
	}
	if filter.EntryType != "" {
		conditions = append(conditions, fmt.Sprintf("l.entry_type = $%d", argNum))
		args = append(args, filter.EntryType)
		argNum++
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("l.created_at >= $%d", argNum))
		args = append(args, *filter.StartDate)
		argNum++
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("l.created_at <= $%d", argNum))
		args = append(args, *filter.EndDate)
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}

	query := fmt.Sprintf(`
		SELECT l.id, l.customer_id, COALESCE(c.name, '') AS customer_name,
			l.entry_type, l.description, l.debit_amount, l.credit_amount,
			l.entry_receipt_id, l.clearance_receipt_id, l.created_by_user_id, l.created_at
		FROM ledger_entries l
		LEFT JOIN customers c ON l.customer_id = c.id
		%s
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argNum, argNum+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.CustomerName, &e.EntryType,
			&e.Description, &e.DebitAmount, &e.CreditAmount, &e.EntryReceiptID,
			&e.ClearanceReceiptID, &e.CreatedByUserID, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListDirectCashBetween returns direct-cash movements for the cash book's
// ledger source. Nil bounds leave that side open.
func (r *LedgerRepository) ListDirectCashBetween(ctx context.Context, from, to *time.Time) ([]models.LedgerEntry, error) {
	filter := &models.LedgerFilter{EntryType: models.LedgerTypeDirectCash, Limit: 10000}
	if from != nil {
		start := *from
		filter.StartDate = &start
	}
	if to != nil {
		end := *to
		filter.EndDate = &end
	}
	return r.List(ctx, filter)
}

// Delete removes a movement by id. Protection of system-generated rows is
// enforced by the service before calling this.
func (r *LedgerRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, "DELETE FROM ledger_entries WHERE id = $1", id)
	return err
}

// GetAllBalances returns every customer's derived position, largest debtor
// first.
func (r *LedgerRepository) GetAllBalances(ctx context.Context) ([]models.CustomerBalance, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT l.customer_id, COALESCE(MAX(c.name), '') AS name, COALESCE(MAX(c.phone), '') AS phone,
			COALESCE(SUM(l.debit_amount), 0) AS total_debit,
			COALESCE(SUM(l.credit_amount), 0) AS total_credit,
			COALESCE(SUM(l.debit_amount) - SUM(l.credit_amount), 0) AS balance,
			COUNT(*) AS entry_count
		FROM ledger_entries l
		LEFT JOIN customers c ON l.customer_id = c.id
		GROUP BY l.customer_id
		ORDER BY balance DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []models.CustomerBalance
	for rows.Next() {
		var b models.CustomerBalance
		if err := rows.Scan(&b.CustomerID, &b.Name, &b.Phone, &b.TotalDebit,
			&b.TotalCredit, &b.Balance, &b.EntryCount); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// GetDebtors returns customers whose balance is positive (they owe money).
func (r *LedgerRepository) GetDebtors(ctx context.Context) ([]models.CustomerBalance, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT l.customer_id, COALESCE(MAX(c.name), '') AS name, COALESCE(MAX(c.phone), '') AS phone,
			COALESCE(SUM(l.debit_amount), 0) AS total_debit,
			COALESCE(SUM(l.credit_amount), 0) AS total_credit,
			COALESCE(SUM(l.debit_amount) - SUM(l.credit_amount), 0) AS balance,
			COUNT(*) AS entry_count
		FROM ledger_entries l
		LEFT JOIN customers c ON l.customer_id = c.id
		GROUP BY l.customer_id
		HAVING SUM(l.debit_amount) - SUM(l.credit_amount) > 0
		ORDER BY balance DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []models.CustomerBalance
	for rows.Next() {
		var b models.CustomerBalance
		if err := rows.Scan(&b.CustomerID, &b.Name, &b.Phone, &b.TotalDebit,
			&b.TotalCredit, &b.Balance, &b.EntryCount); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}
