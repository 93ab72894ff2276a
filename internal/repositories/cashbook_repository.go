package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"coldstore-backend/internal/models"
	"coldstore-backend/internal/timeutil"
)

// CashBookRepository owns the cash book's durable state: manual
// transactions, per-day summary rows (opening override + reconciliation)
// and the opening-balance audit trail.
type CashBookRepository struct {
	DB *pgxpool.Pool
}

func NewCashBookRepository(db *pgxpool.Pool) *CashBookRepository {
	return &CashBookRepository{DB: db}
}

// Manual transactions

func (r *CashBookRepository) CreateManual(ctx context.Context, t *models.ManualTransaction) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO manual_transactions (txn_date, transaction_type, amount, description, customer_id, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, t.Date, t.TransactionType, t.Amount, t.Description, t.CustomerID, t.CreatedByUserID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create manual transaction: %w", err)
	}
	return nil
}

func (r *CashBookRepository) GetManual(ctx context.Context, id int) (*models.ManualTransaction, error) {
	var t models.ManualTransaction
	err := r.DB.QueryRow(ctx, `
		SELECT id, txn_date, transaction_type, amount, description, customer_id,
			created_by_user_id, created_at, updated_at
		FROM manual_transactions WHERE id = $1
	`, id).Scan(&t.ID, &t.Date, &t.TransactionType, &t.Amount, &t.Description,
		&t.CustomerID, &t.CreatedByUserID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// ListManualBetween returns manual rows in the date window, newest first.
func (r *CashBookRepository) ListManualBetween(ctx context.Context, from, to *time.Time) ([]models.ManualTransaction, error) {
	query := `
		SELECT id, txn_date, transaction_type, amount, description, customer_id,
			created_by_user_id, created_at, updated_at
		FROM manual_transactions
	`
	var args []interface{}
	argNum := 1
	where := ""
	if from != nil {
		where = fmt.Sprintf(" WHERE txn_date >= $%d", argNum)
		args = append(args, *from)
		argNum++
	}
	if to != nil {
		if where == "" {
			where = fmt.Sprintf(" WHERE txn_date <= $%d", argNum)
		} else {
			where += fmt.Sprintf(" AND txn_date <= $%d", argNum)
		}
		args = append(args, *to)
		argNum++
	}
	query += where + " ORDER BY txn_date DESC, id DESC"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []models.ManualTransaction
	for rows.Next() {
		var t models.ManualTransaction
		if err := rows.Scan(&t.ID, &t.Date, &t.TransactionType, &t.Amount, &t.Description,
			&t.CustomerID, &t.CreatedByUserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (r *CashBookRepository) UpdateManual(ctx context.Context, t *models.ManualTransaction) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE manual_transactions
		SET txn_date = $1, transaction_type = $2, amount = $3, description = $4,
			customer_id = $5, updated_at = NOW()
		WHERE id = $6
	`, t.Date, t.TransactionType, t.Amount, t.Description, t.CustomerID, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update manual transaction: %w", err)
	}
	return nil
}

func (r *CashBookRepository) DeleteManual(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, "DELETE FROM manual_transactions WHERE id = $1", id)
	return err
}

// Daily summaries

// GetSummaryState returns the stored override/reconciliation row for a
// date, or nil when none exists.
func (r *CashBookRepository) GetSummaryState(ctx context.Context, date time.Time) (*models.DailyCashSummary, error) {
	var s models.DailyCashSummary
	var reconciledAt *time.Time
	err := r.DB.QueryRow(ctx, `
		SELECT summary_date, opening_balance, opening_overridden, is_reconciled,
			reconciled_by, reconciled_at, updated_at
		FROM daily_cash_summaries WHERE summary_date = $1
	`, timeutil.StartOfDay(date)).Scan(&s.Date, &s.OpeningBalance, &s.OpeningOverridden,
		&s.IsReconciled, &s.ReconciledBy, &reconciledAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	s.ReconciledAt = reconciledAt
	return &s, nil
}

// GetLatestOverrideOnOrBefore finds the most recent explicit opening
// override at or before the date. The cash book rolls balances forward
// from this anchor.
func (r *CashBookRepository) GetLatestOverrideOnOrBefore(ctx context.Context, date time.Time) (*models.DailyCashSummary, error) {
	var s models.DailyCashSummary
	var reconciledAt *time.Time
	err := r.DB.QueryRow(ctx, `
		SELECT summary_date, opening_balance, opening_overridden, is_reconciled,
			reconciled_by, reconciled_at, updated_at
		FROM daily_cash_summaries
		WHERE opening_overridden AND summary_date <= $1
		ORDER BY summary_date DESC
		LIMIT 1
	`, timeutil.StartOfDay(date)).Scan(&s.Date, &s.OpeningBalance, &s.OpeningOverridden,
		&s.IsReconciled, &s.ReconciledBy, &reconciledAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	s.ReconciledAt = reconciledAt
	return &s, nil
}

// SetOpeningBalance upserts the override for a date without touching the
// reconciliation flag.
func (r *CashBookRepository) SetOpeningBalance(ctx context.Context, s *models.DailyCashSummary) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO daily_cash_summaries (summary_date, opening_balance, opening_overridden, updated_at)
		VALUES ($1, $2, TRUE, NOW())
		ON CONFLICT (summary_date) DO UPDATE
		SET opening_balance = EXCLUDED.opening_balance,
			opening_overridden = TRUE,
			updated_at = NOW()
	`, timeutil.StartOfDay(s.Date), s.OpeningBalance)
	if err != nil {
		return fmt.Errorf("failed to set opening balance: %w", err)
	}
	return nil
}

// MarkReconciled flags a day as checked against counted cash.
func (r *CashBookRepository) MarkReconciled(ctx context.Context, date time.Time, by string) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO daily_cash_summaries (summary_date, is_reconciled, reconciled_by, reconciled_at, updated_at)
		VALUES ($1, TRUE, $2, NOW(), NOW())
		ON CONFLICT (summary_date) DO UPDATE
		SET is_reconciled = TRUE,
			reconciled_by = EXCLUDED.reconciled_by,
			reconciled_at = NOW(),
			updated_at = NOW()
	`, timeutil.StartOfDay(date), by)
	if err != nil {
		return fmt.Errorf("failed to mark reconciled: %w", err)
	}
	return nil
}

// Audit trail

func (r *CashBookRepository) CreateAudit(ctx context.Context, a *models.CashBookAudit) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO cash_book_audits (summary_date, old_value, new_value, change_reason, changed_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, timeutil.StartOfDay(a.SummaryDate), a.OldValue, a.NewValue, a.ChangeReason, a.ChangedBy,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create cash book audit: %w", err)
	}
	return nil
}

func (r *CashBookRepository) ListAudits(ctx context.Context, date time.Time) ([]models.CashBookAudit, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, summary_date, old_value, new_value, change_reason, changed_by, created_at
		FROM cash_book_audits
		WHERE summary_date = $1
		ORDER BY created_at DESC
	`, timeutil.StartOfDay(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []models.CashBookAudit
	for rows.Next() {
		var a models.CashBookAudit
		if err := rows.Scan(&a.ID, &a.SummaryDate, &a.OldValue, &a.NewValue,
			&a.ChangeReason, &a.ChangedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}
