package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"coldstore-backend/internal/models"
)

type ClearanceRepository struct {
	DB *pgxpool.Pool
}

func NewClearanceRepository(db *pgxpool.Pool) *ClearanceRepository {
	return &ClearanceRepository{DB: db}
}

// NextReceiptNumber draws the next clearance receipt number from the sequence.
func (r *ClearanceRepository) NextReceiptNumber(ctx context.Context) (string, error) {
	var n int
	err := r.DB.QueryRow(ctx, "SELECT nextval('clearance_receipt_number_seq')").Scan(&n)
	if err != nil {
		return "", fmt.Errorf("failed to get next receipt number: %w", err)
	}
	return fmt.Sprintf("CL-%06d", n), nil
}

// Create commits a priced clearance atomically: it locks each lot, re-checks
// the remaining quantities under the lock, decrements them, inserts the
// receipt with its cleared items and posts the ledger movements. Any line
// failing the re-check aborts the whole transaction with an
// OverClearanceError, so two racing requests for the same lot can never
// both drain it.
func (r *ClearanceRepository) Create(ctx context.Context, receipt *models.ClearanceReceipt, items []models.ClearedItem, movements []models.LedgerEntry) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Lock and re-validate every lot before writing anything.
	var over []models.OverClearanceLine
	for i := range items {
		var remaining, remainingKj int
		err = tx.QueryRow(ctx, `
			SELECT remaining_quantity, remaining_kj_quantity
			FROM entry_items WHERE id = $1
			FOR UPDATE
		`, items[i].EntryItemID).Scan(&remaining, &remainingKj)
		if err != nil {
			if err == pgx.ErrNoRows {
				return models.ErrReceiptNotFound
			}
			return fmt.Errorf("failed to lock entry item %d: %w", items[i].EntryItemID, err)
		}

		if items[i].ClearQuantity > remaining {
			over = append(over, models.OverClearanceLine{
				EntryItemID: items[i].EntryItemID,
				Field:       "quantity",
				Requested:   items[i].ClearQuantity,
				Remaining:   remaining,
			})
		}
		if items[i].ClearKjQuantity > remainingKj {
			over = append(over, models.OverClearanceLine{
				EntryItemID: items[i].EntryItemID,
				Field:       "kj_quantity",
				Requested:   items[i].ClearKjQuantity,
				Remaining:   remainingKj,
			})
		}
	}
	if len(over) > 0 {
		return &models.OverClearanceError{Lines: over}
	}

	if receipt.ReceiptNumber == "" {
		receipt.ReceiptNumber, err = r.NextReceiptNumber(ctx)
		if err != nil {
			return err
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO clearance_receipts (
			receipt_number, entry_receipt_id, customer_id, car_number,
			clearance_date, description, total_amount, amount_paid, created_by_user_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, receipt.ReceiptNumber, receipt.EntryReceiptID, receipt.CustomerID,
		receipt.CarNumber, receipt.ClearanceDate, receipt.Description,
		receipt.TotalAmount, receipt.AmountPaid, receipt.CreatedByUserID,
	).Scan(&receipt.ID, &receipt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create clearance receipt: %w", err)
	}

	for i := range items {
		item := &items[i]
		item.ClearanceReceiptID = receipt.ID

		_, err = tx.Exec(ctx, `
			UPDATE entry_items
			SET remaining_quantity = remaining_quantity - $1,
				remaining_kj_quantity = remaining_kj_quantity - $2,
				updated_at = NOW()
			WHERE id = $3
		`, item.ClearQuantity, item.ClearKjQuantity, item.EntryItemID)
		if err != nil {
			return fmt.Errorf("failed to decrement entry item %d: %w", item.EntryItemID, err)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO cleared_items (
				clearance_receipt_id, entry_item_id, clear_quantity, clear_kj_quantity,
				days_stored, unit_price, kj_unit_price, rent_amount, kj_amount, total_amount
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, created_at
		`, receipt.ID, item.EntryItemID, item.ClearQuantity, item.ClearKjQuantity,
			item.DaysStored, item.UnitPrice, item.KjUnitPrice,
			item.RentAmount, item.KjAmount, item.TotalAmount,
		).Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create cleared item: %w", err)
		}
	}

	for i := range movements {
		m := &movements[i]
		m.ClearanceReceiptID = &receipt.ID
		_, err = tx.Exec(ctx, `
			INSERT INTO ledger_entries (customer_id, entry_type, description, debit_amount, credit_amount, clearance_receipt_id, created_by_user_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, m.CustomerID, m.EntryType, m.Description, m.DebitAmount, m.CreditAmount,
			receipt.ID, m.CreatedByUserID)
		if err != nil {
			return fmt.Errorf("failed to post clearance ledger movement: %w", err)
		}
	}

	receipt.Items = items
	return tx.Commit(ctx)
}

const clearanceColumns = `
	cl.id, cl.receipt_number, cl.entry_receipt_id, COALESCE(e.receipt_number, '') AS entry_receipt_no,
	cl.customer_id, COALESCE(c.name, '') AS customer_name, cl.car_number,
	cl.clearance_date, cl.description, cl.total_amount, cl.amount_paid,
	cl.created_by_user_id, cl.created_at
`

func scanClearance(row pgx.Row) (*models.ClearanceReceipt, error) {
	var cl models.ClearanceReceipt
	err := row.Scan(&cl.ID, &cl.ReceiptNumber, &cl.EntryReceiptID, &cl.EntryReceiptNo,
		&cl.CustomerID, &cl.CustomerName, &cl.CarNumber, &cl.ClearanceDate,
		&cl.Description, &cl.TotalAmount, &cl.AmountPaid,
		&cl.CreatedByUserID, &cl.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

func (r *ClearanceRepository) Get(ctx context.Context, id int) (*models.ClearanceReceipt, error) {
	receipt, err := scanClearance(r.DB.QueryRow(ctx, `
		SELECT `+clearanceColumns+`
		FROM clearance_receipts cl
		LEFT JOIN entry_receipts e ON cl.entry_receipt_id = e.id
		LEFT JOIN customers c ON cl.customer_id = c.id
		WHERE cl.id = $1
	`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, clearance_receipt_id, entry_item_id, clear_quantity, clear_kj_quantity,
			days_stored, unit_price, kj_unit_price, rent_amount, kj_amount, total_amount, created_at
		FROM cleared_items WHERE clearance_receipt_id = $1 ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var i models.ClearedItem
		if err := rows.Scan(&i.ID, &i.ClearanceReceiptID, &i.EntryItemID, &i.ClearQuantity,
			&i.ClearKjQuantity, &i.DaysStored, &i.UnitPrice, &i.KjUnitPrice,
			&i.RentAmount, &i.KjAmount, &i.TotalAmount, &i.CreatedAt); err != nil {
			return nil, err
		}
		receipt.Items = append(receipt.Items, i)
	}
	return receipt, rows.Err()
}

func (r *ClearanceRepository) List(ctx context.Context, customerID, limit, offset int) ([]*models.ClearanceReceipt, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + clearanceColumns + `
		FROM clearance_receipts cl
		LEFT JOIN entry_receipts e ON cl.entry_receipt_id = e.id
		LEFT JOIN customers c ON cl.customer_id = c.id
	`
	var args []interface{}
	if customerID > 0 {
		query += " WHERE cl.customer_id = $1 ORDER BY cl.clearance_date DESC, cl.id DESC LIMIT $2 OFFSET $3"
		args = append(args, customerID, limit, offset)
	} else {
		query += " ORDER BY cl.clearance_date DESC, cl.id DESC LIMIT $1 OFFSET $2"
		args = append(args, limit, offset)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []*models.ClearanceReceipt
	for rows.Next() {
		receipt, err := scanClearance(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	return receipts, rows.Err()
}

// ListPaidBetween returns clearances that collected cash, for the cash
// book's clearance source. Nil bounds leave that side open.
func (r *ClearanceRepository) ListPaidBetween(ctx context.Context, from, to *time.Time) ([]*models.ClearanceReceipt, error) {
	query := `
		SELECT ` + clearanceColumns + `
		FROM clearance_receipts cl
		LEFT JOIN entry_receipts e ON cl.entry_receipt_id = e.id
		LEFT JOIN customers c ON cl.customer_id = c.id
		WHERE cl.amount_paid > 0
	`
	var args []interface{}
	argNum := 1
	if from != nil {
		query += fmt.Sprintf(" AND cl.clearance_date >= $%d", argNum)
		args = append(args, *from)
		argNum++
	}
	if to != nil {
		query += fmt.Sprintf(" AND cl.clearance_date <= $%d", argNum)
		args = append(args, *to)
		argNum++
	}
	query += " ORDER BY cl.clearance_date DESC, cl.id DESC"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []*models.ClearanceReceipt
	for rows.Next() {
		receipt, err := scanClearance(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	return receipts, rows.Err()
}
