package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"coldstore-backend/internal/models"
)

type EntryRepository struct {
	DB *pgxpool.Pool
}

func NewEntryRepository(db *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{DB: db}
}

// NextReceiptNumber draws the next inbound receipt number from the sequence.
func (r *EntryRepository) NextReceiptNumber(ctx context.Context) (string, error) {
	var n int
	err := r.DB.QueryRow(ctx, "SELECT nextval('entry_receipt_number_seq')").Scan(&n)
	if err != nil {
		return "", fmt.Errorf("failed to get next receipt number: %w", err)
	}
	return fmt.Sprintf("GR-%06d", n), nil
}

// Create inserts the receipt, its lots and, when loadingCharges is
// positive, the matching adding_inventory ledger debit — all in one
// transaction so a receipt never exists without its ledger movement.
func (r *EntryRepository) Create(ctx context.Context, receipt *models.EntryReceipt, loadingCharges decimal.Decimal) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if receipt.ReceiptNumber == "" {
		receipt.ReceiptNumber, err = r.NextReceiptNumber(ctx)
		if err != nil {
			return err
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO entry_receipts (receipt_number, customer_id, car_number, entry_date, description, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, receipt.ReceiptNumber, receipt.CustomerID, receipt.CarNumber,
		receipt.EntryDate, receipt.Description, receipt.CreatedByUserID,
	).Scan(&receipt.ID, &receipt.CreatedAt, &receipt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create entry receipt: %w", err)
	}

	for i := range receipt.Items {
		item := &receipt.Items[i]
		item.EntryReceiptID = receipt.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO entry_items (
				entry_receipt_id, product_type, product_sub_type, pack_type, room,
				box_number, marka, quantity, remaining_quantity, unit_price,
				has_khali_jali, kj_quantity, remaining_kj_quantity, kj_unit_price
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id, created_at, updated_at
		`, receipt.ID, item.ProductType, item.ProductSubType, item.PackType, item.Room,
			item.BoxNumber, item.Marka, item.Quantity, item.RemainingQuantity, item.UnitPrice,
			item.HasKhaliJali, item.KjQuantity, item.RemainingKjQuantity, item.KjUnitPrice,
		).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create entry item: %w", err)
		}
	}

	if loadingCharges.IsPositive() {
		_, err = tx.Exec(ctx, `
			INSERT INTO ledger_entries (customer_id, entry_type, description, debit_amount, credit_amount, entry_receipt_id, created_by_user_id)
			VALUES ($1, $2, $3, $4, 0, $5, $6)
		`, receipt.CustomerID, models.LedgerTypeAddingInventory,
			fmt.Sprintf("Loading charges for receipt %s", receipt.ReceiptNumber),
			loadingCharges, receipt.ID, receipt.CreatedByUserID)
		if err != nil {
			return fmt.Errorf("failed to post entry ledger movement: %w", err)
		}
	}

	return tx.Commit(ctx)
}

const entryReceiptColumns = `
	e.id, e.receipt_number, e.customer_id, COALESCE(c.name, '') AS customer_name,
	COALESCE(c.phone, '') AS customer_phone, e.car_number, e.entry_date,
	e.description, e.created_by_user_id, e.created_at, e.updated_at
`

func (r *EntryRepository) scanReceipt(row pgx.Row) (*models.EntryReceipt, error) {
	var e models.EntryReceipt
	err := row.Scan(&e.ID, &e.ReceiptNumber, &e.CustomerID, &e.CustomerName,
		&e.CustomerPhone, &e.CarNumber, &e.EntryDate, &e.Description,
		&e.CreatedByUserID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EntryRepository) Get(ctx context.Context, id int) (*models.EntryReceipt, error) {
	receipt, err := r.scanReceipt(r.DB.QueryRow(ctx, `
		SELECT `+entryReceiptColumns+`
		FROM entry_receipts e
		LEFT JOIN customers c ON e.customer_id = c.id
		WHERE e.id = $1
	`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	receipt.Items, err = r.listItems(ctx, receipt.ID)
	return receipt, err
}

// GetByReceiptNumber resolves a receipt by its exact number, with lots and
// customer attached. Returns ErrReceiptNotFound when no such receipt.
func (r *EntryRepository) GetByReceiptNumber(ctx context.Context, receiptNumber string) (*models.EntryReceipt, error) {
	receipt, err := r.scanReceipt(r.DB.QueryRow(ctx, `
		SELECT `+entryReceiptColumns+`
		FROM entry_receipts e
		LEFT JOIN customers c ON e.customer_id = c.id
		WHERE e.receipt_number = $1
	`, receiptNumber))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrReceiptNotFound
		}
		return nil, err
	}
	receipt.Items, err = r.listItems(ctx, receipt.ID)
	return receipt, err
}

func (r *EntryRepository) List(ctx context.Context, customerID, limit, offset int) ([]*models.EntryReceipt, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + entryReceiptColumns + `
		FROM entry_receipts e
		LEFT JOIN customers c ON e.customer_id = c.id
	`
	var args []interface{}
	if customerID > 0 {
		query += " WHERE e.customer_id = $1 ORDER BY e.entry_date DESC, e.id DESC LIMIT $2 OFFSET $3"
		args = append(args, customerID, limit, offset)
	} else {
		query += " ORDER BY e.entry_date DESC, e.id DESC LIMIT $1 OFFSET $2"
		args = append(args, limit, offset)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []*models.EntryReceipt
	for rows.Next() {
		receipt, err := r.scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, receipt := range receipts {
		receipt.Items, err = r.listItems(ctx, receipt.ID)
		if err != nil {
			return nil, err
		}
	}
	return receipts, nil
}

func (r *EntryRepository) listItems(ctx context.Context, receiptID int) ([]models.EntryItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, entry_receipt_id, product_type, product_sub_type, pack_type, room,
			box_number, marka, quantity, remaining_quantity, unit_price,
			has_khali_jali, kj_quantity, remaining_kj_quantity, kj_unit_price,
			created_at, updated_at
		FROM entry_items
		WHERE entry_receipt_id = $1
		ORDER BY id
	`, receiptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.EntryItem
	for rows.Next() {
		var i models.EntryItem
		if err := rows.Scan(&i.ID, &i.EntryReceiptID, &i.ProductType, &i.ProductSubType,
			&i.PackType, &i.Room, &i.BoxNumber, &i.Marka, &i.Quantity, &i.RemainingQuantity,
			&i.UnitPrice, &i.HasKhaliJali, &i.KjQuantity, &i.RemainingKjQuantity,
			&i.KjUnitPrice, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (r *EntryRepository) GetItem(ctx context.Context, itemID int) (*models.EntryItem, error) {
	var i models.EntryItem
	err := r.DB.QueryRow(ctx, `
		SELECT id, entry_receipt_id, product_type, product_sub_type, pack_type, room,
			box_number, marka, quantity, remaining_quantity, unit_price,
			has_khali_jali, kj_quantity, remaining_kj_quantity, kj_unit_price,
			created_at, updated_at
		FROM entry_items WHERE id = $1
	`, itemID).Scan(&i.ID, &i.EntryReceiptID, &i.ProductType, &i.ProductSubType,
		&i.PackType, &i.Room, &i.BoxNumber, &i.Marka, &i.Quantity, &i.RemainingQuantity,
		&i.UnitPrice, &i.HasKhaliJali, &i.KjQuantity, &i.RemainingKjQuantity,
		&i.KjUnitPrice, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &i, nil
}

// UpdateItemIfUntouched rewrites a lot's quantity and price fields, but
// only while no clearance has drawn from it. The guard runs in the UPDATE
// itself so a clearance committing concurrently cannot slip past it.
// Returns ErrLotLocked when the lot was already touched.
func (r *EntryRepository) UpdateItemIfUntouched(ctx context.Context, item *models.EntryItem) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE entry_items
		SET quantity = $1, remaining_quantity = $1, unit_price = $2,
			kj_quantity = $3, remaining_kj_quantity = $3, kj_unit_price = $4,
			has_khali_jali = $5, updated_at = NOW()
		WHERE id = $6
			AND remaining_quantity = quantity
			AND remaining_kj_quantity = kj_quantity
	`, item.Quantity, item.UnitPrice, item.KjQuantity, item.KjUnitPrice,
		item.HasKhaliJali, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update entry item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrLotLocked
	}
	return nil
}
