package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"coldstore-backend/internal/models"
)

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers (name, phone, village, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRow(ctx, query, c.Name, c.Phone, c.Village, c.Address).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) Get(ctx context.Context, id int) (*models.Customer, error) {
	var c models.Customer
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, phone, village, address, created_at, updated_at
		FROM customers WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Phone, &c.Village, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) GetByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	var c models.Customer
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, phone, village, address, created_at, updated_at
		FROM customers WHERE phone = $1
	`, phone).Scan(&c.ID, &c.Name, &c.Phone, &c.Village, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) List(ctx context.Context, search string) ([]*models.Customer, error) {
	query := `
		SELECT id, name, phone, village, address, created_at, updated_at
		FROM customers
	`
	var args []interface{}
	if search != "" {
		query += " WHERE name ILIKE $1 OR phone ILIKE $1 OR village ILIKE $1"
		args = append(args, "%"+search+"%")
	}
	query += " ORDER BY name"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Village, &c.Address,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, &c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE customers
		SET name = $1, phone = $2, village = $3, address = $4, updated_at = NOW()
		WHERE id = $5
	`, c.Name, c.Phone, c.Village, c.Address, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return nil
}

// Delete removes a customer. Fails on the FK constraint if the customer
// still owns receipts or ledger rows.
func (r *CustomerRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, "DELETE FROM customers WHERE id = $1", id)
	return err
}
