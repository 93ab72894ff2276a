package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"coldstore-backend/internal/models"
)

type ExpenseRepository struct {
	DB *pgxpool.Pool
}

func NewExpenseRepository(db *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{DB: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *models.Expense) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO expenses (category, amount, expense_date, description, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, e.Category, e.Amount, e.ExpenseDate, e.Description, e.CreatedByUserID,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

func (r *ExpenseRepository) Get(ctx context.Context, id int) (*models.Expense, error) {
	var e models.Expense
	err := r.DB.QueryRow(ctx, `
		SELECT id, category, amount, expense_date, description, created_by_user_id, created_at, updated_at
		FROM expenses WHERE id = $1
	`, id).Scan(&e.ID, &e.Category, &e.Amount, &e.ExpenseDate, &e.Description,
		&e.CreatedByUserID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// ListBetween returns expenses in the date window, newest first. Nil bounds
// leave that side open.
func (r *ExpenseRepository) ListBetween(ctx context.Context, from, to *time.Time) ([]models.Expense, error) {
	query := `
		SELECT id, category, amount, expense_date, description, created_by_user_id, created_at, updated_at
		FROM expenses
	`
	var conditions []string
	var args []interface{}
	argNum := 1
	if from != nil {
		conditions = append(conditions, fmt.Sprintf("expense_date >= $%d", argNum))
		args = append(args, *from)
		argNum++
	}
	if to != nil {
		conditions = append(conditions, fmt.Sprintf("expense_date <= $%d", argNum))
		args = append(args, *to)
		argNum++
	}
	for i, c := range conditions {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY expense_date DESC, id DESC"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.Category, &e.Amount, &e.ExpenseDate, &e.Description,
			&e.CreatedByUserID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *ExpenseRepository) Update(ctx context.Context, e *models.Expense) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE expenses
		SET category = $1, amount = $2, expense_date = $3, description = $4, updated_at = NOW()
		WHERE id = $5
	`, e.Category, e.Amount, e.ExpenseDate, e.Description, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, "DELETE FROM expenses WHERE id = $1", id)
	return err
}
