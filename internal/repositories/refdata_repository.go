package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"coldstore-backend/internal/models"
)

// RefDataRepository reads and writes the lookup lists stored as JSONB rows.
type RefDataRepository struct {
	DB *pgxpool.Pool
}

func NewRefDataRepository(db *pgxpool.Pool) *RefDataRepository {
	return &RefDataRepository{DB: db}
}

func (r *RefDataRepository) get(ctx context.Context, key string, dest interface{}) error {
	var raw []byte
	err := r.DB.QueryRow(ctx, "SELECT value FROM reference_data WHERE key = $1", key).Scan(&raw)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil
		}
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Load assembles the full reference-data set.
func (r *RefDataRepository) Load(ctx context.Context) (*models.ReferenceData, error) {
	var rd models.ReferenceData
	if err := r.get(ctx, "product_types", &rd.ProductTypes); err != nil {
		return nil, fmt.Errorf("failed to load product types: %w", err)
	}
	if err := r.get(ctx, "rooms", &rd.Rooms); err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}
	if err := r.get(ctx, "pack_types", &rd.PackTypes); err != nil {
		return nil, fmt.Errorf("failed to load pack types: %w", err)
	}
	if err := r.get(ctx, "expense_categories", &rd.ExpenseCategories); err != nil {
		return nil, fmt.Errorf("failed to load expense categories: %w", err)
	}
	return &rd, nil
}

// Set replaces one lookup list.
func (r *RefDataRepository) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx, `
		INSERT INTO reference_data (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, raw)
	if err != nil {
		return fmt.Errorf("failed to set reference data %s: %w", key, err)
	}
	return nil
}
