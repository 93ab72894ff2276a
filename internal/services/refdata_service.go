package services

import (
	"context"
	"encoding/json"

	"coldstore-backend/internal/cache"
	"coldstore-backend/internal/models"
	"coldstore-backend/internal/repositories"
)

// RefDataService serves the lookup lists through a read-through Redis cache.
// With Redis down it degrades to hitting the database every time.
type RefDataService struct {
	repo *repositories.RefDataRepository
}

func NewRefDataService(repo *repositories.RefDataRepository) *RefDataService {
	return &RefDataService{repo: repo}
}

// ReferenceData returns the full lookup set, cached.
func (s *RefDataService) ReferenceData(ctx context.Context) (*models.ReferenceData, error) {
	if blob, ok := cache.GetReferenceData(ctx); ok {
		var ref models.ReferenceData
		if err := json.Unmarshal(blob, &ref); err == nil {
			return &ref, nil
		}
		// Corrupt cache entry; fall through and repopulate.
		cache.InvalidateReferenceData(ctx)
	}

	ref, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if blob, err := json.Marshal(ref); err == nil {
		cache.SetReferenceData(ctx, blob)
	}
	return ref, nil
}

// Update replaces one lookup list and drops the cache.
func (s *RefDataService) Update(ctx context.Context, key string, value interface{}) error {
	switch key {
	case "product_types", "rooms", "pack_types", "expense_categories":
	default:
		return &models.ValidationError{Field: "key", Message: "unknown reference data key"}
	}
	if err := s.repo.Set(ctx, key, value); err != nil {
		return err
	}
	cache.InvalidateReferenceData(ctx)
	return nil
}
