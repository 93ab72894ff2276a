package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldstore-backend/internal/models"
	"coldstore-backend/internal/timeutil"
)

func pktDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, timeutil.PKT)
}

func TestDaysStored(t *testing.T) {
	tests := []struct {
		name      string
		entry     time.Time
		clearance time.Time
		want      int
	}{
		{"same day", pktDate(2025, 3, 10), pktDate(2025, 3, 10), 1},
		{"next day", pktDate(2025, 3, 10), pktDate(2025, 3, 11), 1},
		{"ten days", pktDate(2025, 3, 1), pktDate(2025, 3, 11), 10},
		{"across month", pktDate(2025, 1, 31), pktDate(2025, 2, 2), 2},
		{"clearance before entry floors at one", pktDate(2025, 3, 10), pktDate(2025, 3, 8), 1},
		{"time of day is ignored", pktDate(2025, 3, 10).Add(23 * time.Hour), pktDate(2025, 3, 12).Add(1 * time.Minute), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysStored(tt.entry, tt.clearance))
		})
	}
}

func TestRentCharge(t *testing.T) {
	// 40 units for 10 days at Rs 2/unit/day
	got := RentCharge(40, 10, decimal.NewFromInt(2))
	assert.True(t, got.Equal(decimal.NewFromInt(800)), "got %s", got)

	assert.True(t, RentCharge(0, 10, decimal.NewFromInt(2)).IsZero())
	assert.True(t, RentCharge(40, 10, decimal.Zero).IsZero())
}

func TestKhaliJaliChargeIsFlat(t *testing.T) {
	// The packaging fee never multiplies by days stored.
	got := KhaliJaliCharge(15, decimal.NewFromFloat(3.5))
	assert.True(t, got.Equal(decimal.NewFromFloat(52.5)), "got %s", got)
}

func TestPriceClearedItem(t *testing.T) {
	lot := &models.EntryItem{
		ID:                  7,
		Quantity:            100,
		RemainingQuantity:   100,
		UnitPrice:           decimal.NewFromInt(2),
		HasKhaliJali:        true,
		KjQuantity:          50,
		RemainingKjQuantity: 50,
		KjUnitPrice:         decimal.NewFromInt(3),
	}
	req := models.ClearanceItemRequest{EntryItemID: 7, QuantityCleared: 40, KjQuantityCleared: 10}

	item := PriceClearedItem(lot, req, 10)

	require.Equal(t, 7, item.EntryItemID)
	assert.Equal(t, 10, item.DaysStored)
	// 40 * 10 days * 2
	assert.True(t, item.RentAmount.Equal(decimal.NewFromInt(800)), "rent %s", item.RentAmount)
	// 10 * 3, flat
	assert.True(t, item.KjAmount.Equal(decimal.NewFromInt(30)), "kj %s", item.KjAmount)
	assert.True(t, item.TotalAmount.Equal(decimal.NewFromInt(830)), "total %s", item.TotalAmount)
}
