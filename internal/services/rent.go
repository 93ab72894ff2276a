package services

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"coldstore-backend/internal/models"
	"coldstore-backend/internal/timeutil"
)

// DaysStored returns the chargeable storage duration in whole days between
// entry and clearance, at PKT calendar-day granularity. Floored at 1: even
// a same-day in-and-out pays for one day, there is no free storage.
func DaysStored(entryDate, clearanceDate time.Time) int {
	start := timeutil.StartOfDay(entryDate)
	end := timeutil.StartOfDay(clearanceDate)
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// RentCharge is the per-day storage rent for qty units held daysStored days.
func RentCharge(qty, daysStored int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty))).Mul(decimal.NewFromInt(int64(daysStored)))
}

// KhaliJaliCharge is the flat packaging fee for kjQty units. Deliberately
// NOT multiplied by days stored: khali jali is a one-time per-unit charge,
// unlike storage rent.
func KhaliJaliCharge(kjQty int, kjUnitPrice decimal.Decimal) decimal.Decimal {
	return kjUnitPrice.Mul(decimal.NewFromInt(int64(kjQty)))
}

// PriceClearedItem builds the priced line for drawing the requested
// quantities from a lot, using the lot's stored prices.
func PriceClearedItem(lot *models.EntryItem, req models.ClearanceItemRequest, daysStored int) models.ClearedItem {
	rent := RentCharge(req.QuantityCleared, daysStored, lot.UnitPrice)
	kj := KhaliJaliCharge(req.KjQuantityCleared, lot.KjUnitPrice)

	return models.ClearedItem{
		EntryItemID:     lot.ID,
		ClearQuantity:   req.QuantityCleared,
		ClearKjQuantity: req.KjQuantityCleared,
		DaysStored:      daysStored,
		UnitPrice:       lot.UnitPrice,
		KjUnitPrice:     lot.KjUnitPrice,
		RentAmount:      rent,
		KjAmount:        kj,
		TotalAmount:     rent.Add(kj),
	}
}
