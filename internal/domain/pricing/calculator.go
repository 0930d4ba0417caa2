// Package pricing computes the rental cost breakdown of a booking.
// All amounts are integer minor units; percentage products are rounded half-up.
package pricing

import (
	"time"

	"github.com/rental-marketplace-core/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultPlatformFeeBps is the marketplace cut of the subtotal (5%) when none is configured
const DefaultPlatformFeeBps int64 = 500

// MaxRentalDays bounds a single rental, extensions included
const MaxRentalDays = 3650

// MaxAmount is the largest price, item value or booking total accepted, in minor units
const MaxAmount = int64(1) << 50

const (
	day           = 24 * time.Hour
	secondsPerDay = int64(day / time.Second)
)

var (
	hundred     = decimal.NewFromInt(100)
	tenThousand = decimal.NewFromInt(10000)
	maxAmount   = decimal.NewFromInt(MaxAmount)
)

// Terms are the item pricing inputs plus the platform rate in basis points
type Terms struct {
	DailyPrice        int64
	ItemValue         int64
	DepositPercentage int
	PlatformFeeBps    int64
}

// Snapshot is the pricing breakdown stored on a booking
type Snapshot struct {
	DailyPrice     int64 `json:"daily_price"`
	TotalDays      int   `json:"total_days"`
	Subtotal       int64 `json:"subtotal"`
	DepositAmount  int64 `json:"deposit_amount"`
	PlatformFee    int64 `json:"platform_fee"`
	TotalAmount    int64 `json:"total_amount"`
	LenderEarnings int64 `json:"lender_earnings"`
}

// Calculate prices a rental of the given terms over [start, end).
func Calculate(terms Terms, start, end time.Time) (Snapshot, error) {
	if terms.DailyPrice <= 0 {
		return Snapshot{}, shared.ValidationErrorf("daily price must be positive")
	}
	if terms.ItemValue <= 0 {
		return Snapshot{}, shared.ValidationErrorf("item value must be positive")
	}
	if terms.DailyPrice > MaxAmount || terms.ItemValue > MaxAmount {
		return Snapshot{}, shared.ValidationErrorf("price out of range")
	}
	if terms.DepositPercentage < 0 || terms.DepositPercentage > 100 {
		return Snapshot{}, shared.ValidationErrorf("deposit percentage must be between 0 and 100")
	}
	if terms.PlatformFeeBps < 0 || terms.PlatformFeeBps > 10000 {
		return Snapshot{}, shared.ValidationErrorf("platform fee must be between 0 and 10000 basis points")
	}
	if !start.Before(end) {
		return Snapshot{}, shared.ValidationErrorf("start date must be before end date")
	}

	totalDays := Days(start, end)
	if totalDays > MaxRentalDays {
		return Snapshot{}, shared.ValidationErrorf("rental cannot exceed %d days", MaxRentalDays)
	}
	subtotal, err := times(terms.DailyPrice, totalDays)
	if err != nil {
		return Snapshot{}, err
	}
	deposit := percentOf(terms.ItemValue, decimal.NewFromInt(int64(terms.DepositPercentage)), hundred)
	fee := percentOf(subtotal, decimal.NewFromInt(terms.PlatformFeeBps), tenThousand)
	if subtotal+deposit+fee > MaxAmount {
		return Snapshot{}, shared.ValidationErrorf("price out of range")
	}

	return Snapshot{
		DailyPrice:     terms.DailyPrice,
		TotalDays:      totalDays,
		Subtotal:       subtotal,
		DepositAmount:  deposit,
		PlatformFee:    fee,
		TotalAmount:    subtotal + deposit + fee,
		LenderEarnings: subtotal - fee,
	}, nil
}

// Extend prices an extension of a rental from oldEnd to newEnd. Deposit and platform fee stay fixed;
// the returned snapshot carries the incremented totals and additionalCost is what the borrower owes now.
func Extend(current Snapshot, oldEnd, newEnd time.Time) (extended Snapshot, additionalCost int64, err error) {
	if !newEnd.After(oldEnd) {
		return current, 0, shared.ValidationErrorf("new end date must be after the current end date")
	}

	additionalDays := Days(oldEnd, newEnd)
	if current.TotalDays+additionalDays > MaxRentalDays {
		return current, 0, shared.ValidationErrorf("rental cannot exceed %d days", MaxRentalDays)
	}
	additionalCost, err = times(current.DailyPrice, additionalDays)
	if err != nil {
		return current, 0, err
	}
	if current.TotalAmount > MaxAmount-additionalCost {
		return current, 0, shared.ValidationErrorf("price out of range")
	}

	extended = current
	extended.TotalDays += additionalDays
	extended.Subtotal += additionalCost
	extended.TotalAmount += additionalCost
	extended.LenderEarnings += additionalCost

	return extended, additionalCost, nil
}

// Days returns the number of started days between start and end; partial days round up.
// Counted from Unix seconds so ranges longer than a time.Duration can hold stay exact.
func Days(start, end time.Time) int {
	secs := end.Unix() - start.Unix()
	nanos := int64(end.Nanosecond() - start.Nanosecond())
	if nanos < 0 {
		secs--
		nanos += int64(time.Second)
	}
	if secs < 0 || (secs == 0 && nanos == 0) {
		return 0
	}
	days := secs / secondsPerDay
	if secs%secondsPerDay != 0 || nanos != 0 {
		days++
	}
	return int(days)
}

// Balanced reports whether the snapshot satisfies the total and earnings identities
func (s Snapshot) Balanced() bool {
	return s.TotalAmount == s.Subtotal+s.DepositAmount+s.PlatformFee &&
		s.LenderEarnings == s.Subtotal-s.PlatformFee
}

// times returns price * days, rejecting products above MaxAmount
func times(price int64, days int) (int64, error) {
	product := decimal.NewFromInt(price).Mul(decimal.NewFromInt(int64(days)))
	if product.GreaterThan(maxAmount) {
		return 0, shared.ValidationErrorf("price out of range")
	}
	return product.IntPart(), nil
}

// percentOf returns round(amount * numerator / denominator), half-up for non-negative amounts
func percentOf(amount int64, numerator, denominator decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(numerator).Div(denominator).Round(0).IntPart()
}
