package utils

import (
	"fmt"
	"time"
)

// Pure money math for the rental lifecycle. Everything operates on
// integer cents; floating point is never used for money. Functions
// either return a fully consistent result or an error, never a partial
// one.

// DateLayout is the wire format for rental period dates.
const DateLayout = "2006-01-02"

// BpsDenominator is the basis-point scale used for commission rates and
// the late-fee multiplier (10000 = 100% / 1.0x).
const BpsDenominator = 10000

// Totals is the derived financial state of a rental. The invariant
// TotalAmountCents == SubtotalCents + delivery + insurance + late +
// damage holds by construction.
type Totals struct {
	TotalDays        int32
	SubtotalCents    int64
	TotalAmountCents int64
}

// TotalDays computes the billable rental duration: the day difference
// between start and end, minimum 1. A same-day rental bills one day.
func TotalDays(startDate, endDate string) (int32, error) {
	start, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return 0, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.Parse(DateLayout, endDate)
	if err != nil {
		return 0, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	if end.Before(start) {
		return 0, fmt.Errorf("end date %s before start date %s", endDate, startDate)
	}
	days := int32(end.Sub(start).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return days, nil
}

// ComputeTotals derives subtotal and total from the rental terms and
// current fee components.
func ComputeTotals(dailyRateCents int64, quantity int32, startDate, endDate string, deliveryCents, insuranceCents, lateCents, damageCents int64) (Totals, error) {
	if dailyRateCents < 0 || quantity <= 0 {
		return Totals{}, fmt.Errorf("invalid rental terms: rate=%d quantity=%d", dailyRateCents, quantity)
	}
	if deliveryCents < 0 || insuranceCents < 0 || lateCents < 0 || damageCents < 0 {
		return Totals{}, fmt.Errorf("negative fee component")
	}
	days, err := TotalDays(startDate, endDate)
	if err != nil {
		return Totals{}, err
	}
	subtotal := dailyRateCents * int64(days) * int64(quantity)
	return Totals{
		TotalDays:        days,
		SubtotalCents:    subtotal,
		TotalAmountCents: subtotal + deliveryCents + insuranceCents + lateCents + damageCents,
	}, nil
}

// OverdueDays computes calendar days past the agreed end date: the
// date of the actual return minus the end date. A return any time on
// the end date itself is on time.
func OverdueDays(endDate string, actualEnd time.Time) (int32, error) {
	end, err := time.Parse(DateLayout, endDate)
	if err != nil {
		return 0, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	returned := time.Date(actualEnd.Year(), actualEnd.Month(), actualEnd.Day(), 0, 0, 0, 0, time.UTC)
	days := int32(returned.Sub(end).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days, nil
}

// LateFeeCents computes overdue_days * daily_rate * multiplier, where
// the multiplier is expressed in basis points (10000 = 1.0x).
func LateFeeCents(overdueDays int32, dailyRateCents int64, multiplierBps int32) (int64, error) {
	if overdueDays < 0 || dailyRateCents < 0 || multiplierBps < 0 {
		return 0, fmt.Errorf("negative late fee input")
	}
	if overdueDays == 0 {
		return 0, nil
	}
	raw := int64(overdueDays) * dailyRateCents * int64(multiplierBps)
	return roundHalfEvenDiv(raw, BpsDenominator), nil
}

// SplitCommission divides revenue between platform and seller.
// Commission is rounded half-even; the payout is always the exact
// remainder, so commission + payout == revenue with no drift.
func SplitCommission(totalRevenueCents int64, rateBps int32) (commissionCents, payoutCents int64, err error) {
	if totalRevenueCents < 0 {
		return 0, 0, fmt.Errorf("negative revenue: %d", totalRevenueCents)
	}
	if rateBps < 0 || rateBps > BpsDenominator {
		return 0, 0, fmt.Errorf("commission rate out of range: %d bps", rateBps)
	}
	commissionCents = roundHalfEvenDiv(totalRevenueCents*int64(rateBps), BpsDenominator)
	payoutCents = totalRevenueCents - commissionCents
	return commissionCents, payoutCents, nil
}

// RefundBreakdown is the result of a cancellation refund computation.
type RefundBreakdown struct {
	PaymentRefundCents int64
	DepositRefundCents int64
}

// CancellationRefund computes the refund for a cancellation before
// delivery: completed online payments minus the non-refundable
// processing fee; the deposit is refunded in full unless damage fees
// were assessed.
func CancellationRefund(completedOnlineCents, processingFeeCents, depositCents, damageFeeCents int64) (RefundBreakdown, error) {
	if completedOnlineCents < 0 || processingFeeCents < 0 || depositCents < 0 || damageFeeCents < 0 {
		return RefundBreakdown{}, fmt.Errorf("negative refund input")
	}
	var b RefundBreakdown
	if completedOnlineCents > 0 {
		b.PaymentRefundCents = completedOnlineCents - processingFeeCents
		if b.PaymentRefundCents < 0 {
			b.PaymentRefundCents = 0
		}
	}
	if damageFeeCents == 0 {
		b.DepositRefundCents = depositCents
	}
	return b, nil
}

// FormatCents renders an integer cent amount as a decimal string for
// display, e.g. 215000 -> "2150.00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// roundHalfEvenDiv divides numerator by denominator with banker's
// rounding (round half to even). Inputs are non-negative.
func roundHalfEvenDiv(numerator, denominator int64) int64 {
	quotient := numerator / denominator
	remainder := numerator % denominator
	double := remainder * 2
	switch {
	case double < denominator:
		return quotient
	case double > denominator:
		return quotient + 1
	default:
		// Exactly half: round to the even neighbour.
		if quotient%2 == 0 {
			return quotient
		}
		return quotient + 1
	}
}
