package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTotalDays(t *testing.T) {
	t.Run("Four Day Rental", func(t *testing.T) {
		days, err := TotalDays("2024-11-01", "2024-11-05")
		assert.NoError(t, err)
		assert.Equal(t, int32(4), days)
	})

	t.Run("Same Day Bills One Day", func(t *testing.T) {
		days, err := TotalDays("2024-11-01", "2024-11-01")
		assert.NoError(t, err)
		assert.Equal(t, int32(1), days)
	})

	t.Run("Reversed Dates", func(t *testing.T) {
		_, err := TotalDays("2024-11-05", "2024-11-01")
		assert.Error(t, err)
	})

	t.Run("Bad Format", func(t *testing.T) {
		_, err := TotalDays("01/11/2024", "2024-11-05")
		assert.Error(t, err)
	})
}

func TestComputeTotals(t *testing.T) {
	t.Run("Daily Rate Times Days Plus Fees", func(t *testing.T) {
		// 500.00/day, 4 days, qty 1, 150.00 delivery
		totals, err := ComputeTotals(50000, 1, "2024-11-01", "2024-11-05", 15000, 0, 0, 0)
		assert.NoError(t, err)
		assert.Equal(t, int32(4), totals.TotalDays)
		assert.Equal(t, int64(200000), totals.SubtotalCents)
		assert.Equal(t, int64(215000), totals.TotalAmountCents)
	})

	t.Run("Quantity Multiplies Subtotal", func(t *testing.T) {
		totals, err := ComputeTotals(50000, 3, "2024-11-01", "2024-11-05", 0, 0, 0, 0)
		assert.NoError(t, err)
		assert.Equal(t, int64(600000), totals.SubtotalCents)
	})

	t.Run("Late And Damage Included In Total", func(t *testing.T) {
		totals, err := ComputeTotals(50000, 1, "2024-11-01", "2024-11-05", 15000, 0, 100000, 5000)
		assert.NoError(t, err)
		assert.Equal(t, int64(320000), totals.TotalAmountCents)
	})

	t.Run("Negative Fee Rejected", func(t *testing.T) {
		_, err := ComputeTotals(50000, 1, "2024-11-01", "2024-11-05", -1, 0, 0, 0)
		assert.Error(t, err)
	})

	t.Run("Zero Quantity Rejected", func(t *testing.T) {
		_, err := ComputeTotals(50000, 0, "2024-11-01", "2024-11-05", 0, 0, 0, 0)
		assert.Error(t, err)
	})
}

func TestOverdueDays(t *testing.T) {
	t.Run("Returned Two Days Late", func(t *testing.T) {
		returned := time.Date(2024, 11, 7, 14, 30, 0, 0, time.UTC)
		days, err := OverdueDays("2024-11-05", returned)
		assert.NoError(t, err)
		assert.Equal(t, int32(2), days)
	})

	t.Run("Returned On End Date", func(t *testing.T) {
		returned := time.Date(2024, 11, 5, 23, 59, 0, 0, time.UTC)
		days, err := OverdueDays("2024-11-05", returned)
		assert.NoError(t, err)
		assert.Equal(t, int32(0), days)
	})

	t.Run("Returned Early", func(t *testing.T) {
		returned := time.Date(2024, 11, 3, 9, 0, 0, 0, time.UTC)
		days, err := OverdueDays("2024-11-05", returned)
		assert.NoError(t, err)
		assert.Equal(t, int32(0), days)
	})
}

func TestLateFeeCents(t *testing.T) {
	t.Run("Two Days At Full Daily Rate", func(t *testing.T) {
		// 2 days late, 500.00/day, 1.0x multiplier -> 1000.00
		fee, err := LateFeeCents(2, 50000, 10000)
		assert.NoError(t, err)
		assert.Equal(t, int64(100000), fee)
	})

	t.Run("Half Rate Multiplier", func(t *testing.T) {
		fee, err := LateFeeCents(3, 10000, 5000)
		assert.NoError(t, err)
		assert.Equal(t, int64(15000), fee)
	})

	t.Run("Zero Days Zero Fee", func(t *testing.T) {
		fee, err := LateFeeCents(0, 50000, 10000)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), fee)
	})
}

func TestSplitCommission(t *testing.T) {
	t.Run("Ten Percent Of Final Total", func(t *testing.T) {
		// 2350.00 revenue at 10% -> 235.00 commission, 2115.00 payout
		commission, payout, err := SplitCommission(235000, 1000)
		assert.NoError(t, err)
		assert.Equal(t, int64(23500), commission)
		assert.Equal(t, int64(211500), payout)
	})

	t.Run("Payout Is Exact Remainder", func(t *testing.T) {
		for _, revenue := range []int64{1, 99, 101, 12345, 235000, 999999999} {
			commission, payout, err := SplitCommission(revenue, 1250)
			assert.NoError(t, err)
			assert.Equal(t, revenue, commission+payout, "revenue %d", revenue)
		}
	})

	t.Run("Half Cent Rounds To Even", func(t *testing.T) {
		// 25 * 1000 / 10000 = 2.5 -> 2 (even)
		commission, _, err := SplitCommission(25, 1000)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), commission)

		// 35 * 1000 / 10000 = 3.5 -> 4 (even)
		commission, _, err = SplitCommission(35, 1000)
		assert.NoError(t, err)
		assert.Equal(t, int64(4), commission)
	})

	t.Run("Below Half Rounds Down Above Half Rounds Up", func(t *testing.T) {
		// 234 * 1000 / 10000 = 23.4 -> 23
		commission, _, err := SplitCommission(234, 1000)
		assert.NoError(t, err)
		assert.Equal(t, int64(23), commission)

		// 236 * 1000 / 10000 = 23.6 -> 24
		commission, _, err = SplitCommission(236, 1000)
		assert.NoError(t, err)
		assert.Equal(t, int64(24), commission)
	})

	t.Run("Rate Out Of Range", func(t *testing.T) {
		_, _, err := SplitCommission(1000, 10001)
		assert.Error(t, err)
	})
}

func TestCancellationRefund(t *testing.T) {
	t.Run("Full Refund No Processing Fee", func(t *testing.T) {
		b, err := CancellationRefund(215000, 0, 50000, 0)
		assert.NoError(t, err)
		assert.Equal(t, int64(215000), b.PaymentRefundCents)
		assert.Equal(t, int64(50000), b.DepositRefundCents)
	})

	t.Run("Processing Fee Deducted", func(t *testing.T) {
		b, err := CancellationRefund(215000, 2500, 0, 0)
		assert.NoError(t, err)
		assert.Equal(t, int64(212500), b.PaymentRefundCents)
	})

	t.Run("Refund Never Negative", func(t *testing.T) {
		b, err := CancellationRefund(1000, 2500, 0, 0)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), b.PaymentRefundCents)
	})

	t.Run("Damage Withholds Deposit", func(t *testing.T) {
		b, err := CancellationRefund(0, 0, 50000, 100)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), b.DepositRefundCents)
	})

	t.Run("Nothing Paid Nothing Refunded", func(t *testing.T) {
		b, err := CancellationRefund(0, 2500, 0, 0)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), b.PaymentRefundCents)
	})
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "2150.00", FormatCents(215000))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "-12.34", FormatCents(-1234))
}
