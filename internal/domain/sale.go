package domain

import "time"

type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "pending"
	PayoutStatusCompleted PayoutStatus = "completed"
	PayoutStatusOnHold    PayoutStatus = "on_hold"
)

// SaleRecord is the immutable financial snapshot produced exactly once,
// when a rental reaches completed. Commission percentage is captured as
// basis points at time of sale; later configuration changes never touch
// historical records. CommissionCents + SellerPayoutCents ==
// TotalRevenueCents holds exactly, with the payout always the remainder.
type SaleRecord struct {
	ID              int32  `json:"id"`
	RentalID        int32  `json:"rental_id"`
	RentalReference string `json:"rental_reference"`
	SellerID        int32  `json:"seller_id"`
	CustomerID      int32  `json:"customer_id"`
	EquipmentID     int32  `json:"equipment_id"`

	TotalRevenueCents int64 `json:"total_revenue_cents"`
	SubtotalCents     int64 `json:"subtotal_cents"`
	DeliveryFeeCents  int64 `json:"delivery_fee_cents"`
	InsuranceFeeCents int64 `json:"insurance_fee_cents"`
	LateFeeCents      int64 `json:"late_fee_cents"`
	DamageFeeCents    int64 `json:"damage_fee_cents"`

	CommissionRateBps int32 `json:"commission_rate_bps"`
	CommissionCents   int64 `json:"commission_cents"`
	SellerPayoutCents int64 `json:"seller_payout_cents"`

	// Analytics snapshot of the rental terms.
	RentalDays      int32  `json:"rental_days"`
	RentalStartDate string `json:"rental_start_date"`
	RentalEndDate   string `json:"rental_end_date"`
	Quantity        int32  `json:"quantity"`

	PayoutStatus    PayoutStatus `json:"payout_status"`
	PayoutReference string       `json:"payout_reference,omitempty"`
	PayoutDate      *time.Time   `json:"payout_date,omitempty"`

	SaleDate  time.Time `json:"sale_date"`
	CreatedAt time.Time `json:"created_at"`
}

type CommissionEntryStatus string

const (
	CommissionOutstanding        CommissionEntryStatus = "outstanding"
	CommissionDeductedFromPayout CommissionEntryStatus = "deducted_from_payout"
	CommissionPaid               CommissionEntryStatus = "paid"
)

// CommissionLedgerEntry tracks commission a seller owes the platform
// after a cash-on-delivery sale. Created at sale completion, mutated
// only by settlement events (remittance or deduction from a future
// payout), never deleted.
type CommissionLedgerEntry struct {
	ID                  int32                 `json:"id"`
	SellerID            int32                 `json:"seller_id"`
	SaleRecordID        int32                 `json:"sale_record_id"`
	AmountCents         int64                 `json:"amount_cents"`
	DueDate             string                `json:"due_date"` // yyyy-mm-dd
	Status              CommissionEntryStatus `json:"status"`
	SettlementReference string                `json:"settlement_reference,omitempty"`
	SettledAt           *time.Time            `json:"settled_at,omitempty"`
	CreatedAt           time.Time             `json:"created_at"`
}

// SaleAdjustment corrects a SaleRecord after the fact (for example a
// damage charge discovered later). The SaleRecord itself is never
// mutated.
type SaleAdjustment struct {
	ID           int32     `json:"id"`
	SaleRecordID int32     `json:"sale_record_id"`
	AmountCents  int64     `json:"amount_cents"` // positive increases revenue
	Reason       string    `json:"reason"`
	CreatedBy    int32     `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}
