package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type RentalStatus string

const (
	RentalStatusPending         RentalStatus = "pending"
	RentalStatusApproved        RentalStatus = "approved"
	RentalStatusPaymentPending  RentalStatus = "payment_pending"
	RentalStatusConfirmed       RentalStatus = "confirmed"
	RentalStatusPreparing       RentalStatus = "preparing"
	RentalStatusReadyForPickup  RentalStatus = "ready_for_pickup"
	RentalStatusOutForDelivery  RentalStatus = "out_for_delivery"
	RentalStatusDelivered       RentalStatus = "delivered"
	RentalStatusInProgress      RentalStatus = "in_progress"
	RentalStatusReturnRequested RentalStatus = "return_requested"
	RentalStatusReturning       RentalStatus = "returning"
	RentalStatusCompleted       RentalStatus = "completed"
	RentalStatusCancelled       RentalStatus = "cancelled"
	RentalStatusOverdue         RentalStatus = "overdue"
	RentalStatusDispute         RentalStatus = "dispute"
)

// AllRentalStatuses lists every status the machine knows about, in
// canonical forward order with the side states last.
var AllRentalStatuses = []RentalStatus{
	RentalStatusPending,
	RentalStatusApproved,
	RentalStatusPaymentPending,
	RentalStatusConfirmed,
	RentalStatusPreparing,
	RentalStatusReadyForPickup,
	RentalStatusOutForDelivery,
	RentalStatusDelivered,
	RentalStatusInProgress,
	RentalStatusReturnRequested,
	RentalStatusReturning,
	RentalStatusCompleted,
	RentalStatusCancelled,
	RentalStatusOverdue,
	RentalStatusDispute,
}

// IsTerminal reports whether no further transition may leave this status.
func (s RentalStatus) IsTerminal() bool {
	return s == RentalStatusCompleted || s == RentalStatusCancelled
}

// Rental is the central transaction between a customer and a seller for
// a quantity of equipment over a date range. Monetary fields are integer
// cents; daily_rate is snapshotted at creation and never changes
// afterwards.
type Rental struct {
	ID          int32      `json:"id"`
	CustomerID  int32      `json:"customer_id"`
	SellerID    int32      `json:"seller_id"`
	EquipmentID int32      `json:"equipment_id"`
	Quantity    int32      `json:"quantity"`
	StartDate   string     `json:"start_date"` // yyyy-mm-dd
	EndDate     string     `json:"end_date"`   // yyyy-mm-dd
	ActualStart *time.Time `json:"actual_start,omitempty"`
	ActualEnd   *time.Time `json:"actual_end,omitempty"`

	// Price snapshot and derived totals. TotalAmountCents is always
	// subtotal + delivery + insurance + late + damage; the deposit is
	// refundable and deliberately excluded from revenue.
	DailyRateCents       int64 `json:"daily_rate_cents"`
	TotalDays            int32 `json:"total_days"`
	SubtotalCents        int64 `json:"subtotal_cents"`
	DeliveryFeeCents     int64 `json:"delivery_fee_cents"`
	InsuranceFeeCents    int64 `json:"insurance_fee_cents"`
	SecurityDepositCents int64 `json:"security_deposit_cents"`
	LateFeeCents         int64 `json:"late_fee_cents"`
	DamageFeeCents       int64 `json:"damage_fee_cents"`
	TotalAmountCents     int64 `json:"total_amount_cents"`

	Status             RentalStatus `json:"status"`
	RentalReference    string       `json:"rental_reference"`
	CashOnDelivery     bool         `json:"cash_on_delivery"`
	CancellationReason string       `json:"cancellation_reason,omitempty"`

	// Version implements the optimistic per-rental write lock. Every
	// successful update increments it; a stale update matches zero rows.
	Version int32 `json:"version"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// NewRentalReference generates the human-readable reference code,
// unique per rental and immutable after creation.
func NewRentalReference() string {
	return "RNT" + strings.ToUpper(uuid.New().String()[:8])
}
