package domain

import "time"

type PaymentKind string

const (
	PaymentKindRentalFee PaymentKind = "rental_fee"
	PaymentKindDeposit   PaymentKind = "deposit"
	PaymentKindLateFee   PaymentKind = "late_fee"
	PaymentKindDamageFee PaymentKind = "damage_fee"
	PaymentKindRefund    PaymentKind = "refund"
)

type PaymentMethod string

const (
	PaymentMethodOnline       PaymentMethod = "online"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment is one money movement attached to a rental. Online payments
// carry the gateway transaction id; cash payments are completed
// retroactively by a seller-uploaded receipt (file key + receipt
// number + note).
type Payment struct {
	ID            int32         `json:"id"`
	RentalID      int32         `json:"rental_id"`
	Kind          PaymentKind   `json:"kind"`
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	AmountCents   int64         `json:"amount_cents"`
	TransactionID string        `json:"transaction_id,omitempty"`
	ReceiptKey    string        `json:"receipt_key,omitempty"`
	ReceiptNumber string        `json:"receipt_number,omitempty"`
	Note          string        `json:"note,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
}
