package service

import (
	"context"

	"equiprent-backend/internal/domain"
)

// CreateRentalInput carries the booking terms. The daily rate, fees and
// deposit are snapshotted from the equipment listing by the caller
// (equipment lookup is an upstream concern); availability and quantity
// bounds are checked there too.
type CreateRentalInput struct {
	CustomerID           int32
	SellerID             int32
	EquipmentID          int32
	Quantity             int32
	StartDate            string // yyyy-mm-dd
	EndDate              string // yyyy-mm-dd
	DailyRateCents       int64
	DeliveryFeeCents     int64
	InsuranceFeeCents    int64
	SecurityDepositCents int64
}

// TransitionResult is the successful outcome of RequestTransition: the
// updated rental and the audit entry written for it. Idempotent no-op
// replays return the current rental with Audit nil and Applied false.
type TransitionResult struct {
	Rental  *domain.Rental
	Audit   *domain.StatusTransition
	Applied bool
}

type RentalService interface {
	CreateRental(ctx context.Context, in CreateRentalInput) (*domain.Rental, error)
	// RequestTransition validates and applies one lifecycle transition:
	// allow-list, actor role, proof policy, payment gate, money
	// recomputation, audit append, and on completion the atomic sale
	// record creation.
	RequestTransition(ctx context.Context, actor domain.Actor, rentalID int32, req domain.TransitionRequest) (*TransitionResult, error)
	GetRental(ctx context.Context, actor domain.Actor, rentalID int32) (*domain.Rental, []domain.StatusTransition, error)
	ListByCustomer(ctx context.Context, customerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error)
	ListBySeller(ctx context.Context, sellerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error)
}

// PaymentInput is the RecordPayment payload, shared by the online
// gateway webhook and the seller cash flow.
type PaymentInput struct {
	Kind          domain.PaymentKind
	Method        domain.PaymentMethod
	AmountCents   int64
	TransactionID string
	Completed     bool // gateway-confirmed (online) or receipt-verified (cash)
	ReceiptKey    string
	ReceiptNumber string
	Note          string
}

type SettlementService interface {
	// RecordPayment persists a payment and, when a rental-fee payment
	// completes, drives the system transition into confirmed.
	RecordPayment(ctx context.Context, rentalID int32, in PaymentInput) (*domain.Payment, error)
	// AuthorizeCashOnDelivery confirms a rental with a pending cash
	// payment to be collected by the seller at delivery.
	AuthorizeCashOnDelivery(ctx context.Context, actor domain.Actor, rentalID int32, note string) (*domain.Rental, error)
	// CompleteCashReceipt marks a pending cash payment completed
	// retroactively from the seller's uploaded receipt.
	CompleteCashReceipt(ctx context.Context, actor domain.Actor, paymentID int32, receiptKey, receiptNumber, note string) (*domain.Payment, error)
	// RemitCommission settles an outstanding ledger entry by explicit
	// seller remittance.
	RemitCommission(ctx context.Context, entryID int32, reference string) error
	// AdjustSale records a correction against a sale record. The sale
	// snapshot itself is never mutated.
	AdjustSale(ctx context.Context, actor domain.Actor, saleID int32, amountCents int64, reason string) (*domain.SaleAdjustment, error)
	ListSales(ctx context.Context, sellerID int32, page, pageSize int32) ([]domain.SaleRecord, int32, error)
	OutstandingCommission(ctx context.Context, sellerID int32) ([]domain.CommissionLedgerEntry, int64, error)
}

// Notifier dispatches lifecycle events to interested parties. All
// methods are fire-and-forget: failures are logged by implementations
// and never surface into the calling transaction.
type Notifier interface {
	NotifyTransition(ctx context.Context, rental *domain.Rental, from, to domain.RentalStatus)
	NotifyPaymentCompleted(ctx context.Context, payment *domain.Payment)
	NotifyCommissionDue(ctx context.Context, entry *domain.CommissionLedgerEntry)
}
