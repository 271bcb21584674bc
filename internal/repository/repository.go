package repository

import (
	"context"
	"time"

	"equiprent-backend/internal/domain"
)

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)
	GetByReference(ctx context.Context, reference string) (*domain.Rental, error)
	// UpdateVersioned persists the rental only if the stored version
	// still matches rental.Version; on success the version is
	// incremented in place. A stale version returns
	// domain.ErrConcurrentModification.
	UpdateVersioned(ctx context.Context, rental *domain.Rental) error
	ListByCustomer(ctx context.Context, customerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error)
	ListBySeller(ctx context.Context, sellerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error)
	// ListActivePastEndDate feeds the overdue sweep: rentals in the
	// given status whose end_date is before the cutoff date.
	ListActivePastEndDate(ctx context.Context, status domain.RentalStatus, cutoffDate string) ([]domain.Rental, error)
	// CompleteWithSale commits the returning→completed arc atomically:
	// versioned rental update, audit record, sale record and (for cash
	// collections) the commission ledger entry in one transaction.
	CompleteWithSale(ctx context.Context, rental *domain.Rental, audit *domain.StatusTransition, sale *domain.SaleRecord, entry *domain.CommissionLedgerEntry) error
}

type TransitionRepository interface {
	Create(ctx context.Context, tr *domain.StatusTransition) error
	ListByRental(ctx context.Context, rentalID int32) ([]domain.StatusTransition, error)
	Latest(ctx context.Context, rentalID int32) (*domain.StatusTransition, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id int32) (*domain.Payment, error)
	Update(ctx context.Context, p *domain.Payment) error
	ListByRental(ctx context.Context, rentalID int32) ([]domain.Payment, error)
	// CompletedRentalFee returns the completed rental-fee payment for
	// the rental, or domain.ErrPaymentNotFound.
	CompletedRentalFee(ctx context.Context, rentalID int32) (*domain.Payment, error)
	// SumCompletedByMethod totals completed payments of the given kind
	// and method, for refund computation.
	SumCompletedByMethod(ctx context.Context, rentalID int32, kind domain.PaymentKind, method domain.PaymentMethod) (int64, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.Payment, error)
}

type SaleRepository interface {
	GetByRentalID(ctx context.Context, rentalID int32) (*domain.SaleRecord, error)
	ListBySeller(ctx context.Context, sellerID int32, page, pageSize int32) ([]domain.SaleRecord, int32, error)
	// UpdatePayout mutates payout tracking only; the financial snapshot
	// columns are immutable after creation.
	UpdatePayout(ctx context.Context, saleID int32, status domain.PayoutStatus, reference string, date time.Time) error
	CreateAdjustment(ctx context.Context, adj *domain.SaleAdjustment) error
}

type CommissionLedgerRepository interface {
	Create(ctx context.Context, entry *domain.CommissionLedgerEntry) error
	GetByID(ctx context.Context, id int32) (*domain.CommissionLedgerEntry, error)
	ListOutstandingBySeller(ctx context.Context, sellerID int32) ([]domain.CommissionLedgerEntry, error)
	ListOutstandingDueBefore(ctx context.Context, date string) ([]domain.CommissionLedgerEntry, error)
	// Settle records a settlement event (remittance or payout
	// deduction). Entries are never deleted.
	Settle(ctx context.Context, entryID int32, status domain.CommissionEntryStatus, reference string, settledAt time.Time) error
}
