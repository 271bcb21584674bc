package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"equiprent-backend/internal/domain"
)

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) GetByReference(ctx context.Context, reference string) (*domain.Rental, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) UpdateVersioned(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	if args.Error(0) == nil {
		rental.Version++
	}
	return args.Error(0)
}
func (m *MockRentalRepo) ListByCustomer(ctx context.Context, customerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, customerID, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalRepo) ListBySeller(ctx context.Context, sellerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, sellerID, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalRepo) ListActivePastEndDate(ctx context.Context, status domain.RentalStatus, cutoffDate string) ([]domain.Rental, error) {
	args := m.Called(ctx, status, cutoffDate)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) CompleteWithSale(ctx context.Context, rental *domain.Rental, audit *domain.StatusTransition, sale *domain.SaleRecord, entry *domain.CommissionLedgerEntry) error {
	args := m.Called(ctx, rental, audit, sale, entry)
	if args.Error(0) == nil {
		rental.Version++
		sale.ID = 1
		if entry != nil {
			entry.ID = 1
			entry.SaleRecordID = sale.ID
		}
	}
	return args.Error(0)
}

// MockTransitionRepo
type MockTransitionRepo struct {
	mock.Mock
}

func (m *MockTransitionRepo) Create(ctx context.Context, tr *domain.StatusTransition) error {
	args := m.Called(ctx, tr)
	return args.Error(0)
}
func (m *MockTransitionRepo) ListByRental(ctx context.Context, rentalID int32) ([]domain.StatusTransition, error) {
	args := m.Called(ctx, rentalID)
	return args.Get(0).([]domain.StatusTransition), args.Error(1)
}
func (m *MockTransitionRepo) Latest(ctx context.Context, rentalID int32) (*domain.StatusTransition, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatusTransition), args.Error(1)
}

// MockPaymentRepo
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPaymentRepo) GetByID(ctx context.Context, id int32) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) Update(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPaymentRepo) ListByRental(ctx context.Context, rentalID int32) ([]domain.Payment, error) {
	args := m.Called(ctx, rentalID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) CompletedRentalFee(ctx context.Context, rentalID int32) (*domain.Payment, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) SumCompletedByMethod(ctx context.Context, rentalID int32, kind domain.PaymentKind, method domain.PaymentMethod) (int64, error) {
	args := m.Called(ctx, rentalID, kind, method)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockPaymentRepo) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.Payment, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.Payment), args.Error(1)
}

// MockSaleRepo
type MockSaleRepo struct {
	mock.Mock
}

func (m *MockSaleRepo) GetByRentalID(ctx context.Context, rentalID int32) (*domain.SaleRecord, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SaleRecord), args.Error(1)
}
func (m *MockSaleRepo) ListBySeller(ctx context.Context, sellerID int32, page, pageSize int32) ([]domain.SaleRecord, int32, error) {
	args := m.Called(ctx, sellerID, page, pageSize)
	return args.Get(0).([]domain.SaleRecord), args.Get(1).(int32), args.Error(2)
}
func (m *MockSaleRepo) UpdatePayout(ctx context.Context, saleID int32, status domain.PayoutStatus, reference string, date time.Time) error {
	args := m.Called(ctx, saleID, status, reference, date)
	return args.Error(0)
}
func (m *MockSaleRepo) CreateAdjustment(ctx context.Context, adj *domain.SaleAdjustment) error {
	args := m.Called(ctx, adj)
	return args.Error(0)
}

// MockCommissionLedgerRepo
type MockCommissionLedgerRepo struct {
	mock.Mock
}

func (m *MockCommissionLedgerRepo) Create(ctx context.Context, entry *domain.CommissionLedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockCommissionLedgerRepo) GetByID(ctx context.Context, id int32) (*domain.CommissionLedgerEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionLedgerEntry), args.Error(1)
}
func (m *MockCommissionLedgerRepo) ListOutstandingBySeller(ctx context.Context, sellerID int32) ([]domain.CommissionLedgerEntry, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).([]domain.CommissionLedgerEntry), args.Error(1)
}
func (m *MockCommissionLedgerRepo) ListOutstandingDueBefore(ctx context.Context, date string) ([]domain.CommissionLedgerEntry, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]domain.CommissionLedgerEntry), args.Error(1)
}
func (m *MockCommissionLedgerRepo) Settle(ctx context.Context, entryID int32, status domain.CommissionEntryStatus, reference string, settledAt time.Time) error {
	args := m.Called(ctx, entryID, status, reference, settledAt)
	return args.Error(0)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyTransition(ctx context.Context, rental *domain.Rental, from, to domain.RentalStatus) {
	m.Called(ctx, rental, from, to)
}
func (m *MockNotifier) NotifyPaymentCompleted(ctx context.Context, payment *domain.Payment) {
	m.Called(ctx, payment)
}
func (m *MockNotifier) NotifyCommissionDue(ctx context.Context, entry *domain.CommissionLedgerEntry) {
	m.Called(ctx, entry)
}
