package service

import (
	"context"
	"fmt"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository"
)

type settlementService struct {
	rentals   repository.RentalRepository
	payments  repository.PaymentRepository
	sales     repository.SaleRepository
	ledger    repository.CommissionLedgerRepository
	lifecycle RentalService
	notifier  Notifier
}

func NewSettlementService(
	rentals repository.RentalRepository,
	payments repository.PaymentRepository,
	sales repository.SaleRepository,
	ledger repository.CommissionLedgerRepository,
	lifecycle RentalService,
	notifier Notifier,
) SettlementService {
	return &settlementService{
		rentals:   rentals,
		payments:  payments,
		sales:     sales,
		ledger:    ledger,
		lifecycle: lifecycle,
		notifier:  notifier,
	}
}

func (s *settlementService) RecordPayment(ctx context.Context, rentalID int32, in PaymentInput) (*domain.Payment, error) {
	rt, err := s.rentals.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if in.AmountCents <= 0 {
		return nil, fmt.Errorf("payment amount must be positive, got %d", in.AmountCents)
	}

	p := &domain.Payment{
		RentalID:      rt.ID,
		Kind:          in.Kind,
		Method:        in.Method,
		Status:        domain.PaymentStatusPending,
		AmountCents:   in.AmountCents,
		TransactionID: in.TransactionID,
		ReceiptKey:    in.ReceiptKey,
		ReceiptNumber: in.ReceiptNumber,
		Note:          in.Note,
	}
	if in.Completed {
		now := time.Now().UTC()
		p.Status = domain.PaymentStatusCompleted
		p.CompletedAt = &now
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}

	if p.Status == domain.PaymentStatusCompleted {
		s.notifier.NotifyPaymentCompleted(ctx, p)
		if p.Kind == domain.PaymentKindRentalFee {
			s.advanceAfterPayment(ctx, rt)
		}
	}
	return p, nil
}

// advanceAfterPayment drives a rental waiting on money into confirmed.
// The transition engine re-checks the completed payment itself, so a
// payment for a rental in any other state is simply recorded.
func (s *settlementService) advanceAfterPayment(ctx context.Context, rt *domain.Rental) {
	switch rt.Status {
	case domain.RentalStatusApproved, domain.RentalStatusPaymentPending:
	default:
		return
	}
	_, err := s.lifecycle.RequestTransition(ctx, domain.SystemActor, rt.ID, domain.TransitionRequest{
		TargetStatus:      domain.RentalStatusConfirmed,
		Note:              "payment completed",
		VisibleToCustomer: true,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to confirm rental after payment", "rental", rt.RentalReference, "error", err)
	}
}

func (s *settlementService) AuthorizeCashOnDelivery(ctx context.Context, actor domain.Actor, rentalID int32, note string) (*domain.Rental, error) {
	rt, err := s.rentals.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	switch rt.Status {
	case domain.RentalStatusApproved, domain.RentalStatusPaymentPending:
	default:
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, rt.Status, domain.RentalStatusConfirmed)
	}
	if actor.Role != domain.RoleStaff && actor.Role != domain.RoleSystem {
		return nil, fmt.Errorf("%w: role %s may not authorize cash on delivery", domain.ErrUnauthorizedActor, actor.Role)
	}

	// Flag the rental first so the engine's payment gate accepts the
	// confirm transition without a completed payment row.
	rt.CashOnDelivery = true
	if err := s.rentals.UpdateVersioned(ctx, rt); err != nil {
		return nil, err
	}

	p := &domain.Payment{
		RentalID:    rt.ID,
		Kind:        domain.PaymentKindRentalFee,
		Method:      domain.PaymentMethodCash,
		Status:      domain.PaymentStatusPending,
		AmountCents: rt.TotalAmountCents,
		Note:        note,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}

	res, err := s.lifecycle.RequestTransition(ctx, domain.SystemActor, rt.ID, domain.TransitionRequest{
		TargetStatus:      domain.RentalStatusConfirmed,
		Note:              "cash on delivery authorized",
		VisibleToCustomer: true,
	})
	if err != nil {
		return nil, err
	}
	return res.Rental, nil
}

func (s *settlementService) CompleteCashReceipt(ctx context.Context, actor domain.Actor, paymentID int32, receiptKey, receiptNumber, note string) (*domain.Payment, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Method != domain.PaymentMethodCash {
		return nil, fmt.Errorf("payment %d is not a cash payment", paymentID)
	}
	if p.Status == domain.PaymentStatusCompleted {
		return p, nil
	}

	rt, err := s.rentals.GetByID(ctx, p.RentalID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleSeller && rt.SellerID != actor.UserID {
		return nil, domain.ErrUnauthorizedActor
	}
	if actor.Role == domain.RoleCustomer {
		return nil, domain.ErrUnauthorizedActor
	}
	if receiptKey == "" {
		return nil, fmt.Errorf("%w: receipt for cash payment %d", domain.ErrMissingProof, paymentID)
	}

	now := time.Now().UTC()
	p.Status = domain.PaymentStatusCompleted
	p.ReceiptKey = receiptKey
	p.ReceiptNumber = receiptNumber
	if note != "" {
		p.Note = note
	}
	p.CompletedAt = &now
	if err := s.payments.Update(ctx, p); err != nil {
		return nil, err
	}

	s.notifier.NotifyPaymentCompleted(ctx, p)
	return p, nil
}

func (s *settlementService) RemitCommission(ctx context.Context, entryID int32, reference string) error {
	if reference == "" {
		return fmt.Errorf("settlement reference is required")
	}
	return s.ledger.Settle(ctx, entryID, domain.CommissionPaid, reference, time.Now().UTC())
}

func (s *settlementService) AdjustSale(ctx context.Context, actor domain.Actor, saleID int32, amountCents int64, reason string) (*domain.SaleAdjustment, error) {
	if actor.Role != domain.RoleStaff {
		return nil, fmt.Errorf("%w: role %s may not adjust sales", domain.ErrUnauthorizedActor, actor.Role)
	}
	if amountCents == 0 {
		return nil, fmt.Errorf("adjustment amount must be non-zero")
	}
	if reason == "" {
		return nil, fmt.Errorf("adjustment reason is required")
	}

	adj := &domain.SaleAdjustment{
		SaleRecordID: saleID,
		AmountCents:  amountCents,
		Reason:       reason,
		CreatedBy:    actor.UserID,
	}
	if err := s.sales.CreateAdjustment(ctx, adj); err != nil {
		return nil, err
	}
	return adj, nil
}

func (s *settlementService) ListSales(ctx context.Context, sellerID int32, page, pageSize int32) ([]domain.SaleRecord, int32, error) {
	return s.sales.ListBySeller(ctx, sellerID, page, pageSize)
}

func (s *settlementService) OutstandingCommission(ctx context.Context, sellerID int32) ([]domain.CommissionLedgerEntry, int64, error) {
	entries, err := s.ledger.ListOutstandingBySeller(ctx, sellerID)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	for _, e := range entries {
		total += e.AmountCents
	}
	return entries, total, nil
}
