package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository"
	"equiprent-backend/internal/utils"
)

// maxConflictRetries bounds automatic retries when two requests race on
// the same rental's version.
const maxConflictRetries = 3

// LifecyclePolicy carries the configurable policy values the engine
// snapshots into records it writes. Process-wide, read-only per request.
type LifecyclePolicy struct {
	AutoApproveMaxQuantity      int32
	CommissionRateBps           int32
	LateFeeMultiplierBps        int32
	CancellationProcessingCents int64
	SettlementWindowDays        int
}

type rentalService struct {
	rentals     repository.RentalRepository
	transitions repository.TransitionRepository
	payments    repository.PaymentRepository
	sales       repository.SaleRepository
	ledger      repository.CommissionLedgerRepository
	notifier    Notifier
	policy      LifecyclePolicy
}

func NewRentalService(
	rentals repository.RentalRepository,
	transitions repository.TransitionRepository,
	payments repository.PaymentRepository,
	sales repository.SaleRepository,
	ledger repository.CommissionLedgerRepository,
	notifier Notifier,
	policy LifecyclePolicy,
) RentalService {
	return &rentalService{
		rentals:     rentals,
		transitions: transitions,
		payments:    payments,
		sales:       sales,
		ledger:      ledger,
		notifier:    notifier,
		policy:      policy,
	}
}

func (s *rentalService) CreateRental(ctx context.Context, in CreateRentalInput) (*domain.Rental, error) {
	totals, err := utils.ComputeTotals(in.DailyRateCents, in.Quantity, in.StartDate, in.EndDate,
		in.DeliveryFeeCents, in.InsuranceFeeCents, 0, 0)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rt := &domain.Rental{
		CustomerID:           in.CustomerID,
		SellerID:             in.SellerID,
		EquipmentID:          in.EquipmentID,
		Quantity:             in.Quantity,
		StartDate:            in.StartDate,
		EndDate:              in.EndDate,
		DailyRateCents:       in.DailyRateCents,
		TotalDays:            totals.TotalDays,
		SubtotalCents:        totals.SubtotalCents,
		DeliveryFeeCents:     in.DeliveryFeeCents,
		InsuranceFeeCents:    in.InsuranceFeeCents,
		SecurityDepositCents: in.SecurityDepositCents,
		TotalAmountCents:     totals.TotalAmountCents,
		Status:               domain.RentalStatusPending,
		RentalReference:      domain.NewRentalReference(),
	}

	// Small orders skip the seller approval queue.
	if in.Quantity < s.policy.AutoApproveMaxQuantity {
		rt.Status = domain.RentalStatusApproved
		rt.ApprovedAt = &now
	}

	if err := s.rentals.Create(ctx, rt); err != nil {
		return nil, err
	}

	audit := &domain.StatusTransition{
		RentalID:          rt.ID,
		FromStatus:        "",
		ToStatus:          rt.Status,
		ActorID:           in.CustomerID,
		ActorRole:         domain.RoleCustomer,
		Note:              "rental request created",
		VisibleToCustomer: true,
	}
	if err := s.transitions.Create(ctx, audit); err != nil {
		return nil, err
	}

	s.notifier.NotifyTransition(ctx, rt, "", rt.Status)
	return rt, nil
}

func (s *rentalService) RequestTransition(ctx context.Context, actor domain.Actor, rentalID int32, req domain.TransitionRequest) (*TransitionResult, error) {
	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		rt, err := s.rentals.GetByID(ctx, rentalID)
		if err != nil {
			return nil, err
		}

		// Idempotent replay: the transition already happened. Mobile
		// clients retry over flaky networks; this must not error or
		// duplicate the audit trail.
		if rt.Status == req.TargetStatus {
			return &TransitionResult{Rental: rt, Applied: false}, nil
		}

		// A replay can also land after the target auto-advanced: the
		// first delivery request already chained the rental onward to
		// in_progress, so the retried delivered request must not fail.
		if rule, ok := domain.ReplayedThrough(req.TargetStatus, rt.Status); ok {
			if !rule.RecordsStart || rt.ActualStart != nil {
				return &TransitionResult{Rental: rt, Applied: false}, nil
			}
		}

		res, err := s.apply(ctx, actor, rt, req)
		if errors.Is(err, domain.ErrConcurrentModification) {
			lastErr = err
			continue
		}
		return res, err
	}
	return nil, lastErr
}

// apply validates and commits a single transition against the loaded
// rental. All checks are side-effect free until the commit; a rejection
// leaves no trace.
func (s *rentalService) apply(ctx context.Context, actor domain.Actor, rt *domain.Rental, req domain.TransitionRequest) (*TransitionResult, error) {
	from := rt.Status
	to := req.TargetStatus

	rule, ok := domain.RuleFor(from, to)
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}
	if !rule.AllowsRole(actor.Role) {
		return nil, fmt.Errorf("%w: role %s may not perform %s -> %s", domain.ErrUnauthorizedActor, actor.Role, from, to)
	}
	if rule.RequireNote && req.Note == "" {
		return nil, fmt.Errorf("%w: reason note for %s -> %s", domain.ErrMissingProof, from, to)
	}
	for _, kind := range domain.RequiredProofs(from, to) {
		if !req.HasProof(kind) {
			return nil, fmt.Errorf("%w: %s for %s -> %s", domain.ErrMissingProof, kind, from, to)
		}
	}
	if rule.RequirePayment && !rt.CashOnDelivery {
		if _, err := s.payments.CompletedRentalFee(ctx, rt.ID); err != nil {
			if errors.Is(err, domain.ErrPaymentNotFound) {
				return nil, fmt.Errorf("%w: rental %s", domain.ErrPaymentNotCompleted, rt.RentalReference)
			}
			return nil, err
		}
	}

	now := time.Now().UTC()
	rt.Status = to
	switch {
	case to == domain.RentalStatusApproved:
		rt.ApprovedAt = &now
	case to == domain.RentalStatusCancelled:
		rt.CancelledAt = &now
		rt.CancellationReason = req.Note
	}
	if rule.RecordsStart {
		rt.ActualStart = &now
	}
	if rule.RecordsEnd {
		rt.ActualEnd = &now
	}
	if rule.FinalizesFees {
		if err := s.finalizeFees(rt, req, now); err != nil {
			return nil, err
		}
	}

	audit := &domain.StatusTransition{
		RentalID:          rt.ID,
		FromStatus:        from,
		ToStatus:          to,
		ActorID:           actor.UserID,
		ActorRole:         actor.Role,
		Note:              req.Note,
		VisibleToCustomer: req.VisibleToCustomer,
		Proofs:            req.Proofs,
	}

	if to == domain.RentalStatusCompleted {
		if err := s.commitCompletion(ctx, rt, audit); err != nil {
			return nil, err
		}
	} else {
		if err := s.rentals.UpdateVersioned(ctx, rt); err != nil {
			return nil, err
		}
		if err := s.transitions.Create(ctx, audit); err != nil {
			return nil, err
		}
	}

	if to == domain.RentalStatusCancelled && cancelledBeforeDelivery(from) {
		s.issueCancellationRefunds(ctx, rt, actor)
	}

	s.notifier.NotifyTransition(ctx, rt, from, to)

	res := &TransitionResult{Rental: rt, Audit: audit, Applied: true}

	// Some arcs chain into a system transition (delivery starts the
	// active rental period immediately).
	if rule.AutoAdvanceTo != "" {
		auto, err := s.apply(ctx, domain.SystemActor, rt, domain.TransitionRequest{
			TargetStatus:      rule.AutoAdvanceTo,
			VisibleToCustomer: true,
		})
		if err != nil {
			logger.ErrorContext(ctx, "auto-advance failed",
				"rental", rt.RentalReference, "from", to, "to", rule.AutoAdvanceTo, "error", err)
		} else {
			res.Rental = auto.Rental
		}
	}
	return res, nil
}

// finalizeFees locks in damage and late fees at return completion and
// recomputes the rental totals from scratch.
func (s *rentalService) finalizeFees(rt *domain.Rental, req domain.TransitionRequest, now time.Time) error {
	if req.DamageFeeCents != nil {
		if *req.DamageFeeCents < 0 {
			return fmt.Errorf("%w: negative damage fee", domain.ErrInvariantViolation)
		}
		rt.DamageFeeCents = *req.DamageFeeCents
	}

	overdueDays, err := utils.OverdueDays(rt.EndDate, now)
	if err != nil {
		return err
	}
	lateFee, err := utils.LateFeeCents(overdueDays, rt.DailyRateCents, s.policy.LateFeeMultiplierBps)
	if err != nil {
		return err
	}
	rt.LateFeeCents = lateFee

	totals, err := utils.ComputeTotals(rt.DailyRateCents, rt.Quantity, rt.StartDate, rt.EndDate,
		rt.DeliveryFeeCents, rt.InsuranceFeeCents, rt.LateFeeCents, rt.DamageFeeCents)
	if err != nil {
		return err
	}
	rt.TotalDays = totals.TotalDays
	rt.SubtotalCents = totals.SubtotalCents
	rt.TotalAmountCents = totals.TotalAmountCents

	if rt.TotalAmountCents != rt.SubtotalCents+rt.DeliveryFeeCents+rt.InsuranceFeeCents+rt.LateFeeCents+rt.DamageFeeCents {
		return fmt.Errorf("%w: rental %s totals out of balance", domain.ErrInvariantViolation, rt.RentalReference)
	}
	return nil
}

// commitCompletion writes the completed rental, its audit entry, the
// immutable sale record and (for cash collections) the commission
// ledger entry in one transaction, then releases the seller payout.
func (s *rentalService) commitCompletion(ctx context.Context, rt *domain.Rental, audit *domain.StatusTransition) error {
	commission, payout, err := utils.SplitCommission(rt.TotalAmountCents, s.policy.CommissionRateBps)
	if err != nil {
		return err
	}
	if commission+payout != rt.TotalAmountCents {
		return fmt.Errorf("%w: commission split drift on %s", domain.ErrInvariantViolation, rt.RentalReference)
	}

	collectedInCash, err := s.collectedInCash(ctx, rt)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	sale := &domain.SaleRecord{
		RentalID:          rt.ID,
		RentalReference:   rt.RentalReference,
		SellerID:          rt.SellerID,
		CustomerID:        rt.CustomerID,
		EquipmentID:       rt.EquipmentID,
		TotalRevenueCents: rt.TotalAmountCents,
		SubtotalCents:     rt.SubtotalCents,
		DeliveryFeeCents:  rt.DeliveryFeeCents,
		InsuranceFeeCents: rt.InsuranceFeeCents,
		LateFeeCents:      rt.LateFeeCents,
		DamageFeeCents:    rt.DamageFeeCents,
		CommissionRateBps: s.policy.CommissionRateBps,
		CommissionCents:   commission,
		SellerPayoutCents: payout,
		RentalDays:        rt.TotalDays,
		RentalStartDate:   rt.StartDate,
		RentalEndDate:     rt.EndDate,
		Quantity:          rt.Quantity,
	}

	var entry *domain.CommissionLedgerEntry
	if collectedInCash {
		// Seller holds the cash; commission comes back to the platform
		// through the ledger within the settlement window.
		sale.PayoutStatus = domain.PayoutStatusPending
		dueDate := now.AddDate(0, 0, s.policy.SettlementWindowDays).Format(utils.DateLayout)
		entry = &domain.CommissionLedgerEntry{
			SellerID:    rt.SellerID,
			AmountCents: commission,
			DueDate:     dueDate,
			Status:      domain.CommissionOutstanding,
		}
	} else {
		// Platform processed the money, so commission is already
		// retained and the payout releases immediately.
		sale.PayoutStatus = domain.PayoutStatusCompleted
		sale.PayoutReference = "platform:" + rt.RentalReference
		sale.PayoutDate = &now
	}

	if err := s.rentals.CompleteWithSale(ctx, rt, audit, sale, entry); err != nil {
		return err
	}

	if !collectedInCash {
		s.applyPayoutDeductions(ctx, sale)
	}
	return nil
}

// collectedInCash reports whether the rental's fee was collected by the
// seller rather than processed by the platform.
func (s *rentalService) collectedInCash(ctx context.Context, rt *domain.Rental) (bool, error) {
	p, err := s.payments.CompletedRentalFee(ctx, rt.ID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			// Confirmed via COD authorization and still awaiting the
			// receipt upload; the collection is cash by definition.
			return rt.CashOnDelivery, nil
		}
		return false, err
	}
	return p.Method == domain.PaymentMethodCash, nil
}

// applyPayoutDeductions implements the first-applicable-payout rule: a
// freshly released online payout absorbs the seller's outstanding cash
// commission, oldest entries first. Whole entries only; anything that
// does not fit stays outstanding for the next payout or remittance.
// Failures leave entries outstanding, which is always safe.
func (s *rentalService) applyPayoutDeductions(ctx context.Context, sale *domain.SaleRecord) {
	outstanding, err := s.ledger.ListOutstandingBySeller(ctx, sale.SellerID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list outstanding commission", "seller", sale.SellerID, "error", err)
		return
	}

	remaining := sale.SellerPayoutCents
	now := time.Now().UTC()
	for _, entry := range outstanding {
		if entry.AmountCents > remaining {
			break
		}
		ref := "payout:" + sale.RentalReference
		if err := s.ledger.Settle(ctx, entry.ID, domain.CommissionDeductedFromPayout, ref, now); err != nil {
			logger.ErrorContext(ctx, "failed to settle commission entry", "entry", entry.ID, "error", err)
			break
		}
		remaining -= entry.AmountCents
		logger.InfoContext(ctx, "commission deducted from payout",
			"seller", sale.SellerID, "entry", entry.ID, "amount_cents", entry.AmountCents, "sale", sale.RentalReference)
	}

	if remaining != sale.SellerPayoutCents {
		ref := fmt.Sprintf("net:%d", remaining)
		if err := s.sales.UpdatePayout(ctx, sale.ID, domain.PayoutStatusCompleted, sale.PayoutReference+";"+ref, now); err != nil {
			logger.ErrorContext(ctx, "failed to record payout deduction", "sale", sale.ID, "error", err)
		}
	}
}

// cancelledBeforeDelivery reports whether the cancellation happened
// before the customer had the equipment, which is the refundable case.
func cancelledBeforeDelivery(from domain.RentalStatus) bool {
	switch from {
	case domain.RentalStatusPending, domain.RentalStatusApproved, domain.RentalStatusPaymentPending,
		domain.RentalStatusConfirmed, domain.RentalStatusPreparing, domain.RentalStatusReadyForPickup,
		domain.RentalStatusOutForDelivery:
		return true
	}
	return false
}

// issueCancellationRefunds records refund payments for a pre-delivery
// cancellation. Refund bookkeeping is best-effort relative to the
// transition itself: the cancellation stands even if a refund row fails,
// and the failure is logged for reconciliation.
func (s *rentalService) issueCancellationRefunds(ctx context.Context, rt *domain.Rental, actor domain.Actor) {
	paidOnline, err := s.payments.SumCompletedByMethod(ctx, rt.ID, domain.PaymentKindRentalFee, domain.PaymentMethodOnline)
	if err != nil {
		logger.ErrorContext(ctx, "failed to sum online payments for refund", "rental", rt.RentalReference, "error", err)
		return
	}
	depositPaid, err := s.payments.SumCompletedByMethod(ctx, rt.ID, domain.PaymentKindDeposit, domain.PaymentMethodOnline)
	if err != nil {
		logger.ErrorContext(ctx, "failed to sum deposit payments for refund", "rental", rt.RentalReference, "error", err)
		return
	}

	refund, err := utils.CancellationRefund(paidOnline, s.policy.CancellationProcessingCents, depositPaid, rt.DamageFeeCents)
	if err != nil {
		logger.ErrorContext(ctx, "refund computation failed", "rental", rt.RentalReference, "error", err)
		return
	}

	now := time.Now().UTC()
	for _, part := range []struct {
		amount int64
		note   string
	}{
		{refund.PaymentRefundCents, "rental fee refund on cancellation"},
		{refund.DepositRefundCents, "security deposit refund on cancellation"},
	} {
		if part.amount == 0 {
			continue
		}
		p := &domain.Payment{
			RentalID:    rt.ID,
			Kind:        domain.PaymentKindRefund,
			Method:      domain.PaymentMethodOnline,
			Status:      domain.PaymentStatusCompleted,
			AmountCents: part.amount,
			Note:        part.note,
			CompletedAt: &now,
		}
		if err := s.payments.Create(ctx, p); err != nil {
			logger.ErrorContext(ctx, "failed to record refund", "rental", rt.RentalReference, "error", err)
			continue
		}
		s.notifier.NotifyPaymentCompleted(ctx, p)
	}
}

func (s *rentalService) GetRental(ctx context.Context, actor domain.Actor, rentalID int32) (*domain.Rental, []domain.StatusTransition, error) {
	rt, err := s.rentals.GetByID(ctx, rentalID)
	if err != nil {
		return nil, nil, err
	}
	switch actor.Role {
	case domain.RoleCustomer:
		if rt.CustomerID != actor.UserID {
			return nil, nil, domain.ErrUnauthorizedActor
		}
	case domain.RoleSeller:
		if rt.SellerID != actor.UserID {
			return nil, nil, domain.ErrUnauthorizedActor
		}
	}
	history, err := s.transitions.ListByRental(ctx, rentalID)
	if err != nil {
		return nil, nil, err
	}
	if actor.Role == domain.RoleCustomer {
		visible := history[:0]
		for _, tr := range history {
			if tr.VisibleToCustomer {
				visible = append(visible, tr)
			}
		}
		history = visible
	}
	return rt, history, nil
}

func (s *rentalService) ListByCustomer(ctx context.Context, customerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	return s.rentals.ListByCustomer(ctx, customerID, status, page, pageSize)
}

func (s *rentalService) ListBySeller(ctx context.Context, sellerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	return s.rentals.ListBySeller(ctx, sellerID, status, page, pageSize)
}
