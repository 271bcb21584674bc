package jobs

import (
	"context"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/utils"
)

// ExpirePendingPayments fails online payments that sat pending past the
// grace period and cancels the rentals still waiting on them. Cash
// payments are skipped: they stay pending until the seller uploads the
// collection receipt.
func (jr *JobRunner) ExpirePendingPayments() {
	jr.runWithRecovery("ExpirePendingPayments", func() {
		ctx := context.Background()
		cutoff := time.Now().UTC().Add(-time.Duration(jr.config.Rental.PaymentGracePeriodHours) * time.Hour)

		payments, err := jr.store.PaymentRepository.ListPendingOlderThan(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to list stale pending payments", "error", err)
			return
		}

		count := 0
		for _, p := range payments {
			if p.Method == domain.PaymentMethodCash {
				continue
			}

			p.Status = domain.PaymentStatusFailed
			if err := jr.store.PaymentRepository.Update(ctx, &p); err != nil {
				logger.Error("Failed to expire payment", "payment", p.ID, "error", err)
				continue
			}
			count++

			if p.Kind != domain.PaymentKindRentalFee {
				continue
			}
			rt, err := jr.store.RentalRepository.GetByID(ctx, p.RentalID)
			if err != nil {
				logger.Error("Failed to load rental for expired payment", "payment", p.ID, "error", err)
				continue
			}
			switch rt.Status {
			case domain.RentalStatusApproved, domain.RentalStatusPaymentPending:
			default:
				continue
			}
			if _, err := jr.services.Rental.RequestTransition(ctx, domain.SystemActor, rt.ID, domain.TransitionRequest{
				TargetStatus:      domain.RentalStatusCancelled,
				Note:              "payment not completed within the grace period",
				VisibleToCustomer: true,
			}); err != nil {
				logger.Error("Failed to cancel rental after payment expiry", "rental", rt.RentalReference, "error", err)
			}
		}

		logger.Info("Expired stale pending payments", "count", count)
	})
}

// SendCommissionReminders nudges sellers whose cash commission is due.
func (jr *JobRunner) SendCommissionReminders() {
	jr.runWithRecovery("SendCommissionReminders", func() {
		ctx := context.Background()
		horizon := time.Now().UTC().AddDate(0, 0, 3).Format(utils.DateLayout)

		entries, err := jr.store.CommissionLedgerRepository.ListOutstandingDueBefore(ctx, horizon)
		if err != nil {
			logger.Error("Failed to list due commission entries", "error", err)
			return
		}

		for _, e := range entries {
			jr.services.Notifier.NotifyCommissionDue(ctx, &e)
		}
		logger.Info("Sent commission reminders", "count", len(entries))
	})
}
