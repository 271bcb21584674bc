package jobs

import (
	"context"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/utils"
)

// MarkOverdueRentals flags active rentals past their agreed end date.
// Each rental goes through the transition engine so the move is
// validated and audited like any other; a rental already flagged is an
// idempotent no-op on the next sweep.
func (jr *JobRunner) MarkOverdueRentals() {
	jr.runWithRecovery("MarkOverdueRentals", func() {
		ctx := context.Background()
		today := time.Now().UTC().Format(utils.DateLayout)

		rentals, err := jr.store.RentalRepository.ListActivePastEndDate(ctx, domain.RentalStatusInProgress, today)
		if err != nil {
			logger.Error("Failed to list rentals past end date", "error", err)
			return
		}

		count := 0
		for _, rt := range rentals {
			res, err := jr.services.Rental.RequestTransition(ctx, domain.SystemActor, rt.ID, domain.TransitionRequest{
				TargetStatus:      domain.RentalStatusOverdue,
				Note:              "rental period ended without return",
				VisibleToCustomer: true,
			})
			if err != nil {
				logger.Error("Failed to mark rental overdue", "rental", rt.RentalReference, "error", err)
				continue
			}
			if res.Applied {
				count++
				logger.Debug("Marked rental as overdue",
					"rental", rt.RentalReference, "customer_id", rt.CustomerID, "end_date", rt.EndDate)
			}
		}

		logger.Info("Marked rentals as overdue", "count", count)
	})
}
