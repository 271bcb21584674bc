package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository"
	"equiprent-backend/internal/utils"
)

// EmailDirectory resolves a user id to a deliverable address. User
// accounts live in a separate service; this is the only thing the
// notifier needs from it.
type EmailDirectory interface {
	EmailFor(ctx context.Context, userID int32) (address, name string, err error)
}

type emailNotifier struct {
	apiKey    string
	fromEmail string
	fromName  string
	directory EmailDirectory
	rentals   repository.RentalRepository
}

func NewEmailNotifier(apiKey, fromEmail, fromName string, directory EmailDirectory, rentals repository.RentalRepository) Notifier {
	return &emailNotifier{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		directory: directory,
		rentals:   rentals,
	}
}

func (n *emailNotifier) send(ctx context.Context, userID int32, subject, plainText string) {
	address, name, err := n.directory.EmailFor(ctx, userID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to resolve notification recipient", "user", userID, "error", err)
		return
	}

	from := mail.NewEmail(n.fromName, n.fromEmail)
	recipient := mail.NewEmail(name, address)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(n.apiKey)
	response, err := client.Send(message)
	if err != nil {
		logger.ErrorContext(ctx, "failed to send notification email", "user", userID, "error", err)
		return
	}
	if response.StatusCode >= 400 {
		logger.ErrorContext(ctx, "notification email rejected", "user", userID, "status", response.StatusCode)
	}
}

var statusSubjects = map[domain.RentalStatus]string{
	domain.RentalStatusPending:         "Rental request received",
	domain.RentalStatusApproved:        "Rental request approved",
	domain.RentalStatusPaymentPending:  "Payment required for your rental",
	domain.RentalStatusConfirmed:       "Rental confirmed",
	domain.RentalStatusPreparing:       "Your rental is being prepared",
	domain.RentalStatusReadyForPickup:  "Your rental is ready for pickup",
	domain.RentalStatusOutForDelivery:  "Your rental is out for delivery",
	domain.RentalStatusDelivered:       "Your rental has been delivered",
	domain.RentalStatusInProgress:      "Your rental period has started",
	domain.RentalStatusReturnRequested: "Return requested",
	domain.RentalStatusReturning:       "Return in progress",
	domain.RentalStatusCompleted:       "Rental completed",
	domain.RentalStatusCancelled:       "Rental cancelled",
	domain.RentalStatusOverdue:         "Rental overdue",
	domain.RentalStatusDispute:         "Rental dispute opened",
}

func (n *emailNotifier) NotifyTransition(ctx context.Context, rental *domain.Rental, from, to domain.RentalStatus) {
	subject, ok := statusSubjects[to]
	if !ok {
		subject = "Rental status updated"
	}
	subject = fmt.Sprintf("%s (%s)", subject, rental.RentalReference)
	body := fmt.Sprintf("Rental %s is now %s.", rental.RentalReference, to)

	n.send(ctx, rental.CustomerID, subject, body)
	n.send(ctx, rental.SellerID, subject, body)
}

func (n *emailNotifier) NotifyPaymentCompleted(ctx context.Context, payment *domain.Payment) {
	rt, err := n.rentals.GetByID(ctx, payment.RentalID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load rental for payment notification", "payment", payment.ID, "error", err)
		return
	}
	subject := fmt.Sprintf("Payment recorded (%s)", rt.RentalReference)
	body := fmt.Sprintf("A %s payment of %s was recorded via %s for rental %s.",
		payment.Kind, utils.FormatCents(payment.AmountCents), payment.Method, rt.RentalReference)
	n.send(ctx, rt.CustomerID, subject, body)
}

func (n *emailNotifier) NotifyCommissionDue(ctx context.Context, entry *domain.CommissionLedgerEntry) {
	subject := "Commission payment due"
	body := fmt.Sprintf("You have an outstanding commission of %s due on %s. It will be deducted from your next payout or can be remitted directly.",
		utils.FormatCents(entry.AmountCents), entry.DueDate)
	n.send(ctx, entry.SellerID, subject, body)
}

// noopNotifier is used in the cron binary and in tests where email
// delivery is unwanted.
type noopNotifier struct{}

func NewNoopNotifier() Notifier { return noopNotifier{} }

func (noopNotifier) NotifyTransition(context.Context, *domain.Rental, domain.RentalStatus, domain.RentalStatus) {
}
func (noopNotifier) NotifyPaymentCompleted(context.Context, *domain.Payment)            {}
func (noopNotifier) NotifyCommissionDue(context.Context, *domain.CommissionLedgerEntry) {}
