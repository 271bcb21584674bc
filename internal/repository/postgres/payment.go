package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, rental_id, kind, method, status, amount_cents,
	COALESCE(transaction_id, ''), COALESCE(receipt_key, ''), COALESCE(receipt_number, ''),
	COALESCE(note, ''), created_at, completed_at`

func scanPayment(row rowScanner) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := row.Scan(
		&p.ID, &p.RentalID, &p.Kind, &p.Method, &p.Status, &p.AmountCents,
		&p.TransactionID, &p.ReceiptKey, &p.ReceiptNumber,
		&p.Note, &p.CreatedAt, &p.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (rental_id, kind, method, status, amount_cents, transaction_id,
	            receipt_key, receipt_number, note, created_at, completed_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	now := time.Now().UTC()
	if err := r.db.QueryRowContext(ctx, query,
		p.RentalID, p.Kind, p.Method, p.Status, p.AmountCents, p.TransactionID,
		p.ReceiptKey, p.ReceiptNumber, p.Note, now, p.CompletedAt,
	).Scan(&p.ID); err != nil {
		return err
	}
	p.CreatedAt = now
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id int32) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPaymentNotFound
	}
	return p, err
}

func (r *paymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	query := `UPDATE payments SET status=$1, transaction_id=$2, receipt_key=$3, receipt_number=$4,
	            note=$5, completed_at=$6 WHERE id=$7`
	_, err := r.db.ExecContext(ctx, query,
		p.Status, p.TransactionID, p.ReceiptKey, p.ReceiptNumber, p.Note, p.CompletedAt, p.ID)
	return err
}

func (r *paymentRepository) ListByRental(ctx context.Context, rentalID int32) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE rental_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) CompletedRentalFee(ctx context.Context, rentalID int32) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
	          WHERE rental_id = $1 AND kind = $2 AND status = $3
	          ORDER BY completed_at DESC LIMIT 1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, rentalID, domain.PaymentKindRentalFee, domain.PaymentStatusCompleted))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPaymentNotFound
	}
	return p, err
}

func (r *paymentRepository) SumCompletedByMethod(ctx context.Context, rentalID int32, kind domain.PaymentKind, method domain.PaymentMethod) (int64, error) {
	var sum int64
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM payments
	          WHERE rental_id = $1 AND kind = $2 AND method = $3 AND status = $4`
	err := r.db.QueryRowContext(ctx, query, rentalID, kind, method, domain.PaymentStatusCompleted).Scan(&sum)
	return sum, err
}

func (r *paymentRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE status = $1 AND created_at < $2`
	rows, err := r.db.QueryContext(ctx, query, domain.PaymentStatusPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}
