package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, customer_id, seller_id, equipment_id, quantity, start_date, end_date,
	actual_start, actual_end, daily_rate_cents, total_days, subtotal_cents, delivery_fee_cents,
	insurance_fee_cents, security_deposit_cents, late_fee_cents, damage_fee_cents, total_amount_cents,
	status, rental_reference, cash_on_delivery, COALESCE(cancellation_reason, ''), version,
	created_at, updated_at, approved_at, cancelled_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{}
	err := row.Scan(
		&rt.ID, &rt.CustomerID, &rt.SellerID, &rt.EquipmentID, &rt.Quantity, &rt.StartDate, &rt.EndDate,
		&rt.ActualStart, &rt.ActualEnd, &rt.DailyRateCents, &rt.TotalDays, &rt.SubtotalCents, &rt.DeliveryFeeCents,
		&rt.InsuranceFeeCents, &rt.SecurityDepositCents, &rt.LateFeeCents, &rt.DamageFeeCents, &rt.TotalAmountCents,
		&rt.Status, &rt.RentalReference, &rt.CashOnDelivery, &rt.CancellationReason, &rt.Version,
		&rt.CreatedAt, &rt.UpdatedAt, &rt.ApprovedAt, &rt.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	query := `INSERT INTO rentals (customer_id, seller_id, equipment_id, quantity, start_date, end_date,
	            daily_rate_cents, total_days, subtotal_cents, delivery_fee_cents, insurance_fee_cents,
	            security_deposit_cents, late_fee_cents, damage_fee_cents, total_amount_cents,
	            status, rental_reference, cash_on_delivery, version, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, 1, $19, $19)
	          RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query,
		rt.CustomerID, rt.SellerID, rt.EquipmentID, rt.Quantity, rt.StartDate, rt.EndDate,
		rt.DailyRateCents, rt.TotalDays, rt.SubtotalCents, rt.DeliveryFeeCents, rt.InsuranceFeeCents,
		rt.SecurityDepositCents, rt.LateFeeCents, rt.DamageFeeCents, rt.TotalAmountCents,
		rt.Status, rt.RentalReference, rt.CashOnDelivery, now,
	).Scan(&rt.ID)
	if err != nil {
		return err
	}
	rt.Version = 1
	rt.CreatedAt = now
	rt.UpdatedAt = now
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRentalNotFound
	}
	return rt, err
}

func (r *rentalRepository) GetByReference(ctx context.Context, reference string) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE rental_reference = $1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, reference))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRentalNotFound
	}
	return rt, err
}

const rentalUpdateSQL = `UPDATE rentals SET
	status=$1, actual_start=$2, actual_end=$3, late_fee_cents=$4, damage_fee_cents=$5,
	total_amount_cents=$6, cash_on_delivery=$7, cancellation_reason=$8, approved_at=$9,
	cancelled_at=$10, version=version+1, updated_at=$11
	WHERE id=$12 AND version=$13`

func rentalUpdateArgs(rt *domain.Rental, now time.Time) []interface{} {
	return []interface{}{
		rt.Status, rt.ActualStart, rt.ActualEnd, rt.LateFeeCents, rt.DamageFeeCents,
		rt.TotalAmountCents, rt.CashOnDelivery, rt.CancellationReason, rt.ApprovedAt, rt.CancelledAt,
		now, rt.ID, rt.Version,
	}
}

func (r *rentalRepository) UpdateVersioned(ctx context.Context, rt *domain.Rental) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, rentalUpdateSQL, rentalUpdateArgs(rt, now)...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrConcurrentModification
	}
	rt.Version++
	rt.UpdatedAt = now
	return nil
}

func (r *rentalRepository) list(ctx context.Context, column string, ownerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize
	where := fmt.Sprintf("WHERE %s = $1", column)
	args := []interface{}{ownerID}
	if status != "" {
		where += " AND status = $2"
		args = append(args, status)
	}

	var count int32
	countQuery := "SELECT count(*) FROM rentals " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM rentals %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		rentalColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, 0, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, count, rows.Err()
}

func (r *rentalRepository) ListByCustomer(ctx context.Context, customerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	return r.list(ctx, "customer_id", customerID, status, page, pageSize)
}

func (r *rentalRepository) ListBySeller(ctx context.Context, sellerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	return r.list(ctx, "seller_id", sellerID, status, page, pageSize)
}

func (r *rentalRepository) ListActivePastEndDate(ctx context.Context, status domain.RentalStatus, cutoffDate string) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE status = $1 AND end_date < $2`
	rows, err := r.db.QueryContext(ctx, query, status, cutoffDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

// CompleteWithSale commits the completion arc in a single transaction so
// a rental can never be completed without its sale record, and the sale
// can never exist twice.
func (r *rentalRepository) CompleteWithSale(ctx context.Context, rt *domain.Rental, audit *domain.StatusTransition, sale *domain.SaleRecord, entry *domain.CommissionLedgerEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, rentalUpdateSQL, rentalUpdateArgs(rt, now)...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrConcurrentModification
	}

	if err := insertTransition(ctx, tx, audit); err != nil {
		return err
	}

	saleQuery := `INSERT INTO sale_records (rental_id, rental_reference, seller_id, customer_id, equipment_id,
	                total_revenue_cents, subtotal_cents, delivery_fee_cents, insurance_fee_cents,
	                late_fee_cents, damage_fee_cents, commission_rate_bps, commission_cents,
	                seller_payout_cents, rental_days, rental_start_date, rental_end_date, quantity,
	                payout_status, payout_reference, payout_date, sale_date, created_at)
	              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $22)
	              RETURNING id`
	err = tx.QueryRowContext(ctx, saleQuery,
		sale.RentalID, sale.RentalReference, sale.SellerID, sale.CustomerID, sale.EquipmentID,
		sale.TotalRevenueCents, sale.SubtotalCents, sale.DeliveryFeeCents, sale.InsuranceFeeCents,
		sale.LateFeeCents, sale.DamageFeeCents, sale.CommissionRateBps, sale.CommissionCents,
		sale.SellerPayoutCents, sale.RentalDays, sale.RentalStartDate, sale.RentalEndDate, sale.Quantity,
		sale.PayoutStatus, sale.PayoutReference, sale.PayoutDate, now,
	).Scan(&sale.ID)
	if err != nil {
		return err
	}

	if entry != nil {
		entry.SaleRecordID = sale.ID
		entryQuery := `INSERT INTO commission_ledger_entries (seller_id, sale_record_id, amount_cents, due_date, status, created_at)
		               VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
		err = tx.QueryRowContext(ctx, entryQuery,
			entry.SellerID, entry.SaleRecordID, entry.AmountCents, entry.DueDate, entry.Status, now,
		).Scan(&entry.ID)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	rt.Version++
	rt.UpdatedAt = now
	sale.SaleDate = now
	return nil
}
