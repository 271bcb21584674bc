package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type saleRepository struct {
	db *sql.DB
}

func NewSaleRepository(db *sql.DB) repository.SaleRepository {
	return &saleRepository{db: db}
}

const saleColumns = `id, rental_id, rental_reference, seller_id, customer_id, equipment_id,
	total_revenue_cents, subtotal_cents, delivery_fee_cents, insurance_fee_cents,
	late_fee_cents, damage_fee_cents, commission_rate_bps, commission_cents, seller_payout_cents,
	rental_days, rental_start_date, rental_end_date, quantity,
	payout_status, COALESCE(payout_reference, ''), payout_date, sale_date, created_at`

func scanSale(row rowScanner) (*domain.SaleRecord, error) {
	s := &domain.SaleRecord{}
	err := row.Scan(
		&s.ID, &s.RentalID, &s.RentalReference, &s.SellerID, &s.CustomerID, &s.EquipmentID,
		&s.TotalRevenueCents, &s.SubtotalCents, &s.DeliveryFeeCents, &s.InsuranceFeeCents,
		&s.LateFeeCents, &s.DamageFeeCents, &s.CommissionRateBps, &s.CommissionCents, &s.SellerPayoutCents,
		&s.RentalDays, &s.RentalStartDate, &s.RentalEndDate, &s.Quantity,
		&s.PayoutStatus, &s.PayoutReference, &s.PayoutDate, &s.SaleDate, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *saleRepository) GetByRentalID(ctx context.Context, rentalID int32) (*domain.SaleRecord, error) {
	query := `SELECT ` + saleColumns + ` FROM sale_records WHERE rental_id = $1`
	s, err := scanSale(r.db.QueryRowContext(ctx, query, rentalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *saleRepository) ListBySeller(ctx context.Context, sellerID int32, page, pageSize int32) ([]domain.SaleRecord, int32, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM sale_records WHERE seller_id = $1`, sellerID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + saleColumns + ` FROM sale_records WHERE seller_id = $1
	          ORDER BY sale_date DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, sellerID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sales []domain.SaleRecord
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		sales = append(sales, *s)
	}
	return sales, count, rows.Err()
}

func (r *saleRepository) UpdatePayout(ctx context.Context, saleID int32, status domain.PayoutStatus, reference string, date time.Time) error {
	query := `UPDATE sale_records SET payout_status=$1, payout_reference=$2, payout_date=$3 WHERE id=$4`
	_, err := r.db.ExecContext(ctx, query, status, reference, date, saleID)
	return err
}

func (r *saleRepository) CreateAdjustment(ctx context.Context, adj *domain.SaleAdjustment) error {
	query := `INSERT INTO sale_adjustments (sale_record_id, amount_cents, reason, created_by, created_at)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	now := time.Now().UTC()
	if err := r.db.QueryRowContext(ctx, query,
		adj.SaleRecordID, adj.AmountCents, adj.Reason, adj.CreatedBy, now,
	).Scan(&adj.ID); err != nil {
		return err
	}
	adj.CreatedAt = now
	return nil
}
