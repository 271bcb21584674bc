package postgres

import (
	"context"
	"database/sql"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type commissionLedgerRepository struct {
	db *sql.DB
}

func NewCommissionLedgerRepository(db *sql.DB) repository.CommissionLedgerRepository {
	return &commissionLedgerRepository{db: db}
}

const commissionColumns = `id, seller_id, sale_record_id, amount_cents, due_date, status,
	COALESCE(settlement_reference, ''), settled_at, created_at`

func scanCommissionEntry(row rowScanner) (*domain.CommissionLedgerEntry, error) {
	e := &domain.CommissionLedgerEntry{}
	err := row.Scan(
		&e.ID, &e.SellerID, &e.SaleRecordID, &e.AmountCents, &e.DueDate, &e.Status,
		&e.SettlementReference, &e.SettledAt, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *commissionLedgerRepository) Create(ctx context.Context, e *domain.CommissionLedgerEntry) error {
	query := `INSERT INTO commission_ledger_entries (seller_id, sale_record_id, amount_cents, due_date, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	now := time.Now().UTC()
	if err := r.db.QueryRowContext(ctx, query,
		e.SellerID, e.SaleRecordID, e.AmountCents, e.DueDate, e.Status, now,
	).Scan(&e.ID); err != nil {
		return err
	}
	e.CreatedAt = now
	return nil
}

func (r *commissionLedgerRepository) GetByID(ctx context.Context, id int32) (*domain.CommissionLedgerEntry, error) {
	query := `SELECT ` + commissionColumns + ` FROM commission_ledger_entries WHERE id = $1`
	return scanCommissionEntry(r.db.QueryRowContext(ctx, query, id))
}

func (r *commissionLedgerRepository) listOutstanding(ctx context.Context, query string, args ...interface{}) ([]domain.CommissionLedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.CommissionLedgerEntry
	for rows.Next() {
		e, err := scanCommissionEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// ListOutstandingBySeller returns open entries oldest-first so payout
// deductions apply in due-date order.
func (r *commissionLedgerRepository) ListOutstandingBySeller(ctx context.Context, sellerID int32) ([]domain.CommissionLedgerEntry, error) {
	query := `SELECT ` + commissionColumns + ` FROM commission_ledger_entries
	          WHERE seller_id = $1 AND status = $2 ORDER BY due_date ASC, id ASC`
	return r.listOutstanding(ctx, query, sellerID, domain.CommissionOutstanding)
}

func (r *commissionLedgerRepository) ListOutstandingDueBefore(ctx context.Context, date string) ([]domain.CommissionLedgerEntry, error) {
	query := `SELECT ` + commissionColumns + ` FROM commission_ledger_entries
	          WHERE status = $1 AND due_date < $2 ORDER BY due_date ASC, id ASC`
	return r.listOutstanding(ctx, query, domain.CommissionOutstanding, date)
}

func (r *commissionLedgerRepository) Settle(ctx context.Context, entryID int32, status domain.CommissionEntryStatus, reference string, settledAt time.Time) error {
	query := `UPDATE commission_ledger_entries SET status=$1, settlement_reference=$2, settled_at=$3
	          WHERE id=$4 AND status=$5`
	res, err := r.db.ExecContext(ctx, query, status, reference, settledAt, entryID, domain.CommissionOutstanding)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
