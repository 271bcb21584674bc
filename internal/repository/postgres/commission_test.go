package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository/postgres"
)

func TestCommissionLedgerRepository_Settle(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewCommissionLedgerRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("Settles Outstanding Entry", func(t *testing.T) {
		mock.ExpectExec("UPDATE commission_ledger_entries SET").
			WithArgs(domain.CommissionPaid, "bank-ref-99", now, int32(11), domain.CommissionOutstanding).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Settle(ctx, 11, domain.CommissionPaid, "bank-ref-99", now)
		assert.NoError(t, err)
	})

	t.Run("Already Settled Entry Is Not Touched Twice", func(t *testing.T) {
		mock.ExpectExec("UPDATE commission_ledger_entries SET").
			WithArgs(domain.CommissionPaid, "bank-ref-99", now, int32(11), domain.CommissionOutstanding).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Settle(ctx, 11, domain.CommissionPaid, "bank-ref-99", now)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestCommissionLedgerRepository_ListOutstandingBySeller(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewCommissionLedgerRepository(db)
	ctx := context.Background()

	t.Run("Orders By Due Date", func(t *testing.T) {
		created := time.Now().UTC()
		rows := sqlmock.NewRows([]string{
			"id", "seller_id", "sale_record_id", "amount_cents", "due_date", "status",
			"settlement_reference", "settled_at", "created_at",
		}).
			AddRow(1, 2, 31, 5000, "2024-11-10", "outstanding", "", nil, created).
			AddRow(2, 2, 32, 23500, "2024-11-21", "outstanding", "", nil, created)

		mock.ExpectQuery("SELECT (.+) FROM commission_ledger_entries").
			WithArgs(int32(2), domain.CommissionOutstanding).
			WillReturnRows(rows)

		entries, err := repo.ListOutstandingBySeller(ctx, 2)
		assert.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.Equal(t, "2024-11-10", entries[0].DueDate)
		assert.Equal(t, int64(5000), entries[0].AmountCents)
		assert.Equal(t, domain.CommissionOutstanding, entries[0].Status)
	})

	t.Run("Empty Result", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM commission_ledger_entries").
			WithArgs(int32(3), domain.CommissionOutstanding).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "seller_id", "sale_record_id", "amount_cents", "due_date", "status",
				"settlement_reference", "settled_at", "created_at",
			}))

		entries, err := repo.ListOutstandingBySeller(ctx, 3)
		assert.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestCommissionLedgerRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewCommissionLedgerRepository(db)
	ctx := context.Background()

	entry := &domain.CommissionLedgerEntry{
		SellerID:     2,
		SaleRecordID: 31,
		AmountCents:  21500,
		DueDate:      "2024-11-21",
		Status:       domain.CommissionOutstanding,
	}

	mock.ExpectQuery("INSERT INTO commission_ledger_entries").
		WithArgs(entry.SellerID, entry.SaleRecordID, entry.AmountCents, entry.DueDate, entry.Status, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(41))

	err = repo.Create(ctx, entry)
	assert.NoError(t, err)
	assert.Equal(t, int32(41), entry.ID)
}
