package postgres_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository/postgres"
)

func newRental() *domain.Rental {
	return &domain.Rental{
		ID:               7,
		CustomerID:       1,
		SellerID:         2,
		EquipmentID:      3,
		Quantity:         1,
		StartDate:        "2024-11-01",
		EndDate:          "2024-11-05",
		DailyRateCents:   50000,
		TotalDays:        4,
		SubtotalCents:    200000,
		DeliveryFeeCents: 15000,
		TotalAmountCents: 215000,
		Status:           domain.RentalStatusApproved,
		RentalReference:  "RNTTEST001",
		Version:          3,
	}
}

func TestRentalRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rt := newRental()
		rt.ID = 0
		rt.Version = 0

		mock.ExpectQuery("INSERT INTO rentals").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		err := repo.Create(ctx, rt)
		assert.NoError(t, err)
		assert.Equal(t, int32(7), rt.ID)
		assert.Equal(t, int32(1), rt.Version)
		assert.False(t, rt.CreatedAt.IsZero())
	})
}

func TestRentalRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Query Error Propagates", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id").
			WithArgs(int32(99)).
			WillReturnError(context.DeadlineExceeded)
		_, err := repo.GetByID(ctx, 99)
		assert.Error(t, err)
	})

	t.Run("No Rows Maps To Domain Error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id").
			WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrRentalNotFound)
	})
}

func TestRentalRepository_UpdateVersioned(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Success Increments Version", func(t *testing.T) {
		rt := newRental()

		mock.ExpectExec("UPDATE rentals SET").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateVersioned(ctx, rt)
		assert.NoError(t, err)
		assert.Equal(t, int32(4), rt.Version)
	})

	t.Run("Stale Version Is A Conflict", func(t *testing.T) {
		rt := newRental()

		mock.ExpectExec("UPDATE rentals SET").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateVersioned(ctx, rt)
		assert.ErrorIs(t, err, domain.ErrConcurrentModification)
		assert.Equal(t, int32(3), rt.Version)
	})
}

func TestRentalRepository_CompleteWithSale(t *testing.T) {
	ctx := context.Background()

	audit := &domain.StatusTransition{
		RentalID:   7,
		FromStatus: domain.RentalStatusReturning,
		ToStatus:   domain.RentalStatusCompleted,
		ActorID:    2,
		ActorRole:  domain.RoleSeller,
	}
	sale := &domain.SaleRecord{
		RentalID:          7,
		RentalReference:   "RNTTEST001",
		SellerID:          2,
		CustomerID:        1,
		TotalRevenueCents: 215000,
		CommissionRateBps: 1000,
		CommissionCents:   21500,
		SellerPayoutCents: 193500,
		PayoutStatus:      domain.PayoutStatusCompleted,
	}

	t.Run("Commits Rental Audit And Sale Together", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := postgres.NewRentalRepository(db)

		rt := newRental()
		rt.Status = domain.RentalStatusCompleted

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE rentals SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO status_transitions").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))
		mock.ExpectQuery("INSERT INTO sale_records").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(31))
		mock.ExpectCommit()

		err = repo.CompleteWithSale(ctx, rt, audit, sale, nil)
		assert.NoError(t, err)
		assert.Equal(t, int32(4), rt.Version)
		assert.Equal(t, int32(31), sale.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Cash Sale Writes Ledger Entry In Same Transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := postgres.NewRentalRepository(db)

		rt := newRental()
		rt.Status = domain.RentalStatusCompleted
		cashSale := *sale
		cashSale.PayoutStatus = domain.PayoutStatusPending
		entry := &domain.CommissionLedgerEntry{
			SellerID:    2,
			AmountCents: 21500,
			DueDate:     "2024-11-21",
			Status:      domain.CommissionOutstanding,
		}

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE rentals SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO status_transitions").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(22))
		mock.ExpectQuery("INSERT INTO sale_records").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(32))
		mock.ExpectQuery("INSERT INTO commission_ledger_entries").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(41))
		mock.ExpectCommit()

		err = repo.CompleteWithSale(ctx, rt, audit, &cashSale, entry)
		assert.NoError(t, err)
		assert.Equal(t, int32(32), entry.SaleRecordID)
		assert.Equal(t, int32(41), entry.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Version Conflict Rolls Everything Back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := postgres.NewRentalRepository(db)

		rt := newRental()
		rt.Status = domain.RentalStatusCompleted

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE rentals SET").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.CompleteWithSale(ctx, rt, audit, sale, nil)
		assert.ErrorIs(t, err, domain.ErrConcurrentModification)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
