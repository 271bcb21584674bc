package postgres

import (
	"database/sql"

	"equiprent-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB

	RentalRepository           repository.RentalRepository
	TransitionRepository       repository.TransitionRepository
	PaymentRepository          repository.PaymentRepository
	SaleRepository             repository.SaleRepository
	CommissionLedgerRepository repository.CommissionLedgerRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                         db,
		RentalRepository:           NewRentalRepository(db),
		TransitionRepository:       NewTransitionRepository(db),
		PaymentRepository:          NewPaymentRepository(db),
		SaleRepository:             NewSaleRepository(db),
		CommissionLedgerRepository: NewCommissionLedgerRepository(db),
	}
}
