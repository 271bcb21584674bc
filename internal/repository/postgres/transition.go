package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type transitionRepository struct {
	db *sql.DB
}

func NewTransitionRepository(db *sql.DB) repository.TransitionRepository {
	return &transitionRepository{db: db}
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// insertTransition is shared with the completion transaction in
// rental.go. Proof artifact references are stored as a JSONB document.
func insertTransition(ctx context.Context, q queryRower, tr *domain.StatusTransition) error {
	proofs, err := json.Marshal(tr.Proofs)
	if err != nil {
		return err
	}
	query := `INSERT INTO status_transitions (rental_id, from_status, to_status, actor_id, actor_role,
	            note, visible_to_customer, proofs, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now().UTC()
	if err := q.QueryRowContext(ctx, query,
		tr.RentalID, tr.FromStatus, tr.ToStatus, tr.ActorID, tr.ActorRole,
		tr.Note, tr.VisibleToCustomer, proofs, now,
	).Scan(&tr.ID); err != nil {
		return err
	}
	tr.CreatedAt = now
	return nil
}

func (r *transitionRepository) Create(ctx context.Context, tr *domain.StatusTransition) error {
	return insertTransition(ctx, r.db, tr)
}

const transitionColumns = `id, rental_id, from_status, to_status, actor_id, actor_role,
	COALESCE(note, ''), visible_to_customer, proofs, created_at`

func scanTransition(row rowScanner) (*domain.StatusTransition, error) {
	tr := &domain.StatusTransition{}
	var proofs []byte
	err := row.Scan(
		&tr.ID, &tr.RentalID, &tr.FromStatus, &tr.ToStatus, &tr.ActorID, &tr.ActorRole,
		&tr.Note, &tr.VisibleToCustomer, &proofs, &tr.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(proofs) > 0 {
		if err := json.Unmarshal(proofs, &tr.Proofs); err != nil {
			return nil, err
		}
	}
	return tr, nil
}

func (r *transitionRepository) ListByRental(ctx context.Context, rentalID int32) ([]domain.StatusTransition, error) {
	query := `SELECT ` + transitionColumns + ` FROM status_transitions WHERE rental_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transitions []domain.StatusTransition
	for rows.Next() {
		tr, err := scanTransition(rows)
		if err != nil {
			return nil, err
		}
		transitions = append(transitions, *tr)
	}
	return transitions, rows.Err()
}

func (r *transitionRepository) Latest(ctx context.Context, rentalID int32) (*domain.StatusTransition, error) {
	query := `SELECT ` + transitionColumns + ` FROM status_transitions WHERE rental_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`
	tr, err := scanTransition(r.db.QueryRowContext(ctx, query, rentalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return tr, err
}
