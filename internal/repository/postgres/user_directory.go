package postgres

import (
	"context"
	"database/sql"
)

// UserDirectory resolves notification recipients from the shared
// marketplace users table. Account management itself lives in the
// accounts service; this backend only reads addresses.
type UserDirectory struct {
	db *sql.DB
}

func NewUserDirectory(db *sql.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

func (d *UserDirectory) EmailFor(ctx context.Context, userID int32) (string, string, error) {
	var address, name string
	query := `SELECT email, COALESCE(full_name, '') FROM users WHERE id = $1`
	if err := d.db.QueryRowContext(ctx, query, userID).Scan(&address, &name); err != nil {
		return "", "", err
	}
	return address, name, nil
}
