package metadata

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
)

// SQLiteRepository works over either *sql.DB or *sql.Tx.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// SaveSession writes both rows in one statement, so a reader never sees a
// token paired with another account's email.
func (r *SQLiteRepository) SaveSession(ctx context.Context, s Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?), (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, KeyEmail, []byte(s.Email), KeyAccessToken, []byte(s.AccessToken))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) LoadSession(ctx context.Context) (*Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value FROM metadata WHERE key IN (?, ?)`, KeyEmail, KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	defer rows.Close()

	var s Session
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		switch key {
		case KeyEmail:
			s.Email = string(value)
		case KeyAccessToken:
			s.AccessToken = string(value)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if s.AccessToken == "" {
		return nil, nil
	}
	return &s, nil
}

func (r *SQLiteRepository) ClearSession(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM metadata WHERE key IN (?, ?)`, KeyEmail, KeyAccessToken)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
