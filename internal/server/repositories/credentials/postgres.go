package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository works over dbx.DBTX, so it can be bound to a pool or
// to a running transaction.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Credential, error) {
	query :=
		`SELECT id, email, password_hash, linkage_type, is_admin FROM credentials
		 WHERE email = $1
		 `

	var (
		c       models.Credential
		hash    sql.NullString
		linkage string
	)
	err := r.db.QueryRowContext(ctx, query, models.NormalizeEmail(email)).
		Scan(&c.ID, &c.Email, &hash, &linkage, &c.IsAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	c.PasswordHash = hash.String
	if c.LinkageType, err = models.ParseLinkageType(linkage); err != nil {
		return nil, fmt.Errorf("credential %s: %w", c.ID, err)
	}

	return &c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	rec := *c
	rec.ID = uuid.NewString()
	rec.Email = models.NormalizeEmail(rec.Email)

	query :=
		`INSERT INTO credentials (id, email, password_hash, linkage_type, is_admin)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	hash := sql.NullString{String: rec.PasswordHash, Valid: rec.PasswordHash != ""}
	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.Email, hash, string(rec.LinkageType), rec.IsAdmin)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &rec, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
