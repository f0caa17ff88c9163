package profiles

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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByOwner(ctx context.Context, ownerID string) (*models.Profile, error) {
	query :=
		`SELECT id, owner_id, email, display_name, bio, avatar_url, linkage_type, is_admin, created_at
		 FROM profiles
		 WHERE owner_id = $1
		 ORDER BY created_at
		 LIMIT 1
		 `

	var (
		p       models.Profile
		bio     sql.NullString
		linkage string
	)
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(
		&p.ID, &p.OwnerID, &p.Email, &p.DisplayName, &bio, &p.AvatarURL, &linkage, &p.IsAdmin, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	p.Bio = bio.String
	if p.LinkageType, err = models.ParseLinkageType(linkage); err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.ID, err)
	}

	return &p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	rec := *p
	rec.ID = uuid.NewString()

	query :=
		`INSERT INTO profiles (id, owner_id, email, display_name, bio, avatar_url, linkage_type, is_admin, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 `

	bio := sql.NullString{String: rec.Bio, Valid: rec.Bio != ""}
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.OwnerID, rec.Email, rec.DisplayName, bio, rec.AvatarURL,
		string(rec.LinkageType), rec.IsAdmin, rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &rec, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
