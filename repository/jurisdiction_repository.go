package repository

import (
	"context"

	"lexcite-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// authorityOrder ranks jurisdictions federal-first for hierarchical listings
const authorityOrder = `
	CASE authority_level
		WHEN 'federal' THEN 0
		WHEN 'state' THEN 1
		WHEN 'territory' THEN 2
		WHEN 'local' THEN 3
		ELSE 4
	END`

// JurisdictionRepository handles database operations for jurisdictions
type JurisdictionRepository struct {
	db *pgxpool.Pool
}

// NewJurisdictionRepository creates a new jurisdiction repository
func NewJurisdictionRepository(db *pgxpool.Pool) *JurisdictionRepository {
	return &JurisdictionRepository{db: db}
}

// Create creates a new jurisdiction
func (r *JurisdictionRepository) Create(ctx context.Context, jurisdiction *models.Jurisdiction) error {
	query := `
		INSERT INTO jurisdictions (name, code, authority_level)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		jurisdiction.Name,
		jurisdiction.Code,
		jurisdiction.AuthorityLevel,
	).Scan(&jurisdiction.ID, &jurisdiction.CreatedAt)

	return err
}

// GetByID retrieves a jurisdiction by ID
func (r *JurisdictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Jurisdiction, error) {
	jurisdiction := &models.Jurisdiction{}
	query := `
		SELECT id, name, code, authority_level, created_at
		FROM jurisdictions
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&jurisdiction.ID,
		&jurisdiction.Name,
		&jurisdiction.Code,
		&jurisdiction.AuthorityLevel,
		&jurisdiction.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return jurisdiction, nil
}

// List retrieves all jurisdictions ordered by authority level, then name
func (r *JurisdictionRepository) List(ctx context.Context) ([]*models.Jurisdiction, error) {
	query := `
		SELECT id, name, code, authority_level, created_at
		FROM jurisdictions
		ORDER BY ` + authorityOrder + `, name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jurisdictions []*models.Jurisdiction
	for rows.Next() {
		jurisdiction := &models.Jurisdiction{}
		err := rows.Scan(
			&jurisdiction.ID,
			&jurisdiction.Name,
			&jurisdiction.Code,
			&jurisdiction.AuthorityLevel,
			&jurisdiction.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		jurisdictions = append(jurisdictions, jurisdiction)
	}

	return jurisdictions, rows.Err()
}
