package repository

import (
	"context"

	"lexcite-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository handles database operations for documents
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create creates a new document
func (r *DocumentRepository) Create(ctx context.Context, document *models.Document) error {
	query := `
		INSERT INTO documents (
			jurisdiction_id, title, doc_type, authority_level,
			reporter_volume, reporter_name, reporter_page, year,
			source_url, verification_status, last_verified
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		document.JurisdictionID,
		document.Title,
		document.DocType,
		document.AuthorityLevel,
		document.ReporterVolume,
		document.ReporterName,
		document.ReporterPage,
		document.Year,
		document.SourceURL,
		document.VerificationStatus,
		document.LastVerified,
	).Scan(&document.ID, &document.CreatedAt, &document.UpdatedAt)

	return err
}

// GetByID retrieves a document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	document := &models.Document{}
	query := `
		SELECT id, jurisdiction_id, title, doc_type, authority_level,
			reporter_volume, reporter_name, reporter_page, year,
			source_url, verification_status, last_verified,
			created_at, updated_at
		FROM documents
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&document.ID,
		&document.JurisdictionID,
		&document.Title,
		&document.DocType,
		&document.AuthorityLevel,
		&document.ReporterVolume,
		&document.ReporterName,
		&document.ReporterPage,
		&document.Year,
		&document.SourceURL,
		&document.VerificationStatus,
		&document.LastVerified,
		&document.CreatedAt,
		&document.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return document, nil
}

// ListByJurisdiction retrieves documents for a jurisdiction ordered by
// authority level, then title
func (r *DocumentRepository) ListByJurisdiction(ctx context.Context, jurisdictionID uuid.UUID) ([]*models.Document, error) {
	query := `
		SELECT id, jurisdiction_id, title, doc_type, authority_level,
			reporter_volume, reporter_name, reporter_page, year,
			source_url, verification_status, last_verified,
			created_at, updated_at
		FROM documents
		WHERE jurisdiction_id = $1
		ORDER BY ` + authorityOrder + `, title`

	rows, err := r.db.Query(ctx, query, jurisdictionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documents []*models.Document
	for rows.Next() {
		document := &models.Document{}
		err := rows.Scan(
			&document.ID,
			&document.JurisdictionID,
			&document.Title,
			&document.DocType,
			&document.AuthorityLevel,
			&document.ReporterVolume,
			&document.ReporterName,
			&document.ReporterPage,
			&document.Year,
			&document.SourceURL,
			&document.VerificationStatus,
			&document.LastVerified,
			&document.CreatedAt,
			&document.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		documents = append(documents, document)
	}

	return documents, rows.Err()
}

// UpdateVerificationStatus updates the verification status of a document
func (r *DocumentRepository) UpdateVerificationStatus(ctx context.Context, id uuid.UUID, status models.VerificationStatus) error {
	query := `
		UPDATE documents SET
			verification_status = $2,
			last_verified = NOW(),
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status)
	return err
}
