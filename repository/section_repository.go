package repository

import (
	"context"

	"lexcite-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SectionRepository handles database operations for document sections
type SectionRepository struct {
	db *pgxpool.Pool
}

// NewSectionRepository creates a new section repository
func NewSectionRepository(db *pgxpool.Pool) *SectionRepository {
	return &SectionRepository{db: db}
}

// Create creates a new section
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	query := `
		INSERT INTO sections (
			document_id, identifier, heading, article, subsection, text, position
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		section.DocumentID,
		section.Identifier,
		section.Heading,
		section.Article,
		section.Subsection,
		section.Text,
		section.Position,
	).Scan(&section.ID, &section.CreatedAt)

	return err
}

// GetByID retrieves a section by ID
func (r *SectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Section, error) {
	section := &models.Section{}
	query := `
		SELECT id, document_id, identifier, heading, article, subsection, text, position, created_at
		FROM sections
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&section.ID,
		&section.DocumentID,
		&section.Identifier,
		&section.Heading,
		&section.Article,
		&section.Subsection,
		&section.Text,
		&section.Position,
		&section.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return section, nil
}

// ListByDocument retrieves all sections of a document in document order
func (r *SectionRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*models.Section, error) {
	query := `
		SELECT id, document_id, identifier, heading, article, subsection, text, position, created_at
		FROM sections
		WHERE document_id = $1
		ORDER BY position`

	rows, err := r.db.Query(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []*models.Section
	for rows.Next() {
		section := &models.Section{}
		err := rows.Scan(
			&section.ID,
			&section.DocumentID,
			&section.Identifier,
			&section.Heading,
			&section.Article,
			&section.Subsection,
			&section.Text,
			&section.Position,
			&section.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}

	return sections, rows.Err()
}
