package repository

import (
	"context"

	"lexcite-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SavedCitationRepository handles database operations for saved citations
type SavedCitationRepository struct {
	db *pgxpool.Pool
}

// NewSavedCitationRepository creates a new saved citation repository
func NewSavedCitationRepository(db *pgxpool.Pool) *SavedCitationRepository {
	return &SavedCitationRepository{db: db}
}

// Create creates a new saved citation
func (r *SavedCitationRepository) Create(ctx context.Context, citation *models.SavedCitation) error {
	query := `
		INSERT INTO saved_citations (
			user_id, section_id, notes, tags, collections, access_count
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		citation.UserID,
		citation.SectionID,
		citation.Notes,
		citation.Tags,
		citation.Collections,
		citation.AccessCount,
	).Scan(&citation.ID, &citation.CreatedAt, &citation.UpdatedAt)

	return err
}

// GetByID retrieves a saved citation by ID
func (r *SavedCitationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SavedCitation, error) {
	citation := &models.SavedCitation{}
	query := `
		SELECT id, user_id, section_id, notes, tags, collections, access_count,
			created_at, updated_at
		FROM saved_citations
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&citation.ID,
		&citation.UserID,
		&citation.SectionID,
		&citation.Notes,
		&citation.Tags,
		&citation.Collections,
		&citation.AccessCount,
		&citation.CreatedAt,
		&citation.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	normalizeCitation(citation)
	return citation, nil
}

// GetByUserAndSection retrieves a user's saved citation for a section, if any
func (r *SavedCitationRepository) GetByUserAndSection(ctx context.Context, userID, sectionID uuid.UUID) (*models.SavedCitation, error) {
	citation := &models.SavedCitation{}
	query := `
		SELECT id, user_id, section_id, notes, tags, collections, access_count,
			created_at, updated_at
		FROM saved_citations
		WHERE user_id = $1 AND section_id = $2`

	err := r.db.QueryRow(ctx, query, userID, sectionID).Scan(
		&citation.ID,
		&citation.UserID,
		&citation.SectionID,
		&citation.Notes,
		&citation.Tags,
		&citation.Collections,
		&citation.AccessCount,
		&citation.CreatedAt,
		&citation.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	normalizeCitation(citation)
	return citation, nil
}

// ListByUserID retrieves all saved citations for a user, newest first
func (r *SavedCitationRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.SavedCitation, error) {
	query := `
		SELECT id, user_id, section_id, notes, tags, collections, access_count,
			created_at, updated_at
		FROM saved_citations
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var citations []*models.SavedCitation
	for rows.Next() {
		citation := &models.SavedCitation{}
		err := rows.Scan(
			&citation.ID,
			&citation.UserID,
			&citation.SectionID,
			&citation.Notes,
			&citation.Tags,
			&citation.Collections,
			&citation.AccessCount,
			&citation.CreatedAt,
			&citation.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		normalizeCitation(citation)
		citations = append(citations, citation)
	}

	return citations, rows.Err()
}

// Update updates a saved citation's annotations
func (r *SavedCitationRepository) Update(ctx context.Context, citation *models.SavedCitation) error {
	query := `
		UPDATE saved_citations SET
			notes = $2,
			tags = $3,
			collections = $4,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		citation.ID,
		citation.Notes,
		citation.Tags,
		citation.Collections,
	).Scan(&citation.UpdatedAt)

	return err
}

// IncrementAccessCount bumps the access counter for a saved citation
func (r *SavedCitationRepository) IncrementAccessCount(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	query := `
		UPDATE saved_citations SET
			access_count = access_count + 1,
			updated_at = NOW()
		WHERE id = $1
		RETURNING access_count`

	err := r.db.QueryRow(ctx, query, id).Scan(&count)
	return count, err
}

// Delete deletes a saved citation
func (r *SavedCitationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM saved_citations WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// normalizeCitation ensures tag and collection slices are never nil
// (safeguard in case Scan returned NULL arrays)
func normalizeCitation(c *models.SavedCitation) {
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Collections == nil {
		c.Collections = []string{}
	}
}
