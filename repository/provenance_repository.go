package repository

import (
	"context"
	"fmt"
	"time"

	"lexcite-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProvenanceRepository handles database operations for provenance panels.
// Verification entries are stored as ordered rows; position is assigned at
// append time and never rewritten, preserving the audit trail.
type ProvenanceRepository struct {
	db *pgxpool.Pool
}

// NewProvenanceRepository creates a new provenance repository
func NewProvenanceRepository(db *pgxpool.Pool) *ProvenanceRepository {
	return &ProvenanceRepository{db: db}
}

// Upsert stores the panel's registry, retrieval, and version fields for a
// document. Verification entries are managed separately via AppendVerification.
func (r *ProvenanceRepository) Upsert(ctx context.Context, panel *models.ProvenancePanel) error {
	if err := panel.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO provenance_panels (
			document_id, is_official_source, official_url, publisher,
			retrieval_method, curator_justification,
			retrieved_at, checksum, parsing_method,
			effective_start, effective_end, version_notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (document_id) DO UPDATE SET
			is_official_source = EXCLUDED.is_official_source,
			official_url = EXCLUDED.official_url,
			publisher = EXCLUDED.publisher,
			retrieval_method = EXCLUDED.retrieval_method,
			curator_justification = EXCLUDED.curator_justification,
			retrieved_at = EXCLUDED.retrieved_at,
			checksum = EXCLUDED.checksum,
			parsing_method = EXCLUDED.parsing_method,
			effective_start = EXCLUDED.effective_start,
			effective_end = EXCLUDED.effective_end,
			version_notes = EXCLUDED.version_notes`

	var effectiveStart, effectiveEnd, versionNotes interface{}
	if panel.Version != nil {
		effectiveStart = panel.Version.EffectiveStart
		effectiveEnd = panel.Version.EffectiveEnd
		versionNotes = panel.Version.Notes
	}

	var justification *string
	if panel.Source.CuratorJustification != "" {
		justification = &panel.Source.CuratorJustification
	}

	_, err := r.db.Exec(
		ctx, query,
		panel.DocumentID,
		panel.Source.IsOfficialSource,
		panel.Source.OfficialURL,
		panel.Source.Publisher,
		panel.Source.RetrievalMethod,
		justification,
		panel.Retrieval.RetrievedAt,
		panel.Retrieval.Checksum,
		panel.Retrieval.ParsingMethod,
		effectiveStart,
		effectiveEnd,
		versionNotes,
	)

	return err
}

// GetByDocumentID retrieves the full provenance panel for a document,
// including its verification chain in chronological order
func (r *ProvenanceRepository) GetByDocumentID(ctx context.Context, documentID uuid.UUID) (*models.ProvenancePanel, error) {
	panel := &models.ProvenancePanel{}
	var justification, versionNotes *string
	var effectiveStart, effectiveEnd *time.Time

	query := `
		SELECT document_id, is_official_source, official_url, publisher,
			retrieval_method, curator_justification,
			retrieved_at, checksum, parsing_method,
			effective_start, effective_end, version_notes
		FROM provenance_panels
		WHERE document_id = $1`

	err := r.db.QueryRow(ctx, query, documentID).Scan(
		&panel.DocumentID,
		&panel.Source.IsOfficialSource,
		&panel.Source.OfficialURL,
		&panel.Source.Publisher,
		&panel.Source.RetrievalMethod,
		&justification,
		&panel.Retrieval.RetrievedAt,
		&panel.Retrieval.Checksum,
		&panel.Retrieval.ParsingMethod,
		&effectiveStart,
		&effectiveEnd,
		&versionNotes,
	)
	if err != nil {
		return nil, err
	}

	if justification != nil {
		panel.Source.CuratorJustification = *justification
	}
	if effectiveStart != nil {
		panel.Version = &models.VersionSnapshot{
			EffectiveStart: *effectiveStart,
			EffectiveEnd:   effectiveEnd,
			Notes:          versionNotes,
		}
	}

	entries, err := r.listVerificationEntries(ctx, documentID)
	if err != nil {
		return nil, err
	}

	chain, err := models.NewVerificationChain(entries)
	if err != nil {
		return nil, fmt.Errorf("verification chain for document %s: %w", documentID, err)
	}
	panel.Chain = chain

	return panel, nil
}

// AppendVerification appends one entry to a document's verification chain.
// The entry must not predate the current last entry; an out-of-order entry
// is rejected rather than reordered.
func (r *ProvenanceRepository) AppendVerification(ctx context.Context, documentID uuid.UUID, entry models.VerificationEntry) error {
	entries, err := r.listVerificationEntries(ctx, documentID)
	if err != nil {
		return err
	}

	chain, err := models.NewVerificationChain(entries)
	if err != nil {
		return fmt.Errorf("verification chain for document %s: %w", documentID, err)
	}
	if _, err := chain.Append(entry); err != nil {
		return err
	}

	query := `
		INSERT INTO verification_entries (
			document_id, verified_by, verified_at, method, notes, position
		) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.Exec(
		ctx, query,
		documentID,
		entry.VerifiedBy,
		entry.VerifiedAt,
		entry.Method,
		entry.Notes,
		chain.Len(),
	)

	return err
}

func (r *ProvenanceRepository) listVerificationEntries(ctx context.Context, documentID uuid.UUID) ([]models.VerificationEntry, error) {
	query := `
		SELECT verified_by, verified_at, method, notes
		FROM verification_entries
		WHERE document_id = $1
		ORDER BY position`

	rows, err := r.db.Query(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.VerificationEntry
	for rows.Next() {
		var entry models.VerificationEntry
		err := rows.Scan(&entry.VerifiedBy, &entry.VerifiedAt, &entry.Method, &entry.Notes)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
