package repository

import (
	"context"

	"lexcite-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ArtifactRepository handles database operations for export artifacts
type ArtifactRepository struct {
	db *pgxpool.Pool
}

// NewArtifactRepository creates a new artifact repository
func NewArtifactRepository(db *pgxpool.Pool) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

// Create creates a new artifact record
func (r *ArtifactRepository) Create(ctx context.Context, artifact *models.ExportArtifact) error {
	query := `
		INSERT INTO export_artifacts (
			user_id, export_job_id, filename, mime_type, size, storage_path
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		artifact.UserID,
		artifact.ExportJobID,
		artifact.Filename,
		artifact.MimeType,
		artifact.Size,
		artifact.StoragePath,
	).Scan(&artifact.ID, &artifact.CreatedAt)

	return err
}

// GetByID retrieves an artifact by ID
func (r *ArtifactRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ExportArtifact, error) {
	artifact := &models.ExportArtifact{}
	query := `
		SELECT id, user_id, export_job_id, filename, mime_type, size, storage_path, created_at
		FROM export_artifacts
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&artifact.ID,
		&artifact.UserID,
		&artifact.ExportJobID,
		&artifact.Filename,
		&artifact.MimeType,
		&artifact.Size,
		&artifact.StoragePath,
		&artifact.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return artifact, nil
}

// Delete removes an artifact record
func (r *ArtifactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM export_artifacts WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
