package repository

import (
	"context"
	"time"

	"lexcite-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExportJobRepository handles database operations for export jobs
type ExportJobRepository struct {
	db *pgxpool.Pool
}

// NewExportJobRepository creates a new export job repository
func NewExportJobRepository(db *pgxpool.Pool) *ExportJobRepository {
	return &ExportJobRepository{db: db}
}

// Create creates a new export job
func (r *ExportJobRepository) Create(ctx context.Context, job *models.ExportJob) error {
	query := `
		INSERT INTO export_jobs (
			user_id, status, items, citation_style, format,
			include_full_text, include_metadata, total_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		job.UserID,
		job.Status,
		job.Items,
		job.CitationStyle,
		job.Format,
		job.IncludeFullText,
		job.IncludeMetadata,
		job.TotalCount,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)

	return err
}

// GetByID retrieves an export job by ID
func (r *ExportJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ExportJob, error) {
	job := &models.ExportJob{}
	query := `
		SELECT id, user_id, status, items, citation_style, format,
			include_full_text, include_metadata,
			total_count, completed_count, exported_count, skipped_count,
			artifact_id, error_message, created_at, updated_at, completed_at
		FROM export_jobs
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&job.ID,
		&job.UserID,
		&job.Status,
		&job.Items,
		&job.CitationStyle,
		&job.Format,
		&job.IncludeFullText,
		&job.IncludeMetadata,
		&job.TotalCount,
		&job.CompletedCount,
		&job.ExportedCount,
		&job.SkippedCount,
		&job.ArtifactID,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.CompletedAt,
	)

	if err != nil {
		return nil, err
	}

	// Ensure Items is never nil (safeguard in case Scan didn't handle NULL properly)
	if job.Items == nil {
		job.Items = make(models.ExportItems, 0)
	}

	return job, nil
}

// ListByUserID retrieves export jobs for a user, newest first
func (r *ExportJobRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ExportJob, error) {
	query := `
		SELECT id, user_id, status, items, citation_style, format,
			include_full_text, include_metadata,
			total_count, completed_count, exported_count, skipped_count,
			artifact_id, error_message, created_at, updated_at, completed_at
		FROM export_jobs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.ExportJob
	for rows.Next() {
		job := &models.ExportJob{}
		err := rows.Scan(
			&job.ID,
			&job.UserID,
			&job.Status,
			&job.Items,
			&job.CitationStyle,
			&job.Format,
			&job.IncludeFullText,
			&job.IncludeMetadata,
			&job.TotalCount,
			&job.CompletedCount,
			&job.ExportedCount,
			&job.SkippedCount,
			&job.ArtifactID,
			&job.ErrorMessage,
			&job.CreatedAt,
			&job.UpdatedAt,
			&job.CompletedAt,
		)
		if err != nil {
			return nil, err
		}
		if job.Items == nil {
			job.Items = make(models.ExportItems, 0)
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// UpdateStatus updates the status of an export job
func (r *ExportJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ExportJobStatus) error {
	query := `
		UPDATE export_jobs SET
			status = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

// UpdateProgress updates the completed-item count of an export job
func (r *ExportJobRepository) UpdateProgress(ctx context.Context, id uuid.UUID, completedCount int) error {
	query := `
		UPDATE export_jobs SET
			completed_count = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, completedCount)
	return err
}

// Complete marks an export job as completed and attaches its artifact
func (r *ExportJobRepository) Complete(ctx context.Context, id uuid.UUID, artifactID uuid.UUID, exportedCount, skippedCount int) error {
	now := time.Now()
	query := `
		UPDATE export_jobs SET
			status = $2,
			artifact_id = $3,
			exported_count = $4,
			skipped_count = $5,
			completed_at = $6,
			updated_at = $6
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.ExportStatusCompleted, artifactID, exportedCount, skippedCount, now)
	return err
}

// Fail marks an export job as failed
func (r *ExportJobRepository) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE export_jobs SET
			status = $2,
			error_message = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.ExportStatusFailed, errorMessage)
	return err
}
