package models

import (
	"time"

	"github.com/google/uuid"
)

// ExportJobStatus represents the status of a batch export job
type ExportJobStatus string

const (
	ExportStatusPending    ExportJobStatus = "pending"
	ExportStatusInProgress ExportJobStatus = "in_progress"
	ExportStatusCompleted  ExportJobStatus = "completed"
	ExportStatusFailed     ExportJobStatus = "failed"
)

// ExportJob represents a batch export job entity. Progress is
// CompletedCount/TotalCount; ExportedCount excludes items skipped for a
// missing reference. A failed job never has an artifact attached.
type ExportJob struct {
	ID     uuid.UUID       `json:"id"`
	UserID uuid.UUID       `json:"user_id"`
	Status ExportJobStatus `json:"status"`

	Items           ExportItems   `json:"items"`
	CitationStyle   CitationStyle `json:"citation_style"`
	Format          ExportFormat  `json:"format"`
	IncludeFullText bool          `json:"include_full_text"`
	IncludeMetadata bool          `json:"include_metadata"`

	TotalCount     int `json:"total_count"`
	CompletedCount int `json:"completed_count"`
	ExportedCount  int `json:"exported_count"`
	SkippedCount   int `json:"skipped_count"`

	ArtifactID   *uuid.UUID `json:"artifact_id,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Options rebuilds the export options the job was created with
func (j *ExportJob) Options() ExportOptions {
	return ExportOptions{
		CitationStyle:   j.CitationStyle,
		Format:          j.Format,
		IncludeFullText: j.IncludeFullText,
		IncludeMetadata: j.IncludeMetadata,
	}
}

// Progress returns the fractional progress of the job in [0, 1]
func (j *ExportJob) Progress() float64 {
	if j.TotalCount == 0 {
		return 0
	}
	return float64(j.CompletedCount) / float64(j.TotalCount)
}
