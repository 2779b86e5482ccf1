package models

import (
	"time"

	"github.com/google/uuid"
)

// ExportArtifact represents a stored export file produced by a completed
// batch export job
type ExportArtifact struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	ExportJobID uuid.UUID `json:"export_job_id"`
	Filename    string    `json:"filename"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}
