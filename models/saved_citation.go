package models

import (
	"time"

	"github.com/google/uuid"
)

// SavedCitation represents a citation a user has saved to their library,
// together with their annotations. Tags and collections are ordered: the
// order in which the user added them is the order they export in.
type SavedCitation struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	SectionID   uuid.UUID `json:"section_id"`
	Notes       *string   `json:"notes,omitempty"`
	Tags        []string  `json:"tags"`
	Collections []string  `json:"collections"`
	AccessCount int       `json:"access_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
