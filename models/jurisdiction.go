package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthorityLevel classifies a jurisdiction or document for display and sorting
type AuthorityLevel string

const (
	AuthorityFederal   AuthorityLevel = "federal"
	AuthorityState     AuthorityLevel = "state"
	AuthorityTerritory AuthorityLevel = "territory"
	AuthorityLocal     AuthorityLevel = "local"
)

// Jurisdiction represents a jurisdiction entity
type Jurisdiction struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	Code           string         `json:"code"` // e.g. "US", "AZ", "GU"
	AuthorityLevel AuthorityLevel `json:"authority_level"`
	CreatedAt      time.Time      `json:"created_at"`
}
