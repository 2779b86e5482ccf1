package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType represents the kind of legal document
type DocumentType string

const (
	DocTypeConstitution DocumentType = "constitution"
	DocTypeStatute      DocumentType = "statute"
	DocTypeRegulation   DocumentType = "regulation"
	DocTypeCaseLaw      DocumentType = "case_law"
)

// VerificationStatus represents how far a document's authenticity has been verified
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationVerified   VerificationStatus = "verified"
)

// Document represents a legal document entity
type Document struct {
	ID             uuid.UUID      `json:"id"`
	JurisdictionID uuid.UUID      `json:"jurisdiction_id"`
	Title          string         `json:"title"`
	DocType        DocumentType   `json:"doc_type"`
	AuthorityLevel AuthorityLevel `json:"authority_level"`

	// Reporter fields, optional; present mainly for case law
	ReporterVolume *int    `json:"reporter_volume,omitempty"`
	ReporterName   *string `json:"reporter_name,omitempty"`
	ReporterPage   *int    `json:"reporter_page,omitempty"`
	Year           *int    `json:"year,omitempty"`

	SourceURL          string             `json:"source_url"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	LastVerified       *time.Time         `json:"last_verified,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Section represents one citable subdivision of a document
type Section struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	Identifier string    `json:"identifier"` // e.g. "1-101", "7401"
	Heading    *string   `json:"heading,omitempty"`
	Article    *string   `json:"article,omitempty"`    // e.g. "IV" for constitutions
	Subsection *string   `json:"subsection,omitempty"` // e.g. "a"
	Text       *string   `json:"text,omitempty"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

// Reference returns the display reference for a section, used as the record
// title in exports, e.g. "§ 1-101 Definitions"
func (s *Section) Reference() string {
	ref := "§ " + s.Identifier
	if s.Heading != nil && *s.Heading != "" {
		ref += " " + *s.Heading
	}
	return ref
}
