package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CitationStyle selects the rendering rule set for a citation
type CitationStyle string

const (
	StyleBluebook    CitationStyle = "bluebook"
	StyleALWD        CitationStyle = "alwd"
	StyleAPA         CitationStyle = "apa"
	StyleMLA         CitationStyle = "mla"
	StyleChicago     CitationStyle = "chicago"
	StylePlain       CitationStyle = "plain"
	StyleCourtFiling CitationStyle = "court-filing"
)

// CitationStyles lists every supported style
var CitationStyles = []CitationStyle{
	StyleBluebook,
	StyleALWD,
	StyleAPA,
	StyleMLA,
	StyleChicago,
	StylePlain,
	StyleCourtFiling,
}

// IsValid reports whether the style is one of the supported tags
func (s CitationStyle) IsValid() bool {
	for _, style := range CitationStyles {
		if s == style {
			return true
		}
	}
	return false
}

// ExportFormat selects the file encoding for an export
type ExportFormat string

const (
	FormatTxt  ExportFormat = "txt"
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
)

// IsValid reports whether the format is one of the supported encodings
func (f ExportFormat) IsValid() bool {
	switch f {
	case FormatTxt, FormatJSON, FormatCSV:
		return true
	}
	return false
}

// ExportOptions holds the user-chosen export configuration. Style and format
// are independent axes; any style may be paired with any format.
type ExportOptions struct {
	CitationStyle   CitationStyle `json:"citation_style"`
	Format          ExportFormat  `json:"format"`
	IncludeFullText bool          `json:"include_full_text"`
	IncludeMetadata bool          `json:"include_metadata"`
}

// DefaultExportOptions returns the default configuration: bluebook citations
// in a plain-text file, metadata included, full text omitted.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		CitationStyle:   StyleBluebook,
		Format:          FormatTxt,
		IncludeFullText: false,
		IncludeMetadata: true,
	}
}

// CitationMetadata is the ephemeral input bundle for formatting one citation.
// It is built fresh per export request: RetrievalDate is a human-readable
// rendering of "now" at request time and ExportDate an ISO-8601 timestamp of
// the same instant, never cached values.
type CitationMetadata struct {
	Section      *Section
	Document     *Document
	Jurisdiction *Jurisdiction

	RetrievalDate      string
	ExportDate         string
	UserID             uuid.UUID
	VerificationStatus VerificationStatus
	LastVerified       *time.Time
	SourceURL          string
}

// RecordMetadata is the display-ready projection of citation metadata and
// provenance carried by an export record. When the caller opts out of
// metadata, only the identity fields (section reference, document title,
// jurisdiction) are populated.
type RecordMetadata struct {
	SectionReference   string              `json:"section_reference"`
	DocumentTitle      string              `json:"document_title"`
	Jurisdiction       string              `json:"jurisdiction"`
	AuthorityLevel     AuthorityLevel      `json:"authority_level,omitempty"`
	VerificationStatus VerificationStatus  `json:"verification_status,omitempty"`
	SourceURL          string              `json:"source_url,omitempty"`
	RetrievalDate      string              `json:"retrieval_date,omitempty"`
	ExportDate         string              `json:"export_date,omitempty"`
	RetrievedAt        *time.Time          `json:"retrieved_at,omitempty"`
	Checksum           string              `json:"checksum,omitempty"`
	Publisher          string              `json:"publisher,omitempty"`
	IsOfficialSource   *bool               `json:"is_official_source,omitempty"`
	VerificationChain  []VerificationEntry `json:"verification_chain,omitempty"`
	EffectiveStart     *time.Time          `json:"effective_start,omitempty"`
	EffectiveEnd       *time.Time          `json:"effective_end,omitempty"`
}

// ExportRecord is one court-defensible export record: a formatted citation
// plus provenance and the user's annotations. Records are created once per
// export invocation, never mutated, and discarded after serialization.
type ExportRecord struct {
	Citation    string         `json:"citation"`
	Metadata    RecordMetadata `json:"metadata"`
	FullText    *string        `json:"full_text,omitempty"`
	UserNotes   string         `json:"user_notes"`
	Tags        []string       `json:"tags"`
	Collections []string       `json:"collections"`
	AccessCount int            `json:"access_count"`
}

// ExportFile is the encoded artifact handed to the output sink
type ExportFile struct {
	Content  []byte
	Filename string
	MimeType string
}

// ExportItem is one citation request in a batch: the (section, document,
// jurisdiction) triple to resolve and format
type ExportItem struct {
	SectionID      uuid.UUID `json:"section_id"`
	DocumentID     uuid.UUID `json:"document_id"`
	JurisdictionID uuid.UUID `json:"jurisdiction_id"`
}

// ExportItems is an ordered list of citation requests
type ExportItems []ExportItem

// Value implements driver.Valuer for JSONB
func (e ExportItems) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// Scan implements sql.Scanner for JSONB
func (e *ExportItems) Scan(value interface{}) error {
	if value == nil {
		*e = make(ExportItems, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*e = make(ExportItems, 0)
		return nil
	}

	if len(bytes) == 0 {
		*e = make(ExportItems, 0)
		return nil
	}

	return json.Unmarshal(bytes, e)
}
