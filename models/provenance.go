package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrCorruptProvenance indicates a provenance panel that fails structural
// validation: an out-of-order verification chain, or a non-official source
// without a curator justification. Callers must treat the panel as unusable
// rather than repair it; reordering or backfilling would falsify the audit trail.
var ErrCorruptProvenance = errors.New("corrupt provenance")

// SourceRegistryEntry describes where a document's text came from
type SourceRegistryEntry struct {
	IsOfficialSource     bool   `json:"is_official_source"`
	OfficialURL          string `json:"official_url"`
	Publisher            string `json:"publisher"`
	RetrievalMethod      string `json:"retrieval_method"`
	CuratorJustification string `json:"curator_justification,omitempty"`
}

// RetrievalMetadata records how and when the document text was ingested
type RetrievalMetadata struct {
	RetrievedAt   time.Time `json:"retrieved_at"`
	Checksum      string    `json:"checksum"` // SHA-256 of the ingested text
	ParsingMethod string    `json:"parsing_method"`
}

// VerificationEntry is one step in a document's verification audit trail
type VerificationEntry struct {
	VerifiedBy string    `json:"verified_by"`
	VerifiedAt time.Time `json:"verified_at"`
	Method     string    `json:"method"`
	Notes      *string   `json:"notes,omitempty"`
}

// VerificationChain is an append-only, chronologically ordered audit log of
// verification entries. The zero value is a valid empty chain. Entries are
// never edited or removed once recorded; Append returns a new chain and
// leaves the receiver untouched.
type VerificationChain struct {
	entries []VerificationEntry
}

// NewVerificationChain builds a chain from entries, rejecting any sequence
// whose timestamps are not monotonically non-decreasing.
func NewVerificationChain(entries []VerificationEntry) (VerificationChain, error) {
	for i := 1; i < len(entries); i++ {
		if entries[i].VerifiedAt.Before(entries[i-1].VerifiedAt) {
			return VerificationChain{}, fmt.Errorf(
				"%w: verification entry %d (%s) predates entry %d (%s)",
				ErrCorruptProvenance,
				i, entries[i].VerifiedAt.Format(time.RFC3339),
				i-1, entries[i-1].VerifiedAt.Format(time.RFC3339),
			)
		}
	}
	chain := VerificationChain{entries: make([]VerificationEntry, len(entries))}
	copy(chain.entries, entries)
	return chain, nil
}

// Append returns a new chain with the entry added at the end. The entry must
// not predate the current last entry.
func (c VerificationChain) Append(entry VerificationEntry) (VerificationChain, error) {
	if n := len(c.entries); n > 0 && entry.VerifiedAt.Before(c.entries[n-1].VerifiedAt) {
		return VerificationChain{}, fmt.Errorf(
			"%w: appended entry (%s) predates last entry (%s)",
			ErrCorruptProvenance,
			entry.VerifiedAt.Format(time.RFC3339),
			c.entries[n-1].VerifiedAt.Format(time.RFC3339),
		)
	}
	entries := make([]VerificationEntry, len(c.entries)+1)
	copy(entries, c.entries)
	entries[len(c.entries)] = entry
	return VerificationChain{entries: entries}, nil
}

// Entries returns a copy of the chain entries, oldest first
func (c VerificationChain) Entries() []VerificationEntry {
	out := make([]VerificationEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries in the chain
func (c VerificationChain) Len() int {
	return len(c.entries)
}

// MarshalJSON serializes the chain as a plain array of entries
func (c VerificationChain) MarshalJSON() ([]byte, error) {
	if c.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.entries)
}

// UnmarshalJSON parses an entry array, enforcing chronological order
func (c *VerificationChain) UnmarshalJSON(data []byte) error {
	var entries []VerificationEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	chain, err := NewVerificationChain(entries)
	if err != nil {
		return err
	}
	*c = chain
	return nil
}

// VersionSnapshot describes the validity window of the specific text version being cited
type VersionSnapshot struct {
	EffectiveStart time.Time  `json:"effective_start"`
	EffectiveEnd   *time.Time `json:"effective_end,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
}

// ProvenancePanel bundles everything needed to defend a document's
// authenticity: where it came from, how it was ingested, and who verified it.
type ProvenancePanel struct {
	DocumentID uuid.UUID           `json:"document_id"`
	Source     SourceRegistryEntry `json:"source"`
	Retrieval  RetrievalMetadata   `json:"retrieval"`
	Chain      VerificationChain   `json:"verification_chain"`
	Version    *VersionSnapshot    `json:"version,omitempty"`
}

// Validate performs structural validation of the panel. A non-official source
// must carry a non-empty curator justification; chain order is validated at
// construction time but re-checked here for panels assembled field by field.
func (p *ProvenancePanel) Validate() error {
	if !p.Source.IsOfficialSource && p.Source.CuratorJustification == "" {
		return fmt.Errorf("%w: non-official source for document %s has no curator justification",
			ErrCorruptProvenance, p.DocumentID)
	}
	entries := p.Chain.entries
	for i := 1; i < len(entries); i++ {
		if entries[i].VerifiedAt.Before(entries[i-1].VerifiedAt) {
			return fmt.Errorf("%w: verification chain for document %s is out of order at entry %d",
				ErrCorruptProvenance, p.DocumentID, i)
		}
	}
	return nil
}
