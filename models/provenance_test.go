package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func chainEntry(by string, at time.Time) VerificationEntry {
	return VerificationEntry{VerifiedBy: by, VerifiedAt: at, Method: "checksum"}
}

func TestNewVerificationChain_OK(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	chain, err := NewVerificationChain([]VerificationEntry{
		chainEntry("alice", base),
		chainEntry("bob", base.Add(time.Hour)),
		chainEntry("carol", base.Add(time.Hour)), // equal timestamps are allowed
	})
	require.NoError(t, err)
	require.Equal(t, 3, chain.Len())
}

func TestNewVerificationChain_RejectsOutOfOrder(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := NewVerificationChain([]VerificationEntry{
		chainEntry("alice", base),
		chainEntry("bob", base.Add(-time.Minute)),
	})
	require.ErrorIs(t, err, ErrCorruptProvenance)
}

func TestVerificationChain_AppendReturnsNewChain(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	chain, err := NewVerificationChain([]VerificationEntry{chainEntry("alice", base)})
	require.NoError(t, err)

	extended, err := chain.Append(chainEntry("bob", base.Add(time.Hour)))
	require.NoError(t, err)
	require.Equal(t, 2, extended.Len())

	// The original is untouched
	require.Equal(t, 1, chain.Len())
}

func TestVerificationChain_AppendRejectsPredating(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	chain, err := NewVerificationChain([]VerificationEntry{chainEntry("alice", base)})
	require.NoError(t, err)

	_, err = chain.Append(chainEntry("bob", base.Add(-time.Second)))
	require.ErrorIs(t, err, ErrCorruptProvenance)
}

func TestVerificationChain_EntriesReturnsCopy(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	chain, err := NewVerificationChain([]VerificationEntry{chainEntry("alice", base)})
	require.NoError(t, err)

	got := chain.Entries()
	got[0].VerifiedBy = "mallory"
	require.Equal(t, "alice", chain.Entries()[0].VerifiedBy)
}

func TestVerificationChain_MarshalEmptyAsArray(t *testing.T) {
	var chain VerificationChain
	data, err := json.Marshal(chain)
	require.NoError(t, err)
	require.Equal(t, "[]", string(data))
}

func TestVerificationChain_JSONRoundTrip(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	chain, err := NewVerificationChain([]VerificationEntry{
		chainEntry("alice", base),
		chainEntry("bob", base.Add(time.Hour)),
	})
	require.NoError(t, err)

	data, err := json.Marshal(chain)
	require.NoError(t, err)

	var decoded VerificationChain
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, chain.Entries(), decoded.Entries())
}

func TestVerificationChain_UnmarshalRejectsOutOfOrder(t *testing.T) {
	payload := `[
		{"verified_by":"alice","verified_at":"2026-03-01T10:00:00Z","method":"checksum"},
		{"verified_by":"bob","verified_at":"2026-03-01T09:00:00Z","method":"checksum"}
	]`
	var chain VerificationChain
	err := json.Unmarshal([]byte(payload), &chain)
	require.ErrorIs(t, err, ErrCorruptProvenance)
}

func TestProvenancePanel_Validate(t *testing.T) {
	docID := uuid.New()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	official := ProvenancePanel{
		DocumentID: docID,
		Source:     SourceRegistryEntry{IsOfficialSource: true, Publisher: "Office of the Code Counsel"},
		Retrieval:  RetrievalMetadata{RetrievedAt: base, Checksum: "abc123"},
	}
	require.NoError(t, official.Validate())

	unjustified := official
	unjustified.Source.IsOfficialSource = false
	require.ErrorIs(t, unjustified.Validate(), ErrCorruptProvenance)

	justified := unjustified
	justified.Source.CuratorJustification = "official mirror is offline; snapshot from archive"
	require.NoError(t, justified.Validate())
}
