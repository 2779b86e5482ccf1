package service

import (
	"testing"
	"time"

	"lexcite-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testPanel(documentID uuid.UUID) *models.ProvenancePanel {
	retrieved := time.Date(2026, 2, 20, 8, 0, 0, 0, time.UTC)
	chain, _ := models.NewVerificationChain([]models.VerificationEntry{
		{VerifiedBy: "alice", VerifiedAt: retrieved.Add(time.Hour), Method: "checksum"},
	})
	return &models.ProvenancePanel{
		DocumentID: documentID,
		Source: models.SourceRegistryEntry{
			IsOfficialSource: true,
			Publisher:        "Office of the Code Counsel",
		},
		Retrieval: models.RetrievalMetadata{
			RetrievedAt:   retrieved,
			Checksum:      "ab12cd34",
			ParsingMethod: "xml",
		},
		Chain: chain,
	}
}

func testSaved(userID, sectionID uuid.UUID) *models.SavedCitation {
	notes := "key holding for count II"
	return &models.SavedCitation{
		ID:          uuid.New(),
		UserID:      userID,
		SectionID:   sectionID,
		Notes:       &notes,
		Tags:        []string{"environment", "permits"},
		Collections: []string{"brief-2026"},
		AccessCount: 4,
	}
}

func TestBuildExportRecord_Full(t *testing.T) {
	meta := fullMetadata()
	userID := uuid.New()
	panel := testPanel(meta.Document.ID)
	saved := testSaved(userID, meta.Section.ID)

	opts := models.ExportOptions{
		CitationStyle:   models.StyleBluebook,
		Format:          models.FormatJSON,
		IncludeFullText: true,
		IncludeMetadata: true,
	}

	record, err := buildExportRecord(meta, panel, saved, opts)
	require.NoError(t, err)

	require.NotEmpty(t, record.Citation)
	require.Equal(t, "§ 7401 Congressional findings", record.Metadata.SectionReference)
	require.Equal(t, "Environmental Conservation Act", record.Metadata.DocumentTitle)
	require.Equal(t, "United States", record.Metadata.Jurisdiction)
	require.Equal(t, models.AuthorityFederal, record.Metadata.AuthorityLevel)
	require.Equal(t, "ab12cd34", record.Metadata.Checksum)
	require.NotNil(t, record.Metadata.IsOfficialSource)
	require.True(t, *record.Metadata.IsOfficialSource)
	require.Len(t, record.Metadata.VerificationChain, 1)

	require.NotNil(t, record.FullText)
	require.Equal(t, *meta.Section.Text, *record.FullText)

	require.Equal(t, "key holding for count II", record.UserNotes)
	require.Equal(t, []string{"environment", "permits"}, record.Tags)
	require.Equal(t, []string{"brief-2026"}, record.Collections)
	require.Equal(t, 4, record.AccessCount)
}

func TestBuildExportRecord_MetadataOptOut(t *testing.T) {
	meta := fullMetadata()
	panel := testPanel(meta.Document.ID)

	opts := models.ExportOptions{
		CitationStyle:   models.StylePlain,
		Format:          models.FormatTxt,
		IncludeMetadata: false,
	}

	record, err := buildExportRecord(meta, panel, nil, opts)
	require.NoError(t, err)

	// Identity fields survive the opt-out; the provenance projection does not
	require.Equal(t, "§ 7401 Congressional findings", record.Metadata.SectionReference)
	require.Equal(t, "Environmental Conservation Act", record.Metadata.DocumentTitle)
	require.Empty(t, record.Metadata.AuthorityLevel)
	require.Empty(t, record.Metadata.Checksum)
	require.Nil(t, record.Metadata.IsOfficialSource)
	require.Empty(t, record.Metadata.VerificationChain)
}

func TestBuildExportRecord_FullTextOptOut(t *testing.T) {
	meta := fullMetadata()

	opts := models.ExportOptions{
		CitationStyle:   models.StylePlain,
		Format:          models.FormatTxt,
		IncludeFullText: false,
		IncludeMetadata: true,
	}

	record, err := buildExportRecord(meta, nil, nil, opts)
	require.NoError(t, err)
	require.Nil(t, record.FullText)
}

func TestBuildExportRecord_NoAnnotations(t *testing.T) {
	meta := fullMetadata()

	record, err := buildExportRecord(meta, nil, nil, models.DefaultExportOptions())
	require.NoError(t, err)
	require.Empty(t, record.UserNotes)
	require.Empty(t, record.Tags)
	require.Empty(t, record.Collections)
	require.Zero(t, record.AccessCount)
}

func TestBuildExportRecord_CorruptPanel(t *testing.T) {
	meta := fullMetadata()
	panel := testPanel(meta.Document.ID)
	panel.Source.IsOfficialSource = false
	panel.Source.CuratorJustification = ""

	_, err := buildExportRecord(meta, panel, nil, models.DefaultExportOptions())
	require.ErrorIs(t, err, models.ErrCorruptProvenance)
}

// batchFixture builds reference collections for n resolvable items
func batchFixture(t *testing.T, n int) ([]models.ExportItem, batchRefs) {
	t.Helper()
	refs := newBatchRefs()
	items := make([]models.ExportItem, 0, n)

	for i := 0; i < n; i++ {
		meta := fullMetadata()
		meta.Section.Identifier = string(rune('A' + i))
		items = append(items, models.ExportItem{
			SectionID:      meta.Section.ID,
			DocumentID:     meta.Document.ID,
			JurisdictionID: meta.Jurisdiction.ID,
		})
		refs.Sections[meta.Section.ID] = meta.Section
		refs.Documents[meta.Document.ID] = meta.Document
		refs.Jurisdictions[meta.Jurisdiction.ID] = meta.Jurisdiction
	}
	return items, refs
}

func TestRunBatch_PreservesInputOrder(t *testing.T) {
	items, refs := batchFixture(t, 3)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	records, skipped, err := runBatch(items, refs, models.DefaultExportOptions(), uuid.New(), now, nil)
	require.NoError(t, err)
	require.Zero(t, skipped)
	require.Len(t, records, 3)

	for i, record := range records {
		expected := refs.Sections[items[i].SectionID].Reference()
		require.Equal(t, expected, record.Metadata.SectionReference)
	}
}

func TestRunBatch_SkipsUnresolvedAndStillAdvancesProgress(t *testing.T) {
	items, refs := batchFixture(t, 3)

	// Middle item points at a section nobody has
	items[1].SectionID = uuid.New()

	var progress []float64
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	records, skipped, err := runBatch(items, refs, models.DefaultExportOptions(), uuid.New(), now, func(f float64) {
		progress = append(progress, f)
	})
	require.NoError(t, err)
	require.Equal(t, 1, skipped)
	require.Len(t, records, 2)

	// The skipped item is excluded from output but counted in progress
	require.Equal(t, []float64{1.0 / 3.0, 2.0 / 3.0, 1.0}, progress)

	require.Equal(t, refs.Sections[items[0].SectionID].Reference(), records[0].Metadata.SectionReference)
	require.Equal(t, refs.Sections[items[2].SectionID].Reference(), records[1].Metadata.SectionReference)
}

func TestRunBatch_FinalProgressIsExactlyOne(t *testing.T) {
	items, refs := batchFixture(t, 7)

	var last float64
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	_, _, err := runBatch(items, refs, models.DefaultExportOptions(), uuid.New(), now, func(f float64) {
		last = f
	})
	require.NoError(t, err)
	require.Equal(t, 1.0, last)
}

func TestRunBatch_BuildErrorFailsWholeBatch(t *testing.T) {
	items, refs := batchFixture(t, 3)

	// A corrupt provenance panel on the middle item's document
	panel := testPanel(items[1].DocumentID)
	panel.Source.IsOfficialSource = false
	panel.Source.CuratorJustification = ""
	refs.Provenance[items[1].DocumentID] = panel

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	records, _, err := runBatch(items, refs, models.DefaultExportOptions(), uuid.New(), now, nil)
	require.ErrorIs(t, err, models.ErrCorruptProvenance)
	require.Nil(t, records)
}

func TestRunBatch_AnnotationsFlowThrough(t *testing.T) {
	items, refs := batchFixture(t, 1)
	userID := uuid.New()
	refs.Saved[items[0].SectionID] = testSaved(userID, items[0].SectionID)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	records, skipped, err := runBatch(items, refs, models.DefaultExportOptions(), userID, now, nil)
	require.NoError(t, err)
	require.Zero(t, skipped)
	require.Len(t, records, 1)
	require.Equal(t, "key holding for count II", records[0].UserNotes)
	require.Equal(t, 4, records[0].AccessCount)
}
