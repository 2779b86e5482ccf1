package service

import (
	"testing"
	"time"

	"lexcite-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func fullMetadata() models.CitationMetadata {
	text := "No person shall discharge any pollutant without a permit."
	lastVerified := time.Date(2026, 2, 15, 9, 0, 0, 0, time.UTC)
	return models.CitationMetadata{
		Section: &models.Section{
			ID:         uuid.New(),
			Identifier: "7401",
			Heading:    strPtr("Congressional findings"),
			Article:    strPtr("IV"),
			Subsection: strPtr("a"),
			Text:       &text,
		},
		Document: &models.Document{
			ID:                 uuid.New(),
			Title:              "Environmental Conservation Act",
			DocType:            models.DocTypeStatute,
			AuthorityLevel:     models.AuthorityFederal,
			ReporterVolume:     intPtr(42),
			ReporterName:       strPtr("U.S.C."),
			ReporterPage:       intPtr(113),
			Year:               intPtr(1970),
			VerificationStatus: models.VerificationVerified,
			LastVerified:       &lastVerified,
		},
		Jurisdiction: &models.Jurisdiction{
			ID:             uuid.New(),
			Name:           "United States",
			Code:           "US",
			AuthorityLevel: models.AuthorityFederal,
		},
		RetrievalDate:      "March 1, 2026",
		ExportDate:         "2026-03-01T10:00:00Z",
		VerificationStatus: models.VerificationVerified,
		SourceURL:          "https://law.example.gov/usc/42/7401",
	}
}

func TestFormatCitation_Bluebook(t *testing.T) {
	got, err := FormatCitation(fullMetadata(), models.StyleBluebook)
	require.NoError(t, err)
	require.Equal(t,
		"Environmental Conservation Act, 42 U.S.C. 113, art. IV, § 7401(a) (United States 1970) (accessed March 1, 2026)",
		got)
}

func TestFormatCitation_AllStylesRenderIdentity(t *testing.T) {
	meta := fullMetadata()
	for _, style := range models.CitationStyles {
		got, err := FormatCitation(meta, style)
		require.NoError(t, err, "style %s", style)
		require.NotEmpty(t, got, "style %s", style)
		require.Contains(t, got, "Environmental Conservation Act", "style %s", style)
		require.Contains(t, got, "United States", "style %s", style)
		require.Contains(t, got, "7401", "style %s", style)
	}
}

func TestFormatCitation_StylesDiffer(t *testing.T) {
	meta := fullMetadata()
	bluebook, err := FormatCitation(meta, models.StyleBluebook)
	require.NoError(t, err)
	apa, err := FormatCitation(meta, models.StyleAPA)
	require.NoError(t, err)
	require.NotEqual(t, bluebook, apa)
}

func TestFormatCitation_UnknownStyleFallsBackToPlain(t *testing.T) {
	meta := fullMetadata()
	plain, err := FormatCitation(meta, models.StylePlain)
	require.NoError(t, err)

	got, err := FormatCitation(meta, models.CitationStyle("harvard"))
	require.NoError(t, err)
	require.Equal(t, plain, got)
}

func TestFormatCitation_MissingOptionalFields(t *testing.T) {
	meta := fullMetadata()
	meta.Section.Article = nil
	meta.Section.Subsection = nil
	meta.Document.ReporterVolume = nil
	meta.Document.ReporterName = nil
	meta.Document.ReporterPage = nil
	meta.Document.Year = nil

	got, err := FormatCitation(meta, models.StyleBluebook)
	require.NoError(t, err)
	require.Equal(t,
		"Environmental Conservation Act, § 7401 (United States) (accessed March 1, 2026)",
		got)
}

func TestFormatCitation_MissingJurisdiction(t *testing.T) {
	meta := fullMetadata()
	meta.Jurisdiction = nil

	got, err := FormatCitation(meta, models.StyleChicago)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	require.Contains(t, got, "Environmental Conservation Act")
}

func TestFormatCitation_MissingDocumentIdentity(t *testing.T) {
	meta := fullMetadata()
	meta.Document = nil
	_, err := FormatCitation(meta, models.StyleBluebook)
	require.ErrorIs(t, err, ErrInvalidMetadata)

	meta = fullMetadata()
	meta.Document.ID = uuid.Nil
	_, err = FormatCitation(meta, models.StyleBluebook)
	require.ErrorIs(t, err, ErrInvalidMetadata)
}

func TestFormatCitation_MissingSectionIdentity(t *testing.T) {
	meta := fullMetadata()
	meta.Section = nil
	_, err := FormatCitation(meta, models.StylePlain)
	require.ErrorIs(t, err, ErrInvalidMetadata)
}

func TestFormatCitation_CourtFilingIncludesProvenance(t *testing.T) {
	got, err := FormatCitation(fullMetadata(), models.StyleCourtFiling)
	require.NoError(t, err)
	require.Contains(t, got, "VERIFIED")
	require.Contains(t, got, "retrieved March 1, 2026 from https://law.example.gov/usc/42/7401")
}

func TestFormatCitation_Deterministic(t *testing.T) {
	meta := fullMetadata()
	first, err := FormatCitation(meta, models.StyleALWD)
	require.NoError(t, err)
	second, err := FormatCitation(meta, models.StyleALWD)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
