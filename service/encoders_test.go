package service

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"lexcite-backend/models"

	"github.com/stretchr/testify/require"
)

func testHeader() exportHeader {
	return exportHeader{
		ExportedAt:    time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		ExportedBy:    "3f6e2a90-0d5c-4f5e-b1c1-000000000001",
		CitationStyle: models.StyleBluebook,
	}
}

func testRecord(reference, citation string) models.ExportRecord {
	return models.ExportRecord{
		Citation: citation,
		Metadata: models.RecordMetadata{
			SectionReference:   reference,
			DocumentTitle:      "Environmental Conservation Act",
			Jurisdiction:       "United States",
			AuthorityLevel:     models.AuthorityFederal,
			VerificationStatus: models.VerificationVerified,
		},
		UserNotes:   "key holding for count II",
		Tags:        []string{"environment", "permits"},
		Collections: []string{"brief-2026"},
		AccessCount: 4,
	}
}

func TestEncodeRecords_UnknownFormat(t *testing.T) {
	_, err := encodeRecords(nil, testHeader(), models.ExportFormat("pdf"))
	require.ErrorIs(t, err, ErrEncodingFailure)
}

func TestEncodeJSON_Envelope(t *testing.T) {
	records := []models.ExportRecord{
		testRecord("§ 7401 Congressional findings", "first citation"),
		testRecord("§ 7402 Definitions", "second citation"),
	}

	file, err := encodeRecords(records, testHeader(), models.FormatJSON)
	require.NoError(t, err)
	require.Equal(t, "citation-library-batch-2026-03-01.json", file.Filename)
	require.Equal(t, "application/json", file.MimeType)

	var envelope struct {
		ExportType     string                `json:"exportType"`
		ExportedAt     string                `json:"exportedAt"`
		ExportedBy     string                `json:"exportedBy"`
		TotalCitations int                   `json:"totalCitations"`
		CitationStyle  string                `json:"citationStyle"`
		Citations      []models.ExportRecord `json:"citations"`
	}
	require.NoError(t, json.Unmarshal(file.Content, &envelope))

	require.Equal(t, "citation-library-batch", envelope.ExportType)
	require.Equal(t, "2026-03-01T10:30:00Z", envelope.ExportedAt)
	require.Equal(t, "3f6e2a90-0d5c-4f5e-b1c1-000000000001", envelope.ExportedBy)
	require.Equal(t, 2, envelope.TotalCitations)
	require.Equal(t, "bluebook", envelope.CitationStyle)
	require.Len(t, envelope.Citations, 2)

	// Output order equals input order
	require.Equal(t, "first citation", envelope.Citations[0].Citation)
	require.Equal(t, "second citation", envelope.Citations[1].Citation)
}

func TestEncodeJSON_EmptyCollection(t *testing.T) {
	file, err := encodeRecords(nil, testHeader(), models.FormatJSON)
	require.NoError(t, err)
	require.Contains(t, string(file.Content), `"citations": []`)
	require.NotContains(t, string(file.Content), "null")
}

func TestEncodeCSV_HeaderAndRows(t *testing.T) {
	records := []models.ExportRecord{
		testRecord("§ 7401 Congressional findings", "first citation"),
		testRecord("§ 7402 Definitions", "second citation"),
	}

	file, err := encodeRecords(records, testHeader(), models.FormatCSV)
	require.NoError(t, err)
	require.Equal(t, "citation-library-batch-2026-03-01.csv", file.Filename)
	require.Equal(t, "text/csv", file.MimeType)

	lines := strings.Split(strings.TrimRight(string(file.Content), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t,
		`"Title","Citation","Document","Jurisdiction","Authority Level","Verification Status","Notes","Tags","Access Count"`,
		lines[0])
	require.Equal(t,
		`"§ 7401 Congressional findings","first citation","Environmental Conservation Act","United States","federal","verified","key holding for count II","environment; permits","4"`,
		lines[1])
}

func TestEncodeCSV_QuotesEveryCell(t *testing.T) {
	record := testRecord("§ 1-101", "cite")
	record.UserNotes = ""
	record.Tags = nil
	record.Metadata.VerificationStatus = ""

	file, err := encodeRecords([]models.ExportRecord{record}, testHeader(), models.FormatCSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(file.Content), "\n"), "\n")
	require.Len(t, lines, 2)
	// Empty cells are still quoted
	require.Equal(t,
		`"§ 1-101","cite","Environmental Conservation Act","United States","federal","","","","4"`,
		lines[1])
}

func TestEncodeCSV_EscapesEmbeddedQuotes(t *testing.T) {
	record := testRecord("§ 1-101", `the "clean hands" doctrine`)

	file, err := encodeRecords([]models.ExportRecord{record}, testHeader(), models.FormatCSV)
	require.NoError(t, err)
	require.Contains(t, string(file.Content), `"the ""clean hands"" doctrine"`)
}

func TestEncodeText_Layout(t *testing.T) {
	fullText := "No person shall discharge any pollutant without a permit."
	record := testRecord("§ 7401 Congressional findings", "first citation")
	record.FullText = &fullText

	file, err := encodeRecords([]models.ExportRecord{record}, testHeader(), models.FormatTxt)
	require.NoError(t, err)
	require.Equal(t, "citation-library-batch-2026-03-01.txt", file.Filename)
	require.Equal(t, "text/plain", file.MimeType)

	content := string(file.Content)
	require.Contains(t, content, "CITATION LIBRARY EXPORT")
	require.Contains(t, content, "Exported:        2026-03-01T10:30:00Z")
	require.Contains(t, content, "Citation style:  bluebook")
	require.Contains(t, content, "Total citations: 1")
	require.Contains(t, content, "[1] § 7401 Congressional findings")
	require.Contains(t, content, "Citation:            first citation")
	require.Contains(t, content, "Authority level:     federal")
	require.Contains(t, content, "Tags:                environment; permits")
	require.Contains(t, content, "Full text:\n"+fullText+"\n")
}

func TestEncodeText_OmitsEmptyOptionalLines(t *testing.T) {
	record := testRecord("§ 1-101", "cite")
	record.UserNotes = ""
	record.Tags = nil
	record.Metadata.AuthorityLevel = ""
	record.Metadata.VerificationStatus = ""

	file, err := encodeRecords([]models.ExportRecord{record}, testHeader(), models.FormatTxt)
	require.NoError(t, err)

	content := string(file.Content)
	require.NotContains(t, content, "Notes:")
	require.NotContains(t, content, "Tags:")
	require.NotContains(t, content, "Authority level:")
	require.NotContains(t, content, "Full text:")
	require.Contains(t, content, "Access count:        4")
}

func TestEncodeText_DeterministicForIdenticalInput(t *testing.T) {
	records := []models.ExportRecord{testRecord("§ 1-101", "cite")}
	first, err := encodeRecords(records, testHeader(), models.FormatTxt)
	require.NoError(t, err)
	second, err := encodeRecords(records, testHeader(), models.FormatTxt)
	require.NoError(t, err)
	require.Equal(t, first.Content, second.Content)
}
