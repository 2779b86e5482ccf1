package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"lexcite-backend/models"
)

// ErrEncodingFailure indicates an encoder could not represent the record
// collection. It is fatal to the whole export: a partially encoded legal
// document file is worse than no file.
var ErrEncodingFailure = errors.New("export encoding failure")

const (
	exportTypeBatch = "citation-library-batch"
	textRuleWidth   = 70
)

// csvColumns is the externally observable CSV contract; consumers depend on
// exact column names and order
var csvColumns = []string{
	"Title",
	"Citation",
	"Document",
	"Jurisdiction",
	"Authority Level",
	"Verification Status",
	"Notes",
	"Tags",
	"Access Count",
}

// exportHeader describes the export as a whole for the encoders
type exportHeader struct {
	ExportedAt    time.Time
	ExportedBy    string
	CitationStyle models.CitationStyle
}

// batchEnvelope is the top-level JSON export object
type batchEnvelope struct {
	ExportType     string                `json:"exportType"`
	ExportedAt     string                `json:"exportedAt"`
	ExportedBy     string                `json:"exportedBy"`
	TotalCitations int                   `json:"totalCitations"`
	CitationStyle  models.CitationStyle  `json:"citationStyle"`
	Citations      []models.ExportRecord `json:"citations"`
}

// encodeRecords serializes a record collection into the chosen file encoding.
// Record order in the output always equals input order.
func encodeRecords(records []models.ExportRecord, header exportHeader, format models.ExportFormat) (*models.ExportFile, error) {
	switch format {
	case models.FormatJSON:
		return encodeJSON(records, header)
	case models.FormatCSV:
		return encodeCSV(records, header)
	case models.FormatTxt:
		return encodeText(records, header)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrEncodingFailure, format)
	}
}

// exportFilename builds the shared filename convention:
// citation-library-batch-<YYYY-MM-DD>.<ext>
func exportFilename(exportedAt time.Time, ext string) string {
	return fmt.Sprintf("%s-%s.%s", exportTypeBatch, exportedAt.Format("2006-01-02"), ext)
}

func encodeJSON(records []models.ExportRecord, header exportHeader) (*models.ExportFile, error) {
	envelope := batchEnvelope{
		ExportType:     exportTypeBatch,
		ExportedAt:     header.ExportedAt.Format(time.RFC3339),
		ExportedBy:     header.ExportedBy,
		TotalCitations: len(records),
		CitationStyle:  header.CitationStyle,
		Citations:      records,
	}
	if envelope.Citations == nil {
		envelope.Citations = []models.ExportRecord{}
	}

	content, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodingFailure, err)
	}
	content = append(content, '\n')

	return &models.ExportFile{
		Content:  content,
		Filename: exportFilename(header.ExportedAt, "json"),
		MimeType: "application/json",
	}, nil
}

// quoteCSV quotes one CSV cell, doubling embedded quotes. Every cell is
// quoted, including empty ones; encoding/csv only quotes when required, so
// the writer is assembled by hand.
func quoteCSV(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func encodeCSV(records []models.ExportRecord, header exportHeader) (*models.ExportFile, error) {
	var b strings.Builder

	cells := make([]string, len(csvColumns))
	for i, col := range csvColumns {
		cells[i] = quoteCSV(col)
	}
	b.WriteString(strings.Join(cells, ","))
	b.WriteString("\n")

	for _, record := range records {
		row := []string{
			record.Metadata.SectionReference,
			record.Citation,
			record.Metadata.DocumentTitle,
			record.Metadata.Jurisdiction,
			string(record.Metadata.AuthorityLevel),
			string(record.Metadata.VerificationStatus),
			record.UserNotes,
			strings.Join(record.Tags, "; "),
			fmt.Sprintf("%d", record.AccessCount),
		}
		for i, cell := range row {
			row[i] = quoteCSV(cell)
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}

	content := b.String()
	if !utf8.ValidString(content) {
		return nil, fmt.Errorf("%w: record collection contains invalid UTF-8", ErrEncodingFailure)
	}

	return &models.ExportFile{
		Content:  []byte(content),
		Filename: exportFilename(header.ExportedAt, "csv"),
		MimeType: "text/csv",
	}, nil
}

func encodeText(records []models.ExportRecord, header exportHeader) (*models.ExportFile, error) {
	rule := strings.Repeat("=", textRuleWidth)
	divider := strings.Repeat("-", textRuleWidth)

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("CITATION LIBRARY EXPORT\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Exported:        %s\n", header.ExportedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Exported by:     %s\n", header.ExportedBy)
	fmt.Fprintf(&b, "Citation style:  %s\n", header.CitationStyle)
	fmt.Fprintf(&b, "Total citations: %d\n", len(records))
	b.WriteString(rule + "\n")

	for i, record := range records {
		b.WriteString("\n")
		fmt.Fprintf(&b, "[%d] %s\n", i+1, record.Metadata.SectionReference)
		fmt.Fprintf(&b, "Citation:            %s\n", record.Citation)
		fmt.Fprintf(&b, "Document:            %s\n", record.Metadata.DocumentTitle)
		fmt.Fprintf(&b, "Jurisdiction:        %s\n", record.Metadata.Jurisdiction)
		if record.Metadata.AuthorityLevel != "" {
			fmt.Fprintf(&b, "Authority level:     %s\n", record.Metadata.AuthorityLevel)
		}
		if record.Metadata.VerificationStatus != "" {
			fmt.Fprintf(&b, "Verification status: %s\n", record.Metadata.VerificationStatus)
		}
		if record.UserNotes != "" {
			fmt.Fprintf(&b, "Notes:               %s\n", record.UserNotes)
		}
		if len(record.Tags) > 0 {
			fmt.Fprintf(&b, "Tags:                %s\n", strings.Join(record.Tags, "; "))
		}
		fmt.Fprintf(&b, "Access count:        %d\n", record.AccessCount)
		if record.FullText != nil {
			b.WriteString("Full text:\n")
			b.WriteString(*record.FullText)
			if !strings.HasSuffix(*record.FullText, "\n") {
				b.WriteString("\n")
			}
		}
		b.WriteString(divider + "\n")
	}

	content := b.String()
	if !utf8.ValidString(content) {
		return nil, fmt.Errorf("%w: record collection contains invalid UTF-8", ErrEncodingFailure)
	}

	return &models.ExportFile{
		Content:  []byte(content),
		Filename: exportFilename(header.ExportedAt, "txt"),
		MimeType: "text/plain",
	}, nil
}
