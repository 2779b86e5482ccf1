package service

import (
	"errors"
	"fmt"
	"strings"

	"lexcite-backend/models"

	"github.com/google/uuid"
)

// ErrInvalidMetadata indicates a required identity field (document id or
// section id) was missing at format time. It is never silently substituted.
var ErrInvalidMetadata = errors.New("invalid citation metadata")

// styleFunc renders one citation for one style. Implementations degrade
// gracefully: a missing optional field drops its fragment, never fails.
type styleFunc func(models.CitationMetadata) string

// styleTable dispatches on the style tag. Adding a style means adding one
// entry here; styles share no state.
var styleTable = map[models.CitationStyle]styleFunc{
	models.StyleBluebook:    formatBluebook,
	models.StyleALWD:        formatALWD,
	models.StyleAPA:         formatAPA,
	models.StyleMLA:         formatMLA,
	models.StyleChicago:     formatChicago,
	models.StylePlain:       formatPlain,
	models.StyleCourtFiling: formatCourtFiling,
}

// FormatCitation renders a single citation string in the chosen style from
// structured document metadata. Pure and deterministic for identical input.
// An unrecognized style renders via the plain rules.
func FormatCitation(meta models.CitationMetadata, style models.CitationStyle) (string, error) {
	if meta.Document == nil || meta.Document.ID == uuid.Nil {
		return "", fmt.Errorf("%w: missing document identity", ErrInvalidMetadata)
	}
	if meta.Section == nil || meta.Section.ID == uuid.Nil {
		return "", fmt.Errorf("%w: missing section identity", ErrInvalidMetadata)
	}

	render, ok := styleTable[style]
	if !ok {
		render = formatPlain
	}
	return render(meta), nil
}

// pinpoint renders the subdivision fragment for legal-filing-grade styles,
// e.g. "art. IV, § 1(a)"
func pinpoint(s *models.Section) string {
	var parts []string
	if s.Article != nil && *s.Article != "" {
		parts = append(parts, "art. "+*s.Article)
	}
	frag := "§ " + s.Identifier
	if s.Subsection != nil && *s.Subsection != "" {
		frag += "(" + *s.Subsection + ")"
	}
	parts = append(parts, frag)
	return strings.Join(parts, ", ")
}

// reporterFragment renders the "42 U.S.C. 113"-style volume fragment, or
// an empty string when the document carries no reporter
func reporterFragment(d *models.Document) string {
	if d.ReporterVolume == nil || d.ReporterName == nil || *d.ReporterName == "" {
		return ""
	}
	frag := fmt.Sprintf("%d %s", *d.ReporterVolume, *d.ReporterName)
	if d.ReporterPage != nil {
		frag += fmt.Sprintf(" %d", *d.ReporterPage)
	}
	return frag
}

func jurisdictionName(m models.CitationMetadata) string {
	if m.Jurisdiction == nil {
		return ""
	}
	return m.Jurisdiction.Name
}

func formatBluebook(m models.CitationMetadata) string {
	var b strings.Builder
	b.WriteString(m.Document.Title)
	if rep := reporterFragment(m.Document); rep != "" {
		b.WriteString(", " + rep)
	}
	b.WriteString(", " + pinpoint(m.Section))

	paren := jurisdictionName(m)
	if m.Document.Year != nil {
		if paren != "" {
			paren += " "
		}
		paren += fmt.Sprintf("%d", *m.Document.Year)
	}
	if paren != "" {
		b.WriteString(" (" + paren + ")")
	}
	if m.RetrievalDate != "" {
		b.WriteString(" (accessed " + m.RetrievalDate + ")")
	}
	return b.String()
}

func formatALWD(m models.CitationMetadata) string {
	var b strings.Builder
	b.WriteString(m.Document.Title + " " + pinpoint(m.Section))
	if rep := reporterFragment(m.Document); rep != "" {
		b.WriteString(", " + rep)
	}
	paren := jurisdictionName(m)
	if m.Document.Year != nil {
		if paren != "" {
			paren += " "
		}
		paren += fmt.Sprintf("%d", *m.Document.Year)
	}
	if paren != "" {
		b.WriteString(" (" + paren + ")")
	}
	if m.RetrievalDate != "" {
		b.WriteString(" (accessed " + m.RetrievalDate + ")")
	}
	b.WriteString(".")
	return b.String()
}

func formatAPA(m models.CitationMetadata) string {
	var b strings.Builder
	if name := jurisdictionName(m); name != "" {
		b.WriteString(name + ". ")
	}
	if m.Document.Year != nil {
		b.WriteString(fmt.Sprintf("(%d). ", *m.Document.Year))
	}
	b.WriteString(m.Document.Title + ", § " + m.Section.Identifier + ".")
	if m.RetrievalDate != "" {
		b.WriteString(" Retrieved " + m.RetrievalDate)
		if m.SourceURL != "" {
			b.WriteString(", from " + m.SourceURL)
		}
	}
	return b.String()
}

func formatMLA(m models.CitationMetadata) string {
	var b strings.Builder
	b.WriteString("\"" + m.Document.Title + ".\"")
	if name := jurisdictionName(m); name != "" {
		b.WriteString(" " + name + ",")
	}
	b.WriteString(" sec. " + m.Section.Identifier + ".")
	if m.RetrievalDate != "" {
		b.WriteString(" Accessed " + m.RetrievalDate + ".")
	}
	return b.String()
}

func formatChicago(m models.CitationMetadata) string {
	var b strings.Builder
	if name := jurisdictionName(m); name != "" {
		b.WriteString(name + ", ")
	}
	b.WriteString(m.Document.Title + ", sec. " + m.Section.Identifier)
	if m.RetrievalDate != "" {
		b.WriteString(" (accessed " + m.RetrievalDate + ")")
	}
	b.WriteString(".")
	return b.String()
}

// formatPlain omits style-specific punctuation; it is also the fallback
// when no other style applies
func formatPlain(m models.CitationMetadata) string {
	parts := []string{m.Document.Title, "Section " + m.Section.Identifier}
	if m.Section.Subsection != nil && *m.Section.Subsection != "" {
		parts[1] += "(" + *m.Section.Subsection + ")"
	}
	if name := jurisdictionName(m); name != "" {
		parts = append(parts, name)
	}
	if m.RetrievalDate != "" {
		parts = append(parts, "accessed "+m.RetrievalDate)
	}
	return strings.Join(parts, ", ")
}

func formatCourtFiling(m models.CitationMetadata) string {
	var b strings.Builder
	b.WriteString(m.Document.Title + ", " + pinpoint(m.Section))
	if rep := reporterFragment(m.Document); rep != "" {
		b.WriteString(", " + rep)
	}
	if name := jurisdictionName(m); name != "" {
		b.WriteString(", " + name)
	}

	var prov []string
	if m.VerificationStatus != "" {
		prov = append(prov, strings.ToUpper(string(m.VerificationStatus)))
	}
	if m.RetrievalDate != "" {
		frag := "retrieved " + m.RetrievalDate
		if m.SourceURL != "" {
			frag += " from " + m.SourceURL
		}
		prov = append(prov, frag)
	}
	if len(prov) > 0 {
		b.WriteString(" (" + strings.Join(prov, "; ") + ")")
	}
	return b.String()
}
