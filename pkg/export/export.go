// Package export renders a completed report in one of the supported
// download formats. Every format is a direct serialization of the archived
// report: the result text, the originating request fields, and the
// generation timestamp.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sentinel-hse/sentinel/pkg/models"
)

// Format names a supported export rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
)

// Formats lists all supported export formats.
var Formats = []Format{FormatText, FormatMarkdown, FormatJSON, FormatCSV}

// ContentType returns the MIME type for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Parse maps a format name to a Format.
func Parse(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatText:
		return FormatText, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown export format %q", name)
}

// Render serializes the report in the given format.
func Render(f Format, rep models.ArchivedReport) ([]byte, error) {
	switch f {
	case FormatText:
		return renderText(rep), nil
	case FormatMarkdown:
		return renderMarkdown(rep), nil
	case FormatJSON:
		return json.MarshalIndent(rep, "", "  ")
	case FormatCSV:
		return renderCSV(rep)
	}
	return nil, fmt.Errorf("unknown export format %q", f)
}

func renderText(rep models.ArchivedReport) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "COMPLIANCE SENTINEL REPORT\n")
	fmt.Fprintf(&b, "Report ID: %s\n", rep.ID)
	fmt.Fprintf(&b, "Analysis type: %s\n", rep.Kind)
	fmt.Fprintf(&b, "Generated: %s\n", rep.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Model: %s\n", rep.Model)
	fmt.Fprintf(&b, "Tokens used: %d\n", rep.Tokens)
	fmt.Fprintf(&b, "Estimated cost: $%.4f\n", rep.Cost)
	b.WriteString(strings.Repeat("-", 60) + "\n\n")
	for field, value := range requestFields(rep.Request) {
		fmt.Fprintf(&b, "%s: %s\n", field, value)
	}
	b.WriteString("\n" + strings.Repeat("-", 60) + "\n\n")
	b.WriteString(rep.Text)
	b.WriteString("\n")
	return []byte(b.String())
}

func renderMarkdown(rep models.ArchivedReport) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# Compliance Sentinel Report\n\n")
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Report ID | %s |\n", rep.ID)
	fmt.Fprintf(&b, "| Analysis type | %s |\n", rep.Kind)
	fmt.Fprintf(&b, "| Generated | %s |\n", rep.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "| Model | %s |\n", rep.Model)
	fmt.Fprintf(&b, "| Tokens used | %d |\n", rep.Tokens)
	fmt.Fprintf(&b, "| Estimated cost | $%.4f |\n\n", rep.Cost)
	fmt.Fprintf(&b, "## Submitted details\n\n")
	for field, value := range requestFields(rep.Request) {
		fmt.Fprintf(&b, "- **%s**: %s\n", field, value)
	}
	fmt.Fprintf(&b, "\n## Analysis\n\n%s\n", rep.Text)
	return []byte(b.String())
}

func renderCSV(rep models.ArchivedReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"report_id", "kind", "created_at", "model", "tokens_used", "cost_estimate"}
	row := []string{
		rep.ID,
		string(rep.Kind),
		rep.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		rep.Model,
		fmt.Sprintf("%d", rep.Tokens),
		fmt.Sprintf("%.6f", rep.Cost),
	}
	for field, value := range requestFields(rep.Request) {
		header = append(header, field)
		row = append(row, value)
	}
	header = append(header, "report_text")
	row = append(row, rep.Text)

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	if err := w.Write(row); err != nil {
		return nil, fmt.Errorf("write csv row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// fieldPair keeps request fields in a stable render order.
type fieldPair struct {
	name  string
	value string
}

func requestFields(req models.AnalysisRequest) func(yield func(string, string) bool) {
	var pairs []fieldPair
	switch req.Kind {
	case models.KindIncident:
		if f := req.Incident; f != nil {
			pairs = []fieldPair{
				{"description", f.Description},
				{"severity", string(f.Severity)},
				{"location", f.Location},
				{"date", f.Date},
				{"time", f.Time},
			}
		}
	case models.KindAudit:
		if f := req.Audit; f != nil {
			pairs = []fieldPair{
				{"findings", f.Findings},
				{"standard", f.Standard},
				{"scope", f.Scope},
				{"auditor", f.Auditor},
			}
		}
	case models.KindPolicy:
		if f := req.Policy; f != nil {
			pairs = []fieldPair{
				{"text", f.Text},
				{"framework", f.Framework},
				{"audience", f.Audience},
			}
		}
	case models.KindESG:
		if f := req.ESG; f != nil {
			pairs = []fieldPair{
				{"activities", f.Activities},
				{"industry", f.Industry},
				{"region", f.Region},
				{"metrics", f.Metrics},
			}
		}
	}
	return func(yield func(string, string) bool) {
		for _, p := range pairs {
			if !yield(p.name, p.value) {
				return
			}
		}
	}
}
