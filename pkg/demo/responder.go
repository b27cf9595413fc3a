// Package demo fabricates analysis reports locally, with no network access.
// It backs demo-mode credentials so the full pipeline can be exercised
// before an API key is configured.
package demo

import (
	"fmt"
	"time"

	"github.com/sentinel-hse/sentinel/pkg/models"
	"github.com/sentinel-hse/sentinel/pkg/pricing"
)

// ModelName identifies demo output in results and stored records.
const ModelName = "sentinel-demo"

// Fixed token counts per analysis kind. Demo cost is derived from these via
// the configured price so the cost invariant holds for demo results too.
const (
	incidentTokens = 980
	auditTokens    = 840
	policyTokens   = 760
	esgTokens      = 1100
)

// Respond returns a canned report for the request. Output is deterministic
// for a fixed now: identical inputs produce byte-identical text apart from
// the embedded timestamp.
func Respond(req models.AnalysisRequest, pricePerMillion float64, now time.Time) models.CompletionResult {
	var text string
	var tokens int

	switch req.Kind {
	case models.KindAudit:
		f := req.Audit
		if f == nil {
			f = &models.AuditFields{}
		}
		text = fmt.Sprintf(auditReport, now.Format("2006-01-02 15:04"), orUnspecified(f.Standard), orUnspecified(f.Findings))
		tokens = auditTokens
	case models.KindPolicy:
		f := req.Policy
		if f == nil {
			f = &models.PolicyFields{}
		}
		text = fmt.Sprintf(policyReport, now.Format("2006-01-02 15:04"), orUnspecified(f.Framework), truncate(f.Text, 120))
		tokens = policyTokens
	case models.KindESG:
		f := req.ESG
		if f == nil {
			f = &models.ESGFields{}
		}
		text = fmt.Sprintf(esgReport, now.Format("2006-01-02 15:04"), orUnspecified(f.Industry), orUnspecified(f.Activities))
		tokens = esgTokens
	default:
		f := req.Incident
		if f == nil {
			f = &models.IncidentFields{}
		}
		text = fmt.Sprintf(incidentReport,
			now.Format("2006-01-02 15:04"),
			orUnspecified(f.Description),
			orUnspecified(string(f.Severity)),
			orUnspecified(f.Location),
			orUnspecified(f.Date))
		tokens = incidentTokens
	}

	return models.CompletionResult{
		Success:          true,
		Text:             text,
		Tokens:           tokens,
		PromptTokens:     tokens / 4,
		CompletionTokens: tokens - tokens/4,
		Cost:             pricing.EstimateCost(tokens, pricePerMillion),
		Model:            ModelName,
	}
}

func orUnspecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}

func truncate(s string, n int) string {
	if s == "" {
		return "Not specified"
	}
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
