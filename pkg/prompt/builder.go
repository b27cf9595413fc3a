// Package prompt composes the fixed system and user prompts for each
// analysis kind. Building is purely textual: it never fails, and empty
// fields fall back to the literal "N/A".
package prompt

import (
	"fmt"

	"github.com/sentinel-hse/sentinel/pkg/models"
)

// notSupplied is interpolated in place of every omitted field.
const notSupplied = "N/A"

// Build returns the system and user prompt for the request. The request's
// kind selects a fixed template pair; supplied field values appear verbatim
// in the user prompt.
func Build(req models.AnalysisRequest) (system, user string) {
	switch req.Kind {
	case models.KindAudit:
		f := req.Audit
		if f == nil {
			f = &models.AuditFields{}
		}
		return auditSystemPrompt, fmt.Sprintf(auditUserPrompt,
			orNA(f.Findings), orNA(f.Standard), orNA(f.Scope), orNA(f.Auditor))
	case models.KindPolicy:
		f := req.Policy
		if f == nil {
			f = &models.PolicyFields{}
		}
		return policySystemPrompt, fmt.Sprintf(policyUserPrompt,
			orNA(f.Text), orNA(f.Framework), orNA(f.Audience))
	case models.KindESG:
		f := req.ESG
		if f == nil {
			f = &models.ESGFields{}
		}
		return esgSystemPrompt, fmt.Sprintf(esgUserPrompt,
			orNA(f.Activities), orNA(f.Industry), orNA(f.Region), orNA(f.Metrics))
	default:
		// Incident is also the fallback for an unset kind: the template
		// degrades to all-N/A rather than failing.
		f := req.Incident
		if f == nil {
			f = &models.IncidentFields{}
		}
		return incidentSystemPrompt, fmt.Sprintf(incidentUserPrompt,
			orNA(f.Description), orNA(string(f.Severity)), orNA(f.Location),
			orNA(f.Date), orNA(f.Time))
	}
}

func orNA(s string) string {
	if s == "" {
		return notSupplied
	}
	return s
}
