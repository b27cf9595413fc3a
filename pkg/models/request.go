package models

import "fmt"

// AnalysisKind identifies the type of analysis being requested.
type AnalysisKind string

const (
	KindIncident AnalysisKind = "incident"
	KindAudit    AnalysisKind = "audit"
	KindPolicy   AnalysisKind = "policy"
	KindESG      AnalysisKind = "esg"
)

// Kinds lists all supported analysis kinds.
var Kinds = []AnalysisKind{KindIncident, KindAudit, KindPolicy, KindESG}

// Valid reports whether k is a known analysis kind.
func (k AnalysisKind) Valid() bool {
	switch k {
	case KindIncident, KindAudit, KindPolicy, KindESG:
		return true
	}
	return false
}

// Severity is the closed incident severity scale.
type Severity string

const (
	SeverityMinor    Severity = "1 - Minor"
	SeverityModerate Severity = "2 - Moderate"
	SeveritySerious  Severity = "3 - Serious"
	SeveritySevere   Severity = "4 - Severe"
	SeverityCritical Severity = "5 - Critical"
)

// Severities lists all severity levels, lowest first.
var Severities = []Severity{
	SeverityMinor, SeverityModerate, SeveritySerious, SeveritySevere, SeverityCritical,
}

// Valid reports whether s is a known severity level.
func (s Severity) Valid() bool {
	for _, v := range Severities {
		if s == v {
			return true
		}
	}
	return false
}

// IncidentFields holds the inputs for a safety incident analysis.
type IncidentFields struct {
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Location    string   `json:"location"`
	Date        string   `json:"date,omitempty"`
	Time        string   `json:"time,omitempty"`
}

// AuditFields holds the inputs for a compliance audit analysis.
type AuditFields struct {
	Findings string `json:"findings"`
	Standard string `json:"standard"`
	Scope    string `json:"scope,omitempty"`
	Auditor  string `json:"auditor,omitempty"`
}

// PolicyFields holds the inputs for a policy document analysis.
type PolicyFields struct {
	Text      string `json:"text"`
	Framework string `json:"framework,omitempty"`
	Audience  string `json:"audience,omitempty"`
}

// ESGFields holds the inputs for an ESG assessment.
type ESGFields struct {
	Activities string `json:"activities"`
	Industry   string `json:"industry,omitempty"`
	Region     string `json:"region,omitempty"`
	Metrics    string `json:"metrics,omitempty"`
}

// AnalysisRequest is a closed tagged union over the four analysis kinds.
// Exactly the field struct matching Kind is populated; the others are nil.
type AnalysisRequest struct {
	Kind     AnalysisKind    `json:"kind"`
	Incident *IncidentFields `json:"incident,omitempty"`
	Audit    *AuditFields    `json:"audit,omitempty"`
	Policy   *PolicyFields   `json:"policy,omitempty"`
	ESG      *ESGFields      `json:"esg,omitempty"`
}

// NewIncidentRequest builds an incident analysis request.
func NewIncidentRequest(f IncidentFields) AnalysisRequest {
	return AnalysisRequest{Kind: KindIncident, Incident: &f}
}

// NewAuditRequest builds an audit analysis request.
func NewAuditRequest(f AuditFields) AnalysisRequest {
	return AnalysisRequest{Kind: KindAudit, Audit: &f}
}

// NewPolicyRequest builds a policy analysis request.
func NewPolicyRequest(f PolicyFields) AnalysisRequest {
	return AnalysisRequest{Kind: KindPolicy, Policy: &f}
}

// NewESGRequest builds an ESG assessment request.
func NewESGRequest(f ESGFields) AnalysisRequest {
	return AnalysisRequest{Kind: KindESG, ESG: &f}
}

const minDescriptionLen = 10

// Validate checks required fields for the request's kind. It returns a
// *ValidationError naming the first offending field.
func (r AnalysisRequest) Validate() error {
	switch r.Kind {
	case KindIncident:
		if r.Incident == nil {
			return &ValidationError{Field: "incident", Reason: "missing incident fields"}
		}
		if len(r.Incident.Description) < minDescriptionLen {
			return &ValidationError{Field: "description", Reason: fmt.Sprintf("must be at least %d characters", minDescriptionLen)}
		}
		if r.Incident.Location == "" {
			return &ValidationError{Field: "location", Reason: "must not be empty"}
		}
		if r.Incident.Severity != "" && !r.Incident.Severity.Valid() {
			return &ValidationError{Field: "severity", Reason: fmt.Sprintf("unknown severity %q", r.Incident.Severity)}
		}
	case KindAudit:
		if r.Audit == nil {
			return &ValidationError{Field: "audit", Reason: "missing audit fields"}
		}
		if len(r.Audit.Findings) < minDescriptionLen {
			return &ValidationError{Field: "findings", Reason: fmt.Sprintf("must be at least %d characters", minDescriptionLen)}
		}
		if r.Audit.Standard == "" {
			return &ValidationError{Field: "standard", Reason: "must not be empty"}
		}
	case KindPolicy:
		if r.Policy == nil {
			return &ValidationError{Field: "policy", Reason: "missing policy fields"}
		}
		if len(r.Policy.Text) < minDescriptionLen {
			return &ValidationError{Field: "text", Reason: fmt.Sprintf("must be at least %d characters", minDescriptionLen)}
		}
	case KindESG:
		if r.ESG == nil {
			return &ValidationError{Field: "esg", Reason: "missing esg fields"}
		}
		if len(r.ESG.Activities) < minDescriptionLen {
			return &ValidationError{Field: "activities", Reason: fmt.Sprintf("must be at least %d characters", minDescriptionLen)}
		}
	default:
		return &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown analysis kind %q", r.Kind)}
	}
	return nil
}
