// Package wizard drives the linear field-collection flow for one report:
// CollectingFields -> Confirming -> AwaitingCompletion -> ReportReady or
// Failed. Terminal states loop back to CollectingFields on the next request.
// All state lives in an explicit Session; abandoning a session mid-flow
// simply discards it.
package wizard

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sentinel-hse/sentinel/pkg/models"
	"github.com/sentinel-hse/sentinel/pkg/prompt"
)

// State names a position in the collection flow.
type State string

const (
	StateCollectingFields   State = "collecting_fields"
	StateConfirming         State = "confirming"
	StateAwaitingCompletion State = "awaiting_completion"
	StateReportReady        State = "report_ready"
	StateFailed             State = "failed"
)

// Completer runs one completion exchange. Satisfied by *completion.Client.
type Completer interface {
	Complete(ctx context.Context, req models.AnalysisRequest, system, user string) models.CompletionResult
}

// step is one field prompt in a kind's collection sequence.
type step struct {
	name     string
	text     string
	choices  []string
	optional bool
	assign   func(*models.AnalysisRequest, string)
}

func incidentSteps() []step {
	return []step{
		{
			name: "description",
			text: "Describe what happened in detail (what, who, immediate circumstances):",
			assign: func(r *models.AnalysisRequest, v string) { r.Incident.Description = v },
		},
		{
			name:    "severity",
			text:    "Select the incident severity level:",
			choices: severityChoices(),
			assign:  func(r *models.AnalysisRequest, v string) { r.Incident.Severity = models.Severity(v) },
		},
		{
			name: "location",
			text: "Specify the location (facility, department, specific area):",
			assign: func(r *models.AnalysisRequest, v string) { r.Incident.Location = v },
		},
		{
			name:     "date",
			text:     "Incident date (YYYY-MM-DD, blank for unspecified):",
			optional: true,
			assign:   func(r *models.AnalysisRequest, v string) { r.Incident.Date = v },
		},
	}
}

func auditSteps() []step {
	return []step{
		{
			name: "findings",
			text: "Summarize the audit findings:",
			assign: func(r *models.AnalysisRequest, v string) { r.Audit.Findings = v },
		},
		{
			name: "standard",
			text: "Which standard applies (e.g. ISO 45001:2018)?",
			assign: func(r *models.AnalysisRequest, v string) { r.Audit.Standard = v },
		},
		{
			name:     "scope",
			text:     "Audit scope (blank for unspecified):",
			optional: true,
			assign:   func(r *models.AnalysisRequest, v string) { r.Audit.Scope = v },
		},
	}
}

func policySteps() []step {
	return []step{
		{
			name: "text",
			text: "Paste the policy text to analyze:",
			assign: func(r *models.AnalysisRequest, v string) { r.Policy.Text = v },
		},
		{
			name:     "framework",
			text:     "Regulatory framework (blank for unspecified):",
			optional: true,
			assign:   func(r *models.AnalysisRequest, v string) { r.Policy.Framework = v },
		},
	}
}

func esgSteps() []step {
	return []step{
		{
			name: "activities",
			text: "Describe the activities to assess:",
			assign: func(r *models.AnalysisRequest, v string) { r.ESG.Activities = v },
		},
		{
			name:     "industry",
			text:     "Industry (blank for unspecified):",
			optional: true,
			assign:   func(r *models.AnalysisRequest, v string) { r.ESG.Industry = v },
		},
		{
			name:     "metrics",
			text:     "Any metrics to include (blank for none):",
			optional: true,
			assign:   func(r *models.AnalysisRequest, v string) { r.ESG.Metrics = v },
		},
	}
}

func severityChoices() []string {
	choices := make([]string, len(models.Severities))
	for i, s := range models.Severities {
		choices[i] = string(s)
	}
	return choices
}

// Session is the explicit per-interaction state for one report.
type Session struct {
	id     string
	state  State
	req    models.AnalysisRequest
	steps  []step
	pos    int
	result *models.CompletionResult
}

// NewSession starts a collection flow for the given analysis kind.
func NewSession(kind models.AnalysisKind) (*Session, error) {
	s := &Session{id: uuid.NewString()}
	if err := s.begin(kind); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) begin(kind models.AnalysisKind) error {
	switch kind {
	case models.KindIncident:
		s.req = models.NewIncidentRequest(models.IncidentFields{})
		s.steps = incidentSteps()
	case models.KindAudit:
		s.req = models.NewAuditRequest(models.AuditFields{})
		s.steps = auditSteps()
	case models.KindPolicy:
		s.req = models.NewPolicyRequest(models.PolicyFields{})
		s.steps = policySteps()
	case models.KindESG:
		s.req = models.NewESGRequest(models.ESGFields{})
		s.steps = esgSteps()
	default:
		return &models.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown analysis kind %q", kind)}
	}
	s.state = StateCollectingFields
	s.pos = 0
	s.result = nil
	return nil
}

// ID returns the session's identifier.
func (s *Session) ID() string { return s.id }

// State returns the session's current state.
func (s *Session) State() State { return s.state }

// Kind returns the analysis kind being collected.
func (s *Session) Kind() models.AnalysisKind { return s.req.Kind }

// Request returns the request as collected so far.
func (s *Session) Request() models.AnalysisRequest { return s.req }

// Result returns the completion result once the session reached a terminal
// state, or nil before then.
func (s *Session) Result() *models.CompletionResult { return s.result }

// CurrentStep returns the name, prompt text, and choice list of the field
// being collected. Choices are empty for free-text fields.
func (s *Session) CurrentStep() (name, text string, choices []string, err error) {
	if s.state != StateCollectingFields {
		return "", "", nil, fmt.Errorf("no field being collected in state %s", s.state)
	}
	st := s.steps[s.pos]
	return st.name, st.text, st.choices, nil
}

// Submit records input for the current field and advances. Choice fields
// reject values outside their list; optional fields accept blank input. When
// the last field is recorded the session moves to Confirming.
func (s *Session) Submit(input string) error {
	if s.state != StateCollectingFields {
		return fmt.Errorf("cannot submit field in state %s", s.state)
	}
	st := s.steps[s.pos]
	input = strings.TrimSpace(input)

	if input == "" && !st.optional {
		return &models.ValidationError{Field: st.name, Reason: "must not be empty"}
	}
	if len(st.choices) > 0 && input != "" {
		ok := false
		for _, c := range st.choices {
			if input == c {
				ok = true
				break
			}
		}
		if !ok {
			return &models.ValidationError{Field: st.name, Reason: fmt.Sprintf("must be one of %v", st.choices)}
		}
	}

	st.assign(&s.req, input)
	s.pos++
	if s.pos >= len(s.steps) {
		s.state = StateConfirming
	}
	return nil
}

// Summary renders the collected fields for the confirmation step.
func (s *Session) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis type: %s\n", s.req.Kind)
	switch s.req.Kind {
	case models.KindIncident:
		f := s.req.Incident
		fmt.Fprintf(&b, "Description: %s\nSeverity: %s\nLocation: %s\n", clip(f.Description), f.Severity, f.Location)
	case models.KindAudit:
		f := s.req.Audit
		fmt.Fprintf(&b, "Findings: %s\nStandard: %s\n", clip(f.Findings), f.Standard)
	case models.KindPolicy:
		f := s.req.Policy
		fmt.Fprintf(&b, "Policy text: %s\nFramework: %s\n", clip(f.Text), f.Framework)
	case models.KindESG:
		f := s.req.ESG
		fmt.Fprintf(&b, "Activities: %s\nIndustry: %s\n", clip(f.Activities), f.Industry)
	}
	return b.String()
}

func clip(s string) string {
	if len(s) > 100 {
		return s[:100] + "..."
	}
	return s
}

// Confirm validates the collected request and runs the completion. A
// validation failure moves the session to Failed without any completion
// call. Otherwise the session passes through AwaitingCompletion and lands in
// ReportReady or Failed according to the result.
func (s *Session) Confirm(ctx context.Context, c Completer) (models.CompletionResult, error) {
	if s.state != StateConfirming {
		return models.CompletionResult{}, fmt.Errorf("cannot confirm in state %s", s.state)
	}

	if err := s.req.Validate(); err != nil {
		s.state = StateFailed
		return models.CompletionResult{}, err
	}

	s.state = StateAwaitingCompletion
	system, user := prompt.Build(s.req)
	res := c.Complete(ctx, s.req, system, user)
	s.result = &res

	if res.Success {
		s.state = StateReportReady
	} else {
		s.state = StateFailed
	}
	return res, nil
}

// Restart loops a terminal session back to CollectingFields for a new
// request of the given kind. Collected fields and the previous result are
// discarded.
func (s *Session) Restart(kind models.AnalysisKind) error {
	if s.state != StateReportReady && s.state != StateFailed {
		return fmt.Errorf("cannot restart in state %s", s.state)
	}
	return s.begin(kind)
}
