package demo

// Canned report bodies. Interpolation slots carry the submitted field values
// and the generation timestamp; everything else is fixed text.

const incidentReport = `# INCIDENT ANALYSIS REPORT (DEMO)
Generated: %s

# EXECUTIVE SUMMARY
This demonstration report analyzes the incident described below. A worker-safety
event of the stated severity occurred at the stated location. Based on the
description provided, the event pattern is consistent with a housekeeping and
surface-condition failure compounded by gaps in routine inspection. Immediate
containment has been assumed; the recommendations below address systemic causes.

Incident description: %s
Reported severity: %s
Location: %s
Date: %s

# ROOT CAUSE ANALYSIS (5 WHYS)
1. Why did the incident occur? A hazardous condition was present in a walkway or
   work area during normal operations.
2. Why was the condition present? The originating source (leak, spill, or debris)
   was not contained at the point of generation.
3. Why was it not contained? The area inspection routine did not flag the source
   before personnel exposure.
4. Why did the inspection routine miss it? Inspection frequency and checklist
   content are not matched to the activity level of the area.
5. Why are they not matched? The site risk assessment has not been reviewed
   against current operating conditions.

# REGULATORY IMPLICATIONS
- OSHA 29 CFR 1910.22(a) - Walking-working surfaces must be kept clean, orderly,
  and in a sanitary condition.
- OSHA 29 CFR 1910.22(d) - Surfaces must be inspected regularly and maintained
  in a safe condition.
- ISO 45001:2018 clause 8.1.2 - Hierarchy of controls must be applied to
  eliminate hazards and reduce OH&S risks.

# RECOMMENDATIONS
1. (High priority, low cost) Re-establish shift-start walkway inspections with a
   signed checklist covering the affected area.
2. (High priority, medium cost) Install secondary containment or drip trays at
   the identified source.
3. (Medium priority, low cost) Brief all area personnel on hazard reporting
   channels within five working days.
4. (Medium priority, medium cost) Review the site risk assessment against
   current throughput and update inspection frequencies accordingly.

# RISK ASSESSMENT
Likelihood of recurrence without action: Probable
Severity category: As reported
Overall risk rating: ELEVATED - corrective actions 1 and 2 should be closed
before normal operations resume in the affected area.

---
This is a demonstration report generated without AI analysis. Configure an API
key to receive a full model-generated report.`

const auditReport = `# COMPLIANCE AUDIT REVIEW (DEMO)
Generated: %s

# AUDIT SUMMARY
Standard under review: %s
This demonstration review classifies the submitted findings and proposes a
corrective action plan. Overall conformity cannot be certified from a demo
analysis; the structure below mirrors a full review.

Submitted findings: %s

# FINDINGS CLASSIFICATION
- Finding group A: Minor nonconformity against documentation-control clauses.
  Records exist but are incomplete or out of date.
- Finding group B: Observation. Practice conforms but is not yet reflected in
  the documented procedure.

# CORRECTIVE ACTION PLAN
1. Assign a document owner and complete the outstanding record updates within
   30 days.
2. Align the written procedure with observed practice and route it through the
   management-of-change process within 60 days.
3. Schedule a follow-up verification audit of the affected clauses within 90
   days.

# CERTIFICATION IMPACT
Minor nonconformities of this type do not normally suspend certification
provided corrective actions are evidenced at the next surveillance audit.

---
This is a demonstration report generated without AI analysis. Configure an API
key to receive a full model-generated report.`

const policyReport = `# POLICY ANALYSIS (DEMO)
Generated: %s

# POLICY ASSESSMENT
Framework: %s
Policy extract reviewed: %s

The submitted policy text follows a recognizable structure but a demonstration
review can only assess form, not regulatory sufficiency.

# GAP ANALYSIS
- Escalation path: verify a named role (not an individual) owns each escalation
  step.
- Review cadence: the document should state its own review interval and owner.
- Scope statement: confirm contractors and visitors are explicitly in or out of
  scope.

# LANGUAGE REVIEW
- Replace aspirational phrasing ("strives to", "endeavours to") with verifiable
  obligations ("shall", "must") wherever compliance will be audited.
- Define abbreviations at first use.

# RECOMMENDED REVISIONS
1. Add a responsibilities table mapping each obligation to a role.
2. Add a revision history block with version, date, and approver.
3. State the governing framework edition and year explicitly.

---
This is a demonstration report generated without AI analysis. Configure an API
key to receive a full model-generated report.`

const esgReport = `# ESG ASSESSMENT (DEMO)
Generated: %s

# ESG OVERVIEW
Industry context: %s
Activities assessed: %s

This demonstration assessment outlines the material topic structure a full
analysis would quantify.

# ENVIRONMENTAL ASSESSMENT
Energy use, emissions intensity, and waste streams are the default material
topics for the stated activities. A full assessment maps each to GRI 302/305/306
disclosures with supplied metrics.

# SOCIAL ASSESSMENT
Workforce health and safety and community impact are assessed against GRI 403
and 413. Incident and training-hour metrics are required for quantification.

# GOVERNANCE ASSESSMENT
Board oversight of sustainability topics and the presence of a documented
ethics policy are assessed against GRI 2 general disclosures.

# DISCLOSURE GAPS
Without supplied metrics, scope 1 and scope 2 emissions reporting (GRI 305-1,
305-2) is the most common gap for organizations at this stage.

# IMPROVEMENT ROADMAP
1. Establish a metrics baseline for energy, emissions, and safety.
2. Assign board-level ownership of ESG reporting.
3. Publish against a recognized framework within two reporting cycles.

---
This is a demonstration report generated without AI analysis. Configure an API
key to receive a full model-generated report.`
