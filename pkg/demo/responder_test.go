package demo

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/sentinel-hse/sentinel/pkg/models"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestRespondDeterministic(t *testing.T) {
	req := models.NewIncidentRequest(models.IncidentFields{
		Description: "Worker slipped on oil patch",
		Severity:    models.SeveritySerious,
		Location:    "Plant B",
	})

	a := Respond(req, 0.21, fixedNow)
	b := Respond(req, 0.21, fixedNow)

	if a.Text != b.Text {
		t.Error("identical inputs and clock must produce byte-identical text")
	}
	if a != b {
		t.Error("identical inputs and clock must produce identical results")
	}
}

func TestRespondIncident(t *testing.T) {
	req := models.NewIncidentRequest(models.IncidentFields{
		Description: "Worker slipped on oil patch",
		Severity:    models.SeveritySerious,
		Location:    "Plant B",
	})

	res := Respond(req, 0.21, fixedNow)

	if !res.Success {
		t.Fatal("demo responses always succeed")
	}
	for _, want := range []string{
		"INCIDENT ANALYSIS",
		"Worker slipped on oil patch",
		"3 - Serious",
		"Plant B",
		"2026-03-14 09:30",
	} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if res.Model != ModelName {
		t.Errorf("expected model %q, got %q", ModelName, res.Model)
	}
}

func TestRespondTokenAndCostRanges(t *testing.T) {
	reqs := []models.AnalysisRequest{
		models.NewIncidentRequest(models.IncidentFields{Description: "d", Location: "l"}),
		models.NewAuditRequest(models.AuditFields{Findings: "f", Standard: "ISO 45001"}),
		models.NewPolicyRequest(models.PolicyFields{Text: "t"}),
		models.NewESGRequest(models.ESGFields{Activities: "a"}),
	}
	const price = 0.21
	for _, req := range reqs {
		res := Respond(req, price, fixedNow)
		if res.Tokens < 450 || res.Tokens > 1200 {
			t.Errorf("%s: tokens %d outside fixed range", req.Kind, res.Tokens)
		}
		want := float64(res.Tokens) / 1_000_000 * price
		if math.Abs(res.Cost-want) > 1e-12 {
			t.Errorf("%s: cost invariant violated: got %v want %v", req.Kind, res.Cost, want)
		}
		if res.PromptTokens+res.CompletionTokens != res.Tokens {
			t.Errorf("%s: token split does not sum to total", req.Kind)
		}
	}
}

func TestRespondNilFields(t *testing.T) {
	res := Respond(models.AnalysisRequest{Kind: models.KindPolicy}, 0.21, fixedNow)
	if !res.Success {
		t.Fatal("expected success with empty fields")
	}
	if !strings.Contains(res.Text, "Not specified") {
		t.Error("expected placeholder for omitted fields")
	}
}
