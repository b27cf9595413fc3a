package wizard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sentinel-hse/sentinel/pkg/completion"
	"github.com/sentinel-hse/sentinel/pkg/demo"
	"github.com/sentinel-hse/sentinel/pkg/models"
	"github.com/sentinel-hse/sentinel/pkg/usage"
)

// fakeCompleter counts calls and returns a canned result.
type fakeCompleter struct {
	calls  int
	result models.CompletionResult
}

func (f *fakeCompleter) Complete(ctx context.Context, req models.AnalysisRequest, system, user string) models.CompletionResult {
	f.calls++
	return f.result
}

func TestSessionHappyPath(t *testing.T) {
	sess, err := NewSession(models.KindIncident)
	if err != nil {
		t.Fatal(err)
	}
	if sess.State() != StateCollectingFields {
		t.Fatalf("expected collecting state, got %s", sess.State())
	}

	inputs := []string{
		"Worker slipped on oil patch near machine #5",
		string(models.SeveritySerious),
		"Plant B",
		"", // date is optional
	}
	for _, in := range inputs {
		if err := sess.Submit(in); err != nil {
			t.Fatalf("Submit(%q): %v", in, err)
		}
	}
	if sess.State() != StateConfirming {
		t.Fatalf("expected confirming state, got %s", sess.State())
	}

	fc := &fakeCompleter{result: models.CompletionResult{Success: true, Text: "report", Tokens: 100, Cost: 0.001, Model: "deepseek-chat"}}
	res, err := sess.Confirm(context.Background(), fc)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || sess.State() != StateReportReady {
		t.Errorf("expected ReportReady, got %s", sess.State())
	}
	if fc.calls != 1 {
		t.Errorf("expected 1 completion call, got %d", fc.calls)
	}

	// Terminal state loops back.
	if err := sess.Restart(models.KindAudit); err != nil {
		t.Fatal(err)
	}
	if sess.State() != StateCollectingFields || sess.Kind() != models.KindAudit {
		t.Errorf("restart did not reset session: %s / %s", sess.State(), sess.Kind())
	}
	if sess.Result() != nil {
		t.Error("restart must discard previous result")
	}
}

func TestSubmitRejectsEmptyRequiredField(t *testing.T) {
	sess, _ := NewSession(models.KindIncident)

	err := sess.Submit("")
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "description" {
		t.Errorf("expected description field, got %s", verr.Field)
	}
	if sess.State() != StateCollectingFields {
		t.Error("failed submit must not advance")
	}
}

func TestSubmitRejectsUnknownChoice(t *testing.T) {
	sess, _ := NewSession(models.KindIncident)
	_ = sess.Submit("A long enough description here")

	if err := sess.Submit("super bad"); err == nil {
		t.Error("expected error for out-of-list severity")
	}
	if err := sess.Submit(string(models.SeverityCritical)); err != nil {
		t.Errorf("expected valid severity accepted, got %v", err)
	}
}

func TestConfirmValidationFailsBeforeCompletion(t *testing.T) {
	sess, _ := NewSession(models.KindIncident)
	// Short description passes the per-step non-empty check but fails
	// request validation at confirm time.
	_ = sess.Submit("too short")
	_ = sess.Submit(string(models.SeverityMinor))
	_ = sess.Submit("Plant B")
	_ = sess.Submit("")

	fc := &fakeCompleter{result: models.CompletionResult{Success: true}}
	_, err := sess.Confirm(context.Background(), fc)

	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if fc.calls != 0 {
		t.Errorf("validation failure must precede any completion call, got %d calls", fc.calls)
	}
	if sess.State() != StateFailed {
		t.Errorf("expected Failed state, got %s", sess.State())
	}
}

func TestConfirmFailedCompletion(t *testing.T) {
	sess, _ := NewSession(models.KindESG)
	_ = sess.Submit("Battery recycling plant operations")
	_ = sess.Submit("")
	_ = sess.Submit("")

	fc := &fakeCompleter{result: models.CompletionResult{Success: false, Text: "API Error: 401 unauthorized"}}
	res, err := sess.Confirm(context.Background(), fc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Success || sess.State() != StateFailed {
		t.Errorf("expected Failed state, got %s", sess.State())
	}
}

func TestRunnerEndToEndDemo(t *testing.T) {
	client := completion.New(completion.Demo(), completion.Options{})
	acc := usage.NewAccumulator()
	rn := NewRunner(client, acc, nil, nil)

	input := strings.Join([]string{
		"1", // incident
		"Worker slipped on oil patch near machine #5",
		"3", // 3 - Serious
		"Plant B",
		"", // date
		"y",
		"q",
	}, "\n") + "\n"

	var out strings.Builder
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rn.Run(ctx, strings.NewReader(input), &out); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out.String(), "INCIDENT ANALYSIS") {
		t.Error("expected demo incident report in output")
	}
	if !strings.Contains(out.String(), demo.ModelName) {
		t.Error("expected demo model name in output")
	}
	stats := acc.Snapshot()
	if stats.TotalReports != 1 || stats.TotalTokens == 0 || stats.TotalCost == 0 {
		t.Errorf("accumulator not updated: %+v", stats)
	}
}
