package wizard

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sentinel-hse/sentinel/pkg/demo"
	"github.com/sentinel-hse/sentinel/pkg/history"
	"github.com/sentinel-hse/sentinel/pkg/models"
	"github.com/sentinel-hse/sentinel/pkg/usage"
)

// Runner drives wizard sessions over a line-oriented reader/writer pair,
// one request at a time.
type Runner struct {
	completer Completer
	acc       *usage.Accumulator
	archive   *history.Archive
	store     usage.Store
}

// NewRunner creates a Runner. archive and store may be nil to skip
// persistence.
func NewRunner(c Completer, acc *usage.Accumulator, archive *history.Archive, store usage.Store) *Runner {
	return &Runner{completer: c, acc: acc, archive: archive, store: store}
}

// Run loops: pick a kind, collect fields, confirm, print the report and
// running totals. It returns when r is exhausted, the user quits, or ctx is
// cancelled.
func (rn *Runner) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Fprintln(w, "\nSelect analysis type:")
		for i, k := range models.Kinds {
			fmt.Fprintf(w, "  %d) %s\n", i+1, k)
		}
		fmt.Fprintln(w, "  q) quit")
		fmt.Fprint(w, "> ")

		line, ok := readLine(scanner)
		if !ok {
			return scanner.Err()
		}
		if line == "q" || line == "quit" {
			return nil
		}

		kind, err := kindFromChoice(line)
		if err != nil {
			fmt.Fprintf(w, "%v\n", err)
			continue
		}

		sess, err := NewSession(kind)
		if err != nil {
			fmt.Fprintf(w, "%v\n", err)
			continue
		}

		if done := rn.runSession(ctx, sess, scanner, w); done {
			return nil
		}
	}
}

// runSession walks one session to a terminal state. It reports true when
// input is exhausted.
func (rn *Runner) runSession(ctx context.Context, sess *Session, scanner *bufio.Scanner, w io.Writer) bool {
	for sess.State() == StateCollectingFields {
		_, text, choices, err := sess.CurrentStep()
		if err != nil {
			fmt.Fprintf(w, "%v\n", err)
			return false
		}
		fmt.Fprintln(w, text)
		for i, c := range choices {
			fmt.Fprintf(w, "  %d) %s\n", i+1, c)
		}
		fmt.Fprint(w, "> ")

		line, ok := readLine(scanner)
		if !ok {
			return true
		}
		if len(choices) > 0 {
			if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(choices) {
				line = choices[n-1]
			}
		}
		if err := sess.Submit(line); err != nil {
			fmt.Fprintf(w, "%v\n", err)
		}
	}

	fmt.Fprintf(w, "\n%s\nProceed with analysis? (y/n)\n> ", sess.Summary())
	line, ok := readLine(scanner)
	if !ok {
		return true
	}
	if line != "y" && line != "yes" {
		fmt.Fprintln(w, "Discarded.")
		return false
	}

	start := time.Now()
	res, err := sess.Confirm(ctx, rn.completer)
	if err != nil {
		fmt.Fprintf(w, "%v\n", err)
		return false
	}

	if !res.Success {
		fmt.Fprintf(w, "Analysis failed: %s\n", res.Text)
		return false
	}

	rn.acc.Record(res)
	rn.persist(ctx, sess, res, time.Since(start))

	stats := rn.acc.Snapshot()
	fmt.Fprintf(w, "\n%s\n", res.Text)
	fmt.Fprintf(w, "\nTokens used: %d | Estimated cost: $%.4f | Model: %s\n", res.Tokens, res.Cost, res.Model)
	fmt.Fprintf(w, "Session totals: %d reports, %d tokens, $%.4f\n", stats.TotalReports, stats.TotalTokens, stats.TotalCost)
	return false
}

func (rn *Runner) persist(ctx context.Context, sess *Session, res models.CompletionResult, latency time.Duration) {
	now := time.Now().UTC()
	if rn.store != nil {
		_ = rn.store.Record(ctx, models.ReportRecord{
			Kind:             sess.Kind(),
			Model:            res.Model,
			PromptTokens:     res.PromptTokens,
			CompletionTokens: res.CompletionTokens,
			TotalTokens:      res.Tokens,
			Cost:             res.Cost,
			CreatedAt:        now,
		})
	}
	if rn.archive != nil {
		_ = rn.archive.Save(ctx, models.ArchivedReport{
			ID:        uuid.NewString(),
			Kind:      sess.Kind(),
			Request:   sess.Request(),
			Text:      res.Text,
			Model:     res.Model,
			Tokens:    res.Tokens,
			Cost:      res.Cost,
			Demo:      res.Model == demo.ModelName,
			LatencyMs: latency.Milliseconds(),
			CreatedAt: now,
		})
	}
}

func readLine(scanner *bufio.Scanner) (string, bool) {
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}

func kindFromChoice(line string) (models.AnalysisKind, error) {
	if n, err := strconv.Atoi(line); err == nil {
		if n >= 1 && n <= len(models.Kinds) {
			return models.Kinds[n-1], nil
		}
		return "", errors.New("choice out of range")
	}
	kind := models.AnalysisKind(line)
	if !kind.Valid() {
		return "", fmt.Errorf("unknown analysis kind %q", line)
	}
	return kind, nil
}
