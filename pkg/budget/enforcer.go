// Package budget enforces estimated-spend ceilings before live completions
// are dispatched. Demo completions bypass enforcement.
package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sentinel-hse/sentinel/pkg/config"
	"github.com/sentinel-hse/sentinel/pkg/models"
	"github.com/sentinel-hse/sentinel/pkg/usage"
)

// ErrBudgetExceeded is returned when a request would exceed a spend cap.
var ErrBudgetExceeded = errors.New("spend budget exceeded")

// Enforcer checks accumulated spend against configured policies.
type Enforcer struct {
	policies []config.BudgetPolicy
	store    usage.Store
}

// New creates an Enforcer with the given policies and usage store.
func New(policies []config.BudgetPolicy, store usage.Store) *Enforcer {
	return &Enforcer{policies: policies, store: store}
}

// Check returns ErrBudgetExceeded if spend in any applicable policy period
// has reached its cap for the given analysis kind.
func (e *Enforcer) Check(ctx context.Context, kind models.AnalysisKind) error {
	for _, p := range e.applicablePolicies(kind) {
		since := periodStart(p.Period)
		var spent float64
		var err error
		if p.Kind != "" {
			spent, err = e.store.TotalCost(ctx, models.AnalysisKind(p.Kind), since)
		} else {
			spent, err = e.store.TotalCost(ctx, "", since)
		}
		if err != nil {
			return fmt.Errorf("budget check: %w", err)
		}
		if spent >= p.MaxCost {
			return ErrBudgetExceeded
		}
	}
	return nil
}

// Status reports spend against every policy applicable to the kind. An empty
// kind matches all policies.
type Status struct {
	Policy    config.BudgetPolicy `json:"policy"`
	Spent     float64             `json:"spent"`
	Remaining float64             `json:"remaining"`
}

// StatusFor returns spend status across all policies.
func (e *Enforcer) StatusFor(ctx context.Context) ([]Status, error) {
	statuses := make([]Status, 0, len(e.policies))
	for _, p := range e.policies {
		since := periodStart(p.Period)
		spent, err := e.store.TotalCost(ctx, models.AnalysisKind(p.Kind), since)
		if err != nil {
			return nil, fmt.Errorf("budget status: %w", err)
		}
		remaining := p.MaxCost - spent
		if remaining < 0 {
			remaining = 0
		}
		statuses = append(statuses, Status{Policy: p, Spent: spent, Remaining: remaining})
	}
	return statuses, nil
}

func (e *Enforcer) applicablePolicies(kind models.AnalysisKind) []config.BudgetPolicy {
	var result []config.BudgetPolicy
	for _, p := range e.policies {
		if p.Kind == "" || p.Kind == string(kind) {
			result = append(result, p)
		}
	}
	return result
}

func periodStart(period string) time.Time {
	now := time.Now().UTC()
	switch period {
	case "monthly":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	default: // daily
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
}
