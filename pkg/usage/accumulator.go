// Package usage tracks completion usage two ways: an in-memory accumulator
// holding the process-wide counters, and a SQLite store persisting one row
// per successful completion for later aggregation.
package usage

import (
	"sync"

	"github.com/sentinel-hse/sentinel/pkg/models"
)

// Accumulator holds the process-wide usage counters. Counters move only on
// successful results and only forward; Reset is the single explicit rollback.
type Accumulator struct {
	mu    sync.Mutex
	stats models.UsageStats
}

// NewAccumulator returns a zeroed Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Record applies a completion result. Failed results leave all counters
// unchanged.
func (a *Accumulator) Record(res models.CompletionResult) {
	if !res.Success {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.TotalReports++
	a.stats.TotalCost += res.Cost
	a.stats.TotalTokens += res.Tokens
}

// Snapshot returns a copy of the current counters.
func (a *Accumulator) Snapshot() models.UsageStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Reset zeroes all counters.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats = models.UsageStats{}
}
