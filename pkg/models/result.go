package models

import "time"

// CompletionResult is the outcome of a single completion exchange.
// Failed exchanges carry a user-facing message in Text and zero token/cost
// values; they are never retried.
type CompletionResult struct {
	Success          bool    `json:"success"`
	Text             string  `json:"text"`
	Tokens           int     `json:"tokens_used"`
	PromptTokens     int     `json:"prompt_tokens,omitempty"`
	CompletionTokens int     `json:"completion_tokens,omitempty"`
	Cost             float64 `json:"cost_estimate"`
	Model            string  `json:"model"`
}

// UsageStats are the process-wide counters, incremented only on success.
type UsageStats struct {
	TotalReports int     `json:"total_reports"`
	TotalCost    float64 `json:"total_cost"`
	TotalTokens  int     `json:"total_tokens"`
}

// ReportRecord is one persisted usage row per successful completion.
type ReportRecord struct {
	ID               int64        `json:"id"`
	Kind             AnalysisKind `json:"kind"`
	Model            string       `json:"model"`
	PromptTokens     int          `json:"prompt_tokens"`
	CompletionTokens int          `json:"completion_tokens"`
	TotalTokens      int          `json:"total_tokens"`
	Cost             float64      `json:"cost"`
	CreatedAt        time.Time    `json:"created_at"`
}

// UsageSummary aggregates persisted usage grouped by kind and model.
type UsageSummary struct {
	Kind            AnalysisKind `json:"kind"`
	Model           string       `json:"model"`
	RequestCount    int          `json:"request_count"`
	TotalPrompt     int          `json:"total_prompt"`
	TotalCompletion int          `json:"total_completion"`
	TotalTokens     int          `json:"total_tokens"`
	TotalCost       float64      `json:"total_cost"`
}

// ArchivedReport is a completed report held in the history archive, joining
// the originating request with its result.
type ArchivedReport struct {
	ID        string          `json:"id"`
	Kind      AnalysisKind    `json:"kind"`
	Request   AnalysisRequest `json:"request"`
	Text      string          `json:"text"`
	Model     string          `json:"model"`
	Tokens    int             `json:"tokens_used"`
	Cost      float64         `json:"cost_estimate"`
	Demo      bool            `json:"demo"`
	LatencyMs int64           `json:"latency_ms"`
	CreatedAt time.Time       `json:"created_at"`
}

// ArchiveQueryOpts specifies filters for querying the history archive.
type ArchiveQueryOpts struct {
	Kind  AnalysisKind
	Since time.Time
	Limit int
}
