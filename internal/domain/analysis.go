package domain

import "context"

// Completion is a single chat-completion result with provider-reported usage.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Analyzer produces a completion for a system prompt + document chunk pair.
type Analyzer interface {
	Complete(ctx context.Context, systemPrompt, userText string) (Completion, error)
}

// HealthChecker is implemented by transports that can probe their provider.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// GroupAnalysis holds the per-chunk analyses for one section group.
type GroupAnalysis struct {
	Name     string
	Analyses []string
}

// Analysis is the full analysis of one filing.
type Analysis struct {
	CIK             string
	AccessionNumber string
	FormType        string
	Model           string
	Groups          []GroupAnalysis
	TotalTokens     int
}
