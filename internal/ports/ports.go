package ports

import (
	"context"

	"DocForge/internal/domain"
)

// CompletionRequest carries one text-generation request. Temperature and
// MaxTokens fall back to provider defaults when zero.
type CompletionRequest struct {
	Prompt       string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
}

// StreamChunk is one fragment of a streaming completion. A non-nil Err
// means the in-flight stream broke; the channel is closed afterwards.
type StreamChunk struct {
	Text string
	Err  error
}

// Completer issues generation requests against the completion provider.
type Completer interface {
	// Complete returns the full generated text for a single request.
	// Transport failures are retried once with a fresh credential before
	// being surfaced.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// StreamComplete returns a channel of text fragments for a single
	// streaming request. Connection-time errors are returned directly;
	// mid-stream errors arrive via StreamChunk.Err. The channel is closed
	// when the stream finishes or ctx is cancelled.
	StreamComplete(ctx context.Context, prompt, systemPrompt string) (<-chan StreamChunk, error)
}

// GrammarChecker reports grammar issues for a text. Implementations never
// fail: any upstream problem yields an empty finding list.
type GrammarChecker interface {
	Check(ctx context.Context, text, language string) []domain.GrammarFinding
}

// SentimentAnalyzer classifies the overall sentiment of a text.
// Implementations never fail: they degrade to a local heuristic.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) domain.SentimentResult
}

// EntityExtractor detects entities and topics. Implementations never
// fail: any upstream problem yields empty lists.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) domain.EntityAnalysis
}

// Summarizer condenses a text to roughly maxWords words. Implementations
// never fail: they degrade to extractive summarization.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxWords int) string
}

// ReportRepository persists aggregate reports for history listings.
type ReportRepository interface {
	SaveReport(ctx context.Context, report domain.StoredReport) error
	RecentReports(ctx context.Context, limit int) ([]domain.StoredReport, error)
}

// ReportCache is a best-effort cache of aggregate reports keyed by text hash.
type ReportCache interface {
	Get(ctx context.Context, key string) (*domain.AggregateReport, bool)
	Set(ctx context.Context, key string, report *domain.AggregateReport)
}
