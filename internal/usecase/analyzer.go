package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"

	"DocForge/internal/domain"
	"DocForge/internal/ports"
)

const defaultLanguage = "en-US"

// AnalyzerDeps wires all driven adapters into the analysis orchestrator.
// Grammar, Sentiment, and Entities may be nil; their sub-results default
// to empty or neutral values. Cache and Repository are optional.
type AnalyzerDeps struct {
	Grammar    ports.GrammarChecker
	Sentiment  ports.SentimentAnalyzer
	Entities   ports.EntityExtractor
	Summarizer ports.Summarizer
	Cache      ports.ReportCache
	Repository ports.ReportRepository
	Logger     *slog.Logger
}

// Analyzer fans a document out to the analysis adapters, joins their
// results, and assembles one aggregate report. It never fails: adapter
// outages are absorbed per their never-fail contracts.
type Analyzer struct {
	grammar    ports.GrammarChecker
	sentiment  ports.SentimentAnalyzer
	entities   ports.EntityExtractor
	summarizer ports.Summarizer
	cache      ports.ReportCache
	repository ports.ReportRepository
	logger     *slog.Logger
}

// NewAnalyzer constructs the orchestration component.
func NewAnalyzer(deps AnalyzerDeps) *Analyzer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		grammar:    deps.Grammar,
		sentiment:  deps.Sentiment,
		entities:   deps.Entities,
		summarizer: deps.Summarizer,
		cache:      deps.Cache,
		repository: deps.Repository,
		logger:     logger,
	}
}

// AnalyzeDocument runs grammar, sentiment, and entity analysis
// concurrently, joins the results, and derives readability and text
// statistics. The returned report always has every field populated.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, text string) domain.AggregateReport {
	cacheKey := reportKey(text)
	if a.cache != nil {
		if cached, ok := a.cache.Get(ctx, cacheKey); ok {
			a.logger.Debug("analysis served from cache", "key", cacheKey)
			return *cached
		}
	}

	findings := []domain.GrammarFinding{}
	sentimentResult := domain.NeutralSentiment()
	entityResult := domain.EntityAnalysis{Entities: []domain.Entity{}, Topics: []domain.Topic{}}

	var wg sync.WaitGroup
	if a.grammar != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			findings = a.grammar.Check(ctx, text, defaultLanguage)
		}()
	}
	if a.sentiment != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sentimentResult = a.sentiment.Analyze(ctx, text)
		}()
	}
	if a.entities != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entityResult = a.entities.Extract(ctx, text)
		}()
	}
	wg.Wait()

	readability, stats := computeReadability(text)

	summary := domain.GrammarSummary{
		ErrorCount: len(findings),
		Findings:   findings,
	}
	if len(findings) > 0 {
		summary.CorrectedText = domain.ApplyFindings(text, findings)
	}

	report := domain.AggregateReport{
		Grammar:     summary,
		Sentiment:   sentimentResult,
		Entities:    entityResult,
		Readability: readability,
		Stats:       stats,
	}

	if a.cache != nil {
		a.cache.Set(ctx, cacheKey, &report)
	}
	if a.repository != nil {
		stored := domain.StoredReport{
			TextHash:  cacheKey,
			WordCount: stats.Words,
			Report:    report,
		}
		if err := a.repository.SaveReport(ctx, stored); err != nil {
			a.logger.Warn("report persistence failed", "error", err)
		}
	}

	return report
}

// CorrectGrammar returns text with each finding's first suggestion
// applied, identity when the checker is unavailable or finds nothing.
func (a *Analyzer) CorrectGrammar(ctx context.Context, text string) string {
	if a.grammar == nil {
		return text
	}
	return domain.ApplyFindings(text, a.grammar.Check(ctx, text, defaultLanguage))
}

// Summarize condenses text to roughly maxWords words, degrading to
// extraction when no summarizer is wired.
func (a *Analyzer) Summarize(ctx context.Context, text string, maxWords int) string {
	if a.summarizer == nil {
		return text
	}
	return a.summarizer.Summarize(ctx, text, maxWords)
}

// RecentReports lists stored reports when a repository is configured.
func (a *Analyzer) RecentReports(ctx context.Context, limit int) ([]domain.StoredReport, error) {
	if a.repository == nil {
		return []domain.StoredReport{}, nil
	}
	return a.repository.RecentReports(ctx, limit)
}

func reportKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
