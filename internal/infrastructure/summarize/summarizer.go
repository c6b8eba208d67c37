package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"DocForge/internal/ports"
)

const (
	// DefaultMaxWords bounds a summary when callers do not pick a length.
	DefaultMaxWords = 150

	// minProviderLength is the input size below which extractive
	// summarization is used directly; very short texts gain nothing
	// from a model call.
	minProviderLength = 100

	extractiveSentences = 3
)

// Service condenses documents through the completion provider, degrading
// to extractive summarization when the provider is unconfigured, the
// input is short, or the call fails. It never fails past its boundary.
type Service struct {
	completer ports.Completer
	logger    *slog.Logger
}

var _ ports.Summarizer = (*Service)(nil)

// NewService wires the completion dispatcher; completer may be nil.
func NewService(completer ports.Completer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{completer: completer, logger: logger}
}

// Summarize returns a summary of roughly maxWords words.
func (s *Service) Summarize(ctx context.Context, text string, maxWords int) string {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	if s.completer == nil || utf8.RuneCountInString(text) < minProviderLength {
		return Extractive(text)
	}

	summary, err := s.completer.Complete(ctx, ports.CompletionRequest{
		SystemPrompt: "You condense documents into clear, faithful summaries.",
		Prompt:       fmt.Sprintf("Summarize the following text in at most %d words:\n\n%s", maxWords, text),
		Temperature:  0.5,
		MaxTokens:    maxWords * 2,
	})
	if err != nil {
		s.logger.Warn("provider summarization failed, using extractive fallback", "error", err)
		return Extractive(text)
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return Extractive(text)
	}
	return summary
}

// Extractive keeps the first three non-empty sentences of text, split on
// sentence-terminal punctuation and rejoined with ". ".
func Extractive(text string) string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	sentences := make([]string, 0, extractiveSentences)
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		sentences = append(sentences, trimmed)
		if len(sentences) == extractiveSentences {
			break
		}
	}

	return strings.Join(sentences, ". ")
}
