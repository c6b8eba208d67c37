package usecase

import (
	"context"
	"strings"
	"testing"

	"DocForge/internal/domain"
	"DocForge/internal/logging"
)

type stubGrammar struct {
	findings []domain.GrammarFinding
}

func (s *stubGrammar) Check(ctx context.Context, text, language string) []domain.GrammarFinding {
	if s.findings == nil {
		return []domain.GrammarFinding{}
	}
	return s.findings
}

type stubSentiment struct {
	result domain.SentimentResult
}

func (s *stubSentiment) Analyze(ctx context.Context, text string) domain.SentimentResult {
	return s.result
}

type stubEntities struct {
	result domain.EntityAnalysis
}

func (s *stubEntities) Extract(ctx context.Context, text string) domain.EntityAnalysis {
	return s.result
}

func newTestAnalyzer(grammarFindings []domain.GrammarFinding) *Analyzer {
	return NewAnalyzer(AnalyzerDeps{
		Grammar:   &stubGrammar{findings: grammarFindings},
		Sentiment: &stubSentiment{result: domain.NeutralSentiment()},
		Entities:  &stubEntities{result: domain.EntityAnalysis{Entities: []domain.Entity{}, Topics: []domain.Topic{}}},
		Logger:    logging.New("error"),
	})
}

func TestAnalyzeDocumentEmptyInput(t *testing.T) {
	t.Parallel()

	report := newTestAnalyzer(nil).AnalyzeDocument(context.Background(), "")

	if report.Stats != (domain.TextStats{}) {
		t.Fatalf("expected zero stats, got %+v", report.Stats)
	}
	if report.Readability.ReadingMinutes != 0 {
		t.Fatalf("expected 0 reading minutes, got %d", report.Readability.ReadingMinutes)
	}
	if report.Sentiment != domain.NeutralSentiment() {
		t.Fatalf("expected neutral sentiment, got %+v", report.Sentiment)
	}
	if len(report.Grammar.Findings) != 0 || report.Grammar.ErrorCount != 0 {
		t.Fatalf("expected no grammar findings, got %+v", report.Grammar)
	}
	if len(report.Entities.Entities) != 0 || len(report.Entities.Topics) != 0 {
		t.Fatalf("expected empty entity analysis, got %+v", report.Entities)
	}
	if report.Grammar.CorrectedText != "" {
		t.Fatalf("no corrected text expected, got %q", report.Grammar.CorrectedText)
	}
}

func TestAnalyzeDocumentWithoutAdapters(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(AnalyzerDeps{Logger: logging.New("error")})
	report := analyzer.AnalyzeDocument(context.Background(), "Plain text without any services.")

	// All five fields populated even with nothing wired.
	if report.Sentiment != domain.NeutralSentiment() {
		t.Fatalf("expected neutral default, got %+v", report.Sentiment)
	}
	if report.Grammar.Findings == nil || report.Entities.Entities == nil || report.Entities.Topics == nil {
		t.Fatal("sub-results must default to empty, not absent")
	}
	if report.Stats.Words != 5 {
		t.Fatalf("unexpected word count: %d", report.Stats.Words)
	}
}

func TestAnalyzeDocumentStatsAndReadability(t *testing.T) {
	t.Parallel()

	text := "The cat sat on the mat. The dog ran far away!\n\nA second paragraph sits here."
	report := newTestAnalyzer(nil).AnalyzeDocument(context.Background(), text)

	if report.Stats.Sentences != 3 {
		t.Fatalf("unexpected sentence count: %d", report.Stats.Sentences)
	}
	if report.Stats.Paragraphs != 2 {
		t.Fatalf("unexpected paragraph count: %d", report.Stats.Paragraphs)
	}
	if report.Stats.Words != 16 {
		t.Fatalf("unexpected word count: %d", report.Stats.Words)
	}
	if report.Readability.ReadingMinutes != 1 {
		t.Fatalf("unexpected reading minutes: %d", report.Readability.ReadingMinutes)
	}
	if report.Readability.FleschScore < 0 || report.Readability.FleschScore > 100 {
		t.Fatalf("flesch score out of range: %d", report.Readability.FleschScore)
	}
	if report.Readability.GradeLevel == "" {
		t.Fatal("grade level missing")
	}
}

func TestAnalyzeDocumentCorrectedText(t *testing.T) {
	t.Parallel()

	text := "He go to school and she walk home."
	findings := []domain.GrammarFinding{
		{Offset: 3, Length: 2, Replacements: []string{"goes"}, Flagged: "go"},
		{Offset: 20, Length: 8, Replacements: []string{"she walks"}, Flagged: "she walk"},
	}

	report := newTestAnalyzer(findings).AnalyzeDocument(context.Background(), text)

	if report.Grammar.ErrorCount != 2 {
		t.Fatalf("unexpected error count: %d", report.Grammar.ErrorCount)
	}
	want := "He goes to school and she walks home."
	if report.Grammar.CorrectedText != want {
		t.Fatalf("corrected text = %q, want %q", report.Grammar.CorrectedText, want)
	}
}

func TestCorrectGrammarIdentityWithoutChecker(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(AnalyzerDeps{Logger: logging.New("error")})
	text := "Anything at all."
	if got := analyzer.CorrectGrammar(context.Background(), text); got != text {
		t.Fatalf("expected identity, got %q", got)
	}
}

func TestCountSyllables(t *testing.T) {
	t.Parallel()

	cases := []struct {
		word string
		want int
	}{
		{"the", 1},
		{"beautiful", 4},
		{"simple", 2},
		{"cat", 1},
		{"make", 1},
		{"people", 2},
		{"readability", 5},
		{"a", 1},
	}

	for _, tc := range cases {
		if got := countSyllables(tc.word); got != tc.want {
			t.Fatalf("countSyllables(%q) = %d, want %d", tc.word, got, tc.want)
		}
	}
}

func TestFleschReadingEase(t *testing.T) {
	t.Parallel()

	// 1 sentence, 10 words, 15 syllables:
	// 206.835 - 1.015*10 - 84.6*1.5 = 69.785 -> 70
	if got := fleschReadingEase(10, 1.5); got != 70 {
		t.Fatalf("fleschReadingEase(10, 1.5) = %d, want 70", got)
	}

	// Empty input: both averages are zero, clamps to 100.
	if got := fleschReadingEase(0, 0); got != 100 {
		t.Fatalf("fleschReadingEase(0, 0) = %d, want 100", got)
	}

	// Dense academic prose clamps to 0.
	if got := fleschReadingEase(40, 2.5); got != 0 {
		t.Fatalf("fleschReadingEase(40, 2.5) = %d, want 0", got)
	}
}

func TestGradeLabel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		avgWords     float64
		avgSyllables float64
		want         string
	}{
		{5, 1.2, "Elementary"},
		{14, 1.4, "Middle School"},
		{18, 1.5, "High School"},
		{22, 1.7, "College"},
		{30, 2.2, "Graduate"},
	}

	for _, tc := range cases {
		if got := gradeLabel(tc.avgWords, tc.avgSyllables); got != tc.want {
			t.Fatalf("gradeLabel(%v, %v) = %q, want %q", tc.avgWords, tc.avgSyllables, got, tc.want)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	t.Parallel()

	got := splitSentences("One. Two! Three? ... ")
	if len(got) != 3 {
		t.Fatalf("expected 3 sentences, got %v", got)
	}

	if got := splitSentences(""); len(got) != 0 {
		t.Fatalf("expected no sentences, got %v", got)
	}
}

func TestSummarizePassThrough(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(AnalyzerDeps{Logger: logging.New("error")})
	text := strings.Repeat("word ", 10)
	if got := analyzer.Summarize(context.Background(), text, 50); got != text {
		t.Fatalf("expected identity without summarizer, got %q", got)
	}
}
