package domain

import (
	"sort"
	"time"
)

// GrammarFinding is a single issue reported by the grammar checker.
// Offset and Length are byte positions into the checked text.
type GrammarFinding struct {
	Message      string   `json:"message"`
	ShortMessage string   `json:"shortMessage,omitempty"`
	Replacements []string `json:"replacements"`
	Offset       int      `json:"offset"`
	Length       int      `json:"length"`
	RuleID       string   `json:"ruleId"`
	Category     string   `json:"category"`
	Flagged      string   `json:"flagged"`
}

// GrammarSummary groups the findings for one document.
type GrammarSummary struct {
	ErrorCount    int              `json:"errorCount"`
	Findings      []GrammarFinding `json:"findings"`
	CorrectedText string           `json:"correctedText,omitempty"`
}

// Entity is a named entity detected in the text, scores normalized to 0-100.
type Entity struct {
	Text       string `json:"text"`
	Type       string `json:"type"`
	Relevance  int    `json:"relevance"`
	Confidence int    `json:"confidence"`
	Link       string `json:"link,omitempty"`
}

// Topic is a document-level subject label, score normalized to 0-100.
type Topic struct {
	Label string `json:"label"`
	Score int    `json:"score"`
}

// EntityAnalysis carries entity and topic extraction results.
type EntityAnalysis struct {
	Entities []Entity `json:"entities"`
	Topics   []Topic  `json:"topics"`
}

// SentimentLabel enumerates the three sentiment classes.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
)

// Confidence tiers reported alongside sentiment scores.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// SentimentResult is the normalized output of sentiment analysis.
type SentimentResult struct {
	Label      SentimentLabel `json:"label"`
	Score      int            `json:"score"`
	Confidence string         `json:"confidence"`
}

// NeutralSentiment is the default used when no analysis is possible.
func NeutralSentiment() SentimentResult {
	return SentimentResult{Label: SentimentNeutral, Score: 50, Confidence: ConfidenceLow}
}

// ConfidenceForScore maps a provider score in [0,1] to a qualitative tier.
func ConfidenceForScore(score float64) string {
	switch {
	case score > 0.8:
		return ConfidenceHigh
	case score > 0.6:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Readability holds derived reading metrics.
type Readability struct {
	FleschScore    int    `json:"fleschScore"`
	GradeLevel     string `json:"gradeLevel"`
	ReadingMinutes int    `json:"readingMinutes"`
}

// TextStats holds basic counting statistics for a document.
type TextStats struct {
	Words      int `json:"words"`
	Characters int `json:"characters"`
	Sentences  int `json:"sentences"`
	Paragraphs int `json:"paragraphs"`
}

// AggregateReport is the full analysis result returned to callers.
// Every field is always populated; adapter outages surface only as
// empty or neutral sub-results.
type AggregateReport struct {
	Grammar     GrammarSummary  `json:"grammar"`
	Sentiment   SentimentResult `json:"sentiment"`
	Entities    EntityAnalysis  `json:"entities"`
	Readability Readability     `json:"readability"`
	Stats       TextStats       `json:"stats"`
}

// StoredReport is an aggregate report persisted for history listings.
type StoredReport struct {
	TextHash  string          `json:"textHash"`
	WordCount int             `json:"wordCount"`
	Report    AggregateReport `json:"report"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ApplyFindings splices each finding's first suggestion into text.
// Findings are applied in descending offset order so earlier edits do
// not invalidate later offsets; findings without suggestions or with
// out-of-range offsets are skipped.
func ApplyFindings(text string, findings []GrammarFinding) string {
	if len(findings) == 0 {
		return text
	}

	ordered := make([]GrammarFinding, len(findings))
	copy(ordered, findings)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Offset > ordered[j].Offset
	})

	corrected := text
	for _, f := range ordered {
		if len(f.Replacements) == 0 {
			continue
		}
		if f.Offset < 0 || f.Length < 0 || f.Offset+f.Length > len(corrected) {
			continue
		}
		corrected = corrected[:f.Offset] + f.Replacements[0] + corrected[f.Offset+f.Length:]
	}

	return corrected
}
