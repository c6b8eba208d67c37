package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"DocForge/internal/domain"
	"DocForge/internal/ports"
)

// Word lists for the local heuristic; a token matches when it contains
// one of these as a substring.
var (
	positiveWords = []string{
		"good", "great", "excellent", "amazing", "wonderful", "best",
		"love", "happy", "fantastic", "perfect", "awesome", "brilliant",
		"positive", "success", "beautiful", "enjoy",
	}
	negativeWords = []string{
		"bad", "terrible", "awful", "worst", "hate", "poor", "horrible",
		"wrong", "sad", "angry", "negative", "failure", "disappointing",
		"broken", "ugly", "problem",
	}
)

// Analyzer classifies text sentiment via a hosted NLP inference service,
// degrading to a lexicon heuristic when the service is unconfigured or
// unreachable. It never fails past its boundary.
type Analyzer struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.SentimentAnalyzer = (*Analyzer)(nil)

// NewAnalyzer wires the inference endpoint and credential.
func NewAnalyzer(endpoint, apiKey string, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

// Analyze returns the sentiment of text. Empty input is neutral.
func (a *Analyzer) Analyze(ctx context.Context, text string) domain.SentimentResult {
	if strings.TrimSpace(text) == "" {
		return domain.NeutralSentiment()
	}

	if a.apiKey == "" {
		return lexiconSentiment(text)
	}

	result, err := a.remote(ctx, text)
	if err != nil {
		a.logger.Warn("sentiment service failed, using lexicon fallback", "error", err)
		return lexiconSentiment(text)
	}

	return result
}

func (a *Analyzer) remote(ctx context.Context, text string) (domain.SentimentResult, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return domain.SentimentResult{}, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.SentimentResult{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return domain.SentimentResult{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.SentimentResult{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	// Response shape: [[{"label":"POSITIVE","score":0.99}, ...]]
	var parsed [][]struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.SentimentResult{}, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed) == 0 || len(parsed[0]) == 0 {
		return domain.SentimentResult{}, fmt.Errorf("empty classification")
	}

	top := parsed[0][0]
	for _, candidate := range parsed[0][1:] {
		if candidate.Score > top.Score {
			top = candidate
		}
	}

	label := domain.SentimentNeutral
	switch strings.ToUpper(top.Label) {
	case "POSITIVE":
		label = domain.SentimentPositive
	case "NEGATIVE":
		label = domain.SentimentNegative
	}

	return domain.SentimentResult{
		Label:      label,
		Score:      int(math.Round(top.Score * 100)),
		Confidence: domain.ConfidenceForScore(top.Score),
	}, nil
}

// lexiconSentiment maps the net count of positive vs negative tokens to a
// sentiment: score = min(|net| * 20, 80), neutral 50/Low on a zero net.
func lexiconSentiment(text string) domain.SentimentResult {
	net := 0
	for _, token := range strings.Fields(strings.ToLower(text)) {
		if containsAny(token, positiveWords) {
			net++
		}
		if containsAny(token, negativeWords) {
			net--
		}
	}

	if net == 0 {
		return domain.NeutralSentiment()
	}

	score := net
	if score < 0 {
		score = -score
	}
	score *= 20
	if score > 80 {
		score = 80
	}

	label := domain.SentimentPositive
	if net < 0 {
		label = domain.SentimentNegative
	}

	return domain.SentimentResult{
		Label:      label,
		Score:      score,
		Confidence: domain.ConfidenceForScore(float64(score) / 100),
	}
}

func containsAny(token string, words []string) bool {
	for _, w := range words {
		if strings.Contains(token, w) {
			return true
		}
	}
	return false
}
