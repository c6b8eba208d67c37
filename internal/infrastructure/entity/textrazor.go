package entity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"DocForge/internal/domain"
	"DocForge/internal/ports"
)

const (
	maxEntities = 20
	maxTopics   = 10
)

// Extractor pulls named entities and topics from a TextRazor-compatible
// service. Missing configuration or any upstream failure yields empty
// lists; the boundary never fails.
type Extractor struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.EntityExtractor = (*Extractor)(nil)

// NewExtractor wires the service endpoint and credential.
func NewExtractor(endpoint, apiKey string, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

type razorResponse struct {
	Response struct {
		Entities []struct {
			MatchedText     string   `json:"matchedText"`
			Type            []string `json:"type"`
			RelevanceScore  float64  `json:"relevanceScore"`
			ConfidenceScore float64  `json:"confidenceScore"`
			WikiLink        string   `json:"wikiLink"`
		} `json:"entities"`
		Topics []struct {
			Label string  `json:"label"`
			Score float64 `json:"score"`
		} `json:"topics"`
	} `json:"response"`
}

// Extract returns up to 20 entities and 10 topics ordered by provider score.
func (e *Extractor) Extract(ctx context.Context, text string) domain.EntityAnalysis {
	empty := domain.EntityAnalysis{Entities: []domain.Entity{}, Topics: []domain.Topic{}}

	if e.apiKey == "" || strings.TrimSpace(text) == "" {
		return empty
	}

	parsed, err := e.analyze(ctx, text)
	if err != nil {
		e.logger.Warn("entity extraction failed, returning empty analysis", "error", err)
		return empty
	}

	entities := make([]domain.Entity, 0, len(parsed.Response.Entities))
	seen := map[string]bool{}
	for _, ent := range parsed.Response.Entities {
		if ent.MatchedText == "" || seen[ent.MatchedText] {
			continue
		}
		seen[ent.MatchedText] = true

		entityType := "Unknown"
		if len(ent.Type) > 0 {
			entityType = ent.Type[0]
		}

		entities = append(entities, domain.Entity{
			Text:       ent.MatchedText,
			Type:       entityType,
			Relevance:  clampScore(ent.RelevanceScore * 100),
			Confidence: clampScore(ent.ConfidenceScore * 10),
			Link:       ent.WikiLink,
		})
	}
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].Relevance > entities[j].Relevance
	})
	if len(entities) > maxEntities {
		entities = entities[:maxEntities]
	}

	topics := make([]domain.Topic, 0, len(parsed.Response.Topics))
	for _, topic := range parsed.Response.Topics {
		if topic.Label == "" {
			continue
		}
		topics = append(topics, domain.Topic{
			Label: topic.Label,
			Score: clampScore(topic.Score * 100),
		})
	}
	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].Score > topics[j].Score
	})
	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}

	return domain.EntityAnalysis{Entities: entities, Topics: topics}
}

func (e *Extractor) analyze(ctx context.Context, text string) (*razorResponse, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("extractors", "entities,topics")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("X-TextRazor-Key", e.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var parsed razorResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &parsed, nil
}

func clampScore(v float64) int {
	rounded := int(math.Round(v))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}
