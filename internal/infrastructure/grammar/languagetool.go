package grammar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"DocForge/internal/domain"
	"DocForge/internal/ports"
)

const (
	// DefaultLanguage is used when callers do not pick one.
	DefaultLanguage = "en-US"

	maxReplacements = 5
)

// Checker talks to a LanguageTool-compatible grammar service. It never
// fails past its boundary: transport or decoding problems yield an empty
// finding list.
type Checker struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

var _ ports.GrammarChecker = (*Checker)(nil)

// NewChecker wires the service base URL (e.g. https://api.languagetool.org/v2).
func NewChecker(baseURL string, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

type checkResponse struct {
	Matches []struct {
		Message      string `json:"message"`
		ShortMessage string `json:"shortMessage"`
		Replacements []struct {
			Value string `json:"value"`
		} `json:"replacements"`
		Offset int `json:"offset"`
		Length int `json:"length"`
		Rule   struct {
			ID       string `json:"id"`
			Category struct {
				Name string `json:"name"`
			} `json:"category"`
		} `json:"rule"`
	} `json:"matches"`
}

// Check returns normalized grammar findings for text, empty on any failure.
func (c *Checker) Check(ctx context.Context, text, language string) []domain.GrammarFinding {
	if text == "" {
		return []domain.GrammarFinding{}
	}
	if language == "" {
		language = DefaultLanguage
	}

	parsed, err := c.check(ctx, text, language)
	if err != nil {
		c.logger.Warn("grammar check failed, returning no findings", "error", err)
		return []domain.GrammarFinding{}
	}

	// LanguageTool reports offset/length in characters; findings carry
	// byte positions so splicing stays exact on non-ASCII text.
	runeStarts := runeByteStarts(text)

	findings := make([]domain.GrammarFinding, 0, len(parsed.Matches))
	for _, m := range parsed.Matches {
		if m.Offset < 0 || m.Length < 0 || m.Offset+m.Length >= len(runeStarts) {
			continue
		}
		start := runeStarts[m.Offset]
		end := runeStarts[m.Offset+m.Length]

		replacements := make([]string, 0, maxReplacements)
		for _, r := range m.Replacements {
			if len(replacements) == maxReplacements {
				break
			}
			replacements = append(replacements, r.Value)
		}

		findings = append(findings, domain.GrammarFinding{
			Message:      m.Message,
			ShortMessage: m.ShortMessage,
			Replacements: replacements,
			Offset:       start,
			Length:       end - start,
			RuleID:       m.Rule.ID,
			Category:     m.Rule.Category.Name,
			Flagged:      text[start:end],
		})
	}

	return findings
}

// runeByteStarts returns the byte index of every rune in text plus a
// trailing len(text) entry, so entry i maps character position i to its
// byte position.
func runeByteStarts(text string) []int {
	starts := make([]int, 0, len(text)+1)
	for i := range text {
		starts = append(starts, i)
	}
	return append(starts, len(text))
}

// Correct applies the first suggestion of every finding to text, identity
// when there are no findings.
func (c *Checker) Correct(ctx context.Context, text string) string {
	return domain.ApplyFindings(text, c.Check(ctx, text, DefaultLanguage))
}

func (c *Checker) check(ctx context.Context, text, language string) (*checkResponse, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("language", language)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var parsed checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &parsed, nil
}
