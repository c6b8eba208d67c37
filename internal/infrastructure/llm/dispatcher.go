package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"DocForge/internal/config"
	"DocForge/internal/keypool"
	"DocForge/internal/ports"
)

// ErrProviderUnavailable is returned when no credential exists or both
// completion attempts fail.
var ErrProviderUnavailable = errors.New("completion provider unavailable")

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000

	// maxStreamLine bounds a single SSE frame; provider deltas are small
	// but a burst of tokens can arrive in one line.
	maxStreamLine = 1 << 20
)

// Dispatcher issues completion requests against an OpenAI-compatible API,
// drawing credentials from a load-balanced pool.
type Dispatcher struct {
	endpoint string
	model    string
	pool     *keypool.Pool
	client   *http.Client
	// streamClient has no overall timeout: a client deadline would kill
	// long-running generations mid-stream.
	streamClient *http.Client
	logger       *slog.Logger
}

var _ ports.Completer = (*Dispatcher)(nil)

// NewDispatcher builds a dispatcher from configuration and a credential pool.
func NewDispatcher(cfg config.CompletionsConfig, pool *keypool.Pool, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		pool:         pool,
		client:       &http.Client{Timeout: 60 * time.Second},
		streamClient: &http.Client{},
		logger:       logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type streamFrame struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Complete returns the generated text for a single request. A failed
// attempt is reported to the pool and retried exactly once with a fresh
// credential draw; a second failure surfaces as ErrProviderUnavailable.
func (d *Dispatcher) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	key, ok := d.pool.Next()
	if !ok {
		return "", fmt.Errorf("%w: no credentials configured", ErrProviderUnavailable)
	}

	text, err := d.attempt(ctx, key, req)
	if err == nil {
		d.pool.ReportSuccess(key)
		return text, nil
	}
	d.pool.ReportError(key)
	d.logger.Warn("completion attempt failed, retrying", "error", err)

	retryKey, ok := d.pool.Next()
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	text, retryErr := d.attempt(ctx, retryKey, req)
	if retryErr == nil {
		d.pool.ReportSuccess(retryKey)
		return text, nil
	}
	d.pool.ReportError(retryKey)

	return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, retryErr)
}

func (d *Dispatcher) attempt(ctx context.Context, key string, req ports.CompletionRequest) (string, error) {
	body, err := d.buildBody(req.Prompt, req.SystemPrompt, req.Temperature, req.MaxTokens, false)
	if err != nil {
		return "", err
	}

	httpReq, err := d.newRequest(ctx, key, body)
	if err != nil {
		return "", err
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("provider error %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}

// StreamComplete issues a single streaming request and delivers text
// fragments as they arrive. There is no retry: once fragments have been
// handed to the caller a replay would duplicate output, so a mid-stream
// break is delivered via StreamChunk.Err instead.
func (d *Dispatcher) StreamComplete(ctx context.Context, prompt, systemPrompt string) (<-chan ports.StreamChunk, error) {
	key, ok := d.pool.Next()
	if !ok {
		return nil, fmt.Errorf("%w: no credentials configured", ErrProviderUnavailable)
	}

	body, err := d.buildBody(prompt, systemPrompt, 0, 0, true)
	if err != nil {
		d.pool.ReportError(key)
		return nil, err
	}

	httpReq, err := d.newRequest(ctx, key, body)
	if err != nil {
		d.pool.ReportError(key)
		return nil, err
	}

	resp, err := d.streamClient.Do(httpReq)
	if err != nil {
		d.pool.ReportError(key)
		return nil, fmt.Errorf("open stream: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		d.pool.ReportError(key)
		return nil, fmt.Errorf("provider error %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	d.pool.ReportSuccess(key)

	ch := make(chan ports.StreamChunk)
	go d.pump(ctx, resp.Body, ch)
	return ch, nil
}

// pump scans SSE frames from body into ch until the [DONE] sentinel, a
// read error, or consumer cancellation. Malformed frames are skipped.
func (d *Dispatcher) pump(ctx context.Context, body io.ReadCloser, ch chan<- ports.StreamChunk) {
	defer close(ch)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), maxStreamLine)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			return
		}

		var frame streamFrame
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			continue
		}
		if len(frame.Choices) == 0 || frame.Choices[0].Delta.Content == "" {
			continue
		}

		select {
		case ch <- ports.StreamChunk{Text: frame.Choices[0].Delta.Content}:
		case <-ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil {
		select {
		case ch <- ports.StreamChunk{Err: fmt.Errorf("read stream: %w", err)}:
		case <-ctx.Done():
		}
	}
}

func (d *Dispatcher) buildBody(prompt, systemPrompt string, temperature float64, maxTokens int, stream bool) ([]byte, error) {
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	var messages []chatMessage
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(chatRequest{
		Model:       d.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      stream,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal completion payload: %w", err)
	}

	return body, nil
}

func (d *Dispatcher) newRequest(ctx context.Context, key string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
