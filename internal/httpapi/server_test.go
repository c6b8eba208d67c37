package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"DocForge/internal/domain"
	"DocForge/internal/keypool"
	"DocForge/internal/logging"
	"DocForge/internal/ports"
	"DocForge/internal/usecase"
)

type staticCompleter struct {
	text   string
	chunks []string
}

func (s *staticCompleter) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	return s.text, nil
}

func (s *staticCompleter) StreamComplete(ctx context.Context, prompt, systemPrompt string) (<-chan ports.StreamChunk, error) {
	ch := make(chan ports.StreamChunk)
	go func() {
		defer close(ch)
		for _, chunk := range s.chunks {
			ch <- ports.StreamChunk{Text: chunk}
		}
	}()
	return ch, nil
}

func newTestServer() *Server {
	gin.SetMode(gin.TestMode)
	logger := logging.New("error")

	return New(Deps{
		Analyzer:  usecase.NewAnalyzer(usecase.AnalyzerDeps{Logger: logger}),
		Completer: &staticCompleter{text: "completion", chunks: []string{"a", "b"}},
		Pool:      keypool.New([]string{"key-a", "key-b"}),
		Logger:    logger,
	})
}

// closeNotifyRecorder adds the http.CloseNotifier method gin's Stream
// requires, which httptest.ResponseRecorder does not implement.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool {
	return r.closed
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := &closeNotifyRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
	router.ServeHTTP(w, req)
	return w.ResponseRecorder
}

func TestAnalyzeEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestServer().Router()
	w := postJSON(t, router, "/api/analyze", `{"text":"A short sentence for analysis."}`)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}

	var report domain.AggregateReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Stats.Words != 5 {
		t.Fatalf("unexpected word count: %d", report.Stats.Words)
	}
	if report.Sentiment.Label == "" {
		t.Fatal("sentiment field missing from report")
	}
}

func TestAnalyzeEndpointExtractsHTML(t *testing.T) {
	t.Parallel()

	router := newTestServer().Router()
	w := postJSON(t, router, "/api/analyze",
		`{"text":"<html><body><p>Three words here.</p></body></html>","format":"html"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}

	var report domain.AggregateReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Stats.Words != 3 {
		t.Fatalf("markup leaked into analysis, word count %d", report.Stats.Words)
	}
}

func TestAnalyzeEndpointRequiresText(t *testing.T) {
	t.Parallel()

	router := newTestServer().Router()
	if w := postJSON(t, router, "/api/analyze", `{"text":""}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if w := postJSON(t, router, "/api/analyze", `not json`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCompleteEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestServer().Router()
	w := postJSON(t, router, "/api/complete", `{"prompt":"write a title"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "completion") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestCompleteStreamEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestServer().Router()
	w := postJSON(t, router, "/api/complete/stream", `{"prompt":"write a title"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}

	body := w.Body.String()
	if !strings.Contains(body, "a") || !strings.Contains(body, "b") {
		t.Fatalf("fragments missing from stream: %s", body)
	}
	if !strings.Contains(body, "[DONE]") {
		t.Fatalf("missing termination event: %s", body)
	}
}

func TestKeyStatsEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestServer().Router()
	req := httptest.NewRequest(http.MethodGet, "/api/keys/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}

	var stats keypool.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 2 || stats.Available != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestSentimentEndpointWithoutAdapter(t *testing.T) {
	t.Parallel()

	router := newTestServer().Router()
	w := postJSON(t, router, "/api/sentiment", `{"text":"whatever"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("analysis surface must not fail, got %d", w.Code)
	}

	var result domain.SentimentResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result != domain.NeutralSentiment() {
		t.Fatalf("expected neutral default, got %+v", result)
	}
}
