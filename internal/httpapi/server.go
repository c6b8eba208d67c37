package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"DocForge/internal/domain"
	"DocForge/internal/infrastructure/extract"
	"DocForge/internal/infrastructure/llm"
	"DocForge/internal/keypool"
	"DocForge/internal/ports"
	"DocForge/internal/usecase"
)

const maxTextLength = 200_000

// Deps wires everything the HTTP surface exposes to the browser UI.
type Deps struct {
	Analyzer  *usecase.Analyzer
	Grammar   ports.GrammarChecker
	Sentiment ports.SentimentAnalyzer
	Entities  ports.EntityExtractor
	Completer ports.Completer
	Pool      *keypool.Pool
	Logger    *slog.Logger
}

// Server exposes the analysis and completion API consumed by the UI.
type Server struct {
	deps   Deps
	logger *slog.Logger
}

// New builds the API server.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{deps: deps, logger: logger}
}

// Router assembles all routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/api")
	api.POST("/analyze", s.handleAnalyze)
	api.POST("/grammar/check", s.handleGrammarCheck)
	api.POST("/grammar/correct", s.handleGrammarCorrect)
	api.POST("/sentiment", s.handleSentiment)
	api.POST("/entities", s.handleEntities)
	api.POST("/summarize", s.handleSummarize)
	api.POST("/complete", s.handleComplete)
	api.POST("/complete/stream", s.handleCompleteStream)
	api.GET("/keys/stats", s.handleKeyStats)
	api.GET("/reports", s.handleRecentReports)

	return r
}

type textRequest struct {
	Text     string `json:"text"`
	Format   string `json:"format"`
	Language string `json:"language"`
	MaxWords int    `json:"maxWords"`
}

// bindText validates the shared document-text payload and resolves HTML
// previews to plain text. Returns ok == false after writing the error.
func (s *Server) bindText(c *gin.Context) (string, *textRequest, bool) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return "", nil, false
	}
	if req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return "", nil, false
	}
	if len(req.Text) > maxTextLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text too long"})
		return "", nil, false
	}

	text := req.Text
	if req.Format == "html" || (req.Format == "" && extract.LooksLikeHTML(text)) {
		plain, err := extract.Text(text)
		if err != nil {
			s.logger.Warn("html extraction failed, analyzing raw content", "error", err)
		} else {
			text = plain
		}
	}

	return text, &req, true
}

func (s *Server) handleAnalyze(c *gin.Context) {
	text, _, ok := s.bindText(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.deps.Analyzer.AnalyzeDocument(c.Request.Context(), text))
}

func (s *Server) handleGrammarCheck(c *gin.Context) {
	text, req, ok := s.bindText(c)
	if !ok {
		return
	}

	findings := []domain.GrammarFinding{}
	if s.deps.Grammar != nil {
		findings = s.deps.Grammar.Check(c.Request.Context(), text, req.Language)
	}

	c.JSON(http.StatusOK, gin.H{"findings": findings, "errorCount": len(findings)})
}

func (s *Server) handleGrammarCorrect(c *gin.Context) {
	text, _, ok := s.bindText(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"corrected": s.deps.Analyzer.CorrectGrammar(c.Request.Context(), text),
	})
}

func (s *Server) handleSentiment(c *gin.Context) {
	text, _, ok := s.bindText(c)
	if !ok {
		return
	}

	result := domain.NeutralSentiment()
	if s.deps.Sentiment != nil {
		result = s.deps.Sentiment.Analyze(c.Request.Context(), text)
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleEntities(c *gin.Context) {
	text, _, ok := s.bindText(c)
	if !ok {
		return
	}

	result := domain.EntityAnalysis{Entities: []domain.Entity{}, Topics: []domain.Topic{}}
	if s.deps.Entities != nil {
		result = s.deps.Entities.Extract(c.Request.Context(), text)
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSummarize(c *gin.Context) {
	text, req, ok := s.bindText(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary": s.deps.Analyzer.Summarize(c.Request.Context(), text, req.MaxWords),
	})
}

type completeRequest struct {
	Prompt       string  `json:"prompt"`
	SystemPrompt string  `json:"systemPrompt"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"maxTokens"`
}

func (s *Server) handleComplete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}
	if s.deps.Completer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "completion provider unavailable"})
		return
	}

	text, err := s.deps.Completer.Complete(c.Request.Context(), ports.CompletionRequest{
		Prompt:       req.Prompt,
		SystemPrompt: req.SystemPrompt,
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
	})
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, llm.ErrProviderUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (s *Server) handleCompleteStream(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}
	if s.deps.Completer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "completion provider unavailable"})
		return
	}

	ch, err := s.deps.Completer.StreamComplete(c.Request.Context(), req.Prompt, req.SystemPrompt)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, llm.ErrProviderUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		chunk, open := <-ch
		if !open {
			c.SSEvent("done", "[DONE]")
			return false
		}
		if chunk.Err != nil {
			c.SSEvent("error", chunk.Err.Error())
			return false
		}
		c.SSEvent("message", chunk.Text)
		return true
	})
}

func (s *Server) handleKeyStats(c *gin.Context) {
	if s.deps.Pool == nil {
		c.JSON(http.StatusOK, keypool.Stats{Requests: []int{}})
		return
	}
	c.JSON(http.StatusOK, s.deps.Pool.Stats())
}

func (s *Server) handleRecentReports(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	reports, err := s.deps.Analyzer.RecentReports(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("report listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report history unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}
