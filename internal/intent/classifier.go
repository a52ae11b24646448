package intent

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
)

// Classifier analyzes user text with an LLM and falls back to keyword
// matching when the model is unavailable, times out, or returns
// something unusable. Analyze never returns an error: the conversation
// must keep moving even when every model is down.
type Classifier struct {
	llm     LLMClient
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewClassifier creates a classifier. A nil llm yields a keyword-only
// classifier, which is how the basic dialogue tier runs.
func NewClassifier(llm LLMClient, model string, timeout time.Duration, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Classifier{
		llm:     llm,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Analyze classifies one piece of user text in the given conversation
// context.
func (c *Classifier) Analyze(ctx context.Context, input string, convCtx Context) Analysis {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Analysis{Intent: IntentUnclear, Confidence: 0, CorrectedText: input, Source: SourceKeywords}
	}

	if c == nil || c.llm == nil {
		return MatchKeywords(trimmed, convCtx)
	}

	llmCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.llm.Complete(llmCtx, LLMRequest{
		Model:       c.model,
		System:      []string{systemPrompt(convCtx)},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: userPrompt(trimmed, convCtx)}},
		MaxTokens:   512,
		Temperature: 0.1,
	})
	if err != nil {
		c.logger.Warn("intent classification fell back to keywords",
			"context", string(convCtx),
			"error", err.Error(),
		)
		return MatchKeywords(trimmed, convCtx)
	}

	analysis, ok := parseAnalysis(resp.Text, trimmed)
	if !ok {
		c.logger.Warn("intent response was not parseable, falling back to keywords",
			"context", string(convCtx),
		)
		return MatchKeywords(trimmed, convCtx)
	}
	return analysis
}

// parseAnalysis pulls the JSON object out of the model's reply. Models
// wrap JSON in prose or code fences often enough that we slice between
// the first '{' and the last '}' before unmarshalling.
func parseAnalysis(text, originalInput string) (Analysis, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return Analysis{}, false
	}

	var decoded struct {
		Intent        string  `json:"intent"`
		Confidence    float64 `json:"confidence"`
		CorrectedText string  `json:"correctedText"`
		Explanation   string  `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &decoded); err != nil {
		return Analysis{}, false
	}

	analysis := Analysis{
		Intent:        normalizeIntent(decoded.Intent),
		Confidence:    clamp01(decoded.Confidence),
		CorrectedText: decoded.CorrectedText,
		Explanation:   decoded.Explanation,
		Source:        SourceLLM,
	}
	if strings.TrimSpace(analysis.CorrectedText) == "" {
		analysis.CorrectedText = originalInput
	}
	return analysis, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
