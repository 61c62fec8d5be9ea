// Package judge turns an LLM provider into a structured-judgement
// capability: a prompt plus a JSON schema in, a decoded and validated
// Go value out.
package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stayscout/stayscout/internal/logger"
	"github.com/stayscout/stayscout/pkg/llm"
)

// ErrBadJudgement indicates the model responded but its output could
// not be decoded or failed validation. Callers treat this as a
// per-candidate failure, not a pipeline failure.
var ErrBadJudgement = errors.New("judgement output could not be parsed")

// Judge produces a structured judgement conforming to schema and
// decodes it into out.
type Judge interface {
	Judge(ctx context.Context, systemPrompt, userPrompt string, schema map[string]any, out any) error
}

// Config controls judgement requests.
type Config struct {
	MaxTokens   int
	Temperature float64
	MaxRetries  int
	StrictMode  bool
}

// DefaultConfig returns conservative defaults. Temperature is kept at
// zero so repeated judgements of the same content agree.
func DefaultConfig() Config {
	return Config{
		MaxTokens:  4096,
		MaxRetries: 2,
	}
}

// LLMJudge implements Judge on top of an llm.Provider.
type LLMJudge struct {
	provider llm.Provider
	config   Config
	validate *validator.Validate
}

// New creates a judge backed by the given provider.
func New(provider llm.Provider, cfg Config) (*LLMJudge, error) {
	if provider == nil {
		return nil, fmt.Errorf("judge requires an LLM provider")
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}

	return &LLMJudge{
		provider: provider,
		config:   cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// Judge sends the prompts to the provider and decodes the JSON reply
// into out. Decode and validation failures return ErrBadJudgement;
// transport failures are returned as-is. Rate limits are retried with
// a short backoff.
func (j *LLMJudge) Judge(ctx context.Context, systemPrompt, userPrompt string, schema map[string]any, out any) error {
	req := llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: userPrompt},
		},
		MaxTokens:   j.config.MaxTokens,
		Temperature: j.config.Temperature,
		JSONSchema:  schema,
		StrictMode:  j.config.StrictMode,
	}

	var resp *llm.Response
	var err error

	attempts := j.config.MaxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		logger.Debug("judge calling LLM",
			"provider", j.provider.Name(),
			"model", j.provider.Model(),
			"attempt", attempt)

		resp, err = j.provider.Execute(ctx, req)
		if err == nil {
			break
		}
		if !isRetryable(err) || attempt == attempts {
			return fmt.Errorf("judgement request failed: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}

	content := StripMarkdownCodeBlock(resp.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		logger.Debug("judge failed to decode output", "error", err)
		return fmt.Errorf("%w: %v (output: %s)", ErrBadJudgement, err, truncateForError(resp.Content))
	}

	if err := j.validate.Struct(out); err != nil {
		logger.Debug("judge output failed validation", "error", err)
		return fmt.Errorf("%w: %v", ErrBadJudgement, err)
	}

	return nil
}

// Provider returns the underlying LLM provider.
func (j *LLMJudge) Provider() llm.Provider {
	return j.provider
}

// isRetryable reports whether an error should trigger a retry.
// Only rate limits are transient; decode failures are not retried
// since the model is unlikely to do better on a second pass.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "429")
}

// StripMarkdownCodeBlock removes markdown code block wrappers from JSON
// responses. Some models wrap their output in ```json ... ``` blocks.
func StripMarkdownCodeBlock(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	} else {
		return s
	}

	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}

// truncateForError truncates content for error messages.
func truncateForError(s string) string {
	if len(s) <= 200 {
		return s
	}
	return s[:200] + "..."
}

var _ Judge = (*LLMJudge)(nil)
