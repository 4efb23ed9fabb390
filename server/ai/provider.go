// Package ai wraps the OpenAI-compatible API used for structured
// insight generation.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Category identifies one insight call category. The deployment issues
// a separate API credential per category so upstream quotas are tracked
// independently; pacing is also keyed by category.
type Category string

const (
	CategoryAggregate    Category = "aggregate"
	CategoryIndividual   Category = "individual"
	CategoryPatterns     Category = "patterns"
	CategoryCorrelations Category = "correlations"
)

// Categories lists all call categories.
var Categories = []Category{CategoryAggregate, CategoryIndividual, CategoryPatterns, CategoryCorrelations}

// Config holds the AI provider configuration.
type Config struct {
	BaseURL string
	// APIKey is the base credential, used for any category without its own.
	APIKey       string
	CategoryKeys map[Category]string
	Model        string
	MaxRetries   int
	Timeout      time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "https://api.openai.com/v1",
		Model:      "gpt-4o",
		MaxRetries: 3,
		Timeout:    60 * time.Second,
	}
}

// Provider provides structured chat completions, one client per credential.
type Provider struct {
	clients map[Category]*openai.Client
	config  *Config
}

// NewProvider creates a new AI provider.
func NewProvider(cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.APIKey == "" && len(cfg.CategoryKeys) == 0 {
		return nil, fmt.Errorf("at least one API key is required")
	}

	clients := make(map[Category]*openai.Client, len(Categories))
	for _, category := range Categories {
		key := cfg.APIKey
		if categoryKey, ok := cfg.CategoryKeys[category]; ok && categoryKey != "" {
			key = categoryKey
		}
		clientConfig := openai.DefaultConfig(key)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
		clients[category] = openai.NewClientWithConfig(clientConfig)
	}

	return &Provider{clients: clients, config: cfg}, nil
}

// StructuredCompletion submits a system/user prompt pair and returns
// the raw JSON content of a response constrained by schema.
func (p *Provider) StructuredCompletion(ctx context.Context, category Category, systemPrompt, userPrompt, schemaName string, schema *Schema) (string, error) {
	client, ok := p.clients[category]
	if !ok {
		return "", fmt.Errorf("unknown call category: %s", category)
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Strict: true,
				Schema: schema,
			},
		},
	}

	var content string
	err := p.doWithRetry(ctx, func() error {
		start := time.Now()
		resp, err := client.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty chat response")
		}
		content = resp.Choices[0].Message.Content
		slog.Debug("structured completion finished",
			"category", category,
			"schema", schemaName,
			"latency_ms", time.Since(start).Milliseconds(),
			"tokens", resp.Usage.TotalTokens)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("structured completion failed: %w", err)
	}

	return stripMarkdownFences(content), nil
}

var fenceRegexp = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// stripMarkdownFences unwraps a JSON payload from a markdown code block.
// Schema mode should never produce one, but weaker models sometimes do.
func stripMarkdownFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		if matches := fenceRegexp.FindStringSubmatch(content); len(matches) > 1 {
			return matches[1]
		}
	}
	return content
}

// doWithRetry executes a function with exponential backoff retry.
func (p *Provider) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < p.config.MaxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < p.config.MaxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("AI request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}
