// internal/common/ai/categorizer.go
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"listingreel-workers/internal/common/logger"
)

// Categorizer maps detected image labels onto one of the configured
// real-estate categories.
type Categorizer interface {
	Categorize(ctx context.Context, labels []string, categories []string) (string, error)
}

type openAICategorizer struct {
	log     logger.Logger
	client  openai.Client
	model   string
	timeout time.Duration
}

type categorizeResponse struct {
	Category string `json:"category"`
}

// NewCategorizer creates an OpenAI-backed Categorizer.
func NewCategorizer(log logger.Logger, apiKey, model string, timeout time.Duration) Categorizer {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &openAICategorizer{
		log:     log.WithFields(map[string]interface{}{"service": "ai.Categorizer"}),
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		timeout: timeout,
	}
}

func (c *openAICategorizer) Categorize(ctx context.Context, labels []string, categories []string) (string, error) {
	if len(labels) == 0 {
		return "Other", nil
	}

	payload := map[string]interface{}{
		"labels":     labels,
		"categories": categories,
	}
	payloadBytes, _ := json.Marshal(payload)

	systemPrompt := "You are a real-estate photo tagger. Pick the single best category for a photo given its detected labels. Output JSON only."
	userPrompt := "Choose exactly one category from the provided list. " +
		"If nothing fits, answer \"Other\".\n\n" +
		`Output format: {"category":"..."}` + "\n\n" +
		"Input:\n" + string(payloadBytes)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model:       c.model,
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("categorize completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("categorize: model returned no choices")
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if raw == "" {
		return "", fmt.Errorf("categorize: model returned empty content")
	}

	var parsed categorizeResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", fmt.Errorf("categorize: parse response %q: %w", raw, err)
	}

	category := strings.TrimSpace(parsed.Category)
	if category == "" {
		return "Other", nil
	}

	for _, known := range categories {
		if strings.EqualFold(category, known) {
			return known, nil
		}
	}

	c.log.Debug("Model category outside configured list", map[string]interface{}{
		"category": category,
	})
	return "Other", nil
}
