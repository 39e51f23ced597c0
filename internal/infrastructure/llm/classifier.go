package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"CrisisMonitor/internal/config"
	"CrisisMonitor/internal/domain"
	"CrisisMonitor/internal/ports"
)

const systemPrompt = "You are a news desk editor. You classify articles and always answer with a single JSON object."

// Classifier implements ports.Classifier backed by OpenAI-compatible APIs.
type Classifier struct {
	client   *openai.Client
	model    string
	language string
}

var _ ports.Classifier = (*Classifier)(nil)

// NewClassifier builds a client from configuration.
func NewClassifier(cfg config.ClassifierConfig) *Classifier {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	language := cfg.Language
	if language == "" {
		language = "Turkish"
	}

	return &Classifier{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		language: language,
	}
}

// Classify asks the model for a verdict on one article.
func (c *Classifier) Classify(ctx context.Context, req domain.ClassificationRequest) (domain.Classification, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req, c.language)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	})
	if err != nil {
		return domain.Classification{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Classification{}, ErrNoClassification
	}

	return ParseClassification(resp.Choices[0].Message.Content)
}

func buildPrompt(req domain.ClassificationRequest, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this news for topic '%s' in region '%s'.\n", req.Topic, req.Region)
	if focus := strings.TrimSpace(req.Focus); focus != "" {
		fmt.Fprintf(&b, "Focus rule: %s\n", focus)
	}
	b.WriteString("\n1. Decide whether the article is relevant to the topic, region and focus rule.\n")
	b.WriteString("2. Summarize in max 3 sentences.\n")
	b.WriteString("3. Extract the location as \"City, Country\".\n")
	b.WriteString("4. Assign severity (1-10).\n")
	fmt.Fprintf(&b, "5. Translate title and summary to %s.\n\n", language)
	fmt.Fprintf(&b, "Title: %s\nText: %s\n\n", req.Title, req.Text)
	b.WriteString(`Respond JSON:
{
  "is_relevant": true,
  "title_en": "Title",
  "summary_en": "Summary",
  "title_translated": "Translated title",
  "summary_translated": "Translated summary",
  "location_name": "City, Country",
  "severity": 8
}`)
	return b.String()
}
