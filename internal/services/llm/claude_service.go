package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/legalaid/internal/common"
	"github.com/ternarybob/legalaid/internal/interfaces"
)

// convertMessagesToClaude converts generic messages to Claude message params.
// System messages are returned separately since Claude takes them as a top-level field.
func convertMessagesToClaude(messages []interfaces.Message) ([]anthropic.MessageParam, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	claudeMessages := make([]anthropic.MessageParam, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			if systemText == "" {
				systemText = msg.Content
			}
		case "assistant":
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		default:
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	if len(claudeMessages) == 0 {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}
	return claudeMessages, systemText, nil
}

// claudeBackend calls the Anthropic Messages API, keeping one client per API key
type claudeBackend struct {
	config *common.ClaudeConfig

	mu     sync.Mutex
	client anthropic.Client
	apiKey string
}

func newClaudeBackend(config *common.ClaudeConfig) *claudeBackend {
	return &claudeBackend{config: config}
}

func (b *claudeBackend) clientFor(apiKey string) anthropic.Client {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.apiKey != apiKey {
		b.client = anthropic.NewClient(option.WithAPIKey(apiKey))
		b.apiKey = apiKey
	}
	return b.client
}

func (b *claudeBackend) generate(ctx context.Context, apiKey string, request *interfaces.ContentRequest) (*interfaces.ContentResponse, error) {
	client := b.clientFor(apiKey)

	model := request.Model
	if model == "" {
		model = b.config.Model
	}

	claudeMessages, systemText, err := convertMessagesToClaude(request.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}
	if request.SystemInstruction != "" {
		systemText = request.SystemInstruction
	}

	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = b.config.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  claudeMessages,
	}

	temp := request.Temperature
	if temp <= 0 {
		temp = b.config.Temperature
	}
	if temp > 0 {
		params.Temperature = anthropic.Float(float64(temp))
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &interfaces.ContentResponse{
		Text:     text.String(),
		Provider: string(ProviderClaude),
		Model:    model,
	}, nil
}
