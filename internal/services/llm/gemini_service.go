package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/legalaid/internal/common"
	"github.com/ternarybob/legalaid/internal/interfaces"
	"google.golang.org/genai"
)

// convertMessagesToGemini converts generic messages to Gemini contents.
// System messages are returned separately as the system instruction.
func convertMessagesToGemini(messages []interfaces.Message) ([]*genai.Content, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	contents := make([]*genai.Content, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		role := genai.RoleUser
		if msg.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}

	if len(contents) == 0 {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}
	return contents, systemText, nil
}

// geminiBackend calls the Gemini API, keeping one client per API key
type geminiBackend struct {
	config *common.GeminiConfig

	mu     sync.Mutex
	client *genai.Client
	apiKey string
}

func newGeminiBackend(config *common.GeminiConfig) *geminiBackend {
	return &geminiBackend{config: config}
}

func (b *geminiBackend) clientFor(ctx context.Context, apiKey string) (*genai.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client != nil && b.apiKey == apiKey {
		return b.client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	b.client = client
	b.apiKey = apiKey
	return client, nil
}

func (b *geminiBackend) generate(ctx context.Context, apiKey string, request *interfaces.ContentRequest) (*interfaces.ContentResponse, error) {
	client, err := b.clientFor(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	model := request.Model
	if model == "" {
		model = b.config.Model
	}

	contents, systemText, err := convertMessagesToGemini(request.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}
	if request.SystemInstruction != "" {
		systemText = request.SystemInstruction
	}

	temp := request.Temperature
	if temp <= 0 {
		temp = b.config.Temperature
	}

	config := &genai.GenerateContentConfig{}
	if temp > 0 {
		config.Temperature = genai.Ptr(temp)
	}
	if request.MaxTokens > 0 {
		config.MaxOutputTokens = int32(request.MaxTokens)
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}

	return &interfaces.ContentResponse{
		Text:     resp.Text(),
		Provider: string(ProviderGemini),
		Model:    model,
	}, nil
}
