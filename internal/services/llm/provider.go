package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/common"
	"github.com/ternarybob/legalaid/internal/interfaces"
	"golang.org/x/time/rate"
)

// ProviderType represents the hosted model provider
type ProviderType string

const (
	// ProviderGemini uses Google Gemini API
	ProviderGemini ProviderType = "gemini"
	// ProviderClaude uses Anthropic Claude API
	ProviderClaude ProviderType = "claude"
)

var (
	// ErrCredentialMissing means no source in the credential chain holds a key
	ErrCredentialMissing = errors.New("api credential not configured")
	// ErrEmptyResponse means the provider answered without any text
	ErrEmptyResponse = errors.New("empty response from provider")
	// ErrTimeout means the call did not complete within the configured timeout
	ErrTimeout = errors.New("provider call timed out")
)

// CredentialResolver looks up a named credential
type CredentialResolver interface {
	Resolve(ctx context.Context, name string) (string, string, error)
}

// backend performs one provider call with an already-resolved key
type backend interface {
	generate(ctx context.Context, apiKey string, request *interfaces.ContentRequest) (*interfaces.ContentResponse, error)
}

// ProviderFactory routes generation requests to the configured provider.
// Credentials are resolved on every call, so a key added at runtime is picked up
// without a restart. Each request is a single call: no retry, no streaming.
type ProviderFactory struct {
	llmConfig    *common.LLMConfig
	geminiConfig *common.GeminiConfig
	claudeConfig *common.ClaudeConfig
	credentials  CredentialResolver
	logger       arbor.ILogger

	timeout  time.Duration
	backends map[ProviderType]backend
	limiters map[ProviderType]*rate.Limiter
}

var _ interfaces.ContentGenerator = (*ProviderFactory)(nil)

// NewProviderFactory creates a new provider factory
func NewProviderFactory(config *common.Config, credentials CredentialResolver, logger arbor.ILogger) *ProviderFactory {
	return &ProviderFactory{
		llmConfig:    &config.LLM,
		geminiConfig: &config.Gemini,
		claudeConfig: &config.Claude,
		credentials:  credentials,
		logger:       logger,
		timeout:      config.LLMTimeout(),
		backends: map[ProviderType]backend{
			ProviderGemini: newGeminiBackend(&config.Gemini),
			ProviderClaude: newClaudeBackend(&config.Claude),
		},
		limiters: map[ProviderType]*rate.Limiter{
			ProviderGemini: newLimiter(config.Gemini.RateLimit),
			ProviderClaude: newLimiter(config.Claude.RateLimit),
		},
	}
}

// newLimiter allows one call per interval; an empty or zero interval disables limiting
func newLimiter(interval string) *rate.Limiter {
	d := common.ParseDurationOr(interval, 0)
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

// DetectProvider determines the provider type from a model string.
// Model strings can be:
// - "claude-3-5-haiku-latest" or "claude/..." -> Claude
// - "gemini-2.0-flash" or "gemini/..." -> Gemini
// - Empty string -> uses default provider from config
func (f *ProviderFactory) DetectProvider(model string) ProviderType {
	model = strings.ToLower(model)

	switch {
	case strings.HasPrefix(model, "claude/"), strings.HasPrefix(model, "anthropic/"), strings.HasPrefix(model, "claude-"):
		return ProviderClaude
	case strings.HasPrefix(model, "gemini/"), strings.HasPrefix(model, "google/"), strings.HasPrefix(model, "gemini-"):
		return ProviderGemini
	}

	if ProviderType(strings.ToLower(f.llmConfig.DefaultProvider)) == ProviderClaude {
		return ProviderClaude
	}
	return ProviderGemini
}

// NormalizeModel removes provider prefix from model name if present
func (f *ProviderFactory) NormalizeModel(model string) string {
	for _, prefix := range []string{"claude/", "anthropic/", "gemini/", "google/"} {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return model[len(prefix):]
		}
	}
	return model
}

// CredentialName returns the credential looked up for a provider
func (f *ProviderFactory) CredentialName(provider ProviderType) string {
	if provider == ProviderClaude {
		return f.claudeConfig.CredentialName
	}
	return f.geminiConfig.CredentialName
}

// GenerateContent makes exactly one call to the provider selected by request.Model
func (f *ProviderFactory) GenerateContent(ctx context.Context, request *interfaces.ContentRequest) (*interfaces.ContentResponse, error) {
	provider := f.DetectProvider(request.Model)
	credentialName := f.CredentialName(provider)

	apiKey, source, err := f.credentials.Resolve(ctx, credentialName)
	if err != nil {
		f.logFailure(provider, ErrCredentialMissing, 0)
		return nil, fmt.Errorf("%w: %s", ErrCredentialMissing, credentialName)
	}

	call := *request
	call.Model = f.NormalizeModel(request.Model)

	callCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()

	if limiter := f.limiters[provider]; limiter != nil {
		if err := limiter.Wait(callCtx); err != nil {
			err = f.classify(callCtx, err)
			f.logFailure(provider, err, time.Since(start))
			return nil, err
		}
	}

	f.logger.Debug().
		Str("provider", string(provider)).
		Str("model", call.Model).
		Str("credential_source", source).
		Int("message_count", len(call.Messages)).
		Msg("Generating content with provider")

	resp, err := f.backends[provider].generate(callCtx, apiKey, &call)
	if err != nil {
		err = f.classify(callCtx, err)
		f.logFailure(provider, err, time.Since(start))
		return nil, err
	}

	resp.Text = strings.TrimSpace(resp.Text)
	if resp.Text == "" {
		f.logFailure(provider, ErrEmptyResponse, time.Since(start))
		return nil, ErrEmptyResponse
	}

	f.logger.Debug().
		Str("provider", string(provider)).
		Dur("duration", time.Since(start)).
		Int("response_length", len(resp.Text)).
		Msg("Provider call completed")

	return resp, nil
}

// classify maps deadline expiry to ErrTimeout and wraps everything else as a transport failure
func (f *ProviderFactory) classify(ctx context.Context, err error) error {
	if errors.Is(err, ErrEmptyResponse) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %v", ErrTimeout, f.timeout, err)
	}
	return fmt.Errorf("provider call failed: %w", err)
}

func (f *ProviderFactory) logFailure(provider ProviderType, err error, elapsed time.Duration) {
	f.logger.Warn().
		Str("provider", string(provider)).
		Str("reason", FailureReason(err)).
		Dur("elapsed", elapsed).
		Err(err).
		Msg("Provider call failed")
}

// FailureReason returns a short label for a generation error, used in logs
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCredentialMissing):
		return "credential_missing"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrEmptyResponse):
		return "empty_response"
	default:
		return "transport"
	}
}
