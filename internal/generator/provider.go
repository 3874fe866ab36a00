package generator

import (
	"context"
	"errors"
	"fmt"
	neturl "net/url"
	"strings"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
	jetopenai "go.jetify.com/ai/provider/openai"

	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"

	defaultAnthropicModel = "claude-haiku-4-5-20251001"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultMaxTokens      = 8192
)

var (
	ErrAPIKeyRequired      = errors.New("generator: provider api key is empty")
	ErrUnsupportedProvider = errors.New("generator: unsupported provider")
	ErrEmptyReply          = errors.New("generator: empty reply from model")
)

// ProviderConfig selects and authenticates the language model.
type ProviderConfig struct {
	Provider  string
	Model     string
	Endpoint  string
	APIKey    string
	MaxTokens int
}

// NewLanguageModel builds the jetify model for cfg.
func NewLanguageModel(cfg ProviderConfig) (jetapi.LanguageModel, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	modelID := strings.TrimSpace(cfg.Model)
	endpoint := strings.TrimSpace(cfg.Endpoint)

	switch normalizeProvider(cfg.Provider) {
	case ProviderAnthropic:
		if modelID == "" {
			modelID = defaultAnthropicModel
		}
		opts := []anthropicoption.RequestOption{
			anthropicoption.WithAPIKey(apiKey),
			anthropicoption.WithMaxRetries(0),
		}
		if endpoint != "" {
			opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
		}
		client := anthropicclient.NewClient(opts...)
		return jetanthropic.NewLanguageModel(modelID, jetanthropic.WithClient(client)), nil

	case ProviderOpenAI:
		if modelID == "" {
			modelID = defaultOpenAIModel
		}
		opts := []openaioption.RequestOption{
			openaioption.WithAPIKey(apiKey),
			openaioption.WithMaxRetries(0),
		}
		if normalized := normalizeOpenAIBaseURL(endpoint); normalized != "" {
			opts = append(opts, openaioption.WithBaseURL(normalized))
		}
		client := openaiclient.NewClient(opts...)
		return jetopenai.NewLanguageModel(modelID, jetopenai.WithClient(client)), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
}

// ModelCompleter sends completion requests through go.jetify.com/ai.
type ModelCompleter struct {
	model     jetapi.LanguageModel
	maxTokens int
}

var _ interfaces.Completer = (*ModelCompleter)(nil)

// NewModelCompleter wraps model. maxTokens applies when a request leaves
// MaxTokens unset.
func NewModelCompleter(model jetapi.LanguageModel, maxTokens int) *ModelCompleter {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &ModelCompleter{model: model, maxTokens: maxTokens}
}

// NewCompleter builds the model for cfg and wraps it.
func NewCompleter(cfg ProviderConfig) (*ModelCompleter, error) {
	model, err := NewLanguageModel(cfg)
	if err != nil {
		return nil, err
	}
	return NewModelCompleter(model, cfg.MaxTokens), nil
}

func (c *ModelCompleter) Complete(ctx context.Context, req interfaces.CompletionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	resp, err := jetai.GenerateText(ctx,
		promptMessages(req.System, req.Prompt),
		jetai.WithModel(c.model),
		jetai.WithMaxOutputTokens(maxTokens),
	)
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

func promptMessages(system, prompt string) []jetapi.Message {
	messages := make([]jetapi.Message, 0, 2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, &jetapi.SystemMessage{Content: system})
	}
	messages = append(messages, &jetapi.UserMessage{Content: jetapi.ContentFromText(prompt)})
	return messages
}

func responseText(resp *jetapi.Response) (string, error) {
	if resp == nil {
		return "", ErrEmptyReply
	}
	var full strings.Builder
	for _, block := range resp.Content {
		text, ok := block.(*jetapi.TextBlock)
		if !ok || text.Text == "" {
			continue
		}
		full.WriteString(text.Text)
	}
	if strings.TrimSpace(full.String()) == "" {
		return "", ErrEmptyReply
	}
	return full.String(), nil
}

func normalizeProvider(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// normalizeOpenAIBaseURL makes sure the base URL ends in /v1.
func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}
	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		path += "/v1"
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}
