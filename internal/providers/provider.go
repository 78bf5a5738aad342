package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/promptmd/internal/mdconfig"
)

// ChatRequest is one rendered prompt file ready to send.
type ChatRequest struct {
	SystemPrompt     string             `json:"systemPrompt,omitempty"`
	Messages         []mdconfig.Message `json:"messages,omitempty"`
	UserPrompt       string             `json:"userPrompt"`
	MaxTokens        int                `json:"maxTokens,omitempty"`
	Temperature      *float64           `json:"temperature,omitempty"`
	TopP             *float64           `json:"topP,omitempty"`
	FrequencyPenalty *float64           `json:"frequencyPenalty,omitempty"`
	PresencePenalty  *float64           `json:"presencePenalty,omitempty"`
}

// ChatResponse contains the model's reply.
type ChatResponse struct {
	Content    string
	TokensUsed int
}

// Chatter is the provider abstraction interface.
type Chatter interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	Name() string
}

// ErrEmptyPrompt is returned when a request has nothing to send.
var ErrEmptyPrompt = errors.New("prompt has no user text or messages")

const defaultMaxTokens = 4096

// Canonical maps a vendor name or alias to the provider it selects. Unknown
// names are returned lower-cased.
func Canonical(vendor string) string {
	switch v := strings.ToLower(vendor); v {
	case "claude":
		return "anthropic"
	case "lmstudio":
		return "ollama"
	default:
		return v
	}
}

// New creates a provider by vendor name, as found in a prompt's model.type.
func New(vendor, model string) (Chatter, error) {
	var (
		p   Chatter
		err error
	)
	switch Canonical(vendor) {
	case "anthropic":
		p, err = NewAnthropic(model)
	case "openai":
		p, err = NewOpenAI(model)
	case "ollama":
		p, err = NewOllama(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", vendor)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FromConfig builds a request from a resolved and rendered prompt config.
func FromConfig(cfg mdconfig.FileConfig) ChatRequest {
	return ChatRequest{
		SystemPrompt:     strings.TrimSpace(cfg.SystemPrompt),
		Messages:         cfg.Messages,
		UserPrompt:       strings.TrimSpace(cfg.UserPrompt),
		MaxTokens:        cfg.Model.MaxTokens,
		Temperature:      cfg.Model.Temperature,
		TopP:             cfg.Model.TopP,
		FrequencyPenalty: cfg.Model.FrequencyPenalty,
		PresencePenalty:  cfg.Model.PresencePenalty,
	}
}

// chatMessage is a role/content pair common to both wire formats.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// conversation flattens the request into system text plus an ordered list of
// turns ending with the user prompt. System messages are folded into the
// system text when foldSystem is set.
func (r ChatRequest) conversation(foldSystem bool) (string, []chatMessage, error) {
	system := r.SystemPrompt
	var turns []chatMessage
	for _, m := range r.Messages {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		if m.Name == mdconfig.RoleSystem && foldSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Text
			continue
		}
		turns = append(turns, chatMessage{Role: m.Name, Content: m.Text})
	}
	if r.UserPrompt != "" {
		turns = append(turns, chatMessage{Role: mdconfig.RoleUser, Content: r.UserPrompt})
	}
	if len(turns) == 0 {
		return "", nil, ErrEmptyPrompt
	}
	return system, turns, nil
}

func (r ChatRequest) maxTokens() int {
	if r.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return r.MaxTokens
}

// ModelInfo lists well-known model names for a vendor.
type ModelInfo struct {
	Provider string
	Models   []string
}

// KnownModels is shown by `promptmd models list`. Any model name the vendor
// accepts can be used.
var KnownModels = []ModelInfo{
	{
		Provider: "anthropic",
		Models: []string{
			"claude-sonnet-4-20250514",
			"claude-opus-4-20250514",
			"claude-3-5-haiku-latest",
		},
	},
	{
		Provider: "openai",
		Models: []string{
			"gpt-4.1",
			"gpt-4.1-mini",
			"gpt-4o",
			"gpt-4o-mini",
			"o3-mini",
		},
	},
	{
		Provider: "ollama",
		Models: []string{
			"llama3.3",
			"llama3.2",
			"qwen2.5",
			"mistral",
		},
	},
}

// DefaultModelFor returns the first known model for provider, or "" when the
// provider is unknown.
func DefaultModelFor(provider string) string {
	provider = Canonical(provider)
	for _, info := range KnownModels {
		if info.Provider == provider && len(info.Models) > 0 {
			return info.Models[0]
		}
	}
	return ""
}

// OwnerOf returns the provider that lists model in KnownModels, or "".
func OwnerOf(model string) string {
	for _, info := range KnownModels {
		for _, m := range info.Models {
			if m == model {
				return info.Provider
			}
		}
	}
	return ""
}
