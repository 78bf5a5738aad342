package mdconfig

// ModelConfig selects the chat model a prompt file runs against.
// Pointer fields distinguish "unset" from an explicit zero.
type ModelConfig struct {
	Type             string   `json:"type,omitempty" yaml:"type,omitempty"`
	ModelName        string   `json:"modelName,omitempty" yaml:"modelName,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens        int      `json:"maxTokens,omitempty" yaml:"maxTokens,omitempty"`
	TopP             *float64 `json:"topP,omitempty" yaml:"topP,omitempty"`
	FrequencyPenalty *float64 `json:"frequencyPenalty,omitempty" yaml:"frequencyPenalty,omitempty"`
	PresencePenalty  *float64 `json:"presencePenalty,omitempty" yaml:"presencePenalty,omitempty"`
}

// Message is a canned conversation turn that precedes the user prompt.
type Message struct {
	Name string `json:"name" yaml:"name"`
	Text string `json:"text" yaml:"text"`
}

// Message roles accepted in the "messages" array.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// FormItem declares a variable the prompt body can reference as {{name}}.
type FormItem struct {
	Type         string   `json:"type,omitempty" yaml:"type,omitempty"`
	Label        string   `json:"label,omitempty" yaml:"label,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	DefaultValue string   `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Options      []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// FileConfig is the configuration carried by one prompt document. The same
// shape is used for the normalized per-file view and the resolved result.
type FileConfig struct {
	Title        string              `json:"title,omitempty" yaml:"title,omitempty"`
	Model        ModelConfig         `json:"model" yaml:"model"`
	UserPrompt   string              `json:"userPrompt" yaml:"userPrompt"`
	SystemPrompt string              `json:"systemPrompt" yaml:"systemPrompt"`
	Messages     []Message           `json:"messages,omitempty" yaml:"messages,omitempty"`
	Forms        map[string]FormItem `json:"forms,omitempty" yaml:"forms,omitempty"`
	Tags         []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// UserConfig holds user-level defaults applied across documents.
type UserConfig struct {
	Model        ModelConfig `json:"model" yaml:"model"`
	SystemPrompt string      `json:"systemPrompt,omitempty" yaml:"systemPrompt,omitempty"`
	UserPrompt   string      `json:"userPrompt,omitempty" yaml:"userPrompt,omitempty"`
}

// Global defaults used when neither the file nor the user config sets a value.
const (
	DefaultModelType = "anthropic"
	DefaultModelName = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 4096
)

// DefaultModel returns the global model defaults.
func DefaultModel() ModelConfig {
	return ModelConfig{
		Type:      DefaultModelType,
		ModelName: DefaultModelName,
		MaxTokens: DefaultMaxTokens,
	}
}

// Float returns a pointer to v, for building ModelConfig literals.
func Float(v float64) *float64 {
	return &v
}
