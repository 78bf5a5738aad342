package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dshills/promptmd/internal/mdconfig"
)

func withFastBackoff(t *testing.T) {
	t.Helper()
	orig := baseBackoff
	baseBackoff = time.Millisecond
	t.Cleanup(func() { baseBackoff = orig })
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New("unknown", "model"); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestNew_MissingKeyReturnsNilChatter(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	p, err := New("openai", "gpt-4o")
	if err == nil {
		t.Fatal("Expected error for missing key")
	}
	if p != nil {
		t.Error("Chatter should be nil on error")
	}
}

func TestNew_Aliases(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "http://localhost:11434")
	t.Setenv("ANTHROPIC_API_KEY", "k")

	tests := []struct{ vendor, want string }{
		{"ollama", "ollama"},
		{"lmstudio", "ollama"},
		{"Anthropic", "anthropic"},
		{"claude", "anthropic"},
	}
	for _, tt := range tests {
		p, err := New(tt.vendor, "m")
		if err != nil {
			t.Fatalf("New(%q) error: %v", tt.vendor, err)
		}
		if p.Name() != tt.want {
			t.Errorf("New(%q).Name() = %q, want %q", tt.vendor, p.Name(), tt.want)
		}
	}
}

func TestFromConfig(t *testing.T) {
	cfg := mdconfig.FileConfig{
		Model: mdconfig.ModelConfig{
			MaxTokens:   512,
			Temperature: mdconfig.Float(0.3),
			TopP:        mdconfig.Float(1),
		},
		SystemPrompt: "\nsys\n\n",
		UserPrompt:   "\nask\n",
		Messages:     []mdconfig.Message{{Name: "user", Text: "m"}},
	}
	req := FromConfig(cfg)
	if req.SystemPrompt != "sys" || req.UserPrompt != "ask" {
		t.Errorf("prompts = %q / %q, want trimmed", req.SystemPrompt, req.UserPrompt)
	}
	if req.MaxTokens != 512 || *req.Temperature != 0.3 || *req.TopP != 1 {
		t.Errorf("req = %+v", req)
	}
	if len(req.Messages) != 1 {
		t.Errorf("Messages = %+v", req.Messages)
	}
}

func TestConversation_Empty(t *testing.T) {
	_, _, err := ChatRequest{SystemPrompt: "only system"}.conversation(true)
	if !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("err = %v, want ErrEmptyPrompt", err)
	}
	_, turns, err := ChatRequest{Messages: []mdconfig.Message{{Name: "user", Text: "m"}}}.conversation(true)
	if err != nil || len(turns) != 1 {
		t.Errorf("messages alone should be enough, got %v %v", turns, err)
	}
}

func TestIsAuthError(t *testing.T) {
	if IsAuthError(nil) {
		t.Error("nil should not be auth error")
	}
	if IsAuthError(&rateLimitError{}) {
		t.Error("rateLimitError should not be auth error")
	}
	if !IsAuthError(&authError{message: "test"}) {
		t.Error("authError should be auth error")
	}
	if !IsAuthError(fmt.Errorf("wrapped: %w", &authError{message: "test"})) {
		t.Error("wrapped authError should be auth error")
	}
}

func TestIsRetryable(t *testing.T) {
	if isRetryable(&authError{message: "test"}) {
		t.Error("authError should not be retryable")
	}
	if !isRetryable(&rateLimitError{}) {
		t.Error("rateLimitError should be retryable")
	}
	if !isRetryable(&serverError{statusCode: 500}) {
		t.Error("serverError should be retryable")
	}
	if isRetryable(context.Canceled) {
		t.Error("context.Canceled should not be retryable")
	}
}

func TestErrorMessages(t *testing.T) {
	if got := (&rateLimitError{}).Error(); got != "rate limited" {
		t.Errorf("rateLimitError.Error() = %q", got)
	}
	if got := (&serverError{statusCode: 500, body: "oops"}).Error(); got != "server error: oops" {
		t.Errorf("serverError.Error() = %q", got)
	}
	if got := (&authError{message: "bad key"}).Error(); got != "authentication error: bad key" {
		t.Errorf("authError.Error() = %q", got)
	}
}

func TestRetryWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retryWithBackoff(ctx, 3, func() error {
		return &rateLimitError{}
	})
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}

func TestRetryWithBackoff_NonRetryable(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), 3, func() error {
		attempts++
		return &authError{message: "bad"}
	})
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for auth error, got %d", attempts)
	}
	if !IsAuthError(err) {
		t.Errorf("Expected auth error, got: %v", err)
	}
}

func TestRetryWithBackoff_Success(t *testing.T) {
	if err := retryWithBackoff(context.Background(), 3, func() error { return nil }); err != nil {
		t.Errorf("Expected nil error, got: %v", err)
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct{ in, want string }{
		{"claude", "anthropic"},
		{"Anthropic", "anthropic"},
		{"LMStudio", "ollama"},
		{"openai", "openai"},
		{"mystery", "mystery"},
	}
	for _, tt := range tests {
		if got := Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultModelFor(t *testing.T) {
	if got := DefaultModelFor("openai"); got != "gpt-4.1" {
		t.Errorf("DefaultModelFor(openai) = %q, want gpt-4.1", got)
	}
	if got := DefaultModelFor("claude"); got != "claude-sonnet-4-20250514" {
		t.Errorf("DefaultModelFor(claude) = %q", got)
	}
	if got := DefaultModelFor("mystery"); got != "" {
		t.Errorf("DefaultModelFor(mystery) = %q, want empty", got)
	}
}

func TestOwnerOf(t *testing.T) {
	if got := OwnerOf("claude-sonnet-4-20250514"); got != "anthropic" {
		t.Errorf("OwnerOf(claude-sonnet) = %q, want anthropic", got)
	}
	if got := OwnerOf("my-finetune"); got != "" {
		t.Errorf("OwnerOf(my-finetune) = %q, want empty", got)
	}
}
