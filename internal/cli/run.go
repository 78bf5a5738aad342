package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/promptmd/internal/cache"
	"github.com/dshills/promptmd/internal/config"
	"github.com/dshills/promptmd/internal/mdconfig"
	"github.com/dshills/promptmd/internal/providers"
	"github.com/dshills/promptmd/internal/redact"
)

var (
	flagVars     []string
	flagNoCache  bool
	flagNoRedact bool
	flagDryRun   bool
	flagTimeout  time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Send a prompt file to its model and print the reply",
	Long: "Resolve a prompt file, fill its {{placeholders}} from --var values and form " +
		"defaults, redact secrets, and send it to the provider named by model.type. " +
		"--provider and --model override the file.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		vars, err := parseVars(flagVars)
		if err != nil {
			return err
		}
		if flagNoRedact {
			f := false
			cfg.Privacy.RedactSecrets = &f
			fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
		}

		doc, err := readPrompt(args[0])
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}
		req, model := buildRequest(doc, cfg, vars)

		if flagDryRun {
			if err := withOutput(func(w io.Writer) error { return writeDryRun(w, model, req) }); err != nil {
				fail(ExitRuntimeError, "writing output: %v", err)
			}
			return nil
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		if flagTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, flagTimeout)
			defer cancel()
		}

		reply, err := chat(ctx, cfg, model, req)
		if err != nil {
			code := ExitRuntimeError
			if providers.IsAuthError(err) {
				code = ExitAuthError
			}
			fail(code, "%v", err)
			return nil
		}
		if err := withOutput(func(w io.Writer) error {
			_, err := fmt.Fprintln(w, strings.TrimRight(reply, "\n"))
			return err
		}); err != nil {
			fail(ExitRuntimeError, "writing output: %v", err)
		}
		return nil
	},
}

// buildRequest resolves doc, applies the --provider/--model flags over the
// file's own model, renders placeholders and redacts secrets.
func buildRequest(doc string, cfg config.Config, vars map[string]string) (providers.ChatRequest, mdconfig.ModelConfig) {
	parser := &mdconfig.Parser{Levels: cfg.Levels, Logger: logger}
	resolved := parser.Parse(doc, cfg.UserConfig())
	if flagProvider != "" {
		resolved.Model.Type = flagProvider
	}
	if flagModel != "" {
		resolved.Model.ModelName = flagModel
	} else if flagProvider != "" {
		resolved.Model.ModelName = modelForProvider(flagProvider, resolved.Model.ModelName)
	}
	resolved = mdconfig.Render(resolved, vars)

	req := providers.FromConfig(resolved)
	if cfg.RedactSecrets() {
		texts := []*string{&req.SystemPrompt, &req.UserPrompt}
		msgs := make([]mdconfig.Message, len(req.Messages))
		copy(msgs, req.Messages)
		for i := range msgs {
			texts = append(texts, &msgs[i].Text)
		}
		req.Messages = msgs
		if n := redact.All(texts...); n > 0 {
			fmt.Fprintf(os.Stderr, "Redacted %d secret(s) from the prompt\n", n)
		}
	}
	return req, resolved.Model
}

// modelForProvider keeps name unless it belongs to another known vendor, in
// which case provider's default model replaces it.
func modelForProvider(provider, name string) string {
	owner := providers.OwnerOf(name)
	if owner == "" || owner == providers.Canonical(provider) {
		return name
	}
	return providers.DefaultModelFor(provider)
}

// chat answers from the cache when possible, otherwise calls the provider
// and stores the reply.
func chat(ctx context.Context, cfg config.Config, model mdconfig.ModelConfig, req providers.ChatRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}
	key := cache.BuildCacheKey(model.Type, model.ModelName, payload)

	c, err := cache.New(cfg.CacheEnabled() && !flagNoCache, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		logger.Warn("cache unavailable", zap.Error(err))
		c, _ = cache.New(false, "", 0)
	}
	if entry, ok := c.Get(key); ok {
		logger.Debug("cache hit", zap.String("key", key[:12]))
		return entry.Response, nil
	}

	p, err := providers.New(model.Type, model.ModelName)
	if err != nil {
		return "", err
	}
	start := time.Now()
	resp, err := p.Chat(ctx, req)
	if err != nil {
		return "", err
	}
	logger.Info("chat complete",
		zap.String("provider", p.Name()),
		zap.String("model", model.ModelName),
		zap.Int("tokens", resp.TokensUsed),
		zap.Duration("duration", time.Since(start)),
	)
	if err := c.Put(key, resp.Content, resp.TokensUsed); err != nil {
		logger.Warn("cache write failed", zap.Error(err))
	}
	return resp.Content, nil
}

func writeDryRun(w io.Writer, model mdconfig.ModelConfig, req providers.ChatRequest) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Provider string                `json:"provider"`
		Model    string                `json:"model"`
		Request  providers.ChatRequest `json:"request"`
	}{model.Type, model.ModelName, req})
}

// parseVars turns repeated --var name=value flags into a map.
func parseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.New("invalid --var " + p + ": want name=value")
		}
		vars[name] = value
	}
	return vars, nil
}

func init() {
	runCmd.Flags().StringArrayVar(&flagVars, "var", nil, "Placeholder value as name=value (repeatable)")
	runCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Skip the response cache")
	runCmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	runCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print the request instead of sending it")
	runCmd.Flags().DurationVar(&flagTimeout, "timeout", 2*time.Minute, "Overall request timeout")
}
