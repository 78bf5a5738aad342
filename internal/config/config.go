package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/dshills/promptmd/internal/mdconfig"
	"gopkg.in/yaml.v3"
)

// Config represents the promptmd user configuration.
type Config struct {
	Model            mdconfig.ModelConfig `json:"model" yaml:"model"`
	SystemPrompt     string               `json:"systemPrompt,omitempty" yaml:"systemPrompt,omitempty"`
	UserPrompt       string               `json:"userPrompt,omitempty" yaml:"userPrompt,omitempty"`
	RootPath         string               `json:"rootPath,omitempty" yaml:"rootPath,omitempty"`
	Exts             []string             `json:"exts" yaml:"exts"`
	Includes         []string             `json:"includes,omitempty" yaml:"includes,omitempty"`
	Excludes         []string             `json:"excludes" yaml:"excludes"`
	RespectGitIgnore *bool                `json:"respectGitIgnore,omitempty" yaml:"respectGitIgnore,omitempty"`
	Levels           []string             `json:"levels,omitempty" yaml:"levels,omitempty"`
	Format           string               `json:"format" yaml:"format"`
	Cache            CacheConfig          `json:"cache" yaml:"cache"`
	Privacy          PrivacyConfig        `json:"privacy" yaml:"privacy"`
}

// CacheConfig controls caching of run responses.
type CacheConfig struct {
	Enabled    *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Dir        string `json:"dir,omitempty" yaml:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds" yaml:"ttlSeconds"`
}

// PrivacyConfig controls redaction of prompts before they leave the machine.
type PrivacyConfig struct {
	RedactSecrets *bool `json:"redactSecrets,omitempty" yaml:"redactSecrets,omitempty"`
}

// Project config file names, checked in order.
var ProjectFiles = []string{"promptmd.config.json", "promptmd.config.yaml", "promptmd.config.yml"}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Model:            mdconfig.DefaultModel(),
		Exts:             []string{".gpt.md"},
		Excludes:         []string{"**/node_modules/**", "**/dist/**", "vendor/**"},
		RespectGitIgnore: boolPtr(true),
		Levels:           append([]string(nil), mdconfig.DefaultLevels...),
		Format:           "text",
		Cache: CacheConfig{
			Enabled:    boolPtr(true),
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: boolPtr(true),
		},
	}
}

// UserConfig returns the user-level defaults handed to the prompt resolver.
func (c Config) UserConfig() mdconfig.UserConfig {
	return mdconfig.UserConfig{
		Model:        c.Model,
		SystemPrompt: c.SystemPrompt,
		UserPrompt:   c.UserPrompt,
	}
}

// CacheEnabled reports whether run responses are cached.
func (c Config) CacheEnabled() bool { return c.Cache.Enabled == nil || *c.Cache.Enabled }

// RedactSecrets reports whether prompts are scrubbed before sending.
func (c Config) RedactSecrets() bool {
	return c.Privacy.RedactSecrets == nil || *c.Privacy.RedactSecrets
}

// GitIgnore reports whether discovery skips git-ignored files.
func (c Config) GitIgnore() bool { return c.RespectGitIgnore == nil || *c.RespectGitIgnore }

// ConfigDir returns the platform-appropriate config directory for promptmd.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "promptmd"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "promptmd"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "promptmd"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "promptmd"), nil
	default:
		return filepath.Join(home, ".config", "promptmd"), nil
	}
}

// ConfigPath returns the full path to the global config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads the global config file. Returns zero Config and nil error if
// the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	cfg, err := readFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	return cfg, err
}

// LoadProjectFile loads the first project config file found in dir. It
// returns the path it read, or "" when dir has none.
func LoadProjectFile(dir string) (Config, string, error) {
	for _, name := range ProjectFiles {
		path := filepath.Join(dir, name)
		cfg, err := readFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, "", err
		}
		return cfg, path, nil
	}
	return Config{}, "", nil
}

// readFile decodes JSON or YAML by extension.
func readFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, err
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the global config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging:
// defaults <- global file <- project file <- env <- overrides.
// projectDir may be empty to skip the project file. The overrides map comes
// from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string, projectDir string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)

	if projectDir != "" {
		projCfg, _, err := LoadProjectFile(projectDir)
		if err != nil {
			return Config{}, err
		}
		mergeFile(&cfg, projCfg)
		if cfg.RootPath == "" {
			cfg.RootPath = projectDir
		} else if !filepath.IsAbs(cfg.RootPath) {
			cfg.RootPath = filepath.Join(projectDir, cfg.RootPath)
		}
	}

	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	mergeModel(&dst.Model, src.Model)
	if src.SystemPrompt != "" {
		dst.SystemPrompt = src.SystemPrompt
	}
	if src.UserPrompt != "" {
		dst.UserPrompt = src.UserPrompt
	}
	if src.RootPath != "" {
		dst.RootPath = src.RootPath
	}
	if len(src.Exts) > 0 {
		dst.Exts = src.Exts
	}
	if len(src.Includes) > 0 {
		dst.Includes = src.Includes
	}
	if len(src.Excludes) > 0 {
		dst.Excludes = src.Excludes
	}
	if src.RespectGitIgnore != nil {
		dst.RespectGitIgnore = src.RespectGitIgnore
	}
	if len(src.Levels) > 0 {
		dst.Levels = src.Levels
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	// Pointer booleans: an explicit false in a file is distinguishable from unset.
	if src.Privacy.RedactSecrets != nil {
		dst.Privacy.RedactSecrets = src.Privacy.RedactSecrets
	}
}

func mergeModel(dst *mdconfig.ModelConfig, src mdconfig.ModelConfig) {
	if src.Type != "" {
		dst.Type = src.Type
	}
	if src.ModelName != "" {
		dst.ModelName = src.ModelName
	}
	if src.MaxTokens > 0 {
		dst.MaxTokens = src.MaxTokens
	}
	if src.Temperature != nil {
		dst.Temperature = src.Temperature
	}
	if src.TopP != nil {
		dst.TopP = src.TopP
	}
	if src.FrequencyPenalty != nil {
		dst.FrequencyPenalty = src.FrequencyPenalty
	}
	if src.PresencePenalty != nil {
		dst.PresencePenalty = src.PresencePenalty
	}
}

func mergeEnv(cfg *Config) error {
	if v := os.Getenv("PROMPTMD_PROVIDER"); v != "" {
		cfg.Model.Type = v
	}
	if v := os.Getenv("PROMPTMD_MODEL"); v != "" {
		cfg.Model.ModelName = v
	}
	if v := os.Getenv("PROMPTMD_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("PROMPTMD_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PROMPTMD_MAX_TOKENS %q: %w", v, err)
		}
		cfg.Model.MaxTokens = n
	}
	if v := os.Getenv("PROMPTMD_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid PROMPTMD_TEMPERATURE %q: %w", v, err)
		}
		cfg.Model.Temperature = &f
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return err
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider", "model.type":
		cfg.Model.Type = value
	case "model", "model.modelName":
		cfg.Model.ModelName = value
	case "maxTokens", "model.maxTokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxTokens must be an integer: %w", err)
		}
		cfg.Model.MaxTokens = n
	case "temperature", "model.temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		cfg.Model.Temperature = &f
	case "systemPrompt":
		cfg.SystemPrompt = value
	case "userPrompt":
		cfg.UserPrompt = value
	case "rootPath":
		cfg.RootPath = value
	case "exts":
		cfg.Exts = SplitList(value)
	case "includes":
		cfg.Includes = SplitList(value)
	case "excludes":
		cfg.Excludes = SplitList(value)
	case "levels":
		cfg.Levels = SplitList(value)
	case "format":
		cfg.Format = value
	case "respectGitIgnore":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("respectGitIgnore must be a boolean: %w", err)
		}
		cfg.RespectGitIgnore = &b
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be a boolean: %w", err)
		}
		cfg.Cache.Enabled = &b
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cache.ttlSeconds must be an integer: %w", err)
		}
		cfg.Cache.TTLSeconds = n
	case "privacy.redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("privacy.redactSecrets must be a boolean: %w", err)
		}
		cfg.Privacy.RedactSecrets = &b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// SplitList splits a comma-separated value, dropping empty parts.
func SplitList(s string) []string {
	var result []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func boolPtr(b bool) *bool { return &b }
