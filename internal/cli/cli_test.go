package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dshills/promptmd/internal/cache"
	"github.com/dshills/promptmd/internal/config"
	"github.com/dshills/promptmd/internal/mdconfig"
	"github.com/dshills/promptmd/internal/outline"
	"github.com/dshills/promptmd/internal/output"
	"github.com/dshills/promptmd/internal/providers"
)

// resetFlags resets all package-level flag variables to their zero values.
func resetFlags() {
	flagProvider = ""
	flagModel = ""
	flagFormat = ""
	flagOut = ""
	flagLevels = ""
	flagProject = ""
	flagVerbose = false
	flagMaxTokens = 0
	flagStrict = false
	flagVars = nil
	flagNoCache = false
	flagNoRedact = false
	flagDryRun = false
	exitCode = ExitSuccess
}

// setupEnv isolates config, cache and provider environment for one test and
// returns a project directory.
func setupEnv(t *testing.T) string {
	t.Helper()
	resetFlags()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmp, "cache"))
	for _, k := range []string{"PROMPTMD_PROVIDER", "PROMPTMD_MODEL", "PROMPTMD_FORMAT", "PROMPTMD_MAX_TOKENS", "PROMPTMD_TEMPERATURE", "PROMPTMD_LOG_FORMAT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	project := filepath.Join(tmp, "project")
	if err := os.MkdirAll(project, 0o755); err != nil {
		t.Fatal(err)
	}
	return project
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

const greetDoc = "```json\n" + `{"model": {"type": "openai", "modelName": "gpt-4o"},
 "forms": {"name": {"defaultValue": "world"}}}` + "\n```\n\n# System Prompt\nBe brief.\n\n# User Prompt\nSay hi to {{name}}.\n"

// --- buildOverrides tests ---

func TestBuildOverrides_NoFlags(t *testing.T) {
	resetFlags()
	m := buildOverrides()
	if len(m) != 0 {
		t.Errorf("buildOverrides() with no flags = %v, want empty map", m)
	}
}

func TestBuildOverrides_AllFlags(t *testing.T) {
	resetFlags()
	flagProvider = "openai"
	flagModel = "gpt-4o"
	flagFormat = "json"
	flagLevels = "#,##,###"
	flagMaxTokens = 512

	m := buildOverrides()

	expected := map[string]string{
		"provider":  "openai",
		"model":     "gpt-4o",
		"format":    "json",
		"levels":    "#,##,###",
		"maxTokens": "512",
	}
	if !reflect.DeepEqual(m, expected) {
		t.Errorf("buildOverrides() = %v, want %v", m, expected)
	}
}

func TestLoadConfig_FlagsBeatProjectFile(t *testing.T) {
	project := setupEnv(t)
	writeFile(t, filepath.Join(project, "promptmd.config.yaml"), "model:\n  type: ollama\n  modelName: llama3.2\nformat: yaml\n")
	flagProject = project
	flagModel = "mistral"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Model.Type != "ollama" {
		t.Errorf("Type = %q, want project value", cfg.Model.Type)
	}
	if cfg.Model.ModelName != "mistral" {
		t.Errorf("ModelName = %q, want flag value", cfg.Model.ModelName)
	}
	if cfg.Format != "yaml" {
		t.Errorf("Format = %q", cfg.Format)
	}
	if cfg.RootPath != project {
		t.Errorf("RootPath = %q, want %q", cfg.RootPath, project)
	}
}

// --- parseVars tests ---

func TestParseVars(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    map[string]string
		wantErr bool
	}{
		{"none", nil, map[string]string{}, false},
		{"simple", []string{"a=1", "b=two"}, map[string]string{"a": "1", "b": "two"}, false},
		{"value with equals", []string{"q=x=y"}, map[string]string{"q": "x=y"}, false},
		{"empty value", []string{"a="}, map[string]string{"a": ""}, false},
		{"trimmed name", []string{" a =1"}, map[string]string{"a": "1"}, false},
		{"missing equals", []string{"a"}, nil, true},
		{"empty name", []string{"=1"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVars(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseVars(%v) err = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseVars(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// --- file collection and parsing ---

func TestCollectFiles(t *testing.T) {
	project := setupEnv(t)
	writeFile(t, filepath.Join(project, "a.gpt.md"), greetDoc)
	writeFile(t, filepath.Join(project, "sub", "b.gpt.md"), "# User Prompt\nb\n")
	writeFile(t, filepath.Join(project, "readme.md"), "# hi\n")

	cfg := config.Default()
	explicit := filepath.Join(project, "readme.md")
	files, err := collectFiles(context.Background(), cfg, []string{project, explicit, filepath.Join(project, "a.gpt.md")})
	if err != nil {
		t.Fatalf("collectFiles: %v", err)
	}
	want := []string{
		filepath.Join(project, "a.gpt.md"),
		filepath.Join(project, "sub", "b.gpt.md"),
		explicit,
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}

	if _, err := collectFiles(context.Background(), cfg, []string{filepath.Join(project, "missing")}); err == nil {
		t.Error("missing path should error")
	}
}

func TestParseFiles(t *testing.T) {
	project := setupEnv(t)
	a := filepath.Join(project, "a.gpt.md")
	writeFile(t, a, greetDoc)
	missing := filepath.Join(project, "gone.gpt.md")

	cfg := config.Default()
	results, err := parseFiles(context.Background(), cfg, []string{a, missing})
	if err != nil {
		t.Fatalf("parseFiles: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Path != a || results[0].Config == nil {
		t.Fatalf("results[0] = %+v", results[0])
	}
	if results[0].Config.Model.Type != "openai" {
		t.Errorf("Type = %q", results[0].Config.Model.Type)
	}
	if results[0].Config.Model.MaxTokens != mdconfig.DefaultMaxTokens {
		t.Errorf("MaxTokens = %d, want user default", results[0].Config.Model.MaxTokens)
	}
	if results[1].Err == "" || results[1].Config != nil {
		t.Errorf("results[1] = %+v, want read error", results[1])
	}
}

func TestCheckFiles(t *testing.T) {
	project := setupEnv(t)
	clean := filepath.Join(project, "clean.gpt.md")
	writeFile(t, clean, greetDoc)
	bad := filepath.Join(project, "bad.gpt.md")
	writeFile(t, bad, "```json\n{bad}\n```\n### User Prompt\nhi\n")

	results, err := checkFiles(context.Background(), config.Default(), []string{clean, bad})
	if err != nil {
		t.Fatalf("checkFiles: %v", err)
	}
	if len(results[0].Warnings) != 0 {
		t.Errorf("clean warnings = %v", results[0].Warnings)
	}
	codes := map[string]bool{}
	for _, w := range results[1].Warnings {
		codes[w.Code] = true
	}
	for _, want := range []string{outline.CodeJSONInvalid, outline.CodePromptWrongLevel} {
		if !codes[want] {
			t.Errorf("missing warning %s in %v", want, results[1].Warnings)
		}
	}
}

// --- run helpers ---

func TestBuildRequest(t *testing.T) {
	setupEnv(t)
	cfg := config.Default()
	doc := "```json\n" + `{"messages": [{"name": "user", "text": "token = \"abcdefgh12345678\""}]}` +
		"\n```\n# User Prompt\nHello {{name}}, key sk-ant-REDACTED\n"

	req, model := buildRequest(doc, cfg, map[string]string{"name": "Ada"})
	if model.Type != mdconfig.DefaultModelType {
		t.Errorf("model type = %q", model.Type)
	}
	if !strings.HasPrefix(req.UserPrompt, "Hello Ada, key ") {
		t.Errorf("UserPrompt not rendered: %q", req.UserPrompt)
	}
	if strings.Contains(req.UserPrompt, "sk-ant-") {
		t.Errorf("UserPrompt not redacted: %q", req.UserPrompt)
	}
	if len(req.Messages) != 1 || strings.Contains(req.Messages[0].Text, "abcdefgh12345678") {
		t.Errorf("message not redacted: %+v", req.Messages)
	}
}

func TestBuildRequest_FlagsOverrideFile(t *testing.T) {
	setupEnv(t)
	flagProvider = "ollama"
	flagModel = "llama3.2"
	flagNoRedact = true
	cfg := config.Default()
	off := false
	cfg.Privacy.RedactSecrets = &off

	req, model := buildRequest(greetDoc, cfg, nil)
	if model.Type != "ollama" || model.ModelName != "llama3.2" {
		t.Errorf("model = %+v", model)
	}
	if req.UserPrompt != "Say hi to world." {
		t.Errorf("UserPrompt = %q, want form default rendered", req.UserPrompt)
	}
	if req.SystemPrompt != "Be brief." {
		t.Errorf("SystemPrompt = %q", req.SystemPrompt)
	}
}

func TestBuildRequest_ProviderFlagMapsModel(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		doc      string
		want     string
	}{
		{"global default moves to vendor default", "openai", "# User Prompt\nhi\n", "gpt-4.1"},
		{"alias keeps matching name", "claude", "# User Prompt\nhi\n", mdconfig.DefaultModelName},
		{"file name from other vendor", "ollama", greetDoc, "llama3.3"},
		{"unknown name kept", "openai",
			"```json\n{\"model\":{\"modelName\":\"my-finetune\"}}\n```\n# User Prompt\nhi\n", "my-finetune"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupEnv(t)
			flagProvider = tt.provider
			cfg := config.Default()

			_, model := buildRequest(tt.doc, cfg, nil)
			if model.Type != tt.provider {
				t.Errorf("Type = %q, want %q", model.Type, tt.provider)
			}
			if model.ModelName != tt.want {
				t.Errorf("ModelName = %q, want %q", model.ModelName, tt.want)
			}
		})
	}
}

func TestChat_CacheHit(t *testing.T) {
	setupEnv(t)
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()

	model := mdconfig.ModelConfig{Type: "no-such-vendor", ModelName: "m"}
	req := providers.ChatRequest{UserPrompt: "hi"}
	payload, _ := json.Marshal(req)

	c, err := cache.New(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Put(cache.BuildCacheKey(model.Type, model.ModelName, payload), "cached reply", 3); err != nil {
		t.Fatal(err)
	}

	got, err := chat(context.Background(), cfg, model, req)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if got != "cached reply" {
		t.Errorf("chat = %q", got)
	}

	flagNoCache = true
	if _, err := chat(context.Background(), cfg, model, req); err == nil {
		t.Error("--no-cache should reach the provider and fail for an unknown vendor")
	}
}

func TestChat_MissingKeyIsAuthError(t *testing.T) {
	setupEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "")
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()

	_, err := chat(context.Background(), cfg, mdconfig.ModelConfig{Type: "anthropic", ModelName: "x"}, providers.ChatRequest{UserPrompt: "hi"})
	if !providers.IsAuthError(err) {
		t.Errorf("err = %v, want auth error", err)
	}
}

// --- writers ---

func TestWriteList(t *testing.T) {
	files := []string{"a.gpt.md", "b/c.gpt.md"}

	var text bytes.Buffer
	if err := writeList(&text, "text", files); err != nil {
		t.Fatal(err)
	}
	if text.String() != "a.gpt.md\nb/c.gpt.md\n" {
		t.Errorf("text = %q", text.String())
	}

	var js bytes.Buffer
	if err := writeList(&js, "json", files); err != nil {
		t.Fatal(err)
	}
	var decoded []string
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil || !reflect.DeepEqual(decoded, files) {
		t.Errorf("json = %s (%v)", js.String(), err)
	}
}

func TestWriteOutline(t *testing.T) {
	headings := []outline.Heading{
		{Level: 1, Marker: "#", Title: "System Prompt", Line: 4},
		{Level: 2, Marker: "##", Title: "Notes", Line: 9},
		{Level: 1, Title: "Setext", Line: 12},
	}
	var buf bytes.Buffer
	if err := writeOutline(&buf, "text", headings); err != nil {
		t.Fatal(err)
	}
	want := "   4  # System Prompt\n   9    ## Notes\n  12  #* Setext\n"
	if buf.String() != want {
		t.Errorf("outline =\n%q\nwant\n%q", buf.String(), want)
	}
}

// --- command execution ---

func TestParseCmd_Execute(t *testing.T) {
	project := setupEnv(t)
	writeFile(t, filepath.Join(project, "greet.gpt.md"), greetDoc)
	out := filepath.Join(t.TempDir(), "out.json")

	if err := execute(t, "parse", "--project", project, "--format", "json", "--out", out); err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if exitCode != ExitSuccess {
		t.Errorf("exitCode = %d", exitCode)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var results []output.Result
	if err := json.Unmarshal(data, &results); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, data)
	}
	if len(results) != 1 || results[0].Config == nil {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Config.SystemPrompt != "Be brief.\n\n" {
		t.Errorf("SystemPrompt = %q", results[0].Config.SystemPrompt)
	}
}

func TestCheckCmd_Strict(t *testing.T) {
	project := setupEnv(t)
	writeFile(t, filepath.Join(project, "bad.gpt.md"), "## User Prompt\nhi {{who}}\n")
	out := filepath.Join(t.TempDir(), "check.txt")

	if err := execute(t, "check", "--project", project, "--out", out, project); err != nil {
		t.Fatalf("check returned error: %v", err)
	}
	if exitCode != ExitSuccess {
		t.Errorf("non-strict exitCode = %d, want 0", exitCode)
	}

	resetFlags()
	if err := execute(t, "check", "--strict", "--project", project, "--out", out, project); err != nil {
		t.Fatalf("check returned error: %v", err)
	}
	if exitCode != ExitWarnings {
		t.Errorf("strict exitCode = %d, want %d", exitCode, ExitWarnings)
	}
	data, _ := os.ReadFile(out)
	if !strings.Contains(string(data), outline.CodePlaceholderUndeclared) {
		t.Errorf("check output missing warning:\n%s", data)
	}
}

func TestRunCmd_DryRun(t *testing.T) {
	project := setupEnv(t)
	file := filepath.Join(project, "greet.gpt.md")
	writeFile(t, file, greetDoc)
	out := filepath.Join(t.TempDir(), "req.json")

	if err := execute(t, "run", "--dry-run", "--project", project, "--out", out, file); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Provider string                `json:"provider"`
		Model    string                `json:"model"`
		Request  providers.ChatRequest `json:"request"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("dry run output: %v\n%s", err, data)
	}
	if got.Provider != "openai" || got.Model != "gpt-4o" {
		t.Errorf("provider/model = %s/%s", got.Provider, got.Model)
	}
	if got.Request.UserPrompt != "Say hi to world." {
		t.Errorf("UserPrompt = %q", got.Request.UserPrompt)
	}
}

func TestRunCmd_MissingFile(t *testing.T) {
	project := setupEnv(t)
	if err := execute(t, "run", "--project", project, filepath.Join(project, "nope.gpt.md")); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if exitCode != ExitRuntimeError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitRuntimeError)
	}
}

func TestVersionCmd_Execute(t *testing.T) {
	setupEnv(t)
	if err := execute(t, "version"); err != nil {
		t.Errorf("version command returned error: %v", err)
	}
}

func TestModelsListCmd_Execute(t *testing.T) {
	setupEnv(t)
	if err := execute(t, "models", "list"); err != nil {
		t.Errorf("models list returned error: %v", err)
	}
}

func TestKnownModels_AllProviders(t *testing.T) {
	want := map[string]bool{"anthropic": false, "openai": false, "ollama": false}
	for _, info := range providers.KnownModels {
		if _, ok := want[info.Provider]; ok {
			want[info.Provider] = true
		}
		if len(info.Models) == 0 {
			t.Errorf("provider %s has no models", info.Provider)
		}
	}
	for p, found := range want {
		if !found {
			t.Errorf("KnownModels missing provider %s", p)
		}
	}
}

// --- config command tests ---

func TestConfigInit_CreatesFile(t *testing.T) {
	project := setupEnv(t)

	if err := execute(t, "config", "init", "--project", project); err != nil {
		t.Fatalf("config init returned error: %v", err)
	}

	path, _ := config.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config init did not create config.json: %v", err)
	}
	var cfg config.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("config file is not valid JSON: %v", err)
	}
	if cfg.Model.Type == "" {
		t.Error("config file has empty model type")
	}
}

func TestConfigInit_AlreadyExists(t *testing.T) {
	project := setupEnv(t)
	path, _ := config.ConfigPath()
	writeFile(t, path, `{"model":{"type":"openai"}}`)

	if err := execute(t, "config", "init", "--project", project); err != nil {
		t.Fatalf("config init with existing file returned error: %v", err)
	}

	cfg, err := config.LoadFile()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model.Type != "openai" {
		t.Errorf("config init overwrote existing file: type = %q", cfg.Model.Type)
	}
}

func TestConfigSet_UpdatesFile(t *testing.T) {
	project := setupEnv(t)

	if err := execute(t, "config", "set", "provider", "openai", "--project", project); err != nil {
		t.Fatalf("config set returned error: %v", err)
	}

	cfg, err := config.LoadFile()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model.Type != "openai" {
		t.Errorf("type = %q, want %q", cfg.Model.Type, "openai")
	}
}

func TestConfigSet_InvalidKey(t *testing.T) {
	project := setupEnv(t)
	if err := execute(t, "config", "set", "unknownKey", "value", "--project", project); err == nil {
		t.Error("config set with invalid key should return error")
	}
}

func TestConfigSet_MissingArgs(t *testing.T) {
	setupEnv(t)
	if err := execute(t, "config", "set", "provider"); err == nil {
		t.Error("config set with 1 arg should return error (requires 2)")
	}
}

func TestConfigShow_Execute(t *testing.T) {
	project := setupEnv(t)
	if err := execute(t, "config", "show", "--project", project); err != nil {
		t.Errorf("config show returned error: %v", err)
	}
}

// --- cache command tests ---

func TestCacheShow_Execute(t *testing.T) {
	project := setupEnv(t)
	if err := execute(t, "cache", "show", "--project", project); err != nil {
		t.Errorf("cache show returned error: %v", err)
	}
}

func TestCacheClear_Execute(t *testing.T) {
	project := setupEnv(t)

	cacheDir := filepath.Join(os.Getenv("XDG_CACHE_HOME"), "promptmd")
	writeFile(t, filepath.Join(cacheDir, "abc123.json"), `{"key":"test"}`)

	if err := execute(t, "cache", "clear", "--project", project); err != nil {
		t.Errorf("cache clear returned error: %v", err)
	}

	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		t.Fatalf("cannot read cache dir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			t.Errorf("cache clear did not remove %s", e.Name())
		}
	}
}

func TestExitCodes(t *testing.T) {
	codes := []struct {
		name string
		got  int
		want int
	}{
		{"ExitSuccess", ExitSuccess, 0},
		{"ExitWarnings", ExitWarnings, 1},
		{"ExitUsageError", ExitUsageError, 2},
		{"ExitAuthError", ExitAuthError, 3},
		{"ExitRuntimeError", ExitRuntimeError, 4},
	}
	for _, c := range codes {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
}
