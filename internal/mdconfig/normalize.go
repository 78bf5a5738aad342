package mdconfig

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

var knownKeys = map[string]bool{
	"title":        true,
	"model":        true,
	"userPrompt":   true,
	"systemPrompt": true,
	"messages":     true,
	"forms":        true,
	"tags":         true,
}

// Normalize coerces a raw JSON object into a FileConfig. Fields that are
// missing or of the wrong shape get zero values; unknown keys are dropped.
func Normalize(raw map[string]any) FileConfig {
	return FileConfig{
		Title:        asString(raw["title"]),
		Model:        normalizeModel(raw["model"]),
		UserPrompt:   asString(raw["userPrompt"]),
		SystemPrompt: asString(raw["systemPrompt"]),
		Messages:     normalizeMessages(raw["messages"]),
		Forms:        normalizeForms(raw["forms"]),
		Tags:         asStrings(raw["tags"]),
	}
}

// UnknownKeys lists top-level keys Normalize discards, sorted.
func UnknownKeys(raw map[string]any) []string {
	var keys []string
	for k := range raw {
		if !knownKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func normalizeModel(v any) ModelConfig {
	m, ok := v.(map[string]any)
	if !ok {
		return ModelConfig{}
	}
	mc := ModelConfig{
		Type:             strings.ToLower(strings.TrimSpace(asString(m["type"]))),
		ModelName:        strings.TrimSpace(asString(m["modelName"])),
		Temperature:      asFloat(m["temperature"]),
		TopP:             asFloat(m["topP"]),
		FrequencyPenalty: asFloat(m["frequencyPenalty"]),
		PresencePenalty:  asFloat(m["presencePenalty"]),
	}
	if n := asFloat(m["maxTokens"]); n != nil && *n >= 1 && *n <= math.MaxInt32 {
		mc.MaxTokens = int(*n)
	}
	return mc
}

func normalizeMessages(v any) []Message {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var msgs []Message
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(asString(m["name"])))
		switch name {
		case RoleUser, RoleAssistant, RoleSystem:
		default:
			continue
		}
		msgs = append(msgs, Message{Name: name, Text: asString(m["text"])})
	}
	return msgs
}

func normalizeForms(v any) map[string]FormItem {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	forms := make(map[string]FormItem, len(m))
	for name, raw := range m {
		f, ok := raw.(map[string]any)
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		forms[name] = FormItem{
			Type:         asString(f["type"]),
			Label:        asString(f["label"]),
			Description:  asString(f["description"]),
			DefaultValue: scalarString(f["defaultValue"]),
			Options:      normalizeOptions(f["options"]),
		}
	}
	if len(forms) == 0 {
		return nil
	}
	return forms
}

// normalizeOptions accepts plain strings or {"label", "value"} objects.
func normalizeOptions(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var opts []string
	for _, item := range items {
		switch o := item.(type) {
		case string:
			opts = append(opts, o)
		case map[string]any:
			if s := scalarString(o["value"]); s != "" {
				opts = append(opts, s)
			} else if s := asString(o["label"]); s != "" {
				opts = append(opts, s)
			}
		}
	}
	return opts
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// scalarString renders strings, numbers and booleans as text.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func asStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// asFloat accepts JSON numbers and numeric strings.
func asFloat(v any) *float64 {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return &t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return &f
	default:
		return nil
	}
}
