package mdconfig

// ResolveFunc merges user-level defaults with one document's configuration.
type ResolveFunc func(user UserConfig, file FileConfig) FileConfig

// Resolve is the default merge policy: defaults <- user <- file, where only
// non-zero values override. The result shares no memory with its inputs.
func Resolve(user UserConfig, file FileConfig) FileConfig {
	out := FileConfig{
		Title:        file.Title,
		Model:        DefaultModel(),
		UserPrompt:   user.UserPrompt,
		SystemPrompt: user.SystemPrompt,
		Messages:     cloneMessages(file.Messages),
		Forms:        cloneForms(file.Forms),
		Tags:         cloneStrings(file.Tags),
	}
	mergeModel(&out.Model, user.Model)
	mergeModel(&out.Model, file.Model)
	if file.UserPrompt != "" {
		out.UserPrompt = file.UserPrompt
	}
	if file.SystemPrompt != "" {
		out.SystemPrompt = file.SystemPrompt
	}
	return out
}

func mergeModel(dst *ModelConfig, src ModelConfig) {
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
		dst.Temperature = cloneFloat(src.Temperature)
	}
	if src.TopP != nil {
		dst.TopP = cloneFloat(src.TopP)
	}
	if src.FrequencyPenalty != nil {
		dst.FrequencyPenalty = cloneFloat(src.FrequencyPenalty)
	}
	if src.PresencePenalty != nil {
		dst.PresencePenalty = cloneFloat(src.PresencePenalty)
	}
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func cloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	return append([]Message(nil), msgs...)
}

func cloneForms(forms map[string]FormItem) map[string]FormItem {
	if forms == nil {
		return nil
	}
	out := make(map[string]FormItem, len(forms))
	for k, f := range forms {
		f.Options = cloneStrings(f.Options)
		out[k] = f
	}
	return out
}
