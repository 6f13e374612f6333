package llm

import "github.com/rotemx/RAG-sub001/core"

// usageFromInfo extracts token counts from a choice's GenerationInfo.
// Providers disagree on key spelling: the OpenAI backend reports
// "PromptTokens"/"CompletionTokens", Anthropic "InputTokens"/
// "OutputTokens" and Google AI "input_tokens"/"output_tokens", so all
// known spellings are tried. Missing counts stay zero.
func usageFromInfo(info map[string]any) core.Usage {
	return core.Usage{
		InputTokens:  intFromInfo(info, "PromptTokens", "InputTokens", "input_tokens", "prompt_tokens"),
		OutputTokens: intFromInfo(info, "CompletionTokens", "OutputTokens", "output_tokens", "completion_tokens"),
	}
}

func intFromInfo(info map[string]any, keys ...string) int {
	for _, key := range keys {
		value, ok := info[key]
		if !ok {
			continue
		}
		switch n := value.(type) {
		case int:
			return n
		case int32:
			return int(n)
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return 0
}
