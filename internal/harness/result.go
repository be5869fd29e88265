package harness

import (
	"encoding/json"
	"regexp"
	"strings"
)

// resultTextLimit bounds how much free-text output is retained.
const resultTextLimit = 500

var promiseRe = regexp.MustCompile(`(?s)<promise>(.*?)</promise>`)

// Result is the normalized outcome of one claude invocation. Both
// historical output schemas are folded into this shape; missing fields
// are zero, never an error.
type Result struct {
	ResultText          string
	InputTokens         int
	OutputTokens        int
	CacheReadTokens     int
	CacheCreationTokens int
	CostUSD             float64
	ToolCalls           int
	Model               string
}

// extractor pulls one concern out of the raw JSON document. Extractors
// are tried in order so a newer schema wins over a legacy one; adding a
// third historical layout means appending one more entry.
type extractor func(raw map[string]any, result *Result) bool

var costExtractors = []extractor{
	func(raw map[string]any, result *Result) bool {
		return setFloat(raw, "total_cost_usd", &result.CostUSD)
	},
	func(raw map[string]any, result *Result) bool {
		return setFloat(raw, "cost_usd", &result.CostUSD)
	},
}

var tokenExtractors = []extractor{
	func(raw map[string]any, result *Result) bool {
		usage, ok := raw["usage"].(map[string]any)
		if !ok {
			return false
		}
		setInt(usage, "input_tokens", &result.InputTokens)
		setInt(usage, "output_tokens", &result.OutputTokens)
		setInt(usage, "cache_read_input_tokens", &result.CacheReadTokens)
		setInt(usage, "cache_creation_input_tokens", &result.CacheCreationTokens)
		return true
	},
	func(raw map[string]any, result *Result) bool {
		found := setInt(raw, "input_tokens", &result.InputTokens)
		found = setInt(raw, "output_tokens", &result.OutputTokens) || found
		found = setInt(raw, "cache_read_tokens", &result.CacheReadTokens) || found
		found = setInt(raw, "cache_creation_tokens", &result.CacheCreationTokens) || found
		return found
	},
}

// ParseResult normalizes claude --output-format json output. Non-JSON
// input yields a zero Result carrying a truncated copy of the output as
// ResultText.
func ParseResult(output string) Result {
	result := Result{}

	var raw map[string]any
	if err := json.Unmarshal([]byte(output), &raw); err != nil {
		result.ResultText = truncate(output, resultTextLimit)
		return result
	}

	if text, ok := raw["result"].(string); ok {
		result.ResultText = truncate(text, resultTextLimit)
	}
	if model, ok := raw["model"].(string); ok {
		result.Model = model
	}
	setInt(raw, "num_turns", &result.ToolCalls)

	for _, extract := range costExtractors {
		if extract(raw, &result) {
			break
		}
	}
	for _, extract := range tokenExtractors {
		if extract(raw, &result) {
			break
		}
	}

	return result
}

// ContainsPromise reports whether text carries a <promise> tag whose
// inner text contains the configured promise.
func ContainsPromise(text, promise string) bool {
	promise = strings.TrimSpace(promise)
	if promise == "" || text == "" {
		return false
	}

	match := promiseRe.FindStringSubmatch(text)
	if match == nil {
		return false
	}
	return strings.Contains(strings.TrimSpace(match[1]), promise)
}

func setFloat(raw map[string]any, key string, dst *float64) bool {
	value, ok := raw[key].(float64)
	if !ok || value == 0 {
		return false
	}
	*dst = value
	return true
}

func setInt(raw map[string]any, key string, dst *int) bool {
	value, ok := raw[key].(float64)
	if !ok {
		return false
	}
	*dst = int(value)
	return true
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}
