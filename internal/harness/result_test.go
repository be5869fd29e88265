package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseResultCurrentSchema(t *testing.T) {
	output := `{
		"result": "all good",
		"model": "opus",
		"num_turns": 7,
		"total_cost_usd": 0.42,
		"usage": {
			"input_tokens": 1000,
			"output_tokens": 250,
			"cache_read_input_tokens": 500,
			"cache_creation_input_tokens": 100
		}
	}`

	result := ParseResult(output)
	require.Equal(t, "all good", result.ResultText)
	require.Equal(t, "opus", result.Model)
	require.Equal(t, 7, result.ToolCalls)
	require.InDelta(t, 0.42, result.CostUSD, 0.0001)
	require.Equal(t, 1000, result.InputTokens)
	require.Equal(t, 250, result.OutputTokens)
	require.Equal(t, 500, result.CacheReadTokens)
	require.Equal(t, 100, result.CacheCreationTokens)
}

func TestParseResultLegacySchema(t *testing.T) {
	output := `{
		"result": "legacy",
		"cost_usd": 1.23,
		"input_tokens": 10,
		"output_tokens": 5,
		"cache_read_tokens": 2,
		"cache_creation_tokens": 1
	}`

	result := ParseResult(output)
	require.InDelta(t, 1.23, result.CostUSD, 0.0001)
	require.Equal(t, 10, result.InputTokens)
	require.Equal(t, 5, result.OutputTokens)
	require.Equal(t, 2, result.CacheReadTokens)
	require.Equal(t, 1, result.CacheCreationTokens)
}

func TestParseResultLegacyCostFieldOnly(t *testing.T) {
	result := ParseResult(`{"total_cost_usd": 1.23}`)
	require.InDelta(t, 1.23, result.CostUSD, 0.0001)

	result = ParseResult(`{"cost_usd": 0.5}`)
	require.InDelta(t, 0.5, result.CostUSD, 0.0001)
}

func TestParseResultInvalidJSON(t *testing.T) {
	result := ParseResult("this is not json at all")
	require.Equal(t, "this is not json at all", result.ResultText)
	require.Zero(t, result.CostUSD)
	require.Zero(t, result.InputTokens)
}

func TestParseResultEmptyOutput(t *testing.T) {
	result := ParseResult("")
	require.Equal(t, "", result.ResultText)
	require.Zero(t, result.ToolCalls)
}

func TestParseResultMissingFieldsDefaultToZero(t *testing.T) {
	result := ParseResult(`{"result": "sparse"}`)
	require.Equal(t, "sparse", result.ResultText)
	require.Zero(t, result.CostUSD)
	require.Zero(t, result.InputTokens)
	require.Zero(t, result.OutputTokens)
	require.Zero(t, result.ToolCalls)
}

func TestParseResultTruncatesLongText(t *testing.T) {
	long := strings.Repeat("x", 2000)
	result := ParseResult(`{"result": "` + long + `"}`)
	require.Len(t, result.ResultText, 500)
}

func TestContainsPromise(t *testing.T) {
	require.True(t, ContainsPromise("work done <promise>done</promise>", "done"))
	require.True(t, ContainsPromise("<promise>  all tasks done  </promise>", "all tasks done"))
	require.True(t, ContainsPromise("<promise>truly all tasks done now</promise>", "all tasks done"))
	require.False(t, ContainsPromise("no tag here, but done", "done"))
	require.False(t, ContainsPromise("<promise>something else</promise>", "done"))
	require.False(t, ContainsPromise("", "done"))
	require.False(t, ContainsPromise("<promise>done</promise>", ""))
	require.False(t, ContainsPromise("<promise>unclosed", "unclosed"))
}

func TestContainsPromiseMultiline(t *testing.T) {
	text := "prefix\n<promise>\nshipped\n</promise>\nsuffix"
	require.True(t, ContainsPromise(text, "shipped"))
}
