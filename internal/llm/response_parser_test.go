package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare object",
			input:    `{"reasoning": "fits"}`,
			expected: `{"reasoning": "fits"}`,
		},
		{
			name:     "markdown fenced",
			input:    "```json\n{\"reasoning\": \"fits\"}\n```",
			expected: `{"reasoning": "fits"}`,
		},
		{
			name:     "leading and trailing prose",
			input:    `Here is my selection: {"reasoning": "fits"} Hope that helps!`,
			expected: `{"reasoning": "fits"}`,
		},
		{
			name:     "braces inside strings",
			input:    `{"reasoning": "the {rooftop} space"}`,
			expected: `{"reasoning": "the {rooftop} space"}`,
		},
		{
			name:     "nested objects",
			input:    `{"a": {"b": 1}, "c": 2} trailing`,
			expected: `{"a": {"b": 1}, "c": 2}`,
		},
		{
			name:     "no json at all",
			input:    "sorry, I cannot help with that",
			expected: "sorry, I cannot help with that",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSON(tt.input))
		})
	}
}

func TestParseShortlistResponse(t *testing.T) {
	jsonStr := `{
		"selected_restaurants": ["The Grove", "  Harbor House ", "", "Meridian Hall"],
		"reasoning": "  Strong private dining fit. "
	}`

	resp, err := ParseShortlistResponse(jsonStr)
	require.NoError(t, err)
	assert.Equal(t, []string{"The Grove", "Harbor House", "Meridian Hall"}, resp.SelectedRestaurants)
	assert.Equal(t, "Strong private dining fit.", resp.Reasoning)
}

func TestParseShortlistResponseWithProse(t *testing.T) {
	jsonStr := "Based on the criteria, here is my answer:\n```json\n" +
		`{"selected_restaurants": ["The Grove"], "reasoning": "best fit"}` + "\n```"

	resp, err := ParseShortlistResponse(jsonStr)
	require.NoError(t, err)
	assert.Equal(t, []string{"The Grove"}, resp.SelectedRestaurants)
}

func TestParseShortlistResponseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed json", `{"selected_restaurants": [`},
		{"empty list", `{"selected_restaurants": [], "reasoning": "none"}`},
		{"only blank names", `{"selected_restaurants": ["", "  "], "reasoning": "none"}`},
		{"no json", "I could not decide."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseShortlistResponse(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestParseEmailContentResponse(t *testing.T) {
	jsonStr := `{"plain_text": "Dear team,\nWe would like to book.", "html": "<p>Dear team,</p>"}`

	resp, err := ParseEmailContentResponse(jsonStr)
	require.NoError(t, err)
	assert.Contains(t, resp.PlainText, "Dear team")
	assert.Contains(t, resp.HTML, "<p>")
}

func TestParseEmailContentResponseMissingPart(t *testing.T) {
	_, err := ParseEmailContentResponse(`{"plain_text": "hello", "html": ""}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty html")

	_, err = ParseEmailContentResponse(`{"plain_text": " ", "html": "<p>x</p>"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty plain_text")
}

func TestParseReplyStatusResponse(t *testing.T) {
	jsonStr := `{"status": "Confirmed", "message": "We can host your event.", "next_steps": "Sign the contract."}`

	resp, err := ParseReplyStatusResponse(jsonStr)
	require.NoError(t, err)
	assert.Equal(t, ReplyStatusConfirmed, resp.Status)
	assert.Equal(t, "We can host your event.", resp.Message)
	assert.Equal(t, "Sign the contract.", resp.NextSteps)
}

func TestParseReplyStatusResponseInvalidStatus(t *testing.T) {
	_, err := ParseReplyStatusResponse(`{"status": "maybe", "message": "unclear"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid reply status")
}
