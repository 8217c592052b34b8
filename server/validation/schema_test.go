package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTranslation(t *testing.T) {
	tests := []struct {
		name    string
		req     TranslationRequest
		wantErr string
	}{
		{
			name: "valid fromLeet",
			req:  TranslationRequest{Text: "h3ll0", Mode: "fromLeet"},
		},
		{
			name: "valid toLeet",
			req:  TranslationRequest{Text: "hello", Mode: "toLeet"},
		},
		{
			name:    "missing text",
			req:     TranslationRequest{Mode: "fromLeet"},
			wantErr: MsgNoTextOrMode,
		},
		{
			name:    "missing mode",
			req:     TranslationRequest{Text: "h3ll0"},
			wantErr: MsgNoTextOrMode,
		},
		{
			name:    "missing both",
			req:     TranslationRequest{},
			wantErr: MsgNoTextOrMode,
		},
		{
			name:    "unknown mode",
			req:     TranslationRequest{Text: "h3ll0", Mode: "sideways"},
			wantErr: "mode must be one of: toLeet, fromLeet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTranslation(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestValidateEnglish(t *testing.T) {
	assert.NoError(t, ValidateEnglish(EnglishRequest{Text: "h3ll0"}))

	err := ValidateEnglish(EnglishRequest{})
	require.Error(t, err)
	assert.Equal(t, MsgNoText, err.Error())
}

// wordTokenizer counts whitespace-separated words as tokens.
type wordTokenizer struct{}

func (wordTokenizer) Encode(text string, _, _ []string) []int {
	return make([]int, len(strings.Fields(text)))
}

func (w wordTokenizer) CountTokens(text string) int {
	return len(w.Encode(text, nil, nil))
}

func TestValidateTokens(t *testing.T) {
	tc := NewTokenCounterWithTokenizer(wordTokenizer{})

	assert.NoError(t, tc.ValidateTokens("one two three", 3))

	err := tc.ValidateTokens("one two three four", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceed maximum allowed")

	// Non-positive limit disables the guard entirely.
	assert.NoError(t, tc.ValidateTokens(strings.Repeat("word ", 1000), 0))
	assert.NoError(t, tc.ValidateTokens(strings.Repeat("word ", 1000), -1))
}

func TestNewTokenCounter(t *testing.T) {
	tc, err := NewTokenCounter()
	require.NoError(t, err)

	// cl100k_base assigns at least one token to non-empty text.
	assert.Greater(t, tc.CountTokens("hello world"), 0)
	assert.Equal(t, 0, tc.CountTokens(""))
}
