// Package validation provides request schema validation for the
// translation endpoints, plus token counting for the prompt size guard.
package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pkoukk/tiktoken-go"
)

// Fixed client-facing messages for missing request fields. These are
// part of the wire contract and must not be reworded.
const (
	MsgNoText       = "No text provided"
	MsgNoTextOrMode = "No text or mode provided"
)

var validate = validator.New()

// TranslationRequest is the schema for the bidirectional endpoint.
// Both fields are required; mode must be one of the two direction
// literals.
type TranslationRequest struct {
	Text string `json:"text" validate:"required"`
	Mode string `json:"mode" validate:"required,oneof=toLeet fromLeet"`
}

// EnglishRequest is the schema for the single-direction endpoint,
// which always translates leet speak into English.
type EnglishRequest struct {
	Text string `json:"text" validate:"required"`
}

// ValidateTranslation checks a bidirectional request against its
// schema and maps validation failures onto the fixed wire messages.
func ValidateTranslation(req TranslationRequest) error {
	if err := validate.Struct(req); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			if fieldErr.Tag() == "required" {
				return errors.New(MsgNoTextOrMode)
			}
		}
		return errors.New("mode must be one of: toLeet, fromLeet")
	}
	return nil
}

// ValidateEnglish checks a single-direction request against its schema.
func ValidateEnglish(req EnglishRequest) error {
	if err := validate.Struct(req); err != nil {
		return errors.New(MsgNoText)
	}
	return nil
}

// Tokenizer defines the interface for token counting
type Tokenizer interface {
	Encode(text string, allowedSpecial, disallowedSpecial []string) []int
	CountTokens(text string) int
}

// tiktokenWrapper wraps tiktoken to implement our Tokenizer interface
type tiktokenWrapper struct {
	*tiktoken.Tiktoken
}

func (t *tiktokenWrapper) CountTokens(text string) int {
	tokens := t.Encode(text, nil, nil)
	return len(tokens)
}

// TokenCounter handles token counting for prompts using tiktoken.
// Gemini does not publish a tiktoken encoding, so cl100k_base serves
// as a close-enough estimator for the size guard.
type TokenCounter struct {
	encoding Tokenizer
}

// NewTokenCounter creates a new token counter
func NewTokenCounter() (*TokenCounter, error) {
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to get cl100k_base encoding: %v", err)
	}
	return &TokenCounter{encoding: &tiktokenWrapper{encoding}}, nil
}

// NewTokenCounterWithTokenizer creates a token counter backed by the
// given tokenizer. Used by tests to avoid loading encodings.
func NewTokenCounterWithTokenizer(enc Tokenizer) *TokenCounter {
	return &TokenCounter{encoding: enc}
}

// CountTokens counts the number of tokens in the given text
func (tc *TokenCounter) CountTokens(text string) int {
	return tc.encoding.CountTokens(text)
}

// ValidateTokens checks if the text's token count is within the limit.
// A non-positive limit disables the guard.
func (tc *TokenCounter) ValidateTokens(text string, maxPromptTokens int) error {
	if maxPromptTokens <= 0 {
		return nil
	}

	total := tc.CountTokens(text)
	if total > maxPromptTokens {
		return fmt.Errorf("prompt tokens (%d) exceed maximum allowed (%d)", total, maxPromptTokens)
	}

	return nil
}
