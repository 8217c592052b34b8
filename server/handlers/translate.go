// Package handlers provides HTTP handlers for the leetgate server.
// It implements the translation endpoints that relay user text to the
// upstream Gemini API and unwrap the result.
//
// The package follows these design principles:
// 1. Consistent error handling using the errors package
// 2. Structured logging with request IDs
// 3. Clear request validation before any upstream contact
// 4. Explicit result values from the upstream call; the handler decides
//    which response to emit, never relying on panics to reach a boundary
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/l33tlabs/leetgate/errors"
	"github.com/l33tlabs/leetgate/server/metrics"
	"github.com/l33tlabs/leetgate/server/middleware"
	"github.com/l33tlabs/leetgate/server/validation"
	"go.uber.org/zap"
)

// Direction selects which fixed prompt template a request uses.
type Direction string

const (
	// DirectionToLeet translates English into leet speak
	DirectionToLeet Direction = "toLeet"

	// DirectionFromLeet translates leet speak into English
	DirectionFromLeet Direction = "fromLeet"
)

// The two instruction templates. The user's text is interpolated
// verbatim inside the quotes; the templates are never interchanged.
const (
	fromLeetTemplate = `Translate the following leet speak phrase into plain English. Respond with the translation text only: "%s"`

	toLeetTemplate = `Translate the following English phrase into leet speak. Use both character substitutions (such as e to 3, a to 4, t to 7) and common leet slang word substitutions. Respond with the translation text only: "%s"`
)

// BuildPrompt renders the instruction template for the given direction.
func BuildPrompt(direction Direction, text string) string {
	if direction == DirectionToLeet {
		return fmt.Sprintf(toLeetTemplate, text)
	}
	return fmt.Sprintf(fromLeetTemplate, text)
}

// Generator is the upstream dependency of the translation handlers.
// *gemini.Client satisfies it; tests substitute their own.
type Generator interface {
	Generate(ctx context.Context, prompt, apiKey string) (string, error)
}

// KeySource supplies the upstream API key. The key is looked up on
// every invocation and never cached, so a rotated deployment value
// takes effect immediately.
type KeySource interface {
	APIKey() string
}

// EnvKeySource reads the API key from an environment variable each
// time it is asked.
type EnvKeySource struct {
	Var string
}

// APIKey implements KeySource.
func (s EnvKeySource) APIKey() string {
	return os.Getenv(s.Var)
}

// TranslationResponse is the success reply for both endpoints.
type TranslationResponse struct {
	Translation string `json:"translation"`
}

// TranslateHandler handles translation requests. One handler value
// serves either the bidirectional endpoint (text + mode) or the
// single-direction leet-to-English endpoint (text only), depending on
// how it was constructed.
type TranslateHandler struct {
	generator       Generator
	keys            KeySource
	counter         *validation.TokenCounter
	maxPromptTokens int
	logger          *zap.Logger
	metrics         *metrics.Metrics
	bidirectional   bool
}

// NewTranslateHandler creates the handler for the bidirectional
// endpoint. The token counter and metrics collector may be nil.
func NewTranslateHandler(gen Generator, keys KeySource, counter *validation.TokenCounter, maxPromptTokens int, logger *zap.Logger, m *metrics.Metrics) *TranslateHandler {
	return &TranslateHandler{
		generator:       gen,
		keys:            keys,
		counter:         counter,
		maxPromptTokens: maxPromptTokens,
		logger:          logger,
		metrics:         m,
		bidirectional:   true,
	}
}

// NewEnglishHandler creates the handler for the single-direction
// endpoint, which only translates leet speak into English.
func NewEnglishHandler(gen Generator, keys KeySource, counter *validation.TokenCounter, maxPromptTokens int, logger *zap.Logger, m *metrics.Metrics) *TranslateHandler {
	return &TranslateHandler{
		generator:       gen,
		keys:            keys,
		counter:         counter,
		maxPromptTokens: maxPromptTokens,
		logger:          logger,
		metrics:         m,
		bidirectional:   false,
	}
}

// ServeHTTP implements http.Handler. Processing is a single linear
// pass: method gate, configuration check, parse and validate, build
// prompt, call upstream, respond. Exactly one response is written per
// request; every failure after the method and configuration gates
// surfaces as a 500 with the failure's message.
func (h *TranslateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Method gate: plain-text body, no JSON.
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := middleware.GetRequestID(r.Context())
	logger := h.logger.With(
		zap.String("request_id", requestID),
		zap.String("path", r.URL.Path),
	)

	// Configuration gate: the key is re-read on every invocation.
	apiKey := h.keys.APIKey()
	if apiKey == "" {
		logger.Error("Upstream API key is not configured")
		errors.WriteError(w, errors.NewConfigError(requestID, "GEMINI_API_KEY is not set"))
		return
	}

	text, direction, gateErr := h.parseRequest(r, requestID)
	if gateErr != nil {
		if gateErr.Type == errors.ValidationError {
			logger.Warn("Invalid translation request", zap.String("error", gateErr.Message))
		} else {
			errors.LogError(logger, gateErr, requestID)
		}
		errors.WriteError(w, gateErr)
		return
	}

	if h.counter != nil {
		if err := h.counter.ValidateTokens(text, h.maxPromptTokens); err != nil {
			logger.Warn("Prompt too large", zap.Error(err))
			errors.WriteError(w, errors.NewValidationError(requestID, err.Error()))
			return
		}
	}

	prompt := BuildPrompt(direction, text)
	logger.Debug("Calling upstream",
		zap.String("direction", string(direction)),
		zap.Int("prompt_length", len(prompt)),
	)

	translation, err := h.generator.Generate(r.Context(), prompt, apiKey)
	if err != nil {
		errors.LogError(logger, err, requestID)
		errors.WriteError(w, errors.NewUpstreamError(requestID, err.Error(), err))
		return
	}

	if h.metrics != nil {
		h.metrics.TranslationsTotal.WithLabelValues(string(direction)).Inc()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(TranslationResponse{Translation: translation}); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

// parseRequest decodes and validates the request body for this
// handler's variant. A malformed JSON body is deliberately not a 400:
// it flows into the general failure path and surfaces as a 500, while
// missing fields are client errors with fixed messages.
func (h *TranslateHandler) parseRequest(r *http.Request, requestID string) (string, Direction, *errors.GateError) {
	if h.bidirectional {
		var req validation.TranslationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", "", errors.NewInternalError(requestID, fmt.Errorf("decode request body: %v", err))
		}
		if err := validation.ValidateTranslation(req); err != nil {
			return "", "", errors.NewValidationError(requestID, err.Error())
		}
		return req.Text, Direction(req.Mode), nil
	}

	var req validation.EnglishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", "", errors.NewInternalError(requestID, fmt.Errorf("decode request body: %v", err))
	}
	if err := validation.ValidateEnglish(req); err != nil {
		return "", "", errors.NewValidationError(requestID, err.Error())
	}
	return req.Text, DirectionFromLeet, nil
}
