package llm

import "errors"

var (
	// ErrUnknownProvider is returned by NewProvider for unsupported names
	ErrUnknownProvider = errors.New("unknown LLM provider")

	// ErrMissingAPIKey is returned when a hosted provider has no key
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrEmptyResponse is returned when the model answers with no text
	ErrEmptyResponse = errors.New("empty response from LLM")

	// ErrInvalidResponse is returned when the reply holds no JSON task array
	ErrInvalidResponse = errors.New("LLM response is not a JSON task array")
)
