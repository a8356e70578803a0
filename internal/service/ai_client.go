package service

import (
	"context"
	"errors"
	"fmt"
)

// VisionClient is the interface for multimodal model providers
type VisionClient interface {
	// GenerateContent sends a prompt, optionally with one image, and returns the raw text reply.
	// image may be nil for text-only prompts.
	GenerateContent(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)

	// IsEnabled returns whether the client is configured and ready
	IsEnabled() bool
}

// ErrClientNotConfigured is returned by a client built without an API key
var ErrClientNotConfigured = errors.New("AI client is not enabled (missing API key)")

// APIError is a non-200 reply from the model provider
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.Status, e.Body)
}

// StatusCode exposes the HTTP status for retry classification
func (e *APIError) StatusCode() int {
	return e.Status
}

// Ensure OpenAIClient implements VisionClient
var _ VisionClient = (*OpenAIClient)(nil)
