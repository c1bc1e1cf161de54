// Package assistant talks to the remote language model used when no FAQ
// answer applies.
package assistant

import (
	"context"
	"strings"
)

// Preamble is sent as the system instruction ahead of every student question.
const Preamble = "You are Campus Buddy, a formal and concise virtual assistant for a college. " +
	"Respond politely and professionally to the following student question:"

// Provider generates a reply for a question under a system prompt. Errors
// are returned as-is; the Adapter turns them into user-facing text.
type Provider interface {
	Name() string
	Generate(ctx context.Context, systemPrompt, question string) (string, error)
}

// MockProvider answers offline with a fixed acknowledgement.
type MockProvider struct{}

func (MockProvider) Name() string { return "mock" }

func (MockProvider) Generate(_ context.Context, _ string, question string) (string, error) {
	return "Thank you for your question. (offline mode) You asked: \"" + strings.TrimSpace(question) + "\"", nil
}
