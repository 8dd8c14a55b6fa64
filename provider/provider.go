package provider

import (
	"context"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
)

// Provider defines the interface for text-generation backends (e.g. OpenAI,
// OpenRouter, a local Ollama instance). Implementations handle the specifics
// of communicating with their vendor API while the rest of the application
// stays backend-agnostic.
//
// Implementations own their HTTP client: it is constructed with the provider
// at startup and torn down with it. There is no package-level client state.
type Provider interface {
	// ListModels returns the model identifiers the backend currently serves.
	// An empty slice means the backend is reachable but has nothing to offer;
	// that is not an error.
	ListModels(ctx context.Context) ([]string, error)

	// Generate performs a blocking completion and returns the full response
	// text. Quota exhaustion is reported as a *QuotaError so callers can
	// distinguish "retry later" from "misconfigured"; every other failure is
	// a generic error.
	Generate(ctx context.Context, params GenerateParams) (string, error)

	// GenerateStream starts a streaming completion. Fragments arrive as
	// Chunk events on the returned channel, followed by a single Done or
	// Error event; the channel is closed afterwards. An error return means
	// the stream could not be started at all.
	GenerateStream(ctx context.Context, params GenerateParams) (<-chan StreamEvent, error)

	// HealthCheck reports whether the backend is reachable. It bounds its
	// own timeout (a few seconds at most) and never blocks indefinitely.
	HealthCheck(ctx context.Context) bool
}

// Roles used in conversation history messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one prior turn of the conversation, passed to the backend as
// context for the current prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateParams encapsulates all parameters for a single generation request.
type GenerateParams struct {
	// RunID uniquely identifies this request for tracking and debugging
	RunID uuid.UUID

	// Model names the backend model to use for this request
	Model string

	// Instructions provide the system prompt for the assistant
	Instructions string

	// History contains prior conversation turns, oldest first
	History []Message

	// Prompt is the user's current message
	Prompt string

	// ResponseSchema, when set, asks the backend to shape its output
	// according to the given JSON schema
	ResponseSchema *StructuredOutput

	// Prevents unkeyed literals
	_ struct{}
}

// StructuredOutput defines a schema for formatted responses.
type StructuredOutput struct {
	// Name identifies this output format
	Name string

	// Description explains the purpose of this format
	Description string

	// Schema defines the JSON structure responses should follow
	Schema *jsonschema.Schema
}
