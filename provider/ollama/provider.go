// Package ollama configures the OpenAI-compatible binding for a local
// Ollama instance.
package ollama

import (
	"strings"

	"github.com/casualjim/courier/provider/openai"
	"github.com/openai/openai-go/option"
)

// DefaultBaseURL is where a locally running Ollama serves its
// OpenAI-compatible API.
const DefaultBaseURL = "http://localhost:11434/v1"

// New creates a provider backed by the Ollama instance at baseURL. An empty
// baseURL falls back to the local default. Ollama ignores API keys, so none
// is configured.
func New(baseURL string, options ...option.RequestOption) *openai.Provider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	defaults := []option.RequestOption{option.WithBaseURL(baseURL)}
	return openai.Named("ollama", append(defaults, options...)...)
}
