// Package openrouter configures the OpenAI-compatible binding for the
// OpenRouter aggregation service.
package openrouter

import (
	"github.com/casualjim/courier/provider/openai"
	"github.com/openai/openai-go/option"
)

// DefaultBaseURL is OpenRouter's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// New creates a provider that routes requests through OpenRouter. Extra
// options are applied after the defaults so callers can still override the
// base URL, e.g. to point at a proxy.
func New(apiKey string, options ...option.RequestOption) *openai.Provider {
	defaults := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(DefaultBaseURL),
	}
	return openai.Named("openrouter", append(defaults, options...)...)
}
