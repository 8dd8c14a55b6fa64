// Package openai binds the provider contract to the OpenAI chat completions
// API. Because several other backends speak the same wire protocol, the
// binding is reused by the openrouter and ollama packages through Named with
// a different base URL.
package openai
