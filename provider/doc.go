// Package provider implements an abstraction layer for interacting with
// text-generation backends (OpenAI, OpenRouter, local Ollama instances) in a
// consistent way. It defines the contract every backend must satisfy plus the
// event and error types that flow out of it.
//
// Design decisions:
//   - Provider abstraction: a single interface covering model discovery,
//     blocking generation, streaming generation, and health probing
//   - Streaming first: built around a channel of events for real-time relay
//     of incremental output
//   - Explicit clients: each binding owns its HTTP client with an explicit
//     lifecycle; there are no module-level singletons
//   - Typed errors: quota exhaustion is a distinct, catchable error so the
//     calling layer can tell "retry later" apart from "misconfigured"
//
// The streaming contract uses three event types:
//  1. Chunk: one incremental fragment of generated text
//  2. Done: normal completion, optionally carrying the full response
//  3. Error: stream failure, terminal
//
// Example usage:
//
//	prov := openai.New(apiKey)
//	events, err := prov.GenerateStream(ctx, provider.GenerateParams{
//	    RunID:        uuidx.New(),
//	    Model:        "gpt-4o-mini",
//	    Instructions: "You are a helpful assistant",
//	    Prompt:       "hello",
//	})
//	if err != nil {
//	    // stream never started, fall back to prov.Generate
//	}
//	for event := range events {
//	    switch e := event.(type) {
//	    case provider.Chunk:
//	        // incremental fragment
//	    case provider.Done:
//	        // completion
//	    case provider.Error:
//	        // terminal failure
//	    }
//	}
//
// New backends are added by implementing the Provider interface; selection
// between them is explicit configuration through the models registry, never
// runtime type inspection.
package provider
