// Package courier is a personal assistant bridge: it relays natural-language
// chat turns between a messaging front end and interchangeable
// text-generation backends, batching incremental output back to the chat
// surface and tracking response latency.
//
// The moving parts:
//
//   - provider: the contract every generation backend satisfies, with
//     bindings for OpenAI, OpenRouter and local Ollama instances
//   - relay: batches a stream of text fragments into rate-bounded surface
//     updates that always carry the full accumulated content
//   - monitor: a bounded latency ring with rolling statistics and
//     slow-response alerting
//   - sink: the outbound contracts (message updates, alerts) plus a NATS
//     transport for remote surfaces
//   - persona and thread: system-prompt composition and bounded in-memory
//     conversation history
//
// The Bridge in this package wires them into the turn lifecycle: resolve
// persona and history, stream from the provider through the relay, fall back
// to a blocking call when the stream dies early, then record the turn's
// latency.
//
//	bridge, err := courier.New(
//	    courier.WithProvider(openai.New(apiKey)),
//	    courier.WithModel("gpt-4o-mini"),
//	    courier.WithMessages(mySink),
//	)
//	if err != nil { ... }
//	answer, err := bridge.Respond(ctx, courier.Turn{
//	    ChannelID: "general",
//	    MessageID: "m-1",
//	    Prompt:    "what's on my calendar?",
//	})
package courier
