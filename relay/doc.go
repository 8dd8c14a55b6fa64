// Package relay turns the firehose of incremental fragments coming out of a
// generation backend into a bounded sequence of chat-surface updates. Chat
// surfaces rate-limit message edits, so updates are batched by size and time;
// content is never dropped or reordered because every update carries the full
// accumulated text.
package relay
