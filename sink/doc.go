// Package sink defines the outbound contracts of the bridge: MessageSink for
// incremental content updates to the chat surface and AlertSink for
// monitoring notifications. The core only ever calls these interfaces;
// delivery itself lives in implementations such as the NATS sink here or the
// console sink in the terminal front end.
//
// Events that cross a process boundary are serialized with an explicit type
// tag (see ToJSON/FromJSON) so receivers can dispatch without reflection.
package sink
