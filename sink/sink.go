package sink

import "context"

// MessageSink receives accumulated-content updates for a message on the chat
// surface. Implementations deliver best-effort: the relay swallows delivery
// failures because every later update carries a superset of the content.
type MessageSink interface {
	Update(ctx context.Context, channelID, messageID, content string) error
}

// AlertSink receives monitoring notifications. Deliveries are fire-and-forget;
// a failing sink never affects request handling.
type AlertSink interface {
	Notify(ctx context.Context, title, message, channelID string) error
}

// MessageSinkFunc adapts a function to the MessageSink interface.
type MessageSinkFunc func(ctx context.Context, channelID, messageID, content string) error

func (fn MessageSinkFunc) Update(ctx context.Context, channelID, messageID, content string) error {
	return fn(ctx, channelID, messageID, content)
}

// AlertSinkFunc adapts a function to the AlertSink interface.
type AlertSinkFunc func(ctx context.Context, title, message, channelID string) error

func (fn AlertSinkFunc) Notify(ctx context.Context, title, message, channelID string) error {
	return fn(ctx, title, message, channelID)
}
