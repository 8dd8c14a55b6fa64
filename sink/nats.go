package sink

import (
	"context"
	"log/slog"
	"time"

	"github.com/casualjim/courier/pkg/slogx"
	"github.com/go-openapi/strfmt"
	"github.com/nats-io/nats.go"
)

// NATSSink delivers updates and alerts as JSON events over NATS subjects.
// It implements both MessageSink and AlertSink so a single connection serves
// the whole bridge. The remote chat surface subscribes to the same subjects.
type NATSSink struct {
	client  *nats.Conn
	updates string
	alerts  string
}

// NATS creates a sink publishing to <prefix>.updates and <prefix>.alerts.
func NATS(client *nats.Conn, prefix string) *NATSSink {
	if prefix == "" {
		prefix = "courier"
	}
	return &NATSSink{
		client:  client,
		updates: prefix + ".updates",
		alerts:  prefix + ".alerts",
	}
}

func (s *NATSSink) Update(ctx context.Context, channelID, messageID, content string) error {
	eb, err := ToJSON(Update{
		ChannelID: channelID,
		MessageID: messageID,
		Content:   content,
		Timestamp: strfmt.DateTime(time.Now()),
	})
	if err != nil {
		return err
	}
	return s.client.Publish(s.updates, eb)
}

func (s *NATSSink) Notify(ctx context.Context, title, message, channelID string) error {
	eb, err := ToJSON(Alert{
		Title:     title,
		Message:   message,
		ChannelID: channelID,
		Timestamp: strfmt.DateTime(time.Now()),
	})
	if err != nil {
		return err
	}
	return s.client.Publish(s.alerts, eb)
}

// SubscribeUpdates delivers every Update published on this sink's subject to
// handler. Malformed payloads are logged and skipped.
func (s *NATSSink) SubscribeUpdates(ctx context.Context, handler func(Update)) (*nats.Subscription, error) {
	return s.client.Subscribe(s.updates, func(msg *nats.Msg) {
		event, err := FromJSON(msg.Data)
		if err != nil {
			slog.Error("failed to unmarshal update event", slogx.Error(err))
			return
		}
		if update, ok := event.(Update); ok {
			handler(update)
		}
	})
}

// SubscribeAlerts delivers every Alert published on this sink's subject to
// handler. Malformed payloads are logged and skipped.
func (s *NATSSink) SubscribeAlerts(ctx context.Context, handler func(Alert)) (*nats.Subscription, error) {
	return s.client.Subscribe(s.alerts, func(msg *nats.Msg) {
		event, err := FromJSON(msg.Data)
		if err != nil {
			slog.Error("failed to unmarshal alert event", slogx.Error(err))
			return
		}
		if alert, ok := event.(Alert); ok {
			handler(alert)
		}
	})
}
