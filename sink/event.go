package sink

import (
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	updateJSON = []byte(`{"type":"update"}`)
	alertJSON  = []byte(`{"type":"alert"}`)
)

// Event is the sealed set of messages that cross the wire between the bridge
// and a remote chat surface.
type Event interface {
	wireEvent()
}

// Update carries the accumulated content of one in-flight response. Later
// updates for the same (channel, message) pair always subsume earlier ones.
type Update struct {
	ChannelID string          `json:"channel_id"`
	MessageID string          `json:"message_id"`
	Content   string          `json:"content"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Update) wireEvent() {}

// Alert carries a monitoring notification such as a slow-response warning.
type Alert struct {
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	ChannelID string          `json:"channel_id,omitempty"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Alert) wireEvent() {}

// ToJSON serializes an event with its type tag so the receiving side can
// dispatch without reflection.
func ToJSON(event Event) ([]byte, error) {
	switch e := event.(type) {
	case Update:
		return e.MarshalJSON()
	case Alert:
		return e.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown event type: %T", event)
	}
}

// FromJSON deserializes an event produced by ToJSON.
func FromJSON(data []byte) (Event, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json: %s", data)
	}

	switch typ := gjson.GetBytes(data, "type").String(); typ {
	case "update":
		var u Update
		if err := u.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return u, nil
	case "alert":
		var a Alert
		if err := a.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("missing or unknown event type: %q", typ)
	}
}

// MarshalJSON implements custom JSON marshaling for Update
func (u Update) MarshalJSON() ([]byte, error) {
	result := updateJSON

	var err error
	result, err = sjson.SetBytes(result, "channel_id", u.ChannelID)
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "message_id", u.MessageID)
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "content", u.Content)
	if err != nil {
		return nil, err
	}

	if !u.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", u.Timestamp.String())
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Update
func (u *Update) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != "update" {
		return fmt.Errorf("missing or invalid type, expected 'update'")
	}

	channelID := gjson.GetBytes(data, "channel_id")
	if !channelID.Exists() {
		return fmt.Errorf("missing required field 'channel_id'")
	}
	u.ChannelID = channelID.String()

	messageID := gjson.GetBytes(data, "message_id")
	if !messageID.Exists() {
		return fmt.Errorf("missing required field 'message_id'")
	}
	u.MessageID = messageID.String()

	content := gjson.GetBytes(data, "content")
	if !content.Exists() {
		return fmt.Errorf("missing required field 'content'")
	}
	u.Content = content.String()

	if timestamp := gjson.GetBytes(data, "timestamp"); timestamp.Exists() {
		if err := u.Timestamp.UnmarshalText([]byte(timestamp.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}

	return nil
}

// MarshalJSON implements custom JSON marshaling for Alert
func (a Alert) MarshalJSON() ([]byte, error) {
	result := alertJSON

	var err error
	result, err = sjson.SetBytes(result, "title", a.Title)
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "message", a.Message)
	if err != nil {
		return nil, err
	}

	if a.ChannelID != "" {
		result, err = sjson.SetBytes(result, "channel_id", a.ChannelID)
		if err != nil {
			return nil, err
		}
	}

	if !a.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", a.Timestamp.String())
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Alert
func (a *Alert) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != "alert" {
		return fmt.Errorf("missing or invalid type, expected 'alert'")
	}

	title := gjson.GetBytes(data, "title")
	if !title.Exists() {
		return fmt.Errorf("missing required field 'title'")
	}
	a.Title = title.String()

	message := gjson.GetBytes(data, "message")
	if !message.Exists() {
		return fmt.Errorf("missing required field 'message'")
	}
	a.Message = message.String()

	if channelID := gjson.GetBytes(data, "channel_id"); channelID.Exists() {
		a.ChannelID = channelID.String()
	}

	if timestamp := gjson.GetBytes(data, "timestamp"); timestamp.Exists() {
		if err := a.Timestamp.UnmarshalText([]byte(timestamp.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}

	return nil
}
