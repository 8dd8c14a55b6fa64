package sink

import (
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestUpdateWireFormat(t *testing.T) {
	update := Update{
		ChannelID: "general",
		MessageID: "m-1",
		Content:   "partial **answer**",
		Timestamp: strfmt.DateTime(time.Now()),
	}

	data, err := ToJSON(update)
	require.NoError(t, err)
	assert.Equal(t, "update", gjson.GetBytes(data, "type").String())
	assert.Equal(t, "general", gjson.GetBytes(data, "channel_id").String())
	assert.Equal(t, "partial **answer**", gjson.GetBytes(data, "content").String())

	decoded, err := FromJSON(data)
	require.NoError(t, err)
	got, ok := decoded.(Update)
	require.True(t, ok)
	assert.Equal(t, update.ChannelID, got.ChannelID)
	assert.Equal(t, update.MessageID, got.MessageID)
	assert.Equal(t, update.Content, got.Content)
}

func TestAlertWireFormat(t *testing.T) {
	t.Run("with channel", func(t *testing.T) {
		alert := Alert{Title: "Slow Response Detected", Message: "Request r-1 took 31.20s (threshold: 30s)", ChannelID: "general"}

		data, err := ToJSON(alert)
		require.NoError(t, err)
		assert.Equal(t, "alert", gjson.GetBytes(data, "type").String())

		decoded, err := FromJSON(data)
		require.NoError(t, err)
		got, ok := decoded.(Alert)
		require.True(t, ok)
		assert.Equal(t, alert, got)
	})

	t.Run("channel omitted when empty", func(t *testing.T) {
		data, err := ToJSON(Alert{Title: "t", Message: "m"})
		require.NoError(t, err)
		assert.False(t, gjson.GetBytes(data, "channel_id").Exists())
	})
}

func TestFromJSON_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"type":`},
		{"unknown type", `{"type":"nope"}`},
		{"missing type", `{"channel_id":"c"}`},
		{"update missing content", `{"type":"update","channel_id":"c","message_id":"m"}`},
		{"alert missing message", `{"type":"alert","title":"t"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromJSON([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}
