package provider

import (
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
)

// StreamEvent is the sealed set of events a streaming generation call can
// produce. A well-behaved stream is zero or more Chunk events followed by
// exactly one Done or Error, after which the channel is closed.
type StreamEvent interface {
	streamEvent()
}

// Chunk carries one incremental fragment of generated text. Fragment order is
// significant; concatenating every Fragment in arrival order yields the full
// response.
type Chunk struct {
	RunID     uuid.UUID       `json:"run_id"`
	Fragment  string          `json:"fragment"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Chunk) streamEvent() {}

// Done signals normal completion. Content holds the backend's view of the
// complete response when it reports one; consumers that accumulated fragments
// themselves may ignore it.
type Done struct {
	RunID     uuid.UUID       `json:"run_id"`
	Content   string          `json:"content"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Done) streamEvent() {}

// Error signals that the stream failed. When it is the first event, no
// fragment was ever produced and callers should fall back to a non-streaming
// call.
type Error struct {
	RunID     uuid.UUID       `json:"run_id"`
	Err       error           `json:"error"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Error) streamEvent() {}

func (e Error) Error() string {
	return fmt.Sprintf("run_id: %s, timestamp: %s, error: %v", e.RunID, e.Timestamp, e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}
