// Package thread keeps a bounded, in-memory conversation history per chat
// channel. Nothing is persisted: when the process goes away, so does the
// history. The bound keeps long-lived channels from growing the prompt
// without limit.
package thread

import (
	"slices"
	"sync"

	"github.com/alphadose/haxmap"
	"github.com/casualjim/courier/provider"
)

// DefaultMaxTurns is the per-channel history capacity in messages.
const DefaultMaxTurns = 50

// Thread is the bounded message history of one channel. Appending beyond
// capacity evicts the oldest messages first.
type Thread struct {
	mu       sync.Mutex
	maxTurns int
	messages []provider.Message
}

// Append records one turn at the end of the history.
func (t *Thread) Append(role, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.messages = append(t.messages, provider.Message{Role: role, Content: content})
	if overflow := len(t.messages) - t.maxTurns; overflow > 0 {
		t.messages = slices.Delete(t.messages, 0, overflow)
	}
}

// Messages returns a copy of the history, oldest first.
func (t *Thread) Messages() []provider.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.messages)
}

// Len returns the number of retained messages.
func (t *Thread) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// Store hands out the thread for a channel, creating it on first use.
// It is safe for concurrent use across request-handling goroutines.
type Store struct {
	threads  *haxmap.Map[string, *Thread]
	maxTurns int
}

// NewStore creates a store whose threads retain up to maxTurns messages
// each; zero or negative means DefaultMaxTurns.
func NewStore(maxTurns int) *Store {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Store{
		threads:  haxmap.New[string, *Thread](),
		maxTurns: maxTurns,
	}
}

// Get returns the thread for channelID, creating an empty one if needed.
func (s *Store) Get(channelID string) *Thread {
	t, _ := s.threads.GetOrCompute(channelID, func() *Thread {
		return &Thread{maxTurns: s.maxTurns}
	})
	return t
}

// Forget drops the history of channelID.
func (s *Store) Forget(channelID string) {
	s.threads.Del(channelID)
}
