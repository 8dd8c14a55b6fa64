package relay

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/casualjim/courier/pkg/slogx"
	"github.com/casualjim/courier/provider"
	"github.com/casualjim/courier/sink"
	"github.com/fogfish/opts"
)

const (
	// DefaultMaxUpdateBytes is how much uncommitted text accumulates before a
	// flush is forced regardless of timing.
	DefaultMaxUpdateBytes = 500

	// DefaultUpdateInterval is the minimum time between two flushes when the
	// size threshold is not reached.
	DefaultUpdateInterval = 500 * time.Millisecond
)

// Batcher bounds the update rate applied to a message sink while consuming a
// provider stream, without dropping or reordering content. Every flush sends
// the full accumulated text so far, so each update subsumes the previous one
// and a lost delivery costs nothing but one intermediate repaint.
//
// A Batcher is stateless between runs and safe to reuse, but one Run handles
// exactly one stream; concurrent streams get their own Run invocations.
type Batcher struct {
	messages       sink.MessageSink
	maxUpdateBytes int
	updateInterval time.Duration
	now            func() time.Time
}

var (
	// WithMaxUpdateBytes overrides the size threshold that forces a flush.
	WithMaxUpdateBytes = opts.ForName[Batcher, int]("maxUpdateBytes")

	// WithUpdateInterval overrides the minimum elapsed time between flushes.
	WithUpdateInterval = opts.ForName[Batcher, time.Duration]("updateInterval")
)

// New creates a Batcher that delivers flushes to messages.
func New(messages sink.MessageSink, options ...opts.Option[Batcher]) *Batcher {
	b := &Batcher{
		messages:       messages,
		maxUpdateBytes: DefaultMaxUpdateBytes,
		updateInterval: DefaultUpdateInterval,
		now:            time.Now,
	}
	if err := opts.Apply(b, options); err != nil {
		panic(err)
	}
	return b
}

// Run consumes events until the stream ends and returns the complete
// accumulated response.
//
// A flush happens after a fragment when either the uncommitted byte count
// reaches the size threshold or the update interval has elapsed since the
// last flush, whichever fires first; both counters reset on flush. When the
// stream ends normally one unconditional final flush carries the full
// content, even for an empty or single-fragment response, so the surface
// always sees at least one update.
//
// Sink failures are swallowed: the next flush carries a superset of the lost
// content. A stream error before the first fragment is returned to the
// caller with no flush so it can fall back to a non-streaming call; an error
// after fragments have arrived degrades to returning the partial content as
// the final result. Context cancellation stops consumption immediately with
// no further flushes.
func (b *Batcher) Run(ctx context.Context, events <-chan provider.StreamEvent, channelID, messageID string) (string, error) {
	var accumulated strings.Builder
	uncommitted := 0
	lastFlush := b.now()

	flush := func() {
		if err := b.messages.Update(ctx, channelID, messageID, accumulated.String()); err != nil {
			slog.Debug("dropping failed surface update",
				slogx.Error(err),
				slog.String("channel_id", channelID),
				slog.String("message_id", messageID),
			)
		}
		uncommitted = 0
		lastFlush = b.now()
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case event, ok := <-events:
			if !ok {
				flush()
				return accumulated.String(), nil
			}

			switch e := event.(type) {
			case provider.Chunk:
				accumulated.WriteString(e.Fragment)
				uncommitted += len(e.Fragment)
				if uncommitted >= b.maxUpdateBytes || b.now().Sub(lastFlush) >= b.updateInterval {
					flush()
				}
			case provider.Done:
				flush()
				return accumulated.String(), nil
			case provider.Error:
				if accumulated.Len() == 0 {
					return "", e.Err
				}
				// Partial content already reached the surface; finish with
				// what we have instead of failing the whole turn.
				flush()
				return accumulated.String(), nil
			}
		}
	}
}
