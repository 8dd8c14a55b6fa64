package courier

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/casualjim/courier/monitor"
	"github.com/casualjim/courier/persona"
	"github.com/casualjim/courier/pkg/slogx"
	"github.com/casualjim/courier/pkg/uuidx"
	"github.com/casualjim/courier/provider"
	"github.com/casualjim/courier/relay"
	"github.com/casualjim/courier/sink"
	"github.com/casualjim/courier/thread"
	"github.com/fogfish/opts"
)

// Turn is one inbound chat message the bridge should answer. MessageID names
// the placeholder message on the chat surface that incremental updates are
// applied to.
type Turn struct {
	ChannelID string
	MessageID string
	UserID    string
	Prompt    string
}

// Bridge relays chat turns to a generation backend and incremental output
// back to the chat surface, recording latency along the way. One Bridge
// serves any number of concurrent turns; per-turn state lives on the stack
// of each Respond call.
type Bridge struct {
	prov     provider.Provider
	model    string
	traits   *persona.Persona
	messages sink.MessageSink
	recorder *monitor.Recorder
	history  *thread.Store
	batching []opts.Option[relay.Batcher]
}

var (
	// WithProvider sets the generation backend. Required.
	WithProvider = opts.ForName[Bridge, provider.Provider]("prov")

	// WithModel sets the backend model identifier. Required.
	WithModel = opts.ForName[Bridge, string]("model")

	// WithMessages sets the chat surface updates are delivered to. Required.
	WithMessages = opts.ForName[Bridge, sink.MessageSink]("messages")

	// WithPersona sets the assistant persona composed into the system prompt.
	WithPersona = opts.ForName[Bridge, *persona.Persona]("traits")

	// WithRecorder sets the latency recorder shared across turns.
	WithRecorder = opts.ForName[Bridge, *monitor.Recorder]("recorder")

	// WithHistory sets the per-channel conversation history store.
	WithHistory = opts.ForName[Bridge, *thread.Store]("history")
)

// WithBatching forwards options to the relay batcher that paces updates to
// the chat surface.
func WithBatching(options ...opts.Option[relay.Batcher]) opts.Option[Bridge] {
	return opts.Type[Bridge](func(b *Bridge) error {
		b.batching = append(b.batching, options...)
		return nil
	})
}

// New creates a Bridge. A provider, a model and a message sink are required;
// persona, recorder and history fall back to sensible defaults.
func New(options ...opts.Option[Bridge]) (*Bridge, error) {
	b := &Bridge{}
	if err := opts.Apply(b, options); err != nil {
		return nil, err
	}

	if b.prov == nil {
		return nil, errors.New("a provider is required")
	}
	if b.model == "" {
		return nil, errors.New("a model is required")
	}
	if b.messages == nil {
		return nil, errors.New("a message sink is required")
	}
	if b.traits == nil {
		b.traits = persona.Default()
	}
	if b.recorder == nil {
		b.recorder = monitor.New()
	}
	if b.history == nil {
		b.history = thread.NewStore(0)
	}
	return b, nil
}

// Recorder exposes the latency recorder, e.g. for a stats command on the
// front end.
func (b *Bridge) Recorder() *monitor.Recorder {
	return b.recorder
}

// History exposes the conversation history store.
func (b *Bridge) History() *thread.Store {
	return b.history
}

// Respond answers one chat turn. Incremental output is streamed to the
// message sink in rate-bounded batches; the returned string is the complete
// response text. When streaming cannot start, or dies before producing a
// single fragment, the turn degrades to one blocking generation call and a
// single surface update.
//
// Quota exhaustion from the backend surfaces as a *provider.QuotaError so
// the caller can switch backends or defer; any other error means the user
// gets no content for this turn.
func (b *Bridge) Respond(ctx context.Context, turn Turn) (string, error) {
	if strings.TrimSpace(turn.Prompt) == "" {
		return "", errors.New("prompt must not be empty")
	}

	runID := uuidx.New()
	hist := b.history.Get(turn.ChannelID)
	params := provider.GenerateParams{
		RunID:        runID,
		Model:        b.model,
		Instructions: b.traits.System(),
		History:      hist.Messages(),
		Prompt:       turn.Prompt,
	}

	start := time.Now()
	content, err := b.generate(ctx, params, turn)
	if err != nil {
		return "", err
	}

	b.recorder.Record(ctx, monitor.Sample{
		RequestID: runID.String(),
		Duration:  time.Since(start),
		UserID:    turn.UserID,
		ChannelID: turn.ChannelID,
	})

	hist.Append(provider.RoleUser, turn.Prompt)
	hist.Append(provider.RoleAssistant, content)
	return content, nil
}

func (b *Bridge) generate(ctx context.Context, params provider.GenerateParams, turn Turn) (string, error) {
	events, err := b.prov.GenerateStream(ctx, params)
	if err != nil {
		slog.Debug("stream did not start, using blocking call",
			slogx.Error(err),
			slogx.Stringer("run_id", params.RunID),
		)
		return b.blockingTurn(ctx, params, turn)
	}

	batcher := relay.New(b.messages, b.batching...)
	content, err := batcher.Run(ctx, events, turn.ChannelID, turn.MessageID)
	switch {
	case err == nil:
		return content, nil
	case ctx.Err() != nil:
		return "", err
	case provider.IsQuotaExhausted(err):
		// Retrying the same backend immediately would just burn the quota
		// again; let the caller decide.
		return "", err
	default:
		// The stream died before the first fragment; the blocking path may
		// still succeed.
		slog.Debug("stream failed before first fragment, using blocking call",
			slogx.Error(err),
			slogx.Stringer("run_id", params.RunID),
		)
		return b.blockingTurn(ctx, params, turn)
	}
}

func (b *Bridge) blockingTurn(ctx context.Context, params provider.GenerateParams, turn Turn) (string, error) {
	content, err := b.prov.Generate(ctx, params)
	if err != nil {
		return "", err
	}
	if uerr := b.messages.Update(ctx, turn.ChannelID, turn.MessageID, content); uerr != nil {
		slog.Debug("dropping failed surface update", slogx.Error(uerr))
	}
	return content, nil
}
