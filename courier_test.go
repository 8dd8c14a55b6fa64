package courier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/casualjim/courier/monitor"
	"github.com/casualjim/courier/persona"
	"github.com/casualjim/courier/provider"
	"github.com/casualjim/courier/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu            sync.Mutex
	fragments     []string
	streamErr     error // returned by GenerateStream itself
	failBeforeAny bool  // emit an Error event before any fragment
	generated     string
	generateErr   error
	generateCalls int
	lastParams    provider.GenerateParams
}

func (p *fakeProvider) ListModels(context.Context) ([]string, error) {
	return []string{"fake-1"}, nil
}

func (p *fakeProvider) Generate(_ context.Context, params provider.GenerateParams) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generateCalls++
	p.lastParams = params
	return p.generated, p.generateErr
}

func (p *fakeProvider) GenerateStream(_ context.Context, params provider.GenerateParams) (<-chan provider.StreamEvent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastParams = params
	if p.streamErr != nil {
		return nil, p.streamErr
	}

	events := make(chan provider.StreamEvent, len(p.fragments)+1)
	if p.failBeforeAny {
		events <- provider.Error{RunID: params.RunID, Err: errors.New("stream died on arrival")}
		close(events)
		return events, nil
	}
	for _, f := range p.fragments {
		events <- provider.Chunk{RunID: params.RunID, Fragment: f}
	}
	close(events)
	return events, nil
}

func (p *fakeProvider) HealthCheck(context.Context) bool { return true }

type memorySink struct {
	mu      sync.Mutex
	updates []string
}

func (s *memorySink) Update(_ context.Context, _, _ string, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, content)
	return nil
}

func (s *memorySink) Updates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.updates...)
}

func newTestBridge(t *testing.T, prov provider.Provider, surface *memorySink) *Bridge {
	t.Helper()
	bridge, err := New(
		WithProvider(prov),
		WithModel("fake-1"),
		WithMessages(surface),
		WithBatching(relay.WithMaxUpdateBytes(1)),
	)
	require.NoError(t, err)
	return bridge
}

func TestNew_Validation(t *testing.T) {
	surface := &memorySink{}
	prov := &fakeProvider{}

	tests := []struct {
		name  string
		build func() (*Bridge, error)
	}{
		{name: "missing provider", build: func() (*Bridge, error) {
			return New(WithModel("m"), WithMessages(surface))
		}},
		{name: "missing model", build: func() (*Bridge, error) {
			return New(WithProvider(prov), WithMessages(surface))
		}},
		{name: "missing sink", build: func() (*Bridge, error) {
			return New(WithProvider(prov), WithModel("m"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			assert.Error(t, err)
		})
	}
}

func TestBridge_RespondStreams(t *testing.T) {
	prov := &fakeProvider{fragments: []string{"it ", "is ", "tuesday"}}
	surface := &memorySink{}
	bridge := newTestBridge(t, prov, surface)

	answer, err := bridge.Respond(context.Background(), Turn{ChannelID: "general", MessageID: "m-1", Prompt: "what day is it?"})
	require.NoError(t, err)
	assert.Equal(t, "it is tuesday", answer)

	updates := surface.Updates()
	require.NotEmpty(t, updates)
	assert.Equal(t, "it is tuesday", updates[len(updates)-1])
	assert.Zero(t, prov.generateCalls, "no blocking fallback on a healthy stream")
}

func TestBridge_RejectsEmptyPrompt(t *testing.T) {
	bridge := newTestBridge(t, &fakeProvider{}, &memorySink{})
	_, err := bridge.Respond(context.Background(), Turn{ChannelID: "c", Prompt: "   "})
	assert.Error(t, err)
}

func TestBridge_FallsBackWhenStreamWontStart(t *testing.T) {
	prov := &fakeProvider{streamErr: errors.New("connection refused"), generated: "fallback answer"}
	surface := &memorySink{}
	bridge := newTestBridge(t, prov, surface)

	answer, err := bridge.Respond(context.Background(), Turn{ChannelID: "general", MessageID: "m-1", Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "fallback answer", answer)
	assert.Equal(t, 1, prov.generateCalls)
	assert.Equal(t, []string{"fallback answer"}, surface.Updates(), "blocking path delivers one update")
}

func TestBridge_FallsBackWhenStreamDiesBeforeFirstFragment(t *testing.T) {
	prov := &fakeProvider{failBeforeAny: true, generated: "recovered"}
	surface := &memorySink{}
	bridge := newTestBridge(t, prov, surface)

	answer, err := bridge.Respond(context.Background(), Turn{ChannelID: "general", MessageID: "m-1", Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", answer)
	assert.Equal(t, 1, prov.generateCalls)
}

func TestBridge_QuotaErrorsSurfaceTyped(t *testing.T) {
	quota := &provider.QuotaError{Provider: "fake", Model: "fake-1"}
	prov := &fakeProvider{streamErr: errors.New("boom"), generateErr: quota}
	bridge := newTestBridge(t, prov, &memorySink{})

	_, err := bridge.Respond(context.Background(), Turn{ChannelID: "c", MessageID: "m", Prompt: "hello"})
	require.Error(t, err)
	assert.True(t, provider.IsQuotaExhausted(err))
}

func TestBridge_RecordsLatency(t *testing.T) {
	prov := &fakeProvider{fragments: []string{"ok"}}
	surface := &memorySink{}
	recorder := monitor.New()

	bridge, err := New(
		WithProvider(prov),
		WithModel("fake-1"),
		WithMessages(surface),
		WithRecorder(recorder),
	)
	require.NoError(t, err)

	_, err = bridge.Respond(context.Background(), Turn{ChannelID: "general", MessageID: "m-1", UserID: "u-1", Prompt: "hi"})
	require.NoError(t, err)

	require.Equal(t, 1, recorder.Len())
	sample := recorder.Samples()[0]
	assert.NotEmpty(t, sample.RequestID)
	assert.Equal(t, "u-1", sample.UserID)
	assert.Equal(t, "general", sample.ChannelID)
	assert.GreaterOrEqual(t, sample.Duration, time.Duration(0))
}

func TestBridge_KeepsConversationHistory(t *testing.T) {
	prov := &fakeProvider{fragments: []string{"the answer"}}
	bridge := newTestBridge(t, prov, &memorySink{})

	_, err := bridge.Respond(context.Background(), Turn{ChannelID: "general", MessageID: "m-1", Prompt: "a question"})
	require.NoError(t, err)

	messages := bridge.History().Get("general").Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, provider.Message{Role: provider.RoleUser, Content: "a question"}, messages[0])
	assert.Equal(t, provider.Message{Role: provider.RoleAssistant, Content: "the answer"}, messages[1])

	// the next turn sees the previous one as context
	_, err = bridge.Respond(context.Background(), Turn{ChannelID: "general", MessageID: "m-2", Prompt: "a follow-up"})
	require.NoError(t, err)
	assert.Len(t, prov.lastParams.History, 2)
}

func TestBridge_PersonaBecomesInstructions(t *testing.T) {
	traits := persona.New()
	traits.Set("role", "You are a test fixture.")

	prov := &fakeProvider{fragments: []string{"ok"}}
	bridge, err := New(
		WithProvider(prov),
		WithModel("fake-1"),
		WithMessages(&memorySink{}),
		WithPersona(traits),
	)
	require.NoError(t, err)

	_, err = bridge.Respond(context.Background(), Turn{ChannelID: "c", MessageID: "m", Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "You are a test fixture.", prov.lastParams.Instructions)
}
