package assistant

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-buddy/backend/pkg/config"
)

type fakeProvider struct {
	reply  string
	err    error
	delay  time.Duration
	panics bool

	calls        atomic.Int32
	lastSystem   string
	lastQuestion string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(ctx context.Context, systemPrompt, question string) (string, error) {
	f.calls.Add(1)
	f.lastSystem = systemPrompt
	f.lastQuestion = question
	if f.panics {
		panic("provider exploded")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func TestAdapter_Answer(t *testing.T) {
	t.Run("returns trimmed reply", func(t *testing.T) {
		p := &fakeProvider{reply: "  The library opens at 8am.\n"}
		a := NewAdapter(p, time.Second)

		got := a.Answer(context.Background(), "When does the library open?")

		assert.Equal(t, "The library opens at 8am.", got)
		assert.EqualValues(t, 1, p.calls.Load())
		assert.Equal(t, Preamble, p.lastSystem)
		assert.Equal(t, "When does the library open?", p.lastQuestion)
	})

	t.Run("error becomes apology with detail", func(t *testing.T) {
		p := &fakeProvider{err: errors.New("quota exceeded")}
		got := NewAdapter(p, time.Second).Answer(context.Background(), "q")

		assert.Equal(t, "Sorry, I couldn't connect to the assistant service. (quota exceeded)", got)
		assert.EqualValues(t, 1, p.calls.Load())
	})

	t.Run("blank reply", func(t *testing.T) {
		p := &fakeProvider{reply: "   "}
		assert.Equal(t, EmptyReply, NewAdapter(p, time.Second).Answer(context.Background(), "q"))
	})

	t.Run("timeout", func(t *testing.T) {
		p := &fakeProvider{reply: "late", delay: time.Second}
		start := time.Now()
		got := NewAdapter(p, 20*time.Millisecond).Answer(context.Background(), "q")

		assert.Less(t, time.Since(start), 500*time.Millisecond)
		assert.Contains(t, got, "Sorry, I couldn't connect to the assistant service.")
		assert.Contains(t, got, "timed out")
	})

	t.Run("panic is contained", func(t *testing.T) {
		p := &fakeProvider{panics: true}
		got := NewAdapter(p, time.Second).Answer(context.Background(), "q")

		assert.Contains(t, got, "provider exploded")
	})

	t.Run("nil provider is mock", func(t *testing.T) {
		a := NewAdapter(nil, 0)
		assert.Equal(t, "mock", a.Provider())
		assert.Contains(t, a.Answer(context.Background(), " hostel wifi "), `"hostel wifi"`)
	})
}

func TestNew_ProviderSelection(t *testing.T) {
	ctx := context.Background()

	a, err := New(ctx, config.AssistantConfig{Provider: "mock", TimeoutSec: 1})
	require.NoError(t, err)
	assert.Equal(t, "mock", a.Provider())

	a, err = New(ctx, config.AssistantConfig{Provider: "gemini"})
	require.NoError(t, err)
	assert.Equal(t, "mock", a.Provider(), "missing key degrades to offline provider")

	a, err = New(ctx, config.AssistantConfig{Provider: "openai", APIKey: "sk-test", Model: "gemini-2.5-flash"})
	require.NoError(t, err)
	assert.Equal(t, "openai", a.Provider())

	_, err = New(ctx, config.AssistantConfig{Provider: "watson"})
	assert.Error(t, err)
}
