package chatbot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-buddy/backend/internal/assistant"
	"github.com/campus-buddy/backend/internal/catalog"
	"github.com/campus-buddy/backend/internal/faq"
	"github.com/campus-buddy/backend/internal/storage/models"
)

type countingAnswerer struct {
	reply string
	calls int
	asked []string
}

func (a *countingAnswerer) Answer(_ context.Context, question string) string {
	a.calls++
	a.asked = append(a.asked, question)
	return a.reply
}

type failingProvider struct {
	calls int
}

func (p *failingProvider) Name() string { return "failing" }

func (p *failingProvider) Generate(context.Context, string, string) (string, error) {
	p.calls++
	return "", errors.New("connection refused")
}

func newMatcher(t *testing.T) *faq.Matcher {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return faq.NewMatcher(cat.Flatten())
}

func TestRespond_RuleMatchSkipsAssistant(t *testing.T) {
	remote := &countingAnswerer{reply: "remote"}
	d := NewDispatcher(newMatcher(t), remote, nil)

	out := d.Respond(context.Background(), "Lost ID card?")
	assert.Equal(t, SourceRule, out.Source)
	assert.Equal(t, "Visit the admin desk and submit a replacement request.", out.Answer)

	out = d.Respond(context.Background(), "hello")
	assert.Equal(t, SourceRule, out.Source)
	assert.Equal(t, faq.GreetingReply, out.Answer)

	assert.Zero(t, remote.calls)
}

func TestRespond_MissCallsAssistantOnce(t *testing.T) {
	remote := &countingAnswerer{reply: "The auditorium seats 400."}
	d := NewDispatcher(newMatcher(t), remote, nil)

	out := d.Respond(context.Background(), "How many seats does the auditorium have?")

	assert.Equal(t, Outcome{Answer: "The auditorium seats 400.", Source: SourceRemote}, out)
	assert.Equal(t, 1, remote.calls)
	assert.Equal(t, []string{"How many seats does the auditorium have?"}, remote.asked)
}

func TestRespond_AssistantFailureStillRemote(t *testing.T) {
	p := &failingProvider{}
	d := NewDispatcher(newMatcher(t), assistant.NewAdapter(p, time.Second), nil)

	out := d.Respond(context.Background(), "Explain quantum chromodynamics")

	assert.Equal(t, SourceRemote, out.Source)
	assert.NotEmpty(t, out.Answer)
	assert.Contains(t, out.Answer, "connection refused")
	assert.Equal(t, 1, p.calls)
}

func TestRespond_EmptyAssistantAnswerIsUnknown(t *testing.T) {
	remote := &countingAnswerer{reply: "  "}
	d := NewDispatcher(newMatcher(t), remote, nil)

	out := d.Respond(context.Background(), "zzz")

	assert.Equal(t, Outcome{Answer: UnknownReply, Source: SourceUnknown}, out)
	assert.Equal(t, 1, remote.calls)
}

func TestSource_Label(t *testing.T) {
	assert.Equal(t, "Campus Buddy — Instant Answer", SourceRule.Label())
	assert.Equal(t, "Campus Buddy — Smart Assistant", SourceRemote.Label())
	assert.Equal(t, "Campus Buddy", SourceUnknown.Label())
}

func TestChat_RecordsHistory(t *testing.T) {
	ctx := context.Background()
	remote := &countingAnswerer{reply: "remote answer"}
	d := NewDispatcher(newMatcher(t), remote, NewMemoryStore())

	out, sid := d.Chat(ctx, "", "hi")
	require.NotEmpty(t, sid)
	assert.Equal(t, SourceRule, out.Source)

	_, again := d.Chat(ctx, sid, "what is the wifi password for the guest network")
	assert.Equal(t, sid, again)

	turns, err := d.History(ctx, sid)
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, models.RoleUser, turns[0].Role)
	assert.Equal(t, "hi", turns[0].Text)
	assert.Equal(t, models.RoleAssistant, turns[1].Role)
	assert.Equal(t, string(SourceRule), turns[1].Source)
	assert.Equal(t, string(SourceRemote), turns[3].Source)

	require.NoError(t, d.Reset(ctx, sid))
	turns, err = d.History(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

type brokenStore struct{}

func (brokenStore) Append(context.Context, string, ...models.Turn) error {
	return errors.New("store down")
}

func (brokenStore) History(context.Context, string) ([]models.Turn, error) {
	return nil, errors.New("store down")
}

func (brokenStore) Reset(context.Context, string) error {
	return errors.New("store down")
}

func TestChat_StoreFailureDoesNotAffectAnswer(t *testing.T) {
	ctx := context.Background()
	d := NewDispatcher(newMatcher(t), &countingAnswerer{reply: "x"}, brokenStore{})

	out, sid := d.Chat(ctx, "s1", "hello")
	assert.Equal(t, "s1", sid)
	assert.Equal(t, faq.GreetingReply, out.Answer)

	_, err := d.History(ctx, sid)
	assert.Error(t, err)
	assert.Error(t, d.Reset(ctx, sid))
}
