package faq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-buddy/backend/internal/catalog"
)

func defaultMatcher(t *testing.T) *Matcher {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return NewMatcher(cat.Flatten())
}

func TestMatch_Greeting(t *testing.T) {
	for _, m := range []*Matcher{NewMatcher(nil), defaultMatcher(t)} {
		for _, in := range []string{"hello", "  Hi there", "HEY!", "good evening, campus buddy"} {
			answer, ok := m.Match(in)
			assert.True(t, ok, in)
			assert.Equal(t, GreetingReply, answer, in)
		}
	}
}

func TestIsGreeting_WordBoundaries(t *testing.T) {
	assert.True(t, IsGreeting("oh hi"))
	assert.False(t, IsGreeting("this is which"))
	assert.False(t, IsGreeting("they said so"))
	assert.False(t, IsGreeting(""))
}

func TestMatch_ExactQuestion(t *testing.T) {
	m := defaultMatcher(t)

	answer, ok := m.Match("WHERE CAN I FIND MY TIMETABLE?")
	require.True(t, ok)
	assert.Equal(t, "You can check your timetable on the student portal.", answer)
	assert.InDelta(t, 1.0, m.Similarity("where can i find my timetable?"), 1e-9)

	answer, ok = m.Match("Library card lost?")
	require.True(t, ok)
	assert.Equal(t, "Apply for a replacement card at the admin block.", answer)
}

func TestMatch_CloseQuestion(t *testing.T) {
	m := defaultMatcher(t)

	answer, ok := m.Match("lost id card")
	require.True(t, ok)
	assert.Equal(t, "Visit the admin desk and submit a replacement request.", answer)
	assert.GreaterOrEqual(t, m.Similarity("lost id card"), Cutoff)
}

func TestMatch_NoMatch(t *testing.T) {
	m := defaultMatcher(t)

	for _, in := range []string{"", "   ", "xyz", "quantum chromodynamics"} {
		answer, ok := m.Match(in)
		assert.False(t, ok, in)
		assert.Empty(t, answer)
	}
	assert.Less(t, m.Similarity("xyz"), Cutoff)
}

func TestMatch_DuplicateQuestionFirstWins(t *testing.T) {
	m := NewMatcher([]catalog.Entry{
		{Question: "Room booking?", Answer: "first"},
		{Question: "room booking?", Answer: "second"},
	})
	assert.Equal(t, 1, m.Len())

	answer, ok := m.Match("room booking?")
	require.True(t, ok)
	assert.Equal(t, "first", answer)
}

func TestMatch_Deterministic(t *testing.T) {
	m := defaultMatcher(t)
	first, ok1 := m.Match("how can i track complaint status")
	for i := 0; i < 5; i++ {
		again, ok2 := m.Match("how can i track complaint status")
		assert.Equal(t, ok1, ok2)
		assert.Equal(t, first, again)
	}
}
