package memory

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// clock is a settable test clock.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*Store, *clock) {
	t.Helper()
	c := &clock{t: epoch}
	return New(WithClock(c.now)), c
}

func TestImportanceLengthAndEmotion(t *testing.T) {
	base := "I am happy but also sad today"
	text := base + strings.Repeat(".", 60-len(base))
	require.Equal(t, 60, utf8.RuneCountInString(text))

	assert.InDelta(t, 0.6, Importance(text), 1e-9)
}

func TestImportance(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"short neutral", "ok", 0.3},
		{"twenty runes", strings.Repeat("a", 20), 0.4},
		{"hundred runes", strings.Repeat("a", 100), 0.6},
		{"keyword once counts once", "sad sad sad", 0.35},
		{"no partial word match", "whatever sadly", 0.3},
		{"cjk substring", "今天很开心", 0.35},
		{"capped", strings.Repeat("happy sad love miss lonely angry afraid scared worried tired ", 3), 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Importance(tt.text), 1e-9)
		})
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "world"}, Tokenize("Hello, World! hello"))
	assert.Equal(t, []string{"coffee", "today"}, Tokenize("a coffee, today。"))
	assert.Equal(t, []string{"你好", "世界"}, Tokenize("你好，世界！"))
	assert.Empty(t, Tokenize("a b c ! ?"))
}

func TestAddDerivesTags(t *testing.T) {
	s, _ := newTestStore(t)
	m := s.Add("One two three four five six seven")

	assert.Equal(t, []string{"one", "two", "three", "four", "five"}, m.Tags)
	assert.Len(t, m.Tags, MaxTags)
	assert.Equal(t, epoch, m.CreatedAt)
	assert.Equal(t, 0, m.RecallCount)
	assert.Nil(t, m.LastRecalledAt)
	assert.True(t, strings.HasPrefix(m.ID, "mem_"))
	assert.Equal(t, 1, s.Count())
}

func TestGetRelatedRecallBookkeeping(t *testing.T) {
	s, c := newTestStore(t)
	s.Add("I love drinking coffee in the morning")
	s.Add("The weather is rainy")
	s.Add("coffee beans from Kenya are great")

	c.advance(time.Minute)
	got := s.GetRelated("coffee", 5)
	require.Len(t, got, 2)

	returned := map[string]bool{}
	for _, m := range got {
		returned[m.ID] = true
		assert.Equal(t, 1, m.RecallCount)
		require.NotNil(t, m.LastRecalledAt)
		assert.Equal(t, c.t, *m.LastRecalledAt)
	}

	for _, m := range s.All() {
		if returned[m.ID] {
			assert.Equal(t, 1, m.RecallCount, m.Content)
		} else {
			assert.Equal(t, 0, m.RecallCount, m.Content)
			assert.Nil(t, m.LastRecalledAt, m.Content)
		}
	}
}

func TestGetRelatedScoresPositiveAndOrdered(t *testing.T) {
	s, c := newTestStore(t)
	s.Add("tea")
	s.Add("I am so happy about the garden and the tea and the garden again")
	c.advance(time.Hour)

	got := Peek(s).Related("garden tea", 5)
	require.Len(t, got, 2)
	assert.Contains(t, got[0].Content, "garden")

	now := c.t
	tokens := Tokenize("garden tea")
	prev := 2.0
	for _, m := range got {
		sc := relevance(m, tokens, now)
		assert.Greater(t, sc, 0.0)
		assert.LessOrEqual(t, sc, prev)
		prev = sc
	}
}

func TestGetRelatedNoMatch(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add("hello there")

	assert.Empty(t, s.GetRelated("zebra", 5))
	assert.Empty(t, s.GetRelated("", 5))
	assert.Empty(t, s.GetRelated("! ?", 5))
}

func TestGetRelatedMatchesWholeWords(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add("this is nothing special about my weekend")
	s.Add("education matters a lot")
	s.Add("my cat sleeps all day")

	assert.Empty(t, s.GetRelated("hi", 5))
	got := s.GetRelated("cat", 5)
	require.Len(t, got, 1)
	assert.Equal(t, "my cat sleeps all day", got[0].Content)

	for _, m := range s.All() {
		if m.Content != "my cat sleeps all day" {
			assert.Zero(t, m.RecallCount, m.Content)
		}
	}
}

func TestGetRelatedMatchesInsideUnsegmentedText(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add("今天去海边玩了")

	assert.Len(t, Peek(s).Related("海边", 5), 1)
}

func TestGetRelatedLimit(t *testing.T) {
	s, _ := newTestStore(t)
	for i := 0; i < 8; i++ {
		s.Add("walk in the park")
	}
	assert.Len(t, s.GetRelated("park", 3), 3)
	assert.Len(t, s.GetRelated("park", 0), DefaultRelatedLimit)
}

func TestPeekLeavesRecallAlone(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add("remember the lighthouse")

	got := Peek(s).Related("lighthouse", 5)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].RecallCount)
	assert.Equal(t, 0, s.All()[0].RecallCount)

	var r Retriever = s
	r.Related("lighthouse", 5)
	assert.Equal(t, 1, s.All()[0].RecallCount)
}

func TestRecencyFloor(t *testing.T) {
	assert.Equal(t, 1.0, recency(epoch, epoch))
	assert.InDelta(t, 0.9, recency(epoch, epoch.Add(10*time.Hour)), 1e-9)
	assert.Equal(t, RecencyFloor, recency(epoch, epoch.Add(30*24*time.Hour)))
	assert.Equal(t, 1.0, recency(epoch.Add(time.Hour), epoch))
}

func TestReturnedValuesDoNotAliasStore(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add("mountain river forest")

	got := s.GetRelated("river", 1)
	require.Len(t, got, 1)
	got[0].Tags[0] = "mutated"
	*got[0].LastRecalledAt = epoch.Add(-time.Hour)

	stored := s.All()[0]
	assert.Equal(t, "mountain", stored.Tags[0])
	assert.Equal(t, epoch, *stored.LastRecalledAt)
}

func TestGetRecentAndImportant(t *testing.T) {
	s, c := newTestStore(t)
	s.Add("first")
	c.advance(time.Second)
	s.Add("second, and I love this one quite a lot, really")
	c.advance(time.Second)
	s.Add("third")

	recent := s.GetRecent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].Content)

	important := s.GetImportant(1)
	require.Len(t, important, 1)
	assert.True(t, strings.HasPrefix(important[0].Content, "second"))
}

func TestSummarize(t *testing.T) {
	s, c := newTestStore(t)
	assert.Equal(t, EmptySummary, s.Summarize())

	s.Add("short")
	c.advance(time.Second)
	s.Add(strings.Repeat("x", 40))

	sum := s.Summarize()
	assert.True(t, strings.HasPrefix(sum, "important: "))
	assert.Contains(t, sum, " | recent: ")
	assert.Contains(t, sum, strings.Repeat("x", 30)+"…")
	assert.NotContains(t, sum, strings.Repeat("x", 31))
}

func TestRestoreClampsAndCopies(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add("keep me")
	entries := s.All()
	entries[0].Importance = 3
	entries[0].RecallCount = -2

	r := Restore(entries)
	got := r.All()
	require.Len(t, got, 1)
	assert.Equal(t, MaxImportance, got[0].Importance)
	assert.Equal(t, 0, got[0].RecallCount)
	assert.Equal(t, "keep me", got[0].Content)
}
