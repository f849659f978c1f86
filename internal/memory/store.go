// Package memory holds the companion's remembered utterances and answers
// relevance queries over them.
package memory

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rcliao/companion/internal/model"
)

const (
	DefaultRelatedLimit = 5
	DefaultListLimit    = 20

	// RecencyFloor bounds how far age can discount a memory.
	RecencyFloor = 0.5
	// RecencyDecayPerHour is subtracted from the recency factor per hour of age.
	RecencyDecayPerHour = 0.01
	// TagWeight is the score of a query token found in the tag set.
	TagWeight = 0.5

	EmptySummary = "no memories yet"
	summaryWidth = 30
)

// Retriever answers relevance queries.
type Retriever interface {
	Related(query string, limit int) []model.Memory
}

// Store is an in-memory, insertion-ordered collection of memories.
// It is not safe for concurrent use; callers serialise access.
type Store struct {
	entries []model.Memory
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for timestamps and recency.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore rebuilds a store from persisted entries.
func Restore(entries []model.Memory, opts ...Option) *Store {
	s := New(opts...)
	s.entries = make([]model.Memory, 0, len(entries))
	for _, m := range entries {
		m.Importance = math.Max(0, math.Min(MaxImportance, m.Importance))
		if m.RecallCount < 0 {
			m.RecallCount = 0
		}
		s.entries = append(s.entries, m.Clone())
	}
	return s
}

// Add remembers text, deriving its tags and importance.
func (s *Store) Add(text string) model.Memory {
	now := s.now()
	m := model.Memory{
		ID:         model.NewID(model.PrefixMemory, now),
		Content:    text,
		Importance: Importance(text),
		Tags:       extractTags(text),
		CreatedAt:  now,
	}
	s.entries = append(s.entries, m)
	return m.Clone()
}

// Count is the number of stored memories.
func (s *Store) Count() int { return len(s.entries) }

// All returns copies of every memory in insertion order.
func (s *Store) All() []model.Memory {
	out := make([]model.Memory, len(s.entries))
	for i, m := range s.entries {
		out[i] = m.Clone()
	}
	return out
}

type scored struct {
	idx   int
	score float64
}

// rank scores every entry against query and returns the positive ones,
// best first, at most limit.
func (s *Store) rank(query string, limit int, now time.Time) []scored {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	var candidates []scored
	for i, m := range s.entries {
		if sc := relevance(m, tokens, now); sc > 0 {
			candidates = append(candidates, scored{idx: i, score: sc})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

func relevance(m model.Memory, tokens []string, now time.Time) float64 {
	content := normalize(m.Content)
	inContent := map[string]bool{}
	for _, w := range words(m.Content) {
		inContent[w] = true
	}
	tags := make(map[string]bool, len(m.Tags))
	for _, t := range m.Tags {
		tags[t] = true
	}

	var contentHits, tagHits float64
	for _, tok := range tokens {
		// Unsegmented scripts have no word breaks to match on.
		if inContent[tok] || (!isASCII(tok) && strings.Contains(content, tok)) {
			contentHits++
		}
		if tags[tok] {
			tagHits++
		}
	}

	base := contentHits + TagWeight*tagHits
	if base == 0 {
		return 0
	}
	return base * m.Importance * recency(m.CreatedAt, now)
}

func recency(createdAt, now time.Time) float64 {
	ageHours := now.Sub(createdAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return math.Max(RecencyFloor, 1-ageHours*RecencyDecayPerHour)
}

// GetRelated returns the memories most relevant to query.
//
// This is a recall: every returned memory has its RecallCount incremented and
// LastRecalledAt set to now. Entries not returned are untouched. Use Peek for
// a side-effect-free lookup.
func (s *Store) GetRelated(query string, limit int) []model.Memory {
	now := s.now()
	ranked := s.rank(query, limit, now)
	out := make([]model.Memory, 0, len(ranked))
	for _, c := range ranked {
		m := &s.entries[c.idx]
		m.RecallCount++
		at := now
		m.LastRecalledAt = &at
		out = append(out, m.Clone())
	}
	return out
}

// Related makes Store a recalling Retriever.
func (s *Store) Related(query string, limit int) []model.Memory {
	return s.GetRelated(query, limit)
}

type peeker struct{ s *Store }

// Peek returns a Retriever that ranks exactly like GetRelated but leaves
// recall bookkeeping alone.
func Peek(s *Store) Retriever { return peeker{s: s} }

func (p peeker) Related(query string, limit int) []model.Memory {
	ranked := p.s.rank(query, limit, p.s.now())
	out := make([]model.Memory, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, p.s.entries[c.idx].Clone())
	}
	return out
}

// GetRecent returns the newest memories first.
func (s *Store) GetRecent(limit int) []model.Memory {
	return s.sorted(limit, func(a, b model.Memory) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// GetImportant returns the most important memories first.
func (s *Store) GetImportant(limit int) []model.Memory {
	return s.sorted(limit, func(a, b model.Memory) bool {
		return a.Importance > b.Importance
	})
}

func (s *Store) sorted(limit int, less func(a, b model.Memory) bool) []model.Memory {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	all := s.All()
	sort.SliceStable(all, func(i, j int) bool { return less(all[i], all[j]) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

// Summarize condenses the top important and recent memories into one line.
func (s *Store) Summarize() string {
	if len(s.entries) == 0 {
		return EmptySummary
	}
	return "important: " + joinContent(s.GetImportant(3)) +
		" | recent: " + joinContent(s.GetRecent(3))
}

func joinContent(ms []model.Memory) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = Excerpt(m.Content, summaryWidth)
	}
	return strings.Join(parts, "; ")
}

// Excerpt truncates s to at most n runes, marking the cut with an ellipsis.
func Excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
