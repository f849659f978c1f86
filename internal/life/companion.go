// Package life assembles the entity, its memory and the agent engine into a
// single companion that is safe to drive from the heartbeat, the CLI and the
// autosaver at once.
package life

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rcliao/companion/internal/agent"
	"github.com/rcliao/companion/internal/entity"
	"github.com/rcliao/companion/internal/logger"
	"github.com/rcliao/companion/internal/memory"
	"github.com/rcliao/companion/internal/model"
	"github.com/rcliao/companion/internal/snapshot"
)

var log = logger.ForComponent("life")

// ErrEmptyMessage is returned by Chat for blank input.
var ErrEmptyMessage = errors.New("message is empty")

// DefaultTaskGrace is how long a due task may stay pending.
const DefaultTaskGrace = 24 * time.Hour

type Options struct {
	Name string
	// Seed fixes the randomness source; 0 seeds from the clock.
	Seed  int64
	Clock func() time.Time
	// Replier answers chat in place of the built-in rules.
	Replier   agent.Replier
	TaskGrace time.Duration
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	if o.TaskGrace <= 0 {
		o.TaskGrace = DefaultTaskGrace
	}
	return o
}

// Companion serialises every operation on its entity, memory and agent
// behind one mutex.
type Companion struct {
	mu     sync.Mutex
	entity *entity.Entity
	memory *memory.Store
	agent  *agent.Engine

	now   func() time.Time
	grace time.Duration
}

// New creates a newborn companion.
func New(opts Options) *Companion {
	opts = opts.withDefaults()
	rng := rand.New(rand.NewSource(opts.Seed))
	return &Companion{
		entity: entity.New(opts.Name, entity.WithRand(rng), entity.WithClock(opts.Clock)),
		memory: memory.New(memory.WithClock(opts.Clock)),
		agent:  agent.New(agentOptions(opts, rng)...),
		now:    opts.Clock,
		grace:  opts.TaskGrace,
	}
}

// FromSnapshot rebuilds a companion from a saved snapshot.
func FromSnapshot(snap model.Snapshot, opts Options) *Companion {
	opts = opts.withDefaults()
	rng := rand.New(rand.NewSource(opts.Seed))
	return &Companion{
		entity: entity.Restore(snap.Entity, entity.WithRand(rng), entity.WithClock(opts.Clock)),
		memory: memory.Restore(snap.Memories, memory.WithClock(opts.Clock)),
		agent:  agent.Restore(snap.Agent, agentOptions(opts, rng)...),
		now:    opts.Clock,
		grace:  opts.TaskGrace,
	}
}

func agentOptions(opts Options, rng *rand.Rand) []agent.Option {
	out := []agent.Option{
		agent.WithRand(rng),
		agent.WithClock(opts.Clock),
		agent.WithLogger(logger.ForComponent("agent")),
	}
	if opts.Replier != nil {
		out = append(out, agent.WithReplier(opts.Replier))
	}
	return out
}

// Open loads the newest snapshot from p. A missing, unreadable or corrupt
// snapshot never fails: the companion simply starts fresh.
func Open(ctx context.Context, p snapshot.Provider, opts Options) *Companion {
	snap, err := p.Load(ctx)
	switch {
	case err != nil:
		log.Warn("snapshot unreadable, starting fresh", "error", err)
		return New(opts)
	case snap == nil:
		log.Info("no snapshot found, a new companion is born")
		return New(opts)
	default:
		c := FromSnapshot(*snap, opts)
		log.Info("companion restored",
			"name", snap.Entity.Name,
			"saved_at", snap.SavedAt,
			"memories", len(snap.Memories),
		)
		return c
	}
}

// LastActive is when the entity last ticked.
func (c *Companion) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entity.LastActive()
}

// Tick advances the entity by dt.
func (c *Companion) Tick(dt time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entity.Tick(dt)
}

// Autonomous runs one autonomous cycle and expires long-overdue tasks.
func (c *Companion) Autonomous() {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.agent.AutonomousAction(c.entity, c.memory)
	if n := c.agent.ExpireOverdue(c.grace); n > 0 {
		log.Info("tasks expired", "count", n)
	}
	log.Debug("autonomous", "log", entry.Content, "mood", entry.Mood)
}

// ChatResult is the companion's reply along with the state it left behind.
type ChatResult struct {
	Reply    string  `json:"reply"`
	Mood     Labeled `json:"mood"`
	Activity Labeled `json:"activity"`
}

// Chat answers a user message. Blank text yields ErrEmptyMessage.
func (c *Companion) Chat(ctx context.Context, text string) (*ChatResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	reply := c.agent.HandleUserMessage(ctx, text, c.entity, c.memory)
	return &ChatResult{
		Reply:    reply,
		Mood:     moodLabel(c.entity.Mood()),
		Activity: activityLabel(c.entity.Activity()),
	}, nil
}

type Labeled struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func moodLabel(m model.Mood) Labeled {
	return Labeled{Key: string(m), Label: m.Label()}
}

func activityLabel(a model.Activity) Labeled {
	return Labeled{Key: string(a), Label: a.Label()}
}

// Status is the public projection of the companion's state.
type Status struct {
	Name        string  `json:"name"`
	Age         string  `json:"age"`
	Mood        Labeled `json:"mood"`
	Activity    Labeled `json:"activity"`
	Energy      int     `json:"energy"`
	Level       int     `json:"level"`
	LevelTitle  string  `json:"level_title"`
	Exp         float64 `json:"exp"`
	ExpToNext   float64 `json:"exp_to_next"`
	MemoryCount int     `json:"memory_count"`
	LifeSeconds float64 `json:"life_seconds"`
}

func (c *Companion) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entity
	return Status{
		Name:        e.Name(),
		Age:         e.AgeDescription(),
		Mood:        moodLabel(e.Mood()),
		Activity:    activityLabel(e.Activity()),
		Energy:      int(math.Round(e.Energy())),
		Level:       e.Level(),
		LevelTitle:  e.LevelTitle(),
		Exp:         e.Exp(),
		ExpToNext:   e.ExpToNext(),
		MemoryCount: c.memory.Count(),
		LifeSeconds: e.LifeSeconds(),
	}
}

// Logs returns up to limit life logs, newest first.
func (c *Companion) Logs(limit int) []model.LifeLog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agent.RecentLogs(limit)
}

// History returns the last limit chat messages in order.
func (c *Companion) History(limit int) []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agent.ChatHistory(limit)
}

func (c *Companion) DueTasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agent.DueTasks()
}

func (c *Companion) Tasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agent.Tasks()
}

func (c *Companion) CompleteTask(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agent.CompleteTask(id)
}

// Recall looks up memories related to query and counts it as a recall.
func (c *Companion) Recall(query string, limit int) []model.Memory {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memory.GetRelated(query, limit)
}

// Peek is Recall without the recall bookkeeping.
func (c *Companion) Peek(query string, limit int) []model.Memory {
	c.mu.Lock()
	defer c.mu.Unlock()
	return memory.Peek(c.memory).Related(query, limit)
}

// Snapshot returns a deep copy of the whole simulation.
func (c *Companion) Snapshot() model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.Snapshot{
		Entity:   c.entity.State(),
		Memories: c.memory.All(),
		Agent:    c.agent.State(),
		SavedAt:  c.now(),
	}
}

// Save writes a snapshot to p. The copy is taken under the lock and written
// outside it; a failed write leaves the live state untouched.
func (c *Companion) Save(ctx context.Context, p snapshot.Provider) error {
	snap := c.Snapshot()
	if err := p.Save(ctx, snap); err != nil {
		log.Error("save failed", "error", err)
		return err
	}
	log.Debug("saved", "memories", len(snap.Memories), "logs", len(snap.Agent.Logs))
	return nil
}
