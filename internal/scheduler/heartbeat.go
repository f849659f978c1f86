// Package scheduler drives the simulation clock: a heartbeat that advances
// the entity and, at a coarser cadence, triggers autonomous cycles.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rcliao/companion/internal/logger"
)

var log = logger.ForComponent("scheduler")

// ErrRunning is returned by Start when the heartbeat is already running.
var ErrRunning = errors.New("heartbeat already running")

// Target is what the heartbeat drives. Implementations serialise their own
// state; the heartbeat never calls them concurrently with itself.
type Target interface {
	LastActive() time.Time
	Tick(dt time.Duration)
	Autonomous()
}

type Config struct {
	TickInterval       time.Duration
	AutonomousInterval time.Duration
	// MaxCatchUpCycles caps autonomous cycles replayed for an offline gap.
	MaxCatchUpCycles int
	// CatchUpThreshold is the shortest gap worth catching up.
	CatchUpThreshold time.Duration
}

func DefaultConfig() Config {
	return Config{
		TickInterval:       10 * time.Second,
		AutonomousInterval: 60 * time.Second,
		MaxCatchUpCycles:   10,
		CatchUpThreshold:   60 * time.Second,
	}
}

type Stats struct {
	Beats            int64
	AutonomousCycles int64
	CaughtUp         time.Duration
	IsRunning        bool
	StartedAt        time.Time
	LastBeat         time.Time
}

type Heartbeat struct {
	target Target
	config Config
	now    func() time.Time
	onBeat func()

	// beatMu serialises beats with each other and with catch-up.
	beatMu     sync.Mutex
	lastBeat   time.Time
	sinceCycle time.Duration

	// runMu guards cancel and done, which are set only while a loop runs.
	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	stats   Stats
	statsMu sync.RWMutex
}

type Option func(*Heartbeat)

func WithClock(now func() time.Time) Option {
	return func(h *Heartbeat) { h.now = now }
}

// WithOnBeat registers fn to run after every beat and after catch-up.
func WithOnBeat(fn func()) Option {
	return func(h *Heartbeat) { h.onBeat = fn }
}

// New builds a heartbeat. Zero fields in cfg take DefaultConfig values.
func New(target Target, cfg Config, opts ...Option) *Heartbeat {
	def := DefaultConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.AutonomousInterval <= 0 {
		cfg.AutonomousInterval = def.AutonomousInterval
	}
	if cfg.MaxCatchUpCycles <= 0 {
		cfg.MaxCatchUpCycles = def.MaxCatchUpCycles
	}
	if cfg.CatchUpThreshold <= 0 {
		cfg.CatchUpThreshold = def.CatchUpThreshold
	}

	h := &Heartbeat{target: target, config: cfg, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CatchUp reconstructs time missed since the target was last active: one
// coarse tick for the whole gap, then a bounded number of autonomous cycles.
// It returns the number of cycles run.
func (h *Heartbeat) CatchUp() int {
	h.beatMu.Lock()
	defer h.beatMu.Unlock()

	now := h.now()
	h.lastBeat = now
	gap := now.Sub(h.target.LastActive())
	if gap < h.config.CatchUpThreshold {
		log.Debug("no catch-up needed", "gap", gap)
		return 0
	}

	h.target.Tick(gap)
	cycles := int(gap / h.config.AutonomousInterval)
	if cycles > h.config.MaxCatchUpCycles {
		cycles = h.config.MaxCatchUpCycles
	}
	for i := 0; i < cycles; i++ {
		h.target.Autonomous()
	}

	h.statsMu.Lock()
	h.stats.CaughtUp += gap
	h.stats.AutonomousCycles += int64(cycles)
	h.statsMu.Unlock()

	log.Info("caught up", "gap", gap.Round(time.Second), "cycles", cycles)
	if h.onBeat != nil {
		h.onBeat()
	}
	return cycles
}

// Start catches up, then beats every TickInterval until ctx is done or Stop
// is called.
func (h *Heartbeat) Start(ctx context.Context) error {
	h.runMu.Lock()
	defer h.runMu.Unlock()
	if h.done != nil {
		return ErrRunning
	}

	h.CatchUp()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	h.cancel, h.done = cancel, done

	h.statsMu.Lock()
	h.stats.IsRunning = true
	h.stats.StartedAt = h.now()
	h.statsMu.Unlock()

	log.Info("heartbeat started",
		"tick", h.config.TickInterval,
		"autonomous", h.config.AutonomousInterval,
	)

	go h.loop(ctx, done)
	return nil
}

func (h *Heartbeat) loop(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(h.config.TickInterval)
	defer close(done)
	defer h.finish(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Beat(h.now())
		}
	}
}

// finish clears the run state when the loop that owns done exits, whether
// through Stop or a cancelled parent context.
func (h *Heartbeat) finish(done chan struct{}) {
	h.runMu.Lock()
	defer h.runMu.Unlock()
	if h.done != done {
		return
	}
	h.cancel()
	h.cancel, h.done = nil, nil

	h.statsMu.Lock()
	h.stats.IsRunning = false
	h.statsMu.Unlock()

	log.Info("heartbeat stopped")
}

// Stop halts future beats and waits for one already running to finish.
func (h *Heartbeat) Stop() {
	h.runMu.Lock()
	cancel, done := h.cancel, h.done
	h.runMu.Unlock()
	if done == nil {
		return
	}
	cancel()
	<-done
}

// Beat advances the target by the time since the previous beat and runs an
// autonomous cycle once enough time has accumulated.
func (h *Heartbeat) Beat(now time.Time) {
	h.beatMu.Lock()
	defer h.beatMu.Unlock()

	if h.lastBeat.IsZero() {
		h.lastBeat = now
	}
	dt := now.Sub(h.lastBeat)
	if dt < 0 {
		dt = 0
	}
	h.lastBeat = now

	h.target.Tick(dt)
	h.sinceCycle += dt

	ran := false
	if h.sinceCycle >= h.config.AutonomousInterval {
		h.target.Autonomous()
		h.sinceCycle = 0
		ran = true
	}

	h.statsMu.Lock()
	h.stats.Beats++
	h.stats.LastBeat = now
	if ran {
		h.stats.AutonomousCycles++
	}
	h.statsMu.Unlock()

	if h.onBeat != nil {
		h.onBeat()
	}
}

func (h *Heartbeat) Stats() Stats {
	h.statsMu.RLock()
	defer h.statsMu.RUnlock()
	return h.stats
}
