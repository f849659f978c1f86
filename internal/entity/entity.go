// Package entity implements the companion's mutable simulation state.
package entity

import (
	"math/rand"
	"time"

	"github.com/rcliao/companion/internal/model"
)

const (
	MaxEnergy = 100.0

	// SleepRecoveryRate is energy gained per second while sleeping.
	SleepRecoveryRate = 0.05
	// AwakeDrainRate is energy lost per second while awake.
	AwakeDrainRate = 0.005
	// ExhaustionThreshold forces sleep when energy drops below it.
	ExhaustionThreshold = 20.0
	// DriftChance is the per-tick probability of a mood-drift draw.
	DriftChance = 0.1
	// InteractionEnergy is restored by every user interaction.
	InteractionEnergy = 5.0
	// ExpPerLevel scales the level-up threshold: level × ExpPerLevel.
	ExpPerLevel = 100.0

	DefaultName   = "Echo"
	defaultEnergy = 80.0
)

// Entity owns an EntityState and is the only thing allowed to mutate it.
// It is not safe for concurrent use; callers serialise access.
type Entity struct {
	state model.EntityState
	rng   *rand.Rand
	now   func() time.Time
}

// Option configures an Entity.
type Option func(*Entity)

// WithRand sets the randomness source used for mood drift.
func WithRand(r *rand.Rand) Option {
	return func(e *Entity) { e.rng = r }
}

// WithClock sets the clock used for last-active bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(e *Entity) { e.now = now }
}

// New creates a freshly born entity.
func New(name string, opts ...Option) *Entity {
	e := newEntity(opts)
	if name == "" {
		name = DefaultName
	}
	now := e.now()
	e.state = model.EntityState{
		ID:          model.NewID(model.PrefixEntity, now),
		Name:        name,
		CreatedAt:   now,
		LastActive:  now,
		Mood:        model.MoodCalm,
		Activity:    model.ActivityWaiting,
		Energy:      defaultEnergy,
		Level:       1,
		Personality: model.DefaultPersonality,
	}
	return e
}

// Restore rebuilds an entity from persisted state. Out-of-range values are
// repaired so the invariants hold from the first operation on.
func Restore(s model.EntityState, opts ...Option) *Entity {
	e := newEntity(opts)
	if !s.Mood.Valid() {
		s.Mood = model.MoodCalm
	}
	if !s.Activity.Valid() {
		s.Activity = model.ActivityWaiting
	}
	if s.Level < 1 {
		s.Level = 1
	}
	if s.Exp < 0 {
		s.Exp = 0
	}
	if s.Name == "" {
		s.Name = DefaultName
	}
	s.Energy = clampEnergy(s.Energy)
	e.state = s
	return e
}

func newEntity(opts []Option) *Entity {
	e := &Entity{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e
}

// State returns a copy of the current state.
func (e *Entity) State() model.EntityState { return e.state }

func (e *Entity) Name() string                   { return e.state.Name }
func (e *Entity) Mood() model.Mood               { return e.state.Mood }
func (e *Entity) Activity() model.Activity       { return e.state.Activity }
func (e *Entity) Energy() float64                { return e.state.Energy }
func (e *Entity) Level() int                     { return e.state.Level }
func (e *Entity) Exp() float64                   { return e.state.Exp }
func (e *Entity) LastActive() time.Time          { return e.state.LastActive }
func (e *Entity) LifeSeconds() float64           { return e.state.LifeSeconds }
func (e *Entity) Personality() model.Personality { return e.state.Personality }

// Tick advances the simulation by dt.
func (e *Entity) Tick(dt time.Duration) {
	secs := dt.Seconds()
	if secs < 0 {
		secs = 0
	}
	e.state.LifeSeconds += secs
	e.state.LastActive = e.now()

	if e.state.Activity == model.ActivitySleeping {
		e.state.Energy = clampEnergy(e.state.Energy + SleepRecoveryRate*secs)
	} else {
		e.state.Energy = clampEnergy(e.state.Energy - AwakeDrainRate*secs)
	}

	if e.rng.Float64() < DriftChance {
		e.state.Mood = drift(e.state.Mood, e.rng.Float64())
	}

	// Exhaustion wins over whatever the drift picked.
	if e.state.Energy < ExhaustionThreshold {
		e.state.Mood = model.MoodSleepy
		e.state.Activity = model.ActivitySleeping
	}
}

// SetActivity overwrites the current activity.
func (e *Entity) SetActivity(a model.Activity) {
	e.state.Activity = a
}

// AddExp grants experience and reports whether at least one level was gained.
// Overflow carries into the next level, so exp < level×ExpPerLevel always holds.
func (e *Entity) AddExp(amount float64) bool {
	if amount <= 0 {
		return false
	}
	e.state.Exp += amount
	leveled := false
	for e.state.Exp >= e.threshold() {
		e.state.Exp -= e.threshold()
		e.state.Level++
		leveled = true
	}
	if leveled {
		e.state.Mood = model.MoodExcited
	}
	return leveled
}

// OnUserInteraction reacts to the user showing up.
func (e *Entity) OnUserInteraction() {
	e.state.Energy = clampEnergy(e.state.Energy + InteractionEnergy)
	if e.state.Mood == model.MoodLonely {
		e.state.Mood = model.MoodHappy
	}
	switch e.state.Activity {
	case model.ActivityWaiting, model.ActivitySleeping:
		e.state.Activity = model.ActivityThinking
	}
}

// ExpToNext is the experience still missing for the next level.
func (e *Entity) ExpToNext() float64 {
	return e.threshold() - e.state.Exp
}

func (e *Entity) threshold() float64 {
	return float64(e.state.Level) * ExpPerLevel
}

func clampEnergy(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > MaxEnergy {
		return MaxEnergy
	}
	return v
}
