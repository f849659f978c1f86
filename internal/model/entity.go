package model

import "time"

// Mood is the companion's emotional state. The set is closed.
type Mood string

const (
	MoodCalm     Mood = "calm"
	MoodHappy    Mood = "happy"
	MoodLonely   Mood = "lonely"
	MoodExcited  Mood = "excited"
	MoodSleepy   Mood = "sleepy"
	MoodThinking Mood = "thinking"
)

// Moods lists every mood in a stable order.
var Moods = []Mood{MoodCalm, MoodHappy, MoodLonely, MoodExcited, MoodSleepy, MoodThinking}

func (m Mood) Valid() bool {
	switch m {
	case MoodCalm, MoodHappy, MoodLonely, MoodExcited, MoodSleepy, MoodThinking:
		return true
	default:
		return false
	}
}

// Label returns the human-readable name of the mood.
func (m Mood) Label() string {
	switch m {
	case MoodCalm:
		return "Calm"
	case MoodHappy:
		return "Happy"
	case MoodLonely:
		return "Missing you"
	case MoodExcited:
		return "Excited"
	case MoodSleepy:
		return "Sleepy"
	case MoodThinking:
		return "Pensive"
	default:
		return "Unknown"
	}
}

// Activity is what the companion is currently doing. The set is closed.
type Activity string

const (
	ActivityWaiting    Activity = "waiting"
	ActivitySleeping   Activity = "sleeping"
	ActivityThinking   Activity = "thinking"
	ActivityOrganizing Activity = "organizing"
	ActivityExploring  Activity = "exploring"
)

// Activities lists every activity in a stable order.
var Activities = []Activity{ActivityWaiting, ActivitySleeping, ActivityThinking, ActivityOrganizing, ActivityExploring}

func (a Activity) Valid() bool {
	switch a {
	case ActivityWaiting, ActivitySleeping, ActivityThinking, ActivityOrganizing, ActivityExploring:
		return true
	default:
		return false
	}
}

// Label returns the human-readable name of the activity.
func (a Activity) Label() string {
	switch a {
	case ActivityWaiting:
		return "Waiting for you"
	case ActivitySleeping:
		return "Sleeping"
	case ActivityThinking:
		return "Thinking"
	case ActivityOrganizing:
		return "Organizing memories"
	case ActivityExploring:
		return "Exploring"
	default:
		return "Unknown"
	}
}

// Personality holds the fixed trait weights, each in [0,1].
type Personality struct {
	Talkativeness float64 `json:"talkativeness"`
	Warmth        float64 `json:"warmth"`
	Curiosity     float64 `json:"curiosity"`
}

// DefaultPersonality is assigned to freshly created entities.
var DefaultPersonality = Personality{Talkativeness: 0.6, Warmth: 0.8, Curiosity: 0.5}

// EntityState is the serialisable form of the companion's attributes.
type EntityState struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	CreatedAt   time.Time   `json:"created_at"`
	LastActive  time.Time   `json:"last_active"`
	LifeSeconds float64     `json:"life_seconds"`
	Mood        Mood        `json:"mood"`
	Activity    Activity    `json:"activity"`
	Energy      float64     `json:"energy"`
	Level       int         `json:"level"`
	Exp         float64     `json:"exp"`
	Personality Personality `json:"personality"`
}
