package entity

import "github.com/rcliao/companion/internal/model"

// Transition is one weighted edge of the mood-drift table.
type Transition struct {
	To          model.Mood
	Probability float64
}

// transitions is walked in order, so it must stay a slice. Whatever mass is
// left below 1.0 for a mood is the chance of staying put.
var transitions = map[model.Mood][]Transition{
	model.MoodCalm: {
		{model.MoodThinking, 0.25},
		{model.MoodHappy, 0.10},
		{model.MoodLonely, 0.10},
		{model.MoodSleepy, 0.05},
	},
	model.MoodHappy: {
		{model.MoodExcited, 0.20},
		{model.MoodCalm, 0.20},
		{model.MoodThinking, 0.08},
		{model.MoodLonely, 0.02},
	},
	model.MoodLonely: {
		{model.MoodThinking, 0.25},
		{model.MoodCalm, 0.20},
		{model.MoodSleepy, 0.10},
		{model.MoodHappy, 0.10},
	},
	model.MoodThinking: {
		{model.MoodCalm, 0.25},
		{model.MoodExcited, 0.10},
		{model.MoodLonely, 0.10},
		{model.MoodHappy, 0.05},
	},
	model.MoodExcited: {
		{model.MoodHappy, 0.30},
		{model.MoodCalm, 0.15},
		{model.MoodThinking, 0.08},
		{model.MoodSleepy, 0.02},
	},
	model.MoodSleepy: {
		{model.MoodCalm, 0.30},
		{model.MoodThinking, 0.15},
		{model.MoodLonely, 0.10},
		{model.MoodHappy, 0.03},
	},
}

// Transitions returns a copy of the drift table row for a mood.
func Transitions(from model.Mood) []Transition {
	return append([]Transition(nil), transitions[from]...)
}

// drift picks the next mood for a uniform draw r in [0,1).
func drift(from model.Mood, r float64) model.Mood {
	cum := 0.0
	for _, t := range transitions[from] {
		cum += t.Probability
		if cum > r {
			return t.To
		}
	}
	return from
}
