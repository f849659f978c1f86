package agent

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/rcliao/companion/internal/memory"
	"github.com/rcliao/companion/internal/model"
)

// ReplyInput is everything a Replier may use to answer one user message.
type ReplyInput struct {
	Text           string
	Name           string
	Mood           model.Mood
	Activity       model.Activity
	AgeDescription string
	Personality    model.Personality
	Energy         float64
	Level          int
	LevelTitle     string
	// Related holds up to three older memories relevant to Text, best first.
	Related []model.Memory
	// Task is the reminder extracted from Text, if any.
	Task    string
	Summary string
	History []model.ChatMessage
}

// Replier turns a ReplyInput into the companion's answer.
type Replier interface {
	Reply(ctx context.Context, in ReplyInput) (string, error)
}

const (
	MemoryReferenceChance = 0.5
	WarmSuffixChance      = 0.4
	WarmthThreshold       = 0.7
	excerptWidth          = 30
)

var (
	greetingWords   = []string{"hi", "hello", "hey", "hiya"}
	greetingPhrases = []string{"good morning", "good evening", "good afternoon", "你好", "嗨"}
	doingPhrases    = []string{"what are you doing", "what are you up to", "what're you doing", "你在干嘛", "你在做什么", "在干什么"}
	memoryPhrases   = []string{"remember", "memory", "memories", "记得", "记忆"}

	genericReplies = []string{
		"I see.",
		"Tell me more.",
		"That's interesting.",
		"I'm listening.",
		"Got it, thank you for telling me.",
	}
	warmSuffixes = []string{
		" I'm always here for you.",
		" It's nice to have you around.",
		" Thanks for talking with me.",
	}
)

// RuleReplier answers from keyword families and the companion's state.
// It never fails.
type RuleReplier struct {
	rng *rand.Rand
}

func NewRuleReplier(rng *rand.Rand) *RuleReplier {
	return &RuleReplier{rng: rng}
}

func (r *RuleReplier) Reply(_ context.Context, in ReplyInput) (string, error) {
	body := r.body(in)
	suffix := ""
	if in.Personality.Warmth > WarmthThreshold && r.rng.Float64() < WarmSuffixChance {
		suffix = warmSuffixes[r.rng.Intn(len(warmSuffixes))]
	}
	return moodPrefix(in.Mood) + body + suffix, nil
}

func (r *RuleReplier) body(in ReplyInput) string {
	lower := strings.ToLower(in.Text)

	switch {
	case isGreeting(in.Text, lower):
		return fmt.Sprintf("Hi! I'm %s, and I've been alive for %s.", in.Name, in.AgeDescription)
	case containsAny(lower, doingPhrases):
		return fmt.Sprintf("Right now I'm %s, feeling %s.",
			strings.ToLower(in.Activity.Label()), strings.ToLower(in.Mood.Label()))
	case containsAny(lower, memoryPhrases):
		if len(in.Related) == 0 {
			return "I don't have any memories about that yet."
		}
		parts := make([]string, len(in.Related))
		for i, m := range in.Related {
			parts[i] = memory.Excerpt(m.Content, excerptWidth)
		}
		return "I remember: " + strings.Join(parts, "; ")
	case in.Task != "":
		return fmt.Sprintf("Noted. I'll remind you: %s.", in.Task)
	}

	if len(in.Related) > 0 && r.rng.Float64() < MemoryReferenceChance {
		return fmt.Sprintf("That reminds me of when you said \"%s\".",
			memory.Excerpt(in.Related[0].Content, excerptWidth))
	}
	return genericReplies[r.rng.Intn(len(genericReplies))]
}

func moodPrefix(m model.Mood) string {
	switch m {
	case model.MoodHappy:
		return "Hey there! "
	case model.MoodLonely:
		return "I missed you... "
	case model.MoodExcited:
		return "Oh, this is exciting! "
	case model.MoodSleepy:
		return "*yawns* "
	case model.MoodThinking:
		return "Hmm, let me think. "
	case model.MoodCalm:
		return ""
	default:
		return ""
	}
}

func isGreeting(text, lower string) bool {
	for _, w := range memory.Tokenize(text) {
		for _, g := range greetingWords {
			if w == g {
				return true
			}
		}
	}
	return containsAny(lower, greetingPhrases)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
