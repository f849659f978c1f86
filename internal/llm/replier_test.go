package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/companion/internal/agent"
	"github.com/rcliao/companion/internal/model"
)

type fakeProvider struct {
	reply string
	err   error
	got   []Message
	wait  time.Duration
}

func (f *fakeProvider) GenerateWithMessages(ctx context.Context, messages []Message, _ ...GenerateOption) (string, error) {
	f.got = messages
	if f.wait > 0 {
		select {
		case <-time.After(f.wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func (f *fakeProvider) Close() error { return nil }

func sampleInput() agent.ReplyInput {
	return agent.ReplyInput{
		Text:           "remind me to water the plants",
		Name:           "Echo",
		Mood:           model.MoodLonely,
		Activity:       model.ActivityWaiting,
		AgeDescription: "2 hours 5 minutes",
		Personality:    model.DefaultPersonality,
		Energy:         64.4,
		Level:          3,
		LevelTitle:     "Acquaintance",
		Related:        []model.Memory{{Content: "the plants look thirsty"}},
		Task:           "water the plants",
		Summary:        "important: the plants look thirsty | recent: hi",
		History: []model.ChatMessage{
			{Role: model.RoleUser, Text: "hi"},
			{Role: model.RoleCompanion, Text: "Hi! I'm Echo."},
			{Role: model.RoleUser, Text: "remind me to water the plants"},
		},
	}
}

func TestReplierUsesProvider(t *testing.T) {
	p := &fakeProvider{reply: "  Of course, I'll remind you.  "}
	r := NewReplier(p, time.Second)

	out, err := r.Reply(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "Of course, I'll remind you.", out)

	require.Len(t, p.got, 4)
	assert.Equal(t, RoleSystem, p.got[0].Role)
	assert.Equal(t, RoleUser, p.got[1].Role)
	assert.Equal(t, RoleAssistant, p.got[2].Role)
	assert.Equal(t, "remind me to water the plants", p.got[3].Content)
}

func TestReplierErrors(t *testing.T) {
	_, err := NewReplier(&fakeProvider{err: errors.New("boom")}, time.Second).Reply(context.Background(), sampleInput())
	assert.Error(t, err)

	_, err = NewReplier(&fakeProvider{reply: "   "}, time.Second).Reply(context.Background(), sampleInput())
	assert.ErrorIs(t, err, ErrLLMOperation)

	_, err = NewReplier(&fakeProvider{reply: "late", wait: time.Second}, 10*time.Millisecond).Reply(context.Background(), sampleInput())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSystemPrompt(t *testing.T) {
	prompt := SystemPrompt(sampleInput())

	assert.Contains(t, prompt, "You are Echo")
	assert.Contains(t, prompt, "Level 3 (Acquaintance)")
	assert.Contains(t, prompt, "Alive for 2 hours 5 minutes")
	assert.Contains(t, prompt, "Mood: Missing you")
	assert.Contains(t, prompt, "Energy: 64/100")
	assert.Contains(t, prompt, "warm and caring")
	assert.Contains(t, prompt, `"the plants look thirsty"`)
	assert.Contains(t, prompt, "remind them: water the plants")
}

func TestBuildMessagesAppendsUnseenText(t *testing.T) {
	in := sampleInput()
	in.History = nil
	msgs := BuildMessages(in)
	require.Len(t, msgs, 2)
	assert.Equal(t, in.Text, msgs[1].Content)
}

func TestEngineFallsBackWhenProviderFails(t *testing.T) {
	r := NewReplier(&fakeProvider{err: errors.New("offline")}, time.Second)
	var _ agent.Replier = r

	e := agent.New(agent.WithReplier(r))
	body := &stubBody{}
	mem := &stubMemory{}
	reply := e.HandleUserMessage(context.Background(), "hello", body, mem)
	assert.Contains(t, reply, "alive for 7 seconds")
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.NoError(t, Config{Provider: "OpenAI"}.Validate())
	assert.ErrorIs(t, Config{Provider: "carrier-pigeon"}.Validate(), ErrUnsupportedProvider)
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{APIKey: "k"}.Enabled())
}

type stubBody struct{}

func (stubBody) Name() string                   { return "Echo" }
func (stubBody) Mood() model.Mood               { return model.MoodCalm }
func (stubBody) Activity() model.Activity       { return model.ActivityWaiting }
func (stubBody) Personality() model.Personality { return model.Personality{} }
func (stubBody) Energy() float64                { return 50 }
func (stubBody) Level() int                     { return 1 }
func (stubBody) LevelTitle() string             { return "Newborn" }
func (stubBody) AgeDescription() string         { return "7 seconds" }
func (stubBody) SetActivity(model.Activity)     {}
func (stubBody) AddExp(float64) bool            { return false }
func (stubBody) OnUserInteraction()             {}

type stubMemory struct{}

func (stubMemory) Related(string, int) []model.Memory { return nil }
func (stubMemory) Add(text string) model.Memory       { return model.Memory{ID: "mem_x", Content: text} }
func (stubMemory) Summarize() string                  { return "no memories yet" }
func (stubMemory) Count() int                         { return 0 }
