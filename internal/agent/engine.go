// Package agent drives the companion's behaviour: autonomous cycles while the
// user is away and replies when they talk. It owns life logs, extracted tasks
// and chat history.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/rcliao/companion/internal/memory"
	"github.com/rcliao/companion/internal/model"
)

const (
	// AutonomousExp is granted per autonomous cycle.
	AutonomousExp = 10.0
	// ChatExp is granted per user message.
	ChatExp = 5.0
	// TaskDelay is how far ahead a newly extracted task triggers.
	TaskDelay = time.Hour
	// TaskScanWindow is how many recent user messages are scanned for tasks.
	TaskScanWindow = 10
	// RelatedLimit bounds the memories consulted for a reply.
	RelatedLimit = 3

	MaxLogs        = 500
	MaxChatHistory = 1000
)

// Body is the part of the entity the engine reads and drives.
type Body interface {
	Name() string
	Mood() model.Mood
	Activity() model.Activity
	Personality() model.Personality
	Energy() float64
	Level() int
	LevelTitle() string
	AgeDescription() string
	SetActivity(model.Activity)
	AddExp(amount float64) bool
	OnUserInteraction()
}

// Memory is the part of the memory store the engine uses. Related is a
// recall and updates bookkeeping on what it returns.
type Memory interface {
	memory.Retriever
	Add(text string) model.Memory
	Summarize() string
	Count() int
}

var narratives = []string{
	"Sorted through %d memories today. I've been around for %s and I'm feeling %s.",
	"Spent a quiet while with %d memories. %s old, mood: %s.",
	"Went over the %d things you've told me. It's been %s and I feel %s.",
	"Tidied up %d memories while you were away. Alive for %s, feeling %s.",
}

// Engine is not safe for concurrent use; callers serialise access together
// with the Body and Memory they pass in.
type Engine struct {
	logs  []model.LifeLog
	tasks []model.Task
	chat  []model.ChatMessage

	rng     *rand.Rand
	now     func() time.Time
	replier Replier
	rules   *RuleReplier
	log     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithReplier replaces the rule replier. The rule replier still answers when
// r returns an error.
func WithReplier(r Replier) Option {
	return func(e *Engine) { e.replier = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now, log: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e.rules = NewRuleReplier(e.rng)
	return e
}

// Restore rebuilds an engine from persisted collections.
func Restore(st model.AgentState, opts ...Option) *Engine {
	e := New(opts...)
	st = cloneState(st)
	e.logs, e.tasks, e.chat = st.Logs, st.Tasks, st.ChatHistory
	return e
}

// State returns a deep copy of the engine's collections.
func (e *Engine) State() model.AgentState {
	return cloneState(model.AgentState{Logs: e.logs, Tasks: e.tasks, ChatHistory: e.chat})
}

func cloneState(st model.AgentState) model.AgentState {
	return model.AgentState{
		Logs:        append([]model.LifeLog{}, st.Logs...),
		Tasks:       append([]model.Task{}, st.Tasks...),
		ChatHistory: append([]model.ChatMessage{}, st.ChatHistory...),
	}
}

// AutonomousAction runs one cycle of self-directed behaviour and returns the
// life log it wrote.
func (e *Engine) AutonomousAction(body Body, mem Memory) model.LifeLog {
	body.SetActivity(model.ActivityOrganizing)
	summary := mem.Summarize()

	created := e.scanTasks()

	tmpl := narratives[e.rng.Intn(len(narratives))]
	now := e.now()
	entry := model.LifeLog{
		ID:        model.NewID(model.PrefixLog, now),
		Content:   fmt.Sprintf(tmpl, mem.Count(), body.AgeDescription(), strings.ToLower(body.Mood().Label())),
		Activity:  body.Activity(),
		Mood:      body.Mood(),
		CreatedAt: now,
	}
	e.logs = append(e.logs, entry)
	if len(e.logs) > MaxLogs {
		e.logs = append([]model.LifeLog(nil), e.logs[len(e.logs)-MaxLogs:]...)
	}

	leveled := body.AddExp(AutonomousExp)

	if e.rng.Float64() < 0.5 {
		body.SetActivity(model.ActivityThinking)
	} else {
		body.SetActivity(model.ActivityWaiting)
	}

	e.log.Debug("autonomous cycle",
		"log_id", entry.ID,
		"tasks_created", created,
		"leveled_up", leveled,
		"summary", summary,
	)
	return entry
}

// scanTasks extracts tasks from the most recent user messages, skipping any
// whose text is already pending. It returns the number created.
func (e *Engine) scanTasks() int {
	var recent []string
	for i := len(e.chat) - 1; i >= 0 && len(recent) < TaskScanWindow; i-- {
		if e.chat[i].Role == model.RoleUser {
			recent = append(recent, e.chat[i].Text)
		}
	}

	pending := map[string]bool{}
	for _, t := range e.tasks {
		if t.Status == model.TaskPending {
			pending[t.Content] = true
		}
	}

	now := e.now()
	created := 0
	// Oldest first, so tasks are stored in the order they were asked for.
	for i := len(recent) - 1; i >= 0; i-- {
		text := ExtractTask(recent[i])
		if text == "" || pending[text] {
			continue
		}
		pending[text] = true
		e.tasks = append(e.tasks, model.Task{
			ID:        model.NewID(model.PrefixTask, now),
			Content:   text,
			TriggerAt: now.Add(TaskDelay),
			Status:    model.TaskPending,
			CreatedAt: now,
		})
		created++
	}
	return created
}

// HandleUserMessage records text, lets it affect the entity and memory, and
// returns the companion's reply. text must be non-empty.
func (e *Engine) HandleUserMessage(ctx context.Context, text string, body Body, mem Memory) string {
	e.appendChat(model.RoleUser, text)

	// Recalled before text is stored, so only older memories fill the slots
	// and the new entry starts with no recalls.
	related := mem.Related(text, RelatedLimit)
	mem.Add(text)
	body.OnUserInteraction()
	body.AddExp(ChatExp)

	in := ReplyInput{
		Text:           text,
		Name:           body.Name(),
		Mood:           body.Mood(),
		Activity:       body.Activity(),
		AgeDescription: body.AgeDescription(),
		Personality:    body.Personality(),
		Energy:         body.Energy(),
		Level:          body.Level(),
		LevelTitle:     body.LevelTitle(),
		Related:        related,
		Task:           ExtractTask(text),
		Summary:        mem.Summarize(),
		History:        e.ChatHistory(TaskScanWindow),
	}

	reply := e.reply(ctx, in)
	e.appendChat(model.RoleCompanion, reply)
	return reply
}

func (e *Engine) reply(ctx context.Context, in ReplyInput) string {
	if e.replier != nil {
		out, err := e.replier.Reply(ctx, in)
		if err == nil && out != "" {
			return out
		}
		e.log.Warn("replier failed, using rules", "error", err)
	}
	out, _ := e.rules.Reply(ctx, in)
	return out
}

func (e *Engine) appendChat(role model.Role, text string) {
	now := e.now()
	e.chat = append(e.chat, model.ChatMessage{
		ID:        model.NewID(model.PrefixMessage, now),
		Role:      role,
		Text:      text,
		CreatedAt: now,
	})
	if len(e.chat) > MaxChatHistory {
		e.chat = append([]model.ChatMessage(nil), e.chat[len(e.chat)-MaxChatHistory:]...)
	}
}

// DueTasks returns pending tasks whose trigger time has passed.
func (e *Engine) DueTasks() []model.Task {
	now := e.now()
	var due []model.Task
	for _, t := range e.tasks {
		if t.Status == model.TaskPending && !t.TriggerAt.After(now) {
			due = append(due, t)
		}
	}
	return due
}

// Tasks returns every task regardless of status.
func (e *Engine) Tasks() []model.Task {
	return append([]model.Task{}, e.tasks...)
}

// CompleteTask marks the task done and reports whether it existed.
func (e *Engine) CompleteTask(id string) bool {
	for i := range e.tasks {
		if e.tasks[i].ID == id {
			e.tasks[i].Status = model.TaskDone
			return true
		}
	}
	return false
}

// ExpireOverdue marks pending tasks more than grace past their trigger time
// as expired and returns how many changed.
func (e *Engine) ExpireOverdue(grace time.Duration) int {
	cutoff := e.now().Add(-grace)
	n := 0
	for i := range e.tasks {
		t := &e.tasks[i]
		if t.Status == model.TaskPending && t.TriggerAt.Before(cutoff) {
			t.Status = model.TaskExpired
			n++
		}
	}
	return n
}

// RecentLogs returns up to limit logs, newest first. limit <= 0 means all.
func (e *Engine) RecentLogs(limit int) []model.LifeLog {
	out := append([]model.LifeLog{}, e.logs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ChatHistory returns the last limit messages in chronological order.
// limit <= 0 means all.
func (e *Engine) ChatHistory(limit int) []model.ChatMessage {
	start := 0
	if limit > 0 && len(e.chat) > limit {
		start = len(e.chat) - limit
	}
	return append([]model.ChatMessage{}, e.chat[start:]...)
}
