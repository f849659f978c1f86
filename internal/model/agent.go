package model

import "time"

// TaskStatus is the lifecycle state of a Task.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskDone    TaskStatus = "done"
	TaskExpired TaskStatus = "expired"
)

// Task is a reminder extracted from the user's chat messages.
type Task struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	TriggerAt time.Time  `json:"trigger_at"`
	Status    TaskStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// LifeLog is a narrative entry written during an autonomous cycle.
type LifeLog struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Activity  Activity  `json:"activity"`
	Mood      Mood      `json:"mood"`
	CreatedAt time.Time `json:"created_at"`
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleCompanion Role = "companion"
)

// ChatMessage is one line of conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
