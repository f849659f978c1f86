package model

import "time"

// AgentState is the agent engine's share of a Snapshot.
type AgentState struct {
	Logs        []LifeLog     `json:"logs"`
	Tasks       []Task        `json:"tasks"`
	ChatHistory []ChatMessage `json:"chatHistory"`
}

// Snapshot is the whole persisted document: entity, memories, agent
// collections and the time it was taken.
type Snapshot struct {
	Entity   EntityState `json:"entity"`
	Memories []Memory    `json:"memories"`
	Agent    AgentState  `json:"agent"`
	SavedAt  time.Time   `json:"savedAt"`
}
