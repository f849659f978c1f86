// Package model defines the core data types of the companion simulation.
package model

import "time"

// Memory is a short free-text entry remembered from a conversation.
// Content is immutable after insert; only the recall bookkeeping changes.
type Memory struct {
	ID             string     `json:"id"`
	Content        string     `json:"content"`
	Importance     float64    `json:"importance"`
	Tags           []string   `json:"tags,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastRecalledAt *time.Time `json:"last_recalled_at,omitempty"`
	RecallCount    int        `json:"recall_count"`
}

// Clone returns a deep copy so callers never alias store internals.
func (m Memory) Clone() Memory {
	if m.Tags != nil {
		m.Tags = append([]string(nil), m.Tags...)
	}
	if m.LastRecalledAt != nil {
		t := *m.LastRecalledAt
		m.LastRecalledAt = &t
	}
	return m
}
