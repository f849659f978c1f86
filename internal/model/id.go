package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// ID prefixes per record kind.
const (
	PrefixEntity  = "ent"
	PrefixMemory  = "mem"
	PrefixTask    = "task"
	PrefixLog     = "log"
	PrefixMessage = "msg"
)

// NewID returns "<prefix>_<ULID>" with the ULID timestamp taken from t.
// IDs of one kind sort by creation time.
func NewID(prefix string, t time.Time) string {
	return prefix + "_" + ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String()
}
