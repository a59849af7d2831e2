package chat

import (
	"slices"
	"sync"
)

// Log is the ordered, append-only message history of one conversation. Its
// snapshot is the request context for the next turn. Entries are never
// reordered, mutated or removed. Log is safe for concurrent use.
type Log struct {
	id string

	mu       sync.RWMutex
	messages []Message
}

// NewLog creates a Log identified by id and seeded with the given messages.
func NewLog(id string, seed ...Message) *Log {
	return &Log{id: id, messages: slices.Clone(seed)}
}

// ID returns the conversation identifier.
func (l *Log) ID() string { return l.id }

// Append adds msg to the end of the log.
func (l *Log) Append(msg Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

// Snapshot returns a copy of the log in chronological order.
func (l *Log) Snapshot() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.messages)
}

// Len returns the number of messages in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
