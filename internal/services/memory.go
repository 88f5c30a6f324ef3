package services

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/MegaGrindStone/jester-web-ui/internal/models"
)

// Memory implements the Store interface with an in-process map. It is the default store: nothing
// survives a process restart, and each session's history is independent.
type Memory struct {
	mu       sync.RWMutex
	messages map[string][]models.Message
	seq      map[string]uint64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		messages: make(map[string][]models.Message),
		seq:      make(map[string]uint64),
	}
}

// Messages returns a copy of the stored history for the given session in insertion order.
func (m *Memory) Messages(_ context.Context, sessionID string) ([]models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.messages[sessionID]), nil
}

// AddMessage appends a message to the session's history. It generates a unique ID for the message
// by combining a per-session sequence number with the message's original ID, and returns the new ID.
func (m *Memory) AddMessage(_ context.Context, sessionID string, message models.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq[sessionID]++
	message.ID = fmt.Sprintf("%d-%s", m.seq[sessionID], message.ID)
	m.messages[sessionID] = append(m.messages[sessionID], message)
	return message.ID, nil
}

// ClearMessages replaces the session's history with an empty sequence.
func (m *Memory) ClearMessages(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.messages, sessionID)
	delete(m.seq, sessionID)
	return nil
}
