package eventbus

import (
	"context"
	"sync"
)

// Memory is an in-process Bus used by tests: Publish fans out
// synchronously to every registered handler for that message type.
type Memory struct {
	mu       sync.Mutex
	handlers map[string][]func(Message)
	sent     []Message
}

// NewMemory returns an empty in-memory bus.
func NewMemory() *Memory {
	return &Memory{handlers: make(map[string][]func(Message))}
}

func (m *Memory) Publish(ctx context.Context, msg Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	handlers := append([]func(Message){}, m.handlers[msg.Type]...)
	m.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, msgType string, handler func(Message)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[msgType] = append(m.handlers[msgType], handler)
	return nil
}

func (m *Memory) Close() error { return nil }

// Sent returns every message published so far, in publish order.
func (m *Memory) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
