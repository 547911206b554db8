package eventbus

import (
	"context"
	"testing"
)

func TestMemoryBusDispatchesByType(t *testing.T) {
	bus := NewMemory()
	var got []Message
	bus.Subscribe(context.Background(), TypeAircraftCreated, func(m Message) {
		got = append(got, m)
	})

	bus.Publish(context.Background(), NewMessage(TypeAircraftCreated, map[string]any{"id": "1"}))
	bus.Publish(context.Background(), NewMessage(TypePositionUpdated, map[string]any{"id": "2"}))

	if len(got) != 1 {
		t.Fatalf("expected 1 delivered message, got %d", len(got))
	}
	if got[0].Type != TypeAircraftCreated {
		t.Errorf("unexpected message delivered: %+v", got[0])
	}
}

func TestNewMessageTimestampFormat(t *testing.T) {
	m := NewMessage(TypeSystemStatus, nil)
	if len(m.Timestamp) == 0 || m.Timestamp[len(m.Timestamp)-1] != 'Z' {
		t.Errorf("expected ISO8601Z timestamp, got %q", m.Timestamp)
	}
}
