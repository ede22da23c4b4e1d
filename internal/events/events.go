package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TaskRequestEvent asks for a background task to be created. Services emit
// it instead of depending on the task package directly.
type TaskRequestEvent struct {
	// ID uniquely identifies this event instance.
	ID uuid.UUID `json:"id"`

	// Type names the kind of task being requested.
	Type string `json:"type"`

	// Payload holds the task-specific data, already JSON-encoded.
	Payload json.RawMessage `json:"payload"`

	// CreatedAt records when the event was built.
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *TaskRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskRequestEvent builds an event of the given type, marshaling payload
// to JSON.
func NewTaskRequestEvent(eventType string, payload interface{}) (*TaskRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler consumes task request events.
type EventHandler interface {
	// HandleEvent processes one event. An error means the event was not
	// handled.
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter publishes task request events to whoever is listening,
// keeping emitting services ignorant of the handlers.
type EventEmitter interface {
	// EmitEvent delivers the event to all registered handlers.
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}
