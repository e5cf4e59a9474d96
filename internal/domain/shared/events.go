package shared

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. The values are wire-level identifiers consumed by
// the host automation platform, so they never change casing or spelling.
const (
	// EventChallengeQuestion is emitted once per security question the
	// login handshake cannot answer from the local store. Subscribers
	// surface the question to the operator.
	EventChallengeQuestion EventType = "new_qcm"
)

// ProviderTag prefixes operator-facing identifiers for this integration.
const ProviderTag = "ED"

// DeviceID derives the operator-facing device identifier for an account.
func DeviceID(username string) string {
	return ProviderTag + " - " + username
}

// Event is the base interface for all domain events.
type Event interface {
	// EventID returns the unique identifier of this event instance.
	EventID() string

	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventID implements Event interface.
func (e BaseEvent) EventID() string {
	return e.ID
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// ChallengeQuestionEvent is emitted when the login handshake meets a security
// question that has no confirmed answer in the local store. The aggregate is
// the operator-facing device identifier of the account.
type ChallengeQuestionEvent struct {
	BaseEvent
	DeviceID string `json:"device_id"`
	Question string `json:"question"`
}

// Payload implements Event interface. The key set matches what the host
// platform expects on its notification channel.
func (e ChallengeQuestionEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"device_id": e.DeviceID,
		"type":      string(EventChallengeQuestion),
		"question":  e.Question,
	}
}

// NewChallengeQuestionEvent creates a new ChallengeQuestionEvent for the
// given account.
func NewChallengeQuestionEvent(username, question string) ChallengeQuestionEvent {
	deviceID := DeviceID(username)
	return ChallengeQuestionEvent{
		BaseEvent: NewBaseEvent(EventChallengeQuestion, deviceID),
		DeviceID:  deviceID,
		Question:  question,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID          string          `json:"id"`
	Type        EventType       `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	Timestamp   time.Time       `json:"timestamp"`
	Version     int             `json:"version"`
	Payload     json.RawMessage `json:"payload"`
}

// ToEnvelope converts an event into its transport envelope.
func ToEnvelope(event Event) (EventEnvelope, error) {
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return EventEnvelope{}, err
	}
	return EventEnvelope{
		ID:          event.EventID(),
		Type:        event.EventType(),
		AggregateID: event.AggregateID(),
		Timestamp:   event.OccurredAt(),
		Version:     1,
		Payload:     payload,
	}, nil
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
