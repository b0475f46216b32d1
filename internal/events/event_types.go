package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/RealCodeCrafter/trt-backend/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPartCreated     EventType = "part_created"
	EventPartUpdated     EventType = "part_updated"
	EventPartDeleted     EventType = "part_deleted"
	EventCategoryCreated EventType = "category_created"
	EventCategoryUpdated EventType = "category_updated"
	EventCategoryDeleted EventType = "category_deleted"
)

// CatalogEventTypes lists every catalog change event.
var CatalogEventTypes = []EventType{
	EventPartCreated,
	EventPartUpdated,
	EventPartDeleted,
	EventCategoryCreated,
	EventCategoryUpdated,
	EventCategoryDeleted,
}

// Actor identifies who triggered a change.
type Actor struct {
	UserID   int64       `json:"user_id,omitempty"`
	Username string      `json:"username,omitempty"`
	Role     domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	EntityID  int64     `json:"entity_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, entityID int64, actor Actor, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// PartPayload payload.
type PartPayload struct {
	TrtCode string `json:"trt_code"`
	Brand   string `json:"brand"`
}

// CategoryPayload payload.
type CategoryPayload struct {
	Name string `json:"name"`
}
