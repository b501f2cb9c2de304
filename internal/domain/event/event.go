package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/bizsuite/approval-engine/internal/domain/approval"
)

// Event represents a lifecycle event emitted by the approval engine.
// External collaborators (approver notification, audit trails) subscribe
// to these; the engine itself never delivers notifications.
type Event struct {
	ID         string                 `json:"id"`
	Type       Type                   `json:"type"`
	ItemID     string                 `json:"item_id"`
	EntityType approval.EntityType    `json:"entity_type"`
	Payload    map[string]interface{} `json:"payload"`
	Timestamp  time.Time              `json:"timestamp"`
}

// New creates a new lifecycle event with a generated id and timestamp
func New(eventType Type, item *approval.ApprovalItem, payload map[string]interface{}) *Event {
	return &Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ItemID:     item.ID,
		EntityType: item.EntityType,
		Payload:    payload,
		Timestamp:  time.Now(),
	}
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
