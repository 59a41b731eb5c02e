package events

import (
	"time"

	"github.com/flexprice/paycycle/internal/types"
	"github.com/flexprice/paycycle/internal/validator"
)

// Event is a lifecycle notification emitted after a state change has been committed
type Event struct {
	// Unique identifier for the event
	ID string `json:"id" validate:"required"`

	// EventName identifies what happened and is used by consumers for routing
	EventName types.EventName `json:"event_name" validate:"required"`

	// EntityType and EntityID name the record the event is about
	EntityType string `json:"entity_type" validate:"required"`
	EntityID   string `json:"entity_id" validate:"required"`

	// AccountID is the customer account the entity belongs to (optional)
	AccountID string `json:"account_id,omitempty"`

	// Additional properties
	Properties map[string]interface{} `json:"properties,omitempty"`

	// Source of the event
	Source string `json:"source"`

	Timestamp time.Time `json:"timestamp" validate:"required"`
}

const EventSource = "paycycle"

// NewEvent builds an event stamped with a fresh id and the current time
func NewEvent(name types.EventName, entityType, entityID, accountID string, properties map[string]interface{}) *Event {
	return &Event{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT),
		EventName:  name,
		EntityType: entityType,
		EntityID:   entityID,
		AccountID:  accountID,
		Properties: properties,
		Source:     EventSource,
		Timestamp:  time.Now().UTC(),
	}
}

func (e *Event) Validate() error {
	return validator.ValidateRequest(e)
}
