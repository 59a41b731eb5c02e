package service

import (
	"context"

	"github.com/flexprice/paycycle/internal/domain/events"
	"github.com/flexprice/paycycle/internal/types"
)

// publishEvent emits a lifecycle event after the state it describes has been
// committed. Publishing failures are logged and never undo that state.
func (p ServiceParams) publishEvent(
	ctx context.Context,
	name types.EventName,
	entityType, entityID, accountID string,
	properties map[string]interface{},
) {
	if p.EventPublisher == nil {
		return
	}

	event := events.NewEvent(name, entityType, entityID, accountID, properties)
	if err := p.EventPublisher.Publish(ctx, event); err != nil {
		p.Logger.Errorw("failed to publish event",
			"event_name", name,
			"entity_type", entityType,
			"entity_id", entityID,
			"error", err,
		)
	}
}
