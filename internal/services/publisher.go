package services

import (
	"context"
	"log/slog"

	"finance/internal/amqp"
)

// ChangePublisher announces writes to downstream consumers.
type ChangePublisher interface {
	PublishChange(ctx context.Context, event *amqp.ChangeEvent) error
}

// notify publishes a change event. The write already succeeded, so a failed
// publish is logged and never returned to the caller.
func notify(ctx context.Context, publisher ChangePublisher, resource, action, id string) {
	if publisher == nil {
		return
	}

	event := amqp.NewChangeEvent(resource, action, id)
	if err := publisher.PublishChange(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"event", event.Type(),
			"id", id,
			"error", err)
	}
}
