package interfaces

import (
	"context"

	"github.com/kenji-jpg/bread-myship-worker/dto"
)

// EventsPublisher emits processed-email events for downstream consumers.
type EventsPublisher interface {
	PublishEmailProcessed(ctx context.Context, event dto.EmailProcessedEvent) error
	Close() error
}
