package interfaces

import (
	"context"
)

// IngestService is a mail-receiving transport feeding raw messages into the
// processor.
type IngestService interface {
	Start(ctx context.Context) error
	Stop() error
}
