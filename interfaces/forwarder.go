package interfaces

import (
	"context"

	"github.com/kenji-jpg/bread-myship-worker/dto"
)

// Forwarder relays a raw message to a fallback mailbox.
type Forwarder interface {
	Forward(ctx context.Context, msg dto.RawEmailMessage) error
}
