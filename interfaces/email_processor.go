package interfaces

import (
	"context"

	"github.com/kenji-jpg/bread-myship-worker/dto"
	"github.com/kenji-jpg/bread-myship-worker/internal/enum"
)

// EmailProcessor runs the full per-message pipeline: sender filter, decode,
// classify, dispatch. It never returns an error; every internal failure is a
// logged terminal outcome so the mail transport always sees a normal return.
type EmailProcessor interface {
	ProcessMessage(ctx context.Context, msg dto.RawEmailMessage) enum.ProcessingOutcome
}
