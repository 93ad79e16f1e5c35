package interfaces

import (
	"context"

	"github.com/kenji-jpg/bread-myship-worker/dto"
)

// Reconciler routes one classified email to at most one remote state
// transition, validating required fields per type before the call.
type Reconciler interface {
	Dispatch(ctx context.Context, parsed dto.ParsedEmail, subject string) dto.DispatchResult
}
