package interfaces

import (
	"context"

	"github.com/kenji-jpg/bread-myship-worker/dto"
)

// BreadAPIClient invokes named remote procedures on the order-management
// backend over an authenticated server-to-server HTTP channel.
type BreadAPIClient interface {
	CallRPC(ctx context.Context, procedure string, params map[string]interface{}) (*dto.RPCResult, error)
}
