package dto

import (
	"encoding/json"

	"github.com/kenji-jpg/bread-myship-worker/internal/enum"
)

// RPCResult is the normalized response of one remote procedure call. Success,
// Error and the echo fields are defined by the remote procedure; the client
// passes them through unmodified. Raw keeps the full response body for logging.
type RPCResult struct {
	Success    bool    `json:"success"`
	Error      *string `json:"error,omitempty"`
	CheckoutNo *string `json:"checkout_no,omitempty"`
	OldStatus  *string `json:"old_status,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// DispatchRequest is the JSON body of the HTTP test surface. It supplies the
// classification and fields directly, bypassing decoder and classifier.
type DispatchRequest struct {
	Type      enum.EmailType `json:"type"`
	StoreName string         `json:"store_name"`
	OrderNo   string         `json:"order_no"`
	Email     string         `json:"email"`
}

// DispatchResult names the terminal outcome of routing one parsed email.
type DispatchResult struct {
	Outcome   enum.ProcessingOutcome
	Procedure string
	RPC       *RPCResult
}
