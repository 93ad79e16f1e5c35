package dto

import (
	"time"

	"github.com/kenji-jpg/bread-myship-worker/internal/enum"
)

// EmailProcessedEvent is published after each processed inbound message when
// an event broker is configured.
type EmailProcessedEvent struct {
	EventID        string                 `json:"event_id"`
	Source         enum.EmailSource       `json:"source"`
	Type           enum.EmailType         `json:"type"`
	Outcome        enum.ProcessingOutcome `json:"outcome"`
	OrderNo        string                 `json:"order_no,omitempty"`
	StoreName      string                 `json:"store_name,omitempty"`
	RecipientEmail string                 `json:"recipient_email,omitempty"`
	ProcessedAt    time.Time              `json:"processed_at"`
}
