package dto

import (
	"github.com/kenji-jpg/bread-myship-worker/internal/enum"
)

// ParsedEmail is the immutable classification result for one inbound message.
// OrderNo and StoreName are independently optional regardless of Type; the
// dispatcher validates presence per type before any remote call.
type ParsedEmail struct {
	Type           enum.EmailType
	OrderNo        *string
	StoreName      *string
	RecipientEmail string
}
