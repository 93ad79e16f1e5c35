package dto

import (
	"github.com/kenji-jpg/bread-myship-worker/internal/enum"
)

// RawEmailMessage is one inbound message as handed over by the mail-receiving
// transport. It lives for a single processor invocation and is never persisted.
type RawEmailMessage struct {
	Source   enum.EmailSource
	From     string
	To       string
	Subject  string
	RawBytes []byte
}

// EmailBody is the best-effort decoded body pair. Either rendition may be
// empty when the message does not carry that part.
type EmailBody struct {
	Text string
	HTML string
}

// Content returns the string all classification and extraction operates on:
// HTML when present, plain text otherwise.
func (b EmailBody) Content() string {
	if b.HTML != "" {
		return b.HTML
	}
	return b.Text
}
