package myship

import (
	"regexp"
	"strings"

	"github.com/kenji-jpg/bread-myship-worker/dto"
	"github.com/kenji-jpg/bread-myship-worker/internal/enum"
)

// Myship notification templates ship in HTML-rich and plain-text renditions
// that are not under our control. Extraction degrades gracefully: a missing
// field is validated by the dispatcher, not here.

// Order numbers are the literal CM prefix followed by at least ten digits.
var orderNoPattern = regexp.MustCompile(`CM\d{10,}`)

var (
	orderConfirmedMarkers  = []string{"有新的訂單成立", "訂單成立"}
	pickupCompletedMarkers = []string{"買家已完成取件", "完成取件"}
)

var (
	// HTML template: the label sits in its own table cell, the value in the
	// next, sometimes wrapped in an anchor. Colon may be full- or half-width.
	storeNameHTMLPattern = regexp.MustCompile(`賣場名稱[：:]\s*(?:</td>\s*<td[^>]*>\s*)?(?:<a[^>]*>\s*)?([^<\n]+)`)
	// Plain-text template: label, colon, rest of the line.
	storeNameTextPattern = regexp.MustCompile(`賣場名稱[：:]([^\n]+)`)
)

// Parse classifies one decoded email body and extracts its identifying
// fields. The recipient address is carried through verbatim for downstream
// tenant resolution.
func Parse(body dto.EmailBody, recipientEmail string) dto.ParsedEmail {
	content := body.Content()

	return dto.ParsedEmail{
		Type:           Classify(content),
		OrderNo:        ExtractOrderNo(content),
		StoreName:      ExtractStoreName(content),
		RecipientEmail: recipientEmail,
	}
}

// Classify runs the ordered marker checks. The order-confirmed check runs
// first; when a message carries both marker families the first check wins.
func Classify(content string) enum.EmailType {
	switch {
	case containsAny(content, orderConfirmedMarkers):
		return enum.EmailTypeOrderConfirmed
	case containsAny(content, pickupCompletedMarkers):
		return enum.EmailTypePickupCompleted
	default:
		return enum.EmailTypeUnknown
	}
}

// ExtractOrderNo returns the first (left-most) order number in the content,
// or nil. Multiple order numbers in one message are not supported.
func ExtractOrderNo(content string) *string {
	match := orderNoPattern.FindString(content)
	if match == "" {
		return nil
	}
	return &match
}

// storeNameMatchers are tried in order; the first non-nil result wins. Each
// matcher is pure and independently testable.
var storeNameMatchers = []func(string) *string{
	MatchStoreNameHTML,
	MatchStoreNameText,
}

func ExtractStoreName(content string) *string {
	for _, match := range storeNameMatchers {
		if name := match(content); name != nil {
			return name
		}
	}
	return nil
}

// MatchStoreNameHTML locates the store-name label, skips an immediately
// following cell boundary and anchor opening when present, and captures up to
// the next tag or line break.
func MatchStoreNameHTML(content string) *string {
	return submatchTrimmed(storeNameHTMLPattern, content)
}

// MatchStoreNameText captures the remainder of the label's line.
func MatchStoreNameText(content string) *string {
	return submatchTrimmed(storeNameTextPattern, content)
}

func submatchTrimmed(pattern *regexp.Regexp, content string) *string {
	groups := pattern.FindStringSubmatch(content)
	if groups == nil {
		return nil
	}
	name := strings.TrimSpace(groups[1])
	if name == "" {
		return nil
	}
	return &name
}

func containsAny(content string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}
