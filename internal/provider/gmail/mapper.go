package gmail

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/lu-zhengda/mailrules/internal/domain"
	gmailapi "google.golang.org/api/gmail/v1"
)

// mapMessage converts a Gmail API Message to a domain Message. Sender and
// recipient keep the raw header form ("Name <addr>") so text conditions
// can match against either part.
func mapMessage(msg *gmailapi.Message) *domain.Message {
	var headers []*gmailapi.MessagePartHeader
	if msg.Payload != nil {
		headers = msg.Payload.Headers
	}

	return &domain.Message{
		ID:         msg.Id,
		Subject:    findHeader(headers, "Subject"),
		Sender:     findHeader(headers, "From"),
		Recipient:  findHeader(headers, "To"),
		ReceivedAt: parseDate(findHeader(headers, "Date")),
		Body:       extractBody(msg.Payload),
		IsRead:     !containsLabel(msg.LabelIds, domain.LabelUnread),
		Labels:     msg.LabelIds,
	}
}

// findHeader performs a case-insensitive lookup for a header value.
func findHeader(headers []*gmailapi.MessagePartHeader, name string) string {
	lower := strings.ToLower(name)
	for _, h := range headers {
		if strings.ToLower(h.Name) == lower {
			return h.Value
		}
	}
	return ""
}

// parseDate tries multiple date formats commonly used in email headers.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	formats := []string{
		time.RFC1123Z,                     // "Mon, 02 Jan 2006 15:04:05 -0700"
		time.RFC1123,                      // "Mon, 02 Jan 2006 15:04:05 MST"
		time.RFC822Z,                      // "02 Jan 06 15:04 -0700"
		time.RFC822,                       // "02 Jan 06 15:04 MST"
		"Mon, 2 Jan 2006 15:04:05 -0700",  // single-digit day
		"Mon, 2 Jan 2006 15:04:05 MST",    // single-digit day with named zone
		"2 Jan 2006 15:04:05 -0700",       // no weekday
		"2006-01-02T15:04:05Z07:00",       // ISO 8601
		"Mon, 02 Jan 2006 15:04:05 -0700 (MST)", // with parenthesized zone
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// containsLabel checks if a label is present in the list.
func containsLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

// extractBody recursively extracts the first text/plain part from a
// message payload. Messages without a plain-text part yield an empty body.
func extractBody(payload *gmailapi.MessagePart) string {
	if payload == nil {
		return ""
	}

	// If this part has sub-parts, recurse into them
	if len(payload.Parts) > 0 {
		for _, part := range payload.Parts {
			if text := extractBody(part); text != "" {
				return text
			}
		}
		return ""
	}

	if payload.MimeType != "text/plain" || payload.Body == nil {
		return ""
	}
	return decodeBase64URL(payload.Body.Data)
}

// decodeBase64URL decodes Gmail's URL-safe base64 encoded strings (without padding).
func decodeBase64URL(s string) string {
	if s == "" {
		return ""
	}
	data, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(s)
	if err != nil {
		return ""
	}
	return string(data)
}
