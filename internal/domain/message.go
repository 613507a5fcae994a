package domain

import "time"

// Message is a mail message mirrored from the remote mailbox into the
// local store. ID is the provider's message identifier and never changes.
type Message struct {
	ID         string
	Subject    string
	Sender     string
	Recipient  string
	ReceivedAt time.Time
	Body       string
	IsRead     bool
	Labels     []string
}

func (m *Message) HasLabel(label string) bool {
	for _, l := range m.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// AgeDays returns the message age in whole days relative to now.
func (m *Message) AgeDays(now time.Time) int {
	return int(now.Sub(m.ReceivedAt).Hours() / 24)
}
