package domain

// Well-known mailbox label identifiers.
const (
	LabelInbox  = "INBOX"
	LabelSpam   = "SPAM"
	LabelTrash  = "TRASH"
	LabelUnread = "UNREAD"
)
