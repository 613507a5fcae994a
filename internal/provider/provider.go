package provider

import (
	"context"

	"github.com/lu-zhengda/mailrules/internal/domain"
)

// MailboxClient is the remote mailbox collaborator the triage engine
// drives. Implementations own the wire protocol; the engine and store
// never talk to the remote service directly.
type MailboxClient interface {
	// Authenticate runs the provider's interactive auth flow and saves
	// the resulting credentials.
	Authenticate(ctx context.Context) error
	IsAuthenticated() bool

	// FetchRecent returns up to max of the most recently received inbox
	// messages.
	FetchRecent(ctx context.Context, max int) ([]domain.Message, error)

	// Move relocates a message to the given folder.
	Move(ctx context.Context, msgID string, folder domain.Folder) error

	// MarkRead sets or clears the read state of a message.
	MarkRead(ctx context.Context, msgID string, read bool) error
}
