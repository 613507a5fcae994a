package gmail

import (
	"context"
	"fmt"

	"github.com/lu-zhengda/mailrules/internal/domain"
	"github.com/lu-zhengda/mailrules/internal/provider"
	"github.com/lu-zhengda/mailrules/internal/store"
	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const userID = "me"

// Client implements the provider.MailboxClient interface for Gmail.
type Client struct {
	tokenStore *store.KeyringTokenStore
	account    string
	service    *gmailapi.Service
	token      *oauth2.Token
}

// New creates a new Gmail client for the given account key.
func New(account string, tokenStore *store.KeyringTokenStore) *Client {
	return &Client{
		account:    account,
		tokenStore: tokenStore,
	}
}

// Authenticate runs the OAuth2 flow, saves the token, and initializes the
// Gmail service.
func (c *Client) Authenticate(ctx context.Context) error {
	token, err := authenticate(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate gmail: %w", err)
	}

	if err := c.tokenStore.SaveToken(c.account, token); err != nil {
		return fmt.Errorf("failed to save gmail token: %w", err)
	}

	c.token = token
	srv, err := gmailapi.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		return fmt.Errorf("failed to create gmail service: %w", err)
	}
	c.service = srv
	return nil
}

// IsAuthenticated returns true if the Gmail service is initialized.
func (c *Client) IsAuthenticated() bool {
	return c.service != nil
}

// initService loads the token from the keyring and creates the Gmail service.
func (c *Client) initService(ctx context.Context) error {
	token, err := c.tokenStore.LoadToken(c.account)
	if err != nil {
		return fmt.Errorf("failed to load gmail token: %w", err)
	}

	c.token = token
	srv, err := gmailapi.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		return fmt.Errorf("failed to create gmail service: %w", err)
	}
	c.service = srv
	return nil
}

// ensureService lazily initializes the Gmail service if not already done.
func (c *Client) ensureService(ctx context.Context) error {
	if c.service != nil {
		return nil
	}
	return c.initService(ctx)
}

// FetchRecent returns up to max of the most recent inbox messages with
// full metadata and the plain-text body.
func (c *Client) FetchRecent(ctx context.Context, max int) ([]domain.Message, error) {
	if err := c.ensureService(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	call := c.service.Users.Messages.List(userID).LabelIds(domain.LabelInbox)
	if max > 0 {
		call = call.MaxResults(int64(max))
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list gmail messages: %w", err)
	}

	msgs := make([]domain.Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		full, err := c.service.Users.Messages.Get(userID, m.Id).
			Format("full").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get gmail message %s: %w", m.Id, err)
		}
		msgs = append(msgs, *mapMessage(full))
	}

	return msgs, nil
}

// Move relocates a message to the given folder. Trash uses the dedicated
// endpoint so Gmail's auto-expiry applies; Archive only removes the inbox
// label; the rest swap labels.
func (c *Client) Move(ctx context.Context, msgID string, folder domain.Folder) error {
	if err := c.ensureService(ctx); err != nil {
		return fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	switch folder {
	case domain.FolderTrash:
		_, err := c.service.Users.Messages.Trash(userID, msgID).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to trash gmail message %s: %w", msgID, err)
		}
		return nil
	case domain.FolderArchive:
		return c.modifyLabels(ctx, msgID, nil, []string{domain.LabelInbox})
	case domain.FolderSpam:
		return c.modifyLabels(ctx, msgID, []string{domain.LabelSpam}, []string{domain.LabelInbox})
	case domain.FolderInbox:
		return c.modifyLabels(ctx, msgID, []string{domain.LabelInbox}, []string{domain.LabelSpam, domain.LabelTrash})
	}
	return fmt.Errorf("unknown folder %q", folder)
}

// MarkRead marks a message as read or unread by modifying the UNREAD label.
func (c *Client) MarkRead(ctx context.Context, msgID string, read bool) error {
	if err := c.ensureService(ctx); err != nil {
		return fmt.Errorf("failed to ensure gmail service: %w", err)
	}
	if read {
		return c.modifyLabels(ctx, msgID, nil, []string{domain.LabelUnread})
	}
	return c.modifyLabels(ctx, msgID, []string{domain.LabelUnread}, nil)
}

// modifyLabels adds and removes labels on a message.
func (c *Client) modifyLabels(ctx context.Context, msgID string, add, remove []string) error {
	req := &gmailapi.ModifyMessageRequest{
		AddLabelIds:    add,
		RemoveLabelIds: remove,
	}
	_, err := c.service.Users.Messages.Modify(userID, msgID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to modify labels on message %s: %w", msgID, err)
	}
	return nil
}

// GetProfile returns the authenticated user's email address.
func (c *Client) GetProfile(ctx context.Context) (string, error) {
	if err := c.ensureService(ctx); err != nil {
		return "", fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	profile, err := c.service.Users.GetProfile(userID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get gmail profile: %w", err)
	}
	return profile.EmailAddress, nil
}

// Compile-time interface compliance check.
var _ provider.MailboxClient = (*Client)(nil)
