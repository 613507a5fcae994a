package store

import (
	"context"

	"github.com/lu-zhengda/mailrules/internal/domain"
)

// Store defines the persistence interface for mirrored messages and
// triage rules.
type Store interface {
	// Messages
	UpsertMessage(ctx context.Context, msg *domain.Message) error
	GetMessage(ctx context.Context, id string) (*domain.Message, error)
	ListMessages(ctx context.Context, opts ListMessageOptions) ([]domain.Message, error)
	SetMessageRead(ctx context.Context, id string, read bool) error
	SetMessageLabels(ctx context.Context, id string, labels []string) error

	// Rules
	CreateRule(ctx context.Context, rule *domain.Rule) error
	ListRules(ctx context.Context) ([]domain.Rule, error)
	DeleteRule(ctx context.Context, id int64) error

	// Lifecycle
	Close() error
}

// ListMessageOptions configures message listing queries. A zero Limit
// returns all messages.
type ListMessageOptions struct {
	Limit      int
	UnreadOnly bool
}
