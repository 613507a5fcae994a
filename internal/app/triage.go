package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lu-zhengda/mailrules/internal/provider"
	"github.com/lu-zhengda/mailrules/internal/rules"
	"github.com/lu-zhengda/mailrules/internal/store"
)

// TriageService orchestrates ingestion from the remote mailbox and rule
// processing over the local store.
type TriageService struct {
	store  store.Store
	client provider.MailboxClient
	engine *rules.Engine
	logger *slog.Logger
}

// NewTriageService creates a TriageService over the given store and
// mailbox client. A nil logger means the default logger.
func NewTriageService(s store.Store, client provider.MailboxClient, logger *slog.Logger) *TriageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TriageService{
		store:  s,
		client: client,
		engine: rules.NewEngine(client, s, logger),
		logger: logger,
	}
}

// FetchAndStore pulls up to max recent messages from the mailbox and
// upserts them locally. A failing upsert skips that message and the
// ingest continues; the count of stored messages is returned.
func (t *TriageService) FetchAndStore(ctx context.Context, max int) (int, error) {
	msgs, err := t.client.FetchRecent(ctx, max)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch messages: %w", err)
	}

	stored := 0
	for i := range msgs {
		if err := t.store.UpsertMessage(ctx, &msgs[i]); err != nil {
			t.logger.Warn("failed to store message, skipping",
				"message_id", msgs[i].ID, "error", err)
			continue
		}
		stored++
	}

	t.logger.Info("ingest complete", "fetched", len(msgs), "stored", stored)
	return stored, nil
}

// ProcessAll evaluates every stored rule against every stored message
// and returns the per-message audit log. The message and rule snapshots
// are taken once, at the start of the run; rules created or deleted
// afterwards are picked up by the next run.
func (t *TriageService) ProcessAll(ctx context.Context) (map[string][]string, error) {
	msgs, err := t.store.ListMessages(ctx, store.ListMessageOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	ruleList, err := t.store.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	return t.engine.Run(ctx, msgs, ruleList), nil
}
