package rules

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lu-zhengda/mailrules/internal/domain"
	"github.com/lu-zhengda/mailrules/internal/provider"
	"github.com/lu-zhengda/mailrules/internal/store"
)

// Engine evaluates triage rules against messages and applies the actions
// of matching rules through the mailbox client, mirroring the resulting
// state into the local store.
type Engine struct {
	client provider.MailboxClient
	store  store.Store
	logger *slog.Logger
}

// NewEngine creates an Engine. A nil logger means the default logger.
func NewEngine(client provider.MailboxClient, s store.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{client: client, store: s, logger: logger}
}

// Run evaluates every rule against every message, in store order, and
// returns the audit log keyed by message ID. A message appears in the
// result only if at least one action produced an outcome. The evaluation
// clock is captured once for the whole run.
func (e *Engine) Run(ctx context.Context, msgs []domain.Message, ruleList []domain.Rule) map[string][]string {
	now := time.Now()
	runID := uuid.NewString()
	e.logger.Info("starting batch run",
		"run_id", runID, "messages", len(msgs), "rules", len(ruleList))

	results := make(map[string][]string)
	for i := range msgs {
		msg := &msgs[i]

		var applied []string
		for j := range ruleList {
			rule := &ruleList[j]
			if !Matches(msg, rule, now) {
				continue
			}

			outcomes := e.Apply(ctx, msg, rule.Actions)
			if len(outcomes) == 0 {
				e.logger.Debug("rule matched but produced no outcome",
					"run_id", runID, "message_id", msg.ID, "rule_id", rule.ID)
			}
			applied = append(applied, outcomes...)
		}

		if len(applied) > 0 {
			results[msg.ID] = applied
		}
	}

	e.logger.Info("batch run complete",
		"run_id", runID, "messages", len(msgs), "rules", len(ruleList),
		"affected", len(results))
	return results
}

// Apply executes actions strictly in declared order, committing each
// action's side effect before attempting the next. A failing mailbox
// call skips that action (it contributes no outcome string) and
// processing continues: partial application beats none.
func (e *Engine) Apply(ctx context.Context, msg *domain.Message, actions []domain.Action) []string {
	var outcomes []string
	for _, a := range actions {
		switch a.Kind {
		case domain.ActionMove:
			folder := domain.Folder(a.Value)
			if err := e.client.Move(ctx, msg.ID, folder); err != nil {
				e.logger.Warn("move failed, skipping action",
					"message_id", msg.ID, "folder", a.Value, "error", err)
				continue
			}
			e.mirrorMove(ctx, msg, folder)
			outcomes = append(outcomes, "Moved to "+a.Value)

		case domain.ActionMarkRead:
			if err := e.client.MarkRead(ctx, msg.ID, true); err != nil {
				e.logger.Warn("mark read failed, skipping action",
					"message_id", msg.ID, "error", err)
				continue
			}
			e.mirrorRead(ctx, msg, true)
			outcomes = append(outcomes, "Marked as read")

		case domain.ActionMarkUnread:
			if err := e.client.MarkRead(ctx, msg.ID, false); err != nil {
				e.logger.Warn("mark unread failed, skipping action",
					"message_id", msg.ID, "error", err)
				continue
			}
			e.mirrorRead(ctx, msg, false)
			outcomes = append(outcomes, "Marked as unread")

		default:
			e.logger.Warn("unknown action kind, skipping",
				"message_id", msg.ID, "kind", string(a.Kind))
		}
	}
	return outcomes
}

// mirrorMove reflects a committed move into the local store and the
// in-memory message, so later actions in the same rule see the new state.
func (e *Engine) mirrorMove(ctx context.Context, msg *domain.Message, folder domain.Folder) {
	var labels []string
	if l := folder.Label(); l != "" {
		labels = []string{l}
	}
	if err := e.store.SetMessageLabels(ctx, msg.ID, labels); err != nil {
		e.logger.Warn("failed to mirror move into store",
			"message_id", msg.ID, "folder", string(folder), "error", err)
	}
	msg.Labels = labels
}

func (e *Engine) mirrorRead(ctx context.Context, msg *domain.Message, read bool) {
	if err := e.store.SetMessageRead(ctx, msg.ID, read); err != nil {
		e.logger.Warn("failed to mirror read state into store",
			"message_id", msg.ID, "read", read, "error", err)
	}
	msg.IsRead = read
}
