package cli

import (
	"time"

	"github.com/lu-zhengda/mailrules/internal/domain"
)

// ---------------------------------------------------------------------------
// Message JSON types (messages)
// ---------------------------------------------------------------------------

type jsonMessage struct {
	ID         string   `json:"id"`
	Subject    string   `json:"subject"`
	From       string   `json:"from"`
	To         string   `json:"to,omitempty"`
	ReceivedAt string   `json:"received_at"`
	IsRead     bool     `json:"is_read"`
	Labels     []string `json:"labels,omitempty"`
}

func toJSONMessage(m domain.Message) jsonMessage {
	return jsonMessage{
		ID:         m.ID,
		Subject:    m.Subject,
		From:       m.Sender,
		To:         m.Recipient,
		ReceivedAt: m.ReceivedAt.Format(time.RFC3339),
		IsRead:     m.IsRead,
		Labels:     m.Labels,
	}
}

func toJSONMessages(msgs []domain.Message) []jsonMessage {
	out := make([]jsonMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toJSONMessage(m))
	}
	return out
}

// ---------------------------------------------------------------------------
// Rule JSON types (rule list, rule add)
// ---------------------------------------------------------------------------

// Condition and Action carry their own JSON tags, so rules embed the
// domain types directly.
type jsonRule struct {
	ID         int64              `json:"id"`
	Name       string             `json:"name"`
	MatchMode  string             `json:"match_mode"`
	Conditions []domain.Condition `json:"conditions"`
	Actions    []domain.Action    `json:"actions"`
	CreatedAt  string             `json:"created_at"`
}

func toJSONRule(r *domain.Rule) jsonRule {
	return jsonRule{
		ID:         r.ID,
		Name:       r.Name,
		MatchMode:  string(r.MatchMode),
		Conditions: r.Conditions,
		Actions:    r.Actions,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
}

func toJSONRules(rules []domain.Rule) []jsonRule {
	out := make([]jsonRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, toJSONRule(&r))
	}
	return out
}

// ---------------------------------------------------------------------------
// Run outcome JSON types (run)
// ---------------------------------------------------------------------------

type jsonOutcome struct {
	MessageID string   `json:"message_id"`
	Subject   string   `json:"subject"`
	Actions   []string `json:"actions"`
}

// toJSONOutcomes reports outcomes in the order messages appear in msgs.
// Messages with no outcome are omitted.
func toJSONOutcomes(msgs []domain.Message, results map[string][]string) []jsonOutcome {
	out := make([]jsonOutcome, 0, len(results))
	for _, m := range msgs {
		outcomes, ok := results[m.ID]
		if !ok {
			continue
		}
		out = append(out, jsonOutcome{
			MessageID: m.ID,
			Subject:   m.Subject,
			Actions:   outcomes,
		})
	}
	return out
}
