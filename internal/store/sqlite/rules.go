package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lu-zhengda/mailrules/internal/domain"
	"github.com/lu-zhengda/mailrules/internal/store"
)

// CreateRule validates and persists a rule, assigning its ID and creation
// time. Conditions and actions are stored as JSON so they round-trip
// without any code-evaluating deserialization.
func (s *DB) CreateRule(ctx context.Context, rule *domain.Rule) error {
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return fmt.Errorf("failed to marshal conditions: %w", err)
	}
	actions, err := json.Marshal(rule.Actions)
	if err != nil {
		return fmt.Errorf("failed to marshal actions: %w", err)
	}

	createdAt := time.Now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO rules (name, match_mode, conditions, actions, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rule.Name, string(rule.MatchMode), string(conditions), string(actions),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert rule: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read rule id: %w", err)
	}

	rule.ID = id
	rule.CreatedAt = createdAt
	return nil
}

// ListRules returns all rules, newest first. A row whose stored
// conditions or actions no longer decode is skipped and reported through
// the logger; the remaining rules still load.
func (s *DB) ListRules(ctx context.Context) ([]domain.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule_id, name, match_mode, conditions, actions, created_at
		FROM rules ORDER BY created_at DESC, rule_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.Rule
	for rows.Next() {
		var r domain.Rule
		var mode, conditions, actions, createdStr string

		if err := rows.Scan(&r.ID, &r.Name, &mode, &conditions, &actions, &createdStr); err != nil {
			return nil, fmt.Errorf("failed to scan rule row: %w", err)
		}
		r.MatchMode = domain.MatchMode(mode)

		if err := json.Unmarshal([]byte(conditions), &r.Conditions); err != nil {
			s.logger.Warn("skipping rule with undecodable conditions",
				"rule_id", r.ID, "name", r.Name, "error", err)
			continue
		}
		if err := json.Unmarshal([]byte(actions), &r.Actions); err != nil {
			s.logger.Warn("skipping rule with undecodable actions",
				"rule_id", r.ID, "name", r.Name, "error", err)
			continue
		}

		created, err := time.Parse(time.RFC3339, createdStr)
		if err != nil {
			s.logger.Warn("skipping rule with invalid creation time",
				"rule_id", r.ID, "name", r.Name, "error", err)
			continue
		}
		r.CreatedAt = created

		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}

	return rules, nil
}

// DeleteRule removes a rule by ID. Deleting an unknown ID is a no-op.
func (s *DB) DeleteRule(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rules WHERE rule_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule %d: %w", id, err)
	}
	return nil
}

// Compile-time interface compliance check.
var _ store.Store = (*DB)(nil)
