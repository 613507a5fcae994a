package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lu-zhengda/mailrules/internal/domain"
	"github.com/lu-zhengda/mailrules/internal/store"
)

// UpsertMessage inserts or updates a message and its label associations.
// The message ID is the conflict key, so re-ingesting an already stored
// message overwrites every other column.
func (s *DB) UpsertMessage(ctx context.Context, msg *domain.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, subject, sender, recipient, received_at, body, is_read)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject     = excluded.subject,
			sender      = excluded.sender,
			recipient   = excluded.recipient,
			received_at = excluded.received_at,
			body        = excluded.body,
			is_read     = excluded.is_read`,
		msg.ID, msg.Subject, msg.Sender, msg.Recipient,
		msg.ReceivedAt.Format(time.RFC3339),
		msg.Body, msg.IsRead,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert message: %w", err)
	}

	// Delete existing labels, then reinsert.
	if _, err := tx.ExecContext(ctx, `DELETE FROM message_labels WHERE message_id = ?`, msg.ID); err != nil {
		return fmt.Errorf("failed to delete message labels: %w", err)
	}

	for _, labelID := range msg.Labels {
		if _, err := tx.ExecContext(ctx, `INSERT INTO message_labels (message_id, label_id) VALUES (?, ?)`,
			msg.ID, labelID); err != nil {
			return fmt.Errorf("failed to insert message label: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit message upsert: %w", err)
	}
	return nil
}

// GetMessage retrieves a single message by ID, including its labels.
func (s *DB) GetMessage(ctx context.Context, id string) (*domain.Message, error) {
	var m domain.Message
	var receivedStr string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, subject, sender, recipient, received_at, body, is_read
		FROM messages WHERE id = ?`, id,
	).Scan(&m.ID, &m.Subject, &m.Sender, &m.Recipient, &receivedStr, &m.Body, &m.IsRead)
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	received, err := time.Parse(time.RFC3339, receivedStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse received_at: %w", err)
	}
	m.ReceivedAt = received

	labels, err := s.loadLabels(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	m.Labels = labels[id]

	return &m, nil
}

// ListMessages returns stored messages, most recently received first.
func (s *DB) ListMessages(ctx context.Context, opts store.ListMessageOptions) ([]domain.Message, error) {
	query := `
		SELECT id, subject, sender, recipient, received_at, body, is_read
		FROM messages`
	var args []any

	if opts.UnreadOnly {
		query += ` WHERE is_read = 0`
	}
	query += ` ORDER BY received_at DESC, id`

	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	var ids []string
	for rows.Next() {
		var m domain.Message
		var receivedStr string

		if err := rows.Scan(&m.ID, &m.Subject, &m.Sender, &m.Recipient,
			&receivedStr, &m.Body, &m.IsRead); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}

		received, err := time.Parse(time.RFC3339, receivedStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse received_at: %w", err)
		}
		m.ReceivedAt = received

		msgs = append(msgs, m)
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	labels, err := s.loadLabels(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range msgs {
		msgs[i].Labels = labels[msgs[i].ID]
	}

	return msgs, nil
}

// SetMessageRead updates the is_read flag for a single message. Updating
// a message that is no longer stored is a no-op, not an error.
func (s *DB) SetMessageRead(ctx context.Context, id string, read bool) error {
	_, err := s.db.ExecContext(ctx, `UPDATE messages SET is_read = ? WHERE id = ?`, read, id)
	if err != nil {
		return fmt.Errorf("failed to set message %s read=%v: %w", id, read, err)
	}
	return nil
}

// SetMessageLabels replaces the label set for a message. Unknown message
// IDs are a no-op, not an error.
func (s *DB) SetMessageLabels(ctx context.Context, id string, labels []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM messages WHERE id = ?)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check message %s: %w", id, err)
	}
	if !exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM message_labels WHERE message_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete message labels: %w", err)
	}

	for _, labelID := range labels {
		if _, err := tx.ExecContext(ctx, `INSERT INTO message_labels (message_id, label_id) VALUES (?, ?)`,
			id, labelID); err != nil {
			return fmt.Errorf("failed to insert message label: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit label update: %w", err)
	}
	return nil
}

// loadLabels fetches label associations for the given message IDs in a
// single query, keyed by message ID.
func (s *DB) loadLabels(ctx context.Context, ids []string) (map[string][]string, error) {
	if len(ids) == 0 {
		return map[string][]string{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT message_id, label_id FROM message_labels WHERE message_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query message labels: %w", err)
	}
	defer rows.Close()

	labels := make(map[string][]string)
	for rows.Next() {
		var msgID, labelID string
		if err := rows.Scan(&msgID, &labelID); err != nil {
			return nil, fmt.Errorf("failed to scan message label: %w", err)
		}
		labels[msgID] = append(labels[msgID], labelID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message labels: %w", err)
	}
	return labels, nil
}
