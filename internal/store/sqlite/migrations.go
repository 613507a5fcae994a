package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS messages (
    id          TEXT PRIMARY KEY,
    subject     TEXT,
    sender      TEXT,
    recipient   TEXT,
    received_at DATETIME NOT NULL,
    body        TEXT,
    is_read     BOOLEAN DEFAULT FALSE,
    created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS message_labels (
    message_id  TEXT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
    label_id    TEXT NOT NULL,
    PRIMARY KEY (message_id, label_id)
);

CREATE TABLE IF NOT EXISTS rules (
    rule_id     INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL,
    match_mode  TEXT NOT NULL,
    conditions  TEXT NOT NULL,
    actions     TEXT NOT NULL,
    created_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_received ON messages(received_at DESC);
CREATE INDEX IF NOT EXISTS idx_message_labels_label ON message_labels(label_id);
`
