package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dyike/WealthGo/internal/models"
	"github.com/dyike/WealthGo/pkg/sqlite"
)

// Store keeps a local transcript of chat sessions.
type Store struct {
	db *sql.DB
}

type SessionRecord struct {
	ID           string
	RowID        int64
	Title        string
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func Open(dbPath string) (*Store, error) {
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    sender TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    intent TEXT NOT NULL DEFAULT '',
    agent TEXT NOT NULL DEFAULT '',
    requires_escalation INTEGER NOT NULL DEFAULT 0,
    meta_json TEXT,
    seq INTEGER NOT NULL,
    sent_at TEXT NOT NULL,
    UNIQUE(session_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_messages_session_seq ON messages(session_id, seq);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// RecordMessage stores msg under sessionID. Re-recording the same message
// id updates its content and meta, which is how decisions are persisted.
func (s *Store) RecordMessage(ctx context.Context, sessionID string, msg models.ChatMessage) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(msg.ID) == "" {
		return fmt.Errorf("message id is required")
	}
	if msg.Sender == "" {
		return fmt.Errorf("message sender is required")
	}

	var metaJSON sql.NullString
	if msg.Meta != nil {
		data, err := json.Marshal(msg.Meta)
		if err != nil {
			return fmt.Errorf("encode meta: %w", err)
		}
		metaJSON = sql.NullString{String: string(data), Valid: true}
	}
	sentAt := msg.Timestamp
	if sentAt.IsZero() {
		sentAt = time.Now()
	}
	stamp := sentAt.UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	title := ""
	if msg.Sender == models.SenderUser {
		title = firstLine(msg.Content, 60)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO sessions (id, title, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    title = CASE WHEN sessions.title = '' THEN excluded.title ELSE sessions.title END,
    updated_at = excluded.updated_at
`, sessionID, title, stamp, stamp); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO messages (id, session_id, sender, content, intent, agent, requires_escalation, meta_json, seq, sent_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?,
    (SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE session_id = ?), ?)
ON CONFLICT(id) DO UPDATE SET
    content = excluded.content,
    intent = excluded.intent,
    meta_json = excluded.meta_json,
    requires_escalation = excluded.requires_escalation
`, msg.ID, sessionID, string(msg.Sender), msg.Content, msg.Intent(), msg.AgentUsed,
		msg.RequiresEscalation, metaJSON, sessionID, stamp); err != nil {
		return fmt.Errorf("upsert message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit message: %w", err)
	}
	return nil
}

// ListSessions pages sessions by rowid, newest first. cursor 0 starts at
// the newest session; pass the last RowID to continue.
func (s *Store) ListSessions(ctx context.Context, cursor int64, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT s.rowid, s.id, s.title, s.created_at, s.updated_at,
       (SELECT COUNT(*) FROM messages m WHERE m.session_id = s.id)
FROM sessions s
WHERE (? = 0 OR s.rowid < ?)
ORDER BY s.rowid DESC
LIMIT ?
`, cursor, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions rows: %w", err)
	}
	return sessions, nil
}

// GetSession returns nil when the session does not exist.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*SessionRecord, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}
	row := s.db.QueryRowContext(ctx, `
SELECT s.rowid, s.id, s.title, s.created_at, s.updated_at,
       (SELECT COUNT(*) FROM messages m WHERE m.session_id = s.id)
FROM sessions s
WHERE s.id = ?
`, sessionID)
	rec, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (s *Store) ListMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, sender, content, agent, requires_escalation, meta_json, sent_at
FROM messages
WHERE session_id = ?
ORDER BY seq ASC
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.ChatMessage
	for rows.Next() {
		var (
			msg      models.ChatMessage
			sender   string
			metaJSON sql.NullString
			sentAt   string
		)
		if err := rows.Scan(&msg.ID, &sender, &msg.Content, &msg.AgentUsed, &msg.RequiresEscalation, &metaJSON, &sentAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Sender = models.Sender(sender)
		msg.Timestamp = parseStamp(sentAt)
		if metaJSON.Valid && metaJSON.String != "" {
			var meta models.Meta
			if err := json.Unmarshal([]byte(metaJSON.String), &meta); err != nil {
				return nil, fmt.Errorf("decode meta for %s: %w", msg.ID, err)
			}
			msg.Meta = &meta
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages rows: %w", err)
	}
	return msgs, nil
}

// DeleteSession removes a session and its messages. Unknown ids are not an error.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (SessionRecord, error) {
	var (
		rec                  SessionRecord
		createdAt, updatedAt string
	)
	if err := row.Scan(&rec.RowID, &rec.ID, &rec.Title, &createdAt, &updatedAt, &rec.MessageCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan session: %w", err)
	}
	rec.CreatedAt = parseStamp(createdAt)
	rec.UpdatedAt = parseStamp(updatedAt)
	return rec, nil
}

func parseStamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func firstLine(s string, max int) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if r := []rune(s); len(r) > max {
		s = string(r[:max-1]) + "…"
	}
	return s
}
