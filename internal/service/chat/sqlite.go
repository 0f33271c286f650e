package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/zhouzirui/bloomspace/backend/internal/model/chat"
)

// SQLiteStore implements Store on top of SQLite. Timestamps are stored as unix
// nanoseconds so ordering by updated_at is exact.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens dsn and applies the schema.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", withForeignKeys(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to an in-memory database is a separate database.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// withForeignKeys adds _foreign_keys=on so every pooled connection enforces
// references. An explicit setting in dsn is kept.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_owner ON conversations(owner_id, updated_at)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation_id INTEGER NOT NULL,
			owner_id TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('user','bot')),
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (conversation_id) REFERENCES conversations(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conv_id ON messages(conversation_id, id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateConversation inserts a new thread for ownerID.
func (s *SQLiteStore) CreateConversation(ctx context.Context, ownerID, title string) (chat.Conversation, error) {
	if ownerID == "" {
		return chat.Conversation{}, ErrOwnerRequired
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Conversation"
	}

	now := s.now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (owner_id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		ownerID, title, now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return chat.Conversation{}, fmt.Errorf("insert conversation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return chat.Conversation{}, fmt.Errorf("insert conversation: %w", err)
	}

	return chat.Conversation{
		ID:        id,
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetConversation loads a conversation by id.
func (s *SQLiteStore) GetConversation(ctx context.Context, id int64) (chat.Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, created_at, updated_at FROM conversations WHERE id = ?`, id)
	return scanConversation(row)
}

// LatestConversation returns the owner's most recently updated conversation.
func (s *SQLiteStore) LatestConversation(ctx context.Context, ownerID string) (chat.Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, created_at, updated_at FROM conversations
		WHERE owner_id = ? ORDER BY updated_at DESC, id DESC LIMIT 1`, ownerID)
	return scanConversation(row)
}

// ListConversations returns the owner's conversations with message counts.
func (s *SQLiteStore) ListConversations(ctx context.Context, ownerID string) ([]chat.ConversationSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.owner_id, c.title, c.created_at, c.updated_at,
			(SELECT COUNT(1) FROM messages m WHERE m.conversation_id = c.id)
		FROM conversations c
		WHERE c.owner_id = ?
		ORDER BY c.updated_at DESC, c.id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	items := make([]chat.ConversationSummary, 0)
	for rows.Next() {
		var (
			item               chat.ConversationSummary
			createdAt, updated int64
		)
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Title, &createdAt, &updated, &item.MessageCount); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		item.CreatedAt = fromNanos(createdAt)
		item.UpdatedAt = fromNanos(updated)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return items, nil
}

// AppendMessage inserts msg and bumps the conversation's updated_at in one transaction.
func (s *SQLiteStore) AppendMessage(ctx context.Context, msg chat.Message) (chat.Message, error) {
	if !msg.Role.Valid() {
		return chat.Message{}, ErrInvalidRole
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return chat.Message{}, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	now := s.now()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}

	res, err := tx.ExecContext(ctx, `UPDATE conversations SET updated_at = ? WHERE id = ? AND owner_id = ?`, now.UnixNano(), msg.ConversationID, msg.OwnerID)
	if err != nil {
		return chat.Message{}, fmt.Errorf("touch conversation: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return chat.Message{}, fmt.Errorf("touch conversation: %w", err)
	} else if n == 0 {
		return chat.Message{}, ErrConversationNotFound
	}

	res, err = tx.ExecContext(ctx,
		`INSERT INTO messages (conversation_id, owner_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ConversationID, msg.OwnerID, string(msg.Role), msg.Content, msg.CreatedAt.UnixNano(),
	)
	if err != nil {
		return chat.Message{}, fmt.Errorf("insert message: %w", err)
	}
	if msg.ID, err = res.LastInsertId(); err != nil {
		return chat.Message{}, fmt.Errorf("insert message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return chat.Message{}, fmt.Errorf("commit append: %w", err)
	}
	return msg, nil
}

// ListMessages returns up to limit messages of a conversation ordered by id.
func (s *SQLiteStore) ListMessages(ctx context.Context, conversationID int64, limit int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, owner_id, role, content, created_at
		FROM messages WHERE conversation_id = ? ORDER BY id ASC LIMIT ?`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]chat.Message, 0)
	for rows.Next() {
		var (
			msg       chat.Message
			role      string
			createdAt int64
		)
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.OwnerID, &role, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = chat.Role(role)
		msg.CreatedAt = fromNanos(createdAt)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

func scanConversation(row *sql.Row) (chat.Conversation, error) {
	var (
		conv               chat.Conversation
		createdAt, updated int64
	)
	if err := row.Scan(&conv.ID, &conv.OwnerID, &conv.Title, &createdAt, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return chat.Conversation{}, ErrConversationNotFound
		}
		return chat.Conversation{}, fmt.Errorf("scan conversation: %w", err)
	}
	conv.CreatedAt = fromNanos(createdAt)
	conv.UpdatedAt = fromNanos(updated)
	return conv, nil
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
