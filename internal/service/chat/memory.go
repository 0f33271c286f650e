package chat

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zhouzirui/bloomspace/backend/internal/model/chat"
)

// MemoryStore keeps conversations in process memory. Suitable for tests and
// single-instance development runs; contents are lost on restart.
type MemoryStore struct {
	mu            sync.RWMutex
	nextConvID    int64
	nextMsgID     int64
	conversations map[int64]chat.Conversation
	messages      map[int64][]chat.Message
	now           func() time.Time
}

// NewMemoryStore bootstraps an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[int64]chat.Conversation),
		messages:      make(map[int64][]chat.Message),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// CreateConversation provisions a new thread for ownerID.
func (s *MemoryStore) CreateConversation(_ context.Context, ownerID, title string) (chat.Conversation, error) {
	if ownerID == "" {
		return chat.Conversation{}, ErrOwnerRequired
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Conversation"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextConvID++
	now := s.now()
	conv := chat.Conversation{
		ID:        s.nextConvID,
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.conversations[conv.ID] = conv
	s.messages[conv.ID] = make([]chat.Message, 0, 16)
	return conv, nil
}

// GetConversation retrieves a conversation by identifier.
func (s *MemoryStore) GetConversation(_ context.Context, id int64) (chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return chat.Conversation{}, ErrConversationNotFound
	}
	return conv, nil
}

// LatestConversation returns the owner's most recently updated conversation.
func (s *MemoryStore) LatestConversation(_ context.Context, ownerID string) (chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		best  chat.Conversation
		found bool
	)
	for _, conv := range s.conversations {
		if conv.OwnerID != ownerID {
			continue
		}
		if !found || newer(conv, best) {
			best = conv
			found = true
		}
	}
	if !found {
		return chat.Conversation{}, ErrConversationNotFound
	}
	return best, nil
}

// ListConversations returns the owner's conversations, most recently updated first.
func (s *MemoryStore) ListConversations(_ context.Context, ownerID string) ([]chat.ConversationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]chat.ConversationSummary, 0)
	for id, conv := range s.conversations {
		if conv.OwnerID != ownerID {
			continue
		}
		items = append(items, chat.ConversationSummary{
			Conversation: conv,
			MessageCount: len(s.messages[id]),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return newer(items[i].Conversation, items[j].Conversation)
	})
	return items, nil
}

// AppendMessage appends a message to the conversation transcript.
func (s *MemoryStore) AppendMessage(_ context.Context, msg chat.Message) (chat.Message, error) {
	if !msg.Role.Valid() {
		return chat.Message{}, ErrInvalidRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[msg.ConversationID]
	if !ok || conv.OwnerID != msg.OwnerID {
		return chat.Message{}, ErrConversationNotFound
	}

	s.nextMsgID++
	msg.ID = s.nextMsgID
	now := s.now()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}

	conv.UpdatedAt = now
	s.conversations[conv.ID] = conv
	s.messages[conv.ID] = append(s.messages[conv.ID], msg)
	return msg, nil
}

// ListMessages returns up to limit messages of a conversation in insertion order.
func (s *MemoryStore) ListMessages(_ context.Context, conversationID int64, limit int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[conversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}
	if len(messages) > limit {
		messages = messages[:limit]
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// newer orders by UpdatedAt descending, breaking ties by the higher id.
func newer(a, b chat.Conversation) bool {
	if a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.ID > b.ID
	}
	return a.UpdatedAt.After(b.UpdatedAt)
}
