package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/zhouzirui/bloomspace/backend/internal/model/chat"
)

var (
	ErrOwnerRequired        = errors.New("owner id is required")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidRole          = errors.New("invalid message role")
)

const (
	// DefaultTitle names threads created implicitly by ResolveActive.
	DefaultTitle = "Today’s chat"
	// DefaultListLimit applies when ListMessages is called with a non-positive limit.
	DefaultListLimit = 200
)

// Store is the persistence boundary for conversations and their transcripts.
type Store interface {
	CreateConversation(ctx context.Context, ownerID, title string) (chat.Conversation, error)
	GetConversation(ctx context.Context, id int64) (chat.Conversation, error)
	// LatestConversation returns the owner's most recently updated thread, or ErrConversationNotFound.
	LatestConversation(ctx context.Context, ownerID string) (chat.Conversation, error)
	ListConversations(ctx context.Context, ownerID string) ([]chat.ConversationSummary, error)
	// AppendMessage stores msg and bumps the conversation's UpdatedAt.
	AppendMessage(ctx context.Context, msg chat.Message) (chat.Message, error)
	ListMessages(ctx context.Context, conversationID int64, limit int) ([]chat.Message, error)
	Close() error
}

// FindOwned returns the conversation only when it exists and belongs to ownerID.
func FindOwned(ctx context.Context, store Store, ownerID string, id int64) (chat.Conversation, error) {
	if id <= 0 {
		return chat.Conversation{}, ErrConversationNotFound
	}
	conv, err := store.GetConversation(ctx, id)
	if err != nil {
		return chat.Conversation{}, err
	}
	if conv.OwnerID != ownerID {
		return chat.Conversation{}, ErrConversationNotFound
	}
	return conv, nil
}

// ResolveActive picks the conversation a turn is written to. Precedence: the bound
// hint when it exists and is owned by ownerID, then the owner's most recently
// updated conversation, then a freshly created one.
func ResolveActive(ctx context.Context, store Store, ownerID string, hint int64) (int64, error) {
	if ownerID == "" {
		return 0, ErrOwnerRequired
	}

	if hint > 0 {
		conv, err := FindOwned(ctx, store, ownerID, hint)
		switch {
		case err == nil:
			return conv.ID, nil
		case !errors.Is(err, ErrConversationNotFound):
			return 0, fmt.Errorf("lookup bound conversation: %w", err)
		}
	}

	latest, err := store.LatestConversation(ctx, ownerID)
	if err == nil {
		return latest.ID, nil
	}
	if !errors.Is(err, ErrConversationNotFound) {
		return 0, fmt.Errorf("lookup latest conversation: %w", err)
	}

	created, err := store.CreateConversation(ctx, ownerID, DefaultTitle)
	if err != nil {
		return 0, fmt.Errorf("create conversation: %w", err)
	}
	return created.ID, nil
}
