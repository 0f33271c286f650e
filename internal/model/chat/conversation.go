package chat

import "time"

// Conversation is a persisted thread owned by exactly one identity.
type Conversation struct {
	ID        int64     `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ConversationSummary is a Conversation plus its transcript size, used for listings.
type ConversationSummary struct {
	Conversation
	MessageCount int `json:"messageCount"`
}
