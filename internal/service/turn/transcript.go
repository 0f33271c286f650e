package turn

import (
	"sync"
	"time"
)

// DefaultTranscriptSize is the number of exchanges kept when none is configured.
const DefaultTranscriptSize = 5

// Exchange is one user message and the reply it received.
type Exchange struct {
	OwnerID        string    `json:"ownerId"`
	ConversationID int64     `json:"conversationId"`
	User           string    `json:"user"`
	Bot            string    `json:"bot"`
	Source         Source    `json:"source"`
	At             time.Time `json:"at"`
}

// TranscriptCache is a bounded ring of recent exchanges. It is diagnostic only;
// the conversation store is the source of truth.
type TranscriptCache struct {
	mu    sync.Mutex
	buf   []Exchange
	next  int
	count int
}

// NewTranscriptCache creates a cache holding at most size exchanges.
func NewTranscriptCache(size int) *TranscriptCache {
	if size <= 0 {
		size = DefaultTranscriptSize
	}
	return &TranscriptCache{buf: make([]Exchange, size)}
}

// Add records ex, evicting the oldest entry when full.
func (c *TranscriptCache) Add(ex Exchange) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.buf[c.next] = ex
	c.next = (c.next + 1) % len(c.buf)
	if c.count < len(c.buf) {
		c.count++
	}
}

// Snapshot returns the cached exchanges oldest first.
func (c *TranscriptCache) Snapshot() []Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Exchange, 0, c.count)
	start := (c.next - c.count + len(c.buf)) % len(c.buf)
	for i := 0; i < c.count; i++ {
		out = append(out, c.buf[(start+i)%len(c.buf)])
	}
	return out
}

// Cap reports the capacity.
func (c *TranscriptCache) Cap() int { return len(c.buf) }
