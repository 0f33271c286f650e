// Package turn runs one chat exchange end to end: safety check, routing,
// generation with fallback, tagging and persistence.
package turn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhouzirui/bloomspace/backend/internal/analysis/emotion"
	"github.com/zhouzirui/bloomspace/backend/internal/analysis/quality"
	"github.com/zhouzirui/bloomspace/backend/internal/analysis/safety"
	"github.com/zhouzirui/bloomspace/backend/internal/corpus"
	"github.com/zhouzirui/bloomspace/backend/internal/metrics"
	model "github.com/zhouzirui/bloomspace/backend/internal/model/chat"
	"github.com/zhouzirui/bloomspace/backend/internal/retrieval"
	"github.com/zhouzirui/bloomspace/backend/internal/service/ai"
	"github.com/zhouzirui/bloomspace/backend/internal/service/chat"
	"github.com/zhouzirui/bloomspace/backend/internal/service/fallback"
	"github.com/zhouzirui/bloomspace/backend/internal/service/mode"
)

var (
	ErrEmptyMessage  = errors.New("message is empty")
	ErrOwnerRequired = chat.ErrOwnerRequired
)

// Source tells where the final reply text came from.
type Source string

const (
	SourceGenerated Source = "generated"
	SourcePlaybook  Source = "playbook"
	SourceCategory  Source = "category"
	SourceCrisis    Source = "crisis"
)

var (
	liveKeywords    = []string{"latest", "news", "today", "current", "update", "price", "weather"}
	medicalTriggers = []string{"symptoms", "causes", "treatment", "disease", "disorder", "ptsd", "trauma"}
)

// Request is one inbound user message.
type Request struct {
	OwnerID        string
	ConversationID int64
	Message        string
}

// Reply is what the caller shows to the user.
type Reply struct {
	Text           string        `json:"reply"`
	Crisis         bool          `json:"crisis"`
	ConversationID int64         `json:"conversationId"`
	Mode           mode.Mode     `json:"mode,omitempty"`
	Source         Source        `json:"source"`
	Emotion        emotion.Label `json:"emotion,omitempty"`
}

// Retriever returns local documents relevant to a query.
type Retriever interface {
	Retrieve(query string) []corpus.Document
}

// Lookup returns live web context, or ok=false.
type Lookup interface {
	Lookup(ctx context.Context, query string) (string, bool)
}

// Classifier picks a mode for a message.
type Classifier interface {
	Classify(ctx context.Context, message string) mode.Mode
}

// Dependencies wires an Orchestrator. Store is required; the rest may be nil.
type Dependencies struct {
	Store          chat.Store
	Generator      ai.Generator
	Classifier     Classifier
	Retriever      Retriever
	Lookup         Lookup
	Logger         *zap.Logger
	TranscriptSize int
}

// Orchestrator is safe for concurrent use; turns share nothing but the transcript cache.
type Orchestrator struct {
	store      chat.Store
	generator  ai.Generator
	classifier Classifier
	retriever  Retriever
	lookup     Lookup
	transcript *TranscriptCache
	logger     *zap.Logger
}

// New creates an orchestrator from deps.
func New(deps Dependencies) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	generator := deps.Generator
	if generator == nil {
		generator = ai.Disabled{}
	}
	return &Orchestrator{
		store:      deps.Store,
		generator:  generator,
		classifier: deps.Classifier,
		retriever:  deps.Retriever,
		lookup:     deps.Lookup,
		transcript: NewTranscriptCache(deps.TranscriptSize),
		logger:     logger.Named("turn"),
	}
}

// Transcript exposes the recent-exchange cache.
func (o *Orchestrator) Transcript() []Exchange {
	return o.transcript.Snapshot()
}

// HandleTurn answers req. Only persistence failures and invalid input return an error;
// generation and lookup problems degrade to the fallback chain.
func (o *Orchestrator) HandleTurn(ctx context.Context, req Request) (Reply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}
	if req.OwnerID == "" {
		return Reply{}, ErrOwnerRequired
	}

	logger := o.logger.With(
		zap.String("turn_id", uuid.NewString()),
		zap.String("owner_id", req.OwnerID),
	)

	convID, err := chat.ResolveActive(ctx, o.store, req.OwnerID, req.ConversationID)
	if err != nil {
		metrics.StoreErrorsTotal.Inc()
		return Reply{}, fmt.Errorf("resolve conversation: %w", err)
	}
	logger = logger.With(zap.Int64("conversation_id", convID))

	if safety.IsCrisis(message) {
		reply := Reply{
			Text:           safety.CrisisReply,
			Crisis:         true,
			ConversationID: convID,
			Source:         SourceCrisis,
		}
		if err := o.persist(ctx, req.OwnerID, convID, message, reply.Text); err != nil {
			return Reply{}, err
		}
		logger.Warn("crisis language detected, safety message sent")
		metrics.TurnsTotal.WithLabelValues(string(SourceCrisis)).Inc()
		return reply, nil
	}

	m := mode.General
	if o.classifier != nil {
		m = o.classifier.Classify(ctx, message)
	}

	contextText := o.selectContext(ctx, m, message)
	text, source := o.compose(ctx, message, contextText, logger)

	tagged, decision := emotion.Tag(text, message)
	if err := o.persist(ctx, req.OwnerID, convID, message, tagged); err != nil {
		return Reply{}, err
	}

	o.transcript.Add(Exchange{
		OwnerID:        req.OwnerID,
		ConversationID: convID,
		User:           message,
		Bot:            tagged,
		Source:         source,
		At:             time.Now(),
	})
	metrics.TurnsTotal.WithLabelValues(string(source)).Inc()
	logger.Info("turn answered",
		zap.String("mode", string(m)),
		zap.String("source", string(source)),
		zap.String("emotion", string(decision.Emotion)),
		zap.Int("context_len", len(contextText)),
	)

	return Reply{
		Text:           tagged,
		ConversationID: convID,
		Mode:           m,
		Source:         source,
		Emotion:        decision.Emotion,
	}, nil
}

// NeedsLiveContext reports whether a message should use the live lookup instead of the corpus.
func NeedsLiveContext(m mode.Mode, message string) bool {
	if m == mode.Medical {
		return true
	}
	lower := strings.ToLower(message)
	return containsAny(lower, liveKeywords) || containsAny(lower, medicalTriggers)
}

func (o *Orchestrator) selectContext(ctx context.Context, m mode.Mode, message string) string {
	if NeedsLiveContext(m, message) {
		if o.lookup == nil {
			return ""
		}
		text, ok := o.lookup.Lookup(ctx, message)
		if !ok {
			return ""
		}
		return text
	}
	if o.retriever == nil {
		return ""
	}
	return retrieval.Join(o.retriever.Retrieve(message))
}

func (o *Orchestrator) compose(ctx context.Context, message, contextText string, logger *zap.Logger) (string, Source) {
	raw, ok := o.generator.Generate(ctx, ai.SupportPrompt(contextText, message))
	if ok && strings.TrimSpace(raw) != "" {
		candidate := quality.Sanitize(message, raw)
		if !quality.IsLowQuality(message, candidate) {
			return candidate, SourceGenerated
		}
		metrics.QualityRejectedTotal.Inc()
		logger.Debug("generated reply rejected by quality gate", zap.Int("length", len(candidate)))
	}

	res := fallback.Reply(message)
	if res.Tier == fallback.TierPlaybook {
		return res.Text, SourcePlaybook
	}
	return res.Text, SourceCategory
}

func (o *Orchestrator) persist(ctx context.Context, ownerID string, convID int64, userText, botText string) error {
	if _, err := o.store.AppendMessage(ctx, model.Message{
		ConversationID: convID,
		OwnerID:        ownerID,
		Role:           model.RoleUser,
		Content:        userText,
	}); err != nil {
		metrics.StoreErrorsTotal.Inc()
		return fmt.Errorf("append user message: %w", err)
	}
	if _, err := o.store.AppendMessage(ctx, model.Message{
		ConversationID: convID,
		OwnerID:        ownerID,
		Role:           model.RoleBot,
		Content:        botText,
	}); err != nil {
		metrics.StoreErrorsTotal.Inc()
		return fmt.Errorf("append bot message: %w", err)
	}
	return nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
