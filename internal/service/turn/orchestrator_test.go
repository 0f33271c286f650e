package turn

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/bloomspace/backend/internal/analysis/emotion"
	"github.com/zhouzirui/bloomspace/backend/internal/analysis/safety"
	"github.com/zhouzirui/bloomspace/backend/internal/corpus"
	model "github.com/zhouzirui/bloomspace/backend/internal/model/chat"
	"github.com/zhouzirui/bloomspace/backend/internal/service/chat"
	"github.com/zhouzirui/bloomspace/backend/internal/service/mode"
)

type recordingGenerator struct {
	mu      sync.Mutex
	text    string
	ok      bool
	prompts []string
}

func (g *recordingGenerator) Generate(_ context.Context, prompt string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.text, g.ok
}

func (g *recordingGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type fixedClassifier struct {
	mode  mode.Mode
	calls int
}

func (c *fixedClassifier) Classify(context.Context, string) mode.Mode {
	c.calls++
	return c.mode
}

type stubRetriever struct {
	docs    []corpus.Document
	queries []string
}

func (r *stubRetriever) Retrieve(query string) []corpus.Document {
	r.queries = append(r.queries, query)
	return r.docs
}

type stubLookup struct {
	text    string
	ok      bool
	queries []string
}

func (l *stubLookup) Lookup(_ context.Context, query string) (string, bool) {
	l.queries = append(l.queries, query)
	return l.text, l.ok
}

type failingStore struct {
	chat.Store
	err error
}

func (f failingStore) AppendMessage(context.Context, model.Message) (model.Message, error) {
	return model.Message{}, f.err
}

type fixture struct {
	store      *chat.MemoryStore
	generator  *recordingGenerator
	classifier *fixedClassifier
	retriever  *stubRetriever
	lookup     *stubLookup
	orch       *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:      chat.NewMemoryStore(),
		generator:  &recordingGenerator{},
		classifier: &fixedClassifier{mode: mode.Therapy},
		retriever:  &stubRetriever{docs: []corpus.Document{{Index: 0, Text: "Box breathing calms the body."}}},
		lookup:     &stubLookup{text: "- News: something", ok: true},
	}
	f.orch = New(Dependencies{
		Store:      f.store,
		Generator:  f.generator,
		Classifier: f.classifier,
		Retriever:  f.retriever,
		Lookup:     f.lookup,
	})
	return f
}

func (f *fixture) messages(t *testing.T, convID int64) []model.Message {
	t.Helper()
	msgs, err := f.store.ListMessages(context.Background(), convID, 0)
	require.NoError(t, err)
	return msgs
}

func TestCrisisShortCircuits(t *testing.T) {
	f := newFixture(t)
	f.generator.text, f.generator.ok = "should never be used", true

	reply, err := f.orch.HandleTurn(context.Background(), Request{OwnerID: "u1", Message: "I want to end my life"})
	require.NoError(t, err)

	assert.True(t, reply.Crisis)
	assert.Equal(t, SourceCrisis, reply.Source)
	assert.Equal(t, safety.CrisisReply, reply.Text)
	assert.Zero(t, f.generator.calls())
	assert.Zero(t, f.classifier.calls)
	assert.Empty(t, f.retriever.queries)
	assert.Empty(t, f.lookup.queries)

	msgs := f.messages(t, reply.ConversationID)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "I want to end my life", msgs[0].Content)
	assert.Equal(t, model.RoleBot, msgs[1].Role)
	assert.Equal(t, safety.CrisisReply, msgs[1].Content)
}

func TestEmptyMessageRejectedBeforeAnyStage(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.HandleTurn(context.Background(), Request{OwnerID: "u1", Message: "   \n"})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = f.store.LatestConversation(context.Background(), "u1")
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
	assert.Zero(t, f.generator.calls())
}

func TestOwnerRequired(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.HandleTurn(context.Background(), Request{Message: "hello"})
	assert.ErrorIs(t, err, ErrOwnerRequired)
}

func TestSecondTurnReusesConversation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.orch.HandleTurn(ctx, Request{OwnerID: "u1", Message: "hello there"})
	require.NoError(t, err)
	second, err := f.orch.HandleTurn(ctx, Request{OwnerID: "u1", Message: "still here"})
	require.NoError(t, err)

	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.Len(t, f.messages(t, first.ConversationID), 4)

	convs, err := f.store.ListConversations(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, convs, 1)
	assert.Equal(t, chat.DefaultTitle, convs[0].Title)
}

func TestForeignHintIsIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other, err := f.orch.HandleTurn(ctx, Request{OwnerID: "u2", Message: "hi"})
	require.NoError(t, err)

	mine, err := f.orch.HandleTurn(ctx, Request{OwnerID: "u1", ConversationID: other.ConversationID, Message: "hi"})
	require.NoError(t, err)
	assert.NotEqual(t, other.ConversationID, mine.ConversationID)
	assert.Len(t, f.messages(t, other.ConversationID), 2)
}

func TestGenerationFailureFallsBackToPlaybook(t *testing.T) {
	f := newFixture(t)
	f.generator.ok = false

	reply, err := f.orch.HandleTurn(context.Background(), Request{OwnerID: "u1", Message: "I can't sleep at all"})
	require.NoError(t, err)

	assert.Equal(t, SourcePlaybook, reply.Source)
	assert.True(t, strings.HasPrefix(reply.Text, "Sleep trouble is rough"))
	assert.True(t, strings.HasSuffix(reply.Text, " 💬"))
	assert.Equal(t, emotion.Neutral, reply.Emotion)
	assert.Equal(t, 1, f.generator.calls())
}

func TestLowQualityGenerationFallsBackToCategory(t *testing.T) {
	f := newFixture(t)
	f.generator.text, f.generator.ok = "Okay.", true

	reply, err := f.orch.HandleTurn(context.Background(), Request{OwnerID: "u1", Message: "I feel lonely"})
	require.NoError(t, err)

	assert.Equal(t, SourceCategory, reply.Source)
	assert.True(t, strings.HasPrefix(reply.Text, "I'm really sorry you're feeling this low."))
	assert.True(t, strings.HasSuffix(reply.Text, " 😢"))
}

func TestGoodGenerationIsSanitizedAndTagged(t *testing.T) {
	f := newFixture(t)
	f.generator.text = "Assistant: It sounds like a lot to carry right now.\n- Take a short walk.\nUser: ok"
	f.generator.ok = true

	reply, err := f.orch.HandleTurn(context.Background(), Request{OwnerID: "u1", Message: "I feel sad and stuck"})
	require.NoError(t, err)

	assert.Equal(t, SourceGenerated, reply.Source)
	assert.Equal(t, mode.Therapy, reply.Mode)
	assert.Equal(t, emotion.Distress, reply.Emotion)
	assert.Equal(t, "It sounds like a lot to carry right now.\n- Take a short walk. 😢", reply.Text)

	require.Len(t, f.retriever.queries, 1)
	assert.Empty(t, f.lookup.queries)
	require.Equal(t, 1, f.generator.calls())
	assert.Contains(t, f.generator.prompts[0], "Box breathing calms the body.")
	assert.True(t, strings.HasSuffix(f.generator.prompts[0], "Answer:"))

	msgs := f.messages(t, reply.ConversationID)
	require.Len(t, msgs, 2)
	assert.Equal(t, reply.Text, msgs[1].Content)
}

func TestLiveContextRouting(t *testing.T) {
	cases := []struct {
		name    string
		mode    mode.Mode
		message string
		live    bool
	}{
		{"medical mode", mode.Medical, "my chest feels tight", true},
		{"live keyword", mode.General, "any news about burnout", true},
		{"medical trigger", mode.Therapy, "what are the symptoms of burnout", true},
		{"corpus", mode.Therapy, "I feel stuck", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.classifier.mode = tc.mode

			_, err := f.orch.HandleTurn(context.Background(), Request{OwnerID: "u1", Message: tc.message})
			require.NoError(t, err)

			if tc.live {
				assert.Len(t, f.lookup.queries, 1)
				assert.Empty(t, f.retriever.queries)
				assert.Contains(t, f.generator.prompts[0], "- News: something")
			} else {
				assert.Empty(t, f.lookup.queries)
				assert.Len(t, f.retriever.queries, 1)
			}
		})
	}
}

func TestMissingLookupStillAnswers(t *testing.T) {
	f := newFixture(t)
	f.lookup.ok = false
	f.classifier.mode = mode.Medical

	reply, err := f.orch.HandleTurn(context.Background(), Request{OwnerID: "u1", Message: "ptsd treatment options"})
	require.NoError(t, err)
	assert.Equal(t, SourcePlaybook, reply.Source)
	assert.Contains(t, f.generator.prompts[0], "Context (optional):\n\n")
}

func TestStoreFailurePropagates(t *testing.T) {
	boom := errors.New("disk full")
	orch := New(Dependencies{
		Store:     failingStore{Store: chat.NewMemoryStore(), err: boom},
		Generator: &recordingGenerator{},
	})

	_, err := orch.HandleTurn(context.Background(), Request{OwnerID: "u1", Message: "hello"})
	assert.ErrorIs(t, err, boom)

	_, err = orch.HandleTurn(context.Background(), Request{OwnerID: "u1", Message: "kill myself"})
	assert.ErrorIs(t, err, boom)
}

func TestTranscriptKeepsRecentExchanges(t *testing.T) {
	store := chat.NewMemoryStore()
	orch := New(Dependencies{Store: store, TranscriptSize: 2})
	ctx := context.Background()

	for _, msg := range []string{"one", "two", "three"} {
		_, err := orch.HandleTurn(ctx, Request{OwnerID: "u1", Message: msg})
		require.NoError(t, err)
	}

	got := orch.Transcript()
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[0].User)
	assert.Equal(t, "three", got[1].User)
}
