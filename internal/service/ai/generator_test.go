package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/bloomspace/backend/internal/config"
	"github.com/zhouzirui/bloomspace/backend/internal/metrics"
)

type staticGenerator struct {
	text string
	ok   bool
}

func (s staticGenerator) Generate(context.Context, string) (string, bool) { return s.text, s.ok }

func TestNewGeneratorSelectsBackend(t *testing.T) {
	ctx := context.Background()

	gen, err := NewGenerator(ctx, config.GenerationConfig{Backend: config.BackendNone}, nil)
	require.NoError(t, err)
	_, ok := gen.Generate(ctx, "hi")
	assert.False(t, ok)

	gen, err = NewGenerator(ctx, testGenerationConfig("http://127.0.0.1:1"), nil)
	require.NoError(t, err)
	assert.IsType(t, &OllamaClient{}, gen)

	_, err = NewGenerator(ctx, config.GenerationConfig{Backend: config.BackendArk}, nil)
	assert.Error(t, err)

	_, err = NewGenerator(ctx, config.GenerationConfig{Backend: "gpt"}, nil)
	assert.Error(t, err)
}

func TestInstrumentCountsOutcomes(t *testing.T) {
	okBefore := testutil.ToFloat64(metrics.GenerationTotal.WithLabelValues("test", "ok"))
	missBefore := testutil.ToFloat64(metrics.GenerationTotal.WithLabelValues("test", "unavailable"))

	_, ok := Instrument(staticGenerator{text: "x", ok: true}, "test").Generate(context.Background(), "p")
	assert.True(t, ok)
	_, ok = Instrument(staticGenerator{}, "test").Generate(context.Background(), "p")
	assert.False(t, ok)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(metrics.GenerationTotal.WithLabelValues("test", "ok")))
	assert.Equal(t, missBefore+1, testutil.ToFloat64(metrics.GenerationTotal.WithLabelValues("test", "unavailable")))
}

func TestPrompts(t *testing.T) {
	p := SupportPrompt("  Breathing helps.  ", " I can't sleep ")
	assert.True(t, strings.HasSuffix(p, "Answer:"))
	assert.Contains(t, p, "Context (optional):\nBreathing helps.\n\nUser:\nI can't sleep\n\nAnswer:")

	c := ClassifyPrompt("my chest hurts")
	assert.Contains(t, c, "User message: my chest hurts")
	assert.Contains(t, c, "Return ONLY the mode word.")
}
