package mode

import (
	"context"
	"strings"
	"testing"
)

type stubGenerator struct {
	text   string
	ok     bool
	prompt string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, bool) {
	s.prompt = prompt
	return s.text, s.ok
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		gen  *stubGenerator
		want Mode
	}{
		{"plain", &stubGenerator{text: "medical", ok: true}, Medical},
		{"padded", &stubGenerator{text: "  Therapy.\n", ok: true}, Therapy},
		{"first word", &stubGenerator{text: "technical - the user has a bug", ok: true}, Technical},
		{"unknown", &stubGenerator{text: "philosophy", ok: true}, General},
		{"empty", &stubGenerator{text: "", ok: true}, General},
		{"unavailable", &stubGenerator{ok: false}, General},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewService(tc.gen, nil).Classify(context.Background(), "my chest hurts")
			if got != tc.want {
				t.Fatalf("Classify() = %q, want %q", got, tc.want)
			}
			if !strings.Contains(tc.gen.prompt, "User message: my chest hurts") {
				t.Fatalf("classification prompt missing message: %q", tc.gen.prompt)
			}
		})
	}
}

func TestClassifyWithoutGenerator(t *testing.T) {
	if got := NewService(nil, nil).Classify(context.Background(), "hi"); got != General {
		t.Fatalf("expected general, got %q", got)
	}
}
