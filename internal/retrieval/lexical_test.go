package retrieval

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zhouzirui/bloomspace/backend/internal/corpus"
)

func docs(texts ...string) []corpus.Document {
	out := make([]corpus.Document, len(texts))
	for i, t := range texts {
		out[i] = corpus.Document{Index: i, Text: t}
	}
	return out
}

func indexes(ds []corpus.Document) []int {
	out := make([]int, len(ds))
	for i, d := range ds {
		out[i] = d.Index
	}
	return out
}

func TestRetrieveEmptyCorpus(t *testing.T) {
	if got := Retrieve("anything", nil); len(got) != 0 {
		t.Fatalf("expected no documents, got %v", got)
	}
}

func TestRetrieveOrdersByOverlapWithStableTies(t *testing.T) {
	corpusDocs := docs(
		"sleep routine and light exposure",          // sleep
		"panic attacks: slow breathing helps panic", // panic, breathing
		"breathing exercises for sleep",             // breathing, sleep
		"unrelated gardening notes",                 // 0
		"Breathing, again!",                         // breathing
	)

	got := Retrieve("Panic while trying to sleep; breathing?", corpusDocs)
	if diff := cmp.Diff([]int{1, 2, 0}, indexes(got)); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestRetrieveExcludesZeroOverlap(t *testing.T) {
	got := Retrieve("gardening", docs("sleep", "gardening tips", "breathing"))
	if diff := cmp.Diff([]int{1}, indexes(got)); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestRetrieveDefaultsToFirstThreeWhenNothingOverlaps(t *testing.T) {
	got := Retrieve("zzz", docs("a", "b", "c", "d"))
	if diff := cmp.Diff([]int{0, 1, 2}, indexes(got)); diff != "" {
		t.Fatalf("unexpected default context (-want +got):\n%s", diff)
	}

	short := Retrieve("zzz", docs("only"))
	if len(short) != 1 {
		t.Fatalf("expected the single document, got %d", len(short))
	}
}

func TestRetrieveIsDeterministic(t *testing.T) {
	l := NewLexical(docs("stress at work", "work stress and sleep", "sleep", "stress"))
	first := l.Retrieve("work stress")
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(first, l.Retrieve("work stress")); diff != "" {
			t.Fatalf("retrieval changed between calls:\n%s", diff)
		}
	}
	if len(first) > MaxResults {
		t.Fatalf("expected at most %d docs, got %d", MaxResults, len(first))
	}
}

func TestRankReportsScores(t *testing.T) {
	ranked := NewLexical(docs("feel calm", "calm calm calm")).Rank("calm feel")
	if len(ranked) != 2 || ranked[0].Score != 2 || ranked[1].Score != 1 {
		t.Fatalf("unexpected ranking: %+v", ranked)
	}
}

func TestJoin(t *testing.T) {
	if got := Join(docs("a", "b")); got != "a\n\nb" {
		t.Fatalf("unexpected join: %q", got)
	}
}
