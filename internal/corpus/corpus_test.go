package corpus

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	docs, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected empty corpus, got %d docs", len(docs))
	}
}

func TestWriteThenLoadKeepsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.txt")
	paragraphs := Split("Breathing slowly helps.\n\n\n  Sleep hygiene matters.  \n\nGrounding uses the senses.\nFive things you see.")
	if err := Write(path, paragraphs); err != nil {
		t.Fatalf("Write err: %v", err)
	}

	docs, err := Load(path)
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	want := []Document{
		{Index: 0, Text: "Breathing slowly helps."},
		{Index: 1, Text: "Sleep hygiene matters."},
		{Index: 2, Text: "Grounding uses the senses.\nFive things you see."},
	}
	if diff := cmp.Diff(want, docs); diff != "" {
		t.Fatalf("unexpected documents (-want +got):\n%s", diff)
	}
}

func TestParseDropsBlankDocuments(t *testing.T) {
	docs := Parse("first" + Separator + "   " + Separator + "second")
	if len(docs) != 2 || docs[1].Index != 1 || docs[1].Text != "second" {
		t.Fatalf("unexpected docs: %+v", docs)
	}
}
