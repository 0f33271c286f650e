package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/bloomspace/backend/internal/corpus"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestBuildAndQuery(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "knowledge.md")
	out := filepath.Join(dir, "documents.txt")
	knowledge := "Box breathing slows panic.\n\nA wind-down routine helps sleep.\n\n\nJournaling untangles worries."
	require.NoError(t, os.WriteFile(in, []byte(knowledge), 0o644))

	stdout, err := execute(t, "build", "--in", in, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote 3 documents")

	docs, err := corpus.Load(out)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "A wind-down routine helps sleep.", docs[1].Text)

	stdout, err = execute(t, "query", "--corpus", out, "how", "to", "sleep")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "[1] score=1 "))
}

func TestBuildRejectsEmptyKnowledge(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "empty.md")
	require.NoError(t, os.WriteFile(in, []byte("\n\n  \n"), 0o644))

	_, err := execute(t, "build", "--in", in, "--out", filepath.Join(dir, "out.txt"))
	assert.Error(t, err)
}

func TestQueryMissingCorpus(t *testing.T) {
	_, err := execute(t, "query", "--corpus", filepath.Join(t.TempDir(), "nope.txt"), "hello")
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b", preview("a\n  b", 10))
	assert.Equal(t, "abc…", preview("abcdef", 3))
}
