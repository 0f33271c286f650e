package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/bloomspace/backend/internal/corpus"
	"github.com/zhouzirui/bloomspace/backend/internal/retrieval"
)

func newBuildCmd() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Split a knowledge markdown file into a documents file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("read knowledge file: %w", err)
			}
			docs := corpus.Split(string(raw))
			if len(docs) == 0 {
				return fmt.Errorf("%s contains no paragraphs", in)
			}
			if err := corpus.Write(out, docs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d documents to %s\n", len(docs), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "data/knowledge.md", "knowledge markdown file")
	cmd.Flags().StringVar(&out, "out", "data/documents.txt", "documents file to write")
	return cmd
}

func newQueryCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Show which documents the retriever picks for a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := corpus.Load(path)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				return fmt.Errorf("corpus %s is empty or missing", path)
			}

			w := cmd.OutOrStdout()
			for _, s := range retrieval.NewLexical(docs).Rank(strings.Join(args, " ")) {
				fmt.Fprintf(w, "[%d] score=%d %s\n", s.Document.Index, s.Score, preview(s.Document.Text, 80))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "corpus", "data/documents.txt", "documents file to read")
	return cmd
}

func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "…"
}
