// Package lookup fetches short live web snippets for time-sensitive or medical questions.
package lookup

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zhouzirui/bloomspace/backend/internal/config"
	"github.com/zhouzirui/bloomspace/backend/internal/metrics"
)

// MaxResults caps the snippets placed into a prompt.
const MaxResults = 3

// Result is one search hit.
type Result struct {
	Title string
	Body  string
}

// Searcher performs a single web search.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// Service formats searcher output as prompt context. Failures are reported as absence.
type Service struct {
	searcher Searcher
	enabled  bool
	logger   *zap.Logger
}

// NewService wraps searcher. A nil searcher disables lookups.
func NewService(searcher Searcher, enabled bool, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		searcher: searcher,
		enabled:  enabled && searcher != nil,
		logger:   logger.Named("lookup"),
	}
}

// NewFromConfig builds the DuckDuckGo-backed service.
func NewFromConfig(cfg config.LookupConfig, logger *zap.Logger) *Service {
	return NewService(NewDuckDuckGo(cfg.URL, cfg.Timeout), cfg.Enabled, logger)
}

// Lookup returns up to MaxResults lines formatted "- title: body".
func (s *Service) Lookup(ctx context.Context, query string) (string, bool) {
	if s == nil || !s.enabled {
		metrics.LookupTotal.WithLabelValues("disabled").Inc()
		return "", false
	}

	results, err := s.searcher.Search(ctx, query, MaxResults)
	if err != nil {
		s.logger.Warn("lookup failed", zap.Error(err))
		metrics.LookupTotal.WithLabelValues("error").Inc()
		return "", false
	}
	text := Format(results)
	if text == "" {
		metrics.LookupTotal.WithLabelValues("miss").Inc()
		return "", false
	}
	metrics.LookupTotal.WithLabelValues("hit").Inc()
	return text, true
}

// Format renders at most MaxResults results, one per line.
func Format(results []Result) string {
	lines := make([]string, 0, MaxResults)
	for _, r := range results {
		if len(lines) == MaxResults {
			break
		}
		if r.Title == "" && r.Body == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", r.Title, r.Body))
	}
	return strings.Join(lines, "\n")
}
