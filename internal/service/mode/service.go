// Package mode 让大模型判断消息需要哪一类帮助。
package mode

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/zhouzirui/bloomspace/backend/internal/service/ai"
)

// Mode 表示用户消息所属的求助类别。
type Mode string

const (
	Medical   Mode = "medical"
	Therapy   Mode = "therapy"
	Technical Mode = "technical"
	General   Mode = "general"
)

// Service 使用大模型对消息分类，失败时回退到 General。
type Service struct {
	generator ai.Generator
	logger    *zap.Logger
}

// NewService 创建分类器，generator 为 nil 时始终返回 General。
func NewService(generator ai.Generator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{generator: generator, logger: logger.Named("mode")}
}

// Classify 不会失败，无法识别的结果一律视为 General。
func (s *Service) Classify(ctx context.Context, message string) Mode {
	if s == nil || s.generator == nil {
		return General
	}

	raw, ok := s.generator.Generate(ctx, ai.ClassifyPrompt(message))
	if !ok {
		return General
	}

	m, ok := Parse(raw)
	if !ok {
		s.logger.Debug("classifier output out of vocabulary", zap.String("raw", raw))
		return General
	}
	return m
}

// Parse 取 raw 的第一个词作为类别。
func Parse(raw string) (Mode, bool) {
	fields := strings.Fields(strings.ToLower(raw))
	if len(fields) == 0 {
		return "", false
	}
	word := strings.Trim(fields[0], ".,:;!?\"'`*")
	switch m := Mode(word); m {
	case Medical, Therapy, Technical, General:
		return m, true
	default:
		return "", false
	}
}
