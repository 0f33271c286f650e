package ai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zhouzirui/bloomspace/backend/internal/config"
	"github.com/zhouzirui/bloomspace/backend/internal/metrics"
)

// StopSequences 在模型续写下一轮之前截断生成。
var StopSequences = []string{
	"\nUSER:", "\nUser:",
	"\nCONTEXT:", "\nContext:",
	"\nASSISTANT:", "\nAssistant:",
	"\nSYSTEM:", "\nSystem:",
	"\nAnswer:",
}

// Generator 将提示词转为文本。ok=false 表示本次无法生成，
// 调用方应走兜底回复而不是让本轮失败。
type Generator interface {
	Generate(ctx context.Context, prompt string) (text string, ok bool)
}

// Disabled 从不生成，用于 GENERATION_BACKEND=none。
type Disabled struct{}

func (Disabled) Generate(context.Context, string) (string, bool) { return "", false }

// NewGenerator 根据配置选择生成后端。
func NewGenerator(ctx context.Context, cfg config.GenerationConfig, logger *zap.Logger) (Generator, error) {
	switch cfg.Backend {
	case config.BackendOllama:
		return NewOllamaClient(cfg, logger), nil
	case config.BackendArk:
		chatModel, err := cfg.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		return NewArkGenerator(ctx, chatModel, cfg, logger)
	case config.BackendNone:
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown generation backend %q", cfg.Backend)
	}
}

// Instrumented 记录经由 next 的每次调用的结果与耗时。
type Instrumented struct {
	next    Generator
	purpose string
}

// Instrument 包装 g，按 purpose 标签统计调用。
func Instrument(g Generator, purpose string) *Instrumented {
	return &Instrumented{next: g, purpose: purpose}
}

func (i *Instrumented) Generate(ctx context.Context, prompt string) (string, bool) {
	start := time.Now()
	text, ok := i.next.Generate(ctx, prompt)
	metrics.GenerationSeconds.Observe(time.Since(start).Seconds())

	outcome := "ok"
	if !ok {
		outcome = "unavailable"
	}
	metrics.GenerationTotal.WithLabelValues(i.purpose, outcome).Inc()
	return text, ok
}
