package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/zhouzirui/bloomspace/backend/internal/config"
)

// ArkGenerator runs prompts through an eino chain backed by a Volcengine Ark chat model.
type ArkGenerator struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	options []model.Option
	logger  *zap.Logger
}

// NewArkGenerator compiles the prompt → chat model chain once.
func NewArkGenerator(ctx context.Context, chatModel model.ChatModel, cfg config.GenerationConfig, logger *zap.Logger) (*ArkGenerator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.UserMessage("{prompt}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile generation chain: %w", err)
	}

	return &ArkGenerator{
		chain: runnable,
		options: []model.Option{
			model.WithStop(StopSequences),
			model.WithTemperature(float32(cfg.Temperature)),
			model.WithMaxTokens(cfg.MaxTokens),
		},
		logger: logger.Named("ark"),
	}, nil
}

func (g *ArkGenerator) Generate(ctx context.Context, input string) (string, bool) {
	msg, err := g.chain.Invoke(ctx, map[string]any{"prompt": input}, compose.WithChatModelOption(g.options...))
	if err != nil {
		g.logger.Warn("generation unavailable", zap.Error(err))
		return "", false
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		g.logger.Warn("generation returned empty content")
		return "", false
	}
	return strings.TrimSpace(msg.Content), true
}
