package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/bloomspace/backend/internal/config"
	"github.com/zhouzirui/bloomspace/backend/internal/corpus"
	"github.com/zhouzirui/bloomspace/backend/internal/handler"
	"github.com/zhouzirui/bloomspace/backend/internal/logging"
	"github.com/zhouzirui/bloomspace/backend/internal/retrieval"
	"github.com/zhouzirui/bloomspace/backend/internal/service/ai"
	"github.com/zhouzirui/bloomspace/backend/internal/service/chat"
	"github.com/zhouzirui/bloomspace/backend/internal/service/lookup"
	"github.com/zhouzirui/bloomspace/backend/internal/service/mode"
	"github.com/zhouzirui/bloomspace/backend/internal/service/turn"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("conversation store ready", zap.String("driver", cfg.Store.Driver))

	docs, err := corpus.Load(cfg.Corpus.Path)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	if len(docs) == 0 {
		logger.Warn("corpus is empty, replies will rely on generation and fallbacks", zap.String("path", cfg.Corpus.Path))
	} else {
		logger.Info("corpus loaded", zap.Int("documents", len(docs)), zap.String("path", cfg.Corpus.Path))
	}

	generator, err := ai.NewGenerator(ctx, cfg.Generation, logger)
	if err != nil {
		// Fallback replies still work without a model.
		logger.Warn("generation backend unavailable, continuing offline", zap.String("backend", cfg.Generation.Backend), zap.Error(err))
		generator = ai.Disabled{}
	} else {
		logger.Info("generation backend ready", zap.String("backend", cfg.Generation.Backend))
	}

	orch := turn.New(turn.Dependencies{
		Store:          store,
		Generator:      ai.Instrument(generator, "reply"),
		Classifier:     mode.NewService(ai.Instrument(generator, "classify"), logger),
		Retriever:      retrieval.NewLexical(docs),
		Lookup:         lookup.NewFromConfig(cfg.Lookup, logger),
		Logger:         logger,
		TranscriptSize: cfg.TranscriptSize,
	})

	router := handler.NewRouter(orch, store, logger)
	return startServer(ctx, cfg.Server, router, logger)
}

func openStore(cfg config.StoreConfig) (chat.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return chat.NewMemoryStore(), nil
	case config.DriverSQLite:
		store, err := chat.NewSQLiteStore(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("BloomSpace backend listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
