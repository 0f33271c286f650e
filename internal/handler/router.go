package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/bloomspace/backend/internal/handler/chat"
	"github.com/zhouzirui/bloomspace/backend/internal/handler/ws"
	"github.com/zhouzirui/bloomspace/backend/internal/logging"
	"github.com/zhouzirui/bloomspace/backend/internal/metrics"
	middlewarePkg "github.com/zhouzirui/bloomspace/backend/internal/middleware"
	chatService "github.com/zhouzirui/bloomspace/backend/internal/service/chat"
	"github.com/zhouzirui/bloomspace/backend/internal/service/turn"
	"github.com/zhouzirui/bloomspace/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(orch *turn.Orchestrator, store chatService.Store, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	// Shared between HTTP and WebSocket so both channels follow the same active thread.
	active := chatService.NewActiveSet()
	chatHandler := chat.New(orch, store, active, logger)
	wsHandler := ws.New(orch, active, logger)

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewarePkg.RequireUser)

		chatHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	return r
}
