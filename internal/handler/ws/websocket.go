package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/bloomspace/backend/internal/middleware"
	chatservice "github.com/zhouzirui/bloomspace/backend/internal/service/chat"
	"github.com/zhouzirui/bloomspace/backend/internal/service/turn"
)

const (
	defaultPongWait = 60 * time.Second
	writeWait       = 10 * time.Second

	emptyMessageReply = "Please share what you are feeling. 💬"
)

// Turns 执行一轮对话
type Turns interface {
	HandleTurn(ctx context.Context, req turn.Request) (turn.Reply, error)
}

// Handler WebSocket 聊天处理器
type Handler struct {
	turns    Turns
	active   *chatservice.ActiveSet
	upgrader websocket.Upgrader
	logger   *zap.Logger

	pongWait   time.Duration
	pingPeriod time.Duration
}

// New 创建WebSocket处理器
func New(turns Turns, active *chatservice.ActiveSet, logger *zap.Logger) *Handler {
	if active == nil {
		active = chatservice.NewActiveSet()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		turns:  turns,
		active: active,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:     logger.Named("websocket"),
		pongWait:   defaultPongWait,
		pingPeriod: defaultPongWait * 9 / 10,
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type           string `json:"type"`
	Message        string `json:"message"`
	ConversationID int64  `json:"conversationId"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type connectionState struct {
	ownerID        string
	conversationID int64
}

// handleWebSocket 处理WebSocket连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	owner := middleware.UserID(r.Context())
	if owner == "" {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	state := &connectionState{ownerID: owner, conversationID: h.active.Get(owner)}
	logger := h.logger.With(zap.String("owner_id", owner))
	logger.Debug("connection opened")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.pongWait))
		return nil
	})

	go h.pingLoop(ctx, conn)

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("read error", zap.Error(err))
			}
			return
		}
		// 处理期间不读取，pong 不会续期
		conn.SetReadDeadline(time.Time{})
		h.handleMessage(ctx, conn, state, &msg, logger)
		conn.SetReadDeadline(time.Now().Add(h.pongWait))
	}
}

func (h *Handler) handleMessage(ctx context.Context, conn *websocket.Conn, state *connectionState, msg *inboundMessage, logger *zap.Logger) {
	switch msg.Type {
	case "chat":
		h.handleChat(ctx, conn, state, msg, logger)
	default:
		h.sendError(conn, "unsupported message type", logger)
	}
}

func (h *Handler) handleChat(ctx context.Context, conn *websocket.Conn, state *connectionState, msg *inboundMessage, logger *zap.Logger) {
	if strings.TrimSpace(msg.Message) == "" {
		h.sendError(conn, emptyMessageReply, logger)
		return
	}

	hint := state.conversationID
	if msg.ConversationID > 0 {
		hint = msg.ConversationID
	}

	reply, err := h.turns.HandleTurn(ctx, turn.Request{
		OwnerID:        state.ownerID,
		ConversationID: hint,
		Message:        msg.Message,
	})
	if err != nil {
		if errors.Is(err, turn.ErrEmptyMessage) {
			h.sendError(conn, emptyMessageReply, logger)
			return
		}
		logger.Error("turn failed", zap.Error(err))
		h.sendError(conn, "failed to process message", logger)
		return
	}

	state.conversationID = reply.ConversationID
	h.active.Set(state.ownerID, reply.ConversationID)
	h.send(conn, outgoingMessage{Type: "reply", Data: reply, Timestamp: time.Now().Unix()}, logger)
}

func (h *Handler) sendError(conn *websocket.Conn, message string, logger *zap.Logger) {
	h.send(conn, outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}, logger)
}

func (h *Handler) send(conn *websocket.Conn, msg outgoingMessage, logger *zap.Logger) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		logger.Warn("write failed", zap.String("type", msg.Type), zap.Error(err))
	}
}

// pingLoop 使用 WriteControl，可与读循环中的写入并发
func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
