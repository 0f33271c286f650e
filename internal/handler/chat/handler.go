package chat

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/bloomspace/backend/internal/middleware"
	"github.com/zhouzirui/bloomspace/backend/internal/model/chat"
	chatService "github.com/zhouzirui/bloomspace/backend/internal/service/chat"
	"github.com/zhouzirui/bloomspace/backend/internal/service/turn"
	"github.com/zhouzirui/bloomspace/backend/pkg/utils"
)

const (
	// EmptyMessageReply 在用户提交空消息时随 400 返回。
	EmptyMessageReply = "Please share what you are feeling. 💬"
	newChatTitle      = "New chat"
	historyLimit      = 500
)

// Turns 执行一轮对话
type Turns interface {
	HandleTurn(ctx context.Context, req turn.Request) (turn.Reply, error)
	Transcript() []turn.Exchange
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	turns  Turns
	store  chatService.Store
	active *chatService.ActiveSet
	logger *zap.Logger
}

// New 创建聊天处理器
func New(turns Turns, store chatService.Store, active *chatService.ActiveSet, logger *zap.Logger) *Handler {
	if active == nil {
		active = chatService.NewActiveSet()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		turns:  turns,
		store:  store,
		active: active,
		logger: logger.Named("chat_handler"),
	}
}

// RegisterRoutes 注册聊天相关的路由，调用方负责挂载 middleware.RequireUser。
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/history", h.handleHistory)
	r.Get("/conversations", h.handleListConversations)
	r.Post("/conversations", h.handleCreateConversation)
	r.Post("/conversations/switch", h.handleSwitchConversation)
	r.Get("/debug/transcript", h.handleTranscript)
}

// handleChat 处理一轮对话
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message        string `json:"message"`
		ConversationID int64  `json:"conversationId"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondJSON(w, http.StatusBadRequest, map[string]string{"reply": EmptyMessageReply})
		return
	}

	owner := middleware.UserID(r.Context())
	hint := payload.ConversationID
	if hint <= 0 {
		hint = h.active.Get(owner)
	}

	reply, err := h.turns.HandleTurn(r.Context(), turn.Request{
		OwnerID:        owner,
		ConversationID: hint,
		Message:        payload.Message,
	})
	switch {
	case errors.Is(err, turn.ErrEmptyMessage):
		utils.RespondJSON(w, http.StatusBadRequest, map[string]string{"reply": EmptyMessageReply})
		return
	case errors.Is(err, turn.ErrOwnerRequired):
		utils.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	case err != nil:
		h.logger.Error("turn failed", zap.String("owner_id", owner), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	h.active.Set(owner, reply.ConversationID)
	utils.RespondJSON(w, http.StatusOK, reply)
}

// handleHistory 返回当前或指定会话的消息记录
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	owner := middleware.UserID(r.Context())
	ctx := r.Context()

	var convID int64
	if raw := r.URL.Query().Get("conversationId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			utils.RespondError(w, http.StatusBadRequest, "invalid conversationId")
			return
		}
		conv, err := chatService.FindOwned(ctx, h.store, owner, id)
		if err != nil {
			h.respondStoreError(w, err)
			return
		}
		convID = conv.ID
	} else {
		id, err := chatService.ResolveActive(ctx, h.store, owner, h.active.Get(owner))
		if err != nil {
			h.respondStoreError(w, err)
			return
		}
		convID = id
	}

	messages, err := h.store.ListMessages(ctx, convID, historyLimit)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	if messages == nil {
		messages = []chat.Message{}
	}

	h.active.Set(owner, convID)
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"conversationId": convID,
		"messages":       messages,
	})
}

// handleListConversations 列出当前用户的全部会话
func (h *Handler) handleListConversations(w http.ResponseWriter, r *http.Request) {
	owner := middleware.UserID(r.Context())

	convs, err := h.store.ListConversations(r.Context(), owner)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	if convs == nil {
		convs = []chat.ConversationSummary{}
	}

	var active *int64
	if id := h.active.Get(owner); id > 0 {
		active = &id
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"conversations": convs,
		"active":        active,
	})
}

// handleCreateConversation 新建会话并设为当前会话
func (h *Handler) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title string `json:"title"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		title = newChatTitle
	}

	owner := middleware.UserID(r.Context())
	conv, err := h.store.CreateConversation(r.Context(), owner, title)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	h.active.Set(owner, conv.ID)
	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"conversationId": conv.ID,
		"title":          conv.Title,
	})
}

// handleSwitchConversation 切换当前会话
func (h *Handler) handleSwitchConversation(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ConversationID int64 `json:"conversationId"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.ConversationID <= 0 {
		utils.RespondError(w, http.StatusBadRequest, "conversationId required")
		return
	}

	owner := middleware.UserID(r.Context())
	conv, err := chatService.FindOwned(r.Context(), h.store, owner, payload.ConversationID)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	h.active.Set(owner, conv.ID)
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message":        "Switched",
		"conversationId": conv.ID,
	})
}

// handleTranscript 返回最近几轮对话的缓存（仅限当前用户）
func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	owner := middleware.UserID(r.Context())

	exchanges := []turn.Exchange{}
	for _, ex := range h.turns.Transcript() {
		if ex.OwnerID == owner {
			exchanges = append(exchanges, ex)
		}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"exchanges": exchanges})
}

func (h *Handler) respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, chatService.ErrConversationNotFound) {
		utils.RespondError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	h.logger.Error("store operation failed", zap.Error(err))
	utils.RespondError(w, http.StatusInternalServerError, "storage unavailable")
}
