package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fiine-pro/support-chat/internal/chat"
)

// TurnHandler executes one conversational turn.
type TurnHandler interface {
	HandleTurn(ctx context.Context, req chat.TurnRequest) (*chat.TurnResponse, error)
}

// ChatHandler handles the chat endpoint.
type ChatHandler struct {
	orchestrator TurnHandler
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(orchestrator TurnHandler) *ChatHandler {
	return &ChatHandler{orchestrator: orchestrator}
}

// RegisterRoutes registers chat routes.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.Chat)
}

// Chat runs one turn of a conversation.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chat.TurnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ConversationID = strings.TrimSpace(req.ConversationID)

	resp, err := h.orchestrator.HandleTurn(r.Context(), req)
	if err != nil {
		slog.Error("Chat turn failed", "conversation_id", req.ConversationID, "error", err)
		Error(w, http.StatusInternalServerError, "Đã xảy ra lỗi khi xử lý tin nhắn")
		return
	}

	JSON(w, http.StatusOK, resp)
}
