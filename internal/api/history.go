package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fiine-pro/support-chat/internal/chat"
	"github.com/fiine-pro/support-chat/internal/domain"
	"github.com/fiine-pro/support-chat/internal/store"
)

// historyMessage is one flattened chat-history entry. Every persisted turn
// expands to a user/assistant role pair.
type historyMessage struct {
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Agent          string    `json:"agent"`
}

// HistoryHandler handles chat-history endpoints.
type HistoryHandler struct {
	repo store.Repository
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(repo store.Repository) *HistoryHandler {
	return &HistoryHandler{repo: repo}
}

// RegisterRoutes registers history routes.
func (h *HistoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/history", func(r chi.Router) {
		r.Get("/conversation/{conversationID}", h.ConversationHistory)
		r.Delete("/conversation/{conversationID}", h.DeleteConversationHistory)
		r.Get("/user/{userID}/statistics", h.UserStatistics)
		r.Get("/user/{userID}/search", h.SearchHistory)
		r.Get("/{userID}", h.UserHistory)
		r.Delete("/{userID}", h.DeleteUserHistory)
	})
}

// UserHistory returns a page of a user's history as role pairs, oldest first.
func (h *HistoryHandler) UserHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	limit := clampQueryInt(r, "limit", 50, 1, 100)
	offset := clampQueryInt(r, "offset", 0, 0, 1<<30)

	filter := store.HistoryFilter{Limit: limit, Offset: offset}
	if v := r.URL.Query().Get("start_date"); v != "" {
		start, err := time.Parse("2006-01-02", v)
		if err != nil {
			Error(w, http.StatusBadRequest, "Invalid start_date format. Use YYYY-MM-DD")
			return
		}
		filter.Start = start
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		end, err := time.Parse("2006-01-02", v)
		if err != nil {
			Error(w, http.StatusBadRequest, "Invalid end_date format. Use YYYY-MM-DD")
			return
		}
		// Inclusive date bound: extend to end of day.
		filter.End = end.Add(24*time.Hour - time.Second)
	}

	page, err := h.repo.UserHistory(r.Context(), userID, filter)
	if err != nil {
		slog.Error("Failed to load user history", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if len(page.Records) == 0 {
		JSON(w, http.StatusOK, map[string]interface{}{
			"history":  []historyMessage{},
			"total":    0,
			"has_more": false,
			"user_id":  userID,
		})
		return
	}

	history := flattenRecords(page.Records, true)
	reply := lastAssistantReply(history)

	JSON(w, http.StatusOK, map[string]interface{}{
		"history":  history,
		"total":    len(history),
		"has_more": offset+len(page.Records) < page.Total,
		"user_id":  userID,
		"limit":    limit,
		"offset":   offset,
		"reply":    reply,
		"metadata": replyMetadata(reply),
	})
}

// ConversationHistory returns one conversation as role pairs, oldest first.
func (h *HistoryHandler) ConversationHistory(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	records, err := h.repo.ConversationHistory(r.Context(), conversationID)
	if err != nil {
		slog.Error("Failed to load conversation history", "conversation_id", conversationID, "error", err)
		Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if len(records) == 0 {
		JSON(w, http.StatusOK, map[string]interface{}{
			"history":         []historyMessage{},
			"conversation_id": conversationID,
			"total_messages":  0,
		})
		return
	}

	history := flattenRecords(records, false)
	reply := lastAssistantReply(history)

	JSON(w, http.StatusOK, map[string]interface{}{
		"history":         history,
		"conversation_id": conversationID,
		"total_messages":  len(history),
		"reply":           reply,
		"metadata":        replyMetadata(reply),
	})
}

// UserStatistics returns aggregate activity over a trailing window of days.
func (h *HistoryHandler) UserStatistics(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	days := clampQueryInt(r, "days", 30, 1, 365)

	stats, err := h.repo.UserStatistics(r.Context(), userID, days)
	if err != nil {
		slog.Error("Failed to compute user statistics", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"user_id":             userID,
		"total_messages":      stats.TotalMessages,
		"total_conversations": stats.TotalConversations,
		"top_agents":          stats.TopAgents,
		"daily_stats":         stats.DailyStats,
		"period_days":         stats.PeriodDays,
	})
}

// SearchHistory searches a user's questions and answers.
func (h *HistoryHandler) SearchHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		Error(w, http.StatusBadRequest, "Search term cannot be empty")
		return
	}
	limit := clampQueryInt(r, "limit", 50, 1, 100)
	offset := clampQueryInt(r, "offset", 0, 0, 1<<30)

	records, err := h.repo.SearchHistory(r.Context(), userID, query, limit, offset)
	if err != nil {
		slog.Error("Failed to search history", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if len(records) == 0 {
		JSON(w, http.StatusOK, map[string]interface{}{
			"results":     []historyMessage{},
			"total":       0,
			"search_term": query,
			"user_id":     userID,
		})
		return
	}

	results := flattenRecords(records, true)
	reply := lastAssistantReply(results)

	JSON(w, http.StatusOK, map[string]interface{}{
		"results":     results,
		"total":       len(results),
		"search_term": query,
		"user_id":     userID,
		"limit":       limit,
		"offset":      offset,
		"reply":       reply,
		"metadata":    replyMetadata(reply),
	})
}

// DeleteUserHistory removes all of a user's history.
func (h *HistoryHandler) DeleteUserHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	deleted, err := h.repo.DeleteUserHistory(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to delete user history", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if deleted == 0 {
		Error(w, http.StatusNotFound, "User not found or no history to delete")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"message": "User chat history deleted successfully",
		"user_id": userID,
	})
}

// DeleteConversationHistory removes one conversation's history.
func (h *HistoryHandler) DeleteConversationHistory(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	deleted, err := h.repo.DeleteConversationHistory(r.Context(), conversationID)
	if err != nil {
		slog.Error("Failed to delete conversation history", "conversation_id", conversationID, "error", err)
		Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if deleted == 0 {
		Error(w, http.StatusNotFound, "Conversation not found or no history to delete")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"message":         "Conversation history deleted successfully",
		"conversation_id": conversationID,
	})
}

// flattenRecords expands turns into user/assistant role pairs, oldest first,
// regardless of the input ordering.
func flattenRecords(records []*domain.ChatRecord, withConversationID bool) []historyMessage {
	ordered := make([]*domain.ChatRecord, len(records))
	copy(ordered, records)
	if len(ordered) > 1 && ordered[0].Timestamp.After(ordered[len(ordered)-1].Timestamp) {
		for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
	}

	history := make([]historyMessage, 0, 2*len(ordered))
	for _, rec := range ordered {
		conversationID := ""
		if withConversationID {
			conversationID = rec.ConversationID
		}
		history = append(history,
			historyMessage{Role: "user", Content: rec.Question, Timestamp: rec.Timestamp, ConversationID: conversationID, Agent: rec.Agent},
			historyMessage{Role: "assistant", Content: rec.Answer, Timestamp: rec.Timestamp, ConversationID: conversationID, Agent: rec.Agent},
		)
	}
	return history
}

func lastAssistantReply(history []historyMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "assistant" {
			return history[i].Content
		}
	}
	return ""
}

func replyMetadata(reply string) map[string]interface{} {
	metadata := map[string]interface{}{}
	if reply != "" && chat.RequiresSupportForm(reply) {
		metadata["requires_support_form"] = true
	}
	return metadata
}

func clampQueryInt(r *http.Request, key string, fallback, min, max int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min || n > max {
		return fallback
	}
	return n
}
