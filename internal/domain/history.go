package domain

import "time"

// ChatRecord is the durable record of one completed turn. Records are written
// at most once per turn, never updated, and only deleted in bulk by user or
// by conversation. Turns without a user id are not persisted.
type ChatRecord struct {
	ID             int64       `json:"id,omitempty"`
	ConversationID string      `json:"conversation_id"`
	UserID         string      `json:"user_id"`
	Question       string      `json:"question"`
	Answer         string      `json:"answer"`
	Agent          string      `json:"agent"`
	Timestamp      time.Time   `json:"timestamp"`
	Context        ChatContext `json:"context"`
	Events         []TurnEvent `json:"events,omitempty"`
}

// UserStatistics aggregates a user's chat activity over a trailing window.
type UserStatistics struct {
	TotalMessages      int          `json:"total_messages"`
	TotalConversations int          `json:"total_conversations"`
	TopAgents          []AgentCount `json:"top_agents"`
	DailyStats         []DailyCount `json:"daily_stats"`
	PeriodDays         int          `json:"period_days"`
}

// AgentCount is one entry of the top-agents ranking.
type AgentCount struct {
	Agent string `json:"agent"`
	Count int    `json:"count"`
}

// DailyCount is the message count for a single day (YYYY-MM-DD).
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
