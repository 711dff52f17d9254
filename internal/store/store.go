// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/fiine-pro/support-chat/internal/domain"
)

// HistoryPage is one page of a user's chat history plus the total match count,
// which callers use to compute pagination flags.
type HistoryPage struct {
	Records []*domain.ChatRecord
	Total   int
}

// HistoryFilter bounds a user-history query. Zero-value time bounds are open.
type HistoryFilter struct {
	Limit  int
	Offset int
	Start  time.Time
	End    time.Time
}

// Repository defines the interface for persisting chat history, user accounts
// and technical-error reports.
type Repository interface {
	// SaveChat appends one finalized turn to the history log.
	SaveChat(ctx context.Context, record *domain.ChatRecord) error

	// ConversationHistory returns every record of one conversation in
	// chronological order.
	ConversationHistory(ctx context.Context, conversationID string) ([]*domain.ChatRecord, error)

	// UserHistory returns a page of a user's records, newest first.
	UserHistory(ctx context.Context, userID string, filter HistoryFilter) (*HistoryPage, error)

	// SearchHistory returns the user's records whose question or answer
	// contains the query, case-insensitively, newest first.
	SearchHistory(ctx context.Context, userID, query string, limit, offset int) ([]*domain.ChatRecord, error)

	// UserStatistics aggregates a user's activity over a trailing window of
	// days.
	UserStatistics(ctx context.Context, userID string, days int) (*domain.UserStatistics, error)

	// DeleteUserHistory removes all of a user's records and reports how many
	// were deleted.
	DeleteUserHistory(ctx context.Context, userID string) (int64, error)

	// DeleteConversationHistory removes all records of a conversation and
	// reports how many were deleted.
	DeleteConversationHistory(ctx context.Context, conversationID string) (int64, error)

	// CreateUser inserts a new account record.
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUserByUsername retrieves an account by username. Returns nil, nil
	// when no such account exists.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// SaveErrorReport inserts a technical-error report and sets its ID.
	SaveErrorReport(ctx context.Context, report *domain.ErrorReport) error

	// ListErrorReports returns a page of reports, newest first.
	ListErrorReports(ctx context.Context, limit, offset int) ([]*domain.ErrorReport, error)

	// ErrorReportByID retrieves one report. Returns nil, nil when not found.
	ErrorReportByID(ctx context.Context, id int64) (*domain.ErrorReport, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
