package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fiine-pro/support-chat/internal/domain"
	"github.com/fiine-pro/support-chat/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS chat_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		agent TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		context_json TEXT,
		events_json TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_chat_history_user ON chat_history(user_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_chat_history_conversation ON chat_history(conversation_id);

	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS error_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		organization TEXT NOT NULL,
		phone TEXT,
		email TEXT,
		error_content TEXT NOT NULL,
		image_url TEXT,
		created_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// SaveChat appends one finalized turn. Inserts hitting a SQLite concurrency
// error are retried with exponential backoff.
func (s *SQLiteStore) SaveChat(ctx context.Context, record *domain.ChatRecord) error {
	contextJSON, err := json.Marshal(record.Context)
	if err != nil {
		return fmt.Errorf("marshal chat context: %w", err)
	}
	eventsJSON, err := json.Marshal(record.Events)
	if err != nil {
		return fmt.Errorf("marshal turn events: %w", err)
	}

	query := `
	INSERT INTO chat_history (conversation_id, user_id, question, answer, agent, timestamp, context_json, events_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		result, err := s.db.ExecContext(ctx, query,
			record.ConversationID, record.UserID,
			record.Question, record.Answer, record.Agent,
			record.Timestamp.Unix(), string(contextJSON), string(eventsJSON),
		)
		if err == nil {
			if id, idErr := result.LastInsertId(); idErr == nil {
				record.ID = id
			}
			return nil
		}

		if shared.IsSQLiteConflictError(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i)
			slog.Debug("SaveChat hit SQLite conflict, retrying",
				"conversation_id", record.ConversationID,
				"attempt", i+1,
				"delay", delay)
			time.Sleep(delay)
			continue
		}

		return fmt.Errorf("insert chat record: %w", err)
	}

	return nil
}

const chatColumns = `id, conversation_id, user_id, question, answer, agent, timestamp, context_json, events_json`

// ConversationHistory returns every record of one conversation, oldest first.
func (s *SQLiteStore) ConversationHistory(ctx context.Context, conversationID string) ([]*domain.ChatRecord, error) {
	query := `SELECT ` + chatColumns + ` FROM chat_history WHERE conversation_id = ? ORDER BY timestamp ASC, id ASC`
	return s.queryChatRecords(ctx, query, conversationID)
}

// UserHistory returns a page of a user's records, newest first, plus the total
// count matching the filter's time bounds.
func (s *SQLiteStore) UserHistory(ctx context.Context, userID string, filter HistoryFilter) (*HistoryPage, error) {
	where := `WHERE user_id = ?`
	args := []interface{}{userID}
	if !filter.Start.IsZero() {
		where += ` AND timestamp >= ?`
		args = append(args, filter.Start.Unix())
	}
	if !filter.End.IsZero() {
		where += ` AND timestamp <= ?`
		args = append(args, filter.End.Unix())
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM chat_history ` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count user history: %w", err)
	}

	query := `SELECT ` + chatColumns + ` FROM chat_history ` + where +
		` ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	records, err := s.queryChatRecords(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &HistoryPage{Records: records, Total: total}, nil
}

// SearchHistory matches the query against questions and answers,
// case-insensitively, newest first.
func (s *SQLiteStore) SearchHistory(ctx context.Context, userID, query string, limit, offset int) ([]*domain.ChatRecord, error) {
	sqlQuery := `SELECT ` + chatColumns + ` FROM chat_history
		WHERE user_id = ?
		  AND (lower(question) LIKE '%' || lower(?) || '%' OR lower(answer) LIKE '%' || lower(?) || '%')
		ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`
	return s.queryChatRecords(ctx, sqlQuery, userID, query, query, limit, offset)
}

// UserStatistics aggregates activity over the trailing window of days.
func (s *SQLiteStore) UserStatistics(ctx context.Context, userID string, days int) (*domain.UserStatistics, error) {
	threshold := time.Now().AddDate(0, 0, -days).Unix()
	stats := &domain.UserStatistics{
		TopAgents:  []domain.AgentCount{},
		DailyStats: []domain.DailyCount{},
		PeriodDays: days,
	}

	totalsQuery := `
		SELECT COUNT(*), COUNT(DISTINCT conversation_id)
		FROM chat_history WHERE user_id = ? AND timestamp >= ?`
	if err := s.db.QueryRowContext(ctx, totalsQuery, userID, threshold).Scan(
		&stats.TotalMessages, &stats.TotalConversations,
	); err != nil {
		return nil, fmt.Errorf("count user activity: %w", err)
	}

	agentsQuery := `
		SELECT agent, COUNT(*) AS cnt
		FROM chat_history WHERE user_id = ? AND timestamp >= ?
		GROUP BY agent ORDER BY cnt DESC, agent ASC LIMIT 5`
	rows, err := s.db.QueryContext(ctx, agentsQuery, userID, threshold)
	if err != nil {
		return nil, fmt.Errorf("query top agents: %w", err)
	}
	defer closeRows(rows, "top agents")

	for rows.Next() {
		var entry domain.AgentCount
		if err := rows.Scan(&entry.Agent, &entry.Count); err != nil {
			return nil, fmt.Errorf("scan top agent row: %w", err)
		}
		stats.TopAgents = append(stats.TopAgents, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top agents: %w", err)
	}

	dailyQuery := `
		SELECT strftime('%Y-%m-%d', timestamp, 'unixepoch') AS day, COUNT(*)
		FROM chat_history WHERE user_id = ? AND timestamp >= ?
		GROUP BY day ORDER BY day ASC`
	dailyRows, err := s.db.QueryContext(ctx, dailyQuery, userID, threshold)
	if err != nil {
		return nil, fmt.Errorf("query daily stats: %w", err)
	}
	defer closeRows(dailyRows, "daily stats")

	for dailyRows.Next() {
		var entry domain.DailyCount
		if err := dailyRows.Scan(&entry.Date, &entry.Count); err != nil {
			return nil, fmt.Errorf("scan daily stat row: %w", err)
		}
		stats.DailyStats = append(stats.DailyStats, entry)
	}
	if err := dailyRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily stats: %w", err)
	}

	return stats, nil
}

// DeleteUserHistory removes all of a user's records.
func (s *SQLiteStore) DeleteUserHistory(ctx context.Context, userID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM chat_history WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user history: %w", err)
	}
	return result.RowsAffected()
}

// DeleteConversationHistory removes all records of a conversation.
func (s *SQLiteStore) DeleteConversationHistory(ctx context.Context, conversationID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM chat_history WHERE conversation_id = ?`, conversationID)
	if err != nil {
		return 0, fmt.Errorf("delete conversation history: %w", err)
	}
	return result.RowsAffected()
}

// CreateUser inserts a new account record.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (user_id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByUsername retrieves an account by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT user_id, username, password_hash, created_at FROM users WHERE username = ?`
	row := s.db.QueryRowContext(ctx, query, username)

	var user domain.User
	var createdAt int64
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.CreatedAt = time.Unix(createdAt, 0)
	return &user, nil
}

// SaveErrorReport inserts a technical-error report and sets its ID.
func (s *SQLiteStore) SaveErrorReport(ctx context.Context, report *domain.ErrorReport) error {
	query := `
	INSERT INTO error_reports (name, organization, phone, email, error_content, image_url, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		report.Name, report.Organization,
		nullable(report.Phone), nullable(report.Email),
		report.ErrorContent, nullable(report.ImageURL),
		report.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert error report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("error report insert id: %w", err)
	}
	report.ID = id
	return nil
}

// ListErrorReports returns a page of reports, newest first.
func (s *SQLiteStore) ListErrorReports(ctx context.Context, limit, offset int) ([]*domain.ErrorReport, error) {
	query := `
		SELECT id, name, organization, phone, email, error_content, image_url, created_at
		FROM error_reports ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query error reports: %w", err)
	}
	defer closeRows(rows, "error reports")

	var reports []*domain.ErrorReport
	for rows.Next() {
		report, err := scanErrorReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate error reports: %w", err)
	}
	return reports, nil
}

// ErrorReportByID retrieves one report.
func (s *SQLiteStore) ErrorReportByID(ctx context.Context, id int64) (*domain.ErrorReport, error) {
	query := `
		SELECT id, name, organization, phone, email, error_content, image_url, created_at
		FROM error_reports WHERE id = ?`
	row := s.db.QueryRowContext(ctx, query, id)

	report, err := scanErrorReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanErrorReport(row rowScanner) (*domain.ErrorReport, error) {
	var report domain.ErrorReport
	var phone, email, imageURL sql.NullString
	var createdAt int64

	err := row.Scan(
		&report.ID, &report.Name, &report.Organization,
		&phone, &email, &report.ErrorContent, &imageURL, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan error report row: %w", err)
	}

	report.Phone = phone.String
	report.Email = email.String
	report.ImageURL = imageURL.String
	report.CreatedAt = time.Unix(createdAt, 0)
	return &report, nil
}

func (s *SQLiteStore) queryChatRecords(ctx context.Context, query string, args ...interface{}) ([]*domain.ChatRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chat history: %w", err)
	}
	defer closeRows(rows, "chat history")

	var records []*domain.ChatRecord
	for rows.Next() {
		var record domain.ChatRecord
		var timestamp int64
		var contextJSON, eventsJSON sql.NullString

		if err := rows.Scan(
			&record.ID, &record.ConversationID, &record.UserID,
			&record.Question, &record.Answer, &record.Agent,
			&timestamp, &contextJSON, &eventsJSON,
		); err != nil {
			return nil, fmt.Errorf("scan chat record row: %w", err)
		}

		record.Timestamp = time.Unix(timestamp, 0)
		if contextJSON.Valid && contextJSON.String != "" {
			if err := json.Unmarshal([]byte(contextJSON.String), &record.Context); err != nil {
				return nil, fmt.Errorf("unmarshal chat context: %w", err)
			}
		}
		if eventsJSON.Valid && eventsJSON.String != "" {
			if err := json.Unmarshal([]byte(eventsJSON.String), &record.Events); err != nil {
				return nil, fmt.Errorf("unmarshal turn events: %w", err)
			}
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat history: %w", err)
	}
	return records, nil
}

func nullable(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

func closeRows(rows *sql.Rows, label string) {
	if err := rows.Close(); err != nil {
		slog.Warn("failed to close rows", "query", label, "error", err)
	}
}
