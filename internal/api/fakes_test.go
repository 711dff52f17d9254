package api

import (
	"context"
	"sort"
	"strings"

	"github.com/fiine-pro/support-chat/internal/domain"
	"github.com/fiine-pro/support-chat/internal/store"
)

// fakeRepo is an in-memory store.Repository for handler tests.
type fakeRepo struct {
	records []*domain.ChatRecord
	users   map[string]*domain.User
	reports []*domain.ErrorReport
	err     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]*domain.User)}
}

func (f *fakeRepo) SaveChat(_ context.Context, record *domain.ChatRecord) error {
	if f.err != nil {
		return f.err
	}
	record.ID = int64(len(f.records) + 1)
	f.records = append(f.records, record)
	return nil
}

func (f *fakeRepo) ConversationHistory(_ context.Context, conversationID string) ([]*domain.ChatRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.ChatRecord
	for _, rec := range f.records {
		if rec.ConversationID == conversationID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (f *fakeRepo) UserHistory(_ context.Context, userID string, filter store.HistoryFilter) (*store.HistoryPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	var matched []*domain.ChatRecord
	for _, rec := range f.records {
		if rec.UserID != userID {
			continue
		}
		if !filter.Start.IsZero() && rec.Timestamp.Before(filter.Start) {
			continue
		}
		if !filter.End.IsZero() && rec.Timestamp.After(filter.End) {
			continue
		}
		matched = append(matched, rec)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Timestamp.After(matched[j].Timestamp) })

	total := len(matched)
	if filter.Offset < len(matched) {
		matched = matched[filter.Offset:]
	} else {
		matched = nil
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return &store.HistoryPage{Records: matched, Total: total}, nil
}

func (f *fakeRepo) SearchHistory(_ context.Context, userID, query string, limit, offset int) ([]*domain.ChatRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	needle := strings.ToLower(query)
	var matched []*domain.ChatRecord
	for _, rec := range f.records {
		if rec.UserID != userID {
			continue
		}
		if strings.Contains(strings.ToLower(rec.Question), needle) ||
			strings.Contains(strings.ToLower(rec.Answer), needle) {
			matched = append(matched, rec)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Timestamp.After(matched[j].Timestamp) })
	if offset < len(matched) {
		matched = matched[offset:]
	} else {
		matched = nil
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakeRepo) UserStatistics(_ context.Context, _ string, days int) (*domain.UserStatistics, error) {
	if f.err != nil {
		return nil, f.err
	}
	stats := &domain.UserStatistics{
		TopAgents:  []domain.AgentCount{},
		DailyStats: []domain.DailyCount{},
		PeriodDays: days,
	}
	stats.TotalMessages = len(f.records)
	seen := map[string]bool{}
	for _, rec := range f.records {
		seen[rec.ConversationID] = true
	}
	stats.TotalConversations = len(seen)
	return stats, nil
}

func (f *fakeRepo) DeleteUserHistory(_ context.Context, userID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var kept []*domain.ChatRecord
	var deleted int64
	for _, rec := range f.records {
		if rec.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	f.records = kept
	return deleted, nil
}

func (f *fakeRepo) DeleteConversationHistory(_ context.Context, conversationID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var kept []*domain.ChatRecord
	var deleted int64
	for _, rec := range f.records {
		if rec.ConversationID == conversationID {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	f.records = kept
	return deleted, nil
}

func (f *fakeRepo) CreateUser(_ context.Context, user *domain.User) error {
	if f.err != nil {
		return f.err
	}
	f.users[user.Username] = user
	return nil
}

func (f *fakeRepo) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[username], nil
}

func (f *fakeRepo) SaveErrorReport(_ context.Context, report *domain.ErrorReport) error {
	if f.err != nil {
		return f.err
	}
	report.ID = int64(len(f.reports) + 1)
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeRepo) ListErrorReports(_ context.Context, limit, offset int) ([]*domain.ErrorReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.ErrorReport, len(f.reports))
	copy(out, f.reports)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset < len(out) {
		out = out[offset:]
	} else {
		out = nil
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) ErrorReportByID(_ context.Context, id int64) (*domain.ErrorReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, report := range f.reports {
		if report.ID == id {
			return report, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) Ping(_ context.Context) error { return f.err }
func (f *fakeRepo) Close() error                 { return nil }
