package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fiine-pro/support-chat/internal/domain"
)

func reportRouter(repo *fakeRepo) *chi.Mux {
	r := chi.NewRouter()
	NewReportHandler(repo).RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, router http.Handler, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateReport(t *testing.T) {
	repo := newFakeRepo()
	body := `{"name": "Nguyễn Văn A", "organization": "Công ty ABC", "email": "a@example.com", "error_content": "Không đăng nhập được", "phone": "null"}`

	w := postJSON(t, reportRouter(repo), "/technical-error-report", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var got map[string]string
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["status"] != "success" {
		t.Errorf("Unexpected response %v", got)
	}

	if len(repo.reports) != 1 {
		t.Fatalf("Expected 1 stored report, got %d", len(repo.reports))
	}
	if repo.reports[0].Phone != "" {
		t.Errorf(`Expected "null" phone normalized to absent, got %q`, repo.reports[0].Phone)
	}
}

func TestCreateReportValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			"missing contact",
			`{"name": "A", "organization": "B", "error_content": "C"}`,
			"phải cung cấp ít nhất email hoặc số điện thoại",
		},
		{
			"blank name",
			`{"name": "  ", "organization": "B", "email": "a@b.c", "error_content": "C"}`,
			"tên không được để trống",
		},
		{
			"blank organization",
			`{"name": "A", "organization": "", "email": "a@b.c", "error_content": "C"}`,
			"tổ chức không được để trống",
		},
		{
			"blank error content",
			`{"name": "A", "organization": "B", "email": "a@b.c", "error_content": " "}`,
			"nội dung lỗi không được để trống",
		},
	}

	router := reportRouter(newFakeRepo())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/technical-error-report", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d", w.Code)
			}
			var got map[string]string
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if got["error"] != tt.wantMsg {
				t.Errorf("Expected %q, got %q", tt.wantMsg, got["error"])
			}
		})
	}
}

func TestListReports(t *testing.T) {
	repo := newFakeRepo()
	repo.reports = []*domain.ErrorReport{
		{ID: 1, Name: "A", Organization: "X", Email: "a@b.c", ErrorContent: "lỗi 1", CreatedAt: time.Now()},
		{ID: 2, Name: "B", Organization: "Y", Email: "b@b.c", ErrorContent: "lỗi 2", CreatedAt: time.Now()},
	}

	got := getJSON(t, reportRouter(repo), "/technical-error-reports", http.StatusOK)
	reports := got["reports"].([]any)
	if len(reports) != 2 {
		t.Fatalf("Expected 2 reports, got %d", len(reports))
	}
	first := reports[0].(map[string]any)
	if first["id"].(float64) != 2 {
		t.Errorf("Expected newest report first, got %v", first)
	}

	got = getJSON(t, reportRouter(newFakeRepo()), "/technical-error-reports", http.StatusOK)
	if len(got["reports"].([]any)) != 0 {
		t.Errorf("Expected empty report list, got %v", got["reports"])
	}
}

func TestGetReport(t *testing.T) {
	repo := newFakeRepo()
	repo.reports = []*domain.ErrorReport{
		{ID: 7, Name: "A", Organization: "X", Email: "a@b.c", ErrorContent: "lỗi", CreatedAt: time.Now()},
	}
	router := reportRouter(repo)

	got := getJSON(t, router, "/technical-error-report/7", http.StatusOK)
	report := got["report"].(map[string]any)
	if report["name"] != "A" {
		t.Errorf("Unexpected report %v", report)
	}

	req := httptest.NewRequest(http.MethodGet, "/technical-error-report/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown report, got %d", w.Code)
	}
}
