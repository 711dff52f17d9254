package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fiine-pro/support-chat/internal/domain"
	"github.com/fiine-pro/support-chat/internal/store"
)

// ReportHandler handles technical-error report endpoints.
type ReportHandler struct {
	repo store.Repository
}

// NewReportHandler creates a new report handler.
func NewReportHandler(repo store.Repository) *ReportHandler {
	return &ReportHandler{repo: repo}
}

// RegisterRoutes registers report routes.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Post("/technical-error-report", h.Create)
	r.Get("/technical-error-reports", h.List)
	r.Get("/technical-error-report/{reportID}", h.Get)
}

// Create validates and stores one technical-error report.
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var report domain.ErrorReport
	if err := decodeJSON(w, r, &report); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	report.Normalize()
	if err := report.Validate(); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	report.CreatedAt = time.Now().UTC()

	if err := h.repo.SaveErrorReport(r.Context(), &report); err != nil {
		slog.Error("Failed to save error report", "error", err)
		Error(w, http.StatusInternalServerError, "Không thể lưu báo cáo lỗi kỹ thuật")
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"message": "Báo cáo lỗi kỹ thuật đã được lưu thành công",
		"status":  "success",
	})
}

// List returns a page of reports, newest first.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := clampQueryInt(r, "limit", 50, 1, 100)
	offset := clampQueryInt(r, "offset", 0, 0, 1<<30)

	reports, err := h.repo.ListErrorReports(r.Context(), limit, offset)
	if err != nil {
		slog.Error("Failed to list error reports", "error", err)
		Error(w, http.StatusInternalServerError, "Đã xảy ra lỗi khi lấy danh sách báo cáo lỗi kỹ thuật")
		return
	}
	if reports == nil {
		reports = []*domain.ErrorReport{}
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"total":   len(reports),
		"limit":   limit,
		"offset":  offset,
	})
}

// Get returns one report by id.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "reportID"), 10, 64)
	if err != nil {
		Error(w, http.StatusNotFound, "Không tìm thấy báo cáo lỗi kỹ thuật")
		return
	}

	report, err := h.repo.ErrorReportByID(r.Context(), id)
	if err != nil {
		slog.Error("Failed to load error report", "report_id", id, "error", err)
		Error(w, http.StatusInternalServerError, "Đã xảy ra lỗi khi lấy báo cáo lỗi kỹ thuật")
		return
	}
	if report == nil {
		Error(w, http.StatusNotFound, "Không tìm thấy báo cáo lỗi kỹ thuật")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"report": report})
}
