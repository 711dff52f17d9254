package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fiine-pro/support-chat/internal/upload"
)

// maxUploadBytes bounds multipart image uploads.
const maxUploadBytes = 10 << 20

// UploadHandler handles the image-upload endpoint.
type UploadHandler struct {
	uploader upload.Uploader
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(uploader upload.Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// RegisterRoutes registers upload routes.
func (h *UploadHandler) RegisterRoutes(r chi.Router) {
	r.Post("/upload-image", h.UploadImage)
}

// UploadImage stores an error screenshot and returns its public URL. Failures
// are reported in the success envelope the frontend expects, not as HTTP
// errors.
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.fail(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.fail(w, "missing image file")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Warn("failed to close uploaded file", "error", closeErr)
		}
	}()

	url, err := h.uploader.UploadImage(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		slog.Error("Image upload failed", "filename", header.Filename, "error", err)
		h.fail(w, err.Error())
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"image_url": url,
		"message":   "Upload ảnh thành công",
	})
}

func (h *UploadHandler) fail(w http.ResponseWriter, reason string) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"success": false,
		"error":   reason,
		"message": "Upload ảnh thất bại",
	})
}
