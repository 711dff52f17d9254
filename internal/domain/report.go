package domain

import (
	"errors"
	"strings"
	"time"
)

// Report validation errors, surfaced to the caller as 400-class responses.
var (
	ErrMissingContact      = errors.New("phải cung cấp ít nhất email hoặc số điện thoại")
	ErrMissingName         = errors.New("tên không được để trống")
	ErrMissingOrganization = errors.New("tổ chức không được để trống")
	ErrMissingErrorContent = errors.New("nội dung lỗi không được để trống")
)

// ErrorReport is a technical-error support ticket. Immutable once created.
type ErrorReport struct {
	ID           int64     `json:"id,omitempty"`
	Name         string    `json:"name"`
	Organization string    `json:"organization"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
	ErrorContent string    `json:"error_content"`
	ImageURL     string    `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"timestamp"`
}

// Normalize trims required fields and collapses empty-string/"null"
// placeholders on optional fields to absent.
func (r *ErrorReport) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Organization = strings.TrimSpace(r.Organization)
	r.ErrorContent = strings.TrimSpace(r.ErrorContent)
	r.Phone = normalizeOptional(r.Phone)
	r.Email = normalizeOptional(r.Email)
	r.ImageURL = normalizeOptional(r.ImageURL)
}

// Validate enforces the report invariants: non-blank required fields and at
// least one contact method. Call Normalize first.
func (r *ErrorReport) Validate() error {
	if r.Phone == "" && r.Email == "" {
		return ErrMissingContact
	}
	if r.Name == "" {
		return ErrMissingName
	}
	if r.Organization == "" {
		return ErrMissingOrganization
	}
	if r.ErrorContent == "" {
		return ErrMissingErrorContent
	}
	return nil
}

func normalizeOptional(v string) string {
	v = strings.TrimSpace(v)
	if v == "null" {
		return ""
	}
	return v
}
