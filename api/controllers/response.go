package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// ISOTimestampLayout 返回给客户端的时间格式，毫秒精度，UTC
const ISOTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Error   string `json:"error" example:"Country not found"`
	Details string `json:"details,omitempty" example:"Could not fetch data from Countries API"`
}

// MessageResponse 消息响应结构
type MessageResponse struct {
	Message string `json:"message" example:"Country Currency & Exchange API"`
}

// RefreshResponse 刷新响应结构
type RefreshResponse struct {
	Message         string `json:"message" example:"Refresh successful"`
	TotalCountries  int64  `json:"total_countries" example:"250"`
	LastRefreshedAt string `json:"last_refreshed_at" example:"2025-10-22T08:30:00.000Z"`
}

// StatusResponse 状态响应结构
type StatusResponse struct {
	TotalCountries  int64   `json:"total_countries" example:"250"`
	LastRefreshedAt *string `json:"last_refreshed_at" example:"2025-10-22T08:30:00.000Z"`
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(ISOTimestampLayout)
}

func renderError(w http.ResponseWriter, r *http.Request, status int, message, details string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message, Details: details})
}

func renderInternalError(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, http.StatusInternalServerError, "Internal server error", "")
}
