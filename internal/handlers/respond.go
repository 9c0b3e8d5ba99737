// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP API of the LocalGame server.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"localgame/internal/access"
	"localgame/internal/auth"
	"localgame/internal/content"
	"localgame/internal/ratelimit"
	"localgame/internal/store"
)

// maxJSONBody caps the size of JSON request bodies.
const maxJSONBody = 1 << 20

// errText holds the client messages used for the not-found and forbidden
// outcomes of one endpoint.
type errText struct {
	notFound  string
	forbidden string
}

var defaultText = errText{notFound: "资源不存在", forbidden: "权限不足"}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeDetail writes an error body of the form {"detail": msg}.
func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// writeError maps a service error to its HTTP status and client message.
// Unclassified errors are logged and reported as 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error, text errText) {
	var (
		verr *content.ValidationError
		lerr *ratelimit.LimitError
		aerr *auth.Error
	)
	switch {
	case errors.As(err, &verr):
		writeDetail(w, http.StatusBadRequest, verr.Message)
	case errors.As(err, &lerr):
		writeDetail(w, http.StatusTooManyRequests, lerr.Message)
	case errors.As(err, &aerr):
		status := statusFor(aerr.Kind)
		if status == http.StatusInternalServerError {
			slog.Error("auth flow failed", "method", r.Method, "path", r.URL.Path, "error", err)
		}
		writeDetail(w, status, aerr.Message)
	case errors.Is(err, store.ErrUserNotFound):
		writeDetail(w, http.StatusNotFound, "用户不存在")
	case errors.Is(err, content.ErrNotFound):
		writeDetail(w, http.StatusNotFound, text.notFound)
	case errors.Is(err, access.ErrForbidden):
		writeDetail(w, http.StatusForbidden, text.forbidden)
	case errors.Is(err, access.ErrUnauthorized):
		writeDetail(w, http.StatusUnauthorized, "未授权：请先登录")
	case errors.Is(err, content.ErrConflict):
		writeDetail(w, http.StatusConflict, "资源冲突")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeDetail(w, http.StatusInternalServerError, "服务器内部错误，请稍后重试")
	}
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, content.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(kind, content.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, content.ErrConflict):
		return http.StatusConflict
	case errors.Is(kind, access.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(kind, access.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// readJSON decodes the request body into dst. It answers 400 itself and
// returns false when the body is not valid JSON.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeDetail(w, http.StatusBadRequest, "请求格式错误")
		return false
	}
	return true
}

// NotFound answers requests that match no route.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusNotFound, "Not Found")
}

// MethodNotAllowed answers requests whose path matched with another method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}
