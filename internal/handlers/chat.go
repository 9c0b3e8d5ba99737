// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"localgame/internal/chat"
	"localgame/internal/middleware"
)

// Chat groups the guestbook endpoints.
type Chat struct {
	store *chat.Store
}

// NewChat creates a new Chat handler group.
func NewChat(store *chat.Store) *Chat {
	return &Chat{store: store}
}

var chatText = errText{notFound: "消息不存在", forbidden: "权限不足：需要管理员权限"}

type postMessageRequest struct {
	Text string `json:"text"`
}

// List returns the latest messages. The limit query parameter selects how
// many.
func (h *Chat) List(w http.ResponseWriter, r *http.Request) {
	limit := chat.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeDetail(w, http.StatusBadRequest, "limit 必须是正整数")
			return
		}
		limit = min(n, chat.MaxMessages)
	}
	msgs, err := h.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, err, chatText)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// Post adds a message from the caller.
func (h *Chat) Post(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if !readJSON(w, r, &req) {
		return
	}
	msg, err := h.store.Post(r.Context(), middleware.CallerFromCtx(r.Context()), req.Text)
	if err != nil {
		writeError(w, r, err, chatText)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}

// Delete removes one message.
func (h *Chat) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), middleware.CallerFromCtx(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, chatText)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "消息已删除"})
}

// Clear removes every message.
func (h *Chat) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context(), middleware.CallerFromCtx(r.Context())); err != nil {
		writeError(w, r, err, chatText)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "所有消息已清空"})
}
