// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"localgame/internal/content"
	"localgame/internal/middleware"
)

// Notices serves one notice kind. Announcements and bulletins share the
// handlers and differ only in their response keys.
type Notices struct {
	svc    *content.Notices
	one    string
	many   string
	notice errText
}

// NewNotices creates the handler group for svc.
func NewNotices(svc *content.Notices) *Notices {
	h := &Notices{svc: svc, one: string(svc.Kind())}
	h.many = h.one + "s"
	h.notice = errText{notFound: "通告不存在", forbidden: "权限不足：需要管理员权限"}
	return h
}

type noticeCreateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type noticeUpdateRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// List returns the published notices.
func (h *Notices) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListPublished(r.Context())
	if err != nil {
		writeError(w, r, err, h.notice)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, h.many: list})
}

// Latest returns the most recently published notice or null.
func (h *Notices) Latest(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Latest(r.Context())
	if err != nil {
		writeError(w, r, err, h.notice)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, h.one: n})
}

// AdminList returns drafts and published notices.
func (h *Notices) AdminList(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListAll(r.Context(), middleware.CallerFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, err, h.notice)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, h.many: list})
}

// Create adds a draft notice.
func (h *Notices) Create(w http.ResponseWriter, r *http.Request) {
	var req noticeCreateRequest
	if !readJSON(w, r, &req) {
		return
	}
	if msg := validateText(req.Title, req.Content); msg != "" {
		writeDetail(w, http.StatusBadRequest, msg)
		return
	}
	n, err := h.svc.Create(r.Context(), middleware.CallerFromCtx(r.Context()), req.Title, req.Content)
	if err != nil {
		writeError(w, r, err, h.notice)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "通告创建成功（草稿状态）",
		h.one:     n,
	})
}

// Update edits a notice; the result is a draft.
func (h *Notices) Update(w http.ResponseWriter, r *http.Request) {
	var req noticeUpdateRequest
	if !readJSON(w, r, &req) {
		return
	}
	var title, body string
	if req.Title != nil {
		title = *req.Title
	}
	if req.Content != nil {
		body = *req.Content
	}
	if msg := validateText(title, body); msg != "" {
		writeDetail(w, http.StatusBadRequest, msg)
		return
	}
	n, err := h.svc.Update(r.Context(), middleware.CallerFromCtx(r.Context()), chi.URLParam(r, "id"), req.Title, req.Content)
	if err != nil {
		writeError(w, r, err, h.notice)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "通告更新成功",
		h.one:     n,
	})
}

// Publish makes a draft notice live.
func (h *Notices) Publish(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Publish(r.Context(), middleware.CallerFromCtx(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.notice)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "通告已发布",
		h.one:     n,
	})
}

// Unpublish takes a live notice back to draft.
func (h *Notices) Unpublish(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Unpublish(r.Context(), middleware.CallerFromCtx(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.notice)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "通告已撤回",
		h.one:     n,
	})
}

// Delete removes a notice from both collections.
func (h *Notices) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), middleware.CallerFromCtx(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, h.notice)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "通告已删除"})
}
