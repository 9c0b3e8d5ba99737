// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"localgame/internal/catalog"
	"localgame/internal/content"
	"localgame/internal/middleware"
)

const (
	// maxUploadSize caps a game upload request (HTML file plus thumbnail).
	maxUploadSize = 100 << 20
	// multipartMemory is kept in memory before parts spill to disk.
	multipartMemory = 32 << 20
)

// Games groups the game endpoints.
type Games struct {
	games   *content.Games
	catalog *catalog.Catalog
}

// NewGames creates a new Games handler group.
func NewGames(games *content.Games, cat *catalog.Catalog) *Games {
	return &Games{games: games, catalog: cat}
}

// parseUpload parses the multipart body. It answers the client itself and
// returns false on failure.
func parseUpload(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "上传文件过大，最大100MB")
			return false
		}
		writeDetail(w, http.StatusBadRequest, "请求格式错误，需要 multipart/form-data")
		return false
	}
	return true
}

// formUpload returns the named file part, or nil when the field is absent.
// The caller must close the returned file.
func formUpload(r *http.Request, field string) (*content.Upload, multipart.File) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return &content.Upload{Filename: header.Filename, Body: file}, file
}

// formValue returns the named text field and whether it was sent at all.
func formValue(r *http.Request, field string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	vals, ok := r.MultipartForm.Value[field]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

func closeAll(files ...multipart.File) {
	for _, f := range files {
		if f != nil {
			f.Close()
		}
	}
}

// Upload stores a new game as a draft owned by the caller.
func (h *Games) Upload(w http.ResponseWriter, r *http.Request) {
	if !parseUpload(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	title, _ := formValue(r, "title")
	body, _ := formValue(r, "content")
	if msg := validateText(title, body); msg != "" {
		writeDetail(w, http.StatusBadRequest, msg)
		return
	}

	gameFile, gf := formUpload(r, "game_file")
	thumb, tf := formUpload(r, "thumbnail")
	defer closeAll(gf, tf)

	g, err := h.games.Create(r.Context(), middleware.CallerFromCtx(r.Context()), content.GameInput{
		Title:     title,
		Content:   body,
		GameFile:  gameFile,
		Thumbnail: thumb,
	})
	if err != nil {
		writeError(w, r, err, defaultText)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "游戏上传成功（草稿状态）",
		"game":    g,
	})
}

// List returns every published game.
func (h *Games) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.catalog.Published(r.Context())
	if err != nil {
		writeError(w, r, err, defaultText)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "games": games})
}

// Mine returns the caller's drafts and published games.
func (h *Games) Mine(w http.ResponseWriter, r *http.Request) {
	games, err := h.games.Mine(r.Context(), middleware.CallerFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, err, defaultText)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "games": games})
}

// Get returns one published game.
func (h *Games) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.catalog.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, errText{notFound: "游戏不存在或未发布"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "game": g})
}

// Update edits the caller's game. Omitted fields keep their values.
func (h *Games) Update(w http.ResponseWriter, r *http.Request) {
	if !parseUpload(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	title, _ := formValue(r, "title")
	var edit content.GameEdit
	edit.Title = title
	body, hasBody := formValue(r, "content")
	if hasBody {
		edit.Content = &body
	}
	if msg := validateText(title, body); msg != "" {
		writeDetail(w, http.StatusBadRequest, msg)
		return
	}

	var gf, tf multipart.File
	edit.GameFile, gf = formUpload(r, "game_file")
	edit.Thumbnail, tf = formUpload(r, "thumbnail")
	defer closeAll(gf, tf)

	g, err := h.games.Edit(r.Context(), middleware.CallerFromCtx(r.Context()), chi.URLParam(r, "id"), edit)
	if err != nil {
		writeError(w, r, err, errText{notFound: "游戏不存在", forbidden: "无权编辑此游戏"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "游戏更新成功",
		"game":    g,
	})
}

// Publish makes the caller's draft public.
func (h *Games) Publish(w http.ResponseWriter, r *http.Request) {
	g, err := h.games.Publish(r.Context(), middleware.CallerFromCtx(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, errText{notFound: "游戏不存在", forbidden: "无权发布此游戏"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "游戏已发布",
		"game":    g,
	})
}

// Unpublish takes the caller's game offline.
func (h *Games) Unpublish(w http.ResponseWriter, r *http.Request) {
	g, err := h.games.Unpublish(r.Context(), middleware.CallerFromCtx(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, errText{notFound: "游戏不存在或未发布", forbidden: "无权撤回此游戏"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "游戏已撤回到草稿",
		"game":    g,
	})
}

// Delete removes a game and its files. Admins may delete any game.
func (h *Games) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.games.Delete(r.Context(), middleware.CallerFromCtx(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, errText{notFound: "游戏不存在", forbidden: "无权删除此游戏"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "游戏已删除"})
}
