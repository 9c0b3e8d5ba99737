// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"localgame/internal/catalog"
	"localgame/internal/store"
)

// Stream names the background radio stream shown by the frontend.
type Stream struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Public groups the unauthenticated endpoints: health, search, stream
// config and uploaded media.
type Public struct {
	catalog *catalog.Catalog
	layout  store.Layout
	stream  Stream
}

// NewPublic creates a new Public handler group.
func NewPublic(cat *catalog.Catalog, layout store.Layout, stream Stream) *Public {
	return &Public{catalog: cat, layout: layout, stream: stream}
}

// Health reports that the server is up.
func (p *Public) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StreamConfig returns the radio stream settings.
func (p *Public) StreamConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, p.stream)
}

// Search finds published games by keyword.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if msg := validateKeyword(q); msg != "" {
		writeDetail(w, http.StatusBadRequest, msg)
		return
	}
	games, err := p.catalog.Search(r.Context(), q)
	if err != nil {
		writeError(w, r, err, defaultText)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games, "total": len(games)})
}

// GameFile serves an uploaded game page.
func (p *Public) GameFile(w http.ResponseWriter, r *http.Request) {
	p.serveAsset(w, r, p.layout.GamesDir)
}

// ImageFile serves an uploaded thumbnail.
func (p *Public) ImageFile(w http.ResponseWriter, r *http.Request) {
	p.serveAsset(w, r, p.layout.ImagesDir)
}

// serveAsset serves {folder}/{file} from the directory dir returns for the
// folder. Only plain file names inside a well-formed folder are served.
func (p *Public) serveAsset(w http.ResponseWriter, r *http.Request, dir func(folder string) string) {
	folder := chi.URLParam(r, "folder")
	name := chi.URLParam(r, "file")
	if !store.ValidFolder(folder) || name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		writeDetail(w, http.StatusNotFound, "文件不存在")
		return
	}

	path := filepath.Join(dir(folder), name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		writeDetail(w, http.StatusNotFound, "文件不存在")
		return
	}
	http.ServeFile(w, r, path)
}
