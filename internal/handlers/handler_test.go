// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Every test gets its own data directory and in-memory
// session and rate-limit backends.
package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"localgame/internal/auth"
	"localgame/internal/catalog"
	"localgame/internal/chat"
	"localgame/internal/content"
	"localgame/internal/middleware"
	"localgame/internal/ratelimit"
	"localgame/internal/session"
	"localgame/internal/store"
)

const testAdminEmail = "admin@localgame.local"

// codeMailer keeps the last code sent to each address.
type codeMailer struct {
	codes map[string]string
}

func (m *codeMailer) SendRegistrationCode(_ context.Context, email, code string) error {
	m.codes[email] = code
	return nil
}

func (m *codeMailer) SendLoginCode(_ context.Context, email, code string) error {
	m.codes[email] = code
	return nil
}

// toggleLimiter applies the real email policy unless bypass is set.
type toggleLimiter struct {
	policy *ratelimit.EmailPolicy
	bypass bool
}

func (l *toggleLimiter) Allow(ctx context.Context, email string) error {
	if l.bypass {
		return nil
	}
	return l.policy.Allow(ctx, email)
}

// testEnv is a fully wired handler tree over a temporary data directory.
type testEnv struct {
	t       *testing.T
	router  http.Handler
	mailer  *codeMailer
	limiter *toggleLimiter
	layout  store.Layout
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	layout := store.Layout{Root: t.TempDir()}
	if err := layout.Init(); err != nil {
		t.Fatalf("init layout: %v", err)
	}

	mailer := &codeMailer{codes: map[string]string{}}
	limiter := &toggleLimiter{policy: ratelimit.NewEmailPolicy(ratelimit.NewMemoryCounter())}
	authSvc := auth.New(
		store.NewUserStore(layout, testAdminEmail),
		store.NewCodeStore(layout.PendingFile(), store.KeyRegistrations),
		store.NewCodeStore(layout.LoginCodesFile(), store.KeyCodes),
		session.NewStore(session.NewMemoryBackend(), 0),
		limiter,
		mailer,
	)

	ids := content.NewIDGenerator()
	cat := catalog.New(layout)
	authH := NewAuth(authSvc)
	gameH := NewGames(content.NewGames(layout, ids), cat)
	annH := NewNotices(content.NewNotices(layout, content.KindAnnouncement, ids))
	chatH := NewChat(chat.NewStore(layout))
	pub := NewPublic(cat, layout, Stream{URL: "https://radio.example/stream", Name: "Test FM"})

	r := chi.NewRouter()
	r.Use(middleware.Authenticate(authSvc))
	r.Get("/api/health", pub.Health)
	r.Get("/api/config/stream", pub.StreamConfig)
	r.Get("/api/search", pub.Search)
	r.Get("/media/games/{folder}/{file}", pub.GameFile)
	r.Get("/media/images/{folder}/{file}", pub.ImageFile)

	r.Post("/api/auth/register/send-code", authH.SendRegistrationCode)
	r.Post("/api/auth/register", authH.Register)
	r.Post("/api/auth/login/password", authH.LoginPassword)
	r.Post("/api/auth/login/send-code", authH.SendLoginCode)
	r.Post("/api/auth/login/code", authH.LoginCode)
	r.Post("/api/auth/change-password", authH.ChangePassword)

	r.Get("/api/game/list", gameH.List)
	r.Get("/api/game/{id}", gameH.Get)
	r.Get("/api/announcement/list", annH.List)
	r.Get("/api/announcement/latest", annH.Latest)
	r.Get("/api/chat/messages", chatH.List)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/api/auth/verify", authH.Verify)
		r.Put("/api/auth/change-username", authH.ChangeUsername)
		r.Delete("/api/auth/delete-account", authH.DeleteAccount)
		r.Post("/api/auth/logout", authH.Logout)

		r.Post("/api/game/upload", gameH.Upload)
		r.Get("/api/game/my-games", gameH.Mine)
		r.Put("/api/game/{id}", gameH.Update)
		r.Post("/api/game/{id}/publish", gameH.Publish)
		r.Post("/api/game/{id}/unpublish", gameH.Unpublish)
		r.Delete("/api/game/{id}", gameH.Delete)

		r.Post("/api/chat/messages", chatH.Post)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/api/announcement/admin/list", annH.AdminList)
			r.Post("/api/announcement/admin/create", annH.Create)
			r.Put("/api/announcement/admin/{id}", annH.Update)
			r.Delete("/api/announcement/admin/{id}", annH.Delete)
			r.Post("/api/announcement/admin/{id}/publish", annH.Publish)
			r.Post("/api/announcement/admin/{id}/unpublish", annH.Unpublish)
			r.Delete("/api/chat/messages/{id}", chatH.Delete)
			r.Delete("/api/chat/messages", chatH.Clear)
		})
	})

	return &testEnv{t: t, router: r, mailer: mailer, limiter: limiter, layout: layout}
}

// do sends a JSON request with an optional bearer token.
func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type filePart struct {
	name string
	body string
}

// multipart sends a multipart/form-data request.
func (e *testEnv) multipart(method, path, token string, fields map[string]string, files map[string]filePart) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			e.t.Fatalf("write field: %v", err)
		}
	}
	for field, f := range files {
		part, err := mw.CreateFormFile(field, f.name)
		if err != nil {
			e.t.Fatalf("create part: %v", err)
		}
		part.Write([]byte(f.body))
	}
	mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// decode parses a JSON object response.
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func expectDetail(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	got, _ := decode(t, rec)["detail"].(string)
	if !strings.Contains(got, want) {
		t.Errorf("detail: got %q, want it to contain %q", got, want)
	}
}

// signup registers email with a password and returns the access token.
func (e *testEnv) signup(email, username string) string {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/auth/register/send-code", "", map[string]string{"email": email})
	expectStatus(e.t, rec, http.StatusOK)
	rec = e.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"code":     e.mailer.codes[email],
		"password": "password123",
		"username": username,
	})
	expectStatus(e.t, rec, http.StatusOK)
	token, _ := decode(e.t, rec)["access_token"].(string)
	if token == "" {
		e.t.Fatal("register returned no access token")
	}
	return token
}

// adminToken signs the configured admin in with an emailed code.
func (e *testEnv) adminToken() string {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/auth/login/send-code", "", map[string]string{"email": testAdminEmail})
	expectStatus(e.t, rec, http.StatusOK)
	rec = e.do(http.MethodPost, "/api/auth/login/code", "", map[string]string{
		"email": testAdminEmail,
		"code":  e.mailer.codes[testAdminEmail],
	})
	expectStatus(e.t, rec, http.StatusOK)
	token, _ := decode(e.t, rec)["access_token"].(string)
	return token
}

// uploadGame creates a draft game and returns its JSON object.
func (e *testEnv) uploadGame(token, title string) map[string]any {
	e.t.Helper()
	rec := e.multipart(http.MethodPost, "/api/game/upload", token,
		map[string]string{"title": title, "content": "about " + title},
		map[string]filePart{
			"game_file": {name: "index.html", body: "<html>" + title + "</html>"},
			"thumbnail": {name: "cover.PNG", body: "png-bytes"},
		})
	expectStatus(e.t, rec, http.StatusOK)
	g, _ := decode(e.t, rec)["game"].(map[string]any)
	if g == nil {
		e.t.Fatal("upload returned no game")
	}
	return g
}
