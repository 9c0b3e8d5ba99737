// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"localgame/internal/access"
	"localgame/internal/models"
	"localgame/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// CallerKey is the context key for the authenticated caller.
	CallerKey contextKey = "caller"
	// TokenKey is the context key for the bearer token of the request.
	TokenKey contextKey = "token"
)

// Resolver maps a bearer token to the active user it belongs to. A nil
// user with a nil error means the token is unknown.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// Authenticate resolves the bearer token, if any, and stores the caller in
// the request context. It does NOT enforce authentication; requests with
// a missing or unknown token continue as anonymous.
func Authenticate(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := session.TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				slog.Warn("resolve session failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if user != nil {
				ctx := context.WithValue(r.Context(), CallerKey, access.FromUser(user))
				ctx = context.WithValue(ctx, TokenKey, token)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth answers 401 when no caller was resolved.
// Must be applied after Authenticate in the middleware chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CallerFromCtx(r.Context()) == nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "未授权：请先登录")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin answers 403 if the caller is not the administrator.
// Must be applied after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !CallerFromCtx(r.Context()).IsAdmin() {
			writeDetail(w, http.StatusForbidden, "权限不足：需要管理员权限")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CallerFromCtx extracts the caller from the request context.
// Returns nil if the request is anonymous.
func CallerFromCtx(ctx context.Context) *access.Caller {
	c, _ := ctx.Value(CallerKey).(*access.Caller)
	return c
}

// TokenFromCtx returns the bearer token the caller authenticated with.
func TokenFromCtx(ctx context.Context) string {
	t, _ := ctx.Value(TokenKey).(string)
	return t
}

// WithCaller returns a copy of ctx carrying c.
func WithCaller(ctx context.Context, c *access.Caller) context.Context {
	return context.WithValue(ctx, CallerKey, c)
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"detail": msg}); err != nil {
		slog.Error("write error body", "error", err)
	}
}
