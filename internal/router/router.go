// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// LocalGame server. Routes are grouped by access level: public, signed in
// and admin.
package router

import (
	"github.com/go-chi/chi/v5"

	"localgame/internal/handlers"
	"localgame/internal/metrics"
	"localgame/internal/middleware"
)

// Handlers bundles the handler groups mounted by New.
type Handlers struct {
	Auth          *handlers.Auth
	Games         *handlers.Games
	Announcements *handlers.Notices
	Bulletins     *handlers.Notices
	Chat          *handlers.Chat
	Public        *handlers.Public
}

// New creates and returns the configured Chi router. The limiter guards
// the endpoints that send email or check credentials.
func New(resolver middleware.Resolver, limiter *middleware.RateLimiter, h Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS)
	r.Use(middleware.Authenticate(resolver))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Handle("/metrics", metrics.Handler())

	r.Get("/media/games/{folder}/{file}", h.Public.GameFile)
	r.Get("/media/images/{folder}/{file}", h.Public.ImageFile)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Public.Health)
		r.Get("/config/stream", h.Public.StreamConfig)
		r.Get("/search", h.Public.Search)

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(limiter.Middleware)
				r.Post("/register/send-code", h.Auth.SendRegistrationCode)
				r.Post("/login/send-code", h.Auth.SendLoginCode)
				r.Post("/login/password", h.Auth.LoginPassword)
				r.Post("/login/code", h.Auth.LoginCode)
			})
			r.Post("/register", h.Auth.Register)
			r.Post("/change-password", h.Auth.ChangePassword)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/verify", h.Auth.Verify)
				r.Put("/change-username", h.Auth.ChangeUsername)
				r.Delete("/delete-account", h.Auth.DeleteAccount)
				r.Post("/logout", h.Auth.Logout)
			})
		})

		r.Route("/chat/messages", func(r chi.Router) {
			r.Get("/", h.Chat.List)
			r.With(middleware.RequireAuth).Post("/", h.Chat.Post)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth, middleware.RequireAdmin)
				r.Delete("/", h.Chat.Clear)
				r.Delete("/{id}", h.Chat.Delete)
			})
		})

		r.Route("/announcement", func(r chi.Router) {
			r.Get("/latest", h.Announcements.Latest)
			noticeRoutes(r, h.Announcements)
		})
		r.Route("/bulletin", func(r chi.Router) {
			noticeRoutes(r, h.Bulletins)
		})

		r.Route("/game", func(r chi.Router) {
			r.Get("/list", h.Games.List)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/upload", h.Games.Upload)
				r.Get("/my-games", h.Games.Mine)
				r.Put("/{id}", h.Games.Update)
				r.Post("/{id}/publish", h.Games.Publish)
				r.Post("/{id}/unpublish", h.Games.Unpublish)
				r.Delete("/{id}", h.Games.Delete)
			})

			r.Get("/{id}", h.Games.Get)
		})
	})

	return r
}

// noticeRoutes mounts the public list and the admin endpoints shared by
// announcements and bulletins.
func noticeRoutes(r chi.Router, n *handlers.Notices) {
	r.Get("/list", n.List)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAuth, middleware.RequireAdmin)
		r.Get("/list", n.AdminList)
		r.Post("/create", n.Create)
		r.Put("/{id}", n.Update)
		r.Delete("/{id}", n.Delete)
		r.Post("/{id}/publish", n.Publish)
		r.Post("/{id}/unpublish", n.Unpublish)
	})
}
