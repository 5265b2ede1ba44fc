package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withRemoteAddr)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/login", h.login)
		r.Post("/api/forgot-password", h.forgotPassword)
		r.Post("/api/reset-password", h.resetPassword)
	})

	// routes behind the session token
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Post("/api/logout", h.logout)
		r.Get("/api/me", h.me)

		r.Post("/api/save", h.save)
		r.Get("/api/load", h.load)
		r.Delete("/api/delete", h.deleteKey)
		r.Get("/api/export", h.export)
		r.Post("/api/import", h.importData)
		r.Post("/api/backup", h.backup)

		r.Post("/api/item", h.addItem)
		r.Get("/api/items", h.listItems)

		r.Post("/api/client", h.saveClient)
		r.Put("/api/client", h.saveClient)
		r.Delete("/api/client", h.deleteClient)
		r.Get("/api/clients", h.listClients)
	})

	return router
}
