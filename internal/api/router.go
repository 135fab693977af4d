package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tebiki/internal/auth"
	"github.com/starford/tebiki/internal/manualservice"
	"github.com/starford/tebiki/internal/requestservice"
)

// Deps are the collaborators the API is built from.
type Deps struct {
	Manuals  *manualservice.Service
	Requests *requestservice.Service
	Auth     *auth.Authenticator
	// Events, if non-nil, is mounted at GET /admin/events.
	Events http.Handler
	// IntakeLimit, if non-nil, wraps POST /requests.
	IntakeLimit func(http.Handler) http.Handler
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(d Deps) chi.Router {
	h := NewHandler(d.Manuals, d.Requests, d.Auth)

	r := chi.NewRouter()

	// Sessions.
	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)
	r.Post("/admin/login", h.AdminLogin)
	r.Post("/admin/logout", h.AdminLogout)

	// Catalog, behind the viewer gate.
	r.Group(func(r chi.Router) {
		r.Use(d.Auth.RequireViewer)
		r.Get("/categories", h.ListCategories)
		r.Get("/categories/{slug}", h.GetCategory)
		r.Get("/manuals/{id}", h.GetManual)
		r.Get("/search", h.Search)

		intake := http.Handler(http.HandlerFunc(h.SubmitRequest))
		if d.IntakeLimit != nil {
			intake = d.IntakeLimit(intake)
		}
		r.Method(http.MethodPost, "/requests", intake)
	})

	// Administration.
	r.Group(func(r chi.Router) {
		r.Use(d.Auth.RequireAdmin)
		r.Get("/admin/manuals", h.ListManuals)
		r.Post("/admin/manuals", h.CreateManual)
		r.Get("/admin/manuals/{id}", h.GetAdminManual)
		r.Put("/admin/manuals/{id}", h.UpdateManual)
		r.Delete("/admin/manuals/{id}", h.DeleteManual)

		r.Get("/admin/requests", h.ListRequests)
		r.Get("/admin/requests/{id}", h.GetRequest)
		r.Put("/admin/requests/{id}", h.UpdateRequest)

		r.Get("/admin/taxonomy", h.Taxonomy)

		if d.Events != nil {
			r.Get("/admin/events", d.Events.ServeHTTP)
		}
	})

	return r
}
