package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tebiki/internal/auth"
	"github.com/starford/tebiki/internal/browse"
	"github.com/starford/tebiki/internal/manualservice"
	"github.com/starford/tebiki/internal/requestservice"
)

const maxSearchLimit = 100

// Handler holds API route handlers.
type Handler struct {
	manuals  *manualservice.Service
	requests *requestservice.Service
	auth     *auth.Authenticator
}

// NewHandler creates a new Handler.
func NewHandler(manuals *manualservice.Service, requests *requestservice.Service, a *auth.Authenticator) *Handler {
	return &Handler{manuals: manuals, requests: requests, auth: a}
}

// ListCategories handles GET /api/categories.
//
//	@Summary		List categories with published manual counts
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{object}	CategoriesResponse
//	@Failure		401	{object}	errResponse
//	@Router			/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.manuals.Categories(r.Context())
	if err != nil {
		writeError(w, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: cats})
}

// GetCategory handles GET /api/categories/{slug}.
//
//	@Summary		Grouped, filtered manuals of one category
//	@Tags			catalog
//	@Produce		json
//	@Param			slug		path		string	true	"Category slug"
//	@Param			audience	query		string	false	"Audience tag"	Enums(管理者向け, 従業員向け)
//	@Param			plan		query		string	false	"Plan tag"		Enums(ミニマム, スターター, スタンダード, プロフェッショナル, アドバンス)
//	@Success		200			{object}	CategoryViewResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Router			/categories/{slug} [get]
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	q := r.URL.Query()
	f := browse.Filters{Audience: q.Get("audience"), Plan: q.Get("plan")}

	view, err := h.manuals.CategoryView(r.Context(), slug, f)
	if err != nil {
		writeError(w, "category view", err, slog.String("slug", slug))
		return
	}
	writeJSON(w, http.StatusOK, newCategoryViewResponse(view))
}

// GetManual handles GET /api/manuals/{id}.
//
//	@Summary		Get a published manual
//	@Tags			catalog
//	@Produce		json
//	@Param			id	path		string	true	"Manual ID"
//	@Success		200	{object}	models.Manual
//	@Failure		404	{object}	errResponse
//	@Router			/manuals/{id} [get]
func (h *Handler) GetManual(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := h.manuals.GetPublished(r.Context(), id)
	if err != nil {
		writeError(w, "get manual", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Search handles GET /api/search.
//
//	@Summary		Search published manuals
//	@Tags			catalog
//	@Produce		json
//	@Param			q		query		string	true	"Query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > maxSearchLimit {
		limit = 20
	}

	results, err := h.manuals.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Query: q, Results: results})
}

// SubmitRequest handles POST /api/requests.
//
//	@Summary		Request a manual that does not exist yet
//	@Tags			requests
//	@Accept			json
//	@Produce		json
//	@Param			body	body		requestservice.Input	true	"Request"
//	@Success		201		{object}	RequestDTO
//	@Failure		400		{object}	errResponse
//	@Failure		429		{object}	errResponse
//	@Router			/requests [post]
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var in requestservice.Input
	if !decodeJSON(w, r, &in) {
		return
	}
	req, err := h.requests.Submit(r.Context(), in)
	if err != nil {
		writeError(w, "submit request", err)
		return
	}
	writeJSON(w, http.StatusCreated, newRequestDTO(req))
}
