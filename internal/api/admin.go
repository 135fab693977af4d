package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tebiki/internal/manualservice"
	"github.com/starford/tebiki/internal/requestservice"
)

// ListManuals handles GET /api/admin/manuals.
//
//	@Summary		List manuals, published or not
//	@Tags			admin
//	@Produce		json
//	@Param			category	query		string	false	"Main category name"
//	@Param			subcategory	query		string	false	"Subcategory"
//	@Param			tag			query		string	false	"Exact tag"
//	@Param			status		query		string	false	"Publication state"	Enums(published, draft)
//	@Param			q			query		string	false	"Title/category substring"
//	@Param			sort		query		string	false	"Sort field"		Enums(order_index, created_at, updated_at, title)
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Success		200			{object}	ManualListResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/manuals [get]
func (h *Handler) ListManuals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	page, err := h.manuals.List(r.Context(), manualservice.ListQuery{
		Category:    q.Get("category"),
		SubCategory: q.Get("subcategory"),
		Tag:         q.Get("tag"),
		Status:      q.Get("status"),
		Query:       q.Get("q"),
		Sort:        q.Get("sort"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		writeError(w, "list manuals", err)
		return
	}
	writeJSON(w, http.StatusOK, ManualListResponse{Manuals: page.Items, Total: page.Total})
}

// GetAdminManual handles GET /api/admin/manuals/{id}.
//
//	@Summary		Get any manual with its checksum
//	@Tags			admin
//	@Produce		json
//	@Param			id	path		string	true	"Manual ID"
//	@Success		200	{object}	manualservice.ManualDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/manuals/{id} [get]
func (h *Handler) GetAdminManual(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := h.manuals.Get(r.Context(), id)
	if err != nil {
		writeError(w, "get manual", err, slog.String("id", id))
		return
	}
	writeManual(w, http.StatusOK, d)
}

// CreateManual handles POST /api/admin/manuals.
//
//	@Summary		Create a manual
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			body	body		manualservice.ManualInput	true	"Manual"
//	@Success		201		{object}	manualservice.ManualDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/manuals [post]
func (h *Handler) CreateManual(w http.ResponseWriter, r *http.Request) {
	var in manualservice.ManualInput
	if !decodeJSON(w, r, &in) {
		return
	}
	d, err := h.manuals.Create(r.Context(), in)
	if err != nil {
		writeError(w, "create manual", err, slog.String("title", in.Title))
		return
	}
	writeManual(w, http.StatusCreated, d)
}

// UpdateManual handles PUT /api/admin/manuals/{id}.
//
//	@Summary		Update a manual with optimistic concurrency
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string						true	"Manual ID"
//	@Param			If-Match	header		string						false	"Checksum from a previous read"
//	@Param			body		body		manualservice.ManualInput	true	"Manual"
//	@Success		200			{object}	manualservice.ManualDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/manuals/{id} [put]
func (h *Handler) UpdateManual(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in manualservice.ManualInput
	if !decodeJSON(w, r, &in) {
		return
	}
	d, err := h.manuals.Update(r.Context(), id, in, r.Header.Get("If-Match"))
	if err != nil {
		writeError(w, "update manual", err, slog.String("id", id))
		return
	}
	writeManual(w, http.StatusOK, d)
}

// DeleteManual handles DELETE /api/admin/manuals/{id}.
//
//	@Summary		Delete a manual
//	@Tags			admin
//	@Param			id	path	string	true	"Manual ID"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/manuals/{id} [delete]
func (h *Handler) DeleteManual(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.manuals.Delete(r.Context(), id); err != nil {
		writeError(w, "delete manual", err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeManual(w http.ResponseWriter, status int, d *manualservice.ManualDetail) {
	w.Header().Set("ETag", `"`+d.Checksum+`"`)
	writeJSON(w, status, d)
}

// ListRequests handles GET /api/admin/requests.
//
//	@Summary		List manual requests, newest first
//	@Tags			admin
//	@Produce		json
//	@Param			status	query		string	false	"Status"	Enums(pending, in_progress, completed, rejected)
//	@Success		200		{object}	RequestListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/requests [get]
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.requests.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, "list requests", err)
		return
	}
	out := make([]RequestDTO, len(reqs))
	for i := range reqs {
		out[i] = newRequestDTO(&reqs[i])
	}
	writeJSON(w, http.StatusOK, RequestListResponse{Requests: out})
}

// GetRequest handles GET /api/admin/requests/{id}.
//
//	@Summary		Get one manual request
//	@Tags			admin
//	@Produce		json
//	@Param			id	path		string	true	"Request ID"
//	@Success		200	{object}	RequestDTO
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/requests/{id} [get]
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req, err := h.requests.Get(r.Context(), id)
	if err != nil {
		writeError(w, "get request", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, newRequestDTO(req))
}

// UpdateRequest handles PUT /api/admin/requests/{id}.
//
//	@Summary		Triage a manual request
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Request ID"
//	@Param			body	body		requestservice.Update	true	"Changes"
//	@Success		200		{object}	RequestDTO
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/requests/{id} [put]
func (h *Handler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var u requestservice.Update
	if !decodeJSON(w, r, &u) {
		return
	}
	req, err := h.requests.Update(r.Context(), id, u)
	if err != nil {
		writeError(w, "update request", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, newRequestDTO(req))
}

// Taxonomy handles GET /api/admin/taxonomy.
//
//	@Summary		Category table, step rules and facet values
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	TaxonomyResponse
//	@Security		BearerAuth
//	@Router			/admin/taxonomy [get]
func (h *Handler) Taxonomy(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newTaxonomyResponse(h.manuals.Taxonomy(), h.manuals.Steps()))
}
