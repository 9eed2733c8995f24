package triage

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/steward/pkg/handlers"
	"github.com/JaimeStill/steward/pkg/pagination"
	"github.com/JaimeStill/steward/pkg/routes"
)

// Handler provides HTTP endpoints for email operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for POST search.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "emails"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for email endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/emails",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Submit},
			{Method: "POST", Pattern: "/triage", Handler: h.Triage},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/{id}/process", Handler: h.Process},
			{Method: "GET", Pattern: "/{id}/archive", Handler: h.Archive},
		},
	}
}

// Submit stores an inbound email and queues it for processing.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	cmd, status, err := handlers.DecodeJSON[SubmitCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	email, err := h.sys.Submit(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, email)
}

// Triage stores an inbound email and returns its result once processed.
func (h *Handler) Triage(w http.ResponseWriter, r *http.Request) {
	cmd, status, err := handlers.DecodeJSON[SubmitCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	h.respondResult(w, r, func() (any, error) {
		return h.sys.Triage(r.Context(), cmd)
	})
}

// Process runs the workflow for a queued email and returns its result.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	h.respondResult(w, r, func() (any, error) {
		return h.sys.Process(r.Context(), id)
	})
}

// respondResult writes the result even when release failed, since the
// result is already recorded; the release error is logged.
func (h *Handler) respondResult(w http.ResponseWriter, r *http.Request, fn func() (any, error)) {
	result, err := fn()
	if err != nil {
		if status := MapHTTPStatus(err); status == http.StatusBadGateway {
			h.logger.WarnContext(r.Context(), "result recorded but not released", "error", err)
		} else {
			handlers.RespondError(w, h.logger, status, err)
			return
		}
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// List returns a paginated list of emails with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search returns a paginated list of emails using a JSON request body.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	req, status, err := handlers.DecodeJSON[SearchRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single email by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	email, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, email)
}

// Archive streams the archived result document for a processed email.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	rc, err := h.sys.Archive(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", archiveContentType)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, rc)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}
