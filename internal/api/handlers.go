package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notionmd/internal/apperr"
	"github.com/starford/notionmd/internal/models"
	"github.com/starford/notionmd/internal/pageservice"
)

// PageService is the page service as seen by the handlers.
type PageService interface {
	GetPage(ctx context.Context, token, id string) (*pageservice.Page, error)
	ListPages(ctx context.Context, token, databaseID string, p pageservice.Pagination) (*models.PageListing, error)
}

// Handler holds API route handlers.
type Handler struct {
	svc PageService
}

// NewHandler creates a new Handler.
func NewHandler(svc PageService) *Handler {
	return &Handler{svc: svc}
}

// pathID returns the decoded {id} URL parameter.
func pathID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// rejectNestedID answers ids that span more than one path segment.
func rejectNestedID(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, fmt.Errorf("%w: id must not contain a path separator", apperr.ErrValidation))
}

// GetPage handles GET /page/{id}.
//
//	@Summary		Get a page as JSON or Markdown
//	@Tags			pages
//	@Produce		json,text/markdown
//	@Param			id			path		string	true	"Page id (UUID)"
//	@Param			frontmatter	query		bool	false	"Prefix Markdown with a frontmatter header"
//	@Success		200			{object}	PageResponse
//	@Failure		400			{object}	errResponse
//	@Failure		401			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/page/{id} [get]
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	frontmatter, err := frontmatterParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.svc.GetPage(r.Context(), tokenFrom(r.Context()), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if wantsMarkdown(r) {
		md, err := page.Markdown(frontmatter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := io.WriteString(w, md); err != nil {
			slog.Debug("write markdown failed", slog.String("error", err.Error()))
		}
		return
	}

	props, err := page.PropertiesJSON()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PageResponse{ID: page.ID, Properties: props, Content: page.Body})
}

// ListDatabase handles GET /database/{id}.
//
//	@Summary		List the pages of a database
//	@Tags			databases
//	@Produce		json
//	@Param			id		path		string	true	"Database id (UUID)"
//	@Param			offset	query		int		false	"Window offset"	default(0)
//	@Param			limit	query		int		false	"Window size"	default(20)	maximum(100)
//	@Success		200		{object}	PageListResponse
//	@Failure		400		{object}	errResponse
//	@Failure		401		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/database/{id} [get]
func (h *Handler) ListDatabase(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := pageservice.ParsePagination(q.Get("offset"), q.Get("limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	listing, err := h.svc.ListPages(r.Context(), tokenFrom(r.Context()), pathID(r), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// Health handles GET /health/live and GET /health/ready.
//
//	@Summary	Liveness and readiness check
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Router		/health/live [get]
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
