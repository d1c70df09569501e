package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/perthro/internal/apperr"
	"github.com/starford/perthro/internal/sectionservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *sectionservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *sectionservice.Service) *Handler {
	return &Handler{svc: svc}
}

// filePath extracts the source file path from the URL (everything after
// /api/files/). Supports encoded slashes from OpenAPI clients
// (e.g. lib%2FDemo.pm).
func filePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListFiles handles GET /api/files.
//
//	@Summary		List indexed source files with optional pagination and group filtering
//	@Tags			files
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			group	query		string	false	"Only files containing sections of this group"
//	@Param			sort	query		string	false	"Sort field"	Enums(updated_at, path)
//	@Success		200		{object}	FileListResponse
//	@Security		BearerAuth
//	@Router			/files [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	group := q.Get("group")
	sort := q.Get("sort")

	items, total, err := h.svc.ListFiles(r.Context(), limit, offset, group, sort)
	if err != nil {
		slog.Error("list files failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"files": items,
		"total": total,
	})
}

// GetFile handles GET /api/files/*.
//
// Without query parameters the full file detail is returned. The `list`
// and `name` parameters select sections the same way the session query
// layer does: `list` alone returns the group, `name` alone the single
// item match, both together the list_item match.
//
//	@Summary		Get a source file's extracted sections
//	@Tags			files
//	@Produce		json
//	@Param			path	path		string	true	"Source file path"
//	@Param			list	query		string	false	"Group keyword filter"
//	@Param			name	query		string	false	"Section name filter"
//	@Success		200		{object}	FileDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files/{path} [get]
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}

	q := r.URL.Query()
	list := q.Get("list")
	name := q.Get("name")

	if list != "" || name != "" {
		secs, err := h.svc.QuerySections(r.Context(), path, list, name)
		if err != nil {
			h.writeFileError(w, path, "query sections failed", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"path":     path,
			"sections": secs,
		})
		return
	}

	detail, err := h.svc.GetFile(r.Context(), path)
	if err != nil {
		h.writeFileError(w, path, "get file failed", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) writeFileError(w http.ResponseWriter, path, msg string, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	slog.Error(msg, slog.String("path", path), slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across extracted sections
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// Groups handles GET /api/groups.
//
//	@Summary		Aggregate grouped markers across the source tree
//	@Tags			groups
//	@Produce		json
//	@Success		200	{object}	GroupsResponse
//	@Security		BearerAuth
//	@Router			/groups [get]
func (h *Handler) Groups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.Groups(r.Context())
	if err != nil {
		slog.Error("groups failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"groups": groups,
	})
}
