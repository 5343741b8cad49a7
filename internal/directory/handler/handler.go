package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"crmdir/internal/directory/export"
	"crmdir/internal/directory/models"
	id "crmdir/pkg/domain"
	dErrors "crmdir/pkg/domain-errors"
	"crmdir/pkg/platform/httputil"
	strutil "crmdir/pkg/platform/strings"
	"crmdir/pkg/requestcontext"
)

// Service defines the directory operations exposed over HTTP.
type Service interface {
	Search(ctx context.Context, tenantID id.TenantID, params models.SearchParams) (models.SearchResult, error)
	Export(ctx context.Context, tenantID id.TenantID, params models.SearchParams, w io.Writer) error
}

// Handler serves the tenant's client directory.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts directory endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/clients", h.HandleSearch)
	r.Get("/clients/export", h.HandleExport)
}

// HandleSearch handles GET /clients.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, err := parseSearchParams(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Search(ctx, requestcontext.TenantID(ctx), params)
	if err != nil {
		h.logFailure(ctx, "directory search failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleExport handles GET /clients/export. It accepts the same parameters as
// HandleSearch and answers with the requested page as an XLSX attachment.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, err := parseSearchParams(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// Buffered so a failed export can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.service.Export(ctx, requestcontext.TenantID(ctx), params, &buf); err != nil {
		h.logFailure(ctx, "directory export failed", err)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	filename := fmt.Sprintf("clientes-%s.xlsx", requestcontext.Now(ctx).Format("20060102"))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	level := slog.LevelWarn
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"tenant_id", requestcontext.TenantID(ctx),
		"error", err,
	)
}

// parseSearchParams reads SearchParams from the query string. Tags may be given
// as a comma-separated list, repeated, or both. An absent page or pageSize takes
// the engine default; an explicit one must be at least 1.
func parseSearchParams(q url.Values) (models.SearchParams, error) {
	params := models.SearchParams{
		Query: q.Get("query"),
		Filters: models.Filters{
			ClientType: models.ClientType(strings.TrimSpace(q.Get("clientType"))),
			Status:     models.Status(strings.TrimSpace(q.Get("status"))),
			Tags:       strutil.SplitList(strings.Join(q["tags"], ",")),
			Source:     strings.TrimSpace(q.Get("source")),
		},
		SortBy:    models.SortField(strings.TrimSpace(q.Get("sortBy"))),
		SortOrder: models.SortOrder(strings.ToLower(strings.TrimSpace(q.Get("sortOrder")))),
	}

	var err error
	if params.Page, err = intParam(q, "page"); err != nil {
		return models.SearchParams{}, err
	}
	if params.PageSize, err = intParam(q, "pageSize"); err != nil {
		return models.SearchParams{}, err
	}
	return params, nil
}

func intParam(q url.Values, name string) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be an integer", name))
	}
	if n < 1 {
		return 0, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be at least 1", name))
	}
	return n, nil
}
