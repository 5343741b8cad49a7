package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"crmdir/internal/location/models"
	dErrors "crmdir/pkg/domain-errors"
	"crmdir/pkg/platform/httputil"
	"crmdir/pkg/requestcontext"
)

// Resolver defines the location operations exposed over HTTP.
type Resolver interface {
	Resolve(ctx context.Context, level models.Level, id, parentID string) (string, string)
	Children(ctx context.Context, level models.Level, parentID string) []models.Entity
	FormatAddress(ctx context.Context, addr models.Address) string
}

// Handler serves location-name lookups for address rendering.
type Handler struct {
	resolver Resolver
	logger   *slog.Logger
}

func New(resolver Resolver, logger *slog.Logger) *Handler {
	return &Handler{resolver: resolver, logger: logger}
}

// Register mounts location endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/locations/{level}", h.HandleListChildren)
	r.Get("/locations/{level}/{id}/name", h.HandleResolveName)
	r.Post("/locations/format-address", h.HandleFormatAddress)
}

type nameResponse struct {
	Level    models.Level `json:"level"`
	ID       string       `json:"id"`
	ParentID string       `json:"parent_id,omitempty"`
	Name     string       `json:"name"`
}

// HandleResolveName handles GET /locations/{level}/{id}/name?parent=.
// Unknown ids are answered with the id itself, never with an error.
func (h *Handler) HandleResolveName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	level, err := models.ParseLevel(chi.URLParam(r, "level"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	parentID := r.URL.Query().Get("parent")

	name, source := h.resolver.Resolve(ctx, level, id, parentID)
	h.logger.DebugContext(ctx, "location name resolved",
		"request_id", requestcontext.RequestID(ctx),
		"level", level,
		"id", id,
		"source", source,
	)
	httputil.WriteJSON(w, http.StatusOK, nameResponse{Level: level, ID: id, ParentID: parentID, Name: name})
}

type childrenResponse struct {
	Level    models.Level    `json:"level"`
	ParentID string          `json:"parent_id,omitempty"`
	Items    []models.Entity `json:"items"`
}

// HandleListChildren handles GET /locations/{level}?parent=. Countries need no parent.
func (h *Handler) HandleListChildren(w http.ResponseWriter, r *http.Request) {
	level, err := models.ParseLevel(chi.URLParam(r, "level"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	parentID := strings.TrimSpace(r.URL.Query().Get("parent"))
	if parentID == "" && level != models.LevelCountry {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "parent is required below country level"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, childrenResponse{
		Level:    level,
		ParentID: parentID,
		Items:    h.resolver.Children(r.Context(), level, parentID),
	})
}

type formatAddressRequest struct {
	models.Address
}

func (r *formatAddressRequest) Validate() error {
	a := r.Address
	for _, part := range []string{a.Country, a.State, a.City, a.District, a.Street, a.PostalCode} {
		if strings.TrimSpace(part) != "" {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeValidation, "address must have at least one field")
}

type formatAddressResponse struct {
	Formatted string `json:"formatted"`
}

// HandleFormatAddress handles POST /locations/format-address.
func (h *Handler) HandleFormatAddress(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[formatAddressRequest](w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, formatAddressResponse{
		Formatted: h.resolver.FormatAddress(r.Context(), req.Address),
	})
}
