package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"crmdir/internal/timeline"
	"crmdir/internal/timeline/service"
	id "crmdir/pkg/domain"
	dErrors "crmdir/pkg/domain-errors"
	"crmdir/pkg/platform/httputil"
	"crmdir/pkg/requestcontext"
)

// Service defines the timeline operations exposed over HTTP.
type Service interface {
	Timeline(ctx context.Context, tenantID id.TenantID, clientID id.ClientID, q service.Query) (*service.Result, error)
}

// Handler serves client activity timelines.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts timeline endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/clients/{clientID}/timeline", h.HandleTimeline)
}

type itemResponse struct {
	Type     timeline.Kind `json:"type"`
	ID       id.RecordID   `json:"id"`
	SortDate time.Time     `json:"sort_date"`
	Data     timeline.Item `json:"data"`
}

type timelineResponse struct {
	Items      []itemResponse        `json:"items"`
	TotalCount int                   `json:"total_count"`
	HasMore    bool                  `json:"has_more"`
	NextLimit  int                   `json:"next_limit,omitempty"`
	Counts     map[timeline.Kind]int `json:"counts"`
}

// HandleTimeline handles GET /clients/{clientID}/timeline?limit=&kind=.
func (h *Handler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID, err := id.ParseClientID(chi.URLParam(r, "clientID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	q := service.Query{Kind: timeline.Kind(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("kind"))))}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if q.Limit, err = strconv.Atoi(raw); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be an integer"))
			return
		}
	}

	res, err := h.service.Timeline(ctx, requestcontext.TenantID(ctx), clientID, q)
	if err != nil {
		h.logger.WarnContext(ctx, "timeline request failed",
			"request_id", requestcontext.RequestID(ctx),
			"client_id", clientID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := timelineResponse{
		Items:      make([]itemResponse, len(res.Items)),
		TotalCount: res.TotalCount,
		HasMore:    res.HasMore,
		NextLimit:  res.NextLimit,
		Counts:     res.Counts,
	}
	for i, it := range res.Items {
		resp.Items[i] = itemResponse{
			Type:     it.Kind(),
			ID:       it.RecordID(),
			SortDate: timeline.SortDate(it),
			Data:     it,
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
