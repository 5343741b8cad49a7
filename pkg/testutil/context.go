package testutil

import (
	"context"
	"net/http"

	id "crmdir/pkg/domain"
	"crmdir/pkg/requestcontext"
)

// WithTenantID adds a tenant ID to the request context, as the tenant auth
// middleware does for authenticated requests. Invalid UUIDs are not added.
func WithTenantID(req *http.Request, tenantID string) *http.Request {
	if parsed, err := id.ParseTenantID(tenantID); err == nil {
		return req.WithContext(requestcontext.WithTenantID(req.Context(), parsed))
	}
	return req
}

// WithTenant adds tenant and subject to the request context.
// This is the typical state for an authenticated request.
func WithTenant(req *http.Request, tenantID id.TenantID, subject string) *http.Request {
	ctx := requestcontext.WithTenantID(req.Context(), tenantID)
	if subject != "" {
		ctx = requestcontext.WithSubject(ctx, subject)
	}
	return req.WithContext(ctx)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
