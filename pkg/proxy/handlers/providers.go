package handlers

import (
	"log/slog"
	"net/http"

	"mercator-hq/playground/pkg/providers"
	"mercator-hq/playground/pkg/proxy"
	"mercator-hq/playground/pkg/proxy/types"
)

// ProviderLister lists provider identifiers in display order.
type ProviderLister interface {
	Providers() []providers.ProviderID
}

// ProvidersHandler serves GET /api/chat/providers with the static set of
// supported provider identifiers.
type ProvidersHandler struct {
	lister ProviderLister
}

// NewProvidersHandler creates a providers list handler.
func NewProvidersHandler(lister ProviderLister) *ProvidersHandler {
	return &ProvidersHandler{lister: lister}
}

// ServeHTTP implements http.Handler.
func (h *ProvidersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		_ = proxy.WriteErrorResponse(w, types.NewMethodNotAllowedError(r.Method))
		return
	}

	resp := types.NewProvidersResponse(h.lister.Providers())
	if err := proxy.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(r.Context(), "failed to write providers response", "error", err)
	}
}
