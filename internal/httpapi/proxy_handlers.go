package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"mcpgate/internal/bootstrap/logging"
	"mcpgate/internal/errs"
	"mcpgate/internal/ports"
	"mcpgate/internal/usecase/proxy"
	"mcpgate/internal/usecase/registry"
)

// Forwarder relays a request to an upstream MCP server.
type Forwarder interface {
	Forward(w http.ResponseWriter, r *http.Request, baseURL string, pathSuffix string) error
}

func (h *handlers) proxyRequest(w http.ResponseWriter, r *http.Request) {
	ref, suffix := splitProxyPath(chi.URLParam(r, "*"))
	if ref == "" {
		writeError(w, http.StatusNotFound, "MCP server not registered")
		return
	}

	target, err := h.svc.ResolveProxyTarget(r.Context(), ref)
	if err != nil {
		writeProxyResolveError(w, err)
		return
	}

	if err := h.fwd.Forward(w, r, target.BaseURL, suffix); err != nil {
		var fwdErr *proxy.ForwardError
		if errors.As(err, &fwdErr) {
			writeError(w, fwdErr.Status, fwdErr.Detail)
			return
		}
		// The response is already partially written, only the log can carry this.
		logging.Warn(
			r.Context(),
			"proxy stream aborted",
			slog.String("server_id", target.ServerID),
			slog.Any("err", errs.Loggable(err)),
		)
	}
}

func writeProxyResolveError(w http.ResponseWriter, err error) {
	var notApproved *registry.NotApprovedError
	switch {
	case errors.Is(err, ports.ErrServerNotFound):
		writeError(w, http.StatusNotFound, "MCP server not registered")
	case errors.As(err, &notApproved):
		writeError(w, http.StatusForbidden, notApproved.Error())
	case errors.Is(err, registry.ErrNoRemoteURL):
		writeError(w, http.StatusBadRequest, "Server has no remote URL configured. Local servers must be scanned locally.")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// splitProxyPath separates the server reference from the remainder that is
// forwarded upstream, "abc/messages" becomes ("abc", "/messages").
func splitProxyPath(rest string) (string, string) {
	trimmed := strings.TrimPrefix(rest, "/")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) == 2 {
		return parts[0], "/" + parts[1]
	}
	return parts[0], ""
}
