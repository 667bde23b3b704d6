package httpapi

import (
	"net/http"
)

func (h *handlers) checkPolicy(w http.ResponseWriter, r *http.Request) {
	decision, err := h.svc.CheckPolicy(r.Context(), r.URL.Query().Get("server_url"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, policyCheckResponse{
		Allowed:    decision.Allowed,
		Reason:     decision.Reason,
		Action:     decision.Action,
		ServerID:   decision.ServerID,
		ServerName: decision.ServerName,
	})
}

func (h *handlers) listApprovedServers(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListApprovedServers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	servers := make([]mcpServerEntry, 0, len(entries))
	for _, entry := range entries {
		servers = append(servers, newMCPServerEntry(entry))
	}
	writeJSON(w, http.StatusOK, mcpServersResponse{Servers: servers})
}
