package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"mcpgate/internal/usecase/registry"
)

// RegistryService is the slice of the registry use case layer the API serves.
type RegistryService interface {
	RegisterServer(ctx context.Context, input registry.RegisterServerInput) (registry.RegisterServerResult, error)
	UploadScan(ctx context.Context, input registry.UploadScanInput) (registry.UploadScanResult, error)
	ApplyAdminAction(ctx context.Context, input registry.AdminActionInput) (registry.AdminActionResult, error)
	ListServers(ctx context.Context, input registry.ListServersInput) ([]registry.ServerItem, error)
	GetServer(ctx context.Context, serverID string) (registry.ServerItem, error)
	ListScans(ctx context.Context, serverID string) ([]registry.ScanItem, error)
	ListAuditEvents(ctx context.Context, input registry.ListAuditEventsInput) ([]registry.AuditEventItem, error)
	CheckPolicy(ctx context.Context, serverURL string) (registry.PolicyDecision, error)
	ListApprovedServers(ctx context.Context) ([]registry.CatalogEntry, error)
	ResolveProxyTarget(ctx context.Context, ref string) (registry.ProxyTarget, error)
}

type handlers struct {
	svc RegistryService
	fwd Forwarder
}

type registerServerRequest struct {
	CanonicalID   string          `json:"canonicalId"`
	Name          string          `json:"name"`
	OwnerTeam     string          `json:"ownerTeam"`
	SourceType    string          `json:"sourceType"`
	DeclaredTools []string        `json:"declaredTools"`
	MCPConfig     json.RawMessage `json:"mcpConfig"`
}

type uploadScanRequest struct {
	ScanOutput  string `json:"scanOutput"`
	ScanVersion string `json:"scanVersion"`
	ScannedAt   string `json:"scannedAt"`
}

type approvalRequest struct {
	Reason *string `json:"reason"`
}

func (h *handlers) registerServer(w http.ResponseWriter, r *http.Request) {
	var req registerServerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.svc.RegisterServer(r.Context(), registry.RegisterServerInput{
		CanonicalID:   req.CanonicalID,
		Name:          req.Name,
		OwnerTeam:     req.OwnerTeam,
		SourceType:    req.SourceType,
		DeclaredTools: req.DeclaredTools,
		MCPConfig:     req.MCPConfig,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerServerResponse{
		ID:          out.ID,
		CanonicalID: out.CanonicalID,
		Name:        out.Name,
		Status:      out.Status,
		Message:     out.Message,
	})
}

func (h *handlers) uploadScan(w http.ResponseWriter, r *http.Request) {
	var req uploadScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.svc.UploadScan(r.Context(), registry.UploadScanInput{
		ServerID:    chi.URLParam(r, "serverID"),
		ScanOutput:  req.ScanOutput,
		ScanVersion: req.ScanVersion,
		ScannedAt:   req.ScannedAt,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadScanResponse{
		ID:          out.ID,
		ServerID:    out.ServerID,
		RiskScore:   out.RiskScore,
		Status:      out.Status,
		ToolsFound:  out.ToolsFound,
		IssuesFound: out.IssuesFound,
		Message:     out.Message,
	})
}

// adminAction serves approve, deny, and suspend. The body is optional, an
// absent body means no reason was given.
func (h *handlers) adminAction(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req approvalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		out, err := h.svc.ApplyAdminAction(r.Context(), registry.AdminActionInput{
			ServerID: chi.URLParam(r, "serverID"),
			Action:   action,
			Reason:   req.Reason,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, adminActionResponse{
			ID:      out.ID,
			Status:  out.Status,
			Message: out.Message,
		})
	}
}

func (h *handlers) listServers(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListServers(r.Context(), registry.ListServersInput{
		Status:    r.URL.Query().Get("status"),
		OwnerTeam: r.URL.Query().Get("owner"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	rows := make([]serverRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, newServerRow(item))
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *handlers) getServer(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.GetServer(r.Context(), chi.URLParam(r, "serverID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newServerRow(item))
}

func (h *handlers) listScans(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListScans(r.Context(), chi.URLParam(r, "serverID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	rows := make([]scanRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, newScanRow(item))
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *handlers) listAuditEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "limit must be an integer")
			return
		}
		limit = parsed
	}

	items, err := h.svc.ListAuditEvents(r.Context(), registry.ListAuditEventsInput{
		EventType: r.URL.Query().Get("event_type"),
		ServerID:  r.URL.Query().Get("server_id"),
		Limit:     limit,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	rows := make([]auditEventRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, newAuditEventRow(item))
	}
	writeJSON(w, http.StatusOK, rows)
}
