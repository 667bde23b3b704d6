package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mcpgate/internal/usecase/registry"
)

type stubRegistryService struct {
	registerServer      func(registry.RegisterServerInput) (registry.RegisterServerResult, error)
	uploadScan          func(registry.UploadScanInput) (registry.UploadScanResult, error)
	applyAdminAction    func(registry.AdminActionInput) (registry.AdminActionResult, error)
	listServers         func(registry.ListServersInput) ([]registry.ServerItem, error)
	getServer           func(string) (registry.ServerItem, error)
	listScans           func(string) ([]registry.ScanItem, error)
	listAuditEvents     func(registry.ListAuditEventsInput) ([]registry.AuditEventItem, error)
	checkPolicy         func(string) (registry.PolicyDecision, error)
	listApprovedServers func() ([]registry.CatalogEntry, error)
	resolveProxyTarget  func(string) (registry.ProxyTarget, error)
}

func (s *stubRegistryService) RegisterServer(_ context.Context, input registry.RegisterServerInput) (registry.RegisterServerResult, error) {
	if s.registerServer == nil {
		return registry.RegisterServerResult{}, errors.New("unexpected RegisterServer call")
	}
	return s.registerServer(input)
}

func (s *stubRegistryService) UploadScan(_ context.Context, input registry.UploadScanInput) (registry.UploadScanResult, error) {
	if s.uploadScan == nil {
		return registry.UploadScanResult{}, errors.New("unexpected UploadScan call")
	}
	return s.uploadScan(input)
}

func (s *stubRegistryService) ApplyAdminAction(_ context.Context, input registry.AdminActionInput) (registry.AdminActionResult, error) {
	if s.applyAdminAction == nil {
		return registry.AdminActionResult{}, errors.New("unexpected ApplyAdminAction call")
	}
	return s.applyAdminAction(input)
}

func (s *stubRegistryService) ListServers(_ context.Context, input registry.ListServersInput) ([]registry.ServerItem, error) {
	if s.listServers == nil {
		return nil, errors.New("unexpected ListServers call")
	}
	return s.listServers(input)
}

func (s *stubRegistryService) GetServer(_ context.Context, serverID string) (registry.ServerItem, error) {
	if s.getServer == nil {
		return registry.ServerItem{}, errors.New("unexpected GetServer call")
	}
	return s.getServer(serverID)
}

func (s *stubRegistryService) ListScans(_ context.Context, serverID string) ([]registry.ScanItem, error) {
	if s.listScans == nil {
		return nil, errors.New("unexpected ListScans call")
	}
	return s.listScans(serverID)
}

func (s *stubRegistryService) ListAuditEvents(_ context.Context, input registry.ListAuditEventsInput) ([]registry.AuditEventItem, error) {
	if s.listAuditEvents == nil {
		return nil, errors.New("unexpected ListAuditEvents call")
	}
	return s.listAuditEvents(input)
}

func (s *stubRegistryService) CheckPolicy(_ context.Context, serverURL string) (registry.PolicyDecision, error) {
	if s.checkPolicy == nil {
		return registry.PolicyDecision{}, errors.New("unexpected CheckPolicy call")
	}
	return s.checkPolicy(serverURL)
}

func (s *stubRegistryService) ListApprovedServers(_ context.Context) ([]registry.CatalogEntry, error) {
	if s.listApprovedServers == nil {
		return nil, errors.New("unexpected ListApprovedServers call")
	}
	return s.listApprovedServers()
}

func (s *stubRegistryService) ResolveProxyTarget(_ context.Context, ref string) (registry.ProxyTarget, error) {
	if s.resolveProxyTarget == nil {
		return registry.ProxyTarget{}, errors.New("unexpected ResolveProxyTarget call")
	}
	return s.resolveProxyTarget(ref)
}

type stubForwarder struct {
	forward func(w http.ResponseWriter, r *http.Request, baseURL string, pathSuffix string) error
}

func (f *stubForwarder) Forward(w http.ResponseWriter, r *http.Request, baseURL string, pathSuffix string) error {
	if f.forward == nil {
		return errors.New("unexpected Forward call")
	}
	return f.forward(w, r, baseURL, pathSuffix)
}

func decodeJSONBody(t *testing.T, raw []byte) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal response json: %v; body=%q", err, string(raw))
	}
	return out
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	router := NewRouter(&stubRegistryService{}, &stubForwarder{}, Config{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body=%s", resp.Code, http.StatusOK, resp.Body.String())
	}
	body := decodeJSONBody(t, resp.Body.Bytes())
	if body["status"] != "healthy" {
		t.Fatalf("status field = %#v, want healthy", body["status"])
	}
	if body["version"] != "1.0.0" {
		t.Fatalf("version field = %#v, want 1.0.0", body["version"])
	}
}

func TestBearerTokenGuardsRegistryAndAuditRoutes(t *testing.T) {
	t.Parallel()

	svc := &stubRegistryService{
		listServers: func(registry.ListServersInput) ([]registry.ServerItem, error) {
			return nil, nil
		},
		listAuditEvents: func(registry.ListAuditEventsInput) ([]registry.AuditEventItem, error) {
			return nil, nil
		},
	}
	router := NewRouter(svc, &stubForwarder{}, Config{AuthToken: "secret"})

	testCases := []struct {
		name       string
		path       string
		auth       string
		wantStatus int
		wantDetail string
	}{
		{name: "registry without header", path: "/registry/servers", wantStatus: http.StatusUnauthorized, wantDetail: "Not authenticated"},
		{name: "registry wrong token", path: "/registry/servers", auth: "Bearer wrong", wantStatus: http.StatusUnauthorized, wantDetail: "Invalid authentication token"},
		{name: "registry malformed header", path: "/registry/servers", auth: "Basic secret", wantStatus: http.StatusUnauthorized, wantDetail: "Not authenticated"},
		{name: "registry valid token", path: "/registry/servers", auth: "Bearer secret", wantStatus: http.StatusOK},
		{name: "audit without header", path: "/audit/events", wantStatus: http.StatusUnauthorized, wantDetail: "Not authenticated"},
		{name: "audit valid token", path: "/audit/events", auth: "Bearer secret", wantStatus: http.StatusOK},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, testCase.path, nil)
			if testCase.auth != "" {
				req.Header.Set("Authorization", testCase.auth)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != testCase.wantStatus {
				t.Fatalf("status = %d, want %d; body=%s", resp.Code, testCase.wantStatus, resp.Body.String())
			}
			if testCase.wantDetail != "" {
				body := decodeJSONBody(t, resp.Body.Bytes())
				if body["detail"] != testCase.wantDetail {
					t.Fatalf("detail = %#v, want %q", body["detail"], testCase.wantDetail)
				}
			}
		})
	}
}

func TestPolicyAndCatalogRoutesStayOpen(t *testing.T) {
	t.Parallel()

	svc := &stubRegistryService{
		checkPolicy: func(string) (registry.PolicyDecision, error) {
			return registry.PolicyDecision{Allowed: false, Reason: "Server not registered", Action: "block"}, nil
		},
		listApprovedServers: func() ([]registry.CatalogEntry, error) {
			return nil, nil
		},
	}
	router := NewRouter(svc, &stubForwarder{}, Config{AuthToken: "secret"})

	for _, path := range []string{"/policy/check?server_url=http://x", "/mcp/servers"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d, want %d; body=%s", path, resp.Code, http.StatusOK, resp.Body.String())
		}
	}
}

func TestEmptyTokenDisablesAuth(t *testing.T) {
	t.Parallel()

	svc := &stubRegistryService{
		listServers: func(registry.ListServersInput) ([]registry.ServerItem, error) {
			return nil, nil
		},
	}
	router := NewRouter(svc, &stubForwarder{}, Config{})

	req := httptest.NewRequest(http.MethodGet, "/registry/servers", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body=%s", resp.Code, http.StatusOK, resp.Body.String())
	}
	if got := resp.Body.String(); got != "[]\n" {
		t.Fatalf("body = %q, want empty JSON array", got)
	}
}
