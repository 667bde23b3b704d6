package scanner

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegisterServerSendsAuthorizedRequest(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath, gotAuth, gotContentType string
	var gotBody map[string]any
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"srv-1","canonicalId":"local/weather","name":"weather","status":"PendingScan","message":"registered"}`))
	}))
	defer stub.Close()

	client := NewClient(stub.URL+"/", "tok")
	got, err := client.RegisterServer(context.Background(), RegisterRequest{
		CanonicalID:   "local/weather",
		Name:          "weather",
		OwnerTeam:     "platform",
		SourceType:    "LocalDeclared",
		DeclaredTools: []string{"get_weather"},
		MCPConfig:     &LocalMCPConfig{Transport: "stdio", ConfigFile: "/tmp/claude.json"},
	})
	if err != nil {
		t.Fatalf("RegisterServer() error = %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/registry/servers" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Fatalf("Content-Type = %q", gotContentType)
	}
	if gotBody["canonicalId"] != "local/weather" || gotBody["ownerTeam"] != "platform" {
		t.Fatalf("body = %#v", gotBody)
	}
	mcpConfig, ok := gotBody["mcpConfig"].(map[string]any)
	if !ok || mcpConfig["transport"] != "stdio" || mcpConfig["configFile"] != "/tmp/claude.json" {
		t.Fatalf("mcpConfig = %#v", gotBody["mcpConfig"])
	}
	if got.ID != "srv-1" || got.Status != "PendingScan" {
		t.Fatalf("response = %#v", got)
	}
}

func TestClientOmitsAuthorizationWithoutToken(t *testing.T) {
	t.Parallel()

	var sawAuthHeader bool
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuthHeader = r.Header["Authorization"]
		_, _ = w.Write([]byte(`{"id":"srv-1"}`))
	}))
	defer stub.Close()

	client := NewClient(stub.URL, "")
	if _, err := client.RegisterServer(context.Background(), RegisterRequest{}); err != nil {
		t.Fatalf("RegisterServer() error = %v", err)
	}
	if sawAuthHeader {
		t.Fatalf("Authorization header should be omitted without a token")
	}
}

func TestUploadScanPostsToServerPath(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]any
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"id":"scan-1","serverId":"srv-1","riskScore":12.5,"status":"Approved","toolsFound":2,"issuesFound":0,"message":"ok"}`))
	}))
	defer stub.Close()

	client := NewClient(stub.URL, "tok")
	got, err := client.UploadScan(context.Background(), "srv-1", UploadScanRequest{
		ScanOutput:  `{"risk_score": 12.5}`,
		ScanVersion: "mcp-scan 1.2.3",
		ScannedAt:   "2026-03-01T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("UploadScan() error = %v", err)
	}

	if gotPath != "/registry/servers/srv-1/scan/upload" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody["scanOutput"] != `{"risk_score": 12.5}` || gotBody["scanVersion"] != "mcp-scan 1.2.3" {
		t.Fatalf("body = %#v", gotBody)
	}
	if got.RiskScore != 12.5 || got.Status != "Approved" || got.ToolsFound != 2 {
		t.Fatalf("response = %#v", got)
	}
}

func TestClientSurfacesGatewayDetail(t *testing.T) {
	t.Parallel()

	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"detail":"Server already registered"}`))
	}))
	defer stub.Close()

	client := NewClient(stub.URL, "")
	_, err := client.RegisterServer(context.Background(), RegisterRequest{})
	if err == nil {
		t.Fatalf("RegisterServer() expected error")
	}
	if got := err.Error(); got != "gateway returned 409: Server already registered" {
		t.Fatalf("error = %q", got)
	}
}

func TestClientFallsBackToRawErrorBody(t *testing.T) {
	t.Parallel()

	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom\n"))
	}))
	defer stub.Close()

	client := NewClient(stub.URL, "")
	_, err := client.UploadScan(context.Background(), "srv-1", UploadScanRequest{})
	if err == nil {
		t.Fatalf("UploadScan() expected error")
	}
	if !strings.Contains(err.Error(), "gateway returned 500: boom") {
		t.Fatalf("error = %q", err.Error())
	}
}
