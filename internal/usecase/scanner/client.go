package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mcpgate/internal/errs"
)

// Client talks to the gateway registry API on behalf of the scan tool.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type LocalMCPConfig struct {
	Transport  string `json:"transport"`
	ConfigFile string `json:"configFile"`
}

type RegisterRequest struct {
	CanonicalID   string          `json:"canonicalId"`
	Name          string          `json:"name"`
	OwnerTeam     string          `json:"ownerTeam"`
	SourceType    string          `json:"sourceType"`
	DeclaredTools []string        `json:"declaredTools"`
	MCPConfig     *LocalMCPConfig `json:"mcpConfig,omitempty"`
}

type RegisterResponse struct {
	ID          string `json:"id"`
	CanonicalID string `json:"canonicalId"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

type UploadScanRequest struct {
	ScanOutput  string `json:"scanOutput"`
	ScanVersion string `json:"scanVersion"`
	ScannedAt   string `json:"scannedAt"`
}

type UploadScanResponse struct {
	ID          string  `json:"id"`
	ServerID    string  `json:"serverId"`
	RiskScore   float64 `json:"riskScore"`
	Status      string  `json:"status"`
	ToolsFound  int     `json:"toolsFound"`
	IssuesFound int     `json:"issuesFound"`
	Message     string  `json:"message"`
}

func (c *Client) RegisterServer(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	var out RegisterResponse
	if err := c.postJSON(ctx, "/registry/servers", req, &out); err != nil {
		return RegisterResponse{}, err
	}
	return out, nil
}

func (c *Client) UploadScan(ctx context.Context, serverID string, req UploadScanRequest) (UploadScanResponse, error) {
	var out UploadScanResponse
	if err := c.postJSON(ctx, "/registry/servers/"+serverID+"/scan/upload", req, &out); err != nil {
		return UploadScanResponse{}, err
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errs.Wrap(err, "marshal request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errs.Wrap(err, "build gateway request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errs.Wrapf(err, "call gateway %s", path)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, gatewayErrorDetail(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.Wrapf(err, "decode gateway response from %s", path)
	}
	return nil
}

func gatewayErrorDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 64*1024))
	if err != nil {
		return "unreadable error body"
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return strings.TrimSpace(string(raw))
}
