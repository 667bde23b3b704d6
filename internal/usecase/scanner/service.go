package scanner

import (
	"context"
	"encoding/json"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	domainregistry "mcpgate/internal/domain/registry"
	"mcpgate/internal/errs"
)

const fallbackServerName = "my-local-server"

// Service runs the local scanner and submits the results to the gateway.
type Service struct {
	runner *Runner
	client *Client
}

func NewService(runner *Runner, client *Client) *Service {
	return &Service{runner: runner, client: client}
}

type RunInput struct {
	ConfigPath string
	ServerID   string
	Name       string
	OwnerTeam  string
}

type RunResult struct {
	ServerID    string
	Registered  bool
	RiskScore   float64
	Status      string
	ToolsFound  int
	IssuesFound int
	Message     string
}

// RunAndUpload scans the local MCP client config and uploads the report.
// When no server id is given it registers the server first, deriving the
// name from the first configured server entry.
func (s *Service) RunAndUpload(ctx context.Context, input RunInput) (RunResult, error) {
	if ctx == nil {
		return RunResult{}, errs.Wrap(context.Canceled, "nil context")
	}
	if err := ctx.Err(); err != nil {
		return RunResult{}, errs.Wrap(err, "check context")
	}

	configPath := input.ConfigPath
	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	rawConfig, err := os.ReadFile(configPath)
	if err != nil {
		return RunResult{}, errs.Wrapf(err, "read mcp config %s", configPath)
	}
	names, err := configServerNames(rawConfig)
	if err != nil {
		return RunResult{}, err
	}

	version := s.runner.Version(ctx)
	rawOutput, err := s.runner.Scan(ctx, configPath)
	if err != nil {
		return RunResult{}, err
	}
	report, err := domainregistry.ParseScanReport(rawOutput)
	if err != nil {
		return RunResult{}, errs.Wrap(err, "parse scan report")
	}

	serverID := input.ServerID
	registered := false
	if serverID == "" {
		name := input.Name
		if name == "" {
			name = fallbackServerName
			if len(names) > 0 {
				name = names[0]
			}
		}
		team := input.OwnerTeam
		if team == "" {
			team = currentUsername()
		}
		tools := report.Tools
		if tools == nil {
			tools = []string{}
		}
		regResp, err := s.client.RegisterServer(ctx, RegisterRequest{
			CanonicalID:   "local/" + name,
			Name:          name,
			OwnerTeam:     team,
			SourceType:    "LocalDeclared",
			DeclaredTools: tools,
			MCPConfig:     &LocalMCPConfig{Transport: "stdio", ConfigFile: configPath},
		})
		if err != nil {
			return RunResult{}, err
		}
		serverID = regResp.ID
		registered = true
	}

	uploadResp, err := s.client.UploadScan(ctx, serverID, UploadScanRequest{
		ScanOutput:  rawOutput,
		ScanVersion: version,
		ScannedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return RunResult{}, err
	}

	return RunResult{
		ServerID:    serverID,
		Registered:  registered,
		RiskScore:   uploadResp.RiskScore,
		Status:      uploadResp.Status,
		ToolsFound:  uploadResp.ToolsFound,
		IssuesFound: uploadResp.IssuesFound,
		Message:     uploadResp.Message,
	}, nil
}

// DefaultConfigPath points at the Claude desktop client config for this OS.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "Claude", "claude_desktop_config.json")
	default:
		return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json")
	}
}

func configServerNames(raw []byte) ([]string, error) {
	var cfg struct {
		MCPServers map[string]json.RawMessage `json:"mcpServers"`
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, errs.Wrap(err, "parse mcp config")
	}
	names := make([]string, 0, len(cfg.MCPServers))
	for name := range cfg.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func currentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}
