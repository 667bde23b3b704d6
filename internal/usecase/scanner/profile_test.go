package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProfileEmptyPathUsesDefaults(t *testing.T) {
	got, err := LoadProfile("")
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if got.Scanner.Program != "mcp-scan" {
		t.Fatalf("Program = %q", got.Scanner.Program)
	}
	if len(got.Scanner.Args) != 1 || got.Scanner.Args[0] != "scan" {
		t.Fatalf("Args = %#v", got.Scanner.Args)
	}
	if got.Scanner.TimeoutSeconds != 300 {
		t.Fatalf("TimeoutSeconds = %d", got.Scanner.TimeoutSeconds)
	}
	if got.Gateway.URL != "" {
		t.Fatalf("Gateway.URL = %q", got.Gateway.URL)
	}
}

func TestLoadProfileFromFile(t *testing.T) {
	profileFile := filepath.Join(t.TempDir(), "scan.toml")
	content := `
[scanner]
program = "custom-scan"
args = ["scan", "--deep"]
timeout_seconds = 30

[gateway]
url = " http://gateway.internal:8000 "
token = "secret"
`
	if err := os.WriteFile(profileFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	got, err := LoadProfile(profileFile)
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if got.Scanner.Program != "custom-scan" {
		t.Fatalf("Program = %q", got.Scanner.Program)
	}
	if len(got.Scanner.Args) != 2 || got.Scanner.Args[1] != "--deep" {
		t.Fatalf("Args = %#v", got.Scanner.Args)
	}
	if got.Scanner.TimeoutSeconds != 30 {
		t.Fatalf("TimeoutSeconds = %d", got.Scanner.TimeoutSeconds)
	}
	if got.Gateway.URL != "http://gateway.internal:8000" {
		t.Fatalf("Gateway.URL = %q", got.Gateway.URL)
	}
	if got.Gateway.Token != "secret" {
		t.Fatalf("Gateway.Token = %q", got.Gateway.Token)
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatalf("LoadProfile() expected error for missing file")
	}
}

func TestApplyProfileDefaultsNormalizesBlankFields(t *testing.T) {
	got := applyProfileDefaults(Profile{
		Scanner: ScannerConfig{
			Program:        "   ",
			Args:           nil,
			TimeoutSeconds: 0,
		},
	})
	if got.Scanner.Program != "mcp-scan" {
		t.Fatalf("Program = %q", got.Scanner.Program)
	}
	if len(got.Scanner.Args) != 1 || got.Scanner.Args[0] != "scan" {
		t.Fatalf("Args = %#v", got.Scanner.Args)
	}
	if got.Scanner.TimeoutSeconds != 300 {
		t.Fatalf("TimeoutSeconds = %d", got.Scanner.TimeoutSeconds)
	}
}
