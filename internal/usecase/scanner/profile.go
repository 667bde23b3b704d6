package scanner

import (
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"mcpgate/internal/errs"
)

const (
	defaultScannerProgram        = "mcp-scan"
	defaultScannerTimeoutSeconds = 300
)

type ScannerConfig struct {
	Program        string   `toml:"program"`
	Args           []string `toml:"args"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

type GatewayConfig struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
}

// Profile carries scan tool settings read from an optional TOML file, so teams
// can pin a scanner binary and gateway endpoint per machine.
type Profile struct {
	Scanner ScannerConfig `toml:"scanner"`
	Gateway GatewayConfig `toml:"gateway"`
}

// LoadProfile reads profileFile and fills unset fields with defaults. An empty
// path yields the default profile without touching the filesystem.
func LoadProfile(profileFile string) (Profile, error) {
	path := strings.TrimSpace(profileFile)
	if path == "" {
		return applyProfileDefaults(Profile{}), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, errs.Wrapf(err, "read scan profile %s", path)
	}

	var profile Profile
	if err := toml.Unmarshal(raw, &profile); err != nil {
		return Profile{}, errs.Wrapf(err, "parse scan profile %s", path)
	}
	return applyProfileDefaults(profile), nil
}

func applyProfileDefaults(profile Profile) Profile {
	profile.Scanner.Program = strings.TrimSpace(profile.Scanner.Program)
	if profile.Scanner.Program == "" {
		profile.Scanner.Program = defaultScannerProgram
	}
	if len(profile.Scanner.Args) == 0 {
		profile.Scanner.Args = []string{"scan"}
	}
	if profile.Scanner.TimeoutSeconds <= 0 {
		profile.Scanner.TimeoutSeconds = defaultScannerTimeoutSeconds
	}
	profile.Gateway.URL = strings.TrimSpace(profile.Gateway.URL)
	return profile
}
