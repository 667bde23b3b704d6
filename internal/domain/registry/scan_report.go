package registry

import (
	"encoding/json"
	"fmt"
)

// ScanReport is the structured view of a raw scanner output document.
type ScanReport struct {
	RiskScore float64
	Issues    []json.RawMessage
	Tools     []string
}

// ParseScanReport parses raw scanner JSON. The document must be a JSON
// object; risk_score, issues, and servers are optional and fall back to
// zero values when absent or malformed.
func ParseScanReport(raw string) (ScanReport, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return ScanReport{}, fmt.Errorf("%w: %v", ErrInvalidScanOutput, err)
	}
	if fields == nil {
		return ScanReport{}, fmt.Errorf("%w: expected a JSON object", ErrInvalidScanOutput)
	}

	var report ScanReport
	if raw, ok := fields["risk_score"]; ok {
		_ = json.Unmarshal(raw, &report.RiskScore)
	}
	if raw, ok := fields["issues"]; ok {
		_ = json.Unmarshal(raw, &report.Issues)
	}
	report.Tools = extractTools(fields["servers"])

	return report, nil
}

func extractTools(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var servers []struct {
		Tools []struct {
			Name *string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(raw, &servers); err != nil {
		return nil
	}

	var tools []string
	for _, server := range servers {
		for _, tool := range server.Tools {
			name := "unknown"
			if tool.Name != nil {
				name = *tool.Name
			}
			tools = append(tools, name)
		}
	}
	return tools
}
