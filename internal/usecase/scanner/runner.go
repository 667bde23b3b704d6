package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner shells out to the configured scan tool and hands back its JSON report.
type Runner struct {
	program string
	args    []string
	timeout time.Duration
}

func NewRunner(cfg ScannerConfig) *Runner {
	resolved := applyProfileDefaults(Profile{Scanner: cfg}).Scanner
	return &Runner{
		program: resolved.Program,
		args:    resolved.Args,
		timeout: time.Duration(resolved.TimeoutSeconds) * time.Second,
	}
}

// Version returns the first line of the scanner's --version output, or
// "unknown" when the tool is missing or misbehaves.
func (r *Runner) Version(ctx context.Context) string {
	cmd := exec.CommandContext(ctx, r.program, "--version")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "unknown"
	}
	version := firstLine(stdout.String())
	if version == "" {
		return "unknown"
	}
	return version
}

// Scan runs the scanner against configPath and returns its raw JSON output.
func (r *Runner) Scan(ctx context.Context, configPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := append(append([]string{}, r.args...), "--config", configPath, "--output-format", "json")
	cmd := exec.CommandContext(runCtx, r.program, args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%s timed out after %s", r.program, r.timeout)
	}
	if runErr != nil {
		detail := firstLine(stderr.String())
		if detail == "" {
			detail = runErr.Error()
		}
		return "", fmt.Errorf("%s failed: %s", r.program, detail)
	}

	raw := strings.TrimSpace(stdout.String())
	if !json.Valid([]byte(raw)) {
		return "", fmt.Errorf("parse %s output: not valid JSON", r.program)
	}
	return raw, nil
}

func firstLine(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	parts := strings.SplitN(trimmed, "\n", 2)
	return strings.TrimSpace(parts[0])
}
