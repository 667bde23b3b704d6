package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mcpgate/internal/bootstrap/logging"
	"mcpgate/internal/errs"
	"mcpgate/internal/usecase/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan [config-file]",
	Short: "Scan a local MCP client config and upload the results to the gateway",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		configPath := ""
		if len(args) == 1 {
			configPath = args[0]
		}

		profileFile, _ := cmd.Flags().GetString("profile")
		profile, err := scanner.LoadProfile(profileFile)
		if err != nil {
			logging.Error(ctx, "load scan profile failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "run scan")
		}

		// Explicit flags beat the profile, the profile beats env defaults.
		gatewayURL, _ := cmd.Flags().GetString("gateway")
		if !cmd.Flags().Changed("gateway") && profile.Gateway.URL != "" {
			gatewayURL = profile.Gateway.URL
		}
		token, _ := cmd.Flags().GetString("token")
		if !cmd.Flags().Changed("token") && profile.Gateway.Token != "" {
			token = profile.Gateway.Token
		}

		serverID, _ := cmd.Flags().GetString("server-id")
		name, _ := cmd.Flags().GetString("name")
		team, _ := cmd.Flags().GetString("team")

		svc := scanner.NewService(scanner.NewRunner(profile.Scanner), scanner.NewClient(gatewayURL, token))
		result, err := svc.RunAndUpload(ctx, scanner.RunInput{
			ConfigPath: configPath,
			ServerID:   serverID,
			Name:       name,
			OwnerTeam:  team,
		})
		if err != nil {
			logging.Error(ctx, "scan failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "run scan")
		}

		out := cmd.OutOrStdout()
		if result.Registered {
			if _, err := fmt.Fprintf(out, "registered server: %s\n", result.ServerID); err != nil {
				return errs.Wrap(err, "write scan output")
			}
		}
		if _, err := fmt.Fprintf(out, "scan uploaded: risk=%.1f status=%s tools=%d issues=%d\n",
			result.RiskScore, result.Status, result.ToolsFound, result.IssuesFound); err != nil {
			return errs.Wrap(err, "write scan output")
		}
		if _, err := fmt.Fprintln(out, result.Message); err != nil {
			return errs.Wrap(err, "write scan output")
		}
		return nil
	},
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().String("server-id", "", "Existing server id to upload the scan to")
	scanCmd.Flags().String("name", "", "Server name used when registering")
	scanCmd.Flags().String("team", "", "Owning team used when registering")
	scanCmd.Flags().String("gateway", envOr("MCP_GATEWAY_URL", "http://localhost:8000"), "Gateway base URL")
	scanCmd.Flags().String("token", os.Getenv("MCP_TOKEN"), "Gateway auth token")
	scanCmd.Flags().String("profile", "", "Path to a scan profile TOML file")
}
