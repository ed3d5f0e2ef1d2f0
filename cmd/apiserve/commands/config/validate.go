package config

import (
	"fmt"

	"github.com/marmos91/apiserve/pkg/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the apiserve configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  apiserve config validate

  # Validate specific config file
  apiserve config validate --config /etc/apiserve/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	// Get config path from parent's persistent flag
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	// Additional validation checks
	var warnings []string

	if !cfg.API.TLSEnabled() {
		warnings = append(warnings, "TLS not configured - the server will listen in plain HTTP")
	}
	if cfg.API.AdminPassword == "" {
		warnings = append(warnings, "admin password not set - one is generated and logged on first start")
	}
	if cfg.Worker.StdoutTTL == 0 {
		warnings = append(warnings, "worker.stdout_ttl is 0 - captured job output never expires")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Database type:   %s\n", cfg.Database.Type)
	_, _ = fmt.Fprintf(out, "  API port:        %d\n", cfg.API.Port)
	_, _ = fmt.Fprintf(out, "  Folder root:     %s\n", cfg.Folder.Root)
	_, _ = fmt.Fprintf(out, "  Log level:       %s\n", cfg.Logging.Level)

	return nil
}
