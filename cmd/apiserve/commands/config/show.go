package config

import (
	"github.com/marmos91/apiserve/internal/cli/output"
	"github.com/marmos91/apiserve/pkg/config"
	"github.com/spf13/cobra"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the current apiserve configuration, with defaults and
environment overrides applied.

By default outputs YAML format. Use --output to change format.

Examples:
  # Show default config as YAML
  apiserve config show

  # Show as JSON
  apiserve config show --output json

  # Show specific config file
  apiserve config show --config /etc/apiserve/config.yaml`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	// Get config path from parent's persistent flag
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	default:
		return output.PrintYAML(cmd.OutOrStdout(), cfg)
	}
}
