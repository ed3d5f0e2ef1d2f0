package commands

import (
	"fmt"

	"github.com/marmos91/apiserve/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample apiserve configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/apiserve/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  apiserve init

  # Initialize with custom path
  apiserve init --config /etc/apiserve/config.yaml

  # Force overwrite existing config
  apiserve init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error

	if configFile != "" {
		// Use custom path
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		// Use default path
		configPath, err = config.InitConfig(initForce)
	}

	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", configPath)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Edit the configuration file to customize your setup")
	_, _ = fmt.Fprintln(out, "  2. Start the server with: apiserve serve-all")
	_, _ = fmt.Fprintf(out, "  3. Or specify custom config: apiserve serve-all --config %s\n", configPath)
	_, _ = fmt.Fprintln(out, "\nSecurity note:")
	_, _ = fmt.Fprintln(out, "  No admin password is set. One is generated and logged on first start;")
	_, _ = fmt.Fprintln(out, "  set api.admin_password (or APISERVE_API_ADMIN_PASSWORD) to choose it.")

	return nil
}
