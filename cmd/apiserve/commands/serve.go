package commands

import (
	"context"

	"github.com/marmos91/apiserve/pkg/controlplane"
	"github.com/marmos91/apiserve/pkg/registry"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <qualname> [qualname...]",
	Short: "Serve the named containers",
	Long: `Serve the containers named by their qualifying names.

The store is bootstrapped first (folders, admin identity, collection indexes),
then the containers are mounted under their roots in the order given. The
server runs until interrupted with SIGINT or SIGTERM.

Use 'apiserve containers' to list the qualifying names.

Examples:
  # Serve the system container
  apiserve serve apiserve.containers.system.SystemContainer

  # Serve two containers on port 8080
  apiserve serve --port 8080 \
    apiserve.containers.system.SystemContainer \
    apiserve.containers.metricsapi.MetricsContainer`,
	Args: cobra.MinimumNArgs(1),
	RunE: runServe,
}

func init() {
	addListenerFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig(cmd)
	if err != nil {
		return err
	}

	return runServer(cfg, func(ctx context.Context, reg *registry.Registry) error {
		return controlplane.ServeOne(ctx, cfg, reg, args...)
	})
}
