package commands

import (
	"context"

	"github.com/marmos91/apiserve/pkg/controlplane"
	"github.com/marmos91/apiserve/pkg/registry"
	"github.com/spf13/cobra"
)

var serveAllFilters []string

var serveAllCmd = &cobra.Command{
	Use:   "serve-all",
	Short: "Serve every discovered container",
	Long: `Serve every registered container whose qualifying name falls under one
of the given filters. A filter matches its exact name or any name below it,
so "apiserve.containers" selects "apiserve.containers.system.SystemContainer"
but not "apiserve.containersx.Other".

Without --filter the api.filters configuration applies; when that is empty
too, every registered container is served.

Examples:
  # Serve everything
  apiserve serve-all

  # Serve only the built-in containers over TLS configured in the file
  apiserve serve-all --filter apiserve.containers --config /etc/apiserve/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runServeAll,
}

func init() {
	serveAllCmd.Flags().StringSliceVarP(&serveAllFilters, "filter", "f", nil, "Qualifying name prefix to serve (repeatable)")
	addListenerFlags(serveAllCmd)
}

func runServeAll(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig(cmd)
	if err != nil {
		return err
	}

	filters := cfg.API.Filters
	if cmd.Flags().Changed("filter") {
		filters = serveAllFilters
	}

	return runServer(cfg, func(ctx context.Context, reg *registry.Registry) error {
		return controlplane.ServeFiltered(ctx, cfg, reg, filters)
	})
}
