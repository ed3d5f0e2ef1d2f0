// Package controlplane wires the apiserve components into a serving process.
//
// A serve call runs, in order:
//  1. Discovery: resolve the containers to compose
//  2. Store: open the backing store (SQLite/PostgreSQL)
//  3. Bootstrap: folders, admin identity and collection indexes
//  4. Routing: build the dispatch table from the containers
//  5. Serving: bind the port and serve until the context ends
//
// Usage:
//
//	reg := registry.New()
//	reg.MustRegister(system.Descriptor())
//	err := controlplane.ServeFiltered(ctx, cfg, reg, []string{"apiserve.containers"})
package controlplane

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"

	"github.com/marmos91/apiserve/internal/logger"
	"github.com/marmos91/apiserve/internal/telemetry"
	"github.com/marmos91/apiserve/pkg/config"
	"github.com/marmos91/apiserve/pkg/controlplane/api"
	"github.com/marmos91/apiserve/pkg/controlplane/bootstrap"
	"github.com/marmos91/apiserve/pkg/controlplane/store"
	"github.com/marmos91/apiserve/pkg/metrics"
	"github.com/marmos91/apiserve/pkg/registry"
)

// Registry is a container source that can also resolve what it lists.
type Registry interface {
	registry.Source
	registry.Resolver
}

// ControlPlane owns the backing store and the bootstrap state of one
// process.
//
// It owns and coordinates:
//   - Store: the shared backing store
//   - Sequencer: the one-time bootstrap, constructed once per ControlPlane
//   - Server: the listener serving the dispatch table
type ControlPlane struct {
	cfg       *config.Config
	store     *store.GORMStore
	sequencer *bootstrap.Sequencer
}

// New opens the backing store described by cfg.
//
// Call Close() when done to release resources.
func New(cfg *config.Config) (*ControlPlane, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	st, err := store.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	return &ControlPlane{
		cfg:       cfg,
		store:     st,
		sequencer: bootstrap.New(BootstrapConfig(cfg), st, &bootstrap.State{}),
	}, nil
}

// BootstrapConfig derives the sequencer configuration from cfg.
func BootstrapConfig(cfg *config.Config) bootstrap.Config {
	return bootstrap.Config{
		Folders: bootstrap.Folders{
			Root:     cfg.Folder.Root,
			Transfer: cfg.Folder.Transfer,
			Process:  cfg.Folder.Process,
			Archive:  cfg.Folder.Archive,
			Temp:     cfg.Folder.Temp,
		},
		Admin: bootstrap.Admin{
			Username: cfg.API.AdminUsername,
			Realname: cfg.API.AdminRealname,
			Password: cfg.API.AdminPassword,
			Contact:  cfg.API.Contact,
		},
		Collections: store.Collections{
			Queue:  cfg.Sys.Queue,
			Stdout: cfg.Sys.Stdout,
			Stat:   cfg.Sys.Stat,
		},
		StdoutTTL: cfg.Worker.StdoutTTL,
	}
}

// Store returns the backing store.
func (cp *ControlPlane) Store() *store.GORMStore {
	return cp.store
}

// Bootstrap runs every bootstrap step that has not run yet.
func (cp *ControlPlane) Bootstrap(ctx context.Context) error {
	return cp.sequencer.RunAll(ctx)
}

// Serve composes descs into a dispatch table, bootstraps the store and
// serves the table until ctx is cancelled. Composition and listener errors
// are reported before the store or the folders are touched. The expiry
// sweeper runs alongside and stops with the server.
func (cp *ControlPlane) Serve(ctx context.Context, descs []registry.Descriptor) error {
	opts := registry.Options{
		Identity: cp.cfg.API.Name,
		Port:     cp.cfg.API.Port,
		Secure:   cp.cfg.API.TLSEnabled(),
		Health:   cp.store,
	}
	table, err := api.BuildTable(descs, opts, api.FallbackConfig{StaticDir: cp.cfg.API.StaticDir})
	if err != nil {
		return err
	}
	logger.Debug("dispatch table built", "routes", table.Len())

	srv, err := api.NewServer(api.NewRouter(table), cp.cfg.API)
	if err != nil {
		return err
	}

	if err := cp.Bootstrap(ctx); err != nil {
		return err
	}

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go store.NewSweeper(cp.store, cp.cfg.Worker.SweepInterval, metrics.NewBootstrapMetrics()).Run(sweepCtx)

	return srv.Serve(ctx)
}

// Close releases the backing store.
func (cp *ControlPlane) Close() error {
	return cp.store.Close()
}

// ServeOne serves the containers named by their qualifying names.
func ServeOne(ctx context.Context, cfg *config.Config, reg registry.Resolver, names ...string) error {
	descs, err := registry.ResolveNames(reg, names)
	if err != nil {
		return err
	}
	return serve(ctx, cfg, descs)
}

// ServeFiltered serves every container of reg whose qualifying name falls
// under one of filters, or every container when filters is empty.
func ServeFiltered(ctx context.Context, cfg *config.Config, reg Registry, filters []string) error {
	_, span := telemetry.StartSpan(ctx, telemetry.SpanResolve)
	descs, err := registry.Resolve(reg, reg, filters)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return err
	}
	span.End()

	for _, d := range descs {
		logger.Debug("resolved container", logger.KeyContainer, d.QualName)
	}
	return serve(ctx, cfg, descs)
}

func serve(ctx context.Context, cfg *config.Config, descs []registry.Descriptor) error {
	cp, err := New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := cp.Close(); err != nil {
			logger.Warn("failed to close store", logger.KeyError, err)
		}
	}()

	return cp.Serve(ctx, descs)
}
