// Package app wires the settings loader, representation store and loader
// registry into a runnable workfile build.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/workbuildgo/internal/builder"
	"github.com/vk/workbuildgo/internal/ctxlog"
	"github.com/vk/workbuildgo/internal/registry"
	"github.com/vk/workbuildgo/internal/settings"
	"github.com/vk/workbuildgo/internal/store"
	"github.com/vk/workbuildgo/internal/store/surreal"
)

// Config holds everything an App instance needs to run one build.
type Config struct {
	SettingsPath string
	SnapshotPath string

	StoreURL       string
	StoreUser      string
	StorePassword  string
	StoreNamespace string
	StoreDatabase  string

	Project    string
	FolderPath string
	Task       string
	Host       string

	LogFormat string
	LogLevel  string
}

// App encapsulates the application's dependencies, configuration and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	settings *settings.Settings
	store    store.Store
	closeFn  func()
}

// New constructs a fully initialized App: isolated logger, loaded settings,
// a connected store and a populated loader registry.
func New(outW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	loaded, err := settings.Load(ctx, cfg.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	st, closeFn, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All loader modules registered.", "count", len(modules), "loaders", reg.Names())

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		settings: loaded,
		store:    st,
		closeFn:  closeFn,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Close releases the store connection, when one was opened.
func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// Run executes the workfile build and prints a per-folder summary.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	bctx := builder.Context{
		Project:    a.config.Project,
		FolderPath: a.config.FolderPath,
		TaskName:   a.config.Task,
		Host:       a.config.Host,
	}

	b := builder.New(a.store, a.registry, a.settings)
	results, err := b.BuildWorkfile(ctx, bctx)
	if err != nil {
		return fmt.Errorf("workfile build failed: %w", err)
	}

	total := 0
	for _, result := range results {
		total += len(result.Containers)
	}
	a.logger.Info("Workfile build finished.", "folders", len(results), "containers", total)

	for _, result := range results {
		fmt.Fprintf(a.outW, "%s\n", result.Folder.Path)
		for _, container := range result.Containers {
			fmt.Fprintf(a.outW, "  %-24s %-24s %s\n",
				container.Name, container.LoaderName, container.Data["path"])
		}
	}
	if total == 0 {
		fmt.Fprintln(a.outW, "No containers were loaded.")
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// openStore picks the store backend: a SurrealDB connection when a URL is
// configured, otherwise an in-memory store populated from the snapshot file.
func openStore(cfg *Config) (store.Store, func(), error) {
	if cfg.StoreURL != "" {
		st, err := surreal.Connect(surreal.Config{
			URL:       cfg.StoreURL,
			Username:  cfg.StoreUser,
			Password:  cfg.StorePassword,
			Namespace: cfg.StoreNamespace,
			Database:  cfg.StoreDatabase,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open representation store: %w", err)
		}
		return st, st.Close, nil
	}

	if cfg.SnapshotPath == "" {
		return nil, nil, fmt.Errorf("either a store URL or a project snapshot file is required")
	}
	mem, err := store.LoadSnapshot(cfg.SnapshotPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load project snapshot: %w", err)
	}
	return mem, nil, nil
}
