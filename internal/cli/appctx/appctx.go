// Package appctx provides a shared bootstrap helper for CLI commands.
// It centralizes config loading, database opening, and actor/team
// resolution to reduce boilerplate across commands.
package appctx

import (
	"fmt"

	"github.com/avforge/estq/internal/config"
	"github.com/avforge/estq/internal/db"
	"github.com/avforge/estq/internal/logging"
	"github.com/avforge/estq/internal/store"
	estsync "github.com/avforge/estq/internal/sync"
	"github.com/spf13/cobra"
)

// App holds the shared application context for commands.
type App struct {
	// Config is the loaded configuration
	Config *config.Config

	// DB is the opened database connection (nil if NeedsDB is false)
	DB *db.DB

	// Store wraps DB with the persistence layer
	Store *store.Store

	// Sync is the debounced write engine (nil if NeedsSync is false).
	// Closed on App.Close, which flushes any pending write.
	Sync *estsync.Engine

	// Actor is the resolved current actor
	Actor string

	// Team is the resolved team scope
	Team string
}

// Close releases resources held by the App.
// Safe to call multiple times.
func (a *App) Close() {
	if a.Sync != nil {
		a.Sync.Close()
		a.Sync = nil
	}
	if a.DB != nil {
		a.DB.Close()
		a.DB = nil
	}
}

// Options configures the bootstrap behavior.
type Options struct {
	// NeedsDB indicates whether to open the database.
	// Defaults to true.
	NeedsDB bool

	// NeedsSync starts the debounced sync engine. Requires NeedsDB.
	NeedsSync bool
}

// DefaultOptions returns default options (DB required, no sync engine).
func DefaultOptions() Options {
	return Options{NeedsDB: true}
}

// WithSync returns options that also start the sync engine.
func WithSync() Options {
	return Options{NeedsDB: true, NeedsSync: true}
}

// RunFunc is the signature for command run functions.
type RunFunc func(app *App, cmd *cobra.Command, args []string) error

// WithApp wraps a command's run function with shared bootstrap logic.
// It loads config, opens the database, and resolves the actor/team.
// Resources are released automatically when the wrapped function returns.
func WithApp(opts Options, fn RunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := Bootstrap(cmd, opts)
		if err != nil {
			return err
		}
		defer app.Close()

		return fn(app, cmd, args)
	}
}

// Bootstrap initializes the App according to the given options.
// Callers are responsible for calling App.Close() when done.
func Bootstrap(cmd *cobra.Command, opts Options) (*App, error) {
	app := &App{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logging.SetLevel(cfg.LogLevel)

	// Flag overrides
	if dbFlag := cmd.Flag("db"); dbFlag != nil {
		if dbPath := dbFlag.Value.String(); dbPath != "" {
			app.Config.DBPath = dbPath
		}
	}
	app.Actor = cfg.GetActor()
	if asFlag := cmd.Flag("as"); asFlag != nil {
		if actor := asFlag.Value.String(); actor != "" {
			app.Actor = actor
		}
	}
	app.Team = cfg.GetTeam()
	if teamFlag := cmd.Flag("team"); teamFlag != nil {
		if team := teamFlag.Value.String(); team != "" {
			app.Team = team
		}
	}
	if outFlag := cmd.Flag("output"); outFlag != nil {
		if output := outFlag.Value.String(); output != "" {
			app.Config.Output = output
		}
	}

	if opts.NeedsDB {
		database, err := db.Open(app.Config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		_, pending, err := database.MigrationStatus()
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to check migration status: %w", err)
		}
		if len(pending) > 0 {
			database.Close()
			return nil, fmt.Errorf("database requires migration: %d pending migration(s). Run 'estq init' to update", len(pending))
		}

		app.DB = database
		app.Store = store.New(database)
	}

	if opts.NeedsSync {
		app.Sync = estsync.New(app.Config.SyncQuiet(), *logging.Default())
	}

	return app, nil
}
