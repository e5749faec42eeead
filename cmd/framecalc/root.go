package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/o.frames/internal/catalog"
	"github.com/Simplici0/o.frames/internal/config"
	"github.com/Simplici0/o.frames/internal/db"
	"github.com/Simplici0/o.frames/internal/logging"
	"github.com/Simplici0/o.frames/internal/migrations"
)

// globals are the persistent flags shared by every subcommand.
type globals struct {
	dbPath        string
	migrationsDir string
	logLevel      string
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   "framecalc",
		Short: "Price custom framing jobs and pick the cheapest way to buy moulding",
		Long: `framecalc prices picture framing jobs from artwork and mat sizes, normalizes
vendor box pricing into per-inch rates, and compares moulding purchase methods.

Results are printed as YAML. Commands that read the catalog use the sqlite
database at DB_PATH unless --db is given.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&g.dbPath, "db", "", "Path to the sqlite catalog (defaults to DB_PATH)")
	cmd.PersistentFlags().StringVar(&g.migrationsDir, "migrations", "migrations", "Directory holding goose migrations")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (defaults to LOG_LEVEL)")

	cmd.AddCommand(newEstimateCmd(g))
	cmd.AddCommand(newOptimizeCmd(g))
	cmd.AddCommand(newNormalizeCmd())
	cmd.AddCommand(newCatalogCmd(g))

	return cmd
}

// logger writes human-readable log lines to the command's stderr.
func (g *globals) logger(cmd *cobra.Command) zerolog.Logger {
	level := g.logLevel
	if level == "" {
		level = config.Load().LogLevel
	}
	return logging.New(level, "console", cmd.ErrOrStderr())
}

// openStore opens the catalog database and brings its schema up to date.
func (g *globals) openStore(ctx context.Context, logger zerolog.Logger) (*catalog.Store, *sql.DB, error) {
	path := g.dbPath
	if path == "" {
		path = config.Load().DBPath
	}

	database, err := db.OpenContext(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.UpWithLogger(database, g.migrationsDir, logger); err != nil {
		_ = database.Close()
		return nil, nil, err
	}
	return catalog.NewStore(database, 0), database, nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
