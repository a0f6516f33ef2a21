package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github.com/tradepost/backend/internal/infrastructure/config"
	"github.com/tradepost/backend/internal/infrastructure/logger"
	"github.com/tradepost/backend/internal/infrastructure/migration"
	"github.com/tradepost/backend/internal/infrastructure/persistence"
	"github.com/tradepost/backend/migrations"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

// cli carries the persistent flags and the lazily built logger shared by
// every subcommand.
type cli struct {
	path     string
	logLevel string
	log      *zap.Logger

	loadConfig func() (*config.Config, error)
}

func newRootCmd() *cobra.Command {
	c := &cli{loadConfig: config.Load}

	root := &cobra.Command{
		Use:   "migrate",
		Short: "Tradepost database migration tool",
		Long: `Apply, inspect and roll back the Tradepost PostgreSQL schema.

Connection settings come from TRADEPOST_DATABASE_* environment variables
or the config file. Without --path the schema embedded in the binary is used.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logger.New(&logger.Config{
				Level:      c.logLevel,
				Format:     "console",
				Output:     "stderr",
				TimeFormat: "2006-01-02 15:04:05",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.log = log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.path, "path", "", "migrations directory (default: embedded schema)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(
		c.upCmd(),
		c.downCmd(),
		c.stepsCmd(),
		c.versionCmd(),
		c.forceCmd(),
		c.createCmd(),
		c.listCmd(),
		c.seedCmd(),
	)
	return root
}

func (c *cli) upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withMigrator(cmd.Context(), func(m *migration.Migrator) error {
				return m.Up()
			})
		},
	}
}

func (c *cli) downCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withMigrator(cmd.Context(), func(m *migration.Migrator) error {
				return m.Down()
			})
		},
	}
}

func (c *cli) stepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "steps <n>",
		Short: "Apply n migrations (negative n rolls back)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n == 0 {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return c.withMigrator(cmd.Context(), func(m *migration.Migrator) error {
				return m.Steps(n)
			})
		},
	}
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withMigrator(cmd.Context(), func(m *migration.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if version == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty=%t)\n", version, dirty)
				return nil
			})
		},
	}
}

func (c *cli) forceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "force <version>",
		Short: "Set the schema version without running migrations",
		Long:  "Marks the given version as applied and clears the dirty flag. Use only to recover from a failed migration.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil || version < 0 {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return c.withMigrator(cmd.Context(), func(m *migration.Migrator) error {
				c.log.Warn("Forcing migration version", zap.Int("version", version))
				return m.Force(version)
			})
		},
	}
}

func (c *cli) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> [description]",
		Short: "Create an empty up/down migration pair",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var description string
			if len(args) == 2 {
				description = args[1]
			}
			dir := c.path
			if dir == "" {
				dir = defaultMigrationsDir
			}

			mf, err := migration.CreateMigration(dir, args[0], description)
			if err != nil {
				return err
			}
			c.log.Info("Migration created",
				zap.Uint64("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			fmt.Fprintln(cmd.OutOrStdout(), mf.UpPath)
			fmt.Fprintln(cmd.OutOrStdout(), mf.DownPath)
			return nil
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := migration.ListMigrations(c.source())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no migrations found")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%06d  %s\n", e.Version, e.Name)
			}
			return nil
		},
	}
}

func (c *cli) seedCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo categories, users, listings and trades",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			gormLog := logger.NewGormLogger(c.log.Named("gorm"), logger.MapGormLogLevel(c.logLevel))
			db, err := persistence.NewDatabase(&cfg.Database, gormLog)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			ctx := contextOrBackground(cmd.Context())
			if cfg.Database.Driver == config.DriverSQLite {
				if err := db.AutoMigrate(ctx); err != nil {
					return err
				}
			}

			report, err := persistence.Seed(ctx, db.DB, reset)
			if err != nil {
				return err
			}
			if report.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "database already has listings; use --reset to reseed")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d categories, %d users, %d products, %d trades\n",
				report.Categories, report.Users, report.Products, report.Trades)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "delete existing rows before seeding")
	return cmd
}

// source is the migrations filesystem list reads from
func (c *cli) source() fs.FS {
	if c.path == "" {
		return migrations.FS
	}
	return os.DirFS(c.path)
}

// withMigrator opens a PostgreSQL connection from the loaded configuration,
// runs fn and closes everything afterwards.
func (c *cli) withMigrator(ctx context.Context, fn func(*migration.Migrator) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations require the postgres driver, got %q", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(contextOrBackground(ctx)); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	path := c.path
	if path != "" {
		if path, err = filepath.Abs(path); err != nil {
			return err
		}
	}

	m, err := migration.New(db, path, c.log)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	return fn(m)
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
