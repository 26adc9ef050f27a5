// cmd/web/main.go
//
// Cadastro – command-line entry point.
//
// Commands
// --------
//
//	cadastro serve     start the HTTP server (default)
//	cadastro migrate   apply component migrations and exit
//	cadastro genpass   print generated passwords
//
// Boot sequence shared by serve and migrate
// -----------------------------------------
//
//  1. Install a console logger so early failures are visible.
//
//  2. Connect to Vault when VAULT_ADDR is set; its Resolve backs every
//     `vault:` value in the configuration.
//
//  3. Load conf/global.yaml with the .env and CADASTRO_ overlays.
//
//  4. Switch to the rotating file logger (tees to console in a TTY).
//
//  5. Open the database and run every component's migrations.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanizio/cadastro/internal/component"
	"github.com/yanizio/cadastro/internal/config"
	"github.com/yanizio/cadastro/internal/database"
	"github.com/yanizio/cadastro/internal/form"
	"github.com/yanizio/cadastro/internal/logger"
	"github.com/yanizio/cadastro/internal/vault"

	_ "github.com/yanizio/cadastro/components/users" // registration form
)

var debug bool

func main() {
	root := &cobra.Command{
		Use:           "cadastro",
		Short:         "User registration form server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, _ []string) error { return serve(cmd.Context()) },
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")

	root.AddCommand(serveCmd(), migrateCmd(), genpassCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cadastro: %s\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  func(cmd *cobra.Command, _ []string) error { return serve(cmd.Context()) },
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := boot(ctx)
			if err != nil {
				return err
			}
			db, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			zap.S().Infow("schema up to date", "driver", cfg.Database.Driver)
			return nil
		},
	}
}

func genpassCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "genpass",
		Short: "Print passwords from the form generator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for i := 0; i < n; i++ {
				fmt.Fprintln(cmd.OutOrStdout(), form.GeneratePassword(nil))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 1, "how many passwords")
	return cmd
}

//
// ── boot helpers ─────────────────────────────────────────────────────────
//

// boot loads the configuration and installs the file logger.
func boot(ctx context.Context) (*config.Config, error) {
	logger.Bootstrap(debug)

	var resolve config.SecretFunc
	if vault.Enabled() {
		vc, err := vault.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("vault: %w", err)
		}
		resolve = vc.Resolve
	}

	cfg, err := config.Load(ctx, resolve)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if _, err := logger.New(logger.Options{
		Root:  cfg.Paths.Root,
		Tee:   logger.RunningInTTY(),
		Debug: debug,
	}); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, nil
}

// openDB connects and applies the migrations of every component.
func openDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.OpenWithOptions(cfg.Database.Driver, cfg.Database.ConnString(),
		cfg.Database.MaxOpen, cfg.Database.MaxIdle)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	for _, c := range component.All() {
		if err := database.Migrate(ctx, db, c.Migrations(cfg.Database.Driver)); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate %s: %w", c.Name(), err)
		}
	}
	return db, nil
}
