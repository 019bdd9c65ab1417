// Command workerctl manages the workers table from the command line:
// bulk CSV imports, listing, and schema bootstrap.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/workerdesk/internal/config"
	"github.com/JonMunkholm/workerdesk/internal/logging"
	"github.com/JonMunkholm/workerdesk/internal/store"
)

// app carries what every subcommand needs once the root has loaded config.
type app struct {
	cfg      *config.Config
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "workerctl",
		Short:         "Manage worker records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Overload()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.Logging.Level = a.logLevel
			}
			logging.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
			a.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")

	root.AddCommand(
		newImportCmd(a),
		newListCmd(a),
		newInitDBCmd(a),
	)
	return root
}

// connect opens the pool and returns the worker store on top of it.
func (a *app) connect(ctx context.Context) (*pgxpool.Pool, *store.Workers, error) {
	if a.cfg == nil {
		return nil, nil, errors.New("configuration not loaded")
	}
	pool, err := store.Connect(ctx, a.cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return pool, store.NewWorkers(pool), nil
}
