package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/app"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/envutil"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "phonebook: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "phonebook",
		Short:         "Phonebook contact directory, report API and report worker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(app.RoleReports, "Serve the report API (runs the worker too when ENABLE_WORKER is set)"),
		newServeCmd(app.RoleContacts, "Serve the contact directory API"),
		newServeCmd(app.RoleWorker, "Run the report worker"),
		newMigrateCmd(),
	)
	return root
}

func newServeCmd(role app.Role, short string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   string(role),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			cfg, err := app.LoadConfig(log)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, role, cfg, log)
			if err != nil {
				return fmt.Errorf("initialize %s: %w", role, err)
			}
			defer a.Close()

			if err := a.Run(ctx); err != nil {
				return fmt.Errorf("%s exited: %w", role, err)
			}
			log.Info("Shut down cleanly")
			return nil
		},
	}
	if role != app.RoleWorker {
		cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	}
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()
			cfg, err := app.LoadConfig(log)
			if err != nil {
				return err
			}
			if err := app.Migrate(cfg, log); err != nil {
				return err
			}
			log.Info("Schema up to date", "driver", cfg.DB.Driver)
			return nil
		},
	}
}

func newLogger() (*logger.Logger, error) {
	mode := envutil.String("LOG_MODE", "development", nil)
	log, err := logger.New(mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}
