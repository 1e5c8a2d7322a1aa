package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpserver "stocksence/infrastructure/http"
	"stocksence/infrastructure/rbac"
	sessioncookie "stocksence/infrastructure/session"
)

type rootOptions struct {
	migrationsDir string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "stocksence",
		Short:         "Inventory and sales tracking for small companies",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.migrationsDir, "migrations", "", "apply migrations from this directory instead of the embedded set")

	root.AddCommand(
		newServeCmd(opts),
		newSeedDemoCmd(opts),
		newPurgeTrashCmd(opts),
		newBackupCmd(opts),
	)
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, opts.migrationsDir)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.seedDemo(ctx); err != nil {
				a.log.Warn("demo tenant not seeded", zap.Error(err))
			}

			signer, err := sessioncookie.NewSigner(a.cfg.Secrets.SessionKey, nil)
			if err != nil {
				return err
			}
			server := httpserver.NewServer(a.cfg.Server.Addr, httpserver.Deps{
				Store:         a.store,
				Signer:        signer,
				Rbac:          rbac.New(),
				Metrics:       a.metrics,
				Logger:        a.log,
				SecureCookies: a.cfg.IsProduction(),
			})
			if err := server.Start(); err != nil {
				return fmt.Errorf("start server: %w", err)
			}

			go a.store.RunMaintenance(ctx)

			<-ctx.Done()
			a.log.Info("shutting down")
			if err := server.Stop(); err != nil {
				a.log.Error("graceful shutdown error", zap.Error(err))
			}
			return nil
		},
	}
}

func newSeedDemoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-demo",
		Short: "Provision the demo tenant from DEMO_USERNAME and DEMO_PASSWORD",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), opts.migrationsDir)
			if err != nil {
				return err
			}
			defer a.Close()
			if !a.cfg.DemoFixtureAllowed() {
				return errors.New("demo fixture disabled; set DEMO_FIXTURE_ENABLED, DEMO_USERNAME and DEMO_PASSWORD outside production")
			}
			if err := a.seedDemo(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "seeded demo tenant")
			return nil
		},
	}
}

func newPurgeTrashCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-trash",
		Short: "Permanently remove trashed sales older than the retention window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), opts.migrationsDir)
			if err != nil {
				return err
			}
			defer a.Close()
			removed, err := a.store.CleanupOldDeletedSales(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d deleted sales\n", removed)
			return nil
		},
	}
}

type credentials struct {
	username  string
	password  string
	companyID string
}

func (c *credentials) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.username, "username", "", "admin username")
	cmd.Flags().StringVar(&c.password, "password", os.Getenv("STOCKSENCE_PASSWORD"), "admin password (defaults to STOCKSENCE_PASSWORD)")
	cmd.Flags().StringVar(&c.companyID, "company", "", "company id")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("company")
}

// withAdmin signs in, runs fn, then signs out again.
func withAdmin(ctx context.Context, a *app, c credentials, fn func() error) error {
	if _, err := a.store.Login(ctx, c.username, c.password, c.companyID); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer func() {
		if err := a.store.Logout(ctx); err != nil {
			a.log.Warn("logout failed", zap.Error(err))
		}
	}()
	return fn()
}

func newBackupCmd(opts *rootOptions) *cobra.Command {
	backup := &cobra.Command{
		Use:   "backup",
		Short: "Export or import an encrypted company backup",
	}

	var exportCreds credentials
	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the company backup to a file or stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), opts.migrationsDir)
			if err != nil {
				return err
			}
			defer a.Close()
			return withAdmin(cmd.Context(), a, exportCreds, func() error {
				raw, err := a.store.ExportBackup(cmd.Context())
				if err != nil {
					return err
				}
				if out == "" || out == "-" {
					_, err = cmd.OutOrStdout().Write(raw)
					return err
				}
				return os.WriteFile(out, raw, 0o600)
			})
		},
	}
	exportCreds.bind(export)
	export.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	var importCreds credentials
	var in string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the company data with a backup file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var raw []byte
			var err error
			if in == "" || in == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(in)
			}
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			a, err := openApp(cmd.Context(), opts.migrationsDir)
			if err != nil {
				return err
			}
			defer a.Close()
			return withAdmin(cmd.Context(), a, importCreds, func() error {
				if err := a.store.ImportBackup(cmd.Context(), raw); err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "backup imported")
				return nil
			})
		},
	}
	importCreds.bind(importCmd)
	importCmd.Flags().StringVarP(&in, "in", "i", "", "backup file (default stdin)")

	backup.AddCommand(export, importCmd)
	return backup
}
