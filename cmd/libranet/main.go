// cmd/libranet/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"libranet/internal/catalog"
	"libranet/internal/circulation"
	"libranet/internal/cli"
	"libranet/internal/cli/scheme/colours"
	"libranet/internal/clients"
	"libranet/internal/config"
	"libranet/internal/eventstore"
	"libranet/internal/telemetry"
)

type app struct {
	v          *viper.Viper
	configFile string
	cfg        config.Config
	log        *logrus.Logger
	shutdown   telemetry.ShutdownFunc
}

func main() {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "libranet",
		Short: "📚 A small library catalog with loans and fines",
		Long: `
LibraNet keeps a catalog of books, audiobooks and e-magazines,
lends them out and keeps a ledger of the fines they incur.
		`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Config file (default is ./libranet.yaml or $HOME/.libranet/libranet.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	a.v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	// Demo command
	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "🎬 Run the borrowing demo",
		Long:  "Add three items to a fresh catalog, borrow, play, archive, show fines and return",
		Args:  cobra.NoArgs,
		RunE:  a.runDemo,
	}

	// Shell command
	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "💬 Interactive catalog shell",
		Long:  "Work with the seed catalog, or a running server with --remote, one command per line",
		Args:  cobra.NoArgs,
		RunE:  a.runShell,
	}
	shellCmd.Flags().String("remote", "", "Base URL of a running libranet server")

	// Serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "🌐 Serve the catalog over HTTP",
		Args:  cobra.NoArgs,
		RunE:  a.runServe,
	}
	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")
	a.v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(demoCmd, shellCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		colours.Error.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log, err = telemetry.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	a.shutdown, err = telemetry.Setup(cmd.Context(), cfg.Telemetry, a.log)
	return err
}

func (a *app) teardown(cmd *cobra.Command, args []string) error {
	if a.shutdown == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return a.shutdown(ctx)
}

// newService builds a local service over a fresh catalog holding seed.
func (a *app) newService(ctx context.Context, seed []catalog.Item) (circulation.Service, error) {
	svc := circulation.NewService(catalog.New(), eventstore.NewEventStore(), a.log)
	for _, item := range seed {
		if err := svc.AddItem(ctx, item); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

func (a *app) runDemo(cmd *cobra.Command, args []string) error {
	svc, err := a.newService(cmd.Context(), nil)
	if err != nil {
		return err
	}
	return cli.RunDemo(cmd.Context(), svc, cmd.OutOrStdout())
}

func (a *app) runShell(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var svc circulation.Service
	if remote, _ := cmd.Flags().GetString("remote"); remote != "" {
		a.log.WithField("remote", remote).Info("using remote catalog")
		svc = clients.NewCirculationClient(remote)
	} else {
		seed, err := a.cfg.Catalog.Items()
		if err != nil {
			return err
		}
		if svc, err = a.newService(ctx, seed); err != nil {
			return err
		}
	}

	return cli.NewShell(svc, cmd.InOrStdin(), cmd.OutOrStdout(), a.log).Run(ctx)
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seed, err := a.cfg.Catalog.Items()
	if err != nil {
		return err
	}
	svc, err := a.newService(ctx, seed)
	if err != nil {
		return err
	}

	var limiter *rate.Limiter
	if a.cfg.Server.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(a.cfg.Server.RateLimit), a.cfg.Server.Burst)
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           circulation.NewHandler(svc, limiter, a.log).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("addr", srv.Addr).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return <-errCh
}
