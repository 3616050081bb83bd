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

	"github.com/spf13/cobra"

	"github.com/hackgods/physio-booking/internal/api"
	"github.com/hackgods/physio-booking/internal/config"
	"github.com/hackgods/physio-booking/internal/console"
	"github.com/hackgods/physio-booking/internal/logging"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "physio-clinic",
		Short:        "Physiotherapy clinic booking service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(consoleCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the booking HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			noSample, _ := cmd.Flags().GetBool("no-sample")
			return runServer(addr, !noSample)
		},
	}
	cmd.Flags().String("addr", "", "Listen address, overrides HTTP_ADDR")
	cmd.Flags().Bool("no-sample", false, "Start with an empty clinic instead of generated sample data")
	return cmd
}

func consoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Run the interactive front desk console",
		RunE: func(cmd *cobra.Command, args []string) error {
			noSample, _ := cmd.Flags().GetBool("no-sample")
			return runConsole(!noSample)
		},
	}
	cmd.Flags().Bool("no-sample", false, "Start with an empty clinic instead of generated sample data")
	return cmd
}

func runServer(addr string, sample bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if addr != "" {
		cfg.HTTPAddr = addr
	}

	logger := logging.New("physio-clinic", cfg.Env, cfg.LogLevel)
	logger.Info().Str("env", cfg.Env).Str("addr", cfg.HTTPAddr).Str("version", version).Msg("api server starting")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(rootCtx, cfg, logger, sample)
	if err != nil {
		return err
	}
	defer closeApp(app, cfg.ShutdownTimeout)

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(api.RouterConfig{
			Engine:       app.engine,
			Directory:    app.dir,
			Dependencies: app.deps,
			Logger:       logger,
			Env:          cfg.Env,
			Version:      version,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-rootCtx.Done():
	}

	logger.Info().Msg("shutting down api server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func runConsole(sample bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// keep stdout for the menu
	logger := logging.NewWithWriter(os.Stderr, "physio-clinic", cfg.Env, cfg.LogLevel)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(rootCtx, cfg, logger, sample)
	if err != nil {
		return err
	}
	defer closeApp(app, cfg.ShutdownTimeout)

	return console.New(os.Stdin, os.Stdout, app.dir, app.engine, logger).Run(rootCtx)
}

func closeApp(app *app, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	app.Close(ctx)
}
